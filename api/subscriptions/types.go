// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"github.com/questforge/forge/api/events"
	"github.com/questforge/forge/block"
	"github.com/questforge/forge/forge"
)

// BlockMessage is the header of a sealed block with its transaction ids.
type BlockMessage struct {
	block.Header
	Transactions []forge.Bytes32 `json:"transactions"`
	Reverted     []forge.Bytes32 `json:"reverted"`
}

func convertBlock(blk *block.Block) *BlockMessage {
	msg := &BlockMessage{
		Header:       blk.Header,
		Transactions: make([]forge.Bytes32, 0, len(blk.Receipts)),
		Reverted:     []forge.Bytes32{},
	}
	for _, r := range blk.Receipts {
		msg.Transactions = append(msg.Transactions, r.ID)
		if r.Reverted {
			msg.Reverted = append(msg.Reverted, r.ID)
		}
	}
	return msg
}

// convertEvents flattens the events of the successful transactions of blk,
// indexed the way the log database indexes them.
func convertEvents(blk *block.Block) []*events.FilteredEvent {
	var out []*events.FilteredEvent
	for _, r := range blk.Receipts {
		if r.Reverted {
			continue
		}
		for _, ev := range r.Events {
			index := uint32(len(out))
			msg := &events.FilteredEvent{
				Address: ev.Address,
				Name:    ev.Name,
				Topics:  make([]*forge.Bytes32, 0, len(ev.Topics)),
				Data:    ev.Data,
				Meta: events.LogMeta{
					BlockID:        blk.Header.ID,
					BlockNumber:    blk.Header.Number,
					BlockTimestamp: blk.Header.Timestamp,
					TxID:           r.ID,
					TxOrigin:       r.Origin,
					LogIndex:       &index,
				},
			}
			for i := range ev.Topics {
				msg.Topics = append(msg.Topics, &ev.Topics[i])
			}
			out = append(out, msg)
		}
	}
	return out
}

// EventFilter selects the events delivered to a subscriber.
type EventFilter struct {
	Address *forge.Address
	Name    string
	Topics  [5]*forge.Bytes32
}

func (f *EventFilter) Match(ev *events.FilteredEvent) bool {
	if f.Address != nil && *f.Address != ev.Address {
		return false
	}
	if f.Name != "" && f.Name != ev.Name {
		return false
	}
	for i, topic := range f.Topics {
		if topic == nil {
			continue
		}
		if i >= len(ev.Topics) || *ev.Topics[i] != *topic {
			return false
		}
	}
	return true
}
