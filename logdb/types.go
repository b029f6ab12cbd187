// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package logdb

import (
	"encoding/json"

	"github.com/questforge/forge/block"
	"github.com/questforge/forge/forge"
	"github.com/questforge/forge/tx"
)

// Event represents tx.Event that can be stored in db.
type Event struct {
	BlockID     forge.Bytes32
	Index       uint32
	BlockNumber uint32
	BlockTime   uint64
	TxID        forge.Bytes32
	TxOrigin    forge.Address // transaction origin
	Address     forge.Address // always a contract address
	Name        string
	Topics      [5]*forge.Bytes32
	Data        json.RawMessage
}

// newEvent converts tx.Event to Event.
func newEvent(header *block.Header, index uint32, txID forge.Bytes32, txOrigin forge.Address, txEvent *tx.Event) *Event {
	ev := &Event{
		BlockID:     header.ID,
		Index:       index,
		BlockNumber: header.Number,
		BlockTime:   header.Timestamp,
		TxID:        txID,
		TxOrigin:    txOrigin,
		Address:     txEvent.Address,
		Name:        txEvent.Name,
		Data:        txEvent.Data,
	}
	for i := 0; i < len(txEvent.Topics) && i < len(ev.Topics); i++ {
		ev.Topics[i] = &txEvent.Topics[i]
	}
	return ev
}

type RangeType string

const (
	Block RangeType = "block"
	Time  RangeType = "time"
)

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

type Range struct {
	Unit RangeType
	From uint64
	To   uint64
}

type Options struct {
	Offset uint64
	Limit  uint64
}

type EventCriteria struct {
	Address *forge.Address // always a contract address
	Name    *string
	Topics  [5]*forge.Bytes32
}

// EventFilter filter
type EventFilter struct {
	TxID        *forge.Bytes32
	CriteriaSet []*EventCriteria
	Range       *Range
	Options     *Options
	Order       Order // default asc
}
