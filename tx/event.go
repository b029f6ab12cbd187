// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"encoding/json"

	"github.com/questforge/forge/forge"
)

// Event is a structured record emitted by a contract on every state mutation.
// Topics hold the indexed fields, Data the full payload as JSON.
type Event struct {
	Address forge.Address   `json:"address"`
	Name    string          `json:"name"`
	Topics  []forge.Bytes32 `json:"topics"`
	Data    json.RawMessage `json:"data"`
}

// NewEvent encodes data as the event payload.
func NewEvent(addr forge.Address, name string, data any, topics ...forge.Bytes32) (*Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	if topics == nil {
		topics = []forge.Bytes32{}
	}
	return &Event{
		Address: addr,
		Name:    name,
		Topics:  topics,
		Data:    raw,
	}, nil
}

// Decode unmarshals the payload into v.
func (e *Event) Decode(v any) error {
	return json.Unmarshal(e.Data, v)
}

// Events is a list of events.
type Events []*Event

// Named returns events matching name, in emission order.
func (es Events) Named(name string) Events {
	var out Events
	for _, e := range es {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

// AddressTopic pads an address into a topic.
func AddressTopic(addr forge.Address) forge.Bytes32 {
	return forge.BytesToBytes32(addr.Bytes())
}
