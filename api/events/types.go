// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/questforge/forge/forge"
	"github.com/questforge/forge/logdb"
)

type LogMeta struct {
	BlockID        forge.Bytes32 `json:"blockID"`
	BlockNumber    uint32        `json:"blockNumber"`
	BlockTimestamp uint64        `json:"blockTimestamp"`
	TxID           forge.Bytes32 `json:"txID"`
	TxOrigin       forge.Address `json:"txOrigin"`
	LogIndex       *uint32       `json:"logIndex,omitempty"`
}

// FilteredEvent only comes from one contract
type FilteredEvent struct {
	Address forge.Address    `json:"address"`
	Name    string           `json:"name"`
	Topics  []*forge.Bytes32 `json:"topics"`
	Data    json.RawMessage  `json:"data"`
	Meta    LogMeta          `json:"meta"`
}

// ConvertEvent converts a logdb.Event into a json format Event
func ConvertEvent(event *logdb.Event, addIndexes bool) *FilteredEvent {
	fe := &FilteredEvent{
		Address: event.Address,
		Name:    event.Name,
		Data:    event.Data,
		Meta: LogMeta{
			BlockID:        event.BlockID,
			BlockNumber:    event.BlockNumber,
			BlockTimestamp: event.BlockTime,
			TxID:           event.TxID,
			TxOrigin:       event.TxOrigin,
		},
	}
	if addIndexes {
		fe.Meta.LogIndex = &event.Index
	}
	fe.Topics = make([]*forge.Bytes32, 0)
	for i := range 5 {
		if event.Topics[i] != nil {
			fe.Topics = append(fe.Topics, event.Topics[i])
		}
	}
	return fe
}

type TopicSet struct {
	Topic0 *forge.Bytes32 `json:"topic0"`
	Topic1 *forge.Bytes32 `json:"topic1"`
	Topic2 *forge.Bytes32 `json:"topic2"`
	Topic3 *forge.Bytes32 `json:"topic3"`
	Topic4 *forge.Bytes32 `json:"topic4"`
}

func (ts *TopicSet) topics() [5]*forge.Bytes32 {
	return [5]*forge.Bytes32{ts.Topic0, ts.Topic1, ts.Topic2, ts.Topic3, ts.Topic4}
}

type EventCriteria struct {
	Address *forge.Address `json:"address"`
	Name    *string        `json:"name"`
	TopicSet
}

type Options struct {
	Offset         uint64  `json:"offset,omitempty"`
	Limit          *uint64 `json:"limit,omitempty"`
	IncludeIndexes bool    `json:"includeIndexes,omitempty"`
}

func (o *Options) Validate(limit uint64) error {
	if o == nil {
		return nil
	}
	if o.Limit != nil && *o.Limit > limit {
		return fmt.Errorf("options.limit exceeds the maximum allowed value of %d", limit)
	}
	if o.Offset > math.MaxInt64 {
		return fmt.Errorf("options.offset exceeds the maximum allowed value of %d", uint64(math.MaxInt64))
	}
	return nil
}

type Range struct {
	Unit logdb.RangeType `json:"unit,omitempty"`
	From *uint64         `json:"from,omitempty"`
	To   *uint64         `json:"to,omitempty"`
}

func (r *Range) Validate() error {
	if r == nil {
		return nil
	}
	if r.Unit != "" && r.Unit != logdb.Block && r.Unit != logdb.Time {
		return fmt.Errorf("filter.Range.Unit must be either 'block' or 'time', got '%s'", r.Unit)
	}
	for _, v := range []*uint64{r.From, r.To} {
		if v != nil && *v > math.MaxInt64 {
			return fmt.Errorf("filter.Range exceeds the maximum allowed value of %d", uint64(math.MaxInt64))
		}
	}
	if r.From != nil && r.To != nil && *r.From > *r.To {
		return fmt.Errorf("filter.Range.To must be greater than or equal to filter.Range.From")
	}
	return nil
}

type EventFilter struct {
	TxID        *forge.Bytes32   `json:"txID,omitempty"`
	CriteriaSet []*EventCriteria `json:"criteriaSet,omitempty"`
	Range       *Range           `json:"range,omitempty"`
	Options     *Options         `json:"options,omitempty"`
	Order       logdb.Order      `json:"order,omitempty"`
}

// ConvertEventFilter converts a validated filter with options set.
func ConvertEventFilter(filter *EventFilter) *logdb.EventFilter {
	f := &logdb.EventFilter{
		TxID: filter.TxID,
		Options: &logdb.Options{
			Offset: filter.Options.Offset,
			Limit:  *filter.Options.Limit,
		},
		Order: filter.Order,
	}
	if r := filter.Range; r != nil {
		f.Range = &logdb.Range{Unit: r.Unit, To: math.MaxInt64}
		if r.From != nil {
			f.Range.From = *r.From
		}
		if r.To != nil {
			f.Range.To = *r.To
		}
	}
	if len(filter.CriteriaSet) > 0 {
		f.CriteriaSet = make([]*logdb.EventCriteria, len(filter.CriteriaSet))
		for i, criterion := range filter.CriteriaSet {
			f.CriteriaSet[i] = &logdb.EventCriteria{
				Address: criterion.Address,
				Name:    criterion.Name,
				Topics:  criterion.topics(),
			}
		}
	}
	return f
}
