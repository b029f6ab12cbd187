// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/questforge/forge/forge"
	"github.com/questforge/forge/logdb"
)

func ptr[T any](v T) *T { return &v }

func TestRangeValidate(t *testing.T) {
	tests := []struct {
		name  string
		rng   *Range
		valid bool
	}{
		{"nil", nil, true},
		{"open", &Range{}, true},
		{"block", &Range{Unit: logdb.Block, From: ptr[uint64](1), To: ptr[uint64](2)}, true},
		{"time", &Range{Unit: logdb.Time, From: ptr[uint64](100)}, true},
		{"bad unit", &Range{Unit: "epoch"}, false},
		{"inverted", &Range{From: ptr[uint64](3), To: ptr[uint64](2)}, false},
		{"too large", &Range{To: ptr[uint64](math.MaxUint64)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rng.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestOptionsValidate(t *testing.T) {
	assert.NoError(t, (*Options)(nil).Validate(10))
	assert.NoError(t, (&Options{Limit: ptr[uint64](10)}).Validate(10))
	assert.EqualError(t, (&Options{Limit: ptr[uint64](11)}).Validate(10), "options.limit exceeds the maximum allowed value of 10")
	assert.Error(t, (&Options{Offset: math.MaxUint64}).Validate(10))
}

func TestConvertEventFilter(t *testing.T) {
	addr := forge.BytesToAddress([]byte("quest"))
	topic := forge.BytesToBytes32([]byte("topic"))

	f := ConvertEventFilter(&EventFilter{
		CriteriaSet: []*EventCriteria{{Address: &addr, Name: ptr("Staked"), TopicSet: TopicSet{Topic1: &topic}}},
		Range:       &Range{From: ptr[uint64](5)},
		Options:     &Options{Offset: 2, Limit: ptr[uint64](3)},
		Order:       logdb.DESC,
	})

	assert.Equal(t, &logdb.Range{From: 5, To: math.MaxInt64}, f.Range, "an open end is bounded by the largest sqlite integer")
	assert.Equal(t, &logdb.Options{Offset: 2, Limit: 3}, f.Options)
	assert.Equal(t, logdb.DESC, f.Order)
	assert.Equal(t, &addr, f.CriteriaSet[0].Address)
	assert.Equal(t, "Staked", *f.CriteriaSet[0].Name)
	assert.Nil(t, f.CriteriaSet[0].Topics[0])
	assert.Equal(t, &topic, f.CriteriaSet[0].Topics[1])

	f = ConvertEventFilter(&EventFilter{Options: &Options{Limit: ptr[uint64](1)}})
	assert.Nil(t, f.Range)
	assert.Nil(t, f.CriteriaSet)
}
