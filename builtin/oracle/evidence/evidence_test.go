// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package evidence

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questforge/forge/builtin/solidity"
	"github.com/questforge/forge/state"
	"github.com/questforge/forge/test/datagen"
)

func TestVerdict(t *testing.T) {
	tests := []struct {
		name         string
		approve      []int64
		reject       []int64
		wantApproved bool
		wantScore    uint64
	}{
		{"unanimous approve", []int64{100, 120}, nil, true, 100},
		{"unanimous reject", nil, []int64{100, 120}, false, 0},
		{"tie rejects", []int64{150}, []int64{150}, false, 50},
		{"weighted majority", []int64{300}, []int64{100, 100}, true, 60},
		{"count majority loses on power", []int64{100, 100}, []int64{250}, false, 44},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(datagen.RandomHash(), datagen.RandAddress(), "photo", 2, 0, 100)
			for _, p := range tt.approve {
				require.NoError(t, e.Tally(datagen.RandAddress(), true, big.NewInt(p)))
			}
			for _, p := range tt.reject {
				require.NoError(t, e.Tally(datagen.RandAddress(), false, big.NewInt(p)))
			}
			approved, score, err := e.Verdict()
			require.NoError(t, err)
			assert.Equal(t, tt.wantApproved, approved)
			assert.Equal(t, tt.wantScore, score)
			assert.Equal(t, uint64(len(tt.approve)+len(tt.reject)), e.Votes())
		})
	}
}

func TestServicePending(t *testing.T) {
	s := NewService(solidity.NewContext(datagen.RandAddress(), state.New(nil)))

	e := New(datagen.RandomHash(), datagen.RandAddress(), "photo", 2, 10, 100)
	require.NoError(t, s.Set(e))
	pending, err := s.Pending()
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	got, err := s.Get(e.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)
	assert.Equal(t, uint64(100), got.Deadline)

	e.Status = StatusApproved
	require.NoError(t, s.Set(e))
	pending, err = s.Pending()
	require.NoError(t, err)
	assert.Empty(t, pending)

	voter := datagen.RandAddress()
	require.NoError(t, s.SetVote(e.ID, &Vote{Validator: voter, Approve: true, Confidence: 90, Power: big.NewInt(100)}))
	v, err := s.GetVote(e.ID, voter)
	require.NoError(t, err)
	assert.Equal(t, uint64(90), v.Confidence)

	none, err := s.GetVote(e.ID, datagen.RandAddress())
	require.NoError(t, err)
	assert.Nil(t, none)
}
