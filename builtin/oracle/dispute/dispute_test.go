// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package dispute

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questforge/forge/builtin/solidity"
	"github.com/questforge/forge/state"
	"github.com/questforge/forge/test/datagen"
)

func TestDisputeID(t *testing.T) {
	ev := datagen.RandomHash()
	assert.Equal(t, ID(ev), ID(ev))
	assert.NotEqual(t, ID(ev), ID(datagen.RandomHash()))
}

func TestTally(t *testing.T) {
	d := &Dispute{Status: StatusPending}
	assert.True(t, d.IsOpen())
	assert.False(t, d.Upheld())

	d.UpheldVotes, d.RejectedVotes = 2, 1
	assert.True(t, d.Upheld())
	assert.Equal(t, uint64(3), d.Votes())

	d.UpheldVotes, d.RejectedVotes = 1, 1
	assert.False(t, d.Upheld())

	d.Status = StatusRejected
	assert.False(t, d.IsOpen())
}

func TestService(t *testing.T) {
	s := New(solidity.NewContext(datagen.RandAddress(), state.New(nil)))
	ev := datagen.RandomHash()

	none, err := s.Of(ev)
	require.NoError(t, err)
	assert.Nil(t, none)

	panel := datagen.RandAddresses(3)
	d := &Dispute{ID: ID(ev), Evidence: ev, Challenger: datagen.RandAddress(), Fee: big.NewInt(10), Status: StatusPending, Panel: panel}
	require.NoError(t, s.Set(d))

	got, err := s.Of(ev)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, panel, got.Panel)
	assert.True(t, got.OnPanel(panel[1]))
	assert.False(t, got.OnPanel(d.Challenger))

	require.NoError(t, s.SetReview(d.ID, &Review{Reviewer: panel[0], Uphold: true}))
	r, err := s.GetReview(d.ID, panel[0])
	require.NoError(t, err)
	assert.True(t, r.Uphold)
	r, err = s.GetReview(d.ID, panel[1])
	require.NoError(t, err)
	assert.Nil(t, r)
}
