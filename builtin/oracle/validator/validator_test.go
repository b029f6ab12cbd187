// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package validator

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questforge/forge/builtin/solidity"
	"github.com/questforge/forge/forge"
	"github.com/questforge/forge/state"
	"github.com/questforge/forge/test/datagen"
)

var defaultPower = PowerParams{
	Base:             100,
	MinReputation:    100,
	MaxMultiplierBps: 50000,
	BonusPerVote:     10,
	MaxBonus:         50,
	Window:           forge.Week,
}

func newService() *Service {
	return New(solidity.NewContext(datagen.RandAddress(), state.New(nil)))
}

func newValidator(rep uint64) *Validator {
	return &Validator{
		Address:       datagen.RandAddress(),
		Stake:         big.NewInt(1),
		Reputation:    rep,
		TotalEarnings: new(big.Int),
		Status:        StatusActive,
	}
}

func TestReputationBounds(t *testing.T) {
	b := Bounds{Min: 100, Max: 1000}
	v := newValidator(995)

	v.Reward(10, b)
	assert.Equal(t, uint64(1000), v.Reputation)
	v.Reward(^uint64(0), b)
	assert.Equal(t, uint64(1000), v.Reputation)

	v.Reputation = 103
	v.Penalize(5, b)
	assert.Equal(t, uint64(100), v.Reputation)
	v.Penalize(^uint64(0), b)
	assert.Equal(t, uint64(100), v.Reputation)
}

func TestMultiplier(t *testing.T) {
	assert.Equal(t, uint64(10000), MultiplierBps(100, defaultPower))
	assert.Equal(t, uint64(10100), MultiplierBps(101, defaultPower))
	assert.Equal(t, uint64(20000), MultiplierBps(200, defaultPower))
	assert.Equal(t, uint64(50000), MultiplierBps(500, defaultPower))
	assert.Equal(t, uint64(50000), MultiplierBps(1000, defaultPower))
	assert.Equal(t, uint64(50000), MultiplierBps(^uint64(0), defaultPower))
}

func TestActivityBonus(t *testing.T) {
	assert.Equal(t, uint64(0), ActivityBonus(0, defaultPower))
	assert.Equal(t, uint64(30), ActivityBonus(3, defaultPower))
	assert.Equal(t, uint64(50), ActivityBonus(5, defaultPower))
	assert.Equal(t, uint64(50), ActivityBonus(^uint64(0), defaultPower))
}

func TestPower(t *testing.T) {
	v := newValidator(200)
	p, err := Power(v, 1000, defaultPower)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(200), p)

	now := uint64(10 * forge.Week)
	v.RecordVote(now-forge.Week, forge.Week) // falls out of the window
	v.RecordVote(now-forge.Day, forge.Week)
	v.RecordVote(now-forge.Hour, forge.Week)
	p, err = Power(v, now, defaultPower)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(220), p)
	assert.Equal(t, uint64(3), v.TotalVotes)
	assert.Equal(t, now-forge.Hour, v.LastVoteAt)
}

func TestRecordVoteHistoryBound(t *testing.T) {
	v := newValidator(100)
	for i := range uint64(100) {
		v.RecordVote(1000+i, forge.Year)
	}
	assert.Len(t, v.RecentVotes, maxVoteHistory)
	assert.Equal(t, uint64(1099), v.RecentVotes[maxVoteHistory-1])
	assert.Equal(t, uint64(100), v.TotalVotes)
}

func TestServiceActiveArena(t *testing.T) {
	s := newService()
	vals := []*Validator{newValidator(100), newValidator(100), newValidator(100)}
	for _, v := range vals {
		require.NoError(t, s.Set(v))
	}
	n, err := s.ActiveLen()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), n)

	vals[1].Status = StatusSuspended
	require.NoError(t, s.Set(vals[1]))
	active, err := s.Active()
	require.NoError(t, err)
	assert.ElementsMatch(t, []forge.Address{vals[0].Address, vals[2].Address}, active)

	got, err := s.Get(vals[1].Address)
	require.NoError(t, err)
	assert.Equal(t, StatusSuspended, got.Status)

	missing, err := s.Get(datagen.RandAddress())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRotation(t *testing.T) {
	s := newService()
	vals := make([]*Validator, 5)
	for i := range vals {
		vals[i] = newValidator(100 + uint64(i))
		require.NoError(t, s.Set(vals[i]))
	}
	seed := datagen.RandomHash()

	picked, err := s.Rotation(seed, 3, nil)
	require.NoError(t, err)
	assert.Len(t, picked, 3)
	again, err := s.Rotation(seed, 3, nil)
	require.NoError(t, err)
	assert.Equal(t, picked, again)

	all, err := s.Rotation(seed, 10, nil)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	skipped := vals[0].Address
	filtered, err := s.Rotation(seed, 5, func(v *Validator) bool { return v.Address == skipped })
	require.NoError(t, err)
	assert.Len(t, filtered, 4)
	assert.NotContains(t, filtered, skipped)

	empty, err := newService().Rotation(seed, 3, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
