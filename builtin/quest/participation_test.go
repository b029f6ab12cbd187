// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package quest

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questforge/forge/builtin/reverts"
	"github.com/questforge/forge/forge"
	"github.com/questforge/forge/xenv"
)

func TestJoinQuest(t *testing.T) {
	tq := newTestQuest(t)
	tq.start(tq.defaultConfig())
	user := tq.user()

	require.NoError(t, tq.join(user))
	p := tq.participant(user)
	assert.Equal(t, ParticipantActive, p.Status)
	assert.Equal(t, tq.now, p.JoinedAt)
	assert.Equal(t, ether(99), tq.balance(user))

	stake, err := tq.ledger.StakeOf(user, questAddr)
	require.NoError(t, err)
	require.NotNil(t, stake)
	assert.Equal(t, p.StakeID, stake.ID)
	assert.Equal(t, forge.Ether, stake.Amount)

	// the stake leaves through the quest only, never straight from the ledger
	for _, leave := range []func(env *xenv.Environment) error{
		func(env *xenv.Environment) error { _, err := tq.ledger.Withdraw(env, stake.ID); return err },
		func(env *xenv.Environment) error { _, err := tq.ledger.EmergencyWithdraw(env, stake.ID); return err },
	} {
		err := tq.env(user).Call(ledgerAddr, nil, leave)
		assert.ErrorIs(t, err, reverts.ErrManagedStake)
	}
	assert.Equal(t, ether(99), tq.balance(user))

	info, err := tq.quest.Info()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), info.Participants)
	assert.Equal(t, uint64(1), info.Active)

	assert.ErrorIs(t, tq.join(user), reverts.ErrAlreadyJoined)
}

func TestJoinQuestPayment(t *testing.T) {
	tq := newTestQuest(t)
	tq.start(tq.defaultConfig())

	for _, value := range []*big.Int{nil, milliEther(999), milliEther(1001), ether(2)} {
		user := tq.user()
		_, err := tq.call(user, value, func(env *xenv.Environment) error {
			_, err := tq.quest.JoinQuest(env)
			return err
		})
		assert.ErrorIs(t, err, reverts.ErrIncorrectPayment, "value %v", value)
		assert.Equal(t, ether(100), tq.balance(user))
	}
}

func TestJoinQuestFull(t *testing.T) {
	tq := newTestQuest(t)
	cfg := tq.defaultConfig()
	cfg.MaxParticipants = 2
	tq.start(cfg)
	users := tq.joined(2)

	assert.ErrorIs(t, tq.join(tq.user()), reverts.ErrQuestFull)

	// a slot frees up when a participant leaves
	_, err := tq.withdraw(users[0])
	require.NoError(t, err)
	require.NoError(t, tq.join(tq.user()))
	// leaving is final
	assert.ErrorIs(t, tq.join(users[0]), reverts.ErrAlreadyJoined)
}

func TestJoinBeforeInitialize(t *testing.T) {
	tq := newTestQuest(t)
	assert.ErrorIs(t, tq.join(tq.user()), reverts.ErrUnknownQuest)
}

func TestEarlyPenaltyBps(t *testing.T) {
	const duration = 100
	tests := []struct {
		name      string
		now       uint64
		expiresAt uint64
		want      uint64
	}{
		{"just joined", 0, duration, 5000},
		{"half way", 50, duration, 5000},
		{"sixty percent", 60, duration, 4000},
		{"ninety percent", 90, duration, 1000},
		{"at expiry", 100, duration, 0},
		{"after expiry", 150, duration, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EarlyPenaltyBps(tt.now, tt.expiresAt, duration, 5000)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	got, err := EarlyPenaltyBps(0, duration, duration, forge.BasisPoints)
	require.NoError(t, err)
	assert.Equal(t, forge.BasisPoints, got)
}

func TestWithdrawQuest(t *testing.T) {
	tq := newTestQuest(t)
	tq.start(tq.defaultConfig())
	users := tq.joined(2)

	// right after joining the penalty is capped at half the stake
	slashed, err := tq.withdraw(users[0])
	require.NoError(t, err)
	assert.Equal(t, milliEther(500), slashed)
	assert.Equal(t, milliEther(99_500), tq.balance(users[0]))
	assert.Equal(t, ParticipantWithdrawn, tq.participant(users[0]).Status)

	// with 20% of the quest left, 20% is forfeited
	tq.now += 8 * forge.Day
	slashed, err = tq.withdraw(users[1])
	require.NoError(t, err)
	assert.Equal(t, milliEther(200), slashed)
	assert.Equal(t, milliEther(99_800), tq.balance(users[1]))

	_, err = tq.withdraw(users[1])
	assert.ErrorIs(t, err, reverts.ErrNotParticipant)
	_, err = tq.withdraw(tq.user())
	assert.ErrorIs(t, err, reverts.ErrNotParticipant)

	info, err := tq.quest.Info()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), info.Participants)
	assert.Equal(t, uint64(0), info.Active)
}
