// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package testchain

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questforge/forge/builtin"
	"github.com/questforge/forge/builtin/quest"
	"github.com/questforge/forge/forge"
	"github.com/questforge/forge/logdb"
	"github.com/questforge/forge/test/datagen"
)

func TestQuestFlow(t *testing.T) {
	chain, err := NewDefault()
	require.NoError(t, err)
	defer chain.Close()

	accs := chain.Accounts()
	creator, user, validator := accs[1].Address, accs[2].Address, accs[3].Address

	addr, err := chain.CreateQuest(creator, &quest.Config{
		Title:           "Run a marathon",
		Asset:           forge.NativeAsset,
		StakeAmount:     new(big.Int).Set(forge.Ether),
		RewardAmount:    new(big.Int).Div(forge.Ether, big.NewInt(10)),
		MaxParticipants: 10,
		Duration:        30 * forge.Day,
		Milestones:      []quest.MilestoneConfig{{Title: "finish line", VerificationType: "gps"}},
	}, forge.Ether)
	require.NoError(t, err)

	require.NoError(t, chain.RegisterValidator(validator, forge.Ether))
	require.NoError(t, chain.Join(user, addr))
	assert.Error(t, chain.Join(user, addr), "joining twice reverts")

	chain.Advance(forge.Hour)
	id, err := chain.Submit(user, addr, 0, datagen.RandomHash(), "ipfs://finish")
	require.NoError(t, err)
	require.NoError(t, chain.Vote(validator, id, true, 90))

	require.NoError(t, chain.View(func(c *builtin.Contracts) error {
		q, err := c.Quest(addr)
		require.NoError(t, err)
		p, err := q.Participant(user)
		require.NoError(t, err)
		assert.Equal(t, quest.ParticipantCompleted, p.Status)
		n, err := c.NFT.BalanceOf(user)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), n)
		return nil
	}))

	status, err := chain.EndQuest(creator, addr)
	require.NoError(t, err)
	assert.Equal(t, quest.StatusCompleted, status)

	name := "ParticipantCompleted"
	events, err := chain.LogDB().FilterEvents(context.Background(), &logdb.EventFilter{
		CriteriaSet: []*logdb.EventCriteria{{Address: &addr, Name: &name}},
	})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, validator, events[0].TxOrigin, "completion happens in the finalizing vote")

	// genesis plus one block per transaction, the reverted join included
	assert.Equal(t, uint32(7), chain.Runtime().Best().Number)
}
