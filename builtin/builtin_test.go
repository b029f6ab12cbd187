// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questforge/forge/builtin/acl"
	"github.com/questforge/forge/builtin/quest"
	"github.com/questforge/forge/forge"
	"github.com/questforge/forge/state"
	"github.com/questforge/forge/test/datagen"
	"github.com/questforge/forge/xenv"
)

func TestAddressesAreDistinct(t *testing.T) {
	seen := map[forge.Address]string{}
	for _, c := range []*contract{ACL.contract, Params, Ledger, Oracle, NFT, Factory} {
		prev, dup := seen[c.Address]
		assert.False(t, dup, "%s collides with %s", c.Name, prev)
		seen[c.Address] = c.Name
	}
	assert.Equal(t, forge.BytesToAddress([]byte("RewardPool")), Ledger.Address)
}

func TestSetup(t *testing.T) {
	st := state.New(nil)
	c := Bind(st)
	admin := datagen.RandAddress()
	require.NoError(t, c.Setup(admin))

	for _, tt := range []struct {
		role acl.Role
		addr forge.Address
	}{
		{acl.Admin, admin},
		{acl.Factory, Factory.Address},
		{acl.QuestContract, Oracle.Address},
		{acl.Verifier, Oracle.Address},
	} {
		ok, err := c.ACL.HasRole(tt.role, tt.addr)
		require.NoError(t, err)
		assert.True(t, ok, acl.RoleName(tt.role))
	}
	pool, err := c.Ledger.Pool(Oracle.Address)
	require.NoError(t, err)
	require.NotNil(t, pool)
	assert.True(t, pool.Managed)
}

func TestQuestBinding(t *testing.T) {
	st := state.New(nil)
	c := Bind(st)
	require.NoError(t, c.Setup(datagen.RandAddress()))
	creator := datagen.RandAddress()

	env := xenv.New(st, &xenv.BlockContext{Time: 1000}, &xenv.TransactionContext{Origin: creator}, nil, false)
	addr, err := xenv.Invoke(env, Factory.Address, nil, func(env *xenv.Environment) (forge.Address, error) {
		return c.Factory.CreateQuest(env, &quest.Config{
			Title:           "Learn Go",
			StakeAmount:     forge.Ether,
			MaxParticipants: 5,
			Duration:        forge.Week,
			Milestones:      []quest.MilestoneConfig{{Title: "tour"}},
		})
	})
	require.NoError(t, err)

	q, err := c.Quest(addr)
	require.NoError(t, err)
	require.NotNil(t, q)
	status, err := q.Status()
	require.NoError(t, err)
	assert.Equal(t, quest.StatusActive, status)

	// a rebound state resolves the same quest
	q, err = Bind(st).Quest(addr)
	require.NoError(t, err)
	assert.NotNil(t, q)

	q, err = c.Quest(datagen.RandAddress())
	require.NoError(t, err)
	assert.Nil(t, q)
}
