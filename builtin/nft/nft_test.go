// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package nft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questforge/forge/builtin/acl"
	"github.com/questforge/forge/builtin/reverts"
	"github.com/questforge/forge/forge"
	"github.com/questforge/forge/state"
	"github.com/questforge/forge/test/datagen"
	"github.com/questforge/forge/xenv"
)

var (
	nftAddr = forge.BytesToAddress([]byte("nft"))
	aclAddr = forge.BytesToAddress([]byte("acl"))
)

func mint(st *state.State, n *NFT, quest, to forge.Address, title string) (uint64, error) {
	env := xenv.New(st, &xenv.BlockContext{Time: 42}, &xenv.TransactionContext{Origin: datagen.RandAddress()}, nil, false)
	return xenv.Invoke(env, quest, nil, func(env *xenv.Environment) (uint64, error) {
		return xenv.Invoke(env, nftAddr, nil, func(env *xenv.Environment) (uint64, error) {
			return n.MintAchievement(env, to, title, "finished every milestone")
		})
	})
}

func TestMintAchievement(t *testing.T) {
	st := state.New(nil)
	a := acl.New(aclAddr, st)
	n := New(nftAddr, st, a)
	quest := datagen.RandAddress()
	require.NoError(t, a.Init(acl.Minter, quest))

	alice, bob := datagen.RandAddress(), datagen.RandAddress()
	id1, err := mint(st, n, quest, alice, "Marathon")
	require.NoError(t, err)
	id2, err := mint(st, n, quest, bob, "Marathon")
	require.NoError(t, err)
	id3, err := mint(st, n, quest, alice, "Sprint")
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2, 3}, []uint64{id1, id2, id3})

	got, err := n.Get(id1)
	require.NoError(t, err)
	assert.Equal(t, alice, got.Owner)
	assert.Equal(t, quest, got.Quest)
	assert.Equal(t, uint64(42), got.MintedAt)

	balance, err := n.BalanceOf(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), balance)

	tokens, err := n.TokensOf(alice)
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, "Marathon", tokens[0].Title)
	assert.Equal(t, "Sprint", tokens[1].Title)

	missing, err := n.Get(99)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMintAchievementErrors(t *testing.T) {
	st := state.New(nil)
	a := acl.New(aclAddr, st)
	n := New(nftAddr, st, a)
	quest := datagen.RandAddress()
	require.NoError(t, a.Init(acl.Minter, quest))

	_, err := mint(st, n, datagen.RandAddress(), datagen.RandAddress(), "Marathon")
	assert.ErrorIs(t, err, reverts.ErrUnauthorized)

	_, err = mint(st, n, quest, forge.Address{}, "Marathon")
	assert.ErrorIs(t, err, reverts.ErrInvalidAddress)

	_, err = mint(st, n, quest, datagen.RandAddress(), "")
	assert.ErrorIs(t, err, reverts.ErrInvalidConfig)

	// failed mints do not consume ids
	id, err := mint(st, n, quest, datagen.RandAddress(), "Marathon")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)
}
