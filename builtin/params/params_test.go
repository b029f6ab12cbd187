// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package params

import (
	"math/big"
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

func TestParamsGetSet(t *testing.T) {
	st := state.New(nil)
	a := acl.New(forge.BytesToAddress([]byte("acl")), st)
	p := New(forge.BytesToAddress([]byte("par")), st, a)

	v, err := p.Get(forge.ParamMinStake)
	require.NoError(t, err)
	assert.Equal(t, forge.ParamMinStake.Default, v)

	require.NoError(t, p.Init(forge.ParamDisputeQuorum, big.NewInt(5)))
	n, err := p.Uint64(forge.ParamDisputeQuorum)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), n)

	// explicit zero is kept, not replaced by the default
	require.NoError(t, p.Init(forge.ParamSpeedBonusDecay, big.NewInt(0)))
	v, err = p.Get(forge.ParamSpeedBonusDecay)
	require.NoError(t, err)
	assert.Equal(t, 0, v.Sign())

	assert.ErrorIs(t, p.Init(forge.ParamMinStake, big.NewInt(-1)), reverts.ErrInvalidAmount)
}

func TestParamsSetRequiresAdmin(t *testing.T) {
	st := state.New(nil)
	a := acl.New(forge.BytesToAddress([]byte("acl")), st)
	p := New(forge.BytesToAddress([]byte("par")), st, a)
	admin := datagen.RandAddress()
	require.NoError(t, a.Init(acl.Admin, admin))

	set := func(sender forge.Address) (*xenv.Environment, error) {
		env := xenv.New(st, &xenv.BlockContext{}, &xenv.TransactionContext{Origin: sender}, nil, false)
		return env, env.Call(p.Address(), nil, func(env *xenv.Environment) error {
			return p.Set(env, forge.ParamDisputeFee, forge.Ether)
		})
	}

	_, err := set(datagen.RandAddress())
	assert.ErrorIs(t, err, reverts.ErrUnauthorized)

	env, err := set(admin)
	require.NoError(t, err)
	assert.Len(t, env.Events().Named("ParamSet"), 1)

	v, err := p.Get(forge.ParamDisputeFee)
	require.NoError(t, err)
	assert.Equal(t, forge.Ether, v)
}

func TestParamsUint64Overflow(t *testing.T) {
	st := state.New(nil)
	p := New(forge.BytesToAddress([]byte("par")), st, nil)
	require.NoError(t, p.Init(forge.ParamMaxParticipants, new(big.Int).Lsh(big.NewInt(1), 70)))
	_, err := p.Uint64(forge.ParamMaxParticipants)
	assert.ErrorIs(t, err, forge.ErrOverflow)
}
