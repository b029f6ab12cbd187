// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/questforge/forge/builtin/acl"
	"github.com/questforge/forge/builtin/params"
	"github.com/questforge/forge/forge"
	"github.com/questforge/forge/state"
	"github.com/questforge/forge/test/datagen"
	"github.com/questforge/forge/tx"
	"github.com/questforge/forge/xenv"
)

var (
	ledgerAddr = forge.BytesToAddress([]byte("ledger"))
	aclAddr    = forge.BytesToAddress([]byte("acl"))
	paramsAddr = forge.BytesToAddress([]byte("params"))
	token      = forge.BytesToAddress([]byte("token"))
)

type receivers map[forge.Address]xenv.Receiver

func (r receivers) ReceiverOf(addr forge.Address) xenv.Receiver { return r[addr] }

type testLedger struct {
	t         *testing.T
	st        *state.State
	acl       *acl.ACL
	ledger    *Ledger
	receivers receivers
	now       uint64
	admin     forge.Address
	quest     forge.Address // holds the quest-contract role
	factory   forge.Address
}

func newTestLedger(t *testing.T) *testLedger {
	st := state.New(nil)
	a := acl.New(aclAddr, st)
	p := params.New(paramsAddr, st, a)
	tl := &testLedger{
		t:         t,
		st:        st,
		acl:       a,
		ledger:    New(ledgerAddr, st, p, a),
		receivers: receivers{},
		now:       1_000_000,
		admin:     datagen.RandAddress(),
		quest:     datagen.RandAddress(),
		factory:   datagen.RandAddress(),
	}
	require.NoError(t, a.Init(acl.Admin, tl.admin))
	require.NoError(t, a.Init(acl.QuestContract, tl.quest))
	require.NoError(t, a.Init(acl.Factory, tl.factory))
	require.NoError(t, tl.ledger.InitAsset(token))
	return tl
}

// fund gives addr native and token balances.
func (tl *testLedger) fund(addr forge.Address, amount *big.Int) forge.Address {
	require.NoError(tl.t, tl.st.AddBalance(forge.NativeAsset, addr, amount))
	require.NoError(tl.t, tl.st.AddBalance(token, addr, amount))
	return addr
}

func (tl *testLedger) user() forge.Address {
	return tl.fund(datagen.RandAddress(), new(big.Int).Mul(forge.Ether, big.NewInt(100)))
}

// call runs fn as a transaction from origin calling the ledger directly.
// A failed call leaves no effects behind.
func (tl *testLedger) call(origin forge.Address, value *big.Int, fn func(env *xenv.Environment) error) (tx.Events, error) {
	env := xenv.New(tl.st, &xenv.BlockContext{Time: tl.now}, &xenv.TransactionContext{Origin: origin}, tl.receivers, false)
	err := env.Call(ledgerAddr, value, fn)
	return env.Events(), err
}

// callVia runs fn as a call from contract `via` into the ledger, within a transaction of origin.
func (tl *testLedger) callVia(origin, via forge.Address, value *big.Int, fn func(env *xenv.Environment) error) (tx.Events, error) {
	env := xenv.New(tl.st, &xenv.BlockContext{Time: tl.now}, &xenv.TransactionContext{Origin: origin}, tl.receivers, false)
	err := env.Call(via, value, func(env *xenv.Environment) error {
		return env.Call(ledgerAddr, value, fn)
	})
	return env.Events(), err
}

// openPool creates an unmanaged pool for quest with the default policy, unless it exists.
func (tl *testLedger) openPool(quest forge.Address) forge.Address {
	pool, err := tl.ledger.Pool(quest)
	require.NoError(tl.t, err)
	if pool == nil {
		policy, err := tl.ledger.DefaultPolicy()
		require.NoError(tl.t, err)
		require.NoError(tl.t, tl.ledger.InitPool(quest, forge.NativeAsset, policy, false))
	}
	return quest
}

func (tl *testLedger) stake(owner, quest forge.Address, amount *big.Int) forge.Bytes32 {
	tl.openPool(quest)
	var id forge.Bytes32
	_, err := tl.call(owner, amount, func(env *xenv.Environment) (err error) {
		id, err = tl.ledger.Stake(env, quest, amount, forge.NativeAsset)
		return
	})
	require.NoError(tl.t, err)
	return id
}

func (tl *testLedger) fundRewards(quest forge.Address, amount *big.Int) {
	tl.openPool(quest)
	funder := tl.user()
	_, err := tl.call(funder, amount, func(env *xenv.Environment) error {
		_, err := tl.ledger.FundRewards(env, quest, forge.NativeAsset, amount)
		return err
	})
	require.NoError(tl.t, err)
}

func (tl *testLedger) balance(asset, addr forge.Address) *big.Int {
	b, err := tl.st.GetBalance(asset, addr)
	require.NoError(tl.t, err)
	return b
}

// checkConservation asserts the ledger's balance is fully accounted for.
func (tl *testLedger) checkConservation(asset forge.Address) {
	t := tl.t
	totals, err := tl.ledger.Totals(asset)
	require.NoError(t, err)
	treasury, err := tl.ledger.Treasury(asset)
	require.NoError(t, err)

	held := new(big.Int).Add(totals.TotalStaked, treasury)
	held.Add(held, totals.TotalReserves)
	held.Add(held, totals.TotalEscrowed)
	held.Add(held, totals.TotalClaimable)

	bal := tl.balance(asset, ledgerAddr)
	require.Equal(t, 0, bal.Cmp(held), "balance %v, accounted %v", bal, held)
	require.Equal(t, 0, bal.Cmp(new(big.Int).Sub(totals.Deposits, totals.Releases)), "balance != deposits - releases")
}

func ether(n int64) *big.Int {
	return new(big.Int).Mul(forge.Ether, big.NewInt(n))
}
