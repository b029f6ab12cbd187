// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package oracle

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/questforge/forge/builtin/acl"
	"github.com/questforge/forge/builtin/ledger"
	"github.com/questforge/forge/builtin/oracle/evidence"
	"github.com/questforge/forge/builtin/params"
	"github.com/questforge/forge/forge"
	"github.com/questforge/forge/state"
	"github.com/questforge/forge/test/datagen"
	"github.com/questforge/forge/tx"
	"github.com/questforge/forge/xenv"
)

var (
	oracleAddr = forge.BytesToAddress([]byte("oracle"))
	ledgerAddr = forge.BytesToAddress([]byte("ledger"))
	aclAddr    = forge.BytesToAddress([]byte("acl"))
	paramsAddr = forge.BytesToAddress([]byte("params"))
)

type receivers map[forge.Address]xenv.Receiver

func (r receivers) ReceiverOf(addr forge.Address) xenv.Receiver { return r[addr] }

type result struct {
	id       forge.Bytes32
	approved bool
	dispute  bool
}

// fakeQuest requests verifications and records the callbacks it gets.
type fakeQuest struct {
	addr    forge.Address
	results []result
	fail    error
}

func (q *fakeQuest) Address() forge.Address { return q.addr }

func (q *fakeQuest) VerifyEvidence(env *xenv.Environment, id forge.Bytes32, approved bool) error {
	if q.fail != nil {
		return q.fail
	}
	q.results = append(q.results, result{id, approved, false})
	return nil
}

func (q *fakeQuest) ApplyDisputeOutcome(env *xenv.Environment, id forge.Bytes32, approved bool) error {
	if q.fail != nil {
		return q.fail
	}
	q.results = append(q.results, result{id, approved, true})
	return nil
}

type testOracle struct {
	t         *testing.T
	st        *state.State
	acl       *acl.ACL
	params    *params.Params
	ledger    *ledger.Ledger
	oracle    *Oracle
	receivers receivers
	now       uint64
	admin     forge.Address
	quest     *fakeQuest
}

func newTestOracle(t *testing.T) *testOracle {
	st := state.New(nil)
	a := acl.New(aclAddr, st)
	p := params.New(paramsAddr, st, a)
	l := ledger.New(ledgerAddr, st, p, a)
	to := &testOracle{
		t:         t,
		st:        st,
		acl:       a,
		params:    p,
		ledger:    l,
		receivers: receivers{},
		now:       1_000_000,
		admin:     datagen.RandAddress(),
		quest:     &fakeQuest{addr: datagen.RandAddress()},
	}
	to.oracle = New(oracleAddr, st, l, p, a, RequestersFunc(func(addr forge.Address) (Verifiable, error) {
		if addr == to.quest.addr {
			return to.quest, nil
		}
		return nil, nil
	}))
	require.NoError(t, a.Init(acl.Admin, to.admin))
	require.NoError(t, a.Init(acl.QuestContract, oracleAddr))
	require.NoError(t, a.Init(acl.Verifier, oracleAddr))
	require.NoError(t, l.InitPool(oracleAddr, forge.NativeAsset, ledger.Policy{}, true))
	return to
}

func (to *testOracle) user() forge.Address {
	addr := datagen.RandAddress()
	require.NoError(to.t, to.st.AddBalance(forge.NativeAsset, addr, ether(100)))
	return addr
}

func (to *testOracle) env(origin forge.Address) *xenv.Environment {
	return xenv.New(to.st, &xenv.BlockContext{Time: to.now}, &xenv.TransactionContext{Origin: origin}, to.receivers, false)
}

// call runs fn as a transaction from origin into the oracle.
func (to *testOracle) call(origin forge.Address, value *big.Int, fn func(env *xenv.Environment) error) (tx.Events, error) {
	env := to.env(origin)
	err := env.Call(oracleAddr, value, fn)
	return env.Events(), err
}

// request asks for verification of a fresh evidence from the fake quest and returns its id.
func (to *testOracle) request(threshold uint64) forge.Bytes32 {
	ref := datagen.RandomHash()
	require.NoError(to.t, to.requestRef(to.quest.addr, ref, threshold))
	return evidence.ID(to.quest.addr, ref)
}

// requestRef asks for verification of ref on behalf of requester.
func (to *testOracle) requestRef(requester forge.Address, ref forge.Bytes32, threshold uint64) error {
	env := to.env(datagen.RandAddress())
	return env.Call(requester, nil, func(env *xenv.Environment) error {
		return env.Call(oracleAddr, nil, func(env *xenv.Environment) error {
			_, err := to.oracle.RequestVerification(env, ref, "photo", threshold)
			return err
		})
	})
}

func (to *testOracle) register(n int) []forge.Address {
	vals := make([]forge.Address, n)
	for i := range vals {
		vals[i] = to.user()
		_, err := to.call(vals[i], forge.Ether, func(env *xenv.Environment) error {
			return to.oracle.RegisterValidator(env, forge.Ether)
		})
		require.NoError(to.t, err)
	}
	return vals
}

func (to *testOracle) vote(v forge.Address, id forge.Bytes32, approve bool, confidence uint64) error {
	_, err := to.call(v, nil, func(env *xenv.Environment) error {
		return to.oracle.CastVote(env, id, approve, confidence, "looks right")
	})
	return err
}

func (to *testOracle) fundReserve(amount *big.Int) {
	funder := to.user()
	env := to.env(funder)
	err := env.Call(ledgerAddr, amount, func(env *xenv.Environment) error {
		_, err := to.ledger.FundRewards(env, oracleAddr, forge.NativeAsset, amount)
		return err
	})
	require.NoError(to.t, err)
}

func (to *testOracle) dispute(challenger forge.Address, id forge.Bytes32) (forge.Bytes32, error) {
	var disputeID forge.Bytes32
	_, err := to.call(challenger, to.disputeFee(), func(env *xenv.Environment) (err error) {
		disputeID, err = to.oracle.CreateDispute(env, id, "the photo is staged", "ipfs://proof")
		return
	})
	return disputeID, err
}

func (to *testOracle) review(reviewer forge.Address, id forge.Bytes32, uphold bool) error {
	_, err := to.call(reviewer, nil, func(env *xenv.Environment) error {
		return to.oracle.ResolveDispute(env, id, uphold, "reviewed")
	})
	return err
}

func (to *testOracle) disputeFee() *big.Int {
	fee, err := to.params.Get(forge.ParamDisputeFee)
	require.NoError(to.t, err)
	return fee
}

func (to *testOracle) balance(addr forge.Address) *big.Int {
	b, err := to.st.GetBalance(forge.NativeAsset, addr)
	require.NoError(to.t, err)
	return b
}

func (to *testOracle) evidence(id forge.Bytes32) *evidence.Evidence {
	e, err := to.oracle.GetEvidence(id)
	require.NoError(to.t, err)
	require.NotNil(to.t, e)
	return e
}

func (to *testOracle) reputation(addr forge.Address) uint64 {
	v, err := to.oracle.GetValidator(addr)
	require.NoError(to.t, err)
	return v.Reputation
}

func ether(n int64) *big.Int {
	return new(big.Int).Mul(forge.Ether, big.NewInt(n))
}

// milliEther returns n / 1000 ether.
func milliEther(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(1e15), big.NewInt(n))
}
