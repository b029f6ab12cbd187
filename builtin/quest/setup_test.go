// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package quest

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/questforge/forge/builtin/acl"
	"github.com/questforge/forge/builtin/ledger"
	"github.com/questforge/forge/builtin/nft"
	"github.com/questforge/forge/builtin/oracle"
	"github.com/questforge/forge/builtin/params"
	"github.com/questforge/forge/forge"
	"github.com/questforge/forge/state"
	"github.com/questforge/forge/test/datagen"
	"github.com/questforge/forge/tx"
	"github.com/questforge/forge/xenv"
)

var (
	questAddr   = forge.BytesToAddress([]byte("quest"))
	factoryAddr = forge.BytesToAddress([]byte("factory"))
	ledgerAddr  = forge.BytesToAddress([]byte("ledger"))
	oracleAddr  = forge.BytesToAddress([]byte("oracle"))
	nftAddr     = forge.BytesToAddress([]byte("nft"))
	aclAddr     = forge.BytesToAddress([]byte("acl"))
	paramsAddr  = forge.BytesToAddress([]byte("params"))
)

type receivers map[forge.Address]xenv.Receiver

func (r receivers) ReceiverOf(addr forge.Address) xenv.Receiver { return r[addr] }

type testQuest struct {
	t         *testing.T
	st        *state.State
	acl       *acl.ACL
	params    *params.Params
	ledger    *ledger.Ledger
	oracle    *oracle.Oracle
	nft       *nft.NFT
	quest     *Quest
	receivers receivers
	now       uint64
	admin     forge.Address
	creator   forge.Address
	verifier  forge.Address
}

func newTestQuest(t *testing.T) *testQuest {
	st := state.New(nil)
	a := acl.New(aclAddr, st)
	p := params.New(paramsAddr, st, a)
	l := ledger.New(ledgerAddr, st, p, a)
	n := nft.New(nftAddr, st, a)
	tq := &testQuest{
		t:         t,
		st:        st,
		acl:       a,
		params:    p,
		ledger:    l,
		nft:       n,
		receivers: receivers{},
		now:       1_000_000,
		admin:     datagen.RandAddress(),
		verifier:  datagen.RandAddress(),
	}
	tq.oracle = oracle.New(oracleAddr, st, l, p, a, oracle.RequestersFunc(func(addr forge.Address) (oracle.Verifiable, error) {
		if addr == questAddr {
			return tq.quest, nil
		}
		return nil, nil
	}))
	tq.quest = New(questAddr, st, Deps{Ledger: l, Oracle: tq.oracle, NFT: n, ACL: a, Params: p})
	tq.creator = tq.user()

	for _, grant := range []struct {
		role acl.Role
		addr forge.Address
	}{
		{acl.Admin, tq.admin},
		{acl.Factory, factoryAddr},
		{acl.QuestContract, questAddr},
		{acl.Minter, questAddr},
		{acl.QuestContract, oracleAddr},
		{acl.Verifier, oracleAddr},
		{acl.Verifier, tq.verifier},
	} {
		require.NoError(t, a.Init(grant.role, grant.addr))
	}
	require.NoError(t, l.InitPool(oracleAddr, forge.NativeAsset, ledger.Policy{}, true))
	require.NoError(t, l.InitPool(questAddr, forge.NativeAsset, ledger.Policy{}, true))
	return tq
}

// defaultConfig is a two milestone quest staking 1 ether and paying half an ether on completion.
func (tq *testQuest) defaultConfig() *Config {
	return &Config{
		Creator:         tq.creator,
		Title:           "Run 100km",
		Description:     "Log ten runs of ten kilometers",
		Asset:           forge.NativeAsset,
		StakeAmount:     ether(1),
		RewardAmount:    milliEther(500),
		MaxParticipants: 10,
		Duration:        10 * forge.Day,
		Milestones: []MilestoneConfig{
			{Title: "first 50km", VerificationType: "gps"},
			{Title: "last 50km", VerificationType: "gps"},
		},
	}
}

// start initializes the quest with cfg, funds its reward reserve and
// registers one validator so submissions can be requested.
func (tq *testQuest) start(cfg *Config) {
	require.NoError(tq.t, tq.initialize(factoryAddr, cfg))
	tq.registerValidators(1)
	funder := tq.user()
	env := tq.env(funder)
	err := env.Call(ledgerAddr, ether(10), func(env *xenv.Environment) error {
		_, err := tq.ledger.FundRewards(env, questAddr, forge.NativeAsset, ether(10))
		return err
	})
	require.NoError(tq.t, err)
}

func (tq *testQuest) initialize(via forge.Address, cfg *Config) error {
	env := tq.env(datagen.RandAddress())
	return env.Call(via, nil, func(env *xenv.Environment) error {
		return env.Call(questAddr, nil, func(env *xenv.Environment) error {
			return tq.quest.Initialize(env, cfg, ledgerAddr, oracleAddr, nftAddr)
		})
	})
}

func (tq *testQuest) user() forge.Address {
	addr := datagen.RandAddress()
	require.NoError(tq.t, tq.st.AddBalance(forge.NativeAsset, addr, ether(100)))
	return addr
}

func (tq *testQuest) env(origin forge.Address) *xenv.Environment {
	return xenv.New(tq.st, &xenv.BlockContext{Time: tq.now}, &xenv.TransactionContext{Origin: origin}, tq.receivers, false)
}

// call runs fn as a transaction from origin into the quest.
func (tq *testQuest) call(origin forge.Address, value *big.Int, fn func(env *xenv.Environment) error) (tx.Events, error) {
	env := tq.env(origin)
	err := env.Call(questAddr, value, fn)
	return env.Events(), err
}

func (tq *testQuest) join(user forge.Address) error {
	_, err := tq.call(user, forge.Ether, func(env *xenv.Environment) error {
		_, err := tq.quest.JoinQuest(env)
		return err
	})
	return err
}

// joined enrolls n fresh participants.
func (tq *testQuest) joined(n int) []forge.Address {
	users := make([]forge.Address, n)
	for i := range users {
		users[i] = tq.user()
		require.NoError(tq.t, tq.join(users[i]))
	}
	return users
}

func (tq *testQuest) submit(user forge.Address, milestone uint64) (forge.Bytes32, error) {
	var id forge.Bytes32
	_, err := tq.call(user, nil, func(env *xenv.Environment) (err error) {
		id, err = tq.quest.SubmitEvidence(env, milestone, datagen.RandomHash(), "ipfs://run")
		return
	})
	return id, err
}

func (tq *testQuest) verify(verifier forge.Address, id forge.Bytes32, approved bool) error {
	_, err := tq.call(verifier, nil, func(env *xenv.Environment) error {
		return tq.quest.VerifyEvidence(env, id, approved)
	})
	return err
}

// completeAll walks user through every milestone with the manual verifier.
func (tq *testQuest) completeAll(user forge.Address) {
	cfg, err := tq.quest.Config()
	require.NoError(tq.t, err)
	for i := range uint64(len(cfg.Milestones)) {
		id, err := tq.submit(user, i)
		require.NoError(tq.t, err)
		require.NoError(tq.t, tq.verify(tq.verifier, id, true))
	}
}

func (tq *testQuest) registerValidators(n int) []forge.Address {
	vals := make([]forge.Address, n)
	for i := range vals {
		vals[i] = tq.user()
		env := tq.env(vals[i])
		err := env.Call(oracleAddr, forge.Ether, func(env *xenv.Environment) error {
			return tq.oracle.RegisterValidator(env, forge.Ether)
		})
		require.NoError(tq.t, err)
	}
	return vals
}

func (tq *testQuest) end(sender forge.Address) (Status, error) {
	var status Status
	_, err := tq.call(sender, nil, func(env *xenv.Environment) (err error) {
		status, err = tq.quest.EndQuest(env)
		return
	})
	return status, err
}

func (tq *testQuest) withdraw(user forge.Address) (*big.Int, error) {
	var slashed *big.Int
	_, err := tq.call(user, nil, func(env *xenv.Environment) (err error) {
		slashed, err = tq.quest.WithdrawQuest(env)
		return
	})
	return slashed, err
}

func (tq *testQuest) participant(addr forge.Address) *Participant {
	p, err := tq.quest.Participant(addr)
	require.NoError(tq.t, err)
	require.NotNil(tq.t, p)
	return p
}

func (tq *testQuest) status() Status {
	s, err := tq.quest.Status()
	require.NoError(tq.t, err)
	return s
}

func (tq *testQuest) balance(addr forge.Address) *big.Int {
	b, err := tq.st.GetBalance(forge.NativeAsset, addr)
	require.NoError(tq.t, err)
	return b
}

func ether(n int64) *big.Int {
	return new(big.Int).Mul(forge.Ether, big.NewInt(n))
}

// milliEther returns n / 1000 ether.
func milliEther(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(1e15), big.NewInt(n))
}
