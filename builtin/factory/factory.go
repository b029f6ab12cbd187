// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package factory deploys quest instances and keeps the registry of quests.
package factory

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/questforge/forge/builtin/acl"
	"github.com/questforge/forge/builtin/ledger"
	"github.com/questforge/forge/builtin/nft"
	"github.com/questforge/forge/builtin/oracle"
	"github.com/questforge/forge/builtin/params"
	"github.com/questforge/forge/builtin/quest"
	"github.com/questforge/forge/builtin/reverts"
	"github.com/questforge/forge/builtin/solidity"
	"github.com/questforge/forge/forge"
	"github.com/questforge/forge/log"
	"github.com/questforge/forge/state"
	"github.com/questforge/forge/tx"
	"github.com/questforge/forge/xenv"
)

var logger = log.WithContext("pkg", "factory")

// Record is the registry entry of a quest.
type Record struct {
	Quest     forge.Address `json:"quest"`
	Creator   forge.Address `json:"creator"`
	Nonce     uint64        `json:"nonce"`
	CreatedAt uint64        `json:"createdAt"`
	Retired   bool          `json:"retired"`
}

type Deps struct {
	Ledger *ledger.Ledger
	Oracle *oracle.Oracle
	NFT    *nft.NFT
	ACL    *acl.ACL
	Params *params.Params
}

// Factory implements native methods of the `QuestFactory` contract.
type Factory struct {
	addr  forge.Address
	state *state.State
	repo  *repository
	deps  Deps
}

func New(addr forge.Address, state *state.State, deps Deps) *Factory {
	return &Factory{
		addr:  addr,
		state: state,
		repo:  newRepository(solidity.NewContext(addr, state)),
		deps:  deps,
	}
}

func (f *Factory) Address() forge.Address { return f.addr }

//
// Getters - no state change
//

// Bind returns the contract of a quest this factory created, nil for any other address.
func (f *Factory) Bind(addr forge.Address) (*quest.Quest, error) {
	rec, err := f.repo.getRecord(addr)
	if err != nil || rec == nil {
		return nil, err
	}
	return quest.New(addr, f.state, f.questDeps()), nil
}

// Requesters resolves oracle callbacks to the quests of this factory.
func (f *Factory) Requesters() oracle.Requesters {
	return oracle.RequestersFunc(func(addr forge.Address) (oracle.Verifiable, error) {
		q, err := f.Bind(addr)
		if err != nil || q == nil {
			return nil, err
		}
		return q, nil
	})
}

func (f *Factory) IsQuest(addr forge.Address) (bool, error) {
	rec, err := f.repo.getRecord(addr)
	return rec != nil, err
}

// Record returns nil for an unknown address.
func (f *Factory) Record(addr forge.Address) (*Record, error) {
	return f.repo.getRecord(addr)
}

// Quests lists the quests not yet retired, in no particular order.
func (f *Factory) Quests() ([]forge.Address, error) {
	return f.repo.active.All()
}

func (f *Factory) QuestsOf(creator forge.Address) ([]forge.Address, error) {
	return f.repo.byCreator(creator).All()
}

//
// Transactions
//

// CreateQuest deploys a quest for the caller. Native value sent along funds its reward reserve.
func (f *Factory) CreateQuest(env *xenv.Environment, cfg *quest.Config) (forge.Address, error) {
	creator := env.Caller()
	logger.Debug("creating quest", "creator", creator, "value", env.Value())

	if cfg == nil {
		return forge.Address{}, errors.WithMessage(reverts.ErrInvalidConfig, "missing config")
	}
	conf := *cfg
	conf.Creator = creator
	limits, err := f.limits()
	if err != nil {
		return forge.Address{}, err
	}
	if err := conf.Validate(limits); err != nil {
		logger.Info("create quest failed", "creator", creator, "error", err)
		return forge.Address{}, err
	}
	supported, err := f.deps.Ledger.IsSupported(conf.Asset)
	if err != nil {
		return forge.Address{}, err
	}
	if !supported {
		return forge.Address{}, errors.WithMessagef(reverts.ErrUnsupportedAsset, "asset %v", conf.Asset)
	}
	budget := env.Value()
	if budget.Sign() > 0 && !forge.IsNative(conf.Asset) {
		return forge.Address{}, errors.WithMessage(reverts.ErrIncorrectPayment, "native budget for a token quest")
	}
	maxQuests, err := f.deps.Params.Uint64(forge.ParamMaxQuestsPerCreator)
	if err != nil {
		return forge.Address{}, err
	}
	unlock, err := env.Lock()
	if err != nil {
		return forge.Address{}, err
	}
	defer unlock()

	owned, err := f.repo.byCreator(creator).Len()
	if err != nil {
		return forge.Address{}, err
	}
	if owned >= maxQuests {
		logger.Info("create quest failed", "creator", creator, "error", reverts.ErrMaxQuestsReached)
		return forge.Address{}, errors.WithMessagef(reverts.ErrMaxQuestsReached, "%d active quests", owned)
	}

	nonce, err := f.repo.nonce.Next()
	if err != nil {
		return forge.Address{}, err
	}
	addr := forge.CreateContractAddress(f.addr, nonce)
	rec := &Record{Quest: addr, Creator: creator, Nonce: nonce, CreatedAt: env.Now()}
	if err := f.repo.add(rec); err != nil {
		return forge.Address{}, err
	}
	if err := env.Log("QuestCreated", &questCreatedEvent{addr, creator, conf.Title, conf.Asset, conf.StakeAmount, budget},
		tx.AddressTopic(addr), tx.AddressTopic(creator)); err != nil {
		return forge.Address{}, err
	}

	if err := f.provision(env, addr, &conf, budget); err != nil {
		logger.Info("create quest failed", "creator", creator, "quest", addr, "error", err)
		return forge.Address{}, err
	}
	logger.Info("quest created", "quest", addr, "creator", creator, "title", conf.Title, "budget", budget)
	return addr, nil
}

// provision grants the new quest its roles, sets up its pool and initializes it.
func (f *Factory) provision(env *xenv.Environment, addr forge.Address, cfg *quest.Config, budget *big.Int) error {
	for _, role := range []acl.Role{acl.QuestContract, acl.Minter} {
		if err := env.Call(f.deps.ACL.Address(), nil, func(env *xenv.Environment) error {
			return f.deps.ACL.Grant(env, role, addr)
		}); err != nil {
			return err
		}
	}
	policy, err := f.deps.Ledger.DefaultPolicy()
	if err != nil {
		return err
	}
	if err := env.Call(f.deps.Ledger.Address(), nil, func(env *xenv.Environment) error {
		return f.deps.Ledger.ConfigurePool(env, addr, cfg.Asset, policy)
	}); err != nil {
		return err
	}
	if budget.Sign() > 0 {
		if _, err := xenv.Invoke(env, f.deps.Ledger.Address(), budget, func(env *xenv.Environment) (*big.Int, error) {
			return f.deps.Ledger.FundRewards(env, addr, cfg.Asset, budget)
		}); err != nil {
			return err
		}
	}
	q := quest.New(addr, f.state, f.questDeps())
	return env.Call(addr, nil, func(env *xenv.Environment) error {
		return q.Initialize(env, cfg, f.deps.Ledger.Address(), f.deps.Oracle.Address(), f.deps.NFT.Address())
	})
}

// RetireQuest drops a closed quest from the registry of active quests. Admin only.
// Retired quests still receive oracle callbacks.
func (f *Factory) RetireQuest(env *xenv.Environment, addr forge.Address) error {
	logger.Debug("retiring quest", "quest", addr, "sender", env.Caller())

	if err := f.deps.ACL.Require(acl.Admin, env.Caller()); err != nil {
		logger.Info("retire quest failed", "quest", addr, "error", err)
		return err
	}
	unlock, err := env.Lock()
	if err != nil {
		return err
	}
	defer unlock()

	rec, err := f.repo.getRecord(addr)
	if err != nil {
		return err
	}
	if rec == nil {
		return errors.WithMessagef(reverts.ErrUnknownQuest, "quest %v", addr)
	}
	if rec.Retired {
		return errors.WithMessagef(reverts.ErrInvalidStatus, "quest %v already retired", addr)
	}
	status, err := quest.New(addr, f.state, f.questDeps()).Status()
	if err != nil {
		return err
	}
	if !status.IsClosed() {
		return errors.WithMessagef(reverts.ErrInvalidStatus, "quest %v is %v", addr, status)
	}
	rec.Retired = true
	if err := f.repo.retire(rec); err != nil {
		return err
	}
	if err := env.Log("QuestRetired", &questRetiredEvent{addr, rec.Creator, status}, tx.AddressTopic(addr)); err != nil {
		return err
	}

	logger.Info("quest retired", "quest", addr, "status", status)
	return nil
}

func (f *Factory) questDeps() quest.Deps {
	return quest.Deps{
		Ledger: f.deps.Ledger,
		Oracle: f.deps.Oracle,
		NFT:    f.deps.NFT,
		ACL:    f.deps.ACL,
		Params: f.deps.Params,
	}
}

func (f *Factory) limits() (quest.Limits, error) {
	minStake, err := f.deps.Params.Get(forge.ParamMinStake)
	if err != nil {
		return quest.Limits{}, err
	}
	maxParticipants, err := f.deps.Params.Uint64(forge.ParamMaxParticipants)
	if err != nil {
		return quest.Limits{}, err
	}
	return quest.Limits{MinStake: minStake, MaxParticipants: maxParticipants}, nil
}
