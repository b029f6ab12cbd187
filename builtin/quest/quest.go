// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package quest implements the per-quest state machine. Every quest instance is bound to its
// own address; participants stake through the ledger, milestones are verified by the oracle.
package quest

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/questforge/forge/builtin/acl"
	"github.com/questforge/forge/builtin/oracle/evidence"
	"github.com/questforge/forge/builtin/params"
	"github.com/questforge/forge/builtin/reverts"
	"github.com/questforge/forge/builtin/solidity"
	"github.com/questforge/forge/forge"
	"github.com/questforge/forge/log"
	"github.com/questforge/forge/state"
	"github.com/questforge/forge/xenv"
)

var logger = log.WithContext("pkg", "quest")

// Stakeable holds participant stakes and pays rewards out of the quest's pool.
type Stakeable interface {
	Address() forge.Address
	StakeFor(env *xenv.Environment, owner forge.Address, amount *big.Int, asset forge.Address) (forge.Bytes32, error)
	DistributeReward(env *xenv.Environment, quest, participant forge.Address, base *big.Int) (*big.Int, error)
	Slash(env *xenv.Environment, participant forge.Address, bps uint64) (*big.Int, error)
	Release(env *xenv.Environment, owner forge.Address) (*big.Int, error)
}

// Verifier rules on submitted evidence and calls the quest back.
type Verifier interface {
	Address() forge.Address
	RequestVerification(env *xenv.Environment, ref forge.Bytes32, typ string, threshold uint64) (*evidence.Evidence, error)
}

// Minter issues achievements to participants who complete a quest.
type Minter interface {
	Address() forge.Address
	MintAchievement(env *xenv.Environment, to forge.Address, title, description string) (uint64, error)
}

// Deps are the contracts a quest talks to.
type Deps struct {
	Ledger Stakeable
	Oracle Verifier
	NFT    Minter
	ACL    *acl.ACL
	Params *params.Params
}

// Quest implements native methods of one `Quest` contract instance.
type Quest struct {
	addr forge.Address
	repo *repository
	deps Deps
}

func New(addr forge.Address, state *state.State, deps Deps) *Quest {
	return &Quest{
		addr: addr,
		repo: newRepository(solidity.NewContext(addr, state)),
		deps: deps,
	}
}

func (q *Quest) Address() forge.Address { return q.addr }

//
// Getters - no state change
//

// Config returns nil before initialization.
func (q *Quest) Config() (*Config, error) {
	return q.repo.getConfig()
}

// Info returns nil before initialization.
func (q *Quest) Info() (*Info, error) {
	return q.repo.getInfo()
}

func (q *Quest) Status() (Status, error) {
	info, err := q.repo.getInfo()
	if err != nil || info == nil {
		return StatusCreated, err
	}
	return info.Status, nil
}

func (q *Quest) Participant(addr forge.Address) (*Participant, error) {
	return q.repo.getParticipant(addr)
}

func (q *Quest) Milestone(id uint64) (*Milestone, error) {
	return q.repo.getMilestone(id)
}

func (q *Quest) Milestones() ([]*Milestone, error) {
	cfg, err := q.repo.getConfig()
	if err != nil || cfg == nil {
		return nil, err
	}
	out := make([]*Milestone, 0, len(cfg.Milestones))
	for i := range uint64(len(cfg.Milestones)) {
		m, err := q.repo.getMilestone(i)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (q *Quest) Submission(id forge.Bytes32) (*Submission, error) {
	return q.repo.getSubmission(id)
}

// Participants lists the participants still active, in no particular order.
func (q *Quest) Participants() ([]forge.Address, error) {
	return q.repo.roster.All()
}

//
// internals
//

// loadActive loads the header of a running quest.
func (q *Quest) loadActive(now uint64) (*Info, *Config, error) {
	info, cfg, err := q.load()
	if err != nil {
		return nil, nil, err
	}
	if info.Status != StatusActive {
		return nil, nil, errors.WithMessagef(reverts.ErrInvalidStatus, "quest is %v", info.Status)
	}
	if now >= info.ExpiresAt {
		return nil, nil, errors.WithMessagef(reverts.ErrExpired, "quest expired at %d", info.ExpiresAt)
	}
	return info, cfg, nil
}

func (q *Quest) load() (*Info, *Config, error) {
	info, err := q.repo.getInfo()
	if err != nil {
		return nil, nil, err
	}
	if info == nil {
		return nil, nil, errors.WithMessagef(reverts.ErrUnknownQuest, "quest %v not initialized", q.addr)
	}
	cfg, err := q.repo.getConfig()
	if err != nil {
		return nil, nil, err
	}
	return info, cfg, nil
}

// requireAdmin passes the quest creator and ACL admins.
func (q *Quest) requireAdmin(sender forge.Address, cfg *Config) error {
	if sender == cfg.Creator {
		return nil
	}
	return errors.WithMessagef(q.deps.ACL.Require(acl.Admin, sender), "quest %v", q.addr)
}

// softRevert reports whether err is a revert a nested call may fail with without aborting the caller.
func softRevert(err error) bool {
	kind := reverts.KindOf(err)
	return kind != reverts.KindInternal && kind != reverts.KindArithmetic
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
