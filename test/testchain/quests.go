// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package testchain

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/questforge/forge/builtin"
	"github.com/questforge/forge/builtin/quest"
	"github.com/questforge/forge/forge"
	"github.com/questforge/forge/xenv"
)

// CreateQuest creates a quest from creator with a native reward budget.
func (c *Chain) CreateQuest(creator forge.Address, cfg *quest.Config, budget *big.Int) (forge.Address, error) {
	var addr forge.Address
	_, err := c.MintCall(creator, builtin.Factory.Address, budget, func(env *xenv.Environment, contracts *builtin.Contracts) error {
		var err error
		addr, err = contracts.Factory.CreateQuest(env, cfg)
		return err
	})
	return addr, err
}

// RegisterValidator registers v with a native stake.
func (c *Chain) RegisterValidator(v forge.Address, stake *big.Int) error {
	_, err := c.MintCall(v, builtin.Oracle.Address, stake, func(env *xenv.Environment, contracts *builtin.Contracts) error {
		return contracts.Oracle.RegisterValidator(env, stake)
	})
	return err
}

// Join joins user into a native quest, paying its stake.
func (c *Chain) Join(user, addr forge.Address) error {
	cfg, err := c.QuestConfig(addr)
	if err != nil {
		return err
	}
	return c.questCall(user, addr, cfg.StakeAmount, func(env *xenv.Environment, q *quest.Quest) error {
		_, err := q.JoinQuest(env)
		return err
	})
}

// Submit submits evidence for a milestone and returns the submission id.
func (c *Chain) Submit(user, addr forge.Address, milestone uint64, content forge.Bytes32, reference string) (forge.Bytes32, error) {
	var id forge.Bytes32
	err := c.questCall(user, addr, nil, func(env *xenv.Environment, q *quest.Quest) error {
		var err error
		id, err = q.SubmitEvidence(env, milestone, content, reference)
		return err
	})
	return id, err
}

// Vote casts a validator vote on a submission.
func (c *Chain) Vote(v forge.Address, id forge.Bytes32, approve bool, confidence uint64) error {
	_, err := c.MintCall(v, builtin.Oracle.Address, nil, func(env *xenv.Environment, contracts *builtin.Contracts) error {
		return contracts.Oracle.CastVote(env, id, approve, confidence, "")
	})
	return err
}

// EndQuest ends a quest on behalf of sender.
func (c *Chain) EndQuest(sender, addr forge.Address) (quest.Status, error) {
	var status quest.Status
	err := c.questCall(sender, addr, nil, func(env *xenv.Environment, q *quest.Quest) error {
		var err error
		status, err = q.EndQuest(env)
		return err
	})
	return status, err
}

// QuestConfig returns the config of a quest.
func (c *Chain) QuestConfig(addr forge.Address) (*quest.Config, error) {
	var cfg *quest.Config
	err := c.View(func(contracts *builtin.Contracts) error {
		q, err := bind(contracts, addr)
		if err != nil {
			return err
		}
		cfg, err = q.Config()
		return err
	})
	return cfg, err
}

func (c *Chain) questCall(origin, addr forge.Address, value *big.Int, fn func(env *xenv.Environment, q *quest.Quest) error) error {
	_, err := c.MintCall(origin, addr, value, func(env *xenv.Environment, contracts *builtin.Contracts) error {
		q, err := bind(contracts, addr)
		if err != nil {
			return err
		}
		return fn(env, q)
	})
	return err
}

func bind(contracts *builtin.Contracts, addr forge.Address) (*quest.Quest, error) {
	q, err := contracts.Quest(addr)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, errors.Errorf("no quest at %v", addr)
	}
	return q, nil
}
