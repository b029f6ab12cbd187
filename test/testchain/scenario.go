// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package testchain

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/questforge/forge/builtin/quest"
	"github.com/questforge/forge/forge"
	"github.com/questforge/forge/test/datagen"
)

// NewQuestConfig returns a native quest with one milestone, staking 1 ether.
func NewQuestConfig(title string) *quest.Config {
	return &quest.Config{
		Title:           title,
		Asset:           forge.NativeAsset,
		StakeAmount:     new(big.Int).Set(forge.Ether),
		RewardAmount:    new(big.Int).Div(forge.Ether, big.NewInt(10)),
		MaxParticipants: 10,
		Duration:        30 * forge.Day,
		Milestones:      []quest.MilestoneConfig{{Title: "finish line", VerificationType: "gps"}},
	}
}

// Scenario is a quest whose only participant completed it through one validator vote.
type Scenario struct {
	Creator    forge.Address
	User       forge.Address
	Validator  forge.Address
	Quest      forge.Address
	Submission forge.Bytes32
}

// SeedScenario plays a quest from creation to a verified submission, using dev accounts 1 to 3.
func (c *Chain) SeedScenario() (*Scenario, error) {
	accs := c.Accounts()
	s := &Scenario{Creator: accs[1].Address, User: accs[2].Address, Validator: accs[3].Address}

	var err error
	if s.Quest, err = c.CreateQuest(s.Creator, NewQuestConfig("Run a marathon"), forge.Ether); err != nil {
		return nil, errors.Wrap(err, "create quest")
	}
	if err := c.RegisterValidator(s.Validator, forge.Ether); err != nil {
		return nil, errors.Wrap(err, "register validator")
	}
	if err := c.Join(s.User, s.Quest); err != nil {
		return nil, errors.Wrap(err, "join")
	}
	c.Advance(forge.Hour)
	if s.Submission, err = c.Submit(s.User, s.Quest, 0, datagen.RandomHash(), "ipfs://finish"); err != nil {
		return nil, errors.Wrap(err, "submit")
	}
	if err := c.Vote(s.Validator, s.Submission, true, 90); err != nil {
		return nil, errors.Wrap(err, "vote")
	}
	return s, nil
}
