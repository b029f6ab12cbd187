// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package quest

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/questforge/forge/builtin/reverts"
	"github.com/questforge/forge/forge"
)

// Limits bound the configs a quest accepts.
type Limits struct {
	MinStake        *big.Int
	MaxParticipants uint64
}

// Validate checks c against limits.
func (c *Config) Validate(limits Limits) error {
	switch {
	case c == nil:
		return errors.WithMessage(reverts.ErrInvalidConfig, "missing config")
	case c.Creator.IsZero():
		return errors.WithMessage(reverts.ErrInvalidAddress, "creator")
	case c.Title == "":
		return errors.WithMessage(reverts.ErrInvalidConfig, "empty title")
	case len(c.Milestones) == 0:
		return errors.WithMessage(reverts.ErrInvalidConfig, "no milestones")
	case len(c.Milestones) > forge.MaxMilestones:
		return errors.WithMessagef(reverts.ErrInvalidConfig, "%d milestones, at most %d", len(c.Milestones), forge.MaxMilestones)
	case c.Duration == 0:
		return errors.WithMessage(reverts.ErrInvalidConfig, "zero duration")
	case c.StakeAmount == nil || c.StakeAmount.Sign() <= 0:
		return errors.WithMessage(reverts.ErrInvalidAmount, "stake amount")
	case limits.MinStake != nil && c.StakeAmount.Cmp(limits.MinStake) < 0:
		return errors.WithMessagef(reverts.ErrInsufficientAmount, "stake %v below minimum %v", c.StakeAmount, limits.MinStake)
	case c.RewardAmount != nil && c.RewardAmount.Sign() < 0:
		return errors.WithMessage(reverts.ErrInvalidAmount, "reward amount")
	case c.MaxParticipants == 0:
		return errors.WithMessage(reverts.ErrInvalidConfig, "zero participants")
	case limits.MaxParticipants > 0 && c.MaxParticipants > limits.MaxParticipants:
		return errors.WithMessagef(reverts.ErrInvalidConfig, "%d participants, at most %d", c.MaxParticipants, limits.MaxParticipants)
	}
	for i, m := range c.Milestones {
		if m.Title == "" {
			return errors.WithMessagef(reverts.ErrInvalidConfig, "milestone %d has no title", i)
		}
		if m.Deadline > c.Duration {
			return errors.WithMessagef(reverts.ErrInvalidConfig, "milestone %d deadline past quest end", i)
		}
	}
	return nil
}

func (c *Config) reward() *big.Int {
	if c.RewardAmount == nil {
		return new(big.Int)
	}
	return c.RewardAmount
}
