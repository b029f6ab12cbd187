// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/questforge/forge/builtin/acl"
	"github.com/questforge/forge/builtin/reverts"
	"github.com/questforge/forge/forge"
	"github.com/questforge/forge/tx"
	"github.com/questforge/forge/xenv"
)

// DistributeReward pays base plus the pool's bonuses to participant out of the quest's reserve.
// Only a quest contract may pay out of its own pool.
func (l *Ledger) DistributeReward(env *xenv.Environment, quest, participant forge.Address, base *big.Int) (*big.Int, error) {
	logger.Debug("distributing reward", "quest", quest, "participant", participant, "base", base, "sender", env.Caller())

	if err := l.acl.Require(acl.QuestContract, env.Caller()); err != nil {
		return nil, err
	}
	if quest != env.Caller() {
		return nil, errors.WithMessagef(reverts.ErrUnauthorized, "%v may not pay from pool %v", env.Caller(), quest)
	}
	if base == nil || base.Sign() < 0 {
		return nil, errors.WithMessage(reverts.ErrInvalidAmount, "base reward")
	}
	if participant.IsZero() {
		return nil, errors.WithMessage(reverts.ErrInvalidAddress, "participant")
	}
	unlock, err := env.Lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	pool, err := l.repo.getPool(quest)
	if err != nil {
		return nil, err
	}
	if pool == nil {
		return nil, errors.WithMessagef(reverts.ErrUnknownPool, "pool %v", quest)
	}
	stake, err := l.repo.activeStakeOf(participant, quest)
	if err != nil {
		return nil, err
	}
	var elapsed uint64
	if stake != nil {
		elapsed = elapsedSince(env.Now(), stake.OpenedAt)
	}
	total, perf, speed, err := RewardTotal(base, pool.Policy, elapsed, stake != nil)
	if err != nil {
		return nil, reverts.Arithmetic(err)
	}
	if total.Cmp(pool.RewardReserve) > 0 {
		logger.Info("distribute reward failed", "quest", quest, "total", total, "reserve", pool.RewardReserve)
		return nil, errors.WithMessagef(reverts.ErrInsufficientReserve, "need %v, reserve %v", total, pool.RewardReserve)
	}

	totals, err := l.repo.getTotals(pool.Asset)
	if err != nil {
		return nil, err
	}
	if err := firstErr(
		subFrom(pool.RewardReserve, total),
		addTo(pool.TotalRewards, total),
		subFrom(totals.TotalReserves, total),
		addTo(totals.TotalRewards, total),
		addTo(totals.Releases, total),
	); err != nil {
		return nil, err
	}
	if stake != nil {
		if err := addTo(stake.RewardDebt, total); err != nil {
			return nil, err
		}
		stake.LastActivity = env.Now()
		if err := l.repo.updateStake(stake); err != nil {
			return nil, err
		}
	}
	if err := l.save(pool, totals); err != nil {
		return nil, err
	}
	if err := env.Log("RewardDistributed", &rewardDistributedEvent{quest, participant, base, perf, speed, total},
		tx.AddressTopic(quest), tx.AddressTopic(participant)); err != nil {
		return nil, err
	}
	if err := env.Transfer(pool.Asset, participant, total); err != nil {
		return nil, err
	}

	logger.Info("reward distributed", "quest", quest, "participant", participant, "total", total)
	return total, nil
}

// Slash forfeits bps of the participant's stake to the treasury and refunds the rest.
// A refund the owner refuses is credited for Claim, the slash stands either way.
// A quest contract slashes its own pool only, an admin slashes every unmanaged stake of the participant.
// Slashed stakes are deactivated. It returns the total amount slashed.
func (l *Ledger) Slash(env *xenv.Environment, participant forge.Address, bps uint64) (*big.Int, error) {
	logger.Debug("slashing", "participant", participant, "bps", bps, "sender", env.Caller())

	if bps > forge.BasisPoints {
		logger.Error("slash percentage out of range", "participant", participant, "bps", bps)
		return nil, errors.WithMessagef(reverts.ErrArithmetic, "slash of %d bps exceeds 100%%", bps)
	}
	stakes, err := l.slashable(env.Caller(), participant)
	if err != nil {
		logger.Info("slash failed", "participant", participant, "error", err)
		return nil, err
	}
	unlock, err := env.Lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	var (
		total   = new(big.Int)
		refunds = make([]*big.Int, len(stakes))
	)
	for i, s := range stakes {
		slashed, refund, err := l.slashStake(env, s, bps)
		if err != nil {
			return nil, err
		}
		refunds[i] = refund
		if err := addTo(total, slashed); err != nil {
			return nil, err
		}
	}
	// every stake is settled before any refund leaves the ledger
	for i, s := range stakes {
		if err := l.payOrCredit(env, s.Asset, s.Owner, refunds[i]); err != nil {
			return nil, err
		}
	}

	logger.Info("slashed", "participant", participant, "stakes", len(stakes), "slashed", total)
	return total, nil
}

func (l *Ledger) slashable(sender, participant forge.Address) ([]*Stake, error) {
	isQuest, err := l.acl.HasRole(acl.QuestContract, sender)
	if err != nil {
		return nil, err
	}
	if isQuest {
		s, err := l.repo.activeStakeOf(participant, sender)
		if err != nil || s == nil {
			return nil, err
		}
		return []*Stake{s}, nil
	}

	isAdmin, err := l.acl.HasRole(acl.Admin, sender)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		return nil, errors.WithMessagef(reverts.ErrUnauthorized, "%v may not slash", sender)
	}
	all, err := l.repo.activeStakesOf(participant)
	if err != nil {
		return nil, err
	}
	stakes := make([]*Stake, 0, len(all))
	for _, s := range all {
		pool, err := l.repo.getPool(s.Quest)
		if err != nil {
			return nil, err
		}
		if pool != nil && !pool.Managed {
			stakes = append(stakes, s)
		}
	}
	return stakes, nil
}

func (l *Ledger) slashStake(env *xenv.Environment, s *Stake, bps uint64) (slashed, refund *big.Int, err error) {
	if slashed, err = forge.ApplyBps(s.Amount, bps); err != nil {
		return nil, nil, reverts.Arithmetic(err)
	}
	refund = new(big.Int).Sub(s.Amount, slashed)

	pool, err := l.repo.getPool(s.Quest)
	if err != nil {
		return nil, nil, err
	}
	totals, err := l.repo.getTotals(s.Asset)
	if err != nil {
		return nil, nil, err
	}
	treasury, err := l.repo.getTreasury(s.Asset)
	if err != nil {
		return nil, nil, err
	}
	if err := firstErr(
		subFrom(pool.TotalStaked, s.Amount),
		addTo(pool.TotalSlashed, slashed),
		subFrom(totals.TotalStaked, s.Amount),
		addTo(totals.TotalSlashed, slashed),
		addTo(totals.Releases, refund),
		addTo(treasury, slashed),
	); err != nil {
		return nil, nil, err
	}
	pool.Participants--
	s.LastActivity = env.Now()

	if err := l.repo.closeStake(s); err != nil {
		return nil, nil, err
	}
	if err := firstErr(l.save(pool, totals), l.repo.setTreasury(s.Asset, treasury)); err != nil {
		return nil, nil, err
	}
	if err := env.Log("Slashed", &slashedEvent{s.ID, s.Owner, s.Quest, bps, slashed, refund},
		s.ID, tx.AddressTopic(s.Owner), tx.AddressTopic(s.Quest)); err != nil {
		return nil, nil, err
	}
	return slashed, refund, nil
}

// Seize moves bps of owner's stake in the caller's pool to the treasury, leaving the rest staked.
// The stake is deactivated once nothing remains.
func (l *Ledger) Seize(env *xenv.Environment, owner forge.Address, bps uint64) (*big.Int, error) {
	quest := env.Caller()
	logger.Debug("seizing", "owner", owner, "quest", quest, "bps", bps)

	if bps > forge.BasisPoints {
		logger.Error("seize percentage out of range", "owner", owner, "bps", bps)
		return nil, errors.WithMessagef(reverts.ErrArithmetic, "seize of %d bps exceeds 100%%", bps)
	}
	if err := l.acl.Require(acl.QuestContract, quest); err != nil {
		return nil, err
	}
	unlock, err := env.Lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	s, pool, err := l.poolStake(owner, quest)
	if err != nil {
		logger.Info("seize failed", "owner", owner, "quest", quest, "error", err)
		return nil, err
	}
	seized, err := forge.ApplyBps(s.Amount, bps)
	if err != nil {
		return nil, reverts.Arithmetic(err)
	}
	totals, err := l.repo.getTotals(s.Asset)
	if err != nil {
		return nil, err
	}
	treasury, err := l.repo.getTreasury(s.Asset)
	if err != nil {
		return nil, err
	}
	if err := firstErr(
		subFrom(s.Amount, seized),
		subFrom(pool.TotalStaked, seized),
		addTo(pool.TotalSlashed, seized),
		subFrom(totals.TotalStaked, seized),
		addTo(totals.TotalSlashed, seized),
		addTo(treasury, seized),
	); err != nil {
		return nil, err
	}
	s.LastActivity = env.Now()

	if s.Amount.Sign() == 0 {
		pool.Participants--
		err = l.repo.closeStake(s)
	} else {
		err = l.repo.updateStake(s)
	}
	if err != nil {
		return nil, err
	}
	if err := firstErr(l.save(pool, totals), l.repo.setTreasury(s.Asset, treasury)); err != nil {
		return nil, err
	}
	if err := env.Log("Seized", &seizedEvent{s.ID, owner, quest, bps, seized, s.Amount},
		s.ID, tx.AddressTopic(owner), tx.AddressTopic(quest)); err != nil {
		return nil, err
	}

	logger.Info("seized", "owner", owner, "quest", quest, "seized", seized, "remaining", s.Amount)
	return seized, nil
}

// Release refunds owner's whole stake in the caller's pool. A refused refund becomes claimable.
func (l *Ledger) Release(env *xenv.Environment, owner forge.Address) (*big.Int, error) {
	quest := env.Caller()
	logger.Debug("releasing", "owner", owner, "quest", quest)

	if err := l.acl.Require(acl.QuestContract, quest); err != nil {
		return nil, err
	}
	unlock, err := env.Lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	s, pool, err := l.poolStake(owner, quest)
	if err != nil {
		logger.Info("release failed", "owner", owner, "quest", quest, "error", err)
		return nil, err
	}
	totals, err := l.repo.getTotals(s.Asset)
	if err != nil {
		return nil, err
	}
	if err := firstErr(
		subFrom(pool.TotalStaked, s.Amount),
		subFrom(totals.TotalStaked, s.Amount),
		addTo(totals.Releases, s.Amount),
	); err != nil {
		return nil, err
	}
	pool.Participants--
	s.LastActivity = env.Now()

	if err := l.repo.closeStake(s); err != nil {
		return nil, err
	}
	if err := l.save(pool, totals); err != nil {
		return nil, err
	}
	if err := env.Log("Released", &releasedEvent{s.ID, owner, quest, s.Amount},
		s.ID, tx.AddressTopic(owner), tx.AddressTopic(quest)); err != nil {
		return nil, err
	}
	if err := l.payOrCredit(env, s.Asset, owner, s.Amount); err != nil {
		return nil, err
	}

	logger.Info("released", "owner", owner, "quest", quest, "amount", s.Amount)
	return new(big.Int).Set(s.Amount), nil
}

func (l *Ledger) poolStake(owner, quest forge.Address) (*Stake, *Pool, error) {
	s, err := l.repo.activeStakeOf(owner, quest)
	if err != nil {
		return nil, nil, err
	}
	if s == nil {
		return nil, nil, errors.WithMessagef(reverts.ErrUnknownStake, "no active stake of %v in %v", owner, quest)
	}
	pool, err := l.repo.getPool(quest)
	if err != nil {
		return nil, nil, err
	}
	if pool == nil {
		return nil, nil, errors.WithMessagef(reverts.ErrUnknownPool, "pool %v", quest)
	}
	return s, pool, nil
}
