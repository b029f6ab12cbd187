// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"

	"github.com/questforge/forge/forge"
)

// WithdrawSchedule holds the params of the final withdraw reward.
type WithdrawSchedule struct {
	BaseRateBps uint64 // annual
	BonusBps    uint64
	BonusWindow uint64
	BonusDecay  uint64
}

// BaseAccrual is amount * rate * elapsed / (10000 * year).
func BaseAccrual(amount *big.Int, rateBps, elapsed uint64) (*big.Int, error) {
	num, err := forge.SafeMul(new(big.Int).SetUint64(rateBps), new(big.Int).SetUint64(elapsed))
	if err != nil {
		return nil, err
	}
	denom := new(big.Int).SetUint64(forge.BasisPoints)
	denom.Mul(denom, new(big.Int).SetUint64(forge.Year))
	return forge.MulDiv(amount, num, denom)
}

// WithdrawSpeedBonus pays the full bonus inside the window, then decays linearly to zero over decay.
func WithdrawSpeedBonus(amount *big.Int, bonusBps, elapsed, window, decay uint64) (*big.Int, error) {
	full, err := forge.ApplyBps(amount, bonusBps)
	if err != nil {
		return nil, err
	}
	if elapsed < window {
		return full, nil
	}
	if decay == 0 || elapsed-window >= decay {
		return new(big.Int), nil
	}
	remaining := window + decay - elapsed
	return forge.MulDiv(full, new(big.Int).SetUint64(remaining), new(big.Int).SetUint64(decay))
}

// FinalReward is the reward Withdraw pays on top of the principal.
func FinalReward(amount *big.Int, elapsed uint64, s WithdrawSchedule) (*big.Int, error) {
	base, err := BaseAccrual(amount, s.BaseRateBps, elapsed)
	if err != nil {
		return nil, err
	}
	bonus, err := WithdrawSpeedBonus(amount, s.BonusBps, elapsed, s.BonusWindow, s.BonusDecay)
	if err != nil {
		return nil, err
	}
	return forge.SafeAdd(base, bonus)
}

// RewardTotal adds the pool's performance and time decayed speed bonus to base.
// A zero decay or no stake (elapsed unknown) pays no speed bonus.
func RewardTotal(base *big.Int, policy Policy, elapsed uint64, hasStake bool) (total, perf, speed *big.Int, err error) {
	if perf, err = forge.ApplyBps(base, policy.PerformanceBonusBps); err != nil {
		return
	}
	speed = new(big.Int)
	if hasStake && policy.SpeedDecay > 0 && elapsed < policy.SpeedDecay {
		full, err := forge.ApplyBps(base, policy.SpeedBonusBps)
		if err != nil {
			return nil, nil, nil, err
		}
		if speed, err = forge.MulDiv(full, new(big.Int).SetUint64(policy.SpeedDecay-elapsed), new(big.Int).SetUint64(policy.SpeedDecay)); err != nil {
			return nil, nil, nil, err
		}
	}
	if total, err = forge.SafeAdd(base, perf); err != nil {
		return
	}
	total, err = forge.SafeAdd(total, speed)
	return
}
