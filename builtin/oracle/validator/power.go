// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package validator

import (
	"math/big"

	"github.com/questforge/forge/forge"
)

// PowerParams configures voting power.
type PowerParams struct {
	Base             uint64
	MinReputation    uint64
	MaxMultiplierBps uint64
	BonusPerVote     uint64
	MaxBonus         uint64
	Window           uint64
}

// MultiplierBps is 1x plus 1% per reputation point above the floor, capped.
func MultiplierBps(reputation uint64, p PowerParams) uint64 {
	var above uint64
	if reputation > p.MinReputation {
		above = reputation - p.MinReputation
	}
	// saturate before the multiply can wrap
	if above > (p.MaxMultiplierBps/100)+1 {
		return p.MaxMultiplierBps
	}
	mult := forge.BasisPoints + above*100
	if mult > p.MaxMultiplierBps {
		return p.MaxMultiplierBps
	}
	return mult
}

// ActivityBonus rewards votes cast within the activity window, capped.
func ActivityBonus(recentVotes uint64, p PowerParams) uint64 {
	if p.BonusPerVote != 0 && recentVotes > p.MaxBonus/p.BonusPerVote {
		return p.MaxBonus
	}
	return min(recentVotes*p.BonusPerVote, p.MaxBonus)
}

// Power is Base * multiplier + activity bonus.
func Power(v *Validator, now uint64, p PowerParams) (*big.Int, error) {
	weighted, err := forge.MulDiv(
		new(big.Int).SetUint64(p.Base),
		new(big.Int).SetUint64(MultiplierBps(v.Reputation, p)),
		new(big.Int).SetUint64(forge.BasisPoints),
	)
	if err != nil {
		return nil, err
	}
	return forge.SafeAdd(weighted, new(big.Int).SetUint64(ActivityBonus(v.RecentVoteCount(now, p.Window), p)))
}
