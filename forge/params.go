// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package forge

import (
	"math/big"
)

// Units.
var (
	Wei   = big.NewInt(1)
	Ether = big.NewInt(1e18)
)

// Time constants, all in seconds.
const (
	Minute uint64 = 60
	Hour          = 60 * Minute
	Day           = 24 * Hour
	Week          = 7 * Day
	Year          = 365 * Day

	MaxMilestones = 64 // milestone completion is tracked in a uint64 bitset
	MaxCallDepth  = 64
)

// Param describes one governance parameter stored in the params contract.
type Param struct {
	Name    string
	Key     Bytes32
	Default *big.Int
}

func newParam(name string, def *big.Int) *Param {
	return &Param{Name: name, Key: BytesToBytes32([]byte(name)), Default: def}
}

func u64(v uint64) *big.Int { return new(big.Int).SetUint64(v) }

func ether(num, denom int64) *big.Int {
	v := new(big.Int).Mul(Ether, big.NewInt(num))
	return v.Div(v, big.NewInt(denom))
}

// Ledger params.
var (
	ParamMinStake              = newParam("min-stake", ether(1, 100))
	ParamEmergencyPenaltyBps   = newParam("emergency-penalty-bps", u64(1000))
	ParamBaseRateBps           = newParam("base-rate-bps", u64(1000)) // annual
	ParamWithdrawSpeedBonusBps = newParam("withdraw-speed-bonus-bps", u64(500))
	ParamSpeedBonusWindow      = newParam("speed-bonus-window", u64(Day))
	ParamSpeedBonusDecay       = newParam("speed-bonus-decay", u64(Week))
	ParamPerformanceBonusBps   = newParam("performance-bonus-bps", u64(1000))
	ParamRewardSpeedBonusBps   = newParam("reward-speed-bonus-bps", u64(500))
)

// Oracle params.
var (
	ParamMinValidatorStake       = newParam("min-validator-stake", ether(1, 1))
	ParamMinReputation           = newParam("min-reputation", u64(100))
	ParamMaxReputation           = newParam("max-reputation", u64(1000))
	ParamReputationReward        = newParam("reputation-reward", u64(10))
	ParamReputationPenalty       = newParam("reputation-penalty", u64(5))
	ParamBaseVotingPower         = newParam("base-voting-power", u64(100))
	ParamMaxReputationMultiplier = newParam("max-reputation-multiplier-bps", u64(50000))
	ParamActivityBonusPerVote    = newParam("activity-bonus-per-vote", u64(10))
	ParamMaxActivityBonus        = newParam("max-activity-bonus", u64(50))
	ParamActivityWindow          = newParam("activity-window", u64(Week))
	ParamVerificationWindow      = newParam("verification-window", u64(3*Day))
	ParamDefaultThreshold        = newParam("default-threshold", u64(3))
	ParamDisputeWindow           = newParam("dispute-window", u64(2*Day))
	ParamDisputeTimeout          = newParam("dispute-timeout", u64(Week))
	ParamDisputeFee              = newParam("dispute-fee", ether(1, 10))
	ParamDisputePanelSize        = newParam("dispute-panel-size", u64(5))
	ParamDisputeQuorum           = newParam("dispute-quorum", u64(3))
	ParamReviewerMinReputation   = newParam("reviewer-min-reputation", u64(100))
	ParamValidatorBaseReward     = newParam("validator-base-reward", ether(1, 100))
	ParamUnregisterCooldown      = newParam("unregister-cooldown", u64(Day))
)

// Quest and factory params.
var (
	ParamCompletionRateBps   = newParam("completion-rate-bps", u64(8000))
	ParamFailureSlashBps     = newParam("failure-slash-bps", u64(2000))
	ParamMaxEarlyPenaltyBps  = newParam("max-early-penalty-bps", u64(5000))
	ParamMaxQuestsPerCreator = newParam("max-quests-per-creator", u64(10))
	ParamMaxParticipants     = newParam("max-participants", u64(10000))
)

// Params lists every governance parameter in a stable order.
var Params = []*Param{
	ParamMinStake,
	ParamEmergencyPenaltyBps,
	ParamBaseRateBps,
	ParamWithdrawSpeedBonusBps,
	ParamSpeedBonusWindow,
	ParamSpeedBonusDecay,
	ParamPerformanceBonusBps,
	ParamRewardSpeedBonusBps,

	ParamMinValidatorStake,
	ParamMinReputation,
	ParamMaxReputation,
	ParamReputationReward,
	ParamReputationPenalty,
	ParamBaseVotingPower,
	ParamMaxReputationMultiplier,
	ParamActivityBonusPerVote,
	ParamMaxActivityBonus,
	ParamActivityWindow,
	ParamVerificationWindow,
	ParamDefaultThreshold,
	ParamDisputeWindow,
	ParamDisputeTimeout,
	ParamDisputeFee,
	ParamDisputePanelSize,
	ParamDisputeQuorum,
	ParamReviewerMinReputation,
	ParamValidatorBaseReward,
	ParamUnregisterCooldown,

	ParamCompletionRateBps,
	ParamFailureSlashBps,
	ParamMaxEarlyPenaltyBps,
	ParamMaxQuestsPerCreator,
	ParamMaxParticipants,
}

// ParamByName looks up a param by its name.
func ParamByName(name string) (*Param, bool) {
	for _, p := range Params {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}
