// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"

	"github.com/questforge/forge/forge"
)

type stakedEvent struct {
	StakeID forge.Bytes32 `json:"stakeId"`
	Owner   forge.Address `json:"owner"`
	Quest   forge.Address `json:"quest"`
	Asset   forge.Address `json:"asset"`
	Amount  *big.Int      `json:"amount"`
	Refund  *big.Int      `json:"refund"`
}

type withdrawnEvent struct {
	StakeID   forge.Bytes32 `json:"stakeId"`
	Owner     forge.Address `json:"owner"`
	Quest     forge.Address `json:"quest"`
	Amount    *big.Int      `json:"amount"`
	Reward    *big.Int      `json:"reward"`
	Shortfall *big.Int      `json:"shortfall"`
}

type emergencyWithdrawnEvent struct {
	StakeID forge.Bytes32 `json:"stakeId"`
	Owner   forge.Address `json:"owner"`
	Quest   forge.Address `json:"quest"`
	Refund  *big.Int      `json:"refund"`
	Penalty *big.Int      `json:"penalty"`
}

type rewardDistributedEvent struct {
	Quest       forge.Address `json:"quest"`
	Participant forge.Address `json:"participant"`
	Base        *big.Int      `json:"base"`
	Performance *big.Int      `json:"performanceBonus"`
	Speed       *big.Int      `json:"speedBonus"`
	Total       *big.Int      `json:"total"`
}

type slashedEvent struct {
	StakeID     forge.Bytes32 `json:"stakeId"`
	Participant forge.Address `json:"participant"`
	Quest       forge.Address `json:"quest"`
	Bps         uint64        `json:"bps"`
	Slashed     *big.Int      `json:"slashed"`
	Refund      *big.Int      `json:"refund"`
}

type seizedEvent struct {
	StakeID   forge.Bytes32 `json:"stakeId"`
	Owner     forge.Address `json:"owner"`
	Quest     forge.Address `json:"quest"`
	Bps       uint64        `json:"bps"`
	Seized    *big.Int      `json:"seized"`
	Remaining *big.Int      `json:"remaining"`
}

type releasedEvent struct {
	StakeID forge.Bytes32 `json:"stakeId"`
	Owner   forge.Address `json:"owner"`
	Quest   forge.Address `json:"quest"`
	Amount  *big.Int      `json:"amount"`
}

type rewardsFundedEvent struct {
	Quest   forge.Address `json:"quest"`
	Funder  forge.Address `json:"funder"`
	Asset   forge.Address `json:"asset"`
	Amount  *big.Int      `json:"amount"`
	Reserve *big.Int      `json:"reserve"`
}

type poolConfiguredEvent struct {
	Quest  forge.Address `json:"quest"`
	Asset  forge.Address `json:"asset"`
	Policy Policy        `json:"policy"`
}

type feeEvent struct {
	Ref    forge.Bytes32 `json:"ref"`
	Holder forge.Address `json:"holder"`
	Payer  forge.Address `json:"payer"`
	Asset  forge.Address `json:"asset"`
	Amount *big.Int      `json:"amount"`
}

type assetAddedEvent struct {
	Asset forge.Address `json:"asset"`
}

type treasuryWithdrawnEvent struct {
	Asset  forge.Address `json:"asset"`
	To     forge.Address `json:"to"`
	Amount *big.Int      `json:"amount"`
}

type paymentDeferredEvent struct {
	Asset     forge.Address `json:"asset"`
	To        forge.Address `json:"to"`
	Amount    *big.Int      `json:"amount"`
	Claimable *big.Int      `json:"claimable"`
}

type claimedEvent struct {
	Asset  forge.Address `json:"asset"`
	Owner  forge.Address `json:"owner"`
	Amount *big.Int      `json:"amount"`
}
