// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"

	"github.com/questforge/forge/forge"
)

// Stake is value locked by an owner against one quest. Stakes are deactivated, never deleted.
type Stake struct {
	ID           forge.Bytes32 `json:"id"`
	Owner        forge.Address `json:"owner"`
	Quest        forge.Address `json:"quest"`
	Amount       *big.Int      `json:"amount"`
	Asset        forge.Address `json:"asset"`
	OpenedAt     uint64        `json:"openedAt"`
	LastActivity uint64        `json:"lastActivity"`
	Active       bool          `json:"active"`
	RewardDebt   *big.Int      `json:"rewardDebt"` // rewards paid against this stake
}

// Policy is the bonus schedule DistributeReward applies on top of a base reward.
type Policy struct {
	PerformanceBonusBps uint64 `json:"performanceBonusBps"`
	SpeedBonusBps       uint64 `json:"speedBonusBps"`
	SpeedDecay          uint64 `json:"speedDecay"`
}

// Pool aggregates every stake of one quest key.
type Pool struct {
	Quest         forge.Address `json:"quest"`
	Asset         forge.Address `json:"asset"`
	TotalStaked   *big.Int      `json:"totalStaked"`
	TotalRewards  *big.Int      `json:"totalRewards"`
	TotalSlashed  *big.Int      `json:"totalSlashed"`
	RewardReserve *big.Int      `json:"rewardReserve"`
	Participants  uint64        `json:"participants"` // active stakes
	Active        bool          `json:"active"`
	// Managed pools hold collateral their quest key releases, owners cannot withdraw it directly.
	Managed bool   `json:"managed"`
	Policy  Policy `json:"policy"`
}

func newPool(quest, asset forge.Address, policy Policy) *Pool {
	return &Pool{
		Quest:         quest,
		Asset:         asset,
		TotalStaked:   new(big.Int),
		TotalRewards:  new(big.Int),
		TotalSlashed:  new(big.Int),
		RewardReserve: new(big.Int),
		Active:        true,
		Policy:        policy,
	}
}

// Totals are the ledger wide aggregates of one asset.
type Totals struct {
	TotalStaked   *big.Int `json:"totalStaked"`
	TotalRewards  *big.Int `json:"totalRewards"`
	TotalSlashed  *big.Int `json:"totalSlashed"`
	TotalReserves *big.Int `json:"totalReserves"`
	TotalEscrowed *big.Int `json:"totalEscrowed"`
	// refused payouts waiting for their owners to claim them
	TotalClaimable *big.Int `json:"totalClaimable"`
	Deposits       *big.Int `json:"deposits"`
	Releases       *big.Int `json:"releases"`
}

func newTotals() *Totals {
	return &Totals{
		TotalStaked:    new(big.Int),
		TotalRewards:   new(big.Int),
		TotalSlashed:   new(big.Int),
		TotalReserves:  new(big.Int),
		TotalEscrowed:  new(big.Int),
		TotalClaimable: new(big.Int),
		Deposits:       new(big.Int),
		Releases:       new(big.Int),
	}
}

// FeeEscrow is a fee held on behalf of the contract that escrowed it.
type FeeEscrow struct {
	Ref    forge.Bytes32 `json:"ref"`
	Holder forge.Address `json:"holder"`
	Payer  forge.Address `json:"payer"`
	Asset  forge.Address `json:"asset"`
	Amount *big.Int      `json:"amount"`
}
