// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package factory

import (
	"math/big"

	"github.com/questforge/forge/builtin/quest"
	"github.com/questforge/forge/forge"
)

type questCreatedEvent struct {
	Quest       forge.Address `json:"quest"`
	Creator     forge.Address `json:"creator"`
	Title       string        `json:"title"`
	Asset       forge.Address `json:"asset"`
	StakeAmount *big.Int      `json:"stakeAmount"`
	Budget      *big.Int      `json:"budget"`
}

type questRetiredEvent struct {
	Quest   forge.Address `json:"quest"`
	Creator forge.Address `json:"creator"`
	Status  quest.Status  `json:"status"`
}
