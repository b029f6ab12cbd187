// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"github.com/questforge/forge/forge"
)

// Receipt represents the results of a transaction.
type Receipt struct {
	ID       forge.Bytes32 `json:"id"`
	Origin   forge.Address `json:"origin"`
	Events   Events        `json:"events"`
	Reverted bool          `json:"reverted"`
	Revert   *Revert       `json:"revert,omitempty"`
}

// Revert describes why a transaction failed.
type Revert struct {
	Kind   string `json:"kind"`
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

// Receipts a list of receipts.
type Receipts []*Receipt

// NewID derives a transaction id from its origin, the origin's nonce and the block time.
func NewID(origin forge.Address, nonce, timestamp uint64) forge.Bytes32 {
	return forge.Blake2b([]byte("tx"), origin.Bytes(), forge.Uint64Bytes(nonce), forge.Uint64Bytes(timestamp))
}
