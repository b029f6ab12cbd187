// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package dispute

import (
	"math/big"
	"slices"

	"github.com/questforge/forge/forge"
)

type Status uint8

const (
	StatusUnknown Status = iota
	StatusPending
	StatusUnderReview
	StatusResolved // upheld, the verdict was reversed
	StatusRejected
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusUnderReview:
		return "under-review"
	case StatusResolved:
		return "resolved"
	case StatusRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type Dispute struct {
	ID               forge.Bytes32   `json:"id"`
	Evidence         forge.Bytes32   `json:"evidenceId"`
	Challenger       forge.Address   `json:"challenger"`
	Reason           string          `json:"reason"`
	EvidenceText     string          `json:"evidenceText"`
	Fee              *big.Int        `json:"fee"`
	CreatedAt        uint64          `json:"createdAt"`
	Deadline         uint64          `json:"deadline"`
	Status           Status          `json:"status"`
	OriginalApproved bool            `json:"originalApproved"`
	Panel            []forge.Address `json:"panel"`
	Quorum           uint64          `json:"quorum"`
	UpheldVotes      uint64          `json:"upheldVotes"`
	RejectedVotes    uint64          `json:"rejectedVotes"`
	ResolvedAt       uint64          `json:"resolvedAt"`
}

// ID derives the dispute id of an evidence. An evidence is disputed at most once.
func ID(evidenceID forge.Bytes32) forge.Bytes32 {
	return forge.Blake2b([]byte("dispute"), evidenceID.Bytes())
}

// IsOpen reports whether reviewers may still vote.
func (d *Dispute) IsOpen() bool {
	return d.Status == StatusPending || d.Status == StatusUnderReview
}

func (d *Dispute) OnPanel(addr forge.Address) bool {
	return slices.Contains(d.Panel, addr)
}

// Votes is the number of reviews cast.
func (d *Dispute) Votes() uint64 {
	return d.UpheldVotes + d.RejectedVotes
}

// Upheld reports whether the majority of the reviews uphold the challenge. Ties reject.
func (d *Dispute) Upheld() bool {
	return d.UpheldVotes > d.RejectedVotes
}

type Review struct {
	Reviewer  forge.Address `json:"reviewer"`
	Uphold    bool          `json:"uphold"`
	Reasoning string        `json:"reasoning"`
	CastAt    uint64        `json:"castAt"`
}
