// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package evidence

import (
	"math/big"

	"github.com/questforge/forge/forge"
)

type Status uint8

const (
	StatusUnknown Status = iota
	StatusPending
	StatusApproved
	StatusRejected
	StatusDisputed
	StatusExpired
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusApproved:
		return "approved"
	case StatusRejected:
		return "rejected"
	case StatusDisputed:
		return "disputed"
	case StatusExpired:
		return "expired"
	default:
		return "unknown"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Outcome maps a verdict to its terminal status.
func Outcome(approved bool) Status {
	if approved {
		return StatusApproved
	}
	return StatusRejected
}

// Evidence is the verification record of one submission.
type Evidence struct {
	ID              forge.Bytes32   `json:"id"`
	Requester       forge.Address   `json:"requester"`
	Type            string          `json:"type"`
	Threshold       uint64          `json:"threshold"` // votes needed to finalize
	RequestedAt     uint64          `json:"requestedAt"`
	Deadline        uint64          `json:"deadline"`
	DisputeDeadline uint64          `json:"disputeDeadline"`
	Status          Status          `json:"status"`
	Outcome         Status          `json:"outcome"` // last verdict, restored when a dispute fails
	Assigned        []forge.Address `json:"assigned"`
	Voters          []forge.Address `json:"voters"`
	ApprovalPower   *big.Int        `json:"approvalPower"`
	RejectionPower  *big.Int        `json:"rejectionPower"`
	ApprovalVotes   uint64          `json:"approvalVotes"`
	RejectionVotes  uint64          `json:"rejectionVotes"`
	ConfidenceScore uint64          `json:"confidenceScore"`
	FinalizedAt     uint64          `json:"finalizedAt"`
}

// ID is the id of the evidence requester asks verification of under ref.
// Ids of different requesters never collide.
func ID(requester forge.Address, ref forge.Bytes32) forge.Bytes32 {
	return forge.Blake2b([]byte("evidence"), requester.Bytes(), ref.Bytes())
}

func New(id forge.Bytes32, requester forge.Address, typ string, threshold, now, deadline uint64) *Evidence {
	return &Evidence{
		ID:             id,
		Requester:      requester,
		Type:           typ,
		Threshold:      threshold,
		RequestedAt:    now,
		Deadline:       deadline,
		Status:         StatusPending,
		ApprovalPower:  new(big.Int),
		RejectionPower: new(big.Int),
	}
}

// Tally adds a vote's power to the evidence totals.
func (e *Evidence) Tally(voter forge.Address, approve bool, power *big.Int) error {
	var err error
	if approve {
		e.ApprovalPower, err = forge.SafeAdd(e.ApprovalPower, power)
		e.ApprovalVotes++
	} else {
		e.RejectionPower, err = forge.SafeAdd(e.RejectionPower, power)
		e.RejectionVotes++
	}
	e.Voters = append(e.Voters, voter)
	return err
}

// Votes is the number of votes cast.
func (e *Evidence) Votes() uint64 {
	return e.ApprovalVotes + e.RejectionVotes
}

// Verdict decides the outcome from the tallied power. Ties reject.
// The confidence score is the approving share of the power, in percent.
func (e *Evidence) Verdict() (approved bool, score uint64, err error) {
	total, err := forge.SafeAdd(e.ApprovalPower, e.RejectionPower)
	if err != nil {
		return false, 0, err
	}
	approved = e.ApprovalPower.Cmp(e.RejectionPower) > 0
	if total.Sign() == 0 {
		return approved, 0, nil
	}
	s, err := forge.MulDiv(e.ApprovalPower, big.NewInt(100), total)
	if err != nil {
		return false, 0, err
	}
	return approved, s.Uint64(), nil
}

// IsTerminal reports whether the evidence holds a final verdict.
func (e *Evidence) IsTerminal() bool {
	return e.Status == StatusApproved || e.Status == StatusRejected
}

type Vote struct {
	Validator  forge.Address `json:"validator"`
	Approve    bool          `json:"approve"`
	Confidence uint64        `json:"confidence"`
	Power      *big.Int      `json:"power"`
	Reasoning  string        `json:"reasoning"`
	CastAt     uint64        `json:"castAt"`
}
