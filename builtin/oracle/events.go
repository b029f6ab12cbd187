// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package oracle

import (
	"math/big"

	"github.com/questforge/forge/forge"
)

type validatorRegisteredEvent struct {
	Validator  forge.Address `json:"validator"`
	Stake      *big.Int      `json:"stake"`
	Reputation uint64        `json:"reputation"`
}

type validatorUnregisteredEvent struct {
	Validator forge.Address `json:"validator"`
	Released  *big.Int      `json:"released"`
}

type validatorStatusEvent struct {
	Validator forge.Address `json:"validator"`
	Status    string        `json:"status"`
}

type validatorSlashedEvent struct {
	Validator forge.Address `json:"validator"`
	Bps       uint64        `json:"bps"`
	Seized    *big.Int      `json:"seized"`
	Remaining *big.Int      `json:"remaining"`
	Reason    string        `json:"reason"`
}

type reputationUpdatedEvent struct {
	Validator  forge.Address `json:"validator"`
	Reputation uint64        `json:"reputation"`
	Correct    bool          `json:"correct"`
}

type validatorRewardedEvent struct {
	Validator forge.Address `json:"validator"`
	Evidence  forge.Bytes32 `json:"evidenceId"`
	Reward    *big.Int      `json:"reward"`
}

type verificationRequestedEvent struct {
	Evidence  forge.Bytes32   `json:"evidenceId"`
	Requester forge.Address   `json:"requester"`
	Type      string          `json:"type"`
	Threshold uint64          `json:"threshold"`
	Deadline  uint64          `json:"deadline"`
	Assigned  []forge.Address `json:"assigned"`
}

type voteCastEvent struct {
	Evidence   forge.Bytes32 `json:"evidenceId"`
	Validator  forge.Address `json:"validator"`
	Approve    bool          `json:"approve"`
	Confidence uint64        `json:"confidence"`
	Power      *big.Int      `json:"power"`
}

type verificationCompletedEvent struct {
	Evidence        forge.Bytes32 `json:"evidenceId"`
	Approved        bool          `json:"approved"`
	ConfidenceScore uint64        `json:"confidenceScore"`
	ApprovalPower   *big.Int      `json:"approvalPower"`
	RejectionPower  *big.Int      `json:"rejectionPower"`
	DisputeDeadline uint64        `json:"disputeDeadline"`
}

type verificationExpiredEvent struct {
	Evidence forge.Bytes32 `json:"evidenceId"`
	Votes    uint64        `json:"votes"`
}

type disputeCreatedEvent struct {
	Dispute    forge.Bytes32   `json:"disputeId"`
	Evidence   forge.Bytes32   `json:"evidenceId"`
	Challenger forge.Address   `json:"challenger"`
	Reason     string          `json:"reason"`
	Fee        *big.Int        `json:"fee"`
	Deadline   uint64          `json:"deadline"`
	Panel      []forge.Address `json:"panel"`
}

type disputeVoteEvent struct {
	Dispute  forge.Bytes32 `json:"disputeId"`
	Reviewer forge.Address `json:"reviewer"`
	Uphold   bool          `json:"uphold"`
}

type disputeResolvedEvent struct {
	Dispute  forge.Bytes32 `json:"disputeId"`
	Evidence forge.Bytes32 `json:"evidenceId"`
	Upheld   bool          `json:"upheld"`
	Approved bool          `json:"approved"` // final verdict on the evidence
	Expired  bool          `json:"expired"`
}
