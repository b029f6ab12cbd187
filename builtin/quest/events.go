// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package quest

import (
	"math/big"

	"github.com/questforge/forge/forge"
)

type questActivatedEvent struct {
	Creator     forge.Address `json:"creator"`
	Title       string        `json:"title"`
	Asset       forge.Address `json:"asset"`
	StakeAmount *big.Int      `json:"stakeAmount"`
	Milestones  uint64        `json:"milestones"`
	ExpiresAt   uint64        `json:"expiresAt"`
}

type questStatusEvent struct {
	Status Status        `json:"status"`
	Sender forge.Address `json:"sender"`
}

type questClosedEvent struct {
	Status       Status `json:"status"`
	Participants uint64 `json:"participants"`
	Completed    uint64 `json:"completed"`
	RateBps      uint64 `json:"rateBps"`
	Swept        uint64 `json:"swept"`
}

type participantJoinedEvent struct {
	Participant forge.Address `json:"participant"`
	StakeID     forge.Bytes32 `json:"stakeId"`
	Amount      *big.Int      `json:"amount"`
}

type participantWithdrawnEvent struct {
	Participant forge.Address `json:"participant"`
	PenaltyBps  uint64        `json:"penaltyBps"`
}

type participantSlashedEvent struct {
	Participant forge.Address `json:"participant"`
	Bps         uint64        `json:"bps"`
	Slashed     *big.Int      `json:"slashed"`
}

type participantCompletedEvent struct {
	Participant forge.Address `json:"participant"`
	Reward      *big.Int      `json:"reward"`
	Achievement uint64        `json:"achievement"`
	Minted      bool          `json:"minted"`
}

type evidenceSubmittedEvent struct {
	Evidence    forge.Bytes32 `json:"evidence"`
	Participant forge.Address `json:"participant"`
	Milestone   uint64        `json:"milestone"`
	ContentHash forge.Bytes32 `json:"contentHash"`
	Reference   string        `json:"reference"`
}

type evidenceVerifiedEvent struct {
	Evidence   forge.Bytes32 `json:"evidence"`
	Verifier   forge.Address `json:"verifier"`
	Approved   bool          `json:"approved"`
	Approvals  uint64        `json:"approvals"`
	Rejections uint64        `json:"rejections"`
}

type submissionResolvedEvent struct {
	Evidence    forge.Bytes32    `json:"evidence"`
	Participant forge.Address    `json:"participant"`
	Milestone   uint64           `json:"milestone"`
	Status      SubmissionStatus `json:"status"`
}

type disputeAppliedEvent struct {
	Evidence    forge.Bytes32 `json:"evidence"`
	Participant forge.Address `json:"participant"`
	Milestone   uint64        `json:"milestone"`
	Approved    bool          `json:"approved"`
}

type milestoneEvent struct {
	Participant forge.Address `json:"participant"`
	Milestone   uint64        `json:"milestone"`
	Completed   uint64        `json:"completed"`
}
