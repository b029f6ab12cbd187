// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package quest

import (
	"math/big"

	"github.com/questforge/forge/forge"
)

type Status uint8

const (
	StatusCreated Status = iota
	StatusActive
	StatusCompleted
	StatusExpired
	StatusFailed
	StatusEmergencyPaused
)

func (s Status) String() string {
	switch s {
	case StatusCreated:
		return "created"
	case StatusActive:
		return "active"
	case StatusCompleted:
		return "completed"
	case StatusExpired:
		return "expired"
	case StatusFailed:
		return "failed"
	case StatusEmergencyPaused:
		return "emergency-paused"
	default:
		return "unknown"
	}
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// IsClosed reports whether the quest reached a terminal status.
func (s Status) IsClosed() bool {
	return s == StatusCompleted || s == StatusExpired || s == StatusFailed
}

type ParticipantStatus uint8

const (
	ParticipantNone ParticipantStatus = iota
	ParticipantActive
	ParticipantCompleted
	ParticipantFailed
	ParticipantWithdrawn
)

func (s ParticipantStatus) String() string {
	switch s {
	case ParticipantActive:
		return "active"
	case ParticipantCompleted:
		return "completed"
	case ParticipantFailed:
		return "failed"
	case ParticipantWithdrawn:
		return "withdrawn"
	default:
		return "none"
	}
}

func (s ParticipantStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

type MilestoneStatus uint8

const (
	MilestoneLocked MilestoneStatus = iota
	MilestoneActive
	MilestoneCompleted
	MilestoneFailed
)

func (s MilestoneStatus) String() string {
	switch s {
	case MilestoneLocked:
		return "locked"
	case MilestoneActive:
		return "active"
	case MilestoneCompleted:
		return "completed"
	case MilestoneFailed:
		return "failed"
	default:
		return "unknown"
	}
}

func (s MilestoneStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

type SubmissionStatus uint8

const (
	SubmissionNone SubmissionStatus = iota
	SubmissionPending
	SubmissionApproved
	SubmissionRejected
)

func (s SubmissionStatus) String() string {
	switch s {
	case SubmissionPending:
		return "pending"
	case SubmissionApproved:
		return "approved"
	case SubmissionRejected:
		return "rejected"
	default:
		return "none"
	}
}

func (s SubmissionStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// MilestoneConfig defines one milestone of a quest.
type MilestoneConfig struct {
	Title            string   `json:"title" yaml:"title"`
	Description      string   `json:"description" yaml:"description"`
	VerificationType string   `json:"verificationType" yaml:"verificationType"`
	RequiredTags     []string `json:"requiredTags" yaml:"requiredTags"`
	Deadline         uint64   `json:"deadline" yaml:"deadline"`   // seconds after activation, 0 for the quest end
	Threshold        uint64   `json:"threshold" yaml:"threshold"` // oracle votes, 0 for the oracle default
	Quorum           uint64   `json:"quorum" yaml:"quorum"`       // verifier results, 0 for one
}

// Config is fixed when the quest is initialized.
type Config struct {
	Creator         forge.Address     `json:"creator" yaml:"creator"`
	Title           string            `json:"title" yaml:"title"`
	Description     string            `json:"description" yaml:"description"`
	Asset           forge.Address     `json:"asset" yaml:"asset"`
	StakeAmount     *big.Int          `json:"stakeAmount" yaml:"stakeAmount"`
	RewardAmount    *big.Int          `json:"rewardAmount" yaml:"rewardAmount"` // base reward on completion
	MaxParticipants uint64            `json:"maxParticipants" yaml:"maxParticipants"`
	Duration        uint64            `json:"duration" yaml:"duration"`
	Milestones      []MilestoneConfig `json:"milestones" yaml:"milestones"`
}

// Info is the mutable quest header.
type Info struct {
	Status       Status        `json:"status"`
	Ledger       forge.Address `json:"ledger"`
	Oracle       forge.Address `json:"oracle"`
	NFT          forge.Address `json:"nft"`
	ActivatedAt  uint64        `json:"activatedAt"`
	ExpiresAt    uint64        `json:"expiresAt"`
	ClosedAt     uint64        `json:"closedAt"`
	Participants uint64        `json:"participants"` // ever joined
	Active       uint64        `json:"active"`
	Completed    uint64        `json:"completed"`
}

type Milestone struct {
	ID               uint64          `json:"id"`
	Title            string          `json:"title"`
	VerificationType string          `json:"verificationType"`
	RequiredTags     []string        `json:"requiredTags"`
	Deadline         uint64          `json:"deadline"`
	Threshold        uint64          `json:"threshold"`
	Quorum           uint64          `json:"quorum"`
	Status           MilestoneStatus `json:"status"`
	CompletedBy      uint64          `json:"completedBy"`
	Approvals        uint64          `json:"approvals"`
	Rejections       uint64          `json:"rejections"`
}

type Participant struct {
	Address     forge.Address     `json:"address"`
	StakeID     forge.Bytes32     `json:"stakeId"`
	StakeAmount *big.Int          `json:"stakeAmount"`
	JoinedAt    uint64            `json:"joinedAt"`
	Status      ParticipantStatus `json:"status"`
	Completed   uint64            `json:"completedMilestones"`
	Bitset      uint64            `json:"bitset"` // bit i set: milestone i completed
	FinishedAt  uint64            `json:"finishedAt"`
}

func (p *Participant) HasCompleted(milestone uint64) bool {
	return p.Bitset&(1<<milestone) != 0
}

func (p *Participant) complete(milestone uint64) {
	p.Bitset |= 1 << milestone
	p.Completed++
}

func (p *Participant) revoke(milestone uint64) {
	p.Bitset &^= 1 << milestone
	p.Completed--
}

type Submission struct {
	ID          forge.Bytes32    `json:"id"`
	Milestone   uint64           `json:"milestone"`
	Submitter   forge.Address    `json:"submitter"`
	ContentHash forge.Bytes32    `json:"contentHash"`
	Reference   string           `json:"reference"`
	SubmittedAt uint64           `json:"submittedAt"`
	Status      SubmissionStatus `json:"status"`
	Approvals   uint64           `json:"approvals"`
	Rejections  uint64           `json:"rejections"`
}
