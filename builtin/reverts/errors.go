// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

// validation
var (
	ErrInsufficientAmount  = New(KindValidation, "InsufficientAmount", "amount below minimum")
	ErrUnsupportedAsset    = New(KindValidation, "UnsupportedAsset", "asset is not supported")
	ErrInvalidAmount       = New(KindValidation, "InvalidAmount", "invalid amount")
	ErrInvalidAddress      = New(KindValidation, "InvalidAddress", "invalid address")
	ErrIncorrectPayment    = New(KindValidation, "IncorrectPayment", "payment does not match required amount")
	ErrEmptyEvidence       = New(KindValidation, "EmptyEvidence", "evidence is empty")
	ErrInvalidConfidence   = New(KindValidation, "InvalidConfidence", "confidence must be within [0, 100]")
	ErrInvalidConfig       = New(KindValidation, "InvalidConfig", "invalid quest config")
	ErrUnknownMilestone    = New(KindValidation, "UnknownMilestone", "milestone does not exist")
	ErrInsufficientBalance = New(KindValidation, "InsufficientBalance", "insufficient balance")
	ErrAssetMismatch       = New(KindValidation, "AssetMismatch", "asset does not match pool asset")
	ErrEmptyReason         = New(KindValidation, "EmptyReason", "reason is empty")
)

// authorization
var (
	ErrUnauthorized   = New(KindAuthorization, "Unauthorized", "caller lacks required role")
	ErrNotOwner       = New(KindAuthorization, "NotOwner", "caller is not the owner")
	ErrNotParticipant = New(KindAuthorization, "NotParticipant", "caller is not an active participant")
	ErrNotValidator   = New(KindAuthorization, "NotValidator", "caller is not an active validator")
	ErrNotReviewer    = New(KindAuthorization, "NotReviewer", "caller is not on the review panel")
	ErrNotAdmin       = New(KindAuthorization, "NotAdmin", "caller is not an admin")
	ErrManagedStake   = New(KindAuthorization, "ManagedStake", "stake is released by its pool contract only")
)

// state conflict
var (
	ErrAlreadyStaked      = New(KindStateConflict, "AlreadyStaked", "an active stake already exists")
	ErrStakeInactive      = New(KindStateConflict, "StakeInactive", "stake is not active")
	ErrUnknownStake       = New(KindStateConflict, "UnknownStake", "stake does not exist")
	ErrAlreadyRegistered  = New(KindStateConflict, "AlreadyRegistered", "validator already registered")
	ErrAlreadyVoted       = New(KindStateConflict, "AlreadyVoted", "vote already cast")
	ErrAlreadyRequested   = New(KindStateConflict, "AlreadyRequested", "verification already requested")
	ErrAlreadyFinalized   = New(KindStateConflict, "AlreadyFinalized", "verification already finalized")
	ErrAlreadyDisputed    = New(KindStateConflict, "AlreadyDisputed", "evidence already disputed")
	ErrAlreadySlashed     = New(KindStateConflict, "AlreadySlashed", "validator already slashed")
	ErrNotDisputable      = New(KindStateConflict, "NotDisputable", "evidence is not in a disputable status")
	ErrUnknownEvidence    = New(KindStateConflict, "UnknownEvidence", "evidence does not exist")
	ErrUnknownDispute     = New(KindStateConflict, "UnknownDispute", "dispute does not exist")
	ErrUnknownQuest       = New(KindStateConflict, "UnknownQuest", "quest does not exist")
	ErrAlreadyJoined      = New(KindStateConflict, "AlreadyJoined", "already a participant")
	ErrInvalidStatus      = New(KindStateConflict, "InvalidStatus", "not in expected status")
	ErrSubmissionPending  = New(KindStateConflict, "SubmissionPending", "a submission is already pending")
	ErrMilestoneCompleted = New(KindStateConflict, "MilestoneCompleted", "milestone already completed")
	ErrMilestoneOrder     = New(KindStateConflict, "MilestoneOrder", "previous milestones are not completed")
	ErrReentrancy         = New(KindStateConflict, "Reentrancy", "reentrant call")
	ErrReadOnly           = New(KindStateConflict, "ReadOnly", "state is read only")
	ErrNotResolved        = New(KindStateConflict, "NotResolved", "dispute is not resolved")
	ErrEscrowExists       = New(KindStateConflict, "EscrowExists", "fee already escrowed for reference")
	ErrUnknownEscrow      = New(KindStateConflict, "UnknownEscrow", "no fee escrowed for reference")
	ErrUnknownPool        = New(KindStateConflict, "UnknownPool", "pool does not exist")
)

// temporal
var (
	ErrExpired             = New(KindTemporal, "Expired", "deadline passed")
	ErrNotExpired          = New(KindTemporal, "NotExpired", "deadline not reached")
	ErrCooldown            = New(KindTemporal, "Cooldown", "cooldown not elapsed")
	ErrDisputeWindowClosed = New(KindTemporal, "DisputeWindowClosed", "dispute window closed")
)

// resource exhaustion
var (
	ErrQuestFull             = New(KindResourceExhaustion, "QuestFull", "quest is full")
	ErrMaxQuestsReached      = New(KindResourceExhaustion, "MaxQuestsReached", "max quests per creator reached")
	ErrNoActiveValidators    = New(KindResourceExhaustion, "NoActiveValidators", "no active validators")
	ErrInsufficientReviewers = New(KindResourceExhaustion, "InsufficientReviewers", "not enough eligible reviewers")
	ErrInsufficientReserve   = New(KindResourceExhaustion, "InsufficientReserve", "reward reserve exhausted")
	ErrCallDepth             = New(KindResourceExhaustion, "CallDepth", "max call depth exceeded")
)

// arithmetic
var (
	ErrArithmetic = New(KindArithmetic, "Arithmetic", "arithmetic failure")
)
