// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package quest

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/questforge/forge/builtin/acl"
	"github.com/questforge/forge/builtin/oracle/evidence"
	"github.com/questforge/forge/builtin/reverts"
	"github.com/questforge/forge/forge"
	"github.com/questforge/forge/tx"
	"github.com/questforge/forge/xenv"
)

// SubmissionID derives the evidence id of a submission, as the oracle assigns it to the quest.
func SubmissionID(quest, participant forge.Address, milestone, nonce uint64) forge.Bytes32 {
	return evidence.ID(quest, submissionRef(participant, milestone, nonce))
}

func submissionRef(participant forge.Address, milestone, nonce uint64) forge.Bytes32 {
	return forge.Blake2b([]byte("submission"), participant.Bytes(), forge.Uint64Bytes(milestone), forge.Uint64Bytes(nonce))
}

// SubmitEvidence records proof of a milestone and requests its verification from the oracle.
// Milestones are completed in order, one open submission per milestone at a time.
func (q *Quest) SubmitEvidence(env *xenv.Environment, milestone uint64, contentHash forge.Bytes32, reference string) (forge.Bytes32, error) {
	user := env.Caller()
	logger.Debug("submitting evidence", "quest", q.addr, "participant", user, "milestone", milestone, "hash", contentHash)

	if contentHash.IsZero() {
		return forge.Bytes32{}, errors.WithMessage(reverts.ErrEmptyEvidence, "content hash")
	}
	unlock, err := env.Lock()
	if err != nil {
		return forge.Bytes32{}, err
	}
	defer unlock()

	if _, _, err := q.loadActive(env.Now()); err != nil {
		logger.Info("submit evidence failed", "quest", q.addr, "participant", user, "error", err)
		return forge.Bytes32{}, err
	}
	p, err := q.repo.getParticipant(user)
	if err != nil {
		return forge.Bytes32{}, err
	}
	if p == nil || p.Status != ParticipantActive {
		return forge.Bytes32{}, errors.WithMessagef(reverts.ErrNotParticipant, "%v", user)
	}
	m, err := q.repo.getMilestone(milestone)
	if err != nil {
		return forge.Bytes32{}, err
	}
	switch {
	case m == nil:
		return forge.Bytes32{}, errors.WithMessagef(reverts.ErrUnknownMilestone, "milestone %d", milestone)
	case m.Status != MilestoneActive:
		return forge.Bytes32{}, errors.WithMessagef(reverts.ErrInvalidStatus, "milestone %d is %v", milestone, m.Status)
	case env.Now() > m.Deadline:
		return forge.Bytes32{}, errors.WithMessagef(reverts.ErrExpired, "milestone %d closed at %d", milestone, m.Deadline)
	case p.HasCompleted(milestone):
		return forge.Bytes32{}, errors.WithMessagef(reverts.ErrMilestoneCompleted, "milestone %d", milestone)
	}
	if mask := uint64(1)<<milestone - 1; p.Bitset&mask != mask {
		return forge.Bytes32{}, errors.WithMessagef(reverts.ErrMilestoneOrder, "milestone %d before its predecessors", milestone)
	}
	open, err := q.repo.pendingOf(user, milestone)
	if err != nil {
		return forge.Bytes32{}, err
	}
	if !open.IsZero() {
		return forge.Bytes32{}, errors.WithMessagef(reverts.ErrSubmissionPending, "submission %v", open)
	}

	nonce, err := q.repo.nonce.Next()
	if err != nil {
		return forge.Bytes32{}, err
	}
	ref := submissionRef(user, milestone, nonce)
	s := &Submission{
		ID:          evidence.ID(q.addr, ref),
		Milestone:   milestone,
		Submitter:   user,
		ContentHash: contentHash,
		Reference:   reference,
		SubmittedAt: env.Now(),
		Status:      SubmissionPending,
	}
	if err := q.repo.setSubmission(s); err != nil {
		return forge.Bytes32{}, err
	}
	if err := env.Log("EvidenceSubmitted", &evidenceSubmittedEvent{s.ID, user, milestone, contentHash, reference},
		s.ID, tx.AddressTopic(user)); err != nil {
		return forge.Bytes32{}, err
	}
	if _, err := xenv.Invoke(env, q.deps.Oracle.Address(), nil, func(env *xenv.Environment) (*evidence.Evidence, error) {
		return q.deps.Oracle.RequestVerification(env, ref, m.VerificationType, m.Threshold)
	}); err != nil {
		logger.Info("submit evidence failed", "quest", q.addr, "participant", user, "evidence", s.ID, "error", err)
		return forge.Bytes32{}, err
	}

	logger.Info("evidence submitted", "quest", q.addr, "participant", user, "milestone", milestone, "evidence", s.ID)
	return s.ID, nil
}

// VerifyEvidence records one verifier's result on a submission. A verifier reporting twice is ignored.
// Once a side reaches the milestone quorum the submission is resolved; an approval completes the
// milestone for the submitter, completing the last one finishes the quest for them.
func (q *Quest) VerifyEvidence(env *xenv.Environment, id forge.Bytes32, approved bool) error {
	verifier := env.Caller()
	logger.Debug("verifying evidence", "quest", q.addr, "evidence", id, "approved", approved, "verifier", verifier)

	if err := q.deps.ACL.Require(acl.Verifier, verifier); err != nil {
		logger.Info("verify evidence failed", "quest", q.addr, "evidence", id, "error", err)
		return err
	}
	unlock, err := env.Lock()
	if err != nil {
		return err
	}
	defer unlock()

	s, err := q.repo.getSubmission(id)
	if err != nil {
		return err
	}
	if s == nil {
		return errors.WithMessagef(reverts.ErrUnknownEvidence, "evidence %v", id)
	}
	key := resultKey{id, verifier}
	reported, err := q.repo.results.Get(key)
	if err != nil {
		return err
	}
	if reported {
		logger.Debug("verifier already reported", "quest", q.addr, "evidence", id, "verifier", verifier)
		return nil
	}
	if s.Status != SubmissionPending {
		return errors.WithMessagef(reverts.ErrAlreadyFinalized, "submission %v is %v", id, s.Status)
	}
	m, err := q.repo.getMilestone(s.Milestone)
	if err != nil {
		return err
	}
	if err := q.repo.results.Set(key, true); err != nil {
		return err
	}
	if approved {
		s.Approvals++
		m.Approvals++
	} else {
		s.Rejections++
		m.Rejections++
	}
	if err := env.Log("EvidenceVerified", &evidenceVerifiedEvent{id, verifier, approved, s.Approvals, s.Rejections},
		id, tx.AddressTopic(verifier)); err != nil {
		return err
	}

	var resolved bool
	switch {
	case s.Approvals >= m.Quorum:
		s.Status, resolved = SubmissionApproved, true
	case s.Rejections >= m.Quorum:
		s.Status, resolved = SubmissionRejected, true
	}
	if !resolved {
		return firstErr(q.repo.setSubmission(s), q.repo.setMilestone(m))
	}
	if err := env.Log("SubmissionResolved", &submissionResolvedEvent{id, s.Submitter, s.Milestone, s.Status}, id, tx.AddressTopic(s.Submitter)); err != nil {
		return err
	}
	if s.Status == SubmissionRejected {
		logger.Info("submission rejected", "quest", q.addr, "evidence", id, "participant", s.Submitter)
		return firstErr(q.repo.setSubmission(s), q.repo.setMilestone(m))
	}
	return q.approve(env, s, m)
}

// ApplyDisputeOutcome applies a reversed verdict. An approval completes the milestone, a rejection
// takes it back from a submitter still on the quest.
func (q *Quest) ApplyDisputeOutcome(env *xenv.Environment, id forge.Bytes32, approved bool) error {
	verifier := env.Caller()
	logger.Debug("applying dispute outcome", "quest", q.addr, "evidence", id, "approved", approved, "verifier", verifier)

	if err := q.deps.ACL.Require(acl.Verifier, verifier); err != nil {
		logger.Info("apply dispute outcome failed", "quest", q.addr, "evidence", id, "error", err)
		return err
	}
	unlock, err := env.Lock()
	if err != nil {
		return err
	}
	defer unlock()

	s, err := q.repo.getSubmission(id)
	if err != nil {
		return err
	}
	if s == nil {
		return errors.WithMessagef(reverts.ErrUnknownEvidence, "evidence %v", id)
	}
	outcome := SubmissionRejected
	if approved {
		outcome = SubmissionApproved
	}
	if s.Status == outcome {
		logger.Debug("dispute outcome already applied", "quest", q.addr, "evidence", id, "status", s.Status)
		return nil
	}
	m, err := q.repo.getMilestone(s.Milestone)
	if err != nil {
		return err
	}
	s.Status = outcome
	if err := env.Log("DisputeApplied", &disputeAppliedEvent{id, s.Submitter, s.Milestone, approved}, id, tx.AddressTopic(s.Submitter)); err != nil {
		return err
	}
	if approved {
		return q.approve(env, s, m)
	}

	p, err := q.repo.getParticipant(s.Submitter)
	if err != nil {
		return err
	}
	if p.Status == ParticipantActive && p.HasCompleted(m.ID) {
		p.revoke(m.ID)
		m.CompletedBy--
		if err := q.repo.setParticipant(p); err != nil {
			return err
		}
		if err := env.Log("MilestoneRevoked", &milestoneEvent{s.Submitter, m.ID, p.Completed}, tx.AddressTopic(s.Submitter)); err != nil {
			return err
		}
		logger.Info("milestone revoked", "quest", q.addr, "participant", s.Submitter, "milestone", m.ID)
	} else {
		logger.Warn("rejected submission left completion in place", "quest", q.addr, "participant", s.Submitter, "status", p.Status)
	}
	return firstErr(q.repo.setSubmission(s), q.repo.setMilestone(m))
}

// approve persists an approved submission and completes its milestone for a submitter still on the quest.
func (q *Quest) approve(env *xenv.Environment, s *Submission, m *Milestone) error {
	info, cfg, err := q.load()
	if err != nil {
		return err
	}
	p, err := q.repo.getParticipant(s.Submitter)
	if err != nil {
		return err
	}
	if p.Status != ParticipantActive || p.HasCompleted(m.ID) {
		logger.Info("approval does not change progress", "quest", q.addr, "participant", p.Address, "status", p.Status, "milestone", m.ID)
		return firstErr(q.repo.setSubmission(s), q.repo.setMilestone(m))
	}

	p.complete(m.ID)
	m.CompletedBy++
	finished := p.Completed == uint64(len(cfg.Milestones))
	if finished {
		p.Status = ParticipantCompleted
		p.FinishedAt = env.Now()
		info.Active--
		info.Completed++
	}
	if err := firstErr(q.repo.setSubmission(s), q.repo.setMilestone(m), q.repo.setParticipant(p), q.repo.setInfo(info)); err != nil {
		return err
	}
	if err := env.Log("MilestoneCompleted", &milestoneEvent{p.Address, m.ID, p.Completed}, tx.AddressTopic(p.Address)); err != nil {
		return err
	}
	logger.Info("milestone completed", "quest", q.addr, "participant", p.Address, "milestone", m.ID, "completed", p.Completed)
	if !finished {
		return nil
	}
	return q.finish(env, cfg, p)
}

// finish pays the reward and mints the achievement of a participant who completed the quest.
// Completion stands when either is refused, e.g. by an exhausted reserve.
func (q *Quest) finish(env *xenv.Environment, cfg *Config, p *Participant) error {
	reward := new(big.Int)
	if base := cfg.reward(); base.Sign() > 0 {
		paid, err := xenv.Invoke(env, q.deps.Ledger.Address(), nil, func(env *xenv.Environment) (*big.Int, error) {
			return q.deps.Ledger.DistributeReward(env, q.addr, p.Address, base)
		})
		switch {
		case err == nil:
			reward = paid
		case softRevert(err):
			logger.Warn("completion reward unpaid", "quest", q.addr, "participant", p.Address, "error", err)
		default:
			return err
		}
	}
	// the pool is managed, the stake comes back through the quest only
	returned, err := xenv.Invoke(env, q.deps.Ledger.Address(), nil, func(env *xenv.Environment) (*big.Int, error) {
		return q.deps.Ledger.Release(env, p.Address)
	})
	if err != nil {
		return err
	}
	var (
		achievement uint64
		minted      bool
	)
	id, err := xenv.Invoke(env, q.deps.NFT.Address(), nil, func(env *xenv.Environment) (uint64, error) {
		return q.deps.NFT.MintAchievement(env, p.Address, cfg.Title, cfg.Description)
	})
	switch {
	case err == nil:
		achievement, minted = id, true
	case softRevert(err):
		logger.Warn("achievement not minted", "quest", q.addr, "participant", p.Address, "error", err)
	default:
		return err
	}
	if err := env.Log("ParticipantCompleted", &participantCompletedEvent{p.Address, reward, achievement, minted}, tx.AddressTopic(p.Address)); err != nil {
		return err
	}

	logger.Info("participant completed quest", "quest", q.addr, "participant", p.Address, "reward", reward, "stake", returned, "achievement", achievement)
	return nil
}
