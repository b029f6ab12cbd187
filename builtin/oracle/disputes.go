// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package oracle

import (
	"math/big"
	"slices"
	"strings"

	"github.com/pkg/errors"

	"github.com/questforge/forge/builtin/oracle/dispute"
	"github.com/questforge/forge/builtin/oracle/evidence"
	"github.com/questforge/forge/builtin/oracle/validator"
	"github.com/questforge/forge/builtin/reverts"
	"github.com/questforge/forge/forge"
	"github.com/questforge/forge/tx"
	"github.com/questforge/forge/xenv"
)

// CreateDispute challenges a finalized verdict. The sent value must equal the dispute fee,
// which the ledger escrows until the dispute closes.
func (o *Oracle) CreateDispute(env *xenv.Environment, evidenceID forge.Bytes32, reason, evidenceText string) (forge.Bytes32, error) {
	challenger := env.Caller()
	logger.Debug("creating dispute", "evidence", evidenceID, "challenger", challenger)

	if strings.TrimSpace(reason) == "" {
		return forge.Bytes32{}, errors.WithMessage(reverts.ErrEmptyReason, "dispute reason")
	}
	cfg, err := o.config()
	if err != nil {
		return forge.Bytes32{}, err
	}
	if env.Value().Cmp(cfg.disputeFee) != 0 {
		return forge.Bytes32{}, errors.WithMessagef(reverts.ErrIncorrectPayment, "sent %v, dispute fee is %v", env.Value(), cfg.disputeFee)
	}
	unlock, err := env.Lock()
	if err != nil {
		return forge.Bytes32{}, err
	}
	defer unlock()

	e, err := o.evidence.Get(evidenceID)
	if err != nil {
		return forge.Bytes32{}, err
	}
	if e == nil {
		return forge.Bytes32{}, errors.WithMessagef(reverts.ErrUnknownEvidence, "evidence %v", evidenceID)
	}
	existing, err := o.disputes.Of(evidenceID)
	if err != nil {
		return forge.Bytes32{}, err
	}
	if existing != nil {
		return forge.Bytes32{}, errors.WithMessagef(reverts.ErrAlreadyDisputed, "evidence %v", evidenceID)
	}
	if !e.IsTerminal() {
		return forge.Bytes32{}, errors.WithMessagef(reverts.ErrNotDisputable, "evidence %v is %v", evidenceID, e.Status)
	}
	if env.Now() > e.DisputeDeadline {
		return forge.Bytes32{}, errors.WithMessagef(reverts.ErrDisputeWindowClosed, "closed at %d", e.DisputeDeadline)
	}

	id := dispute.ID(evidenceID)
	panel, err := o.validators.Rotation(rotationSeed(id, env.Now()), cfg.panelSize, func(v *validator.Validator) bool {
		return v.Address == challenger || v.Reputation < cfg.reviewerMinRep || slices.Contains(e.Voters, v.Address)
	})
	if err != nil {
		return forge.Bytes32{}, err
	}
	if uint64(len(panel)) < cfg.quorum || cfg.quorum == 0 {
		logger.Info("create dispute failed", "evidence", evidenceID, "eligible", len(panel), "quorum", cfg.quorum)
		return forge.Bytes32{}, errors.WithMessagef(reverts.ErrInsufficientReviewers, "%d eligible, quorum %d", len(panel), cfg.quorum)
	}

	d := &dispute.Dispute{
		ID:               id,
		Evidence:         evidenceID,
		Challenger:       challenger,
		Reason:           reason,
		EvidenceText:     evidenceText,
		Fee:              new(big.Int).Set(cfg.disputeFee),
		CreatedAt:        env.Now(),
		Deadline:         env.Now() + cfg.disputeTimeout,
		Status:           dispute.StatusPending,
		OriginalApproved: e.Status == evidence.StatusApproved,
		Panel:            panel,
		Quorum:           cfg.quorum,
	}
	if d.Deadline < env.Now() {
		return forge.Bytes32{}, errors.WithMessage(reverts.ErrArithmetic, "dispute deadline")
	}
	e.Status = evidence.StatusDisputed
	if err := firstErr(o.disputes.Set(d), o.evidence.Set(e)); err != nil {
		return forge.Bytes32{}, err
	}
	if err := env.Log("DisputeCreated", &disputeCreatedEvent{id, evidenceID, challenger, reason, d.Fee, d.Deadline, panel},
		id, evidenceID, tx.AddressTopic(challenger)); err != nil {
		return forge.Bytes32{}, err
	}
	if err := env.Call(o.ledger.Address(), d.Fee, func(env *xenv.Environment) error {
		return o.ledger.HoldFee(env, id, challenger, forge.NativeAsset, d.Fee)
	}); err != nil {
		logger.Info("create dispute failed", "evidence", evidenceID, "error", err)
		return forge.Bytes32{}, err
	}

	logger.Info("dispute created", "dispute", id, "evidence", evidenceID, "panel", len(panel))
	return id, nil
}

// ResolveDispute records a panel member's review. The review reaching the quorum settles the dispute.
func (o *Oracle) ResolveDispute(env *xenv.Environment, id forge.Bytes32, uphold bool, reasoning string) error {
	reviewer := env.Caller()
	logger.Debug("reviewing dispute", "dispute", id, "reviewer", reviewer, "uphold", uphold)

	cfg, err := o.config()
	if err != nil {
		return err
	}
	unlock, err := env.Lock()
	if err != nil {
		return err
	}
	defer unlock()

	d, err := o.disputes.Get(id)
	if err != nil {
		return err
	}
	if d == nil {
		return errors.WithMessagef(reverts.ErrUnknownDispute, "dispute %v", id)
	}
	if !d.IsOpen() {
		return errors.WithMessagef(reverts.ErrInvalidStatus, "dispute %v is %v", id, d.Status)
	}
	if !d.OnPanel(reviewer) {
		return errors.WithMessagef(reverts.ErrNotReviewer, "%v", reviewer)
	}
	prior, err := o.disputes.GetReview(id, reviewer)
	if err != nil {
		return err
	}
	if prior != nil {
		return errors.WithMessagef(reverts.ErrAlreadyVoted, "%v on dispute %v", reviewer, id)
	}
	if env.Now() > d.Deadline {
		return errors.WithMessagef(reverts.ErrExpired, "review closed at %d", d.Deadline)
	}

	if uphold {
		d.UpheldVotes++
	} else {
		d.RejectedVotes++
	}
	d.Status = dispute.StatusUnderReview
	review := &dispute.Review{Reviewer: reviewer, Uphold: uphold, Reasoning: reasoning, CastAt: env.Now()}
	if err := firstErr(o.disputes.SetReview(id, review), o.disputes.Set(d)); err != nil {
		return err
	}
	if err := env.Log("DisputeVoteCast", &disputeVoteEvent{id, reviewer, uphold}, id, tx.AddressTopic(reviewer)); err != nil {
		return err
	}

	if d.Votes() < d.Quorum {
		return nil
	}
	return o.settleDispute(env, cfg, d)
}

// settleDispute applies a reviewed dispute: an upheld challenge reverses the verdict and
// refunds the fee, a rejected one restores the verdict and forfeits the fee.
func (o *Oracle) settleDispute(env *xenv.Environment, cfg *config, d *dispute.Dispute) error {
	e, err := o.evidence.Get(d.Evidence)
	if err != nil {
		return err
	}
	upheld := d.Upheld()
	approved := d.OriginalApproved != upheld

	e.Status = evidence.Outcome(approved)
	e.Outcome = e.Status
	d.ResolvedAt = env.Now()
	if upheld {
		d.Status = dispute.StatusResolved
	} else {
		d.Status = dispute.StatusRejected
	}
	if err := firstErr(o.disputes.Set(d), o.evidence.Set(e)); err != nil {
		return err
	}

	// reviewers in the majority gain reputation
	for _, addr := range d.Panel {
		r, err := o.disputes.GetReview(d.ID, addr)
		if err != nil {
			return err
		}
		if r == nil || r.Uphold != upheld {
			continue
		}
		if err := o.adjustReputation(env, cfg, addr, true); err != nil {
			return err
		}
	}
	// voters behind an overturned verdict lose it
	if upheld {
		for _, addr := range e.Voters {
			vote, err := o.evidence.GetVote(e.ID, addr)
			if err != nil {
				return err
			}
			if vote.Approve != d.OriginalApproved {
				continue
			}
			if err := o.adjustReputation(env, cfg, addr, false); err != nil {
				return err
			}
		}
	}
	if err := env.Log("DisputeResolved", &disputeResolvedEvent{d.ID, e.ID, upheld, approved, false},
		d.ID, e.ID, tx.AddressTopic(d.Challenger)); err != nil {
		return err
	}

	if _, err := xenv.Invoke(env, o.ledger.Address(), nil, func(env *xenv.Environment) (*big.Int, error) {
		if upheld {
			return o.ledger.RefundFee(env, d.ID)
		}
		return o.ledger.ForfeitFee(env, d.ID)
	}); err != nil {
		return err
	}

	logger.Info("dispute resolved", "dispute", d.ID, "evidence", e.ID, "upheld", upheld, "approved", approved)
	if !upheld {
		return nil
	}
	return o.notify(env, e, func(target Verifiable, env *xenv.Environment) error {
		return target.ApplyDisputeOutcome(env, e.ID, approved)
	})
}

// ExpireDispute closes a dispute whose review deadline passed without quorum.
// The verdict stands and the fee goes back to the challenger.
func (o *Oracle) ExpireDispute(env *xenv.Environment, id forge.Bytes32) error {
	logger.Debug("expiring dispute", "dispute", id, "sender", env.Caller())

	unlock, err := env.Lock()
	if err != nil {
		return err
	}
	defer unlock()

	d, err := o.disputes.Get(id)
	if err != nil {
		return err
	}
	if d == nil {
		return errors.WithMessagef(reverts.ErrUnknownDispute, "dispute %v", id)
	}
	if !d.IsOpen() {
		return errors.WithMessagef(reverts.ErrInvalidStatus, "dispute %v is %v", id, d.Status)
	}
	if env.Now() <= d.Deadline {
		return errors.WithMessagef(reverts.ErrNotExpired, "review open until %d", d.Deadline)
	}
	e, err := o.evidence.Get(d.Evidence)
	if err != nil {
		return err
	}
	e.Status = evidence.Outcome(d.OriginalApproved)
	d.Status = dispute.StatusRejected
	d.ResolvedAt = env.Now()
	if err := firstErr(o.disputes.Set(d), o.evidence.Set(e)); err != nil {
		return err
	}
	if err := env.Log("DisputeResolved", &disputeResolvedEvent{d.ID, e.ID, false, d.OriginalApproved, true},
		d.ID, e.ID, tx.AddressTopic(d.Challenger)); err != nil {
		return err
	}
	if _, err := xenv.Invoke(env, o.ledger.Address(), nil, func(env *xenv.Environment) (*big.Int, error) {
		return o.ledger.RefundFee(env, d.ID)
	}); err != nil {
		return err
	}

	logger.Info("dispute expired", "dispute", id, "evidence", e.ID, "reviews", d.Votes())
	return nil
}

func (o *Oracle) adjustReputation(env *xenv.Environment, cfg *config, addr forge.Address, correct bool) error {
	v, err := o.validators.Get(addr)
	if err != nil {
		return err
	}
	if v == nil {
		return nil
	}
	if correct {
		v.Reward(cfg.repReward, cfg.bounds)
	} else {
		v.Penalize(cfg.repPenalty, cfg.bounds)
		if v.CorrectVotes > 0 {
			v.CorrectVotes--
		}
	}
	if err := o.validators.Set(v); err != nil {
		return err
	}
	return env.Log("ReputationUpdated", &reputationUpdatedEvent{addr, v.Reputation, correct}, tx.AddressTopic(addr))
}
