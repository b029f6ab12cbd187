// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package oracle

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/questforge/forge/builtin/oracle/evidence"
	"github.com/questforge/forge/builtin/oracle/validator"
	"github.com/questforge/forge/builtin/reverts"
	"github.com/questforge/forge/forge"
	"github.com/questforge/forge/tx"
	"github.com/questforge/forge/xenv"
)

// RequestVerification opens voting on the caller's evidence ref. The evidence id is
// evidence.ID(caller, ref), so a requester only ever claims ids of its own.
// A zero threshold takes the default, and the threshold never exceeds the number of active validators.
func (o *Oracle) RequestVerification(env *xenv.Environment, ref forge.Bytes32, typ string, threshold uint64) (*evidence.Evidence, error) {
	requester := env.Caller()
	if ref.IsZero() {
		return nil, errors.WithMessage(reverts.ErrEmptyEvidence, "evidence ref")
	}
	id := evidence.ID(requester, ref)
	logger.Debug("requesting verification", "evidence", id, "requester", requester, "type", typ, "threshold", threshold)

	cfg, err := o.config()
	if err != nil {
		return nil, err
	}
	unlock, err := env.Lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	existing, err := o.evidence.Get(id)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.WithMessagef(reverts.ErrAlreadyRequested, "evidence %v", id)
	}
	active, err := o.validators.ActiveLen()
	if err != nil {
		return nil, err
	}
	if active == 0 {
		logger.Info("request verification failed", "evidence", id, "error", reverts.ErrNoActiveValidators)
		return nil, errors.WithMessagef(reverts.ErrNoActiveValidators, "evidence %v", id)
	}
	if threshold == 0 {
		threshold = cfg.defaultThreshold
	}
	if threshold > active {
		logger.Warn("threshold degraded to active validators", "evidence", id, "threshold", threshold, "active", active)
		threshold = active
	}
	if threshold == 0 {
		return nil, errors.WithMessage(reverts.ErrInvalidConfig, "zero threshold")
	}
	deadline, err := forge.SafeAdd(new(big.Int).SetUint64(env.Now()), new(big.Int).SetUint64(cfg.verificationWindow))
	if err != nil || !deadline.IsUint64() {
		return nil, errors.WithMessage(reverts.ErrArithmetic, "verification deadline")
	}

	e := evidence.New(id, requester, typ, threshold, env.Now(), deadline.Uint64())
	if e.Assigned, err = o.validators.Rotation(rotationSeed(id, env.Now()), threshold, nil); err != nil {
		return nil, err
	}
	if err := o.evidence.Set(e); err != nil {
		return nil, err
	}
	if err := env.Log("VerificationRequested", &verificationRequestedEvent{id, requester, typ, threshold, e.Deadline, e.Assigned},
		id, tx.AddressTopic(requester)); err != nil {
		return nil, err
	}

	logger.Info("verification requested", "evidence", id, "requester", requester, "threshold", threshold)
	return e, nil
}

// CastVote records the caller's vote. The vote that reaches the threshold finalizes the evidence.
func (o *Oracle) CastVote(env *xenv.Environment, id forge.Bytes32, approve bool, confidence uint64, reasoning string) error {
	voter := env.Caller()
	logger.Debug("casting vote", "evidence", id, "validator", voter, "approve", approve, "confidence", confidence)

	if confidence > 100 {
		return errors.WithMessagef(reverts.ErrInvalidConfidence, "confidence %d", confidence)
	}
	cfg, err := o.config()
	if err != nil {
		return err
	}
	unlock, err := env.Lock()
	if err != nil {
		return err
	}
	defer unlock()

	v, err := o.activeValidator(voter)
	if err != nil {
		logger.Info("cast vote failed", "evidence", id, "validator", voter, "error", err)
		return err
	}
	e, err := o.evidence.Get(id)
	if err != nil {
		return err
	}
	if e == nil {
		return errors.WithMessagef(reverts.ErrUnknownEvidence, "evidence %v", id)
	}
	switch {
	case e.Status == evidence.StatusExpired:
		return errors.WithMessagef(reverts.ErrExpired, "evidence %v expired", id)
	case e.Status != evidence.StatusPending:
		return errors.WithMessagef(reverts.ErrAlreadyFinalized, "evidence %v is %v", id, e.Status)
	case env.Now() > e.Deadline:
		return errors.WithMessagef(reverts.ErrExpired, "voting closed at %d", e.Deadline)
	}
	prior, err := o.evidence.GetVote(id, voter)
	if err != nil {
		return err
	}
	if prior != nil {
		return errors.WithMessagef(reverts.ErrAlreadyVoted, "%v on %v", voter, id)
	}

	power, err := validator.Power(v, env.Now(), cfg.power)
	if err != nil {
		return reverts.Arithmetic(err)
	}
	if err := e.Tally(voter, approve, power); err != nil {
		return reverts.Arithmetic(err)
	}
	v.RecordVote(env.Now(), cfg.power.Window)

	vote := &evidence.Vote{Validator: voter, Approve: approve, Confidence: confidence, Power: power, Reasoning: reasoning, CastAt: env.Now()}
	if err := firstErr(o.evidence.SetVote(id, vote), o.validators.Set(v), o.evidence.Set(e)); err != nil {
		return err
	}
	if err := env.Log("VoteCast", &voteCastEvent{id, voter, approve, confidence, power}, id, tx.AddressTopic(voter)); err != nil {
		return err
	}
	logger.Info("vote cast", "evidence", id, "validator", voter, "power", power, "votes", e.Votes())

	if e.Votes() < e.Threshold {
		return nil
	}
	return o.finalize(env, cfg, e)
}

// finalize settles the verdict, updates voter reputation, pays agreeing voters and calls the requester back.
func (o *Oracle) finalize(env *xenv.Environment, cfg *config, e *evidence.Evidence) error {
	approved, score, err := e.Verdict()
	if err != nil {
		return reverts.Arithmetic(err)
	}
	e.Status = evidence.Outcome(approved)
	e.Outcome = e.Status
	e.ConfidenceScore = score
	e.FinalizedAt = env.Now()
	e.DisputeDeadline = env.Now() + cfg.disputeWindow
	if e.DisputeDeadline < env.Now() {
		return errors.WithMessage(reverts.ErrArithmetic, "dispute deadline")
	}
	if err := o.evidence.Set(e); err != nil {
		return err
	}
	if err := env.Log("VerificationCompleted", &verificationCompletedEvent{e.ID, approved, score, e.ApprovalPower, e.RejectionPower, e.DisputeDeadline},
		e.ID, tx.AddressTopic(e.Requester)); err != nil {
		return err
	}

	type payout struct {
		v      *validator.Validator
		amount *big.Int
	}
	var payouts []payout
	for _, addr := range e.Voters {
		vote, err := o.evidence.GetVote(e.ID, addr)
		if err != nil {
			return err
		}
		v, err := o.validators.Get(addr)
		if err != nil {
			return err
		}
		agreed := vote.Approve == approved
		if agreed {
			v.CorrectVotes++
			v.Reward(cfg.repReward, cfg.bounds)
			reward, err := forge.MulDiv(cfg.baseReward, new(big.Int).SetUint64(vote.Confidence), big.NewInt(100))
			if err != nil {
				return reverts.Arithmetic(err)
			}
			if reward.Sign() > 0 {
				payouts = append(payouts, payout{v, reward})
			}
		} else {
			v.Penalize(cfg.repPenalty, cfg.bounds)
		}
		if err := o.validators.Set(v); err != nil {
			return err
		}
		if err := env.Log("ReputationUpdated", &reputationUpdatedEvent{addr, v.Reputation, agreed}, tx.AddressTopic(addr)); err != nil {
			return err
		}
	}

	for _, p := range payouts {
		paid, err := xenv.Invoke(env, o.ledger.Address(), nil, func(env *xenv.Environment) (*big.Int, error) {
			return o.ledger.DistributeReward(env, o.addr, p.v.Address, p.amount)
		})
		if err != nil {
			if !softRevert(err) {
				return err
			}
			// a drained reserve or a reverting recipient forfeits the reward, the verdict stands
			logger.Warn("validator reward unpaid", "validator", p.v.Address, "evidence", e.ID, "reward", p.amount, "error", err)
			continue
		}
		if p.v.TotalEarnings, err = forge.SafeAdd(p.v.TotalEarnings, paid); err != nil {
			return reverts.Arithmetic(err)
		}
		if err := o.validators.Set(p.v); err != nil {
			return err
		}
		if err := env.Log("ValidatorRewarded", &validatorRewardedEvent{p.v.Address, e.ID, paid}, e.ID, tx.AddressTopic(p.v.Address)); err != nil {
			return err
		}
	}

	logger.Info("verification completed", "evidence", e.ID, "approved", approved, "confidence", score, "paid", len(payouts))
	return o.notify(env, e, func(target Verifiable, env *xenv.Environment) error {
		return target.VerifyEvidence(env, e.ID, approved)
	})
}

// ExpireVerification closes a pending evidence whose deadline passed. The requester is told it was rejected.
func (o *Oracle) ExpireVerification(env *xenv.Environment, id forge.Bytes32) error {
	logger.Debug("expiring verification", "evidence", id, "sender", env.Caller())

	unlock, err := env.Lock()
	if err != nil {
		return err
	}
	defer unlock()

	e, err := o.evidence.Get(id)
	if err != nil {
		return err
	}
	if e == nil {
		return errors.WithMessagef(reverts.ErrUnknownEvidence, "evidence %v", id)
	}
	if e.Status != evidence.StatusPending {
		return errors.WithMessagef(reverts.ErrAlreadyFinalized, "evidence %v is %v", id, e.Status)
	}
	if env.Now() <= e.Deadline {
		return errors.WithMessagef(reverts.ErrNotExpired, "voting open until %d", e.Deadline)
	}
	e.Status = evidence.StatusExpired
	e.FinalizedAt = env.Now()
	if err := o.evidence.Set(e); err != nil {
		return err
	}
	if err := env.Log("VerificationExpired", &verificationExpiredEvent{id, e.Votes()}, id, tx.AddressTopic(e.Requester)); err != nil {
		return err
	}

	logger.Info("verification expired", "evidence", id, "votes", e.Votes())
	return o.notify(env, e, func(target Verifiable, env *xenv.Environment) error {
		return target.VerifyEvidence(env, e.ID, false)
	})
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
