// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package oracle

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/questforge/forge/builtin/acl"
	"github.com/questforge/forge/builtin/oracle/dispute"
	"github.com/questforge/forge/builtin/oracle/evidence"
	"github.com/questforge/forge/builtin/oracle/validator"
	"github.com/questforge/forge/builtin/params"
	"github.com/questforge/forge/builtin/reverts"
	"github.com/questforge/forge/builtin/solidity"
	"github.com/questforge/forge/forge"
	"github.com/questforge/forge/log"
	"github.com/questforge/forge/state"
	"github.com/questforge/forge/xenv"
)

var logger = log.WithContext("pkg", "oracle")

// Ledger is the value store the oracle instructs. Collateral lives in the pool keyed by the oracle address.
type Ledger interface {
	Address() forge.Address
	StakeFor(env *xenv.Environment, owner forge.Address, amount *big.Int, asset forge.Address) (forge.Bytes32, error)
	Seize(env *xenv.Environment, owner forge.Address, bps uint64) (*big.Int, error)
	Release(env *xenv.Environment, owner forge.Address) (*big.Int, error)
	DistributeReward(env *xenv.Environment, quest, participant forge.Address, base *big.Int) (*big.Int, error)
	HoldFee(env *xenv.Environment, ref forge.Bytes32, payer, asset forge.Address, amount *big.Int) error
	RefundFee(env *xenv.Environment, ref forge.Bytes32) (*big.Int, error)
	ForfeitFee(env *xenv.Environment, ref forge.Bytes32) (*big.Int, error)
}

// Verifiable receives verification results for the evidence it requested.
type Verifiable interface {
	Address() forge.Address
	VerifyEvidence(env *xenv.Environment, evidenceID forge.Bytes32, approved bool) error
	ApplyDisputeOutcome(env *xenv.Environment, evidenceID forge.Bytes32, approved bool) error
}

// Requesters resolves the callback target of a requester. It returns nil for an unknown address.
type Requesters interface {
	Verifiable(addr forge.Address) (Verifiable, error)
}

// RequestersFunc adapts a function to Requesters.
type RequestersFunc func(addr forge.Address) (Verifiable, error)

func (f RequestersFunc) Verifiable(addr forge.Address) (Verifiable, error) { return f(addr) }

// Oracle implements native methods of the `VerificationOracle` contract.
type Oracle struct {
	addr       forge.Address
	validators *validator.Service
	evidence   *evidence.Service
	disputes   *dispute.Service
	ledger     Ledger
	params     *params.Params
	acl        *acl.ACL
	requesters Requesters
}

// New create a new instance.
func New(addr forge.Address, state *state.State, ledger Ledger, params *params.Params, acl *acl.ACL, requesters Requesters) *Oracle {
	sctx := solidity.NewContext(addr, state)
	return &Oracle{
		addr:       addr,
		validators: validator.New(sctx),
		evidence:   evidence.NewService(sctx),
		disputes:   dispute.New(sctx),
		ledger:     ledger,
		params:     params,
		acl:        acl,
		requesters: requesters,
	}
}

func (o *Oracle) Address() forge.Address { return o.addr }

//
// Getters - no state change
//

func (o *Oracle) GetValidator(addr forge.Address) (*validator.Validator, error) {
	return o.validators.Get(addr)
}

// VotingPower returns the power a vote of addr would carry at now. Inactive validators have none.
func (o *Oracle) VotingPower(addr forge.Address, now uint64) (*big.Int, error) {
	v, err := o.validators.Get(addr)
	if err != nil {
		return nil, err
	}
	if !v.IsActive() {
		return new(big.Int), nil
	}
	cfg, err := o.config()
	if err != nil {
		return nil, err
	}
	return validator.Power(v, now, cfg.power)
}

func (o *Oracle) GetEvidence(id forge.Bytes32) (*evidence.Evidence, error) {
	return o.evidence.Get(id)
}

func (o *Oracle) GetVote(id forge.Bytes32, addr forge.Address) (*evidence.Vote, error) {
	return o.evidence.GetVote(id, addr)
}

func (o *Oracle) GetDispute(id forge.Bytes32) (*dispute.Dispute, error) {
	return o.disputes.Get(id)
}

func (o *Oracle) GetReview(id forge.Bytes32, reviewer forge.Address) (*dispute.Review, error) {
	return o.disputes.GetReview(id, reviewer)
}

// DisputeOf returns the dispute raised against an evidence, nil if none.
func (o *Oracle) DisputeOf(evidenceID forge.Bytes32) (*dispute.Dispute, error) {
	return o.disputes.Of(evidenceID)
}

func (o *Oracle) PendingRequests() ([]forge.Bytes32, error) {
	return o.evidence.Pending()
}

func (o *Oracle) ActiveValidators() ([]forge.Address, error) {
	return o.validators.Active()
}

//
// internals
//

type config struct {
	power              validator.PowerParams
	bounds             validator.Bounds
	repReward          uint64
	repPenalty         uint64
	verificationWindow uint64
	defaultThreshold   uint64
	disputeWindow      uint64
	disputeTimeout     uint64
	panelSize          uint64
	quorum             uint64
	reviewerMinRep     uint64
	cooldown           uint64
	minStake           *big.Int
	disputeFee         *big.Int
	baseReward         *big.Int
}

func (o *Oracle) config() (*config, error) {
	var (
		c   config
		err error
	)
	for _, p := range []struct {
		param *forge.Param
		dst   *uint64
	}{
		{forge.ParamBaseVotingPower, &c.power.Base},
		{forge.ParamMinReputation, &c.power.MinReputation},
		{forge.ParamMaxReputationMultiplier, &c.power.MaxMultiplierBps},
		{forge.ParamActivityBonusPerVote, &c.power.BonusPerVote},
		{forge.ParamMaxActivityBonus, &c.power.MaxBonus},
		{forge.ParamActivityWindow, &c.power.Window},
		{forge.ParamMaxReputation, &c.bounds.Max},
		{forge.ParamReputationReward, &c.repReward},
		{forge.ParamReputationPenalty, &c.repPenalty},
		{forge.ParamVerificationWindow, &c.verificationWindow},
		{forge.ParamDefaultThreshold, &c.defaultThreshold},
		{forge.ParamDisputeWindow, &c.disputeWindow},
		{forge.ParamDisputeTimeout, &c.disputeTimeout},
		{forge.ParamDisputePanelSize, &c.panelSize},
		{forge.ParamDisputeQuorum, &c.quorum},
		{forge.ParamReviewerMinReputation, &c.reviewerMinRep},
		{forge.ParamUnregisterCooldown, &c.cooldown},
	} {
		if *p.dst, err = o.params.Uint64(p.param); err != nil {
			return nil, err
		}
	}
	c.bounds.Min = c.power.MinReputation
	if c.bounds.Min > c.bounds.Max {
		return nil, errors.WithMessagef(reverts.ErrInvalidConfig, "reputation bounds [%d, %d]", c.bounds.Min, c.bounds.Max)
	}
	if c.minStake, err = o.params.Get(forge.ParamMinValidatorStake); err != nil {
		return nil, err
	}
	if c.disputeFee, err = o.params.Get(forge.ParamDisputeFee); err != nil {
		return nil, err
	}
	if c.baseReward, err = o.params.Get(forge.ParamValidatorBaseReward); err != nil {
		return nil, err
	}
	return &c, nil
}

// activeValidator loads the caller's record, which must be Active.
func (o *Oracle) activeValidator(addr forge.Address) (*validator.Validator, error) {
	v, err := o.validators.Get(addr)
	if err != nil {
		return nil, err
	}
	if !v.IsActive() {
		return nil, errors.WithMessagef(reverts.ErrNotValidator, "%v", addr)
	}
	return v, nil
}

// notify delivers a result to the requester of an evidence. A requester that reverts keeps
// its own state; the verdict stands either way. Arithmetic and internal failures abort.
func (o *Oracle) notify(env *xenv.Environment, e *evidence.Evidence, call func(Verifiable, *xenv.Environment) error) error {
	if o.requesters == nil {
		return nil
	}
	target, err := o.requesters.Verifiable(e.Requester)
	if err != nil {
		return err
	}
	if target == nil {
		logger.Debug("requester takes no callback", "requester", e.Requester, "evidence", e.ID)
		return nil
	}
	err = env.Call(target.Address(), nil, func(env *xenv.Environment) error {
		return call(target, env)
	})
	if err == nil {
		return nil
	}
	if softRevert(err) {
		logger.Warn("requester callback reverted", "requester", e.Requester, "evidence", e.ID, "error", err)
		return nil
	}
	return err
}

// softRevert reports whether err is a revert a nested call may fail with without aborting the caller.
func softRevert(err error) bool {
	kind := reverts.KindOf(err)
	return kind != reverts.KindInternal && kind != reverts.KindArithmetic
}

// rotationSeed mixes an id with the block time.
func rotationSeed(id forge.Bytes32, now uint64) forge.Bytes32 {
	return forge.Blake2b(id.Bytes(), forge.Uint64Bytes(now))
}
