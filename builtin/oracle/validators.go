// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package oracle

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/questforge/forge/builtin/acl"
	"github.com/questforge/forge/builtin/oracle/validator"
	"github.com/questforge/forge/builtin/reverts"
	"github.com/questforge/forge/forge"
	"github.com/questforge/forge/tx"
	"github.com/questforge/forge/xenv"
)

// RegisterValidator stakes the sent value as collateral and registers the caller at the minimum reputation.
// A slashed validator registering again first gets its remaining collateral back.
func (o *Oracle) RegisterValidator(env *xenv.Environment, stake *big.Int) error {
	addr := env.Caller()
	logger.Debug("registering validator", "validator", addr, "stake", stake)

	cfg, err := o.config()
	if err != nil {
		return err
	}
	if stake == nil || stake.Cmp(cfg.minStake) < 0 {
		return errors.WithMessagef(reverts.ErrInsufficientAmount, "stake %v below %v", stake, cfg.minStake)
	}
	if env.Value().Cmp(stake) != 0 {
		return errors.WithMessagef(reverts.ErrIncorrectPayment, "sent %v, want %v", env.Value(), stake)
	}
	unlock, err := env.Lock()
	if err != nil {
		return err
	}
	defer unlock()

	v, err := o.validators.Get(addr)
	if err != nil {
		return err
	}
	if v != nil && (v.Status == validator.StatusActive || v.Status == validator.StatusSuspended) {
		return errors.WithMessagef(reverts.ErrAlreadyRegistered, "%v is %v", addr, v.Status)
	}
	leftover := v != nil && v.Stake.Sign() > 0
	if v == nil {
		v = &validator.Validator{Address: addr, TotalEarnings: new(big.Int)}
	}
	v.Stake = new(big.Int).Set(stake)
	v.Reputation = cfg.bounds.Min
	v.Status = validator.StatusActive
	v.RegisteredAt = env.Now()
	v.LastVoteAt = env.Now()
	v.RecentVotes = nil
	if err := o.validators.Set(v); err != nil {
		return err
	}
	if err := env.Log("ValidatorRegistered", &validatorRegisteredEvent{addr, stake, v.Reputation}, tx.AddressTopic(addr)); err != nil {
		return err
	}

	if leftover {
		if _, err := xenv.Invoke(env, o.ledger.Address(), nil, func(env *xenv.Environment) (*big.Int, error) {
			return o.ledger.Release(env, addr)
		}); err != nil {
			return err
		}
	}
	if _, err := xenv.Invoke(env, o.ledger.Address(), stake, func(env *xenv.Environment) (forge.Bytes32, error) {
		return o.ledger.StakeFor(env, addr, stake, forge.NativeAsset)
	}); err != nil {
		logger.Info("register validator failed", "validator", addr, "error", err)
		return err
	}

	logger.Info("validator registered", "validator", addr, "stake", stake)
	return nil
}

// UnregisterValidator releases the caller's collateral once the cooldown after its last vote elapsed.
func (o *Oracle) UnregisterValidator(env *xenv.Environment) (*big.Int, error) {
	addr := env.Caller()
	logger.Debug("unregistering validator", "validator", addr)

	cfg, err := o.config()
	if err != nil {
		return nil, err
	}
	unlock, err := env.Lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	v, err := o.validators.Get(addr)
	if err != nil {
		return nil, err
	}
	if v == nil || v.Status == validator.StatusUnregistered {
		return nil, errors.WithMessagef(reverts.ErrNotValidator, "%v", addr)
	}
	if v.Status != validator.StatusActive && v.Status != validator.StatusSlashed {
		return nil, errors.WithMessagef(reverts.ErrInvalidStatus, "%v is %v", addr, v.Status)
	}
	if readyAt := v.LastVoteAt + cfg.cooldown; env.Now() < readyAt {
		return nil, errors.WithMessagef(reverts.ErrCooldown, "unregister allowed at %d", readyAt)
	}

	released := new(big.Int).Set(v.Stake)
	v.Stake = new(big.Int)
	v.Status = validator.StatusUnregistered
	if err := o.validators.Set(v); err != nil {
		return nil, err
	}
	if err := env.Log("ValidatorUnregistered", &validatorUnregisteredEvent{addr, released}, tx.AddressTopic(addr)); err != nil {
		return nil, err
	}
	if released.Sign() > 0 {
		if _, err := xenv.Invoke(env, o.ledger.Address(), nil, func(env *xenv.Environment) (*big.Int, error) {
			return o.ledger.Release(env, addr)
		}); err != nil {
			logger.Info("unregister validator failed", "validator", addr, "error", err)
			return nil, err
		}
	}

	logger.Info("validator unregistered", "validator", addr, "released", released)
	return released, nil
}

// SuspendValidator takes an active validator out of the voting set. Admin only.
func (o *Oracle) SuspendValidator(env *xenv.Environment, addr forge.Address) error {
	return o.setStatus(env, addr, validator.StatusActive, validator.StatusSuspended)
}

// ReinstateValidator returns a suspended validator to the voting set. Admin only.
func (o *Oracle) ReinstateValidator(env *xenv.Environment, addr forge.Address) error {
	return o.setStatus(env, addr, validator.StatusSuspended, validator.StatusActive)
}

func (o *Oracle) setStatus(env *xenv.Environment, addr forge.Address, from, to validator.Status) error {
	logger.Debug("changing validator status", "validator", addr, "to", to, "sender", env.Caller())

	if err := o.acl.Require(acl.Admin, env.Caller()); err != nil {
		return err
	}
	v, err := o.validators.Get(addr)
	if err != nil {
		return err
	}
	if v == nil {
		return errors.WithMessagef(reverts.ErrNotValidator, "%v", addr)
	}
	if v.Status != from {
		return errors.WithMessagef(reverts.ErrInvalidStatus, "%v is %v, want %v", addr, v.Status, from)
	}
	v.Status = to
	if err := o.validators.Set(v); err != nil {
		return err
	}
	if err := env.Log("ValidatorStatusChanged", &validatorStatusEvent{addr, to.String()}, tx.AddressTopic(addr)); err != nil {
		return err
	}

	logger.Info("validator status changed", "validator", addr, "status", to)
	return nil
}

// SlashValidator seizes bps of the validator's collateral into the treasury and marks it Slashed.
// Admin only.
func (o *Oracle) SlashValidator(env *xenv.Environment, addr forge.Address, bps uint64, reason string) (*big.Int, error) {
	logger.Debug("slashing validator", "validator", addr, "bps", bps, "sender", env.Caller())

	if bps > forge.BasisPoints {
		logger.Error("slash percentage out of range", "validator", addr, "bps", bps)
		return nil, errors.WithMessagef(reverts.ErrArithmetic, "slash of %d bps exceeds 100%%", bps)
	}
	if err := o.acl.Require(acl.Admin, env.Caller()); err != nil {
		return nil, err
	}
	unlock, err := env.Lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	v, err := o.validators.Get(addr)
	if err != nil {
		return nil, err
	}
	if v == nil || v.Status == validator.StatusUnregistered {
		return nil, errors.WithMessagef(reverts.ErrNotValidator, "%v", addr)
	}
	if v.Status == validator.StatusSlashed {
		return nil, errors.WithMessagef(reverts.ErrAlreadySlashed, "%v", addr)
	}

	// seizing moves collateral into the treasury only, no value leaves the ledger
	seized, err := xenv.Invoke(env, o.ledger.Address(), nil, func(env *xenv.Environment) (*big.Int, error) {
		return o.ledger.Seize(env, addr, bps)
	})
	if err != nil {
		logger.Info("slash validator failed", "validator", addr, "error", err)
		return nil, err
	}
	if v.Stake, err = forge.SafeSub(v.Stake, seized); err != nil {
		return nil, reverts.Arithmetic(err)
	}
	v.Status = validator.StatusSlashed
	if err := o.validators.Set(v); err != nil {
		return nil, err
	}
	if err := env.Log("ValidatorSlashed", &validatorSlashedEvent{addr, bps, seized, v.Stake, reason}, tx.AddressTopic(addr)); err != nil {
		return nil, err
	}

	logger.Info("validator slashed", "validator", addr, "seized", seized, "remaining", v.Stake)
	return seized, nil
}
