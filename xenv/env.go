// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package xenv

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/questforge/forge/builtin/reverts"
	"github.com/questforge/forge/forge"
	"github.com/questforge/forge/state"
	"github.com/questforge/forge/tx"
)

// BlockContext block context.
type BlockContext struct {
	Number uint32
	Time   uint64
}

// TransactionContext transaction context.
type TransactionContext struct {
	ID     forge.Bytes32
	Origin forge.Address
}

// Receiver is code attached to an account, run right after value arrives at it.
// It may call back into any contract through env.
type Receiver interface {
	Receive(env *Environment, asset forge.Address, amount *big.Int) error
}

// ReceiverFunc adapts a func to Receiver.
type ReceiverFunc func(env *Environment, asset forge.Address, amount *big.Int) error

func (f ReceiverFunc) Receive(env *Environment, asset forge.Address, amount *big.Int) error {
	return f(env, asset, amount)
}

// Receivers resolves the receive hook of an address. Plain accounts have none.
type Receivers interface {
	ReceiverOf(addr forge.Address) Receiver
}

// frame is shared by every environment of one transaction.
type frame struct {
	locks     map[forge.Address]bool
	events    tx.Events
	depth     int
	readOnly  bool
	receivers Receivers
}

// Environment an env to execute a native contract call.
type Environment struct {
	state    *state.State
	blockCtx *BlockContext
	txCtx    *TransactionContext
	caller   forge.Address
	to       forge.Address
	value    *big.Int
	frame    *frame
}

// New create the root env of a transaction. The root acts on behalf of the origin.
func New(
	state *state.State,
	blockCtx *BlockContext,
	txCtx *TransactionContext,
	receivers Receivers,
	readOnly bool,
) *Environment {
	return &Environment{
		state:    state,
		blockCtx: blockCtx,
		txCtx:    txCtx,
		caller:   txCtx.Origin,
		to:       txCtx.Origin,
		value:    new(big.Int),
		frame: &frame{
			locks:     make(map[forge.Address]bool),
			readOnly:  readOnly,
			receivers: receivers,
		},
	}
}

func (env *Environment) State() *state.State                     { return env.state }
func (env *Environment) TransactionContext() *TransactionContext { return env.txCtx }
func (env *Environment) BlockContext() *BlockContext             { return env.blockCtx }
func (env *Environment) Caller() forge.Address                   { return env.caller }
func (env *Environment) To() forge.Address                       { return env.to }
func (env *Environment) Value() *big.Int                         { return new(big.Int).Set(env.value) }
func (env *Environment) Now() uint64                             { return env.blockCtx.Time }
func (env *Environment) Origin() forge.Address                   { return env.txCtx.Origin }
func (env *Environment) ReadOnly() bool                          { return env.frame.readOnly }
func (env *Environment) Events() tx.Events                       { return env.frame.events }
func (env *Environment) Depth() int                              { return env.frame.depth }

// Call performs a message call from the current contract to `to`, moving native value first.
// A failed call reverts its own effects and events; the error is returned to the caller.
func (env *Environment) Call(to forge.Address, value *big.Int, fn func(env *Environment) error) error {
	if value == nil {
		value = new(big.Int)
	}
	if value.Sign() < 0 {
		return reverts.ErrInvalidAmount
	}
	if env.frame.depth >= forge.MaxCallDepth {
		return reverts.ErrCallDepth
	}
	if value.Sign() > 0 && env.frame.readOnly {
		return reverts.ErrReadOnly
	}

	rev := env.state.NewCheckpoint()
	nEvents := len(env.frame.events)
	revert := func() {
		env.state.RevertTo(rev)
		env.frame.events = env.frame.events[:nEvents]
	}

	if err := env.state.Transfer(forge.NativeAsset, env.to, to, value); err != nil {
		revert()
		if errors.Is(err, state.ErrInsufficientBalance) {
			return errors.WithMessagef(reverts.ErrInsufficientBalance, "call value from %v", env.to)
		}
		return err
	}

	child := &Environment{
		state:    env.state,
		blockCtx: env.blockCtx,
		txCtx:    env.txCtx,
		caller:   env.to,
		to:       to,
		value:    new(big.Int).Set(value),
		frame:    env.frame,
	}

	env.frame.depth++
	err := fn(child)
	env.frame.depth--
	if err != nil {
		revert()
		return err
	}
	return nil
}

// Invoke is Call for functions returning a value.
func Invoke[T any](env *Environment, to forge.Address, value *big.Int, fn func(env *Environment) (T, error)) (T, error) {
	var out T
	err := env.Call(to, value, func(env *Environment) error {
		var err error
		out, err = fn(env)
		return err
	})
	return out, err
}

// Transfer sends amount of asset held by the current contract to `to` and then runs the
// recipient's receive hook. Callers write their own effects before transferring.
func (env *Environment) Transfer(asset, to forge.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	if err := env.move(asset, to, amount); err != nil {
		return err
	}
	return env.notify(asset, to, amount)
}

// TryTransfer is Transfer for payments the recipient may refuse. When the receive hook
// reverts, the value stays with the current contract and delivered is false.
func (env *Environment) TryTransfer(asset, to forge.Address, amount *big.Int) (delivered bool, err error) {
	if amount.Sign() == 0 {
		return true, nil
	}
	rev := env.state.NewCheckpoint()
	if err := env.move(asset, to, amount); err != nil {
		return false, err
	}
	if err := env.notify(asset, to, amount); err != nil {
		if reverts.KindOf(err) == reverts.KindInternal {
			return false, err
		}
		env.state.RevertTo(rev)
		return false, nil
	}
	return true, nil
}

func (env *Environment) move(asset, to forge.Address, amount *big.Int) error {
	if env.frame.readOnly {
		return reverts.ErrReadOnly
	}
	if err := env.state.Transfer(asset, env.to, to, amount); err != nil {
		if errors.Is(err, state.ErrInsufficientBalance) {
			return errors.WithMessagef(reverts.ErrInsufficientBalance, "transfer from %v", env.to)
		}
		return err
	}
	return nil
}

// notify runs the receive hook of `to` as a call into it, the value already moved.
func (env *Environment) notify(asset, to forge.Address, amount *big.Int) error {
	if env.frame.receivers == nil {
		return nil
	}
	receiver := env.frame.receivers.ReceiverOf(to)
	if receiver == nil {
		return nil
	}
	var value *big.Int
	if forge.IsNative(asset) {
		value = amount
	}
	return env.Call(to, nil, func(hookEnv *Environment) error {
		if value != nil {
			hookEnv.value = new(big.Int).Set(value)
		}
		return receiver.Receive(hookEnv, asset, amount)
	})
}

// TransferFrom pulls fungible tokens from the transaction origin into the current contract.
// The origin signed the transaction, which stands for its approval.
func (env *Environment) TransferFrom(asset, from forge.Address, amount *big.Int) error {
	if forge.IsNative(asset) {
		return errors.WithMessage(reverts.ErrUnsupportedAsset, "native value must be sent with the call")
	}
	if env.frame.readOnly {
		return reverts.ErrReadOnly
	}
	if from != env.txCtx.Origin {
		return errors.WithMessagef(reverts.ErrUnauthorized, "token pull from %v not approved", from)
	}
	if err := env.state.Transfer(asset, from, env.to, amount); err != nil {
		if errors.Is(err, state.ErrInsufficientBalance) {
			return errors.WithMessagef(reverts.ErrInsufficientBalance, "token pull from %v", from)
		}
		return err
	}
	return nil
}

// Lock guards the current contract against reentrant calls within this transaction.
func (env *Environment) Lock() (unlock func(), err error) {
	if env.frame.readOnly {
		return nil, reverts.ErrReadOnly
	}
	addr := env.to
	if env.frame.locks[addr] {
		return nil, errors.WithMessagef(reverts.ErrReentrancy, "contract %v", addr)
	}
	env.frame.locks[addr] = true
	return func() { delete(env.frame.locks, addr) }, nil
}

// Log emits an event from the current contract.
func (env *Environment) Log(name string, data any, topics ...forge.Bytes32) error {
	if env.frame.readOnly {
		return reverts.ErrReadOnly
	}
	ev, err := tx.NewEvent(env.to, name, data, topics...)
	if err != nil {
		return errors.Wrap(err, "encode event")
	}
	env.frame.events = append(env.frame.events, ev)
	return nil
}
