// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package runtime

import (
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/pkg/errors"

	"github.com/questforge/forge/block"
	"github.com/questforge/forge/builtin"
	"github.com/questforge/forge/builtin/reverts"
	"github.com/questforge/forge/forge"
	"github.com/questforge/forge/kv"
	"github.com/questforge/forge/log"
	"github.com/questforge/forge/state"
	"github.com/questforge/forge/tx"
	"github.com/questforge/forge/xenv"
)

var logger = log.WithContext("pkg", "runtime")

// Tx is the body of a transaction, run against the builtin contracts on behalf of its origin.
type Tx func(env *xenv.Environment, c *builtin.Contracts) error

// Genesis builds the initial state of an empty database and returns block 0.
type Genesis interface {
	Build(db kv.GetPutter) (*block.Block, error)
}

// LogWriter indexes the events of sealed blocks.
type LogWriter interface {
	Write(blk *block.Block) error
}

type Options struct {
	Clock Clock     // defaults to SystemClock
	Logs  LogWriter // optional
}

type receivers map[forge.Address]xenv.Receiver

func (r receivers) ReceiverOf(addr forge.Address) xenv.Receiver { return r[addr] }

// Runtime executes transactions one at a time against the pending state and seals them into blocks.
type Runtime struct {
	mu        sync.RWMutex
	db        kv.GetPutter
	chain     *chain
	clock     Clock
	logs      LogWriter
	receivers receivers

	best      *block.Header
	st        *state.State
	contracts *builtin.Contracts
	pending   tx.Receipts
	nonces    map[forge.Address]uint64

	blockFeed event.Feed
	scope     event.SubscriptionScope
}

// New opens a runtime on db. An empty database is initialized from gen.
func New(db kv.GetPutter, gen Genesis, opts Options) (*Runtime, error) {
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	r := &Runtime{
		db:        db,
		chain:     newChain(db),
		clock:     opts.Clock,
		logs:      opts.Logs,
		receivers: make(receivers),
		nonces:    make(map[forge.Address]uint64),
	}

	best, err := r.chain.best()
	if err != nil {
		return nil, err
	}
	if best == nil {
		if gen == nil {
			return nil, errors.New("empty database and no genesis")
		}
		blk, err := gen.Build(db)
		if err != nil {
			return nil, errors.Wrap(err, "build genesis")
		}
		if err := r.chain.put(blk); err != nil {
			return nil, errors.Wrap(err, "save genesis")
		}
		if r.logs != nil {
			if err := r.logs.Write(blk); err != nil {
				return nil, errors.Wrap(err, "write genesis logs")
			}
		}
		logger.Info("genesis initialized", "id", blk.Header.ID, "stateRoot", blk.Header.StateRoot)
		best = &blk.Header
	}
	r.best = best
	r.reset()
	metricBestBlock().Set(int64(best.Number))
	return r, nil
}

func (r *Runtime) reset() {
	r.st = state.New(r.db)
	r.contracts = builtin.Bind(r.st)
	r.pending = nil
}

// now is the time of the pending block, never behind its parent.
func (r *Runtime) now() uint64 {
	return max(r.clock.Now(), r.best.Timestamp)
}

// Best returns the header of the latest sealed block.
func (r *Runtime) Best() block.Header {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return *r.best
}

// Block returns the sealed block at num, nil if there is none.
func (r *Runtime) Block(num uint32) (*block.Block, error) {
	return r.chain.get(num)
}

// Now returns the time the next transaction executes at.
func (r *Runtime) Now() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.now()
}

// Pending returns the count of executed transactions waiting to be sealed.
func (r *Runtime) Pending() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.pending)
}

// SetReceiver attaches receive hook code to addr. A nil receiver detaches it.
func (r *Runtime) SetReceiver(addr forge.Address, receiver xenv.Receiver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if receiver == nil {
		delete(r.receivers, addr)
		return
	}
	r.receivers[addr] = receiver
}

// SubscribeBlocks delivers every sealed block to ch, in order.
func (r *Runtime) SubscribeBlocks(ch chan *block.Block) event.Subscription {
	return r.scope.Track(r.blockFeed.Subscribe(ch))
}

// Close ends all block subscriptions.
func (r *Runtime) Close() {
	r.scope.Close()
}

// Execute runs fn as a transaction of origin. A failed transaction keeps none of its effects,
// its receipt is marked reverted and carries the revert kind and code.
// Only failures outside the contracts' own checks, such as storage errors, are returned.
func (r *Runtime) Execute(origin forge.Address, fn Tx) (*tx.Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.execute(origin, fn)
}

// Call executes a transaction making a top-level call to `to` with native value.
func (r *Runtime) Call(origin, to forge.Address, value *big.Int, fn Tx) (*tx.Receipt, error) {
	return r.Execute(origin, func(env *xenv.Environment, c *builtin.Contracts) error {
		return env.Call(to, value, func(env *xenv.Environment) error {
			return fn(env, c)
		})
	})
}

// View runs fn against the pending state in read-only mode.
func (r *Runtime) View(fn Tx) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	env := xenv.New(r.st, &xenv.BlockContext{Number: r.best.Number + 1, Time: r.now()},
		&xenv.TransactionContext{}, r.receivers, true)
	return run(env, r.contracts, fn)
}

func (r *Runtime) execute(origin forge.Address, fn Tx) (*tx.Receipt, error) {
	start := time.Now()
	now := r.now()

	nonce := r.nonces[origin]
	r.nonces[origin] = nonce + 1
	txCtx := &xenv.TransactionContext{
		ID:     tx.NewID(origin, nonce, now),
		Origin: origin,
	}
	env := xenv.New(r.st, &xenv.BlockContext{Number: r.best.Number + 1, Time: now}, txCtx, r.receivers, false)

	checkpoint := r.st.NewCheckpoint()
	err := run(env, r.contracts, fn)
	metricTxExecTime().Observe(time.Since(start).Microseconds())

	receipt := &tx.Receipt{ID: txCtx.ID, Origin: origin}
	if err != nil {
		r.st.RevertTo(checkpoint)

		kind := reverts.KindOf(err)
		metricTxCount().AddWithLabel(1, map[string]string{"status": "reverted", "kind": kind.String()})
		if kind == reverts.KindInternal {
			logger.Error("transaction aborted", "id", txCtx.ID, "origin", origin, "error", err)
			return nil, err
		}
		if kind == reverts.KindArithmetic {
			logger.Error("transaction reverted", "id", txCtx.ID, "origin", origin, "error", err)
		} else {
			logger.Debug("transaction reverted", "id", txCtx.ID, "origin", origin, "kind", kind, "error", err)
		}
		receipt.Reverted = true
		receipt.Revert = &tx.Revert{
			Kind:   kind.String(),
			Code:   reverts.CodeOf(err),
			Reason: err.Error(),
		}
	} else {
		metricTxCount().AddWithLabel(1, map[string]string{"status": "executed", "kind": "none"})
		receipt.Events = env.Events()
		if receipt.Events == nil {
			receipt.Events = tx.Events{}
		}
		logger.Debug("transaction executed", "id", txCtx.ID, "origin", origin, "events", len(receipt.Events))
	}
	r.pending = append(r.pending, receipt)
	return receipt, nil
}

// run calls fn, turning a panic into an internal error.
func run(env *xenv.Environment, c *builtin.Contracts, fn Tx) (err error) {
	defer func() {
		if e := recover(); e != nil {
			err = fmt.Errorf("panic: %v", e)
		}
	}()
	return fn(env, c)
}

// Seal commits the pending state, packs the pending receipts into a new block and
// publishes it to subscribers.
func (r *Runtime) Seal() (*block.Block, error) {
	r.mu.Lock()
	blk, err := r.seal()
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}
	r.blockFeed.Send(blk)
	return blk, nil
}

func (r *Runtime) seal() (*block.Block, error) {
	stage := r.st.Stage()
	root, err := stage.Commit(r.db)
	if err != nil {
		return nil, errors.Wrap(err, "commit state")
	}
	blk := block.New(r.best.ID, r.best.Number+1, r.now(), root, r.pending)
	if err := r.chain.put(blk); err != nil {
		return nil, errors.Wrap(err, "save block")
	}
	if r.logs != nil {
		if err := r.logs.Write(blk); err != nil {
			return nil, errors.Wrap(err, "write logs")
		}
	}

	r.best = &blk.Header
	r.reset()

	metricBlockSize().Set(int64(len(blk.Receipts)))
	metricBestBlock().Set(int64(blk.Header.Number))
	logger.Info("block sealed",
		"number", blk.Header.Number,
		"id", blk.Header.ID.AbbrevString(),
		"txs", len(blk.Receipts),
		"changes", stage.Len(),
	)
	return blk, nil
}
