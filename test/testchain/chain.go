// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package testchain

import (
	"fmt"
	"math/big"

	"github.com/pkg/errors"

	"github.com/questforge/forge/builtin"
	"github.com/questforge/forge/forge"
	"github.com/questforge/forge/genesis"
	"github.com/questforge/forge/logdb"
	"github.com/questforge/forge/lvldb"
	"github.com/questforge/forge/runtime"
	"github.com/questforge/forge/tx"
	"github.com/questforge/forge/xenv"
)

// Chain represents a runtime for testing: in-memory state and event log,
// the devnet genesis and a manual clock.
type Chain struct {
	db      *lvldb.LevelDB
	logDB   *logdb.LogDB
	genesis *genesis.Genesis
	clock   *runtime.ManualClock
	rt      *runtime.Runtime
}

// New creates a Chain from gen. The clock starts at launchTime.
func New(gen *genesis.Genesis, launchTime uint64) (*Chain, error) {
	db, err := lvldb.NewMem()
	if err != nil {
		return nil, err
	}
	logDB, err := logdb.NewMem()
	if err != nil {
		db.Close()
		return nil, err
	}
	clock := runtime.NewManualClock(launchTime)
	rt, err := runtime.New(db, gen, runtime.Options{Clock: clock, Logs: logDB})
	if err != nil {
		logDB.Close()
		db.Close()
		return nil, err
	}
	return &Chain{db, logDB, gen, clock, rt}, nil
}

// NewDefault creates a Chain with the devnet genesis.
func NewDefault() (*Chain, error) {
	return New(genesis.NewDevnet(), genesis.DefaultConfig().LaunchTime)
}

// Runtime returns the transaction runtime.
func (c *Chain) Runtime() *runtime.Runtime { return c.rt }

// LogDB returns the event log database.
func (c *Chain) LogDB() *logdb.LogDB { return c.logDB }

// Genesis returns the genesis the chain started from.
func (c *Chain) Genesis() *genesis.Genesis { return c.genesis }

// Clock returns the manual clock driving block time.
func (c *Chain) Clock() *runtime.ManualClock { return c.clock }

// Accounts returns the funded dev accounts. The first one is admin.
func (c *Chain) Accounts() []genesis.DevAccount { return genesis.DevAccounts() }

// Close releases the databases.
func (c *Chain) Close() {
	c.rt.Close()
	c.logDB.Close()
	c.db.Close()
}

// Mint executes fn as a transaction of origin and seals a block containing it.
// A reverted transaction is reported as an error carrying its revert reason.
func (c *Chain) Mint(origin forge.Address, fn runtime.Tx) (*tx.Receipt, error) {
	receipt, err := c.rt.Execute(origin, fn)
	if err != nil {
		return nil, err
	}
	if _, err := c.rt.Seal(); err != nil {
		return nil, errors.Wrap(err, "seal")
	}
	if receipt.Reverted {
		return receipt, fmt.Errorf("reverted: %s", receipt.Revert.Reason)
	}
	return receipt, nil
}

// MintCall is Mint for a top-level call to `to` carrying native value.
func (c *Chain) MintCall(origin, to forge.Address, value *big.Int, fn runtime.Tx) (*tx.Receipt, error) {
	receipt, err := c.rt.Call(origin, to, value, fn)
	if err != nil {
		return nil, err
	}
	if _, err := c.rt.Seal(); err != nil {
		return nil, errors.Wrap(err, "seal")
	}
	if receipt.Reverted {
		return receipt, fmt.Errorf("reverted: %s", receipt.Revert.Reason)
	}
	return receipt, nil
}

// Advance moves block time forward by d seconds.
func (c *Chain) Advance(d uint64) {
	c.clock.Advance(d)
}

// View runs read-only code against the pending state.
func (c *Chain) View(fn func(c *builtin.Contracts) error) error {
	return c.rt.View(func(_ *xenv.Environment, contracts *builtin.Contracts) error {
		return fn(contracts)
	})
}
