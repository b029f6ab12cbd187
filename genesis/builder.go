// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package genesis

import (
	"github.com/pkg/errors"

	"github.com/questforge/forge/block"
	"github.com/questforge/forge/builtin"
	"github.com/questforge/forge/forge"
	"github.com/questforge/forge/kv"
	"github.com/questforge/forge/lvldb"
	"github.com/questforge/forge/state"
	"github.com/questforge/forge/tx"
	"github.com/questforge/forge/xenv"
)

// Builder helper to build genesis block.
type Builder struct {
	timestamp uint64

	stateProcs []func(c *builtin.Contracts) error
	calls      []call
	extraData  [28]byte
}

type call struct {
	origin forge.Address
	fn     func(env *xenv.Environment, c *builtin.Contracts) error
}

// Timestamp set timestamp.
func (b *Builder) Timestamp(t uint64) *Builder {
	b.timestamp = t
	return b
}

// State add a state process. Processes run before any call, without caller checks.
func (b *Builder) State(proc func(c *builtin.Contracts) error) *Builder {
	b.stateProcs = append(b.stateProcs, proc)
	return b
}

// Call add a transaction executed by origin once the state processes ran.
func (b *Builder) Call(origin forge.Address, fn func(env *xenv.Environment, c *builtin.Contracts) error) *Builder {
	b.calls = append(b.calls, call{origin, fn})
	return b
}

// ExtraData set extra data, which will be put into last 28 bytes of genesis parent id.
func (b *Builder) ExtraData(data [28]byte) *Builder {
	b.extraData = data
	return b
}

// ComputeID compute genesis ID.
func (b *Builder) ComputeID() (forge.Bytes32, error) {
	db, err := lvldb.NewMem()
	if err != nil {
		return forge.Bytes32{}, err
	}
	defer db.Close()

	blk, err := b.Build(db)
	if err != nil {
		return forge.Bytes32{}, err
	}
	return blk.Header.ID, nil
}

// Build writes the genesis state into db and returns the genesis block.
// Each call becomes a receipt of the block.
func (b *Builder) Build(db kv.GetPutter) (*block.Block, error) {
	st := state.New(db)
	contracts := builtin.Bind(st)

	for _, proc := range b.stateProcs {
		if err := proc(contracts); err != nil {
			return nil, errors.Wrap(err, "state process")
		}
	}

	receipts := make(tx.Receipts, 0, len(b.calls))
	for i, call := range b.calls {
		txCtx := &xenv.TransactionContext{
			ID:     tx.NewID(call.origin, uint64(i), b.timestamp),
			Origin: call.origin,
		}
		env := xenv.New(st, &xenv.BlockContext{Time: b.timestamp}, txCtx, nil, false)
		if err := call.fn(env, contracts); err != nil {
			return nil, errors.Wrapf(err, "call %d", i)
		}
		events := env.Events()
		if events == nil {
			events = tx.Events{}
		}
		receipts = append(receipts, &tx.Receipt{ID: txCtx.ID, Origin: call.origin, Events: events})
	}

	stateRoot, err := st.Stage().Commit(db)
	if err != nil {
		return nil, errors.Wrap(err, "commit state")
	}

	parentID := forge.Bytes32{0xff, 0xff, 0xff, 0xff} //so, genesis number is 0
	copy(parentID[4:], b.extraData[:])

	return block.New(parentID, 0, b.timestamp, stateRoot, receipts), nil
}
