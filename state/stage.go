// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"io"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/questforge/forge/forge"
	"github.com/questforge/forge/kv"
)

type change struct {
	key   []byte // bucket prefixed
	value []byte // nil means delete
}

// Stage abstracts the accumulated changes of a state, ready to be committed.
type Stage struct {
	changes []change
}

// Stage collects all changes made on the state since it was created.
func (s *State) Stage() *Stage {
	latest := make(map[string][]byte)
	s.sm.Journal(func(k, v any) bool {
		switch key := k.(type) {
		case balanceKey:
			var val []byte
			if bal := v.(*big.Int); bal.Sign() > 0 {
				val = bal.Bytes()
			}
			latest[string(append(append([]byte(balanceBucket), key.asset.Bytes()...), key.addr.Bytes()...))] = val
		case storageKey:
			latest[string(append(append([]byte(storageBucket), key.addr.Bytes()...), key.key.Bytes()...))] = []byte(v.(rlp.RawValue))
		}
		return true
	})

	stage := &Stage{changes: make([]change, 0, len(latest))}
	for k, v := range latest {
		stage.changes = append(stage.changes, change{[]byte(k), v})
	}
	sort.Slice(stage.changes, func(i, j int) bool {
		return bytes.Compare(stage.changes[i].key, stage.changes[j].key) < 0
	})
	return stage
}

// Len returns count of changed keys.
func (s *Stage) Len() int {
	return len(s.changes)
}

// Hash computes the digest of the change set.
func (s *Stage) Hash() forge.Bytes32 {
	return forge.Blake2bFn(func(w io.Writer) {
		for _, c := range s.changes {
			w.Write(c.key)
			w.Write(c.value)
		}
	})
}

// Commit writes all changes into the store in one batch.
func (s *Stage) Commit(db kv.Putter) (forge.Bytes32, error) {
	batch := db.NewBatch()
	for _, c := range s.changes {
		var err error
		if len(c.value) == 0 {
			err = batch.Delete(c.key)
		} else {
			err = batch.Put(c.key, c.value)
		}
		if err != nil {
			return forge.Bytes32{}, &Error{err}
		}
	}
	if err := batch.Write(); err != nil {
		return forge.Bytes32{}, &Error{err}
	}
	return s.Hash(), nil
}
