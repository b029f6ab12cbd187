// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/questforge/forge/forge"
	"github.com/questforge/forge/kv"
	"github.com/questforge/forge/stackedmap"
)

const (
	balanceBucket = kv.Bucket("b")
	storageBucket = kv.Bucket("s")
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// ErrInsufficientBalance is returned when a debit exceeds the current balance.
var ErrInsufficientBalance = fmt.Errorf("insufficient balance")

type balanceKey struct {
	asset forge.Address
	addr  forge.Address
}

type storageKey struct {
	addr forge.Address
	key  forge.Bytes32
}

// State manages the world state: balances per (asset, account) and contract storage.
// Every write is journaled so that it can be reverted to a checkpoint.
type State struct {
	db kv.Getter
	sm *stackedmap.StackedMap
}

// New create state object reading committed data from db.
// A nil db gives an empty state.
func New(db kv.Getter) *State {
	s := &State{db: db}
	s.sm = stackedmap.New(s.cacheGetter)
	return s
}

// cacheGetter implements stackedmap.MapGetter.
func (s *State) cacheGetter(key any) (any, bool, error) {
	switch k := key.(type) {
	case balanceKey:
		raw, err := s.read(balanceBucket, append(k.asset.Bytes(), k.addr.Bytes()...))
		if err != nil {
			return nil, false, err
		}
		return new(big.Int).SetBytes(raw), true, nil
	case storageKey:
		raw, err := s.read(storageBucket, append(k.addr.Bytes(), k.key.Bytes()...))
		if err != nil {
			return nil, false, err
		}
		return rlp.RawValue(raw), true, nil
	}
	panic(fmt.Errorf("unexpected key type %+v", key))
}

func (s *State) read(bucket kv.Bucket, key []byte) ([]byte, error) {
	if s.db == nil {
		return nil, nil
	}
	raw, err := s.db.Get(append([]byte(bucket), key...))
	if err != nil {
		if s.db.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return raw, nil
}

// GetBalance returns balance of asset held by addr.
func (s *State) GetBalance(asset, addr forge.Address) (*big.Int, error) {
	v, _, err := s.sm.Get(balanceKey{asset, addr})
	if err != nil {
		return nil, &Error{err}
	}
	return new(big.Int).Set(v.(*big.Int)), nil
}

// SetBalance set balance of asset held by addr.
func (s *State) SetBalance(asset, addr forge.Address, balance *big.Int) error {
	if balance.Sign() < 0 {
		return &Error{fmt.Errorf("negative balance %v", balance)}
	}
	s.sm.Put(balanceKey{asset, addr}, new(big.Int).Set(balance))
	return nil
}

// AddBalance credits amount to addr.
func (s *State) AddBalance(asset, addr forge.Address, amount *big.Int) error {
	bal, err := s.GetBalance(asset, addr)
	if err != nil {
		return err
	}
	return s.SetBalance(asset, addr, bal.Add(bal, amount))
}

// SubBalance debits amount from addr.
func (s *State) SubBalance(asset, addr forge.Address, amount *big.Int) error {
	bal, err := s.GetBalance(asset, addr)
	if err != nil {
		return err
	}
	if bal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	return s.SetBalance(asset, addr, bal.Sub(bal, amount))
}

// Transfer moves amount of asset between two accounts.
func (s *State) Transfer(asset, from, to forge.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	if err := s.SubBalance(asset, from, amount); err != nil {
		return err
	}
	return s.AddBalance(asset, to, amount)
}

// GetStorage returns storage value for the given address and key.
func (s *State) GetStorage(addr forge.Address, key forge.Bytes32) (forge.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return forge.Bytes32{}, err
	}
	if len(raw) == 0 {
		return forge.Bytes32{}, nil
	}
	kind, content, _, err := rlp.Split(raw)
	if err != nil {
		return forge.Bytes32{}, &Error{err}
	}
	if kind == rlp.List {
		// structured value, return its hash
		return forge.Blake2b(raw), nil
	}
	return forge.BytesToBytes32(content), nil
}

// SetStorage set storage value for the given address and key.
func (s *State) SetStorage(addr forge.Address, key, value forge.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(addr, key, nil)
		return
	}
	v, _ := rlp.EncodeToBytes(bytes.TrimLeft(value[:], "\x00"))
	s.SetRawStorage(addr, key, v)
}

// GetRawStorage returns storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr forge.Address, key forge.Bytes32) (rlp.RawValue, error) {
	data, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return data.(rlp.RawValue), nil
}

// SetRawStorage set storage value in rlp raw.
func (s *State) SetRawStorage(addr forge.Address, key forge.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// EncodeStorage set storage value encoded by given enc method.
func (s *State) EncodeStorage(addr forge.Address, key forge.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
func (s *State) DecodeStorage(addr forge.Address, key forge.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
	if s.sm.Depth() == 0 {
		s.sm.Push()
	}
}
