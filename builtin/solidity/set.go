// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"

	"github.com/questforge/forge/forge"
)

type index uint64

func (i index) Bytes() []byte { return forge.Uint64Bytes(uint64(i)) }

// IndexedSet is a storage backed set over a dense array.
// Removal swaps the last member into the freed slot, so iteration order is not stable.
type IndexedSet[K Key] struct {
	length  *Uint256
	items   *Mapping[index, K]
	indexes *Mapping[K, uint64] // position + 1, zero means absent
}

func NewIndexedSet[K Key](context *Context, pos forge.Bytes32) *IndexedSet[K] {
	return &IndexedSet[K]{
		length:  NewUint256(context, pos),
		items:   NewMapping[index, K](context, forge.Blake2b(pos.Bytes(), []byte("items"))),
		indexes: NewMapping[K, uint64](context, forge.Blake2b(pos.Bytes(), []byte("indexes"))),
	}
}

func (s *IndexedSet[K]) Len() (uint64, error) {
	n, err := s.length.Get()
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}

func (s *IndexedSet[K]) Contains(key K) (bool, error) {
	i, err := s.indexes.Get(key)
	if err != nil {
		return false, err
	}
	return i != 0, nil
}

// At returns the member at position i, i must be below Len.
func (s *IndexedSet[K]) At(i uint64) (K, error) {
	return s.items.Get(index(i))
}

// Add inserts key and reports whether it was absent.
func (s *IndexedSet[K]) Add(key K) (bool, error) {
	if ok, err := s.Contains(key); err != nil || ok {
		return false, err
	}
	n, err := s.Len()
	if err != nil {
		return false, err
	}
	if err := s.items.Set(index(n), key); err != nil {
		return false, err
	}
	if err := s.indexes.Set(key, n+1); err != nil {
		return false, err
	}
	s.length.Set(new(big.Int).SetUint64(n + 1))
	return true, nil
}

// Remove deletes key in constant time and reports whether it was present.
func (s *IndexedSet[K]) Remove(key K) (bool, error) {
	pos, err := s.indexes.Get(key)
	if err != nil || pos == 0 {
		return false, err
	}
	n, err := s.Len()
	if err != nil {
		return false, err
	}
	last := n - 1
	if pos-1 != last {
		moved, err := s.items.Get(index(last))
		if err != nil {
			return false, err
		}
		if err := s.items.Set(index(pos-1), moved); err != nil {
			return false, err
		}
		if err := s.indexes.Set(moved, pos); err != nil {
			return false, err
		}
	}
	s.items.Delete(index(last))
	s.indexes.Delete(key)
	s.length.Set(new(big.Int).SetUint64(last))
	return true, nil
}

// All returns every member.
func (s *IndexedSet[K]) All() ([]K, error) {
	n, err := s.Len()
	if err != nil {
		return nil, err
	}
	out := make([]K, 0, n)
	for i := uint64(0); i < n; i++ {
		k, err := s.At(i)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, nil
}
