// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package kv defines the key-value storage contract shared by the persistent
// stores and the bucketed views built on top of them.
package kv

// Range is a key range [From, To). Empty To leaves the range open at the top.
type Range struct {
	From []byte
	To   []byte
}

// Getter reads keys. Get fails for a missing key with an error recognized by IsNotFound.
type Getter interface {
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	IsNotFound(error) bool
	NewIterator(r Range) Iterator
}

// Putter writes keys directly or through a batch.
type Putter interface {
	Put(key, value []byte) error
	Delete(key []byte) error
	NewBatch() Batch
}

type GetPutter interface {
	Getter
	Putter
}

// Store is a GetPutter owning underlying resources.
type Store interface {
	GetPutter
	Close() error
}

// Batch buffers writes until Write applies them atomically.
type Batch interface {
	Put(key, value []byte) error
	Delete(key []byte) error
	Len() int
	Write() error
}

// Iterator walks keys in ascending order. Release must be called when done.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Error() error
	Release()
}

// Load returns the value stored at key. A missing key reports ok as false with no error.
func Load(g Getter, key []byte) (value []byte, ok bool, err error) {
	value, err = g.Get(key)
	if err != nil {
		if g.IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return value, true, nil
}
