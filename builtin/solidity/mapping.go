// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"reflect"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/questforge/forge/forge"
)

type Key interface {
	Bytes() []byte
}

// Mapping is a key/value storage abstraction for built-in contracts, similar to the mapping in Solidity.
// Values are RLP encoded. For pointer value types, Get returns nil if nothing is stored under the key.
type Mapping[K Key, V any] struct {
	context *Context
	basePos forge.Bytes32
}

func NewMapping[K Key, V any](context *Context, pos forge.Bytes32) *Mapping[K, V] {
	return &Mapping[K, V]{context: context, basePos: pos}
}

func (m *Mapping[K, V]) position(key K) forge.Bytes32 {
	return forge.Blake2b(key.Bytes(), m.basePos.Bytes())
}

func (m *Mapping[K, V]) Get(key K) (value V, err error) {
	err = m.context.state.DecodeStorage(m.context.address, m.position(key), func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		if reflect.TypeOf(value) != nil && reflect.TypeOf(value).Kind() == reflect.Ptr {
			value = reflect.New(reflect.TypeOf(value).Elem()).Interface().(V)
			return rlp.DecodeBytes(raw, value)
		}
		return rlp.DecodeBytes(raw, &value)
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return value, nil
}

// Set stores value under key. A nil pointer clears the slot.
func (m *Mapping[K, V]) Set(key K, value V) error {
	if v := reflect.ValueOf(value); !v.IsValid() || (v.Kind() == reflect.Ptr && v.IsNil()) {
		m.Delete(key)
		return nil
	}
	return m.context.state.EncodeStorage(m.context.address, m.position(key), func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	})
}

func (m *Mapping[K, V]) Delete(key K) {
	m.context.state.SetRawStorage(m.context.address, m.position(key), nil)
}
