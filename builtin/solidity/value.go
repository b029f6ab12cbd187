// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/questforge/forge/forge"
)

var emptyKey = forge.Bytes32{}

// Value stores a single RLP encoded value at a fixed slot.
type Value[V any] struct {
	mapping *Mapping[forge.Bytes32, V]
}

func NewValue[V any](context *Context, pos forge.Bytes32) *Value[V] {
	return &Value[V]{mapping: NewMapping[forge.Bytes32, V](context, pos)}
}

func (v *Value[V]) Get() (V, error) {
	return v.mapping.Get(emptyKey)
}

func (v *Value[V]) Set(value V) error {
	return v.mapping.Set(emptyKey, value)
}
