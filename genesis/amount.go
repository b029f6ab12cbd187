// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package genesis

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
	"gopkg.in/yaml.v3"
)

// Amount is a 256-bit quantity written in decimal or 0x-prefixed hex.
type Amount math.HexOrDecimal256

// NewAmount wraps v.
func NewAmount(v *big.Int) *Amount {
	return (*Amount)(new(big.Int).Set(v))
}

// Int returns the value, zero for a nil amount.
func (a *Amount) Int() *big.Int {
	if a == nil {
		return new(big.Int)
	}
	return new(big.Int).Set((*big.Int)(a))
}

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (a *Amount) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: amount must be a scalar", value.Line)
	}
	v, ok := math.ParseBig256(value.Value)
	if !ok {
		return fmt.Errorf("line %d: invalid hex or decimal integer %q", value.Line, value.Value)
	}
	*a = Amount(*v)
	return nil
}

// MarshalYAML renders the amount as a plain decimal integer.
func (a Amount) MarshalYAML() (any, error) {
	return &yaml.Node{
		Kind:  yaml.ScalarNode,
		Tag:   "!!int",
		Value: (*big.Int)(&a).String(),
	}, nil
}
