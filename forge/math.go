// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package forge

import (
	"errors"
	"math/big"

	"github.com/holiman/uint256"
)

// BasisPoints is the denominator of every percentage held on chain. 10000 = 100%.
const BasisPoints uint64 = 10000

var (
	ErrOverflow   = errors.New("arithmetic overflow")
	ErrUnderflow  = errors.New("arithmetic underflow")
	ErrDivByZero  = errors.New("division by zero")
	ErrNegative   = errors.New("negative operand")
	ErrPercentage = errors.New("percentage exceeds 100%")

	bigBasisPoints = new(big.Int).SetUint64(BasisPoints)
)

func toU256(x *big.Int) (*uint256.Int, error) {
	if x == nil {
		return new(uint256.Int), nil
	}
	if x.Sign() < 0 {
		return nil, ErrNegative
	}
	v, overflow := uint256.FromBig(x)
	if overflow {
		return nil, ErrOverflow
	}
	return v, nil
}

// SafeAdd returns x + y, failing when the sum exceeds 256 bits.
func SafeAdd(x, y *big.Int) (*big.Int, error) {
	a, err := toU256(x)
	if err != nil {
		return nil, err
	}
	b, err := toU256(y)
	if err != nil {
		return nil, err
	}
	sum, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow {
		return nil, ErrOverflow
	}
	return sum.ToBig(), nil
}

// SafeSub returns x - y, failing when y > x.
func SafeSub(x, y *big.Int) (*big.Int, error) {
	a, err := toU256(x)
	if err != nil {
		return nil, err
	}
	b, err := toU256(y)
	if err != nil {
		return nil, err
	}
	diff, underflow := new(uint256.Int).SubOverflow(a, b)
	if underflow {
		return nil, ErrUnderflow
	}
	return diff.ToBig(), nil
}

// SafeMul returns x * y, failing when the product exceeds 256 bits.
func SafeMul(x, y *big.Int) (*big.Int, error) {
	a, err := toU256(x)
	if err != nil {
		return nil, err
	}
	b, err := toU256(y)
	if err != nil {
		return nil, err
	}
	prod, overflow := new(uint256.Int).MulOverflow(a, b)
	if overflow {
		return nil, ErrOverflow
	}
	return prod.ToBig(), nil
}

// MulDiv returns x * y / z, rounding down.
// The intermediate product is kept at 512 bits, only the result must fit in 256 bits.
func MulDiv(x, y, z *big.Int) (*big.Int, error) {
	a, err := toU256(x)
	if err != nil {
		return nil, err
	}
	b, err := toU256(y)
	if err != nil {
		return nil, err
	}
	c, err := toU256(z)
	if err != nil {
		return nil, err
	}
	if c.IsZero() {
		return nil, ErrDivByZero
	}
	res, overflow := new(uint256.Int).MulDivOverflow(a, b, c)
	if overflow {
		return nil, ErrOverflow
	}
	return res.ToBig(), nil
}

// ApplyBps returns amount * bps / 10000. bps above 10000 is rejected.
func ApplyBps(amount *big.Int, bps uint64) (*big.Int, error) {
	if bps > BasisPoints {
		return nil, ErrPercentage
	}
	return MulDiv(amount, new(big.Int).SetUint64(bps), bigBasisPoints)
}

// IsMathErr reports whether err originates from a checked arithmetic helper.
func IsMathErr(err error) bool {
	return errors.Is(err, ErrOverflow) ||
		errors.Is(err, ErrUnderflow) ||
		errors.Is(err, ErrDivByZero) ||
		errors.Is(err, ErrNegative) ||
		errors.Is(err, ErrPercentage)
}
