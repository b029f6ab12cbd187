// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"

	"github.com/questforge/forge/forge"
)

// Uint256 is a wrapper for storage and retrieval of an uint256. Similar to storing an uint256 in a smart contract.
// Add and Sub are checked: they fail instead of wrapping or going negative.
type Uint256 struct {
	context *Context
	pos     forge.Bytes32
}

func NewUint256(context *Context, pos forge.Bytes32) *Uint256 {
	return &Uint256{context: context, pos: pos}
}

func (u *Uint256) Get() (*big.Int, error) {
	storage, err := u.context.state.GetStorage(u.context.address, u.pos)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(storage.Bytes()), nil
}

func (u *Uint256) Set(value *big.Int) {
	u.context.state.SetStorage(u.context.address, u.pos, forge.BytesToBytes32(value.Bytes()))
}

func (u *Uint256) Add(value *big.Int) (*big.Int, error) {
	current, err := u.Get()
	if err != nil {
		return nil, err
	}
	sum, err := forge.SafeAdd(current, value)
	if err != nil {
		return nil, err
	}
	u.Set(sum)
	return sum, nil
}

func (u *Uint256) Sub(value *big.Int) (*big.Int, error) {
	current, err := u.Get()
	if err != nil {
		return nil, err
	}
	diff, err := forge.SafeSub(current, value)
	if err != nil {
		return nil, err
	}
	u.Set(diff)
	return diff, nil
}

// Next increments the stored counter and returns the value before the increment.
func (u *Uint256) Next() (uint64, error) {
	current, err := u.Get()
	if err != nil {
		return 0, err
	}
	u.Set(new(big.Int).Add(current, big.NewInt(1)))
	return current.Uint64(), nil
}
