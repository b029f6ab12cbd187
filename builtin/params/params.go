// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package params

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/questforge/forge/builtin/acl"
	"github.com/questforge/forge/builtin/reverts"
	"github.com/questforge/forge/forge"
	"github.com/questforge/forge/log"
	"github.com/questforge/forge/state"
	"github.com/questforge/forge/xenv"
)

var logger = log.WithContext("pkg", "params")

// Params binder of `Params` contract.
// Unset keys read as the param's default.
type Params struct {
	addr  forge.Address
	state *state.State
	acl   *acl.ACL
}

func New(addr forge.Address, state *state.State, acl *acl.ACL) *Params {
	return &Params{addr, state, acl}
}

func (p *Params) Address() forge.Address { return p.addr }

func (p *Params) read(key forge.Bytes32) (*big.Int, bool, error) {
	var (
		v   big.Int
		set bool
	)
	err := p.state.DecodeStorage(p.addr, key, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		set = true
		return rlp.DecodeBytes(raw, &v)
	})
	if err != nil {
		return nil, false, err
	}
	return &v, set, nil
}

// Get returns the current value of param.
func (p *Params) Get(param *forge.Param) (*big.Int, error) {
	v, set, err := p.read(param.Key)
	if err != nil {
		return nil, err
	}
	if !set {
		return new(big.Int).Set(param.Default), nil
	}
	return v, nil
}

// Uint64 returns param as an uint64, values above 2^64-1 are rejected.
func (p *Params) Uint64(param *forge.Param) (uint64, error) {
	v, err := p.Get(param)
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return 0, errors.Wrapf(forge.ErrOverflow, "param %s", param.Name)
	}
	return v.Uint64(), nil
}

// Init native way to set param, without caller check. Used while building genesis.
func (p *Params) Init(param *forge.Param, value *big.Int) error {
	if value.Sign() < 0 {
		return errors.WithMessagef(reverts.ErrInvalidAmount, "param %s is negative", param.Name)
	}
	return p.state.EncodeStorage(p.addr, param.Key, func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	})
}

type paramSetEvent struct {
	Name  string   `json:"name"`
	Value *big.Int `json:"value"`
}

// Set updates a param. Admin only.
func (p *Params) Set(env *xenv.Environment, param *forge.Param, value *big.Int) error {
	logger.Debug("setting param", "name", param.Name, "value", value, "sender", env.Caller())

	if err := p.acl.Require(acl.Admin, env.Caller()); err != nil {
		logger.Info("set param failed", "name", param.Name, "error", err)
		return err
	}
	if err := p.Init(param, value); err != nil {
		return err
	}
	return env.Log("ParamSet", &paramSetEvent{param.Name, value}, param.Key)
}
