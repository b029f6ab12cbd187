// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package genesis

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/questforge/forge/builtin"
	"github.com/questforge/forge/forge"
	"github.com/questforge/forge/xenv"
)

// Config is the user customized genesis.
type Config struct {
	LaunchTime uint64          `yaml:"launchTime"`
	ExtraData  string          `yaml:"extraData,omitempty"`
	Admin      forge.Address   `yaml:"admin"`
	Tokens     []forge.Address `yaml:"tokens,omitempty"`
	Accounts   []Account       `yaml:"accounts"`
	// OracleReserve is paid by the admin into the oracle's reward reserve, funding validator rewards.
	OracleReserve *Amount            `yaml:"oracleReserve,omitempty"`
	Params        map[string]*Amount `yaml:"params,omitempty"`
}

// Account is the account which will be alloced in genesis.
type Account struct {
	Address forge.Address  `yaml:"address"`
	Balance *Amount        `yaml:"balance"`
	Tokens  []TokenBalance `yaml:"tokens,omitempty"`
}

// TokenBalance is a fungible token balance.
type TokenBalance struct {
	Asset  forge.Address `yaml:"asset"`
	Amount *Amount       `yaml:"amount"`
}

// LoadConfig reads a YAML genesis config. Unknown fields are rejected.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read genesis config")
	}
	return ParseConfig(data)
}

// ParseConfig decodes a YAML genesis config.
func ParseConfig(data []byte) (*Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode genesis config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Marshal encodes the config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Validate checks the config is consistent.
func (c *Config) Validate() error {
	if c.Admin.IsZero() {
		return errors.New("admin address required")
	}
	if len(c.ExtraData) > 28 {
		return errors.New("extraData must not exceed 28 bytes")
	}
	tokens := make(map[forge.Address]bool, len(c.Tokens))
	for _, t := range c.Tokens {
		if forge.IsNative(t) {
			return errors.New("native asset is not a token")
		}
		tokens[t] = true
	}
	for _, acc := range c.Accounts {
		if acc.Address.IsZero() {
			return errors.New("account address required")
		}
		for _, tb := range acc.Tokens {
			if !tokens[tb.Asset] {
				return fmt.Errorf("account %v: unknown token %v", acc.Address, tb.Asset)
			}
		}
	}
	for name := range c.Params {
		if _, ok := forge.ParamByName(name); !ok {
			return fmt.Errorf("unknown param %q", name)
		}
	}
	if c.OracleReserve.Int().Sign() > 0 {
		funded := false
		for _, acc := range c.Accounts {
			if acc.Address == c.Admin && acc.Balance.Int().Cmp(c.OracleReserve.Int()) >= 0 {
				funded = true
			}
		}
		if !funded {
			return errors.New("admin balance does not cover the oracle reserve")
		}
	}
	return nil
}

// Genesis creates the genesis described by the config.
func (c *Config) Genesis(name string) (*Genesis, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var extra [28]byte
	copy(extra[:], c.ExtraData)

	builder := new(Builder).
		Timestamp(c.LaunchTime).
		ExtraData(extra).
		State(func(contracts *builtin.Contracts) error {
			for _, acc := range c.Accounts {
				if err := contracts.State.SetBalance(forge.NativeAsset, acc.Address, acc.Balance.Int()); err != nil {
					return err
				}
				for _, tb := range acc.Tokens {
					if err := contracts.State.SetBalance(tb.Asset, acc.Address, tb.Amount.Int()); err != nil {
						return err
					}
				}
			}
			return nil
		}).
		State(func(contracts *builtin.Contracts) error {
			if err := contracts.Setup(c.Admin); err != nil {
				return errors.Wrap(err, "setup builtins")
			}
			for _, t := range c.Tokens {
				if err := contracts.Ledger.InitAsset(t); err != nil {
					return errors.Wrapf(err, "token %v", t)
				}
			}
			for name, value := range c.Params {
				param, _ := forge.ParamByName(name)
				if err := contracts.Params.Init(param, value.Int()); err != nil {
					return errors.Wrapf(err, "param %v", name)
				}
			}
			return nil
		})

	if reserve := c.OracleReserve.Int(); reserve.Sign() > 0 {
		builder.Call(c.Admin, func(env *xenv.Environment, contracts *builtin.Contracts) error {
			return env.Call(builtin.Ledger.Address, reserve, func(env *xenv.Environment) error {
				_, err := contracts.Ledger.FundRewards(env, builtin.Oracle.Address, forge.NativeAsset, reserve)
				return err
			})
		})
	}

	id, err := builder.ComputeID()
	if err != nil {
		return nil, err
	}
	return &Genesis{builder, id, name}, nil
}
