// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package genesis

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questforge/forge/builtin"
	"github.com/questforge/forge/builtin/acl"
	"github.com/questforge/forge/forge"
	"github.com/questforge/forge/lvldb"
	"github.com/questforge/forge/state"
)

func TestDevAccounts(t *testing.T) {
	accs := DevAccounts()
	require.Len(t, accs, 10)

	seen := make(map[forge.Address]bool)
	for _, acc := range accs {
		assert.False(t, seen[acc.Address])
		seen[acc.Address] = true
	}
	assert.Equal(t, accs, DevAccounts())
}

func TestConfigRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Params["min-stake"] = NewAmount(big.NewInt(1000))

	data, err := cfg.Marshal()
	require.NoError(t, err)

	decoded, err := ParseConfig(data)
	require.NoError(t, err)
	assert.Equal(t, cfg.Admin, decoded.Admin)
	assert.Equal(t, cfg.Tokens, decoded.Tokens)
	assert.Len(t, decoded.Accounts, len(cfg.Accounts))
	assert.Equal(t, 0, cfg.OracleReserve.Int().Cmp(decoded.OracleReserve.Int()))
	assert.Equal(t, int64(1000), decoded.Params["min-stake"].Int().Int64())

	g1, err := cfg.Genesis("a")
	require.NoError(t, err)
	g2, err := decoded.Genesis("b")
	require.NoError(t, err)
	assert.Equal(t, g1.ID(), g2.ID())
}

func TestParseConfig(t *testing.T) {
	admin := DevAccounts()[0].Address

	cfg, err := ParseConfig([]byte(`
launchTime: 1700000000
admin: ` + admin.String() + `
accounts:
  - address: ` + admin.String() + `
    balance: 0x3635c9adc5dea00000
oracleReserve: 1000000000000000000
params:
  default-threshold: 2
`))
	require.NoError(t, err)
	assert.Equal(t, uint64(1700000000), cfg.LaunchTime)
	assert.Equal(t, "1000000000000000000000", cfg.Accounts[0].Balance.Int().String())
	assert.Equal(t, int64(2), cfg.Params["default-threshold"].Int().Int64())

	_, err = ParseConfig([]byte("launchTime: 1\nadmin: " + admin.String() + "\ngasLimit: 10\n"))
	assert.Error(t, err)

	_, err = ParseConfig([]byte("admin: " + admin.String() + "\noracleReserve: nope\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	admin := DevAccounts()[0].Address
	token := forge.BytesToAddress([]byte("token"))

	tests := []struct {
		name   string
		modify func(c *Config)
		err    string
	}{
		{"default", func(c *Config) {}, ""},
		{"no admin", func(c *Config) { c.Admin = forge.Address{} }, "admin address required"},
		{"native token", func(c *Config) { c.Tokens = append(c.Tokens, forge.NativeAsset) }, "native asset is not a token"},
		{"unknown token", func(c *Config) {
			c.Accounts[1].Tokens = append(c.Accounts[1].Tokens, TokenBalance{token, NewAmount(big.NewInt(1))})
		}, "unknown token"},
		{"unknown param", func(c *Config) { c.Params["gas-limit"] = NewAmount(big.NewInt(1)) }, "unknown param"},
		{"long extra data", func(c *Config) { c.ExtraData = "0123456789012345678901234567890" }, "extraData"},
		{"unfunded reserve", func(c *Config) {
			c.OracleReserve = NewAmount(new(big.Int).Mul(forge.Ether, big.NewInt(2_000_000)))
		}, "oracle reserve"},
		{"admin without account", func(c *Config) {
			c.Admin = forge.BytesToAddress([]byte("stranger"))
		}, "oracle reserve"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			require.Equal(t, admin, cfg.Admin)
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.err == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.err)
		})
	}
}

func TestBuild(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	gen := NewDevnet()
	assert.Equal(t, "devnet", gen.Name())

	blk, err := gen.Build(db)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), blk.Header.Number)
	assert.Equal(t, gen.ID(), blk.Header.ID)
	assert.Equal(t, DefaultConfig().LaunchTime, blk.Header.Timestamp)
	require.Len(t, blk.Receipts, 1)
	assert.Len(t, blk.Receipts[0].Events.Named("RewardsFunded"), 1)

	// committed state reads back from the store
	c := builtin.Bind(state.New(db))
	admin := DevAccounts()[0].Address

	isAdmin, err := c.ACL.HasRole(acl.Admin, admin)
	require.NoError(t, err)
	assert.True(t, isAdmin)
	isFactory, err := c.ACL.HasRole(acl.Factory, builtin.Factory.Address)
	require.NoError(t, err)
	assert.True(t, isFactory)

	supported, err := c.Ledger.IsSupported(DevToken)
	require.NoError(t, err)
	assert.True(t, supported)

	reserve := new(big.Int).Mul(forge.Ether, big.NewInt(1000))
	pool, err := c.Ledger.Pool(builtin.Oracle.Address)
	require.NoError(t, err)
	assert.Equal(t, 0, reserve.Cmp(pool.RewardReserve))
	assert.True(t, pool.Managed)

	million := new(big.Int).Mul(forge.Ether, big.NewInt(1_000_000))
	bal, err := c.State.GetBalance(forge.NativeAsset, admin)
	require.NoError(t, err)
	assert.Equal(t, 0, new(big.Int).Sub(million, reserve).Cmp(bal))

	bal, err = c.State.GetBalance(DevToken, DevAccounts()[9].Address)
	require.NoError(t, err)
	assert.Equal(t, 0, million.Cmp(bal))

	ledgerBal, err := c.State.GetBalance(forge.NativeAsset, builtin.Ledger.Address)
	require.NoError(t, err)
	assert.Equal(t, 0, reserve.Cmp(ledgerBal))
}

func TestParamOverride(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Params["max-quests-per-creator"] = NewAmount(big.NewInt(3))
	gen, err := cfg.Genesis("custom")
	require.NoError(t, err)
	assert.NotEqual(t, NewDevnet().ID(), gen.ID())

	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()
	_, err = gen.Build(db)
	require.NoError(t, err)

	v, err := builtin.Bind(state.New(db)).Params.Uint64(forge.ParamMaxQuestsPerCreator)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), v)
}
