// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package forge

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress("0x7567d83b7b8d80addcb281a71d54fc7b3364ffed")
	require.NoError(t, err)
	assert.Equal(t, "0x7567d83b7b8d80addcb281a71d54fc7b3364ffed", addr.String())

	_, err = ParseAddress("1x7567d83b7b8d80addcb281a71d54fc7b3364ffed")
	assert.EqualError(t, err, "invalid prefix")

	_, err = ParseAddress("0x1234")
	assert.EqualError(t, err, "invalid length")
}

func TestAddressJSONAndYAML(t *testing.T) {
	addr := BytesToAddress([]byte("quest"))

	data, err := json.Marshal(&addr)
	require.NoError(t, err)
	var decoded Address
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, addr, decoded)

	out, err := yaml.Marshal(struct {
		Admin Address `yaml:"admin"`
	}{addr})
	require.NoError(t, err)
	var cfg struct {
		Admin Address `yaml:"admin"`
	}
	require.NoError(t, yaml.Unmarshal(out, &cfg))
	assert.Equal(t, addr, cfg.Admin)
}

func TestCreateContractAddress(t *testing.T) {
	factory := BytesToAddress([]byte("factory"))

	a0 := CreateContractAddress(factory, 0)
	a1 := CreateContractAddress(factory, 1)
	assert.NotEqual(t, a0, a1)
	assert.Equal(t, a0, CreateContractAddress(factory, 0))
	assert.False(t, a0.IsZero())
}

func TestBlake2b(t *testing.T) {
	assert.Equal(t, Blake2b([]byte("ab")), Blake2b([]byte("a"), []byte("b")))
	assert.NotEqual(t, Blake2b([]byte("a")), Keccak256([]byte("a")))
}
