// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questforge/forge/forge"
)

func TestUint256(t *testing.T) {
	u := NewUint256(newTestContext(), forge.Bytes32{1})

	v, err := u.Get()
	require.NoError(t, err)
	assert.Equal(t, 0, v.Sign())

	sum, err := u.Add(big.NewInt(10))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(10), sum)

	diff, err := u.Sub(big.NewInt(4))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(6), diff)

	_, err = u.Sub(big.NewInt(7))
	assert.ErrorIs(t, err, forge.ErrUnderflow)
	v, err = u.Get()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(6), v, "failed sub must not write")
}

func TestUint256_Next(t *testing.T) {
	u := NewUint256(newTestContext(), forge.Bytes32{2})
	for i := uint64(0); i < 3; i++ {
		n, err := u.Next()
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}
}
