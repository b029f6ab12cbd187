// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package restutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questforge/forge/block"
	"github.com/questforge/forge/forge"
	"github.com/questforge/forge/tx"
)

type blocks []*block.Block

func (b blocks) Best() block.Header { return b[len(b)-1].Header }

func (b blocks) Block(num uint32) (*block.Block, error) {
	if int(num) >= len(b) {
		return nil, nil
	}
	return b[num], nil
}

func TestParseRevision(t *testing.T) {
	id := forge.BytesToBytes32([]byte("block"))
	tests := []struct {
		revision string
		want     any
		err      bool
	}{
		{"", revBest, false},
		{"best", revBest, false},
		{"12", uint32(12), false},
		{"0x10", uint32(16), false},
		{id.String(), id, false},
		{"4294967296", nil, true},
		{"finalized", nil, true},
		{"0x" + strings.Repeat("z", 64), nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.revision, func(t *testing.T) {
			rev, err := ParseRevision(tt.revision)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, rev.val)
		})
	}
}

func TestGetBlock(t *testing.T) {
	b0 := block.New(forge.Bytes32{}, 0, 100, forge.Bytes32{}, nil)
	b1 := block.New(b0.Header.ID, 1, 110, forge.Bytes32{}, tx.Receipts{})
	chain := blocks{b0, b1}

	get := func(s string) *block.Block {
		rev, err := ParseRevision(s)
		require.NoError(t, err)
		blk, err := GetBlock(rev, chain)
		require.NoError(t, err)
		return blk
	}
	assert.Equal(t, b1, get("best"))
	assert.Equal(t, b0, get("0"))
	assert.Equal(t, b1, get(b1.Header.ID.String()))
	assert.Nil(t, get("2"))

	forged := b1.Header.ID
	forged[31]++
	assert.Nil(t, get(forged.String()), "id must match, not just its number")
}
