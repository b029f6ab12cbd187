// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package block

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/questforge/forge/forge"
	"github.com/questforge/forge/tx"
)

func TestNew(t *testing.T) {
	parent := forge.BytesToBytes32([]byte("parent"))
	receipts := tx.Receipts{{ID: forge.BytesToBytes32([]byte("tx1"))}}

	b := New(parent, 7, 1000, forge.Bytes32{}, receipts)
	assert.Equal(t, uint32(7), b.Header.Number)
	assert.Equal(t, uint32(7), Number(b.Header.ID))
	assert.Equal(t, 1, b.Header.TxCount)
	assert.Equal(t, parent, b.Header.ParentID)

	other := New(parent, 7, 1001, forge.Bytes32{}, receipts)
	assert.NotEqual(t, b.Header.ID, other.Header.ID)
}
