// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questforge/forge/forge"
)

func TestEvent(t *testing.T) {
	addr := forge.BytesToAddress([]byte("ledger"))
	owner := forge.BytesToAddress([]byte("owner"))

	ev, err := NewEvent(addr, "Staked", map[string]any{"amount": "100"}, AddressTopic(owner))
	require.NoError(t, err)
	assert.Equal(t, forge.BytesToBytes32(owner.Bytes()), ev.Topics[0])

	var payload struct {
		Amount string `json:"amount"`
	}
	require.NoError(t, ev.Decode(&payload))
	assert.Equal(t, "100", payload.Amount)

	data, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name":"Staked"`)

	other, err := NewEvent(addr, "Withdrawn", nil)
	require.NoError(t, err)
	assert.NotNil(t, other.Topics)

	events := Events{ev, other, ev}
	assert.Len(t, events.Named("Staked"), 2)
	assert.Empty(t, events.Named("Slashed"))
}

func TestNewID(t *testing.T) {
	origin := forge.BytesToAddress([]byte("origin"))
	assert.NotEqual(t, NewID(origin, 0, 1), NewID(origin, 1, 1))
	assert.Equal(t, NewID(origin, 2, 1), NewID(origin, 2, 1))
}
