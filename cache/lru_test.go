// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRU(t *testing.T) {
	_, err := NewLRU[string, int](0)
	assert.Error(t, err)

	c, err := NewLRU[string, int](2)
	require.NoError(t, err)

	c.Add("a", 1)
	c.Add("b", 2)
	c.Add("c", 3)
	assert.Equal(t, 2, c.Len())

	_, ok := c.Get("a")
	assert.False(t, ok)
	v, ok := c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	loads := 0
	loader := func(k string) (int, error) {
		loads++
		return len(k), nil
	}
	v, err = c.GetOrLoad("dddd", loader)
	require.NoError(t, err)
	assert.Equal(t, 4, v)
	v, _ = c.GetOrLoad("dddd", loader)
	assert.Equal(t, 4, v)
	assert.Equal(t, 1, loads)

	_, err = c.GetOrLoad("x", func(string) (int, error) { return 0, errors.New("boom") })
	assert.EqualError(t, err, "boom")
	_, ok = c.Get("x")
	assert.False(t, ok)

	c.Purge()
	assert.Equal(t, 0, c.Len())
}
