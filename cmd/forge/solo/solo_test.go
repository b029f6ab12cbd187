// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solo

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questforge/forge/block"
	"github.com/questforge/forge/forge"
)

type fakeSealer struct {
	pending int
	sealed  int
	err     error
}

func (f *fakeSealer) Pending() int { return f.pending }

func (f *fakeSealer) Seal() (*block.Block, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sealed++
	f.pending = 0
	return block.New(forge.Bytes32{}, uint32(f.sealed), 0, forge.Bytes32{}, nil), nil
}

func TestIntervalTick(t *testing.T) {
	sealer := &fakeSealer{}
	s := New(sealer, Options{BlockInterval: 10})

	blk, err := s.tick(15)
	require.NoError(t, err)
	assert.Nil(t, blk)

	blk, err = s.tick(20)
	require.NoError(t, err)
	require.NotNil(t, blk, "empty blocks are sealed on schedule")
	assert.Equal(t, 1, sealer.sealed)
}

func TestOnDemandTick(t *testing.T) {
	sealer := &fakeSealer{}
	s := New(sealer, Options{OnDemand: true})

	blk, err := s.tick(20)
	require.NoError(t, err)
	assert.Nil(t, blk)

	sealer.pending = 2
	blk, err = s.tick(21)
	require.NoError(t, err)
	require.NotNil(t, blk)
	assert.Equal(t, 0, sealer.pending)
}

func TestTickError(t *testing.T) {
	s := New(&fakeSealer{err: errors.New("disk full")}, Options{BlockInterval: 1})
	_, err := s.tick(1)
	assert.EqualError(t, err, "disk full")
}

func TestRunStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- New(&fakeSealer{}, Options{}).Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("solo did not stop")
	}
}
