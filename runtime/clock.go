// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"sync/atomic"
	"time"
)

// Clock supplies block time in unix seconds.
type Clock interface {
	Now() uint64
}

// SystemClock reads wall time.
type SystemClock struct{}

func (SystemClock) Now() uint64 { return uint64(time.Now().Unix()) }

// ManualClock is a clock driven by hand, for tests and replay.
type ManualClock struct {
	now atomic.Uint64
}

// NewManualClock creates a manual clock starting at t.
func NewManualClock(t uint64) *ManualClock {
	c := &ManualClock{}
	c.now.Store(t)
	return c
}

func (c *ManualClock) Now() uint64 { return c.now.Load() }

// SetTime moves the clock to t.
func (c *ManualClock) SetTime(t uint64) { c.now.Store(t) }

// Advance moves the clock forward by d seconds and returns the new time.
func (c *ManualClock) Advance(d uint64) uint64 { return c.now.Add(d) }
