// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import (
	"context"
	"sync"
)

// Goes runs go routines that share one stop signal and tracks their exit.
type Goes struct {
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// NewGoes creates a Goes whose routines are stopped when parent is canceled or Stop is called.
func NewGoes(parent context.Context) *Goes {
	ctx, cancel := context.WithCancel(parent)
	return &Goes{ctx: ctx, cancel: cancel}
}

// Go runs f in a go routine. The ctx passed to f is canceled on Stop.
func (g *Goes) Go(f func(ctx context.Context)) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		f(g.ctx)
	}()
}

// Stopped is closed once Stop is called or the parent context ends.
func (g *Goes) Stopped() <-chan struct{} {
	return g.ctx.Done()
}

// Stop signals every routine and waits for them to return.
func (g *Goes) Stop() {
	g.cancel()
	g.wg.Wait()
}

// Wait blocks until every routine started by Go has returned.
func (g *Goes) Wait() {
	g.wg.Wait()
}

// Done is closed after every routine has returned.
func (g *Goes) Done() <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		g.wg.Wait()
	}()
	return done
}
