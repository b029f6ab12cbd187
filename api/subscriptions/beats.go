// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"sync"
)

// beats wakes every listener when a block is sealed. A listener that has not
// consumed its last beat is skipped, readers catch up from storage.
type beats struct {
	mu        sync.Mutex
	listeners map[chan struct{}]struct{}
}

func newBeats() *beats {
	return &beats{listeners: make(map[chan struct{}]struct{})}
}

func (b *beats) Subscribe(ch chan struct{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners[ch] = struct{}{}
}

func (b *beats) Unsubscribe(ch chan struct{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.listeners, ch)
}

func (b *beats) dispatch() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.listeners {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
