// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"github.com/questforge/forge/api/events"
	"github.com/questforge/forge/block"
	"github.com/questforge/forge/cache"
	"github.com/questforge/forge/forge"
)

// messageCache holds the converted events of recent blocks, shared by every event subscriber.
type messageCache struct {
	cache *cache.LRU[forge.Bytes32, []*events.FilteredEvent]
}

func newMessageCache(size int) (*messageCache, error) {
	lru, err := cache.NewLRU[forge.Bytes32, []*events.FilteredEvent](size)
	if err != nil {
		return nil, err
	}
	return &messageCache{lru}, nil
}

// GetOrAdd returns the events of blk, converting them on a miss.
func (mc *messageCache) GetOrAdd(blk *block.Block) []*events.FilteredEvent {
	msgs, _ := mc.cache.GetOrLoad(blk.Header.ID, func(forge.Bytes32) ([]*events.FilteredEvent, error) {
		return convertEvents(blk), nil
	})
	return msgs
}
