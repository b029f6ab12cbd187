// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import lru "github.com/hashicorp/golang-lru"

// LRU a typed LRU cache backed by golang-lru.
type LRU[K comparable, V any] struct {
	cache *lru.Cache
}

// NewLRU create a LRU cache instance.
// maxSize should be > 0, or an error returned.
func NewLRU[K comparable, V any](maxSize int) (*LRU[K, V], error) {
	cache, err := lru.New(maxSize)
	if err != nil {
		return nil, err
	}
	return &LRU[K, V]{cache}, nil
}

// Get looks up a key's value.
func (l *LRU[K, V]) Get(key K) (v V, ok bool) {
	raw, ok := l.cache.Get(key)
	if !ok {
		return v, false
	}
	return raw.(V), true
}

// Add adds a value, evicting the oldest entry if needed.
func (l *LRU[K, V]) Add(key K, value V) {
	l.cache.Add(key, value)
}

// Len returns the number of cached items.
func (l *LRU[K, V]) Len() int {
	return l.cache.Len()
}

// Purge drops every cached item.
func (l *LRU[K, V]) Purge() {
	l.cache.Purge()
}

// GetOrLoad first try to get from cache, do load if missed.
func (l *LRU[K, V]) GetOrLoad(key K, loader func(K) (V, error)) (V, error) {
	if v, ok := l.Get(key); ok {
		return v, nil
	}
	v, err := loader(key)
	if err != nil {
		return v, err
	}
	l.Add(key, v)
	return v, nil
}
