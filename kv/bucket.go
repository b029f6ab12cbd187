// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"github.com/syndtr/goleveldb/leveldb/util"
)

// Bucket provides logical bucket for kv store.
type Bucket string

func (b Bucket) key(key []byte) []byte {
	return append([]byte(b), key...)
}

// NewGetPutter creates a bucket view over the source store.
func (b Bucket) NewGetPutter(src GetPutter) GetPutter {
	return &bucketStore{b, src}
}

// NewBatch wraps a batch so that every key is written under the bucket.
func (b Bucket) NewBatch(batch Batch) Batch {
	return &bucketBatch{b, batch}
}

type bucketStore struct {
	b   Bucket
	src GetPutter
}

func (s *bucketStore) Get(key []byte) ([]byte, error) { return s.src.Get(s.b.key(key)) }
func (s *bucketStore) Has(key []byte) (bool, error)   { return s.src.Has(s.b.key(key)) }
func (s *bucketStore) IsNotFound(err error) bool      { return s.src.IsNotFound(err) }
func (s *bucketStore) Put(key, value []byte) error    { return s.src.Put(s.b.key(key), value) }
func (s *bucketStore) Delete(key []byte) error        { return s.src.Delete(s.b.key(key)) }
func (s *bucketStore) NewBatch() Batch                { return s.b.NewBatch(s.src.NewBatch()) }
func (s *bucketStore) NewIterator(r Range) Iterator {
	rng := Range{From: s.b.key(r.From)}
	if len(r.To) == 0 {
		rng.To = util.BytesPrefix([]byte(s.b)).Limit
	} else {
		rng.To = s.b.key(r.To)
	}
	return &bucketIterator{s.src.NewIterator(rng), len(s.b)}
}

type bucketBatch struct {
	b     Bucket
	batch Batch
}

func (bb *bucketBatch) Put(key, value []byte) error { return bb.batch.Put(bb.b.key(key), value) }
func (bb *bucketBatch) Delete(key []byte) error     { return bb.batch.Delete(bb.b.key(key)) }
func (bb *bucketBatch) Len() int                    { return bb.batch.Len() }
func (bb *bucketBatch) Write() error                { return bb.batch.Write() }

type bucketIterator struct {
	Iterator
	prefixLen int
}

// Key strips the bucket prefix.
func (it *bucketIterator) Key() []byte {
	return it.Iterator.Key()[it.prefixLen:]
}
