// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package lvldb is the goleveldb backed kv.Store holding chain state, blocks and receipts.
package lvldb

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/questforge/forge/kv"
)

var _ kv.Store = (*LevelDB)(nil)

// MinCacheMiB is the smallest cache a database is opened with.
const MinCacheMiB = 16

// Options tune a persistent database.
type Options struct {
	// CacheMiB is split between the block cache and the write buffer.
	CacheMiB int
}

// LevelDB is a kv.Store on goleveldb.
type LevelDB struct {
	db *leveldb.DB
}

// New opens the database at path, creating it when missing.
func New(path string, opts Options) (*LevelDB, error) {
	stg, err := storage.OpenFile(path, false)
	if err != nil {
		return nil, errors.Wrapf(err, "open storage [%v]", path)
	}
	return open(stg, opts.CacheMiB)
}

// NewMem opens an empty database held in memory, for solo runs without a data dir and for tests.
func NewMem() (*LevelDB, error) {
	return open(storage.NewMemStorage(), MinCacheMiB)
}

func open(stg storage.Storage, cacheMiB int) (*LevelDB, error) {
	cacheMiB = max(cacheMiB, MinCacheMiB)
	db, err := leveldb.Open(stg, &opt.Options{
		BlockCacheCapacity: cacheMiB / 2 * opt.MiB,
		WriteBuffer:        cacheMiB / 4 * opt.MiB,
		Filter:             filter.NewBloomFilter(10),
	})
	if err != nil {
		stg.Close()
		return nil, errors.Wrap(err, "open level db")
	}
	return &LevelDB{db: db}, nil
}

// IsNotFound reports whether err is the missing key error of Get.
func (ldb *LevelDB) IsNotFound(err error) bool {
	return errors.Is(err, leveldb.ErrNotFound)
}

func (ldb *LevelDB) Get(key []byte) ([]byte, error) {
	return ldb.db.Get(key, nil)
}

func (ldb *LevelDB) Has(key []byte) (bool, error) {
	return ldb.db.Has(key, nil)
}

func (ldb *LevelDB) Put(key, value []byte) error {
	return ldb.db.Put(key, value, nil)
}

func (ldb *LevelDB) Delete(key []byte) error {
	return ldb.db.Delete(key, nil)
}

// Close releases the database. Every later call fails.
func (ldb *LevelDB) Close() error {
	return ldb.db.Close()
}

// NewBatch collects writes applied together by Write, as a block seal does.
func (ldb *LevelDB) NewBatch() kv.Batch {
	return &batch{ldb.db, new(leveldb.Batch)}
}

// NewIterator walks the keys in [r.From, r.To).
func (ldb *LevelDB) NewIterator(r kv.Range) kv.Iterator {
	return ldb.db.NewIterator(&util.Range{Start: r.From, Limit: r.To}, nil)
}

type batch struct {
	db *leveldb.DB
	b  *leveldb.Batch
}

func (b *batch) Put(key, value []byte) error {
	b.b.Put(key, value)
	return nil
}

func (b *batch) Delete(key []byte) error {
	b.b.Delete(key)
	return nil
}

func (b *batch) Len() int     { return b.b.Len() }
func (b *batch) Write() error { return b.db.Write(b.b, nil) }
