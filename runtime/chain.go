// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package runtime

import (
	"encoding/binary"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/questforge/forge/block"
	"github.com/questforge/forge/kv"
)

const (
	blockBucket = kv.Bucket("k")
	metaBucket  = kv.Bucket("m")
)

var bestBlockKey = []byte("best")

// chain stores sealed blocks by number next to the world state.
type chain struct {
	db     kv.GetPutter
	blocks kv.GetPutter
	meta   kv.GetPutter
}

func newChain(db kv.GetPutter) *chain {
	return &chain{
		db:     db,
		blocks: blockBucket.NewGetPutter(db),
		meta:   metaBucket.NewGetPutter(db),
	}
}

func numberKey(num uint32) []byte {
	var k [4]byte
	binary.BigEndian.PutUint32(k[:], num)
	return k[:]
}

// best returns the header of the latest block, nil on an empty database.
func (c *chain) best() (*block.Header, error) {
	key, ok, err := kv.Load(c.meta, bestBlockKey)
	if err != nil || !ok {
		return nil, err
	}
	if len(key) != 4 {
		return nil, errors.New("corrupted best block key")
	}
	blk, err := c.get(binary.BigEndian.Uint32(key))
	if err != nil {
		return nil, errors.Wrap(err, "load best block")
	}
	if blk == nil {
		return nil, errors.New("best block missing")
	}
	return &blk.Header, nil
}

// get returns the block at num, nil if it does not exist.
func (c *chain) get(num uint32) (*block.Block, error) {
	data, ok, err := kv.Load(c.blocks, numberKey(num))
	if err != nil || !ok {
		return nil, err
	}
	var blk block.Block
	if err := json.Unmarshal(data, &blk); err != nil {
		return nil, errors.Wrap(err, "decode block")
	}
	return &blk, nil
}

// put writes blk and marks it best in one batch.
func (c *chain) put(blk *block.Block) error {
	data, err := json.Marshal(blk)
	if err != nil {
		return errors.Wrap(err, "encode block")
	}
	batch := c.db.NewBatch()
	key := numberKey(blk.Header.Number)
	if err := blockBucket.NewBatch(batch).Put(key, data); err != nil {
		return err
	}
	if err := metaBucket.NewBatch(batch).Put(bestBlockKey, key); err != nil {
		return err
	}
	return batch.Write()
}
