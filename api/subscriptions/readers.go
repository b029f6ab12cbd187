// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"github.com/pkg/errors"

	"github.com/questforge/forge/api/restutil"
	"github.com/questforge/forge/block"
)

type msgReader interface {
	// Read returns the messages of the next block, and whether more blocks are ready.
	Read() (msgs []any, hasMore bool, err error)
}

// blockCursor walks the sealed blocks from next on.
type blockCursor struct {
	reader restutil.BlockReader
	next   uint32
}

func (c *blockCursor) advance(convert func(blk *block.Block) []any) ([]any, bool, error) {
	best := c.reader.Best().Number
	if c.next > best {
		return nil, false, nil
	}
	blk, err := c.reader.Block(c.next)
	if err != nil {
		return nil, false, err
	}
	if blk == nil {
		return nil, false, errors.Errorf("missing block %d", c.next)
	}
	c.next++
	return convert(blk), c.next <= best, nil
}

type blockReader struct {
	blockCursor
}

func newBlockReader(reader restutil.BlockReader, pos uint32) *blockReader {
	return &blockReader{blockCursor{reader, pos}}
}

func (br *blockReader) Read() ([]any, bool, error) {
	return br.advance(func(blk *block.Block) []any {
		return []any{convertBlock(blk)}
	})
}

type eventReader struct {
	blockCursor
	filter *EventFilter
	cache  *messageCache
}

func newEventReader(reader restutil.BlockReader, pos uint32, filter *EventFilter, cache *messageCache) *eventReader {
	return &eventReader{blockCursor{reader, pos}, filter, cache}
}

func (er *eventReader) Read() ([]any, bool, error) {
	return er.advance(func(blk *block.Block) []any {
		var msgs []any
		for _, ev := range er.cache.GetOrAdd(blk) {
			if er.filter.Match(ev) {
				msgs = append(msgs, ev)
			}
		}
		return msgs
	})
}
