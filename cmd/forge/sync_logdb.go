// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/questforge/forge/block"
)

// blockSource is the chain the log database is rebuilt from.
type blockSource interface {
	Best() block.Header
	Block(num uint32) (*block.Block, error)
}

type logWriter interface {
	NewestBlockNumber() (uint32, bool, error)
	Write(blk *block.Block) error
}

// syncLogDB indexes the sealed blocks the log database missed, as after a crash between
// sealing a block and indexing it.
func syncLogDB(ctx context.Context, chain blockSource, logs logWriter) error {
	newest, ok, err := logs.NewestBlockNumber()
	if err != nil {
		return errors.Wrap(err, "newest indexed block")
	}
	from := uint32(0)
	if ok {
		from = newest + 1
	}

	best := chain.Best().Number
	if from > best {
		return nil
	}
	logger.Info("syncing log database", "from", from, "to", best)
	for num := from; num <= best; num++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		blk, err := chain.Block(num)
		if err != nil {
			return err
		}
		if blk == nil {
			return errors.Errorf("missing block %d", num)
		}
		if err := logs.Write(blk); err != nil {
			return errors.Wrapf(err, "index block %d", num)
		}
	}
	return nil
}
