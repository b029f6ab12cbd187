// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package restutil

import (
	"errors"
	"math"
	"strconv"

	"github.com/questforge/forge/block"
	"github.com/questforge/forge/forge"
)

const revBest int64 = -1

// Revision names a sealed block by number, id or "best".
type Revision struct {
	val any
}

// ParseRevision parses a query parameter into a block number or block ID.
func ParseRevision(revision string) (*Revision, error) {
	if revision == "" || revision == "best" {
		return &Revision{revBest}, nil
	}

	if len(revision) == 66 || len(revision) == 64 {
		blockID, err := forge.ParseBytes32(revision)
		if err != nil {
			return nil, err
		}
		return &Revision{blockID}, nil
	}
	n, err := strconv.ParseUint(revision, 0, 0)
	if err != nil {
		return nil, err
	}
	if n > math.MaxUint32 {
		return nil, errors.New("block number out of max uint32")
	}
	return &Revision{uint32(n)}, nil
}

// BlockReader reads sealed blocks.
type BlockReader interface {
	Best() block.Header
	Block(num uint32) (*block.Block, error)
}

// GetBlock returns the block rev names, nil if there is none.
func GetBlock(rev *Revision, reader BlockReader) (*block.Block, error) {
	switch rev := rev.val.(type) {
	case forge.Bytes32:
		blk, err := reader.Block(block.Number(rev))
		if err != nil || blk == nil || blk.Header.ID != rev {
			return nil, err
		}
		return blk, nil
	case uint32:
		return reader.Block(rev)
	default:
		return reader.Block(reader.Best().Number)
	}
}
