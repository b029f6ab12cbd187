// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solo

import (
	"context"
	"time"

	"github.com/questforge/forge/block"
	"github.com/questforge/forge/co"
	"github.com/questforge/forge/log"
)

var logger = log.WithContext("pkg", "solo")

type Options struct {
	OnDemand      bool   // seal only when transactions are pending
	BlockInterval uint64 // seconds between blocks
}

// Sealer is the runtime blocks are sealed on.
type Sealer interface {
	Pending() int
	Seal() (*block.Block, error)
}

// Solo mode is the standalone node sealing blocks on its own schedule.
type Solo struct {
	sealer  Sealer
	options Options
}

func New(sealer Sealer, options Options) *Solo {
	if options.BlockInterval == 0 {
		options.BlockInterval = 10
	}
	return &Solo{sealer, options}
}

// Run seals blocks until ctx is canceled.
func (s *Solo) Run(ctx context.Context) error {
	goes := co.NewGoes(ctx)
	defer goes.Stop()

	logger.Info("prepared to seal blocks", "interval", s.options.BlockInterval, "onDemand", s.options.OnDemand)

	goes.Go(s.loop)
	<-goes.Stopped()
	return nil
}

func (s *Solo) loop(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("stopping interval sealing service......")
			return
		case <-ticker.C:
			if _, err := s.tick(uint64(time.Now().Unix())); err != nil {
				logger.Error("failed to seal block", "err", err)
			}
		}
	}
}

// tick seals a block when one is due at now, returning nil otherwise.
func (s *Solo) tick(now uint64) (*block.Block, error) {
	if s.options.OnDemand {
		if s.sealer.Pending() == 0 {
			return nil, nil
		}
	} else if now%s.options.BlockInterval != 0 {
		return nil, nil
	}
	blk, err := s.sealer.Seal()
	if err != nil {
		return nil, err
	}
	logger.Debug("sealed", "number", blk.Header.Number, "txs", blk.Header.TxCount)
	return blk, nil
}
