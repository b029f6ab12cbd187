// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"github.com/questforge/forge/metrics"
)

var (
	metricTxCount    = metrics.LazyLoadCounterVec("runtime_tx_count", []string{"status", "kind"})
	metricTxExecTime = metrics.LazyLoadHistogram("runtime_tx_exec_us", metrics.BucketExecMicros)
	metricBlockSize  = metrics.LazyLoadGauge("runtime_block_txs")
	metricBestBlock  = metrics.LazyLoadGauge("runtime_best_block")
)
