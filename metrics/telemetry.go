// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"net/http"
	"sync"
)

// metrics backs every meter. It stays a no-op until InitializePrometheusMetrics runs.
var metrics = defaultNoopMetrics()

// Metrics creates named meters, returning the existing one on repeated names.
type Metrics interface {
	GetOrCreateCountVecMeter(name string, labels []string) CountVecMeter
	GetOrCreateGaugeMeter(name string) GaugeMeter
	GetOrCreateHistogramMeter(name string, buckets []int64) HistogramMeter
	GetOrCreateHistogramVecMeter(name string, labels []string, buckets []int64) HistogramVecMeter
	GetOrCreateHandler() http.Handler
}

// HTTPHandler serves the collected metrics, nil when metrics are disabled.
func HTTPHandler() http.Handler {
	return metrics.GetOrCreateHandler()
}

var (
	// BucketExecMicros covers transaction execution times in microseconds.
	BucketExecMicros = []int64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10_000, 50_000}
	// BucketHTTPReqs covers API response times in milliseconds.
	BucketHTTPReqs = []int64{0, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10_000}
)

type HistogramMeter interface {
	Observe(int64)
}

type HistogramVecMeter interface {
	ObserveWithLabels(int64, map[string]string)
}

type CountVecMeter interface {
	AddWithLabel(int64, map[string]string)
}

type GaugeMeter interface {
	Add(int64)
	Set(int64)
}

// lazy resolves a meter on first use, so meters declared at package level
// bind to the backend chosen at startup rather than the no-op default.
func lazy[T any](create func() T) func() T {
	var (
		once  sync.Once
		meter T
	)
	return func() T {
		once.Do(func() { meter = create() })
		return meter
	}
}

func LazyLoadHistogram(name string, buckets []int64) func() HistogramMeter {
	return lazy(func() HistogramMeter { return metrics.GetOrCreateHistogramMeter(name, buckets) })
}

func LazyLoadHistogramVec(name string, labels []string, buckets []int64) func() HistogramVecMeter {
	return lazy(func() HistogramVecMeter { return metrics.GetOrCreateHistogramVecMeter(name, labels, buckets) })
}

func LazyLoadCounterVec(name string, labels []string) func() CountVecMeter {
	return lazy(func() CountVecMeter { return metrics.GetOrCreateCountVecMeter(name, labels) })
}

func LazyLoadGauge(name string) func() GaugeMeter {
	return lazy(func() GaugeMeter { return metrics.GetOrCreateGaugeMeter(name) })
}
