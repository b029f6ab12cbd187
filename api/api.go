// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/questforge/forge/api/blocks"
	"github.com/questforge/forge/api/events"
	"github.com/questforge/forge/api/ledger"
	"github.com/questforge/forge/api/oracle"
	"github.com/questforge/forge/api/quests"
	"github.com/questforge/forge/api/subscriptions"
	"github.com/questforge/forge/log"
	"github.com/questforge/forge/logdb"
	"github.com/questforge/forge/metrics"
	"github.com/questforge/forge/runtime"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins       string
	BacktraceLimit       uint32
	LogsLimit            uint64
	EnableReqLogger      *atomic.Bool
	SlowQueriesThreshold time.Duration
	EnableMetrics        bool
}

// New return api router
func New(rt *runtime.Runtime, logDB *logdb.LogDB, opts Options) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	if opts.EnableReqLogger == nil {
		opts.EnableReqLogger = &atomic.Bool{}
	}
	router.Use(RequestLoggerMiddleware(logger, opts.EnableReqLogger, opts.SlowQueriesThreshold))

	quests.New(rt).
		Mount(router, "/quests")
	ledger.New(rt).
		Mount(router, "/ledger")
	oracle.New(rt, rt).
		Mount(router, "/oracle")
	blocks.New(rt).
		Mount(router, "/blocks")
	events.New(logDB, opts.LogsLimit).
		Mount(router, "/logs/event")
	subs := subscriptions.New(rt, origins, opts.BacktraceLimit)
	subs.Mount(router, "/subscriptions")

	if opts.EnableMetrics {
		router.PathPrefix("/metrics").Handler(metrics.HTTPHandler())
		router.Use(metricsMiddleware)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type", requestIDHeader}),
		handlers.ExposedHeaders([]string{requestIDHeader}),
	)(handler)

	return handler.ServeHTTP, subs.Close // subscriptions handles hijacked conns, which need to be closed
}
