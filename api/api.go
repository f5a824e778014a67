// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package api serves a read-only view of a ledger over HTTP.
package api

import (
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/stakeledger/api/accounts"
	"github.com/vechain/stakeledger/api/middleware"
	"github.com/vechain/stakeledger/api/pools"
	"github.com/vechain/stakeledger/api/stats"
	"github.com/vechain/stakeledger/api/subscriptions"
	"github.com/vechain/stakeledger/log"
	"github.com/vechain/stakeledger/metrics"
)

var logger = log.WithContext("pkg", "api")

// Reader is what the API needs from a ledger. Both ledger variants satisfy it.
type Reader interface {
	pools.Reader
	stats.Reader
	accounts.Reader
	subscriptions.Source
}

type Options struct {
	AllowedOrigins       string
	EnableReqLogger      *atomic.Bool
	SlowQueriesThreshold time.Duration
	EnableMetrics        bool
	HistoryLimit         uint64
}

// New return api router. journal may be nil, which leaves out the history routes.
func New(reader Reader, journal accounts.Journal, opts Options) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}
	if opts.HistoryLimit == 0 {
		opts.HistoryLimit = 1000
	}
	if opts.EnableReqLogger == nil {
		opts.EnableReqLogger = &atomic.Bool{}
	}

	router := mux.NewRouter()

	pools.New(reader).
		Mount(router, "/pools")
	stats.New(reader).
		Mount(router, "/stats")
	accounts.New(reader, journal, opts.HistoryLimit).
		Mount(router, "/accounts")
	subs := subscriptions.New(reader, origins)
	subs.Mount(router, "/subscriptions")

	if opts.EnableMetrics {
		router.PathPrefix("/metrics").Handler(metrics.HTTPHandler())
		router.Use(metricsMiddleware)
	}

	router.Use(middleware.RequestLoggerMiddleware(logger, opts.EnableReqLogger, opts.SlowQueriesThreshold))

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type", middleware.RequestIDHeader}),
		handlers.ExposedHeaders([]string{middleware.RequestIDHeader}),
	)(handler)

	return handler.ServeHTTP, subs.Close // subscriptions handles hijacked conns, which need to be closed
}
