package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// UpstreamRequestsTotal counts requests to external services, labelled by
	// upstream ("solana_rpc", "jupiter_price", "jupiter_token") and outcome.
	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_upstream_requests_total",
			Help: "Total number of requests issued to external services.",
		},
		[]string{"upstream", "outcome"},
	)

	// UpstreamRequestDuration observes upstream call latency in seconds.
	UpstreamRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portfolio_upstream_request_duration_seconds",
			Help:    "Latency of requests to external services.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"upstream"},
	)

	// PortfolioFetchesTotal counts full portfolio fetch cycles.
	PortfolioFetchesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "portfolio_fetches_total",
			Help: "Total number of portfolio fetch cycles executed.",
		},
	)

	// WalletFetchErrorsTotal counts wallets skipped during a fetch cycle.
	WalletFetchErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "portfolio_wallet_fetch_errors_total",
			Help: "Total number of wallets that failed during portfolio fetches.",
		},
	)

	// ProxyCacheEvents counts hits and misses on the proxy response caches,
	// labelled by endpoint and event ("hit"|"miss").
	ProxyCacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_proxy_cache_events_total",
			Help: "Cache hits and misses on the proxy endpoints.",
		},
		[]string{"endpoint", "event"},
	)
)

// MustRegisterMetrics registers all collectors with the default registry.
// Call once at startup before serving /metrics.
func MustRegisterMetrics() {
	prometheus.MustRegister(
		UpstreamRequestsTotal,
		UpstreamRequestDuration,
		PortfolioFetchesTotal,
		WalletFetchErrorsTotal,
		ProxyCacheEvents,
	)
}
