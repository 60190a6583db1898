// Package metrics declares the prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodgram_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "foodgram_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	ShortCodesIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "foodgram_short_codes_issued_total",
		Help: "Short codes assigned to new recipes.",
	})

	ShortCodeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "foodgram_short_code_exhausted_total",
		Help: "Recipe creations that ran out of short code attempts.",
	})

	ShortLinkResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodgram_short_link_resolutions_total",
		Help: "Short link lookups by outcome (cache_hit, db_hit, not_found).",
	}, []string{"outcome"})

	ShoppingListDownloads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "foodgram_shopping_list_downloads_total",
		Help: "Rendered shopping list downloads.",
	})

	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "foodgram_rate_limited_total",
		Help: "Requests rejected by the rate limiter.",
	})
)
