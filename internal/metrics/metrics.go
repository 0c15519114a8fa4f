// Package metrics содержит Prometheus-метрики витрины.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

var (
	// HTTP

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Сессии

	SessionStoreFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_store_failures_total",
			Help:      "Session store operations that failed and degraded to empty state",
		},
		[]string{"backend", "op"},
	)

	SessionBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "session_breaker_state",
			Help:      "Session store circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"name"},
	)

	// Корзина и избранное

	CartMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_mutations_total",
			Help:      "Cart add/remove operations",
		},
		[]string{"action"},
	)

	FavoriteTogglesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "favorite_toggles_total",
			Help:      "Favorite toggles by resulting membership",
		},
		[]string{"added"},
	)

	// Кэш товаров

	ProductCacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "product_cache_lookups_total",
			Help:      "Product cache lookups by result",
		},
		[]string{"result"},
	)

	// Outbox

	OutboxPublishedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_published_total",
			Help:      "Outbox events published to Kafka",
		},
	)

	OutboxFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_failures_total",
			Help:      "Outbox events that failed to publish and were returned to pending",
		},
	)
)

func ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func RecordSessionFailure(backend, op string) {
	SessionStoreFailuresTotal.WithLabelValues(backend, op).Inc()
}

func RecordCartMutation(action string) {
	CartMutationsTotal.WithLabelValues(action).Inc()
}

func RecordFavoriteToggle(added bool) {
	FavoriteTogglesTotal.WithLabelValues(strconv.FormatBool(added)).Inc()
}

func RecordCacheLookup(hits, misses int) {
	ProductCacheLookupsTotal.WithLabelValues("hit").Add(float64(hits))
	ProductCacheLookupsTotal.WithLabelValues("miss").Add(float64(misses))
}
