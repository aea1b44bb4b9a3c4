// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipes_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recipes_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recipes_api_active_requests",
			Help: "Number of API requests currently being served",
		},
	)

	RateLimitedRequests = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recipes_api_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)

	// Domain Metrics
	MembershipChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipes_membership_changes_total",
			Help: "Favorites and shopping cart additions and removals",
		},
		[]string{"set", "action"}, // set: favorites|shopping_cart, action: add|remove
	)

	SubscriptionChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipes_subscription_changes_total",
			Help: "Author subscriptions created and removed",
		},
		[]string{"action"},
	)

	ShoppingListExports = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipes_shopping_list_exports_total",
			Help: "Shopping lists downloaded, by output format",
		},
		[]string{"format"},
	)

	RecipesCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recipes_created_total",
			Help: "Total number of recipes created",
		},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight request gauge
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

func RecordShoppingListExport(format string) {
	ShoppingListExports.WithLabelValues(format).Inc()
}
