// Package metrics provides Prometheus instrumentation for the rentals platform.
package metrics

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestsTotal counts HTTP requests by method, route pattern, and status bucket.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lautech_rentals",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, route pattern, and status code bucket.",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes request latency by method and route pattern.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lautech_rentals",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// TokenPurchasesTotal counts token purchase initiations and settlements by status.
	TokenPurchasesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lautech_rentals",
			Name:      "token_purchases_total",
			Help:      "Total token purchase transactions by status.",
		},
		[]string{"status"},
	)

	// ContactUnlocksTotal counts contact unlock attempts by outcome.
	ContactUnlocksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lautech_rentals",
			Name:      "contact_unlocks_total",
			Help:      "Total contact unlock attempts by outcome.",
		},
		[]string{"outcome"}, // "unlocked", "already_unlocked", "insufficient_funds"
	)

	// WebhookEventsTotal counts gateway webhook deliveries by event and result.
	WebhookEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lautech_rentals",
			Name:      "webhook_events_total",
			Help:      "Total payment gateway webhook deliveries by event and result.",
		},
		[]string{"event", "result"},
	)

	// PaymentsReconciledTotal counts settled payments by kind.
	PaymentsReconciledTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lautech_rentals",
			Name:      "payments_reconciled_total",
			Help:      "Total payments reconciled by transaction kind.",
		},
		[]string{"kind"}, // "token", "inspection"
	)

	// InspectionsBookedTotal counts inspection bookings.
	InspectionsBookedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "lautech_rentals",
		Name:      "inspections_booked_total",
		Help:      "Total inspection bookings created.",
	})

	// OutboxPublishedTotal counts outbox events published downstream.
	OutboxPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lautech_rentals",
			Name:      "outbox_published_total",
			Help:      "Total outbox events published by result.",
		},
		[]string{"result"}, // "published", "failed"
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		TokenPurchasesTotal,
		ContactUnlocksTotal,
		WebhookEventsTotal,
		PaymentsReconciledTotal,
		InspectionsBookedTotal,
		OutboxPublishedTotal,
	)
}

// Middleware records request counts and latency for every routed request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		// Route pattern, not the raw path, to keep label cardinality bounded.
		path := chi.RouteContext(r.Context()).RoutePattern()
		if path == "" {
			path = "unmatched"
		}
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		HTTPRequestsTotal.WithLabelValues(r.Method, path, statusBucket(ww.Status())).Inc()
	})
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

func statusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
