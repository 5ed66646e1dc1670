package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "shareit"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by binary, route and status code.",
		},
		[]string{"binary", "endpoint", "status"},
	)

	bookingTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_transitions_total",
			Help:      "Booking lifecycle events (created, approved, rejected).",
		},
		[]string{"event"},
	)

	upstreamErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "upstream_errors_total",
			Help:      "Transport failures while forwarding to the server.",
		},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "cache_lookups_total",
			Help:      "Gateway read cache lookups by result (hit, miss).",
		},
		[]string{"result"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingTransitions, upstreamErrors, cacheLookups)
	})
}

// IncHTTP counts one handled request.
func IncHTTP(binary, endpoint string, status int) {
	httpRequests.WithLabelValues(binary, endpoint, strconv.Itoa(status)).Inc()
}

func IncBookingTransition(event string) {
	bookingTransitions.WithLabelValues(event).Inc()
}

func IncUpstreamError() {
	upstreamErrors.Inc()
}

// IncCacheLookup records a gateway cache hit or miss.
func IncCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookups.WithLabelValues(result).Inc()
}
