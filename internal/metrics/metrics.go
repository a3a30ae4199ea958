// Package metrics holds the Prometheus collectors shared by the server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestTotal counts HTTP requests by method, path and status.
	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contentql_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	// RequestDuration is the latency of HTTP requests.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "contentql_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	// FetchDuration is the latency of collection fetches against the delivery
	// API by response status. Collection names come from callers and are
	// logged rather than used as labels.
	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "contentql_fetch_duration_seconds",
			Help:    "Delivery API fetch latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"},
	)
	// RootsResolved counts resolved root query nodes by outcome.
	RootsResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contentql_roots_resolved_total",
			Help: "Total number of resolved root query nodes",
		},
		[]string{"outcome"},
	)
)
