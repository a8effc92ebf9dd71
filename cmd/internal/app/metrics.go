package app

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// httpRequestsTotal counts all HTTP requests by method, route, and status class.
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskd_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// httpRequestDuration records request duration in seconds by method and route.
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "taskd_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
	)
}

// routeLabel collapses id-bearing paths to keep metric cardinality bounded.
func routeLabel(r *http.Request) string {
	p := r.URL.Path
	if strings.HasPrefix(p, "/todos/") && len(p) > len("/todos/") {
		return "/todos/{id}"
	}
	return p
}
