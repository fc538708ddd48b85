package apiclient

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cooperativa",
		Subsystem: "backend",
		Name:      "requests_total",
		Help:      "Backend API calls by client, method and status.",
	}, []string{"client", "method", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "cooperativa",
		Subsystem: "backend",
		Name:      "request_duration_seconds",
		Help:      "Backend API call latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"client", "method"})
)

// observe records one call; status 0 means no response.
func observe(client, method string, status int, start time.Time) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	requestsTotal.WithLabelValues(client, method, label).Inc()
	requestDuration.WithLabelValues(client, method).Observe(time.Since(start).Seconds())
}
