package lisd

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics holds the Prometheus collectors for the daemon.
//
// Exposed series:
//   - skein_lisd_requests_total: counter of offload requests by status
//   - skein_lisd_request_duration_seconds: histogram of computation duration
//   - skein_lisd_inflight_requests: gauge of requests currently computing
//   - skein_lisd_rejected_total: counter of requests refused before compute,
//     by reason (oversized position list, frame over the read limit)
//   - skein_lisd_write_timeouts_total: counter of responses dropped because
//     the client did not drain them within the write deadline
//   - skein_lisd_connections_total: counter of accepted websocket connections
type metrics struct {
	requestsTotal      *prometheus.CounterVec
	requestDuration    prometheus.Histogram
	inflightRequests   prometheus.Gauge
	rejectedTotal      *prometheus.CounterVec
	writeTimeoutsTotal prometheus.Counter
	connectionsTotal   prometheus.Counter
}

func newMetrics(registry prometheus.Registerer) *metrics {
	factory := promauto.With(registry)

	return &metrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skein",
			Subsystem: "lisd",
			Name:      "requests_total",
			Help:      "Total number of offload requests processed",
		}, []string{"status"}),

		requestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "skein",
			Subsystem: "lisd",
			Name:      "request_duration_seconds",
			Help:      "Offload computation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		inflightRequests: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "skein",
			Subsystem: "lisd",
			Name:      "inflight_requests",
			Help:      "Number of offload requests currently computing",
		}),

		rejectedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skein",
			Subsystem: "lisd",
			Name:      "rejected_total",
			Help:      "Total number of offload requests refused before compute",
		}, []string{"reason"}),

		writeTimeoutsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "skein",
			Subsystem: "lisd",
			Name:      "write_timeouts_total",
			Help:      "Total number of responses dropped on write deadline",
		}),

		connectionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "skein",
			Subsystem: "lisd",
			Name:      "connections_total",
			Help:      "Total number of accepted websocket connections",
		}),
	}
}
