package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cityevents_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cityevents_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	StoreOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cityevents_store_operations_total",
			Help: "Mutating store operations by outcome",
		},
		[]string{"entity", "operation", "result"},
	)

	SnapshotWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cityevents_snapshot_writes_total",
			Help: "Whole-collection snapshot writes",
		},
		[]string{"backend", "name", "result"},
	)

	SnapshotWriteDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cityevents_snapshot_write_duration_seconds",
			Help:    "Snapshot write duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "name"},
	)

	CollectionSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cityevents_collection_size",
			Help: "Number of entities held in memory",
		},
		[]string{"entity"},
	)
)

func result(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

func RecordHttpRequest(method, endpoint, status string, duration time.Duration) {
	HttpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	HttpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

func RecordStoreOperation(entity, operation string, err error) {
	StoreOperationsTotal.WithLabelValues(entity, operation, result(err)).Inc()
}

func RecordSnapshotWrite(backend, name string, duration time.Duration, err error) {
	SnapshotWritesTotal.WithLabelValues(backend, name, result(err)).Inc()
	SnapshotWriteDuration.WithLabelValues(backend, name).Observe(duration.Seconds())
}

func SetCollectionSize(entity string, size int) {
	CollectionSize.WithLabelValues(entity).Set(float64(size))
}
