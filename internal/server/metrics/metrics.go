// Package metrics holds the Prometheus collectors of the server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gophbox"

// Outcome labels for file operations.
const (
	ResultOK         = "ok"
	ResultRejected   = "rejected"
	ResultNotFound   = "not_found"
	ResultFailed     = "failed"
	ResultRolledBack = "rolled_back"
)

type Metrics struct {
	Uploads   *prometheus.CounterVec
	Downloads *prometheus.CounterVec
	Deletes   *prometheus.CounterVec

	UploadedBytes prometheus.Counter
	ReleasedBytes prometheus.Counter

	HTTPRequestDuration *prometheus.HistogramVec
}

// New registers all collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Uploads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "files", Name: "uploads_total",
			Help: "File uploads by result.",
		}, []string{"result"}),
		Downloads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "files", Name: "downloads_total",
			Help: "File downloads by result.",
		}, []string{"result"}),
		Deletes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "files", Name: "deletes_total",
			Help: "File deletions by result.",
		}, []string{"result"}),
		UploadedBytes: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "quota", Name: "reserved_bytes_total",
			Help: "Bytes added to user usage by committed uploads.",
		}),
		ReleasedBytes: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "quota", Name: "released_bytes_total",
			Help: "Bytes returned to users by committed deletes.",
		}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "http", Name: "request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// NewNop returns collectors bound to a private registry.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
