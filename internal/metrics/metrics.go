package metrics

import (
	"database/sql"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Outcome labels for account operations.
const (
	OutcomeOK           = "ok"
	OutcomeConflict     = "conflict"
	OutcomeInvalid      = "invalid"
	OutcomeUnauthorized = "unauthorized"
	OutcomeError        = "error"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, route, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, route, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// AccountOps counts register and login attempts by outcome.
	AccountOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accounts_operations_total",
			Help: "Account operations by type and outcome",
		},
		[]string{"op", "outcome"},
	)
)

var (
	initOnce   sync.Once
	dbStatsMu  sync.Mutex
	dbStatsSet bool
)

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestDuration, RequestTotal, AccountOps)
	})
}

// RegisterDBStats exposes pool statistics (open, in use, wait count and wait
// duration) for db. Only the first call registers; the pool lives for the
// whole process.
func RegisterDBStats(db *sql.DB) {
	dbStatsMu.Lock()
	defer dbStatsMu.Unlock()
	if dbStatsSet {
		return
	}
	prometheus.MustRegister(collectors.NewDBStatsCollector(db, "accounts"))
	dbStatsSet = true
}

// RecordRequest records duration and count for an HTTP request. path should
// be the matched route pattern so static assets do not explode cardinality.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

// RecordAccountOp increments the counter for op ("register", "login") and outcome.
func RecordAccountOp(op, outcome string) {
	AccountOps.WithLabelValues(op, outcome).Inc()
}
