package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reasoning_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reasoning_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	solveTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reasoning_solve_total",
			Help: "Solve calls on the message path by backend mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	backendConstructions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reasoning_backend_constructions_total",
			Help: "Engine constructions by achieved backend mode",
		},
		[]string{"mode"},
	)

	backendFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reasoning_backend_fallbacks_total",
			Help: "Fallback steps taken while resolving the backend",
		},
		[]string{"reason"},
	)

	batchJobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reasoning_batch_jobs_total",
			Help: "Batch jobs by final status",
		},
		[]string{"status"},
	)

	batchRowsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reasoning_batch_rows_total",
			Help: "Rows written to batch output artifacts",
		},
	)

	activeSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "reasoning_active_sessions",
			Help: "Number of sessions held in memory",
		},
	)

	initOnce sync.Once
)

// InitMetrics registers the collectors with the default registry.
func InitMetrics() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			httpRequestsTotal,
			httpRequestDuration,
			solveTotal,
			backendConstructions,
			backendFallbacks,
			batchJobsTotal,
			batchRowsTotal,
			activeSessions,
		)
	})
}

// Middleware records count and latency per matched route.
func Middleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		start := time.Now()
		err := ctx.Next()

		status := ctx.Response().StatusCode()
		if err != nil {
			if fiberErr, ok := err.(*fiber.Error); ok {
				status = fiberErr.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		route := ctx.Route().Path
		httpRequestsTotal.WithLabelValues(ctx.Method(), route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(ctx.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

func RecordSolve(mode string, success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	solveTotal.WithLabelValues(mode, outcome).Inc()
}

func RecordConstruction(mode string) {
	backendConstructions.WithLabelValues(mode).Inc()
}

func RecordFallback(reason string) {
	backendFallbacks.WithLabelValues(reason).Inc()
}

func RecordBatchJob(status string, producedRows int) {
	batchJobsTotal.WithLabelValues(status).Inc()
	batchRowsTotal.Add(float64(producedRows))
}

func SetActiveSessions(n int) {
	activeSessions.Set(float64(n))
}
