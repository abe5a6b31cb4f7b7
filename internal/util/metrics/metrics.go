package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "timebridge_http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timebridge_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "timebridge_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	StatusTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timebridge_status_transitions_total",
			Help: "Approval workflow transitions by entity, target status and outcome.",
		},
		[]string{"entity", "to", "outcome"},
	)

	SyncRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timebridge_sync_runs_total",
			Help: "HR sync runs by result.",
		},
		[]string{"result"},
	)

	SyncRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timebridge_sync_records_total",
			Help: "Records processed by the HR sync per phase and outcome.",
		},
		[]string{"phase", "outcome"},
	)
)

var registerOnce sync.Once

func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpInFlight,
			httpRequestsTotal,
			httpRequestDuration,
			StatusTransitions,
			SyncRuns,
			SyncRecords,
		)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request count and latency labelled by the route
// template, so path parameters do not explode label cardinality.
func Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		httpInFlight.Inc()
		start := time.Now()

		ctx.Next()

		path := ctx.FullPath()
		if path == "" {
			path = "unmatched"
		}

		status := strconv.Itoa(ctx.Writer.Status())
		method := ctx.Request.Method

		httpRequestDuration.WithLabelValues(method, path, status).Observe(time.Since(start).Seconds())
		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpInFlight.Dec()
	}
}
