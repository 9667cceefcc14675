package observability

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	StageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "globalstay", Name: "stage_duration_seconds",
			Help:    "Wall-clock duration of a pipeline stage.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage", "status"}, // status: ok|error
	)
	TablesProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "globalstay", Name: "tables_processed_total", Help: "Tables handled per stage."},
		[]string{"stage", "table", "status"},
	)
	TableRows = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "globalstay", Name: "table_rows_total", Help: "Rows moved per stage and table."},
		[]string{"stage", "table", "direction"}, // direction: read|written
	)
	KPIRows = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "globalstay", Name: "kpi_rows_total", Help: "Rows emitted per KPI table."},
		[]string{"kpi"},
	)
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "globalstay", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "globalstay", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
)

// Serve starts a standalone /metrics listener when METRICS_ADDR is set.
// The batch runner uses this; the API server mounts the handler on its own
// router instead.
func Serve() {
	addr := os.Getenv("METRICS_ADDR")
	if addr == "" {
		return // disabled
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(StageDuration, TablesProcessed, TableRows, KPIRows, HTTPRequests, HTTPLatency)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveStage(stage string, err error, dur time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	StageDuration.WithLabelValues(stage, status).Observe(dur.Seconds())
}

func ObserveTable(stage, table string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	TablesProcessed.WithLabelValues(stage, table, status).Inc()
}

func AddTableRows(stage, table, direction string, n int) {
	TableRows.WithLabelValues(stage, table, direction).Add(float64(n))
}

func AddKPIRows(kpi string, n int) {
	KPIRows.WithLabelValues(kpi).Add(float64(n))
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}
