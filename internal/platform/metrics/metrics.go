// Package metrics holds the prometheus collectors for the api and indexer
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels
const (
	OutcomeOK      = "ok"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

// Metrics holds every collector we export
// a nil *Metrics is valid and records nothing
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	ReportRunsTotal *prometheus.CounterVec
	ReportDuration  *prometheus.HistogramVec
	ReportRows      *prometheus.HistogramVec

	SearchOpsTotal *prometheus.CounterVec
	SearchDocs     *prometheus.CounterVec

	DBQueryDuration *prometheus.HistogramVec
}

// New creates and registers all collectors on registry
// a nil registry gets a fresh one
func New(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	m := &Metrics{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pubreg_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pubreg_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		ReportRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pubreg_report_runs_total",
				Help: "Report runs by format, grouping and outcome",
			},
			[]string{"format", "grouped", "outcome"},
		),
		ReportDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pubreg_report_duration_seconds",
				Help:    "Report build duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format"},
		),
		ReportRows: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pubreg_report_rows",
				Help:    "Rows returned per report",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
			[]string{"grouped"},
		),
		SearchOpsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pubreg_search_ops_total",
				Help: "Search index operations by op and outcome",
			},
			[]string{"op", "outcome"},
		),
		SearchDocs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pubreg_search_documents_total",
				Help: "Documents touched by search index operations",
			},
			[]string{"op"},
		),
		DBQueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pubreg_db_query_duration_seconds",
				Help:    "Postgres statement duration in seconds",
				Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"outcome", "slow"},
		),
	}
	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ReportRunsTotal,
		m.ReportDuration,
		m.ReportRows,
		m.SearchOpsTotal,
		m.SearchDocs,
		m.DBQueryDuration,
	)
	return m
}

// Registry returns the registry the collectors live on
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveReport records one report run
func (m *Metrics) ObserveReport(format string, grouped bool, outcome string, rows int, d time.Duration) {
	if m == nil {
		return
	}
	g := strconv.FormatBool(grouped)
	m.ReportRunsTotal.WithLabelValues(format, g, outcome).Inc()
	m.ReportDuration.WithLabelValues(format).Observe(d.Seconds())
	if outcome == OutcomeOK {
		m.ReportRows.WithLabelValues(g).Observe(float64(rows))
	}
}

// SearchOp records one search index operation over n documents
func (m *Metrics) SearchOp(op, outcome string, n int) {
	if m == nil {
		return
	}
	m.SearchOpsTotal.WithLabelValues(op, outcome).Inc()
	if n > 0 && outcome == OutcomeOK {
		m.SearchDocs.WithLabelValues(op).Add(float64(n))
	}
}

// Middleware counts requests by chi route pattern to keep label cardinality bounded
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// ObserveQuery records one postgres statement
func (m *Metrics) ObserveQuery(err error, slow bool, d time.Duration) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	m.DBQueryDuration.WithLabelValues(outcome, strconv.FormatBool(slow)).Observe(d.Seconds())
}
