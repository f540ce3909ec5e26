package monitoring

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Metrics owns a private Prometheus registry and the service's collectors
type Metrics struct {
	logger   *zap.Logger
	registry *prometheus.Registry

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Planning metrics
	planOperationsTotal  *prometheus.CounterVec
	domainEventsTotal    *prometheus.CounterVec
	violationsTotal      *prometheus.CounterVec
	planViewItemsHandled prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with a new registry
func NewMetrics(logger *zap.Logger) *Metrics {
	m := &Metrics{
		logger:   logger.Named("metrics"),
		registry: prometheus.NewRegistry(),

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status_code"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		planOperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mealplan_operations_total",
				Help: "Plan operations by name and outcome",
			},
			[]string{"operation", "outcome"},
		),
		domainEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mealplan_domain_events_total",
				Help: "Domain events published",
			},
			[]string{"event"},
		),
		violationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mealplan_compliance_violations_total",
				Help: "Compliance violations flagged while rendering plans",
			},
			[]string{"kind"},
		),
		planViewItemsHandled: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "mealplan_view_items",
				Help:    "Number of items in each rendered plan",
				Buckets: prometheus.LinearBuckets(0, 10, 10),
			},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.planOperationsTotal,
		m.domainEventsTotal,
		m.violationsTotal,
		m.planViewItemsHandled,
	)

	return m
}

// RegisterDB exports connection pool statistics for db
func (m *Metrics) RegisterDB(db *sql.DB, name string) {
	if err := m.registry.Register(collectors.NewDBStatsCollector(db, name)); err != nil {
		m.logger.Warn("Failed to register database collector", zap.String("db", name), zap.Error(err))
	}
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordHTTPRequest records HTTP request metrics
func (m *Metrics) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordOperation counts one plan operation
func (m *Metrics) RecordOperation(operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.planOperationsTotal.WithLabelValues(operation, outcome).Inc()
}

// RecordEvent counts one published domain event
func (m *Metrics) RecordEvent(name string) {
	m.domainEventsTotal.WithLabelValues(name).Inc()
}

// RecordViolation counts one flagged item
func (m *Metrics) RecordViolation(kind string) {
	m.violationsTotal.WithLabelValues(kind).Inc()
}

// RecordPlanView observes the size of a rendered plan
func (m *Metrics) RecordPlanView(items int) {
	m.planViewItemsHandled.Observe(float64(items))
}
