// Package metrics exposes Prometheus collectors for plan validation.
package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/carehome/medplan/internal/platform/planvalidation"
)

// ValidationMetrics counts validation runs, diagnostics, quality scores and
// plan submissions. All methods are nil-safe.
type ValidationMetrics struct {
	runsTotal        *prometheus.CounterVec
	diagnosticsTotal *prometheus.CounterVec
	qualityScore     *prometheus.HistogramVec
	submissionsTotal *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
}

func NewValidationMetrics(reg prometheus.Registerer) *ValidationMetrics {
	m := &ValidationMetrics{
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medplan",
			Subsystem: "validation",
			Name:      "runs_total",
			Help:      "Validation runs by operation",
		}, []string{"operation"}),
		diagnosticsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medplan",
			Subsystem: "validation",
			Name:      "diagnostics_total",
			Help:      "Diagnostics emitted by severity and rule code",
		}, []string{"severity", "code"}),
		qualityScore: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "medplan",
			Subsystem: "plan",
			Name:      "quality_score",
			Help:      "Distribution of plan quality scores",
			Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 85, 100},
		}, []string{"level"}),
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medplan",
			Subsystem: "plan",
			Name:      "submissions_total",
			Help:      "Plan submissions by outcome",
		}, []string{"outcome"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "medplan",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.runsTotal, m.diagnosticsTotal, m.qualityScore, m.submissionsTotal, m.requestDuration)
	return m
}

func (m *ValidationMetrics) ObserveValidation(operation string, diags []planvalidation.Diagnostic) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(operation).Inc()
	for _, d := range diags {
		m.diagnosticsTotal.WithLabelValues(string(d.Severity), d.Code).Inc()
	}
}

func (m *ValidationMetrics) ObserveQuality(score int, level string) {
	if m == nil {
		return
	}
	m.qualityScore.WithLabelValues(level).Observe(float64(score))
}

// ObserveSubmission records a plan write; outcome is "accepted" or "rejected".
func (m *ValidationMetrics) ObserveSubmission(outcome string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(outcome).Inc()
}

// Middleware records request latency per route.
func (m *ValidationMetrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if m == nil {
				return next(c)
			}
			start := time.Now()
			err := next(c)
			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			m.requestDuration.
				WithLabelValues(c.Request().Method, c.Path(), strconv.Itoa(status)).
				Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// Handler serves the Prometheus exposition for g.
func Handler(g prometheus.Gatherer) echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
}
