package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/carehome/medplan/internal/platform/planvalidation"
)

func TestValidationMetrics_ObserveValidation(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewValidationMetrics(reg)
	m.ObserveValidation("validate", []planvalidation.Diagnostic{
		{Severity: planvalidation.SeverityError, Code: planvalidation.CodeTypeRequired},
		{Severity: planvalidation.SeverityError, Code: planvalidation.CodeTypeRequired},
		{Severity: planvalidation.SeverityInfo, Code: planvalidation.CodeServiceInfo},
	})

	if got := testutil.ToFloat64(m.runsTotal.WithLabelValues("validate")); got != 1 {
		t.Errorf("runs_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.diagnosticsTotal.WithLabelValues("error", planvalidation.CodeTypeRequired)); got != 2 {
		t.Errorf("error diagnostics = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.diagnosticsTotal.WithLabelValues("info", planvalidation.CodeServiceInfo)); got != 1 {
		t.Errorf("info diagnostics = %v, want 1", got)
	}
}

func TestValidationMetrics_Submissions(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewValidationMetrics(reg)
	m.ObserveSubmission("accepted")
	m.ObserveSubmission("rejected")
	m.ObserveSubmission("rejected")
	if got := testutil.ToFloat64(m.submissionsTotal.WithLabelValues("rejected")); got != 2 {
		t.Errorf("rejected = %v, want 2", got)
	}
	m.ObserveQuality(92, "excellent")
	if n := testutil.CollectAndCount(m.qualityScore); n != 1 {
		t.Errorf("expected one quality series, got %d", n)
	}
}

func TestValidationMetrics_NilSafe(t *testing.T) {
	var m *ValidationMetrics
	m.ObserveValidation("validate", nil)
	m.ObserveQuality(10, "poor")
	m.ObserveSubmission("accepted")

	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if err := m.Middleware()(func(c echo.Context) error { return nil })(c); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestMiddlewareAndHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewValidationMetrics(reg)

	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/ok", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/fail", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, errors.New("missing").Error())
	})
	e.GET("/metrics", Handler(reg))

	for _, path := range []string{"/ok", "/fail"} {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `medplan_http_request_duration_seconds_count{method="GET",route="/ok",status="200"} 1`) {
		t.Errorf("missing /ok series in:\n%s", body)
	}
	if !strings.Contains(body, `route="/fail",status="404"`) {
		t.Errorf("missing /fail series in:\n%s", body)
	}
}
