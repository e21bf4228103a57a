package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveFetch(OutcomeOK, time.Second)
	m.ObserveAggregation(nil, 1, 1, time.Second)
	m.AddRowAnomalies(3)
	m.ObserveAnnotationCache(true)
	m.IncAnnotationErrors()
	m.ObserveHTTP("/", 200)
	if m.Registry() != nil {
		t.Error("Expected nil registry for nil metrics")
	}
}

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.ObserveFetch(OutcomeOK, 100*time.Millisecond)
	m.ObserveFetch(OutcomeTimeout, 15*time.Second)
	m.ObserveFetch(OutcomeTimeout, 15*time.Second)

	if got := testutil.ToFloat64(m.portalFetches.WithLabelValues(OutcomeTimeout)); got != 2 {
		t.Errorf("Expected 2 timeouts, got %v", got)
	}

	m.ObserveAggregation(nil, 3, 42, time.Second)
	m.ObserveAggregation(errors.New("boom"), 0, 0, time.Second)

	if got := testutil.ToFloat64(m.matters); got != 42 {
		t.Errorf("Expected matters gauge 42, got %v", got)
	}
	if got := testutil.ToFloat64(m.aggregations.WithLabelValues("failure")); got != 1 {
		t.Errorf("Expected 1 failed aggregation, got %v", got)
	}

	m.AddRowAnomalies(0)
	m.AddRowAnomalies(2)
	if got := testutil.ToFloat64(m.rowAnomalies); got != 2 {
		t.Errorf("Expected 2 anomalies, got %v", got)
	}
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveHTTP("/api/indications", 200)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `indicacoes_http_requests_total{code="200",path="/api/indications"} 1`) {
		t.Errorf("Expected request counter in exposition, got:\n%s", rec.Body.String())
	}
}
