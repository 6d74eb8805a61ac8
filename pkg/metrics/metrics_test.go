package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/goliatone/go-intakeqc/pkg/metrics"
)

func TestCollectorCounts(t *testing.T) {
	c := metrics.New(metrics.DefaultConfig())

	c.ObserveFetch("CompQC", metrics.OutcomeOK, 20*time.Millisecond)
	c.ObserveFetch("CompQC", metrics.OutcomeOK, 10*time.Millisecond)
	c.ObserveSubmit("CompQC", metrics.OutcomeError, time.Second)
	c.ObserveHTTP("/compqc", http.MethodGet, http.StatusOK, time.Millisecond)

	if got := testutil.ToFloat64(c.Fetches.WithLabelValues("CompQC", metrics.OutcomeOK)); got != 2 {
		t.Fatalf("fetches: want 2, got %v", got)
	}
	if got := testutil.ToFloat64(c.Submissions.WithLabelValues("CompQC", metrics.OutcomeError)); got != 1 {
		t.Fatalf("submissions: want 1, got %v", got)
	}

	c.SubmitStarted()
	if got := testutil.ToFloat64(c.InFlightSubmits); got != 1 {
		t.Fatalf("in flight: want 1, got %v", got)
	}
	c.SubmitFinished()
	if got := testutil.ToFloat64(c.InFlightSubmits); got != 0 {
		t.Fatalf("in flight: want 0, got %v", got)
	}
}

func TestCollectorHandler(t *testing.T) {
	c := metrics.New(metrics.Config{})
	c.ObserveFetch("LOCSET", metrics.OutcomeError, time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body, _ := io.ReadAll(rec.Result().Body)
	if !strings.Contains(string(body), `intakeqc_fetches_total{outcome="error",resource="LOCSET"} 1`) {
		t.Fatalf("expected fetch counter in exposition, got:\n%s", body)
	}
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *metrics.Collector
	c.ObserveFetch("x", metrics.OutcomeOK, 0)
	c.ObserveSubmit("x", metrics.OutcomeOK, 0)
	c.SubmitStarted()
	c.SubmitFinished()
	c.ObserveHTTP("/", http.MethodGet, 200, 0)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 from nil collector, got %d", rec.Code)
	}
}
