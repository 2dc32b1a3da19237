package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewIsolatedRegistries(t *testing.T) {
	a := New()
	b := New()
	a.ForumRepliesTotal.Inc()

	if got := testutil.ToFloat64(a.ForumRepliesTotal); got != 1 {
		t.Fatalf("a replies = %v, want 1", got)
	}
	if got := testutil.ToFloat64(b.ForumRepliesTotal); got != 0 {
		t.Fatalf("b replies = %v, want 0", got)
	}
}

func TestRecordGenerationAndHandler(t *testing.T) {
	m := New()
	m.RecordGeneration("mock", "success", 20*time.Millisecond)
	m.RecordGeneration("mock", "error", time.Second)
	m.RecordRequest("POST", "/api/generate", 200, 10*time.Millisecond)

	if got := testutil.ToFloat64(m.GenerationsTotal.WithLabelValues("mock", "success")); got != 1 {
		t.Errorf("success generations = %v, want 1", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		"turizm_itinerary_generations_total",
		"turizm_http_requests_total",
		"turizm_server_uptime_seconds",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %s", want)
		}
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("GET", "/", 200, time.Millisecond)
	m.RecordGeneration("mock", "success", time.Millisecond)
}
