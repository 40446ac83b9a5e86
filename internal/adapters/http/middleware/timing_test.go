package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"bookclub/internal/adapters/http/metrics"
)

const requestMetric = "bookclub_http_request_duration_seconds"

func countRequests(t *testing.T, m *metrics.Metrics) int {
	t.Helper()
	n, err := testutil.GatherAndCount(m.Registry(), requestMetric)
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	return n
}

// TestTimingMiddleware_RecordsRoutePattern verifies the chi pattern, not the raw path, is the label.
func TestTimingMiddleware_RecordsRoutePattern(t *testing.T) {
	m := metrics.New()
	core, logs := observer.New(zap.DebugLevel)

	r := chi.NewRouter()
	r.Use(Timing(m, zap.New(core), time.Hour))
	r.Get("/api/meetups/{id}/calendar", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, id := range []string{"a", "b", "c"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/meetups/"+id+"/calendar", nil))
	}

	if got := countRequests(t, m); got != 1 {
		t.Errorf("series = %d, want 1 (one route pattern)", got)
	}
	entries := logs.FilterMessage("request").All()
	if len(entries) != 3 {
		t.Fatalf("request logs = %d, want 3", len(entries))
	}
	if route := entries[0].ContextMap()["route"]; route != "/api/meetups/{id}/calendar" {
		t.Errorf("route = %v, want pattern", route)
	}
}

// TestTimingMiddleware_SkipsStatic verifies static assets are excluded from timing.
func TestTimingMiddleware_SkipsStatic(t *testing.T) {
	m := metrics.New()
	handler := Timing(m, nil, 0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/static/style.css", nil))

	if got := countRequests(t, m); got != 0 {
		t.Errorf("series = %d, want 0 (static excluded)", got)
	}
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
}

// TestTimingMiddleware_SlowRequestWarns verifies requests at or above the threshold log at WARN.
func TestTimingMiddleware_SlowRequestWarns(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	handler := Timing(nil, zap.New(core), time.Nanosecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Millisecond)
		w.WriteHeader(http.StatusNotFound)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/missing", nil))

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
	entries := logs.FilterMessage("slow_request").All()
	if len(entries) != 1 {
		t.Fatalf("slow_request logs = %d, want 1", len(entries))
	}
	if status := entries[0].ContextMap()["status"]; status != int64(http.StatusNotFound) {
		t.Errorf("logged status = %v, want 404", status)
	}
	if route := entries[0].ContextMap()["route"]; route != unmatchedRoute {
		t.Errorf("route = %v, want %q outside a router", route, unmatchedRoute)
	}
}

// TestTimingMiddleware_NilMetrics verifies middleware works without metrics or a logger.
func TestTimingMiddleware_NilMetrics(t *testing.T) {
	handler := Timing(nil, nil, 0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/api/test", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
}

// --- Resilience: Handler Panic ---

// TestTimingMiddleware_HandlerPanic verifies that a panicking handler does not
// prevent the deferred timing logic from running. Recovery is Recover's job.
func TestTimingMiddleware_HandlerPanic(t *testing.T) {
	m := metrics.New()
	handler := Timing(m, nil, 0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic to propagate, got nil")
		}
		if got := countRequests(t, m); got != 1 {
			t.Errorf("series = %d, want 1 (defer must run even on panic)", got)
		}
	}()

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/panic", nil))
}

// --- Correctness: Default Status ---

// TestTimingMiddleware_DefaultStatusWhenNotSet verifies status defaults to 200
// when the handler writes a body without calling WriteHeader explicitly.
func TestTimingMiddleware_DefaultStatusWhenNotSet(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	handler := Timing(nil, zap.New(core), time.Hour)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/implicit", nil))

	entries := logs.FilterMessage("request").All()
	if len(entries) != 1 {
		t.Fatalf("request logs = %d, want 1", len(entries))
	}
	if status := entries[0].ContextMap()["status"]; status != int64(http.StatusOK) {
		t.Errorf("logged status = %v, want 200", status)
	}
}
