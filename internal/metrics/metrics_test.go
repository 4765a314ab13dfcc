package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestMetrics(t *testing.T) (*Metrics, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return InitMetrics(reg), reg
}

func TestInitMetrics_Registers(t *testing.T) {
	m, reg := newTestMetrics(t)

	m.RecordHTTPRequest("GET", "/api/catalog", 200, time.Millisecond)
	m.RecordSelection("barrel", OutcomeAccepted)
	m.RecordBuildSaved(true)
	m.RecordSignIn(false)
	m.RegisterGauge("forge_sessions", "Live forge sessions.", func() float64 { return 3 })

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}

	for _, want := range []string{
		"loadoutlab_http_requests_total",
		"loadoutlab_http_request_duration_seconds",
		"loadoutlab_forge_selections_total",
		"loadoutlab_builds_saved_total",
		"loadoutlab_sign_ins_total",
		"loadoutlab_forge_sessions",
	} {
		if !names[want] {
			t.Errorf("metric %s not registered", want)
		}
	}
}

func TestRecorders(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.RecordSelection("barrel", OutcomeIncompatible)
	m.RecordSelection("barrel", OutcomeIncompatible)
	m.RecordBuildSaved(false)
	m.RecordSignIn(true)

	if got := testutil.ToFloat64(m.ForgeSelectionsTotal.WithLabelValues("barrel", OutcomeIncompatible)); got != 2 {
		t.Errorf("expected 2 incompatible selections, got %v", got)
	}
	if got := testutil.ToFloat64(m.BuildsSavedTotal.WithLabelValues("private")); got != 1 {
		t.Errorf("expected 1 private build, got %v", got)
	}
	if got := testutil.ToFloat64(m.SignInsTotal.WithLabelValues("success")); got != 1 {
		t.Errorf("expected 1 successful sign-in, got %v", got)
	}
}

func TestNilMetrics_NoOp(t *testing.T) {
	var m *Metrics
	m.RecordHTTPRequest("GET", "/", 200, time.Second)
	m.RecordSelection("optic", OutcomeAccepted)
	m.RecordBuildSaved(true)
	m.RecordSignIn(true)
	m.RegisterGauge("x", "x", func() float64 { return 0 })

	called := false
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !called {
		t.Error("nil middleware should pass through")
	}
}

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	m, reg := newTestMetrics(t)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/builds/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b", "c"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/builds/"+id, nil))
	}

	got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/builds/{id}", "404"))
	if got != 3 {
		t.Errorf("expected 3 requests under one pattern, got %v", got)
	}

	rr := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rr.Body.String(), `path_pattern="/api/builds/{id}"`) {
		t.Error("exposition missing route pattern label")
	}
}
