package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var httpDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

// Selection outcomes
const (
	OutcomeAccepted     = "accepted"
	OutcomeCleared      = "cleared"
	OutcomeIncompatible = "incompatible"
	OutcomeLocked       = "locked"
	OutcomeRejected     = "rejected"
)

// Metrics holds the Prometheus instruments for the server.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	ForgeSelectionsTotal *prometheus.CounterVec
	BuildsSavedTotal     *prometheus.CounterVec
	SignInsTotal         *prometheus.CounterVec

	reg prometheus.Registerer
}

// InitMetrics creates and registers all instruments with reg
func InitMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "loadoutlab_http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path_pattern", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "loadoutlab_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: httpDurationBuckets,
		}, []string{"method", "path_pattern"}),
		ForgeSelectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "loadoutlab_forge_selections_total",
			Help: "Part selection attempts by category and outcome.",
		}, []string{"category", "outcome"}),
		BuildsSavedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "loadoutlab_builds_saved_total",
			Help: "Builds saved, split by visibility.",
		}, []string{"visibility"}),
		SignInsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "loadoutlab_sign_ins_total",
			Help: "Sign-in attempts by outcome.",
		}, []string{"outcome"}),
		reg: reg,
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ForgeSelectionsTotal,
		m.BuildsSavedTotal,
		m.SignInsTotal,
	)
	return m
}

// RegisterGauge exposes a value sampled at scrape time, such as the number of live forge sessions
func (m *Metrics) RegisterGauge(name, help string, fn func() float64) {
	if m == nil {
		return
	}
	m.reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "loadoutlab_" + name,
		Help: help,
	}, fn))
}

// RecordHTTPRequest records one served request
func (m *Metrics) RecordHTTPRequest(method, pathPattern string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, pathPattern, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, pathPattern).Observe(duration.Seconds())
}

// RecordSelection records a part selection attempt
func (m *Metrics) RecordSelection(category, outcome string) {
	if m == nil {
		return
	}
	m.ForgeSelectionsTotal.WithLabelValues(category, outcome).Inc()
}

// RecordBuildSaved records a newly saved build
func (m *Metrics) RecordBuildSaved(public bool) {
	if m == nil {
		return
	}
	visibility := "private"
	if public {
		visibility = "public"
	}
	m.BuildsSavedTotal.WithLabelValues(visibility).Inc()
}

// RecordSignIn records a sign-in attempt
func (m *Metrics) RecordSignIn(success bool) {
	if m == nil {
		return
	}
	outcome := "failure"
	if success {
		outcome = "success"
	}
	m.SignInsTotal.WithLabelValues(outcome).Inc()
}

// Middleware records request metrics labelled with chi's route pattern
// rather than the raw path, so IDs in URLs don't create new series.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		m.RecordHTTPRequest(r.Method, routePattern(r), sw.status, time.Since(start))
	})
}

// Handler returns the exposition handler for a registry
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return "unmatched"
	}
	pattern := strings.TrimSuffix(strings.Join(rctx.RoutePatterns, ""), "/*")
	if pattern == "" {
		return "unmatched"
	}
	return pattern
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

// Hijack lets the websocket upgrade pass through the wrapper
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return h.Hijack()
}
