// ABOUTME: Prometheus collectors for token issuance, verification, gate decisions and HTTP traffic
// ABOUTME: Metrics implements auth.Observer so the auth layer reports straight into these counters

package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Wox1e/LibraryAPI/internal/auth"
	"github.com/Wox1e/LibraryAPI/internal/token"
)

// Metrics holds all Prometheus metrics for the library API.
type Metrics struct {
	// Token metrics
	TokensIssued       *prometheus.CounterVec
	TokenVerifications *prometheus.CounterVec

	// Gate metrics
	GateDecisions *prometheus.CounterVec
	Refreshes     *prometheus.CounterVec

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

var _ auth.Observer = (*Metrics)(nil)

// NewMetrics creates a Metrics instance with every collector registered on registry.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		TokensIssued: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "library_tokens_issued_total",
				Help: "Total number of tokens minted",
			},
			[]string{"use"},
		),
		TokenVerifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "library_token_verifications_total",
				Help: "Total number of token verifications by result",
			},
			[]string{"use", "result"},
		),
		GateDecisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "library_gate_decisions_total",
				Help: "Total number of authorization gate decisions by outcome",
			},
			[]string{"outcome"},
		),
		Refreshes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "library_refresh_total",
				Help: "Total number of refresh endpoint calls by result",
			},
			[]string{"result"},
		),
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "library_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "code"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "library_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
			},
			[]string{"route"},
		),
	}
}

// NewRegistry creates a fresh registry with the library metrics and the
// standard Go and process collectors.
func NewRegistry() (*prometheus.Registry, *Metrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg, NewMetrics(reg)
}

// HandlerFor returns an HTTP handler exposing reg.
func HandlerFor(reg prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func (m *Metrics) TokenIssued(use token.Use) {
	m.TokensIssued.WithLabelValues(string(use)).Inc()
}

func (m *Metrics) TokenVerified(use token.Use, result string) {
	m.TokenVerifications.WithLabelValues(string(use), result).Inc()
}

func (m *Metrics) GateDecision(outcome auth.Outcome) {
	m.GateDecisions.WithLabelValues(outcome.String()).Inc()
}

func (m *Metrics) RefreshAttempt(result string) {
	m.Refreshes.WithLabelValues(result).Inc()
}

// Instrument wraps h so every request is counted and timed under route.
// Route is the registered pattern, never the raw path, to keep label
// cardinality bounded.
func (m *Metrics) Instrument(route string, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h.ServeHTTP(rec, r)
		m.HTTPRequests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		m.HTTPDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
