package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the injected observability port. Components record through its
// methods instead of incrementing ambient package-level counters.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errorsTotal     *prometheus.CounterVec
	existenceTotal  *prometheus.CounterVec
}

// NewMetrics initialises the registry and base metrics for one service.
// The service label keeps the four deployments distinguishable on a shared
// scrape target list.
func NewMetrics(service string) *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "opsdesk_http_requests_total",
		Help:        "HTTP requests by route and status code.",
		ConstLabels: prometheus.Labels{"service": service},
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "opsdesk_http_request_duration_seconds",
		Help:        "HTTP request duration per route.",
		Buckets:     prometheus.DefBuckets,
		ConstLabels: prometheus.Labels{"service": service},
	}, []string{"route"})
	errs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "opsdesk_errors_total",
		Help:        "Errors by component.",
		ConstLabels: prometheus.Labels{"service": service},
	}, []string{"component"})
	existence := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "opsdesk_existence_checks_total",
		Help:        "Cross-service existence checks by outcome.",
		ConstLabels: prometheus.Labels{"service": service},
	}, []string{"kind", "outcome"})
	registry.MustRegister(requests, duration, errs, existence)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		errorsTotal:     errs,
		existenceTotal:  existence,
	}
}

// RecordRequest counts one finished HTTP request.
func (m *Metrics) RecordRequest(route string, code int) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// RecordDuration observes one request duration.
func (m *Metrics) RecordDuration(route string, d time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// RecordError counts one component error.
func (m *Metrics) RecordError(component string) {
	if m == nil {
		return
	}
	m.errorsTotal.WithLabelValues(component).Inc()
}

// RecordExistenceCheck counts one existence-check outcome.
func (m *Metrics) RecordExistenceCheck(kind, outcome string) {
	if m == nil {
		return
	}
	m.existenceTotal.WithLabelValues(kind, outcome).Inc()
}

// Handler returns the http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records request count and duration for every HTTP request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.RecordRequest(route, recorder.status)
		m.RecordDuration(route, time.Since(start))
	})
}

// Registerer exposes the registry for custom metric registration.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
