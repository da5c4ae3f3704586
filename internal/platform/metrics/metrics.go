// Package metrics exposes Prometheus HTTP request metrics on a private registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	defaultNamespace = "grapple"

	// unmatchedRoute labels requests no route matched, keeping label cardinality bounded.
	unmatchedRoute = "unmatched"
)

// Registry holds the service collectors.
type Registry struct {
	namespace string
	buckets   []float64
	withGo    bool
	reg       *prometheus.Registry

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight prometheus.Gauge
}

// Option configures a Registry.
type Option func(*Registry)

// WithNamespace overrides the metric namespace.
func WithNamespace(ns string) Option {
	return func(r *Registry) {
		if ns != "" {
			r.namespace = ns
		}
	}
}

// WithBuckets overrides the request duration histogram buckets (seconds).
func WithBuckets(b []float64) Option {
	return func(r *Registry) {
		if len(b) > 0 {
			r.buckets = b
		}
	}
}

// WithRuntimeCollectors also registers Go runtime and process collectors.
func WithRuntimeCollectors() Option {
	return func(r *Registry) { r.withGo = true }
}

// New builds a Registry with its collectors registered.
func New(opts ...Option) *Registry {
	r := &Registry{
		namespace: defaultNamespace,
		buckets:   prometheus.DefBuckets,
		reg:       prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(r)
	}

	auto := promauto.With(r.reg)
	r.requests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by route pattern, method and status code.",
	}, []string{"route", "method", "status"})
	r.duration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: r.namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route pattern and method.",
		Buckets:   r.buckets,
	}, []string{"route", "method"})
	r.inFlight = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: r.namespace,
		Name:      "http_requests_in_flight",
		Help:      "HTTP requests currently being served.",
	})

	if r.withGo {
		r.reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return r
}

// Gatherer returns the underlying registry for scraping or tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// Middleware records request count, latency and in-flight gauge. The route
// label is chi's matched pattern, read after the handler ran.
func (r *Registry) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			start := time.Now()
			r.inFlight.Inc()
			defer r.inFlight.Dec()

			ww := chimiddleware.NewWrapResponseWriter(w, req.ProtoMajor)
			next.ServeHTTP(ww, req)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := routePattern(req)
			r.requests.WithLabelValues(route, req.Method, strconv.Itoa(status)).Inc()
			r.duration.WithLabelValues(route, req.Method).Observe(time.Since(start).Seconds())
		})
	}
}

func routePattern(req *http.Request) string {
	rctx := chi.RouteContext(req.Context())
	if rctx == nil {
		return unmatchedRoute
	}
	if p := rctx.RoutePattern(); p != "" {
		return p
	}
	return unmatchedRoute
}
