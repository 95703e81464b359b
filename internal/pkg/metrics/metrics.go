package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Process results recorded by ObserveProcess.
const (
	ResultSuccess  = "success"
	ResultFailure  = "failure"
	ResultRejected = "rejected"
)

// Metrics holds the application registry. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	processTotal    *prometheus.CounterVec
	processDuration prometheus.Histogram
	itemsGenerated  *prometheus.CounterVec
	staleRecovered  prometheus.Counter
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	processTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payroll_process_total",
		Help: "Payroll period process runs by result.",
	}, []string{"result"})
	processDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "payroll_process_duration_seconds",
		Help:    "Duration of payroll period processing.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	})
	items := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payroll_items_generated_total",
		Help: "Payroll items generated by item type.",
	}, []string{"item_type"})
	recovered := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "payroll_stale_runs_recovered_total",
		Help: "Payroll periods returned to draft after an abandoned processing run.",
	})
	registry.MustRegister(requests, duration, processTotal, processDuration, items, recovered)

	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		processTotal:    processTotal,
		processDuration: processDuration,
		itemsGenerated:  items,
		staleRecovered:  recovered,
	}
}

// Handler serves the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records count and latency for every HTTP request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// ObserveProcess records one payroll process run.
func (m *Metrics) ObserveProcess(result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.processTotal.WithLabelValues(result).Inc()
	m.processDuration.Observe(elapsed.Seconds())
}

// AddItems counts generated payroll items of one type.
func (m *Metrics) AddItems(itemType string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.itemsGenerated.WithLabelValues(itemType).Add(float64(n))
}

// ObserveRecovered counts periods reset by the stale run recovery job.
func (m *Metrics) ObserveRecovered(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.staleRecovered.Add(float64(n))
}

// Registerer exposes the registry for additional collectors.
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
