package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ProcessCounters(t *testing.T) {
	m := New()

	m.ObserveProcess(ResultSuccess, 120*time.Millisecond)
	m.ObserveProcess(ResultSuccess, 80*time.Millisecond)
	m.ObserveProcess(ResultFailure, time.Second)
	m.AddItems("inss", 3)
	m.AddItems("inss", 0)
	m.ObserveRecovered(2)
	m.ObserveRecovered(0)

	body := scrape(t, m)
	assert.Contains(t, body, `payroll_process_total{result="success"} 2`)
	assert.Contains(t, body, `payroll_process_total{result="failure"} 1`)
	assert.Contains(t, body, `payroll_process_duration_seconds_count 3`)
	assert.Contains(t, body, `payroll_items_generated_total{item_type="inss"} 3`)
	assert.Contains(t, body, `payroll_stale_runs_recovered_total 2`)
}

func TestMetrics_MiddlewareAndHandler(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/periods/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Handle("/metrics", m.Handler())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/periods/abc", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `http_requests_total{code="404",route="/periods/{id}"} 1`), body)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveProcess(ResultSuccess, time.Second)
	m.AddItems("fgts", 1)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) })
	rec := httptest.NewRecorder()
	m.Middleware(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	rec = httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}
