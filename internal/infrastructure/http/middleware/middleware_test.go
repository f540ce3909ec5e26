package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/orbitfit/mealplan/internal/infrastructure/config"
	"github.com/orbitfit/mealplan/pkg/errors"
)

type recordedRequest struct {
	method string
	route  string
	status int
}

type fakeRecorder struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (f *fakeRecorder) RecordHTTPRequest(method, route string, status int, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, recordedRequest{method, route, status})
}

func testConfig() *config.Config {
	return &config.Config{
		Monitoring: config.MonitoringConfig{HealthCheckPath: "/health"},
		RateLimit: config.RateLimitConfig{
			Enable:          true,
			RequestsPerMin:  60,
			BurstSize:       2,
			CleanupInterval: time.Minute,
		},
	}
}

func TestRateLimit_PerClientIP(t *testing.T) {
	m := New(testConfig(), zap.NewNop(), nil)
	h := m.RateLimit()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	call := func(addr, path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusNoContent, call("10.0.0.1:1000", "/api/v1/plans").Code)
	assert.Equal(t, http.StatusNoContent, call("10.0.0.1:1001", "/api/v1/plans").Code)

	limited := call("10.0.0.1:1002", "/api/v1/plans")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "60", limited.Header().Get("Retry-After"))

	var body errors.ErrorResponse
	require.NoError(t, json.Unmarshal(limited.Body.Bytes(), &body))
	assert.Equal(t, errors.CodeTooManyRequests, body.Error.Code)

	// other clients and health checks are unaffected
	assert.Equal(t, http.StatusNoContent, call("10.0.0.2:1000", "/api/v1/plans").Code)
	assert.Equal(t, http.StatusNoContent, call("10.0.0.1:1003", "/health").Code)
}

func TestRateLimit_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.Enable = false
	m := New(cfg, zap.NewNop(), nil)
	h := m.RateLimit()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 10; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/plans", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestClientLimiters_SweepsIdleClients(t *testing.T) {
	l := newClientLimiters(config.RateLimitConfig{RequestsPerMin: 60, BurstSize: 1, CleanupInterval: time.Minute})
	now := time.Now()

	assert.True(t, l.allow("a", now))
	assert.True(t, l.allow("b", now))
	assert.Len(t, l.clients, 2)

	assert.True(t, l.allow("b", now.Add(2*time.Minute)))
	assert.Len(t, l.clients, 1)
	assert.Contains(t, l.clients, "b")
}

func TestRecovery_WritesInternalError(t *testing.T) {
	m := New(testConfig(), zap.NewNop(), nil)
	h := m.Recovery()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body errors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, errors.CodeInternal, body.Error.Code)
}

func TestMetrics_RecordsRoutePattern(t *testing.T) {
	recorder := &fakeRecorder{}
	m := New(testConfig(), zap.NewNop(), recorder)

	r := chi.NewRouter()
	r.Use(m.Metrics())
	r.Get("/api/v1/clients/{clientID}/plan", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/clients/abc/plan", nil))

	require.Len(t, recorder.requests, 1)
	assert.Equal(t, recordedRequest{
		method: http.MethodGet,
		route:  "/api/v1/clients/{clientID}/plan",
		status: http.StatusNotFound,
	}, recorder.requests[0])
}
