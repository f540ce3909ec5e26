// Package middleware provides HTTP middleware components
// following the Chain of Responsibility pattern
package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/orbitfit/mealplan/internal/infrastructure/config"
	"github.com/orbitfit/mealplan/internal/infrastructure/monitoring"
	"github.com/orbitfit/mealplan/pkg/errors"
)

// HTTPRecorder receives per-request measurements
type HTTPRecorder interface {
	RecordHTTPRequest(method, route string, status int, duration time.Duration)
}

// Middleware provides all middleware functions
type Middleware struct {
	config   *config.Config
	logger   *zap.Logger
	recorder HTTPRecorder
	limiters *clientLimiters
}

// New creates a new middleware instance. recorder may be nil.
func New(cfg *config.Config, logger *zap.Logger, recorder HTTPRecorder) *Middleware {
	return &Middleware{
		config:   cfg,
		logger:   logger.Named("http"),
		recorder: recorder,
		limiters: newClientLimiters(cfg.RateLimit),
	}
}

// Logger provides structured logging for requests
func (m *Middleware) Logger() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			if r.URL.Path == m.config.Monitoring.HealthCheckPath {
				return
			}

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := []zap.Field{
				zap.String("request_id", chimiddleware.GetReqID(r.Context())),
				zap.String("trace_id", monitoring.TraceIDFromContext(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("ip", r.RemoteAddr),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("latency", time.Since(start)),
				zap.String("user_agent", r.UserAgent()),
			}

			switch {
			case status >= 500:
				m.logger.Error("Server error", fields...)
			case status >= 400:
				m.logger.Warn("Client error", fields...)
			default:
				m.logger.Info("Request completed", fields...)
			}
		})
	}
}

// Recovery recovers from panics and returns 500 error
func (m *Middleware) Recovery() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					m.logger.Error("Panic recovered",
						zap.String("request_id", chimiddleware.GetReqID(r.Context())),
						zap.Any("error", rec),
						zap.String("stack", string(debug.Stack())),
					)
					WriteError(w, r, errors.NewInternalError("Internal server error"))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimit limits requests per client IP. Requests to the health check
// path are never limited.
func (m *Middleware) RateLimit() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !m.config.RateLimit.Enable || m.config.RateLimit.RequestsPerMin <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == m.config.Monitoring.HealthCheckPath {
				next.ServeHTTP(w, r)
				return
			}

			ip := clientIP(r)
			if !m.limiters.allow(ip, time.Now()) {
				m.logger.Warn("Rate limit exceeded",
					zap.String("ip", ip),
					zap.String("path", r.URL.Path),
				)
				w.Header().Set("Retry-After", "60")
				WriteError(w, r, errors.NewAppError(errors.CodeTooManyRequests, "Rate limit exceeded", ""))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Metrics records request counts and latencies by route pattern
func (m *Middleware) Metrics() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m.recorder == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			m.recorder.RecordHTTPRequest(r.Method, route, status, time.Since(start))
		})
	}
}

// WriteError writes err in the standard error envelope
func WriteError(w http.ResponseWriter, r *http.Request, err *errors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode())
	_ = json.NewEncoder(w).Encode(errors.ToErrorResponse(err, chimiddleware.GetReqID(r.Context())))
}

// clientLimiters keeps one token bucket per client IP. Idle buckets are
// swept at most once per cleanup interval.
type clientLimiters struct {
	mu          sync.Mutex
	limit       rate.Limit
	burst       int
	idleAfter   time.Duration
	lastCleanup time.Time
	clients     map[string]*visitor
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newClientLimiters(cfg config.RateLimitConfig) *clientLimiters {
	burst := cfg.BurstSize
	if burst <= 0 {
		burst = 1
	}
	idle := cfg.CleanupInterval
	if idle <= 0 {
		idle = 5 * time.Minute
	}
	return &clientLimiters{
		limit:     rate.Limit(float64(cfg.RequestsPerMin) / 60),
		burst:     burst,
		idleAfter: idle,
		clients:   make(map[string]*visitor),
	}
}

func (c *clientLimiters) allow(key string, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if now.Sub(c.lastCleanup) >= c.idleAfter {
		for k, v := range c.clients {
			if now.Sub(v.lastSeen) >= c.idleAfter {
				delete(c.clients, k)
			}
		}
		c.lastCleanup = now
	}

	v, ok := c.clients[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(c.limit, c.burst)}
		c.clients[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
