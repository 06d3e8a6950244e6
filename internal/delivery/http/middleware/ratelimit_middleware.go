package middleware

import (
	"sync"
	"time"

	"jobdeck/config"
	domainerrors "jobdeck/internal/domain/errors"
	"jobdeck/internal/infra/obs"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// RateLimitMiddleware throttles credential guessing on the login route with a
// per-address token bucket.
type RateLimitMiddleware struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	rps      rate.Limit
	burst    int
	metrics  *obs.Metrics
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimitMiddleware is the constructor for RateLimitMiddleware. It starts
// a janitor goroutine that drops buckets idle for several minutes.
func NewRateLimitMiddleware(cfg *config.Config, metrics *obs.Metrics) *RateLimitMiddleware {
	m := &RateLimitMiddleware{
		limiters: make(map[string]*limiterEntry),
		rps:      rate.Limit(cfg.RateLimit.LoginPerSecond),
		burst:    cfg.RateLimit.LoginBurst,
		metrics:  metrics,
	}

	go m.cleanupLoop(time.Minute, 5*time.Minute)

	return m
}

// Limit rejects requests whose source address has exhausted its bucket.
func (m *RateLimitMiddleware) Limit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !m.allow(c.RealIP()) {
			m.metrics.RateLimited.Inc()

			return domainerrors.ErrRateLimited
		}

		return next(c)
	}
}

func (m *RateLimitMiddleware) allow(ip string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.limiters[ip]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(m.rps, m.burst)}
		m.limiters[ip] = entry
	}
	entry.lastSeen = time.Now()

	return entry.limiter.Allow()
}

func (m *RateLimitMiddleware) cleanupLoop(interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-maxIdle)

		m.mu.Lock()
		for ip, entry := range m.limiters {
			if entry.lastSeen.Before(cutoff) {
				delete(m.limiters, ip)
			}
		}
		m.mu.Unlock()
	}
}
