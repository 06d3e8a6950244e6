// Package obs exposes Prometheus metrics for the auth core.
package obs

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the counters the auth core emits. A single instance is built
// at startup and injected into the services that record events.
type Metrics struct {
	registry *prometheus.Registry

	LoginsTotal        *prometheus.CounterVec
	SessionRotations   prometheus.Counter
	SessionsRevoked    *prometheus.CounterVec
	PasswordRehashes   prometheus.Counter
	BreakGlassMinted   prometheus.Counter
	IdempotencyOutcome *prometheus.CounterVec
	RateLimited        prometheus.Counter
}

// NewMetrics registers the auth counters on a private registry so tests can
// build instances without double-registration panics.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		LoginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_logins_total",
				Help: "Login attempts by outcome.",
			},
			[]string{"outcome"},
		),
		SessionRotations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auth_session_rotations_total",
			Help: "Successful refresh-token rotations.",
		}),
		SessionsRevoked: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_sessions_revoked_total",
				Help: "Sessions revoked by reason.",
			},
			[]string{"reason"},
		),
		PasswordRehashes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auth_password_rehashes_total",
			Help: "Legacy credential hashes upgraded during login.",
		}),
		BreakGlassMinted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "admin_break_glass_minted_total",
			Help: "Break-glass tokens minted.",
		}),
		IdempotencyOutcome: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "idempotency_requests_total",
				Help: "Idempotency ledger outcomes (executed, replayed, conflict).",
			},
			[]string{"outcome"},
		),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auth_rate_limited_total",
			Help: "Requests rejected by the credential-endpoint rate limiter.",
		}),
	}

	m.registry.MustRegister(
		m.LoginsTotal,
		m.SessionRotations,
		m.SessionsRevoked,
		m.PasswordRehashes,
		m.BreakGlassMinted,
		m.IdempotencyOutcome,
		m.RateLimited,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
