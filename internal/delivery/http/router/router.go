// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"jobdeck/internal/delivery/http/middleware"
	"jobdeck/internal/delivery/http/router/handler"
	"jobdeck/internal/domain/service"
	"jobdeck/internal/infra/obs"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler  *handler.AuthHandler
	MfaHandler   *handler.MfaHandler
	AdminHandler *handler.AdminHandler
	LeadHandler  *handler.LeadHandler

	AuthMiddleware        *middleware.AuthMiddleware
	AdminMiddleware       *middleware.AdminMiddleware
	IdempotencyMiddleware *middleware.IdempotencyMiddleware
	RateLimitMiddleware   *middleware.RateLimitMiddleware

	Metrics *obs.Metrics
}

// router holds all the handlers that need to be registered.
type router struct {
	params RouterParams
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{params: params}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	p := r.params

	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(p.Metrics.Handler()))

	// Anonymous auth routes. Login carries a per-address limiter against
	// credential guessing.
	authGroup := e.Group("/auth")
	{
		authGroup.POST("/login", p.AuthHandler.Login, p.RateLimitMiddleware.Limit)
		authGroup.POST("/refresh", p.AuthHandler.Refresh)
		authGroup.POST("/logout", p.AuthHandler.Logout)
	}

	// Self-service TOTP enrollment. Disabling another identity's factor goes
	// through the same handler but demands the privileged action.
	mfaGroup := e.Group("/auth/2fa")
	mfaGroup.Use(p.AuthMiddleware.Authenticate)
	{
		mfaGroup.POST("/enroll", p.MfaHandler.Enroll)
		mfaGroup.POST("/verify", p.MfaHandler.Verify)
		mfaGroup.POST("/disable", p.MfaHandler.Disable)
	}

	// The admin surface sits behind the safety gate: authenticated principal,
	// allowlisted source address, and the read-only gate on business writes.
	adminGroup := e.Group("/admin")
	adminGroup.Use(p.AuthMiddleware.Authenticate)
	adminGroup.Use(p.AdminMiddleware.RequireAllowedIP)
	{
		// Operator controls stay reachable while read-only is on, otherwise
		// the flag could never be lifted.
		adminGroup.POST("/break-glass/start", p.AdminHandler.StartBreakGlass,
			p.AuthMiddleware.RequirePermission(service.ActionBreakGlass))
		adminGroup.PUT("/read-only", p.AdminHandler.SetReadOnly,
			p.AuthMiddleware.RequirePermission(service.ActionReadOnlyToggle))
		adminGroup.POST("/sessions/revoke", p.AdminHandler.RevokeSessions,
			p.AuthMiddleware.RequirePermission(service.ActionSessionsRevoke))
		adminGroup.GET("/audit", p.AdminHandler.ListAuditEvents,
			p.AuthMiddleware.RequirePermission(service.ActionAuditRead))

		leadGroup := adminGroup.Group("/leads")
		{
			leadGroup.GET("", p.LeadHandler.List,
				p.AuthMiddleware.RequirePermission(service.ActionLeadsRead))
			leadGroup.GET("/:id", p.LeadHandler.Get,
				p.AuthMiddleware.RequirePermission(service.ActionLeadsRead))
			// BreakGlass runs before the read-only gate so a presented token
			// is validated and audited on every privileged write, including
			// while read-only is off.
			leadGroup.POST("", p.LeadHandler.Create,
				p.AuthMiddleware.RequirePermission(service.ActionLeadsWrite),
				p.AdminMiddleware.BreakGlass,
				p.AdminMiddleware.EnforceReadOnly,
				p.IdempotencyMiddleware.Require)
			leadGroup.POST("/:id/status", p.LeadHandler.UpdateStatus,
				p.AuthMiddleware.RequirePermission(service.ActionLeadsWrite),
				p.AdminMiddleware.BreakGlass,
				p.AdminMiddleware.EnforceReadOnly,
				p.IdempotencyMiddleware.Require)
		}
	}
}
