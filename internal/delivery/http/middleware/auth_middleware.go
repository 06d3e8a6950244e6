package middleware

import (
	"strings"

	deliverycontext "jobdeck/internal/delivery/context"
	domainerrors "jobdeck/internal/domain/errors"
	"jobdeck/internal/domain/repository"
	"jobdeck/internal/domain/service"
	"jobdeck/internal/usecase"

	"github.com/labstack/echo/v4"
)

// AuthMiddleware authenticates requests and attaches the principal and org
// scope to the request context.
type AuthMiddleware struct {
	authUC   usecase.AuthUsecase
	resolver *service.PermissionResolver
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(authUC usecase.AuthUsecase, resolver *service.PermissionResolver) *AuthMiddleware {
	return &AuthMiddleware{authUC: authUC, resolver: resolver}
}

// Authenticate validates the bearer token and re-checks the referenced
// session against the store, so a revoked session fails here even while its
// access token signature is still valid. On success the principal and the
// org scope are attached to the request context.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return domainerrors.ErrSessionExpired.WrapMessage("authorization header is missing")
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return domainerrors.ErrSessionExpired.WrapMessage("authorization header must be a bearer token")
		}

		ctx := c.Request().Context()
		authed, err := m.authUC.Authenticate(ctx, tokenString)
		if err != nil {
			return err
		}

		principal := &deliverycontext.Principal{
			IdentityID:  authed.IdentityID,
			OrgID:       authed.OrgID,
			Role:        authed.Role,
			SessionID:   authed.SessionID,
			MFAVerified: authed.MFAVerified,
		}

		ctx = deliverycontext.WithPrincipal(ctx, principal)
		ctx = repository.WithOrgScope(ctx, authed.OrgID)
		c.SetRequest(c.Request().WithContext(ctx))

		return next(c)
	}
}

// RequirePermission is a middleware factory that checks the principal's fixed
// role permissions. Missing authentication stays a 401; an authenticated
// principal lacking the action gets a 403, never a 401.
func (m *AuthMiddleware) RequirePermission(action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal := deliverycontext.GetPrincipal(c.Request().Context())
			if principal == nil {
				return domainerrors.ErrSessionExpired.WrapMessage("no authenticated principal")
			}

			if !m.resolver.Can(principal.Role, action) {
				return domainerrors.ErrPermissionDenied.WithDetails("action: " + action)
			}

			return next(c)
		}
	}
}
