package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	deliverycontext "jobdeck/internal/delivery/context"
	"jobdeck/internal/delivery/http/middleware"
	"jobdeck/internal/delivery/http/response"
	domainerrors "jobdeck/internal/domain/errors"
	"jobdeck/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// AdminHandler holds dependencies for operator endpoints.
type AdminHandler struct {
	adminUC      usecase.AdminUsecase
	authUC       usecase.AuthUsecase
	breakGlassUC usecase.BreakGlassUsecase
	logger       *slog.Logger
}

// NewAdminHandler is the constructor for AdminHandler, injected by Fx.
func NewAdminHandler(
	adminUC usecase.AdminUsecase,
	authUC usecase.AuthUsecase,
	breakGlassUC usecase.BreakGlassUsecase,
	logger *slog.Logger,
) *AdminHandler {
	return &AdminHandler{
		adminUC:      adminUC,
		authUC:       authUC,
		breakGlassUC: breakGlassUC,
		logger:       logger,
	}
}

type startBreakGlassRequest struct {
	Reason string `json:"reason" validate:"required"`
	// TTLSeconds caps at the configured maximum when larger or omitted.
	TTLSeconds int `json:"ttlSeconds" validate:"omitempty,min=1"`
}

type setReadOnlyRequest struct {
	Enabled bool   `json:"enabled"`
	Reason  string `json:"reason"`
}

type revokeSessionsRequest struct {
	IdentityID string `json:"identityId" validate:"required,uuid"`
	Reason     string `json:"reason"`
}

// StartBreakGlass mints an emergency token. The raw token is delivered once
// in the X-Break-Glass-Token response header and is never logged or stored.
func (h *AdminHandler) StartBreakGlass(c echo.Context) error {
	principal := deliverycontext.GetPrincipal(c.Request().Context())
	if principal == nil {
		return domainerrors.ErrSessionExpired.WrapMessage("no authenticated principal")
	}

	var req startBreakGlassRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid break-glass input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.breakGlassUC.Start(c.Request().Context(), usecase.StartBreakGlassInput{
		OrgID:     principal.OrgID,
		ActorID:   principal.IdentityID,
		Reason:    req.Reason,
		TTL:       time.Duration(req.TTLSeconds) * time.Second,
		ClientIP:  c.RealIP(),
		RequestID: deliverycontext.GetRequestID(c),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	c.Response().Header().Set(middleware.HeaderBreakGlassToken, output.Token)

	return response.Success(c, http.StatusCreated, map[string]string{
		"expiresAt": output.ExpiresAt.Format(time.RFC3339),
	}, "Break-glass token minted")
}

// SetReadOnly flips the store-wide read-only flag.
func (h *AdminHandler) SetReadOnly(c echo.Context) error {
	principal := deliverycontext.GetPrincipal(c.Request().Context())
	if principal == nil {
		return domainerrors.ErrSessionExpired.WrapMessage("no authenticated principal")
	}

	var req setReadOnlyRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid read-only input")
	}

	if err := h.adminUC.SetReadOnly(c.Request().Context(), usecase.SetReadOnlyInput{
		OrgID:     principal.OrgID,
		ActorID:   principal.IdentityID,
		Enabled:   req.Enabled,
		Reason:    req.Reason,
		ClientIP:  c.RealIP(),
		RequestID: deliverycontext.GetRequestID(c),
	}); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]bool{"readOnly": req.Enabled}, "Read-only mode updated")
}

// RevokeSessions force-ends every live session of one identity within the
// caller's organization.
func (h *AdminHandler) RevokeSessions(c echo.Context) error {
	principal := deliverycontext.GetPrincipal(c.Request().Context())
	if principal == nil {
		return domainerrors.ErrSessionExpired.WrapMessage("no authenticated principal")
	}

	var req revokeSessionsRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid revocation input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	identityID, err := uuid.Parse(req.IdentityID)
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid identity ID")
	}

	count, err := h.authUC.RevokeSessions(c.Request().Context(), usecase.RevokeSessionsInput{
		IdentityID: identityID,
		OrgID:      principal.OrgID,
		ActorID:    principal.IdentityID,
		Reason:     req.Reason,
		ClientIP:   c.RealIP(),
		RequestID:  deliverycontext.GetRequestID(c),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]int{"revoked": count}, "Sessions revoked")
}

// ListAuditEvents returns recent audit rows for the caller's organization.
func (h *AdminHandler) ListAuditEvents(c echo.Context) error {
	principal := deliverycontext.GetPrincipal(c.Request().Context())
	if principal == nil {
		return domainerrors.ErrSessionExpired.WrapMessage("no authenticated principal")
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return response.BadRequest(c, "INVALID_INPUT", "Invalid limit")
		}
		limit = parsed
	}

	events, err := h.adminUC.ListAuditEvents(c.Request().Context(), principal.OrgID, limit)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, events, "Audit events retrieved")
}
