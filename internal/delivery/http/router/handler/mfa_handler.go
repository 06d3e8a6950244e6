package handler

import (
	"log/slog"
	"net/http"

	deliverycontext "jobdeck/internal/delivery/context"
	"jobdeck/internal/delivery/http/response"
	domainerrors "jobdeck/internal/domain/errors"
	"jobdeck/internal/domain/service"
	"jobdeck/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// MfaHandler holds dependencies for TOTP enrollment handlers.
type MfaHandler struct {
	uc       usecase.MfaUsecase
	resolver *service.PermissionResolver
	logger   *slog.Logger
}

// NewMfaHandler is the constructor for MfaHandler, injected by Fx.
func NewMfaHandler(uc usecase.MfaUsecase, resolver *service.PermissionResolver, logger *slog.Logger) *MfaHandler {
	return &MfaHandler{uc: uc, resolver: resolver, logger: logger}
}

type verifyMfaRequest struct {
	Code string `json:"code" validate:"required,numeric"`
}

type disableMfaRequest struct {
	// IdentityID targets another account; empty means self-service disable.
	IdentityID string `json:"identityId" validate:"omitempty,uuid"`
	Reason     string `json:"reason"`
}

type enrollMfaResponse struct {
	Secret       string `json:"secret"`
	ProvisionURI string `json:"provisionUri"`
	QRCodePNG    string `json:"qrCodePng"`
}

// Enroll issues a pending TOTP secret for the authenticated identity.
func (h *MfaHandler) Enroll(c echo.Context) error {
	principal := deliverycontext.GetPrincipal(c.Request().Context())
	if principal == nil {
		return domainerrors.ErrSessionExpired.WrapMessage("no authenticated principal")
	}

	output, err := h.uc.Enroll(c.Request().Context(), principal.IdentityID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, enrollMfaResponse{
		Secret:       output.Secret,
		ProvisionURI: output.ProvisionURI,
		QRCodePNG:    output.QRCodeBase64,
	}, "MFA enrollment started")
}

// Verify confirms a pending enrollment with a live code.
func (h *MfaHandler) Verify(c echo.Context) error {
	principal := deliverycontext.GetPrincipal(c.Request().Context())
	if principal == nil {
		return domainerrors.ErrSessionExpired.WrapMessage("no authenticated principal")
	}

	var req verifyMfaRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid verification input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	if err := h.uc.Verify(c.Request().Context(), usecase.VerifyMfaInput{
		IdentityID: principal.IdentityID,
		Code:       req.Code,
		ClientIP:   c.RealIP(),
		RequestID:  deliverycontext.GetRequestID(c),
	}); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"state": "enabled"}, "MFA enabled")
}

// Disable removes an enrollment and revokes every session of the identity.
func (h *MfaHandler) Disable(c echo.Context) error {
	principal := deliverycontext.GetPrincipal(c.Request().Context())
	if principal == nil {
		return domainerrors.ErrSessionExpired.WrapMessage("no authenticated principal")
	}

	var req disableMfaRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid disable input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	targetID := principal.IdentityID
	if req.IdentityID != "" {
		parsed, err := uuid.Parse(req.IdentityID)
		if err != nil {
			return response.BadRequest(c, "INVALID_INPUT", "Invalid identity ID")
		}
		targetID = parsed
	}

	// Disabling someone else's factor is a privileged reset.
	if targetID != principal.IdentityID && !h.resolver.Can(principal.Role, service.ActionMfaDisable) {
		return domainerrors.ErrPermissionDenied.WithDetails("action: " + service.ActionMfaDisable)
	}

	if err := h.uc.Disable(c.Request().Context(), usecase.DisableMfaInput{
		IdentityID: targetID,
		ActorID:    principal.IdentityID,
		ActorOrgID: principal.OrgID,
		Reason:     req.Reason,
		ClientIP:   c.RealIP(),
		RequestID:  deliverycontext.GetRequestID(c),
	}); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"state": "disabled"}, "MFA disabled")
}
