// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"

	deliverycontext "jobdeck/internal/delivery/context"
	"jobdeck/internal/delivery/http/response"
	"jobdeck/internal/domain/entity"
	"jobdeck/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// AuthHandler holds dependencies for authentication handlers.
type AuthHandler struct {
	uc     usecase.AuthUsecase
	logger *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler, injected by Fx.
func NewAuthHandler(uc usecase.AuthUsecase, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{uc: uc, logger: logger}
}

type loginRequest struct {
	Kind     string `json:"kind" validate:"omitempty,oneof=admin member worker client"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	MfaCode  string `json:"mfaCode"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type logoutRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// tokenPairResponse is the wire shape of an issued token pair. The identity
// block is trimmed to non-sensitive fields.
type tokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int64  `json:"expiresIn"`
	Identity     struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Role  string `json:"role"`
		OrgID string `json:"orgId"`
	} `json:"identity"`
}

func newTokenPairResponse(output *usecase.TokenPairOutput) *tokenPairResponse {
	resp := &tokenPairResponse{
		AccessToken:  output.AccessToken,
		RefreshToken: output.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    output.ExpiresIn,
	}
	resp.Identity.ID = output.Identity.ID.String()
	resp.Identity.Email = output.Identity.Email
	resp.Identity.Role = string(output.Identity.Role)
	resp.Identity.OrgID = output.Session.OrgID.String()

	return resp
}

// Login handles the password login request.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid login input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	kind := entity.IdentityKind(req.Kind)
	if req.Kind == "" {
		kind = entity.KindMember
	}

	output, err := h.uc.Login(c.Request().Context(), usecase.LoginInput{
		Kind:      kind,
		Email:     req.Email,
		Password:  req.Password,
		MfaCode:   req.MfaCode,
		ClientIP:  c.RealIP(),
		RequestID: deliverycontext.GetRequestID(c),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newTokenPairResponse(output), "Login successful")
}

// Refresh handles the session rotation request.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid refresh input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.uc.Refresh(c.Request().Context(), usecase.RefreshInput{
		RefreshToken: req.RefreshToken,
		ClientIP:     c.RealIP(),
		RequestID:    deliverycontext.GetRequestID(c),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newTokenPairResponse(output), "Token refreshed successfully")
}

// Logout handles the logout request.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req logoutRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid logout input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	if err := h.uc.Logout(c.Request().Context(), usecase.LogoutInput{
		RefreshToken: req.RefreshToken,
	}); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "Successfully logged out"}, "Logout successful")
}

// HealthCheck is a simple handler to check if the service is up.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"status": "ok"}, "Service is healthy")
}
