package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	deliverycontext "jobdeck/internal/delivery/context"
	"jobdeck/internal/delivery/http/response"
	"jobdeck/internal/domain/entity"
	domainerrors "jobdeck/internal/domain/errors"
	"jobdeck/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// LeadHandler holds dependencies for lead handlers.
type LeadHandler struct {
	uc     usecase.LeadUsecase
	logger *slog.Logger
}

// NewLeadHandler is the constructor for LeadHandler, injected by Fx.
func NewLeadHandler(uc usecase.LeadUsecase, logger *slog.Logger) *LeadHandler {
	return &LeadHandler{uc: uc, logger: logger}
}

type createLeadRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone"`
}

type updateLeadStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=new contacted booked closed"`
}

// Create persists a new lead in the caller's organization.
func (h *LeadHandler) Create(c echo.Context) error {
	principal := deliverycontext.GetPrincipal(c.Request().Context())
	if principal == nil {
		return domainerrors.ErrSessionExpired.WrapMessage("no authenticated principal")
	}

	var req createLeadRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid lead input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	view, err := h.uc.Create(c.Request().Context(), usecase.CreateLeadInput{
		OrgID: principal.OrgID,
		Role:  principal.Role,
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, view, "Lead created")
}

// Get retrieves one lead, masked for the caller's role.
func (h *LeadHandler) Get(c echo.Context) error {
	principal := deliverycontext.GetPrincipal(c.Request().Context())
	if principal == nil {
		return domainerrors.ErrSessionExpired.WrapMessage("no authenticated principal")
	}

	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid lead ID")
	}

	view, err := h.uc.Get(c.Request().Context(), principal.OrgID, principal.Role, leadID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, view, "Lead retrieved")
}

// List lists leads in the caller's organization.
func (h *LeadHandler) List(c echo.Context) error {
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

	views, err := h.uc.List(c.Request().Context(), principal.OrgID, principal.Role, limit)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, views, "Leads retrieved")
}

// UpdateStatus mutates a lead's pipeline status.
func (h *LeadHandler) UpdateStatus(c echo.Context) error {
	principal := deliverycontext.GetPrincipal(c.Request().Context())
	if principal == nil {
		return domainerrors.ErrSessionExpired.WrapMessage("no authenticated principal")
	}

	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid lead ID")
	}

	var req updateLeadStatusRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid status input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	view, err := h.uc.UpdateStatus(c.Request().Context(), usecase.UpdateLeadStatusInput{
		OrgID:     principal.OrgID,
		ActorID:   principal.IdentityID,
		Role:      principal.Role,
		LeadID:    leadID,
		Status:    entity.LeadStatus(req.Status),
		ClientIP:  c.RealIP(),
		RequestID: deliverycontext.GetRequestID(c),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, view, "Lead status updated")
}
