package usecase

import (
	"context"

	"jobdeck/internal/domain/entity"

	"github.com/google/uuid"
)

// LeadView is the serialized shape of a lead after role-based field masking.
type LeadView struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Status    string    `json:"status"`
	CreatedAt string    `json:"createdAt"`
}

// CreateLeadInput defines the data to create a lead within the caller's org.
type CreateLeadInput struct {
	OrgID uuid.UUID
	Role  entity.Role
	Name  string
	Email string
	Phone string
}

// UpdateLeadStatusInput mutates a lead's pipeline status.
type UpdateLeadStatusInput struct {
	OrgID     uuid.UUID
	ActorID   uuid.UUID
	Role      entity.Role
	LeadID    uuid.UUID
	Status    entity.LeadStatus
	ClientIP  string
	RequestID string
}

// LeadUsecase manages the org-owned sample rows the admin surface exposes.
// Every operation is confined to the caller's organization and output fields
// are masked per the caller's role.
type LeadUsecase interface {
	// Create persists a new lead in the caller's organization.
	Create(ctx context.Context, input CreateLeadInput) (*LeadView, error)

	// Get retrieves one lead, masked for the caller's role.
	Get(ctx context.Context, orgID uuid.UUID, role entity.Role, leadID uuid.UUID) (*LeadView, error)

	// List lists leads in the caller's organization, masked for the role.
	List(ctx context.Context, orgID uuid.UUID, role entity.Role, limit int) ([]*LeadView, error)

	// UpdateStatus mutates the pipeline status and appends an audit row with
	// before/after snapshots.
	UpdateStatus(ctx context.Context, input UpdateLeadStatusInput) (*LeadView, error)
}
