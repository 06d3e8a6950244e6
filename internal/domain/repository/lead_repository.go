package repository

import (
	"context"

	"jobdeck/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrLeadNotFound is returned when a lead is not found within the org scope.
var ErrLeadNotFound = errors.New("lead not found")

// LeadRepository persists the sample org-owned business rows. Every query
// filters explicitly by organization; the storage-layer row policy backs it up.
type LeadRepository interface {
	// Create persists a new lead in the given organization.
	Create(ctx context.Context, lead *entity.Lead) error

	// FindByID retrieves a lead by ID, scoped to the organization.
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*entity.Lead, error)

	// ListByOrg lists leads for an organization, newest first.
	ListByOrg(ctx context.Context, orgID uuid.UUID, limit int) ([]*entity.Lead, error)

	// UpdateStatus mutates the pipeline status, scoped to the organization.
	UpdateStatus(ctx context.Context, orgID, id uuid.UUID, status entity.LeadStatus) error
}
