package repository

import (
	"context"

	"jobdeck/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrOrganizationNotFound is returned when an organization is not found.
var ErrOrganizationNotFound = errors.New("organization not found")

// OrganizationRepository persists tenants and their authentication policy.
type OrganizationRepository interface {
	// Create persists a new organization.
	Create(ctx context.Context, org *entity.Organization) error

	// FindByID retrieves an organization by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Organization, error)

	// Update persists policy mutations (MFA-required role set, name).
	Update(ctx context.Context, org *entity.Organization) error
}
