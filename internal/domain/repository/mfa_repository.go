package repository

import (
	"context"

	"jobdeck/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrMfaSecretNotFound is returned when an identity has no MFA enrollment.
var ErrMfaSecretNotFound = errors.New("mfa secret not found")

// MfaRepository persists TOTP enrollments. At most one secret exists per
// identity; re-enrollment replaces a pending secret but never an enabled one.
type MfaRepository interface {
	// Upsert creates or replaces the pending secret for an identity.
	Upsert(ctx context.Context, secret *entity.MfaSecret) error

	// FindByIdentityID retrieves the enrollment for an identity.
	FindByIdentityID(ctx context.Context, identityID uuid.UUID) (*entity.MfaSecret, error)

	// Update persists state transitions (pending -> enabled).
	Update(ctx context.Context, secret *entity.MfaSecret) error

	// Delete destroys the enrollment. Used by disable.
	Delete(ctx context.Context, identityID uuid.UUID) error
}
