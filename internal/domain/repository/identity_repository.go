package repository

import (
	"context"

	"jobdeck/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Domain-specific errors for identity persistence.
var (
	// ErrIdentityNotFound is returned when an identity is not found.
	ErrIdentityNotFound = errors.New("identity not found")
	// ErrCredentialNotFound is returned when an identity has no stored credential.
	ErrCredentialNotFound = errors.New("credential not found")
)

// IdentityRepository defines persistence operations for accounts of every
// identity kind. Identities are soft-disabled, never hard-deleted.
type IdentityRepository interface {
	// Create persists a new identity.
	Create(ctx context.Context, identity *entity.Identity) error

	// FindByID retrieves an identity by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Identity, error)

	// FindByEmail retrieves an identity by email and kind. Email is unique
	// per kind, not globally, since the populations are provisioned separately.
	FindByEmail(ctx context.Context, kind entity.IdentityKind, email string) (*entity.Identity, error)

	// Update persists identity mutations (role, status, name).
	Update(ctx context.Context, identity *entity.Identity) error
}

// CredentialRepository manages stored password hashes.
type CredentialRepository interface {
	// Create persists a credential for an identity.
	Create(ctx context.Context, credential *entity.Credential) error

	// FindByIdentityID retrieves the credential for an identity.
	FindByIdentityID(ctx context.Context, identityID uuid.UUID) (*entity.Credential, error)

	// UpdateHash replaces the stored hash. Used by password changes and by
	// the opportunistic re-hash after a legacy-scheme verification.
	UpdateHash(ctx context.Context, identityID uuid.UUID, hash string) error
}
