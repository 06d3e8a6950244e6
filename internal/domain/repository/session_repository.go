package repository

import (
	"context"

	"jobdeck/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Domain-specific errors for session persistence.
var (
	// ErrSessionNotFound is returned when a session is not found.
	ErrSessionNotFound = errors.New("session not found")
)

// SessionRepository defines persistence for authenticated sessions and their
// refresh-token lineage. All rotation mutations run inside the transaction
// manager so no observer can see predecessor and successor both live.
type SessionRepository interface {
	// Create persists a new session.
	Create(ctx context.Context, session *entity.Session) error

	// FindByID retrieves a session by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Session, error)

	// FindByRefreshHash retrieves the session owning a refresh-token hash.
	FindByRefreshHash(ctx context.Context, tokenHash string) (*entity.Session, error)

	// FindActiveByIdentityID lists non-revoked, unexpired sessions for an
	// identity within one organization.
	FindActiveByIdentityID(ctx context.Context, orgID, identityID uuid.UUID) ([]*entity.Session, error)

	// Revoke marks one session revoked with a reason. Idempotent: revoking an
	// already-revoked session is a no-op, not an error.
	Revoke(ctx context.Context, id uuid.UUID, reason string) error

	// RevokeIfActive revokes one session and reports whether this call flipped
	// the row. Rotation depends on the report: a concurrent spend of the same
	// refresh token means the loser observes false and must not mint a
	// successor.
	RevokeIfActive(ctx context.Context, id uuid.UUID, reason string) (bool, error)

	// RevokeAllForIdentity revokes every live session of an identity within
	// one organization.
	RevokeAllForIdentity(ctx context.Context, orgID, identityID uuid.UUID, reason string) error

	// DeleteExpired removes sessions whose refresh window lapsed. Cleanup only.
	DeleteExpired(ctx context.Context) (int64, error)
}
