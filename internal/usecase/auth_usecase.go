// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"jobdeck/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// LoginInput defines the data required to sign in with a password credential.
type LoginInput struct {
	Kind     entity.IdentityKind
	Email    string
	Password string
	// MfaCode is the optional TOTP code, required when the identity has an
	// enabled factor or the organization demands one for the role.
	MfaCode string
	// ClientIP and RequestID feed the audit trail.
	ClientIP  string
	RequestID string
}

// RefreshInput defines the data required to rotate a session.
type RefreshInput struct {
	RefreshToken string
	ClientIP     string
	RequestID    string
}

// LogoutInput identifies the session to end by its refresh token.
type LogoutInput struct {
	RefreshToken string
}

// RevokeSessionsInput revokes every live session of one identity. OrgID is
// the caller's organization; a target identity outside it is refused.
type RevokeSessionsInput struct {
	IdentityID uuid.UUID
	OrgID      uuid.UUID
	// ActorID is the administrator performing the revocation, recorded on the
	// audit row.
	ActorID   uuid.UUID
	Reason    string
	ClientIP  string
	RequestID string
}

// --- Output DTOs ---

// TokenPairOutput returns the credentials issued by login and refresh.
type TokenPairOutput struct {
	AccessToken  string
	RefreshToken string
	// ExpiresIn is the access-token lifetime in seconds.
	ExpiresIn int64
	Identity  *entity.Identity
	Session   *entity.Session
}

// AuthenticatedSession is the result of the per-request hot-path check:
// a signature-valid access token whose session is still live.
type AuthenticatedSession struct {
	IdentityID  uuid.UUID
	OrgID       uuid.UUID
	Role        entity.Role
	SessionID   uuid.UUID
	MFAVerified bool
}

// AuthUsecase defines the authentication business operations the delivery
// layer depends on.
type AuthUsecase interface {
	// Login verifies a password credential and issues a session plus token
	// pair. A successful verification against a legacy hash scheme upgrades
	// the stored hash in the same transaction that creates the session.
	Login(ctx context.Context, input LoginInput) (*TokenPairOutput, error)

	// Refresh spends a refresh token exactly once: the old session is revoked
	// and a successor created atomically. Spending an already-rotated token
	// fails and revokes the whole lineage.
	Refresh(ctx context.Context, input RefreshInput) (*TokenPairOutput, error)

	// Logout revokes the session owning the refresh token. Idempotent.
	Logout(ctx context.Context, input LogoutInput) error

	// Authenticate validates an access token and re-checks its session
	// against the store, so revocation takes effect before token expiry.
	Authenticate(ctx context.Context, accessToken string) (*AuthenticatedSession, error)

	// RevokeSessions revokes every live session of an identity within the
	// caller's organization and returns how many were revoked.
	RevokeSessions(ctx context.Context, input RevokeSessionsInput) (int, error)
}
