package entity

import (
	"time"

	"github.com/google/uuid"
)

// Session revocation reasons recorded alongside the revoked flag.
const (
	RevokeReasonLogout         = "logout"
	RevokeReasonRotated        = "rotated"
	RevokeReasonPasswordChange = "password_change"
	RevokeReasonAdminAction    = "admin_action"
	RevokeReasonMFADisabled    = "mfa_disabled"
	RevokeReasonMFAEnabled     = "mfa_enabled"
)

// Session represents one authenticated client lifetime. A session moves
// Active -> Revoked; rotation revokes the predecessor and creates a successor
// in the same transaction, so at most one session per lineage is ever live.
type Session struct {
	ID         uuid.UUID
	IdentityID uuid.UUID
	OrgID      uuid.UUID
	Role       Role
	// RefreshTokenHash stores a SHA-256 hash of the opaque refresh token.
	// The raw token is never persisted.
	RefreshTokenHash string
	// PredecessorID links a rotated session to the one it replaced.
	PredecessorID *uuid.UUID
	MFAVerified   bool
	IssuedAt      time.Time
	// ExpiresAt bounds the access-token validity window for this session.
	ExpiresAt time.Time
	// RefreshExpiresAt bounds how long the refresh token can rotate the session.
	RefreshExpiresAt time.Time
	Revoked          bool
	RevokedReason    string
	RevokedAt        *time.Time
	CreatedAt        time.Time
}

// Active reports whether the session may authenticate requests at the given
// instant. Signature validity on the access token alone is never sufficient.
func (s *Session) Active(now time.Time) bool {
	return !s.Revoked && now.Before(s.RefreshExpiresAt)
}

// CanRefresh reports whether the refresh token bound to this session is
// still spendable.
func (s *Session) CanRefresh(now time.Time) bool {
	return s.Active(now)
}
