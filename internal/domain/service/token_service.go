package service

import (
	"time"

	"jobdeck/internal/domain/entity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessClaims are the custom claims carried by access tokens. Signature
// validity alone never authenticates a request: the referenced session must
// still be active, so revocation takes effect immediately.
type AccessClaims struct {
	IdentityID  uuid.UUID   `json:"sub_id"`
	OrgID       uuid.UUID   `json:"org"`
	Role        entity.Role `json:"role"`
	SessionID   uuid.UUID   `json:"sid"`
	MFAVerified bool        `json:"mfa"`
	TokenType   string      `json:"type"`
	jwt.RegisteredClaims
}

// TokenService issues and validates access tokens and mints the opaque
// refresh tokens bound to sessions.
type TokenService interface {
	// GenerateAccessToken signs a short-lived access token for a session.
	GenerateAccessToken(identity *entity.Identity, session *entity.Session) (string, error)

	// ValidateAccessToken parses and verifies an access token's signature
	// and registered claims.
	ValidateAccessToken(tokenString string) (*AccessClaims, error)

	// NewRefreshToken mints an opaque single-use refresh token, returning the
	// raw value (delivered once to the client) and its storage hash.
	NewRefreshToken() (raw string, hash string, err error)

	// HashToken derives the storage hash for a presented raw token.
	HashToken(raw string) string

	// AccessTokenTTL returns the configured access-token lifetime.
	AccessTokenTTL() time.Duration

	// RefreshTokenTTL returns the configured refresh-token lifetime.
	RefreshTokenTTL() time.Duration
}
