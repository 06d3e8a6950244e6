package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"jobdeck/config"
	"jobdeck/internal/domain/entity"
	"jobdeck/internal/domain/service"
	"jobdeck/internal/errors"
)

const refreshTokenBytes = 32

// jwtService signs HS256 access tokens and mints opaque refresh tokens.
// Refresh tokens are random strings, not JWTs: only their SHA-256 digest is
// stored, so a database leak does not leak usable tokens.
type jwtService struct {
	accessSecret string
	accessTTL    time.Duration
	refreshTTL   time.Duration
}

// NewJWTService is the constructor for jwtService.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg.SecretKey.Access == "" {
		return nil, errors.New("jwt access secret must be provided")
	}

	return &jwtService{
		accessSecret: cfg.SecretKey.Access,
		accessTTL:    cfg.Auth.AccessTokenTTL,
		refreshTTL:   cfg.Auth.RefreshTokenTTL,
	}, nil
}

// GenerateAccessToken signs a short-lived access token bound to a session.
func (s *jwtService) GenerateAccessToken(identity *entity.Identity, session *entity.Session) (string, error) {
	now := time.Now()
	claims := service.AccessClaims{
		IdentityID:  identity.ID,
		OrgID:       session.OrgID,
		Role:        session.Role,
		SessionID:   session.ID,
		MFAVerified: session.MFAVerified,
		TokenType:   "access",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.accessSecret))
	if err != nil {
		return "", errors.Wrap(err, "sign access token")
	}

	return signed, nil
}

// ValidateAccessToken parses and verifies a token's signature and registered
// claims. A valid signature is necessary but not sufficient for the caller;
// the referenced session must still be checked against the store.
func (s *jwtService) ValidateAccessToken(tokenString string) (*service.AccessClaims, error) {
	claims := new(service.AccessClaims)
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return []byte(s.accessSecret), nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "parse access token")
	}
	if !token.Valid || claims.TokenType != "access" {
		return nil, errors.New("invalid access token")
	}

	return claims, nil
}

// NewRefreshToken mints an opaque single-use refresh token and its storage hash.
func (s *jwtService) NewRefreshToken() (raw string, hash string, err error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", errors.Wrap(err, "generate refresh token")
	}

	raw = base64.RawURLEncoding.EncodeToString(buf)

	return raw, s.HashToken(raw), nil
}

// HashToken derives the storage hash for a presented raw token.
func (s *jwtService) HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))

	return hex.EncodeToString(sum[:])
}

// AccessTokenTTL returns the configured access-token lifetime.
func (s *jwtService) AccessTokenTTL() time.Duration {
	return s.accessTTL
}

// RefreshTokenTTL returns the configured refresh-token lifetime.
func (s *jwtService) RefreshTokenTTL() time.Duration {
	return s.refreshTTL
}
