package auth

import (
	"testing"
	"time"

	"jobdeck/config"
	"jobdeck/internal/domain/entity"
	"jobdeck/internal/domain/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJWTService(t *testing.T, secret string) service.TokenService {
	t.Helper()

	cfg := &config.Config{
		Auth: &config.AuthConfig{
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 7 * 24 * time.Hour,
		},
	}
	cfg.SecretKey.Access = secret

	svc, err := NewJWTService(cfg)
	require.NoError(t, err)

	return svc
}

func testIdentityAndSession() (*entity.Identity, *entity.Session) {
	orgID := uuid.New()
	identity := &entity.Identity{
		ID:    uuid.New(),
		Kind:  entity.KindMember,
		Email: "dispatch@acme.test",
		OrgID: &orgID,
		Role:  entity.RoleDispatcher,
	}
	session := &entity.Session{
		ID:          uuid.New(),
		IdentityID:  identity.ID,
		OrgID:       orgID,
		Role:        identity.Role,
		MFAVerified: true,
	}

	return identity, session
}

func TestNewJWTService_RequiresSecret(t *testing.T) {
	cfg := &config.Config{Auth: &config.AuthConfig{}}

	_, err := NewJWTService(cfg)
	assert.Error(t, err)
}

func TestJWTService_AccessTokenRoundtrip(t *testing.T) {
	svc := newJWTService(t, "test-access-secret")
	identity, session := testIdentityAndSession()

	signed, err := svc.GenerateAccessToken(identity, session)
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(signed)
	require.NoError(t, err)
	assert.Equal(t, identity.ID, claims.IdentityID)
	assert.Equal(t, session.OrgID, claims.OrgID)
	assert.Equal(t, session.ID, claims.SessionID)
	assert.Equal(t, entity.RoleDispatcher, claims.Role)
	assert.True(t, claims.MFAVerified)
	assert.Equal(t, identity.ID.String(), claims.Subject)
}

func TestJWTService_RejectsTamperedToken(t *testing.T) {
	svc := newJWTService(t, "test-access-secret")
	identity, session := testIdentityAndSession()

	signed, err := svc.GenerateAccessToken(identity, session)
	require.NoError(t, err)

	tampered := signed[:len(signed)-2] + "xx"
	_, err = svc.ValidateAccessToken(tampered)
	assert.Error(t, err)
}

func TestJWTService_RejectsForeignSecret(t *testing.T) {
	minter := newJWTService(t, "secret-one")
	verifier := newJWTService(t, "secret-two")
	identity, session := testIdentityAndSession()

	signed, err := minter.GenerateAccessToken(identity, session)
	require.NoError(t, err)

	_, err = verifier.ValidateAccessToken(signed)
	assert.Error(t, err)
}

func TestJWTService_RejectsGarbage(t *testing.T) {
	svc := newJWTService(t, "test-access-secret")

	_, err := svc.ValidateAccessToken("not.a.jwt")
	assert.Error(t, err)

	_, err = svc.ValidateAccessToken("")
	assert.Error(t, err)
}

func TestJWTService_RefreshTokens(t *testing.T) {
	svc := newJWTService(t, "test-access-secret")

	raw, hash, err := svc.NewRefreshToken()
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
	assert.NotEqual(t, raw, hash)
	// Hashing is deterministic so the store lookup on presentation matches.
	assert.Equal(t, hash, svc.HashToken(raw))

	other, _, err := svc.NewRefreshToken()
	require.NoError(t, err)
	assert.NotEqual(t, raw, other)
}

func TestJWTService_TTLs(t *testing.T) {
	svc := newJWTService(t, "test-access-secret")

	assert.Equal(t, 15*time.Minute, svc.AccessTokenTTL())
	assert.Equal(t, 7*24*time.Hour, svc.RefreshTokenTTL())
}
