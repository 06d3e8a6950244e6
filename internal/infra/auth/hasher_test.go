package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"jobdeck/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newHasher(strength *config.PasswordStrengthConfig) *multiSchemeHasher {
	cfg := &config.Config{
		Auth:             &config.AuthConfig{BcryptCost: bcrypt.MinCost},
		PasswordStrength: strength,
	}

	return NewPasswordHasher(cfg).(*multiSchemeHasher)
}

func TestMultiSchemeHasher_Argon2idRoundtrip(t *testing.T) {
	hasher := newHasher(nil)

	stored, err := hasher.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored, "$argon2id$v=19$"))

	ok, rehashNeeded := hasher.Verify("correct horse battery staple", stored)
	assert.True(t, ok)
	// A current-scheme match never asks for a rehash.
	assert.False(t, rehashNeeded)

	ok, _ = hasher.Verify("wrong password", stored)
	assert.False(t, ok)
}

func TestMultiSchemeHasher_HashesAreSalted(t *testing.T) {
	hasher := newHasher(nil)

	first, err := hasher.Hash("same password")
	require.NoError(t, err)
	second, err := hasher.Hash("same password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestMultiSchemeHasher_BcryptLegacyVerifiesAndFlagsRehash(t *testing.T) {
	hasher := newHasher(nil)

	legacy, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	ok, rehashNeeded := hasher.Verify("hunter2", string(legacy))
	assert.True(t, ok)
	assert.True(t, rehashNeeded)

	ok, rehashNeeded = hasher.Verify("wrong", string(legacy))
	assert.False(t, ok)
	// No upgrade on a failed match.
	assert.False(t, rehashNeeded)
}

func TestMultiSchemeHasher_SHA256LegacyVerifiesAndFlagsRehash(t *testing.T) {
	hasher := newHasher(nil)

	salt := []byte{0xde, 0xad, 0xbe, 0xef}
	sum := sha256.Sum256(append(salt, []byte("hunter2")...))
	stored := "sha256$" + hex.EncodeToString(salt) + ":" + hex.EncodeToString(sum[:])

	ok, rehashNeeded := hasher.Verify("hunter2", stored)
	assert.True(t, ok)
	assert.True(t, rehashNeeded)

	ok, _ = hasher.Verify("wrong", stored)
	assert.False(t, ok)
}

func TestMultiSchemeHasher_UnknownSchemeFails(t *testing.T) {
	hasher := newHasher(nil)

	ok, rehashNeeded := hasher.Verify("anything", "md5$notsupported")
	assert.False(t, ok)
	assert.False(t, rehashNeeded)

	ok, _ = hasher.Verify("anything", "")
	assert.False(t, ok)
}

func TestMultiSchemeHasher_MalformedArgonHashFails(t *testing.T) {
	hasher := newHasher(nil)

	ok, _ := hasher.Verify("anything", "$argon2id$v=19$m=65536,t=1,p=4$notbase64!!$alsobad")
	assert.False(t, ok)

	ok, _ = hasher.Verify("anything", "$argon2id$truncated")
	assert.False(t, ok)
}

func TestValidatePasswordStrength(t *testing.T) {
	hasher := newHasher(&config.PasswordStrengthConfig{
		MinLength:        10,
		MaxLength:        64,
		RequireUppercase: true,
		RequireLowercase: true,
		RequireNumbers:   true,
		RequireSpecial:   true,
	})

	assert.Error(t, hasher.ValidatePasswordStrength("Sh0rt!"))
	assert.Error(t, hasher.ValidatePasswordStrength("alllowercase1!"))
	assert.Error(t, hasher.ValidatePasswordStrength("ALLUPPERCASE1!"))
	assert.Error(t, hasher.ValidatePasswordStrength("NoNumbersHere!"))
	assert.Error(t, hasher.ValidatePasswordStrength("NoSpecials123"))
	assert.Error(t, hasher.ValidatePasswordStrength(strings.Repeat("Aa1!", 20)))
	assert.NoError(t, hasher.ValidatePasswordStrength("Str0ng&Secure"))
}

func TestValidatePasswordStrength_DefaultPolicy(t *testing.T) {
	hasher := newHasher(nil)

	assert.Error(t, hasher.ValidatePasswordStrength("seven77"))
	assert.NoError(t, hasher.ValidatePasswordStrength("eightch8"))
}
