// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"

	"jobdeck/config"
	"jobdeck/internal/domain/service"
	"jobdeck/internal/errors"
)

// argon2id parameters for newly written hashes. Stored hashes carry their own
// parameters, so these can be raised without invalidating existing records.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
	argonSaltLen = 16
)

// multiSchemeHasher verifies against every scheme still present in the
// credential store and writes argon2id. Verification of a legacy scheme
// reports rehashNeeded so callers can upgrade the record on login.
//
// Recognized stored formats:
//
//	$argon2id$v=19$m=...,t=...,p=...$<salt>$<key>   current
//	$2a$... / $2b$...                               bcrypt, pre-migration
//	sha256$<hexsalt>:<hexdigest>                    earliest imports
type multiSchemeHasher struct {
	bcryptCost int
	strength   *config.PasswordStrengthConfig
}

// NewPasswordHasher is the constructor for the multi-scheme hasher.
func NewPasswordHasher(cfg *config.Config) service.PasswordHasher {
	cost := bcrypt.DefaultCost
	if cfg.Auth != nil && cfg.Auth.BcryptCost > 0 {
		cost = cfg.Auth.BcryptCost
	}

	return &multiSchemeHasher{
		bcryptCost: cost,
		strength:   cfg.PasswordStrength,
	}
}

// Hash generates a salted argon2id hash from a plaintext password.
func (h *multiSchemeHasher) Hash(password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", errors.Wrap(err, "generate salt")
	}

	key := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)

	return encoded, nil
}

// Verify compares a plaintext password with a stored hash, dispatching on the
// stored format. rehashNeeded is true only on a successful match against a
// non-argon2id scheme.
func (h *multiSchemeHasher) Verify(password, stored string) (ok bool, rehashNeeded bool) {
	switch {
	case strings.HasPrefix(stored, "$argon2id$"):
		return h.verifyArgon2id(password, stored), false
	case strings.HasPrefix(stored, "$2a$"), strings.HasPrefix(stored, "$2b$"), strings.HasPrefix(stored, "$2y$"):
		ok = bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil

		return ok, ok
	case strings.HasPrefix(stored, "sha256$"):
		ok = h.verifyLegacySHA256(password, stored)

		return ok, ok
	default:
		return false, false
	}
}

func (h *multiSchemeHasher) verifyArgon2id(password, stored string) bool {
	parts := strings.Split(stored, "$")
	// ["", "argon2id", "v=19", "m=...,t=...,p=...", salt, key]
	if len(parts) != 6 {
		return false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false
	}

	var memory, time uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false
	}

	key := argon2.IDKey([]byte(password), salt, time, memory, threads, uint32(len(expected)))

	return subtle.ConstantTimeCompare(key, expected) == 1
}

func (h *multiSchemeHasher) verifyLegacySHA256(password, stored string) bool {
	body := strings.TrimPrefix(stored, "sha256$")
	saltHex, digestHex, found := strings.Cut(body, ":")
	if !found {
		return false
	}

	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false
	}
	expected, err := hex.DecodeString(digestHex)
	if err != nil {
		return false
	}

	sum := sha256.Sum256(append(salt, []byte(password)...))

	return subtle.ConstantTimeCompare(sum[:], expected) == 1
}

// ValidatePasswordStrength rejects passwords below the configured policy.
func (h *multiSchemeHasher) ValidatePasswordStrength(password string) error {
	policy := h.strength
	if policy == nil {
		policy = &config.PasswordStrengthConfig{MinLength: 8, MaxLength: 128}
	}

	if len(password) < policy.MinLength {
		return errors.Errorf("password must be at least %d characters", policy.MinLength)
	}
	if policy.MaxLength > 0 && len(password) > policy.MaxLength {
		return errors.Errorf("password must be at most %d characters", policy.MaxLength)
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasNumber = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}

	if policy.RequireUppercase && !hasUpper {
		return errors.New("password must contain an uppercase letter")
	}
	if policy.RequireLowercase && !hasLower {
		return errors.New("password must contain a lowercase letter")
	}
	if policy.RequireNumbers && !hasNumber {
		return errors.New("password must contain a number")
	}
	if policy.RequireSpecial && !hasSpecial {
		return errors.New("password must contain a special character")
	}

	return nil
}
