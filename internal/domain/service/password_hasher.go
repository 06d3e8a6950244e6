// Package service defines interfaces for core, stateless domain logic.
// These services encapsulate business rules that don't naturally fit within
// a single entity.
package service

// PasswordHasher verifies and produces stored password hashes. Multiple hash
// schemes coexist during migration: the stored string's leading tag selects
// the verifier, and a successful match against a non-current scheme asks the
// caller to re-hash so accounts upgrade on their next login.
type PasswordHasher interface {
	// Hash generates a salted hash from a plaintext password using the
	// current scheme.
	Hash(password string) (string, error)

	// Verify compares a plaintext password with a stored hash. rehashNeeded
	// is true when the match succeeded against a non-current scheme; the
	// caller persists a fresh current-scheme hash in the same transaction as
	// any session it creates.
	Verify(password, stored string) (ok bool, rehashNeeded bool)

	// ValidatePasswordStrength rejects passwords below the configured policy.
	ValidatePasswordStrength(password string) error
}
