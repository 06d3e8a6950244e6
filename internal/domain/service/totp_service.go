package service

import "time"

// TotpService implements RFC 6238 time-based one-time passwords for MFA
// enrollment and verification.
type TotpService interface {
	// GenerateSecret mints a new base32-encoded TOTP seed.
	GenerateSecret() (string, error)

	// ProvisionURI builds the otpauth:// URI an authenticator app enrolls from.
	ProvisionURI(secret, account string) string

	// Verify checks a submitted code against the seed at the given instant,
	// within the configured skew window. Constant-time comparison.
	Verify(secret, code string, now time.Time) bool
}
