package entity

import (
	"time"

	"github.com/google/uuid"
)

// MfaState tracks a TOTP enrollment lifecycle. A secret is issued in
// PendingVerification and only becomes authoritative after the holder proves
// possession with a valid code.
type MfaState string

const (
	MfaPending MfaState = "pending"
	MfaEnabled MfaState = "enabled"
)

// MfaSecret is a TOTP seed bound to one identity. Disabling MFA destroys the
// record and revokes every session of that identity.
type MfaSecret struct {
	ID         uuid.UUID
	IdentityID uuid.UUID
	// Secret is the base32-encoded TOTP seed. Never logged.
	Secret      string
	State       MfaState
	ConfirmedAt *time.Time
	CreatedAt   time.Time
}

// Enabled reports whether the factor is confirmed and enforceable.
func (s *MfaSecret) Enabled() bool {
	return s.State == MfaEnabled
}
