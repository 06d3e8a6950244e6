package usecase

import (
	"context"

	"github.com/google/uuid"
)

// EnrollMfaOutput returns the provisioning material for a pending factor.
// The secret is shown once at enrollment and never again.
type EnrollMfaOutput struct {
	Secret string
	// ProvisionURI is the otpauth:// URI encoded into the QR code.
	ProvisionURI string
	// QRCodeBase64 is a base64 PNG of the provisioning QR code.
	QRCodeBase64 string
}

// VerifyMfaInput confirms a pending enrollment with a live code.
type VerifyMfaInput struct {
	IdentityID uuid.UUID
	Code       string
	ClientIP   string
	RequestID  string
}

// DisableMfaInput removes an enrollment. Every session of the identity is
// revoked in the same transaction.
type DisableMfaInput struct {
	IdentityID uuid.UUID
	// ActorID is who requested the disable; differs from IdentityID when an
	// owner resets a member's factor.
	ActorID uuid.UUID
	// ActorOrgID is the actor's organization. A target identity resolving to
	// a different organization is refused.
	ActorOrgID uuid.UUID
	Reason     string
	ClientIP   string
	RequestID  string
}

// MfaUsecase manages TOTP enrollment lifecycle.
type MfaUsecase interface {
	// Enroll issues a pending secret for the identity. Re-enrolling replaces
	// a pending secret; an enabled factor must be disabled first.
	Enroll(ctx context.Context, identityID uuid.UUID) (*EnrollMfaOutput, error)

	// Verify confirms possession of the factor, transitioning it to enabled.
	// Pre-verification sessions are revoked so only tokens minted after the
	// factor went live carry the MFA claim.
	Verify(ctx context.Context, input VerifyMfaInput) error

	// Disable destroys the enrollment and revokes all sessions of the identity.
	Disable(ctx context.Context, input DisableMfaInput) error
}
