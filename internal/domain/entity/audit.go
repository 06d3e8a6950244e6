package entity

import (
	"time"

	"github.com/google/uuid"
)

// Audit event types follow the "resource.verb" pattern for consistent
// filtering in the ops dashboard.
const (
	AuditLoginSuccess      = "auth.login_success"
	AuditLoginFailed       = "auth.login_failed"
	AuditLogout            = "auth.logout"
	AuditSessionRotated    = "auth.session_rotated"
	AuditSessionsRevoked   = "auth.sessions_revoked"
	AuditPasswordRehashed  = "auth.password_rehashed"
	AuditMfaEnrolled       = "mfa.enrolled"
	AuditMfaEnabled        = "mfa.enabled"
	AuditMfaDisabled       = "mfa.disabled"
	AuditBreakGlassMinted  = "breakglass.minted"
	AuditBreakGlassWrite   = "breakglass.write"
	AuditReadOnlyToggled   = "admin.read_only_toggled"
	AuditLeadStatusChanged = "lead.status_changed"
)

// AuditEvent is an append-only record of a security-relevant action. Writes
// performed under an active break-glass token always carry the mint reason
// and, where applicable, before/after snapshots.
type AuditEvent struct {
	ID        uuid.UUID
	OrgID     uuid.UUID
	ActorID   *uuid.UUID
	Event     string
	Reason    string
	RequestID string
	IPAddress string
	// Before and After hold JSON snapshots of the mutated row, when the
	// mutation has a meaningful before/after shape.
	Before    []byte
	After     []byte
	CreatedAt time.Time
}
