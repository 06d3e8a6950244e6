package usecase

import (
	"context"

	"jobdeck/internal/domain/entity"

	"github.com/google/uuid"
)

// ReadOnlyStore holds the mutable read-only flag. It is injected rather than
// process-global so tests can run gates side by side.
type ReadOnlyStore interface {
	// Enabled reports whether mutations are currently rejected.
	Enabled() bool

	// Set flips the flag.
	Set(enabled bool)
}

// SetReadOnlyInput toggles read-only mode.
type SetReadOnlyInput struct {
	OrgID     uuid.UUID
	ActorID   uuid.UUID
	Enabled   bool
	Reason    string
	ClientIP  string
	RequestID string
}

// AdminUsecase covers operator actions outside the normal business surface.
type AdminUsecase interface {
	// SetReadOnly flips the read-only flag and records the toggle.
	SetReadOnly(ctx context.Context, input SetReadOnlyInput) error

	// ListAuditEvents returns recent audit rows for an organization.
	ListAuditEvents(ctx context.Context, orgID uuid.UUID, limit int) ([]*entity.AuditEvent, error)
}
