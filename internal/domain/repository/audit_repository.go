package repository

import (
	"context"

	"jobdeck/internal/domain/entity"

	"github.com/google/uuid"
)

// AuditRepository persists the append-only audit trail. There is no update
// or delete surface by design.
type AuditRepository interface {
	// Append persists one audit event.
	Append(ctx context.Context, event *entity.AuditEvent) error

	// ListByOrg returns recent events for an organization, newest first.
	ListByOrg(ctx context.Context, orgID uuid.UUID, limit int) ([]*entity.AuditEvent, error)
}
