package repository

import (
	"context"

	"jobdeck/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Domain-specific errors for the idempotency ledger.
var (
	// ErrIdempotencyRecordNotFound is returned when no record matches the key.
	ErrIdempotencyRecordNotFound = errors.New("idempotency record not found")
	// ErrIdempotencyKeyTaken is returned by Insert when another request
	// already claimed the key; the caller must read the existing record.
	ErrIdempotencyKeyTaken = errors.New("idempotency key already claimed")
)

// IdempotencyRepository persists the dedup ledger. Insert must be atomic
// (unique-constraint backed) so exactly one of two concurrent identical
// requests claims the key and runs the handler.
type IdempotencyRepository interface {
	// Insert claims a key. Returns ErrIdempotencyKeyTaken if the
	// (org, actor, method, path, key) tuple already exists.
	Insert(ctx context.Context, record *entity.IdempotencyRecord) error

	// Find retrieves the record for a key tuple.
	Find(ctx context.Context, orgID, actorID uuid.UUID, method, path, key string) (*entity.IdempotencyRecord, error)

	// Complete stores the handler's response bytes and marks the record done.
	Complete(ctx context.Context, id uuid.UUID, status int, body []byte) error

	// Delete removes a claimed record whose handler failed, releasing the key.
	Delete(ctx context.Context, id uuid.UUID) error
}
