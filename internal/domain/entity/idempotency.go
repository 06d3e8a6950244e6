package entity

import (
	"time"

	"github.com/google/uuid"
)

// IdempotencyRecord deduplicates dangerous mutating admin requests. The
// logical key is (org, actor, method, path, client key); the request hash
// detects key reuse with a different body, which is a conflict rather than
// a replay.
type IdempotencyRecord struct {
	ID      uuid.UUID
	OrgID   uuid.UUID
	ActorID uuid.UUID
	Method  string
	Path    string
	Key     string
	// RequestHash is the SHA-256 of the normalized request body.
	RequestHash    string
	ResponseStatus int
	ResponseBody   []byte
	// CompletedAt is nil while the winning request is still executing; a
	// concurrent duplicate waits for it to be set and replays the response.
	CompletedAt *time.Time
	CreatedAt   time.Time
}

// Completed reports whether the stored response is ready to replay.
func (r *IdempotencyRecord) Completed() bool {
	return r.CompletedAt != nil
}
