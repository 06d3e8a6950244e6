package entity

import (
	"time"

	"github.com/google/uuid"
)

// BreakGlassToken is a time-boxed emergency credential scoped to a single
// organization. The raw token is delivered exactly once in a response header;
// only its hash is stored. There is no extend operation: a new token must be
// minted when one expires.
type BreakGlassToken struct {
	ID        uuid.UUID
	OrgID     uuid.UUID
	ActorID   uuid.UUID
	Reason    string
	TokenHash string
	ExpiresAt time.Time
	// LastUsedAt records the most recent privileged write performed under
	// this token, for the incident timeline.
	LastUsedAt *time.Time
	CreatedAt  time.Time
}

// Valid reports whether the token may still authorize emergency writes.
func (t *BreakGlassToken) Valid(now time.Time) bool {
	return now.Before(t.ExpiresAt)
}
