package usecase

import (
	"context"
	"time"

	"jobdeck/internal/domain/entity"

	"github.com/google/uuid"
)

// StartBreakGlassInput mints a time-boxed emergency token. Reason is
// mandatory; it is copied onto every audit row written under the token.
type StartBreakGlassInput struct {
	OrgID     uuid.UUID
	ActorID   uuid.UUID
	Reason    string
	TTL       time.Duration
	ClientIP  string
	RequestID string
}

// StartBreakGlassOutput carries the raw token, returned exactly once in a
// response header and never persisted or logged.
type StartBreakGlassOutput struct {
	Token     string
	ExpiresAt time.Time
}

// BreakGlassUsecase manages emergency access tokens.
type BreakGlassUsecase interface {
	// Start mints a new token. The requested TTL is capped by configuration;
	// there is no extend operation.
	Start(ctx context.Context, input StartBreakGlassInput) (*StartBreakGlassOutput, error)

	// Validate checks a presented raw token and returns its record when the
	// token is live. Expired or unknown tokens fail closed.
	Validate(ctx context.Context, rawToken string) (*entity.BreakGlassToken, error)

	// RecordUse stamps the token and appends an audit row naming the write
	// performed under it.
	RecordUse(ctx context.Context, token *entity.BreakGlassToken, action, requestID, clientIP string) error
}
