package repository

import (
	"context"
	"time"

	"jobdeck/internal/domain/entity"

	"github.com/pkg/errors"
)

// ErrBreakGlassNotFound is returned when no token matches the presented hash.
var ErrBreakGlassNotFound = errors.New("break-glass token not found")

// BreakGlassRepository persists emergency-access tokens. Tokens are stored
// hashed; expiry is enforced at read time, there is no update path besides
// recording use.
type BreakGlassRepository interface {
	// Create persists a newly minted token.
	Create(ctx context.Context, token *entity.BreakGlassToken) error

	// FindByHash retrieves a token by its hash.
	FindByHash(ctx context.Context, tokenHash string) (*entity.BreakGlassToken, error)

	// TouchUsed records that a privileged write was performed under the token.
	TouchUsed(ctx context.Context, tokenHash string, at time.Time) error
}
