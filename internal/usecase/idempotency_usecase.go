package usecase

import (
	"context"

	"github.com/google/uuid"
)

// IdempotentRequest identifies one deduplicated mutation. The logical key is
// (org, actor, method, path, client key); RequestHash detects key reuse with
// a different body.
type IdempotentRequest struct {
	OrgID       uuid.UUID
	ActorID     uuid.UUID
	Method      string
	Path        string
	Key         string
	RequestHash string
}

// IdempotentHandler executes the underlying mutation and returns the response
// to store and replay.
type IdempotentHandler func(ctx context.Context) (status int, body []byte, err error)

// IdempotentResult is what the route returns: either the fresh response or a
// byte-identical replay of the first execution.
type IdempotentResult struct {
	Status   int
	Body     []byte
	Replayed bool
}

// IdempotencyUsecase wraps dangerous mutations in the dedup ledger.
type IdempotencyUsecase interface {
	// Execute claims the key and runs the handler, or replays the stored
	// response when the key was already completed with the same body hash.
	// A concurrent duplicate waits for the winner's response. A completed key
	// with a different body hash is a conflict.
	Execute(ctx context.Context, req IdempotentRequest, handler IdempotentHandler) (*IdempotentResult, error)
}
