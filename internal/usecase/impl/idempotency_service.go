package impl

import (
	"context"
	"log/slog"
	"time"

	"jobdeck/config"
	deliverycontext "jobdeck/internal/delivery/context"
	"jobdeck/internal/domain/entity"
	domainerrors "jobdeck/internal/domain/errors"
	"jobdeck/internal/domain/repository"
	"jobdeck/internal/infra/obs"
	"jobdeck/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// idempotencyService implements the IdempotencyUsecase interface.
//
// The ledger claim runs on the base connection, outside the handler's
// transaction, so a concurrent duplicate sees the claim immediately.
type idempotencyService struct {
	idempotencyRepo repository.IdempotencyRepository
	metrics         *obs.Metrics
	waitTimeout     time.Duration
	pollInterval    time.Duration
	logger          *slog.Logger
}

// IdempotencyServiceParams holds dependencies for idempotencyService, injected by Fx.
type IdempotencyServiceParams struct {
	fx.In

	IdempotencyRepo repository.IdempotencyRepository
	Metrics         *obs.Metrics
	Config          *config.Config
	Logger          *slog.Logger
}

// NewIdempotencyService is the constructor for idempotencyService.
func NewIdempotencyService(params IdempotencyServiceParams) usecase.IdempotencyUsecase {
	return &idempotencyService{
		idempotencyRepo: params.IdempotencyRepo,
		metrics:         params.Metrics,
		waitTimeout:     params.Config.Idempotency.WaitTimeout,
		pollInterval:    params.Config.Idempotency.PollInterval,
		logger:          params.Logger,
	}
}

func (srv *idempotencyService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Execute claims the key and runs the handler, replays a completed identical
// request, rejects key reuse with a different body, and makes a concurrent
// duplicate wait for the winner's stored response.
func (srv *idempotencyService) Execute(ctx context.Context, req usecase.IdempotentRequest, handler usecase.IdempotentHandler) (*usecase.IdempotentResult, error) {
	deadline := time.Now().Add(srv.waitTimeout)

	for {
		record := &entity.IdempotencyRecord{
			OrgID:       req.OrgID,
			ActorID:     req.ActorID,
			Method:      req.Method,
			Path:        req.Path,
			Key:         req.Key,
			RequestHash: req.RequestHash,
		}

		err := srv.idempotencyRepo.Insert(ctx, record)
		if err == nil {
			return srv.runAsWinner(ctx, record, handler)
		}
		if !errors.Is(err, repository.ErrIdempotencyKeyTaken) {
			return nil, errors.Wrap(err, "failed to claim idempotency key")
		}

		result, retry, err := srv.resolveExisting(ctx, req, deadline)
		if err != nil || result != nil {
			return result, err
		}
		if !retry {
			return nil, domainerrors.ErrIdempotencyConflict.WrapMessage("duplicate request did not complete in time")
		}
		// The winner failed and released the key; claim again.
	}
}

// runAsWinner executes the handler under a held claim. A handler error
// releases the key so the client can retry.
func (srv *idempotencyService) runAsWinner(ctx context.Context, record *entity.IdempotencyRecord, handler usecase.IdempotentHandler) (*usecase.IdempotentResult, error) {
	status, body, err := handler(ctx)
	if err != nil {
		if delErr := srv.idempotencyRepo.Delete(ctx, record.ID); delErr != nil {
			srv.log(ctx).Error("Failed to release idempotency claim", slog.Any("error", delErr))
		}

		return nil, err
	}

	if err := srv.idempotencyRepo.Complete(ctx, record.ID, status, body); err != nil {
		return nil, errors.Wrap(err, "failed to complete idempotency record")
	}
	srv.metrics.IdempotencyOutcome.WithLabelValues("executed").Inc()

	return &usecase.IdempotentResult{Status: status, Body: body, Replayed: false}, nil
}

// resolveExisting handles a lost claim: replay a completed identical request,
// reject a body mismatch, or poll for the in-flight winner. The bool result
// asks the caller to retry the claim after the winner released it.
func (srv *idempotencyService) resolveExisting(ctx context.Context, req usecase.IdempotentRequest, deadline time.Time) (*usecase.IdempotentResult, bool, error) {
	for {
		existing, err := srv.idempotencyRepo.Find(ctx, req.OrgID, req.ActorID, req.Method, req.Path, req.Key)
		if errors.Is(err, repository.ErrIdempotencyRecordNotFound) {
			return nil, true, nil
		}
		if err != nil {
			return nil, false, errors.Wrap(err, "failed to load idempotency record")
		}

		if existing.RequestHash != req.RequestHash {
			srv.metrics.IdempotencyOutcome.WithLabelValues("conflict").Inc()

			return nil, false, domainerrors.ErrIdempotencyConflict
		}

		if existing.Completed() {
			srv.metrics.IdempotencyOutcome.WithLabelValues("replayed").Inc()
			srv.log(ctx).Info("Replaying idempotent response",
				slog.String("key", req.Key),
				slog.Int("status", existing.ResponseStatus),
			)

			return &usecase.IdempotentResult{
				Status:   existing.ResponseStatus,
				Body:     existing.ResponseBody,
				Replayed: true,
			}, false, nil
		}

		if time.Now().After(deadline) {
			return nil, false, nil
		}

		select {
		case <-ctx.Done():
			return nil, false, errors.Wrap(ctx.Err(), "canceled while waiting for idempotent winner")
		case <-time.After(srv.pollInterval):
		}
	}
}
