package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"jobdeck/config"
	deliverycontext "jobdeck/internal/delivery/context"
	"jobdeck/internal/domain/entity"
	domainerrors "jobdeck/internal/domain/errors"
	"jobdeck/internal/domain/repository"
	"jobdeck/internal/domain/service"
	"jobdeck/internal/infra/obs"
	"jobdeck/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// breakGlassService implements the BreakGlassUsecase interface.
type breakGlassService struct {
	txManager      repository.TransactionManager
	breakGlassRepo repository.BreakGlassRepository
	tokenService   service.TokenService
	metrics        *obs.Metrics
	maxTTL         time.Duration
	logger         *slog.Logger
}

// BreakGlassServiceParams holds dependencies for breakGlassService, injected by Fx.
type BreakGlassServiceParams struct {
	fx.In

	TxManager      repository.TransactionManager
	BreakGlassRepo repository.BreakGlassRepository
	TokenService   service.TokenService
	Metrics        *obs.Metrics
	Config         *config.Config
	Logger         *slog.Logger
}

// NewBreakGlassService is the constructor for breakGlassService.
func NewBreakGlassService(params BreakGlassServiceParams) usecase.BreakGlassUsecase {
	return &breakGlassService{
		txManager:      params.TxManager,
		breakGlassRepo: params.BreakGlassRepo,
		tokenService:   params.TokenService,
		metrics:        params.Metrics,
		maxTTL:         params.Config.Admin.BreakGlassMaxTTL,
		logger:         params.Logger,
	}
}

func (srv *breakGlassService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Start mints a new emergency token. The reason is mandatory and the TTL is
// capped by configuration. The raw token leaves this function exactly once.
func (srv *breakGlassService) Start(ctx context.Context, input usecase.StartBreakGlassInput) (*usecase.StartBreakGlassOutput, error) {
	if strings.TrimSpace(input.Reason) == "" {
		return nil, domainerrors.ErrBreakGlassReasonRequired
	}

	ttl := input.TTL
	if ttl <= 0 || ttl > srv.maxTTL {
		ttl = srv.maxTTL
	}

	raw, hash, err := srv.tokenService.NewRefreshToken()
	if err != nil {
		return nil, errors.Wrap(err, "failed to mint break-glass token")
	}

	expiresAt := time.Now().Add(ttl)

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.NewBreakGlassRepository().Create(ctx, &entity.BreakGlassToken{
			OrgID:     input.OrgID,
			ActorID:   input.ActorID,
			Reason:    input.Reason,
			TokenHash: hash,
			ExpiresAt: expiresAt,
		}); err != nil {
			return errors.Wrap(err, "failed to store break-glass token")
		}

		return repoFactory.NewAuditRepository().Append(ctx, &entity.AuditEvent{
			OrgID:     input.OrgID,
			ActorID:   &input.ActorID,
			Event:     entity.AuditBreakGlassMinted,
			Reason:    input.Reason,
			RequestID: input.RequestID,
			IPAddress: input.ClientIP,
		})
	})
	if err != nil {
		return nil, err
	}

	srv.metrics.BreakGlassMinted.Inc()
	srv.log(ctx).Warn("Break-glass token minted",
		slog.Any("orgID", input.OrgID),
		slog.Any("actorID", input.ActorID),
		slog.String("reason", input.Reason),
		slog.Time("expiresAt", expiresAt),
	)

	return &usecase.StartBreakGlassOutput{Token: raw, ExpiresAt: expiresAt}, nil
}

// Validate checks a presented raw token. Expired and unknown tokens both fail
// with the same error so probing cannot distinguish them.
func (srv *breakGlassService) Validate(ctx context.Context, rawToken string) (*entity.BreakGlassToken, error) {
	if rawToken == "" {
		return nil, domainerrors.ErrBreakGlassInvalid
	}

	token, err := srv.breakGlassRepo.FindByHash(ctx, srv.tokenService.HashToken(rawToken))
	if errors.Is(err, repository.ErrBreakGlassNotFound) {
		return nil, domainerrors.ErrBreakGlassInvalid
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to look up break-glass token")
	}

	if !token.Valid(time.Now()) {
		return nil, domainerrors.ErrBreakGlassInvalid
	}

	return token, nil
}

// RecordUse stamps the token and appends the audit row naming the privileged
// write performed under it. Every such row carries the mint reason.
func (srv *breakGlassService) RecordUse(ctx context.Context, token *entity.BreakGlassToken, action, requestID, clientIP string) error {
	return srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		now := time.Now()
		if err := repoFactory.NewBreakGlassRepository().TouchUsed(ctx, token.TokenHash, now); err != nil {
			return errors.Wrap(err, "failed to stamp break-glass use")
		}

		return repoFactory.NewAuditRepository().Append(ctx, &entity.AuditEvent{
			OrgID:     token.OrgID,
			ActorID:   &token.ActorID,
			Event:     entity.AuditBreakGlassWrite,
			Reason:    token.Reason,
			RequestID: requestID,
			IPAddress: clientIP,
			After:     []byte(`{"action":"` + action + `"}`),
		})
	})
}
