package impl

import (
	"context"
	"log/slog"
	"sync/atomic"

	"jobdeck/config"
	deliverycontext "jobdeck/internal/delivery/context"
	"jobdeck/internal/domain/entity"
	"jobdeck/internal/domain/repository"
	"jobdeck/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// readOnlyStore is an in-process flag store. The flag also persists through
// the audit trail, but the enforcement point is this in-memory bit so reads
// on the hot path never touch the database.
type readOnlyStore struct {
	enabled atomic.Bool
}

// NewReadOnlyStore builds the store, seeded from configuration.
func NewReadOnlyStore(cfg *config.Config) usecase.ReadOnlyStore {
	store := &readOnlyStore{}
	if cfg.Admin != nil {
		store.enabled.Store(cfg.Admin.ReadOnly)
	}

	return store
}

// Enabled reports whether mutations are currently rejected.
func (s *readOnlyStore) Enabled() bool {
	return s.enabled.Load()
}

// Set flips the flag.
func (s *readOnlyStore) Set(enabled bool) {
	s.enabled.Store(enabled)
}

// adminService implements the AdminUsecase interface.
type adminService struct {
	txManager     repository.TransactionManager
	auditRepo     repository.AuditRepository
	readOnlyStore usecase.ReadOnlyStore
	logger        *slog.Logger
}

// AdminServiceParams holds dependencies for adminService, injected by Fx.
type AdminServiceParams struct {
	fx.In

	TxManager     repository.TransactionManager
	AuditRepo     repository.AuditRepository
	ReadOnlyStore usecase.ReadOnlyStore
	Logger        *slog.Logger
}

// NewAdminService is the constructor for adminService.
func NewAdminService(params AdminServiceParams) usecase.AdminUsecase {
	return &adminService{
		txManager:     params.TxManager,
		auditRepo:     params.AuditRepo,
		readOnlyStore: params.ReadOnlyStore,
		logger:        params.Logger,
	}
}

func (srv *adminService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// SetReadOnly flips the read-only flag and records who did it and why.
func (srv *adminService) SetReadOnly(ctx context.Context, input usecase.SetReadOnlyInput) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		event := entity.AuditReadOnlyToggled
		after := []byte(`{"enabled":false}`)
		if input.Enabled {
			after = []byte(`{"enabled":true}`)
		}

		return repoFactory.NewAuditRepository().Append(ctx, &entity.AuditEvent{
			OrgID:     input.OrgID,
			ActorID:   &input.ActorID,
			Event:     event,
			Reason:    input.Reason,
			RequestID: input.RequestID,
			IPAddress: input.ClientIP,
			After:     after,
		})
	})
	if err != nil {
		return errors.Wrap(err, "failed to audit read-only toggle")
	}

	srv.readOnlyStore.Set(input.Enabled)
	srv.log(ctx).Warn("Read-only mode toggled",
		slog.Bool("enabled", input.Enabled),
		slog.Any("actorID", input.ActorID),
		slog.String("reason", input.Reason),
	)

	return nil
}

// ListAuditEvents returns recent audit rows for an organization.
func (srv *adminService) ListAuditEvents(ctx context.Context, orgID uuid.UUID, limit int) ([]*entity.AuditEvent, error) {
	events, err := srv.auditRepo.ListByOrg(ctx, orgID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list audit events")
	}

	return events, nil
}
