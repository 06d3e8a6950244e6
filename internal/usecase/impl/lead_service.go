package impl

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	deliverycontext "jobdeck/internal/delivery/context"
	"jobdeck/internal/domain/entity"
	domainerrors "jobdeck/internal/domain/errors"
	"jobdeck/internal/domain/repository"
	"jobdeck/internal/domain/service"
	"jobdeck/internal/usecase"
	"jobdeck/internal/util"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// leadService implements the LeadUsecase interface.
type leadService struct {
	txManager repository.TransactionManager
	leadRepo  repository.LeadRepository
	resolver  *service.PermissionResolver
	logger    *slog.Logger
}

// LeadServiceParams holds dependencies for leadService, injected by Fx.
type LeadServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	LeadRepo  repository.LeadRepository
	Resolver  *service.PermissionResolver
	Logger    *slog.Logger
}

// NewLeadService is the constructor for leadService.
func NewLeadService(params LeadServiceParams) usecase.LeadUsecase {
	return &leadService{
		txManager: params.TxManager,
		leadRepo:  params.LeadRepo,
		resolver:  params.Resolver,
		logger:    params.Logger,
	}
}

func (srv *leadService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Create persists a new lead in the caller's organization.
func (srv *leadService) Create(ctx context.Context, input usecase.CreateLeadInput) (*usecase.LeadView, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("lead name is required")
	}

	lead := &entity.Lead{
		OrgID:  input.OrgID,
		Name:   input.Name,
		Email:  input.Email,
		Phone:  input.Phone,
		Status: entity.LeadNew,
	}

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		return repoFactory.NewLeadRepository().Create(ctx, lead)
	})
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Lead created", slog.Any("orgID", input.OrgID), slog.Any("leadID", lead.ID))

	return srv.view(lead, input.Role), nil
}

// Get retrieves one lead, masked for the caller's role.
func (srv *leadService) Get(ctx context.Context, orgID uuid.UUID, role entity.Role, leadID uuid.UUID) (*usecase.LeadView, error) {
	lead, err := srv.leadRepo.FindByID(ctx, orgID, leadID)
	if errors.Is(err, repository.ErrLeadNotFound) {
		return nil, domainerrors.ErrLeadNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load lead")
	}

	return srv.view(lead, role), nil
}

// List lists leads in the caller's organization, masked for the role.
func (srv *leadService) List(ctx context.Context, orgID uuid.UUID, role entity.Role, limit int) ([]*usecase.LeadView, error) {
	leads, err := srv.leadRepo.ListByOrg(ctx, orgID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list leads")
	}

	views := make([]*usecase.LeadView, 0, len(leads))
	for _, lead := range leads {
		views = append(views, srv.view(lead, role))
	}

	return views, nil
}

// UpdateStatus mutates the pipeline status with before/after audit snapshots.
func (srv *leadService) UpdateStatus(ctx context.Context, input usecase.UpdateLeadStatusInput) (*usecase.LeadView, error) {
	if !input.Status.IsValid() {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("unknown lead status")
	}

	var updated *entity.Lead
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		leadRepo := repoFactory.NewLeadRepository()

		before, err := leadRepo.FindByID(ctx, input.OrgID, input.LeadID)
		if errors.Is(err, repository.ErrLeadNotFound) {
			return domainerrors.ErrLeadNotFound
		}
		if err != nil {
			return errors.Wrap(err, "failed to load lead for update")
		}

		if err := leadRepo.UpdateStatus(ctx, input.OrgID, input.LeadID, input.Status); err != nil {
			return errors.Wrap(err, "failed to update lead status")
		}

		after := *before
		after.Status = input.Status
		after.UpdatedAt = time.Now()
		updated = &after

		beforeJSON, _ := json.Marshal(map[string]string{"status": string(before.Status)})
		afterJSON, _ := json.Marshal(map[string]string{"status": string(after.Status)})

		return repoFactory.NewAuditRepository().Append(ctx, &entity.AuditEvent{
			OrgID:     input.OrgID,
			ActorID:   &input.ActorID,
			Event:     entity.AuditLeadStatusChanged,
			RequestID: input.RequestID,
			IPAddress: input.ClientIP,
			Before:    beforeJSON,
			After:     afterJSON,
		})
	})
	if err != nil {
		return nil, err
	}

	return srv.view(updated, input.Role), nil
}

// view serializes a lead applying the role's masking level.
func (srv *leadService) view(lead *entity.Lead, role entity.Role) *usecase.LeadView {
	email := lead.Email
	phone := lead.Phone
	if srv.resolver.Masking(role) == service.MaskPartial {
		email = util.MaskEmail(email)
		phone = util.MaskPhone(phone)
	}

	return &usecase.LeadView{
		ID:        lead.ID,
		Name:      lead.Name,
		Email:     email,
		Phone:     phone,
		Status:    string(lead.Status),
		CreatedAt: lead.CreatedAt.Format(time.RFC3339),
	}
}
