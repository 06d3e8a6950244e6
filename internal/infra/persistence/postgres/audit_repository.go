package postgres

import (
	"context"

	"jobdeck/internal/domain/entity"
	domainerrors "jobdeck/internal/domain/errors"
	"jobdeck/internal/domain/repository"
	"jobdeck/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const defaultAuditListLimit = 100

// auditRepository implements the domain.AuditRepository interface.
type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository is the constructor for auditRepository.
func NewAuditRepository(db *gorm.DB) repository.AuditRepository {
	return &auditRepository{db: db}
}

// Append persists one audit event.
func (repo *auditRepository) Append(ctx context.Context, event *entity.AuditEvent) error {
	eventM := fromAuditDomain(event)

	if err := repo.db.WithContext(ctx).Create(eventM).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to append audit event")
	}

	event.ID = eventM.ID
	event.CreatedAt = eventM.CreatedAt

	return nil
}

// ListByOrg returns recent events for an organization, newest first.
func (repo *auditRepository) ListByOrg(ctx context.Context, orgID uuid.UUID, limit int) ([]*entity.AuditEvent, error) {
	if limit <= 0 {
		limit = defaultAuditListLimit
	}

	var eventModels []*model.AuditEventModel
	if err := repo.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("created_at DESC").
		Limit(limit).
		Find(&eventModels).Error; err != nil {
		return nil, errors.WithStack(err)
	}

	events := make([]*entity.AuditEvent, 0, len(eventModels))
	for _, eventM := range eventModels {
		events = append(events, toAuditDomain(eventM))
	}

	return events, nil
}

// --- Mapper Functions ---

func toAuditDomain(data *model.AuditEventModel) *entity.AuditEvent {
	if data == nil {
		return nil
	}

	return &entity.AuditEvent{
		ID:        data.ID,
		OrgID:     data.OrgID,
		ActorID:   data.ActorID,
		Event:     data.Event,
		Reason:    data.Reason,
		RequestID: data.RequestID,
		IPAddress: data.IPAddress,
		Before:    data.Before,
		After:     data.After,
		CreatedAt: data.CreatedAt,
	}
}

func fromAuditDomain(data *entity.AuditEvent) *model.AuditEventModel {
	if data == nil {
		return nil
	}

	return &model.AuditEventModel{
		ID:        data.ID,
		OrgID:     data.OrgID,
		ActorID:   data.ActorID,
		Event:     data.Event,
		Reason:    data.Reason,
		RequestID: data.RequestID,
		IPAddress: data.IPAddress,
		Before:    data.Before,
		After:     data.After,
		CreatedAt: data.CreatedAt,
	}
}
