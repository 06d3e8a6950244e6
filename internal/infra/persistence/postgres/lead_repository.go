package postgres

import (
	"context"
	"time"

	"jobdeck/internal/domain/entity"
	domainerrors "jobdeck/internal/domain/errors"
	"jobdeck/internal/domain/repository"
	"jobdeck/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const defaultLeadListLimit = 50

// leadRepository implements the domain.LeadRepository interface. Every query
// carries an explicit org predicate; the table's row-level policy against
// 'app.current_org' is the backstop, never the primary filter.
type leadRepository struct {
	db *gorm.DB
}

// NewLeadRepository is the constructor for leadRepository.
func NewLeadRepository(db *gorm.DB) repository.LeadRepository {
	return &leadRepository{db: db}
}

// Create persists a new lead in the given organization.
func (repo *leadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	leadM := fromLeadDomain(lead)

	if err := repo.db.WithContext(ctx).Create(leadM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("invalid organization reference")
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("missing required lead information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create lead")
	}

	lead.ID = leadM.ID
	lead.CreatedAt = leadM.CreatedAt
	lead.UpdatedAt = leadM.UpdatedAt

	return nil
}

// FindByID retrieves a lead by ID, scoped to the organization.
func (repo *leadRepository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*entity.Lead, error) {
	var leadM model.LeadModel
	if err := repo.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&leadM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrLeadNotFound
		}

		return nil, errors.WithStack(err)
	}

	return toLeadDomain(&leadM), nil
}

// ListByOrg lists leads for an organization, newest first.
func (repo *leadRepository) ListByOrg(ctx context.Context, orgID uuid.UUID, limit int) ([]*entity.Lead, error) {
	if limit <= 0 {
		limit = defaultLeadListLimit
	}

	var leadModels []*model.LeadModel
	if err := repo.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("created_at DESC").
		Limit(limit).
		Find(&leadModels).Error; err != nil {
		return nil, errors.WithStack(err)
	}

	leads := make([]*entity.Lead, 0, len(leadModels))
	for _, leadM := range leadModels {
		leads = append(leads, toLeadDomain(leadM))
	}

	return leads, nil
}

// UpdateStatus mutates the pipeline status, scoped to the organization.
func (repo *leadRepository) UpdateStatus(ctx context.Context, orgID, id uuid.UUID, status entity.LeadStatus) error {
	result := repo.db.WithContext(ctx).
		Model(&model.LeadModel{}).
		Where("org_id = ? AND id = ?", orgID, id).
		Updates(map[string]any{
			"status":     string(status),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update lead status")
	}
	if result.RowsAffected == 0 {
		return repository.ErrLeadNotFound
	}

	return nil
}

// --- Mapper Functions ---

func toLeadDomain(data *model.LeadModel) *entity.Lead {
	if data == nil {
		return nil
	}

	return &entity.Lead{
		ID:        data.ID,
		OrgID:     data.OrgID,
		Name:      data.Name,
		Email:     data.Email,
		Phone:     data.Phone,
		Status:    entity.LeadStatus(data.Status),
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
}

func fromLeadDomain(data *entity.Lead) *model.LeadModel {
	if data == nil {
		return nil
	}

	return &model.LeadModel{
		ID:        data.ID,
		OrgID:     data.OrgID,
		Name:      data.Name,
		Email:     data.Email,
		Phone:     data.Phone,
		Status:    string(data.Status),
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
}
