package postgres

import (
	"context"
	"strings"
	"time"

	"jobdeck/internal/domain/entity"
	domainerrors "jobdeck/internal/domain/errors"
	"jobdeck/internal/domain/repository"
	"jobdeck/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// organizationRepository implements the domain.OrganizationRepository interface.
type organizationRepository struct {
	db *gorm.DB
}

// NewOrganizationRepository is the constructor for organizationRepository.
func NewOrganizationRepository(db *gorm.DB) repository.OrganizationRepository {
	return &organizationRepository{db: db}
}

// Create persists a new organization.
func (repo *organizationRepository) Create(ctx context.Context, org *entity.Organization) error {
	orgM := fromOrganizationDomain(org)

	if err := repo.db.WithContext(ctx).Create(orgM).Error; err != nil {
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("missing required organization information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create organization")
	}

	org.ID = orgM.ID
	org.CreatedAt = orgM.CreatedAt
	org.UpdatedAt = orgM.UpdatedAt

	return nil
}

// FindByID retrieves an organization by its unique ID.
func (repo *organizationRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Organization, error) {
	var orgM model.OrganizationModel
	if err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&orgM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrOrganizationNotFound
		}

		return nil, errors.WithStack(err)
	}

	return toOrganizationDomain(&orgM), nil
}

// Update persists policy mutations.
func (repo *organizationRepository) Update(ctx context.Context, org *entity.Organization) error {
	result := repo.db.WithContext(ctx).
		Model(&model.OrganizationModel{}).
		Where("id = ?", org.ID).
		Updates(map[string]any{
			"name":               org.Name,
			"mfa_required_roles": joinRoles(org.MFARequiredRoles),
			"updated_at":         time.Now(),
		})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update organization")
	}
	if result.RowsAffected == 0 {
		return repository.ErrOrganizationNotFound
	}

	return nil
}

// --- Mapper Functions ---

func toOrganizationDomain(data *model.OrganizationModel) *entity.Organization {
	if data == nil {
		return nil
	}

	return &entity.Organization{
		ID:               data.ID,
		Name:             data.Name,
		MFARequiredRoles: splitRoles(data.MFARequiredRoles),
		CreatedAt:        data.CreatedAt,
		UpdatedAt:        data.UpdatedAt,
	}
}

func fromOrganizationDomain(data *entity.Organization) *model.OrganizationModel {
	if data == nil {
		return nil
	}

	return &model.OrganizationModel{
		ID:               data.ID,
		Name:             data.Name,
		MFARequiredRoles: joinRoles(data.MFARequiredRoles),
		CreatedAt:        data.CreatedAt,
		UpdatedAt:        data.UpdatedAt,
	}
}

func joinRoles(roles entity.Roles) string {
	return strings.Join(roles.ToStrings(), ",")
}

func splitRoles(s string) entity.Roles {
	if s == "" {
		return entity.Roles{}
	}

	return entity.RolesFromStrings(strings.Split(s, ","))
}
