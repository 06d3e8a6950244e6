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
	"gorm.io/gorm/clause"
)

// mfaRepository implements the domain.MfaRepository interface.
type mfaRepository struct {
	db *gorm.DB
}

// NewMfaRepository is the constructor for mfaRepository.
func NewMfaRepository(db *gorm.DB) repository.MfaRepository {
	return &mfaRepository{db: db}
}

// Upsert creates or replaces the pending secret for an identity.
func (repo *mfaRepository) Upsert(ctx context.Context, secret *entity.MfaSecret) error {
	secretM := fromMfaDomain(secret)

	if err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "identity_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"secret", "state", "confirmed_at"}),
		}).
		Create(secretM).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to upsert mfa secret")
	}

	secret.ID = secretM.ID
	secret.CreatedAt = secretM.CreatedAt

	return nil
}

// FindByIdentityID retrieves the enrollment for an identity.
func (repo *mfaRepository) FindByIdentityID(ctx context.Context, identityID uuid.UUID) (*entity.MfaSecret, error) {
	var secretM model.MfaSecretModel
	if err := repo.db.WithContext(ctx).
		Where("identity_id = ?", identityID).
		First(&secretM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrMfaSecretNotFound
		}

		return nil, errors.WithStack(err)
	}

	return toMfaDomain(&secretM), nil
}

// Update persists state transitions.
func (repo *mfaRepository) Update(ctx context.Context, secret *entity.MfaSecret) error {
	result := repo.db.WithContext(ctx).
		Model(&model.MfaSecretModel{}).
		Where("identity_id = ?", secret.IdentityID).
		Updates(map[string]any{
			"state":        string(secret.State),
			"confirmed_at": secret.ConfirmedAt,
		})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update mfa secret")
	}
	if result.RowsAffected == 0 {
		return repository.ErrMfaSecretNotFound
	}

	return nil
}

// Delete destroys the enrollment.
func (repo *mfaRepository) Delete(ctx context.Context, identityID uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Where("identity_id = ?", identityID).
		Delete(&model.MfaSecretModel{})
	if result.Error != nil {
		return errors.WithStack(result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrMfaSecretNotFound
	}

	return nil
}

// --- Mapper Functions ---

func toMfaDomain(data *model.MfaSecretModel) *entity.MfaSecret {
	if data == nil {
		return nil
	}

	return &entity.MfaSecret{
		ID:          data.ID,
		IdentityID:  data.IdentityID,
		Secret:      data.Secret,
		State:       entity.MfaState(data.State),
		ConfirmedAt: data.ConfirmedAt,
		CreatedAt:   data.CreatedAt,
	}
}

func fromMfaDomain(data *entity.MfaSecret) *model.MfaSecretModel {
	if data == nil {
		return nil
	}

	return &model.MfaSecretModel{
		ID:          data.ID,
		IdentityID:  data.IdentityID,
		Secret:      data.Secret,
		State:       string(data.State),
		ConfirmedAt: data.ConfirmedAt,
		CreatedAt:   data.CreatedAt,
	}
}
