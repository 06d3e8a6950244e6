package postgres

import (
	"context"
	"time"

	"jobdeck/internal/domain/entity"
	domainerrors "jobdeck/internal/domain/errors"
	"jobdeck/internal/domain/repository"
	"jobdeck/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// breakGlassRepository implements the domain.BreakGlassRepository interface.
type breakGlassRepository struct {
	db *gorm.DB
}

// NewBreakGlassRepository is the constructor for breakGlassRepository.
func NewBreakGlassRepository(db *gorm.DB) repository.BreakGlassRepository {
	return &breakGlassRepository{db: db}
}

// Create persists a newly minted token.
func (repo *breakGlassRepository) Create(ctx context.Context, token *entity.BreakGlassToken) error {
	tokenM := fromBreakGlassDomain(token)

	if err := repo.db.WithContext(ctx).Create(tokenM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrConflict.WrapMessage("break-glass token hash already exists")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create break-glass token")
	}

	token.ID = tokenM.ID
	token.CreatedAt = tokenM.CreatedAt

	return nil
}

// FindByHash retrieves a token by its hash.
func (repo *breakGlassRepository) FindByHash(ctx context.Context, tokenHash string) (*entity.BreakGlassToken, error) {
	var tokenM model.BreakGlassTokenModel
	if err := repo.db.WithContext(ctx).
		Where("token_hash = ?", tokenHash).
		First(&tokenM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrBreakGlassNotFound
		}

		return nil, errors.WithStack(err)
	}

	return toBreakGlassDomain(&tokenM), nil
}

// TouchUsed records that a privileged write was performed under the token.
func (repo *breakGlassRepository) TouchUsed(ctx context.Context, tokenHash string, at time.Time) error {
	result := repo.db.WithContext(ctx).
		Model(&model.BreakGlassTokenModel{}).
		Where("token_hash = ?", tokenHash).
		Update("last_used_at", at)
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to record break-glass use")
	}
	if result.RowsAffected == 0 {
		return repository.ErrBreakGlassNotFound
	}

	return nil
}

// --- Mapper Functions ---

func toBreakGlassDomain(data *model.BreakGlassTokenModel) *entity.BreakGlassToken {
	if data == nil {
		return nil
	}

	return &entity.BreakGlassToken{
		ID:         data.ID,
		OrgID:      data.OrgID,
		ActorID:    data.ActorID,
		Reason:     data.Reason,
		TokenHash:  data.TokenHash,
		ExpiresAt:  data.ExpiresAt,
		LastUsedAt: data.LastUsedAt,
		CreatedAt:  data.CreatedAt,
	}
}

func fromBreakGlassDomain(data *entity.BreakGlassToken) *model.BreakGlassTokenModel {
	if data == nil {
		return nil
	}

	return &model.BreakGlassTokenModel{
		ID:         data.ID,
		OrgID:      data.OrgID,
		ActorID:    data.ActorID,
		Reason:     data.Reason,
		TokenHash:  data.TokenHash,
		ExpiresAt:  data.ExpiresAt,
		LastUsedAt: data.LastUsedAt,
		CreatedAt:  data.CreatedAt,
	}
}
