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

// idempotencyRepository implements the domain.IdempotencyRepository interface.
type idempotencyRepository struct {
	db *gorm.DB
}

// NewIdempotencyRepository is the constructor for idempotencyRepository.
func NewIdempotencyRepository(db *gorm.DB) repository.IdempotencyRepository {
	return &idempotencyRepository{db: db}
}

// Insert claims a key. The unique index over the scope tuple decides the race:
// exactly one of two concurrent duplicates gets the row.
func (repo *idempotencyRepository) Insert(ctx context.Context, record *entity.IdempotencyRecord) error {
	recordM := fromIdempotencyDomain(record)

	if err := repo.db.WithContext(ctx).Create(recordM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrIdempotencyKeyTaken
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to claim idempotency key")
	}

	record.ID = recordM.ID
	record.CreatedAt = recordM.CreatedAt

	return nil
}

// Find retrieves the record for a key tuple.
func (repo *idempotencyRepository) Find(ctx context.Context, orgID, actorID uuid.UUID, method, path, key string) (*entity.IdempotencyRecord, error) {
	var recordM model.IdempotencyRecordModel
	if err := repo.db.WithContext(ctx).
		Where("org_id = ? AND actor_id = ? AND method = ? AND path = ? AND key = ?",
			orgID, actorID, method, path, key).
		First(&recordM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrIdempotencyRecordNotFound
		}

		return nil, errors.WithStack(err)
	}

	return toIdempotencyDomain(&recordM), nil
}

// Complete stores the handler's response bytes and marks the record done.
func (repo *idempotencyRepository) Complete(ctx context.Context, id uuid.UUID, status int, body []byte) error {
	result := repo.db.WithContext(ctx).
		Model(&model.IdempotencyRecordModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"response_status": status,
			"response_body":   body,
			"completed_at":    time.Now(),
		})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to complete idempotency record")
	}
	if result.RowsAffected == 0 {
		return repository.ErrIdempotencyRecordNotFound
	}

	return nil
}

// Delete removes a claimed record whose handler failed, releasing the key.
func (repo *idempotencyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.IdempotencyRecordModel{}).Error; err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// --- Mapper Functions ---

func toIdempotencyDomain(data *model.IdempotencyRecordModel) *entity.IdempotencyRecord {
	if data == nil {
		return nil
	}

	return &entity.IdempotencyRecord{
		ID:             data.ID,
		OrgID:          data.OrgID,
		ActorID:        data.ActorID,
		Method:         data.Method,
		Path:           data.Path,
		Key:            data.Key,
		RequestHash:    data.RequestHash,
		ResponseStatus: data.ResponseStatus,
		ResponseBody:   data.ResponseBody,
		CompletedAt:    data.CompletedAt,
		CreatedAt:      data.CreatedAt,
	}
}

func fromIdempotencyDomain(data *entity.IdempotencyRecord) *model.IdempotencyRecordModel {
	if data == nil {
		return nil
	}

	return &model.IdempotencyRecordModel{
		ID:             data.ID,
		OrgID:          data.OrgID,
		ActorID:        data.ActorID,
		Method:         data.Method,
		Path:           data.Path,
		Key:            data.Key,
		RequestHash:    data.RequestHash,
		ResponseStatus: data.ResponseStatus,
		ResponseBody:   data.ResponseBody,
		CompletedAt:    data.CompletedAt,
		CreatedAt:      data.CreatedAt,
	}
}
