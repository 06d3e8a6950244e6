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

// sessionRepository implements the domain.SessionRepository interface.
type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository is the constructor for sessionRepository.
func NewSessionRepository(db *gorm.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

// Create persists a new session.
func (repo *sessionRepository) Create(ctx context.Context, session *entity.Session) error {
	sessionM := fromSessionDomain(session)

	if err := repo.db.WithContext(ctx).Create(sessionM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrConflict.WrapMessage("refresh token hash already exists")
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("invalid identity or organization reference")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create session")
	}

	session.ID = sessionM.ID
	session.CreatedAt = sessionM.CreatedAt

	return nil
}

// FindByID retrieves a session by its unique ID.
func (repo *sessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Session, error) {
	var sessionM model.SessionModel
	if err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&sessionM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrSessionNotFound
		}

		return nil, errors.WithStack(err)
	}

	return toSessionDomain(&sessionM), nil
}

// FindByRefreshHash retrieves the session owning a refresh-token hash.
// Revoked and expired sessions are returned as-is; the caller decides how a
// dead session affects the request (spending a rotated token is a revocation
// trigger, not a plain miss).
func (repo *sessionRepository) FindByRefreshHash(ctx context.Context, tokenHash string) (*entity.Session, error) {
	var sessionM model.SessionModel
	if err := repo.db.WithContext(ctx).
		Where("refresh_token_hash = ?", tokenHash).
		First(&sessionM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrSessionNotFound
		}

		return nil, errors.WithStack(err)
	}

	return toSessionDomain(&sessionM), nil
}

// FindActiveByIdentityID lists non-revoked, unexpired sessions for an identity
// within one organization. The org filter keeps cross-tenant callers from
// enumerating another tenant's sessions even when they hold a valid identity ID.
func (repo *sessionRepository) FindActiveByIdentityID(ctx context.Context, orgID, identityID uuid.UUID) ([]*entity.Session, error) {
	var sessionModels []*model.SessionModel
	if err := repo.db.WithContext(ctx).
		Where("org_id = ? AND identity_id = ? AND revoked = false AND refresh_expires_at > ?", orgID, identityID, time.Now()).
		Order("created_at DESC").
		Find(&sessionModels).Error; err != nil {
		return nil, errors.WithStack(err)
	}

	sessions := make([]*entity.Session, 0, len(sessionModels))
	for _, sessionM := range sessionModels {
		sessions = append(sessions, toSessionDomain(sessionM))
	}

	return sessions, nil
}

// Revoke marks one session revoked with a reason. Already-revoked sessions
// keep their original reason and timestamp.
func (repo *sessionRepository) Revoke(ctx context.Context, id uuid.UUID, reason string) error {
	result := repo.db.WithContext(ctx).
		Model(&model.SessionModel{}).
		Where("id = ? AND revoked = false", id).
		Updates(map[string]any{
			"revoked":        true,
			"revoked_reason": reason,
			"revoked_at":     time.Now(),
		})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to revoke session")
	}

	// Zero rows means the session was already revoked or never existed.
	// Both are acceptable for an idempotent revoke.
	return nil
}

// RevokeIfActive revokes one session and reports whether this statement won
// the flip. Under concurrent refreshes only one transaction's UPDATE matches
// the revoked = false predicate; the loser sees zero rows affected and must
// treat the token as already spent.
func (repo *sessionRepository) RevokeIfActive(ctx context.Context, id uuid.UUID, reason string) (bool, error) {
	result := repo.db.WithContext(ctx).
		Model(&model.SessionModel{}).
		Where("id = ? AND revoked = false", id).
		Updates(map[string]any{
			"revoked":        true,
			"revoked_reason": reason,
			"revoked_at":     time.Now(),
		})
	if result.Error != nil {
		return false, domainerrors.NewDatabaseExecuteError(result.Error, "failed to revoke session")
	}

	return result.RowsAffected > 0, nil
}

// RevokeAllForIdentity revokes every live session of an identity within one
// organization.
func (repo *sessionRepository) RevokeAllForIdentity(ctx context.Context, orgID, identityID uuid.UUID, reason string) error {
	if err := repo.db.WithContext(ctx).
		Model(&model.SessionModel{}).
		Where("org_id = ? AND identity_id = ? AND revoked = false", orgID, identityID).
		Updates(map[string]any{
			"revoked":        true,
			"revoked_reason": reason,
			"revoked_at":     time.Now(),
		}).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to revoke sessions")
	}

	return nil
}

// DeleteExpired removes sessions whose refresh window lapsed.
func (repo *sessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result := repo.db.WithContext(ctx).
		Where("refresh_expires_at < ?", time.Now()).
		Delete(&model.SessionModel{})
	if result.Error != nil {
		return 0, errors.WithStack(result.Error)
	}

	return result.RowsAffected, nil
}

// --- Mapper Functions ---

func toSessionDomain(data *model.SessionModel) *entity.Session {
	if data == nil {
		return nil
	}

	return &entity.Session{
		ID:               data.ID,
		IdentityID:       data.IdentityID,
		OrgID:            data.OrgID,
		Role:             entity.Role(data.Role),
		RefreshTokenHash: data.RefreshTokenHash,
		PredecessorID:    data.PredecessorID,
		MFAVerified:      data.MFAVerified,
		IssuedAt:         data.IssuedAt,
		ExpiresAt:        data.ExpiresAt,
		RefreshExpiresAt: data.RefreshExpiresAt,
		Revoked:          data.Revoked,
		RevokedReason:    data.RevokedReason,
		RevokedAt:        data.RevokedAt,
		CreatedAt:        data.CreatedAt,
	}
}

func fromSessionDomain(data *entity.Session) *model.SessionModel {
	if data == nil {
		return nil
	}

	return &model.SessionModel{
		ID:               data.ID,
		IdentityID:       data.IdentityID,
		OrgID:            data.OrgID,
		Role:             data.Role.String(),
		RefreshTokenHash: data.RefreshTokenHash,
		PredecessorID:    data.PredecessorID,
		MFAVerified:      data.MFAVerified,
		IssuedAt:         data.IssuedAt,
		ExpiresAt:        data.ExpiresAt,
		RefreshExpiresAt: data.RefreshExpiresAt,
		Revoked:          data.Revoked,
		RevokedReason:    data.RevokedReason,
		RevokedAt:        data.RevokedAt,
		CreatedAt:        data.CreatedAt,
	}
}
