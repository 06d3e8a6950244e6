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

// identityRepository implements the domain.IdentityRepository interface.
type identityRepository struct {
	db *gorm.DB
}

// NewIdentityRepository is the constructor for identityRepository.
func NewIdentityRepository(db *gorm.DB) repository.IdentityRepository {
	return &identityRepository{db: db}
}

// Create persists a new identity.
func (repo *identityRepository) Create(ctx context.Context, identity *entity.Identity) error {
	identityM := fromIdentityDomain(identity)

	if err := repo.db.WithContext(ctx).Create(identityM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrConflict.WrapMessage("identity email already registered for this kind")
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("missing required identity information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create identity")
	}

	identity.ID = identityM.ID
	identity.CreatedAt = identityM.CreatedAt
	identity.UpdatedAt = identityM.UpdatedAt

	return nil
}

// FindByID retrieves an identity by its unique ID.
func (repo *identityRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Identity, error) {
	var identityM model.IdentityModel
	if err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&identityM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrIdentityNotFound
		}

		return nil, errors.WithStack(err)
	}

	return toIdentityDomain(&identityM), nil
}

// FindByEmail retrieves an identity by email within one identity kind.
func (repo *identityRepository) FindByEmail(ctx context.Context, kind entity.IdentityKind, email string) (*entity.Identity, error) {
	var identityM model.IdentityModel
	if err := repo.db.WithContext(ctx).
		Where("kind = ? AND email = ?", string(kind), email).
		First(&identityM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrIdentityNotFound
		}

		return nil, errors.WithStack(err)
	}

	return toIdentityDomain(&identityM), nil
}

// Update persists identity mutations.
func (repo *identityRepository) Update(ctx context.Context, identity *entity.Identity) error {
	identityM := fromIdentityDomain(identity)
	identityM.UpdatedAt = time.Now()

	result := repo.db.WithContext(ctx).
		Model(&model.IdentityModel{}).
		Where("id = ?", identity.ID).
		Updates(map[string]any{
			"name":       identityM.Name,
			"role":       identityM.Role,
			"status":     identityM.Status,
			"updated_at": identityM.UpdatedAt,
		})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update identity")
	}
	if result.RowsAffected == 0 {
		return repository.ErrIdentityNotFound
	}

	return nil
}

// credentialRepository implements the domain.CredentialRepository interface.
type credentialRepository struct {
	db *gorm.DB
}

// NewCredentialRepository is the constructor for credentialRepository.
func NewCredentialRepository(db *gorm.DB) repository.CredentialRepository {
	return &credentialRepository{db: db}
}

// Create persists a credential for an identity.
func (repo *credentialRepository) Create(ctx context.Context, credential *entity.Credential) error {
	credentialM := fromCredentialDomain(credential)

	if err := repo.db.WithContext(ctx).Create(credentialM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrConflict.WrapMessage("credential already exists for identity")
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("invalid identity reference")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create credential")
	}

	credential.ID = credentialM.ID
	credential.CreatedAt = credentialM.CreatedAt

	return nil
}

// FindByIdentityID retrieves the credential for an identity.
func (repo *credentialRepository) FindByIdentityID(ctx context.Context, identityID uuid.UUID) (*entity.Credential, error) {
	var credentialM model.CredentialModel
	if err := repo.db.WithContext(ctx).
		Where("identity_id = ?", identityID).
		First(&credentialM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCredentialNotFound
		}

		return nil, errors.WithStack(err)
	}

	return toCredentialDomain(&credentialM), nil
}

// UpdateHash replaces the stored hash for an identity.
func (repo *credentialRepository) UpdateHash(ctx context.Context, identityID uuid.UUID, hash string) error {
	result := repo.db.WithContext(ctx).
		Model(&model.CredentialModel{}).
		Where("identity_id = ?", identityID).
		Updates(map[string]any{
			"hash":       hash,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update credential hash")
	}
	if result.RowsAffected == 0 {
		return repository.ErrCredentialNotFound
	}

	return nil
}

// --- Mapper Functions ---

func toIdentityDomain(data *model.IdentityModel) *entity.Identity {
	if data == nil {
		return nil
	}

	return &entity.Identity{
		ID:        data.ID,
		Kind:      entity.IdentityKind(data.Kind),
		Email:     data.Email,
		Name:      data.Name,
		OrgID:     data.OrgID,
		Role:      entity.Role(data.Role),
		Status:    entity.IdentityStatus(data.Status),
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
}

func fromIdentityDomain(data *entity.Identity) *model.IdentityModel {
	if data == nil {
		return nil
	}

	return &model.IdentityModel{
		ID:        data.ID,
		Kind:      string(data.Kind),
		Email:     data.Email,
		Name:      data.Name,
		OrgID:     data.OrgID,
		Role:      data.Role.String(),
		Status:    string(data.Status),
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
}

func toCredentialDomain(data *model.CredentialModel) *entity.Credential {
	if data == nil {
		return nil
	}

	return &entity.Credential{
		ID:         data.ID,
		IdentityID: data.IdentityID,
		Hash:       data.Hash,
		UpdatedAt:  data.UpdatedAt,
		CreatedAt:  data.CreatedAt,
	}
}

func fromCredentialDomain(data *entity.Credential) *model.CredentialModel {
	if data == nil {
		return nil
	}

	return &model.CredentialModel{
		ID:         data.ID,
		IdentityID: data.IdentityID,
		Hash:       data.Hash,
		UpdatedAt:  data.UpdatedAt,
		CreatedAt:  data.CreatedAt,
	}
}
