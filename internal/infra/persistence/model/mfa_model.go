package model

import (
	"time"

	"github.com/google/uuid"
)

// MfaSecretModel mirrors the 'mfa_secrets' table.
type MfaSecretModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	IdentityID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Secret      string    `gorm:"type:varchar(64);not null"`
	State       string    `gorm:"type:varchar(20);not null;default:'pending'"`
	ConfirmedAt *time.Time
	CreatedAt   time.Time
}

// TableName explicitly sets the table name for GORM.
func (MfaSecretModel) TableName() string {
	return "mfa_secrets"
}
