package model

import (
	"time"

	"github.com/google/uuid"
)

// IdentityModel mirrors the 'identities' table. OrgID is nullable only for
// legacy admin accounts imported before tenancy was mandatory.
type IdentityModel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	Kind      string     `gorm:"type:varchar(20);not null;uniqueIndex:idx_identities_kind_email"`
	Email     string     `gorm:"type:varchar(255);not null;uniqueIndex:idx_identities_kind_email"`
	Name      string     `gorm:"type:varchar(255);not null"`
	OrgID     *uuid.UUID `gorm:"type:uuid;index"`
	Role      string     `gorm:"type:varchar(20);not null"`
	Status    string     `gorm:"type:varchar(20);not null;default:'active'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (IdentityModel) TableName() string {
	return "identities"
}

// CredentialModel mirrors the 'credentials' table. The hash string is
// self-describing; the scheme tag selects the verifier.
type CredentialModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	IdentityID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Hash       string    `gorm:"type:varchar(512);not null"`
	UpdatedAt  time.Time
	CreatedAt  time.Time
}

// TableName explicitly sets the table name for GORM.
func (CredentialModel) TableName() string {
	return "credentials"
}
