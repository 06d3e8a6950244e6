// Package model defines the GORM data models mirroring the PostgreSQL schema.
package model

import (
	"time"

	"github.com/google/uuid"
)

// OrganizationModel mirrors the 'organizations' table.
type OrganizationModel struct {
	ID   uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	Name string    `gorm:"type:varchar(255);not null"`
	// MFARequiredRoles is a comma-separated role list. Parsed into the domain
	// slice by the repository mapper.
	MFARequiredRoles string `gorm:"type:text;not null;default:''"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName explicitly sets the table name for GORM.
func (OrganizationModel) TableName() string {
	return "organizations"
}
