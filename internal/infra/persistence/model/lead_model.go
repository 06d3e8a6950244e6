package model

import (
	"time"

	"github.com/google/uuid"
)

// LeadModel mirrors the 'leads' table. The table carries a row-level security
// policy keyed on the 'app.current_org' session variable as a safety net
// behind the repository's explicit org filters.
type LeadModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	OrgID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"type:varchar(255);not null"`
	Email     string    `gorm:"type:varchar(255)"`
	Phone     string    `gorm:"type:varchar(40)"`
	Status    string    `gorm:"type:varchar(20);not null;default:'new'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (LeadModel) TableName() string {
	return "leads"
}
