package model

import (
	"time"

	"github.com/google/uuid"
)

// BreakGlassTokenModel mirrors the 'break_glass_tokens' table.
type BreakGlassTokenModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	OrgID      uuid.UUID `gorm:"type:uuid;not null;index"`
	ActorID    uuid.UUID `gorm:"type:uuid;not null"`
	Reason     string    `gorm:"type:text;not null"`
	TokenHash  string    `gorm:"type:varchar(255);unique;not null"`
	ExpiresAt  time.Time `gorm:"not null"`
	LastUsedAt *time.Time
	CreatedAt  time.Time
}

// TableName explicitly sets the table name for GORM.
func (BreakGlassTokenModel) TableName() string {
	return "break_glass_tokens"
}
