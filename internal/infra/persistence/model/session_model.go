package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionModel mirrors the 'sessions' table. Only the refresh token hash is
// stored; the raw token never touches the database.
type SessionModel struct {
	ID               uuid.UUID  `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	IdentityID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	OrgID            uuid.UUID  `gorm:"type:uuid;not null;index"`
	Role             string     `gorm:"type:varchar(20);not null"`
	RefreshTokenHash string     `gorm:"type:varchar(255);unique;not null"`
	PredecessorID    *uuid.UUID `gorm:"type:uuid"`
	MFAVerified      bool       `gorm:"not null;default:false"`
	IssuedAt         time.Time  `gorm:"not null"`
	ExpiresAt        time.Time  `gorm:"not null"`
	RefreshExpiresAt time.Time  `gorm:"not null"`
	Revoked          bool       `gorm:"not null;default:false"`
	RevokedReason    string     `gorm:"type:varchar(40)"`
	RevokedAt        *time.Time
	CreatedAt        time.Time
}

// TableName explicitly sets the table name for GORM.
func (SessionModel) TableName() string {
	return "sessions"
}
