package model

import (
	"time"

	"github.com/google/uuid"
)

// AuditEventModel mirrors the append-only 'audit_events' table.
type AuditEventModel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	OrgID     uuid.UUID  `gorm:"type:uuid;not null;index:idx_audit_org_created"`
	ActorID   *uuid.UUID `gorm:"type:uuid"`
	Event     string     `gorm:"type:varchar(60);not null"`
	Reason    string     `gorm:"type:text"`
	RequestID string     `gorm:"type:varchar(64)"`
	IPAddress string     `gorm:"type:varchar(45)"`
	Before    []byte     `gorm:"type:jsonb"`
	After     []byte     `gorm:"type:jsonb"`
	CreatedAt time.Time  `gorm:"index:idx_audit_org_created"`
}

// TableName explicitly sets the table name for GORM.
func (AuditEventModel) TableName() string {
	return "audit_events"
}
