package model

import (
	"time"

	"github.com/google/uuid"
)

// IdempotencyRecordModel mirrors the 'idempotency_records' table. The unique
// index over the logical key makes the insert race safe: exactly one of two
// concurrent duplicates wins the claim.
type IdempotencyRecordModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	OrgID          uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_idem_scope_key"`
	ActorID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_idem_scope_key"`
	Method         string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_idem_scope_key"`
	Path           string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_idem_scope_key"`
	Key            string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_idem_scope_key"`
	RequestHash    string    `gorm:"type:varchar(64);not null"`
	ResponseStatus int
	ResponseBody   []byte `gorm:"type:bytea"`
	CompletedAt    *time.Time
	CreatedAt      time.Time
}

// TableName explicitly sets the table name for GORM.
func (IdempotencyRecordModel) TableName() string {
	return "idempotency_records"
}
