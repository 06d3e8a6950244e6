package entity

import (
	"time"

	"github.com/google/uuid"
)

// LeadStatus is the pipeline state of a sales lead.
type LeadStatus string

const (
	LeadNew       LeadStatus = "new"
	LeadContacted LeadStatus = "contacted"
	LeadBooked    LeadStatus = "booked"
	LeadClosed    LeadStatus = "closed"
)

// IsValid checks if the LeadStatus is a valid value.
func (s LeadStatus) IsValid() bool {
	switch s {
	case LeadNew, LeadContacted, LeadBooked, LeadClosed:
		return true
	default:
		return false
	}
}

// Lead is the minimal org-owned business row the admin surface manages. It
// exists in this core as the subject of org filtering, idempotent mutation,
// and viewer-level field masking.
type Lead struct {
	ID        uuid.UUID
	OrgID     uuid.UUID
	Name      string
	Email     string
	Phone     string
	Status    LeadStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
