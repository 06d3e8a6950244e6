package entity

import (
	"time"

	"github.com/google/uuid"
)

// Organization is the tenancy boundary. Every org-owned row carries its id,
// and the storage layer enforces a row-level policy against it as a second
// line of defense behind explicit query filters.
type Organization struct {
	ID   uuid.UUID
	Name string
	// MFARequiredRoles lists the roles this organization refuses to issue
	// access tokens for unless the session carries a verified factor.
	MFARequiredRoles Roles
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// RequiresMFA reports whether the organization demands a verified factor
// for the given role.
func (o *Organization) RequiresMFA(role Role) bool {
	return o.MFARequiredRoles.Contains(role)
}
