package entity

import "slices"

// Role represents the fixed role a single identity holds within its
// organization. Permission sets are static per role.
type Role string

const (
	// RoleOwner is the organization owner; the only role allowed to disable
	// MFA or toggle read-only mode.
	RoleOwner Role = "owner"
	// RoleAdmin is an organization administrator.
	RoleAdmin Role = "admin"
	// RoleDispatcher schedules jobs and manages leads.
	RoleDispatcher Role = "dispatcher"
	// RoleFinance handles invoicing and payment records.
	RoleFinance Role = "finance"
	// RoleViewer has read access with field-level masking applied downstream.
	RoleViewer Role = "viewer"
	// RoleWorker is the restricted field-worker portal role.
	RoleWorker Role = "worker"
	// RoleClient is the client portal role (magic-link users).
	RoleClient Role = "client"
)

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the Role is a valid value.
func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleDispatcher, RoleFinance, RoleViewer, RoleWorker, RoleClient:
		return true
	default:
		return false
	}
}

// Privileged reports whether the role may touch the admin surface at all.
func (r Role) Privileged() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleDispatcher, RoleFinance, RoleViewer:
		return true
	default:
		return false
	}
}

// Roles is a slice of Role for convenience.
type Roles []Role

// Contains checks if the roles slice contains a specific role.
func (rs Roles) Contains(role Role) bool {
	return slices.Contains(rs, role)
}

// ToStrings converts Roles to []string for JWT and config compatibility.
func (rs Roles) ToStrings() []string {
	result := make([]string, len(rs))
	for i, r := range rs {
		result[i] = r.String()
	}

	return result
}

// RolesFromStrings converts []string to Roles, filtering out invalid values.
func RolesFromStrings(ss []string) Roles {
	result := make(Roles, 0, len(ss))
	for _, s := range ss {
		role := Role(s)
		if role.IsValid() {
			result = append(result, role)
		}
	}

	return result
}
