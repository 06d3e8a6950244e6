// Package entity contains the core business objects of the auth core,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// IdentityKind distinguishes the account populations that authenticate
// against the platform. Each kind carries different credential and token
// shapes but shares the common surface (role, organization, sessions).
type IdentityKind string

const (
	// KindAdmin is an operator/admin account. Legacy admin accounts may have
	// no organization; they resolve to the configured default org.
	KindAdmin IdentityKind = "admin"
	// KindMember is a SaaS organization member (back-office user).
	KindMember IdentityKind = "member"
	// KindWorker is a field-worker portal account.
	KindWorker IdentityKind = "worker"
	// KindClient is an end-client contact authenticating via portal links.
	KindClient IdentityKind = "client"
)

// IdentityStatus is a soft lifecycle state. Identities are never hard-deleted
// so audit trails stay resolvable.
type IdentityStatus string

const (
	StatusActive   IdentityStatus = "active"
	StatusDisabled IdentityStatus = "disabled"
)

// Identity is the core account entity shared by all identity kinds.
type Identity struct {
	ID        uuid.UUID
	Kind      IdentityKind
	Email     string
	Name      string
	OrgID     *uuid.UUID // nil only for legacy admin accounts.
	Role      Role
	Status    IdentityStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive reports whether the identity may authenticate at all.
func (i *Identity) IsActive() bool {
	return i.Status == StatusActive
}

// Credential is the stored password credential for an identity. The hash
// string is self-describing: a leading scheme tag selects the verifier.
type Credential struct {
	ID         uuid.UUID
	IdentityID uuid.UUID
	Hash       string
	UpdatedAt  time.Time
	CreatedAt  time.Time
}
