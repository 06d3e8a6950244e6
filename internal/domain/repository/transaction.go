// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers
// and the infrastructure layer.
package repository

import "context"

// TransactionManager defines the interface for managing database transactions.
// This allows the use case layer to handle transactions without depending on a
// specific DB driver like GORM.
//
// Implementations must read the resolved org scope from ctx and push it into
// the storage session at transaction start, so the storage layer's row-level
// isolation policy can act as a second line of defense. Repositories still
// filter explicitly by organization; the policy is a safety net, never the
// primary mechanism.
type TransactionManager interface {
	// Execute runs a function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// Otherwise, it's committed. All repository operations within the
	// function use the same database transaction.
	Execute(ctx context.Context, fn func(txRepoFactory RepositoryFactory) error) error
}

// RepositoryFactory provides repository instances bound to one transaction.
type RepositoryFactory interface {
	// NewIdentityRepository returns an IdentityRepository bound to the current transaction.
	NewIdentityRepository() IdentityRepository

	// NewCredentialRepository returns a CredentialRepository bound to the current transaction.
	NewCredentialRepository() CredentialRepository

	// NewSessionRepository returns a SessionRepository bound to the current transaction.
	NewSessionRepository() SessionRepository

	// NewOrganizationRepository returns an OrganizationRepository bound to the current transaction.
	NewOrganizationRepository() OrganizationRepository

	// NewBreakGlassRepository returns a BreakGlassRepository bound to the current transaction.
	NewBreakGlassRepository() BreakGlassRepository

	// NewIdempotencyRepository returns an IdempotencyRepository bound to the current transaction.
	NewIdempotencyRepository() IdempotencyRepository

	// NewMfaRepository returns an MfaRepository bound to the current transaction.
	NewMfaRepository() MfaRepository

	// NewAuditRepository returns an AuditRepository bound to the current transaction.
	NewAuditRepository() AuditRepository

	// NewLeadRepository returns a LeadRepository bound to the current transaction.
	NewLeadRepository() LeadRepository
}
