// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"
	"fmt"

	"jobdeck/internal/domain/repository"

	"gorm.io/gorm"
)

// gormTransactionManager implements the domain's TransactionManager interface using GORM.
type gormTransactionManager struct {
	db *gorm.DB
}

// gormRepositoryFactory implements the domain's RepositoryFactory interface.
// It holds a specific GORM transaction object (*gorm.Tx) and uses it to create
// repository instances that are bound to that single transaction.
type gormRepositoryFactory struct {
	tx *gorm.DB // In GORM, a transaction object *gorm.Tx is also a *gorm.DB
}

// NewIdentityRepository creates an identity repository bound to the transaction.
func (f *gormRepositoryFactory) NewIdentityRepository() repository.IdentityRepository {
	return NewIdentityRepository(f.tx)
}

// NewCredentialRepository creates a credential repository bound to the transaction.
func (f *gormRepositoryFactory) NewCredentialRepository() repository.CredentialRepository {
	return NewCredentialRepository(f.tx)
}

// NewSessionRepository creates a session repository bound to the transaction.
func (f *gormRepositoryFactory) NewSessionRepository() repository.SessionRepository {
	return NewSessionRepository(f.tx)
}

// NewOrganizationRepository creates an organization repository bound to the transaction.
func (f *gormRepositoryFactory) NewOrganizationRepository() repository.OrganizationRepository {
	return NewOrganizationRepository(f.tx)
}

// NewBreakGlassRepository creates a break-glass repository bound to the transaction.
func (f *gormRepositoryFactory) NewBreakGlassRepository() repository.BreakGlassRepository {
	return NewBreakGlassRepository(f.tx)
}

// NewIdempotencyRepository creates an idempotency repository bound to the transaction.
func (f *gormRepositoryFactory) NewIdempotencyRepository() repository.IdempotencyRepository {
	return NewIdempotencyRepository(f.tx)
}

// NewMfaRepository creates an MFA repository bound to the transaction.
func (f *gormRepositoryFactory) NewMfaRepository() repository.MfaRepository {
	return NewMfaRepository(f.tx)
}

// NewAuditRepository creates an audit repository bound to the transaction.
func (f *gormRepositoryFactory) NewAuditRepository() repository.AuditRepository {
	return NewAuditRepository(f.tx)
}

// NewLeadRepository creates a lead repository bound to the transaction.
func (f *gormRepositoryFactory) NewLeadRepository() repository.LeadRepository {
	return NewLeadRepository(f.tx)
}

// NewTransactionManager is the constructor for gormTransactionManager.
// This function will be used as an Fx provider.
func NewTransactionManager(db *gorm.DB) repository.TransactionManager {
	return &gormTransactionManager{db: db}
}

// Execute runs the given function within a single database transaction.
//
// When the context carries an org scope, it is pushed into the session with
// set_config before any statement runs, so the row-level policies on
// org-owned tables constrain every query in the transaction. The third
// argument makes the setting transaction-local; it resets on commit or
// rollback before the connection returns to the pool.
func (tm *gormTransactionManager) Execute(ctx context.Context, fn func(repoFactory repository.RepositoryFactory) error) error {
	// Begin a new transaction
	tx := tm.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	// This defer block ensures that if a panic occurs within the callback function,
	// the transaction is always rolled back. This is a critical safety measure.
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			// Re-panic to allow Fx or other middleware to handle the panic.
			panic(r)
		}
	}()

	if orgID, ok := repository.OrgScopeFrom(ctx); ok {
		if err := tx.Exec("SELECT set_config('app.current_org', ?, true)", orgID.String()).Error; err != nil {
			if rbErr := tx.Rollback().Error; rbErr != nil {
				return fmt.Errorf("transaction rollback failed: %v (original error: %w)", rbErr, err)
			}

			return fmt.Errorf("failed to set org scope: %w", err)
		}
	}

	// Create a repository factory that is bound to this specific transaction.
	factory := &gormRepositoryFactory{tx: tx}

	// Execute the application logic (the use case's core work)
	err := fn(factory)
	if err != nil {
		// If the business logic returns an error, roll back the transaction.
		if rbErr := tx.Rollback().Error; rbErr != nil {
			// Log the rollback error, but return the original, more meaningful business error.
			return fmt.Errorf("transaction rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err // Return the original business error.
	}

	// If the business logic completes without error, commit the transaction.
	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
