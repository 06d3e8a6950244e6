package repository

import (
	"context"

	"github.com/google/uuid"
)

type orgScopeKey struct{}

// WithOrgScope returns a context carrying the organization every query in the
// request is confined to. The transaction manager pushes this value into the
// storage session so row-level policies see it.
func WithOrgScope(ctx context.Context, orgID uuid.UUID) context.Context {
	return context.WithValue(ctx, orgScopeKey{}, orgID)
}

// OrgScopeFrom extracts the organization scope from the context.
func OrgScopeFrom(ctx context.Context) (uuid.UUID, bool) {
	orgID, ok := ctx.Value(orgScopeKey{}).(uuid.UUID)

	return orgID, ok
}
