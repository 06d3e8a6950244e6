package context

import (
	"context"

	"jobdeck/internal/domain/entity"

	"github.com/google/uuid"
)

// Principal is the authenticated caller attached to a request after the auth
// middleware validated the access token and re-checked the session.
type Principal struct {
	IdentityID  uuid.UUID
	OrgID       uuid.UUID
	Role        entity.Role
	SessionID   uuid.UUID
	MFAVerified bool
}

// BreakGlassGrant marks a request authorized for emergency writes. Reason is
// carried so every audit row written downstream names why the write happened.
type BreakGlassGrant struct {
	TokenHash string
	Reason    string
}

const (
	// KeyPrincipal is the key for storing the authenticated principal.
	KeyPrincipal ContextKey = "principal"

	// KeyClientIP is the key for the proxy-resolved client address.
	KeyClientIP ContextKey = "client_ip"

	// KeyBreakGlass is the key for an active break-glass grant.
	KeyBreakGlass ContextKey = "break_glass"
)

// WithPrincipal returns a new context with the authenticated principal.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, KeyPrincipal, p)
}

// GetPrincipal extracts the authenticated principal, or nil.
func GetPrincipal(ctx context.Context) *Principal {
	if p, ok := ctx.Value(KeyPrincipal).(*Principal); ok {
		return p
	}

	return nil
}

// WithClientIP returns a new context with the resolved client address.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, KeyClientIP, ip)
}

// GetClientIP extracts the resolved client address, or empty string.
func GetClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(KeyClientIP).(string); ok {
		return ip
	}

	return ""
}

// WithBreakGlass returns a new context carrying an active break-glass grant.
func WithBreakGlass(ctx context.Context, grant *BreakGlassGrant) context.Context {
	return context.WithValue(ctx, KeyBreakGlass, grant)
}

// GetBreakGlass extracts the active break-glass grant, or nil.
func GetBreakGlass(ctx context.Context) *BreakGlassGrant {
	if g, ok := ctx.Value(KeyBreakGlass).(*BreakGlassGrant); ok {
		return g
	}

	return nil
}
