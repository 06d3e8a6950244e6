package service

import "jobdeck/internal/domain/entity"

// Action keys follow the "resource.verb" pattern.
const (
	ActionLeadsRead      = "leads.read"
	ActionLeadsWrite     = "leads.write"
	ActionInvoicesRead   = "invoices.read"
	ActionInvoicesWrite  = "invoices.write"
	ActionJobsRead       = "jobs.read"
	ActionJobsWrite      = "jobs.write"
	ActionMembersManage  = "members.manage"
	ActionSessionsRevoke = "sessions.revoke"
	ActionMfaDisable     = "mfa.disable"
	ActionBreakGlass     = "breakglass.start"
	ActionReadOnlyToggle = "readonly.toggle"
	ActionAuditRead      = "audit.read"
	ActionPortalSelf     = "portal.self"
)

// MaskingLevel tells response serialization how much contact detail to redact.
type MaskingLevel int

const (
	// MaskNone exposes fields as stored.
	MaskNone MaskingLevel = iota
	// MaskPartial redacts the middle of emails and phone numbers.
	MaskPartial
)

// rolePermissions is the fixed permission table. Checks are pure functions of
// (role, action) with no side effects; there is no per-identity grant surface.
var rolePermissions = map[entity.Role]map[string]bool{
	entity.RoleOwner: {
		ActionLeadsRead: true, ActionLeadsWrite: true,
		ActionInvoicesRead: true, ActionInvoicesWrite: true,
		ActionJobsRead: true, ActionJobsWrite: true,
		ActionMembersManage: true, ActionSessionsRevoke: true,
		ActionMfaDisable: true, ActionBreakGlass: true,
		ActionReadOnlyToggle: true, ActionAuditRead: true,
	},
	entity.RoleAdmin: {
		ActionLeadsRead: true, ActionLeadsWrite: true,
		ActionInvoicesRead: true, ActionInvoicesWrite: true,
		ActionJobsRead: true, ActionJobsWrite: true,
		ActionMembersManage: true, ActionSessionsRevoke: true,
		ActionBreakGlass: true, ActionAuditRead: true,
	},
	entity.RoleDispatcher: {
		ActionLeadsRead: true, ActionLeadsWrite: true,
		ActionJobsRead: true, ActionJobsWrite: true,
	},
	entity.RoleFinance: {
		ActionLeadsRead:    true,
		ActionInvoicesRead: true, ActionInvoicesWrite: true,
	},
	entity.RoleViewer: {
		ActionLeadsRead: true, ActionInvoicesRead: true, ActionJobsRead: true,
	},
	entity.RoleWorker: {
		ActionJobsRead: true, ActionPortalSelf: true,
	},
	entity.RoleClient: {
		ActionPortalSelf: true,
	},
}

// PermissionResolver answers "can this role perform this action" and exposes
// the masking level applied by response serialization for viewer-equivalent
// roles. It carries no state and performs no I/O.
type PermissionResolver struct{}

// NewPermissionResolver constructs the resolver.
func NewPermissionResolver() *PermissionResolver {
	return &PermissionResolver{}
}

// Can reports whether the role's fixed permission set includes the action.
func (r *PermissionResolver) Can(role entity.Role, action string) bool {
	perms, ok := rolePermissions[role]
	if !ok {
		return false
	}

	return perms[action]
}

// Masking returns the field-masking level for the role. Viewer and portal
// roles see partially redacted contact fields.
func (r *PermissionResolver) Masking(role entity.Role) MaskingLevel {
	switch role {
	case entity.RoleViewer, entity.RoleWorker, entity.RoleClient:
		return MaskPartial
	default:
		return MaskNone
	}
}
