package service

import (
	"testing"

	"jobdeck/internal/domain/entity"

	"github.com/stretchr/testify/assert"
)

func TestPermissionResolver_Can(t *testing.T) {
	resolver := NewPermissionResolver()

	cases := []struct {
		name    string
		role    entity.Role
		action  string
		allowed bool
	}{
		{"owner toggles read-only", entity.RoleOwner, ActionReadOnlyToggle, true},
		{"owner disables mfa", entity.RoleOwner, ActionMfaDisable, true},
		{"owner starts break-glass", entity.RoleOwner, ActionBreakGlass, true},
		{"admin cannot toggle read-only", entity.RoleAdmin, ActionReadOnlyToggle, false},
		{"admin cannot disable mfa", entity.RoleAdmin, ActionMfaDisable, false},
		{"admin revokes sessions", entity.RoleAdmin, ActionSessionsRevoke, true},
		{"admin reads audit", entity.RoleAdmin, ActionAuditRead, true},
		{"dispatcher writes leads", entity.RoleDispatcher, ActionLeadsWrite, true},
		{"dispatcher writes jobs", entity.RoleDispatcher, ActionJobsWrite, true},
		{"dispatcher cannot revoke sessions", entity.RoleDispatcher, ActionSessionsRevoke, false},
		{"dispatcher cannot touch invoices", entity.RoleDispatcher, ActionInvoicesRead, false},
		{"finance writes invoices", entity.RoleFinance, ActionInvoicesWrite, true},
		{"finance reads leads", entity.RoleFinance, ActionLeadsRead, true},
		{"finance cannot write leads", entity.RoleFinance, ActionLeadsWrite, false},
		{"viewer reads leads", entity.RoleViewer, ActionLeadsRead, true},
		{"viewer cannot write anything", entity.RoleViewer, ActionLeadsWrite, false},
		{"worker reads jobs", entity.RoleWorker, ActionJobsRead, true},
		{"worker has portal access", entity.RoleWorker, ActionPortalSelf, true},
		{"worker cannot read leads", entity.RoleWorker, ActionLeadsRead, false},
		{"client is portal only", entity.RoleClient, ActionPortalSelf, true},
		{"client cannot read jobs", entity.RoleClient, ActionJobsRead, false},
		{"unknown role denied", entity.Role("superuser"), ActionLeadsRead, false},
		{"unknown action denied", entity.RoleOwner, "leads.purge", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, resolver.Can(tc.role, tc.action))
		})
	}
}

func TestPermissionResolver_Masking(t *testing.T) {
	resolver := NewPermissionResolver()

	assert.Equal(t, MaskNone, resolver.Masking(entity.RoleOwner))
	assert.Equal(t, MaskNone, resolver.Masking(entity.RoleAdmin))
	assert.Equal(t, MaskNone, resolver.Masking(entity.RoleDispatcher))
	assert.Equal(t, MaskNone, resolver.Masking(entity.RoleFinance))
	assert.Equal(t, MaskPartial, resolver.Masking(entity.RoleViewer))
	assert.Equal(t, MaskPartial, resolver.Masking(entity.RoleWorker))
	assert.Equal(t, MaskPartial, resolver.Masking(entity.RoleClient))
}
