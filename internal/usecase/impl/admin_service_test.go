package impl

import (
	"context"
	"testing"

	"jobdeck/config"
	"jobdeck/internal/domain/entity"
	"jobdeck/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadOnlyStore_SeededFromConfig(t *testing.T) {
	cfg := &config.Config{Admin: &config.AdminConfig{ReadOnly: true}}
	store := NewReadOnlyStore(cfg)
	assert.True(t, store.Enabled())

	store.Set(false)
	assert.False(t, store.Enabled())
}

func TestAdminService_SetReadOnly_AuditsBeforeFlipping(t *testing.T) {
	store := newMemStore()
	readOnly := NewReadOnlyStore(&config.Config{})
	service := NewAdminService(AdminServiceParams{
		TxManager:     &fakeTxManager{store: store},
		AuditRepo:     &fakeAuditRepo{store: store},
		ReadOnlyStore: readOnly,
		Logger:        newDiscardLogger(),
	})

	orgID := uuid.New()
	actorID := uuid.New()

	require.NoError(t, service.SetReadOnly(context.Background(), usecase.SetReadOnlyInput{
		OrgID:   orgID,
		ActorID: actorID,
		Enabled: true,
		Reason:  "storage migration",
	}))
	assert.True(t, readOnly.Enabled())

	events := store.auditEvents()
	require.Len(t, events, 1)
	assert.Equal(t, entity.AuditReadOnlyToggled, events[0].Event)
	assert.Equal(t, "storage migration", events[0].Reason)
	assert.Contains(t, string(events[0].After), "true")

	require.NoError(t, service.SetReadOnly(context.Background(), usecase.SetReadOnlyInput{
		OrgID:   orgID,
		ActorID: actorID,
		Enabled: false,
		Reason:  "migration done",
	}))
	assert.False(t, readOnly.Enabled())
}

func TestAdminService_ListAuditEvents(t *testing.T) {
	store := newMemStore()
	service := NewAdminService(AdminServiceParams{
		TxManager:     &fakeTxManager{store: store},
		AuditRepo:     &fakeAuditRepo{store: store},
		ReadOnlyStore: NewReadOnlyStore(&config.Config{}),
		Logger:        newDiscardLogger(),
	})

	orgID := uuid.New()
	otherOrg := uuid.New()
	audit := &fakeAuditRepo{store: store}
	require.NoError(t, audit.Append(context.Background(), &entity.AuditEvent{OrgID: orgID, Event: entity.AuditLoginSuccess}))
	require.NoError(t, audit.Append(context.Background(), &entity.AuditEvent{OrgID: otherOrg, Event: entity.AuditLoginSuccess}))
	require.NoError(t, audit.Append(context.Background(), &entity.AuditEvent{OrgID: orgID, Event: entity.AuditLogout}))

	events, err := service.ListAuditEvents(context.Background(), orgID, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	// Newest first, and never another org's rows.
	assert.Equal(t, entity.AuditLogout, events[0].Event)
	for _, event := range events {
		assert.Equal(t, orgID, event.OrgID)
	}
}
