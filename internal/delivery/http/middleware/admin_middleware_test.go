package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"jobdeck/config"
	deliverycontext "jobdeck/internal/delivery/context"
	"jobdeck/internal/domain/entity"
	domainerrors "jobdeck/internal/domain/errors"
	"jobdeck/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReadOnlyStore struct {
	mu      sync.Mutex
	enabled bool
}

func (s *fakeReadOnlyStore) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.enabled
}

func (s *fakeReadOnlyStore) Set(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = enabled
}

type fakeBreakGlassUsecase struct {
	token       *entity.BreakGlassToken
	recordedUse []string
}

func (f *fakeBreakGlassUsecase) Start(context.Context, usecase.StartBreakGlassInput) (*usecase.StartBreakGlassOutput, error) {
	panic("not used")
}

func (f *fakeBreakGlassUsecase) Validate(_ context.Context, rawToken string) (*entity.BreakGlassToken, error) {
	if f.token == nil || rawToken != "live-token" {
		return nil, domainerrors.ErrBreakGlassInvalid
	}

	return f.token, nil
}

func (f *fakeBreakGlassUsecase) RecordUse(_ context.Context, _ *entity.BreakGlassToken, action, _, _ string) error {
	f.recordedUse = append(f.recordedUse, action)

	return nil
}

func newAdminTestContext(method, target, remoteAddr string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()

	return e.NewContext(req, rec), rec
}

func adminMiddlewareWith(allowlist []string, store usecase.ReadOnlyStore, bg usecase.BreakGlassUsecase) *AdminMiddleware {
	cfg := &config.Config{Admin: &config.AdminConfig{IPAllowlist: allowlist}}

	return NewAdminMiddleware(cfg, store, bg)
}

func okHandler(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

func TestRequireAllowedIP_EmptyAllowlistPasses(t *testing.T) {
	m := adminMiddlewareWith(nil, &fakeReadOnlyStore{}, &fakeBreakGlassUsecase{})
	c, rec := newAdminTestContext(http.MethodGet, "/admin/audit", "203.0.113.9:51234")

	err := m.RequireAllowedIP(okHandler)(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequireAllowedIP_InsideCIDR(t *testing.T) {
	m := adminMiddlewareWith([]string{"10.1.0.0/16"}, &fakeReadOnlyStore{}, &fakeBreakGlassUsecase{})
	c, _ := newAdminTestContext(http.MethodGet, "/admin/audit", "10.1.44.7:51234")

	var seenIP string
	err := m.RequireAllowedIP(func(c echo.Context) error {
		seenIP = deliverycontext.GetClientIP(c.Request().Context())

		return okHandler(c)
	})(c)
	require.NoError(t, err)
	// The resolved address is stashed for downstream audit rows.
	assert.Equal(t, "10.1.44.7", seenIP)
}

func TestRequireAllowedIP_OutsideCIDR(t *testing.T) {
	m := adminMiddlewareWith([]string{"10.1.0.0/16", "192.168.0.0/24"}, &fakeReadOnlyStore{}, &fakeBreakGlassUsecase{})
	c, _ := newAdminTestContext(http.MethodGet, "/admin/audit", "203.0.113.9:51234")

	err := m.RequireAllowedIP(okHandler)(c)
	assert.ErrorIs(t, err, domainerrors.ErrIPNotAllowed)
}

func TestEnforceReadOnly_DisabledFlagPassesMutations(t *testing.T) {
	m := adminMiddlewareWith(nil, &fakeReadOnlyStore{enabled: false}, &fakeBreakGlassUsecase{})
	c, rec := newAdminTestContext(http.MethodPost, "/admin/leads", "10.0.0.1:1000")

	err := m.EnforceReadOnly(okHandler)(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestEnforceReadOnly_ReadsPassWhileEnabled(t *testing.T) {
	m := adminMiddlewareWith(nil, &fakeReadOnlyStore{enabled: true}, &fakeBreakGlassUsecase{})
	c, rec := newAdminTestContext(http.MethodGet, "/admin/leads", "10.0.0.1:1000")

	err := m.EnforceReadOnly(okHandler)(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestEnforceReadOnly_MutationWithoutGrantRejected(t *testing.T) {
	m := adminMiddlewareWith(nil, &fakeReadOnlyStore{enabled: true}, &fakeBreakGlassUsecase{})
	c, _ := newAdminTestContext(http.MethodPost, "/admin/leads", "10.0.0.1:1000")

	err := m.EnforceReadOnly(okHandler)(c)
	assert.ErrorIs(t, err, domainerrors.ErrReadOnlyMode)
}

func TestBreakGlass_NoHeaderPassesThrough(t *testing.T) {
	bg := &fakeBreakGlassUsecase{}
	m := adminMiddlewareWith(nil, &fakeReadOnlyStore{}, bg)
	c, rec := newAdminTestContext(http.MethodPost, "/admin/leads", "10.0.0.1:1000")

	err := m.BreakGlass(okHandler)(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, bg.recordedUse)
}

func TestBreakGlass_InvalidTokenRejected(t *testing.T) {
	m := adminMiddlewareWith(nil, &fakeReadOnlyStore{}, &fakeBreakGlassUsecase{})
	c, _ := newAdminTestContext(http.MethodPost, "/admin/leads", "10.0.0.1:1000")
	c.Request().Header.Set(HeaderBreakGlassToken, "expired-or-bogus")

	err := m.BreakGlass(okHandler)(c)
	assert.ErrorIs(t, err, domainerrors.ErrBreakGlassInvalid)
}

func TestBreakGlass_LiveTokenUnlocksReadOnlyAndRecordsUse(t *testing.T) {
	orgID := uuid.New()
	bg := &fakeBreakGlassUsecase{token: &entity.BreakGlassToken{
		OrgID:     orgID,
		Reason:    "prod incident 4821",
		TokenHash: "hash",
	}}
	m := adminMiddlewareWith(nil, &fakeReadOnlyStore{enabled: true}, bg)

	c, rec := newAdminTestContext(http.MethodPost, "/admin/leads", "10.0.0.1:1000")
	c.SetPath("/admin/leads")
	c.Request().Header.Set(HeaderBreakGlassToken, "live-token")

	principal := &deliverycontext.Principal{IdentityID: uuid.New(), OrgID: orgID, Role: entity.RoleOwner}
	c.SetRequest(c.Request().WithContext(deliverycontext.WithPrincipal(c.Request().Context(), principal)))

	var grant *deliverycontext.BreakGlassGrant
	err := m.BreakGlass(m.EnforceReadOnly(func(c echo.Context) error {
		grant = deliverycontext.GetBreakGlass(c.Request().Context())

		return okHandler(c)
	}))(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	require.NotNil(t, grant)
	assert.Equal(t, "prod incident 4821", grant.Reason)

	require.Len(t, bg.recordedUse, 1)
	assert.Equal(t, "POST /admin/leads", bg.recordedUse[0])
}

func TestBreakGlass_RecordsUseWhileReadOnlyOff(t *testing.T) {
	orgID := uuid.New()
	bg := &fakeBreakGlassUsecase{token: &entity.BreakGlassToken{
		OrgID:     orgID,
		Reason:    "prod incident 4821",
		TokenHash: "hash",
	}}
	m := adminMiddlewareWith(nil, &fakeReadOnlyStore{enabled: false}, bg)

	c, rec := newAdminTestContext(http.MethodPost, "/admin/leads", "10.0.0.1:1000")
	c.SetPath("/admin/leads")
	c.Request().Header.Set(HeaderBreakGlassToken, "live-token")

	principal := &deliverycontext.Principal{IdentityID: uuid.New(), OrgID: orgID, Role: entity.RoleOwner}
	c.SetRequest(c.Request().WithContext(deliverycontext.WithPrincipal(c.Request().Context(), principal)))

	// A token presented on a privileged write is validated and audited even
	// when nothing needed unlocking.
	err := m.BreakGlass(m.EnforceReadOnly(okHandler))(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	require.Len(t, bg.recordedUse, 1)
	assert.Equal(t, "POST /admin/leads", bg.recordedUse[0])
}

func TestBreakGlass_TokenFromAnotherOrgRejected(t *testing.T) {
	bg := &fakeBreakGlassUsecase{token: &entity.BreakGlassToken{
		OrgID:  uuid.New(),
		Reason: "prod incident 4821",
	}}
	m := adminMiddlewareWith(nil, &fakeReadOnlyStore{enabled: true}, bg)

	c, _ := newAdminTestContext(http.MethodPost, "/admin/leads", "10.0.0.1:1000")
	c.Request().Header.Set(HeaderBreakGlassToken, "live-token")

	principal := &deliverycontext.Principal{IdentityID: uuid.New(), OrgID: uuid.New(), Role: entity.RoleOwner}
	c.SetRequest(c.Request().WithContext(deliverycontext.WithPrincipal(c.Request().Context(), principal)))

	err := m.BreakGlass(okHandler)(c)
	assert.ErrorIs(t, err, domainerrors.ErrOrgMismatch)
	assert.Empty(t, bg.recordedUse)
}

func TestBreakGlass_FailedHandlerDoesNotRecordUse(t *testing.T) {
	orgID := uuid.New()
	bg := &fakeBreakGlassUsecase{token: &entity.BreakGlassToken{OrgID: orgID, Reason: "incident"}}
	m := adminMiddlewareWith(nil, &fakeReadOnlyStore{enabled: true}, bg)

	c, _ := newAdminTestContext(http.MethodPost, "/admin/leads", "10.0.0.1:1000")
	c.Request().Header.Set(HeaderBreakGlassToken, "live-token")
	principal := &deliverycontext.Principal{IdentityID: uuid.New(), OrgID: orgID, Role: entity.RoleOwner}
	c.SetRequest(c.Request().WithContext(deliverycontext.WithPrincipal(c.Request().Context(), principal)))

	err := m.BreakGlass(func(echo.Context) error {
		return domainerrors.ErrValidationFailed
	})(c)
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
	assert.Empty(t, bg.recordedUse)
}

func TestBuildIPExtractor(t *testing.T) {
	extractor := buildIPExtractor(parseCIDRs([]string{"10.0.0.0/8"}))

	// Forwarding headers from an untrusted peer are ignored.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.9:443"
	req.Header.Set("X-Forwarded-For", "1.2.3.4")
	assert.Equal(t, "203.0.113.9", extractor(req))

	// A trusted proxy's X-Real-IP wins.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.5:443"
	req.Header.Set("X-Real-IP", "198.51.100.7")
	assert.Equal(t, "198.51.100.7", extractor(req))

	// Leftmost X-Forwarded-For entry is the original client.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.5:443"
	req.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.5")
	assert.Equal(t, "198.51.100.7", extractor(req))

	// A trusted peer with no forwarding headers resolves to itself.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.5:443"
	assert.Equal(t, "10.0.0.5", extractor(req))
}
