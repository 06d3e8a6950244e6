package impl

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"jobdeck/config"
	"jobdeck/internal/domain/entity"
	"jobdeck/internal/domain/repository"
	"jobdeck/internal/domain/service"

	"github.com/google/uuid"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Admin = &config.AdminConfig{BreakGlassMaxTTL: time.Hour}
	cfg.Idempotency = &config.IdempotencyConfig{
		WaitTimeout:  500 * time.Millisecond,
		PollInterval: 10 * time.Millisecond,
	}

	return cfg
}

// memStore is the in-memory backing shared by the fake repositories, so the
// transaction-bound and base-connection views observe the same rows.
type memStore struct {
	mu          sync.Mutex
	identities  map[uuid.UUID]*entity.Identity
	credentials map[uuid.UUID]*entity.Credential
	sessions    map[uuid.UUID]*entity.Session
	orgs        map[uuid.UUID]*entity.Organization
	mfaSecrets  map[uuid.UUID]*entity.MfaSecret
	breakGlass  map[string]*entity.BreakGlassToken
	idemRecords map[string]*entity.IdempotencyRecord
	leads       map[uuid.UUID]*entity.Lead
	audits      []*entity.AuditEvent
}

func newMemStore() *memStore {
	return &memStore{
		identities:  make(map[uuid.UUID]*entity.Identity),
		credentials: make(map[uuid.UUID]*entity.Credential),
		sessions:    make(map[uuid.UUID]*entity.Session),
		orgs:        make(map[uuid.UUID]*entity.Organization),
		mfaSecrets:  make(map[uuid.UUID]*entity.MfaSecret),
		breakGlass:  make(map[string]*entity.BreakGlassToken),
		idemRecords: make(map[string]*entity.IdempotencyRecord),
		leads:       make(map[uuid.UUID]*entity.Lead),
	}
}

func (s *memStore) auditEvents() []*entity.AuditEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*entity.AuditEvent, len(s.audits))
	copy(out, s.audits)

	return out
}

// fakeTxManager runs the callback against repositories bound to the shared
// store. Rollback is not simulated; tests assert on short-circuited writes.
// An override factory lets a test substitute individual repositories.
type fakeTxManager struct {
	store   *memStore
	factory repository.RepositoryFactory
}

func (m *fakeTxManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	if m.factory != nil {
		return fn(m.factory)
	}

	return fn(&fakeRepoFactory{store: m.store})
}

type fakeRepoFactory struct {
	store *memStore
}

func (f *fakeRepoFactory) NewIdentityRepository() repository.IdentityRepository {
	return &fakeIdentityRepo{store: f.store}
}

func (f *fakeRepoFactory) NewCredentialRepository() repository.CredentialRepository {
	return &fakeCredentialRepo{store: f.store}
}

func (f *fakeRepoFactory) NewSessionRepository() repository.SessionRepository {
	return &fakeSessionRepo{store: f.store}
}

func (f *fakeRepoFactory) NewOrganizationRepository() repository.OrganizationRepository {
	return &fakeOrganizationRepo{store: f.store}
}

func (f *fakeRepoFactory) NewBreakGlassRepository() repository.BreakGlassRepository {
	return &fakeBreakGlassRepo{store: f.store}
}

func (f *fakeRepoFactory) NewIdempotencyRepository() repository.IdempotencyRepository {
	return &fakeIdempotencyRepo{store: f.store}
}

func (f *fakeRepoFactory) NewMfaRepository() repository.MfaRepository {
	return &fakeMfaRepo{store: f.store}
}

func (f *fakeRepoFactory) NewAuditRepository() repository.AuditRepository {
	return &fakeAuditRepo{store: f.store}
}

func (f *fakeRepoFactory) NewLeadRepository() repository.LeadRepository {
	return &fakeLeadRepo{store: f.store}
}

// --- identity / credential ---

type fakeIdentityRepo struct {
	store *memStore
}

func (r *fakeIdentityRepo) Create(_ context.Context, identity *entity.Identity) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if identity.ID == uuid.Nil {
		identity.ID = uuid.New()
	}
	r.store.identities[identity.ID] = identity

	return nil
}

func (r *fakeIdentityRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Identity, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	identity, ok := r.store.identities[id]
	if !ok {
		return nil, repository.ErrIdentityNotFound
	}

	return identity, nil
}

func (r *fakeIdentityRepo) FindByEmail(_ context.Context, kind entity.IdentityKind, email string) (*entity.Identity, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, identity := range r.store.identities {
		if identity.Kind == kind && identity.Email == email {
			return identity, nil
		}
	}

	return nil, repository.ErrIdentityNotFound
}

func (r *fakeIdentityRepo) Update(_ context.Context, identity *entity.Identity) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.identities[identity.ID] = identity

	return nil
}

type fakeCredentialRepo struct {
	store *memStore
}

func (r *fakeCredentialRepo) Create(_ context.Context, credential *entity.Credential) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.credentials[credential.IdentityID] = credential

	return nil
}

func (r *fakeCredentialRepo) FindByIdentityID(_ context.Context, identityID uuid.UUID) (*entity.Credential, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	credential, ok := r.store.credentials[identityID]
	if !ok {
		return nil, repository.ErrCredentialNotFound
	}

	return credential, nil
}

func (r *fakeCredentialRepo) UpdateHash(_ context.Context, identityID uuid.UUID, hash string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	credential, ok := r.store.credentials[identityID]
	if !ok {
		return repository.ErrCredentialNotFound
	}
	credential.Hash = hash

	return nil
}

// --- sessions ---

type fakeSessionRepo struct {
	store *memStore
}

func (r *fakeSessionRepo) Create(_ context.Context, session *entity.Session) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	r.store.sessions[session.ID] = session

	return nil
}

func (r *fakeSessionRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Session, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	session, ok := r.store.sessions[id]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}

	return session, nil
}

func (r *fakeSessionRepo) FindByRefreshHash(_ context.Context, tokenHash string) (*entity.Session, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, session := range r.store.sessions {
		if session.RefreshTokenHash == tokenHash {
			return session, nil
		}
	}

	return nil, repository.ErrSessionNotFound
}

func (r *fakeSessionRepo) FindActiveByIdentityID(_ context.Context, orgID, identityID uuid.UUID) ([]*entity.Session, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	now := time.Now()
	var out []*entity.Session
	for _, session := range r.store.sessions {
		if session.OrgID == orgID && session.IdentityID == identityID && session.Active(now) {
			out = append(out, session)
		}
	}

	return out, nil
}

func (r *fakeSessionRepo) Revoke(ctx context.Context, id uuid.UUID, reason string) error {
	_, err := r.RevokeIfActive(ctx, id, reason)

	return err
}

func (r *fakeSessionRepo) RevokeIfActive(_ context.Context, id uuid.UUID, reason string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	session, ok := r.store.sessions[id]
	if !ok || session.Revoked {
		return false, nil
	}
	now := time.Now()
	session.Revoked = true
	session.RevokedReason = reason
	session.RevokedAt = &now

	return true, nil
}

func (r *fakeSessionRepo) RevokeAllForIdentity(_ context.Context, orgID, identityID uuid.UUID, reason string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	now := time.Now()
	for _, session := range r.store.sessions {
		if session.OrgID == orgID && session.IdentityID == identityID && !session.Revoked {
			session.Revoked = true
			session.RevokedReason = reason
			session.RevokedAt = &now
		}
	}

	return nil
}

func (r *fakeSessionRepo) DeleteExpired(_ context.Context) (int64, error) {
	return 0, nil
}

// --- organizations ---

type fakeOrganizationRepo struct {
	store *memStore
}

func (r *fakeOrganizationRepo) Create(_ context.Context, org *entity.Organization) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if org.ID == uuid.Nil {
		org.ID = uuid.New()
	}
	r.store.orgs[org.ID] = org

	return nil
}

func (r *fakeOrganizationRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Organization, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	org, ok := r.store.orgs[id]
	if !ok {
		return nil, repository.ErrOrganizationNotFound
	}

	return org, nil
}

func (r *fakeOrganizationRepo) Update(_ context.Context, org *entity.Organization) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.orgs[org.ID] = org

	return nil
}

// --- break-glass ---

type fakeBreakGlassRepo struct {
	store *memStore
}

func (r *fakeBreakGlassRepo) Create(_ context.Context, token *entity.BreakGlassToken) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	r.store.breakGlass[token.TokenHash] = token

	return nil
}

func (r *fakeBreakGlassRepo) FindByHash(_ context.Context, tokenHash string) (*entity.BreakGlassToken, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	token, ok := r.store.breakGlass[tokenHash]
	if !ok {
		return nil, repository.ErrBreakGlassNotFound
	}

	return token, nil
}

func (r *fakeBreakGlassRepo) TouchUsed(_ context.Context, tokenHash string, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	token, ok := r.store.breakGlass[tokenHash]
	if !ok {
		return repository.ErrBreakGlassNotFound
	}
	token.LastUsedAt = &at

	return nil
}

// --- idempotency ---

func idemKey(orgID, actorID uuid.UUID, method, path, key string) string {
	return orgID.String() + "|" + actorID.String() + "|" + method + "|" + path + "|" + key
}

type fakeIdempotencyRepo struct {
	store *memStore
}

func (r *fakeIdempotencyRepo) Insert(_ context.Context, record *entity.IdempotencyRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	k := idemKey(record.OrgID, record.ActorID, record.Method, record.Path, record.Key)
	if _, exists := r.store.idemRecords[k]; exists {
		return repository.ErrIdempotencyKeyTaken
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	stored := *record
	r.store.idemRecords[k] = &stored

	return nil
}

func (r *fakeIdempotencyRepo) Find(_ context.Context, orgID, actorID uuid.UUID, method, path, key string) (*entity.IdempotencyRecord, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	record, ok := r.store.idemRecords[idemKey(orgID, actorID, method, path, key)]
	if !ok {
		return nil, repository.ErrIdempotencyRecordNotFound
	}
	copied := *record

	return &copied, nil
}

func (r *fakeIdempotencyRepo) Complete(_ context.Context, id uuid.UUID, status int, body []byte) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, record := range r.store.idemRecords {
		if record.ID == id {
			now := time.Now()
			record.ResponseStatus = status
			record.ResponseBody = body
			record.CompletedAt = &now

			return nil
		}
	}

	return repository.ErrIdempotencyRecordNotFound
}

func (r *fakeIdempotencyRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for k, record := range r.store.idemRecords {
		if record.ID == id {
			delete(r.store.idemRecords, k)

			return nil
		}
	}

	return nil
}

// --- mfa ---

type fakeMfaRepo struct {
	store *memStore
}

func (r *fakeMfaRepo) Upsert(_ context.Context, secret *entity.MfaSecret) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if secret.ID == uuid.Nil {
		secret.ID = uuid.New()
	}
	r.store.mfaSecrets[secret.IdentityID] = secret

	return nil
}

func (r *fakeMfaRepo) FindByIdentityID(_ context.Context, identityID uuid.UUID) (*entity.MfaSecret, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	secret, ok := r.store.mfaSecrets[identityID]
	if !ok {
		return nil, repository.ErrMfaSecretNotFound
	}

	return secret, nil
}

func (r *fakeMfaRepo) Update(_ context.Context, secret *entity.MfaSecret) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.mfaSecrets[secret.IdentityID] = secret

	return nil
}

func (r *fakeMfaRepo) Delete(_ context.Context, identityID uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.mfaSecrets, identityID)

	return nil
}

// --- audit ---

type fakeAuditRepo struct {
	store *memStore
}

func (r *fakeAuditRepo) Append(_ context.Context, event *entity.AuditEvent) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	event.CreatedAt = time.Now()
	r.store.audits = append(r.store.audits, event)

	return nil
}

func (r *fakeAuditRepo) ListByOrg(_ context.Context, orgID uuid.UUID, limit int) ([]*entity.AuditEvent, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.AuditEvent
	for i := len(r.store.audits) - 1; i >= 0; i-- {
		if r.store.audits[i].OrgID == orgID {
			out = append(out, r.store.audits[i])
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}

	return out, nil
}

// --- leads ---

type fakeLeadRepo struct {
	store *memStore
}

func (r *fakeLeadRepo) Create(_ context.Context, lead *entity.Lead) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if lead.ID == uuid.Nil {
		lead.ID = uuid.New()
	}
	lead.CreatedAt = time.Now()
	r.store.leads[lead.ID] = lead

	return nil
}

func (r *fakeLeadRepo) FindByID(_ context.Context, orgID, id uuid.UUID) (*entity.Lead, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	lead, ok := r.store.leads[id]
	if !ok || lead.OrgID != orgID {
		return nil, repository.ErrLeadNotFound
	}

	return lead, nil
}

func (r *fakeLeadRepo) ListByOrg(_ context.Context, orgID uuid.UUID, limit int) ([]*entity.Lead, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.Lead
	for _, lead := range r.store.leads {
		if lead.OrgID == orgID {
			out = append(out, lead)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}

	return out, nil
}

func (r *fakeLeadRepo) UpdateStatus(_ context.Context, orgID, id uuid.UUID, status entity.LeadStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	lead, ok := r.store.leads[id]
	if !ok || lead.OrgID != orgID {
		return repository.ErrLeadNotFound
	}
	lead.Status = status

	return nil
}

// --- domain service fakes ---

// fakeHasher uses transparent markers instead of real hashing. A stored value
// with the legacy prefix verifies but reports rehashNeeded.
type fakeHasher struct{}

func (h *fakeHasher) Hash(password string) (string, error) {
	return "current$" + password, nil
}

func (h *fakeHasher) Verify(password, stored string) (bool, bool) {
	switch stored {
	case "current$" + password:
		return true, false
	case "legacy$" + password:
		return true, true
	default:
		return false, false
	}
}

func (h *fakeHasher) ValidatePasswordStrength(string) error {
	return nil
}

// fakeTokenService mints deterministic tokens and records issued access
// tokens so Authenticate can resolve them back to claims.
type fakeTokenService struct {
	mu     sync.Mutex
	issued map[string]*service.AccessClaims
}

func newFakeTokenService() *fakeTokenService {
	return &fakeTokenService{issued: make(map[string]*service.AccessClaims)}
}

func (t *fakeTokenService) GenerateAccessToken(identity *entity.Identity, session *entity.Session) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	token := "access-" + session.ID.String() + "-" + uuid.NewString()
	t.issued[token] = &service.AccessClaims{
		IdentityID:  identity.ID,
		OrgID:       session.OrgID,
		Role:        session.Role,
		SessionID:   session.ID,
		MFAVerified: session.MFAVerified,
		TokenType:   "access",
	}

	return token, nil
}

func (t *fakeTokenService) ValidateAccessToken(tokenString string) (*service.AccessClaims, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	claims, ok := t.issued[tokenString]
	if !ok {
		return nil, errTokenRejected
	}

	return claims, nil
}

func (t *fakeTokenService) NewRefreshToken() (string, string, error) {
	raw := uuid.NewString()

	return raw, t.HashToken(raw), nil
}

func (t *fakeTokenService) HashToken(raw string) string {
	return "hash$" + raw
}

func (t *fakeTokenService) AccessTokenTTL() time.Duration {
	return 15 * time.Minute
}

func (t *fakeTokenService) RefreshTokenTTL() time.Duration {
	return 7 * 24 * time.Hour
}

var errTokenRejected = errTokenRejectedType{}

type errTokenRejectedType struct{}

func (errTokenRejectedType) Error() string { return "token rejected" }

// fakeTotp accepts a single configured code.
type fakeTotp struct {
	accept string
}

func (f *fakeTotp) GenerateSecret() (string, error) {
	return "FAKESECRET", nil
}

func (f *fakeTotp) ProvisionURI(secret, account string) string {
	return "otpauth://totp/test:" + account + "?secret=" + secret
}

func (f *fakeTotp) Verify(_, code string, _ time.Time) bool {
	return f.accept != "" && code == f.accept
}

// fakeQRCode returns fixed bytes.
type fakeQRCode struct{}

func (f *fakeQRCode) GeneratePNG(content string) ([]byte, error) {
	return []byte("png:" + content), nil
}

func (f *fakeQRCode) GenerateBase64(content string) (string, error) {
	return "b64:" + content, nil
}
