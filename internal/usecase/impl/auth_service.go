// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"time"

	"jobdeck/config"
	deliverycontext "jobdeck/internal/delivery/context"
	"jobdeck/internal/domain/entity"
	domainerrors "jobdeck/internal/domain/errors"
	"jobdeck/internal/domain/repository"
	"jobdeck/internal/domain/service"
	"jobdeck/internal/infra/obs"
	"jobdeck/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// authService implements the AuthUsecase interface.
type authService struct {
	txManager    repository.TransactionManager
	sessionRepo  repository.SessionRepository
	identityRepo repository.IdentityRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	totpService  service.TotpService
	metrics      *obs.Metrics
	defaultOrgID uuid.UUID
	logger       *slog.Logger

	// timingPadHash absorbs verification time when the email does not
	// resolve, so unknown and known accounts fail in comparable time.
	timingPadHash string
}

// AuthServiceParams holds dependencies for authService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	SessionRepo  repository.SessionRepository
	IdentityRepo repository.IdentityRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	TotpService  service.TotpService
	Metrics      *obs.Metrics
	Config       *config.Config
	Logger       *slog.Logger
}

// NewAuthService is the constructor for authService.
func NewAuthService(params AuthServiceParams) (usecase.AuthUsecase, error) {
	var defaultOrgID uuid.UUID
	if params.Config.Admin != nil && params.Config.Admin.DefaultOrgID != "" {
		parsed, err := uuid.Parse(params.Config.Admin.DefaultOrgID)
		if err != nil {
			return nil, errors.Wrap(err, "parse admin default org id")
		}
		defaultOrgID = parsed
	}

	padHash, err := params.Hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, errors.Wrap(err, "prepare timing pad hash")
	}

	return &authService{
		txManager:     params.TxManager,
		sessionRepo:   params.SessionRepo,
		identityRepo:  params.IdentityRepo,
		hasher:        params.Hasher,
		tokenService:  params.TokenService,
		totpService:   params.TotpService,
		metrics:       params.Metrics,
		defaultOrgID:  defaultOrgID,
		logger:        params.Logger,
		timingPadHash: padHash,
	}, nil
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Login verifies a password credential and issues a session plus token pair.
func (srv *authService) Login(ctx context.Context, input usecase.LoginInput) (*usecase.TokenPairOutput, error) {
	var (
		identity   *entity.Identity
		session    *entity.Session
		rawRefresh string
	)

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		identityRepo := repoFactory.NewIdentityRepository()
		credentialRepo := repoFactory.NewCredentialRepository()

		found, err := identityRepo.FindByEmail(ctx, input.Kind, input.Email)
		if errors.Is(err, repository.ErrIdentityNotFound) {
			// Burn comparable time before rejecting.
			srv.hasher.Verify(input.Password, srv.timingPadHash)

			return domainerrors.ErrInvalidCredential
		}
		if err != nil {
			return errors.Wrap(err, "failed to find identity")
		}
		identity = found

		if !identity.IsActive() {
			return domainerrors.ErrIdentityDisabled
		}

		credential, err := credentialRepo.FindByIdentityID(ctx, identity.ID)
		if errors.Is(err, repository.ErrCredentialNotFound) {
			srv.hasher.Verify(input.Password, srv.timingPadHash)

			return domainerrors.ErrInvalidCredential
		}
		if err != nil {
			return errors.Wrap(err, "failed to load credential")
		}

		ok, rehashNeeded := srv.hasher.Verify(input.Password, credential.Hash)
		if !ok {
			return domainerrors.ErrInvalidCredential
		}

		orgID, err := srv.resolveOrg(identity)
		if err != nil {
			return err
		}

		mfaVerified, err := srv.checkMfaGate(ctx, repoFactory, identity, orgID, input.MfaCode)
		if err != nil {
			return err
		}

		if rehashNeeded {
			if err := srv.upgradeHash(ctx, repoFactory, identity, orgID, input, credentialRepo); err != nil {
				return err
			}
		}

		session, rawRefresh, err = srv.createSession(ctx, repoFactory.NewSessionRepository(), identity, orgID, mfaVerified)
		if err != nil {
			return err
		}

		return repoFactory.NewAuditRepository().Append(ctx, &entity.AuditEvent{
			OrgID:     orgID,
			ActorID:   &identity.ID,
			Event:     entity.AuditLoginSuccess,
			RequestID: input.RequestID,
			IPAddress: input.ClientIP,
		})
	})
	if err != nil {
		srv.metrics.LoginsTotal.WithLabelValues("failure").Inc()
		srv.recordLoginFailure(ctx, identity, input)
		srv.log(ctx).Warn("Login failed", slog.String("email", input.Email), slog.Any("error", err))

		return nil, err
	}

	srv.metrics.LoginsTotal.WithLabelValues("success").Inc()
	srv.log(ctx).Info("Login succeeded", slog.Any("identityID", identity.ID), slog.Any("sessionID", session.ID))

	return srv.buildTokenPair(identity, session, rawRefresh)
}

// Refresh spends a refresh token exactly once, rotating the session.
func (srv *authService) Refresh(ctx context.Context, input usecase.RefreshInput) (*usecase.TokenPairOutput, error) {
	tokenHash := srv.tokenService.HashToken(input.RefreshToken)

	var (
		identity   *entity.Identity
		successor  *entity.Session
		rawRefresh string
	)

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		sessionRepo := repoFactory.NewSessionRepository()

		current, err := sessionRepo.FindByRefreshHash(ctx, tokenHash)
		if errors.Is(err, repository.ErrSessionNotFound) {
			return domainerrors.ErrSessionExpired
		}
		if err != nil {
			return errors.Wrap(err, "failed to find session by refresh hash")
		}

		now := time.Now()

		// A revoked session's token being spent again means the token leaked
		// or a replay is underway. Kill every session of the identity.
		if current.Revoked {
			return srv.revokeLineageOnReuse(ctx, repoFactory, current, input)
		}

		if !current.CanRefresh(now) {
			return domainerrors.ErrSessionExpired
		}

		identity, err = repoFactory.NewIdentityRepository().FindByID(ctx, current.IdentityID)
		if err != nil {
			return errors.Wrap(err, "failed to load identity for rotation")
		}
		if !identity.IsActive() {
			return domainerrors.ErrIdentityDisabled
		}

		flipped, err := sessionRepo.RevokeIfActive(ctx, current.ID, entity.RevokeReasonRotated)
		if err != nil {
			return errors.Wrap(err, "failed to revoke rotated session")
		}
		if !flipped {
			// A concurrent refresh spent this token between our read and the
			// update. The read above predates the winner's commit, so the
			// losing spend is a second use of the same token.
			return srv.revokeLineageOnReuse(ctx, repoFactory, current, input)
		}

		successor, rawRefresh, err = srv.createSuccessorSession(ctx, sessionRepo, current)
		if err != nil {
			return err
		}

		return repoFactory.NewAuditRepository().Append(ctx, &entity.AuditEvent{
			OrgID:     current.OrgID,
			ActorID:   &current.IdentityID,
			Event:     entity.AuditSessionRotated,
			RequestID: input.RequestID,
			IPAddress: input.ClientIP,
		})
	})
	if err != nil {
		srv.log(ctx).Warn("Refresh failed", slog.Any("error", err))

		return nil, err
	}

	srv.metrics.SessionRotations.Inc()

	return srv.buildTokenPair(identity, successor, rawRefresh)
}

// Logout revokes the session owning the refresh token. Unknown tokens are a
// no-op so repeated logouts stay idempotent.
func (srv *authService) Logout(ctx context.Context, input usecase.LogoutInput) error {
	tokenHash := srv.tokenService.HashToken(input.RefreshToken)

	return srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		sessionRepo := repoFactory.NewSessionRepository()

		session, err := sessionRepo.FindByRefreshHash(ctx, tokenHash)
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "failed to find session for logout")
		}
		if session.Revoked {
			return nil
		}

		if err := sessionRepo.Revoke(ctx, session.ID, entity.RevokeReasonLogout); err != nil {
			return errors.Wrap(err, "failed to revoke session on logout")
		}
		srv.metrics.SessionsRevoked.WithLabelValues(entity.RevokeReasonLogout).Inc()

		return repoFactory.NewAuditRepository().Append(ctx, &entity.AuditEvent{
			OrgID:   session.OrgID,
			ActorID: &session.IdentityID,
			Event:   entity.AuditLogout,
		})
	})
}

// Authenticate validates an access token and re-checks its session against
// the store. This is the hot path run by the auth middleware on every request.
func (srv *authService) Authenticate(ctx context.Context, accessToken string) (*usecase.AuthenticatedSession, error) {
	claims, err := srv.tokenService.ValidateAccessToken(accessToken)
	if err != nil {
		return nil, domainerrors.ErrSessionExpired.WrapMessage("access token rejected")
	}

	session, err := srv.sessionRepo.FindByID(ctx, claims.SessionID)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return nil, domainerrors.ErrSessionRevoked
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load session")
	}

	if session.Revoked {
		return nil, domainerrors.ErrSessionRevoked
	}
	if !session.Active(time.Now()) {
		return nil, domainerrors.ErrSessionExpired
	}

	return &usecase.AuthenticatedSession{
		IdentityID:  claims.IdentityID,
		OrgID:       session.OrgID,
		Role:        session.Role,
		SessionID:   session.ID,
		MFAVerified: session.MFAVerified,
	}, nil
}

// RevokeSessions revokes every live session of an identity. The target must
// belong to the caller's organization; a valid identity ID from another tenant
// is rejected before any session is touched.
func (srv *authService) RevokeSessions(ctx context.Context, input usecase.RevokeSessionsInput) (int, error) {
	var revoked int

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		target, err := repoFactory.NewIdentityRepository().FindByID(ctx, input.IdentityID)
		if errors.Is(err, repository.ErrIdentityNotFound) {
			return domainerrors.ErrIdentityNotFound
		}
		if err != nil {
			return errors.Wrap(err, "failed to load target identity")
		}

		targetOrg, err := resolveIdentityOrg(target, srv.defaultOrgID)
		if err != nil {
			return err
		}
		if targetOrg != input.OrgID {
			return domainerrors.ErrOrgMismatch
		}

		sessionRepo := repoFactory.NewSessionRepository()

		active, err := sessionRepo.FindActiveByIdentityID(ctx, input.OrgID, input.IdentityID)
		if err != nil {
			return errors.Wrap(err, "failed to list active sessions")
		}
		revoked = len(active)
		if revoked == 0 {
			return nil
		}

		reason := input.Reason
		if reason == "" {
			reason = entity.RevokeReasonAdminAction
		}

		if err := sessionRepo.RevokeAllForIdentity(ctx, input.OrgID, input.IdentityID, reason); err != nil {
			return errors.Wrap(err, "failed to revoke sessions")
		}
		srv.metrics.SessionsRevoked.WithLabelValues(reason).Inc()

		return repoFactory.NewAuditRepository().Append(ctx, &entity.AuditEvent{
			OrgID:     input.OrgID,
			ActorID:   &input.ActorID,
			Event:     entity.AuditSessionsRevoked,
			Reason:    reason,
			RequestID: input.RequestID,
			IPAddress: input.ClientIP,
		})
	})
	if err != nil {
		return 0, err
	}

	return revoked, nil
}

// --- helpers ---

// revokeLineageOnReuse kills every session of the identity that owns a
// refresh token spent twice, writes the audit row, and reports the session as
// revoked. Shared by the replay branch and the concurrent-rotation loser.
func (srv *authService) revokeLineageOnReuse(
	ctx context.Context,
	repoFactory repository.RepositoryFactory,
	current *entity.Session,
	input usecase.RefreshInput,
) error {
	sessionRepo := repoFactory.NewSessionRepository()

	if err := sessionRepo.RevokeAllForIdentity(ctx, current.OrgID, current.IdentityID, entity.RevokeReasonAdminAction); err != nil {
		return errors.Wrap(err, "failed to revoke lineage after token reuse")
	}
	srv.metrics.SessionsRevoked.WithLabelValues(entity.RevokeReasonAdminAction).Inc()

	if err := repoFactory.NewAuditRepository().Append(ctx, &entity.AuditEvent{
		OrgID:     current.OrgID,
		ActorID:   &current.IdentityID,
		Event:     entity.AuditSessionsRevoked,
		Reason:    "refresh token reuse detected",
		RequestID: input.RequestID,
		IPAddress: input.ClientIP,
	}); err != nil {
		return errors.Wrap(err, "failed to audit lineage revocation")
	}

	return domainerrors.ErrSessionRevoked
}

// resolveIdentityOrg maps an identity to its organization. Legacy admin
// accounts with no organization resolve to the configured default org; without
// one they have no tenant and every org-scoped operation refuses them.
func resolveIdentityOrg(identity *entity.Identity, defaultOrgID uuid.UUID) (uuid.UUID, error) {
	if identity.OrgID != nil {
		return *identity.OrgID, nil
	}
	if identity.Kind == entity.KindAdmin && defaultOrgID != uuid.Nil {
		return defaultOrgID, nil
	}

	return uuid.Nil, domainerrors.ErrInternalError.WrapMessage("identity has no resolvable organization")
}

func (srv *authService) resolveOrg(identity *entity.Identity) (uuid.UUID, error) {
	return resolveIdentityOrg(identity, srv.defaultOrgID)
}

// checkMfaGate enforces the factor policy at login. An enabled factor always
// demands a code; an organization policy demanding a factor for the role
// refuses issuance until one is enrolled and verified.
func (srv *authService) checkMfaGate(
	ctx context.Context,
	repoFactory repository.RepositoryFactory,
	identity *entity.Identity,
	orgID uuid.UUID,
	code string,
) (bool, error) {
	secret, err := repoFactory.NewMfaRepository().FindByIdentityID(ctx, identity.ID)
	if err != nil && !errors.Is(err, repository.ErrMfaSecretNotFound) {
		return false, errors.Wrap(err, "failed to load mfa enrollment")
	}

	hasEnabledFactor := err == nil && secret.Enabled()

	if hasEnabledFactor {
		if code == "" {
			return false, domainerrors.ErrMfaRequired
		}
		if !srv.totpService.Verify(secret.Secret, code, time.Now()) {
			return false, domainerrors.ErrMfaCodeInvalid
		}

		return true, nil
	}

	org, err := repoFactory.NewOrganizationRepository().FindByID(ctx, orgID)
	if errors.Is(err, repository.ErrOrganizationNotFound) {
		return false, domainerrors.ErrInternalError.WrapMessage("organization missing for identity")
	}
	if err != nil {
		return false, errors.Wrap(err, "failed to load organization policy")
	}

	if org.RequiresMFA(identity.Role) {
		return false, domainerrors.ErrMfaRequired
	}

	return false, nil
}

// upgradeHash rewrites a legacy credential with the current scheme inside the
// login transaction, so the upgrade and the issued session commit together.
func (srv *authService) upgradeHash(
	ctx context.Context,
	repoFactory repository.RepositoryFactory,
	identity *entity.Identity,
	orgID uuid.UUID,
	input usecase.LoginInput,
	credentialRepo repository.CredentialRepository,
) error {
	fresh, err := srv.hasher.Hash(input.Password)
	if err != nil {
		return errors.Wrap(err, "failed to re-hash credential")
	}
	if err := credentialRepo.UpdateHash(ctx, identity.ID, fresh); err != nil {
		return errors.Wrap(err, "failed to store upgraded hash")
	}
	srv.metrics.PasswordRehashes.Inc()

	return repoFactory.NewAuditRepository().Append(ctx, &entity.AuditEvent{
		OrgID:     orgID,
		ActorID:   &identity.ID,
		Event:     entity.AuditPasswordRehashed,
		RequestID: input.RequestID,
		IPAddress: input.ClientIP,
	})
}

func (srv *authService) createSession(
	ctx context.Context,
	sessionRepo repository.SessionRepository,
	identity *entity.Identity,
	orgID uuid.UUID,
	mfaVerified bool,
) (*entity.Session, string, error) {
	rawRefresh, refreshHash, err := srv.tokenService.NewRefreshToken()
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to mint refresh token")
	}

	now := time.Now()
	session := &entity.Session{
		ID:               uuid.New(),
		IdentityID:       identity.ID,
		OrgID:            orgID,
		Role:             identity.Role,
		RefreshTokenHash: refreshHash,
		MFAVerified:      mfaVerified,
		IssuedAt:         now,
		ExpiresAt:        now.Add(srv.tokenService.AccessTokenTTL()),
		RefreshExpiresAt: now.Add(srv.tokenService.RefreshTokenTTL()),
	}

	if err := sessionRepo.Create(ctx, session); err != nil {
		return nil, "", errors.Wrap(err, "failed to create session")
	}

	return session, rawRefresh, nil
}

func (srv *authService) createSuccessorSession(
	ctx context.Context,
	sessionRepo repository.SessionRepository,
	predecessor *entity.Session,
) (*entity.Session, string, error) {
	rawRefresh, refreshHash, err := srv.tokenService.NewRefreshToken()
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to mint successor refresh token")
	}

	now := time.Now()
	predecessorID := predecessor.ID
	session := &entity.Session{
		ID:               uuid.New(),
		IdentityID:       predecessor.IdentityID,
		OrgID:            predecessor.OrgID,
		Role:             predecessor.Role,
		RefreshTokenHash: refreshHash,
		PredecessorID:    &predecessorID,
		MFAVerified:      predecessor.MFAVerified,
		IssuedAt:         now,
		ExpiresAt:        now.Add(srv.tokenService.AccessTokenTTL()),
		RefreshExpiresAt: now.Add(srv.tokenService.RefreshTokenTTL()),
	}

	if err := sessionRepo.Create(ctx, session); err != nil {
		return nil, "", errors.Wrap(err, "failed to create successor session")
	}

	return session, rawRefresh, nil
}

// buildTokenPair signs the access token. Signing happens outside the
// transaction; only session state needs atomicity.
func (srv *authService) buildTokenPair(identity *entity.Identity, session *entity.Session, rawRefresh string) (*usecase.TokenPairOutput, error) {
	accessToken, err := srv.tokenService.GenerateAccessToken(identity, session)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign access token")
	}

	return &usecase.TokenPairOutput{
		AccessToken:  accessToken,
		RefreshToken: rawRefresh,
		ExpiresIn:    int64(srv.tokenService.AccessTokenTTL().Seconds()),
		Identity:     identity,
		Session:      session,
	}, nil
}

// recordLoginFailure appends a best-effort audit row outside the rolled-back
// login transaction.
func (srv *authService) recordLoginFailure(ctx context.Context, identity *entity.Identity, input usecase.LoginInput) {
	if identity == nil {
		return
	}
	orgID, err := srv.resolveOrg(identity)
	if err != nil {
		return
	}

	auditErr := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		return repoFactory.NewAuditRepository().Append(ctx, &entity.AuditEvent{
			OrgID:     orgID,
			ActorID:   &identity.ID,
			Event:     entity.AuditLoginFailed,
			RequestID: input.RequestID,
			IPAddress: input.ClientIP,
		})
	})
	if auditErr != nil {
		srv.log(ctx).Error("Failed to record login failure", slog.Any("error", auditErr))
	}
}
