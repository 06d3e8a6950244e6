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

// mfaService implements the MfaUsecase interface.
type mfaService struct {
	txManager     repository.TransactionManager
	identityRepo  repository.IdentityRepository
	totpService   service.TotpService
	qrcodeService service.QRCodeService
	metrics       *obs.Metrics
	defaultOrgID  uuid.UUID
	logger        *slog.Logger
}

// MfaServiceParams holds dependencies for mfaService, injected by Fx.
type MfaServiceParams struct {
	fx.In

	TxManager     repository.TransactionManager
	IdentityRepo  repository.IdentityRepository
	TotpService   service.TotpService
	QRCodeService service.QRCodeService
	Metrics       *obs.Metrics
	Config        *config.Config
	Logger        *slog.Logger
}

// NewMfaService is the constructor for mfaService.
func NewMfaService(params MfaServiceParams) (usecase.MfaUsecase, error) {
	var defaultOrgID uuid.UUID
	if params.Config.Admin != nil && params.Config.Admin.DefaultOrgID != "" {
		parsed, err := uuid.Parse(params.Config.Admin.DefaultOrgID)
		if err != nil {
			return nil, errors.Wrap(err, "parse admin default org id")
		}
		defaultOrgID = parsed
	}

	return &mfaService{
		txManager:     params.TxManager,
		identityRepo:  params.IdentityRepo,
		totpService:   params.TotpService,
		qrcodeService: params.QRCodeService,
		metrics:       params.Metrics,
		defaultOrgID:  defaultOrgID,
		logger:        params.Logger,
	}, nil
}

func (srv *mfaService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Enroll issues a pending secret for the identity. An enabled factor cannot
// be silently replaced; it must be disabled first.
func (srv *mfaService) Enroll(ctx context.Context, identityID uuid.UUID) (*usecase.EnrollMfaOutput, error) {
	identity, err := srv.identityRepo.FindByID(ctx, identityID)
	if errors.Is(err, repository.ErrIdentityNotFound) {
		return nil, domainerrors.ErrIdentityNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load identity for enrollment")
	}

	var output *usecase.EnrollMfaOutput
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		mfaRepo := repoFactory.NewMfaRepository()

		existing, err := mfaRepo.FindByIdentityID(ctx, identityID)
		if err != nil && !errors.Is(err, repository.ErrMfaSecretNotFound) {
			return errors.Wrap(err, "failed to load existing enrollment")
		}
		if err == nil && existing.Enabled() {
			return domainerrors.ErrMfaAlreadyEnabled
		}

		secret, err := srv.totpService.GenerateSecret()
		if err != nil {
			return errors.Wrap(err, "failed to generate totp secret")
		}

		if err := mfaRepo.Upsert(ctx, &entity.MfaSecret{
			IdentityID: identityID,
			Secret:     secret,
			State:      entity.MfaPending,
		}); err != nil {
			return errors.Wrap(err, "failed to store pending secret")
		}

		uri := srv.totpService.ProvisionURI(secret, identity.Email)
		qrBase64, err := srv.qrcodeService.GenerateBase64(uri)
		if err != nil {
			return errors.Wrap(err, "failed to render enrollment qr code")
		}

		output = &usecase.EnrollMfaOutput{
			Secret:       secret,
			ProvisionURI: uri,
			QRCodeBase64: qrBase64,
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("MFA enrollment issued", slog.Any("identityID", identityID))

	return output, nil
}

// Verify confirms possession of the pending factor with a live code.
func (srv *mfaService) Verify(ctx context.Context, input usecase.VerifyMfaInput) error {
	return srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		mfaRepo := repoFactory.NewMfaRepository()

		secret, err := mfaRepo.FindByIdentityID(ctx, input.IdentityID)
		if errors.Is(err, repository.ErrMfaSecretNotFound) {
			return domainerrors.ErrMfaNotEnrolled
		}
		if err != nil {
			return errors.Wrap(err, "failed to load enrollment")
		}
		if secret.Enabled() {
			return domainerrors.ErrMfaAlreadyEnabled
		}

		if !srv.totpService.Verify(secret.Secret, input.Code, time.Now()) {
			return domainerrors.ErrMfaCodeInvalid
		}

		now := time.Now()
		secret.State = entity.MfaEnabled
		secret.ConfirmedAt = &now
		if err := mfaRepo.Update(ctx, secret); err != nil {
			return errors.Wrap(err, "failed to enable factor")
		}

		identity, err := repoFactory.NewIdentityRepository().FindByID(ctx, input.IdentityID)
		if err != nil {
			return errors.Wrap(err, "failed to load identity")
		}
		orgID, err := resolveIdentityOrg(identity, srv.defaultOrgID)
		if err != nil {
			return err
		}

		// Sessions minted before verification lack the MFA claim; they end
		// here so the next login carries it.
		sessionRepo := repoFactory.NewSessionRepository()
		if err := sessionRepo.RevokeAllForIdentity(ctx, orgID, input.IdentityID, entity.RevokeReasonMFAEnabled); err != nil {
			return errors.Wrap(err, "failed to revoke sessions on mfa enable")
		}

		return repoFactory.NewAuditRepository().Append(ctx, &entity.AuditEvent{
			OrgID:     orgID,
			ActorID:   &input.IdentityID,
			Event:     entity.AuditMfaEnabled,
			RequestID: input.RequestID,
			IPAddress: input.ClientIP,
		})
	})
}

// Disable destroys the enrollment and revokes all sessions of the identity in
// the same transaction, so a stolen session cannot outlive the factor reset.
// The target must live in the actor's organization; role checks alone do not
// reach across tenants.
func (srv *mfaService) Disable(ctx context.Context, input usecase.DisableMfaInput) error {
	return srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		identity, err := repoFactory.NewIdentityRepository().FindByID(ctx, input.IdentityID)
		if errors.Is(err, repository.ErrIdentityNotFound) {
			return domainerrors.ErrIdentityNotFound
		}
		if err != nil {
			return errors.Wrap(err, "failed to load target identity")
		}

		orgID, err := resolveIdentityOrg(identity, srv.defaultOrgID)
		if err != nil {
			return err
		}
		if orgID != input.ActorOrgID {
			return domainerrors.ErrOrgMismatch
		}

		mfaRepo := repoFactory.NewMfaRepository()

		if err := mfaRepo.Delete(ctx, input.IdentityID); err != nil {
			if errors.Is(err, repository.ErrMfaSecretNotFound) {
				return domainerrors.ErrMfaNotEnrolled
			}

			return errors.Wrap(err, "failed to delete enrollment")
		}

		sessionRepo := repoFactory.NewSessionRepository()
		if err := sessionRepo.RevokeAllForIdentity(ctx, orgID, input.IdentityID, entity.RevokeReasonMFADisabled); err != nil {
			return errors.Wrap(err, "failed to revoke sessions on mfa disable")
		}
		srv.metrics.SessionsRevoked.WithLabelValues(entity.RevokeReasonMFADisabled).Inc()

		return repoFactory.NewAuditRepository().Append(ctx, &entity.AuditEvent{
			OrgID:     orgID,
			ActorID:   &input.ActorID,
			Event:     entity.AuditMfaDisabled,
			Reason:    input.Reason,
			RequestID: input.RequestID,
			IPAddress: input.ClientIP,
		})
	})
}
