package main

import (
	"context"
	"log/slog"
	"os"

	"jobdeck/config"
	"jobdeck/internal/delivery"
	"jobdeck/internal/delivery/http"
	"jobdeck/internal/delivery/http/middleware"
	"jobdeck/internal/delivery/http/router/handler"
	"jobdeck/internal/domain/service"
	"jobdeck/internal/infra/auth"
	logs "jobdeck/internal/infra/log"
	"jobdeck/internal/infra/obs"
	"jobdeck/internal/infra/persistence/postgres"
	"jobdeck/internal/infra/qrcode"
	"jobdeck/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		postgres.New,
		obs.NewMetrics,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			postgres.NewTransactionManager,
			postgres.NewIdentityRepository,
			postgres.NewCredentialRepository,
			postgres.NewSessionRepository,
			postgres.NewOrganizationRepository,
			postgres.NewBreakGlassRepository,
			postgres.NewIdempotencyRepository,
			postgres.NewMfaRepository,
			postgres.NewAuditRepository,
			postgres.NewLeadRepository,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewPasswordHasher,
			auth.NewJWTService,
			auth.NewTotpService,
			service.NewPermissionResolver,
			newQRCodeService,
		),
	)
}

// newQRCodeService creates a QR code service with dependency injection
func newQRCodeService(cfg *config.Config) service.QRCodeService {
	if cfg.QRCode == nil {
		// Use default values if not configured
		return qrcode.NewQRCodeService(256, "M")
	}

	return qrcode.NewQRCodeService(cfg.QRCode.Size, cfg.QRCode.ErrorCorrectionLevel)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewAuthService,
			impl.NewMfaService,
			impl.NewBreakGlassService,
			impl.NewIdempotencyService,
			impl.NewLeadService,
			impl.NewReadOnlyStore,
			impl.NewAdminService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewAuthMiddleware,
			middleware.NewAdminMiddleware,
			middleware.NewIdempotencyMiddleware,
			middleware.NewRateLimitMiddleware,
			middleware.NewRequestIDMiddleware,
			middleware.NewErrorMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewAuthHandler,
			handler.NewMfaHandler,
			handler.NewAdminHandler,
			handler.NewLeadHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
