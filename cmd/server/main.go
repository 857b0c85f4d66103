package main

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	_ "esfhub/docs"
	"esfhub/internal/authclient"
	"esfhub/internal/config"
	"esfhub/internal/email/noop"
	"esfhub/internal/email/ses"
	"esfhub/internal/gateway/gns"
	"esfhub/internal/handler"
	"esfhub/internal/httpserver"
	"esfhub/internal/logger"
	"esfhub/internal/port"
	"esfhub/internal/repository/postgres"
	"esfhub/internal/router"
	"esfhub/internal/service"
	s3storage "esfhub/internal/storage/s3"
)

//go:generate swag init -g cmd/server/main.go -d ../../ -o ../../docs

// @title                      ESF Service API
// @version                    1.0
// @description                Invoice synchronization and ESF submission against the GNS gateway.
// @BasePath                   /api/v1
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
func main() {
	if err := run(); err != nil {
		log.Error().Err(err).Msg("esf service exited")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Setup(cfg.Log); err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	refRepo := postgres.NewReferenceRepo(db)
	invoiceRepo := postgres.NewInvoiceRepo(db)
	docRepo := postgres.NewESFDocumentRepo(db)
	uow := postgres.NewUnitOfWork(db)

	// External collaborators
	gateway := gns.NewClient(cfg.GNS)

	var resolver port.IdentityResolver
	if cfg.Auth.URL != "" {
		resolver = authclient.NewClient(cfg.Auth)
	} else {
		log.Warn().Msg("auth.url not set, validating tokens locally")
		resolver = service.NewTokenIdentityResolver(cfg.JWT)
	}

	archive, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	var notifier port.Notifier
	switch cfg.Email.Provider {
	case "ses":
		notifier, err = ses.NewSESSender(cfg.Email)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
	default:
		notifier = noop.NewNoopSender()
	}

	// Initialize services
	refSvc := service.NewReferenceService(refRepo)
	invoiceSvc := service.NewInvoiceService(invoiceRepo, refRepo, uow, gateway)
	syncSvc := service.NewSyncService(uow, gateway)
	esfSvc := service.NewESFService(docRepo, gateway, archive, notifier)

	// Initialize handlers
	handlers := router.Handlers{
		Invoice:   handler.NewInvoiceHandler(invoiceSvc, syncSvc),
		Reference: handler.NewReferenceHandler(refSvc),
		ESF:       handler.NewESFHandler(esfSvc),
		GNS:       handler.NewGNSHandler(gateway),
		Health:    handler.NewHealthHandler("esf", db),
	}

	r := router.Setup(resolver, handlers, cfg.CORS.AllowedOrigins)
	return httpserver.Run("esf", cfg.Server, r)
}
