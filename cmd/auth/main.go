package main

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"esfhub/internal/config"
	"esfhub/internal/handler"
	"esfhub/internal/httpserver"
	"esfhub/internal/logger"
	"esfhub/internal/repository/postgres"
	"esfhub/internal/router"
	"esfhub/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Error().Err(err).Msg("auth service exited")
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

	userRepo := postgres.NewUserRepo(db)
	authSvc := service.NewAuthService(userRepo, cfg.JWT)

	authH := handler.NewAuthHandler(authSvc)
	healthH := handler.NewHealthHandler("auth", db)

	r := router.SetupAuth(authSvc, authH, healthH, cfg.CORS.AllowedOrigins)
	return httpserver.Run("auth", cfg.Server, r)
}
