package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amalthea/finance-api/docs"
	"github.com/amalthea/finance-api/internal/auth"
	"github.com/amalthea/finance-api/internal/config"
	"github.com/amalthea/finance-api/internal/database"
	"github.com/amalthea/finance-api/internal/http/handler"
	"github.com/amalthea/finance-api/internal/http/middleware"
	"github.com/amalthea/finance-api/internal/http/router"
	"github.com/amalthea/finance-api/internal/logger"
	"github.com/amalthea/finance-api/internal/repository"
	"github.com/amalthea/finance-api/internal/service"
	"go.uber.org/zap"
)

// @title Finance API
// @version 1.0
// @description Project finance core: document numbering, document lifecycles and project cost rollups

// @contact.name API Support
// @contact.email support@amalthea.dev

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
// @description API key for service integrations; requires X-Org-ID
// @Security BearerAuth
// @Security ApiKeyAuth

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Basic configuration first, for logging setup
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	if host := os.Getenv("SWAGGER_HOST"); host != "" {
		docs.SwaggerInfo.Host = host
	} else {
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// Development reads secrets from the environment, staging and production
	// may pull them from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}
	if cfg.Auth.JWTSecret == "" && cfg.Auth.APIKey == "" {
		log.Warn("Neither JWT_SECRET nor ADMIN_API_KEY is set; every API request will be rejected")
	}

	db, err := database.NewDatabase(&cfg.Database, log, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Repositories
	sequenceRepo := repository.NewSequenceRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	financialRepo := repository.NewFinancialRepository(db)
	projectRepo := repository.NewProjectRepository(db)

	// Services
	sequenceService := service.NewSequenceService(sequenceRepo, service.SequenceOptions{
		AllocationTimeout: cfg.Sequence.AllocationTimeout(),
		InitialBackoff:    cfg.Sequence.InitialBackoff(),
	}, log)
	lifecycleService := service.NewLifecycleService(documentRepo, log)
	documentService := service.NewDocumentService(documentRepo, projectRepo, sequenceService, log)
	financialService := service.NewFinancialService(financialRepo, log)
	projectService := service.NewProjectService(projectRepo, log)

	// Middleware
	authMiddleware := auth.NewMiddleware(&cfg.Auth, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Handlers
	sequenceHandler := handler.NewSequenceHandler(sequenceService, log)
	documentHandler := handler.NewDocumentHandler(documentService, lifecycleService, log)
	projectHandler := handler.NewProjectHandler(projectService, financialService, documentService, log)

	rt := router.NewRouter(
		cfg,
		log,
		db,
		authMiddleware,
		rateLimiter,
		sequenceHandler,
		documentHandler,
		projectHandler,
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           rt.Setup(),
		ReadTimeout:       cfg.Server.ReadTimeoutDuration(),
		ReadHeaderTimeout: cfg.Server.ReadTimeoutDuration(),
		WriteTimeout:      cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		if sqlDB, err := db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Warn("Error closing database connection", zap.Error(err))
			}
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
