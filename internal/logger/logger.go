package logger

import (
	"fmt"

	"github.com/amalthea/finance-api/internal/config"
	"github.com/amalthea/finance-api/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the application logger. Production and "json" format
// write JSON with ISO8601 timestamps; everything else writes colored console
// lines. An unknown level falls back to info.
func NewLogger(cfg *config.LoggingConfig, appCfg *config.AppConfig) (*zap.Logger, error) {
	zapCfg := zap.NewDevelopmentConfig()
	zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if cfg.Format == "json" || appCfg.Environment == "production" {
		zapCfg = zap.NewProductionConfig()
		zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	level := zapcore.InfoLevel
	if parsed, err := zapcore.ParseLevel(cfg.Level); err == nil {
		level = parsed
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.InitialFields = map[string]interface{}{
		"app":         appCfg.Name,
		"environment": appCfg.Environment,
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}

// ForActor scopes logger to the user and organization acting on a request
func ForActor(logger *zap.Logger, actor *domain.Actor) *zap.Logger {
	if actor == nil {
		return logger
	}
	return logger.With(
		zap.String("actor_id", actor.ID.String()),
		zap.String("org_id", actor.OrgID.String()),
	)
}

// ForDocument scopes logger to a single document
func ForDocument(logger *zap.Logger, kind domain.DocumentKind, id uuid.UUID) *zap.Logger {
	return logger.With(
		zap.String("kind", string(kind)),
		zap.String("document_id", id.String()),
	)
}
