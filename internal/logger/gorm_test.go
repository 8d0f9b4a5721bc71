package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func statement() (string, int64) {
	return `SELECT * FROM "document_sequences" WHERE org_id = 'x'`, 1
}

func TestGormLogger_Trace(t *testing.T) {
	tests := []struct {
		name    string
		level   gormlogger.LogLevel
		begin   time.Duration
		err     error
		message string
		zapLvl  zapcore.Level
	}{
		{"error", gormlogger.Warn, 0, errors.New("deadlock detected"), "sql error", zapcore.ErrorLevel},
		{"slow", gormlogger.Warn, time.Second, nil, "slow sql", zapcore.WarnLevel},
		{"info level logs every statement", gormlogger.Info, 0, nil, "sql", zapcore.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			l := NewGormLogger(zap.New(core), tt.level)

			l.Trace(context.Background(), time.Now().Add(-tt.begin), statement, tt.err)

			require.Equal(t, 1, logs.Len())
			entry := logs.All()[0]
			assert.Equal(t, tt.message, entry.Message)
			assert.Equal(t, tt.zapLvl, entry.Level)
			assert.Equal(t, "gorm", entry.LoggerName)
			assert.Equal(t, int64(1), entry.ContextMap()["rows"])
		})
	}
}

func TestGormLogger_Quiet(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewGormLogger(zap.New(core), gormlogger.Warn)

	l.Trace(context.Background(), time.Now(), statement, gormlogger.ErrRecordNotFound)
	l.Trace(context.Background(), time.Now(), statement, nil)
	l.LogMode(gormlogger.Silent).Trace(context.Background(), time.Now(), statement, errors.New("boom"))
	l.Info(context.Background(), "migrating %s", "projects")

	assert.Zero(t, logs.Len())
}

func TestGormLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Info, GormLevel("debug"))
	assert.Equal(t, gormlogger.Warn, GormLevel("info"))
	assert.Equal(t, gormlogger.Error, GormLevel("error"))
	assert.Equal(t, gormlogger.Silent, GormLevel("silent"))
}
