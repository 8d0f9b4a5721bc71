package logger

import (
	"testing"

	"github.com/amalthea/finance-api/internal/config"
	"github.com/amalthea/finance-api/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger_Level(t *testing.T) {
	app := &config.AppConfig{Name: "Finance API", Environment: "development"}

	l, err := NewLogger(&config.LoggingConfig{Level: "warn", Format: "console"}, app)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))

	l, err = NewLogger(&config.LoggingConfig{Level: "loud"}, app)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestScopedLoggers(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)
	actor := &domain.Actor{ID: uuid.New(), OrgID: uuid.New()}
	docID := uuid.New()

	ForDocument(ForActor(base, actor), domain.KindExpense, docID).Info("document status changed")
	ForActor(base, nil).Info("no actor")

	require.Equal(t, 2, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, actor.ID.String(), fields["actor_id"])
	assert.Equal(t, actor.OrgID.String(), fields["org_id"])
	assert.Equal(t, "expense", fields["kind"])
	assert.Equal(t, docID.String(), fields["document_id"])
	assert.Empty(t, logs.All()[1].ContextMap())
}
