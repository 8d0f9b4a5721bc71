package database_test

import (
	"context"
	"testing"

	"github.com/amalthea/finance-api/internal/database"
	"github.com/amalthea/finance-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	db := testutil.SetupTestDB(t)

	require.NoError(t, database.HealthCheck(context.Background(), db))

	stats, err := database.HealthCheckWithStats(context.Background(), db)
	require.NoError(t, err)
	assert.LessOrEqual(t, stats.OpenConnections, 1)
}

func TestHealthCheck_ClosedConnection(t *testing.T) {
	db := testutil.SetupTestDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	err = database.HealthCheck(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database ping failed")

	_, err = database.HealthCheckWithStats(context.Background(), db)
	assert.Error(t, err)
}

func TestModelsAreMigrated(t *testing.T) {
	db := testutil.SetupTestDB(t)
	for _, model := range database.Models() {
		assert.True(t, db.Migrator().HasTable(model), "%T", model)
	}
}
