package testutil

import (
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/amalthea/finance-api/internal/database"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupPostgresTestDB connects to the PostgreSQL server named by the
// DATABASE_* environment variables and migrates the schema into a schema
// private to t, dropped on cleanup. The test is skipped when DATABASE_HOST
// is not set.
//
// Unlike SetupTestDB the pool has several connections, so row locks and
// compare-and-set updates are exercised by real concurrent transactions.
func SetupPostgresTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	host := os.Getenv("DATABASE_HOST")
	if host == "" {
		t.Skip("DATABASE_HOST not set, skipping PostgreSQL test")
	}
	port := getEnvOrDefault("DATABASE_PORT", "5432")
	user := getEnvOrDefault("DATABASE_USER", "postgres")
	password := getEnvOrDefault("DATABASE_PASSWORD", "postgres")
	dbname := getEnvOrDefault("DATABASE_NAME", "finance_test")

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
		host, port, user, password, dbname)
	cfg := &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	admin, err := gorm.Open(postgres.Open(dsn), cfg)
	require.NoError(t, err, "Failed to connect to test database. Ensure PostgreSQL is running.")
	adminDB, err := admin.DB()
	require.NoError(t, err)

	schema := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	require.NoError(t, admin.Exec("CREATE SCHEMA " + schema).Error)

	db, err := gorm.Open(postgres.Open(dsn+" search_path="+schema), cfg)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(10)

	t.Cleanup(func() {
		_ = sqlDB.Close()
		_ = admin.Exec("DROP SCHEMA IF EXISTS " + schema + " CASCADE").Error
		_ = adminDB.Close()
	})

	require.NoError(t, database.AutoMigrate(db))
	return db
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
