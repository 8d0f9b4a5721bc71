package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/amalthea/finance-api/internal/database"
	"github.com/amalthea/finance-api/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens a file backed SQLite database in a temp dir with the full
// schema migrated. A single connection keeps transactions serialized the way
// row locks do on PostgreSQL.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "finance.db") + "?_busy_timeout=5000&_foreign_keys=off"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// CreateTestOrganization inserts an organization
func CreateTestOrganization(t *testing.T, db *gorm.DB, name string) *domain.Organization {
	t.Helper()
	org := &domain.Organization{Name: name, Currency: "INR", IsActive: true}
	require.NoError(t, db.Create(org).Error)
	return org
}

// CreateTestProject inserts a project with budget into org
func CreateTestProject(t *testing.T, db *gorm.DB, orgID uuid.UUID, name string, budget decimal.Decimal) *domain.Project {
	t.Helper()
	project := &domain.Project{
		OrgID:    orgID,
		Name:     name,
		Budget:   budget,
		Currency: "INR",
	}
	require.NoError(t, db.Create(project).Error)
	return project
}

// CreateTestTask inserts a task in state with an optional due date
func CreateTestTask(t *testing.T, db *gorm.DB, project *domain.Project, state domain.TaskState, due *time.Time) *domain.Task {
	t.Helper()
	task := &domain.Task{
		OrgID:     project.OrgID,
		ProjectID: project.ID,
		Title:     "Task " + string(state),
		State:     state,
		DueDate:   due,
	}
	require.NoError(t, db.Create(task).Error)
	return task
}

// NewActor returns an actor of org holding roles
func NewActor(orgID uuid.UUID, roles ...domain.UserRoleType) *domain.Actor {
	return &domain.Actor{
		ID:    uuid.New(),
		Name:  "Test User",
		OrgID: orgID,
		Roles: roles,
	}
}

// Dec parses a decimal literal and panics on bad input
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
