package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/amalthea/finance-api/internal/domain"
	"github.com/amalthea/finance-api/internal/repository"
	"github.com/amalthea/finance-api/internal/service"
	"github.com/amalthea/finance-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db         *gorm.DB
	org        *domain.Organization
	project    *domain.Project
	sequences  *service.SequenceService
	lifecycle  *service.LifecycleService
	documents  *service.DocumentService
	financials *service.FinancialService
	projects   *service.ProjectService

	employee *domain.Actor
	manager  *domain.Actor
	viewer   *domain.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureOn(t, testutil.SetupTestDB(t))
}

// newFixtureOn builds the services on db and seeds an organization with one
// project
func newFixtureOn(t *testing.T, db *gorm.DB) *fixture {
	t.Helper()
	logger := zap.NewNop()

	org := testutil.CreateTestOrganization(t, db, "Acme Builders")
	project := testutil.CreateTestProject(t, db, org.ID, "Warehouse Fit-out", testutil.Dec("1000"))

	sequenceRepo := repository.NewSequenceRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	projectRepo := repository.NewProjectRepository(db)

	sequences := service.NewSequenceService(sequenceRepo, service.SequenceOptions{
		AllocationTimeout: 2 * time.Second,
		InitialBackoff:    5 * time.Millisecond,
	}, logger)

	return &fixture{
		db:         db,
		org:        org,
		project:    project,
		sequences:  sequences,
		lifecycle:  service.NewLifecycleService(documentRepo, logger),
		documents:  service.NewDocumentService(documentRepo, projectRepo, sequences, logger),
		financials: service.NewFinancialService(repository.NewFinancialRepository(db), logger),
		projects:   service.NewProjectService(projectRepo, logger),
		employee:   testutil.NewActor(org.ID, domain.RoleEmployee),
		manager:    testutil.NewActor(org.ID, domain.RoleManager),
		viewer:     testutil.NewActor(org.ID, domain.RoleViewer),
	}
}

func (f *fixture) createExpense(t *testing.T, owner *domain.Actor, amount string, billable bool) *domain.DocumentDTO {
	t.Helper()
	amt := testutil.Dec(amount)
	doc, err := f.documents.CreateExpense(ctxT(t), owner, &domain.CreateDocumentRequest{
		ProjectID:   &f.project.ID,
		Amount:      &amt,
		Category:    "Travel",
		Description: "Site visit",
		IsBillable:  &billable,
	})
	require.NoError(t, err)
	return doc
}

// moveExpense walks an expense along path, using the owner for owner edges
// and the manager for everything else
func (f *fixture) moveExpense(t *testing.T, id uuid.UUID, owner *domain.Actor, path ...string) {
	t.Helper()
	for _, to := range path {
		actor := f.manager
		if to == "submitted" || to == "draft" {
			actor = owner
		}
		reason := ""
		if to == domain.RejectedStatus {
			reason = "missing receipt"
		}
		_, err := f.lifecycle.Transition(ctxT(t), service.TransitionCommand{
			Kind:       domain.KindExpense,
			DocumentID: id,
			To:         to,
			Actor:      actor,
			Reason:     reason,
		})
		require.NoError(t, err, "moving expense to %s", to)
	}
}

func (f *fixture) insert(t *testing.T, doc interface{}) {
	t.Helper()
	require.NoError(t, f.db.Create(doc).Error)
}

func (f *fixture) header(owner *domain.Actor) domain.DocumentHeader {
	return domain.DocumentHeader{
		OrgID:     f.org.ID,
		ProjectID: &f.project.ID,
		OwnerID:   owner.ID,
	}
}

func today() time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour)
}

func dec(s string) decimal.Decimal {
	return testutil.Dec(s)
}

func ctxT(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}
