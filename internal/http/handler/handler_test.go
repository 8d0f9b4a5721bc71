package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amalthea/finance-api/internal/auth"
	"github.com/amalthea/finance-api/internal/domain"
	"github.com/amalthea/finance-api/internal/http/handler"
	"github.com/amalthea/finance-api/internal/repository"
	"github.com/amalthea/finance-api/internal/service"
	"github.com/amalthea/finance-api/internal/testutil"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testServer struct {
	db      *gorm.DB
	org     *domain.Organization
	project *domain.Project
	router  chi.Router
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	org := testutil.CreateTestOrganization(t, db, "Acme Builders")
	project := testutil.CreateTestProject(t, db, org.ID, "Warehouse Fit-out", testutil.Dec("1000"))

	sequenceRepo := repository.NewSequenceRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	projectRepo := repository.NewProjectRepository(db)

	sequenceService := service.NewSequenceService(sequenceRepo, service.SequenceOptions{
		AllocationTimeout: 2 * time.Second,
		InitialBackoff:    5 * time.Millisecond,
	}, logger)
	lifecycleService := service.NewLifecycleService(documentRepo, logger)
	documentService := service.NewDocumentService(documentRepo, projectRepo, sequenceService, logger)
	financialService := service.NewFinancialService(repository.NewFinancialRepository(db), logger)
	projectService := service.NewProjectService(projectRepo, logger)

	sequences := handler.NewSequenceHandler(sequenceService, logger)
	documents := handler.NewDocumentHandler(documentService, lifecycleService, logger)
	projects := handler.NewProjectHandler(projectService, financialService, documentService, logger)

	r := chi.NewRouter()
	r.Get("/sequences", sequences.List)
	r.Route("/sequences/{docType}", func(r chi.Router) {
		r.Get("/", sequences.Peek)
		r.Post("/allocate", sequences.Allocate)
		r.Put("/", sequences.Initialize)
	})
	r.Route("/documents/{kind}", func(r chi.Router) {
		r.Get("/", documents.List)
		r.Post("/", documents.Create)
		r.Get("/stats", documents.Stats)
		r.Post("/bulk-transitions", documents.BulkTransition)
		r.Get("/{id}", documents.GetByID)
		r.Put("/{id}", documents.Update)
		r.Get("/{id}/state", documents.GetState)
		r.Get("/{id}/transitions", documents.AllowedTransitions)
		r.Post("/{id}/transitions", documents.Transition)
		r.Get("/{id}/history", documents.History)
	})
	r.Post("/expenses/{id}/invoice", documents.AddExpenseToInvoice)
	r.Route("/projects", func(r chi.Router) {
		r.Get("/", projects.List)
		r.Post("/", projects.Create)
		r.Get("/{id}", projects.GetByID)
		r.Get("/{id}/financials", projects.GetFinancials)
		r.Get("/{id}/overview", projects.GetOverview)
		r.Get("/{id}/billable-expenses", projects.ListBillableExpenses)
		r.Get("/{id}/tasks", projects.ListTasks)
		r.Post("/{id}/tasks", projects.CreateTask)
		r.Put("/{id}/tasks/{taskId}/state", projects.UpdateTaskState)
	})

	return &testServer{db: db, org: org, project: project, router: r}
}

func (s *testServer) user(roles ...domain.UserRoleType) *auth.UserContext {
	return &auth.UserContext{
		UserID:      uuid.New(),
		DisplayName: "Test User",
		Email:       "test@example.com",
		Roles:       roles,
		OrgID:       s.org.ID,
	}
}

// do sends a request as user; a nil user sends it unauthenticated
func (s *testServer) do(t *testing.T, user *auth.UserContext, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		req = req.WithContext(auth.WithUserContext(context.Background(), user))
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v), rr.Body.String())
	return v
}
