package service

import (
	"context"
	"fmt"
	"time"

	"github.com/amalthea/finance-api/internal/domain"
	"github.com/amalthea/finance-api/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

//go:generate mockgen -source=financial_service.go -destination=financial_store_mock.go -package=service
type FinancialStore interface {
	GetProject(ctx context.Context, orgID, projectID uuid.UUID) (*domain.Project, error)
	SumExpenses(ctx context.Context, orgID, projectID uuid.UUID) (decimal.Decimal, error)
	SumVendorBills(ctx context.Context, orgID, projectID uuid.UUID) (decimal.Decimal, error)
	SumEmployeeWages(ctx context.Context, orgID, projectID uuid.UUID) (decimal.Decimal, error)
	SumPurchaseOrders(ctx context.Context, orgID, projectID uuid.UUID) (decimal.Decimal, error)
	ListProjectTasks(ctx context.Context, orgID, projectID uuid.UUID) ([]domain.Task, error)
}

// FinancialService computes project financials from their cost sources.
// Nothing is cached; every call reads the store.
type FinancialService struct {
	store  FinancialStore
	logger *zap.Logger
}

// NewFinancialService creates a new FinancialService
func NewFinancialService(store FinancialStore, logger *zap.Logger) *FinancialService {
	return &FinancialService{
		store:  store,
		logger: logger,
	}
}

// Compute returns budget usage, revenue, profit and the cost breakdown of a project
func (s *FinancialService) Compute(ctx context.Context, orgID, projectID uuid.UUID) (*domain.ProjectFinancialSummary, error) {
	project, err := s.store.GetProject(ctx, orgID, projectID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, fmt.Errorf("%w: project %s", domain.ErrNotFound, projectID)
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	var breakdown domain.CostBreakdown
	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	sources := []struct {
		dst *decimal.Decimal
		sum func(context.Context, uuid.UUID, uuid.UUID) (decimal.Decimal, error)
	}{
		{&breakdown.Expenses, s.store.SumExpenses},
		{&breakdown.VendorBills, s.store.SumVendorBills},
		{&breakdown.EmployeeWages, s.store.SumEmployeeWages},
		{&breakdown.PurchaseOrders, s.store.SumPurchaseOrders},
	}
	for _, src := range sources {
		src := src
		p.Go(func(ctx context.Context) error {
			total, err := src.sum(ctx, orgID, projectID)
			if err != nil {
				return err
			}
			*src.dst = total
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		s.logger.Error("failed to compute project costs",
			zap.String("project_id", projectID.String()),
			zap.Error(err))
		return nil, err
	}

	summary := domain.NewFinancialSummary(project.Budget, breakdown)
	summary.ProjectID = project.ID
	summary.Currency = project.Currency
	return &summary, nil
}

// ProjectOverview returns financials, task metrics and the risk assessment of
// a project. now decides which tasks are overdue.
func (s *FinancialService) ProjectOverview(ctx context.Context, orgID, projectID uuid.UUID, now time.Time) (*domain.ProjectOverviewDTO, error) {
	summary, err := s.Compute(ctx, orgID, projectID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.store.ListProjectTasks(ctx, orgID, projectID)
	if err != nil {
		return nil, err
	}
	metrics := domain.ComputeTaskMetrics(tasks, now)

	return &domain.ProjectOverviewDTO{
		Financials: *summary,
		Tasks:      metrics,
		Risk:       domain.AssessRisk(*summary, metrics),
	}, nil
}

var _ FinancialStore = (*repository.FinancialRepository)(nil)
