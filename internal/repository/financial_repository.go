package repository

import (
	"context"
	"fmt"

	"github.com/amalthea/finance-api/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FinancialRepository runs the read-only queries behind project financials.
// Each cost source only counts documents in the statuses that represent a
// committed cost.
type FinancialRepository struct {
	db *gorm.DB
}

// NewFinancialRepository creates a new FinancialRepository
func NewFinancialRepository(db *gorm.DB) *FinancialRepository {
	return &FinancialRepository{db: db}
}

// GetProject returns a project of the organization
func (r *FinancialRepository) GetProject(ctx context.Context, orgID, projectID uuid.UUID) (*domain.Project, error) {
	var project domain.Project
	err := r.db.WithContext(ctx).
		Scopes(OrgScope(orgID)).
		Where("id = ?", projectID).
		First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *FinancialRepository) sum(ctx context.Context, model interface{}, expr string, orgID, projectID uuid.UUID, statuses interface{}) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(model).
		Select("COALESCE(SUM("+expr+"), 0)").
		Scopes(OrgScope(orgID)).
		Where("project_id = ? AND status IN ?", projectID, statuses).
		Row().Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// SumExpenses totals approved, reimbursed and paid expense amounts
func (r *FinancialRepository) SumExpenses(ctx context.Context, orgID, projectID uuid.UUID) (decimal.Decimal, error) {
	total, err := r.sum(ctx, &domain.Expense{}, "amount", orgID, projectID, domain.CountedExpenseStatuses)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum expenses: %w", err)
	}
	return total, nil
}

// SumVendorBills totals posted, fulfilled and closed vendor bills
func (r *FinancialRepository) SumVendorBills(ctx context.Context, orgID, projectID uuid.UUID) (decimal.Decimal, error) {
	total, err := r.sum(ctx, &domain.VendorBill{}, "grand_total", orgID, projectID, domain.CountedBillStatuses)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum vendor bills: %w", err)
	}
	return total, nil
}

// SumEmployeeWages totals hours times cost rate of approved timesheets
func (r *FinancialRepository) SumEmployeeWages(ctx context.Context, orgID, projectID uuid.UUID) (decimal.Decimal, error) {
	total, err := r.sum(ctx, &domain.Timesheet{}, "hours * cost_rate", orgID, projectID, domain.CountedTimesheetStatuses)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum timesheets: %w", err)
	}
	return total, nil
}

// SumPurchaseOrders totals confirmed, fulfilled and closed purchase orders
func (r *FinancialRepository) SumPurchaseOrders(ctx context.Context, orgID, projectID uuid.UUID) (decimal.Decimal, error) {
	total, err := r.sum(ctx, &domain.PurchaseOrder{}, "grand_total", orgID, projectID, domain.CountedPOStatuses)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum purchase orders: %w", err)
	}
	return total, nil
}

// ListProjectTasks returns the state and due date of every task in a project
func (r *FinancialRepository) ListProjectTasks(ctx context.Context, orgID, projectID uuid.UUID) ([]domain.Task, error) {
	var tasks []domain.Task
	err := r.db.WithContext(ctx).
		Select("id", "state", "due_date").
		Scopes(OrgScope(orgID)).
		Where("project_id = ?", projectID).
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list project tasks: %w", err)
	}
	return tasks, nil
}
