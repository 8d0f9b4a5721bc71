package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amalthea/finance-api/internal/domain"
	"github.com/amalthea/finance-api/internal/service"
	"github.com/amalthea/finance-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// seedCosts inserts one document per status so only the counted ones add up
func seedCosts(t *testing.T, f *fixture) {
	t.Helper()
	day := today()
	owner := f.employee

	for status, amount := range map[domain.ExpenseStatus]string{
		domain.ExpenseStatusApproved:  "100.25",
		domain.ExpenseStatusPaid:      "50.5",
		domain.ExpenseStatusDraft:     "999",
		domain.ExpenseStatusSubmitted: "12",
		domain.ExpenseStatusRejected:  "77",
	} {
		f.insert(t, &domain.Expense{DocumentHeader: f.header(owner), Status: status, SpentOn: day, Amount: dec(amount), Currency: "INR"})
	}
	for status, amount := range map[domain.InvoiceStatus]string{
		domain.InvoiceStatusPosted:    "200.5",
		domain.InvoiceStatusDraft:     "500",
		domain.InvoiceStatusCancelled: "300",
	} {
		f.insert(t, &domain.VendorBill{DocumentHeader: f.header(owner), Status: status, BillDate: day, GrandTotal: dec(amount), Currency: "INR"})
	}
	for status, hours := range map[domain.TimesheetStatus]string{
		domain.TimesheetStatusApproved: "7.5",
		domain.TimesheetStatusPending:  "8",
		domain.TimesheetStatusRejected: "4",
	} {
		f.insert(t, &domain.Timesheet{DocumentHeader: f.header(owner), Status: status, WorkedOn: day, Hours: dec(hours), CostRate: dec("40")})
	}
	for status, amount := range map[domain.OrderStatus]string{
		domain.OrderStatusConfirmed: "100",
		domain.OrderStatusDraft:     "400",
		domain.OrderStatusCancelled: "250",
	} {
		f.insert(t, &domain.PurchaseOrder{DocumentHeader: f.header(owner), Status: status, OrderDate: day, GrandTotal: dec(amount), Currency: "INR"})
	}

	// costs of another project and another organization never leak in
	other := testutil.CreateTestProject(t, f.db, f.org.ID, "Other Site", dec("10"))
	f.insert(t, &domain.Expense{
		DocumentHeader: domain.DocumentHeader{OrgID: f.org.ID, ProjectID: &other.ID, OwnerID: owner.ID},
		Status:         domain.ExpenseStatusApproved, SpentOn: day, Amount: dec("5000"), Currency: "INR",
	})
	f.insert(t, &domain.Expense{
		DocumentHeader: domain.DocumentHeader{OrgID: uuid.New(), ProjectID: &f.project.ID, OwnerID: owner.ID},
		Status:         domain.ExpenseStatusApproved, SpentOn: day, Amount: dec("7000"), Currency: "INR",
	})
}

func TestFinancialService_ComputeCountsOnlyCommittedCosts(t *testing.T) {
	f := newFixture(t)
	seedCosts(t, f)

	summary, err := f.financials.Compute(ctxT(t), f.org.ID, f.project.ID)
	require.NoError(t, err)

	breakdown := summary.CostBreakdown
	assert.True(t, dec("150.75").Equal(breakdown.Expenses), breakdown.Expenses.String())
	assert.True(t, dec("200.5").Equal(breakdown.VendorBills), breakdown.VendorBills.String())
	assert.True(t, dec("300").Equal(breakdown.EmployeeWages), breakdown.EmployeeWages.String())
	assert.True(t, dec("100").Equal(breakdown.PurchaseOrders), breakdown.PurchaseOrders.String())

	assert.True(t, breakdown.Total().Equal(summary.TotalCosts))
	assert.True(t, dec("751.25").Equal(summary.TotalCosts), summary.TotalCosts.String())
	assert.True(t, dec("1000").Equal(summary.Budget))
	assert.True(t, summary.Budget.Equal(summary.Revenue))
	assert.True(t, dec("248.75").Equal(summary.Profit), summary.Profit.String())
	assert.Equal(t, int64(25), summary.ProfitMargin)
	assert.Equal(t, int64(75), summary.BudgetUsagePercent)
	assert.Equal(t, f.project.ID, summary.ProjectID)
	assert.Equal(t, "INR", summary.Currency)
}

func TestFinancialService_ComputeFollowsApprovals(t *testing.T) {
	f := newFixture(t)
	expense := f.createExpense(t, f.employee, "120.5", false)

	summary, err := f.financials.Compute(ctxT(t), f.org.ID, f.project.ID)
	require.NoError(t, err)
	assert.True(t, summary.TotalCosts.IsZero())
	assert.Equal(t, int64(100), summary.ProfitMargin)

	f.moveExpense(t, expense.ID, f.employee, "submitted", "approved")

	summary, err = f.financials.Compute(ctxT(t), f.org.ID, f.project.ID)
	require.NoError(t, err)
	assert.True(t, dec("120.5").Equal(summary.CostBreakdown.Expenses))
	assert.Equal(t, int64(12), summary.BudgetUsagePercent)
}

func TestFinancialService_ComputeUnknownProject(t *testing.T) {
	f := newFixture(t)

	_, err := f.financials.Compute(ctxT(t), f.org.ID, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.financials.Compute(ctxT(t), uuid.New(), f.project.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFinancialService_ProjectOverview(t *testing.T) {
	f := newFixture(t)
	seedCosts(t, f)

	now := time.Now().UTC()
	yesterday := now.Add(-24 * time.Hour)
	testutil.CreateTestTask(t, f.db, f.project, domain.TaskStateDone, &yesterday)
	testutil.CreateTestTask(t, f.db, f.project, domain.TaskStateInProgress, &yesterday)
	testutil.CreateTestTask(t, f.db, f.project, domain.TaskStateBlocked, nil)

	overview, err := f.financials.ProjectOverview(ctxT(t), f.org.ID, f.project.ID, now)
	require.NoError(t, err)

	assert.Equal(t, domain.TaskMetrics{
		Total:          3,
		Done:           1,
		InProgress:     1,
		Blocked:        1,
		Overdue:        1,
		CompletionRate: 33,
	}, overview.Tasks)
	assert.Equal(t, 3, overview.Risk.Score)
	assert.Equal(t, domain.RiskLevelMedium, overview.Risk.Level)
	assert.Equal(t, []string{"overdue tasks", "blocked tasks"}, overview.Risk.Factors)
	assert.Equal(t, int64(75), overview.Financials.BudgetUsagePercent)
}

func newMockedFinancials(t *testing.T) (*service.MockFinancialStore, *service.FinancialService) {
	ctrl := gomock.NewController(t)
	store := service.NewMockFinancialStore(ctrl)
	return store, service.NewFinancialService(store, zap.NewNop())
}

func expectSums(store *service.MockFinancialStore, expenses, bills, wages, orders string) {
	store.EXPECT().SumExpenses(gomock.Any(), gomock.Any(), gomock.Any()).Return(decimal.RequireFromString(expenses), nil)
	store.EXPECT().SumVendorBills(gomock.Any(), gomock.Any(), gomock.Any()).Return(decimal.RequireFromString(bills), nil)
	store.EXPECT().SumEmployeeWages(gomock.Any(), gomock.Any(), gomock.Any()).Return(decimal.RequireFromString(wages), nil)
	store.EXPECT().SumPurchaseOrders(gomock.Any(), gomock.Any(), gomock.Any()).Return(decimal.RequireFromString(orders), nil)
}

func TestFinancialService_HighRiskProject(t *testing.T) {
	store, svc := newMockedFinancials(t)
	orgID := uuid.New()
	project := &domain.Project{BaseModel: domain.BaseModel{ID: uuid.New()}, OrgID: orgID, Budget: dec("2000"), Currency: "EUR"}
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	store.EXPECT().GetProject(gomock.Any(), orgID, project.ID).Return(project, nil)
	expectSums(store, "1000.10", "500", "300", "100.33")
	store.EXPECT().ListProjectTasks(gomock.Any(), orgID, project.ID).Return([]domain.Task{
		{State: domain.TaskStateTodo, DueDate: lo.ToPtr(now.AddDate(0, 0, -3))},
		{State: domain.TaskStateTodo, DueDate: lo.ToPtr(now.AddDate(0, 0, 3))},
	}, nil)

	overview, err := svc.ProjectOverview(context.Background(), orgID, project.ID, now)
	require.NoError(t, err)

	assert.True(t, dec("1900.43").Equal(overview.Financials.TotalCosts))
	assert.Equal(t, int64(95), overview.Financials.BudgetUsagePercent)
	assert.Equal(t, int64(5), overview.Financials.ProfitMargin)
	assert.Equal(t, "EUR", overview.Financials.Currency)
	assert.Equal(t, 5, overview.Risk.Score)
	assert.Equal(t, domain.RiskLevelHigh, overview.Risk.Level)
	assert.Equal(t, []string{"overdue tasks", "budget usage above 90%", "completion rate below 30%"}, overview.Risk.Factors)
}

func TestFinancialService_SourceFailureFailsTheSummary(t *testing.T) {
	store, svc := newMockedFinancials(t)
	boom := errors.New("connection reset")
	project := &domain.Project{BaseModel: domain.BaseModel{ID: uuid.New()}, Budget: dec("100")}

	store.EXPECT().GetProject(gomock.Any(), gomock.Any(), gomock.Any()).Return(project, nil)
	store.EXPECT().SumExpenses(gomock.Any(), gomock.Any(), gomock.Any()).Return(decimal.Zero, nil).AnyTimes()
	store.EXPECT().SumVendorBills(gomock.Any(), gomock.Any(), gomock.Any()).Return(decimal.Zero, boom)
	store.EXPECT().SumEmployeeWages(gomock.Any(), gomock.Any(), gomock.Any()).Return(decimal.Zero, nil).AnyTimes()
	store.EXPECT().SumPurchaseOrders(gomock.Any(), gomock.Any(), gomock.Any()).Return(decimal.Zero, nil).AnyTimes()

	summary, err := svc.Compute(context.Background(), uuid.New(), project.ID)
	assert.Nil(t, summary)
	assert.ErrorIs(t, err, boom)
}

func TestFinancialService_StoreErrors(t *testing.T) {
	t.Run("project not found", func(t *testing.T) {
		store, svc := newMockedFinancials(t)
		store.EXPECT().GetProject(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, gorm.ErrRecordNotFound)

		_, err := svc.ProjectOverview(context.Background(), uuid.New(), uuid.New(), time.Now())
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("project lookup fails", func(t *testing.T) {
		store, svc := newMockedFinancials(t)
		boom := errors.New("timeout")
		store.EXPECT().GetProject(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, boom)

		_, err := svc.Compute(context.Background(), uuid.New(), uuid.New())
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("task listing fails", func(t *testing.T) {
		store, svc := newMockedFinancials(t)
		boom := errors.New("timeout")
		store.EXPECT().GetProject(gomock.Any(), gomock.Any(), gomock.Any()).Return(&domain.Project{Budget: dec("10")}, nil)
		expectSums(store, "1", "2", "3", "4")
		store.EXPECT().ListProjectTasks(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, boom)

		_, err := svc.ProjectOverview(context.Background(), uuid.New(), uuid.New(), time.Now())
		assert.ErrorIs(t, err, boom)
	})
}
