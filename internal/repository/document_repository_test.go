package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/amalthea/finance-api/internal/domain"
	"github.com/amalthea/finance-api/internal/repository"
	"github.com/amalthea/finance-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type documentFixture struct {
	db      *gorm.DB
	repo    *repository.DocumentRepository
	org     *domain.Organization
	project *domain.Project
}

func newDocumentFixture(t *testing.T) *documentFixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	org := testutil.CreateTestOrganization(t, db, "Acme Builders")
	return &documentFixture{
		db:      db,
		repo:    repository.NewDocumentRepository(db),
		org:     org,
		project: testutil.CreateTestProject(t, db, org.ID, "Warehouse Fit-out", testutil.Dec("1000")),
	}
}

func (f *documentFixture) createExpense(t *testing.T, status domain.ExpenseStatus) *domain.Expense {
	t.Helper()
	expense := &domain.Expense{
		DocumentHeader: domain.DocumentHeader{
			OrgID:     f.org.ID,
			ProjectID: &f.project.ID,
			OwnerID:   uuid.New(),
		},
		Status:     status,
		SpentOn:    time.Now().UTC().Truncate(24 * time.Hour),
		Amount:     testutil.Dec("100"),
		Currency:   "INR",
		IsBillable: true,
	}
	require.NoError(t, f.repo.Create(context.Background(), nil, expense))
	return expense
}

func (f *documentFixture) createInvoice(t *testing.T, total string) *domain.CustomerInvoice {
	t.Helper()
	invoice := &domain.CustomerInvoice{
		DocumentHeader: domain.DocumentHeader{
			OrgID:     f.org.ID,
			ProjectID: &f.project.ID,
			OwnerID:   uuid.New(),
		},
		Status:       domain.InvoiceStatusDraft,
		CustomerName: "Northwind",
		InvoiceDate:  time.Now().UTC().Truncate(24 * time.Hour),
		Currency:     "INR",
		GrandTotal:   testutil.Dec(total),
	}
	require.NoError(t, f.repo.Create(context.Background(), nil, invoice))
	return invoice
}

func TestDocumentRepository_CompareAndSetStatus(t *testing.T) {
	f := newDocumentFixture(t)
	ctx := context.Background()
	expense := f.createExpense(t, domain.ExpenseStatusSubmitted)

	t.Run("stale from status does not match", func(t *testing.T) {
		swapped, err := f.repo.CompareAndSetStatus(ctx, nil, domain.KindExpense, expense.ID, "draft", "submitted", nil)
		require.NoError(t, err)
		assert.False(t, swapped)

		state, err := f.repo.GetState(ctx, nil, domain.KindExpense, expense.ID)
		require.NoError(t, err)
		assert.Equal(t, "submitted", state.Status)
	})

	t.Run("current status swaps with updates", func(t *testing.T) {
		approver := uuid.New()
		swapped, err := f.repo.CompareAndSetStatus(ctx, nil, domain.KindExpense, expense.ID, "submitted", "approved",
			map[string]interface{}{"approved_by_id": approver})
		require.NoError(t, err)
		assert.True(t, swapped)

		var stored domain.Expense
		require.NoError(t, f.db.First(&stored, "id = ?", expense.ID).Error)
		assert.Equal(t, domain.ExpenseStatusApproved, stored.Status)
		require.NotNil(t, stored.ApprovedByID)
		assert.Equal(t, approver, *stored.ApprovedByID)
	})

	t.Run("second swap from the same status loses", func(t *testing.T) {
		swapped, err := f.repo.CompareAndSetStatus(ctx, nil, domain.KindExpense, expense.ID, "submitted", "approved", nil)
		require.NoError(t, err)
		assert.False(t, swapped)
	})

	t.Run("unknown document", func(t *testing.T) {
		swapped, err := f.repo.CompareAndSetStatus(ctx, nil, domain.KindExpense, uuid.New(), "submitted", "approved", nil)
		require.NoError(t, err)
		assert.False(t, swapped)
	})
}

func TestDocumentRepository_UpdateIfStatus(t *testing.T) {
	f := newDocumentFixture(t)
	ctx := context.Background()
	expense := f.createExpense(t, domain.ExpenseStatusSubmitted)

	updated, err := f.repo.UpdateIfStatus(ctx, nil, domain.KindExpense, expense.ID, "draft",
		map[string]interface{}{"description": "edited"})
	require.NoError(t, err)
	assert.False(t, updated)

	var stored domain.Expense
	require.NoError(t, f.db.First(&stored, "id = ?", expense.ID).Error)
	assert.Empty(t, stored.Description)

	updated, err = f.repo.UpdateIfStatus(ctx, nil, domain.KindExpense, expense.ID, "submitted",
		map[string]interface{}{"description": "edited"})
	require.NoError(t, err)
	assert.True(t, updated)
	require.NoError(t, f.db.First(&stored, "id = ?", expense.ID).Error)
	assert.Equal(t, "edited", stored.Description)

	updated, err = f.repo.UpdateIfStatus(ctx, nil, domain.KindExpense, expense.ID, "draft", map[string]interface{}{})
	require.NoError(t, err)
	assert.True(t, updated, "an empty update never conflicts")
}

func TestDocumentRepository_LinkExpenseToLine(t *testing.T) {
	f := newDocumentFixture(t)
	ctx := context.Background()
	expense := f.createExpense(t, domain.ExpenseStatusApproved)
	first, second := uuid.New(), uuid.New()

	linked, err := f.repo.LinkExpenseToLine(ctx, nil, expense.ID, first)
	require.NoError(t, err)
	assert.True(t, linked)

	linked, err = f.repo.LinkExpenseToLine(ctx, nil, expense.ID, second)
	require.NoError(t, err)
	assert.False(t, linked)

	var stored domain.Expense
	require.NoError(t, f.db.First(&stored, "id = ?", expense.ID).Error)
	require.NotNil(t, stored.InvoiceLineID)
	assert.Equal(t, first, *stored.InvoiceLineID)
}

func TestDocumentRepository_AddToInvoiceTotal(t *testing.T) {
	f := newDocumentFixture(t)
	ctx := context.Background()
	invoice := f.createInvoice(t, "500")

	err := f.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		locked, err := f.repo.GetInvoiceForUpdate(ctx, tx, f.org.ID, invoice.ID)
		if err != nil {
			return err
		}
		total, err := f.repo.AddToInvoiceTotal(ctx, tx, locked, testutil.Dec("118"))
		if err != nil {
			return err
		}
		assert.True(t, testutil.Dec("618").Equal(total), total.String())
		return nil
	})
	require.NoError(t, err)

	var stored domain.CustomerInvoice
	require.NoError(t, f.db.First(&stored, "id = ?", invoice.ID).Error)
	assert.True(t, testutil.Dec("618").Equal(stored.GrandTotal), stored.GrandTotal.String())

	missing := &domain.CustomerInvoice{}
	missing.ID = uuid.New()
	_, err = f.repo.AddToInvoiceTotal(ctx, nil, missing, testutil.Dec("1"))
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDocumentRepository_GetState(t *testing.T) {
	f := newDocumentFixture(t)
	ctx := context.Background()
	invoice := f.createInvoice(t, "0")

	state, err := f.repo.GetState(ctx, nil, domain.KindCustomerInvoice, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, "draft", state.Status)
	assert.Equal(t, f.org.ID, state.OrgID)

	_, err = f.repo.GetState(ctx, nil, domain.KindExpense, uuid.New())
	assert.True(t, repository.IsNotFound(err))

	_, err = f.repo.GetState(ctx, nil, domain.DocumentKind("quote"), uuid.New())
	assert.ErrorIs(t, err, domain.ErrUnknownKind)
}
