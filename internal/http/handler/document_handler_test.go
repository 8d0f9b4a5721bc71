package handler_test

import (
	"net/http"
	"testing"

	"github.com/amalthea/finance-api/internal/auth"
	"github.com/amalthea/finance-api/internal/domain"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *testServer) createExpense(t *testing.T, owner *auth.UserContext, amount string, billable bool) domain.DocumentDTO {
	t.Helper()
	rr := s.do(t, owner, http.MethodPost, "/documents/expenses", domain.CreateDocumentRequest{
		ProjectID:   &s.project.ID,
		Amount:      lo.ToPtr(dec(amount)),
		Category:    "Travel",
		Description: "Site visit",
		IsBillable:  &billable,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[domain.DocumentDTO](t, rr)
}

func (s *testServer) transition(t *testing.T, user *auth.UserContext, kind string, id uuid.UUID, to, reason string) (int, domain.APIError) {
	t.Helper()
	rr := s.do(t, user, http.MethodPost, "/documents/"+kind+"/"+id.String()+"/transitions", domain.TransitionRequest{To: to, Reason: reason})
	if rr.Code == http.StatusOK {
		return rr.Code, domain.APIError{}
	}
	return rr.Code, decode[domain.APIError](t, rr)
}

func TestDocumentHandler_Create(t *testing.T) {
	s := newTestServer(t)
	employee := s.user(domain.RoleEmployee)

	rr := s.do(t, employee, http.MethodPost, "/documents/sales-orders", domain.CreateDocumentRequest{
		ProjectID:    &s.project.ID,
		Counterparty: "Northwind",
		GrandTotal:   lo.ToPtr(dec("1500")),
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	order := decode[domain.DocumentDTO](t, rr)
	assert.Equal(t, "SO-00001", order.Number)
	assert.Equal(t, "draft", order.Status)
	assert.Equal(t, "/api/v1/documents/sales-orders/"+order.ID.String(), rr.Header().Get("Location"))

	rr = s.do(t, employee, http.MethodGet, "/documents/sales_order/"+order.ID.String(), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, order.ID, decode[domain.DocumentDTO](t, rr).ID)

	rr = s.do(t, employee, http.MethodPost, "/documents/quotes", domain.CreateDocumentRequest{})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = s.do(t, employee, http.MethodPost, "/documents/expenses", domain.CreateDocumentRequest{Currency: "RUPEE"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.do(t, s.user(domain.RoleViewer), http.MethodPost, "/documents/expenses", domain.CreateDocumentRequest{Amount: lo.ToPtr(dec("1"))})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = s.do(t, employee, http.MethodGet, "/documents/expenses/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDocumentHandler_ExpenseApprovalFlow(t *testing.T) {
	s := newTestServer(t)
	employee := s.user(domain.RoleEmployee)
	manager := s.user(domain.RoleManager)
	expense := s.createExpense(t, employee, "120.5", true)

	code, _ := s.transition(t, employee, "expenses", expense.ID, "submitted", "")
	require.Equal(t, http.StatusOK, code)

	rr := s.do(t, manager, http.MethodGet, "/documents/expenses/"+expense.ID.String()+"/transitions", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	allowed := decode[[]domain.AllowedTransitionDTO](t, rr)
	assert.Equal(t, []string{"approved", "rejected"}, lo.Map(allowed, func(a domain.AllowedTransitionDTO, _ int) string { return a.To }))

	code, apiErr := s.transition(t, employee, "expenses", expense.ID, "approved", "")
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, domain.ErrorTypeForbidden, apiErr.Type)

	code, _ = s.transition(t, manager, "expenses", expense.ID, "rejected", "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.transition(t, manager, "expenses", expense.ID, "approved", "")
	require.Equal(t, http.StatusOK, code)

	code, apiErr = s.transition(t, manager, "expenses", expense.ID, "approved", "")
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "approved", apiErr.Errors["from"])

	rr = s.do(t, employee, http.MethodGet, "/documents/expenses/"+expense.ID.String()+"/state", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "approved", decode[domain.DocumentStateDTO](t, rr).Status)

	rr = s.do(t, employee, http.MethodGet, "/documents/expenses/"+expense.ID.String()+"/history", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]domain.StatusHistoryDTO](t, rr), 2)

	rr = s.do(t, employee, http.MethodPut, "/documents/expenses/"+expense.ID.String(), domain.UpdateDocumentRequest{Category: lo.ToPtr("Meals")})
	assert.Equal(t, http.StatusConflict, rr.Code)

	outsider := s.user(domain.RoleManager)
	outsider.OrgID = uuid.New()
	code, _ = s.transition(t, outsider, "expenses", expense.ID, "reimbursed", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestDocumentHandler_InvoiceAndStats(t *testing.T) {
	s := newTestServer(t)
	employee := s.user(domain.RoleEmployee)
	manager := s.user(domain.RoleManager)
	expense := s.createExpense(t, employee, "80.25", true)
	other := s.createExpense(t, employee, "19.75", true)

	for _, id := range []uuid.UUID{expense.ID, other.ID} {
		code, _ := s.transition(t, employee, "expenses", id, "submitted", "")
		require.Equal(t, http.StatusOK, code)
	}
	rr := s.do(t, manager, http.MethodPost, "/documents/expenses/bulk-transitions", domain.BulkTransitionRequest{
		IDs: []uuid.UUID{expense.ID, other.ID, uuid.New()},
		To:  "approved",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	bulk := decode[domain.BulkTransitionResult](t, rr)
	assert.Len(t, bulk.Succeeded, 2)
	assert.Len(t, bulk.Failed, 1)

	rr = s.do(t, manager, http.MethodPost, "/documents/customer-invoices", domain.CreateDocumentRequest{ProjectID: &s.project.ID})
	require.Equal(t, http.StatusCreated, rr.Code)
	invoice := decode[domain.DocumentDTO](t, rr)

	rr = s.do(t, manager, http.MethodPost, "/expenses/"+expense.ID.String()+"/invoice", domain.AddExpenseToInvoiceRequest{InvoiceID: invoice.ID})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	billed := decode[domain.DocumentDTO](t, rr)
	require.Len(t, billed.Lines, 1)
	assert.True(t, dec("80.25").Equal(billed.Amount))

	rr = s.do(t, manager, http.MethodPost, "/expenses/"+expense.ID.String()+"/invoice", domain.AddExpenseToInvoiceRequest{InvoiceID: invoice.ID})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = s.do(t, manager, http.MethodGet, "/documents/expenses/stats?projectId="+s.project.ID.String(), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	stats := lo.KeyBy(decode[[]domain.StatusStatDTO](t, rr), func(st domain.StatusStatDTO) string { return st.Status })
	assert.Equal(t, int64(2), stats["approved"].Count)
	assert.True(t, dec("100").Equal(stats["approved"].Amount))

	rr = s.do(t, manager, http.MethodGet, "/documents/expenses?status=approved&pageSize=1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	page := decode[struct {
		Data       []domain.DocumentDTO `json:"data"`
		Total      int64                `json:"total"`
		TotalPages int                  `json:"totalPages"`
	}](t, rr)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Data, 1)

	rr = s.do(t, manager, http.MethodGet, "/documents/expenses?projectId=nope", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
