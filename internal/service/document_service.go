package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/amalthea/finance-api/internal/domain"
	"github.com/amalthea/finance-api/internal/logger"
	"github.com/amalthea/finance-api/internal/mapper"
	"github.com/amalthea/finance-api/internal/repository"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultCurrency is used for documents created without a currency
const DefaultCurrency = "INR"

// DocumentService creates and edits documents of every kind and links
// billable expenses to customer invoices. Status changes go through
// LifecycleService.
type DocumentService struct {
	repo        *repository.DocumentRepository
	projectRepo *repository.ProjectRepository
	sequences   *SequenceService
	now         func() time.Time
	logger      *zap.Logger
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(
	repo *repository.DocumentRepository,
	projectRepo *repository.ProjectRepository,
	sequences *SequenceService,
	logger *zap.Logger,
) *DocumentService {
	return &DocumentService{
		repo:        repo,
		projectRepo: projectRepo,
		sequences:   sequences,
		now:         time.Now,
		logger:      logger,
	}
}

func requireWriter(actor *domain.Actor) error {
	if !actor.Can(domain.PermissionDocumentsWrite) {
		return fmt.Errorf("%w: documents:write required", domain.ErrUnauthorized)
	}
	return nil
}

func (s *DocumentService) checkProject(ctx context.Context, orgID uuid.UUID, projectID *uuid.UUID) error {
	if projectID == nil {
		return nil
	}
	ok, err := s.projectRepo.Exists(ctx, orgID, *projectID)
	if err != nil {
		return fmt.Errorf("failed to look up project: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: project %s", domain.ErrNotFound, *projectID)
	}
	return nil
}

func nonNegative(field string, d *decimal.Decimal) error {
	if d != nil && d.IsNegative() {
		return fmt.Errorf("%w: %s must not be negative", ErrInvalidInput, field)
	}
	return nil
}

func (s *DocumentService) header(actor *domain.Actor, req *domain.CreateDocumentRequest) domain.DocumentHeader {
	return domain.DocumentHeader{
		OrgID:     actor.OrgID,
		ProjectID: req.ProjectID,
		OwnerID:   actor.ID,
	}
}

func (s *DocumentService) documentDate(d *time.Time) time.Time {
	if d != nil {
		return *d
	}
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func currencyOrDefault(c string) string {
	if c == "" {
		return DefaultCurrency
	}
	return c
}

// allocate reserves the document number of a numbered kind
func (s *DocumentService) allocate(ctx context.Context, orgID uuid.UUID, kind domain.DocumentKind) (domain.Numbering, error) {
	docType, ok := kind.DocType()
	if !ok {
		return domain.Numbering{}, nil
	}
	n, err := s.sequences.Allocate(ctx, orgID, docType)
	if err != nil {
		return domain.Numbering{}, err
	}
	return domain.Numbering{Number: lo.ToPtr(n.Number), NumberProvisional: n.Provisional}, nil
}

// Create dispatches to the constructor of kind
func (s *DocumentService) Create(ctx context.Context, kind domain.DocumentKind, actor *domain.Actor, req *domain.CreateDocumentRequest) (*domain.DocumentDTO, error) {
	switch kind {
	case domain.KindSalesOrder:
		return s.CreateSalesOrder(ctx, actor, req)
	case domain.KindPurchaseOrder:
		return s.CreatePurchaseOrder(ctx, actor, req)
	case domain.KindCustomerInvoice:
		return s.CreateCustomerInvoice(ctx, actor, req)
	case domain.KindVendorBill:
		return s.CreateVendorBill(ctx, actor, req)
	case domain.KindExpense:
		return s.CreateExpense(ctx, actor, req)
	case domain.KindTimesheet:
		return s.CreateTimesheet(ctx, actor, req)
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnknownKind, kind)
}

func (s *DocumentService) prepare(ctx context.Context, actor *domain.Actor, req *domain.CreateDocumentRequest) error {
	if err := requireWriter(actor); err != nil {
		return err
	}
	if err := nonNegative("grandTotal", req.GrandTotal); err != nil {
		return err
	}
	return s.checkProject(ctx, actor.OrgID, req.ProjectID)
}

func (s *DocumentService) persist(ctx context.Context, kind domain.DocumentKind, doc interface{}) (*domain.DocumentDTO, error) {
	if err := s.repo.Create(ctx, nil, doc); err != nil {
		return nil, mapper.FormatError(string(kind), "create", err)
	}
	dto, err := mapper.ToDocumentDTO(doc)
	if err != nil {
		return nil, err
	}
	logger.ForDocument(s.logger, kind, dto.ID).Info("document created",
		zap.String("number", dto.Number),
		zap.Bool("provisional", dto.NumberProvisional))
	return &dto, nil
}

// CreateSalesOrder allocates an SO number and stores the order as a draft
func (s *DocumentService) CreateSalesOrder(ctx context.Context, actor *domain.Actor, req *domain.CreateDocumentRequest) (*domain.DocumentDTO, error) {
	if err := s.prepare(ctx, actor, req); err != nil {
		return nil, err
	}
	numbering, err := s.allocate(ctx, actor.OrgID, domain.KindSalesOrder)
	if err != nil {
		return nil, err
	}
	order := &domain.SalesOrder{
		DocumentHeader: s.header(actor, req),
		Numbering:      numbering,
		Status:         domain.OrderStatusDraft,
		CustomerName:   req.Counterparty,
		OrderDate:      s.documentDate(req.Date),
		Currency:       currencyOrDefault(req.Currency),
		GrandTotal:     lo.FromPtr(req.GrandTotal),
		Notes:          req.Description,
	}
	return s.persist(ctx, domain.KindSalesOrder, order)
}

// CreatePurchaseOrder allocates a PO number and stores the order as a draft
func (s *DocumentService) CreatePurchaseOrder(ctx context.Context, actor *domain.Actor, req *domain.CreateDocumentRequest) (*domain.DocumentDTO, error) {
	if err := s.prepare(ctx, actor, req); err != nil {
		return nil, err
	}
	numbering, err := s.allocate(ctx, actor.OrgID, domain.KindPurchaseOrder)
	if err != nil {
		return nil, err
	}
	order := &domain.PurchaseOrder{
		DocumentHeader: s.header(actor, req),
		Numbering:      numbering,
		Status:         domain.OrderStatusDraft,
		VendorName:     req.Counterparty,
		OrderDate:      s.documentDate(req.Date),
		Currency:       currencyOrDefault(req.Currency),
		GrandTotal:     lo.FromPtr(req.GrandTotal),
		Notes:          req.Description,
	}
	return s.persist(ctx, domain.KindPurchaseOrder, order)
}

// CreateCustomerInvoice allocates an INV number and stores the invoice as a draft
func (s *DocumentService) CreateCustomerInvoice(ctx context.Context, actor *domain.Actor, req *domain.CreateDocumentRequest) (*domain.DocumentDTO, error) {
	if err := s.prepare(ctx, actor, req); err != nil {
		return nil, err
	}
	numbering, err := s.allocate(ctx, actor.OrgID, domain.KindCustomerInvoice)
	if err != nil {
		return nil, err
	}
	invoice := &domain.CustomerInvoice{
		DocumentHeader: s.header(actor, req),
		Numbering:      numbering,
		Status:         domain.InvoiceStatusDraft,
		CustomerName:   req.Counterparty,
		InvoiceDate:    s.documentDate(req.Date),
		DueDate:        req.DueDate,
		Currency:       currencyOrDefault(req.Currency),
		GrandTotal:     lo.FromPtr(req.GrandTotal),
	}
	return s.persist(ctx, domain.KindCustomerInvoice, invoice)
}

// CreateVendorBill allocates a BILL number and stores the bill as a draft
func (s *DocumentService) CreateVendorBill(ctx context.Context, actor *domain.Actor, req *domain.CreateDocumentRequest) (*domain.DocumentDTO, error) {
	if err := s.prepare(ctx, actor, req); err != nil {
		return nil, err
	}
	numbering, err := s.allocate(ctx, actor.OrgID, domain.KindVendorBill)
	if err != nil {
		return nil, err
	}
	bill := &domain.VendorBill{
		DocumentHeader: s.header(actor, req),
		Numbering:      numbering,
		Status:         domain.InvoiceStatusDraft,
		VendorName:     req.Counterparty,
		BillDate:       s.documentDate(req.Date),
		DueDate:        req.DueDate,
		Currency:       currencyOrDefault(req.Currency),
		GrandTotal:     lo.FromPtr(req.GrandTotal),
	}
	return s.persist(ctx, domain.KindVendorBill, bill)
}

// CreateExpense stores an expense claim of the actor as a draft
func (s *DocumentService) CreateExpense(ctx context.Context, actor *domain.Actor, req *domain.CreateDocumentRequest) (*domain.DocumentDTO, error) {
	if err := s.prepare(ctx, actor, req); err != nil {
		return nil, err
	}
	if req.Amount == nil {
		return nil, fmt.Errorf("%w: amount is required", ErrInvalidInput)
	}
	if err := errors.Join(nonNegative("amount", req.Amount), nonNegative("taxAmount", req.TaxAmount)); err != nil {
		return nil, err
	}
	expense := &domain.Expense{
		DocumentHeader: s.header(actor, req),
		Status:         domain.ExpenseStatusDraft,
		Category:       req.Category,
		Description:    req.Description,
		SpentOn:        s.documentDate(req.Date),
		Amount:         *req.Amount,
		TaxAmount:      lo.FromPtr(req.TaxAmount),
		Currency:       currencyOrDefault(req.Currency),
		IsBillable:     lo.FromPtr(req.IsBillable),
	}
	return s.persist(ctx, domain.KindExpense, expense)
}

// CreateTimesheet stores hours worked by the actor, pending approval
func (s *DocumentService) CreateTimesheet(ctx context.Context, actor *domain.Actor, req *domain.CreateDocumentRequest) (*domain.DocumentDTO, error) {
	if err := s.prepare(ctx, actor, req); err != nil {
		return nil, err
	}
	if req.ProjectID == nil {
		return nil, fmt.Errorf("%w: projectId is required", ErrInvalidInput)
	}
	if err := validateHours(req.Hours); err != nil {
		return nil, err
	}
	if err := nonNegative("costRate", req.CostRate); err != nil {
		return nil, err
	}
	timesheet := &domain.Timesheet{
		DocumentHeader: s.header(actor, req),
		Status:         domain.TimesheetStatusPending,
		WorkedOn:       s.documentDate(req.Date),
		Hours:          *req.Hours,
		CostRate:       lo.FromPtr(req.CostRate),
		IsBillable:     lo.FromPtrOr(req.IsBillable, true),
		Description:    req.Description,
	}
	return s.persist(ctx, domain.KindTimesheet, timesheet)
}

var maxHoursPerEntry = decimal.NewFromInt(24)

func validateHours(hours *decimal.Decimal) error {
	if hours == nil || !hours.IsPositive() || hours.GreaterThan(maxHoursPerEntry) {
		return fmt.Errorf("%w: hours must be greater than 0 and at most 24", ErrInvalidInput)
	}
	return nil
}

// Get returns a document of the actor's organization
func (s *DocumentService) Get(ctx context.Context, kind domain.DocumentKind, id uuid.UUID, actor *domain.Actor) (*domain.DocumentDTO, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	doc, err := s.repo.GetByID(ctx, kind, actor.OrgID, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s %s", domain.ErrNotFound, kind, id)
		}
		return nil, err
	}
	dto, err := mapper.ToDocumentDTO(doc)
	if err != nil {
		return nil, err
	}
	return &dto, nil
}

// List returns a page of documents of kind in the actor's organization
func (s *DocumentService) List(ctx context.Context, kind domain.DocumentKind, actor *domain.Actor, filters *repository.DocumentFilters, sort repository.SortConfig, page, pageSize int) (*domain.PaginatedResponse, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	page, pageSize = repository.NormalizePagination(page, pageSize)
	docs, total, err := s.repo.List(ctx, kind, actor.OrgID, filters, sort, page, pageSize)
	if err != nil {
		return nil, err
	}

	dtos := make([]domain.DocumentDTO, 0, len(docs))
	for _, doc := range docs {
		dto, err := mapper.ToDocumentDTO(doc)
		if err != nil {
			return nil, err
		}
		dtos = append(dtos, dto)
	}

	return &domain.PaginatedResponse{
		Data:       dtos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
	}, nil
}

// editColumns maps the patch onto the columns of kind. Fields that do not
// apply to the kind are ignored.
func editColumns(kind domain.DocumentKind, req *domain.UpdateDocumentRequest) (map[string]interface{}, error) {
	updates := map[string]interface{}{}
	if req.ProjectID != nil {
		updates["project_id"] = *req.ProjectID
	}

	switch kind {
	case domain.KindSalesOrder, domain.KindPurchaseOrder:
		if req.Counterparty != nil {
			updates[lo.Ternary(kind == domain.KindSalesOrder, "customer_name", "vendor_name")] = *req.Counterparty
		}
		if req.Date != nil {
			updates["order_date"] = *req.Date
		}
		if req.GrandTotal != nil {
			updates["grand_total"] = *req.GrandTotal
		}
		if req.Description != nil {
			updates["notes"] = *req.Description
		}
	case domain.KindCustomerInvoice, domain.KindVendorBill:
		if req.Counterparty != nil {
			updates[lo.Ternary(kind == domain.KindCustomerInvoice, "customer_name", "vendor_name")] = *req.Counterparty
		}
		if req.Date != nil {
			updates[lo.Ternary(kind == domain.KindCustomerInvoice, "invoice_date", "bill_date")] = *req.Date
		}
		if req.DueDate != nil {
			updates["due_date"] = *req.DueDate
		}
		if req.GrandTotal != nil {
			updates["grand_total"] = *req.GrandTotal
		}
	case domain.KindExpense:
		if req.Date != nil {
			updates["spent_on"] = *req.Date
		}
		if req.Amount != nil {
			updates["amount"] = *req.Amount
		}
		if req.TaxAmount != nil {
			updates["tax_amount"] = *req.TaxAmount
		}
		if req.Category != nil {
			updates["category"] = *req.Category
		}
		if req.Description != nil {
			updates["description"] = *req.Description
		}
		if req.IsBillable != nil {
			updates["is_billable"] = *req.IsBillable
		}
	case domain.KindTimesheet:
		if req.Date != nil {
			updates["worked_on"] = *req.Date
		}
		if req.Hours != nil {
			if err := validateHours(req.Hours); err != nil {
				return nil, err
			}
			updates["hours"] = *req.Hours
		}
		if req.CostRate != nil {
			updates["cost_rate"] = *req.CostRate
		}
		if req.Description != nil {
			updates["description"] = *req.Description
		}
		if req.IsBillable != nil {
			updates["is_billable"] = *req.IsBillable
		}
	}

	err := errors.Join(
		nonNegative("grandTotal", req.GrandTotal),
		nonNegative("amount", req.Amount),
		nonNegative("taxAmount", req.TaxAmount),
		nonNegative("costRate", req.CostRate),
	)
	return updates, err
}

// Edit patches a document. Only the owner may edit, and only while the
// document is in its initial status or rejected. The write is conditional on
// the status read, so a concurrent transition makes the edit fail.
func (s *DocumentService) Edit(ctx context.Context, kind domain.DocumentKind, id uuid.UUID, actor *domain.Actor, req *domain.UpdateDocumentRequest) (*domain.DocumentDTO, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownKind, kind)
	}
	updates, err := editColumns(kind, req)
	if err != nil {
		return nil, err
	}
	if actor != nil {
		if err := s.checkProject(ctx, actor.OrgID, req.ProjectID); err != nil {
			return nil, err
		}
	}

	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		state, err := s.repo.GetState(ctx, tx, kind, id)
		if err != nil {
			if repository.IsNotFound(err) {
				return fmt.Errorf("%w: %s %s", domain.ErrNotFound, kind, id)
			}
			return err
		}
		if err := domain.CheckEditable(actor, state); err != nil {
			return err
		}
		ok, err := s.repo.UpdateIfStatus(ctx, tx, kind, id, state.Status, updates)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %s changed status", domain.ErrNotEditable, kind)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.ForDocument(logger.ForActor(s.logger, actor), kind, id).
		Info("document edited", zap.Strings("fields", lo.Keys(updates)))

	return s.Get(ctx, kind, id, actor)
}

// AddExpenseToInvoice bills an eligible expense on a draft customer invoice of
// the same project: a line is created for amount plus tax, the expense is
// linked to it and the line total is added to the invoice total.
func (s *DocumentService) AddExpenseToInvoice(ctx context.Context, expenseID, invoiceID uuid.UUID, actor *domain.Actor) (*domain.DocumentDTO, error) {
	if err := requireWriter(actor); err != nil {
		return nil, err
	}

	var line domain.InvoiceLine
	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		expense, err := s.repo.GetExpenseForUpdate(ctx, tx, actor.OrgID, expenseID)
		if err != nil {
			if repository.IsNotFound(err) {
				return fmt.Errorf("%w: expense %s", domain.ErrNotFound, expenseID)
			}
			return err
		}
		if !expense.InvoiceEligible() {
			return fmt.Errorf("%w: status %s, billable %t", domain.ErrNotInvoiceEligible, expense.Status, expense.IsBillable)
		}

		invoice, err := s.repo.GetInvoiceForUpdate(ctx, tx, actor.OrgID, invoiceID)
		if err != nil {
			if repository.IsNotFound(err) {
				return fmt.Errorf("%w: invoice %s", domain.ErrNotFound, invoiceID)
			}
			return err
		}
		if invoice.Status != domain.InvoiceStatusDraft {
			return fmt.Errorf("%w: %w", ErrConflict, ErrInvoiceNotDraft)
		}
		if expense.ProjectID == nil || invoice.ProjectID == nil || *expense.ProjectID != *invoice.ProjectID {
			return fmt.Errorf("%w: %w", ErrInvalidInput, ErrProjectMismatch)
		}

		line = mapper.InvoiceLineFromExpense(expense, invoice.ID)
		if err := s.repo.CreateInvoiceLine(ctx, tx, &line); err != nil {
			return err
		}
		linked, err := s.repo.LinkExpenseToLine(ctx, tx, expense.ID, line.ID)
		if err != nil {
			return err
		}
		if !linked {
			return fmt.Errorf("%w: already on an invoice", domain.ErrNotInvoiceEligible)
		}
		_, err = s.repo.AddToInvoiceTotal(ctx, tx, invoice, line.LineTotal)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.ForActor(s.logger, actor).Info("expense added to invoice",
		zap.String("expense_id", expenseID.String()),
		zap.String("invoice_id", invoiceID.String()),
		zap.String("line_id", line.ID.String()),
		zap.String("line_total", line.LineTotal.String()))

	return s.Get(ctx, domain.KindCustomerInvoice, invoiceID, actor)
}

// ListInvoiceEligibleExpenses returns the project's expenses that can be
// added to an invoice
func (s *DocumentService) ListInvoiceEligibleExpenses(ctx context.Context, orgID, projectID uuid.UUID) ([]domain.DocumentDTO, error) {
	if err := s.checkProject(ctx, orgID, &projectID); err != nil {
		return nil, err
	}
	expenses, err := s.repo.ListInvoiceEligibleExpenses(ctx, orgID, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list billable expenses: %w", err)
	}
	return lo.Map(expenses, func(e domain.Expense, _ int) domain.DocumentDTO {
		return mapper.ToExpenseDTO(&e)
	}), nil
}

// StatusStats returns the count and amount per status for kind. Every status
// of the lifecycle is present, with zeroes when no document is in it.
func (s *DocumentService) StatusStats(ctx context.Context, kind domain.DocumentKind, orgID uuid.UUID, projectID *uuid.UUID) ([]domain.StatusStatDTO, error) {
	lc, err := domain.LifecycleFor(kind)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.StatusStats(ctx, kind, orgID, projectID)
	if err != nil {
		return nil, err
	}
	byStatus := lo.KeyBy(rows, func(r repository.StatusStat) string { return r.Status })

	return lo.Map(lc.States(), func(status string, _ int) domain.StatusStatDTO {
		row, ok := byStatus[status]
		if !ok {
			return domain.StatusStatDTO{Status: status, Amount: decimal.Zero}
		}
		return domain.StatusStatDTO{Status: status, Count: row.Count, Amount: row.Amount}
	}), nil
}
