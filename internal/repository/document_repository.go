package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amalthea/finance-api/internal/domain"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// amountExpressions is the SQL expression of a document's money value per kind
var amountExpressions = map[domain.DocumentKind]string{
	domain.KindSalesOrder:      "grand_total",
	domain.KindPurchaseOrder:   "grand_total",
	domain.KindCustomerInvoice: "grand_total",
	domain.KindVendorBill:      "grand_total",
	domain.KindExpense:         "amount",
	domain.KindTimesheet:       "hours * cost_rate",
}

// documentSortFields maps API field names to columns shared by every document table
var documentSortFields = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"status":    "status",
}

// NewDocument returns an empty model for kind, for use as a gorm destination
func NewDocument(kind domain.DocumentKind) (interface{}, error) {
	switch kind {
	case domain.KindSalesOrder:
		return &domain.SalesOrder{}, nil
	case domain.KindPurchaseOrder:
		return &domain.PurchaseOrder{}, nil
	case domain.KindCustomerInvoice:
		return &domain.CustomerInvoice{}, nil
	case domain.KindVendorBill:
		return &domain.VendorBill{}, nil
	case domain.KindExpense:
		return &domain.Expense{}, nil
	case domain.KindTimesheet:
		return &domain.Timesheet{}, nil
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnknownKind, kind)
}

// DocumentFilters narrows document list queries
type DocumentFilters struct {
	ProjectID *uuid.UUID
	Status    string
	OwnerID   *uuid.UUID
}

// DocumentRepository handles status reads and writes for every document kind.
// Each kind lives in its own table with the same status/owner/org columns, so
// queries address the table by name.
type DocumentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository creates a new DocumentRepository
func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// WithTransaction executes operations within a transaction
func (r *DocumentRepository) WithTransaction(ctx context.Context, fn func(*gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *DocumentRepository) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	db := r.db
	if tx != nil {
		db = tx
	}
	return db.WithContext(ctx)
}

type documentStateRow struct {
	ID                uuid.UUID
	OrgID             uuid.UUID
	ProjectID         *uuid.UUID
	OwnerID           uuid.UUID
	Status            string
	Number            *string
	NumberProvisional bool
	RejectionReason   *string
	UpdatedAt         time.Time
}

// GetState reads the lifecycle columns of a document. Inside a transaction
// the row is locked until commit. Returns gorm.ErrRecordNotFound when the
// document does not exist.
func (r *DocumentRepository) GetState(ctx context.Context, tx *gorm.DB, kind domain.DocumentKind, id uuid.UUID) (*domain.DocumentState, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownKind, kind)
	}
	columns := []string{"id", "org_id", "project_id", "owner_id", "status", "rejection_reason", "updated_at"}
	if kind.Numbered() {
		columns = append(columns, "number", "number_provisional")
	}

	query := r.conn(ctx, tx).Table(kind.TableName()).Select(columns).Where("id = ?", id)
	if tx != nil {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var row documentStateRow
	if err := query.Take(&row).Error; err != nil {
		return nil, err
	}
	return &domain.DocumentState{
		Kind:              kind,
		ID:                row.ID,
		OrgID:             row.OrgID,
		ProjectID:         row.ProjectID,
		OwnerID:           row.OwnerID,
		Status:            row.Status,
		Number:            row.Number,
		NumberProvisional: row.NumberProvisional,
		RejectionReason:   row.RejectionReason,
		UpdatedAt:         row.UpdatedAt,
	}, nil
}

// CompareAndSetStatus moves a document from one status to another and applies
// updates in the same statement. The update only matches while the stored
// status still equals from; it returns false when another writer got there first.
func (r *DocumentRepository) CompareAndSetStatus(ctx context.Context, tx *gorm.DB, kind domain.DocumentKind, id uuid.UUID, from, to string, updates map[string]interface{}) (bool, error) {
	values := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now(),
	}
	for k, v := range updates {
		values[k] = v
	}

	result := r.conn(ctx, tx).
		Table(kind.TableName()).
		Where("id = ? AND status = ?", id, from).
		Updates(values)
	if result.Error != nil {
		return false, fmt.Errorf("failed to update %s status: %w", kind, result.Error)
	}
	return result.RowsAffected == 1, nil
}

// UpdateIfStatus applies field updates only while the document is still in
// status. Returns false when the status changed underneath the caller.
func (r *DocumentRepository) UpdateIfStatus(ctx context.Context, tx *gorm.DB, kind domain.DocumentKind, id uuid.UUID, status string, updates map[string]interface{}) (bool, error) {
	if len(updates) == 0 {
		return true, nil
	}
	updates["updated_at"] = time.Now()

	result := r.conn(ctx, tx).
		Table(kind.TableName()).
		Where("id = ? AND status = ?", id, status).
		Updates(updates)
	if result.Error != nil {
		return false, fmt.Errorf("failed to update %s: %w", kind, result.Error)
	}
	return result.RowsAffected == 1, nil
}

// Create inserts a document model
func (r *DocumentRepository) Create(ctx context.Context, tx *gorm.DB, doc interface{}) error {
	return r.conn(ctx, tx).Omit(clause.Associations).Create(doc).Error
}

// GetByID loads a full document of kind within an organization.
// Customer invoices are returned with their lines.
func (r *DocumentRepository) GetByID(ctx context.Context, kind domain.DocumentKind, orgID, id uuid.UUID) (interface{}, error) {
	doc, err := NewDocument(kind)
	if err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).Where("id = ? AND org_id = ?", id, orgID)
	if kind == domain.KindCustomerInvoice {
		query = query.Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		})
	}
	if err := query.First(doc).Error; err != nil {
		return nil, err
	}
	return doc, nil
}

func listAs[T any](query *gorm.DB, page, pageSize int) ([]interface{}, error) {
	var rows []T
	if err := query.Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return nil, err
	}
	return lo.Map(rows, func(row T, i int) interface{} { return &rows[i] }), nil
}

// List returns a page of documents of kind together with the total count
func (r *DocumentRepository) List(ctx context.Context, kind domain.DocumentKind, orgID uuid.UUID, filters *DocumentFilters, sort SortConfig, page, pageSize int) ([]interface{}, int64, error) {
	if !kind.IsValid() {
		return nil, 0, fmt.Errorf("%w: %q", domain.ErrUnknownKind, kind)
	}
	page, pageSize = NormalizePagination(page, pageSize)

	query := r.db.WithContext(ctx).Table(kind.TableName()).Scopes(OrgScope(orgID))
	if filters != nil {
		if filters.ProjectID != nil {
			query = query.Where("project_id = ?", *filters.ProjectID)
		}
		if filters.Status != "" {
			query = query.Where("status = ?", filters.Status)
		}
		if filters.OwnerID != nil {
			query = query.Where("owner_id = ?", *filters.OwnerID)
		}
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count %s: %w", kind, err)
	}

	query = query.Order(BuildOrderClause(sort, documentSortFields, "updated_at"))

	var (
		docs []interface{}
		err  error
	)
	switch kind {
	case domain.KindSalesOrder:
		docs, err = listAs[domain.SalesOrder](query, page, pageSize)
	case domain.KindPurchaseOrder:
		docs, err = listAs[domain.PurchaseOrder](query, page, pageSize)
	case domain.KindCustomerInvoice:
		docs, err = listAs[domain.CustomerInvoice](query, page, pageSize)
	case domain.KindVendorBill:
		docs, err = listAs[domain.VendorBill](query, page, pageSize)
	case domain.KindExpense:
		docs, err = listAs[domain.Expense](query, page, pageSize)
	case domain.KindTimesheet:
		docs, err = listAs[domain.Timesheet](query, page, pageSize)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list %s: %w", kind, err)
	}
	return docs, total, nil
}

// StatusStat is the count and summed amount of one status
type StatusStat struct {
	Status string
	Count  int64
	Amount decimal.Decimal
}

// StatusStats groups documents of kind by status, optionally within one project
func (r *DocumentRepository) StatusStats(ctx context.Context, kind domain.DocumentKind, orgID uuid.UUID, projectID *uuid.UUID) ([]StatusStat, error) {
	amount, ok := amountExpressions[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownKind, kind)
	}

	query := r.db.WithContext(ctx).
		Table(kind.TableName()).
		Select("status, COUNT(*) AS count, COALESCE(SUM(" + amount + "), 0) AS amount").
		Scopes(OrgScope(orgID))
	if projectID != nil {
		query = query.Where("project_id = ?", *projectID)
	}

	rows, err := query.Group("status").Order("status ASC").Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to get %s status stats: %w", kind, err)
	}
	defer rows.Close()

	var stats []StatusStat
	for rows.Next() {
		var s StatusStat
		if err := rows.Scan(&s.Status, &s.Count, &s.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan %s status stats: %w", kind, err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// CreateHistory records a committed status change
func (r *DocumentRepository) CreateHistory(ctx context.Context, tx *gorm.DB, history *domain.DocumentStatusHistory) error {
	if history.ChangedAt.IsZero() {
		history.ChangedAt = time.Now()
	}
	if err := r.conn(ctx, tx).Create(history).Error; err != nil {
		return fmt.Errorf("failed to create status history: %w", err)
	}
	return nil
}

// ListHistory returns the status changes of a document, newest first
func (r *DocumentRepository) ListHistory(ctx context.Context, orgID uuid.UUID, kind domain.DocumentKind, id uuid.UUID) ([]domain.DocumentStatusHistory, error) {
	var history []domain.DocumentStatusHistory
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND document_kind = ? AND document_id = ?", orgID, kind, id).
		Order("changed_at DESC").
		Find(&history).Error
	return history, err
}

// GetExpenseForUpdate loads and locks an expense for the rest of tx
func (r *DocumentRepository) GetExpenseForUpdate(ctx context.Context, tx *gorm.DB, orgID, id uuid.UUID) (*domain.Expense, error) {
	var expense domain.Expense
	err := r.conn(ctx, tx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND org_id = ?", id, orgID).
		First(&expense).Error
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

// GetInvoiceForUpdate loads and locks a customer invoice for the rest of tx
func (r *DocumentRepository) GetInvoiceForUpdate(ctx context.Context, tx *gorm.DB, orgID, id uuid.UUID) (*domain.CustomerInvoice, error) {
	var invoice domain.CustomerInvoice
	err := r.conn(ctx, tx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND org_id = ?", id, orgID).
		First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// CreateInvoiceLine inserts a line on a customer invoice
func (r *DocumentRepository) CreateInvoiceLine(ctx context.Context, tx *gorm.DB, line *domain.InvoiceLine) error {
	if err := r.conn(ctx, tx).Create(line).Error; err != nil {
		return fmt.Errorf("failed to create invoice line: %w", err)
	}
	return nil
}

// LinkExpenseToLine records the invoice line an expense was billed on.
// Returns false when the expense was already linked.
func (r *DocumentRepository) LinkExpenseToLine(ctx context.Context, tx *gorm.DB, expenseID, lineID uuid.UUID) (bool, error) {
	result := r.conn(ctx, tx).
		Model(&domain.Expense{}).
		Where("id = ? AND invoice_line_id IS NULL", expenseID).
		Updates(map[string]interface{}{
			"invoice_line_id": lineID,
			"updated_at":      time.Now(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to link expense: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// AddToInvoiceTotal adds amount to the grand total of invoice, which the
// caller holds locked, and returns the new total. Amounts entered on the
// invoice before lines were billed are kept.
func (r *DocumentRepository) AddToInvoiceTotal(ctx context.Context, tx *gorm.DB, invoice *domain.CustomerInvoice, amount decimal.Decimal) (decimal.Decimal, error) {
	total := invoice.GrandTotal.Add(amount)
	result := r.conn(ctx, tx).
		Model(&domain.CustomerInvoice{}).
		Where("id = ?", invoice.ID).
		Updates(map[string]interface{}{
			"grand_total": total,
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		return decimal.Zero, fmt.Errorf("failed to update invoice total: %w", result.Error)
	}
	if result.RowsAffected != 1 {
		return decimal.Zero, gorm.ErrRecordNotFound
	}
	invoice.GrandTotal = total
	return total, nil
}

// ListInvoiceEligibleExpenses returns approved, billable expenses of a project
// that are not on any invoice yet
func (r *DocumentRepository) ListInvoiceEligibleExpenses(ctx context.Context, orgID, projectID uuid.UUID) ([]domain.Expense, error) {
	var expenses []domain.Expense
	err := r.db.WithContext(ctx).
		Scopes(OrgScope(orgID)).
		Where("project_id = ?", projectID).
		Where("status = ? AND is_billable = ? AND invoice_line_id IS NULL", domain.ExpenseStatusApproved, true).
		Order("spent_on ASC").
		Find(&expenses).Error
	return expenses, err
}

// IsNotFound reports whether err means the row does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
