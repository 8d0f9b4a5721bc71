package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Pagination response wrapper
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// AllocatedNumber is the result of a sequence allocation. Provisional numbers
// were produced without the store and must be reconciled later.
type AllocatedNumber struct {
	Number      string `json:"number" example:"SO-00001"`
	Value       int64  `json:"value" example:"1"`
	Provisional bool   `json:"provisional"`
}

// SequenceDTO describes the stored counter of one (organization, doc type)
type SequenceDTO struct {
	DocType   DocType `json:"docType" example:"SO"`
	Prefix    string  `json:"prefix" example:"SO"`
	NextValue int64   `json:"nextValue" example:"42"`
	Padding   int     `json:"padding" example:"5"`
}

// DocumentDTO is the API shape shared by every document kind. Kind specific
// fields are omitted when they do not apply.
type DocumentDTO struct {
	ID                uuid.UUID        `json:"id"`
	Kind              DocumentKind     `json:"kind"`
	Number            string           `json:"number,omitempty"`
	NumberProvisional bool             `json:"numberProvisional,omitempty"`
	Status            string           `json:"status"`
	OrgID             uuid.UUID        `json:"orgId"`
	ProjectID         *uuid.UUID       `json:"projectId,omitempty"`
	OwnerID           uuid.UUID        `json:"ownerId"`
	RejectionReason   string           `json:"rejectionReason,omitempty"`
	Counterparty      string           `json:"counterparty,omitempty"`
	Date              string           `json:"date"` // YYYY-MM-DD
	DueDate           string           `json:"dueDate,omitempty"`
	Currency          string           `json:"currency"`
	Amount            decimal.Decimal  `json:"amount"`
	TaxAmount         *decimal.Decimal `json:"taxAmount,omitempty"`
	Hours             *decimal.Decimal `json:"hours,omitempty"`
	CostRate          *decimal.Decimal `json:"costRate,omitempty"`
	Category          string           `json:"category,omitempty"`
	Description       string           `json:"description,omitempty"`
	IsBillable        *bool            `json:"isBillable,omitempty"`
	InvoiceEligible   *bool            `json:"invoiceEligible,omitempty"`
	InvoiceLineID     *uuid.UUID       `json:"invoiceLineId,omitempty"`
	Lines             []InvoiceLineDTO `json:"lines,omitempty"`
	CreatedAt         string           `json:"createdAt"` // ISO 8601
	UpdatedAt         string           `json:"updatedAt"` // ISO 8601
}

type InvoiceLineDTO struct {
	ID          uuid.UUID         `json:"id"`
	Description string            `json:"description"`
	Quantity    decimal.Decimal   `json:"quantity"`
	UnitPrice   decimal.Decimal   `json:"unitPrice"`
	TaxAmount   decimal.Decimal   `json:"taxAmount"`
	LineTotal   decimal.Decimal   `json:"lineTotal"`
	SourceType  InvoiceLineSource `json:"sourceType"`
	SourceID    *uuid.UUID        `json:"sourceId,omitempty"`
}

// DocumentStateDTO is returned from status changes
type DocumentStateDTO struct {
	ID              uuid.UUID    `json:"id"`
	Kind            DocumentKind `json:"kind"`
	Number          string       `json:"number,omitempty"`
	Status          string       `json:"status"`
	RejectionReason string       `json:"rejectionReason,omitempty"`
	UpdatedAt       string       `json:"updatedAt"`
}

type StatusHistoryDTO struct {
	ID            uuid.UUID `json:"id"`
	FromStatus    string    `json:"fromStatus"`
	ToStatus      string    `json:"toStatus"`
	ChangedByID   uuid.UUID `json:"changedById"`
	ChangedByName string    `json:"changedByName,omitempty"`
	Reason        string    `json:"reason,omitempty"`
	ChangedAt     string    `json:"changedAt"`
}

// AllowedTransitionDTO is an edge the current actor may take
type AllowedTransitionDTO struct {
	To             string `json:"to"`
	Guard          Guard  `json:"guard"`
	RequiresReason bool   `json:"requiresReason"`
}

// StatusStatDTO holds the count and summed amount of documents in one status
type StatusStatDTO struct {
	Status string          `json:"status"`
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// BulkTransitionResult reports the outcome of every id in a bulk request
type BulkTransitionResult struct {
	Succeeded []uuid.UUID             `json:"succeeded"`
	Failed    []BulkTransitionFailure `json:"failed"`
}

type BulkTransitionFailure struct {
	ID    uuid.UUID `json:"id"`
	Error string    `json:"error"`
}

// CostBreakdown splits project costs by source
type CostBreakdown struct {
	Expenses       decimal.Decimal `json:"expenses"`
	VendorBills    decimal.Decimal `json:"vendorBills"`
	EmployeeWages  decimal.Decimal `json:"employeeWages"`
	PurchaseOrders decimal.Decimal `json:"purchaseOrders"`
}

// Total is the exact sum of all four sources
func (c CostBreakdown) Total() decimal.Decimal {
	return decimal.Sum(c.Expenses, c.VendorBills, c.EmployeeWages, c.PurchaseOrders)
}

// ProjectFinancialSummary is derived on every request and never stored.
// Percent values are rounded half-up to whole numbers.
type ProjectFinancialSummary struct {
	ProjectID          uuid.UUID       `json:"projectId"`
	Currency           string          `json:"currency"`
	Budget             decimal.Decimal `json:"budget"`
	Revenue            decimal.Decimal `json:"revenue"`
	TotalCosts         decimal.Decimal `json:"totalCosts"`
	Profit             decimal.Decimal `json:"profit"`
	ProfitMargin       int64           `json:"profitMargin"`
	CostBreakdown      CostBreakdown   `json:"costBreakdown"`
	BudgetUsagePercent int64           `json:"budgetUsagePercent"`
}

// TaskMetrics summarizes project tasks for the risk heuristic
type TaskMetrics struct {
	Total          int   `json:"total"`
	Done           int   `json:"done"`
	InProgress     int   `json:"inProgress"`
	Blocked        int   `json:"blocked"`
	Overdue        int   `json:"overdue"`
	CompletionRate int64 `json:"completionRate"`
}

// RiskLevel classifies a project's risk score
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "Low"
	RiskLevelMedium RiskLevel = "Medium"
	RiskLevelHigh   RiskLevel = "High"
)

type RiskAssessment struct {
	Score   int       `json:"score"`
	Level   RiskLevel `json:"level"`
	Factors []string  `json:"factors"`
}

// ProjectOverviewDTO combines financials, task metrics and risk for one project
type ProjectOverviewDTO struct {
	Financials ProjectFinancialSummary `json:"financials"`
	Tasks      TaskMetrics             `json:"tasks"`
	Risk       RiskAssessment          `json:"risk"`
}

// Request DTOs

// CreateDocumentRequest is shared by every kind; fields that do not apply
// to the kind are ignored
type CreateDocumentRequest struct {
	ProjectID    *uuid.UUID       `json:"projectId,omitempty"`
	Counterparty string           `json:"counterparty,omitempty" validate:"max=200"`
	Date         *time.Time       `json:"date,omitempty"`
	DueDate      *time.Time       `json:"dueDate,omitempty"`
	Currency     string           `json:"currency,omitempty" validate:"omitempty,len=3"`
	GrandTotal   *decimal.Decimal `json:"grandTotal,omitempty" swaggertype:"string"`
	Amount       *decimal.Decimal `json:"amount,omitempty" swaggertype:"string"`
	TaxAmount    *decimal.Decimal `json:"taxAmount,omitempty" swaggertype:"string"`
	Hours        *decimal.Decimal `json:"hours,omitempty" swaggertype:"string"`
	CostRate     *decimal.Decimal `json:"costRate,omitempty" swaggertype:"string"`
	Category     string           `json:"category,omitempty" validate:"max=100"`
	Description  string           `json:"description,omitempty" validate:"max=2000"`
	IsBillable   *bool            `json:"isBillable,omitempty"`
}

// UpdateDocumentRequest patches editable fields; nil fields are left unchanged
type UpdateDocumentRequest struct {
	ProjectID    *uuid.UUID       `json:"projectId,omitempty"`
	Counterparty *string          `json:"counterparty,omitempty" validate:"omitempty,max=200"`
	Date         *time.Time       `json:"date,omitempty"`
	DueDate      *time.Time       `json:"dueDate,omitempty"`
	GrandTotal   *decimal.Decimal `json:"grandTotal,omitempty" swaggertype:"string"`
	Amount       *decimal.Decimal `json:"amount,omitempty" swaggertype:"string"`
	TaxAmount    *decimal.Decimal `json:"taxAmount,omitempty" swaggertype:"string"`
	Hours        *decimal.Decimal `json:"hours,omitempty" swaggertype:"string"`
	CostRate     *decimal.Decimal `json:"costRate,omitempty" swaggertype:"string"`
	Category     *string          `json:"category,omitempty" validate:"omitempty,max=100"`
	Description  *string          `json:"description,omitempty" validate:"omitempty,max=2000"`
	IsBillable   *bool            `json:"isBillable,omitempty"`
}

type TransitionRequest struct {
	To     string `json:"to" validate:"required,max=20" example:"approved"`
	Reason string `json:"reason,omitempty" validate:"max=1000"`
}

type BulkTransitionRequest struct {
	IDs    []uuid.UUID `json:"ids" validate:"required,min=1,max=100"`
	To     string      `json:"to" validate:"required,max=20" example:"approved"`
	Reason string      `json:"reason,omitempty" validate:"max=1000"`
}

type AddExpenseToInvoiceRequest struct {
	InvoiceID uuid.UUID `json:"invoiceId" validate:"required"`
}

// InitializeSequenceRequest raises a sequence after a data migration
type InitializeSequenceRequest struct {
	NextValue int64 `json:"nextValue" validate:"required,gte=1"`
}

type ProjectDTO struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Budget      decimal.Decimal `json:"budget"`
	Currency    string          `json:"currency"`
	ManagerID   *uuid.UUID      `json:"managerId,omitempty"`
	StartDate   string          `json:"startDate,omitempty"`
	EndDate     string          `json:"endDate,omitempty"`
	Archived    bool            `json:"archived"`
	CreatedAt   string          `json:"createdAt"` // ISO 8601
	UpdatedAt   string          `json:"updatedAt"` // ISO 8601
}

type TaskDTO struct {
	ID            uuid.UUID       `json:"id"`
	ProjectID     uuid.UUID       `json:"projectId"`
	Title         string          `json:"title"`
	State         TaskState       `json:"state"`
	DueDate       string          `json:"dueDate,omitempty"`
	EstimateHours decimal.Decimal `json:"estimateHours"`
	Overdue       bool            `json:"overdue"`
}

type CreateProjectRequest struct {
	Name        string           `json:"name" validate:"required,max=200"`
	Description string           `json:"description,omitempty" validate:"max=2000"`
	Budget      *decimal.Decimal `json:"budget,omitempty" swaggertype:"string"`
	Currency    string           `json:"currency,omitempty" validate:"omitempty,len=3"`
	ManagerID   *uuid.UUID       `json:"managerId,omitempty"`
	StartDate   *time.Time       `json:"startDate,omitempty"`
	EndDate     *time.Time       `json:"endDate,omitempty"`
}

type CreateTaskRequest struct {
	Title         string           `json:"title" validate:"required,max=300"`
	State         TaskState        `json:"state,omitempty" validate:"omitempty,oneof=todo in_progress done blocked"`
	DueDate       *time.Time       `json:"dueDate,omitempty"`
	EstimateHours *decimal.Decimal `json:"estimateHours,omitempty" swaggertype:"string"`
}

type UpdateTaskStateRequest struct {
	State TaskState `json:"state" validate:"required,oneof=todo in_progress done blocked"`
}
