package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns a new ID when none was set
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Organization is the tenant boundary for sequences and documents
type Organization struct {
	BaseModel
	Name     string `gorm:"type:varchar(200);not null"`
	Currency string `gorm:"type:varchar(3);not null;default:'INR'"`
	IsActive bool   `gorm:"not null;default:true;column:is_active"`
}

// DocumentSequence is the persisted counter used to mint document numbers.
// NextVal is always the next value to hand out.
type DocumentSequence struct {
	OrgID     uuid.UUID `gorm:"type:uuid;primaryKey;column:org_id"`
	DocType   DocType   `gorm:"type:varchar(10);primaryKey;column:doc_type"`
	Prefix    string    `gorm:"type:varchar(20);not null"`
	NextVal   int64     `gorm:"not null;default:1;column:next_val"`
	Padding   int       `gorm:"not null;default:5"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName overrides the default table name to match the migration
func (DocumentSequence) TableName() string {
	return "document_sequences"
}

// Project is the container costs are rolled up against
type Project struct {
	BaseModel
	OrgID       uuid.UUID       `gorm:"type:uuid;not null;index;column:org_id"`
	Name        string          `gorm:"type:varchar(200);not null"`
	Description string          `gorm:"type:text"`
	Budget      decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0;column:budget_amount"`
	Currency    string          `gorm:"type:varchar(3);not null;default:'INR';column:budget_currency"`
	ManagerID   *uuid.UUID      `gorm:"type:uuid;column:manager_user_id"`
	StartDate   *time.Time      `gorm:"type:date;column:start_date"`
	EndDate     *time.Time      `gorm:"type:date;column:end_date"`
	ArchivedAt  *time.Time      `gorm:"column:archived_at"`
}

// TaskState is the workflow state of a project task
type TaskState string

const (
	TaskStateTodo       TaskState = "todo"
	TaskStateInProgress TaskState = "in_progress"
	TaskStateDone       TaskState = "done"
	TaskStateBlocked    TaskState = "blocked"
)

// Task is a unit of project work; only its state and due date feed the risk score
type Task struct {
	BaseModel
	OrgID         uuid.UUID       `gorm:"type:uuid;not null;index;column:org_id"`
	ProjectID     uuid.UUID       `gorm:"type:uuid;not null;index;column:project_id"`
	Title         string          `gorm:"type:varchar(300);not null"`
	State         TaskState       `gorm:"type:varchar(20);not null;default:'todo'"`
	DueDate       *time.Time      `gorm:"type:date;column:due_date"`
	EstimateHours decimal.Decimal `gorm:"type:numeric(8,2);not null;default:0;column:estimate_hours"`
}

// DocumentHeader holds the columns every lifecycle document table shares
type DocumentHeader struct {
	BaseModel
	OrgID           uuid.UUID  `gorm:"type:uuid;not null;index;column:org_id"`
	ProjectID       *uuid.UUID `gorm:"type:uuid;index;column:project_id"`
	OwnerID         uuid.UUID  `gorm:"type:uuid;not null;column:owner_id"`
	RejectionReason *string    `gorm:"type:text;column:rejection_reason"`
}

// Numbering holds the sequence number of SO/PO/INV/BILL documents.
// Number never changes once set.
type Numbering struct {
	Number            *string `gorm:"type:varchar(50);column:number"`
	NumberProvisional bool    `gorm:"not null;default:false;column:number_provisional"`
}

// SalesOrder is an order received from a customer
type SalesOrder struct {
	DocumentHeader
	Numbering
	Status       OrderStatus     `gorm:"type:varchar(20);not null;default:'draft';index"`
	CustomerName string          `gorm:"type:varchar(200);column:customer_name"`
	OrderDate    time.Time       `gorm:"type:date;not null;column:order_date"`
	Currency     string          `gorm:"type:varchar(3);not null;default:'INR'"`
	GrandTotal   decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0;column:grand_total"`
	Notes        string          `gorm:"type:text"`
}

// PurchaseOrder is an order placed with a vendor
type PurchaseOrder struct {
	DocumentHeader
	Numbering
	Status     OrderStatus     `gorm:"type:varchar(20);not null;default:'draft';index"`
	VendorName string          `gorm:"type:varchar(200);column:vendor_name"`
	OrderDate  time.Time       `gorm:"type:date;not null;column:order_date"`
	Currency   string          `gorm:"type:varchar(3);not null;default:'INR'"`
	GrandTotal decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0;column:grand_total"`
	Notes      string          `gorm:"type:text"`
}

// CustomerInvoice bills a customer; expenses can be linked in as lines
type CustomerInvoice struct {
	DocumentHeader
	Numbering
	Status       InvoiceStatus   `gorm:"type:varchar(20);not null;default:'draft';index"`
	CustomerName string          `gorm:"type:varchar(200);column:customer_name"`
	InvoiceDate  time.Time       `gorm:"type:date;not null;column:invoice_date"`
	DueDate      *time.Time      `gorm:"type:date;column:due_date"`
	Currency     string          `gorm:"type:varchar(3);not null;default:'INR'"`
	GrandTotal   decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0;column:grand_total"`
	Lines        []InvoiceLine   `gorm:"foreignKey:InvoiceID"`
}

// InvoiceLineSource names what an invoice line was generated from
type InvoiceLineSource string

const (
	InvoiceLineSourceManual  InvoiceLineSource = "manual"
	InvoiceLineSourceExpense InvoiceLineSource = "expense"
)

// InvoiceLine is one billed line of a customer invoice
type InvoiceLine struct {
	BaseModel
	OrgID       uuid.UUID         `gorm:"type:uuid;not null;index;column:org_id"`
	InvoiceID   uuid.UUID         `gorm:"type:uuid;not null;index;column:invoice_id"`
	ProjectID   *uuid.UUID        `gorm:"type:uuid;column:project_id"`
	Description string            `gorm:"type:text;not null"`
	Quantity    decimal.Decimal   `gorm:"type:numeric(12,2);not null;default:1"`
	UnitPrice   decimal.Decimal   `gorm:"type:numeric(15,2);not null;default:0;column:unit_price"`
	TaxAmount   decimal.Decimal   `gorm:"type:numeric(15,2);not null;default:0;column:tax_amount"`
	LineTotal   decimal.Decimal   `gorm:"type:numeric(15,2);not null;default:0;column:line_total"`
	SourceType  InvoiceLineSource `gorm:"type:varchar(20);not null;default:'manual';column:source_type"`
	SourceID    *uuid.UUID        `gorm:"type:uuid;column:source_id"`
}

// VendorBill is a payable received from a vendor
type VendorBill struct {
	DocumentHeader
	Numbering
	Status     InvoiceStatus   `gorm:"type:varchar(20);not null;default:'draft';index"`
	VendorName string          `gorm:"type:varchar(200);column:vendor_name"`
	BillDate   time.Time       `gorm:"type:date;not null;column:bill_date"`
	DueDate    *time.Time      `gorm:"type:date;column:due_date"`
	Currency   string          `gorm:"type:varchar(3);not null;default:'INR'"`
	GrandTotal decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0;column:grand_total"`
}

// Expense is an employee expense claim
type Expense struct {
	DocumentHeader
	Status        ExpenseStatus   `gorm:"type:varchar(20);not null;default:'draft';index"`
	Category      string          `gorm:"type:varchar(100)"`
	Description   string          `gorm:"type:text"`
	SpentOn       time.Time       `gorm:"type:date;not null;column:spent_on"`
	Amount        decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0"`
	TaxAmount     decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0;column:tax_amount"`
	Currency      string          `gorm:"type:varchar(3);not null;default:'INR'"`
	IsBillable    bool            `gorm:"not null;default:false;column:is_billable"`
	InvoiceLineID *uuid.UUID      `gorm:"type:uuid;column:invoice_line_id"`
	ApprovedByID  *uuid.UUID      `gorm:"type:uuid;column:approved_by_id"`
	ApprovedAt    *time.Time      `gorm:"column:approved_at"`
}

// InvoiceEligible reports whether the expense can be linked to an invoice
// line. It is derived on every read and never stored.
func (e *Expense) InvoiceEligible() bool {
	return e.Status == ExpenseStatusApproved && e.IsBillable && e.InvoiceLineID == nil
}

// Timesheet is a record of hours worked on a project
type Timesheet struct {
	DocumentHeader
	Status       TimesheetStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	WorkedOn     time.Time       `gorm:"type:date;not null;column:worked_on"`
	Hours        decimal.Decimal `gorm:"type:numeric(6,2);not null"`
	CostRate     decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0;column:cost_rate"`
	IsBillable   bool            `gorm:"not null;default:true;column:is_billable"`
	Description  string          `gorm:"type:text"`
	ApprovedByID *uuid.UUID      `gorm:"type:uuid;column:approved_by_id"`
	ApprovedAt   *time.Time      `gorm:"column:approved_at"`
}

// Cost returns hours multiplied by the cost rate
func (t *Timesheet) Cost() decimal.Decimal {
	return t.Hours.Mul(t.CostRate)
}

// DocumentStatusHistory tracks committed transitions for audit purposes
type DocumentStatusHistory struct {
	ID            uuid.UUID    `gorm:"type:uuid;primaryKey"`
	OrgID         uuid.UUID    `gorm:"type:uuid;not null;index;column:org_id"`
	DocumentKind  DocumentKind `gorm:"type:varchar(30);not null;column:document_kind;index:idx_status_history_document"`
	DocumentID    uuid.UUID    `gorm:"type:uuid;not null;column:document_id;index:idx_status_history_document"`
	FromStatus    string       `gorm:"type:varchar(20);not null;column:from_status"`
	ToStatus      string       `gorm:"type:varchar(20);not null;column:to_status"`
	ChangedByID   uuid.UUID    `gorm:"type:uuid;not null;column:changed_by_id"`
	ChangedByName string       `gorm:"type:varchar(200);column:changed_by_name"`
	Reason        string       `gorm:"type:text"`
	ChangedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP;column:changed_at"`
}

// TableName overrides the default table name to match the migration
func (DocumentStatusHistory) TableName() string {
	return "document_status_history"
}

// BeforeCreate assigns a new ID when none was set
func (h *DocumentStatusHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

// DocumentState is the kind-agnostic projection of a document row that the
// lifecycle reads and compares against
type DocumentState struct {
	Kind              DocumentKind
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
