package domain

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// DocumentKind identifies one of the financial document types that move
// through a status lifecycle
type DocumentKind string

const (
	KindSalesOrder      DocumentKind = "sales_order"
	KindPurchaseOrder   DocumentKind = "purchase_order"
	KindCustomerInvoice DocumentKind = "customer_invoice"
	KindVendorBill      DocumentKind = "vendor_bill"
	KindExpense         DocumentKind = "expense"
	KindTimesheet       DocumentKind = "timesheet"
)

// AllDocumentKinds lists every kind in a stable order
var AllDocumentKinds = []DocumentKind{
	KindSalesOrder,
	KindPurchaseOrder,
	KindCustomerInvoice,
	KindVendorBill,
	KindExpense,
	KindTimesheet,
}

var kindSlugs = map[DocumentKind]string{
	KindSalesOrder:      "sales-orders",
	KindPurchaseOrder:   "purchase-orders",
	KindCustomerInvoice: "customer-invoices",
	KindVendorBill:      "vendor-bills",
	KindExpense:         "expenses",
	KindTimesheet:       "timesheets",
}

// ParseDocumentKind accepts either the kind value ("sales_order") or its
// URL slug ("sales-orders")
func ParseDocumentKind(s string) (DocumentKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for kind, slug := range kindSlugs {
		if s == string(kind) || s == slug {
			return kind, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// IsValid reports whether the kind is one of the known document kinds
func (k DocumentKind) IsValid() bool {
	_, ok := kindSlugs[k]
	return ok
}

// Slug returns the plural, dash separated name used in URLs
func (k DocumentKind) Slug() string {
	return kindSlugs[k]
}

// TableName returns the table that stores documents of this kind
func (k DocumentKind) TableName() string {
	return strings.ReplaceAll(kindSlugs[k], "-", "_")
}

// DocType returns the numbering code for kinds that carry a document number
func (k DocumentKind) DocType() (DocType, bool) {
	switch k {
	case KindSalesOrder:
		return DocTypeSalesOrder, true
	case KindPurchaseOrder:
		return DocTypePurchaseOrder, true
	case KindCustomerInvoice:
		return DocTypeInvoice, true
	case KindVendorBill:
		return DocTypeBill, true
	}
	return "", false
}

// Numbered reports whether documents of this kind get a sequence number
func (k DocumentKind) Numbered() bool {
	_, ok := k.DocType()
	return ok
}

// DocType is the short code a sequence is keyed on
type DocType string

const (
	DocTypeSalesOrder    DocType = "SO"
	DocTypePurchaseOrder DocType = "PO"
	DocTypeInvoice       DocType = "INV"
	DocTypeBill          DocType = "BILL"
)

// IsValid reports whether the doc type is one of the fixed numbering codes
func (d DocType) IsValid() bool {
	switch d {
	case DocTypeSalesOrder, DocTypePurchaseOrder, DocTypeInvoice, DocTypeBill:
		return true
	}
	return false
}

// OrderStatus is the status of a sales or purchase order
type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "draft"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusFulfilled OrderStatus = "fulfilled"
	OrderStatusClosed    OrderStatus = "closed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// InvoiceStatus is the status of a customer invoice or vendor bill
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusPosted    InvoiceStatus = "posted"
	InvoiceStatusFulfilled InvoiceStatus = "fulfilled"
	InvoiceStatusClosed    InvoiceStatus = "closed"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// ExpenseStatus is the status of an employee expense claim
type ExpenseStatus string

const (
	ExpenseStatusDraft      ExpenseStatus = "draft"
	ExpenseStatusSubmitted  ExpenseStatus = "submitted"
	ExpenseStatusApproved   ExpenseStatus = "approved"
	ExpenseStatusRejected   ExpenseStatus = "rejected"
	ExpenseStatusReimbursed ExpenseStatus = "reimbursed"
	ExpenseStatusPaid       ExpenseStatus = "paid"
)

// TimesheetStatus is the approval status of a timesheet entry
type TimesheetStatus string

const (
	TimesheetStatusPending  TimesheetStatus = "pending"
	TimesheetStatusApproved TimesheetStatus = "approved"
	TimesheetStatusRejected TimesheetStatus = "rejected"
)

// Statuses whose amounts count towards project costs
var (
	CountedExpenseStatuses   = []ExpenseStatus{ExpenseStatusApproved, ExpenseStatusReimbursed, ExpenseStatusPaid}
	CountedBillStatuses      = []InvoiceStatus{InvoiceStatusPosted, InvoiceStatusFulfilled, InvoiceStatusClosed}
	CountedTimesheetStatuses = []TimesheetStatus{TimesheetStatusApproved}
	CountedPOStatuses        = []OrderStatus{OrderStatusConfirmed, OrderStatusFulfilled, OrderStatusClosed}
)

// Guard names the capability an actor needs to take an edge
type Guard string

const (
	// GuardWriter requires the documents:write permission
	GuardWriter Guard = "writer"
	// GuardApprover requires the documents:approve permission
	GuardApprover Guard = "approver"
	// GuardOwner requires the actor to own the document
	GuardOwner Guard = "owner"
)

// Edge is an allowed move between two statuses
type Edge[S ~string] struct {
	From  S
	To    S
	Guard Guard
}

// StateMachine is a closed status set with an adjacency table
type StateMachine[S ~string] struct {
	initial S
	states  []S
	edges   map[S]map[S]Guard
}

// NewStateMachine builds a machine from its states and edges. It panics on
// an edge that references an unknown status since tables are package data.
func NewStateMachine[S ~string](initial S, states []S, edges ...Edge[S]) *StateMachine[S] {
	m := &StateMachine[S]{
		initial: initial,
		states:  states,
		edges:   make(map[S]map[S]Guard, len(states)),
	}
	for _, e := range edges {
		if !lo.Contains(states, e.From) || !lo.Contains(states, e.To) {
			panic(fmt.Sprintf("lifecycle: edge %s -> %s uses an unknown status", e.From, e.To))
		}
		if m.edges[e.From] == nil {
			m.edges[e.From] = make(map[S]Guard)
		}
		m.edges[e.From][e.To] = e.Guard
	}
	return m
}

// CanTransition reports whether from -> to is an edge
func (m *StateMachine[S]) CanTransition(from, to S) bool {
	_, ok := m.edges[from][to]
	return ok
}

// Initial returns the status documents are created in
func (m *StateMachine[S]) Initial() string { return string(m.initial) }

// States returns all statuses of the machine
func (m *StateMachine[S]) States() []string {
	return lo.Map(m.states, func(s S, _ int) string { return string(s) })
}

// IsValid reports whether status belongs to the machine
func (m *StateMachine[S]) IsValid(status string) bool {
	return lo.Contains(m.states, S(status))
}

// Edge returns the guard of from -> to, or false when the edge does not exist
func (m *StateMachine[S]) Edge(from, to string) (Guard, bool) {
	g, ok := m.edges[S(from)][S(to)]
	return g, ok
}

// Next returns the statuses reachable in one step from status, in table order
func (m *StateMachine[S]) Next(status string) []string {
	out := m.edges[S(status)]
	next := make([]string, 0, len(out))
	for _, s := range m.states {
		if _, ok := out[s]; ok {
			next = append(next, string(s))
		}
	}
	return next
}

// IsTerminal reports whether status has no outgoing edges
func (m *StateMachine[S]) IsTerminal(status string) bool {
	return m.IsValid(status) && len(m.edges[S(status)]) == 0
}

// Lifecycle is the kind-agnostic view of a StateMachine used by the
// transition service
type Lifecycle interface {
	Initial() string
	States() []string
	IsValid(status string) bool
	Edge(from, to string) (Guard, bool)
	Next(status string) []string
	IsTerminal(status string) bool
}

var (
	orderLifecycle = NewStateMachine(OrderStatusDraft,
		[]OrderStatus{OrderStatusDraft, OrderStatusConfirmed, OrderStatusFulfilled, OrderStatusClosed, OrderStatusCancelled},
		Edge[OrderStatus]{OrderStatusDraft, OrderStatusConfirmed, GuardWriter},
		Edge[OrderStatus]{OrderStatusConfirmed, OrderStatusFulfilled, GuardWriter},
		Edge[OrderStatus]{OrderStatusFulfilled, OrderStatusClosed, GuardWriter},
		Edge[OrderStatus]{OrderStatusDraft, OrderStatusCancelled, GuardWriter},
		Edge[OrderStatus]{OrderStatusConfirmed, OrderStatusCancelled, GuardWriter},
	)

	invoiceLifecycle = NewStateMachine(InvoiceStatusDraft,
		[]InvoiceStatus{InvoiceStatusDraft, InvoiceStatusPosted, InvoiceStatusFulfilled, InvoiceStatusClosed, InvoiceStatusCancelled},
		Edge[InvoiceStatus]{InvoiceStatusDraft, InvoiceStatusPosted, GuardWriter},
		Edge[InvoiceStatus]{InvoiceStatusPosted, InvoiceStatusFulfilled, GuardWriter},
		Edge[InvoiceStatus]{InvoiceStatusFulfilled, InvoiceStatusClosed, GuardWriter},
		Edge[InvoiceStatus]{InvoiceStatusDraft, InvoiceStatusCancelled, GuardWriter},
		Edge[InvoiceStatus]{InvoiceStatusPosted, InvoiceStatusCancelled, GuardWriter},
	)

	expenseLifecycle = NewStateMachine(ExpenseStatusDraft,
		[]ExpenseStatus{ExpenseStatusDraft, ExpenseStatusSubmitted, ExpenseStatusApproved, ExpenseStatusRejected, ExpenseStatusReimbursed, ExpenseStatusPaid},
		Edge[ExpenseStatus]{ExpenseStatusDraft, ExpenseStatusSubmitted, GuardOwner},
		Edge[ExpenseStatus]{ExpenseStatusSubmitted, ExpenseStatusApproved, GuardApprover},
		Edge[ExpenseStatus]{ExpenseStatusSubmitted, ExpenseStatusRejected, GuardApprover},
		Edge[ExpenseStatus]{ExpenseStatusApproved, ExpenseStatusReimbursed, GuardWriter},
		Edge[ExpenseStatus]{ExpenseStatusReimbursed, ExpenseStatusPaid, GuardWriter},
		Edge[ExpenseStatus]{ExpenseStatusRejected, ExpenseStatusDraft, GuardOwner},
	)

	// approved -> rejected is the correction path for already approved hours
	timesheetLifecycle = NewStateMachine(TimesheetStatusPending,
		[]TimesheetStatus{TimesheetStatusPending, TimesheetStatusApproved, TimesheetStatusRejected},
		Edge[TimesheetStatus]{TimesheetStatusPending, TimesheetStatusApproved, GuardApprover},
		Edge[TimesheetStatus]{TimesheetStatusPending, TimesheetStatusRejected, GuardApprover},
		Edge[TimesheetStatus]{TimesheetStatusApproved, TimesheetStatusRejected, GuardApprover},
	)

	lifecycles = map[DocumentKind]Lifecycle{
		KindSalesOrder:      orderLifecycle,
		KindPurchaseOrder:   orderLifecycle,
		KindCustomerInvoice: invoiceLifecycle,
		KindVendorBill:      invoiceLifecycle,
		KindExpense:         expenseLifecycle,
		KindTimesheet:       timesheetLifecycle,
	}
)

// LifecycleFor returns the state machine governing kind
func LifecycleFor(kind DocumentKind) (Lifecycle, error) {
	lc, ok := lifecycles[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return lc, nil
}

// RejectedStatus is the status name that requires a reason, shared by
// expenses and timesheets
const RejectedStatus = "rejected"

// RequiresReason reports whether moving into status needs a rejection reason
func RequiresReason(status string) bool {
	return status == RejectedStatus
}

// IsEditable reports whether a document of kind in status can still be
// edited by its owner: in its initial status or after a rejection
func IsEditable(kind DocumentKind, status string) bool {
	lc, ok := lifecycles[kind]
	if !ok {
		return false
	}
	return status == lc.Initial() || status == RejectedStatus
}

// CheckEditable applies the edit gate for actor on a document
func CheckEditable(actor *Actor, state *DocumentState) error {
	if actor == nil || actor.OrgID != state.OrgID {
		return ErrNotFound
	}
	if actor.ID != state.OwnerID || !actor.Can(PermissionDocumentsWrite) {
		return ErrUnauthorized
	}
	if !IsEditable(state.Kind, state.Status) {
		return fmt.Errorf("%w: %s is %s", ErrNotEditable, state.Kind, state.Status)
	}
	return nil
}
