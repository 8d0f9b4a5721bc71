package mapper

import (
	"fmt"
	"time"

	"github.com/amalthea/finance-api/internal/domain"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

const (
	timestampLayout = "2006-01-02T15:04:05Z"
	dateLayout      = "2006-01-02"
)

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

// ToSequenceDTO converts DocumentSequence to SequenceDTO
func ToSequenceDTO(seq *domain.DocumentSequence) domain.SequenceDTO {
	return domain.SequenceDTO{
		DocType:   seq.DocType,
		Prefix:    seq.Prefix,
		NextValue: seq.NextVal,
		Padding:   seq.Padding,
	}
}

func headerDTO(kind domain.DocumentKind, h *domain.DocumentHeader, status string) domain.DocumentDTO {
	return domain.DocumentDTO{
		ID:              h.ID,
		Kind:            kind,
		Status:          status,
		OrgID:           h.OrgID,
		ProjectID:       h.ProjectID,
		OwnerID:         h.OwnerID,
		RejectionReason: lo.FromPtr(h.RejectionReason),
		CreatedAt:       formatTimestamp(h.CreatedAt),
		UpdatedAt:       formatTimestamp(h.UpdatedAt),
	}
}

func withNumber(dto domain.DocumentDTO, n domain.Numbering) domain.DocumentDTO {
	dto.Number = lo.FromPtr(n.Number)
	dto.NumberProvisional = n.NumberProvisional
	return dto
}

// ToSalesOrderDTO converts SalesOrder to DocumentDTO
func ToSalesOrderDTO(o *domain.SalesOrder) domain.DocumentDTO {
	dto := withNumber(headerDTO(domain.KindSalesOrder, &o.DocumentHeader, string(o.Status)), o.Numbering)
	dto.Counterparty = o.CustomerName
	dto.Date = formatDate(&o.OrderDate)
	dto.Currency = o.Currency
	dto.Amount = o.GrandTotal
	dto.Description = o.Notes
	return dto
}

// ToPurchaseOrderDTO converts PurchaseOrder to DocumentDTO
func ToPurchaseOrderDTO(o *domain.PurchaseOrder) domain.DocumentDTO {
	dto := withNumber(headerDTO(domain.KindPurchaseOrder, &o.DocumentHeader, string(o.Status)), o.Numbering)
	dto.Counterparty = o.VendorName
	dto.Date = formatDate(&o.OrderDate)
	dto.Currency = o.Currency
	dto.Amount = o.GrandTotal
	dto.Description = o.Notes
	return dto
}

// ToCustomerInvoiceDTO converts CustomerInvoice, including any loaded lines, to DocumentDTO
func ToCustomerInvoiceDTO(inv *domain.CustomerInvoice) domain.DocumentDTO {
	dto := withNumber(headerDTO(domain.KindCustomerInvoice, &inv.DocumentHeader, string(inv.Status)), inv.Numbering)
	dto.Counterparty = inv.CustomerName
	dto.Date = formatDate(&inv.InvoiceDate)
	dto.DueDate = formatDate(inv.DueDate)
	dto.Currency = inv.Currency
	dto.Amount = inv.GrandTotal
	if len(inv.Lines) > 0 {
		dto.Lines = lo.Map(inv.Lines, func(l domain.InvoiceLine, _ int) domain.InvoiceLineDTO {
			return ToInvoiceLineDTO(&l)
		})
	}
	return dto
}

// ToVendorBillDTO converts VendorBill to DocumentDTO
func ToVendorBillDTO(b *domain.VendorBill) domain.DocumentDTO {
	dto := withNumber(headerDTO(domain.KindVendorBill, &b.DocumentHeader, string(b.Status)), b.Numbering)
	dto.Counterparty = b.VendorName
	dto.Date = formatDate(&b.BillDate)
	dto.DueDate = formatDate(b.DueDate)
	dto.Currency = b.Currency
	dto.Amount = b.GrandTotal
	return dto
}

// ToExpenseDTO converts Expense to DocumentDTO. Invoice eligibility is
// derived here on every read.
func ToExpenseDTO(e *domain.Expense) domain.DocumentDTO {
	dto := headerDTO(domain.KindExpense, &e.DocumentHeader, string(e.Status))
	dto.Date = formatDate(&e.SpentOn)
	dto.Currency = e.Currency
	dto.Amount = e.Amount
	dto.TaxAmount = lo.ToPtr(e.TaxAmount)
	dto.Category = e.Category
	dto.Description = e.Description
	dto.IsBillable = lo.ToPtr(e.IsBillable)
	dto.InvoiceEligible = lo.ToPtr(e.InvoiceEligible())
	dto.InvoiceLineID = e.InvoiceLineID
	return dto
}

// ToTimesheetDTO converts Timesheet to DocumentDTO; Amount is the cost of the entry
func ToTimesheetDTO(t *domain.Timesheet) domain.DocumentDTO {
	dto := headerDTO(domain.KindTimesheet, &t.DocumentHeader, string(t.Status))
	dto.Date = formatDate(&t.WorkedOn)
	dto.Amount = t.Cost()
	dto.Hours = lo.ToPtr(t.Hours)
	dto.CostRate = lo.ToPtr(t.CostRate)
	dto.Description = t.Description
	dto.IsBillable = lo.ToPtr(t.IsBillable)
	return dto
}

// ToDocumentDTO converts any of the document models to DocumentDTO
func ToDocumentDTO(doc interface{}) (domain.DocumentDTO, error) {
	switch d := doc.(type) {
	case *domain.SalesOrder:
		return ToSalesOrderDTO(d), nil
	case *domain.PurchaseOrder:
		return ToPurchaseOrderDTO(d), nil
	case *domain.CustomerInvoice:
		return ToCustomerInvoiceDTO(d), nil
	case *domain.VendorBill:
		return ToVendorBillDTO(d), nil
	case *domain.Expense:
		return ToExpenseDTO(d), nil
	case *domain.Timesheet:
		return ToTimesheetDTO(d), nil
	}
	return domain.DocumentDTO{}, fmt.Errorf("%w: %T", domain.ErrUnknownKind, doc)
}

// ToInvoiceLineDTO converts InvoiceLine to InvoiceLineDTO
func ToInvoiceLineDTO(l *domain.InvoiceLine) domain.InvoiceLineDTO {
	return domain.InvoiceLineDTO{
		ID:          l.ID,
		Description: l.Description,
		Quantity:    l.Quantity,
		UnitPrice:   l.UnitPrice,
		TaxAmount:   l.TaxAmount,
		LineTotal:   l.LineTotal,
		SourceType:  l.SourceType,
		SourceID:    l.SourceID,
	}
}

// ToDocumentStateDTO converts DocumentState to DocumentStateDTO
func ToDocumentStateDTO(s *domain.DocumentState) domain.DocumentStateDTO {
	return domain.DocumentStateDTO{
		ID:              s.ID,
		Kind:            s.Kind,
		Number:          lo.FromPtr(s.Number),
		Status:          s.Status,
		RejectionReason: lo.FromPtr(s.RejectionReason),
		UpdatedAt:       formatTimestamp(s.UpdatedAt),
	}
}

// ToStatusHistoryDTO converts DocumentStatusHistory to StatusHistoryDTO
func ToStatusHistoryDTO(h *domain.DocumentStatusHistory) domain.StatusHistoryDTO {
	return domain.StatusHistoryDTO{
		ID:            h.ID,
		FromStatus:    h.FromStatus,
		ToStatus:      h.ToStatus,
		ChangedByID:   h.ChangedByID,
		ChangedByName: h.ChangedByName,
		Reason:        h.Reason,
		ChangedAt:     formatTimestamp(h.ChangedAt),
	}
}

// InvoiceLineFromExpense builds the invoice line billed for an expense
func InvoiceLineFromExpense(e *domain.Expense, invoiceID uuid.UUID) domain.InvoiceLine {
	desc := e.Description
	if desc == "" {
		desc = e.Category
	}
	if desc == "" {
		desc = "Expense"
	}
	return domain.InvoiceLine{
		OrgID:       e.OrgID,
		InvoiceID:   invoiceID,
		ProjectID:   e.ProjectID,
		Description: desc,
		Quantity:    decimal.NewFromInt(1),
		UnitPrice:   e.Amount,
		TaxAmount:   e.TaxAmount,
		LineTotal:   e.Amount.Add(e.TaxAmount),
		SourceType:  domain.InvoiceLineSourceExpense,
		SourceID:    lo.ToPtr(e.ID),
	}
}

// FormatError creates a formatted error message
func FormatError(entity, operation string, err error) error {
	return fmt.Errorf("failed to %s %s: %w", operation, entity, err)
}

// ToProjectDTO converts Project to ProjectDTO
func ToProjectDTO(project *domain.Project) domain.ProjectDTO {
	return domain.ProjectDTO{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		Budget:      project.Budget,
		Currency:    project.Currency,
		ManagerID:   project.ManagerID,
		StartDate:   formatDate(project.StartDate),
		EndDate:     formatDate(project.EndDate),
		Archived:    project.ArchivedAt != nil,
		CreatedAt:   formatTimestamp(project.CreatedAt),
		UpdatedAt:   formatTimestamp(project.UpdatedAt),
	}
}

// ToTaskDTO converts Task to TaskDTO; now decides whether the task is overdue
func ToTaskDTO(task *domain.Task, now time.Time) domain.TaskDTO {
	return domain.TaskDTO{
		ID:            task.ID,
		ProjectID:     task.ProjectID,
		Title:         task.Title,
		State:         task.State,
		DueDate:       formatDate(task.DueDate),
		EstimateHours: task.EstimateHours,
		Overdue:       task.State != domain.TaskStateDone && task.DueDate != nil && task.DueDate.Before(now),
	}
}
