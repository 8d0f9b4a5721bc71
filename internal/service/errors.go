package service

import "errors"

// Common service errors. Lifecycle errors (invalid transition, unauthorized,
// not found, missing reason) live in the domain package.
var (
	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when the request conflicts with the current state of a resource
	ErrConflict = errors.New("resource conflict")

	// ErrInvoiceNotDraft is returned when lines are added to an invoice that is no longer a draft
	ErrInvoiceNotDraft = errors.New("invoice is not a draft")

	// ErrProjectMismatch is returned when an expense and an invoice belong to different projects
	ErrProjectMismatch = errors.New("expense and invoice belong to different projects")
)
