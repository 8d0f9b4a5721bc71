package domain

import (
	"errors"
	"fmt"
)

// Core lifecycle errors. Callers match them with errors.Is; none are retried.
var (
	// ErrInvalidTransition is returned when the requested edge does not exist
	// from the document's current status, including same-state and replayed requests
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrUnauthorized is returned when the actor fails the guard of an edge
	ErrUnauthorized = errors.New("actor not allowed to perform this action")

	// ErrNotFound is returned for unknown documents or projects, and for
	// documents that belong to another organization
	ErrNotFound = errors.New("not found")

	// ErrMissingReason is returned when a rejection carries no reason
	ErrMissingReason = errors.New("a reason is required to reject")

	// ErrNotEditable is returned when a document is edited outside draft or rejected
	ErrNotEditable = errors.New("document can no longer be edited")

	// ErrUnknownStatus is returned when a status is not part of the kind's lifecycle
	ErrUnknownStatus = errors.New("unknown status")

	// ErrUnknownKind is returned for an unrecognized document kind
	ErrUnknownKind = errors.New("unknown document kind")

	// ErrNotInvoiceEligible is returned when an expense cannot be linked to an invoice
	ErrNotInvoiceEligible = errors.New("expense is not eligible for invoicing")
)

// TransitionError carries the attempted edge of a rejected transition
type TransitionError struct {
	Kind DocumentKind
	From string
	To   string
	Err  error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s: %v", e.Kind, e.From, e.To, e.Err)
}

func (e *TransitionError) Unwrap() error {
	return e.Err
}

// APIError represents a standardized API error with HTTP status code
type APIError struct {
	Type   string            `json:"type"`
	Title  string            `json:"title"`
	Status int               `json:"status"`
	Detail string            `json:"detail,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Title
}

// ValidationFieldError maps a field name to its validation error message
type ValidationFieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationMessages provides human-readable validation error messages
// These map validator tags to user-friendly messages
var ValidationMessages = map[string]string{
	"required":   "This field is required",
	"email":      "Must be a valid email address",
	"max":        "Exceeds maximum length",
	"min":        "Below minimum length",
	"gte":        "Must be greater than or equal to minimum value",
	"gt":         "Must be greater than minimum value",
	"lte":        "Must be less than or equal to maximum value",
	"lt":         "Must be less than maximum value",
	"uuid":       "Must be a valid UUID",
	"url":        "Must be a valid URL",
	"oneof":      "Must be one of the allowed values",
	"alphanum":   "Must contain only alphanumeric characters",
	"numeric":    "Must be a numeric value",
	"alpha":      "Must contain only alphabetic characters",
	"len":        "Must be exactly the specified length",
	"eq":         "Must equal the specified value",
	"ne":         "Must not equal the specified value",
	"contains":   "Must contain the specified value",
	"excludes":   "Must not contain the specified value",
	"startswith": "Must start with the specified value",
	"endswith":   "Must end with the specified value",
}

// GetValidationMessage returns a human-readable message for a validation tag
func GetValidationMessage(tag string) string {
	if msg, ok := ValidationMessages[tag]; ok {
		return msg
	}
	return "Validation failed: " + tag
}

// Common error types for RFC 7807 Problem Details
const (
	ErrorTypeValidation   = "validation_error"
	ErrorTypeNotFound     = "not_found"
	ErrorTypeBadRequest   = "bad_request"
	ErrorTypeConflict     = "conflict"
	ErrorTypeUnauthorized = "unauthorized"
	ErrorTypeForbidden    = "forbidden"
	ErrorTypeInternal     = "internal_error"
)
