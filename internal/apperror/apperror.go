// Package apperror defines the domain error taxonomy shared by services and handlers.
// Services return *Error values; the HTTP layer maps Kind to a status code.
package apperror

import (
	"errors"
	"fmt"
)

// Kind groups errors by how the caller should react.
type Kind string

const (
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
	KindNotFound   Kind = "not_found"
	KindIntegrity  Kind = "integrity"
)

// Machine-readable codes.
const (
	CodeValidation             = "VALIDATION_ERROR"
	CodeInvalidPaymentMethod   = "INVALID_PAYMENT_METHOD"
	CodeInvalidPaymentAmount   = "INVALID_PAYMENT_AMOUNT"
	CodePaymentMismatch        = "PAYMENT_MISMATCH"
	CodeMissingClient          = "MISSING_CLIENT_FOR_INSTALLMENT"
	CodeProductNotFound        = "PRODUCT_NOT_FOUND"
	CodeInsufficientStock      = "INSUFFICIENT_STOCK"
	CodeClosureAlreadyOpen     = "CLOSURE_ALREADY_OPEN"
	CodeNoOpenClosure          = "NO_OPEN_CLOSURE"
	CodeSaleEditWindowExpired  = "SALE_EDIT_WINDOW_EXPIRED"
	CodeSaleInClosedClosure    = "SALE_IN_CLOSED_CLOSURE"
	CodeBudgetNotPending       = "BUDGET_NOT_PENDING"
	CodeBudgetExpired          = "BUDGET_EXPIRED"
	CodeFiscalAlreadyCancelled = "FISCAL_ALREADY_CANCELLED"
	CodeFiscalNotCancellable   = "FISCAL_NOT_CANCELLABLE"
	CodeDuplicate              = "DUPLICATE_ENTRY"
	CodeNotFound               = "NOT_FOUND"
	CodeIntegrity              = "TRANSACTION_FAILED"
)

// Error is the structured error returned by the service layer.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Details map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// WithDetail adds a key-value pair to error details.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

func Validation(code, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message}
}

func Conflict(code, message string) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: message}
}

// NotFound is also returned for rows that exist under another company,
// so callers cannot discover foreign records.
func NotFound(entity string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s não encontrado(a)", entity),
		Details: map[string]any{"entity": entity},
	}
}

// Integrity wraps storage failures that abort the current request.
func Integrity(err error) *Error {
	return &Error{Kind: KindIntegrity, Code: CodeIntegrity, Message: "Falha ao gravar a operação", Err: err}
}

// As extracts an *Error from err.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code string) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}

// KindOf returns the Kind of err, KindIntegrity for foreign errors.
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindIntegrity
}
