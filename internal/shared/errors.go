package shared

import (
	"errors"
	"fmt"
)

// Error codes surfaced to callers. The UI layer branches on these instead
// of matching message strings.
const (
	CodeInvalidParameter       = "INVALID_PARAMETER"
	CodeMemberNotFound         = "MEMBER_NOT_FOUND"
	CodeTransactionNotFound    = "TRANSACTION_NOT_FOUND"
	CodeBatchNotFound          = "BATCH_NOT_FOUND"
	CodeAlreadyExited          = "ALREADY_EXITED"
	CodeInvalidDateFormat      = "INVALID_DATE_FORMAT"
	CodeFutureDate             = "FUTURE_DATE"
	CodeActiveLoanExists       = "ACTIVE_LOAN_EXISTS"
	CodeRefundAlreadyProcessed = "PENGEMBALIAN_ALREADY_PROCESSED"
	CodeValidationFailed       = "VALIDATION_FAILED"
	CodeConsistencyError       = "CONSISTENCY_ERROR"
	CodeDeletionBlocked        = "DELETION_BLOCKED"
	CodeSystemError            = "SYSTEM_ERROR"
)

// Error is a coded domain error. Services return it through the normal
// error channel; the HTTP layer maps Code into the response envelope.
type Error struct {
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// NewError builds a coded error with a formatted message.
func NewError(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WrapError attaches a code and message to an underlying cause, preserving
// the original message for the audit trail.
func WrapError(cause error, code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// CodeOf extracts the domain code from err, or SYSTEM_ERROR when err is not
// a coded error.
func CodeOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeSystemError
}

// IsCode reports whether err carries the given domain code.
func IsCode(err error, code string) bool {
	return CodeOf(err) == code
}
