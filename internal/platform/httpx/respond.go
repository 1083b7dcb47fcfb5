// Package httpx shapes every API response into the envelope the UI layer
// consumes: {success, data, error{code, message, timestamp}}.
package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/koperasi-digital/koperasi-core/internal/shared"
)

// ErrorBody carries the structured error inside the envelope.
type ErrorBody struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Envelope is the uniform response shape.
type Envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// JSON writes a raw JSON response.
func JSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// OK wraps data in a success envelope.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

// Fail writes a failure envelope with the given code and message.
func Fail(w http.ResponseWriter, status int, code, message string) {
	JSON(w, status, Envelope{Success: false, Error: &ErrorBody{
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}})
}

// Error maps a domain error to an HTTP status and failure envelope.
func Error(w http.ResponseWriter, err error) {
	code := shared.CodeOf(err)
	message := err.Error()
	var de *shared.Error
	if errors.As(err, &de) {
		message = de.Message
	}
	Fail(w, statusFor(code), code, message)
}

func statusFor(code string) int {
	switch code {
	case shared.CodeMemberNotFound, shared.CodeTransactionNotFound, shared.CodeBatchNotFound:
		return http.StatusNotFound
	case shared.CodeAlreadyExited, shared.CodeRefundAlreadyProcessed:
		return http.StatusConflict
	case shared.CodeInvalidParameter, shared.CodeInvalidDateFormat, shared.CodeFutureDate:
		return http.StatusBadRequest
	case shared.CodeValidationFailed, shared.CodeActiveLoanExists, shared.CodeDeletionBlocked:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// DecodeJSON decodes the request body into target.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
