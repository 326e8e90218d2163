package errors

import (
	"fmt"
	"net/http"
)

// APIError represents a custom error type for API responses
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Details string `json:"details,omitempty"`
}

// Error returns the error message
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAPIError(code, message string, status int, details ...string) *APIError {
	err := &APIError{
		Code:    code,
		Message: message,
		Status:  status,
	}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}

var (
	ErrInvalidInput = NewAPIError("INVALID_INPUT", "Invalid request data", http.StatusBadRequest)
	ErrUnauthorized = NewAPIError("UNAUTHORIZED", "Authentication required", http.StatusUnauthorized)
	ErrNotFound     = NewAPIError("NOT_FOUND", "Resource not found", http.StatusNotFound)
	ErrInternal     = NewAPIError("INTERNAL_SERVER_ERROR", "Internal server error", http.StatusInternalServerError)
	ErrConflict     = NewAPIError("CONFLICT", "Resource conflict", http.StatusConflict)

	// Social-action failures. All of these are expected, client-caused
	// errors: stable messages, no retries.
	ErrSelfAction         = NewAPIError("SELF_ACTION", "You cannot perform this action on yourself", http.StatusBadRequest)
	ErrDuplicateAction    = NewAPIError("DUPLICATE_ACTION", "Action already recorded for this user", http.StatusBadRequest)
	ErrCooldownActive     = NewAPIError("COOLDOWN_ACTIVE", "This action can only be reversed after 24 hours", http.StatusForbidden)
	ErrForbidden          = NewAPIError("FORBIDDEN", "You do not have permission to perform this action", http.StatusForbidden)
	ErrImmutableState     = NewAPIError("IMMUTABLE_STATE", "You cannot cancel a match", http.StatusForbidden)
	ErrPermanentlyBlocked = NewAPIError("PERMANENTLY_BLOCKED", "Proposals between you and this user are permanently blocked", http.StatusForbidden)
	ErrInvalidAction      = NewAPIError("INVALID_ACTION", "Invalid action. Use 'accept' or 'deny'", http.StatusBadRequest)
	ErrBothMustApprove    = NewAPIError("BOTH_MUST_BE_APPROVED", "Both users must be approved", http.StatusBadRequest)
	ErrAlreadyResponded   = NewAPIError("ALREADY_RESPONDED", "This proposal has already been responded to", http.StatusBadRequest)
)

// QuotaExceeded builds the daily-limit error for a given action. The limit
// is part of the message so clients can display it without extra lookups.
func QuotaExceeded(action string, limit int) *APIError {
	return NewAPIError(
		"QUOTA_EXCEEDED",
		fmt.Sprintf("Daily %s limit reached (%d per day)", action, limit),
		http.StatusForbidden,
	)
}

func Wrap(err error, code, message string, status int) *APIError {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr
	}
	return NewAPIError(code, message, status, err.Error())
}
