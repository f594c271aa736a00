package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/profitability/internal/domain/access"
	"github.com/rpggio/profitability/internal/domain/ledger"
	"github.com/rpggio/profitability/internal/domain/profitability"
	"github.com/rpggio/profitability/internal/domain/valuation"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes. Unknown errors become
// INTERNAL with the original message.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	switch {
	case errors.Is(err, access.ErrNotVisible):
		return &APIError{Code: "NOT_VISIBLE", Message: "person not visible to you", RecoveryHint: "Ask about yourself or your direct reports"}
	case errors.Is(err, access.ErrRestricted):
		return &APIError{Code: "RESTRICTED", Message: "restricted to administrators", RecoveryHint: "Ask an administrator"}
	case errors.Is(err, profitability.ErrUnknownReport):
		return &APIError{Code: "UNKNOWN_REPORT", Message: err.Error(), RecoveryHint: "Call list_reports"}
	case errors.Is(err, ledger.ErrInvalidInput), errors.Is(err, valuation.ErrInvalidQuote):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error(), RecoveryHint: "Fix the arguments and retry"}
	case errors.Is(err, ledger.ErrPersonNotFound):
		return &APIError{Code: "PERSON_NOT_FOUND", Message: "person not found", RecoveryHint: "Check the person id"}
	case errors.Is(err, ledger.ErrPersonInactive):
		return &APIError{Code: "PERSON_INACTIVE", Message: "person is inactive"}
	case errors.Is(err, ledger.ErrClientNotFound):
		return &APIError{Code: "CLIENT_NOT_FOUND", Message: "client not found", RecoveryHint: "Check the client id"}
	case errors.Is(err, ledger.ErrServiceNotFound):
		return &APIError{Code: "SERVICE_NOT_FOUND", Message: "service not found", RecoveryHint: "Check the service id"}
	case errors.Is(err, ledger.ErrEntryNotFound):
		return &APIError{Code: "ENTRY_NOT_FOUND", Message: "time entry not found"}
	case errors.Is(err, ledger.ErrNotOwner):
		return &APIError{Code: "NOT_OWNER", Message: "time entry belongs to another person"}
	case errors.Is(err, ledger.ErrFutureDate):
		return &APIError{Code: "FUTURE_DATE", Message: "cannot book hours in the future"}
	case errors.Is(err, ledger.ErrEditWindowClosed):
		return &APIError{Code: "EDIT_WINDOW_CLOSED", Message: "entry is outside the edit window", RecoveryHint: "Ask an administrator to correct older entries"}
	case errors.Is(err, ledger.ErrValueUnchanged):
		return &APIError{Code: "VALUE_UNCHANGED", Message: "service already has that value"}
	case errors.Is(err, ledger.ErrDuplicateExpense):
		return &APIError{Code: "DUPLICATE_EXPENSE", Message: "expense already recorded for that month and concept"}
	case errors.Is(err, valuation.ErrQuoteNotFound):
		return &APIError{Code: "QUOTE_NOT_FOUND", Message: "quote not found", RecoveryHint: "Call list_quotes"}
	default:
		return &APIError{Code: "INTERNAL", Message: err.Error()}
	}
}
