package transport

import (
	"encoding/json"
	"net/http"

	"github.com/rpggio/profitability/internal/mcp"
)

// statusFor maps an APIError code to an HTTP status.
func statusFor(code string) int {
	switch code {
	case "INVALID_INPUT":
		return http.StatusBadRequest
	case "NOT_VISIBLE", "RESTRICTED":
		return http.StatusForbidden
	case "UNKNOWN_REPORT", "PERSON_NOT_FOUND", "SERVICE_NOT_FOUND", "CLIENT_NOT_FOUND", "QUOTE_NOT_FOUND":
		return http.StatusNotFound
	case "INTERNAL":
		return http.StatusInternalServerError
	default:
		return http.StatusUnprocessableEntity
	}
}

// WriteJSON writes payload with the given status.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteError writes err as an APIError body.
func WriteError(w http.ResponseWriter, err error) {
	apiErr := mcp.MapError(err)
	WriteJSON(w, statusFor(apiErr.Code), apiErr)
}
