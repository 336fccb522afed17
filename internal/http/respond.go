package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"kassza/internal/core"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, errorStatus(err), errorResponse{Error: err.Error()})
}

// errorStatus maps domain errors onto HTTP status codes. Unrecognized
// errors are treated as internal faults.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrDuplicateCategory),
		errors.Is(err, core.ErrCategoryInUse):
		return http.StatusConflict
	case errors.Is(err, core.ErrEmptyDescription),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidMonth),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrInvalidCurrency),
		errors.Is(err, core.ErrUnknownCategory):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
