package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"expensed/internal/core"
	applog "expensed/internal/log"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError maps a domain error onto the wire taxonomy. Anything
// unrecognized is logged with its cause and reduced to an opaque internal
// failure so storage details never leak to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message := classifyError(err)

	if status == http.StatusInternalServerError {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Unhandled error",
			applog.FieldError, err,
			applog.FieldPath, r.URL.Path)
	}

	writeJSON(w, status, errorResponse{Error: errorBody{Code: code, Message: message}})
}

func classifyError(err error) (status int, code, message string) {
	var mf *core.MissingFieldsError
	switch {
	case errors.As(err, &mf):
		return http.StatusBadRequest, "missing_fields", mf.Error()
	case errors.Is(err, core.ErrEmptyUsername):
		return http.StatusBadRequest, "missing_fields", "missing fields: username"
	case errors.Is(err, core.ErrEmptyPassword):
		return http.StatusBadRequest, "missing_fields", "missing fields: password"
	case errors.Is(err, core.ErrEmptyDescription):
		return http.StatusBadRequest, "missing_fields", "missing fields: description"
	case errors.Is(err, core.ErrInvalidDate):
		return http.StatusBadRequest, "invalid_date", core.ErrInvalidDate.Error()
	case errors.Is(err, core.ErrInvalidAmount):
		return http.StatusBadRequest, "invalid_amount", core.ErrInvalidAmount.Error()
	case errors.Is(err, errBadBody), errors.Is(err, errBadPath):
		return http.StatusBadRequest, "bad_request", err.Error()
	case errors.Is(err, core.ErrDuplicateUsername):
		return http.StatusConflict, "duplicate_username", "Username already exists."
	case errors.Is(err, core.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials", "Invalid credentials."
	case errors.Is(err, core.ErrOwnerNotFound):
		return http.StatusNotFound, "owner_not_found", core.ErrOwnerNotFound.Error()
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound, "not_found", "Expense not found."
	case errors.Is(err, core.ErrUnavailable):
		return http.StatusServiceUnavailable, "unavailable", "Service temporarily unavailable."
	default:
		return http.StatusInternalServerError, "internal", "Internal server error."
	}
}
