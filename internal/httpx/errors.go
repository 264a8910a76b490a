package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/tiendaonline/backend/internal/auth"
	"github.com/tiendaonline/backend/internal/catalog"
	"github.com/tiendaonline/backend/internal/orders"
	"github.com/tiendaonline/backend/internal/users"
)

// ErrorBody is the envelope every business error is translated into.
type ErrorBody struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorBody{
		Timestamp: time.Now().UTC(),
		Status:    status,
		Error:     code,
		Message:   msg,
	})
}

// writeServiceError maps typed business errors onto HTTP responses. Anything
// unrecognized is a store or infrastructure failure and surfaces as a generic
// 500 without leaking internals.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, &orders.InsufficientStockError{}):
		writeError(w, http.StatusBadRequest, "INSUFFICIENT_STOCK", err.Error())
	case errors.Is(err, &orders.InvalidTransitionError{}):
		writeError(w, http.StatusBadRequest, "INVALID_TRANSITION", err.Error())
	case errors.Is(err, &orders.NotCancellableError{}):
		writeError(w, http.StatusBadRequest, "NOT_CANCELLABLE", err.Error())
	case errors.Is(err, &orders.ValidationError{}),
		errors.Is(err, &auth.ValidationError{}),
		errors.Is(err, &catalog.ValidationError{}),
		errors.Is(err, &catalog.DuplicateNameError{}),
		errors.Is(err, &catalog.IncompleteRecordError{}):
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, &orders.NotFoundError{}),
		errors.Is(err, &catalog.NotFoundError{}),
		errors.Is(err, &users.NotFoundError{}):
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, &orders.ForbiddenError{}):
		writeError(w, http.StatusForbidden, "ACCESS_DENIED", err.Error())
	case errors.Is(err, &auth.BadCredentialsError{}):
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", err.Error())
	default:
		slog.ErrorContext(r.Context(), "error interno", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "error interno del servidor")
	}
}
