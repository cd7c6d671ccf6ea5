// Package httputil holds the small JSON request/response helpers shared by
// the HTTP handlers.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jomilu93/restaurant-booking-app/internal/types"
)

type errorResponse struct {
	Error string `json:"error"`
}

// RespondJSON writes v as a JSON body with the given status.
func RespondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// RespondError writes a JSON error body with the given status.
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, errorResponse{Error: message})
}

// RespondServiceError maps domain sentinel errors to HTTP statuses; anything
// else becomes a generic 500 so data-access details never leak to clients.
func RespondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, types.ErrNotFound):
		RespondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, types.ErrBadRequest), errors.Is(err, types.ErrSlotUnavailable):
		RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, types.ErrUnauthenticated):
		RespondError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, types.ErrForbidden):
		RespondError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, types.ErrConflict):
		RespondError(w, http.StatusConflict, err.Error())
	default:
		RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// DecodeJSON decodes the request body into v, rejecting unknown fields.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
