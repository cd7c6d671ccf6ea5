package profiles

import (
	"log/slog"
	"net/http"

	"github.com/jomilu93/restaurant-booking-app/internal/types"
	"github.com/jomilu93/restaurant-booking-app/pkg/httputil"
	"github.com/jomilu93/restaurant-booking-app/pkg/middleware"
)

// Handler serves the dining preferences endpoints.
type Handler struct {
	svc    Service
	logger *slog.Logger
}

func NewHandler(svc Service, logger *slog.Logger) *Handler {
	return &Handler{
		svc:    svc,
		logger: logger,
	}
}

// Get serves the caller's preferences, defaults included.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		httputil.RespondServiceError(w, types.ErrUnauthenticated)
		return
	}

	prefs, err := h.svc.Get(r.Context(), userID)
	if err != nil {
		httputil.RespondServiceError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, prefs)
}

// Update applies a partial preferences update for the caller.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		httputil.RespondServiceError(w, types.ErrUnauthenticated)
		return
	}

	var params types.UpdatePreferencesParams
	if err := httputil.DecodeJSON(r, &params); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	prefs, err := h.svc.Update(r.Context(), userID, params)
	if err != nil {
		httputil.RespondServiceError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, prefs)
}
