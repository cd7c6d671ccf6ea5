package reviews

import (
	"log/slog"
	"net/http"

	"github.com/jomilu93/restaurant-booking-app/internal/types"
	"github.com/jomilu93/restaurant-booking-app/pkg/httputil"
	"github.com/jomilu93/restaurant-booking-app/pkg/middleware"
)

// Handler serves the review submission endpoint.
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

// Submit records a review for the caller.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		httputil.RespondServiceError(w, types.ErrUnauthenticated)
		return
	}

	var params types.CreateReviewParams
	if err := httputil.DecodeJSON(r, &params); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	review, err := h.svc.Submit(r.Context(), userID, params)
	if err != nil {
		httputil.RespondServiceError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, review)
}
