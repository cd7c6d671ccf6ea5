package recommendations

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/jomilu93/restaurant-booking-app/pkg/httputil"
	"github.com/jomilu93/restaurant-booking-app/pkg/middleware"
)

const defaultLimit = 10

// Handler serves the recommendation endpoints.
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

// Recommendations serves personalized recommendations for authenticated
// callers and trending restaurants for anonymous ones.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	limit := limitParam(r, defaultLimit)

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok || userID == uuid.Nil {
		trending, err := h.svc.Trending(r.Context(), limit)
		if err != nil {
			httputil.RespondServiceError(w, err)
			return
		}
		httputil.RespondJSON(w, http.StatusOK, trending)
		return
	}

	recommendations, err := h.svc.Recommend(r.Context(), userID, limit)
	if err != nil {
		httputil.RespondServiceError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, recommendations)
}

// Trending serves the 7-day booking-volume ranking.
func (h *Handler) Trending(w http.ResponseWriter, r *http.Request) {
	trending, err := h.svc.Trending(r.Context(), limitParam(r, defaultLimit))
	if err != nil {
		httputil.RespondServiceError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, trending)
}

// Similar serves restaurants similar to the one in the path. An unknown id
// yields an empty list, not an error.
func (h *Handler) Similar(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid restaurant id")
		return
	}

	similar, err := h.svc.SimilarTo(r.Context(), restaurantID, limitParam(r, 5))
	if err != nil {
		httputil.RespondServiceError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, similar)
}

func limitParam(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return fallback
	}
	return limit
}
