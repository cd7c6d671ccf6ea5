package bookings

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/jomilu93/restaurant-booking-app/internal/types"
	"github.com/jomilu93/restaurant-booking-app/pkg/httputil"
	"github.com/jomilu93/restaurant-booking-app/pkg/middleware"
)

// Handler serves the booking endpoints. All of them require a caller
// identity.
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

// List serves the caller's booking history.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		httputil.RespondServiceError(w, types.ErrUnauthenticated)
		return
	}

	bookings, err := h.svc.ListForUser(r.Context(), userID)
	if err != nil {
		httputil.RespondServiceError(w, err)
		return
	}
	if bookings == nil {
		bookings = []types.BookingWithDetails{}
	}
	httputil.RespondJSON(w, http.StatusOK, bookings)
}

// Create places a reservation for the caller.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		httputil.RespondServiceError(w, types.ErrUnauthenticated)
		return
	}

	var params types.CreateBookingParams
	if err := httputil.DecodeJSON(r, &params); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if params.RestaurantID == uuid.Nil || params.Date.IsZero() || params.Time == "" ||
		params.PartySize <= 0 || params.Platform == "" {
		httputil.RespondError(w, http.StatusBadRequest, "missing required fields")
		return
	}

	booking, err := h.svc.Create(r.Context(), userID, params)
	if err != nil {
		httputil.RespondServiceError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, booking)
}

// Cancel cancels one of the caller's bookings.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		httputil.RespondServiceError(w, types.ErrUnauthenticated)
		return
	}

	bookingID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid booking id")
		return
	}

	if err := h.svc.Cancel(r.Context(), userID, bookingID); err != nil {
		httputil.RespondServiceError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}
