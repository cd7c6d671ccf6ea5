package restaurants

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/jomilu93/restaurant-booking-app/internal/types"
	"github.com/jomilu93/restaurant-booking-app/pkg/httputil"
)

// Handler serves the restaurant discovery endpoints.
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

// List serves the browse/search endpoint. All query parameters are optional;
// date, time and partySize only narrow results when all three are present.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	results, err := h.svc.Search(r.Context(), filter)
	if err != nil {
		httputil.RespondServiceError(w, err)
		return
	}
	if results == nil {
		results = []types.Restaurant{}
	}
	httputil.RespondJSON(w, http.StatusOK, results)
}

// Detail serves a restaurant with its latest reviews.
func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid restaurant id")
		return
	}

	detail, err := h.svc.Detail(r.Context(), id)
	if err != nil {
		httputil.RespondServiceError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, detail)
}

// Availability serves open slots for a restaurant on a given date.
func (h *Handler) Availability(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid restaurant id")
		return
	}

	q := r.URL.Query()
	date, err := time.Parse("2006-01-02", q.Get("date"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	partySize, err := strconv.Atoi(q.Get("partySize"))
	if err != nil || partySize <= 0 {
		httputil.RespondError(w, http.StatusBadRequest, "partySize must be a positive integer")
		return
	}
	platformName := types.Platform(q.Get("platform"))
	if platformName == "" {
		platformName = types.PlatformDirect
	}

	slots, err := h.svc.Availability(r.Context(), id, date, partySize, platformName)
	if err != nil {
		httputil.RespondServiceError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, slots)
}

func filterFromQuery(r *http.Request) (types.RestaurantFilter, error) {
	q := r.URL.Query()
	filter := types.RestaurantFilter{
		Cuisine:      q.Get("cuisine"),
		Neighborhood: q.Get("neighborhood"),
		Search:       q.Get("search"),
		Time:         q.Get("time"),
	}

	if raw := q.Get("priceRange"); raw != "" {
		price, err := strconv.Atoi(raw)
		if err != nil || price < 1 || price > 4 {
			return filter, types.ErrBadRequest
		}
		filter.PriceRange = &price
	}
	if raw := q.Get("date"); raw != "" {
		date, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, types.ErrBadRequest
		}
		filter.Date = &date
	}
	if raw := q.Get("partySize"); raw != "" {
		party, err := strconv.Atoi(raw)
		if err != nil || party <= 0 {
			return filter, types.ErrBadRequest
		}
		filter.PartySize = &party
	}

	return filter, nil
}
