package restaurants

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jomilu93/restaurant-booking-app/internal/platform"
	"github.com/jomilu93/restaurant-booking-app/internal/types"
)

const detailReviewLimit = 20

var _ Service = (*ServiceImpl)(nil)

// Service is the restaurant discovery surface: browse/search with filters,
// detail pages, and live availability lookups.
type Service interface {
	// Search lists restaurants matching the filter. Free-text queries are
	// widened by keyword detection; a date/time/party window narrows the
	// results to restaurants with an open slot.
	Search(ctx context.Context, filter types.RestaurantFilter) ([]types.Restaurant, error)

	// Detail returns the restaurant with its newest reviews. Returns
	// types.ErrNotFound when the id does not resolve.
	Detail(ctx context.Context, id uuid.UUID) (*types.RestaurantWithReviews, error)

	// Availability lists open slots for a restaurant on a date. When the
	// restaurant is on the requested external platform the platform is asked
	// directly; otherwise the restaurant's own slot table answers.
	Availability(ctx context.Context, restaurantID uuid.UUID, date time.Time, partySize int, platformName types.Platform) ([]platform.Availability, error)
}

type ServiceImpl struct {
	logger    *slog.Logger
	repo      Repository
	platforms map[types.Platform]platform.Client
	cache     *cache.Cache
}

func NewService(repo Repository, platforms map[types.Platform]platform.Client, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:    logger,
		repo:      repo,
		platforms: platforms,
		cache:     cache.New(5*time.Minute, 10*time.Minute),
	}
}

func (s *ServiceImpl) Search(ctx context.Context, filter types.RestaurantFilter) ([]types.Restaurant, error) {
	ctx, span := otel.Tracer("RestaurantService").Start(ctx, "Search", trace.WithAttributes(
		attribute.String("filter.cuisine", filter.Cuisine),
		attribute.String("filter.search", filter.Search),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Search"))

	if filter.Search != "" {
		filter.MatchedCuisines, filter.MatchedFeatures = detectKeywords(filter.Search)
		if len(filter.MatchedCuisines) > 0 || len(filter.MatchedFeatures) > 0 {
			l.DebugContext(ctx, "Detected search keywords",
				slog.Any("cuisines", filter.MatchedCuisines),
				slog.Any("features", filter.MatchedFeatures))
		}
	}

	cacheKey := searchCacheKey(filter)
	if cached, found := s.cache.Get(cacheKey); found {
		if results, ok := cached.([]types.Restaurant); ok {
			l.DebugContext(ctx, "Serving restaurant search from cache", slog.String("key", cacheKey))
			span.AddEvent("cache_hit")
			return results, nil
		}
	}

	results, err := s.repo.Search(ctx, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to search restaurants")
		return nil, fmt.Errorf("error searching restaurants: %w", err)
	}

	if filter.Date != nil && filter.Time != "" && filter.PartySize != nil {
		availableIDs, err := s.repo.GetAvailableRestaurantIDs(ctx, *filter.Date, filter.Time, *filter.PartySize)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Failed to resolve availability")
			return nil, fmt.Errorf("error resolving availability: %w", err)
		}
		available := make(map[uuid.UUID]struct{}, len(availableIDs))
		for _, id := range availableIDs {
			available[id] = struct{}{}
		}
		filtered := results[:0]
		for _, restaurant := range results {
			if _, ok := available[restaurant.ID]; ok {
				filtered = append(filtered, restaurant)
			}
		}
		results = filtered
	}

	s.cache.Set(cacheKey, results, cache.DefaultExpiration)
	span.SetStatus(codes.Ok, "Search complete")
	return results, nil
}

func (s *ServiceImpl) Detail(ctx context.Context, id uuid.UUID) (*types.RestaurantWithReviews, error) {
	ctx, span := otel.Tracer("RestaurantService").Start(ctx, "Detail", trace.WithAttributes(
		attribute.String("restaurant.id", id.String()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Detail"), slog.String("restaurantID", id.String()))

	cacheKey := "restaurant_detail_" + id.String()
	if cached, found := s.cache.Get(cacheKey); found {
		if detail, ok := cached.(*types.RestaurantWithReviews); ok {
			l.DebugContext(ctx, "Serving restaurant detail from cache")
			span.AddEvent("cache_hit")
			return detail, nil
		}
	}

	restaurant, err := s.repo.GetByID(ctx, id)
	if err != nil {
		l.ErrorContext(ctx, "Failed to fetch restaurant", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to fetch restaurant")
		return nil, fmt.Errorf("error fetching restaurant: %w", err)
	}
	if restaurant == nil {
		return nil, types.ErrNotFound
	}

	reviews, err := s.repo.GetReviews(ctx, id, detailReviewLimit)
	if err != nil {
		l.ErrorContext(ctx, "Failed to fetch reviews", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to fetch reviews")
		return nil, fmt.Errorf("error fetching reviews: %w", err)
	}

	detail := &types.RestaurantWithReviews{
		Restaurant: *restaurant,
		Reviews:    reviews,
	}
	s.cache.Set(cacheKey, detail, cache.DefaultExpiration)
	return detail, nil
}

func (s *ServiceImpl) Availability(ctx context.Context, restaurantID uuid.UUID, date time.Time, partySize int, platformName types.Platform) ([]platform.Availability, error) {
	ctx, span := otel.Tracer("RestaurantService").Start(ctx, "Availability", trace.WithAttributes(
		attribute.String("restaurant.id", restaurantID.String()),
		attribute.String("platform", string(platformName)),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Availability"), slog.String("restaurantID", restaurantID.String()))

	restaurant, err := s.repo.GetByID(ctx, restaurantID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to fetch restaurant", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to fetch restaurant")
		return nil, fmt.Errorf("error fetching restaurant: %w", err)
	}
	if restaurant == nil {
		return nil, types.ErrNotFound
	}

	if client, ok := s.platforms[platformName]; ok && platformEnabled(restaurant, platformName) {
		slots, err := client.GetAvailability(ctx, restaurantID, date, partySize)
		if err != nil {
			l.ErrorContext(ctx, "Platform availability lookup failed",
				slog.String("platform", client.Name()), slog.Any("error", err))
			span.RecordError(err)
			span.SetStatus(codes.Error, "Platform availability lookup failed")
			return nil, fmt.Errorf("error fetching %s availability: %w", client.Name(), err)
		}
		return slots, nil
	}

	dbSlots, err := s.repo.GetAvailabilitySlots(ctx, restaurantID, date, partySize)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to fetch availability slots")
		return nil, fmt.Errorf("error fetching availability slots: %w", err)
	}

	slots := make([]platform.Availability, 0, len(dbSlots))
	for _, slot := range dbSlots {
		slots = append(slots, platform.Availability{
			Date:      slot.Date,
			Time:      slot.Time,
			PartySize: slot.PartySize,
			Available: slot.Available,
		})
	}
	return slots, nil
}

func platformEnabled(r *types.Restaurant, p types.Platform) bool {
	switch p {
	case types.PlatformResy:
		return r.ResyEnabled
	case types.PlatformOpenTable:
		return r.OpenTableEnabled
	default:
		return false
	}
}

func searchCacheKey(f types.RestaurantFilter) string {
	price := 0
	if f.PriceRange != nil {
		price = *f.PriceRange
	}
	party := 0
	if f.PartySize != nil {
		party = *f.PartySize
	}
	date := ""
	if f.Date != nil {
		date = f.Date.Format("2006-01-02")
	}
	return fmt.Sprintf("restaurants_%s_%d_%s_%s_%s_%s_%d",
		f.Cuisine, price, f.Neighborhood, f.Search, date, f.Time, party)
}
