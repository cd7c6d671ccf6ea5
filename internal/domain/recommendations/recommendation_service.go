package recommendations

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/jomilu93/restaurant-booking-app/internal/types"
)

// Blend weights for the hybrid recommender: collaborative and content scores
// are normalized to [0,1] independently, then merged 40/60.
const (
	collaborativeWeight = 0.4
	contentWeight       = 0.6
)

// Content scoring weights. Applied per candidate restaurant the user has not
// booked; only strictly positive totals are kept.
const (
	cuisinePreferenceWeight    = 3.0
	priceRangePreferenceWeight = 2.0
	neighborhoodWeight         = 1.5
	likedCuisineWeight         = 1.0
	likedPriceWeight           = 0.5
	likedFeatureWeight         = 0.3
	ratingBoostWeight          = 1.0
)

// Similarity scoring weights for the "similar restaurants" lookup.
const (
	similarCuisineWeight       = 5.0
	similarPriceExactWeight    = 3.0
	similarPriceAdjacentWeight = 1.5
	similarNeighborhoodWeight  = 2.0
	similarFeatureWeight       = 0.5
	similarRatingWeight        = 1.0
)

const (
	maxNeighbors   = 10
	trendingWindow = 7 * 24 * time.Hour
)

var _ Service = (*ServiceImpl)(nil)

// Service exposes the recommendation engine entry points. All three return
// plain restaurant records; degenerate inputs (no history, no neighbors,
// unknown ids) resolve to fallbacks, never errors. Only data-access failures
// surface, unchanged.
type Service interface {
	// Recommend blends collaborative and content scores into a ranked list of
	// at most limit restaurants, falling back to Trending when the user has no
	// booking history or nothing scores positively.
	Recommend(ctx context.Context, userID uuid.UUID, limit int) ([]types.Restaurant, error)

	// Trending ranks restaurants by booking volume over the trailing 7 days,
	// falling back to rating order when the window is empty.
	Trending(ctx context.Context, limit int) ([]types.Restaurant, error)

	// SimilarTo ranks all other restaurants by attribute similarity to the
	// target. An unknown id yields an empty list.
	SimilarTo(ctx context.Context, restaurantID uuid.UUID, limit int) ([]types.Restaurant, error)
}

type ServiceImpl struct {
	logger *slog.Logger
	repo   Repository
}

func NewService(repo Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
	}
}

func (s *ServiceImpl) Recommend(ctx context.Context, userID uuid.UUID, limit int) ([]types.Restaurant, error) {
	ctx, span := otel.Tracer("RecommendationService").Start(ctx, "Recommend", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
		attribute.Int("limit", limit),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Recommend"), slog.String("userID", userID.String()))

	prefs, err := s.repo.GetUserPreferences(ctx, userID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to fetch user preferences", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to fetch user preferences")
		return nil, fmt.Errorf("error fetching user preferences: %w", err)
	}

	userBookings, err := s.repo.GetUserBookings(ctx, userID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to fetch user bookings", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to fetch user bookings")
		return nil, fmt.Errorf("error fetching user bookings: %w", err)
	}

	// Cold start: no history means preferences alone carry no signal yet.
	if len(userBookings) == 0 {
		l.DebugContext(ctx, "User has no booking history, serving trending")
		span.AddEvent("cold_start_fallback")
		return s.Trending(ctx, limit)
	}

	// The two scorers are pure functions of the same snapshot; run them
	// concurrently.
	var collaborative, content map[uuid.UUID]float64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		collaborative, err = s.collaborativeScores(gctx, userID, userBookings)
		return err
	})
	g.Go(func() error {
		all, err := s.repo.GetAllRestaurants(gctx, uuid.Nil)
		if err != nil {
			return err
		}
		content = s.contentScores(userBookings, prefs, all)
		return nil
	})
	if err := g.Wait(); err != nil {
		l.ErrorContext(ctx, "Failed to compute recommendation scores", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to compute recommendation scores")
		return nil, fmt.Errorf("error computing recommendation scores: %w", err)
	}

	combined := make(map[uuid.UUID]float64, len(collaborative)+len(content))
	for id, score := range collaborative {
		combined[id] += score * collaborativeWeight
	}
	for id, score := range content {
		combined[id] += score * contentWeight
	}

	ranked := rankByScore(combined)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	if len(ranked) == 0 {
		l.DebugContext(ctx, "No positively scored candidates, serving trending")
		span.AddEvent("empty_candidates_fallback")
		return s.Trending(ctx, limit)
	}

	restaurants, err := s.resolveInOrder(ctx, ranked)
	if err != nil {
		l.ErrorContext(ctx, "Failed to resolve recommended restaurants", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to resolve recommended restaurants")
		return nil, fmt.Errorf("error resolving recommended restaurants: %w", err)
	}

	l.InfoContext(ctx, "Recommendations computed",
		slog.Int("collaborative_candidates", len(collaborative)),
		slog.Int("content_candidates", len(content)),
		slog.Int("count", len(restaurants)))
	span.SetAttributes(attribute.Int("results.count", len(restaurants)))
	span.SetStatus(codes.Ok, "Recommendations computed")
	return restaurants, nil
}

// collaborativeScores finds up to maxNeighbors users with overlapping booking
// history and scores restaurants the target user has not tried by the raw
// tally of neighbor bookings, normalized by the maximum.
func (s *ServiceImpl) collaborativeScores(ctx context.Context, userID uuid.UUID, userBookings []types.BookingWithDetails) (map[uuid.UUID]float64, error) {
	booked := bookedRestaurantIDs(userBookings)

	neighbors, err := s.repo.CountOverlapBookingUsers(ctx, booked, userID, maxNeighbors)
	if err != nil {
		return nil, fmt.Errorf("error finding neighbor users: %w", err)
	}
	if len(neighbors) == 0 {
		return map[uuid.UUID]float64{}, nil
	}

	neighborIDs := make([]uuid.UUID, len(neighbors))
	for i, n := range neighbors {
		neighborIDs[i] = n.UserID
	}

	neighborBookings, err := s.repo.GetBookingsByUsersExcludingRestaurants(ctx, neighborIDs, booked)
	if err != nil {
		return nil, fmt.Errorf("error fetching neighbor bookings: %w", err)
	}

	scores := make(map[uuid.UUID]float64)
	for _, b := range neighborBookings {
		scores[b.RestaurantID]++
	}

	normalizeByMax(scores)
	return scores, nil
}

// contentScores scores every restaurant the user has not booked by attribute
// affinity with their stated preferences and their highly rated past
// bookings. Restaurants already booked are excluded outright; only strictly
// positive totals are kept, then normalized by the maximum.
func (s *ServiceImpl) contentScores(userBookings []types.BookingWithDetails, prefs *types.UserPreferences, all []types.Restaurant) map[uuid.UUID]float64 {
	booked := make(map[uuid.UUID]bool, len(userBookings))
	for _, b := range userBookings {
		booked[b.RestaurantID] = true
	}

	var liked []*types.Restaurant
	for _, b := range userBookings {
		if b.Review != nil && b.Review.Rating >= types.LikedRatingThreshold && b.Restaurant != nil {
			liked = append(liked, b.Restaurant)
		}
	}

	var (
		preferredCuisines      map[string]bool
		preferredNeighborhoods map[string]bool
	)
	if prefs != nil {
		preferredCuisines = stringSet(prefs.CuisinePreferences)
		preferredNeighborhoods = stringSet(prefs.PreferredNeighborhoods)
	}

	scores := make(map[uuid.UUID]float64)
	for i := range all {
		candidate := &all[i]
		if booked[candidate.ID] {
			continue
		}

		var score float64

		if preferredCuisines[candidate.Cuisine] {
			score += cuisinePreferenceWeight
		}
		if prefs != nil && candidate.PriceRange >= prefs.PriceRangeMin && candidate.PriceRange <= prefs.PriceRangeMax {
			score += priceRangePreferenceWeight
		}
		if preferredNeighborhoods[candidate.Neighborhood] {
			score += neighborhoodWeight
		}

		for _, likedRestaurant := range liked {
			if likedRestaurant.Cuisine == candidate.Cuisine {
				score += likedCuisineWeight
			}
			if absInt(likedRestaurant.PriceRange-candidate.PriceRange) <= 1 {
				score += likedPriceWeight
			}
			score += float64(sharedFeatureCount(likedRestaurant.Features, candidate.Features)) * likedFeatureWeight
		}

		score += (candidate.Rating / 5.0) * ratingBoostWeight

		if score > 0 {
			scores[candidate.ID] = score
		}
	}

	normalizeByMax(scores)
	return scores
}

func (s *ServiceImpl) Trending(ctx context.Context, limit int) ([]types.Restaurant, error) {
	ctx, span := otel.Tracer("RecommendationService").Start(ctx, "Trending", trace.WithAttributes(
		attribute.Int("limit", limit),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Trending"))

	since := time.Now().Add(-trendingWindow)
	counts, err := s.repo.CountRecentBookingsByRestaurant(ctx, since, limit)
	if err != nil {
		l.ErrorContext(ctx, "Failed to count recent bookings", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to count recent bookings")
		return nil, fmt.Errorf("error counting recent bookings: %w", err)
	}

	if len(counts) == 0 {
		l.DebugContext(ctx, "No bookings in trending window, serving top rated")
		span.AddEvent("rating_fallback")
		restaurants, err := s.repo.GetTopRatedRestaurants(ctx, limit)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Failed to fetch top rated restaurants")
			return nil, fmt.Errorf("error fetching top rated restaurants: %w", err)
		}
		span.SetStatus(codes.Ok, "Top rated restaurants served")
		return restaurants, nil
	}

	ids := make([]uuid.UUID, len(counts))
	for i, c := range counts {
		ids[i] = c.RestaurantID
	}

	restaurants, err := s.resolveInOrder(ctx, ids)
	if err != nil {
		l.ErrorContext(ctx, "Failed to resolve trending restaurants", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to resolve trending restaurants")
		return nil, fmt.Errorf("error resolving trending restaurants: %w", err)
	}

	l.InfoContext(ctx, "Trending restaurants computed", slog.Int("count", len(restaurants)))
	span.SetAttributes(attribute.Int("results.count", len(restaurants)))
	span.SetStatus(codes.Ok, "Trending restaurants computed")
	return restaurants, nil
}

func (s *ServiceImpl) SimilarTo(ctx context.Context, restaurantID uuid.UUID, limit int) ([]types.Restaurant, error) {
	ctx, span := otel.Tracer("RecommendationService").Start(ctx, "SimilarTo", trace.WithAttributes(
		attribute.String("restaurant.id", restaurantID.String()),
		attribute.Int("limit", limit),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "SimilarTo"), slog.String("restaurantID", restaurantID.String()))

	target, err := s.repo.GetRestaurant(ctx, restaurantID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to fetch target restaurant", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to fetch target restaurant")
		return nil, fmt.Errorf("error fetching restaurant: %w", err)
	}
	if target == nil {
		l.DebugContext(ctx, "Restaurant not found, returning empty result")
		span.SetStatus(codes.Ok, "Unknown restaurant")
		return []types.Restaurant{}, nil
	}

	candidates, err := s.repo.GetAllRestaurants(ctx, target.ID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to fetch candidate restaurants", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to fetch candidate restaurants")
		return nil, fmt.Errorf("error fetching restaurants: %w", err)
	}

	scores := make(map[uuid.UUID]float64, len(candidates))
	byID := make(map[uuid.UUID]types.Restaurant, len(candidates))
	for _, candidate := range candidates {
		scores[candidate.ID] = similarityScore(target, &candidate)
		byID[candidate.ID] = candidate
	}

	ranked := rankByScore(scores)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	result := make([]types.Restaurant, 0, len(ranked))
	for _, id := range ranked {
		result = append(result, byID[id])
	}

	l.InfoContext(ctx, "Similar restaurants computed", slog.Int("count", len(result)))
	span.SetAttributes(attribute.Int("results.count", len(result)))
	span.SetStatus(codes.Ok, "Similar restaurants computed")
	return result, nil
}

// similarityScore weighs shared attributes between a target restaurant and a
// candidate. No normalization: the values are only used for ranking.
func similarityScore(target, candidate *types.Restaurant) float64 {
	var score float64

	if candidate.Cuisine == target.Cuisine {
		score += similarCuisineWeight
	}

	switch absInt(candidate.PriceRange - target.PriceRange) {
	case 0:
		score += similarPriceExactWeight
	case 1:
		score += similarPriceAdjacentWeight
	}

	if candidate.Neighborhood == target.Neighborhood {
		score += similarNeighborhoodWeight
	}

	score += float64(sharedFeatureCount(target.Features, candidate.Features)) * similarFeatureWeight

	if candidate.HasRating() && target.HasRating() {
		ratingDiff := candidate.Rating - target.Rating
		if ratingDiff < 0 {
			ratingDiff = -ratingDiff
		}
		score += (1 - ratingDiff/5) * similarRatingWeight
	}

	return score
}

// resolveInOrder fetches full records for ids and returns them in the given
// order, dropping ids that no longer resolve. The repository does not
// guarantee row order.
func (s *ServiceImpl) resolveInOrder(ctx context.Context, ids []uuid.UUID) ([]types.Restaurant, error) {
	restaurants, err := s.repo.GetRestaurantsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]types.Restaurant, len(restaurants))
	for _, r := range restaurants {
		byID[r.ID] = r
	}

	ordered := make([]types.Restaurant, 0, len(ids))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			ordered = append(ordered, r)
		}
	}
	return ordered, nil
}

// rankByScore orders candidate ids by score descending. Equal scores break
// ties by UUID string ascending so rankings are deterministic.
func rankByScore(scores map[uuid.UUID]float64) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if scores[ids[i]] != scores[ids[j]] {
			return scores[ids[i]] > scores[ids[j]]
		}
		return ids[i].String() < ids[j].String()
	})
	return ids
}

// normalizeByMax rescales scores in place so the maximum becomes exactly 1.0.
// A single outlier compresses everything else.
func normalizeByMax(scores map[uuid.UUID]float64) {
	var maxScore float64
	for _, score := range scores {
		if score > maxScore {
			maxScore = score
		}
	}
	if maxScore <= 0 {
		return
	}
	for id, score := range scores {
		scores[id] = score / maxScore
	}
}

func bookedRestaurantIDs(bookings []types.BookingWithDetails) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(bookings))
	ids := make([]uuid.UUID, 0, len(bookings))
	for _, b := range bookings {
		if !seen[b.RestaurantID] {
			seen[b.RestaurantID] = true
			ids = append(ids, b.RestaurantID)
		}
	}
	return ids
}

func sharedFeatureCount(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := stringSet(a)
	count := 0
	for _, f := range b {
		if set[f] {
			count++
		}
	}
	return count
}

func stringSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
