package recommendations

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jomilu93/restaurant-booking-app/internal/types"
)

// MockRepository is a mock implementation of Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetUserPreferences(ctx context.Context, userID uuid.UUID) (*types.UserPreferences, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.UserPreferences), args.Error(1)
}

func (m *MockRepository) GetUserBookings(ctx context.Context, userID uuid.UUID) ([]types.BookingWithDetails, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.BookingWithDetails), args.Error(1)
}

func (m *MockRepository) GetRestaurant(ctx context.Context, id uuid.UUID) (*types.Restaurant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Restaurant), args.Error(1)
}

func (m *MockRepository) GetAllRestaurants(ctx context.Context, excludeID uuid.UUID) ([]types.Restaurant, error) {
	args := m.Called(ctx, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Restaurant), args.Error(1)
}

func (m *MockRepository) CountRecentBookingsByRestaurant(ctx context.Context, since time.Time, limit int) ([]types.RestaurantBookingCount, error) {
	args := m.Called(ctx, since, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.RestaurantBookingCount), args.Error(1)
}

func (m *MockRepository) CountOverlapBookingUsers(ctx context.Context, restaurantIDs []uuid.UUID, excludeUserID uuid.UUID, topN int) ([]types.UserOverlap, error) {
	args := m.Called(ctx, restaurantIDs, excludeUserID, topN)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.UserOverlap), args.Error(1)
}

func (m *MockRepository) GetBookingsByUsersExcludingRestaurants(ctx context.Context, userIDs []uuid.UUID, excludedRestaurantIDs []uuid.UUID) ([]types.Booking, error) {
	args := m.Called(ctx, userIDs, excludedRestaurantIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Booking), args.Error(1)
}

func (m *MockRepository) GetRestaurantsByIDs(ctx context.Context, ids []uuid.UUID) ([]types.Restaurant, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Restaurant), args.Error(1)
}

func (m *MockRepository) GetTopRatedRestaurants(ctx context.Context, limit int) ([]types.Restaurant, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Restaurant), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func namedRestaurant(name, cuisine string, priceRange int, neighborhood string, rating float64, features ...string) types.Restaurant {
	return types.Restaurant{
		ID:           uuid.New(),
		Name:         name,
		Cuisine:      cuisine,
		PriceRange:   priceRange,
		Neighborhood: neighborhood,
		Rating:       rating,
		Features:     features,
	}
}

func bookingFor(userID uuid.UUID, r types.Restaurant, reviewRating int) types.BookingWithDetails {
	b := types.BookingWithDetails{
		Booking: types.Booking{
			ID:           uuid.New(),
			UserID:       userID,
			RestaurantID: r.ID,
			Status:       types.BookingStatusConfirmed,
			Platform:     types.PlatformDirect,
		},
		Restaurant: &r,
	}
	if reviewRating > 0 {
		b.Review = &types.Review{
			ID:           uuid.New(),
			UserID:       userID,
			RestaurantID: r.ID,
			BookingID:    &b.ID,
			Rating:       reviewRating,
		}
	}
	return b
}

func TestRecommendColdStartServesTrending(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, testLogger())
	ctx := context.Background()
	userID := uuid.New()

	r1 := namedRestaurant("Busy Place", "Italian", 2, "SoHo", 4.5)
	r2 := namedRestaurant("Second Place", "Thai", 1, "Chelsea", 4.0)

	mockRepo.On("GetUserPreferences", mock.Anything, userID).Return(nil, nil)
	mockRepo.On("GetUserBookings", mock.Anything, userID).Return([]types.BookingWithDetails{}, nil)
	mockRepo.On("CountRecentBookingsByRestaurant", mock.Anything, mock.Anything, 10).
		Return([]types.RestaurantBookingCount{
			{RestaurantID: r1.ID, BookingCount: 5},
			{RestaurantID: r2.ID, BookingCount: 3},
		}, nil)
	// Resolution order is not guaranteed by the repository.
	mockRepo.On("GetRestaurantsByIDs", mock.Anything, []uuid.UUID{r1.ID, r2.ID}).
		Return([]types.Restaurant{r2, r1}, nil)

	recommended, err := service.Recommend(ctx, userID, 10)
	require.NoError(t, err)

	trending, err := service.Trending(ctx, 10)
	require.NoError(t, err)

	assert.Equal(t, trending, recommended)
	assert.Equal(t, []types.Restaurant{r1, r2}, recommended)
	mockRepo.AssertNotCalled(t, "CountOverlapBookingUsers", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRecommendPreferencesWithoutHistoryServesTrending(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, testLogger())
	userID := uuid.New()

	r1 := namedRestaurant("Top Rated", "Japanese", 3, "Midtown", 4.9)

	prefs := &types.UserPreferences{
		UserID:             userID,
		CuisinePreferences: []string{"Italian"},
		PriceRangeMin:      1,
		PriceRangeMax:      2,
	}

	mockRepo.On("GetUserPreferences", mock.Anything, userID).Return(prefs, nil)
	mockRepo.On("GetUserBookings", mock.Anything, userID).Return([]types.BookingWithDetails{}, nil)
	mockRepo.On("CountRecentBookingsByRestaurant", mock.Anything, mock.Anything, 5).
		Return([]types.RestaurantBookingCount{{RestaurantID: r1.ID, BookingCount: 2}}, nil)
	mockRepo.On("GetRestaurantsByIDs", mock.Anything, []uuid.UUID{r1.ID}).
		Return([]types.Restaurant{r1}, nil)

	recommended, err := service.Recommend(context.Background(), userID, 5)
	require.NoError(t, err)
	assert.Equal(t, []types.Restaurant{r1}, recommended)
	mockRepo.AssertNotCalled(t, "GetAllRestaurants", mock.Anything, mock.Anything)
}

func TestRecommendBlendWeights(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, testLogger())
	userID := uuid.New()
	neighborID := uuid.New()

	// The user booked and liked booked: Italian, price 2.
	booked := namedRestaurant("Booked", "Italian", 2, "SoHo", 4.5)

	// Raw content scores: y matches the liked cuisine (+1.0) and adjacent
	// price (+0.5) for 1.5; x matches adjacent price (+0.5) plus a rating
	// boost of 1.25/5 (+0.25) for 0.75. Normalized: x 0.5, y 1.0.
	x := namedRestaurant("X", "French", 3, "Chelsea", 1.25)
	y := namedRestaurant("Y", "Italian", 1, "Harlem", 0)

	// Collaborative: every neighbor booking is at x, so x normalizes to 1.0.
	// Combined: x = 0.4*1.0 + 0.6*0.5 = 0.7, y = 0.6*1.0 = 0.6.
	userBookings := []types.BookingWithDetails{bookingFor(userID, booked, 5)}

	mockRepo.On("GetUserPreferences", mock.Anything, userID).Return(nil, nil)
	mockRepo.On("GetUserBookings", mock.Anything, userID).Return(userBookings, nil)
	mockRepo.On("CountOverlapBookingUsers", mock.Anything, []uuid.UUID{booked.ID}, userID, maxNeighbors).
		Return([]types.UserOverlap{{UserID: neighborID, OverlapCount: 1}}, nil)
	mockRepo.On("GetBookingsByUsersExcludingRestaurants", mock.Anything, []uuid.UUID{neighborID}, []uuid.UUID{booked.ID}).
		Return([]types.Booking{
			{ID: uuid.New(), UserID: neighborID, RestaurantID: x.ID},
			{ID: uuid.New(), UserID: neighborID, RestaurantID: x.ID},
		}, nil)
	mockRepo.On("GetAllRestaurants", mock.Anything, uuid.Nil).
		Return([]types.Restaurant{booked, x, y}, nil)
	mockRepo.On("GetRestaurantsByIDs", mock.Anything, []uuid.UUID{x.ID, y.ID}).
		Return([]types.Restaurant{y, x}, nil)

	recommended, err := service.Recommend(context.Background(), userID, 10)
	require.NoError(t, err)
	require.Len(t, recommended, 2)
	assert.Equal(t, x.ID, recommended[0].ID)
	assert.Equal(t, y.ID, recommended[1].ID)
}

func TestRecommendHonorsLimitWithoutDuplicates(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, testLogger())
	userID := uuid.New()
	neighborID := uuid.New()

	booked := namedRestaurant("Booked", "Thai", 2, "SoHo", 4.0)
	candidates := []types.Restaurant{
		namedRestaurant("A", "Thai", 2, "SoHo", 4.1),
		namedRestaurant("B", "Thai", 2, "NoHo", 4.2),
		namedRestaurant("C", "Thai", 3, "SoHo", 4.3),
		namedRestaurant("D", "Italian", 2, "SoHo", 4.4),
	}

	var neighborBookings []types.Booking
	for _, c := range candidates {
		neighborBookings = append(neighborBookings, types.Booking{
			ID: uuid.New(), UserID: neighborID, RestaurantID: c.ID,
		})
	}

	mockRepo.On("GetUserPreferences", mock.Anything, userID).Return(nil, nil)
	mockRepo.On("GetUserBookings", mock.Anything, userID).
		Return([]types.BookingWithDetails{bookingFor(userID, booked, 5)}, nil)
	mockRepo.On("CountOverlapBookingUsers", mock.Anything, []uuid.UUID{booked.ID}, userID, maxNeighbors).
		Return([]types.UserOverlap{{UserID: neighborID, OverlapCount: 1}}, nil)
	mockRepo.On("GetBookingsByUsersExcludingRestaurants", mock.Anything, []uuid.UUID{neighborID}, []uuid.UUID{booked.ID}).
		Return(neighborBookings, nil)
	mockRepo.On("GetAllRestaurants", mock.Anything, uuid.Nil).
		Return(append([]types.Restaurant{booked}, candidates...), nil)
	mockRepo.On("GetRestaurantsByIDs", mock.Anything, mock.Anything).
		Return(candidates, nil)

	recommended, err := service.Recommend(context.Background(), userID, 2)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(recommended), 2)

	seen := make(map[uuid.UUID]bool)
	for _, r := range recommended {
		assert.False(t, seen[r.ID], "duplicate restaurant %s", r.Name)
		seen[r.ID] = true
		assert.NotEqual(t, booked.ID, r.ID, "already booked restaurant recommended")
	}
}

func TestRecommendPropagatesRepositoryError(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, testLogger())
	userID := uuid.New()

	booked := namedRestaurant("Booked", "Thai", 2, "SoHo", 4.0)

	mockRepo.On("GetUserPreferences", mock.Anything, userID).Return(nil, nil)
	mockRepo.On("GetUserBookings", mock.Anything, userID).
		Return([]types.BookingWithDetails{bookingFor(userID, booked, 0)}, nil)
	mockRepo.On("CountOverlapBookingUsers", mock.Anything, mock.Anything, userID, maxNeighbors).
		Return(nil, errors.New("connection refused"))
	mockRepo.On("GetAllRestaurants", mock.Anything, uuid.Nil).
		Return([]types.Restaurant{booked}, nil).Maybe()

	_, err := service.Recommend(context.Background(), userID, 10)
	assert.Error(t, err)
}

func TestTrendingRatingFallback(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, testLogger())

	topRated := []types.Restaurant{
		namedRestaurant("Best", "French", 4, "Tribeca", 4.9),
		namedRestaurant("Runner Up", "Italian", 3, "SoHo", 4.7),
	}

	mockRepo.On("CountRecentBookingsByRestaurant", mock.Anything, mock.Anything, 10).
		Return([]types.RestaurantBookingCount{}, nil)
	mockRepo.On("GetTopRatedRestaurants", mock.Anything, 10).Return(topRated, nil)

	trending, err := service.Trending(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, topRated, trending)
}

func TestTrendingOrdersByBookingCount(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, testLogger())

	r1 := namedRestaurant("Most Booked", "Korean", 2, "K-Town", 4.2)
	r2 := namedRestaurant("Less Booked", "French", 4, "Tribeca", 4.9)

	mockRepo.On("CountRecentBookingsByRestaurant", mock.Anything, mock.Anything, 10).
		Return([]types.RestaurantBookingCount{
			{RestaurantID: r1.ID, BookingCount: 9},
			{RestaurantID: r2.ID, BookingCount: 4},
		}, nil)
	// Higher rated r2 comes back first; booking volume must still win.
	mockRepo.On("GetRestaurantsByIDs", mock.Anything, []uuid.UUID{r1.ID, r2.ID}).
		Return([]types.Restaurant{r2, r1}, nil)

	trending, err := service.Trending(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, []types.Restaurant{r1, r2}, trending)
}

func TestSimilarToUnknownRestaurant(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, testLogger())
	unknownID := uuid.New()

	mockRepo.On("GetRestaurant", mock.Anything, unknownID).Return(nil, nil)

	similar, err := service.SimilarTo(context.Background(), unknownID, 5)
	require.NoError(t, err)
	assert.Empty(t, similar)
	mockRepo.AssertNotCalled(t, "GetAllRestaurants", mock.Anything, mock.Anything)
}

func TestSimilarToRanking(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, testLogger())

	a := namedRestaurant("A", "Italian", 2, "SoHo", 4.5, "outdoor", "bar")
	b := namedRestaurant("B", "Italian", 2, "SoHo", 4.0, "outdoor")
	c := namedRestaurant("C", "Mexican", 4, "Harlem", 4.8)

	mockRepo.On("GetRestaurant", mock.Anything, a.ID).Return(&a, nil)
	mockRepo.On("GetAllRestaurants", mock.Anything, a.ID).Return([]types.Restaurant{c, b}, nil)

	similar, err := service.SimilarTo(context.Background(), a.ID, 2)
	require.NoError(t, err)
	require.Len(t, similar, 2)
	assert.Equal(t, b.ID, similar[0].ID)
	assert.Equal(t, c.ID, similar[1].ID)

	// B: cuisine 5 + exact price 3 + neighborhood 2 + one shared feature 0.5
	// + rating (1 - 0.5/5) = 11.4. C only gets the rating term.
	assert.InDelta(t, 11.4, similarityScore(&a, &b), 1e-9)
	assert.InDelta(t, 0.94, similarityScore(&a, &c), 1e-9)
}

func TestSimilarityScoreSkipsRatingTermWhenUnrated(t *testing.T) {
	target := namedRestaurant("Target", "Italian", 2, "SoHo", 4.5)
	unrated := namedRestaurant("Unrated", "Italian", 2, "SoHo", 0)

	// cuisine 5 + exact price 3 + neighborhood 2, no rating term.
	assert.InDelta(t, 10.0, similarityScore(&target, &unrated), 1e-9)
}

func TestContentScoresExcludeBookedRestaurants(t *testing.T) {
	service := NewService(new(MockRepository), testLogger())
	userID := uuid.New()

	booked := namedRestaurant("Booked", "Italian", 2, "SoHo", 4.5)
	other := namedRestaurant("Other", "Italian", 2, "SoHo", 4.0)

	scores := service.contentScores(
		[]types.BookingWithDetails{bookingFor(userID, booked, 5)},
		nil,
		[]types.Restaurant{booked, other},
	)

	assert.NotContains(t, scores, booked.ID)
	assert.Contains(t, scores, other.ID)
}

func TestContentScoresApplyPreferenceWeights(t *testing.T) {
	service := NewService(new(MockRepository), testLogger())
	userID := uuid.New()

	booked := namedRestaurant("Booked", "Thai", 3, "Chelsea", 4.0)
	match := namedRestaurant("Match", "Italian", 2, "SoHo", 0)
	miss := namedRestaurant("Miss", "Korean", 4, "Harlem", 0)

	prefs := &types.UserPreferences{
		UserID:                 userID,
		CuisinePreferences:     []string{"Italian"},
		PriceRangeMin:          1,
		PriceRangeMax:          2,
		PreferredNeighborhoods: []string{"SoHo"},
	}

	// No review, so no liked-restaurant affinity terms apply.
	scores := service.contentScores(
		[]types.BookingWithDetails{bookingFor(userID, booked, 0)},
		prefs,
		[]types.Restaurant{booked, match, miss},
	)

	// match: cuisine 3 + price 2 + neighborhood 1.5 = 6.5; miss scores zero
	// and is dropped. Normalization leaves the sole survivor at 1.0.
	require.Contains(t, scores, match.ID)
	assert.NotContains(t, scores, miss.ID)
	assert.InDelta(t, 1.0, scores[match.ID], 1e-9)
}

func TestNormalizeByMax(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	scores := map[uuid.UUID]float64{a: 2.0, b: 5.0, c: 0.5}

	normalizeByMax(scores)

	var maxScore float64
	for _, s := range scores {
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
		if s > maxScore {
			maxScore = s
		}
	}
	assert.Equal(t, 1.0, maxScore)
	assert.InDelta(t, 0.4, scores[a], 1e-9)
	assert.InDelta(t, 0.1, scores[c], 1e-9)
}

func TestNormalizeByMaxEmptyAndZero(t *testing.T) {
	empty := map[uuid.UUID]float64{}
	normalizeByMax(empty)
	assert.Empty(t, empty)

	id := uuid.New()
	zeros := map[uuid.UUID]float64{id: 0}
	normalizeByMax(zeros)
	assert.Equal(t, 0.0, zeros[id])
}

func TestRankByScoreDeterministicTieBreak(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	b := uuid.MustParse("00000000-0000-0000-0000-00000000000b")
	scores := map[uuid.UUID]float64{b: 1.0, a: 1.0}

	for i := 0; i < 20; i++ {
		ranked := rankByScore(scores)
		require.Equal(t, []uuid.UUID{a, b}, ranked)
	}
}
