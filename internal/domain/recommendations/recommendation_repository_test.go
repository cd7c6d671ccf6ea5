package recommendations

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*RepositoryImpl, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)

	repo := &RepositoryImpl{
		logger: testLogger(),
		pgpool: mockPool,
	}
	return repo, mockPool
}

func TestCountOverlapBookingUsersQuery(t *testing.T) {
	repo, mockPool := newMockRepo(t)

	userID := uuid.New()
	restaurantIDs := []uuid.UUID{uuid.New(), uuid.New()}
	neighborA, neighborB := uuid.New(), uuid.New()

	mockPool.ExpectQuery(`SELECT user_id, COUNT\(\*\) AS overlap_count`).
		WithArgs(restaurantIDs, userID, 10).
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "overlap_count"}).
			AddRow(neighborA, 3).
			AddRow(neighborB, 1))

	overlaps, err := repo.CountOverlapBookingUsers(context.Background(), restaurantIDs, userID, 10)
	require.NoError(t, err)
	require.Len(t, overlaps, 2)
	assert.Equal(t, neighborA, overlaps[0].UserID)
	assert.Equal(t, 3, overlaps[0].OverlapCount)
	assert.Equal(t, neighborB, overlaps[1].UserID)

	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestCountRecentBookingsByRestaurantQuery(t *testing.T) {
	repo, mockPool := newMockRepo(t)

	since := time.Now().Add(-7 * 24 * time.Hour)
	busy, quiet := uuid.New(), uuid.New()

	mockPool.ExpectQuery(`SELECT restaurant_id, COUNT\(\*\) AS booking_count`).
		WithArgs(since, 5).
		WillReturnRows(pgxmock.NewRows([]string{"restaurant_id", "booking_count"}).
			AddRow(busy, 8).
			AddRow(quiet, 2))

	counts, err := repo.CountRecentBookingsByRestaurant(context.Background(), since, 5)
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, busy, counts[0].RestaurantID)
	assert.Equal(t, 8, counts[0].BookingCount)

	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestGetUserPreferencesNoRows(t *testing.T) {
	repo, mockPool := newMockRepo(t)

	userID := uuid.New()
	mockPool.ExpectQuery(`SELECT id, user_id, cuisine_preferences`).
		WithArgs(userID).
		WillReturnError(pgx.ErrNoRows)

	prefs, err := repo.GetUserPreferences(context.Background(), userID)
	require.NoError(t, err)
	assert.Nil(t, prefs)

	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestGetRestaurantsByIDsEmptyInput(t *testing.T) {
	repo, _ := newMockRepo(t)

	restaurants, err := repo.GetRestaurantsByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, restaurants)
}

func TestGetTopRatedRestaurantsQuery(t *testing.T) {
	repo, mockPool := newMockRepo(t)

	id := uuid.New()
	now := time.Now()
	mockPool.ExpectQuery(`ORDER BY rating DESC, review_count DESC`).
		WithArgs(3).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "name", "description", "cuisine", "price_range", "neighborhood",
			"address", "phone", "website", "image_url", "rating", "review_count",
			"features", "resy_enabled", "opentable_enabled", "created_at", "updated_at",
		}).AddRow(
			id, "Best Place", nil, "Italian", 2, "SoHo",
			"1 Main St", nil, nil, nil, 4.9, 120,
			[]string{"outdoor"}, true, false, now, now,
		))

	restaurants, err := repo.GetTopRatedRestaurants(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, restaurants, 1)
	assert.Equal(t, id, restaurants[0].ID)
	assert.Equal(t, "Best Place", restaurants[0].Name)
	assert.Nil(t, restaurants[0].Description)
	assert.Equal(t, []string{"outdoor"}, restaurants[0].Features)
	assert.Equal(t, 4.9, restaurants[0].Rating)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}
