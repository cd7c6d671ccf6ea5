package profiles

import (
	"context"
	"io"
	"log/slog"
	"testing"

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

func (m *MockRepository) Get(ctx context.Context, userID uuid.UUID) (*types.UserPreferences, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.UserPreferences), args.Error(1)
}

func (m *MockRepository) Upsert(ctx context.Context, prefs types.UserPreferences) (*types.UserPreferences, error) {
	args := m.Called(ctx, prefs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.UserPreferences), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGetReturnsDefaultsForNewUser(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, testLogger())

	userID := uuid.New()
	mockRepo.On("Get", mock.Anything, userID).Return(nil, nil)

	prefs, err := service.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, userID, prefs.UserID)
	assert.Empty(t, prefs.CuisinePreferences)
	assert.Equal(t, 1, prefs.PriceRangeMin)
	assert.Equal(t, 4, prefs.PriceRangeMax)
}

func TestUpdateMergesPartialFields(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, testLogger())

	userID := uuid.New()
	current := &types.UserPreferences{
		UserID:                 userID,
		CuisinePreferences:     []string{"Italian"},
		PriceRangeMin:          2,
		PriceRangeMax:          3,
		DietaryRestrictions:    []string{},
		PreferredNeighborhoods: []string{"Mission"},
	}
	mockRepo.On("Get", mock.Anything, userID).Return(current, nil)

	cuisines := []string{"Japanese", "Thai"}
	mockRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(p types.UserPreferences) bool {
		// Only CuisinePreferences was sent; the rest keeps its stored value.
		return assert.ObjectsAreEqual(cuisines, p.CuisinePreferences) &&
			p.PriceRangeMin == 2 && p.PriceRangeMax == 3 &&
			assert.ObjectsAreEqual([]string{"Mission"}, p.PreferredNeighborhoods)
	})).Return(current, nil)

	_, err := service.Update(context.Background(), userID, types.UpdatePreferencesParams{
		CuisinePreferences: &cuisines,
	})
	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestUpdateRejectsInvalidPriceRange(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, testLogger())

	userID := uuid.New()
	mockRepo.On("Get", mock.Anything, userID).Return(nil, nil)

	tests := []struct {
		name string
		min  *int
		max  *int
	}{
		{name: "min below range", min: intPtr(0)},
		{name: "max above range", max: intPtr(5)},
		{name: "min greater than max", min: intPtr(3), max: intPtr(2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Update(context.Background(), userID, types.UpdatePreferencesParams{
				PriceRangeMin: tt.min,
				PriceRangeMax: tt.max,
			})
			assert.ErrorIs(t, err, types.ErrBadRequest)
		})
	}
	mockRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func intPtr(v int) *int { return &v }
