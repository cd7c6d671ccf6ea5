package reviews

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

func (m *MockRepository) Create(ctx context.Context, userID uuid.UUID, params types.CreateReviewParams) (*types.Review, error) {
	args := m.Called(ctx, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Review), args.Error(1)
}

func (m *MockRepository) GetBookingOwner(ctx context.Context, bookingID uuid.UUID) (uuid.UUID, uuid.UUID, error) {
	args := m.Called(ctx, bookingID)
	return args.Get(0).(uuid.UUID), args.Get(1).(uuid.UUID), args.Error(2)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSubmitRejectsOutOfRangeRating(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, testLogger())

	for _, rating := range []int{0, 6, -1} {
		_, err := service.Submit(context.Background(), uuid.New(), types.CreateReviewParams{
			RestaurantID: uuid.New(),
			Rating:       rating,
		})
		assert.ErrorIs(t, err, types.ErrBadRequest)
	}
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitRequiresRestaurantID(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, testLogger())

	_, err := service.Submit(context.Background(), uuid.New(), types.CreateReviewParams{Rating: 4})
	assert.ErrorIs(t, err, types.ErrBadRequest)
}

func TestSubmitChecksBookingOwnership(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, testLogger())

	reviewer := uuid.New()
	owner := uuid.New()
	bookingID := uuid.New()
	restaurantID := uuid.New()

	mockRepo.On("GetBookingOwner", mock.Anything, bookingID).Return(owner, restaurantID, nil)

	_, err := service.Submit(context.Background(), reviewer, types.CreateReviewParams{
		RestaurantID: restaurantID,
		BookingID:    &bookingID,
		Rating:       5,
	})
	assert.ErrorIs(t, err, types.ErrForbidden)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitRejectsBookingForDifferentRestaurant(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, testLogger())

	reviewer := uuid.New()
	bookingID := uuid.New()

	mockRepo.On("GetBookingOwner", mock.Anything, bookingID).Return(reviewer, uuid.New(), nil)

	_, err := service.Submit(context.Background(), reviewer, types.CreateReviewParams{
		RestaurantID: uuid.New(),
		BookingID:    &bookingID,
		Rating:       5,
	})
	assert.ErrorIs(t, err, types.ErrBadRequest)
}

func TestSubmitRecordsReview(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, testLogger())

	reviewer := uuid.New()
	restaurantID := uuid.New()
	bookingID := uuid.New()
	comment := "Wonderful pasta, great service."
	params := types.CreateReviewParams{
		RestaurantID: restaurantID,
		BookingID:    &bookingID,
		Rating:       5,
		Comment:      &comment,
	}

	mockRepo.On("GetBookingOwner", mock.Anything, bookingID).Return(reviewer, restaurantID, nil)
	mockRepo.On("Create", mock.Anything, reviewer, params).
		Return(&types.Review{ID: uuid.New(), UserID: reviewer, RestaurantID: restaurantID, Rating: 5}, nil)

	review, err := service.Submit(context.Background(), reviewer, params)
	require.NoError(t, err)
	assert.Equal(t, 5, review.Rating)
	mockRepo.AssertExpectations(t)
}
