package reviews

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jomilu93/restaurant-booking-app/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service validates and records reviews.
type Service interface {
	// Submit records a review. The rating must be 1 through 5 and, when a
	// booking id is supplied, the booking must belong to the reviewer and
	// match the reviewed restaurant.
	Submit(ctx context.Context, userID uuid.UUID, params types.CreateReviewParams) (*types.Review, error)
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

func (s *ServiceImpl) Submit(ctx context.Context, userID uuid.UUID, params types.CreateReviewParams) (*types.Review, error) {
	ctx, span := otel.Tracer("ReviewService").Start(ctx, "Submit", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
		attribute.String("restaurant.id", params.RestaurantID.String()),
		attribute.Int("rating", params.Rating),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Submit"), slog.String("userID", userID.String()))

	if params.Rating < 1 || params.Rating > 5 {
		return nil, fmt.Errorf("rating must be between 1 and 5: %w", types.ErrBadRequest)
	}
	if params.RestaurantID == uuid.Nil {
		return nil, fmt.Errorf("restaurant id is required: %w", types.ErrBadRequest)
	}

	if params.BookingID != nil {
		ownerID, restaurantID, err := s.repo.GetBookingOwner(ctx, *params.BookingID)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		if ownerID != userID {
			return nil, types.ErrForbidden
		}
		if restaurantID != params.RestaurantID {
			return nil, fmt.Errorf("booking is for a different restaurant: %w", types.ErrBadRequest)
		}
	}

	review, err := s.repo.Create(ctx, userID, params)
	if err != nil {
		l.ErrorContext(ctx, "Failed to create review", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create review")
		return nil, fmt.Errorf("error creating review: %w", err)
	}

	l.InfoContext(ctx, "Review recorded", slog.String("reviewID", review.ID.String()))
	span.SetStatus(codes.Ok, "Review recorded")
	return review, nil
}
