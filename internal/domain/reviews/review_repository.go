package reviews

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jomilu93/restaurant-booking-app/internal/types"
)

var _ Repository = (*RepositoryImpl)(nil)

// Repository persists reviews and keeps the restaurant rating aggregates in
// step with them.
type Repository interface {
	// Create inserts the review and recomputes the restaurant's rating and
	// review_count in the same transaction.
	Create(ctx context.Context, userID uuid.UUID, params types.CreateReviewParams) (*types.Review, error)

	// GetBookingOwner resolves a booking to its owner and restaurant.
	// Returns types.ErrNotFound when the booking does not exist.
	GetBookingOwner(ctx context.Context, bookingID uuid.UUID) (userID, restaurantID uuid.UUID, err error)
}

type RepositoryImpl struct {
	logger *slog.Logger
	pgpool *pgxpool.Pool
}

func NewRepositoryImpl(pgpool *pgxpool.Pool, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *RepositoryImpl) Create(ctx context.Context, userID uuid.UUID, params types.CreateReviewParams) (*types.Review, error) {
	l := r.logger.With(slog.String("method", "Create"), slog.String("restaurantID", params.RestaurantID.String()))

	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && rollbackErr != pgx.ErrTxClosed {
			l.ErrorContext(ctx, "Failed to rollback transaction", slog.Any("rollback_error", rollbackErr))
		}
	}()

	insert := `
        INSERT INTO reviews (user_id, restaurant_id, booking_id, rating, comment)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, user_id, restaurant_id, booking_id, rating, comment,
                  created_at, updated_at
    `

	var review types.Review
	err = tx.QueryRow(ctx, insert,
		userID, params.RestaurantID, params.BookingID, params.Rating, params.Comment,
	).Scan(
		&review.ID, &review.UserID, &review.RestaurantID, &review.BookingID,
		&review.Rating, &review.Comment, &review.CreatedAt, &review.UpdatedAt,
	)
	if err != nil {
		l.ErrorContext(ctx, "Failed to insert review", slog.Any("error", err))
		return nil, fmt.Errorf("failed to insert review: %w", err)
	}

	// Aggregates are recomputed from the reviews table, not adjusted
	// incrementally.
	update := `
        UPDATE restaurants
        SET rating = sub.avg_rating,
            review_count = sub.review_count,
            updated_at = NOW()
        FROM (
            SELECT AVG(rating)::real AS avg_rating, COUNT(*) AS review_count
            FROM reviews
            WHERE restaurant_id = $1
        ) sub
        WHERE id = $1
    `
	if _, err := tx.Exec(ctx, update, params.RestaurantID); err != nil {
		l.ErrorContext(ctx, "Failed to update restaurant aggregates", slog.Any("error", err))
		return nil, fmt.Errorf("failed to update restaurant aggregates: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit review transaction: %w", err)
	}

	return &review, nil
}

func (r *RepositoryImpl) GetBookingOwner(ctx context.Context, bookingID uuid.UUID) (uuid.UUID, uuid.UUID, error) {
	var userID, restaurantID uuid.UUID
	err := r.pgpool.QueryRow(ctx, `
        SELECT user_id, restaurant_id FROM bookings WHERE id = $1
    `, bookingID).Scan(&userID, &restaurantID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return uuid.Nil, uuid.Nil, types.ErrNotFound
		}
		return uuid.Nil, uuid.Nil, fmt.Errorf("failed to get booking %s: %w", bookingID, err)
	}
	return userID, restaurantID, nil
}
