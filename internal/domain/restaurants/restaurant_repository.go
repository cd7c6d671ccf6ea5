package restaurants

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jomilu93/restaurant-booking-app/internal/types"
)

var _ Repository = (*RepositoryImpl)(nil)

// Repository is the restaurant discovery data access surface.
type Repository interface {
	// Search applies the filter's equality and free-text conditions. The
	// availability window (Date/Time/PartySize) is resolved separately via
	// GetAvailableRestaurantIDs and intersected by the service.
	Search(ctx context.Context, filter types.RestaurantFilter) ([]types.Restaurant, error)

	// GetByID returns nil, nil when the id does not resolve.
	GetByID(ctx context.Context, id uuid.UUID) (*types.Restaurant, error)

	// GetReviews returns the newest reviews for a restaurant, capped at limit.
	GetReviews(ctx context.Context, restaurantID uuid.UUID, limit int) ([]types.Review, error)

	// GetAvailableRestaurantIDs returns the distinct restaurants with an open
	// slot at or after the given date matching time and party size.
	GetAvailableRestaurantIDs(ctx context.Context, date time.Time, timeOfDay string, partySize int) ([]uuid.UUID, error)

	// GetAvailabilitySlots lists the open slots a restaurant publishes
	// directly, for callers that bypass the external platforms.
	GetAvailabilitySlots(ctx context.Context, restaurantID uuid.UUID, date time.Time, partySize int) ([]types.AvailabilitySlot, error)
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

var restaurantColumns = []string{
	"id", "name", "description", "cuisine", "price_range", "neighborhood",
	"address", "phone", "website", "image_url", "rating", "review_count",
	"features", "resy_enabled", "opentable_enabled", "created_at", "updated_at",
}

func scanRestaurant(row pgx.Row, r *types.Restaurant) error {
	var description, phone, website, imageURL sql.NullString
	err := row.Scan(
		&r.ID,
		&r.Name,
		&description,
		&r.Cuisine,
		&r.PriceRange,
		&r.Neighborhood,
		&r.Address,
		&phone,
		&website,
		&imageURL,
		&r.Rating,
		&r.ReviewCount,
		&r.Features,
		&r.ResyEnabled,
		&r.OpenTableEnabled,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if description.Valid {
		r.Description = &description.String
	}
	if phone.Valid {
		r.Phone = &phone.String
	}
	if website.Valid {
		r.Website = &website.String
	}
	if imageURL.Valid {
		r.ImageURL = &imageURL.String
	}
	return nil
}

// Search builds the WHERE clause dynamically from whichever filters are set.
// Free-text search matches name, description and cuisine; keywords the
// service detected in the query widen the cuisine and feature matches.
func (r *RepositoryImpl) Search(ctx context.Context, filter types.RestaurantFilter) ([]types.Restaurant, error) {
	l := r.logger.With(slog.String("method", "Search"))

	builder := squirrel.Select(restaurantColumns...).
		From("restaurants").
		PlaceholderFormat(squirrel.Dollar).
		OrderBy("rating DESC, review_count DESC")

	if filter.Cuisine != "" {
		builder = builder.Where(squirrel.Eq{"cuisine": filter.Cuisine})
	}
	if filter.PriceRange != nil {
		builder = builder.Where(squirrel.Eq{"price_range": *filter.PriceRange})
	}
	if filter.Neighborhood != "" {
		builder = builder.Where(squirrel.Eq{"neighborhood": filter.Neighborhood})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		text := squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"description": pattern},
			squirrel.ILike{"cuisine": pattern},
		}
		if len(filter.MatchedCuisines) > 0 {
			text = append(text, squirrel.Eq{"cuisine": filter.MatchedCuisines})
		}
		if len(filter.MatchedFeatures) > 0 {
			text = append(text, squirrel.Expr("features && ?", filter.MatchedFeatures))
		}
		builder = builder.Where(text)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build restaurant search query: %w", err)
	}

	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		l.ErrorContext(ctx, "Failed to search restaurants", slog.Any("error", err))
		return nil, fmt.Errorf("failed to search restaurants: %w", err)
	}
	defer rows.Close()

	var results []types.Restaurant
	for rows.Next() {
		var restaurant types.Restaurant
		if err := scanRestaurant(rows, &restaurant); err != nil {
			return nil, fmt.Errorf("failed to scan restaurant row: %w", err)
		}
		results = append(results, restaurant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating restaurant rows: %w", err)
	}

	return results, nil
}

func (r *RepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*types.Restaurant, error) {
	query, args, err := squirrel.Select(restaurantColumns...).
		From("restaurants").
		PlaceholderFormat(squirrel.Dollar).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build restaurant query: %w", err)
	}

	var restaurant types.Restaurant
	err = scanRestaurant(r.pgpool.QueryRow(ctx, query, args...), &restaurant)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get restaurant %s: %w", id, err)
	}

	return &restaurant, nil
}

func (r *RepositoryImpl) GetReviews(ctx context.Context, restaurantID uuid.UUID, limit int) ([]types.Review, error) {
	l := r.logger.With(slog.String("method", "GetReviews"))

	query := `
        SELECT id, user_id, restaurant_id, booking_id, rating, comment,
               created_at, updated_at
        FROM reviews
        WHERE restaurant_id = $1
        ORDER BY created_at DESC
        LIMIT $2
    `

	rows, err := r.pgpool.Query(ctx, query, restaurantID, limit)
	if err != nil {
		l.ErrorContext(ctx, "Failed to query reviews", slog.Any("error", err))
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	var reviews []types.Review
	for rows.Next() {
		var review types.Review
		var bookingID uuid.NullUUID
		var comment sql.NullString
		err := rows.Scan(
			&review.ID, &review.UserID, &review.RestaurantID, &bookingID,
			&review.Rating, &comment, &review.CreatedAt, &review.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review row: %w", err)
		}
		if bookingID.Valid {
			review.BookingID = &bookingID.UUID
		}
		if comment.Valid {
			review.Comment = &comment.String
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating review rows: %w", err)
	}

	return reviews, nil
}

func (r *RepositoryImpl) GetAvailableRestaurantIDs(ctx context.Context, date time.Time, timeOfDay string, partySize int) ([]uuid.UUID, error) {
	query := `
        SELECT DISTINCT restaurant_id
        FROM availability_slots
        WHERE date >= $1 AND time = $2 AND party_size = $3 AND available
    `

	rows, err := r.pgpool.Query(ctx, query, date, timeOfDay, partySize)
	if err != nil {
		return nil, fmt.Errorf("failed to query available restaurants: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan available restaurant id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating available restaurant ids: %w", err)
	}

	return ids, nil
}

func (r *RepositoryImpl) GetAvailabilitySlots(ctx context.Context, restaurantID uuid.UUID, date time.Time, partySize int) ([]types.AvailabilitySlot, error) {
	query := `
        SELECT id, restaurant_id, date, time, party_size, available, platform,
               created_at, updated_at
        FROM availability_slots
        WHERE restaurant_id = $1
          AND date::date = $2::date
          AND party_size = $3
          AND available
        ORDER BY time
    `

	rows, err := r.pgpool.Query(ctx, query, restaurantID, date, partySize)
	if err != nil {
		return nil, fmt.Errorf("failed to query availability slots: %w", err)
	}
	defer rows.Close()

	var slots []types.AvailabilitySlot
	for rows.Next() {
		var slot types.AvailabilitySlot
		err := rows.Scan(
			&slot.ID, &slot.RestaurantID, &slot.Date, &slot.Time,
			&slot.PartySize, &slot.Available, &slot.Platform,
			&slot.CreatedAt, &slot.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan availability slot row: %w", err)
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating availability slot rows: %w", err)
	}

	return slots, nil
}
