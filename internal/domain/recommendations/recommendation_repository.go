package recommendations

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jomilu93/restaurant-booking-app/internal/types"
)

var _ Repository = (*RepositoryImpl)(nil)

// Repository is the read-only data access surface the recommendation engine
// computes over. It never mutates anything; data-access failures propagate
// unchanged to the caller.
type Repository interface {
	GetUserPreferences(ctx context.Context, userID uuid.UUID) (*types.UserPreferences, error)
	GetUserBookings(ctx context.Context, userID uuid.UUID) ([]types.BookingWithDetails, error)
	GetRestaurant(ctx context.Context, id uuid.UUID) (*types.Restaurant, error)

	// GetAllRestaurants returns every restaurant, minus excludeID when it is
	// not uuid.Nil.
	GetAllRestaurants(ctx context.Context, excludeID uuid.UUID) ([]types.Restaurant, error)

	// CountRecentBookingsByRestaurant groups bookings created since the given
	// time by restaurant, ordered by count descending.
	CountRecentBookingsByRestaurant(ctx context.Context, since time.Time, limit int) ([]types.RestaurantBookingCount, error)

	// CountOverlapBookingUsers finds other users with bookings among the given
	// restaurants, ordered by overlap count descending, capped at topN.
	CountOverlapBookingUsers(ctx context.Context, restaurantIDs []uuid.UUID, excludeUserID uuid.UUID, topN int) ([]types.UserOverlap, error)

	// GetBookingsByUsersExcludingRestaurants returns every booking made by the
	// given users at restaurants outside the excluded set.
	GetBookingsByUsersExcludingRestaurants(ctx context.Context, userIDs []uuid.UUID, excludedRestaurantIDs []uuid.UUID) ([]types.Booking, error)

	// GetRestaurantsByIDs resolves ids to full records. Row order is not
	// guaranteed; callers must re-sort.
	GetRestaurantsByIDs(ctx context.Context, ids []uuid.UUID) ([]types.Restaurant, error)

	// GetTopRatedRestaurants orders by rating then review count, both
	// descending. Used as the trending fallback when no recent bookings exist.
	GetTopRatedRestaurants(ctx context.Context, limit int) ([]types.Restaurant, error)
}

// querier is the subset of pgxpool.Pool the repository relies on.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type RepositoryImpl struct {
	logger *slog.Logger
	pgpool querier
}

func NewRepositoryImpl(pgpool *pgxpool.Pool, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		pgpool: pgpool,
	}
}

const restaurantColumns = `
	id, name, description, cuisine, price_range, neighborhood, address,
	phone, website, image_url, rating, review_count, features,
	resy_enabled, opentable_enabled, created_at, updated_at`

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

func collectRestaurants(rows pgx.Rows) ([]types.Restaurant, error) {
	defer rows.Close()

	var restaurants []types.Restaurant
	for rows.Next() {
		var r types.Restaurant
		if err := scanRestaurant(rows, &r); err != nil {
			return nil, fmt.Errorf("failed to scan restaurant row: %w", err)
		}
		restaurants = append(restaurants, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating restaurant rows: %w", err)
	}
	return restaurants, nil
}

// GetUserPreferences returns nil, nil when the user has no stored preferences.
func (r *RepositoryImpl) GetUserPreferences(ctx context.Context, userID uuid.UUID) (*types.UserPreferences, error) {
	query := `
        SELECT id, user_id, cuisine_preferences, price_range_min, price_range_max,
               dietary_restrictions, preferred_neighborhoods, created_at, updated_at
        FROM user_preferences
        WHERE user_id = $1
    `

	var prefs types.UserPreferences
	err := r.pgpool.QueryRow(ctx, query, userID).Scan(
		&prefs.ID,
		&prefs.UserID,
		&prefs.CuisinePreferences,
		&prefs.PriceRangeMin,
		&prefs.PriceRangeMax,
		&prefs.DietaryRestrictions,
		&prefs.PreferredNeighborhoods,
		&prefs.CreatedAt,
		&prefs.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user preferences: %w", err)
	}

	return &prefs, nil
}

// GetUserBookings returns the user's bookings joined with their restaurant
// and, when present, the review left for the booking.
func (r *RepositoryImpl) GetUserBookings(ctx context.Context, userID uuid.UUID) ([]types.BookingWithDetails, error) {
	l := r.logger.With(slog.String("method", "GetUserBookings"))

	query := `
        SELECT
            b.id, b.user_id, b.restaurant_id, b.date, b.time, b.party_size,
            b.status, b.platform, b.external_booking_id, b.special_requests,
            b.created_at, b.updated_at,
            r.id, r.name, r.description, r.cuisine, r.price_range, r.neighborhood,
            r.address, r.phone, r.website, r.image_url, r.rating, r.review_count,
            r.features, r.resy_enabled, r.opentable_enabled, r.created_at, r.updated_at,
            rv.id, rv.rating, rv.comment, rv.created_at
        FROM bookings b
        JOIN restaurants r ON r.id = b.restaurant_id
        LEFT JOIN reviews rv ON rv.booking_id = b.id
        WHERE b.user_id = $1
        ORDER BY b.created_at DESC
    `

	rows, err := r.pgpool.Query(ctx, query, userID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to query user bookings", slog.Any("error", err))
		return nil, fmt.Errorf("failed to query user bookings: %w", err)
	}
	defer rows.Close()

	var bookings []types.BookingWithDetails
	for rows.Next() {
		var b types.BookingWithDetails
		var restaurant types.Restaurant
		var externalID, specialRequests sql.NullString
		var rDescription, rPhone, rWebsite, rImageURL sql.NullString
		var reviewID uuid.NullUUID
		var reviewRating sql.NullInt32
		var reviewComment sql.NullString
		var reviewCreatedAt sql.NullTime

		err := rows.Scan(
			&b.ID, &b.UserID, &b.RestaurantID, &b.Date, &b.Time, &b.PartySize,
			&b.Status, &b.Platform, &externalID, &specialRequests,
			&b.CreatedAt, &b.UpdatedAt,
			&restaurant.ID, &restaurant.Name, &rDescription, &restaurant.Cuisine,
			&restaurant.PriceRange, &restaurant.Neighborhood, &restaurant.Address,
			&rPhone, &rWebsite, &rImageURL, &restaurant.Rating, &restaurant.ReviewCount,
			&restaurant.Features, &restaurant.ResyEnabled, &restaurant.OpenTableEnabled,
			&restaurant.CreatedAt, &restaurant.UpdatedAt,
			&reviewID, &reviewRating, &reviewComment, &reviewCreatedAt,
		)
		if err != nil {
			l.ErrorContext(ctx, "Failed to scan user booking row", slog.Any("error", err))
			return nil, fmt.Errorf("failed to scan user booking row: %w", err)
		}

		if externalID.Valid {
			b.ExternalBookingID = &externalID.String
		}
		if specialRequests.Valid {
			b.SpecialRequests = &specialRequests.String
		}
		if rDescription.Valid {
			restaurant.Description = &rDescription.String
		}
		if rPhone.Valid {
			restaurant.Phone = &rPhone.String
		}
		if rWebsite.Valid {
			restaurant.Website = &rWebsite.String
		}
		if rImageURL.Valid {
			restaurant.ImageURL = &rImageURL.String
		}
		b.Restaurant = &restaurant

		if reviewID.Valid {
			review := types.Review{
				ID:           reviewID.UUID,
				UserID:       b.UserID,
				RestaurantID: b.RestaurantID,
				BookingID:    &b.ID,
				Rating:       int(reviewRating.Int32),
				CreatedAt:    reviewCreatedAt.Time,
			}
			if reviewComment.Valid {
				review.Comment = &reviewComment.String
			}
			b.Review = &review
		}

		bookings = append(bookings, b)
	}

	if err := rows.Err(); err != nil {
		l.ErrorContext(ctx, "Error iterating user booking rows", slog.Any("error", err))
		return nil, fmt.Errorf("error iterating user booking rows: %w", err)
	}

	return bookings, nil
}

// GetRestaurant returns nil, nil when the id does not resolve.
func (r *RepositoryImpl) GetRestaurant(ctx context.Context, id uuid.UUID) (*types.Restaurant, error) {
	query := `SELECT` + restaurantColumns + `
        FROM restaurants
        WHERE id = $1
    `

	var restaurant types.Restaurant
	err := scanRestaurant(r.pgpool.QueryRow(ctx, query, id), &restaurant)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get restaurant %s: %w", id, err)
	}

	return &restaurant, nil
}

func (r *RepositoryImpl) GetAllRestaurants(ctx context.Context, excludeID uuid.UUID) ([]types.Restaurant, error) {
	query := `SELECT` + restaurantColumns + ` FROM restaurants`
	args := []any{}
	if excludeID != uuid.Nil {
		query += ` WHERE id != $1`
		args = append(args, excludeID)
	}

	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query restaurants: %w", err)
	}

	return collectRestaurants(rows)
}

func (r *RepositoryImpl) CountRecentBookingsByRestaurant(ctx context.Context, since time.Time, limit int) ([]types.RestaurantBookingCount, error) {
	l := r.logger.With(slog.String("method", "CountRecentBookingsByRestaurant"))

	query := `
        SELECT restaurant_id, COUNT(*) AS booking_count
        FROM bookings
        WHERE created_at >= $1
        GROUP BY restaurant_id
        ORDER BY booking_count DESC
        LIMIT $2
    `

	rows, err := r.pgpool.Query(ctx, query, since, limit)
	if err != nil {
		l.ErrorContext(ctx, "Failed to count recent bookings", slog.Any("error", err))
		return nil, fmt.Errorf("failed to count recent bookings: %w", err)
	}
	defer rows.Close()

	var counts []types.RestaurantBookingCount
	for rows.Next() {
		var c types.RestaurantBookingCount
		if err := rows.Scan(&c.RestaurantID, &c.BookingCount); err != nil {
			return nil, fmt.Errorf("failed to scan booking count row: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating booking count rows: %w", err)
	}

	return counts, nil
}

func (r *RepositoryImpl) CountOverlapBookingUsers(ctx context.Context, restaurantIDs []uuid.UUID, excludeUserID uuid.UUID, topN int) ([]types.UserOverlap, error) {
	l := r.logger.With(slog.String("method", "CountOverlapBookingUsers"))

	query := `
        SELECT user_id, COUNT(*) AS overlap_count
        FROM bookings
        WHERE restaurant_id = ANY($1) AND user_id != $2
        GROUP BY user_id
        ORDER BY overlap_count DESC
        LIMIT $3
    `

	rows, err := r.pgpool.Query(ctx, query, restaurantIDs, excludeUserID, topN)
	if err != nil {
		l.ErrorContext(ctx, "Failed to count overlapping users", slog.Any("error", err))
		return nil, fmt.Errorf("failed to count overlapping users: %w", err)
	}
	defer rows.Close()

	var overlaps []types.UserOverlap
	for rows.Next() {
		var o types.UserOverlap
		if err := rows.Scan(&o.UserID, &o.OverlapCount); err != nil {
			return nil, fmt.Errorf("failed to scan user overlap row: %w", err)
		}
		overlaps = append(overlaps, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user overlap rows: %w", err)
	}

	return overlaps, nil
}

func (r *RepositoryImpl) GetBookingsByUsersExcludingRestaurants(ctx context.Context, userIDs []uuid.UUID, excludedRestaurantIDs []uuid.UUID) ([]types.Booking, error) {
	l := r.logger.With(slog.String("method", "GetBookingsByUsersExcludingRestaurants"))

	query := `
        SELECT id, user_id, restaurant_id, date, time, party_size,
               status, platform, external_booking_id, special_requests,
               created_at, updated_at
        FROM bookings
        WHERE user_id = ANY($1) AND NOT (restaurant_id = ANY($2))
    `

	rows, err := r.pgpool.Query(ctx, query, userIDs, excludedRestaurantIDs)
	if err != nil {
		l.ErrorContext(ctx, "Failed to query neighbor bookings", slog.Any("error", err))
		return nil, fmt.Errorf("failed to query neighbor bookings: %w", err)
	}
	defer rows.Close()

	var bookings []types.Booking
	for rows.Next() {
		var b types.Booking
		var externalID, specialRequests sql.NullString
		err := rows.Scan(
			&b.ID, &b.UserID, &b.RestaurantID, &b.Date, &b.Time, &b.PartySize,
			&b.Status, &b.Platform, &externalID, &specialRequests,
			&b.CreatedAt, &b.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan neighbor booking row: %w", err)
		}
		if externalID.Valid {
			b.ExternalBookingID = &externalID.String
		}
		if specialRequests.Valid {
			b.SpecialRequests = &specialRequests.String
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating neighbor booking rows: %w", err)
	}

	return bookings, nil
}

func (r *RepositoryImpl) GetRestaurantsByIDs(ctx context.Context, ids []uuid.UUID) ([]types.Restaurant, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT` + restaurantColumns + `
        FROM restaurants
        WHERE id = ANY($1)
    `

	rows, err := r.pgpool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query restaurants by ids: %w", err)
	}

	return collectRestaurants(rows)
}

func (r *RepositoryImpl) GetTopRatedRestaurants(ctx context.Context, limit int) ([]types.Restaurant, error) {
	query := `SELECT` + restaurantColumns + `
        FROM restaurants
        ORDER BY rating DESC, review_count DESC
        LIMIT $1
    `

	rows, err := r.pgpool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top rated restaurants: %w", err)
	}

	return collectRestaurants(rows)
}
