package bookings

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

// Repository is the reservation persistence surface.
type Repository interface {
	// FindAvailableSlot returns the open slot matching the request, or
	// nil, nil when the slot is taken or was never published.
	FindAvailableSlot(ctx context.Context, restaurantID uuid.UUID, date time.Time, timeOfDay string, partySize int) (*types.AvailabilitySlot, error)

	// CreateBooking inserts a confirmed booking. externalBookingID is nil when
	// the external platform call failed or the booking is direct.
	CreateBooking(ctx context.Context, userID uuid.UUID, params types.CreateBookingParams, externalBookingID *string) (*types.Booking, error)

	// MarkSlotUnavailable flips a slot to taken.
	MarkSlotUnavailable(ctx context.Context, slotID uuid.UUID) error

	// GetByID returns nil, nil when the id does not resolve.
	GetByID(ctx context.Context, id uuid.UUID) (*types.Booking, error)

	// ListByUser returns the user's bookings with restaurant details, newest
	// reservation date first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]types.BookingWithDetails, error)

	// UpdateStatus transitions a booking's status.
	UpdateStatus(ctx context.Context, id uuid.UUID, status types.BookingStatus) error
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

const bookingColumns = `
	id, user_id, restaurant_id, date, time, party_size, status, platform,
	external_booking_id, special_requests, created_at, updated_at`

func scanBooking(row pgx.Row, b *types.Booking) error {
	var externalID, specialRequests sql.NullString
	err := row.Scan(
		&b.ID, &b.UserID, &b.RestaurantID, &b.Date, &b.Time, &b.PartySize,
		&b.Status, &b.Platform, &externalID, &specialRequests,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if externalID.Valid {
		b.ExternalBookingID = &externalID.String
	}
	if specialRequests.Valid {
		b.SpecialRequests = &specialRequests.String
	}
	return nil
}

func (r *RepositoryImpl) FindAvailableSlot(ctx context.Context, restaurantID uuid.UUID, date time.Time, timeOfDay string, partySize int) (*types.AvailabilitySlot, error) {
	query := `
        SELECT id, restaurant_id, date, time, party_size, available, platform,
               created_at, updated_at
        FROM availability_slots
        WHERE restaurant_id = $1
          AND date = $2
          AND time = $3
          AND party_size = $4
          AND available
        LIMIT 1
    `

	var slot types.AvailabilitySlot
	err := r.pgpool.QueryRow(ctx, query, restaurantID, date, timeOfDay, partySize).Scan(
		&slot.ID, &slot.RestaurantID, &slot.Date, &slot.Time,
		&slot.PartySize, &slot.Available, &slot.Platform,
		&slot.CreatedAt, &slot.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find availability slot: %w", err)
	}

	return &slot, nil
}

func (r *RepositoryImpl) CreateBooking(ctx context.Context, userID uuid.UUID, params types.CreateBookingParams, externalBookingID *string) (*types.Booking, error) {
	l := r.logger.With(slog.String("method", "CreateBooking"))

	query := `
        INSERT INTO bookings (user_id, restaurant_id, date, time, party_size,
                              status, platform, external_booking_id, special_requests)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING` + bookingColumns + `
    `

	var booking types.Booking
	err := scanBooking(r.pgpool.QueryRow(ctx, query,
		userID, params.RestaurantID, params.Date, params.Time, params.PartySize,
		types.BookingStatusConfirmed, params.Platform, externalBookingID, params.SpecialRequests,
	), &booking)
	if err != nil {
		l.ErrorContext(ctx, "Failed to insert booking", slog.Any("error", err))
		return nil, fmt.Errorf("failed to insert booking: %w", err)
	}

	return &booking, nil
}

func (r *RepositoryImpl) MarkSlotUnavailable(ctx context.Context, slotID uuid.UUID) error {
	tag, err := r.pgpool.Exec(ctx, `
        UPDATE availability_slots
        SET available = FALSE, updated_at = NOW()
        WHERE id = $1
    `, slotID)
	if err != nil {
		return fmt.Errorf("failed to mark slot unavailable: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("slot %s: %w", slotID, types.ErrNotFound)
	}
	return nil
}

func (r *RepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*types.Booking, error) {
	query := `SELECT` + bookingColumns + ` FROM bookings WHERE id = $1`

	var booking types.Booking
	err := scanBooking(r.pgpool.QueryRow(ctx, query, id), &booking)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get booking %s: %w", id, err)
	}

	return &booking, nil
}

func (r *RepositoryImpl) ListByUser(ctx context.Context, userID uuid.UUID) ([]types.BookingWithDetails, error) {
	l := r.logger.With(slog.String("method", "ListByUser"))

	query := `
        SELECT
            b.id, b.user_id, b.restaurant_id, b.date, b.time, b.party_size,
            b.status, b.platform, b.external_booking_id, b.special_requests,
            b.created_at, b.updated_at,
            r.id, r.name, r.description, r.cuisine, r.price_range, r.neighborhood,
            r.address, r.phone, r.website, r.image_url, r.rating, r.review_count,
            r.features, r.resy_enabled, r.opentable_enabled, r.created_at, r.updated_at
        FROM bookings b
        JOIN restaurants r ON r.id = b.restaurant_id
        WHERE b.user_id = $1
        ORDER BY b.date DESC
    `

	rows, err := r.pgpool.Query(ctx, query, userID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to query bookings", slog.Any("error", err))
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var results []types.BookingWithDetails
	for rows.Next() {
		var b types.BookingWithDetails
		var restaurant types.Restaurant
		var externalID, specialRequests sql.NullString
		var rDescription, rPhone, rWebsite, rImageURL sql.NullString

		err := rows.Scan(
			&b.ID, &b.UserID, &b.RestaurantID, &b.Date, &b.Time, &b.PartySize,
			&b.Status, &b.Platform, &externalID, &specialRequests,
			&b.CreatedAt, &b.UpdatedAt,
			&restaurant.ID, &restaurant.Name, &rDescription, &restaurant.Cuisine,
			&restaurant.PriceRange, &restaurant.Neighborhood, &restaurant.Address,
			&rPhone, &rWebsite, &rImageURL, &restaurant.Rating, &restaurant.ReviewCount,
			&restaurant.Features, &restaurant.ResyEnabled, &restaurant.OpenTableEnabled,
			&restaurant.CreatedAt, &restaurant.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking row: %w", err)
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

		results = append(results, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating booking rows: %w", err)
	}

	return results, nil
}

func (r *RepositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status types.BookingStatus) error {
	tag, err := r.pgpool.Exec(ctx, `
        UPDATE bookings
        SET status = $2, updated_at = NOW()
        WHERE id = $1
    `, id, status)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("booking %s: %w", id, types.ErrNotFound)
	}
	return nil
}
