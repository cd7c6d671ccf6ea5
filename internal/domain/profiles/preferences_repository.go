package profiles

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

// Repository persists per-user dining preferences.
type Repository interface {
	// Get returns nil, nil when the user has no stored preferences.
	Get(ctx context.Context, userID uuid.UUID) (*types.UserPreferences, error)

	// Upsert writes the full preferences row, inserting on first write.
	Upsert(ctx context.Context, prefs types.UserPreferences) (*types.UserPreferences, error)
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

const preferencesColumns = `
	id, user_id, cuisine_preferences, price_range_min, price_range_max,
	dietary_restrictions, preferred_neighborhoods, created_at, updated_at`

func scanPreferences(row pgx.Row, p *types.UserPreferences) error {
	return row.Scan(
		&p.ID,
		&p.UserID,
		&p.CuisinePreferences,
		&p.PriceRangeMin,
		&p.PriceRangeMax,
		&p.DietaryRestrictions,
		&p.PreferredNeighborhoods,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
}

func (r *RepositoryImpl) Get(ctx context.Context, userID uuid.UUID) (*types.UserPreferences, error) {
	query := `SELECT` + preferencesColumns + `
        FROM user_preferences
        WHERE user_id = $1
    `

	var prefs types.UserPreferences
	err := scanPreferences(r.pgpool.QueryRow(ctx, query, userID), &prefs)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}

	return &prefs, nil
}

func (r *RepositoryImpl) Upsert(ctx context.Context, prefs types.UserPreferences) (*types.UserPreferences, error) {
	l := r.logger.With(slog.String("method", "Upsert"), slog.String("userID", prefs.UserID.String()))

	query := `
        INSERT INTO user_preferences (user_id, cuisine_preferences, price_range_min,
                                      price_range_max, dietary_restrictions, preferred_neighborhoods)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (user_id) DO UPDATE SET
            cuisine_preferences = EXCLUDED.cuisine_preferences,
            price_range_min = EXCLUDED.price_range_min,
            price_range_max = EXCLUDED.price_range_max,
            dietary_restrictions = EXCLUDED.dietary_restrictions,
            preferred_neighborhoods = EXCLUDED.preferred_neighborhoods,
            updated_at = NOW()
        RETURNING` + preferencesColumns + `
    `

	var saved types.UserPreferences
	err := scanPreferences(r.pgpool.QueryRow(ctx, query,
		prefs.UserID, prefs.CuisinePreferences, prefs.PriceRangeMin,
		prefs.PriceRangeMax, prefs.DietaryRestrictions, prefs.PreferredNeighborhoods,
	), &saved)
	if err != nil {
		l.ErrorContext(ctx, "Failed to upsert preferences", slog.Any("error", err))
		return nil, fmt.Errorf("failed to upsert preferences: %w", err)
	}

	return &saved, nil
}
