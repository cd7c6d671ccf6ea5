package profiles

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

// Price range bounds for preferences.
const (
	minPriceRange = 1
	maxPriceRange = 4
)

var _ Service = (*ServiceImpl)(nil)

// Service manages dining preferences. Reads for users without stored
// preferences return a default profile rather than an error.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*types.UserPreferences, error)

	// Update applies a partial update; nil fields keep their current value.
	Update(ctx context.Context, userID uuid.UUID, params types.UpdatePreferencesParams) (*types.UserPreferences, error)
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

func defaultPreferences(userID uuid.UUID) *types.UserPreferences {
	return &types.UserPreferences{
		UserID:                 userID,
		CuisinePreferences:     []string{},
		PriceRangeMin:          minPriceRange,
		PriceRangeMax:          maxPriceRange,
		DietaryRestrictions:    []string{},
		PreferredNeighborhoods: []string{},
	}
}

func (s *ServiceImpl) Get(ctx context.Context, userID uuid.UUID) (*types.UserPreferences, error) {
	ctx, span := otel.Tracer("PreferencesService").Start(ctx, "Get", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	prefs, err := s.repo.Get(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to get preferences")
		return nil, fmt.Errorf("error getting preferences: %w", err)
	}
	if prefs == nil {
		return defaultPreferences(userID), nil
	}
	return prefs, nil
}

func (s *ServiceImpl) Update(ctx context.Context, userID uuid.UUID, params types.UpdatePreferencesParams) (*types.UserPreferences, error) {
	ctx, span := otel.Tracer("PreferencesService").Start(ctx, "Update", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Update"), slog.String("userID", userID.String()))

	current, err := s.repo.Get(ctx, userID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to load current preferences", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to load current preferences")
		return nil, fmt.Errorf("error loading current preferences: %w", err)
	}
	if current == nil {
		current = defaultPreferences(userID)
	}

	if params.CuisinePreferences != nil {
		current.CuisinePreferences = *params.CuisinePreferences
	}
	if params.PriceRangeMin != nil {
		current.PriceRangeMin = *params.PriceRangeMin
	}
	if params.PriceRangeMax != nil {
		current.PriceRangeMax = *params.PriceRangeMax
	}
	if params.DietaryRestrictions != nil {
		current.DietaryRestrictions = *params.DietaryRestrictions
	}
	if params.PreferredNeighborhoods != nil {
		current.PreferredNeighborhoods = *params.PreferredNeighborhoods
	}

	if current.PriceRangeMin < minPriceRange || current.PriceRangeMax > maxPriceRange ||
		current.PriceRangeMin > current.PriceRangeMax {
		return nil, fmt.Errorf("price range must satisfy 1 <= min <= max <= 4: %w", types.ErrBadRequest)
	}

	saved, err := s.repo.Upsert(ctx, *current)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to save preferences")
		return nil, fmt.Errorf("error saving preferences: %w", err)
	}

	l.InfoContext(ctx, "Preferences updated")
	span.SetStatus(codes.Ok, "Preferences updated")
	return saved, nil
}
