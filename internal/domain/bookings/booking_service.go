package bookings

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jomilu93/restaurant-booking-app/internal/platform"
	"github.com/jomilu93/restaurant-booking-app/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service is the reservation flow: create against an open slot, list a
// user's history, cancel.
type Service interface {
	// Create places a reservation. The slot must be open or
	// types.ErrSlotUnavailable is returned. When the chosen platform's
	// external call fails the booking is still recorded, without an external
	// confirmation id.
	Create(ctx context.Context, userID uuid.UUID, params types.CreateBookingParams) (*types.Booking, error)

	// ListForUser returns the user's bookings with restaurant details.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]types.BookingWithDetails, error)

	// Cancel transitions the booking to cancelled. Only the booking's owner
	// may cancel; a failed platform-side cancellation is logged but does not
	// block the local status change.
	Cancel(ctx context.Context, userID, bookingID uuid.UUID) error
}

type ServiceImpl struct {
	logger    *slog.Logger
	repo      Repository
	platforms map[types.Platform]platform.Client
}

func NewService(repo Repository, platforms map[types.Platform]platform.Client, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:    logger,
		repo:      repo,
		platforms: platforms,
	}
}

func (s *ServiceImpl) Create(ctx context.Context, userID uuid.UUID, params types.CreateBookingParams) (*types.Booking, error) {
	ctx, span := otel.Tracer("BookingService").Start(ctx, "Create", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
		attribute.String("restaurant.id", params.RestaurantID.String()),
		attribute.String("platform", string(params.Platform)),
	))
	defer span.End()

	l := s.logger.With(
		slog.String("method", "Create"),
		slog.String("userID", userID.String()),
		slog.String("restaurantID", params.RestaurantID.String()),
	)

	slot, err := s.repo.FindAvailableSlot(ctx, params.RestaurantID, params.Date, params.Time, params.PartySize)
	if err != nil {
		l.ErrorContext(ctx, "Failed to look up availability slot", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to look up availability slot")
		return nil, fmt.Errorf("error looking up availability slot: %w", err)
	}
	if slot == nil {
		span.AddEvent("slot_unavailable")
		return nil, types.ErrSlotUnavailable
	}

	externalBookingID := s.placeExternalBooking(ctx, params)

	booking, err := s.repo.CreateBooking(ctx, userID, params, externalBookingID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create booking")
		return nil, fmt.Errorf("error creating booking: %w", err)
	}

	if err := s.repo.MarkSlotUnavailable(ctx, slot.ID); err != nil {
		// The booking exists; a stale-open slot is recoverable, losing the
		// booking is not.
		l.ErrorContext(ctx, "Failed to mark slot unavailable",
			slog.String("slotID", slot.ID.String()), slog.Any("error", err))
		span.RecordError(err)
	}

	l.InfoContext(ctx, "Booking created",
		slog.String("bookingID", booking.ID.String()),
		slog.Bool("externalConfirmed", externalBookingID != nil))
	span.SetStatus(codes.Ok, "Booking created")
	return booking, nil
}

// placeExternalBooking asks the chosen platform to confirm the reservation.
// A missing client (direct bookings) or a platform failure yields nil.
func (s *ServiceImpl) placeExternalBooking(ctx context.Context, params types.CreateBookingParams) *string {
	client, ok := s.platforms[params.Platform]
	if !ok {
		return nil
	}

	guestName := params.GuestName
	if guestName == "" {
		guestName = "Guest"
	}

	req := platform.BookingRequest{
		RestaurantID: params.RestaurantID,
		Date:         params.Date,
		Time:         params.Time,
		PartySize:    params.PartySize,
		GuestName:    guestName,
		GuestEmail:   params.GuestEmail,
	}
	if params.SpecialRequests != nil {
		req.SpecialRequests = *params.SpecialRequests
	}

	conf, err := client.CreateBooking(ctx, req)
	if err != nil {
		// The reservation still goes through as a direct booking.
		s.logger.WarnContext(ctx, "External platform booking failed",
			slog.String("platform", client.Name()), slog.Any("error", err))
		return nil
	}
	return &conf.ConfirmationID
}

func (s *ServiceImpl) ListForUser(ctx context.Context, userID uuid.UUID) ([]types.BookingWithDetails, error) {
	ctx, span := otel.Tracer("BookingService").Start(ctx, "ListForUser", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	bookings, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to list bookings")
		return nil, fmt.Errorf("error listing bookings: %w", err)
	}
	return bookings, nil
}

func (s *ServiceImpl) Cancel(ctx context.Context, userID, bookingID uuid.UUID) error {
	ctx, span := otel.Tracer("BookingService").Start(ctx, "Cancel", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
		attribute.String("booking.id", bookingID.String()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Cancel"), slog.String("bookingID", bookingID.String()))

	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to fetch booking", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to fetch booking")
		return fmt.Errorf("error fetching booking: %w", err)
	}
	if booking == nil {
		return types.ErrNotFound
	}
	if booking.UserID != userID {
		return types.ErrForbidden
	}
	if booking.Status == types.BookingStatusCancelled {
		return nil
	}

	if booking.ExternalBookingID != nil {
		if client, ok := s.platforms[booking.Platform]; ok {
			if err := client.CancelBooking(ctx, *booking.ExternalBookingID); err != nil {
				// Local state wins; the platform-side record is reconciled
				// out of band.
				l.WarnContext(ctx, "External platform cancellation failed",
					slog.String("platform", client.Name()), slog.Any("error", err))
				span.RecordError(err)
			}
		}
	}

	if err := s.repo.UpdateStatus(ctx, bookingID, types.BookingStatusCancelled); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to cancel booking")
		return fmt.Errorf("error cancelling booking: %w", err)
	}

	l.InfoContext(ctx, "Booking cancelled")
	span.SetStatus(codes.Ok, "Booking cancelled")
	return nil
}
