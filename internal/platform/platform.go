// Package platform holds the booking platform integrations. The Resy and
// OpenTable clients in this package are simulations that mimic the latency
// and failure characteristics of the real APIs so the booking flow can be
// exercised end to end without live credentials.
package platform

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Errors returned by platform clients. Callers treat these as transient
// upstream failures, not as local data errors.
var (
	ErrSlotTaken          = errors.New("platform: time slot no longer available")
	ErrBookingNotFound    = errors.New("platform: booking not found")
	ErrModifyUnavailable  = errors.New("platform: requested time not available")
	ErrCancellationFailed = errors.New("platform: past cancellation window")
)

// Availability is a single bookable slot as reported by a platform.
type Availability struct {
	Date      time.Time `json:"date"`
	Time      string    `json:"time"`
	PartySize int       `json:"partySize"`
	Available bool      `json:"available"`
	Token     string    `json:"token,omitempty"`
}

// BookingRequest carries everything a platform needs to place a reservation.
type BookingRequest struct {
	Token           string
	RestaurantID    uuid.UUID
	Date            time.Time
	Time            string
	PartySize       int
	GuestName       string
	GuestEmail      string
	GuestPhone      string
	SpecialRequests string
}

// Confirmation is the platform's record of a placed reservation.
type Confirmation struct {
	ConfirmationID string
	RestaurantID   uuid.UUID
	Date           time.Time
	Time           string
	PartySize      int
	Status         string
	GuestName      string
	GuestEmail     string
}

// Client is the surface shared by every booking platform integration.
type Client interface {
	Name() string
	GetAvailability(ctx context.Context, restaurantID uuid.UUID, date time.Time, partySize int) ([]Availability, error)
	CreateBooking(ctx context.Context, req BookingRequest) (*Confirmation, error)
	GetBooking(ctx context.Context, confirmationID string) (*Confirmation, error)
	CancelBooking(ctx context.Context, confirmationID string) error
	ModifyBooking(ctx context.Context, confirmationID string, newDate *time.Time, newTime *string, newPartySize *int) (*Confirmation, error)
}

const confirmationAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// sleep waits for the simulated network delay or until the context is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func randomID(rng *rand.Rand, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = confirmationAlphabet[rng.Intn(len(confirmationAlphabet))]
	}
	return string(b)
}

func randomToken(rng *rand.Rand, prefix string, n int) string {
	const chars = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, n)
	for i := range b {
		b[i] = chars[rng.Intn(len(chars))]
	}
	return prefix + string(b)
}
