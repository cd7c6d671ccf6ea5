//revive:disable-next-line:var-naming
package types

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Platform identifies which reservation system confirmed a booking.
type Platform string

const (
	PlatformResy      Platform = "resy"
	PlatformOpenTable Platform = "opentable"
	PlatformDirect    Platform = "direct"
)

type Booking struct {
	ID                uuid.UUID     `json:"id"`
	UserID            uuid.UUID     `json:"user_id"`
	RestaurantID      uuid.UUID     `json:"restaurant_id"`
	Date              time.Time     `json:"date"`
	Time              string        `json:"time"` // "HH:MM"
	PartySize         int           `json:"party_size"`
	Status            BookingStatus `json:"status"`
	Platform          Platform      `json:"platform"`
	ExternalBookingID *string       `json:"external_booking_id,omitempty"`
	SpecialRequests   *string       `json:"special_requests,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// BookingWithDetails joins a booking with its restaurant and, when the guest
// left one, the review tied to the booking.
type BookingWithDetails struct {
	Booking
	Restaurant *Restaurant `json:"restaurant,omitempty"`
	Review     *Review     `json:"review,omitempty"`
}

// CreateBookingParams is the request payload for creating a reservation.
type CreateBookingParams struct {
	RestaurantID    uuid.UUID `json:"restaurant_id"`
	Date            time.Time `json:"date"`
	Time            string    `json:"time"`
	PartySize       int       `json:"party_size"`
	Platform        Platform  `json:"platform"`
	SpecialRequests *string   `json:"special_requests,omitempty"`
	GuestName       string    `json:"guest_name,omitempty"`
	GuestEmail      string    `json:"guest_email,omitempty"`
}

// AvailabilitySlot is a bookable table window published by a platform.
type AvailabilitySlot struct {
	ID           uuid.UUID `json:"id"`
	RestaurantID uuid.UUID `json:"restaurant_id"`
	Date         time.Time `json:"date"`
	Time         string    `json:"time"`
	PartySize    int       `json:"party_size"`
	Available    bool      `json:"available"`
	Platform     Platform  `json:"platform"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
