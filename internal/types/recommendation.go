//revive:disable-next-line:var-naming
package types

import "github.com/google/uuid"

// RestaurantBookingCount is a (restaurant, recent booking volume) pair used
// by the trending ranking.
type RestaurantBookingCount struct {
	RestaurantID uuid.UUID `json:"restaurant_id"`
	BookingCount int       `json:"booking_count"`
}

// UserOverlap is a neighbor candidate for collaborative filtering: another
// user together with how many of their bookings fall on restaurants the
// target user has also booked.
type UserOverlap struct {
	UserID       uuid.UUID `json:"user_id"`
	OverlapCount int       `json:"overlap_count"`
}
