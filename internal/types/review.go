//revive:disable-next-line:var-naming
package types

import (
	"time"

	"github.com/google/uuid"
)

// LikedRatingThreshold is the review rating from which a past booking counts
// as a "liked restaurant" for content-based recommendation scoring.
const LikedRatingThreshold = 4

type Review struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"user_id"`
	RestaurantID uuid.UUID  `json:"restaurant_id"`
	BookingID    *uuid.UUID `json:"booking_id,omitempty"`
	Rating       int        `json:"rating"` // 1-5
	Comment      *string    `json:"comment,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type CreateReviewParams struct {
	RestaurantID uuid.UUID  `json:"restaurant_id"`
	BookingID    *uuid.UUID `json:"booking_id,omitempty"`
	Rating       int        `json:"rating"`
	Comment      *string    `json:"comment,omitempty"`
}
