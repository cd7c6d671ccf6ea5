//revive:disable-next-line:var-naming
package types

import (
	"time"

	"github.com/google/uuid"
)

// UserPreferences captures a user's stated dining preferences. A user may
// have none; the recommendation engine treats absence as "no preference".
type UserPreferences struct {
	ID                     uuid.UUID `json:"id"`
	UserID                 uuid.UUID `json:"user_id"`
	CuisinePreferences     []string  `json:"cuisine_preferences"`
	PriceRangeMin          int       `json:"price_range_min"`
	PriceRangeMax          int       `json:"price_range_max"`
	DietaryRestrictions    []string  `json:"dietary_restrictions"`
	PreferredNeighborhoods []string  `json:"preferred_neighborhoods"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// UpdatePreferencesParams is a partial update; nil fields are left untouched.
type UpdatePreferencesParams struct {
	CuisinePreferences     *[]string `json:"cuisine_preferences,omitempty"`
	PriceRangeMin          *int      `json:"price_range_min,omitempty"`
	PriceRangeMax          *int      `json:"price_range_max,omitempty"`
	DietaryRestrictions    *[]string `json:"dietary_restrictions,omitempty"`
	PreferredNeighborhoods *[]string `json:"preferred_neighborhoods,omitempty"`
}
