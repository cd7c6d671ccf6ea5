//revive:disable-next-line:var-naming
package types

import (
	"time"

	"github.com/google/uuid"
)

// Restaurant is the canonical restaurant record shared by the discovery,
// booking and recommendation layers. Rating is a denormalized average kept in
// step by the reviews domain; 0 means "no rating yet".
type Restaurant struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Description      *string   `json:"description,omitempty"`
	Cuisine          string    `json:"cuisine"`
	PriceRange       int       `json:"price_range"` // 1-4
	Neighborhood     string    `json:"neighborhood"`
	Address          string    `json:"address"`
	Phone            *string   `json:"phone,omitempty"`
	Website          *string   `json:"website,omitempty"`
	ImageURL         *string   `json:"image_url,omitempty"`
	Rating           float64   `json:"rating"`
	ReviewCount      int       `json:"review_count"`
	Features         []string  `json:"features"`
	ResyEnabled      bool      `json:"resy_enabled"`
	OpenTableEnabled bool      `json:"opentable_enabled"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// HasRating reports whether the restaurant has accumulated a rating. The
// similarity scorer only applies its rating term when both sides have one.
func (r *Restaurant) HasRating() bool {
	return r.Rating > 0
}

// RestaurantWithReviews is the detail-page payload.
type RestaurantWithReviews struct {
	Restaurant
	Reviews []Review `json:"reviews"`
}

// RestaurantFilter carries the optional browse/search parameters.
type RestaurantFilter struct {
	Cuisine      string     `json:"cuisine,omitempty"`
	PriceRange   *int       `json:"price_range,omitempty"`
	Neighborhood string     `json:"neighborhood,omitempty"`
	Search       string     `json:"search,omitempty"`
	Date         *time.Time `json:"date,omitempty"`
	Time         string     `json:"time,omitempty"`
	PartySize    *int       `json:"party_size,omitempty"`

	// MatchedCuisines and MatchedFeatures are filled in by the search layer
	// from keywords detected in the free-text query. They widen the search,
	// they never narrow it.
	MatchedCuisines []string `json:"-"`
	MatchedFeatures []string `json:"-"`
}
