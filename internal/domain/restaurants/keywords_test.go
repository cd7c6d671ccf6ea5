package restaurants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectKeywords(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		wantCuisines []string
		wantFeatures []string
	}{
		{
			name:         "cuisine and feature in one query",
			query:        "cozy italian place with a patio",
			wantCuisines: []string{"Italian"},
			wantFeatures: []string{"outdoor seating"},
		},
		{
			name:         "case insensitive",
			query:        "SUSHI near me",
			wantCuisines: []string{"Japanese"},
		},
		{
			name:         "synonyms collapse to one cuisine",
			query:        "pasta or pizza tonight",
			wantCuisines: []string{"Italian"},
		},
		{
			name:         "multiple cuisines keep query order",
			query:        "tacos then ramen",
			wantCuisines: []string{"Mexican", "Japanese"},
		},
		{
			name:         "feature synonyms deduplicate",
			query:        "outdoor terrace with cocktails",
			wantFeatures: []string{"outdoor seating", "craft cocktails"},
		},
		{
			name:  "whole words only",
			query: "sushil winery",
		},
		{
			name:  "no keywords",
			query: "somewhere nice downtown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cuisines, features := detectKeywords(tt.query)
			assert.Equal(t, tt.wantCuisines, cuisines)
			assert.Equal(t, tt.wantFeatures, features)
		})
	}
}
