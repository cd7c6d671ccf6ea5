package restaurants

import (
	a "github.com/petar-dambovaliev/aho-corasick"
)

// Keyword matching for free-text search. A query like "cozy italian place
// with a patio" should match cuisine = Italian and the patio feature even
// though neither appears in the restaurant's name or description.
var (
	keywordBuilder = a.NewAhoCorasickBuilder(a.Opts{
		AsciiCaseInsensitive: true,
		MatchOnlyWholeWords:  true,
	})

	keywordMatcher = keywordBuilder.Build(keywordList())

	// Cuisine keywords map to the canonical cuisine label stored on the
	// restaurants table.
	keywordToCuisine = map[string]string{
		"italian": "Italian", "pasta": "Italian", "pizza": "Italian",
		"japanese": "Japanese", "sushi": "Japanese", "ramen": "Japanese",
		"mexican": "Mexican", "taco": "Mexican", "tacos": "Mexican",
		"chinese": "Chinese", "dim": "Chinese", "dumpling": "Chinese",
		"french": "French", "bistro": "French",
		"indian": "Indian", "curry": "Indian",
		"thai":     "Thai",
		"korean":   "Korean", "bbq": "Korean",
		"american": "American", "burger": "American", "burgers": "American",
		"mediterranean": "Mediterranean", "greek": "Mediterranean",
		"spanish": "Spanish", "tapas": "Spanish",
		"seafood": "Seafood", "oyster": "Seafood", "oysters": "Seafood",
		"steak": "Steakhouse", "steakhouse": "Steakhouse",
		"vietnamese": "Vietnamese", "pho": "Vietnamese",
	}

	// Feature keywords map to the feature tags stored on restaurants.
	keywordToFeature = map[string]string{
		"patio":      "outdoor seating",
		"outdoor":    "outdoor seating",
		"terrace":    "outdoor seating",
		"rooftop":    "rooftop",
		"romantic":   "romantic",
		"vegan":      "vegan options",
		"vegetarian": "vegetarian options",
		"cocktails":  "craft cocktails",
		"wine":       "wine bar",
		"brunch":     "brunch",
		"kids":       "family friendly",
		"family":     "family friendly",
		"quiet":      "quiet",
		"lively":     "lively",
		"view":       "view",
	}
)

func keywordList() []string {
	words := make([]string, 0, len(keywordToCuisine)+len(keywordToFeature))
	for w := range keywordToCuisine {
		words = append(words, w)
	}
	for w := range keywordToFeature {
		words = append(words, w)
	}
	return words
}

// detectKeywords scans the free-text query and returns the cuisines and
// features it mentions, deduplicated, preserving first-seen order.
func detectKeywords(query string) (cuisines, features []string) {
	seenCuisine := make(map[string]struct{})
	seenFeature := make(map[string]struct{})

	for _, match := range keywordMatcher.FindAll(query) {
		word := query[match.Start():match.End()]
		if cuisine, ok := keywordToCuisine[normalizeKeyword(word)]; ok {
			if _, dup := seenCuisine[cuisine]; !dup {
				seenCuisine[cuisine] = struct{}{}
				cuisines = append(cuisines, cuisine)
			}
			continue
		}
		if feature, ok := keywordToFeature[normalizeKeyword(word)]; ok {
			if _, dup := seenFeature[feature]; !dup {
				seenFeature[feature] = struct{}{}
				features = append(features, feature)
			}
		}
	}
	return cuisines, features
}

func normalizeKeyword(word string) string {
	b := []byte(word)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
