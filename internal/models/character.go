package models

import "github.com/spf13/cast"

const AdultAge = 18

// Character is one record fetched from the upstream character source,
// flattened from its nested response shape. Immutable once fetched;
// ID is the dedup and claim key.
type Character struct {
	ID               int    `json:"id"`
	Name             string `json:"name"`
	Image            string `json:"image"`
	Age              string `json:"age,omitempty"`
	SiteURL          string `json:"site_url,omitempty"`
	Favourites       int    `json:"favourites"`
	Series           string `json:"series,omitempty"`
	SeriesPopularity int    `json:"series_popularity,omitempty"`
}

// ParsedAge reads the leading integer of the age label. Upstream ages
// come as free text ("17", "17-18", "August 28"); a label without a
// leading number parses as unknown (0, false).
func (c *Character) ParsedAge() (int, bool) {
	i := 0
	for i < len(c.Age) && c.Age[i] >= '0' && c.Age[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, false
	}
	return cast.ToInt(c.Age[:i]), true
}

// Acceptable reports whether the record passes the client-side filter:
// name and image present, and age either unknown or adult.
func (c *Character) Acceptable() bool {
	if c.Name == "" || c.Image == "" {
		return false
	}
	if age, ok := c.ParsedAge(); ok && age < AdultAge {
		return false
	}
	return true
}

type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// RarityOf buckets a character by favourite count. Display-only.
func RarityOf(c *Character) Rarity {
	switch {
	case c.Favourites >= 10000:
		return RarityLegendary
	case c.Favourites >= 3000:
		return RarityEpic
	case c.Favourites >= 800:
		return RarityUncommon
	default:
		return RarityCommon
	}
}
