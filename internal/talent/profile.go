// Package talent holds the candidate data model and the corpus store the
// ranker reads from.
package talent

import (
	"fmt"
	"strings"
)

// Profile is one raw row of the talent CSV export. Field names follow the
// export's column headers.
type Profile struct {
	FirstName   string `mapstructure:"First Name"`
	LastName    string `mapstructure:"Last Name"`
	City        string `mapstructure:"City"`
	Country     string `mapstructure:"Country"`
	Skills      string `mapstructure:"Skills"`
	Description string `mapstructure:"Profile Description"`
	Verticals   string `mapstructure:"Content Verticals"`
	PastWork    string `mapstructure:"Past Creators"`
}

// Name joins first and last name.
func (p Profile) Name() string {
	return strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
}

// Location joins city and country, tolerating either being empty.
func (p Profile) Location() string {
	city := strings.TrimSpace(p.City)
	country := strings.TrimSpace(p.Country)
	switch {
	case city == "":
		return country
	case country == "":
		return city
	default:
		return city + ", " + country
	}
}

// CombinedFeatures builds the descriptive text a profile is embedded under.
// The label layout is part of the cache key: changing it invalidates every
// cached embedding.
func (p Profile) CombinedFeatures() string {
	return fmt.Sprintf("Bio: %s. Skills: %s. Niche: %s. Past Work: %s",
		p.Description, p.Skills, p.Verticals, p.PastWork)
}

// Candidate is one corpus record: an embedded profile. Records are immutable
// after the corpus is built and always carry a non-empty embedding.
type Candidate struct {
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	Skills    string    `json:"skills"`
	Bio       string    `json:"bio"`
	Verticals string    `json:"verticals"`
	PastWork  string    `json:"past_work"`
	Embedding []float32 `json:"embedding"`
}
