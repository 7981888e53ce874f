// Package catalog holds the immutable restaurant dataset the agent
// searches and books against.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

//go:embed data/restaurants.json
var restaurantsRaw []byte

// Restaurant is one bookable venue. Immutable after load.
type Restaurant struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Location string   `json:"location"`
	Tags     []string `json:"tags"`
	Capacity int      `json:"capacity"`
}

// Catalog is the read-only restaurant registry plus the tag vocabulary
// derived from it at load time. Safe for concurrent use.
type Catalog struct {
	restaurants []Restaurant
	byID        map[string]Restaurant
	tags        []string
}

// Load parses the embedded dataset. Call once at startup.
func Load() (*Catalog, error) {
	var restaurants []Restaurant
	if err := json.Unmarshal(restaurantsRaw, &restaurants); err != nil {
		return nil, fmt.Errorf("parse restaurant dataset: %w", err)
	}
	c := New(restaurants)
	log.Info().
		Int("restaurants", len(c.restaurants)).
		Int("tags", len(c.tags)).
		Msg("restaurant catalog loaded")
	return c, nil
}

// New builds a catalog from an explicit restaurant list.
func New(restaurants []Restaurant) *Catalog {
	c := &Catalog{
		restaurants: append([]Restaurant(nil), restaurants...),
		byID:        make(map[string]Restaurant, len(restaurants)),
	}
	seen := make(map[string]struct{})
	for _, r := range c.restaurants {
		c.byID[r.ID] = r
		for _, tag := range r.Tags {
			if _, ok := seen[tag]; !ok {
				seen[tag] = struct{}{}
				c.tags = append(c.tags, tag)
			}
		}
	}
	sort.Strings(c.tags)
	return c
}

// Tags returns the fixed tag vocabulary, sorted.
func (c *Catalog) Tags() []string {
	return append([]string(nil), c.tags...)
}

// ByID looks a restaurant up by its stable identifier.
func (c *Catalog) ByID(id string) (Restaurant, bool) {
	r, ok := c.byID[id]
	return r, ok
}

// Filter holds the optional search criteria; all provided filters are
// conjunctive. A nil PartySize means the filter is absent; a provided
// non-positive value matches nothing.
type Filter struct {
	Name      string
	Location  string
	Tags      []string
	PartySize *int
}

// Result distinguishes an empty outcome from a list of matches so
// callers can produce different text for each.
type Result struct {
	Restaurants []Restaurant
}

func (r Result) Empty() bool {
	return len(r.Restaurants) == 0
}

// Search returns every restaurant passing all provided filters.
func (c *Catalog) Search(f Filter) Result {
	var out Result
	for _, r := range c.restaurants {
		if matches(r, f) {
			out.Restaurants = append(out.Restaurants, r)
		}
	}
	return out
}

func matches(r Restaurant, f Filter) bool {
	if f.Name != "" && !strings.Contains(strings.ToLower(r.Name), strings.ToLower(f.Name)) {
		return false
	}
	if f.Location != "" && !strings.Contains(strings.ToLower(r.Location), strings.ToLower(f.Location)) {
		return false
	}
	if len(f.Tags) > 0 && !hasAnyTag(r.Tags, f.Tags) {
		return false
	}
	if f.PartySize != nil && (*f.PartySize <= 0 || *f.PartySize > r.Capacity) {
		return false
	}
	return true
}

func hasAnyTag(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if strings.EqualFold(h, w) {
				return true
			}
		}
	}
	return false
}
