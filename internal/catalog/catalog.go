// Package catalog holds the country → city hierarchy of the radio directory
// and the snapshot cache it is loaded through.
package catalog

import (
	"sort"

	"github.com/rupestre-campos/pi-world-radio/internal/api"
	"github.com/rupestre-campos/pi-world-radio/internal/translit"
)

// Entry is one location of the directory.
type Entry struct {
	Country    string
	City       string
	LocationID string
	Lon        float64
	Lat        float64
}

type entryKey struct {
	country, city string
	lon, lat      float64
}

// Catalog is an immutable index of entries by country and city.
//
// A city name is unique within a country. When the directory lists several
// locations under the same name at different coordinates, all of them are kept
// under that city; the first one seen is its primary location.
type Catalog struct {
	entries   []Entry
	countries []string
	cities    map[string][]string
	locations map[string]map[string][]Entry
}

// New builds a catalog. Entries repeating the country, city and coordinates
// of an earlier one are dropped.
func New(entries []Entry) *Catalog {
	c := &Catalog{
		cities:    make(map[string][]string),
		locations: make(map[string]map[string][]Entry),
	}

	seen := make(map[entryKey]bool, len(entries))
	for _, e := range entries {
		if e.Country == "" || e.City == "" {
			continue
		}
		key := entryKey{e.Country, e.City, e.Lon, e.Lat}
		if seen[key] {
			continue
		}
		seen[key] = true
		c.entries = append(c.entries, e)

		byCity, ok := c.locations[e.Country]
		if !ok {
			byCity = make(map[string][]Entry)
			c.locations[e.Country] = byCity
			c.countries = append(c.countries, e.Country)
		}
		if _, ok := byCity[e.City]; !ok {
			c.cities[e.Country] = append(c.cities[e.Country], e.City)
		}
		byCity[e.City] = append(byCity[e.City], e)
	}

	sort.Strings(c.countries)
	for country := range c.cities {
		sort.Strings(c.cities[country])
	}
	return c
}

// FromPlaces converts directory places into a catalog, folding names so they
// can be typed without accents.
func FromPlaces(places []api.Place) *Catalog {
	entries := make([]Entry, 0, len(places))
	for _, p := range places {
		entries = append(entries, Entry{
			Country:    translit.Fold(p.Country),
			City:       translit.Fold(p.Title),
			LocationID: p.ID,
			Lon:        p.Lon,
			Lat:        p.Lat,
		})
	}
	return New(entries)
}

// Len returns the number of distinct locations.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Countries returns the sorted distinct countries.
func (c *Catalog) Countries() []string {
	result := make([]string, len(c.countries))
	copy(result, c.countries)
	return result
}

// Cities returns the sorted distinct cities of country.
func (c *Catalog) Cities(country string) []string {
	cities := c.cities[country]
	result := make([]string, len(cities))
	copy(result, cities)
	return result
}

// Locations returns every location listed under country and city, primary first.
func (c *Catalog) Locations(country, city string) []Entry {
	locations := c.locations[country][city]
	result := make([]Entry, len(locations))
	copy(result, locations)
	return result
}
