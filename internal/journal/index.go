package journal

import "sort"

// Index maps country → city → set of station names.
type Index struct {
	entries map[string]map[string]map[string]struct{}
	count   int
	skipped int
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{entries: make(map[string]map[string]map[string]struct{})}
}

// Add inserts rec, ignoring duplicates.
func (i *Index) Add(rec Record) {
	cities, ok := i.entries[rec.Country]
	if !ok {
		cities = make(map[string]map[string]struct{})
		i.entries[rec.Country] = cities
	}
	stations, ok := cities[rec.Location]
	if !ok {
		stations = make(map[string]struct{})
		cities[rec.Location] = stations
	}
	if _, ok := stations[rec.Station]; ok {
		return
	}
	stations[rec.Station] = struct{}{}
	i.count++
}

// Contains reports whether rec's station is recorded under its country and location.
func (i *Index) Contains(rec Record) bool {
	_, ok := i.entries[rec.Country][rec.Location][rec.Station]
	return ok
}

// Len returns the number of distinct records.
func (i *Index) Len() int {
	return i.count
}

// Skipped returns how many lines were unreadable when the index was loaded.
func (i *Index) Skipped() int {
	return i.skipped
}

// Countries returns the sorted recorded countries.
func (i *Index) Countries() []string {
	return sortedKeys(i.entries)
}

// Cities returns the sorted recorded cities of country.
func (i *Index) Cities(country string) []string {
	return sortedKeys(i.entries[country])
}

// Stations returns the sorted recorded stations of country and city.
func (i *Index) Stations(country, city string) []string {
	return sortedKeys(i.entries[country][city])
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
