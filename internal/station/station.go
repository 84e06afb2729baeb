// Package station defines playable station records, how they are listed for a
// location and how their stream URLs are built.
package station

import (
	"sort"
	"strings"
)

// Record is a playable station at one location. Records are fetched fresh for
// every city selection and never persisted.
type Record struct {
	Title     string
	StreamRef string
	Country   string
	City      string
	Lon       float64
	Lat       float64
}

// ChannelID returns the trailing path segment of StreamRef.
func (r Record) ChannelID() string {
	ref := strings.TrimSpace(r.StreamRef)
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	ref = strings.TrimRight(ref, "/")
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		ref = ref[i+1:]
	}
	return ref
}

// Stations maps station titles to records. When a location lists the same
// title twice, the later record wins.
type Stations map[string]Record

// Names returns the sorted station titles.
func (s Stations) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Merge copies other into s, overwriting titles already present.
func (s Stations) Merge(other Stations) {
	for title, rec := range other {
		s[title] = rec
	}
}
