// Package service provides the candidate sources a selection pass reads:
// the live directory and the replay of a journal.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/rupestre-campos/pi-world-radio/internal/catalog"
	"github.com/rupestre-campos/pi-world-radio/internal/selection"
	"github.com/rupestre-campos/pi-world-radio/internal/station"
)

// CatalogLoader loads the directory catalog.
type CatalogLoader interface {
	Load(ctx context.Context) (*catalog.Catalog, error)
}

// StationLister lists the live stations of one location.
type StationLister interface {
	List(ctx context.Context, loc catalog.Entry) (station.Stations, error)
}

type listing struct {
	country, city string
	stations      station.Stations
}

// StationService serves live candidates. The catalog is loaded on first use
// and kept for the life of the service; a failed load is retried on the next
// call. Station lists are fetched on every city selection.
type StationService struct {
	loader CatalogLoader
	lister StationLister

	mu      sync.RWMutex
	catalog *catalog.Catalog
	last    *listing
}

// NewStationService creates a live source.
func NewStationService(loader CatalogLoader, lister StationLister) *StationService {
	return &StationService{
		loader: loader,
		lister: lister,
	}
}

// Catalog returns the session catalog, loading it if no load has succeeded yet.
func (s *StationService) Catalog(ctx context.Context) (*catalog.Catalog, error) {
	s.mu.RLock()
	cat := s.catalog
	s.mu.RUnlock()
	if cat != nil {
		return cat, nil
	}

	cat, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.catalog = cat
	s.mu.Unlock()

	log.Debug().Int("locations", cat.Len()).Int("countries", len(cat.Countries())).Msg("Catalog ready")
	return cat, nil
}

func (s *StationService) Countries(ctx context.Context) ([]string, error) {
	cat, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	return cat.Countries(), nil
}

func (s *StationService) Cities(ctx context.Context, country string) ([]string, error) {
	cat, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	return cat.Cities(country), nil
}

// Stations fetches the stations of every location listed under country and
// city. A failed fetch yields no candidates.
func (s *StationService) Stations(ctx context.Context, country, city string) ([]string, error) {
	stations, err := s.list(ctx, country, city)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", selection.ErrEmptyCandidateSet, err)
	}
	return stations.Names(), nil
}

// Lookup returns the record of a station. The list fetched by the preceding
// Stations call for the same city is tried first; a name missing from it is
// looked up in a fresh listing.
func (s *StationService) Lookup(ctx context.Context, country, city, name string) (station.Record, error) {
	if rec, ok := s.lastListing(country, city)[name]; ok {
		return rec, nil
	}

	stations, err := s.list(ctx, country, city)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return station.Record{}, ctxErr
		}
		return station.Record{}, fmt.Errorf("%w: %w", selection.ErrStationUnavailable, err)
	}

	rec, ok := stations[name]
	if !ok {
		return station.Record{}, fmt.Errorf("%w: %s in %s, %s", selection.ErrStationUnavailable, name, city, country)
	}
	return rec, nil
}

func (s *StationService) lastListing(country, city string) station.Stations {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil || s.last.country != country || s.last.city != city {
		return nil
	}
	return s.last.stations
}

func (s *StationService) list(ctx context.Context, country, city string) (station.Stations, error) {
	cat, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	locations := cat.Locations(country, city)
	if len(locations) == 0 {
		return nil, fmt.Errorf("no location named %s in %s", city, country)
	}

	merged := make(station.Stations)
	var errs []error
	for _, loc := range locations {
		stations, err := s.lister.List(ctx, loc)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			log.Warn().Err(err).Str("location", loc.LocationID).Msg("Station list failed")
			errs = append(errs, err)
			continue
		}
		merged.Merge(stations)
	}

	if len(merged) == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	s.mu.Lock()
	s.last = &listing{country: country, city: city, stations: merged}
	s.mu.Unlock()

	return merged, nil
}
