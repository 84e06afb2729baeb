package service

import (
	"context"
	"fmt"

	"github.com/rupestre-campos/pi-world-radio/internal/journal"
	"github.com/rupestre-campos/pi-world-radio/internal/station"
)

// StationLookup resolves a chosen station name to a playable record.
type StationLookup interface {
	Lookup(ctx context.Context, country, city, name string) (station.Record, error)
}

// ReplayService serves candidates from a journal read once at creation.
// Chosen stations are looked up in the live directory.
type ReplayService struct {
	index *journal.Index
	live  StationLookup
}

// NewReplayService reads the journal index for one pass.
func NewReplayService(j *journal.Journal, live StationLookup) (*ReplayService, error) {
	index, err := j.ReadIndex()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", j.Path(), err)
	}
	return &ReplayService{index: index, live: live}, nil
}

// Len returns the number of journal entries available.
func (r *ReplayService) Len() int {
	return r.index.Len()
}

func (r *ReplayService) Countries(context.Context) ([]string, error) {
	return r.index.Countries(), nil
}

func (r *ReplayService) Cities(_ context.Context, country string) ([]string, error) {
	return r.index.Cities(country), nil
}

func (r *ReplayService) Stations(_ context.Context, country, city string) ([]string, error) {
	return r.index.Stations(country, city), nil
}

func (r *ReplayService) Lookup(ctx context.Context, country, city, name string) (station.Record, error) {
	return r.live.Lookup(ctx, country, city, name)
}
