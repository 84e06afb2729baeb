package station

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/rupestre-campos/pi-world-radio/internal/api"
	"github.com/rupestre-campos/pi-world-radio/internal/catalog"
	"github.com/rupestre-campos/pi-world-radio/internal/translit"
)

// ChannelSource fetches the stations offered at one location.
type ChannelSource interface {
	GetChannels(ctx context.Context, locationID string) ([]api.Channel, error)
}

// Lister lists the live stations of a location. It never caches.
type Lister struct {
	source ChannelSource
}

// NewLister creates a Lister over source.
func NewLister(source ChannelSource) *Lister {
	return &Lister{source: source}
}

// List fetches the stations of loc. On failure it returns an empty,
// non-nil Stations together with the error.
func (l *Lister) List(ctx context.Context, loc catalog.Entry) (Stations, error) {
	stations := make(Stations)

	channels, err := l.source.GetChannels(ctx, loc.LocationID)
	if err != nil {
		return stations, fmt.Errorf("failed to list stations of %s, %s: %w", loc.City, loc.Country, err)
	}

	for _, ch := range channels {
		title := translit.Fold(ch.Title)
		if title == "" {
			continue
		}
		if prev, ok := stations[title]; ok {
			log.Debug().
				Str("title", title).
				Str("previous", prev.StreamRef).
				Str("ref", ch.Ref).
				Msg("Duplicate station title, keeping the later one")
		}
		stations[title] = Record{
			Title:     title,
			StreamRef: ch.Ref,
			Country:   loc.Country,
			City:      loc.City,
			Lon:       loc.Lon,
			Lat:       loc.Lat,
		}
	}

	log.Debug().Str("location", loc.LocationID).Int("stations", len(stations)).Msg("Stations listed")
	return stations, nil
}
