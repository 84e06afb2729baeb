package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/rupestre-campos/pi-world-radio/internal/api"
	"github.com/rupestre-campos/pi-world-radio/internal/cache"
)

// ErrNetworkUnavailable is returned when the directory cannot be fetched and
// no snapshot exists to fall back to.
var ErrNetworkUnavailable = errors.New("directory unavailable and no cached catalog")

// Source fetches the full list of places from the directory.
type Source interface {
	GetPlaces(ctx context.Context) ([]api.Place, error)
}

// Cache loads the catalog, preferring a stale snapshot over no catalog at all.
type Cache struct {
	source Source
	file   *cache.File
}

// NewCache creates a catalog cache backed by the snapshot file.
func NewCache(source Source, file *cache.File) *Cache {
	return &Cache{
		source: source,
		file:   file,
	}
}

// Load returns the snapshot when it is younger than the expiry. Otherwise it
// fetches the directory and replaces the snapshot; if that fails, any snapshot
// is used regardless of age.
func (c *Cache) Load(ctx context.Context) (*Catalog, error) {
	if c.file.Fresh() {
		cat, err := c.readSnapshot()
		if err == nil {
			log.Debug().Str("file", c.file.Path()).Int("locations", cat.Len()).Msg("Catalog loaded from cache")
			return cat, nil
		}
		log.Warn().Err(err).Str("file", c.file.Path()).Msg("Cached catalog unreadable, fetching")
	}

	return c.Refresh(ctx)
}

// Refresh fetches the directory regardless of snapshot age, falling back to
// the snapshot when the fetch fails.
func (c *Cache) Refresh(ctx context.Context) (*Catalog, error) {
	cat, fetchErr := c.fetch(ctx)
	if fetchErr == nil {
		return cat, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	if c.file.Exists() {
		cat, err := c.readSnapshot()
		if err == nil {
			age, _ := c.file.Age()
			log.Warn().Err(fetchErr).Dur("age", age).Msg("Directory fetch failed, using cached catalog")
			return cat, nil
		}
		log.Warn().Err(err).Str("file", c.file.Path()).Msg("Cached catalog unreadable")
	}

	return nil, fmt.Errorf("%w: %w", ErrNetworkUnavailable, fetchErr)
}

func (c *Cache) fetch(ctx context.Context) (*Catalog, error) {
	places, err := c.source.GetPlaces(ctx)
	if err != nil {
		return nil, err
	}

	cat := FromPlaces(places)
	if cat.Len() == 0 {
		return nil, fmt.Errorf("directory returned no places")
	}

	data, err := cat.Marshal()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to encode catalog snapshot")
		return cat, nil
	}
	if err := c.file.Write(data); err != nil {
		log.Warn().Err(err).Str("file", c.file.Path()).Msg("Failed to save catalog snapshot")
	} else {
		log.Debug().Str("file", c.file.Path()).Int("locations", cat.Len()).Msg("Catalog fetched and cached")
	}
	return cat, nil
}

func (c *Cache) readSnapshot() (*Catalog, error) {
	data, err := c.file.Read()
	if err != nil {
		return nil, err
	}
	return Unmarshal(data)
}
