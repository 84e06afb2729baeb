// Package api provides the client for the radio.garden directory API.
package api

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/rupestre-campos/pi-world-radio/internal/fetch"
)

const DefaultBaseURL = "https://radio.garden/api"

// Place is one location of the directory listing.
type Place struct {
	ID      string
	Title   string
	Country string
	Lon     float64
	Lat     float64
}

// Channel is one station offered at a location.
type Channel struct {
	Title string
	// Ref is the path-like reference of the channel, e.g. "/listen/kiss-fm/a1b2c3".
	Ref string
}

// GardenClient talks to the directory service through a retrying fetch client.
type GardenClient struct {
	fetch   *fetch.Client
	baseURL string
}

// NewGardenClient creates a client rooted at baseURL (DefaultBaseURL when empty).
func NewGardenClient(fetcher *fetch.Client, baseURL string) *GardenClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &GardenClient{
		fetch:   fetcher,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

type placesResponse struct {
	Data struct {
		List []placeJSON `json:"list"`
	} `json:"data"`
}

type placeJSON struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Country string    `json:"country"`
	Geo     []float64 `json:"geo"`
}

// GetPlaces fetches every location of the directory. Records without an id,
// a title, a country or a two-element geo pair are dropped.
func (c *GardenClient) GetPlaces(ctx context.Context) ([]Place, error) {
	var response placesResponse
	if err := c.fetch.GetJSON(ctx, c.baseURL+"/ara/content/places", &response); err != nil {
		return nil, fmt.Errorf("failed to fetch places: %w", err)
	}

	places := make([]Place, 0, len(response.Data.List))
	dropped := 0
	for _, p := range response.Data.List {
		if p.ID == "" || strings.TrimSpace(p.Title) == "" || strings.TrimSpace(p.Country) == "" || len(p.Geo) != 2 {
			dropped++
			continue
		}
		places = append(places, Place{
			ID:      p.ID,
			Title:   p.Title,
			Country: p.Country,
			Lon:     p.Geo[0],
			Lat:     p.Geo[1],
		})
	}

	if dropped > 0 {
		log.Debug().Int("dropped", dropped).Msg("Skipped malformed places")
	}
	return places, nil
}

type channelsResponse struct {
	Data struct {
		Content []struct {
			Items []channelItem `json:"items"`
		} `json:"content"`
	} `json:"data"`
}

// Older responses carry title/href on the item itself, newer ones nest a page.
type channelItem struct {
	Title string `json:"title"`
	Href  string `json:"href"`
	Page  *struct {
		Title string `json:"title"`
		URL   string `json:"url"`
	} `json:"page"`
}

func (i channelItem) channel() (Channel, bool) {
	ch := Channel{Title: i.Title, Ref: i.Href}
	if i.Page != nil {
		if i.Page.Title != "" {
			ch.Title = i.Page.Title
		}
		if i.Page.URL != "" {
			ch.Ref = i.Page.URL
		}
	}
	if strings.TrimSpace(ch.Title) == "" || strings.Trim(ch.Ref, "/ ") == "" {
		return Channel{}, false
	}
	return ch, true
}

// GetChannels fetches the stations of one location, in the order the
// service lists them.
func (c *GardenClient) GetChannels(ctx context.Context, locationID string) ([]Channel, error) {
	if locationID == "" {
		return nil, fmt.Errorf("location id is required")
	}

	endpoint := fmt.Sprintf("%s/ara/content/page/%s/channels", c.baseURL, url.PathEscape(locationID))

	var response channelsResponse
	if err := c.fetch.GetJSON(ctx, endpoint, &response); err != nil {
		return nil, fmt.Errorf("failed to fetch channels for location %s: %w", locationID, err)
	}

	if len(response.Data.Content) == 0 {
		return []Channel{}, nil
	}

	items := response.Data.Content[0].Items
	channels := make([]Channel, 0, len(items))
	for _, item := range items {
		if ch, ok := item.channel(); ok {
			channels = append(channels, ch)
		}
	}
	return channels, nil
}
