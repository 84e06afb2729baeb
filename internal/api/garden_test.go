package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rupestre-campos/pi-world-radio/internal/fetch"
)

func setupTestServer(handler http.HandlerFunc) (*httptest.Server, *GardenClient) {
	server := httptest.NewServer(handler)
	fetcher := fetch.NewClient(fetch.Options{
		MaxAttempts: 2,
		Backoff:     time.Millisecond,
		BackoffMode: fetch.BackoffFixed,
	})
	return server, NewGardenClient(fetcher, server.URL)
}

func TestGetPlaces(t *testing.T) {
	server, client := setupTestServer(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ara/content/places" {
			t.Errorf("Expected path /ara/content/places, got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"list":[
			{"id":"lima1","title":"Lima","country":"Peru","geo":[-77.03,-12.04]},
			{"id":"tok1","title":"Tokyo","country":"Japan","geo":[139.69,35.68]},
			{"id":"","title":"Nowhere","country":"Peru","geo":[0,0]},
			{"id":"bad","title":"Broken","country":"Peru","geo":[1]}
		]}}`))
	})
	defer server.Close()

	places, err := client.GetPlaces(context.Background())
	if err != nil {
		t.Fatalf("GetPlaces() error = %v", err)
	}

	if len(places) != 2 {
		t.Fatalf("GetPlaces() returned %d places, want 2", len(places))
	}
	if places[0].ID != "lima1" || places[0].Country != "Peru" || places[0].Title != "Lima" {
		t.Errorf("places[0] = %+v", places[0])
	}
	if places[1].Lon != 139.69 || places[1].Lat != 35.68 {
		t.Errorf("places[1] coordinates = (%v, %v), want (139.69, 35.68)", places[1].Lon, places[1].Lat)
	}
}

func TestGetPlacesServerError(t *testing.T) {
	server, client := setupTestServer(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	defer server.Close()

	_, err := client.GetPlaces(context.Background())
	if !errors.Is(err, fetch.ErrTransient) {
		t.Errorf("GetPlaces() error = %v, want fetch.ErrTransient", err)
	}
}

func TestGetChannels(t *testing.T) {
	server, client := setupTestServer(func(w http.ResponseWriter, r *http.Request) {
		expectedPath := "/ara/content/page/lima1/channels"
		if r.URL.Path != expectedPath {
			t.Errorf("Expected path %s, got %s", expectedPath, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"content":[
			{"items":[
				{"page":{"title":"Radio X","url":"/listen/radio-x/abc123"}},
				{"title":"Radio Y","href":"/listen/radio-y/def456"},
				{"title":"","href":"/listen/nameless/zzz"},
				{"page":{"title":"No Ref","url":""}}
			]},
			{"items":[{"title":"Nearby","href":"/listen/nearby/nnn"}]}
		]}}`))
	})
	defer server.Close()

	channels, err := client.GetChannels(context.Background(), "lima1")
	if err != nil {
		t.Fatalf("GetChannels() error = %v", err)
	}

	want := []Channel{
		{Title: "Radio X", Ref: "/listen/radio-x/abc123"},
		{Title: "Radio Y", Ref: "/listen/radio-y/def456"},
	}
	if len(channels) != len(want) {
		t.Fatalf("GetChannels() returned %d channels, want %d: %+v", len(channels), len(want), channels)
	}
	for i := range want {
		if channels[i] != want[i] {
			t.Errorf("channels[%d] = %+v, want %+v", i, channels[i], want[i])
		}
	}
}

func TestGetChannelsEmptyContent(t *testing.T) {
	server, client := setupTestServer(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"content":[]}}`))
	})
	defer server.Close()

	channels, err := client.GetChannels(context.Background(), "x")
	if err != nil {
		t.Fatalf("GetChannels() error = %v", err)
	}
	if len(channels) != 0 {
		t.Errorf("GetChannels() returned %d channels, want 0", len(channels))
	}
}

func TestGetChannelsRequiresLocation(t *testing.T) {
	client := NewGardenClient(fetch.NewClient(fetch.Options{}), "")
	if _, err := client.GetChannels(context.Background(), ""); err == nil {
		t.Error("GetChannels(\"\") should return an error")
	}
}

func TestNewGardenClientDefaults(t *testing.T) {
	client := NewGardenClient(fetch.NewClient(fetch.Options{}), "")
	if client.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %q, want %q", client.baseURL, DefaultBaseURL)
	}

	client = NewGardenClient(fetch.NewClient(fetch.Options{}), "http://example.com/api/")
	if client.baseURL != "http://example.com/api" {
		t.Errorf("baseURL = %q, want trailing slash trimmed", client.baseURL)
	}
}
