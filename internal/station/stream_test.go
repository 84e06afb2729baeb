package station

import (
	"strings"
	"testing"
	"time"
)

func TestBuild(t *testing.T) {
	fixed := time.UnixMilli(1700000000123)
	b := NewStreamBuilder("", "")
	b.Now = func() time.Time { return fixed }

	url, err := b.Build(Record{Title: "Radio X", StreamRef: "/listen/radio-x/abc123"})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	want := "https://radio.garden/api/ara/content/listen/abc123/channel.mp3?1700000000123"
	if url != want {
		t.Errorf("Build() = %q, want %q", url, want)
	}
}

func TestBuildCustomTemplate(t *testing.T) {
	b := NewStreamBuilder("http://localhost:8001/listen/", ".aac")
	b.Now = func() time.Time { return time.UnixMilli(42) }

	url, err := b.Build(Record{StreamRef: "/listen/y/def"})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if url != "http://localhost:8001/listen/def/channel.aac?42" {
		t.Errorf("Build() = %q", url)
	}
}

func TestBuildWithoutChannel(t *testing.T) {
	if _, err := NewStreamBuilder("", "").Build(Record{Title: "Broken"}); err == nil {
		t.Error("Build() should fail without a stream reference")
	}
}

func TestBuildNonceFollowsClock(t *testing.T) {
	b := NewStreamBuilder("", "")
	now := time.UnixMilli(1000)
	b.Now = func() time.Time { return now }

	first, _ := b.Build(Record{StreamRef: "/x/abc"})
	now = now.Add(5 * time.Millisecond)
	second, _ := b.Build(Record{StreamRef: "/x/abc"})

	if !strings.HasSuffix(first, "?1000") || !strings.HasSuffix(second, "?1005") {
		t.Errorf("nonces = %q, %q; want ?1000 and ?1005", first, second)
	}
}
