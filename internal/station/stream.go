package station

import (
	"fmt"
	"strings"
	"time"
)

const (
	DefaultStreamBase = "https://radio.garden/api/ara/content/listen"
	DefaultStreamExt  = "mp3"
)

// StreamBuilder turns a station record into a playable URL of the form
// {Base}/{channelID}/channel.{Ext}?{unix milliseconds}.
type StreamBuilder struct {
	Base string
	Ext  string
	Now  func() time.Time
}

// NewStreamBuilder creates a builder, using defaults for empty values.
func NewStreamBuilder(base, ext string) *StreamBuilder {
	if base == "" {
		base = DefaultStreamBase
	}
	if ext == "" {
		ext = DefaultStreamExt
	}
	return &StreamBuilder{
		Base: strings.TrimRight(base, "/"),
		Ext:  strings.TrimPrefix(ext, "."),
		Now:  time.Now,
	}
}

// Build returns the stream URL of rec. The query value is a cache-busting
// nonce and is not guaranteed to be unique.
func (b *StreamBuilder) Build(rec Record) (string, error) {
	channelID := rec.ChannelID()
	if channelID == "" {
		return "", fmt.Errorf("station %q has no channel reference", rec.Title)
	}

	now := time.Now
	if b.Now != nil {
		now = b.Now
	}

	return fmt.Sprintf("%s/%s/channel.%s?%d", b.Base, channelID, b.Ext, now().UnixMilli()), nil
}
