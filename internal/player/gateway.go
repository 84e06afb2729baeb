// Package player hands a stream URL to an audio backend and blocks until
// playback ends.
package player

import (
	"context"
	"fmt"
)

// Status is how a playback ended.
type Status int

const (
	StatusCompleted Status = iota
	StatusUserQuit
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusCompleted:
		return "completed"
	case StatusUserQuit:
		return "user quit"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Gateway plays one stream. Play blocks until the stream ends, ctx is
// cancelled (StatusUserQuit) or playback fails (StatusError with a non-nil
// error).
type Gateway interface {
	Play(ctx context.Context, url string) (Status, error)
}

// Backend names accepted by New.
const (
	BackendMPV    = "mpv"
	BackendNative = "native"
)

// Options configures the gateway built by New.
type Options struct {
	Backend   string
	MPVPath   string
	Volume    int
	UserAgent string
	OnTitle   func(title string)
}

// New returns the gateway for opts.Backend.
func New(opts Options) (Gateway, error) {
	switch opts.Backend {
	case "", BackendMPV:
		return NewMPV(opts.MPVPath, opts.Volume), nil
	case BackendNative:
		n := NewNative(opts.Volume)
		if opts.UserAgent != "" {
			n.UserAgent = opts.UserAgent
		}
		n.OnTitle = opts.OnTitle
		return n, nil
	default:
		return nil, fmt.Errorf("unknown player %q, want %q or %q", opts.Backend, BackendMPV, BackendNative)
	}
}

func clampVolume(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
