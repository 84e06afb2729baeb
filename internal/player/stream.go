package player

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Relies on context cancellation to clean up the spawned read goroutine.
type contextReader struct {
	reader  io.Reader
	ctx     context.Context
	timeout time.Duration
}

func (cr *contextReader) Read(p []byte) (n int, err error) {
	select {
	case <-cr.ctx.Done():
		return 0, cr.ctx.Err()
	default:
	}

	timer := time.NewTimer(cr.timeout)
	defer timer.Stop()

	type result struct {
		n   int
		err error
	}
	done := make(chan result, 1)

	go func() {
		n, err := cr.reader.Read(p)
		select {
		case done <- result{n, err}:
		case <-cr.ctx.Done():
		}
	}()

	select {
	case res := <-done:
		return res.n, res.err
	case <-timer.C:
		return 0, fmt.Errorf("read timeout: no data received for %v", cr.timeout)
	case <-cr.ctx.Done():
		return 0, cr.ctx.Err()
	}
}

// icyReader strips SHOUTcast metadata blocks interleaved every metaint bytes
// of audio and reports stream titles found in them.
type icyReader struct {
	r         *bufio.Reader
	metaint   int
	remaining int
	onTitle   func(string)
}

func newICYReader(r io.Reader, metaint int, onTitle func(string)) *icyReader {
	return &icyReader{
		r:         bufio.NewReaderSize(r, NetworkReadSize),
		metaint:   metaint,
		remaining: metaint,
		onTitle:   onTitle,
	}
}

func (ir *icyReader) Read(p []byte) (int, error) {
	if ir.metaint <= 0 {
		return ir.r.Read(p)
	}
	if ir.remaining == 0 {
		if err := ir.readMetadata(); err != nil {
			return 0, err
		}
		ir.remaining = ir.metaint
	}
	if len(p) > ir.remaining {
		p = p[:ir.remaining]
	}
	n, err := ir.r.Read(p)
	ir.remaining -= n
	return n, err
}

func (ir *icyReader) readMetadata() error {
	lenByte, err := ir.r.ReadByte()
	if err != nil {
		return err
	}
	size := int(lenByte) * 16
	if size == 0 {
		return nil
	}

	meta := make([]byte, size)
	if _, err := io.ReadFull(ir.r, meta); err != nil {
		return fmt.Errorf("metadata read error: %w", err)
	}
	if title, ok := parseStreamTitle(string(meta)); ok && ir.onTitle != nil {
		ir.onTitle(title)
	}
	return nil
}

func parseStreamTitle(meta string) (string, bool) {
	const prefix = "StreamTitle='"
	start := strings.Index(meta, prefix)
	if start < 0 {
		return "", false
	}
	start += len(prefix)
	end := strings.Index(meta[start:], "';")
	if end < 0 {
		return "", false
	}
	title := strings.TrimSpace(meta[start : start+end])
	return title, title != ""
}

// playback holds the channels shared by the goroutines of one stream.
type playback struct {
	samples  chan [2]float64
	done     chan struct{}
	doneOnce sync.Once
	errCh    chan error
	wg       sync.WaitGroup
}

func newPlayback() *playback {
	return &playback{
		samples: make(chan [2]float64, SampleChannelSize),
		done:    make(chan struct{}),
		errCh:   make(chan error, 1),
	}
}

// Prevents panics from double-close when several goroutines signal completion.
func (pb *playback) finish() {
	pb.doneOnce.Do(func() { close(pb.done) })
}

func (pb *playback) fail(err error) {
	select {
	case pb.errCh <- err:
	default:
	}
	pb.finish()
}

const fadeInDuration = 50 * time.Millisecond

// bufferedStreamer feeds the speaker from the sample channel. An empty
// channel plays silence so a network stall never holds the speaker lock.
type bufferedStreamer struct {
	pb              *playback
	fadeInRemaining int
	fadeInTotal     int
	ended           bool
}

func (b *bufferedStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	audioEnd := 0

	if !b.ended {
	fill:
		for i := range samples {
			select {
			case sample, more := <-b.pb.samples:
				if !more {
					b.ended = true
					break fill
				}
				samples[i] = sample
				audioEnd = i + 1
			case <-b.pb.done:
				b.ended = true
				break fill
			default:
				break fill
			}
		}
	}

	for i := audioEnd; i < len(samples); i++ {
		samples[i] = [2]float64{}
	}

	if b.fadeInRemaining > 0 {
		for i := 0; i < audioEnd && b.fadeInRemaining > 0; i++ {
			scale := float64(b.fadeInTotal-b.fadeInRemaining) / float64(b.fadeInTotal)
			samples[i][0] *= scale
			samples[i][1] *= scale
			b.fadeInRemaining--
		}
	}

	return len(samples), true
}

func (b *bufferedStreamer) Err() error {
	return nil
}
