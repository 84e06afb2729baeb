package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/rs/zerolog/log"
)

const (
	DefaultSampleRate   = beep.SampleRate(44100)
	SpeakerBufferSize   = time.Millisecond * 250
	NetworkReadSize     = 4096
	SampleChannelSize   = 8192
	MaxRetries          = 3
	RetryDelay          = time.Second * 2
	VolumeCurveExponent = 0.5
	MinVolumeDB         = -10.0
	ReadTimeout         = 5 * time.Second
	// A stream that played at least this long before dropping gets a fresh
	// set of retries.
	MinPlayDuration  = 30 * time.Second
	resampleQuality  = 4
	DefaultUserAgent = "piradio"
)

// Native decodes MP3 streams in process and plays them on the default audio
// device.
type Native struct {
	Volume      int
	MaxRetries  int
	RetryDelay  time.Duration
	ReadTimeout time.Duration
	UserAgent   string
	OnTitle     func(title string)

	httpClient *http.Client

	mu          sync.Mutex
	speakerRate beep.SampleRate
}

// NewNative creates an in-process gateway.
func NewNative(volume int) *Native {
	httpClient := &http.Client{
		Timeout: 0, // streams are long-lived
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout: 10 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 15 * time.Second,
			MaxIdleConns:          10,
			IdleConnTimeout:       90 * time.Second,
			DisableCompression:    true,
		},
	}

	return &Native{
		Volume:      clampVolume(volume),
		MaxRetries:  MaxRetries,
		RetryDelay:  RetryDelay,
		ReadTimeout: ReadTimeout,
		UserAgent:   DefaultUserAgent,
		httpClient:  httpClient,
	}
}

func (n *Native) Play(ctx context.Context, url string) (Status, error) {
	if ctx.Err() != nil {
		return StatusUserQuit, nil
	}

	var lastErr error
	for attempt := 0; attempt <= n.MaxRetries; attempt++ {
		if attempt > 0 {
			log.Warn().Err(lastErr).Msgf("Stream failed, retrying in %v... (%d/%d)", n.RetryDelay, attempt, n.MaxRetries)
			select {
			case <-ctx.Done():
				return StatusUserQuit, nil
			case <-time.After(n.RetryDelay):
			}
		}

		played, err := n.stream(ctx, url)
		if ctx.Err() != nil {
			return StatusUserQuit, nil
		}
		if err == nil {
			return StatusCompleted, nil
		}

		lastErr = err
		if isNonRetryableError(err) {
			log.Warn().Err(err).Str("url", url).Msg("Non-retryable stream error")
			break
		}
		// Stream recovered then dropped again
		if played >= MinPlayDuration {
			log.Info().Dur("played", played).Msg("Stream was playing, resetting retry counter")
			attempt = 0
		}
	}

	return StatusError, fmt.Errorf("stream failed: %w", lastErr)
}

func (n *Native) initSpeaker(rate beep.SampleRate) (beep.SampleRate, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.speakerRate != 0 {
		return n.speakerRate, nil
	}
	if err := speaker.Init(rate, rate.N(SpeakerBufferSize)); err != nil {
		return 0, fmt.Errorf("failed to initialize speaker: %w", err)
	}
	n.speakerRate = rate
	log.Debug().Msgf("Speaker initialized with sample rate: %d Hz, buffer: %v", rate, SpeakerBufferSize)
	return rate, nil
}

func (n *Native) title(title string) {
	log.Info().Str("title", title).Msg("Now playing")
	if n.OnTitle != nil {
		n.OnTitle(title)
	}
}

// stream plays url once. It returns nil when the stream ends, and how long
// audio was playing.
func (n *Native) stream(parent context.Context, url string) (time.Duration, error) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", n.UserAgent)
	req.Header.Set("Icy-MetaData", "1")

	log.Debug().Str("url", url).Msg("Connecting to stream")
	resp, err := n.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch stream: %w", err)
	}
	log.Debug().Msgf("Stream response status: %d, Content-Type: %s", resp.StatusCode, resp.Header.Get("Content-Type"))

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return 0, &httpStatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	metaint, _ := strconv.Atoi(resp.Header.Get("icy-metaint"))

	pb := newPlayback()
	pipeReader, pipeWriter := io.Pipe()
	body := &contextReader{reader: resp.Body, ctx: ctx, timeout: n.ReadTimeout}

	pb.wg.Add(1)
	go readNetwork(ctx, pb, resp.Body, newICYReader(body, metaint, n.title), pipeWriter)

	abort := func() {
		cancel()
		pipeReader.Close()
		pb.finish()
		pb.wg.Wait()
	}

	streamer, format, err := mp3.Decode(pipeReader)
	if err != nil {
		abort()
		return 0, fmt.Errorf("failed to decode MP3 stream: %w", err)
	}

	rate, err := n.initSpeaker(format.SampleRate)
	if err != nil {
		streamer.Close()
		abort()
		return 0, err
	}

	pb.wg.Add(1)
	go decode(ctx, pb, streamer, pipeReader)

	fadeIn := format.SampleRate.N(fadeInDuration)
	var out beep.Streamer = &bufferedStreamer{pb: pb, fadeInRemaining: fadeIn, fadeInTotal: fadeIn}
	if rate != format.SampleRate {
		out = beep.Resample(resampleQuality, format.SampleRate, rate, out)
	}
	volume := clampVolume(n.Volume)
	speaker.Play(&effects.Volume{
		Streamer: out,
		Base:     2,
		Volume:   percentToExponent(float64(volume)),
		Silent:   volume == 0,
	})

	start := time.Now()
	log.Debug().Int("sample_rate", int(format.SampleRate)).Int("metaint", metaint).Msg("Playing stream")

	var streamErr error
	select {
	case <-ctx.Done():
	case streamErr = <-pb.errCh:
	case <-pb.done:
		select {
		case streamErr = <-pb.errCh:
		default:
		}
	}
	played := time.Since(start)

	cancel()
	pb.finish()
	pb.wg.Wait()
	speaker.Clear()

	if err := parent.Err(); err != nil {
		return played, err
	}
	return played, streamErr
}

func readNetwork(ctx context.Context, pb *playback, body io.Closer, r io.Reader, pipeWriter *io.PipeWriter) {
	defer func() {
		body.Close()
		pb.wg.Done()
		log.Debug().Msg("Network stream reader stopped")
	}()

	_, err := io.Copy(pipeWriter, r)
	if err != nil && ctx.Err() == nil && !errors.Is(err, io.ErrClosedPipe) {
		log.Error().Err(err).Msg("Error reading audio data from stream")
		pipeWriter.CloseWithError(err)
		pb.fail(fmt.Errorf("network read error: %w", err))
		return
	}
	pipeWriter.Close()
}

func decode(ctx context.Context, pb *playback, streamer beep.StreamSeekCloser, pipeReader *io.PipeReader) {
	defer func() {
		streamer.Close()
		pipeReader.Close()
		close(pb.samples)
		pb.wg.Done()
		if ctx.Err() == nil {
			pb.finish()
		}
		log.Debug().Msg("Decoder stopped")
	}()

	decoded := make([][2]float64, 4096)
	for {
		n, ok := streamer.Stream(decoded)
		if !ok {
			if err := streamer.Err(); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("Stream decoding error")
				pb.fail(fmt.Errorf("decode error: %w", err))
			}
			return
		}

		for i := 0; i < n; i++ {
			select {
			case <-ctx.Done():
				return
			case <-pb.done:
				return
			case pb.samples <- decoded[i]:
			}
		}
	}
}

type httpStatusError struct {
	StatusCode int
	Status     string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("stream returned status %d: %s", e.StatusCode, e.Status)
}

func isNonRetryableError(err error) bool {
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case 401, 403, 404, 410:
			return true
		}
	}
	return false
}

func percentToExponent(p float64) float64 {
	if p <= 0 {
		return MinVolumeDB
	}
	if p >= 100 {
		return 0
	}

	normalized := p / 100.0
	adjusted := math.Pow(normalized, VolumeCurveExponent)
	return (1.0 - adjusted) * MinVolumeDB
}
