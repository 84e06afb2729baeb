package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	DefaultMPVPath = "mpv"
	mpvWaitDelay   = 3 * time.Second
	// mpv exit status when it was stopped by a signal.
	mpvExitSignal = 4
)

// ErrPlayerNotFound is returned when the player binary is not installed.
var ErrPlayerNotFound = errors.New("player binary not found")

// MPV plays streams by running the mpv binary attached to the terminal.
type MPV struct {
	Path   string
	Volume int
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewMPV creates an mpv gateway. An empty path uses mpv from PATH.
func NewMPV(path string, volume int) *MPV {
	if path == "" {
		path = DefaultMPVPath
	}
	return &MPV{
		Path:   path,
		Volume: clampVolume(volume),
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Args returns the mpv arguments for url.
func (m *MPV) Args(url string) []string {
	return []string{
		"--no-video",
		"--profile=low-latency",
		"--volume=" + strconv.Itoa(clampVolume(m.Volume)),
		url,
	}
}

func (m *MPV) Play(ctx context.Context, url string) (Status, error) {
	if err := ctx.Err(); err != nil {
		return StatusUserQuit, nil
	}

	bin, err := exec.LookPath(m.Path)
	if err != nil {
		return StatusError, fmt.Errorf("%w: %s: %w", ErrPlayerNotFound, m.Path, err)
	}

	cmd := exec.CommandContext(ctx, bin, m.Args(url)...)
	cmd.Stdin = m.Stdin
	cmd.Stdout = m.Stdout
	cmd.Stderr = m.Stderr
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = mpvWaitDelay

	log.Debug().Str("bin", bin).Strs("args", cmd.Args[1:]).Msg("Starting mpv")
	start := time.Now()
	err = cmd.Run()
	elapsed := time.Since(start)

	if ctx.Err() != nil {
		log.Debug().Dur("elapsed", elapsed).Msg("Playback interrupted")
		return StatusUserQuit, nil
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == mpvExitSignal {
			log.Debug().Dur("elapsed", elapsed).Msg("mpv stopped by signal")
			return StatusUserQuit, nil
		}
		log.Error().Err(err).Str("url", url).Msg("mpv failed")
		return StatusError, fmt.Errorf("mpv exited: %w", err)
	}

	log.Debug().Dur("elapsed", elapsed).Msg("mpv finished")
	return StatusCompleted, nil
}
