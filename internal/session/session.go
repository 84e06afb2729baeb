// Package session runs the interactive loop: choose a source, walk a
// selection pass, play the station and record it.
package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/rupestre-campos/pi-world-radio/internal/catalog"
	"github.com/rupestre-campos/pi-world-radio/internal/journal"
	"github.com/rupestre-campos/pi-world-radio/internal/player"
	"github.com/rupestre-campos/pi-world-radio/internal/selection"
	"github.com/rupestre-campos/pi-world-radio/internal/service"
	"github.com/rupestre-campos/pi-world-radio/internal/station"
	"github.com/rupestre-campos/pi-world-radio/internal/ui"
)

//go:generate mockgen -destination=mocks/player_mock.go -package=mocks github.com/rupestre-campos/pi-world-radio/internal/player Gateway
//go:generate mockgen -destination=mocks/prompter_mock.go -package=mocks github.com/rupestre-campos/pi-world-radio/internal/ui Prompter

// Mode is where a pass takes its candidates from.
type Mode int

const (
	ModeLive Mode = iota
	ModeHistory
	ModeFavorites
)

func (m Mode) String() string {
	switch m {
	case ModeLive:
		return "live"
	case ModeHistory:
		return "history"
	case ModeFavorites:
		return "favorites"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

const modePrompt = "Browse history (h) or favorites (f)? Anything else starts a new search, q exits"

// Options wires a Session. Live is the station directory; it also resolves
// stations replayed from a journal. Journaling turns history, favorites and
// the mode prompt on.
type Options struct {
	Live       selection.Source
	History    *journal.Journal
	Favorites  *journal.Journal
	Streams    *station.StreamBuilder
	Player     player.Gateway
	Prompter   ui.Prompter
	Resolver   *selection.Resolver
	Journaling bool
}

// Session holds the selection state shared by consecutive passes.
type Session struct {
	opts   Options
	state  selection.State
	router *router
}

// New creates a Session from opts.
func New(opts Options) *Session {
	if opts.Resolver == nil {
		opts.Resolver = selection.NewResolver(nil)
	}
	if opts.Streams == nil {
		opts.Streams = station.NewStreamBuilder("", "")
	}
	if opts.History == nil || opts.Favorites == nil {
		opts.Journaling = false
	}
	return &Session{opts: opts}
}

// State returns the selection remembered from the last pass.
func (s *Session) State() selection.State {
	return s.state
}

// Run loops over passes until the user quits, input ends or ctx is cancelled.
// Signals received on signals are routed: an interrupt during playback only
// stops the stream, anything else ends the session. A user-initiated exit
// returns nil.
func (s *Session) Run(ctx context.Context, signals <-chan os.Signal) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.router = newRouter(cancel)
	if signals != nil {
		done := make(chan struct{})
		defer close(done)
		go s.router.listen(signals, done)
	}

	for {
		err := s.pass(ctx)
		if err == nil {
			continue
		}
		if exitRequested(ctx, err) {
			log.Debug().Err(err).Msg("Session ended")
			return nil
		}
		return err
	}
}

func exitRequested(ctx context.Context, err error) bool {
	return ctx.Err() != nil ||
		errors.Is(err, selection.ErrQuit) ||
		errors.Is(err, ui.ErrInterrupted) ||
		errors.Is(err, ui.ErrClosed) ||
		errors.Is(err, context.Canceled)
}

// pass runs one mode prompt, selection, playback and journal update. It
// returns nil to start another pass and an error to end the session.
func (s *Session) pass(ctx context.Context) error {
	mode := ModeLive
	if s.opts.Journaling {
		var err error
		if mode, err = s.askMode(ctx); err != nil {
			return err
		}
	}

	source, err := s.source(mode)
	if err != nil {
		log.Error().Err(err).Str("mode", mode.String()).Msg("Failed to open journal")
		s.opts.Prompter.Notify(ui.FriendlyError(err))
		return nil
	}
	if source == nil {
		s.opts.Prompter.Notify(fmt.Sprintf("No %s yet, starting a new search.", mode))
		source = s.opts.Live
	}

	sel, err := selection.NewPass(source, passPrompter{s.opts.Prompter}, s.opts.Resolver, &s.state).Run(ctx)
	if err != nil {
		return s.passFailed(ctx, err)
	}

	url, err := s.opts.Streams.Build(sel.Record)
	if err != nil {
		log.Error().Err(err).Str("station", sel.Station).Msg("Failed to build stream URL")
		s.opts.Prompter.Notify(ui.FriendlyError(err))
		return nil
	}

	s.opts.Prompter.Notify(fmt.Sprintf("Country: %s\nLocation: %s\nStation: %s", sel.Country, sel.City, sel.Station))
	log.Info().Str("url", url).Msg("Playing")

	status, err := s.play(ctx, url)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	log.Info().Str("status", status.String()).Msg("Playback ended")

	rec := journal.Record{Country: sel.Country, Location: sel.City, Station: sel.Station}
	if status == player.StatusError {
		log.Error().Err(err).Str("station", sel.Station).Msg("Playback failed")
		s.opts.Prompter.Notify(playbackFailure(err))
	} else if s.opts.Journaling {
		s.appendHistory(rec)
	}

	if s.opts.Journaling {
		return s.offerFavorite(ctx, rec)
	}
	return nil
}

func playbackFailure(err error) string {
	if msg := ui.FriendlyError(err); msg != "" {
		return msg
	}
	return "Playback failed."
}

func (s *Session) askMode(ctx context.Context) (Mode, error) {
	answer, err := s.opts.Prompter.Ask(ctx, modePrompt, nil)
	if err != nil {
		return ModeLive, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "h":
		return ModeHistory, nil
	case "f":
		return ModeFavorites, nil
	case selection.QuitToken:
		return ModeLive, selection.ErrQuit
	default:
		return ModeLive, nil
	}
}

// source returns the candidate source of mode. A replay of an empty journal
// returns nil.
func (s *Session) source(mode Mode) (selection.Source, error) {
	var j *journal.Journal
	switch mode {
	case ModeHistory:
		j = s.opts.History
	case ModeFavorites:
		j = s.opts.Favorites
	default:
		return s.opts.Live, nil
	}

	replay, err := service.NewReplayService(j, s.opts.Live)
	if err != nil {
		return nil, err
	}
	if replay.Len() == 0 {
		return nil, nil
	}
	return replay, nil
}

func (s *Session) passFailed(ctx context.Context, err error) error {
	if errors.Is(err, selection.ErrQuit) {
		s.opts.Prompter.Notify("Starting over.")
		return nil
	}
	var inErr *inputError
	if exitRequested(ctx, err) || errors.As(err, &inErr) {
		return err
	}

	log.Warn().Err(err).Msg("Selection pass failed")
	s.opts.Prompter.Notify(ui.FriendlyError(err))

	if errors.Is(err, catalog.ErrNetworkUnavailable) {
		again, cerr := s.opts.Prompter.Confirm(ctx, "Try again?")
		if cerr != nil {
			return cerr
		}
		if !again {
			return selection.ErrQuit
		}
	}
	return nil
}

// inputError is a failure of the prompter itself. It ends the session
// instead of restarting the pass.
type inputError struct {
	err error
}

func (e *inputError) Error() string { return e.err.Error() }
func (e *inputError) Unwrap() error { return e.err }

type passPrompter struct {
	ui.Prompter
}

func (p passPrompter) Ask(ctx context.Context, label string, candidates []string) (string, error) {
	answer, err := p.Prompter.Ask(ctx, label, candidates)
	if err != nil {
		return "", &inputError{err: err}
	}
	return answer, nil
}

func (s *Session) play(ctx context.Context, url string) (player.Status, error) {
	playCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.router.setPlay(cancel)
	defer s.router.setPlay(nil)

	return s.opts.Player.Play(playCtx, url)
}

func (s *Session) appendHistory(rec journal.Record) {
	added, err := s.opts.History.Append(rec)
	if err != nil {
		log.Error().Err(err).Str("path", s.opts.History.Path()).Msg("Failed to append history")
		s.opts.Prompter.Notify("Could not save history: " + err.Error())
		return
	}
	if added {
		log.Debug().Str("record", rec.String()).Msg("Added to history")
	}
}

func (s *Session) offerFavorite(ctx context.Context, rec journal.Record) error {
	index, err := s.opts.Favorites.ReadIndex()
	if err != nil {
		log.Error().Err(err).Str("path", s.opts.Favorites.Path()).Msg("Failed to read favorites")
		s.opts.Prompter.Notify("Could not read favorites: " + err.Error())
		return nil
	}
	if index.Contains(rec) {
		return nil
	}

	question := fmt.Sprintf("Add to favorites?\n%s\n%s\n%s", rec.Country, rec.Location, rec.Station)
	add, err := s.opts.Prompter.Confirm(ctx, question)
	if err != nil {
		return err
	}
	if !add {
		return nil
	}

	if _, err := s.opts.Favorites.Append(rec); err != nil {
		log.Error().Err(err).Str("path", s.opts.Favorites.Path()).Msg("Failed to append favorite")
		s.opts.Prompter.Notify("Could not save favorite: " + err.Error())
		return nil
	}
	s.opts.Prompter.Notify("Added to favorites.")
	return nil
}
