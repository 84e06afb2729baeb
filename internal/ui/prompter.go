// Package ui reads the user's choices at the terminal, either as plain lines
// or through a full-screen tview prompt with autocomplete.
package ui

import (
	"context"
	"errors"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rupestre-campos/pi-world-radio/internal/config"
)

var (
	// ErrInterrupted is returned when the user presses Ctrl+C at a prompt.
	ErrInterrupted = errors.New("interrupted")
	// ErrClosed is returned when the input reaches end of file.
	ErrClosed = errors.New("input closed")
)

// Prompter asks the user for input.
type Prompter interface {
	// Ask reads one answer. candidates are shown or offered for completion;
	// the answer is returned as typed.
	Ask(ctx context.Context, label string, candidates []string) (string, error)
	Confirm(ctx context.Context, question string) (bool, error)
	Notify(msg string)
}

// IsInteractive reports whether both in and out are terminals.
func IsInteractive(in, out *os.File) bool {
	return isTerminal(in) && isTerminal(out)
}

func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// NewPrompter returns a TviewPrompter on an interactive terminal unless plain
// is set, and a LinePrompter otherwise.
func NewPrompter(cfg *config.Config, plain bool, in, out *os.File) Prompter {
	if !plain && IsInteractive(in, out) {
		return NewTviewPrompter(cfg.Theme, out)
	}
	return NewLinePrompter(in, out)
}
