package fetch

import (
	"errors"
	"fmt"
)

// Kind classifies a failed fetch.
type Kind int

const (
	// Transient failures exhausted their retries; trying again later may work.
	Transient Kind = iota
	// Fatal failures will not succeed on retry.
	Fatal
)

func (k Kind) String() string {
	switch k {
	case Transient:
		return "transient"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

var (
	ErrTransient = errors.New("fetch failed after retries")
	ErrFatal     = errors.New("fetch failed")
)

// Error describes a failed request.
type Error struct {
	Kind       Kind
	URL        string
	Attempts   int
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s fetch of %s failed after %d attempt(s): %v", e.Kind, e.URL, e.Attempts, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches ErrTransient or ErrFatal according to Kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrTransient:
		return e.Kind == Transient
	case ErrFatal:
		return e.Kind == Fatal
	}
	return false
}
