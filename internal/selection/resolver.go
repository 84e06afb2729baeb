// Package selection turns typed input into a country, city and station
// choice, one level at a time.
package selection

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
)

const (
	// QuitToken abandons the current pass.
	QuitToken = "q"
	// RandomToken and RandomWord pick a random candidate.
	RandomToken = "r"
	RandomWord  = "random"
)

var (
	ErrQuit               = errors.New("selection abandoned")
	ErrEmptyCandidateSet  = errors.New("nothing to choose from")
	ErrInvalidSelection   = errors.New("not a valid choice")
	ErrStationUnavailable = errors.New("station is no longer listed")
)

// Rand is the source of random picks.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int {
	return rand.IntN(n)
}

// State remembers the last accepted value of each level. It is only updated
// when a choice is accepted.
type State struct {
	Country string
	City    string
	Station string
}

// Resolver applies the input rule shared by every level.
type Resolver struct {
	rand Rand
}

// NewResolver creates a Resolver. A nil r uses math/rand/v2.
func NewResolver(r Rand) *Resolver {
	if r == nil {
		r = globalRand{}
	}
	return &Resolver{rand: r}
}

// Resolve maps input to a member of candidates.
//
// The quit token wins over everything else. Empty input repeats remembered
// when it is still a candidate and picks at random otherwise. The random
// tokens always pick at random. Anything else must match a candidate exactly.
func (r *Resolver) Resolve(input string, candidates []string, remembered string) (string, error) {
	input = strings.TrimSpace(input)

	if strings.EqualFold(input, QuitToken) {
		return "", ErrQuit
	}
	if len(candidates) == 0 {
		return "", ErrEmptyCandidateSet
	}

	switch {
	case input == "":
		if remembered != "" && slices.Contains(candidates, remembered) {
			return remembered, nil
		}
		return r.pick(candidates), nil
	case strings.EqualFold(input, RandomToken) || strings.EqualFold(input, RandomWord):
		return r.pick(candidates), nil
	case slices.Contains(candidates, input):
		return input, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSelection, input)
	}
}

func (r *Resolver) pick(candidates []string) string {
	return candidates[r.rand.IntN(len(candidates))]
}
