package selection

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/rupestre-campos/pi-world-radio/internal/station"
)

// Source supplies the candidates of each level. A live source reads the
// catalog and the station lister; a replay source reads a journal.
type Source interface {
	Countries(ctx context.Context) ([]string, error)
	Cities(ctx context.Context, country string) ([]string, error)
	Stations(ctx context.Context, country, city string) ([]string, error)
	// Lookup returns the playable record of a chosen station, or
	// ErrStationUnavailable.
	Lookup(ctx context.Context, country, city, name string) (station.Record, error)
}

// Prompter reads one answer for a level.
type Prompter interface {
	Ask(ctx context.Context, label string, candidates []string) (string, error)
	Notify(msg string)
}

// Step is the position of a pass in the country → city → station sequence.
type Step int

const (
	StepCountry Step = iota
	StepCity
	StepStation
	StepResolved
	StepQuit
)

func (s Step) String() string {
	switch s {
	case StepCountry:
		return "country"
	case StepCity:
		return "city"
	case StepStation:
		return "station"
	case StepResolved:
		return "resolved"
	case StepQuit:
		return "quit"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// Selection is the outcome of a resolved pass.
type Selection struct {
	Country string
	City    string
	Station string
	Record  station.Record
}

// Pass walks one selection from country to station. The source is fixed for
// the whole pass.
type Pass struct {
	source   Source
	prompter Prompter
	resolver *Resolver
	state    *State
	step     Step
}

// NewPass creates a pass that reads and updates state.
func NewPass(source Source, prompter Prompter, resolver *Resolver, state *State) *Pass {
	return &Pass{
		source:   source,
		prompter: prompter,
		resolver: resolver,
		state:    state,
		step:     StepCountry,
	}
}

// Step returns the current step.
func (p *Pass) Step() Step {
	return p.step
}

// Run prompts until a station is resolved. Invalid input re-prompts the same
// level without limit. ErrQuit, ErrEmptyCandidateSet, ErrStationUnavailable,
// source failures and prompter errors end the pass.
func (p *Pass) Run(ctx context.Context) (Selection, error) {
	for {
		switch p.step {
		case StepCountry:
			country, err := p.choose(ctx, "Country", p.state.Country, p.source.Countries)
			if err != nil {
				return Selection{}, err
			}
			p.state.Country = country
			p.step = StepCity

		case StepCity:
			country := p.state.Country
			city, err := p.choose(ctx, "City", p.state.City, func(ctx context.Context) ([]string, error) {
				return p.source.Cities(ctx, country)
			})
			if err != nil {
				return Selection{}, err
			}
			p.state.City = city
			p.step = StepStation

		case StepStation:
			country, city := p.state.Country, p.state.City
			name, err := p.choose(ctx, "Station", p.state.Station, func(ctx context.Context) ([]string, error) {
				return p.source.Stations(ctx, country, city)
			})
			if err != nil {
				return Selection{}, err
			}
			p.state.Station = name
			p.step = StepResolved

		case StepResolved:
			rec, err := p.source.Lookup(ctx, p.state.Country, p.state.City, p.state.Station)
			if err != nil {
				p.step = StepQuit
				return Selection{}, err
			}
			return Selection{
				Country: p.state.Country,
				City:    p.state.City,
				Station: p.state.Station,
				Record:  rec,
			}, nil

		default:
			return Selection{}, ErrQuit
		}
	}
}

func (p *Pass) choose(ctx context.Context, label, remembered string, candidates func(context.Context) ([]string, error)) (string, error) {
	step := p.step
	options, err := candidates(ctx)
	if err != nil {
		p.step = StepQuit
		return "", fmt.Errorf("failed to list %s candidates: %w", step, err)
	}
	if len(options) == 0 {
		p.step = StepQuit
		return "", fmt.Errorf("%s: %w", label, ErrEmptyCandidateSet)
	}

	for {
		input, err := p.prompter.Ask(ctx, label, options)
		if err != nil {
			p.step = StepQuit
			return "", err
		}

		choice, err := p.resolver.Resolve(input, options, remembered)
		switch {
		case err == nil:
			log.Debug().Str("step", step.String()).Str("input", input).Str("choice", choice).Msg("Choice accepted")
			return choice, nil
		case errors.Is(err, ErrInvalidSelection):
			p.prompter.Notify(fmt.Sprintf("%q is not a known %s, try again", input, step))
		default:
			p.step = StepQuit
			return "", err
		}
	}
}
