// Package simulation plays one fixture: strengths, outcome, events and player
// of the match, all drawn from a single seeded stream.
package simulation

import (
	"github.com/okian/kickoff/internal/domain/injury"
	"github.com/okian/kickoff/internal/domain/model"
	"github.com/okian/kickoff/internal/domain/outcome"
	"github.com/okian/kickoff/internal/domain/rating"
	"github.com/okian/kickoff/internal/domain/rng"
	"github.com/okian/kickoff/internal/domain/strength"
	"github.com/okian/kickoff/internal/domain/synth"
)

// Team is one side's available squad and tactic.
type Team = synth.Team

// Input is a fixture plus both sides.
type Input struct {
	Fixture model.Fixture
	Home    Team
	Away    Team
}

// Engine simulates fixtures. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	synth *synth.Synthesizer
}

// Option configures an Engine.
type Option func(*Engine)

// WithInjuryProfile sets the injury tuning.
func WithInjuryProfile(p injury.Profile) Option {
	return func(e *Engine) {
		e.synth = synth.New(p)
	}
}

// NewEngine returns an engine using the default injury profile unless
// overridden.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{synth: synth.New(injury.Must(injury.Default))}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Profile returns the injury profile in use.
func (e *Engine) Profile() injury.Profile { return e.synth.Profile() }

// Simulate plays the fixture. SimulatedAt is left zero for the caller.
func (e *Engine) Simulate(in Input) model.MatchResult {
	seed := Seed(in.Fixture.ID, in.Fixture.Round)
	src := rng.New(seed)

	home := Team{Squad: in.Home.Squad, Style: in.Home.Style.Clamped()}
	away := Team{Squad: in.Away.Squad, Style: in.Away.Style.Clamped()}

	out := outcome.Generate(src,
		strength.Compute(home.Squad, home.Style),
		strength.Compute(away.Squad, away.Style))

	events := e.synth.Synthesize(src, synth.Input{
		Home:      home,
		Away:      away,
		HomeGoals: out.HomeGoals,
		AwayGoals: out.AwayGoals,
	})

	potm := rating.PlayerOfMatch(events,
		rating.Side{Squad: home.Squad, Style: home.Style, GoalsFor: out.HomeGoals, GoalsAgainst: out.AwayGoals},
		rating.Side{Squad: away.Squad, Style: away.Style, GoalsFor: out.AwayGoals, GoalsAgainst: out.HomeGoals})

	return model.MatchResult{
		FixtureID:     in.Fixture.ID,
		Seed:          seed,
		HomeGoals:     out.HomeGoals,
		AwayGoals:     out.AwayGoals,
		XGHome:        out.XGHome,
		XGAway:        out.XGAway,
		Events:        events,
		PlayerOfMatch: potm,
	}
}

const (
	roundMultiplier = 1_000_003
	fallbackFactor  = 13
	idTail          = 6
)

// Seed derives the stream seed from the fixture identity:
// round*1000003 XOR base36(last six characters of id). When the tail has no
// base-36 value the round*13 fallback is used instead.
func Seed(fixtureID string, round int) uint32 {
	tail := fixtureID
	if len(tail) > idTail {
		tail = tail[len(tail)-idTail:]
	}
	v := base36Prefix(tail)
	if v == 0 {
		v = uint32(round * fallbackFactor)
	}
	return uint32(round*roundMultiplier) ^ v
}

// base36Prefix parses the longest leading run of base-36 digits.
func base36Prefix(s string) uint32 {
	var v uint32
	for i := 0; i < len(s); i++ {
		c := s[i]
		var d uint32
		switch {
		case c >= '0' && c <= '9':
			d = uint32(c - '0')
		case c >= 'a' && c <= 'z':
			d = uint32(c-'a') + 10
		case c >= 'A' && c <= 'Z':
			d = uint32(c-'A') + 10
		default:
			return v
		}
		v = v*36 + d
	}
	return v
}
