// Package synth turns a match outcome and two squads into the minute-ordered
// event log: lineups, goals with assists, cards and injuries.
package synth

import (
	"sort"

	"github.com/okian/kickoff/internal/domain/injury"
	"github.com/okian/kickoff/internal/domain/model"
	"github.com/okian/kickoff/internal/domain/rng"
)

// Match parameters.
const (
	XISize        = 11
	MatchMinutes  = 90
	AssistChance  = 0.65
	MaxYellows    = 5 // exclusive upper bound of the yellow count draw
	RedCardChance = 0.12
)

// Team is one side's simulation input.
type Team struct {
	// Squad holds the available players only.
	Squad model.Squad
	Style model.Style
}

// Input is everything needed to synthesize a match log.
type Input struct {
	Home      Team
	Away      Team
	HomeGoals int
	AwayGoals int
}

// Synthesizer builds event logs using an injury profile.
type Synthesizer struct {
	profile injury.Profile
}

// New returns a Synthesizer for the given injury profile.
func New(profile injury.Profile) *Synthesizer {
	return &Synthesizer{profile: profile}
}

// Profile returns the injury profile in use.
func (s *Synthesizer) Profile() injury.Profile { return s.profile }

// SelectXI returns up to eleven players by descending overall rating. Ties
// keep roster order.
func SelectXI(squad model.Squad) model.Squad {
	xi := make(model.Squad, len(squad))
	copy(xi, squad)
	sort.SliceStable(xi, func(i, j int) bool { return xi[i].Overall > xi[j].Overall })
	if len(xi) > XISize {
		xi = xi[:XISize]
	}
	return xi
}

// Synthesize draws the full event log from src. Draws continue the stream the
// outcome was generated from.
func (s *Synthesizer) Synthesize(src *rng.Source, in Input) []model.Event {
	xi := map[model.Side]model.Squad{
		model.Home: SelectXI(in.Home.Squad),
		model.Away: SelectXI(in.Away.Squad),
	}
	styles := map[model.Side]model.Style{
		model.Home: in.Home.Style,
		model.Away: in.Away.Style,
	}

	events := []model.Event{
		model.Lineup{Team: model.Home, PlayerIDs: ids(xi[model.Home])},
		model.Lineup{Team: model.Away, PlayerIDs: ids(xi[model.Away])},
	}

	for i := 0; i < in.HomeGoals; i++ {
		if g, ok := goal(src, model.Home, xi[model.Home]); ok {
			events = append(events, g)
		}
	}
	for i := 0; i < in.AwayGoals; i++ {
		if g, ok := goal(src, model.Away, xi[model.Away]); ok {
			events = append(events, g)
		}
	}

	events = append(events, cards(src, xi)...)

	for _, side := range []model.Side{model.Home, model.Away} {
		events = append(events, s.injuries(src, side, xi[side], styles[side])...)
	}

	sort.SliceStable(events, func(i, j int) bool { return events[i].Minute() < events[j].Minute() })
	return events
}

func minute(src *rng.Source) int {
	return 1 + src.IntN(MatchMinutes)
}

func goal(src *rng.Source, side model.Side, xi model.Squad) (model.Goal, bool) {
	if len(xi) == 0 {
		return model.Goal{}, false
	}
	scorer := rng.WeightedPick(src, xi, weights(xi, scoringWeight))
	g := model.Goal{Team: side, ScorerID: scorer.ID}

	if src.Bool(AssistChance) {
		others := without(xi, scorer.ID)
		if len(others) > 0 {
			g.AssisterID = rng.WeightedPick(src, others, weights(others, assistWeight)).ID
		}
	}
	g.At = minute(src)
	return g, true
}

func cards(src *rng.Source, xi map[model.Side]model.Squad) []model.Event {
	yellows := src.IntN(MaxYellows)
	reds := 0
	if src.Bool(RedCardChance) {
		reds = 1
	}

	severities := make([]model.Severity, 0, yellows+reds)
	for i := 0; i < yellows; i++ {
		severities = append(severities, model.Yellow)
	}
	for i := 0; i < reds; i++ {
		severities = append(severities, model.Red)
	}

	out := make([]model.Event, 0, len(severities))
	for _, sev := range severities {
		side := model.Away
		if src.Bool(0.5) {
			side = model.Home
		}
		if len(xi[side]) == 0 {
			continue
		}
		p := rng.WeightedPick(src, xi[side], weights(xi[side], cardWeight))
		out = append(out, model.Card{At: minute(src), Team: side, PlayerID: p.ID, Severity: sev})
	}
	return out
}

func (s *Synthesizer) injuries(src *rng.Source, side model.Side, xi model.Squad, style model.Style) []model.Event {
	intensity := s.profile.Intensity(style)
	n := s.profile.Count(src, intensity)
	if len(xi) == 0 {
		return nil
	}

	out := make([]model.Event, 0, n)
	for i := 0; i < n; i++ {
		p := rng.WeightedPick(src, xi, weights(xi, injury.RiskWeight))
		out = append(out, model.Injury{
			Team:     side,
			PlayerID: p.ID,
			GamesOut: s.profile.GamesOut(src, intensity),
			At:       minute(src),
		})
	}
	return out
}

func scoringWeight(p model.Player) float64 {
	var base float64
	switch p.Position {
	case model.Forward:
		base = 1.0
	case model.Midfielder:
		base = 0.6
	case model.Defender:
		base = 0.25
	case model.Goalkeeper:
		base = 0.05
	default:
		base = 0.3
	}
	return base * (0.5 + float64(p.Shooting)/100*0.5)
}

func assistWeight(p model.Player) float64 {
	var base float64
	switch p.Position {
	case model.Midfielder:
		base = 1.0
	case model.Forward:
		base = 0.7
	case model.Defender:
		base = 0.5
	case model.Goalkeeper:
		base = 0.05
	default:
		base = 0.5
	}
	return base * (0.5 + float64(p.Passing)/100*0.5)
}

func cardWeight(p model.Player) float64 {
	switch p.Position {
	case model.Defender:
		return 1.0
	case model.Midfielder:
		return 0.8
	case model.Forward:
		return 0.5
	case model.Goalkeeper:
		return 0.2
	}
	return 0.6
}

func weights(xi model.Squad, fn func(model.Player) float64) []float64 {
	w := make([]float64, len(xi))
	for i, p := range xi {
		w[i] = fn(p)
	}
	return w
}

func without(xi model.Squad, id string) model.Squad {
	out := make(model.Squad, 0, len(xi))
	for _, p := range xi {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}

func ids(xi model.Squad) []string {
	out := make([]string, len(xi))
	for i, p := range xi {
		out[i] = p.ID
	}
	return out
}
