// Package rating scores player performances and picks the player of the match.
package rating

import (
	"math"

	"github.com/okian/kickoff/internal/domain/model"
)

// Rating bounds and weights.
const (
	Base        = 6.5
	Min         = 4.0
	Max         = 10.0
	WinBonus    = 0.3
	LossPenalty = 0.2
	PerGoal     = 1.0
	PerAssist   = 0.7
	PerYellow   = 0.7
	PerRed      = 1.5
	CleanSheet  = 0.5

	// TacticThreshold is the knob value from which tactical bonuses apply.
	TacticThreshold = 0.6
)

// Line is one player's tally for a match.
type Line struct {
	Goals   int
	Assists int
	Yellows int
	Reds    int
}

// Context is what the rating needs to know about the player's side.
type Context struct {
	GoalsFor     int
	GoalsAgainst int
	Style        model.Style
	Goalkeeper   bool
}

// CleanSheet reports whether the side conceded nothing.
func (c Context) CleanSheet() bool { return c.GoalsAgainst == 0 }

// Rate returns the match rating in [4,10], rounded to two decimals.
func Rate(l Line, c Context) float64 {
	r := Base
	switch {
	case c.GoalsFor > c.GoalsAgainst:
		r += WinBonus
	case c.GoalsFor < c.GoalsAgainst:
		r -= LossPenalty
	}

	r += PerGoal * float64(l.Goals)
	r += PerAssist * float64(l.Assists)
	r -= PerYellow * float64(l.Yellows)
	r -= PerRed * float64(l.Reds)

	if c.Goalkeeper {
		if c.CleanSheet() {
			r += CleanSheet
			if c.Style.Line >= TacticThreshold {
				r += 0.2
			}
		}
	} else {
		if c.Style.Tempo >= TacticThreshold {
			r += 0.2 * float64(l.Goals)
		}
		if c.Style.Press >= TacticThreshold {
			r += math.Min(0.2, 0.1*float64(l.Goals+l.Assists))
		}
	}

	r = math.Max(Min, math.Min(Max, r))
	return math.Round(r*100) / 100
}

// Tally accumulates goals, assists and cards per player id.
func Tally(events []model.Event) map[string]Line {
	out := map[string]Line{}
	for _, e := range events {
		switch ev := e.(type) {
		case model.Lineup, model.Injury:
		case model.Goal:
			l := out[ev.ScorerID]
			l.Goals++
			out[ev.ScorerID] = l
			if ev.HasAssist() {
				a := out[ev.AssisterID]
				a.Assists++
				out[ev.AssisterID] = a
			}
		case model.Card:
			l := out[ev.PlayerID]
			if ev.Severity == model.Red {
				l.Reds++
			} else {
				l.Yellows++
			}
			out[ev.PlayerID] = l
		}
	}
	return out
}

// Side is one team's view for player of the match selection.
type Side struct {
	Squad        model.Squad
	Style        model.Style
	GoalsFor     int
	GoalsAgainst int
}

// Candidate is a rated lineup player.
type Candidate struct {
	PlayerID string
	Name     string
	Rating   float64
	Goals    int
}

// Ratings rates every lineup player, home lineup first then away, in lineup
// order. Players missing from the squad are rated as outfield players.
func Ratings(events []model.Event, home, away Side) []Candidate {
	lines := Tally(events)
	homeIDs, awayIDs := model.Lineups(events)

	out := make([]Candidate, 0, len(homeIDs)+len(awayIDs))
	rate := func(ids []string, s Side) {
		byID := s.Squad.ByID()
		for _, id := range ids {
			p := byID[id]
			l := lines[id]
			out = append(out, Candidate{
				PlayerID: id,
				Name:     p.Name,
				Goals:    l.Goals,
				Rating: Rate(l, Context{
					GoalsFor:     s.GoalsFor,
					GoalsAgainst: s.GoalsAgainst,
					Style:        s.Style,
					Goalkeeper:   p.Position == model.Goalkeeper,
				}),
			})
		}
	}
	rate(homeIDs, home)
	rate(awayIDs, away)
	return out
}

// PlayerOfMatch picks the highest rated lineup player. Ties go to the player
// with more goals, then to the first encountered. Nil when nobody played.
func PlayerOfMatch(events []model.Event, home, away Side) *model.PlayerOfMatch {
	var best *Candidate
	cands := Ratings(events, home, away)
	for i := range cands {
		c := &cands[i]
		if best == nil || c.Rating > best.Rating || (c.Rating == best.Rating && c.Goals > best.Goals) {
			best = c
		}
	}
	if best == nil {
		return nil
	}
	return &model.PlayerOfMatch{PlayerID: best.PlayerID, Name: best.Name, Rating: best.Rating}
}
