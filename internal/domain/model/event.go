// Package model contains domain models passed between layers.
package model

// Side identifies which team of a fixture an event belongs to.
type Side string

// Sides of a fixture.
const (
	Home Side = "HOME"
	Away Side = "AWAY"
)

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == Home {
		return Away
	}
	return Home
}

// Severity is the colour of a card.
type Severity string

// Card severities.
const (
	Yellow Severity = "YELLOW"
	Red    Severity = "RED"
)

// Event is one entry of a simulated match log. The set of implementations is
// closed: Lineup, Goal, Card and Injury. Consumers switch over all four.
type Event interface {
	// Minute is the sort key of the event; lineups are at minute 0.
	Minute() int
	// Side returns the team the event belongs to.
	Side() Side

	event()
}

// Lineup lists the starting eleven of one side in selection order.
type Lineup struct {
	Team      Side
	PlayerIDs []string
}

// Goal records a goal and an optional assist (empty AssisterID means none).
type Goal struct {
	At         int
	Team       Side
	ScorerID   string
	AssisterID string
}

// Card records a yellow or red card.
type Card struct {
	At       int
	Team     Side
	PlayerID string
	Severity Severity
}

// Injury records an in-match injury and how many matches the player misses.
type Injury struct {
	At       int
	Team     Side
	PlayerID string
	GamesOut int
}

func (Lineup) Minute() int   { return 0 }
func (e Goal) Minute() int   { return e.At }
func (e Card) Minute() int   { return e.At }
func (e Injury) Minute() int { return e.At }

func (e Lineup) Side() Side { return e.Team }
func (e Goal) Side() Side   { return e.Team }
func (e Card) Side() Side   { return e.Team }
func (e Injury) Side() Side { return e.Team }

func (Lineup) event() {}
func (Goal) event()   {}
func (Card) event()   {}
func (Injury) event() {}

// HasAssist reports whether the goal was assisted.
func (e Goal) HasAssist() bool { return e.AssisterID != "" }

// Lineups returns the home and away lineup events, if present.
func Lineups(events []Event) (home, away []string) {
	for _, e := range events {
		l, ok := e.(Lineup)
		if !ok {
			continue
		}
		if l.Team == Home {
			home = l.PlayerIDs
		} else {
			away = l.PlayerIDs
		}
	}
	return home, away
}
