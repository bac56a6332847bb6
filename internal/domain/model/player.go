package model

// Position is a player's primary role on the pitch.
type Position string

// Positions.
const (
	Goalkeeper Position = "GK"
	Defender   Position = "DF"
	Midfielder Position = "MF"
	Forward    Position = "FW"
)

// Valid reports whether p is one of the four known positions.
func (p Position) Valid() bool {
	switch p {
	case Goalkeeper, Defender, Midfielder, Forward:
		return true
	}
	return false
}

// Player is the snapshot of a squad member used for simulation.
// Ratings are on a 0-99 scale.
type Player struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Position    Position `json:"position"`
	Overall     int      `json:"overall"`
	Pace        int      `json:"pace"`
	Passing     int      `json:"passing"`
	Shooting    int      `json:"shooting"`
	Defending   int      `json:"defending"`
	Goalkeeping int      `json:"goalkeeping"`
	Stamina     int      `json:"stamina"`
	Age         int      `json:"age"`
}

// Squad is an ordered roster.
type Squad []Player

// ByID indexes the squad by player id.
func (s Squad) ByID() map[string]Player {
	out := make(map[string]Player, len(s))
	for _, p := range s {
		out[p.ID] = p
	}
	return out
}

// Default tactical values used when a club has no saved tactic.
const (
	DefaultFormation = "4-4-2"
	DefaultStyleKnob = 0.5
)

// Style is a club's tactical setup. Tempo, Press and Line are in [0,1].
type Style struct {
	Formation string  `json:"formation"`
	Tempo     float64 `json:"tempo"`
	Press     float64 `json:"press"`
	Line      float64 `json:"line"`
}

// DefaultStyle returns the neutral style.
func DefaultStyle() Style {
	return Style{
		Formation: DefaultFormation,
		Tempo:     DefaultStyleKnob,
		Press:     DefaultStyleKnob,
		Line:      DefaultStyleKnob,
	}
}

// Clamped returns the style with every knob forced into [0,1].
func (s Style) Clamped() Style {
	s.Tempo = clamp01(s.Tempo)
	s.Press = clamp01(s.Press)
	s.Line = clamp01(s.Line)
	return s
}

func clamp01(v float64) float64 {
	switch {
	case v != v: // NaN
		return DefaultStyleKnob
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
