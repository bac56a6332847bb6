// Package injury holds the named injury tunings and the sampling helpers the
// event synthesizer uses to decide how many players get hurt, who, and for
// how long.
package injury

import (
	"math"
	"strings"

	"github.com/okian/kickoff/internal/domain/model"
	"github.com/okian/kickoff/internal/domain/rng"
)

// Profile names.
const (
	Conservative = "conservative"
	Default      = "default"
	Gritty       = "gritty"
)

// Weights blend the three tactical knobs into one intensity value.
type Weights struct {
	Tempo float64
	Press float64
	Line  float64
}

// Profile is a named injury tuning. It is fixed for the process lifetime.
type Profile struct {
	Name       string
	BaseRate   float64
	Weights    Weights
	CapPerTeam int

	// lambda = BaseRate * (scaleBase + scaleSlope*intensity)
	scaleBase  float64
	scaleSlope float64
	// maxGamesOut = gamesBase + round(gamesSlope*intensity)
	gamesBase  int
	gamesSlope float64
}

var profiles = map[string]Profile{
	Conservative: {
		Name:       Conservative,
		BaseRate:   0.30,
		Weights:    Weights{Tempo: 0.45, Press: 0.45, Line: 0.10},
		CapPerTeam: 3,
		scaleBase:  0.6,
		scaleSlope: 0.8,
		gamesBase:  2,
		gamesSlope: 2,
	},
	Default: {
		Name:       Default,
		BaseRate:   0.35,
		Weights:    Weights{Tempo: 0.45, Press: 0.45, Line: 0.10},
		CapPerTeam: 3,
		scaleBase:  0.6,
		scaleSlope: 0.8,
		gamesBase:  3,
		gamesSlope: 2,
	},
	Gritty: {
		Name:       Gritty,
		BaseRate:   0.40,
		Weights:    Weights{Tempo: 0.50, Press: 0.45, Line: 0.05},
		CapPerTeam: 4,
		scaleBase:  0.5,
		scaleSlope: 1.1,
		gamesBase:  4,
		gamesSlope: 3,
	},
}

// Lookup returns the named profile. The name is case-insensitive.
func Lookup(name string) (Profile, bool) {
	p, ok := profiles[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// Parse returns the named profile, falling back to Default for empty or
// unknown names. ok reports whether name was recognised.
func Parse(name string) (p Profile, ok bool) {
	if p, ok = Lookup(name); ok {
		return p, true
	}
	return profiles[Default], false
}

// Must returns the named profile or panics. Intended for constants in tests
// and wiring.
func Must(name string) Profile {
	p, ok := Lookup(name)
	if !ok {
		panic("injury: unknown profile " + name)
	}
	return p
}

// Names lists the known profile names in increasing severity.
func Names() []string {
	return []string{Conservative, Default, Gritty}
}

// Intensity blends a style into [0,1] using the profile weights.
func (p Profile) Intensity(style model.Style) float64 {
	v := p.Weights.Tempo*style.Tempo + p.Weights.Press*style.Press + p.Weights.Line*style.Line
	return math.Max(0, math.Min(1, v))
}

// LambdaScale scales the base rate by intensity.
func (p Profile) LambdaScale(intensity float64) float64 {
	return p.scaleBase + p.scaleSlope*intensity
}

// MaxGamesOut is the longest absence an injury can cause at this intensity.
func (p Profile) MaxGamesOut(intensity float64) int {
	return p.gamesBase + int(math.Round(p.gamesSlope*intensity))
}

// Lambda is the expected injury count for a side before noise.
func (p Profile) Lambda(intensity float64) float64 {
	return p.BaseRate * p.LambdaScale(intensity)
}

// Count draws the number of injuries for one side: one draw for the ±10%
// noise on the expected count, then Poisson sampling capped at CapPerTeam.
func (p Profile) Count(src *rng.Source, intensity float64) int {
	expected := p.Lambda(intensity) * (0.9 + src.Float64()*0.2)
	n := Poisson(src, expected)
	if n > p.CapPerTeam {
		n = p.CapPerTeam
	}
	return n
}

// GamesOut draws an absence length in [1, MaxGamesOut(intensity)].
func (p Profile) GamesOut(src *rng.Source, intensity float64) int {
	return 1 + src.IntN(p.MaxGamesOut(intensity))
}

// Poisson samples a Poisson(lambda) count by multiplying uniforms until the
// product drops to e^-lambda. lambda <= 0 returns 0 without drawing.
func Poisson(src *rng.Source, lambda float64) int {
	if lambda <= 0 || math.IsNaN(lambda) {
		return 0
	}
	limit := math.Exp(-lambda)
	k := 0
	prod := 1.0
	for {
		k++
		prod *= src.Float64()
		if prod <= limit {
			return k - 1
		}
	}
}

// RiskWeight is the relative chance that a player is the one injured.
func RiskWeight(p model.Player) float64 {
	return positionRisk(p.Position) *
		(1 + math.Max(0, float64(70-p.Stamina))/100) *
		(1 + math.Max(0, float64(p.Age-28))*0.03)
}

func positionRisk(pos model.Position) float64 {
	switch pos {
	case model.Defender:
		return 1.0
	case model.Midfielder:
		return 0.95
	case model.Forward:
		return 0.85
	case model.Goalkeeper:
		return 0.45
	}
	return 0.9
}
