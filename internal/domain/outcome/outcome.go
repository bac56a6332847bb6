// Package outcome produces goal counts and expected goals for a fixture from
// the two team strengths.
//
// Draws are consumed in a fixed order: total xG noise, home noise, away
// noise, ten home chances, ten away chances. Reordering them changes every
// simulated result for a given seed.
package outcome

import (
	"math"

	"github.com/okian/kickoff/internal/domain/rng"
)

// Model constants.
const (
	BaseTotalXG   = 2.6
	TotalXGSpread = 0.4
	EloDivisor    = 25.0
	NoiseFloor    = 0.9
	NoiseSpread   = 0.2
	MinXG         = 0.1
	Chances       = 10
)

// Outcome is the scoreline and xG of one match. XG values are rounded to two
// decimals.
type Outcome struct {
	HomeGoals int
	AwayGoals int
	XGHome    float64
	XGAway    float64
}

// HomeShare returns the logistic share of the total xG going to the home
// side. A strength gap of 25 points is a 10:1 odds ratio.
func HomeShare(strengthHome, strengthAway float64) float64 {
	return 1 / (1 + math.Pow(10, (strengthAway-strengthHome)/EloDivisor))
}

// Generate draws an outcome from src.
func Generate(src *rng.Source, strengthHome, strengthAway float64) Outcome {
	totalXG := BaseTotalXG + (src.Float64()-0.5)*TotalXGSpread
	share := HomeShare(strengthHome, strengthAway)

	xgHome := math.Max(MinXG, totalXG*share*(NoiseFloor+src.Float64()*NoiseSpread))
	xgAway := math.Max(MinXG, totalXG*(1-share)*(NoiseFloor+src.Float64()*NoiseSpread))

	// binomial(10, xg/10) stands in for Poisson(xg); it caps goals at 10.
	homeGoals := chances(src, xgHome)
	awayGoals := chances(src, xgAway)

	return Outcome{
		HomeGoals: homeGoals,
		AwayGoals: awayGoals,
		XGHome:    Round2(xgHome),
		XGAway:    Round2(xgAway),
	}
}

// Simulate seeds a fresh source and generates an outcome.
func Simulate(seed uint32, strengthHome, strengthAway float64) Outcome {
	return Generate(rng.New(seed), strengthHome, strengthAway)
}

func chances(src *rng.Source, xg float64) int {
	p := xg / Chances
	goals := 0
	for i := 0; i < Chances; i++ {
		if src.Float64() < p {
			goals++
		}
	}
	return goals
}

// Round2 rounds v to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
