// Package strength turns an available roster and a tactical style into the
// scalar used for the win-probability split.
package strength

import "github.com/okian/kickoff/internal/domain/model"

const (
	neutralStyleSum = 1.5
	bumpScale       = 4.0
)

// Bump is the tactical adjustment ((tempo+press+line) - 1.5) * 4, roughly
// within [-6, +6] for the full knob range and [-2, +2] for typical setups.
func Bump(style model.Style) float64 {
	return (style.Tempo + style.Press + style.Line - neutralStyleSum) * bumpScale
}

// Average returns the mean overall rating of the squad, 0 when empty.
func Average(squad model.Squad) float64 {
	if len(squad) == 0 {
		return 0
	}
	sum := 0
	for _, p := range squad {
		sum += p.Overall
	}
	return float64(sum) / float64(len(squad))
}

// Compute returns Average(available) + Bump(style). Suspended and injured
// players must already be removed from available.
func Compute(available model.Squad, style model.Style) float64 {
	return Average(available) + Bump(style)
}
