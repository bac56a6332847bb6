// Package rng provides the seeded pseudo-random stream used by match
// simulation. A Source is not safe for concurrent use; every simulation owns
// its own instance.
package rng

import "math"

const (
	mulberryIncrement = 0x6D2B79F5
	twoPow32          = 4294967296.0
)

// Source is a mulberry32 generator: a 32-bit add/xorshift/multiply mixer.
// The same seed always yields the same sequence.
type Source struct {
	state uint32
	draws int
}

// New returns a Source seeded with seed.
func New(seed uint32) *Source {
	return &Source{state: seed}
}

// Float64 returns the next value in [0,1).
func (s *Source) Float64() float64 {
	s.draws++
	s.state += mulberryIncrement
	t := s.state
	t = (t ^ (t >> 15)) * (t | 1)
	t ^= t + (t^(t>>7))*(t|61)
	return float64(t^(t>>14)) / twoPow32
}

// IntN returns floor(Float64()*n), a value in [0,n). It consumes one draw.
// n <= 0 returns 0 without drawing.
func (s *Source) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	return int(math.Floor(s.Float64() * float64(n)))
}

// Bool returns true with probability p. It consumes one draw.
func (s *Source) Bool(p float64) bool {
	return s.Float64() < p
}

// Draws returns how many values have been consumed so far.
func (s *Source) Draws() int { return s.draws }

// WeightedPick returns one of items with probability proportional to its
// weight, consuming exactly one draw. Negative or missing weights count as 0;
// if every weight is 0 the pick is uniform. An empty list returns the zero
// value without drawing.
func WeightedPick[T any](s *Source, items []T, weights []float64) T {
	var zero T
	if len(items) == 0 {
		return zero
	}

	w := make([]float64, len(items))
	sum := 0.0
	for i := range items {
		if i < len(weights) && weights[i] > 0 && !math.IsInf(weights[i], 1) {
			w[i] = weights[i]
		}
		sum += w[i]
	}
	if sum <= 0 {
		for i := range w {
			w[i] = 1
		}
		sum = float64(len(w))
	}

	x := s.Float64() * sum
	for i, item := range items {
		x -= w[i]
		if x <= 0 {
			return item
		}
	}
	return items[len(items)-1]
}
