// Package schedule builds single round-robin seasons with the circle method.
package schedule

import (
	"errors"
	"fmt"
	"time"
)

// RoundInterval is the gap between consecutive rounds.
const RoundInterval = 7 * 24 * time.Hour

var (
	// ErrTooFewClubs is returned for fewer than two clubs.
	ErrTooFewClubs = errors.New("schedule: at least two clubs required")
	// ErrOddClubCount is returned for an odd number of clubs; byes are not supported.
	ErrOddClubCount = errors.New("schedule: club count must be even")
	// ErrDuplicateClub is returned when an id appears twice.
	ErrDuplicateClub = errors.New("schedule: duplicate club id")
)

// Pairing is one match of a round.
type Pairing struct {
	Home string
	Away string
}

// Round is one matchday. Number starts at 1.
type Round struct {
	Number    int
	KickoffAt time.Time
	Pairings  []Pairing
}

// Validate checks that ids can be scheduled.
func Validate(clubIDs []string) error {
	n := len(clubIDs)
	if n < 2 {
		return ErrTooFewClubs
	}
	if n%2 != 0 {
		return fmt.Errorf("%w: got %d", ErrOddClubCount, n)
	}
	seen := make(map[string]struct{}, n)
	for _, id := range clubIDs {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateClub, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// Pairings returns the matches of round r (0-based) for an even, validated
// list of ids. The first club stays fixed while the rest rotate one step per
// round; home and away follow the classic two-row rotation.
func Pairings(clubIDs []string, r int) []Pairing {
	n := len(clubIDs)
	if n < 2 || n%2 != 0 {
		return nil
	}
	m := n - 1
	ring := func(k int) string {
		return clubIDs[1+((k+r)%m+m)%m]
	}

	out := make([]Pairing, 0, n/2)
	out = append(out, Pairing{Home: clubIDs[0], Away: ring(n - 2)})
	for i := 1; i < n/2; i++ {
		out = append(out, Pairing{Home: ring(i - 1), Away: ring(n - 2 - i)})
	}
	return out
}

// Generate returns all n-1 rounds, round r kicking off r weeks after start.
func Generate(clubIDs []string, start time.Time) ([]Round, error) {
	if err := Validate(clubIDs); err != nil {
		return nil, err
	}
	rounds := make([]Round, len(clubIDs)-1)
	for r := range rounds {
		rounds[r] = Round{
			Number:    r + 1,
			KickoffAt: start.Add(time.Duration(r) * RoundInterval),
			Pairings:  Pairings(clubIDs, r),
		}
	}
	return rounds, nil
}
