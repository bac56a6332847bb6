package model

import "time"

// FixtureStatus tracks whether a fixture has been simulated.
type FixtureStatus string

// Fixture statuses. SCHEDULED moves to PLAYED exactly once.
const (
	Scheduled FixtureStatus = "SCHEDULED"
	Played    FixtureStatus = "PLAYED"
)

// League groups clubs that play each other.
type League struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Tier int    `json:"tier"`
}

// Club is a league member.
type Club struct {
	ID       string `json:"id"`
	LeagueID string `json:"league_id"`
	Name     string `json:"name"`
}

// Fixture is a scheduled meeting between two clubs.
type Fixture struct {
	ID         string        `json:"id"`
	LeagueID   string        `json:"league_id"`
	Season     int           `json:"season"`
	Round      int           `json:"round"`
	KickoffAt  time.Time     `json:"kickoff_at"`
	HomeClubID string        `json:"home_club_id"`
	AwayClubID string        `json:"away_club_id"`
	Status     FixtureStatus `json:"status"`
}

// ClubID returns the club playing on the given side.
func (f Fixture) ClubID(side Side) string {
	if side == Home {
		return f.HomeClubID
	}
	return f.AwayClubID
}

// Involves reports whether clubID plays in the fixture.
func (f Fixture) Involves(clubID string) bool {
	return f.HomeClubID == clubID || f.AwayClubID == clubID
}

// PlayerOfMatch is the best rated player of a match.
type PlayerOfMatch struct {
	PlayerID string  `json:"player_id"`
	Name     string  `json:"name"`
	Rating   float64 `json:"rating"`
}

// MatchResult is the immutable record of one simulated fixture.
type MatchResult struct {
	FixtureID     string
	Seed          uint32
	HomeGoals     int
	AwayGoals     int
	XGHome        float64
	XGAway        float64
	Events        []Event
	PlayerOfMatch *PlayerOfMatch
	SimulatedAt   time.Time
}

// Goals returns the goals scored by side.
func (r MatchResult) Goals(side Side) int {
	if side == Home {
		return r.HomeGoals
	}
	return r.AwayGoals
}

// PlayedMatch pairs a played fixture with its result.
type PlayedMatch struct {
	Fixture Fixture
	Result  MatchResult
}
