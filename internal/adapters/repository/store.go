// Package repository defines the persistence contracts used by the
// simulation service and provides in-memory and gorm-backed stores.
package repository

import (
	"context"

	"github.com/okian/kickoff/internal/domain/model"
)

// Filter narrows a fixture listing. Zero values mean "any".
type Filter struct {
	LeagueID string
	Season   int
	Round    int
	Status   model.FixtureStatus
}

// Match reports whether f passes the filter.
func (flt Filter) Match(f model.Fixture) bool {
	switch {
	case flt.LeagueID != "" && f.LeagueID != flt.LeagueID:
		return false
	case flt.Season != 0 && f.Season != flt.Season:
		return false
	case flt.Round != 0 && f.Round != flt.Round:
		return false
	case flt.Status != "" && f.Status != flt.Status:
		return false
	}
	return true
}

// RosterReader loads a club's current squad.
type RosterReader interface {
	Squad(ctx context.Context, clubID string) (model.Squad, error)
}

// TacticReader loads a club's tactical style.
// A club without a saved tactic gets model.DefaultStyle.
type TacticReader interface {
	Style(ctx context.Context, clubID string) (model.Style, error)
}

// FixtureStore persists scheduled fixtures.
type FixtureStore interface {
	Fixture(ctx context.Context, id string) (model.Fixture, error)

	// ListFixtures returns fixtures ordered by season, round, kickoff and id.
	ListFixtures(ctx context.Context, flt Filter) ([]model.Fixture, error)

	CreateFixtures(ctx context.Context, fixtures []model.Fixture) error

	// CurrentSeason returns the highest scheduled season, or 0 when none exists.
	CurrentSeason(ctx context.Context, leagueID string) (int, error)
}

// MatchStore persists simulated results.
type MatchStore interface {
	HasResult(ctx context.Context, fixtureID string) (bool, error)
	Result(ctx context.Context, fixtureID string) (model.MatchResult, error)

	// SaveResult stores the result and marks its fixture PLAYED atomically.
	// It returns false without writing when a result already exists.
	SaveResult(ctx context.Context, r model.MatchResult) (bool, error)

	// PlayedMatches returns played fixtures matching flt with their results,
	// in the same order as ListFixtures.
	PlayedMatches(ctx context.Context, flt Filter) ([]model.PlayedMatch, error)
}

// LeagueStore reads leagues and their clubs.
type LeagueStore interface {
	League(ctx context.Context, id string) (model.League, error)
	Leagues(ctx context.Context) ([]model.League, error)
	Clubs(ctx context.Context, leagueID string) ([]model.Club, error)
}

// Seeder loads a league with its clubs, squads and styles.
type Seeder interface {
	Seed(ctx context.Context, league model.League, clubs []model.Club, squads map[string]model.Squad, styles map[string]model.Style) error
}

// Store is the full persistence surface.
type Store interface {
	RosterReader
	TacticReader
	FixtureStore
	MatchStore
	LeagueStore
	Seeder

	Close() error
}
