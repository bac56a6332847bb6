package repository

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/okian/kickoff/internal/domain/model"
	"github.com/okian/kickoff/pkg/metrics"
)

// MemoryStore is a mutex-guarded in-memory Store.
//
// Clubs and squads keep their insertion order so schedules generated from
// them are reproducible.
type MemoryStore struct {
	mu sync.RWMutex

	leagues     map[string]model.League
	leagueOrder []string
	clubs       map[string][]model.Club
	squads      map[string]model.Squad
	styles      map[string]model.Style
	fixtures    map[string]model.Fixture
	results     map[string]model.MatchResult
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		leagues:  make(map[string]model.League),
		clubs:    make(map[string][]model.Club),
		squads:   make(map[string]model.Squad),
		styles:   make(map[string]model.Style),
		fixtures: make(map[string]model.Fixture),
		results:  make(map[string]model.MatchResult),
	}
}

func observe(op string, start time.Time) {
	metrics.RecordStoreLatency(op, float64(time.Since(start).Microseconds())/1000.0)
}

// Seed replaces the league, its clubs and their squads and styles.
func (s *MemoryStore) Seed(_ context.Context, league model.League, clubs []model.Club, squads map[string]model.Squad, styles map[string]model.Style) error {
	defer observe("seed", time.Now())
	if league.ID == "" {
		return fmt.Errorf("seed: empty league id: %w", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.leagues[league.ID]; !ok {
		s.leagueOrder = append(s.leagueOrder, league.ID)
	}
	s.leagues[league.ID] = league

	for _, c := range s.clubs[league.ID] {
		delete(s.squads, c.ID)
		delete(s.styles, c.ID)
	}

	cs := make([]model.Club, len(clubs))
	for i, c := range clubs {
		c.LeagueID = league.ID
		cs[i] = c
		s.squads[c.ID] = slices.Clone(squads[c.ID])
		if st, ok := styles[c.ID]; ok {
			s.styles[c.ID] = st
		}
	}
	s.clubs[league.ID] = cs
	return nil
}

// League returns a league by id.
func (s *MemoryStore) League(_ context.Context, id string) (model.League, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.leagues[id]
	if !ok {
		return model.League{}, fmt.Errorf("league %s: %w", id, ErrNotFound)
	}
	return l, nil
}

// Leagues returns every league in seeding order.
func (s *MemoryStore) Leagues(_ context.Context) ([]model.League, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.League, 0, len(s.leagueOrder))
	for _, id := range s.leagueOrder {
		out = append(out, s.leagues[id])
	}
	return out, nil
}

// Clubs returns the league's clubs in seeding order.
func (s *MemoryStore) Clubs(_ context.Context, leagueID string) ([]model.Club, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.leagues[leagueID]; !ok {
		return nil, fmt.Errorf("league %s: %w", leagueID, ErrNotFound)
	}
	return slices.Clone(s.clubs[leagueID]), nil
}

// Squad returns the club's squad. A seeded club may have an empty squad; an
// unknown club is ErrNotFound.
func (s *MemoryStore) Squad(_ context.Context, clubID string) (model.Squad, error) {
	defer observe("squad", time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()
	sq, ok := s.squads[clubID]
	if !ok {
		return nil, fmt.Errorf("club %s: %w", clubID, ErrNotFound)
	}
	return slices.Clone(sq), nil
}

// Style returns the club's saved style or the default one.
func (s *MemoryStore) Style(_ context.Context, clubID string) (model.Style, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, ok := s.styles[clubID]; ok {
		return st, nil
	}
	return model.DefaultStyle(), nil
}

// Fixture returns a fixture by id.
func (s *MemoryStore) Fixture(_ context.Context, id string) (model.Fixture, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.fixtures[id]
	if !ok {
		return model.Fixture{}, fmt.Errorf("fixture %s: %w", id, ErrNotFound)
	}
	return f, nil
}

// ListFixtures returns the fixtures matching flt.
func (s *MemoryStore) ListFixtures(_ context.Context, flt Filter) ([]model.Fixture, error) {
	defer observe("list_fixtures", time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked(flt), nil
}

func (s *MemoryStore) listLocked(flt Filter) []model.Fixture {
	var out []model.Fixture
	for _, f := range s.fixtures {
		if flt.Match(f) {
			out = append(out, f)
		}
	}
	sortFixtures(out)
	return out
}

// CreateFixtures stores new fixtures. The batch is rejected as a whole when
// any id is empty or already present.
func (s *MemoryStore) CreateFixtures(_ context.Context, fixtures []model.Fixture) error {
	defer observe("create_fixtures", time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(fixtures))
	for _, f := range fixtures {
		if f.ID == "" {
			return fmt.Errorf("create fixtures: empty id: %w", ErrInvalidInput)
		}
		if _, dup := seen[f.ID]; dup {
			return fmt.Errorf("create fixtures %s: %w", f.ID, ErrDuplicateID)
		}
		if _, exists := s.fixtures[f.ID]; exists {
			return fmt.Errorf("create fixtures %s: %w", f.ID, ErrDuplicateID)
		}
		seen[f.ID] = struct{}{}
	}
	for _, f := range fixtures {
		if f.Status == "" {
			f.Status = model.Scheduled
		}
		s.fixtures[f.ID] = f
	}
	return nil
}

// CurrentSeason returns the latest season scheduled for the league.
func (s *MemoryStore) CurrentSeason(_ context.Context, leagueID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	season := 0
	for _, f := range s.fixtures {
		if f.LeagueID == leagueID && f.Season > season {
			season = f.Season
		}
	}
	return season, nil
}

// HasResult reports whether the fixture has a stored result.
func (s *MemoryStore) HasResult(_ context.Context, fixtureID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.results[fixtureID]
	return ok, nil
}

// Result returns the stored result of a fixture.
func (s *MemoryStore) Result(_ context.Context, fixtureID string) (model.MatchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.results[fixtureID]
	if !ok {
		return model.MatchResult{}, fmt.Errorf("result %s: %w", fixtureID, ErrNotFound)
	}
	return r, nil
}

// SaveResult inserts the result if absent and marks the fixture PLAYED.
func (s *MemoryStore) SaveResult(_ context.Context, r model.MatchResult) (bool, error) {
	defer observe("save_result", time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.fixtures[r.FixtureID]
	if !ok {
		return false, fmt.Errorf("save result %s: %w", r.FixtureID, ErrNotFound)
	}
	if _, exists := s.results[r.FixtureID]; exists {
		return false, nil
	}
	r.Events = slices.Clone(r.Events)
	s.results[r.FixtureID] = r
	f.Status = model.Played
	s.fixtures[f.ID] = f
	return true, nil
}

// PlayedMatches returns played fixtures with their results.
func (s *MemoryStore) PlayedMatches(_ context.Context, flt Filter) ([]model.PlayedMatch, error) {
	defer observe("played_matches", time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()

	flt.Status = model.Played
	fixtures := s.listLocked(flt)
	out := make([]model.PlayedMatch, 0, len(fixtures))
	for _, f := range fixtures {
		if r, ok := s.results[f.ID]; ok {
			out = append(out, model.PlayedMatch{Fixture: f, Result: r})
		}
	}
	return out, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }

func sortFixtures(fs []model.Fixture) {
	slices.SortFunc(fs, func(a, b model.Fixture) int {
		if c := cmp.Compare(a.Season, b.Season); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Round, b.Round); c != 0 {
			return c
		}
		if c := a.KickoffAt.Compare(b.KickoffAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
