package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/kickoff/internal/adapters/repository"
	"github.com/okian/kickoff/internal/domain/model"
	"github.com/okian/kickoff/internal/domain/standings"
)

// DefaultLeadersLimit is used when a non-positive limit is requested.
const DefaultLeadersLimit = 10

// FixtureDetail is a fixture with its result when played.
type FixtureDetail struct {
	Fixture model.Fixture
	Result  *model.MatchResult
}

// Fixture returns a fixture and, if played, its result.
func (s *Service) Fixture(ctx context.Context, id string) (FixtureDetail, error) {
	f, err := s.store.Fixture(ctx, id)
	if err != nil {
		return FixtureDetail{}, fmt.Errorf("service.Fixture: %w", err)
	}
	d := FixtureDetail{Fixture: f}
	if f.Status != model.Played {
		return d, nil
	}
	r, err := s.store.Result(ctx, id)
	switch {
	case err == nil:
		d.Result = &r
	case !errors.Is(err, repository.ErrNotFound):
		return FixtureDetail{}, fmt.Errorf("service.Fixture: %w", err)
	}
	return d, nil
}

// Leagues lists every known league.
func (s *Service) Leagues(ctx context.Context) ([]model.League, error) {
	ls, err := s.store.Leagues(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.Leagues: %w", err)
	}
	return ls, nil
}

// resolveSeason maps season 0 to the league's current season.
func (s *Service) resolveSeason(ctx context.Context, leagueID string, season int) (int, error) {
	current, err := s.currentSeason(ctx, leagueID)
	if err != nil {
		return 0, err
	}
	if season <= 0 {
		return current, nil
	}
	return season, nil
}

// Fixtures lists a league's fixtures. Season 0 means the current season and
// round 0 means every round.
func (s *Service) Fixtures(ctx context.Context, leagueID string, season, round int) ([]model.Fixture, error) {
	season, err := s.resolveSeason(ctx, leagueID, season)
	if err != nil {
		return nil, fmt.Errorf("service.Fixtures: %w", err)
	}
	if season == 0 {
		return []model.Fixture{}, nil
	}
	fs, err := s.store.ListFixtures(ctx, repository.Filter{LeagueID: leagueID, Season: season, Round: round})
	if err != nil {
		return nil, fmt.Errorf("service.Fixtures: %w", err)
	}
	return fs, nil
}

// Standings returns the league table for a season (0 = current).
func (s *Service) Standings(ctx context.Context, leagueID string, season int) ([]standings.Row, error) {
	clubs, played, err := s.seasonData(ctx, leagueID, season)
	if err != nil {
		return nil, fmt.Errorf("service.Standings: %w", err)
	}
	return standings.Table(clubs, played), nil
}

// Leaders returns the season's player leaderboards (season 0 = current).
func (s *Service) Leaders(ctx context.Context, leagueID string, season, limit int) (standings.Boards, error) {
	if limit <= 0 {
		limit = DefaultLeadersLimit
	}
	clubs, played, err := s.seasonData(ctx, leagueID, season)
	if err != nil {
		return standings.Boards{}, fmt.Errorf("service.Leaders: %w", err)
	}
	squads := make(map[string]model.Squad, len(clubs))
	for _, c := range clubs {
		sq, err := s.store.Squad(ctx, c.ID)
		if err != nil {
			return standings.Boards{}, fmt.Errorf("service.Leaders: %w", err)
		}
		squads[c.ID] = sq
	}
	return standings.Leaders(played, standings.NewDirectory(clubs, squads), limit), nil
}

// PlayerStats returns one player's season summary (season 0 = current).
func (s *Service) PlayerStats(ctx context.Context, leagueID, playerID string, season int) (standings.PlayerLine, error) {
	const op = "service.PlayerStats"
	clubs, played, err := s.seasonData(ctx, leagueID, season)
	if err != nil {
		return standings.PlayerLine{}, fmt.Errorf("%s: %w", op, err)
	}
	squads := make(map[string]model.Squad, len(clubs))
	styles := make(map[string]model.Style, len(clubs))
	for _, c := range clubs {
		sq, err := s.store.Squad(ctx, c.ID)
		if err != nil {
			return standings.PlayerLine{}, fmt.Errorf("%s: %w", op, err)
		}
		squads[c.ID] = sq
		st, err := s.store.Style(ctx, c.ID)
		if err != nil {
			return standings.PlayerLine{}, fmt.Errorf("%s: %w", op, err)
		}
		styles[c.ID] = st
	}
	line, ok := standings.Player(playerID, played, standings.NewDirectory(clubs, squads), styles)
	if !ok {
		return standings.PlayerLine{}, fmt.Errorf("%s: player %s in league %s: %w", op, playerID, leagueID, ErrNotFound)
	}
	return line, nil
}

func (s *Service) seasonData(ctx context.Context, leagueID string, season int) ([]model.Club, []model.PlayedMatch, error) {
	season, err := s.resolveSeason(ctx, leagueID, season)
	if err != nil {
		return nil, nil, err
	}
	clubs, err := s.store.Clubs(ctx, leagueID)
	if err != nil {
		return nil, nil, err
	}
	if season == 0 {
		return clubs, nil, nil
	}
	played, err := s.store.PlayedMatches(ctx, repository.Filter{LeagueID: leagueID, Season: season})
	if err != nil {
		return nil, nil, err
	}
	return clubs, played, nil
}
