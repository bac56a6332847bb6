package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/okian/kickoff/internal/adapters/repository"
	"github.com/okian/kickoff/internal/domain/availability"
	"github.com/okian/kickoff/internal/domain/model"
	"github.com/okian/kickoff/internal/domain/simulation"
	"github.com/okian/kickoff/pkg/logger"
	"github.com/okian/kickoff/pkg/metrics"
)

// FixtureOutcome is the result of simulating one fixture. AlreadyPlayed is
// set when a stored result was found instead; Result then holds that record.
type FixtureOutcome struct {
	Fixture       model.Fixture     `json:"fixture"`
	Result        model.MatchResult `json:"-"`
	AlreadyPlayed bool              `json:"already_played"`
}

// RoundReport summarises a simulated round.
type RoundReport struct {
	LeagueID  string `json:"league_id"`
	Season    int    `json:"season"`
	Round     int    `json:"round"`
	Simulated int    `json:"simulated"`
	Skipped   int    `json:"skipped"`
}

// SeasonReport summarises every round simulated by SimulateRemainingSeason.
type SeasonReport struct {
	LeagueID  string        `json:"league_id"`
	Season    int           `json:"season"`
	Rounds    []RoundReport `json:"rounds"`
	Simulated int           `json:"simulated"`
	Skipped   int           `json:"skipped"`
}

// SimulateFixture plays a scheduled fixture and stores its result. A fixture
// that already has a result is returned untouched with AlreadyPlayed set.
func (s *Service) SimulateFixture(ctx context.Context, fixtureID string) (FixtureOutcome, error) {
	const op = "service.SimulateFixture"

	f, err := s.store.Fixture(ctx, fixtureID)
	if err != nil {
		return FixtureOutcome{}, fmt.Errorf("%s: %w", op, err)
	}

	if played, err := s.alreadyPlayed(ctx, f); err != nil || played.AlreadyPlayed {
		return played, err
	}

	history, err := s.store.PlayedMatches(ctx, repository.Filter{LeagueID: f.LeagueID, Season: f.Season})
	if err != nil {
		return FixtureOutcome{}, fmt.Errorf("%s: history: %w", op, err)
	}
	homeOut, awayOut := availability.ForFixture(history, f)

	home, err := s.team(ctx, f.HomeClubID, homeOut)
	if err != nil {
		return FixtureOutcome{}, fmt.Errorf("%s: %w", op, err)
	}
	away, err := s.team(ctx, f.AwayClubID, awayOut)
	if err != nil {
		return FixtureOutcome{}, fmt.Errorf("%s: %w", op, err)
	}

	start := time.Now()
	result := s.engine.Simulate(simulation.Input{Fixture: f, Home: home, Away: away})
	result.SimulatedAt = s.now().UTC()

	inserted, err := s.store.SaveResult(ctx, result)
	if err != nil {
		return FixtureOutcome{}, fmt.Errorf("%s: save: %w", op, err)
	}
	if !inserted {
		// Lost a race with another writer; report what was stored.
		return s.alreadyPlayed(ctx, f)
	}

	f.Status = model.Played
	recordResult(result, time.Since(start))
	s.logger.Debug(ctx, "fixture simulated",
		logger.String("fixture_id", f.ID),
		logger.String("league_id", f.LeagueID),
		logger.Int("round", f.Round),
		logger.Uint32("seed", result.Seed),
		logger.Int("home_goals", result.HomeGoals),
		logger.Int("away_goals", result.AwayGoals),
		logger.Int("home_unavailable", homeOut.Len()),
		logger.Int("away_unavailable", awayOut.Len()),
	)
	return FixtureOutcome{Fixture: f, Result: result}, nil
}

func (s *Service) alreadyPlayed(ctx context.Context, f model.Fixture) (FixtureOutcome, error) {
	has, err := s.store.HasResult(ctx, f.ID)
	if err != nil {
		return FixtureOutcome{}, fmt.Errorf("service.SimulateFixture: %w", err)
	}
	if !has {
		return FixtureOutcome{Fixture: f}, nil
	}
	r, err := s.store.Result(ctx, f.ID)
	if err != nil {
		return FixtureOutcome{}, fmt.Errorf("service.SimulateFixture: %w", err)
	}
	f.Status = model.Played
	metrics.RecordAlreadyPlayed()
	s.logger.Debug(ctx, "fixture already played", logger.String("fixture_id", f.ID))
	return FixtureOutcome{Fixture: f, Result: r, AlreadyPlayed: true}, nil
}

func (s *Service) team(ctx context.Context, clubID string, out availability.Absences) (simulation.Team, error) {
	squad, err := s.store.Squad(ctx, clubID)
	if err != nil {
		return simulation.Team{}, fmt.Errorf("squad %s: %w", clubID, err)
	}
	style, err := s.store.Style(ctx, clubID)
	if err != nil {
		return simulation.Team{}, fmt.Errorf("style %s: %w", clubID, err)
	}
	available := availability.Filter(squad, out)
	if len(available) < 11 {
		s.logger.Debug(ctx, "short squad, fielding fewer than eleven",
			logger.String("club_id", clubID),
			logger.Int("available", len(available)),
		)
	}
	return simulation.Team{Squad: available, Style: style}, nil
}

func recordResult(r model.MatchResult, took time.Duration) {
	metrics.RecordFixtureSimulated(float64(took.Microseconds())/1000.0, r.HomeGoals+r.AwayGoals)
	metrics.RecordGoals(strings.ToLower(string(model.Home)), r.HomeGoals)
	metrics.RecordGoals(strings.ToLower(string(model.Away)), r.AwayGoals)
	for _, e := range r.Events {
		switch ev := e.(type) {
		case model.Card:
			metrics.RecordCard(strings.ToLower(string(ev.Severity)))
		case model.Injury:
			metrics.RecordInjury()
		case model.Lineup, model.Goal:
		}
	}
}

// SimulateRound plays every scheduled fixture of a round in the league's
// current season, one at a time.
func (s *Service) SimulateRound(ctx context.Context, leagueID string, round int) (RoundReport, error) {
	const op = "service.SimulateRound"

	if round < 1 {
		return RoundReport{}, fmt.Errorf("%s: %w: %d", op, ErrInvalidRound, round)
	}
	season, err := s.currentSeason(ctx, leagueID)
	if err != nil {
		return RoundReport{}, fmt.Errorf("%s: %w", op, err)
	}
	return s.simulateRound(ctx, leagueID, season, round)
}

func (s *Service) simulateRound(ctx context.Context, leagueID string, season, round int) (RoundReport, error) {
	report := RoundReport{LeagueID: leagueID, Season: season, Round: round}
	if season == 0 {
		return report, nil
	}

	fixtures, err := s.store.ListFixtures(ctx, repository.Filter{
		LeagueID: leagueID,
		Season:   season,
		Round:    round,
		Status:   model.Scheduled,
	})
	if err != nil {
		return report, fmt.Errorf("service.SimulateRound: %w", err)
	}

	for _, f := range fixtures {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		out, err := s.SimulateFixture(ctx, f.ID)
		if err != nil {
			return report, err
		}
		if out.AlreadyPlayed {
			report.Skipped++
		} else {
			report.Simulated++
		}
	}

	s.logger.Info(ctx, "round simulated",
		logger.String("league_id", leagueID),
		logger.Int("season", season),
		logger.Int("round", round),
		logger.Int("simulated", report.Simulated),
		logger.Int("skipped", report.Skipped),
	)
	return report, nil
}

// SimulateRemainingSeason plays every scheduled round of the current season
// in ascending order.
func (s *Service) SimulateRemainingSeason(ctx context.Context, leagueID string) (SeasonReport, error) {
	const op = "service.SimulateRemainingSeason"

	season, err := s.currentSeason(ctx, leagueID)
	if err != nil {
		return SeasonReport{}, fmt.Errorf("%s: %w", op, err)
	}
	report := SeasonReport{LeagueID: leagueID, Season: season, Rounds: []RoundReport{}}
	if season == 0 {
		return report, nil
	}

	pending, err := s.store.ListFixtures(ctx, repository.Filter{LeagueID: leagueID, Season: season, Status: model.Scheduled})
	if err != nil {
		return report, fmt.Errorf("%s: %w", op, err)
	}
	var rounds []int
	for _, f := range pending {
		rounds = append(rounds, f.Round)
	}
	slices.Sort(rounds)
	rounds = slices.Compact(rounds)

	for _, r := range rounds {
		rr, err := s.simulateRound(ctx, leagueID, season, r)
		report.Simulated += rr.Simulated
		report.Skipped += rr.Skipped
		if rr.Simulated+rr.Skipped > 0 {
			report.Rounds = append(report.Rounds, rr)
		}
		if err != nil {
			return report, fmt.Errorf("%s: %w", op, err)
		}
	}
	return report, nil
}

// NextRound returns the lowest round of the current season that still has a
// scheduled fixture, or 0 when the season is complete.
func (s *Service) NextRound(ctx context.Context, leagueID string) (int, error) {
	season, err := s.currentSeason(ctx, leagueID)
	if err != nil || season == 0 {
		return 0, err
	}
	pending, err := s.store.ListFixtures(ctx, repository.Filter{LeagueID: leagueID, Season: season, Status: model.Scheduled})
	if err != nil {
		return 0, fmt.Errorf("service.NextRound: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}
	return pending[0].Round, nil
}

// SimulateNextRound plays the next unplayed round of the current season.
func (s *Service) SimulateNextRound(ctx context.Context, leagueID string) (RoundReport, error) {
	round, err := s.NextRound(ctx, leagueID)
	if err != nil {
		return RoundReport{}, err
	}
	if round == 0 {
		return RoundReport{}, fmt.Errorf("service.SimulateNextRound %s: %w", leagueID, ErrSeasonComplete)
	}
	return s.SimulateRound(ctx, leagueID, round)
}

// currentSeason checks the league exists and returns its latest season.
func (s *Service) currentSeason(ctx context.Context, leagueID string) (int, error) {
	if _, err := s.store.League(ctx, leagueID); err != nil {
		return 0, err
	}
	return s.store.CurrentSeason(ctx, leagueID)
}
