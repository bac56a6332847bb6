package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/okian/kickoff/internal/adapters/repository"
	"github.com/okian/kickoff/internal/domain/model"
	"github.com/okian/kickoff/internal/domain/schedule"
	"github.com/okian/kickoff/pkg/logger"
	"github.com/okian/kickoff/pkg/metrics"
)

// fixtureNamespace scopes the name-based fixture UUIDs.
var fixtureNamespace = uuid.MustParse("6f1c54a2-6a55-4c57-9a53-0b8f3e1d2c7a")

// SeasonPlan describes a newly scheduled season.
type SeasonPlan struct {
	LeagueID string    `json:"league_id"`
	Season   int       `json:"season"`
	Rounds   int       `json:"rounds"`
	Fixtures int       `json:"fixtures"`
	StartsAt time.Time `json:"starts_at"`
}

// FixtureID derives a stable fixture id from its identity, so replaying the
// same schedule yields the same ids and therefore the same matches.
func FixtureID(leagueID string, season, round int, homeID, awayID string) string {
	name := fmt.Sprintf("%s/%d/%d/%s/%s", leagueID, season, round, homeID, awayID)
	return uuid.NewSHA1(fixtureNamespace, []byte(name)).String()
}

// StartNewSeason schedules the next season of a single round robin. Clubs
// are ordered by name before rotation. A zero start means one week after the
// last kickoff of the current season, or now for the first season.
func (s *Service) StartNewSeason(ctx context.Context, leagueID string, start time.Time) (SeasonPlan, error) {
	const op = "service.StartNewSeason"

	clubs, err := s.store.Clubs(ctx, leagueID)
	if err != nil {
		return SeasonPlan{}, fmt.Errorf("%s: %w", op, err)
	}
	slices.SortStableFunc(clubs, func(a, b model.Club) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	ids := make([]string, len(clubs))
	for i, c := range clubs {
		ids[i] = c.ID
	}
	if err := schedule.Validate(ids); err != nil {
		return SeasonPlan{}, fmt.Errorf("%s: %w", op, err)
	}

	current, err := s.store.CurrentSeason(ctx, leagueID)
	if err != nil {
		return SeasonPlan{}, fmt.Errorf("%s: %w", op, err)
	}
	if start.IsZero() {
		start, err = s.nextSeasonStart(ctx, leagueID, current)
		if err != nil {
			return SeasonPlan{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	rounds, err := schedule.Generate(ids, start)
	if err != nil {
		return SeasonPlan{}, fmt.Errorf("%s: %w", op, err)
	}

	season := current + 1
	var fixtures []model.Fixture
	for _, r := range rounds {
		for _, p := range r.Pairings {
			fixtures = append(fixtures, model.Fixture{
				ID:         FixtureID(leagueID, season, r.Number, p.Home, p.Away),
				LeagueID:   leagueID,
				Season:     season,
				Round:      r.Number,
				KickoffAt:  r.KickoffAt,
				HomeClubID: p.Home,
				AwayClubID: p.Away,
				Status:     model.Scheduled,
			})
		}
	}
	if err := s.store.CreateFixtures(ctx, fixtures); err != nil {
		return SeasonPlan{}, fmt.Errorf("%s: %w", op, err)
	}

	metrics.RecordFixturesScheduled(len(fixtures))
	plan := SeasonPlan{
		LeagueID: leagueID,
		Season:   season,
		Rounds:   len(rounds),
		Fixtures: len(fixtures),
		StartsAt: start.UTC(),
	}
	s.logger.Info(ctx, "season scheduled",
		logger.String("league_id", leagueID),
		logger.Int("season", season),
		logger.Int("rounds", plan.Rounds),
		logger.Int("fixtures", plan.Fixtures),
	)
	return plan, nil
}

func (s *Service) nextSeasonStart(ctx context.Context, leagueID string, current int) (time.Time, error) {
	if current == 0 {
		return s.now().UTC(), nil
	}
	fixtures, err := s.store.ListFixtures(ctx, repository.Filter{LeagueID: leagueID, Season: current})
	if err != nil {
		return time.Time{}, err
	}
	var last time.Time
	for _, f := range fixtures {
		if f.KickoffAt.After(last) {
			last = f.KickoffAt
		}
	}
	if last.IsZero() {
		return s.now().UTC(), nil
	}
	return last.Add(schedule.RoundInterval), nil
}
