package repository_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/okian/kickoff/internal/adapters/repository"
	"github.com/okian/kickoff/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *repository.GormStore {
	t.Helper()
	s, err := repository.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	league, clubs, squads, styles := testLeague()
	require.NoError(t, s.Seed(context.Background(), league, clubs, squads, styles))
	require.NoError(t, s.CreateFixtures(context.Background(), testFixtures()))
	return s
}

func TestGormStore_Seed(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	clubs, err := s.Clubs(ctx, "l1")
	require.NoError(t, err)
	require.Len(t, clubs, 2)
	assert.Equal(t, "c1", clubs[0].ID)
	assert.Equal(t, "Bravo", clubs[1].Name)

	squad, err := s.Squad(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, squad, 2)
	assert.Equal(t, model.Forward, squad[1].Position)
	assert.Equal(t, 80, squad[1].Shooting)

	style, err := s.Style(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 0.8, style.Tempo)

	style, err = s.Style(ctx, "c2")
	require.NoError(t, err)
	assert.Equal(t, model.DefaultStyle(), style)

	// Reseeding replaces the roster rather than appending to it.
	league, clubsIn, squads, styles := testLeague()
	squads["c1"] = squads["c1"][:1]
	require.NoError(t, s.Seed(ctx, league, clubsIn, squads, styles))
	squad, err = s.Squad(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, squad, 1)

	leagues, err := s.Leagues(ctx)
	require.NoError(t, err)
	assert.Len(t, leagues, 1)

	_, err = s.League(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGormStore_SquadUnknownClub(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.Squad(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	league, clubs, squads, styles := testLeague()
	clubs = append(clubs, model.Club{ID: "c3", Name: "Charlie"})
	require.NoError(t, s.Seed(ctx, league, clubs, squads, styles))

	squad, err := s.Squad(ctx, "c3")
	require.NoError(t, err)
	assert.Empty(t, squad)
}

func TestGormStore_Fixtures(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	fs, err := s.ListFixtures(ctx, repository.Filter{LeagueID: "l1", Season: 1})
	require.NoError(t, err)
	require.Len(t, fs, 2)
	assert.Equal(t, "f1", fs[0].ID)
	assert.Equal(t, model.Scheduled, fs[0].Status)
	assert.True(t, fs[0].KickoffAt.Equal(kickoff))

	season, err := s.CurrentSeason(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, 1, season)

	season, err = s.CurrentSeason(ctx, "nobody")
	require.NoError(t, err)
	assert.Equal(t, 0, season)

	err = s.CreateFixtures(ctx, []model.Fixture{{ID: "f1", LeagueID: "l1"}})
	assert.ErrorIs(t, err, repository.ErrDuplicateID)

	_, err = s.Fixture(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGormStore_SaveResult(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	inserted, err := s.SaveResult(ctx, testResult("f1"))
	require.NoError(t, err)
	assert.True(t, inserted)

	f, err := s.Fixture(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, model.Played, f.Status)

	has, err := s.HasResult(ctx, "f1")
	require.NoError(t, err)
	assert.True(t, has)

	r, err := s.Result(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, uint32(42), r.Seed)
	assert.Equal(t, testResult("f1").Events, r.Events)
	require.NotNil(t, r.PlayerOfMatch)
	assert.Equal(t, "c1-fw", r.PlayerOfMatch.PlayerID)

	again := testResult("f1")
	again.AwayGoals = 5
	inserted, err = s.SaveResult(ctx, again)
	require.NoError(t, err)
	assert.False(t, inserted)

	r, err = s.Result(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, 0, r.AwayGoals)

	played, err := s.PlayedMatches(ctx, repository.Filter{LeagueID: "l1"})
	require.NoError(t, err)
	require.Len(t, played, 1)
	assert.Equal(t, "f1", played[0].Result.FixtureID)

	_, err = s.SaveResult(ctx, testResult("ghost"))
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGormStore_SaveResultNilPlayerOfMatch(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	r := testResult("f2")
	r.PlayerOfMatch = nil
	r.Events = nil
	_, err := s.SaveResult(ctx, r)
	require.NoError(t, err)

	got, err := s.Result(ctx, "f2")
	require.NoError(t, err)
	assert.Nil(t, got.PlayerOfMatch)
	assert.Empty(t, got.Events)
}

func TestGormStore_ConcurrentSaveResult(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.SaveResult(ctx, testResult("f2"))
			if assert.NoError(t, err) && ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}
