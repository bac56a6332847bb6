package availability_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/okian/kickoff/internal/domain/availability"
	"github.com/okian/kickoff/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var kickoff = time.Date(2025, 8, 1, 15, 0, 0, 0, time.UTC)

// played builds a played fixture of league l1 season 1 between club a (home)
// and club b (away), or the reverse when swap is set.
func played(round int, swap bool, events ...model.Event) model.PlayedMatch {
	home, away := "a", "b"
	if swap {
		home, away = away, home
	}
	id := fmt.Sprintf("fx-%d-%s", round, home)
	return model.PlayedMatch{
		Fixture: model.Fixture{
			ID: id, LeagueID: "l1", Season: 1, Round: round,
			KickoffAt:  kickoff.AddDate(0, 0, 7*(round-1)),
			HomeClubID: home, AwayClubID: away, Status: model.Played,
		},
		Result: model.MatchResult{FixtureID: id, Events: events},
	}
}

func yellow(side model.Side, id string) model.Event {
	return model.Card{At: 10, Team: side, PlayerID: id, Severity: model.Yellow}
}

func TestCompute(t *testing.T) {
	Convey("Given a player booked in three consecutive matches", t, func() {
		history := []model.PlayedMatch{
			played(1, false, yellow(model.Home, "a7")),
			played(2, true, yellow(model.Away, "a7")),
			played(3, false, yellow(model.Home, "a7")),
		}

		Convey("Then the player is suspended for round 4 only", func() {
			So(availability.Compute(history, "l1", 1, 3)["a"].Excludes("a7"), ShouldBeFalse)
			So(availability.Compute(history, "l1", 1, 4)["a"].Suspended, ShouldResemble, map[string]int{"a7": 1})

			history = append(history, played(4, true))
			So(availability.Compute(history, "l1", 1, 5)["a"].Excludes("a7"), ShouldBeFalse)
		})
	})

	Convey("Given a red card", t, func() {
		history := []model.PlayedMatch{
			played(1, false, model.Card{At: 30, Team: model.Away, PlayerID: "b3", Severity: model.Red}),
		}

		Convey("Then the player misses the next match of the club", func() {
			home, away := availability.ForFixture(history, model.Fixture{LeagueID: "l1", Season: 1, Round: 2, HomeClubID: "b", AwayClubID: "a"})
			So(home.Excludes("b3"), ShouldBeTrue)
			So(away.Len(), ShouldEqual, 0)
		})
	})

	Convey("Given an injury of three games in round 1", t, func() {
		history := []model.PlayedMatch{
			played(1, false, model.Injury{At: 50, Team: model.Home, PlayerID: "a1", GamesOut: 3}),
		}

		Convey("Then the player is out for the next three rounds the club plays", func() {
			for round := 2; round <= 4; round++ {
				So(availability.Compute(history, "l1", 1, round)["a"].Injured["a1"], ShouldEqual, 5-round)
				history = append(history, played(round, round%2 == 0))
			}
			So(availability.Compute(history, "l1", 1, 5)["a"].Excludes("a1"), ShouldBeFalse)
		})
	})

	Convey("Given out of range injury lengths", t, func() {
		history := []model.PlayedMatch{
			played(1, false,
				model.Injury{At: 1, Team: model.Home, PlayerID: "a1", GamesOut: 0},
				model.Injury{At: 2, Team: model.Away, PlayerID: "b1", GamesOut: 40}),
		}
		all := availability.Compute(history, "l1", 1, 2)

		So(all["a"].Injured["a1"], ShouldEqual, 1)
		So(all["b"].Injured["b1"], ShouldEqual, availability.MaxGamesOut)
	})

	Convey("Given matches from another season, league or a later round", t, func() {
		other := played(1, false, model.Injury{At: 5, Team: model.Home, PlayerID: "a9", GamesOut: 4})
		other.Fixture.Season = 2
		later := played(5, false, model.Injury{At: 5, Team: model.Home, PlayerID: "a8", GamesOut: 4})
		foreign := played(1, false, model.Injury{At: 5, Team: model.Home, PlayerID: "a6", GamesOut: 4})
		foreign.Fixture.LeagueID = "l2"

		So(availability.Compute([]model.PlayedMatch{other, later, foreign}, "l1", 1, 3), ShouldBeEmpty)
	})

	Convey("Given history out of order", t, func() {
		history := []model.PlayedMatch{
			played(2, true),
			played(1, false, model.Injury{At: 50, Team: model.Home, PlayerID: "a1", GamesOut: 2}),
		}

		Convey("Then it is replayed by round", func() {
			So(availability.Compute(history, "l1", 1, 3)["a"].Injured["a1"], ShouldEqual, 1)
		})
	})
}

func TestFilter(t *testing.T) {
	Convey("Given a squad and absences", t, func() {
		squad := model.Squad{{ID: "p1"}, {ID: "p2"}, {ID: "p3"}, {ID: "p4"}}
		a := availability.Absences{
			Suspended: map[string]int{"p2": 1},
			Injured:   map[string]int{"p2": 2, "p4": 1},
		}

		So(a.Len(), ShouldEqual, 2)
		So(availability.Filter(squad, a), ShouldResemble, model.Squad{{ID: "p1"}, {ID: "p3"}})
		So(availability.Filter(squad, availability.Absences{}), ShouldResemble, squad)
	})
}
