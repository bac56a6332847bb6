package leaguegen_test

import (
	"context"
	"testing"

	"github.com/okian/kickoff/internal/adapters/repository"
	"github.com/okian/kickoff/internal/domain/model"
	"github.com/okian/kickoff/internal/leaguegen"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGenerate(t *testing.T) {
	Convey("Given the default configuration", t, func() {
		l := leaguegen.Generate(leaguegen.Config{Seed: 42})

		Convey("Then it has ten clubs with full squads", func() {
			So(l.League.Name, ShouldEqual, leaguegen.DefaultName)
			So(l.Clubs, ShouldHaveLength, leaguegen.DefaultClubs)
			So(l.Clubs[0].Name, ShouldEqual, "Northbridge FC")

			for _, c := range l.Clubs {
				So(c.LeagueID, ShouldEqual, l.League.ID)
				So(l.Squads[c.ID], ShouldHaveLength, leaguegen.SquadSize)
				_, ok := l.Styles[c.ID]
				So(ok, ShouldBeTrue)
			}
		})

		Convey("Then squads follow the positional shape and attribute ranges", func() {
			counts := map[model.Position]int{}
			ids := map[string]bool{}
			for _, sq := range l.Squads {
				for _, p := range sq {
					counts[p.Position]++
					So(ids[p.ID], ShouldBeFalse)
					ids[p.ID] = true
					So(p.Overall, ShouldBeBetweenOrEqual, 47, 78)
					So(p.Age, ShouldBeBetweenOrEqual, 17, 34)
					So(p.Stamina, ShouldBeBetweenOrEqual, 50, 90)
					if p.Position == model.Goalkeeper {
						So(p.Goalkeeping, ShouldBeBetweenOrEqual, 50, 90)
					} else {
						So(p.Goalkeeping, ShouldBeBetweenOrEqual, 1, 20)
					}
				}
			}
			So(counts[model.Goalkeeper], ShouldEqual, 2*leaguegen.DefaultClubs)
			So(counts[model.Forward], ShouldEqual, 5*leaguegen.DefaultClubs)
		})

		Convey("Then styles stay within bounds", func() {
			for _, st := range l.Styles {
				So(st.Tempo, ShouldBeBetweenOrEqual, 0.3, 0.8)
				So(st.Press, ShouldBeBetweenOrEqual, 0.3, 0.8)
				So(st.Line, ShouldBeBetweenOrEqual, 0.3, 0.8)
				So(st.Formation, ShouldNotBeEmpty)
			}
		})

		Convey("Then the same seed reproduces the same league", func() {
			again := leaguegen.Generate(leaguegen.Config{Seed: 42})
			So(again, ShouldResemble, l)
		})

		Convey("Then a different seed changes ids", func() {
			other := leaguegen.Generate(leaguegen.Config{Seed: 7})
			So(other.League.ID, ShouldNotEqual, l.League.ID)
		})
	})

	Convey("Given more clubs than names", t, func() {
		l := leaguegen.Generate(leaguegen.Config{Clubs: 12, Seed: 1})

		So(l.Clubs, ShouldHaveLength, 12)
		So(l.Clubs[10].Name, ShouldEqual, "Northbridge FC 2")
		So(l.ClubIDs(), ShouldHaveLength, 12)
	})
}

func TestSeed(t *testing.T) {
	Convey("Given a generated league and a memory store", t, func() {
		ctx := context.Background()
		l := leaguegen.Generate(leaguegen.Config{Clubs: 4, Seed: 3})
		store := repository.NewMemoryStore()

		So(leaguegen.Seed(ctx, store, l), ShouldBeNil)

		clubs, err := store.Clubs(ctx, l.League.ID)
		So(err, ShouldBeNil)
		So(clubs, ShouldHaveLength, 4)

		sq, err := store.Squad(ctx, clubs[0].ID)
		So(err, ShouldBeNil)
		So(sq, ShouldHaveLength, leaguegen.SquadSize)
	})
}
