// Package availability works out which players miss a round through
// suspension or injury, by replaying the season's earlier results.
package availability

import (
	"sort"

	"github.com/okian/kickoff/internal/domain/model"
)

// Discipline and injury limits.
const (
	YellowsPerBan = 3
	BanLength     = 1
	MaxGamesOut   = 10
)

// Absences lists the players of one club that cannot be picked, with the
// number of matches each still has to sit out.
type Absences struct {
	Suspended map[string]int
	Injured   map[string]int
}

// Excludes reports whether the player is suspended or injured.
func (a Absences) Excludes(playerID string) bool {
	return a.Suspended[playerID] > 0 || a.Injured[playerID] > 0
}

// Len returns the number of distinct unavailable players.
func (a Absences) Len() int {
	n := len(a.Suspended)
	for id := range a.Injured {
		if _, dup := a.Suspended[id]; !dup {
			n++
		}
	}
	return n
}

// Filter returns the squad without absent players, keeping roster order.
func Filter(squad model.Squad, a Absences) model.Squad {
	out := make(model.Squad, 0, len(squad))
	for _, p := range squad {
		if !a.Excludes(p.ID) {
			out = append(out, p)
		}
	}
	return out
}

// counter tracks matches left per player and the club each player belongs to.
type counter struct {
	left map[string]int
	club map[string]string
}

func newCounter() *counter {
	return &counter{left: map[string]int{}, club: map[string]string{}}
}

func (c *counter) add(playerID, clubID string, n int) {
	c.left[playerID] += n
	c.club[playerID] = clubID
}

// served decrements every running counter of the two clubs that just played.
func (c *counter) served(f model.Fixture) {
	for id, n := range c.left {
		if !f.Involves(c.club[id]) {
			continue
		}
		if n <= 1 {
			delete(c.left, id)
			continue
		}
		c.left[id] = n - 1
	}
}

// Compute replays the played matches of the league season before
// targetRound and returns the absences per club id.
func Compute(history []model.PlayedMatch, leagueID string, season, targetRound int) map[string]Absences {
	played := make([]model.PlayedMatch, 0, len(history))
	for _, m := range history {
		f := m.Fixture
		if f.LeagueID == leagueID && f.Season == season && f.Round < targetRound {
			played = append(played, m)
		}
	}
	sort.SliceStable(played, func(i, j int) bool {
		a, b := played[i].Fixture, played[j].Fixture
		if a.Round != b.Round {
			return a.Round < b.Round
		}
		return a.KickoffAt.Before(b.KickoffAt)
	})

	bans := newCounter()
	injuries := newCounter()
	yellows := map[string]int{}

	for _, m := range played {
		bans.served(m.Fixture)
		injuries.served(m.Fixture)

		for _, e := range m.Result.Events {
			switch ev := e.(type) {
			case model.Lineup, model.Goal:
			case model.Card:
				club := m.Fixture.ClubID(ev.Team)
				if ev.Severity == model.Red {
					bans.add(ev.PlayerID, club, BanLength)
					continue
				}
				yellows[ev.PlayerID]++
				if yellows[ev.PlayerID]%YellowsPerBan == 0 {
					bans.add(ev.PlayerID, club, BanLength)
				}
			case model.Injury:
				injuries.add(ev.PlayerID, m.Fixture.ClubID(ev.Team), clampGames(ev.GamesOut))
			}
		}
	}

	out := map[string]Absences{}
	get := func(club string) Absences {
		a, ok := out[club]
		if !ok {
			a = Absences{Suspended: map[string]int{}, Injured: map[string]int{}}
			out[club] = a
		}
		return a
	}
	for id, n := range bans.left {
		get(bans.club[id]).Suspended[id] = n
	}
	for id, n := range injuries.left {
		get(injuries.club[id]).Injured[id] = n
	}
	return out
}

// ForFixture returns the home and away absences for a fixture.
func ForFixture(history []model.PlayedMatch, f model.Fixture) (home, away Absences) {
	all := Compute(history, f.LeagueID, f.Season, f.Round)
	return all[f.HomeClubID], all[f.AwayClubID]
}

func clampGames(n int) int {
	switch {
	case n < 1:
		return 1
	case n > MaxGamesOut:
		return MaxGamesOut
	}
	return n
}
