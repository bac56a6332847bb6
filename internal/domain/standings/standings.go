// Package standings builds the league table and the player leaderboards from
// played matches.
package standings

import (
	"math"
	"sort"
	"strings"

	"github.com/okian/kickoff/internal/domain/model"
)

// Points per result.
const (
	PointsWin  = 3
	PointsDraw = 1
	FormLength = 5
)

// Row is one club's line in the table.
type Row struct {
	ClubID   string  `json:"club_id"`
	ClubName string  `json:"club_name"`
	Played   int     `json:"played"`
	Won      int     `json:"won"`
	Drawn    int     `json:"drawn"`
	Lost     int     `json:"lost"`
	GF       int     `json:"gf"`
	GA       int     `json:"ga"`
	GD       int     `json:"gd"`
	Points   int     `json:"points"`
	Form     string  `json:"form"`
	PPG      float64 `json:"ppg"`
}

// Table computes the standings for clubs. Matches involving unknown clubs are
// ignored. Rows sort by points, goal difference, goals for, name, then club id.
func Table(clubs []model.Club, played []model.PlayedMatch) []Row {
	rows := make(map[string]*Row, len(clubs))
	order := make([]*Row, 0, len(clubs))
	for _, c := range clubs {
		r := &Row{ClubID: c.ID, ClubName: c.Name}
		rows[c.ID] = r
		order = append(order, r)
	}

	matches := append([]model.PlayedMatch(nil), played...)
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i].Fixture, matches[j].Fixture
		if a.Round != b.Round {
			return a.Round < b.Round
		}
		return a.KickoffAt.Before(b.KickoffAt)
	})

	form := map[string][]string{}
	for _, m := range matches {
		h, a := rows[m.Fixture.HomeClubID], rows[m.Fixture.AwayClubID]
		if h == nil || a == nil {
			continue
		}
		hg, ag := m.Result.HomeGoals, m.Result.AwayGoals
		h.Played++
		a.Played++
		h.GF += hg
		h.GA += ag
		a.GF += ag
		a.GA += hg

		switch {
		case hg > ag:
			h.Won++
			a.Lost++
			h.Points += PointsWin
			form[h.ClubID] = append(form[h.ClubID], "W")
			form[a.ClubID] = append(form[a.ClubID], "L")
		case hg < ag:
			a.Won++
			h.Lost++
			a.Points += PointsWin
			form[h.ClubID] = append(form[h.ClubID], "L")
			form[a.ClubID] = append(form[a.ClubID], "W")
		default:
			h.Drawn++
			a.Drawn++
			h.Points += PointsDraw
			a.Points += PointsDraw
			form[h.ClubID] = append(form[h.ClubID], "D")
			form[a.ClubID] = append(form[a.ClubID], "D")
		}
	}

	out := make([]Row, 0, len(order))
	for _, r := range order {
		r.GD = r.GF - r.GA
		if r.Played > 0 {
			r.PPG = math.Round(float64(r.Points)/float64(r.Played)*100) / 100
		}
		f := form[r.ClubID]
		if len(f) > FormLength {
			f = f[len(f)-FormLength:]
		}
		r.Form = strings.Join(f, " ")
		out = append(out, *r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GD != b.GD {
			return a.GD > b.GD
		}
		if a.GF != b.GF {
			return a.GF > b.GF
		}
		if a.ClubName != b.ClubName {
			return a.ClubName < b.ClubName
		}
		return a.ClubID < b.ClubID
	})
	return out
}

// Entry is one player's line on a leaderboard.
type Entry struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	ClubID     string `json:"club_id"`
	ClubName   string `json:"club_name"`
	Value      int    `json:"value"`
}

// DisciplineEntry is one player's card count.
type DisciplineEntry struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	ClubID     string `json:"club_id"`
	ClubName   string `json:"club_name"`
	Yellows    int    `json:"yellows"`
	Reds       int    `json:"reds"`
}

// Boards groups the four leaderboards.
type Boards struct {
	Scorers     []Entry           `json:"scorers"`
	Assists     []Entry           `json:"assists"`
	CleanSheets []Entry           `json:"clean_sheets"`
	Discipline  []DisciplineEntry `json:"discipline"`
}

// Directory resolves player and club names.
type Directory struct {
	Players map[string]model.Player
	Clubs   map[string]string
	// PlayerClubs maps a player id to the club whose squad lists it.
	PlayerClubs map[string]string
}

// NewDirectory indexes clubs and their squads.
func NewDirectory(clubs []model.Club, squads map[string]model.Squad) Directory {
	d := Directory{Players: map[string]model.Player{}, Clubs: map[string]string{}, PlayerClubs: map[string]string{}}
	for _, c := range clubs {
		d.Clubs[c.ID] = c.Name
	}
	for clubID, s := range squads {
		for _, p := range s {
			d.Players[p.ID] = p
			d.PlayerClubs[p.ID] = clubID
		}
	}
	return d
}

// Leaders computes the leaderboards, each truncated to limit entries
// (limit <= 0 keeps all).
func Leaders(played []model.PlayedMatch, dir Directory, limit int) Boards {
	goals := map[string]*Entry{}
	assists := map[string]*Entry{}
	keepers := map[string]*Entry{}
	cards := map[string]*DisciplineEntry{}

	entry := func(m map[string]*Entry, playerID, clubID string) *Entry {
		e, ok := m[playerID]
		if !ok {
			e = &Entry{PlayerID: playerID, PlayerName: dir.Players[playerID].Name, ClubID: clubID, ClubName: dir.Clubs[clubID]}
			m[playerID] = e
		}
		return e
	}

	for _, m := range played {
		f := m.Fixture
		for _, ev := range m.Result.Events {
			switch e := ev.(type) {
			case model.Injury:
			case model.Lineup:
				conceded := m.Result.Goals(e.Team.Opponent())
				if conceded != 0 {
					continue
				}
				for _, id := range e.PlayerIDs {
					if dir.Players[id].Position == model.Goalkeeper {
						entry(keepers, id, f.ClubID(e.Team)).Value++
						break
					}
				}
			case model.Goal:
				entry(goals, e.ScorerID, f.ClubID(e.Team)).Value++
				if e.HasAssist() {
					entry(assists, e.AssisterID, f.ClubID(e.Team)).Value++
				}
			case model.Card:
				d, ok := cards[e.PlayerID]
				if !ok {
					club := f.ClubID(e.Team)
					d = &DisciplineEntry{PlayerID: e.PlayerID, PlayerName: dir.Players[e.PlayerID].Name, ClubID: club, ClubName: dir.Clubs[club]}
					cards[e.PlayerID] = d
				}
				if e.Severity == model.Red {
					d.Reds++
				} else {
					d.Yellows++
				}
			}
		}
	}

	discipline := make([]DisciplineEntry, 0, len(cards))
	for _, d := range cards {
		discipline = append(discipline, *d)
	}
	sort.Slice(discipline, func(i, j int) bool {
		a, b := discipline[i], discipline[j]
		if a.Reds != b.Reds {
			return a.Reds > b.Reds
		}
		if a.Yellows != b.Yellows {
			return a.Yellows > b.Yellows
		}
		return lessName(a.PlayerName, a.PlayerID, b.PlayerName, b.PlayerID)
	})
	if limit > 0 && len(discipline) > limit {
		discipline = discipline[:limit]
	}

	return Boards{
		Scorers:     rank(goals, limit),
		Assists:     rank(assists, limit),
		CleanSheets: rank(keepers, limit),
		Discipline:  discipline,
	}
}

func rank(m map[string]*Entry, limit int) []Entry {
	out := make([]Entry, 0, len(m))
	for _, e := range m {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return lessName(out[i].PlayerName, out[i].PlayerID, out[j].PlayerName, out[j].PlayerID)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func lessName(an, aid, bn, bid string) bool {
	if an != bn {
		return an < bn
	}
	return aid < bid
}
