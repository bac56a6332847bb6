package standings

import (
	"math"
	"slices"
	"sort"

	"github.com/okian/kickoff/internal/domain/model"
	"github.com/okian/kickoff/internal/domain/rating"
)

// RecentLength is how many of the latest ratings make up the recent average.
const RecentLength = 5

// MatchRating is a player's rating in one match the player started.
type MatchRating struct {
	FixtureID    string  `json:"fixture_id"`
	Round        int     `json:"round"`
	OpponentID   string  `json:"opponent_id"`
	OpponentName string  `json:"opponent_name"`
	Rating       float64 `json:"rating"`
}

// PlayerLine is a player's season summary. Averages are nil until the player
// has started a match.
type PlayerLine struct {
	PlayerID    string        `json:"player_id"`
	PlayerName  string        `json:"player_name"`
	ClubID      string        `json:"club_id"`
	ClubName    string        `json:"club_name"`
	Appearances int           `json:"appearances"`
	Goals       int           `json:"goals"`
	Assists     int           `json:"assists"`
	Yellows     int           `json:"yellows"`
	Reds        int           `json:"reds"`
	CleanSheets int           `json:"clean_sheets"`
	Ratings     []MatchRating `json:"ratings"`
	AvgRating   *float64      `json:"avg_rating"`
	RecentAvg   *float64      `json:"recent_avg"`
}

// Player summarises one player's season from the matches of the player's
// club. Ratings are recomputed from each stored event log with the club's
// style. ok is false when the directory does not know the player.
func Player(playerID string, played []model.PlayedMatch, dir Directory, styles map[string]model.Style) (PlayerLine, bool) {
	p, ok := dir.Players[playerID]
	if !ok {
		return PlayerLine{}, false
	}
	clubID := dir.PlayerClubs[playerID]
	line := PlayerLine{
		PlayerID:   playerID,
		PlayerName: p.Name,
		ClubID:     clubID,
		ClubName:   dir.Clubs[clubID],
		Ratings:    []MatchRating{},
	}

	played = slices.Clone(played)
	sort.SliceStable(played, func(i, j int) bool {
		a, b := played[i].Fixture, played[j].Fixture
		if a.Round != b.Round {
			return a.Round < b.Round
		}
		return a.KickoffAt.Before(b.KickoffAt)
	})

	style, ok := styles[clubID]
	if !ok {
		style = model.DefaultStyle()
	}
	keeper := p.Position == model.Goalkeeper

	for _, m := range played {
		f := m.Fixture
		if !f.Involves(clubID) {
			continue
		}
		side := model.Home
		if f.AwayClubID == clubID {
			side = model.Away
		}

		tally := ownTally(m.Result.Events, side)[playerID]
		line.Goals += tally.Goals
		line.Assists += tally.Assists
		line.Yellows += tally.Yellows
		line.Reds += tally.Reds

		home, away := model.Lineups(m.Result.Events)
		lineup := home
		if side == model.Away {
			lineup = away
		}
		if !slices.Contains(lineup, playerID) {
			continue
		}
		line.Appearances++

		ctx := rating.Context{
			GoalsFor:     m.Result.Goals(side),
			GoalsAgainst: m.Result.Goals(side.Opponent()),
			Style:        style,
			Goalkeeper:   keeper,
		}
		if keeper && ctx.CleanSheet() {
			line.CleanSheets++
		}
		opp := f.ClubID(side.Opponent())
		line.Ratings = append(line.Ratings, MatchRating{
			FixtureID:    f.ID,
			Round:        f.Round,
			OpponentID:   opp,
			OpponentName: dir.Clubs[opp],
			Rating:       rating.Rate(tally, ctx),
		})
	}

	line.AvgRating = average(line.Ratings)
	line.RecentAvg = average(line.Ratings[max(0, len(line.Ratings)-RecentLength):])
	return line, true
}

// ownTally tallies only the events of side.
func ownTally(events []model.Event, side model.Side) map[string]rating.Line {
	mine := make([]model.Event, 0, len(events))
	for _, e := range events {
		if e.Side() == side {
			mine = append(mine, e)
		}
	}
	return rating.Tally(mine)
}

func average(rs []MatchRating) *float64 {
	if len(rs) == 0 {
		return nil
	}
	var sum float64
	for _, r := range rs {
		sum += r.Rating
	}
	avg := math.Round(sum/float64(len(rs))*100) / 100
	return &avg
}
