package api

import (
	"time"

	"github.com/okian/kickoff/internal/domain/model"
)

type resultView struct {
	FixtureID     string               `json:"fixture_id"`
	Seed          uint32               `json:"seed"`
	HomeGoals     int                  `json:"home_goals"`
	AwayGoals     int                  `json:"away_goals"`
	XGHome        float64              `json:"xg_home"`
	XGAway        float64              `json:"xg_away"`
	Events        []model.EventView    `json:"events"`
	PlayerOfMatch *model.PlayerOfMatch `json:"player_of_match"`
	SimulatedAt   time.Time            `json:"simulated_at"`
}

func viewResult(r model.MatchResult) *resultView {
	return &resultView{
		FixtureID:     r.FixtureID,
		Seed:          r.Seed,
		HomeGoals:     r.HomeGoals,
		AwayGoals:     r.AwayGoals,
		XGHome:        r.XGHome,
		XGAway:        r.XGAway,
		Events:        model.ViewEvents(r.Events),
		PlayerOfMatch: r.PlayerOfMatch,
		SimulatedAt:   r.SimulatedAt,
	}
}

type fixtureResponse struct {
	Fixture       model.Fixture `json:"fixture"`
	Result        *resultView   `json:"result,omitempty"`
	AlreadyPlayed bool          `json:"already_played,omitempty"`
}
