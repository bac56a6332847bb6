package api

import (
	"context"
	"net/http"

	service "github.com/okian/kickoff/internal/app"
	"github.com/okian/kickoff/internal/domain/model"
)

// FixtureDependencies defines the fixture operations.
type FixtureDependencies interface {
	SimulateFixture(ctx context.Context, fixtureID string) (service.FixtureOutcome, error)
	Fixture(ctx context.Context, id string) (service.FixtureDetail, error)
	Fixtures(ctx context.Context, leagueID string, season, round int) ([]model.Fixture, error)
}

// FixturesHandler handles fixture requests.
type FixturesHandler struct {
	deps FixtureDependencies
}

// NewFixturesHandler creates a new fixtures handler.
func NewFixturesHandler(deps FixtureDependencies) *FixturesHandler {
	return &FixturesHandler{deps: deps}
}

// HandleSimulateFixture handles POST /fixtures/{id}/simulate. Replaying a
// played fixture returns the stored result with already_played set.
func (h *FixturesHandler) HandleSimulateFixture(w http.ResponseWriter, r *http.Request) {
	const op = "api.simulate_fixture"
	out, err := h.deps.SimulateFixture(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, fixtureResponse{
		Fixture:       out.Fixture,
		Result:        viewResult(out.Result),
		AlreadyPlayed: out.AlreadyPlayed,
	})
}

// HandleGetFixture handles GET /fixtures/{id}.
func (h *FixturesHandler) HandleGetFixture(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_fixture"
	d, err := h.deps.Fixture(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	resp := fixtureResponse{Fixture: d.Fixture}
	if d.Result != nil {
		resp.Result = viewResult(*d.Result)
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleListFixtures handles GET /leagues/{id}/fixtures?season=&round=.
func (h *FixturesHandler) HandleListFixtures(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_fixtures"
	season, err := intQuery(r, "season")
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	round, err := intQuery(r, "round")
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	fs, err := h.deps.Fixtures(r.Context(), r.PathValue("id"), season, round)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, fs)
}
