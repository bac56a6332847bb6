package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	service "github.com/okian/kickoff/internal/app"
	"github.com/okian/kickoff/internal/domain/model"
	"github.com/okian/kickoff/internal/domain/standings"
)

// LeagueDependencies defines the league operations.
type LeagueDependencies interface {
	Leagues(ctx context.Context) ([]model.League, error)
	StartNewSeason(ctx context.Context, leagueID string, start time.Time) (service.SeasonPlan, error)
	Standings(ctx context.Context, leagueID string, season int) ([]standings.Row, error)
	Leaders(ctx context.Context, leagueID string, season, limit int) (standings.Boards, error)
	PlayerStats(ctx context.Context, leagueID, playerID string, season int) (standings.PlayerLine, error)
}

// LeaguesHandler handles league requests.
type LeaguesHandler struct {
	deps     LeagueDependencies
	maxLimit int
}

// NewLeaguesHandler creates a new leagues handler.
func NewLeaguesHandler(deps LeagueDependencies, maxLimit int) *LeaguesHandler {
	return &LeaguesHandler{deps: deps, maxLimit: maxLimit}
}

type seasonRequest struct {
	Start string `json:"start"`
}

// HandleListLeagues handles GET /leagues.
func (h *LeaguesHandler) HandleListLeagues(w http.ResponseWriter, r *http.Request) {
	ls, err := h.deps.Leagues(r.Context())
	if err != nil {
		writeFailure(w, "api.list_leagues", err)
		return
	}
	writeJSON(w, http.StatusOK, ls)
}

// HandleStartSeason handles POST /leagues/{id}/seasons. The body is optional;
// {"start":"RFC3339"} pins the first kickoff.
func (h *LeaguesHandler) HandleStartSeason(w http.ResponseWriter, r *http.Request) {
	const op = "api.start_season"
	var req seasonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeFailure(w, op, WrapKind(op, ErrBadRequest, err))
		return
	}
	var start time.Time
	if req.Start != "" {
		t, err := time.Parse(time.RFC3339, req.Start)
		if err != nil {
			writeFailure(w, op, WrapKind(op, ErrBadRequest, errors.New("invalid start; must be RFC3339")))
			return
		}
		start = t
	}
	plan, err := h.deps.StartNewSeason(r.Context(), r.PathValue("id"), start)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

// HandleTable handles GET /leagues/{id}/table?season=.
func (h *LeaguesHandler) HandleTable(w http.ResponseWriter, r *http.Request) {
	const op = "api.table"
	season, err := intQuery(r, "season")
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	rows, err := h.deps.Standings(r.Context(), r.PathValue("id"), season)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// HandleLeaders handles GET /leagues/{id}/leaders?season=&limit=.
func (h *LeaguesHandler) HandleLeaders(w http.ResponseWriter, r *http.Request) {
	const op = "api.leaders"
	season, err := intQuery(r, "season")
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	limit, err := intQuery(r, "limit")
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	if limit > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
		return
	}
	boards, err := h.deps.Leaders(r.Context(), r.PathValue("id"), season, limit)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, boards)
}

// HandlePlayer handles GET /leagues/{id}/players/{player}?season=.
func (h *LeaguesHandler) HandlePlayer(w http.ResponseWriter, r *http.Request) {
	const op = "api.player"
	season, err := intQuery(r, "season")
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	line, err := h.deps.PlayerStats(r.Context(), r.PathValue("id"), r.PathValue("player"), season)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, line)
}
