// Package api exposes the simulation service over HTTP.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	service "github.com/okian/kickoff/internal/app"
	"github.com/okian/kickoff/internal/domain/model"
	"github.com/okian/kickoff/internal/domain/standings"
	"github.com/rs/cors"
)

// Dependencies required by HTTP handlers. *service.Service implements it.
type Dependencies interface {
	StatsProvider

	SimulateFixture(ctx context.Context, fixtureID string) (service.FixtureOutcome, error)
	Fixture(ctx context.Context, id string) (service.FixtureDetail, error)
	Fixtures(ctx context.Context, leagueID string, season, round int) ([]model.Fixture, error)

	Leagues(ctx context.Context) ([]model.League, error)
	StartNewSeason(ctx context.Context, leagueID string, start time.Time) (service.SeasonPlan, error)
	Standings(ctx context.Context, leagueID string, season int) ([]standings.Row, error)
	Leaders(ctx context.Context, leagueID string, season, limit int) (standings.Boards, error)
	PlayerStats(ctx context.Context, leagueID, playerID string, season int) (standings.PlayerLine, error)

	EnqueueRound(ctx context.Context, leagueID string, round int) (service.JobReceipt, error)
	EnqueueNextRound(ctx context.Context, leagueID string) (service.JobReceipt, error)
	EnqueueSeason(ctx context.Context, leagueID string) (service.JobReceipt, error)
	Job(ctx context.Context, id string) (model.JobReport, error)
}

// MaxLeadersLimit caps the leaders limit query parameter.
const MaxLeadersLimit = 100

// Server wires HTTP routes for the simulation API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	fixturesHandler *FixturesHandler
	leaguesHandler  *LeaguesHandler
	jobsHandler     *JobsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(deps),
		fixturesHandler: NewFixturesHandler(deps),
		leaguesHandler:  NewLeaguesHandler(deps, MaxLeadersLimit),
		jobsHandler:     NewJobsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("GET /fixtures/{id}", MetricsMiddleware(s.fixturesHandler.HandleGetFixture, "fixture"))
	mux.HandleFunc("POST /fixtures/{id}/simulate", MetricsMiddleware(s.fixturesHandler.HandleSimulateFixture, "simulate_fixture"))

	mux.HandleFunc("GET /leagues", MetricsMiddleware(s.leaguesHandler.HandleListLeagues, "leagues"))
	mux.HandleFunc("GET /leagues/{id}/fixtures", MetricsMiddleware(s.fixturesHandler.HandleListFixtures, "league_fixtures"))
	mux.HandleFunc("POST /leagues/{id}/seasons", MetricsMiddleware(s.leaguesHandler.HandleStartSeason, "start_season"))
	mux.HandleFunc("GET /leagues/{id}/table", MetricsMiddleware(s.leaguesHandler.HandleTable, "table"))
	mux.HandleFunc("GET /leagues/{id}/leaders", MetricsMiddleware(s.leaguesHandler.HandleLeaders, "leaders"))
	mux.HandleFunc("GET /leagues/{id}/players/{player}", MetricsMiddleware(s.leaguesHandler.HandlePlayer, "player"))

	mux.HandleFunc("POST /leagues/{id}/rounds/{round}/simulate", MetricsMiddleware(s.jobsHandler.HandleEnqueueRound, "simulate_round"))
	mux.HandleFunc("POST /leagues/{id}/rounds/next/simulate", MetricsMiddleware(s.jobsHandler.HandleEnqueueNextRound, "simulate_next_round"))
	mux.HandleFunc("POST /leagues/{id}/simulate", MetricsMiddleware(s.jobsHandler.HandleEnqueueSeason, "simulate_season"))
	mux.HandleFunc("GET /jobs/{id}", MetricsMiddleware(s.jobsHandler.HandleGetJob, "job"))
}

// Handler returns a mux with every route registered, wrapped in CORS.
func (s *Server) Handler(allowedOrigins []string) http.Handler {
	mux := http.NewServeMux()
	s.Register(mux)
	return CORS(mux, allowedOrigins)
}

// CORS wraps h with cross-origin handling for the given origins. No origins
// means any origin.
func CORS(h http.Handler, allowedOrigins []string) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}).Handler(h)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure classifies err and writes the matching error response.
func writeFailure(w http.ResponseWriter, op string, err error) {
	status, code := classify(err)
	writeError(w, status, code, Wrap(op, err))
}

// intQuery parses an optional non-negative integer query parameter.
func intQuery(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, WrapKind("api.query", ErrBadRequest, fmt.Errorf("invalid %s %q", name, raw))
	}
	return n, nil
}
