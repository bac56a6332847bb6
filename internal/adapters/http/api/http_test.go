package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/kickoff/internal/adapters/http/api"
	"github.com/okian/kickoff/internal/adapters/repository"
	service "github.com/okian/kickoff/internal/app"
	"github.com/okian/kickoff/internal/domain/model"
	"github.com/okian/kickoff/internal/domain/standings"
	"github.com/okian/kickoff/internal/leaguegen"
	"github.com/okian/kickoff/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type fixture struct {
	svc     *service.Service
	league  leaguegen.League
	handler http.Handler
}

func newFixture(clubs int) fixture {
	store := repository.NewMemoryStore()
	l := leaguegen.Generate(leaguegen.Config{Clubs: clubs, Seed: 5})
	if err := leaguegen.Seed(context.Background(), store, l); err != nil {
		panic(err)
	}
	svc := service.New(service.WithStore(store))
	return fixture{svc: svc, league: l, handler: api.NewServer(svc).Handler(nil)}
}

func (f fixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func decode[T any](rec *httptest.ResponseRecorder) T {
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		panic(err)
	}
	return v
}

const seasonBody = `{"start":"2025-08-02T15:00:00Z"}`

func TestHealthAndStats(t *testing.T) {
	Convey("Given an API server", t, func() {
		f := newFixture(4)

		Convey("Then /healthz reports ok as JSON", func() {
			rec := f.do(http.MethodGet, "/healthz", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(decode[map[string]string](rec)["status"], ShouldEqual, "ok")
		})

		Convey("Then /healthz serves metrics to scrapers", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			req.Header.Set("Accept", "text/plain")
			rec := httptest.NewRecorder()
			f.handler.ServeHTTP(rec, req)
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, "kickoff_")
		})

		Convey("Then /stats returns the service stats", func() {
			rec := f.do(http.MethodGet, "/stats", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(decode[map[string]any](rec)["started"], ShouldEqual, false)
		})
	})
}

func TestLeagueEndpoints(t *testing.T) {
	Convey("Given a league of six clubs", t, func() {
		f := newFixture(6)
		id := f.league.League.ID

		Convey("Then it is listed", func() {
			rec := f.do(http.MethodGet, "/leagues", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			ls := decode[[]model.League](rec)
			So(ls, ShouldHaveLength, 1)
			So(ls[0].ID, ShouldEqual, id)
		})

		Convey("When a season is started", func() {
			rec := f.do(http.MethodPost, "/leagues/"+id+"/seasons", seasonBody)
			So(rec.Code, ShouldEqual, http.StatusCreated)
			plan := decode[service.SeasonPlan](rec)
			So(plan.Season, ShouldEqual, 1)
			So(plan.Rounds, ShouldEqual, 5)
			So(plan.Fixtures, ShouldEqual, 15)

			Convey("Then its fixtures can be listed by round", func() {
				rec := f.do(http.MethodGet, "/leagues/"+id+"/fixtures?round=2", "")
				So(rec.Code, ShouldEqual, http.StatusOK)
				fs := decode[[]model.Fixture](rec)
				So(fs, ShouldHaveLength, 3)
				for _, fx := range fs {
					So(fx.Round, ShouldEqual, 2)
				}
			})

			Convey("Then the table lists every club", func() {
				rec := f.do(http.MethodGet, "/leagues/"+id+"/table", "")
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(decode[[]standings.Row](rec), ShouldHaveLength, 6)
			})

			Convey("Then a leaders limit above the cap is rejected", func() {
				rec := f.do(http.MethodGet, "/leagues/"+id+"/leaders?limit=1000", "")
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(decode[errorBody](rec).Code, ShouldEqual, "limit_exceeded")
			})

			Convey("Then a malformed season is rejected", func() {
				rec := f.do(http.MethodGet, "/leagues/"+id+"/table?season=abc", "")
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("Then a start date that is not RFC3339 is rejected", func() {
			rec := f.do(http.MethodPost, "/leagues/"+id+"/seasons", `{"start":"next week"}`)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Then an empty body schedules from the clock", func() {
			rec := f.do(http.MethodPost, "/leagues/"+id+"/seasons", "")
			So(rec.Code, ShouldEqual, http.StatusCreated)
		})

		Convey("Then an unknown league is not found", func() {
			rec := f.do(http.MethodPost, "/leagues/nope/seasons", "")
			So(rec.Code, ShouldEqual, http.StatusNotFound)
			So(decode[errorBody](rec).Code, ShouldEqual, "not_found")
		})
	})
}

func TestFixtureEndpoints(t *testing.T) {
	Convey("Given a scheduled season", t, func() {
		f := newFixture(4)
		id := f.league.League.ID
		So(f.do(http.MethodPost, "/leagues/"+id+"/seasons", seasonBody).Code, ShouldEqual, http.StatusCreated)
		fs := decode[[]model.Fixture](f.do(http.MethodGet, "/leagues/"+id+"/fixtures", ""))
		So(fs, ShouldHaveLength, 6)
		target := fs[0].ID

		Convey("When a fixture is simulated", func() {
			rec := f.do(http.MethodPost, "/fixtures/"+target+"/simulate", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			body := decode[map[string]any](rec)
			result := body["result"].(map[string]any)
			So(result["fixture_id"], ShouldEqual, target)
			So(len(result["events"].([]any)), ShouldBeGreaterThanOrEqualTo, 2)
			So(body["already_played"], ShouldBeNil)

			Convey("Then replaying it returns the stored result", func() {
				again := decode[map[string]any](f.do(http.MethodPost, "/fixtures/"+target+"/simulate", ""))
				So(again["already_played"], ShouldEqual, true)
				So(again["result"].(map[string]any)["seed"], ShouldEqual, result["seed"])
			})

			Convey("Then fetching it includes the result", func() {
				got := decode[map[string]any](f.do(http.MethodGet, "/fixtures/"+target, ""))
				So(got["fixture"].(map[string]any)["status"], ShouldEqual, string(model.Played))
				So(got["result"], ShouldNotBeNil)
			})
		})

		Convey("When the player of the match is looked up", func() {
			out, err := f.svc.SimulateFixture(context.Background(), target)
			So(err, ShouldBeNil)
			So(out.Result.PlayerOfMatch, ShouldNotBeNil)
			potm := out.Result.PlayerOfMatch

			rec := f.do(http.MethodGet, "/leagues/"+id+"/players/"+potm.PlayerID, "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			line := decode[standings.PlayerLine](rec)

			Convey("Then the season line carries the awarded rating", func() {
				So(line.PlayerName, ShouldEqual, potm.Name)
				So(line.Appearances, ShouldEqual, 1)
				So(line.Ratings, ShouldHaveLength, 1)
				So(line.Ratings[0].FixtureID, ShouldEqual, target)
				So(line.Ratings[0].Rating, ShouldEqual, potm.Rating)
				So(*line.AvgRating, ShouldEqual, potm.Rating)
				So(*line.RecentAvg, ShouldEqual, potm.Rating)
			})
		})

		Convey("Then an unknown player is not found", func() {
			rec := f.do(http.MethodGet, "/leagues/"+id+"/players/nobody", "")
			So(rec.Code, ShouldEqual, http.StatusNotFound)
			So(decode[errorBody](rec).Code, ShouldEqual, "not_found")
		})

		Convey("Then an unplayed fixture has no result", func() {
			got := decode[map[string]any](f.do(http.MethodGet, "/fixtures/"+fs[1].ID, ""))
			So(got["result"], ShouldBeNil)
		})

		Convey("Then an unknown fixture is not found", func() {
			So(f.do(http.MethodGet, "/fixtures/missing", "").Code, ShouldEqual, http.StatusNotFound)
			So(f.do(http.MethodPost, "/fixtures/missing/simulate", "").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestJobEndpoints(t *testing.T) {
	Convey("Given a scheduled season", t, func() {
		f := newFixture(4)
		id := f.league.League.ID
		So(f.do(http.MethodPost, "/leagues/"+id+"/seasons", seasonBody).Code, ShouldEqual, http.StatusCreated)

		Convey("When the service is not started", func() {
			rec := f.do(http.MethodPost, "/leagues/"+id+"/simulate", "")
			So(rec.Code, ShouldEqual, http.StatusServiceUnavailable)
		})

		Convey("When the service is started", func() {
			ctx, cancel := context.WithCancel(context.Background())
			So(f.svc.Start(ctx), ShouldBeNil)
			Reset(func() {
				_ = f.svc.Stop(context.Background())
				cancel()
			})

			Convey("Then an invalid round is rejected", func() {
				So(f.do(http.MethodPost, "/leagues/"+id+"/rounds/0/simulate", "").Code, ShouldEqual, http.StatusBadRequest)
				So(f.do(http.MethodPost, "/leagues/"+id+"/rounds/x/simulate", "").Code, ShouldEqual, http.StatusBadRequest)
			})

			Convey("Then a season job runs to completion", func() {
				rec := f.do(http.MethodPost, "/leagues/"+id+"/simulate", "")
				So(rec.Code, ShouldEqual, http.StatusAccepted)
				ack := decode[struct {
					Status string          `json:"status"`
					Job    model.JobReport `json:"job"`
				}](rec)
				So(ack.Status, ShouldEqual, "accepted")
				So(ack.Job.ID, ShouldNotBeEmpty)

				var rep model.JobReport
				deadline := time.Now().Add(5 * time.Second)
				for time.Now().Before(deadline) {
					rep = decode[model.JobReport](f.do(http.MethodGet, "/jobs/"+ack.Job.ID, ""))
					if rep.Status == model.JobDone || rep.Status == model.JobFailed {
						break
					}
					time.Sleep(10 * time.Millisecond)
				}
				So(rep.Status, ShouldEqual, model.JobDone)
				So(rep.Simulated, ShouldEqual, 6)

				Convey("And the next round is reported as complete", func() {
					rec := f.do(http.MethodPost, "/leagues/"+id+"/rounds/next/simulate", "")
					So(rec.Code, ShouldEqual, http.StatusConflict)
					So(decode[errorBody](rec).Code, ShouldEqual, "season_complete")
				})
			})

			Convey("Then an unknown job is not found", func() {
				So(f.do(http.MethodGet, "/jobs/nope", "").Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestCORS(t *testing.T) {
	Convey("Given a server restricted to one origin", t, func() {
		f := newFixture(4)
		h := api.NewServer(f.svc).Handler([]string{"https://example.com"})

		preflight := func(origin string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodOptions, "/leagues", nil)
			req.Header.Set("Origin", origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodGet)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			return rec
		}

		Convey("Then the allowed origin passes preflight", func() {
			rec := preflight("https://example.com")
			So(rec.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "https://example.com")
		})

		Convey("Then other origins are not echoed", func() {
			rec := preflight("https://evil.test")
			So(rec.Header().Get("Access-Control-Allow-Origin"), ShouldBeEmpty)
		})
	})
}
