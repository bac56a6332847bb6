package main

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	app "github.com/okian/kickoff/internal/app"
	"github.com/okian/kickoff/internal/config"
	"github.com/okian/kickoff/internal/domain/model"
	"github.com/okian/kickoff/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func testConfig() *config.Config {
	cfg := config.New()
	cfg.Addr = "127.0.0.1:0"
	cfg.DemoClubs = 4
	cfg.WorkerCount = 1
	return cfg
}

func TestRun(t *testing.T) {
	convey.Convey("Given a running server with a demo league", t, func() {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		convey.So(err, convey.ShouldBeNil)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- run(ctx, testConfig(), ln) }()
		convey.Reset(cancel)

		base := "http://" + ln.Addr().String()
		client := &http.Client{Timeout: 2 * time.Second}

		convey.Convey("Then the league is served and shutdown is clean", func() {
			var leagues []model.League
			deadline := time.Now().Add(5 * time.Second)
			for time.Now().Before(deadline) {
				resp, err := client.Get(base + "/leagues")
				if err == nil {
					_ = json.NewDecoder(resp.Body).Decode(&leagues)
					_ = resp.Body.Close()
					if len(leagues) > 0 {
						break
					}
				}
				time.Sleep(20 * time.Millisecond)
			}
			convey.So(leagues, convey.ShouldHaveLength, 1)

			resp, err := client.Get(base + "/openapi.yaml")
			convey.So(err, convey.ShouldBeNil)
			_ = resp.Body.Close()
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)

			cancel()
			select {
			case err := <-done:
				convey.So(err, convey.ShouldBeNil)
			case <-time.After(10 * time.Second):
				t.Fatal("run did not return after cancel")
			}
		})
	})
}

func TestOpenStore(t *testing.T) {
	convey.Convey("Given a sqlite configuration", t, func() {
		cfg := testConfig()
		cfg.Storage = config.StorageSQLite
		cfg.DatabasePath = filepath.Join(t.TempDir(), "kickoff.db")

		store, err := openStore(cfg)
		convey.So(err, convey.ShouldBeNil)
		convey.Reset(func() { _ = store.Close() })

		convey.Convey("When the demo league is seeded twice", func() {
			ctx := context.Background()
			svc := app.New(app.WithStore(store))
			convey.So(seedDemoLeague(ctx, svc, store, cfg), convey.ShouldBeNil)
			convey.So(seedDemoLeague(ctx, svc, store, cfg), convey.ShouldBeNil)

			convey.Convey("Then only one league with one season exists", func() {
				leagues, err := store.Leagues(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(leagues, convey.ShouldHaveLength, 1)
				season, err := store.CurrentSeason(ctx, leagues[0].ID)
				convey.So(err, convey.ShouldBeNil)
				convey.So(season, convey.ShouldEqual, 1)
			})
		})
	})

	convey.Convey("Given the default configuration", t, func() {
		store, err := openStore(testConfig())

		convey.Convey("Then a memory store is used", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(store, convey.ShouldNotBeNil)
		})
	})
}

func TestMetricsUpdaters(t *testing.T) {
	convey.Convey("Given the metrics updaters", t, func() {
		svc := app.New()

		convey.Convey("Then they return once the context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
			convey.So(func() { startServiceMetricsUpdater(ctx, svc) }, convey.ShouldNotPanic)
		})

		convey.Convey("Then a single update does not panic", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
			convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
		})
	})
}
