package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/kickoff/internal/adapters/http/api"
	"github.com/okian/kickoff/internal/adapters/http/swagger"
	"github.com/okian/kickoff/internal/adapters/repository"
	app "github.com/okian/kickoff/internal/app"
	"github.com/okian/kickoff/internal/config"
	"github.com/okian/kickoff/internal/leaguegen"
	"github.com/okian/kickoff/pkg/logger"
	"github.com/okian/kickoff/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 30 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Our own registry carries the runtime gauges we care about.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	cfg, err := config.Load()
	if err != nil {
		// The logger is not configured yet.
		_, _ = os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	for _, w := range cfg.Warnings() {
		log.Warn(ctx, w)
	}

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		log.Error(ctx, "listen failed", logger.String("addr", cfg.Addr), logger.Error(err))
		os.Exit(1)
	}

	if err := run(ctx, cfg, ln); err != nil {
		log.Error(ctx, "server exited", logger.Error(err))
		os.Exit(1)
	}
	log.Info(ctx, "server stopped")
}

// run serves the API on ln until ctx is cancelled, then shuts everything
// down in reverse order.
func run(ctx context.Context, cfg *config.Config, ln net.Listener) error {
	log := logger.Get()

	store, err := openStore(cfg)
	if err != nil {
		_ = ln.Close()
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error(ctx, "store close failed", logger.Error(err))
		}
	}()

	svc := app.New(
		app.WithStore(store),
		app.WithLogger(log),
		app.WithInjuryProfile(cfg.Profile()),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
	)

	if cfg.SeedDemoLeague {
		if err := seedDemoLeague(ctx, svc, store, cfg); err != nil {
			_ = ln.Close()
			return err
		}
	}

	if err := svc.Start(ctx); err != nil {
		_ = ln.Close()
		return fmt.Errorf("start service: %w", err)
	}

	mux := http.NewServeMux()
	api.NewServer(svc).Register(mux)
	swagger.Register(mux)

	srv := &http.Server{
		Handler:           api.CORS(mux, cfg.AllowedOrigins()),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", ln.Addr().String()),
			logger.String("storage", cfg.Storage),
			logger.String("injury_profile", svc.Profile().Name),
		)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		startSystemMetricsUpdater(gctx)
		return nil
	})

	g.Go(func() error {
		startServiceMetricsUpdater(gctx, svc)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info(ctx, "shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs []error
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
		if err := svc.Stop(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("service stop: %w", err))
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}

func openStore(cfg *config.Config) (repository.Store, error) {
	switch cfg.Storage {
	case config.StorageSQLite:
		s, err := repository.OpenSQLite(cfg.DatabasePath, repository.WithSQLLogging(cfg.LogLevel == "debug"))
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", cfg.DatabasePath, err)
		}
		return s, nil
	default:
		return repository.NewMemoryStore(), nil
	}
}

// seedDemoLeague generates a league and schedules its first season when the
// store holds no leagues yet.
func seedDemoLeague(ctx context.Context, svc *app.Service, store repository.Store, cfg *config.Config) error {
	existing, err := store.Leagues(ctx)
	if err != nil {
		return fmt.Errorf("list leagues: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	l := leaguegen.Generate(leaguegen.Config{Clubs: cfg.DemoClubs, Seed: cfg.DemoSeed})
	if err := leaguegen.Seed(ctx, store, l); err != nil {
		return fmt.Errorf("seed demo league: %w", err)
	}
	plan, err := svc.StartNewSeason(ctx, l.League.ID, time.Time{})
	if err != nil {
		return fmt.Errorf("schedule demo season: %w", err)
	}
	logger.Get().Info(ctx, "demo league seeded",
		logger.String("league_id", l.League.ID),
		logger.String("name", l.League.Name),
		logger.Int("clubs", len(l.Clubs)),
		logger.Int("fixtures", plan.Fixtures),
	)
	return nil
}

// startSystemMetricsUpdater refreshes runtime gauges until ctx is done.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater mirrors service stats into gauges until ctx is done.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

func updateServiceMetrics(svc *app.Service) {
	stats := svc.GetStats()
	if queueLen, ok := stats["queueLength"].(int); ok {
		metrics.UpdateQueueSize(queueLen)
	}
	if workerCount, ok := stats["workerCount"].(int); ok {
		metrics.UpdateWorkerCount(workerCount)
	}
}
