// Package service orchestrates match simulation: it loads fixtures, squads
// and tactics from the store, plays fixtures through the simulation engine,
// persists results and runs round and season jobs in the background.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/kickoff/internal/adapters/mq/queue"
	"github.com/okian/kickoff/internal/adapters/mq/worker"
	"github.com/okian/kickoff/internal/adapters/repository"
	"github.com/okian/kickoff/internal/domain/dedupe"
	"github.com/okian/kickoff/internal/domain/injury"
	"github.com/okian/kickoff/internal/domain/simulation"
	"github.com/okian/kickoff/pkg/logger"
	"github.com/okian/kickoff/pkg/metrics"
)

// Service implements the simulation use cases behind the HTTP API and CLI.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      repository.Store
	engine     *simulation.Engine
	deduper    dedupe.Deduper
	jobQueue   *queue.InMemoryQueue
	workerPool *worker.Pool
	jobs       *jobRegistry

	// Configuration
	workerCount int
	queueSize   int
	dedupeSize  int
	profile     injury.Profile
	now         func() time.Time
	newJobID    func() string

	// State
	started bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the persistence backend. The caller owns its lifetime.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithInjuryProfile sets the injury tuning used by the engine.
func WithInjuryProfile(p injury.Profile) Option {
	return func(s *Service) {
		if p.Name != "" {
			s.profile = p
		}
	}
}

// WithWorkerCount sets the number of job workers. One worker keeps jobs in
// submission order.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many pending job keys are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source used for SimulatedAt, job timestamps
// and default season starts.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a Service. Without WithStore it uses an empty MemoryStore.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: 1,
		queueSize:   256,
		dedupeSize:  4096,
		profile:     injury.Must(injury.Default),
		now:         time.Now,
		newJobID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.engine = simulation.NewEngine(simulation.WithInjuryProfile(s.profile))
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.jobs = newJobRegistry()
	return s
}

// Store returns the backing store.
func (s *Service) Store() repository.Store { return s.store }

// Profile returns the injury profile in use.
func (s *Service) Profile() injury.Profile { return s.profile }

// Start creates the job queue and starts the worker pool. Workers outlive ctx;
// only Stop ends them.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting simulation service...")

	s.jobQueue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.workerPool = worker.NewPool(s.workerCount, s.jobQueue, s)
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "simulation service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queue_size", s.queueSize),
		logger.Int("dedupe_size", s.dedupeSize),
		logger.String("injury_profile", s.profile.Name),
	)
	return nil
}

// Stop stops accepting jobs, drains the queue and waits for the workers. Jobs
// still running when ctx expires are cancelled.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.logger.Info(ctx, "stopping simulation service...")
	err := s.workerPool.Shutdown(ctx)
	s.started = false
	s.logger.Info(ctx, "simulation service stopped")
	return err
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":       s.started,
		"workerCount":   s.workerCount,
		"queueSize":     s.queueSize,
		"dedupeSize":    s.dedupeSize,
		"pendingKeys":   s.deduper.Size(),
		"injuryProfile": s.profile.Name,
		"jobsByStatus":  s.jobs.countByStatus(),
	}

	if s.started {
		queueLen := s.jobQueue.Len(ctx)
		stats["queueLength"] = queueLen
		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateWorkerCount(s.workerPool.Size())
	}
	return stats
}
