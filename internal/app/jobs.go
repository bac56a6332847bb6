package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/kickoff/internal/domain/dedupe"
	"github.com/okian/kickoff/internal/domain/model"
	"github.com/okian/kickoff/pkg/logger"
	"github.com/okian/kickoff/pkg/metrics"
)

// maxFinishedJobs bounds how many completed job reports are kept.
const maxFinishedJobs = 1024

// JobReceipt is returned when a job is submitted. Duplicate is set when an
// identical job was already pending; Job then describes that job.
type JobReceipt struct {
	Job       model.JobReport `json:"job"`
	Duplicate bool            `json:"duplicate"`
}

type jobRegistry struct {
	mu       sync.RWMutex
	reports  map[string]*model.JobReport
	byKey    map[string]string
	finished []string
}

func newJobRegistry() *jobRegistry {
	return &jobRegistry{
		reports: make(map[string]*model.JobReport),
		byKey:   make(map[string]string),
	}
}

func (r *jobRegistry) add(j model.Job) model.JobReport {
	r.mu.Lock()
	defer r.mu.Unlock()
	rep := &model.JobReport{Job: j, Status: model.JobQueued}
	r.reports[j.ID] = rep
	r.byKey[j.Key] = j.ID
	return *rep
}

func (r *jobRegistry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rep, ok := r.reports[id]; ok {
		delete(r.byKey, rep.Key)
		delete(r.reports, id)
	}
}

func (r *jobRegistry) pending(key string) (model.JobReport, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byKey[key]
	if !ok {
		return model.JobReport{}, false
	}
	return *r.reports[id], true
}

func (r *jobRegistry) get(id string) (model.JobReport, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rep, ok := r.reports[id]
	if !ok {
		return model.JobReport{}, false
	}
	return *rep, true
}

func (r *jobRegistry) update(id string, fn func(*model.JobReport)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rep, ok := r.reports[id]
	if !ok {
		return
	}
	fn(rep)
	if rep.Status != model.JobDone && rep.Status != model.JobFailed {
		return
	}
	if r.byKey[rep.Key] == id {
		delete(r.byKey, rep.Key)
	}
	r.finished = append(r.finished, id)
	if len(r.finished) > maxFinishedJobs {
		delete(r.reports, r.finished[0])
		r.finished = r.finished[1:]
	}
}

func (r *jobRegistry) countByStatus() map[model.JobStatus]int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[model.JobStatus]int)
	for _, rep := range r.reports {
		out[rep.Status]++
	}
	return out
}

// EnqueueRound submits a background job simulating one round.
func (s *Service) EnqueueRound(ctx context.Context, leagueID string, round int) (JobReceipt, error) {
	if round < 1 {
		return JobReceipt{}, fmt.Errorf("service.EnqueueRound: %w: %d", ErrInvalidRound, round)
	}
	return s.enqueue(ctx, model.Job{
		Kind:     model.JobRound,
		Key:      dedupe.RoundKey(leagueID, round),
		LeagueID: leagueID,
		Round:    round,
	})
}

// EnqueueNextRound resolves the next unplayed round and submits it.
func (s *Service) EnqueueNextRound(ctx context.Context, leagueID string) (JobReceipt, error) {
	round, err := s.NextRound(ctx, leagueID)
	if err != nil {
		return JobReceipt{}, fmt.Errorf("service.EnqueueNextRound: %w", err)
	}
	if round == 0 {
		return JobReceipt{}, fmt.Errorf("service.EnqueueNextRound %s: %w", leagueID, ErrSeasonComplete)
	}
	return s.EnqueueRound(ctx, leagueID, round)
}

// EnqueueSeason submits a background job simulating the rest of the season.
func (s *Service) EnqueueSeason(ctx context.Context, leagueID string) (JobReceipt, error) {
	return s.enqueue(ctx, model.Job{
		Kind:     model.JobSeason,
		Key:      dedupe.SeasonKey(leagueID),
		LeagueID: leagueID,
	})
}

func (s *Service) enqueue(ctx context.Context, job model.Job) (JobReceipt, error) {
	const op = "service.enqueue"

	s.mu.RLock()
	started, q := s.started, s.jobQueue
	s.mu.RUnlock()
	if !started {
		return JobReceipt{}, fmt.Errorf("%s: %w", op, ErrNotStarted)
	}
	if _, err := s.store.League(ctx, job.LeagueID); err != nil {
		return JobReceipt{}, fmt.Errorf("%s: %w", op, err)
	}

	if s.deduper.SeenAndRecord(ctx, job.Key) {
		metrics.RecordJob(string(job.Kind), "duplicate")
		if rep, ok := s.jobs.pending(job.Key); ok {
			return JobReceipt{Job: rep, Duplicate: true}, nil
		}
		return JobReceipt{Job: model.JobReport{Job: job, Status: model.JobQueued}, Duplicate: true}, nil
	}

	job.ID = s.newJobID()
	job.EnqueuedAt = s.now().UTC()
	rep := s.jobs.add(job)

	if !q.Enqueue(ctx, job) {
		s.jobs.remove(job.ID)
		s.deduper.Unrecord(ctx, job.Key)
		metrics.RecordJob(string(job.Kind), "rejected")
		s.logger.Warn(ctx, "job queue full, rejecting",
			logger.String("kind", string(job.Kind)),
			logger.String("league_id", job.LeagueID),
		)
		return JobReceipt{}, fmt.Errorf("%s: %w", op, ErrQueueFull)
	}

	metrics.RecordJob(string(job.Kind), string(model.JobQueued))
	s.logger.Info(ctx, "job queued",
		logger.String("job_id", job.ID),
		logger.String("kind", string(job.Kind)),
		logger.String("league_id", job.LeagueID),
		logger.Int("round", job.Round),
	)
	return JobReceipt{Job: rep}, nil
}

// Job returns the status of a submitted job.
func (s *Service) Job(_ context.Context, id string) (model.JobReport, error) {
	rep, ok := s.jobs.get(id)
	if !ok {
		return model.JobReport{}, fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	return rep, nil
}

// Run executes a queued job. It is called by the worker pool.
func (s *Service) Run(ctx context.Context, job model.Job) error {
	s.jobs.update(job.ID, func(r *model.JobReport) {
		r.Status = model.JobRunning
		r.StartedAt = s.now().UTC()
	})

	var simulated, skipped int
	var err error
	switch job.Kind {
	case model.JobRound:
		var rr RoundReport
		rr, err = s.SimulateRound(ctx, job.LeagueID, job.Round)
		simulated, skipped = rr.Simulated, rr.Skipped
	case model.JobSeason:
		var sr SeasonReport
		sr, err = s.SimulateRemainingSeason(ctx, job.LeagueID)
		simulated, skipped = sr.Simulated, sr.Skipped
	default:
		err = fmt.Errorf("unknown job kind %q", job.Kind)
	}

	s.deduper.Unrecord(ctx, job.Key)
	s.jobs.update(job.ID, func(r *model.JobReport) {
		r.Simulated, r.Skipped = simulated, skipped
		r.FinishedAt = s.now().UTC()
		r.Status = model.JobDone
		if err != nil {
			r.Status = model.JobFailed
			r.Error = err.Error()
		}
	})
	return err
}
