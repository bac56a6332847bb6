package model

import "time"

// JobKind names what a queued job simulates.
type JobKind string

// Job kinds.
const (
	JobRound  JobKind = "round"
	JobSeason JobKind = "season"
)

// JobStatus is the lifecycle state of a job.
type JobStatus string

// Job statuses.
const (
	JobQueued  JobStatus = "queued"
	JobRunning JobStatus = "running"
	JobDone    JobStatus = "done"
	JobFailed  JobStatus = "failed"
)

// Job is a unit of background simulation work.
type Job struct {
	ID         string    `json:"id"`
	Kind       JobKind   `json:"kind"`
	Key        string    `json:"key"`
	LeagueID   string    `json:"league_id"`
	Round      int       `json:"round,omitempty"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// JobReport is the observable state of a job.
type JobReport struct {
	Job
	Status     JobStatus `json:"status"`
	Simulated  int       `json:"simulated"`
	Skipped    int       `json:"skipped"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at,omitempty"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
}
