package api

import (
	"context"
	"net/http"
	"strconv"

	service "github.com/okian/kickoff/internal/app"
	"github.com/okian/kickoff/internal/domain/model"
)

// JobDependencies defines the background job operations.
type JobDependencies interface {
	EnqueueRound(ctx context.Context, leagueID string, round int) (service.JobReceipt, error)
	EnqueueNextRound(ctx context.Context, leagueID string) (service.JobReceipt, error)
	EnqueueSeason(ctx context.Context, leagueID string) (service.JobReceipt, error)
	Job(ctx context.Context, id string) (model.JobReport, error)
}

// JobsHandler handles job requests.
type JobsHandler struct {
	deps JobDependencies
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(deps JobDependencies) *JobsHandler {
	return &JobsHandler{deps: deps}
}

type ackResponse struct {
	Status    string          `json:"status"`
	Duplicate bool            `json:"duplicate"`
	Job       model.JobReport `json:"job"`
}

// writeReceipt answers 202 for a new job and 200 for a duplicate of a
// pending one.
func writeReceipt(w http.ResponseWriter, op string, rec service.JobReceipt, err error) {
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	if rec.Duplicate {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true, Job: rec.Job})
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Job: rec.Job})
}

// HandleEnqueueRound handles POST /leagues/{id}/rounds/{round}/simulate.
func (h *JobsHandler) HandleEnqueueRound(w http.ResponseWriter, r *http.Request) {
	const op = "api.enqueue_round"
	round, err := strconv.Atoi(r.PathValue("round"))
	if err != nil || round < 1 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	rec, err := h.deps.EnqueueRound(r.Context(), r.PathValue("id"), round)
	writeReceipt(w, op, rec, err)
}

// HandleEnqueueNextRound handles POST /leagues/{id}/rounds/next/simulate.
func (h *JobsHandler) HandleEnqueueNextRound(w http.ResponseWriter, r *http.Request) {
	rec, err := h.deps.EnqueueNextRound(r.Context(), r.PathValue("id"))
	writeReceipt(w, "api.enqueue_next_round", rec, err)
}

// HandleEnqueueSeason handles POST /leagues/{id}/simulate.
func (h *JobsHandler) HandleEnqueueSeason(w http.ResponseWriter, r *http.Request) {
	rec, err := h.deps.EnqueueSeason(r.Context(), r.PathValue("id"))
	writeReceipt(w, "api.enqueue_season", rec, err)
}

// HandleGetJob handles GET /jobs/{id}.
func (h *JobsHandler) HandleGetJob(w http.ResponseWriter, r *http.Request) {
	rep, err := h.deps.Job(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, "api.get_job", err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
