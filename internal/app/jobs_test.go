package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	service "github.com/okian/kickoff/internal/app"
	"github.com/okian/kickoff/internal/adapters/repository"
	"github.com/okian/kickoff/internal/domain/model"
	"github.com/okian/kickoff/internal/leaguegen"
	. "github.com/smartystreets/goconvey/convey"
)

// gatedStore blocks result history reads until the gate opens, which holds a
// running job in place.
type gatedStore struct {
	*repository.MemoryStore
	gate chan struct{}
}

func (g *gatedStore) PlayedMatches(ctx context.Context, flt repository.Filter) ([]model.PlayedMatch, error) {
	select {
	case <-g.gate:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return g.MemoryStore.PlayedMatches(ctx, flt)
}

func waitJob(svc *service.Service, id string, want ...model.JobStatus) model.JobReport {
	deadline := time.Now().Add(5 * time.Second)
	for {
		rep, err := svc.Job(context.Background(), id)
		if err == nil {
			for _, w := range want {
				if rep.Status == w {
					return rep
				}
			}
		}
		if time.Now().After(deadline) {
			return rep
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestService_Jobs(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service that is not started", t, func() {
		svc, l := newLeague(4)

		_, err := svc.EnqueueSeason(ctx, l.League.ID)
		So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
	})

	Convey("Given a started service with a scheduled season", t, func() {
		svc, l := newLeague(4)
		_, err := svc.StartNewSeason(ctx, l.League.ID, seasonStart)
		So(err, ShouldBeNil)
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		Convey("When a season job is submitted", func() {
			rec, err := svc.EnqueueSeason(ctx, l.League.ID)
			So(err, ShouldBeNil)
			So(rec.Duplicate, ShouldBeFalse)
			So(rec.Job.ID, ShouldNotBeEmpty)
			So(rec.Job.Kind, ShouldEqual, model.JobSeason)

			Convey("Then it runs to completion", func() {
				rep := waitJob(svc, rec.Job.ID, model.JobDone, model.JobFailed)
				So(rep.Status, ShouldEqual, model.JobDone)
				So(rep.Simulated, ShouldEqual, 6)

				next, err := svc.NextRound(ctx, l.League.ID)
				So(err, ShouldBeNil)
				So(next, ShouldEqual, 0)
			})
		})

		Convey("When a round job is submitted", func() {
			rec, err := svc.EnqueueNextRound(ctx, l.League.ID)
			So(err, ShouldBeNil)
			So(rec.Job.Round, ShouldEqual, 1)

			Convey("Then only that round is played", func() {
				rep := waitJob(svc, rec.Job.ID, model.JobDone, model.JobFailed)
				So(rep.Status, ShouldEqual, model.JobDone)
				So(rep.Simulated, ShouldEqual, 2)
			})
		})

		Convey("When jobs are invalid", func() {
			_, err := svc.EnqueueRound(ctx, l.League.ID, 0)
			So(errors.Is(err, service.ErrInvalidRound), ShouldBeTrue)

			_, err = svc.EnqueueSeason(ctx, "missing")
			So(errors.Is(err, service.ErrNotFound), ShouldBeTrue)

			_, err = svc.Job(ctx, "missing")
			So(errors.Is(err, service.ErrNotFound), ShouldBeTrue)
		})

		Convey("When stopped", func() {
			So(svc.Stop(ctx), ShouldBeNil)

			Convey("Then stats report it", func() {
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})
	})

	Convey("Given a job held in place while running", t, func() {
		store := &gatedStore{MemoryStore: repository.NewMemoryStore(), gate: make(chan struct{})}
		l := leaguegen.Generate(leaguegen.Config{Clubs: 4, Seed: 5})
		So(leaguegen.Seed(ctx, store, l), ShouldBeNil)

		svc := service.New(service.WithStore(store), service.WithClock(fixedClock))
		_, err := svc.StartNewSeason(ctx, l.League.ID, seasonStart)
		So(err, ShouldBeNil)
		So(svc.Start(ctx), ShouldBeNil)

		first, err := svc.EnqueueSeason(ctx, l.League.ID)
		So(err, ShouldBeNil)
		So(waitJob(svc, first.Job.ID, model.JobRunning).Status, ShouldEqual, model.JobRunning)

		Convey("When the same job is submitted again", func() {
			second, err := svc.EnqueueSeason(ctx, l.League.ID)
			So(err, ShouldBeNil)

			Convey("Then it is reported as a duplicate of the pending one", func() {
				So(second.Duplicate, ShouldBeTrue)
				So(second.Job.ID, ShouldEqual, first.Job.ID)
			})
		})

		Convey("When the job is released", func() {
			close(store.gate)
			rep := waitJob(svc, first.Job.ID, model.JobDone, model.JobFailed)
			So(rep.Status, ShouldEqual, model.JobDone)

			Convey("Then the same job can be submitted again", func() {
				again, err := svc.EnqueueSeason(ctx, l.League.ID)
				So(err, ShouldBeNil)
				So(again.Duplicate, ShouldBeFalse)
				So(again.Job.ID, ShouldNotEqual, first.Job.ID)
			})
		})

		Reset(func() {
			select {
			case <-store.gate:
			default:
				close(store.gate)
			}
			_ = svc.Stop(ctx)
		})
	})

	Convey("Given a started service whose start context ends", t, func() {
		store := &gatedStore{MemoryStore: repository.NewMemoryStore(), gate: make(chan struct{})}
		l := leaguegen.Generate(leaguegen.Config{Clubs: 4, Seed: 5})
		So(leaguegen.Seed(ctx, store, l), ShouldBeNil)

		svc := service.New(service.WithStore(store), service.WithClock(fixedClock))
		_, err := svc.StartNewSeason(ctx, l.League.ID, seasonStart)
		So(err, ShouldBeNil)
		runCtx, cancel := context.WithCancel(ctx)
		So(svc.Start(runCtx), ShouldBeNil)

		held, err := svc.EnqueueSeason(ctx, l.League.ID)
		So(err, ShouldBeNil)
		So(waitJob(svc, held.Job.ID, model.JobRunning).Status, ShouldEqual, model.JobRunning)
		queued, err := svc.EnqueueRound(ctx, l.League.ID, 1)
		So(err, ShouldBeNil)

		cancel()
		close(store.gate)
		So(svc.Stop(ctx), ShouldBeNil)

		Convey("Then stopping drains both jobs", func() {
			season, err := svc.Job(ctx, held.Job.ID)
			So(err, ShouldBeNil)
			So(season.Status, ShouldEqual, model.JobDone)
			So(season.Simulated, ShouldEqual, 6)

			round, err := svc.Job(ctx, queued.Job.ID)
			So(err, ShouldBeNil)
			So(round.Status, ShouldEqual, model.JobDone)
			So(round.Simulated, ShouldEqual, 0)
			So(round.Skipped, ShouldEqual, 2)
		})
	})
}
