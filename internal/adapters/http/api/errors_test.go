package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/okian/kickoff/internal/adapters/repository"
	service "github.com/okian/kickoff/internal/app"
	"github.com/okian/kickoff/internal/domain/schedule"
	. "github.com/smartystreets/goconvey/convey"
)

func TestClassify(t *testing.T) {
	Convey("Given wrapped service errors", t, func() {
		cases := []struct {
			err    error
			status int
			code   string
		}{
			{fmt.Errorf("x: %w", service.ErrNotFound), http.StatusNotFound, "not_found"},
			{NewKind("op", ErrBadRequest), http.StatusBadRequest, "bad_request"},
			{fmt.Errorf("x: %w", service.ErrInvalidRound), http.StatusBadRequest, "bad_request"},
			{fmt.Errorf("x: %w", schedule.ErrOddClubCount), http.StatusBadRequest, "bad_request"},
			{fmt.Errorf("x: %w", service.ErrSeasonComplete), http.StatusConflict, "season_complete"},
			{fmt.Errorf("x: %w", repository.ErrDuplicateID), http.StatusConflict, "conflict"},
			{fmt.Errorf("x: %w", service.ErrQueueFull), http.StatusTooManyRequests, "backpressure"},
			{fmt.Errorf("x: %w", service.ErrNotStarted), http.StatusServiceUnavailable, "unavailable"},
			{errors.New("boom"), http.StatusInternalServerError, "internal_error"},
		}

		Convey("Then each maps to its status and code", func() {
			for _, c := range cases {
				status, code := classify(c.err)
				So(status, ShouldEqual, c.status)
				So(code, ShouldEqual, c.code)
			}
		})
	})

	Convey("Given an Error with a kind and a cause", t, func() {
		cause := errors.New("cause")
		err := WrapKind("api.test", ErrBadRequest, cause)

		Convey("Then both are reachable through errors.Is", func() {
			So(errors.Is(err, ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.test: bad request: cause")
		})

		Convey("Then Wrap keeps the chain", func() {
			So(errors.Is(Wrap("api.outer", err), cause), ShouldBeTrue)
		})
	})
}
