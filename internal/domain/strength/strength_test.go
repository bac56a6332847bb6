package strength_test

import (
	"testing"

	"github.com/okian/kickoff/internal/domain/model"
	"github.com/okian/kickoff/internal/domain/strength"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCompute(t *testing.T) {
	Convey("Given a squad", t, func() {
		squad := model.Squad{
			{ID: "p1", Overall: 70},
			{ID: "p2", Overall: 60},
			{ID: "p3", Overall: 80},
		}

		Convey("With the neutral style the bump is zero", func() {
			So(strength.Bump(model.DefaultStyle()), ShouldEqual, 0)
			So(strength.Compute(squad, model.DefaultStyle()), ShouldEqual, 70)
		})

		Convey("With an aggressive style the bump is positive", func() {
			style := model.Style{Tempo: 0.8, Press: 0.7, Line: 0.5}
			So(strength.Bump(style), ShouldAlmostEqual, 2.0, 1e-9)
			So(strength.Compute(squad, style), ShouldAlmostEqual, 72.0, 1e-9)
		})

		Convey("With a passive style the bump is negative", func() {
			style := model.Style{Tempo: 0.2, Press: 0.3, Line: 0.5}
			So(strength.Bump(style), ShouldAlmostEqual, -2.0, 1e-9)
		})
	})

	Convey("Given an empty squad", t, func() {
		Convey("The average is treated as zero", func() {
			So(strength.Average(nil), ShouldEqual, 0)
			So(strength.Compute(model.Squad{}, model.Style{Tempo: 1, Press: 1, Line: 1}), ShouldAlmostEqual, 6.0, 1e-9)
		})
	})
}
