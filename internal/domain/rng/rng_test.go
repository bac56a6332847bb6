package rng_test

import (
	"math"
	"testing"

	"github.com/okian/kickoff/internal/domain/rng"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSource(t *testing.T) {
	Convey("Given two sources with the same seed", t, func() {
		a := rng.New(42)
		b := rng.New(42)

		Convey("Then they produce the same stream", func() {
			for i := 0; i < 1000; i++ {
				So(a.Float64(), ShouldEqual, b.Float64())
			}
			So(a.Draws(), ShouldEqual, 1000)
		})
	})

	Convey("Given seed 42", t, func() {
		s := rng.New(42)

		Convey("Then the stream matches the pinned mulberry32 values", func() {
			So(s.Float64(), ShouldEqual, 0.6011037519201636)
			So(s.Float64(), ShouldEqual, 0.44829055899754167)
			So(s.Float64(), ShouldEqual, 0.8524657934904099)
		})
	})

	Convey("Given sources with different seeds", t, func() {
		a := rng.New(1)
		b := rng.New(2)

		Convey("Then their first values differ", func() {
			So(a.Float64(), ShouldNotEqual, b.Float64())
		})
	})

	Convey("Given a long stream", t, func() {
		s := rng.New(20240901)
		const n = 100_000
		buckets := make([]int, 10)
		sum := 0.0

		for i := 0; i < n; i++ {
			v := s.Float64()
			So(v >= 0 && v < 1, ShouldBeTrue)
			buckets[int(v*10)]++
			sum += v
		}

		Convey("Then it is roughly uniform", func() {
			So(math.Abs(sum/n-0.5), ShouldBeLessThan, 0.01)
			for _, c := range buckets {
				So(c, ShouldBeBetween, n/10-1000, n/10+1000)
			}
		})
	})

	Convey("Given the helper draws", t, func() {
		s := rng.New(7)

		Convey("IntN stays in range and consumes one draw", func() {
			for i := 0; i < 500; i++ {
				v := s.IntN(90)
				So(v, ShouldBeBetweenOrEqual, 0, 89)
			}
			So(s.Draws(), ShouldEqual, 500)
		})

		Convey("IntN with a non-positive bound does not draw", func() {
			So(s.IntN(0), ShouldEqual, 0)
			So(s.Draws(), ShouldEqual, 0)
		})

		Convey("Bool with p=0 and p=1 is fixed", func() {
			So(s.Bool(0), ShouldBeFalse)
			So(s.Bool(1), ShouldBeTrue)
		})
	})
}

func TestWeightedPick(t *testing.T) {
	Convey("Given weighted items", t, func() {
		items := []string{"a", "b", "c"}

		Convey("When one weight dominates", func() {
			s := rng.New(99)
			counts := map[string]int{}
			for i := 0; i < 10_000; i++ {
				counts[rng.WeightedPick(s, items, []float64{8, 1, 1})]++
			}

			Convey("Then frequencies follow the weights", func() {
				So(counts["a"], ShouldBeBetween, 7600, 8400)
				So(counts["b"], ShouldBeBetween, 800, 1200)
				So(counts["c"], ShouldBeBetween, 800, 1200)
			})
		})

		Convey("When a weight is zero", func() {
			s := rng.New(5)
			for i := 0; i < 2000; i++ {
				So(rng.WeightedPick(s, items, []float64{1, 0, 1}), ShouldNotEqual, "b")
			}
		})

		Convey("When every weight is zero", func() {
			s := rng.New(5)
			seen := map[string]bool{}
			for i := 0; i < 300; i++ {
				seen[rng.WeightedPick(s, items, []float64{0, 0, 0})] = true
			}

			Convey("Then the pick falls back to uniform", func() {
				So(len(seen), ShouldEqual, 3)
			})
		})

		Convey("When weights are negative, NaN or missing", func() {
			s := rng.New(11)
			for i := 0; i < 300; i++ {
				So(rng.WeightedPick(s, items, []float64{-5, math.NaN()}), ShouldBeIn, items)
			}
		})

		Convey("When picking it consumes exactly one draw", func() {
			s := rng.New(3)
			rng.WeightedPick(s, items, []float64{1, 2, 3})
			So(s.Draws(), ShouldEqual, 1)
		})

		Convey("When the list is empty", func() {
			s := rng.New(3)
			So(rng.WeightedPick(s, []string{}, nil), ShouldEqual, "")
			So(s.Draws(), ShouldEqual, 0)
		})
	})
}
