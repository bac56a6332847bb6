package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	flags "github.com/jessevdk/go-flags"
	"github.com/smartystreets/goconvey/convey"
)

func TestRun(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given a four club league", t, func() {
		var out bytes.Buffer

		convey.Convey("When two seasons are played in memory", func() {
			err := run(ctx, []string{"--clubs", "4", "--seed", "3", "--seasons", "2"}, &out)

			convey.Convey("Then both tables are printed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out.String(), convey.ShouldContainSubstring, "season 1 (3 rounds, 6 matches, from 2025-08-02")
				convey.So(out.String(), convey.ShouldContainSubstring, "season 2 (3 rounds, 6 matches, from 2025-08-23")
				convey.So(strings.Count(out.String(), "Top scorers"), convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When the same seed is played twice", func() {
			var again bytes.Buffer
			convey.So(run(ctx, []string{"-c", "4", "-s", "9"}, &out), convey.ShouldBeNil)
			convey.So(run(ctx, []string{"-c", "4", "-s", "9"}, &again), convey.ShouldBeNil)

			convey.Convey("Then the output is identical", func() {
				convey.So(again.String(), convey.ShouldEqual, out.String())
			})
		})

		convey.Convey("When persisting to sqlite", func() {
			db := filepath.Join(t.TempDir(), "sim.db")
			err := run(ctx, []string{"-c", "4", "--db", db, "--profile", "gritty"}, &out)

			convey.Convey("Then the season is played", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out.String(), convey.ShouldContainSubstring, "profile gritty")
			})
		})
	})

	convey.Convey("Given invalid arguments", t, func() {
		var out bytes.Buffer

		convey.Convey("Then an odd club count is rejected", func() {
			convey.So(run(ctx, []string{"-c", "5"}, &out), convey.ShouldNotBeNil)
		})

		convey.Convey("Then an unknown profile is rejected", func() {
			convey.So(run(ctx, []string{"-p", "brutal"}, &out), convey.ShouldNotBeNil)
		})

		convey.Convey("Then a bad start date is rejected", func() {
			convey.So(run(ctx, []string{"--start", "August"}, &out), convey.ShouldNotBeNil)
		})

		convey.Convey("Then --help reports ErrHelp", func() {
			err := run(ctx, []string{"--help"}, &out)
			var ferr *flags.Error
			convey.So(errors.As(err, &ferr), convey.ShouldBeTrue)
			convey.So(ferr.Type, convey.ShouldEqual, flags.ErrHelp)
		})
	})
}
