// Command season-sim generates a league and plays whole seasons offline,
// printing the final table and leaderboards for each.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	flags "github.com/jessevdk/go-flags"
	"github.com/okian/kickoff/internal/adapters/repository"
	app "github.com/okian/kickoff/internal/app"
	"github.com/okian/kickoff/internal/domain/injury"
	"github.com/okian/kickoff/internal/domain/standings"
	"github.com/okian/kickoff/internal/leaguegen"
	"github.com/okian/kickoff/pkg/logger"
)

type options struct {
	Name    string `long:"name" default:"Division 1" description:"league name"`
	Clubs   int    `short:"c" long:"clubs" default:"10" description:"number of clubs (even)"`
	Seed    uint32 `short:"s" long:"seed" default:"1" description:"league generation seed"`
	Profile string `short:"p" long:"profile" default:"default" description:"injury profile: conservative, default or gritty"`
	DB      string `long:"db" description:"sqlite file to persist to; in memory when empty"`
	Start   string `long:"start" default:"2025-08-02" description:"first kickoff date (YYYY-MM-DD)"`
	Seasons int    `short:"n" long:"seasons" default:"1" description:"number of seasons to play"`
	Top     int    `long:"top" default:"5" description:"leaderboard length"`
	Verbose bool   `short:"v" long:"verbose" description:"debug logging"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			_, _ = fmt.Fprintln(os.Stdout, ferr.Message)
			return
		}
		_, _ = fmt.Fprintln(os.Stderr, "season-sim:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	var opts options
	if _, err := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash).ParseArgs(args); err != nil {
		return err
	}
	if opts.Seasons < 1 {
		return fmt.Errorf("--seasons must be at least 1, got %d", opts.Seasons)
	}
	profile, ok := injury.Lookup(opts.Profile)
	if !ok {
		return fmt.Errorf("unknown injury profile %q (want one of %v)", opts.Profile, injury.Names())
	}
	start, err := time.Parse(time.DateOnly, opts.Start)
	if err != nil {
		return fmt.Errorf("--start: %w", err)
	}
	start = start.Add(15 * time.Hour)

	if err := logger.Init(logger.WithOutput(os.Stderr)); err != nil {
		return err
	}
	level := "warn"
	if opts.Verbose {
		level = "debug"
	}
	_ = logger.SetLevelString(level)

	var store repository.Store = repository.NewMemoryStore()
	if opts.DB != "" {
		s, err := repository.OpenSQLite(opts.DB, repository.WithSQLLogging(opts.Verbose))
		if err != nil {
			return err
		}
		store = s
	}
	defer func() { _ = store.Close() }()

	l := leaguegen.Generate(leaguegen.Config{Name: opts.Name, Clubs: opts.Clubs, Seed: opts.Seed})
	if err := leaguegen.Seed(ctx, store, l); err != nil {
		return err
	}

	svc := app.New(
		app.WithStore(store),
		app.WithInjuryProfile(profile),
		app.WithLogger(logger.Named("season-sim")),
	)

	for i := 0; i < opts.Seasons; i++ {
		first := time.Time{}
		if i == 0 {
			first = start
		}
		plan, err := svc.StartNewSeason(ctx, l.League.ID, first)
		if err != nil {
			return err
		}
		report, err := svc.SimulateRemainingSeason(ctx, l.League.ID)
		if err != nil {
			return err
		}
		rows, err := svc.Standings(ctx, l.League.ID, plan.Season)
		if err != nil {
			return err
		}
		boards, err := svc.Leaders(ctx, l.League.ID, plan.Season, opts.Top)
		if err != nil {
			return err
		}
		if err := printSeason(out, l.League.Name, profile.Name, plan, report, rows, boards); err != nil {
			return err
		}
	}
	return nil
}

func printSeason(out io.Writer, name, profile string, plan app.SeasonPlan, report app.SeasonReport, rows []standings.Row, boards standings.Boards) error {
	fmt.Fprintf(out, "%s, season %d (%d rounds, %d matches, from %s, profile %s)\n\n",
		name, plan.Season, plan.Rounds, report.Simulated, plan.StartsAt.Format(time.DateOnly), profile)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "#\tClub\tP\tW\tD\tL\tGF\tGA\tGD\tPts\tForm\t")
	for i, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%+d\t%d\t%s\t\n",
			i+1, r.ClubName, r.Played, r.Won, r.Drawn, r.Lost, r.GF, r.GA, r.GD, r.Points, r.Form)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, b := range []struct {
		title   string
		entries []standings.Entry
	}{
		{"Top scorers", boards.Scorers},
		{"Top assists", boards.Assists},
		{"Clean sheets", boards.CleanSheets},
	} {
		fmt.Fprintf(out, "\n%s\n", b.title)
		tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, e := range b.entries {
			fmt.Fprintf(tw, "  %s\t%s\t%d\n", e.PlayerName, e.ClubName, e.Value)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	fmt.Fprintln(out, "\nDiscipline")
	tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, e := range boards.Discipline {
		fmt.Fprintf(tw, "  %s\t%s\t%dY\t%dR\n", e.PlayerName, e.ClubName, e.Yellows, e.Reds)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(out)
	return nil
}
