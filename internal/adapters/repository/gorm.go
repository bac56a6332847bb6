package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/okian/kickoff/internal/domain/model"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// inChunk bounds the number of bound parameters in one IN clause.
const inChunk = 500

type leagueRow struct {
	ID      string `gorm:"primaryKey"`
	Name    string
	Tier    int
	Ordinal int `gorm:"index"`
}

func (leagueRow) TableName() string { return "leagues" }

type clubRow struct {
	ID       string `gorm:"primaryKey"`
	LeagueID string `gorm:"index"`
	Name     string
	Ordinal  int
}

func (clubRow) TableName() string { return "clubs" }

type playerRow struct {
	ID          string `gorm:"primaryKey"`
	ClubID      string `gorm:"index"`
	Ordinal     int
	Name        string
	Position    string
	Overall     int
	Pace        int
	Passing     int
	Shooting    int
	Defending   int
	Goalkeeping int
	Stamina     int
	Age         int
}

func (playerRow) TableName() string { return "players" }

type styleRow struct {
	ClubID    string `gorm:"primaryKey"`
	Formation string
	Tempo     float64
	Press     float64
	Line      float64
}

func (styleRow) TableName() string { return "tactics" }

type fixtureRow struct {
	ID         string    `gorm:"primaryKey"`
	LeagueID   string    `gorm:"index:idx_fixture_lookup,priority:1"`
	Season     int       `gorm:"index:idx_fixture_lookup,priority:2"`
	Round      int       `gorm:"column:round_no;index:idx_fixture_lookup,priority:3"`
	KickoffAt  time.Time
	HomeClubID string
	AwayClubID string
	Status     string `gorm:"index"`
}

func (fixtureRow) TableName() string { return "fixtures" }

type resultRow struct {
	ID            uint   `gorm:"primaryKey"`
	FixtureID     string `gorm:"uniqueIndex"`
	Seed          uint32
	HomeGoals     int
	AwayGoals     int
	XGHome        float64
	XGAway        float64
	Events        datatypes.JSON
	PlayerOfMatch datatypes.JSON
	SimulatedAt   time.Time
}

func (resultRow) TableName() string { return "match_results" }

// GormStore is a Store backed by gorm.
type GormStore struct {
	db *gorm.DB
}

var _ Store = (*GormStore)(nil)

// OpenSQLite opens (or creates) a sqlite database at path and migrates it.
// Use ":memory:" for a throwaway database.
func OpenSQLite(path string, opts ...Option) (*GormStore, error) {
	cfg := gormOptions{logLevel: gormlogger.Silent}
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(cfg.logLevel),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	// sqlite serialises writers; a single connection also keeps ":memory:"
	// databases shared between goroutines.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	sqlDB.SetMaxOpenConns(1)

	return NewGormStore(db)
}

// NewGormStore wraps an open gorm connection and migrates the schema.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&leagueRow{}, &clubRow{}, &playerRow{}, &styleRow{}, &fixtureRow{}, &resultRow{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// Close closes the underlying connection.
func (g *GormStore) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func notFound(err error, what, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
	}
	return fmt.Errorf("%s %s: %w", what, id, err)
}

// Seed replaces the league, its clubs and their squads and styles.
func (g *GormStore) Seed(ctx context.Context, league model.League, clubs []model.Club, squads map[string]model.Squad, styles map[string]model.Style) error {
	defer observe("seed", time.Now())
	if league.ID == "" {
		return fmt.Errorf("seed: empty league id: %w", ErrInvalidInput)
	}

	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ordinal int64
		if err := tx.Model(&leagueRow{}).Count(&ordinal).Error; err != nil {
			return err
		}
		var existing leagueRow
		err := tx.First(&existing, "id = ?", league.ID).Error
		switch {
		case err == nil:
			ordinal = int64(existing.Ordinal)
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}
		row := leagueRow{ID: league.ID, Name: league.Name, Tier: league.Tier, Ordinal: int(ordinal)}
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
			return fmt.Errorf("seed league: %w", err)
		}

		var oldClubs []string
		if err := tx.Model(&clubRow{}).Where("league_id = ?", league.ID).Pluck("id", &oldClubs).Error; err != nil {
			return err
		}
		if len(oldClubs) > 0 {
			if err := tx.Where("club_id IN ?", oldClubs).Delete(&playerRow{}).Error; err != nil {
				return err
			}
			if err := tx.Where("club_id IN ?", oldClubs).Delete(&styleRow{}).Error; err != nil {
				return err
			}
			if err := tx.Where("league_id = ?", league.ID).Delete(&clubRow{}).Error; err != nil {
				return err
			}
		}

		for i, c := range clubs {
			if err := tx.Create(&clubRow{ID: c.ID, LeagueID: league.ID, Name: c.Name, Ordinal: i}).Error; err != nil {
				return fmt.Errorf("seed club %s: %w", c.ID, err)
			}
			players := make([]playerRow, 0, len(squads[c.ID]))
			for j, p := range squads[c.ID] {
				players = append(players, toPlayerRow(c.ID, j, p))
			}
			if len(players) > 0 {
				if err := tx.CreateInBatches(players, 100).Error; err != nil {
					return fmt.Errorf("seed squad %s: %w", c.ID, err)
				}
			}
			if st, ok := styles[c.ID]; ok {
				sr := styleRow{ClubID: c.ID, Formation: st.Formation, Tempo: st.Tempo, Press: st.Press, Line: st.Line}
				if err := tx.Create(&sr).Error; err != nil {
					return fmt.Errorf("seed style %s: %w", c.ID, err)
				}
			}
		}
		return nil
	})
}

// League returns a league by id.
func (g *GormStore) League(ctx context.Context, id string) (model.League, error) {
	var row leagueRow
	if err := g.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return model.League{}, notFound(err, "league", id)
	}
	return model.League{ID: row.ID, Name: row.Name, Tier: row.Tier}, nil
}

// Leagues returns every league in seeding order.
func (g *GormStore) Leagues(ctx context.Context) ([]model.League, error) {
	var rows []leagueRow
	if err := g.db.WithContext(ctx).Order("ordinal, id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("leagues: %w", err)
	}
	out := make([]model.League, len(rows))
	for i, r := range rows {
		out[i] = model.League{ID: r.ID, Name: r.Name, Tier: r.Tier}
	}
	return out, nil
}

// Clubs returns the league's clubs in seeding order.
func (g *GormStore) Clubs(ctx context.Context, leagueID string) ([]model.Club, error) {
	if _, err := g.League(ctx, leagueID); err != nil {
		return nil, err
	}
	var rows []clubRow
	if err := g.db.WithContext(ctx).Where("league_id = ?", leagueID).Order("ordinal").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("clubs %s: %w", leagueID, err)
	}
	out := make([]model.Club, len(rows))
	for i, r := range rows {
		out[i] = model.Club{ID: r.ID, LeagueID: r.LeagueID, Name: r.Name}
	}
	return out, nil
}

// Squad returns the club's squad in seeding order. An unknown club is
// ErrNotFound.
func (g *GormStore) Squad(ctx context.Context, clubID string) (model.Squad, error) {
	defer observe("squad", time.Now())
	var rows []playerRow
	if err := g.db.WithContext(ctx).Where("club_id = ?", clubID).Order("ordinal").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("squad %s: %w", clubID, err)
	}
	if len(rows) == 0 {
		var clubs int64
		if err := g.db.WithContext(ctx).Model(&clubRow{}).Where("id = ?", clubID).Count(&clubs).Error; err != nil {
			return nil, fmt.Errorf("squad %s: %w", clubID, err)
		}
		if clubs == 0 {
			return nil, fmt.Errorf("club %s: %w", clubID, ErrNotFound)
		}
	}
	out := make(model.Squad, len(rows))
	for i, r := range rows {
		out[i] = model.Player{
			ID:          r.ID,
			Name:        r.Name,
			Position:    model.Position(r.Position),
			Overall:     r.Overall,
			Pace:        r.Pace,
			Passing:     r.Passing,
			Shooting:    r.Shooting,
			Defending:   r.Defending,
			Goalkeeping: r.Goalkeeping,
			Stamina:     r.Stamina,
			Age:         r.Age,
		}
	}
	return out, nil
}

// Style returns the club's saved style or the default one.
func (g *GormStore) Style(ctx context.Context, clubID string) (model.Style, error) {
	var row styleRow
	err := g.db.WithContext(ctx).First(&row, "club_id = ?", clubID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.DefaultStyle(), nil
	}
	if err != nil {
		return model.Style{}, fmt.Errorf("style %s: %w", clubID, err)
	}
	return model.Style{Formation: row.Formation, Tempo: row.Tempo, Press: row.Press, Line: row.Line}, nil
}

// Fixture returns a fixture by id.
func (g *GormStore) Fixture(ctx context.Context, id string) (model.Fixture, error) {
	var row fixtureRow
	if err := g.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return model.Fixture{}, notFound(err, "fixture", id)
	}
	return row.toModel(), nil
}

func (g *GormStore) fixtureQuery(ctx context.Context, flt Filter) *gorm.DB {
	q := g.db.WithContext(ctx).Model(&fixtureRow{})
	if flt.LeagueID != "" {
		q = q.Where("league_id = ?", flt.LeagueID)
	}
	if flt.Season != 0 {
		q = q.Where("season = ?", flt.Season)
	}
	if flt.Round != 0 {
		q = q.Where("round_no = ?", flt.Round)
	}
	if flt.Status != "" {
		q = q.Where("status = ?", string(flt.Status))
	}
	return q.Order("season, round_no, kickoff_at, id")
}

// ListFixtures returns the fixtures matching flt.
func (g *GormStore) ListFixtures(ctx context.Context, flt Filter) ([]model.Fixture, error) {
	defer observe("list_fixtures", time.Now())
	var rows []fixtureRow
	if err := g.fixtureQuery(ctx, flt).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list fixtures: %w", err)
	}
	out := make([]model.Fixture, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out, nil
}

// CreateFixtures stores new fixtures in one transaction.
func (g *GormStore) CreateFixtures(ctx context.Context, fixtures []model.Fixture) error {
	defer observe("create_fixtures", time.Now())
	if len(fixtures) == 0 {
		return nil
	}
	rows := make([]fixtureRow, len(fixtures))
	for i, f := range fixtures {
		if f.ID == "" {
			return fmt.Errorf("create fixtures: empty id: %w", ErrInvalidInput)
		}
		rows[i] = toFixtureRow(f)
	}
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(rows, 100).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("create fixtures: %w", ErrDuplicateID)
	}
	if err != nil {
		return fmt.Errorf("create fixtures: %w", err)
	}
	return nil
}

// CurrentSeason returns the latest season scheduled for the league.
func (g *GormStore) CurrentSeason(ctx context.Context, leagueID string) (int, error) {
	var season int
	err := g.db.WithContext(ctx).Model(&fixtureRow{}).
		Where("league_id = ?", leagueID).
		Select("COALESCE(MAX(season), 0)").
		Scan(&season).Error
	if err != nil {
		return 0, fmt.Errorf("current season %s: %w", leagueID, err)
	}
	return season, nil
}

// HasResult reports whether the fixture has a stored result.
func (g *GormStore) HasResult(ctx context.Context, fixtureID string) (bool, error) {
	var n int64
	if err := g.db.WithContext(ctx).Model(&resultRow{}).Where("fixture_id = ?", fixtureID).Count(&n).Error; err != nil {
		return false, fmt.Errorf("has result %s: %w", fixtureID, err)
	}
	return n > 0, nil
}

// Result returns the stored result of a fixture.
func (g *GormStore) Result(ctx context.Context, fixtureID string) (model.MatchResult, error) {
	var row resultRow
	if err := g.db.WithContext(ctx).First(&row, "fixture_id = ?", fixtureID).Error; err != nil {
		return model.MatchResult{}, notFound(err, "result", fixtureID)
	}
	return row.toModel()
}

// SaveResult inserts the result if absent and marks the fixture PLAYED in
// the same transaction. The unique index on fixture_id arbitrates races.
func (g *GormStore) SaveResult(ctx context.Context, r model.MatchResult) (bool, error) {
	defer observe("save_result", time.Now())
	row, err := toResultRow(r)
	if err != nil {
		return false, err
	}

	inserted := false
	err = g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var f fixtureRow
		if err := tx.Select("id").First(&f, "id = ?", r.FixtureID).Error; err != nil {
			return notFound(err, "save result", r.FixtureID)
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "fixture_id"}},
			DoNothing: true,
		}).Create(&row)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		inserted = true
		return tx.Model(&fixtureRow{}).Where("id = ?", r.FixtureID).Update("status", string(model.Played)).Error
	})
	if err != nil {
		return false, fmt.Errorf("save result: %w", err)
	}
	return inserted, nil
}

// PlayedMatches returns played fixtures with their results.
func (g *GormStore) PlayedMatches(ctx context.Context, flt Filter) ([]model.PlayedMatch, error) {
	defer observe("played_matches", time.Now())
	flt.Status = model.Played
	fixtures, err := g.ListFixtures(ctx, flt)
	if err != nil {
		return nil, err
	}

	byFixture := make(map[string]resultRow, len(fixtures))
	for start := 0; start < len(fixtures); start += inChunk {
		end := min(start+inChunk, len(fixtures))
		ids := make([]string, 0, end-start)
		for _, f := range fixtures[start:end] {
			ids = append(ids, f.ID)
		}
		var rows []resultRow
		if err := g.db.WithContext(ctx).Where("fixture_id IN ?", ids).Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("played matches: %w", err)
		}
		for _, r := range rows {
			byFixture[r.FixtureID] = r
		}
	}

	out := make([]model.PlayedMatch, 0, len(fixtures))
	for _, f := range fixtures {
		row, ok := byFixture[f.ID]
		if !ok {
			continue
		}
		res, err := row.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, model.PlayedMatch{Fixture: f, Result: res})
	}
	return out, nil
}

func toPlayerRow(clubID string, ordinal int, p model.Player) playerRow {
	return playerRow{
		ID:          p.ID,
		ClubID:      clubID,
		Ordinal:     ordinal,
		Name:        p.Name,
		Position:    string(p.Position),
		Overall:     p.Overall,
		Pace:        p.Pace,
		Passing:     p.Passing,
		Shooting:    p.Shooting,
		Defending:   p.Defending,
		Goalkeeping: p.Goalkeeping,
		Stamina:     p.Stamina,
		Age:         p.Age,
	}
}

func toFixtureRow(f model.Fixture) fixtureRow {
	status := f.Status
	if status == "" {
		status = model.Scheduled
	}
	return fixtureRow{
		ID:         f.ID,
		LeagueID:   f.LeagueID,
		Season:     f.Season,
		Round:      f.Round,
		KickoffAt:  f.KickoffAt.UTC(),
		HomeClubID: f.HomeClubID,
		AwayClubID: f.AwayClubID,
		Status:     string(status),
	}
}

func (r fixtureRow) toModel() model.Fixture {
	return model.Fixture{
		ID:         r.ID,
		LeagueID:   r.LeagueID,
		Season:     r.Season,
		Round:      r.Round,
		KickoffAt:  r.KickoffAt.UTC(),
		HomeClubID: r.HomeClubID,
		AwayClubID: r.AwayClubID,
		Status:     model.FixtureStatus(r.Status),
	}
}

func toResultRow(r model.MatchResult) (resultRow, error) {
	events, err := model.MarshalEvents(r.Events)
	if err != nil {
		return resultRow{}, fmt.Errorf("encode events %s: %w", r.FixtureID, err)
	}
	potm, err := json.Marshal(r.PlayerOfMatch)
	if err != nil {
		return resultRow{}, fmt.Errorf("encode player of the match %s: %w", r.FixtureID, err)
	}
	return resultRow{
		FixtureID:     r.FixtureID,
		Seed:          r.Seed,
		HomeGoals:     r.HomeGoals,
		AwayGoals:     r.AwayGoals,
		XGHome:        r.XGHome,
		XGAway:        r.XGAway,
		Events:        datatypes.JSON(events),
		PlayerOfMatch: datatypes.JSON(potm),
		SimulatedAt:   r.SimulatedAt.UTC(),
	}, nil
}

func (r resultRow) toModel() (model.MatchResult, error) {
	events, err := model.UnmarshalEvents(r.Events)
	if err != nil {
		return model.MatchResult{}, fmt.Errorf("result %s: %w", r.FixtureID, err)
	}
	var potm *model.PlayerOfMatch
	if len(r.PlayerOfMatch) > 0 {
		if err := json.Unmarshal(r.PlayerOfMatch, &potm); err != nil {
			return model.MatchResult{}, fmt.Errorf("result %s: decode player of the match: %w", r.FixtureID, err)
		}
	}
	return model.MatchResult{
		FixtureID:     r.FixtureID,
		Seed:          r.Seed,
		HomeGoals:     r.HomeGoals,
		AwayGoals:     r.AwayGoals,
		XGHome:        r.XGHome,
		XGAway:        r.XGAway,
		Events:        events,
		PlayerOfMatch: potm,
		SimulatedAt:   r.SimulatedAt.UTC(),
	}, nil
}
