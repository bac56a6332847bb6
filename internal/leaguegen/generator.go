// Package leaguegen builds synthetic leagues for demos, the offline CLI and
// tests. The output is a pure function of the configuration.
package leaguegen

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/okian/kickoff/internal/adapters/repository"
	"github.com/okian/kickoff/internal/domain/model"
	"github.com/okian/kickoff/internal/domain/rng"
)

// Squad shape per club.
const (
	Goalkeepers = 2
	Defenders   = 7
	Midfielders = 8
	Forwards    = 5
	SquadSize   = Goalkeepers + Defenders + Midfielders + Forwards

	DefaultClubs = 10
	DefaultName  = "Division 1"
)

var namespace = uuid.MustParse("0d6f7a8e-2b0c-4a51-8d55-5c8a1f3e9b21")

var clubNames = []string{
	"Northbridge FC", "Riverside United", "Steelworks", "Harbor Town", "Aurora SC",
	"Royal Oaks", "Bluefield", "Old Mill", "Kingsport", "Red Valley",
}

var firstNames = []string{
	"Alexander", "Erik", "Liam", "Noah", "William", "Elias", "Leo", "Oscar", "Axel", "Viktor",
	"Olle", "Filip", "Isak", "Gustav", "Anton", "Lucas", "Hugo", "Arvid", "Albin", "Theo",
}

var lastNames = []string{
	"Andersson", "Johansson", "Karlsson", "Nilsson", "Eriksson", "Larsson", "Olsson", "Persson", "Svensson", "Gustafsson",
	"Pettersson", "Jonsson", "Jansson", "Hansson", "Bengtsson", "Jönsson", "Lindberg", "Jakobsson", "Magnusson", "Olofsson",
}

var formations = []string{"4-4-2", "4-3-3", "4-2-3-1", "3-5-2", "5-3-2"}

// Config describes the league to generate.
type Config struct {
	Name  string
	Clubs int
	Seed  uint32
}

// League is a generated league ready to be seeded into a store.
type League struct {
	League model.League
	Clubs  []model.Club
	Squads map[string]model.Squad
	Styles map[string]model.Style
}

// ClubIDs returns the club ids in generation order.
func (l League) ClubIDs() []string {
	ids := make([]string, len(l.Clubs))
	for i, c := range l.Clubs {
		ids[i] = c.ID
	}
	return ids
}

// Generate builds a league. Zero fields take their defaults.
func Generate(cfg Config) League {
	if cfg.Name == "" {
		cfg.Name = DefaultName
	}
	if cfg.Clubs <= 0 {
		cfg.Clubs = DefaultClubs
	}

	leagueID := id("league", cfg.Seed, cfg.Name)
	out := League{
		League: model.League{ID: leagueID, Name: cfg.Name, Tier: 1},
		Clubs:  make([]model.Club, cfg.Clubs),
		Squads: make(map[string]model.Squad, cfg.Clubs),
		Styles: make(map[string]model.Style, cfg.Clubs),
	}

	for c := 0; c < cfg.Clubs; c++ {
		club := model.Club{
			ID:       id("club", cfg.Seed, fmt.Sprintf("%s/%d", leagueID, c)),
			LeagueID: leagueID,
			Name:     clubName(c),
		}
		out.Clubs[c] = club
		out.Squads[club.ID] = squad(cfg.Seed, c, club.ID)
		out.Styles[club.ID] = style(cfg.Seed, c)
	}
	return out
}

// Seed writes the league into a store.
func Seed(ctx context.Context, s repository.Seeder, l League) error {
	if err := s.Seed(ctx, l.League, l.Clubs, l.Squads, l.Styles); err != nil {
		return fmt.Errorf("leaguegen: seed %s: %w", l.League.Name, err)
	}
	return nil
}

func id(kind string, seed uint32, name string) string {
	return uuid.NewSHA1(namespace, []byte(fmt.Sprintf("%s/%d/%s", kind, seed, name))).String()
}

func clubName(i int) string {
	name := clubNames[i%len(clubNames)]
	if gen := i / len(clubNames); gen > 0 {
		name = fmt.Sprintf("%s %d", name, gen+1)
	}
	return name
}

func randInt(src *rng.Source, lo, hi int) int {
	return src.IntN(hi-lo+1) + lo
}

func pick(src *rng.Source, list []string) string {
	return list[src.IntN(len(list))]
}

func squad(seed uint32, clubIdx int, clubID string) model.Squad {
	shape := []struct {
		pos   model.Position
		count int
	}{
		{model.Goalkeeper, Goalkeepers},
		{model.Defender, Defenders},
		{model.Midfielder, Midfielders},
		{model.Forward, Forwards},
	}

	out := make(model.Squad, 0, SquadSize)
	for _, s := range shape {
		for i := 0; i < s.count; i++ {
			// One stream per player keeps attributes stable when the squad
			// shape changes elsewhere.
			src := rng.New(seed + uint32(clubIdx*10_000+i*97+int(s.pos[0])))
			out = append(out, player(src, s.pos, fmt.Sprintf("%s/%s/%d", clubID, s.pos, i)))
		}
	}
	return out
}

func player(src *rng.Source, pos model.Position, key string) model.Player {
	base := randInt(src, 50, 75)
	overall := base + randInt(src, -3, 3)
	_ = randInt(src, 2, 10) // potential, unused but kept in the draw order
	name := pick(src, firstNames) + " " + pick(src, lastNames)

	p := model.Player{
		ID:       uuid.NewSHA1(namespace, []byte("player/"+key)).String(),
		Name:     name,
		Position: pos,
		Overall:  overall,
		Age:      randInt(src, 17, 34),
		Stamina:  randInt(src, 50, 90),
		Pace:     randInt(src, 40, 90),
		Passing:  randInt(src, 40, 90),
		Shooting: randInt(src, 30, 90),
	}
	p.Defending = randInt(src, 30, 90)
	if pos == model.Goalkeeper {
		p.Goalkeeping = randInt(src, 50, 90)
	} else {
		p.Goalkeeping = randInt(src, 1, 20)
	}

	switch pos {
	case model.Forward:
		p.Shooting = min(99, p.Shooting+10)
	case model.Midfielder:
		p.Passing = min(99, p.Passing+10)
	case model.Defender:
		p.Defending = min(99, p.Defending+10)
	case model.Goalkeeper:
	}
	return p
}

func style(seed uint32, clubIdx int) model.Style {
	src := rng.New(seed ^ uint32((clubIdx+1)*7919))
	knob := func() float64 {
		return math.Round((0.3+0.5*src.Float64())*100) / 100
	}
	return model.Style{
		Formation: pick(src, formations),
		Tempo:     knob(),
		Press:     knob(),
		Line:      knob(),
	}
}
