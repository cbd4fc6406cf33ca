package prefabs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/trailtactics/combat"
	"github.com/milk9111/trailtactics/movement"
)

var (
	ErrBadGlyph = errors.New("prefabs: unknown level glyph")
	ErrBadSpawn = errors.New("prefabs: bad spawn")
)

// LevelSpec is a level as written in levels/*.yaml. Tiles is an ASCII grid
// whose first line is the top row:
//
//	#  ground
//	=  platform
//	H  ladder
//	.  empty
type LevelSpec struct {
	Name     string      `yaml:"name"`
	CellSize float64     `yaml:"cell_size"`
	Tiles    string      `yaml:"tiles"`
	Spawns   []SpawnSpec `yaml:"spawns"`
}

type SpawnSpec struct {
	Name   string        `yaml:"name"`
	Kind   string        `yaml:"kind"`
	Team   string        `yaml:"team"`
	X      int           `yaml:"x"`
	Y      int           `yaml:"y"`
	Facing float64       `yaml:"facing"`
	Stats  *combat.Stats `yaml:"stats"`
	Deck   []int         `yaml:"deck"`
}

// Level is a parsed level. Cell (0, 0) is the bottom-left tile.
type Level struct {
	Name          string
	Width, Height int
	CellSize      float64
	Spawns        []Spawn

	tiles []movement.TileKind
}

type Spawn struct {
	Name   string
	Kind   combat.ActorKind
	Team   combat.Team
	Cell   movement.Coord
	Facing float64
	Stats  combat.Stats
	// Deck is empty when the spawn uses the library's full deck.
	Deck []int
}

func LoadLevel(name string) (*Level, error) {
	name = strings.TrimSuffix(cleanPrefabPath(name), ".yaml")
	if !strings.HasPrefix(name, "levels/") {
		name = "levels/" + name
	}
	spec, err := LoadSpec[LevelSpec](name + ".yaml")
	if err != nil {
		return nil, err
	}
	return ParseLevel(spec)
}

func ParseLevel(spec LevelSpec) (*Level, error) {
	rows := strings.Split(strings.Trim(spec.Tiles, "\n"), "\n")
	lvl := &Level{Name: spec.Name, Height: len(rows), CellSize: spec.CellSize}
	if lvl.CellSize <= 0 {
		lvl.CellSize = 1
	}
	for _, r := range rows {
		lvl.Width = max(lvl.Width, len(strings.TrimRight(r, " \t\r")))
	}
	lvl.tiles = make([]movement.TileKind, lvl.Width*lvl.Height)

	for i, r := range rows {
		y := lvl.Height - 1 - i
		for x, ch := range strings.TrimRight(r, " \t\r") {
			kind, ok := glyphs[ch]
			if !ok {
				return nil, fmt.Errorf("%w: %q at row %d col %d", ErrBadGlyph, ch, i, x)
			}
			lvl.tiles[y*lvl.Width+x] = kind
		}
	}

	for _, s := range spec.Spawns {
		sp, err := parseSpawn(s)
		if err != nil {
			return nil, fmt.Errorf("prefabs: level %s: %w", spec.Name, err)
		}
		if !lvl.Bounds().Contains(sp.Cell) {
			return nil, fmt.Errorf("prefabs: level %s: %w: %s outside the grid", spec.Name, ErrBadSpawn, s.Name)
		}
		lvl.Spawns = append(lvl.Spawns, sp)
	}
	return lvl, nil
}

var glyphs = map[rune]movement.TileKind{
	'.': movement.Empty,
	' ': movement.Empty,
	'#': movement.Ground,
	'=': movement.Platform,
	'H': movement.Ladder,
}

func parseSpawn(s SpawnSpec) (Spawn, error) {
	sp := Spawn{
		Name:   s.Name,
		Cell:   movement.Coord{X: s.X, Y: s.Y},
		Facing: 1,
		Stats:  combat.DefaultStats(),
		Deck:   s.Deck,
	}
	if s.Facing < 0 {
		sp.Facing = -1
	}
	if s.Stats != nil {
		sp.Stats = *s.Stats
	}
	switch s.Kind {
	case "", "player":
		sp.Kind = combat.KindPlayer
	case "obstacle":
		sp.Kind = combat.KindObstacle
	default:
		return Spawn{}, fmt.Errorf("%w: %s has kind %q", ErrBadSpawn, s.Name, s.Kind)
	}
	switch s.Team {
	case "heroes":
		sp.Team = combat.Heroes
	case "enemies":
		sp.Team = combat.Enemies
	case "", "neutral":
		sp.Team = combat.Neutral
	default:
		return Spawn{}, fmt.Errorf("%w: %s has team %q", ErrBadSpawn, s.Name, s.Team)
	}
	return sp, nil
}

// Tile returns the tile at c; outside the grid is empty.
func (l *Level) Tile(c movement.Coord) movement.TileKind {
	if !l.Bounds().Contains(c) {
		return movement.Empty
	}
	return l.tiles[c.Y*l.Width+c.X]
}

func (l *Level) Bounds() movement.Rect {
	return movement.Rect{Max: movement.Coord{X: l.Width, Y: l.Height}}
}

// Transform places cell centers CellSize apart from the world origin.
func (l *Level) Transform() movement.Transform {
	return movement.Transform{CellSize: cp.Vector{X: l.CellSize, Y: l.CellSize}}
}

// Cells lists the coords holding kind, bottom row first.
func (l *Level) Cells(kind movement.TileKind) []movement.Coord {
	var out []movement.Coord
	for i, k := range l.tiles {
		if k == kind {
			out = append(out, movement.Coord{X: i % l.Width, Y: i / l.Width})
		}
	}
	return out
}
