package movement

import (
	"github.com/jakecoffman/cp"
	"go.uber.org/zap"

	"github.com/milk9111/trailtactics/graph"
)

// DefaultMargin is how many cells past the terrain bounds get classified.
const DefaultMargin = 5

// Terrain answers point queries against the level's tile layers.
type Terrain interface {
	HasTerrain(kind TileKind, p cp.Vector) bool
	// Bounds is the half-open cell range that holds any terrain.
	Bounds() Rect
}

type MoveKind int

const (
	Walk MoveKind = iota
	LongJump
	ClimbJump
	VerticalJump
	VerticalDrop
	FallJump
)

func (k MoveKind) String() string {
	switch k {
	case LongJump:
		return "long_jump"
	case ClimbJump:
		return "climb_jump"
	case VerticalJump:
		return "vertical_jump"
	case VerticalDrop:
		return "vertical_drop"
	case FallJump:
		return "fall_jump"
	}
	return "walk"
}

// Move is the value carried by a traversal edge. Kind is informational.
type Move struct {
	Cost int
	Kind MoveKind
}

type (
	Graph = graph.Graph[Coord, Move]
	Step  = graph.Step[Coord, Move]
)

func addCost(d int, m Move) int { return d + m.Cost }

// Builder owns the classified grid, the traversal graph derived from it and
// the shortest path results for the current decision.
type Builder struct {
	terrain Terrain
	xf      Transform
	margin  int
	log     *zap.Logger

	bounds Rect
	cells  map[Coord]Cell
	order  []Coord
	graph  *Graph
	paths  *graph.ShortestPath[Coord, Move, int]
}

func NewBuilder(terrain Terrain, xf Transform, margin int, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if margin < 0 {
		margin = DefaultMargin
	}
	g := graph.New[Coord, Move]()
	return &Builder{
		terrain: terrain,
		xf:      xf,
		margin:  margin,
		log:     logger,
		cells:   make(map[Coord]Cell),
		graph:   g,
		paths:   graph.NewShortestPath(g, addCost),
	}
}

func (b *Builder) Transform() Transform { return b.xf }

// Refresh reclassifies the grid and rebuilds every edge.
func (b *Builder) Refresh(occupied []Coord) {
	b.Classify(occupied)
	b.Build()
}

// Classify rebuilds every cell from the terrain. Occupied cells are marked
// not stoppable.
func (b *Builder) Classify(occupied []Coord) {
	clear(b.cells)
	b.order = b.order[:0]
	b.bounds = b.terrain.Bounds().Expand(b.margin)

	blocked := make(map[Coord]bool, len(occupied))
	for _, c := range occupied {
		blocked[c] = true
	}

	for y := b.bounds.Min.Y; y < b.bounds.Max.Y; y++ {
		for x := b.bounds.Min.X; x < b.bounds.Max.X; x++ {
			pos := Coord{X: x, Y: y}
			cell := Cell{Pos: pos, Kind: b.kindAt(pos), Stoppable: !blocked[pos]}

			if below, ok := b.cells[pos.Add(0, -1)]; ok {
				switch {
				case cell.Kind == Ground || cell.Kind == Ladder:
					cell.Height = -1
				case below.Kind == Platform:
					cell.Height = 0
				default:
					cell.Height = below.Height + 1
				}
				switch {
				case cell.Kind == Ground:
					cell.HeightNoLadder = -1
				case below.Kind == Platform:
					cell.HeightNoLadder = 0
				default:
					cell.HeightNoLadder = below.HeightNoLadder + 1
				}
			}

			b.cells[pos] = cell
			b.order = append(b.order, pos)
		}
	}

	for _, pos := range b.order {
		above, okA := b.cells[pos.Add(0, 1)]
		below, okB := b.cells[pos.Add(0, -1)]
		if !okA || !okB {
			continue
		}
		cell := b.cells[pos]
		cell.State = deriveState(cell.Kind, above.Kind, below.Kind)
		cell.AllowShort = cell.Kind != Ground
		cell.AllowLong = cell.AllowShort && above.Kind != Ground
		b.cells[pos] = cell
	}
}

func (b *Builder) kindAt(pos Coord) TileKind {
	p := b.xf.GridToWorld(pos)
	for _, k := range [...]TileKind{Ground, Platform, Ladder} {
		if b.terrain.HasTerrain(k, p) {
			return k
		}
	}
	return Empty
}

func deriveState(kind, above, below TileKind) ClimbState {
	supported := below == Ground || below == Platform
	switch kind {
	case Ground:
		return Invalid
	case Ladder:
		if supported {
			if above == Ground {
				return Scramble
			}
			return Stand
		}
		return Climb
	}
	if below == Empty {
		return Fall
	}
	if above == Ground {
		return Scramble
	}
	return Stand
}

// Build derives the traversal graph from the classified cells.
func (b *Builder) Build() {
	b.graph.Clear()
	for _, pos := range b.order {
		cur := b.cells[pos]
		if !cur.Standable() {
			continue
		}
		b.graph.AddNode(pos)

		for _, d := range [...]Coord{{1, 0}, {0, 1}, {-1, 0}, {0, -1}} {
			np := pos.Add(d.X, d.Y)
			if n, ok := b.cells[np]; ok && n.Standable() {
				b.graph.AddEdge(pos, np, Move{Cost: 1, Kind: Walk})
			}
		}

		for _, dx := range [...]int{-1, 1} {
			mid, okM := b.cells[pos.Add(dx, 0)]
			land, okL := b.cells[pos.Add(2*dx, 0)]
			if !okM || !okL || !cur.AllowLong {
				continue
			}
			if !mid.AllowLong || mid.Standable() {
				continue
			}
			if land.Standable() && land.AllowLong {
				b.graph.AddEdge(pos, land.Pos, Move{Cost: 2, Kind: LongJump})
			}
		}

		if cur.State == Stand {
			for _, dx := range [...]int{-1, 1} {
				n, ok := b.cells[pos.Add(dx, 1)]
				if ok && (n.State == Stand || n.State == Scramble) {
					b.graph.AddEdge(pos, n.Pos, Move{Cost: 2, Kind: ClimbJump})
				}
			}

			if up, ok := b.cells[pos.Add(0, 2)]; ok && up.Standable() {
				b.graph.AddEdge(pos, up.Pos, Move{Cost: 2, Kind: VerticalJump})
				b.graph.AddEdge(up.Pos, pos, Move{Cost: 1, Kind: VerticalDrop})
			}
		}

		if cur.State == Stand || cur.State == Scramble {
			for _, dx := range [...]int{-1, 1} {
				n, ok := b.cells[pos.Add(dx, 0)]
				if !ok || n.State != Fall || n.Height > 2 {
					continue
				}
				landing := n.Pos.Add(0, -n.Height)
				if _, ok := b.cells[landing]; ok {
					b.graph.AddEdge(pos, landing, Move{Cost: 1, Kind: FallJump})
				}
			}
		}
	}
	b.log.Debug("movement: graph built",
		zap.Int("cells", len(b.order)),
		zap.Int("nodes", b.graph.Len()),
		zap.Int("edges", b.graph.EdgeCount()))
}

func (b *Builder) Cell(c Coord) (Cell, bool) {
	cell, ok := b.cells[c]
	return cell, ok
}

// Coords returns every classified coord, bottom row first.
func (b *Builder) Coords() []Coord {
	return b.order
}

func (b *Builder) Bounds() Rect { return b.bounds }

func (b *Builder) Graph() *Graph { return b.graph }

// Relax computes path costs from the given cell.
func (b *Builder) Relax(from Coord) error {
	return b.paths.Relax(from, 0)
}

func (b *Builder) Dist(c Coord) (int, bool) {
	return b.paths.Dist(c)
}

func (b *Builder) Path(to Coord) []Step {
	return b.paths.ReconstructPath(to)
}

// Reachable lists the stoppable cells whose path cost fits budget.
func (b *Builder) Reachable(budget int) []Coord {
	var out []Coord
	for _, pos := range b.order {
		if b.reachable(pos, budget) {
			out = append(out, pos)
		}
	}
	return out
}

// Nearest picks the reachable stoppable cell closest to target by Manhattan
// distance. Ties go to the first in scan order.
func (b *Builder) Nearest(target Coord, budget int) (Coord, bool) {
	var (
		best     Coord
		found    bool
		bestDist int
	)
	for _, pos := range b.order {
		if !b.reachable(pos, budget) {
			continue
		}
		if d := pos.Manhattan(target); !found || d < bestDist {
			best, bestDist, found = pos, d, true
		}
	}
	return best, found
}

func (b *Builder) reachable(pos Coord, budget int) bool {
	d, ok := b.paths.Dist(pos)
	return ok && d <= budget && b.cells[pos].Stoppable
}
