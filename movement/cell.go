// Package movement classifies level cells and derives the traversal graph
// actors move along.
package movement

import (
	"math"

	"github.com/jakecoffman/cp"
)

// TileKind is the terrain occupying a cell. Ground is solid; Platform can be
// stood on and passed through; Ladder can be climbed.
type TileKind int

const (
	Empty TileKind = iota
	Ground
	Platform
	Ladder
)

func (k TileKind) String() string {
	switch k {
	case Ground:
		return "ground"
	case Platform:
		return "platform"
	case Ladder:
		return "ladder"
	}
	return "empty"
}

// ClimbState is how an actor would be supported in a cell.
type ClimbState int

const (
	Invalid ClimbState = iota
	Stand
	Climb
	Scramble
	Fall
)

func (s ClimbState) String() string {
	switch s {
	case Stand:
		return "stand"
	case Climb:
		return "climb"
	case Scramble:
		return "scramble"
	case Fall:
		return "fall"
	}
	return "invalid"
}

// Standable reports whether an actor can stop in a cell in this state.
func (s ClimbState) Standable() bool {
	return s != Invalid && s != Fall
}

type Coord struct {
	X, Y int
}

func (c Coord) Add(dx, dy int) Coord {
	return Coord{X: c.X + dx, Y: c.Y + dy}
}

// Manhattan returns the taxicab distance between c and o.
func (c Coord) Manhattan(o Coord) int {
	dx, dy := c.X-o.X, c.Y-o.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// Less orders coords row-major, bottom row first.
func (c Coord) Less(o Coord) bool {
	if c.Y != o.Y {
		return c.Y < o.Y
	}
	return c.X < o.X
}

// Cell is one classified grid position.
//
// Height counts empty rows down to something that can be stood on: -1 inside
// Ground (or Ladder), 0 directly above a platform. HeightNoLadder is the same
// count with ladders treated as empty.
type Cell struct {
	Pos            Coord
	Kind           TileKind
	State          ClimbState
	Height         int
	HeightNoLadder int
	AllowShort     bool
	AllowLong      bool
	Stoppable      bool
}

func (c Cell) Standable() bool {
	return c.State.Standable()
}

// Rect is a half-open range of cells: Min inclusive, Max exclusive.
type Rect struct {
	Min, Max Coord
}

func (r Rect) Expand(n int) Rect {
	return Rect{Min: r.Min.Add(-n, -n), Max: r.Max.Add(n, n)}
}

func (r Rect) Contains(c Coord) bool {
	return c.X >= r.Min.X && c.X < r.Max.X && c.Y >= r.Min.Y && c.Y < r.Max.Y
}

// Transform maps between world space and grid coordinates.
type Transform struct {
	Origin   cp.Vector
	CellSize cp.Vector
}

// WorldToGrid rounds to the nearest cell, halves to even.
func (t Transform) WorldToGrid(p cp.Vector) Coord {
	d := p.Sub(t.Origin)
	return Coord{
		X: int(math.RoundToEven(d.X / t.cellSize().X)),
		Y: int(math.RoundToEven(d.Y / t.cellSize().Y)),
	}
}

func (t Transform) GridToWorld(c Coord) cp.Vector {
	s := t.cellSize()
	return cp.Vector{X: t.Origin.X + float64(c.X)*s.X, Y: t.Origin.Y + float64(c.Y)*s.Y}
}

func (t Transform) cellSize() cp.Vector {
	s := t.CellSize
	if s.X == 0 {
		s.X = 1
	}
	if s.Y == 0 {
		s.Y = 1
	}
	return s
}
