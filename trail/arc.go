package trail

import (
	"errors"
	"math"
	"slices"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/trailtactics/common"
)

// ArcStep is the sampling interval of arc geometry, in degrees.
const ArcStep = 3.0

var ErrNoRanges = errors.New("trail: arc needs at least one range")

// Range is an arc from Start to End in degrees, counter-clockwise from +X in
// the owner's local frame. End may be less than Start; it then wraps.
type Range struct {
	Start float64 `yaml:"start"`
	End   float64 `yaml:"end"`
}

// Contains reports whether dir lies strictly between the range boundaries.
func (r Range) Contains(dir cp.Vector) bool {
	begin, end := common.DirFromDegrees(r.Start), common.DirFromDegrees(r.End)
	return common.Cross(begin, dir) > 0 && common.Cross(dir, end) > 0
}

// distance is the angle from dir to the nearer boundary.
func (r Range) distance(dir cp.Vector) float64 {
	return math.Min(
		common.AngleBetween(common.DirFromDegrees(r.Start), dir),
		common.AngleBetween(dir, common.DirFromDegrees(r.End)),
	)
}

// Arc is the geometry of a concentrate trail: one of several configured
// ranges, sampled at a fixed radius around its owner.
type Arc struct {
	Radius float64

	ranges   []Range
	selected Range
	points   []cp.Vector
}

// NewArc returns an arc with its first range selected.
func NewArc(radius float64, ranges []Range) (*Arc, error) {
	if len(ranges) == 0 {
		return nil, ErrNoRanges
	}
	a := &Arc{Radius: radius, ranges: slices.Clone(ranges)}
	a.SetRange(a.ranges[0])
	return a, nil
}

func (a *Arc) Ranges() []Range {
	return slices.Clone(a.ranges)
}

// Select picks the range for a local-frame direction. The first range that
// contains dir wins; otherwise the range whose nearer boundary is closest.
func (a *Arc) Select(dir cp.Vector) Range {
	best := a.ranges[0]
	bestDist := math.Inf(1)
	for _, r := range a.ranges {
		if r.Contains(dir) {
			best = r
			break
		}
		if d := r.distance(dir); d < bestDist {
			best, bestDist = r, d
		}
	}
	a.SetRange(best)
	return best
}

// SelectToward selects the range facing goal for an owner at pos.
func (a *Arc) SelectToward(pos cp.Vector, facing float64, goal cp.Vector) Range {
	d := goal.Sub(pos)
	return a.Select(cp.Vector{X: d.X * facingSign(facing), Y: d.Y})
}

// SetRange samples r every ArcStep degrees, both ends included.
func (a *Arc) SetRange(r Range) {
	a.selected = r
	a.points = a.points[:0]
	start, end := r.Start, r.End
	for end < start {
		end += 360
	}
	n := int(math.Floor((end-start)/ArcStep + 1e-9))
	for i := 0; i <= n; i++ {
		a.points = append(a.points, common.DirFromDegrees(start+float64(i)*ArcStep).Mult(a.Radius))
	}
}

func (a *Arc) Selected() Range { return a.selected }

// LocalPoints returns the sampled arc relative to its owner, facing +X.
func (a *Arc) LocalPoints() []cp.Vector {
	return slices.Clone(a.points)
}

// WorldPoints mirrors the arc by facing and moves it to pos.
func (a *Arc) WorldPoints(pos cp.Vector, facing float64) []cp.Vector {
	f := facingSign(facing)
	out := make([]cp.Vector, len(a.points))
	for i, p := range a.points {
		out[i] = cp.Vector{X: p.X*f + pos.X, Y: p.Y + pos.Y}
	}
	return out
}

func facingSign(facing float64) float64 {
	if facing < 0 {
		return -1
	}
	return 1
}
