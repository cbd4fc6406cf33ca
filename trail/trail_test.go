package trail_test

import (
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/jakecoffman/cp"
	"go.uber.org/mock/gomock"
	"pgregory.net/rapid"

	"github.com/milk9111/trailtactics/common"
	"github.com/milk9111/trailtactics/trail"
	"github.com/milk9111/trailtactics/trail/mocks"
)

func vec(x, y float64) cp.Vector { return cp.Vector{X: x, Y: y} }

func TestClipWithoutObstacles(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	scene := mocks.NewMockSceneQuery(ctrl)
	origin := vec(3, 1)
	scene.EXPECT().
		FirstHit(origin, vec(5, 1), trail.Filter{Exclude: 4}).
		Return(trail.Hit{}, false)

	p := trail.NewPath(func(goal cp.Vector) []cp.Vector {
		return []cp.Vector{{}, vec(2, 0)}
	})
	p.Clip(scene, 4, origin, vec(9, 9))

	want := []cp.Vector{origin, vec(5, 1)}
	if !slices.Equal(p.Points(), want) {
		t.Fatalf("expected %v, got %v", want, p.Points())
	}
	if len(p.Targets()) != 0 {
		t.Fatalf("expected no targets, got %v", p.Targets())
	}
}

func TestClipStopsAtFirstHit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	scene := mocks.NewMockSceneQuery(ctrl)
	gomock.InOrder(
		scene.EXPECT().FirstHit(vec(0, 0), vec(1, 0), gomock.Any()).Return(trail.Hit{}, false),
		scene.EXPECT().FirstHit(vec(1, 0), vec(1, 3), gomock.Any()).
			Return(trail.Hit{Point: vec(1, 2), Entity: 7}, true),
	)

	p := trail.NewPath(func(cp.Vector) []cp.Vector {
		return []cp.Vector{{}, vec(1, 0), vec(1, 3), vec(5, 3)}
	})
	p.Clip(scene, 1, vec(0, 0), vec(1, 1))

	want := []cp.Vector{vec(0, 0), vec(1, 0), vec(1, 2)}
	if !slices.Equal(p.Points(), want) {
		t.Fatalf("expected %v, got %v", want, p.Points())
	}
	targets := p.Targets()
	if len(targets) != 1 || targets[0].Entity != 7 || targets[0].Point != vec(1, 2) {
		t.Fatalf("unexpected targets %v", targets)
	}
}

func TestClipTerrainHitHasNoTarget(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	scene := mocks.NewMockSceneQuery(ctrl)
	scene.EXPECT().FirstHit(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(trail.Hit{Point: vec(0.5, 0), Entity: trail.NoEntity}, true)

	p := trail.NewPath(trail.Line(2))
	p.Clip(scene, 1, vec(0, 0), vec(10, 0))
	if got := p.Points(); len(got) != 2 || got[1] != vec(0.5, 0) {
		t.Fatalf("expected clipped at wall, got %v", got)
	}
	if len(p.Targets()) != 0 {
		t.Fatalf("terrain should not be targeted")
	}
}

// wallScene blocks everything at x >= wall; actors are points on the wall.
type wallScene struct {
	wall   float64
	actors map[float64]trail.EntityID
}

func (s wallScene) FirstHit(from, to cp.Vector, filter trail.Filter) (trail.Hit, bool) {
	if (from.X < s.wall) == (to.X < s.wall) {
		return trail.Hit{}, false
	}
	t := (s.wall - from.X) / (to.X - from.X)
	p := from.Add(to.Sub(from).Mult(t))
	id := s.actors[math.Round(p.Y)]
	if id == filter.Exclude {
		id = trail.NoEntity
	}
	return trail.Hit{Point: p, Entity: id}, true
}

func TestClipIdempotent(t *testing.T) {
	scene := wallScene{wall: 3, actors: map[float64]trail.EntityID{0: 2, 1: 3}}
	rapid.Check(t, func(rt *rapid.T) {
		aim := vec(rapid.Float64Range(-6, 6).Draw(rt, "ax"), rapid.Float64Range(-6, 6).Draw(rt, "ay"))
		p := trail.NewPath(func(goal cp.Vector) []cp.Vector {
			return []cp.Vector{{}, goal.Mult(0.5), goal}
		})

		p.Clip(scene, 1, vec(0, 0), aim)
		points, targets := p.Points(), p.Targets()
		p.Clip(scene, 1, vec(0, 0), aim)
		if !slices.Equal(points, p.Points()) || !slices.Equal(targets, p.Targets()) {
			rt.Fatalf("clip not idempotent for aim %v", aim)
		}
	})
}

func TestLineClampsLength(t *testing.T) {
	pts := trail.Line(2)(vec(4, 0))
	if len(pts) != 2 || pts[0] != vec(0, 0) || pts[1] != vec(2, 0) {
		t.Fatalf("unexpected line %v", pts)
	}
}

func TestStrikeAngle(t *testing.T) {
	cases := []struct {
		name        string
		hit, target cp.Vector
		want        float64
	}{
		{"from_above", vec(5, 6), vec(5, 5), 90},
		{"from_below", vec(5, 4), vec(5, 5), -90},
		{"from_left", vec(4, 5), vec(5, 5), 180},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := trail.StrikeAngle(c.hit, c.target); math.Abs(got-c.want) > 1e-9 {
				t.Fatalf("expected %v, got %v", c.want, got)
			}
		})
	}
}

var dodgeRanges = []trail.Range{{-30, 30}, {30, 90}, {90, 150}, {150, 210}}

func TestArcSelect(t *testing.T) {
	cases := []struct {
		name   string
		ranges []trail.Range
		dirDeg float64
		want   trail.Range
	}{
		{"inside_second", dodgeRanges, 60, trail.Range{Start: 30, End: 90}},
		{"inside_wrapping", dodgeRanges, 180, trail.Range{Start: 150, End: 210}},
		{"nearest_boundary", []trail.Range{{0, 30}, {100, 130}}, 60, trail.Range{Start: 0, End: 30}},
		{"nearest_other_side", []trail.Range{{0, 30}, {100, 130}}, 80, trail.Range{Start: 100, End: 130}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			arc, err := trail.NewArc(1, c.ranges)
			if err != nil {
				t.Fatalf("new arc: %v", err)
			}
			if got := arc.Select(common.DirFromDegrees(c.dirDeg)); got != c.want {
				t.Fatalf("expected %v, got %v", c.want, got)
			}
			if arc.Selected() != c.want {
				t.Fatalf("selection not stored")
			}
		})
	}
}

func TestArcSelectOrderIndependent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ranges := slices.Clone(dodgeRanges)
		pick := rapid.IntRange(0, len(ranges)-1).Draw(rt, "pick")
		r := ranges[pick]
		dir := common.DirFromDegrees(rapid.Float64Range(r.Start+0.5, r.End-0.5).Draw(rt, "deg"))

		perm := rapid.Permutation(ranges).Draw(rt, "perm")
		arc, err := trail.NewArc(1, perm)
		if err != nil {
			rt.Fatalf("new arc: %v", err)
		}
		if got := arc.Select(dir); got != r {
			rt.Fatalf("expected %v, got %v", r, got)
		}
	})
}

func TestArcSamplingWraps(t *testing.T) {
	arc, err := trail.NewArc(2, []trail.Range{{352, 10}})
	if err != nil {
		t.Fatalf("new arc: %v", err)
	}
	pts := arc.LocalPoints()
	if len(pts) != 7 {
		t.Fatalf("expected 7 samples, got %d", len(pts))
	}
	first, last := pts[0], pts[len(pts)-1]
	if math.Abs(common.SignedAngle(first)+8) > 1e-6 || math.Abs(common.SignedAngle(last)-10) > 1e-6 {
		t.Fatalf("unexpected ends %v %v", first, last)
	}
	if math.Abs(first.Length()-2) > 1e-9 {
		t.Fatalf("sample off radius: %v", first.Length())
	}
}

func TestArcWorldPointsMirror(t *testing.T) {
	arc, _ := trail.NewArc(1, []trail.Range{{0, 0}})
	right := arc.WorldPoints(vec(5, 5), 1)
	left := arc.WorldPoints(vec(5, 5), -1)
	if len(right) != 1 || right[0] != vec(6, 5) || left[0] != vec(4, 5) {
		t.Fatalf("unexpected points %v %v", right, left)
	}
}

func TestArcSelectToward(t *testing.T) {
	arc, _ := trail.NewArc(1, dodgeRanges)
	// Facing left, a goal on the left is in front.
	if got := arc.SelectToward(vec(0, 0), -1, vec(-3, 0)); got != (trail.Range{Start: -30, End: 30}) {
		t.Fatalf("expected front range, got %v", got)
	}
}

func TestNewArcWithoutRanges(t *testing.T) {
	if _, err := trail.NewArc(1, nil); !errors.Is(err, trail.ErrNoRanges) {
		t.Fatalf("expected ErrNoRanges, got %v", err)
	}
}

func TestPathIntersectsArc(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	scene := mocks.NewMockSceneQuery(ctrl)
	scene.EXPECT().FirstHit(gomock.Any(), gomock.Any(), gomock.Any()).Return(trail.Hit{}, false).AnyTimes()

	p := trail.NewPath(trail.Line(10))
	p.Clip(scene, 1, vec(-2, 0), vec(2, 0))

	front, _ := trail.NewArc(1, []trail.Range{{-31, 29}})
	above, _ := trail.NewArc(1, []trail.Range{{60, 120}})

	if !p.Intersects(front.WorldPoints(vec(0, 0), 1)) {
		t.Fatalf("expected trail to cross front arc")
	}
	if p.Intersects(above.WorldPoints(vec(0, 0), 1)) {
		t.Fatalf("trail should miss arc above")
	}
	if p.Intersects(nil) {
		t.Fatalf("empty arc should not intersect")
	}
}
