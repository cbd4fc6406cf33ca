package trail

import (
	"slices"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/trailtactics/common"
)

// WaypointFunc maps an aim offset from the origin to raw waypoints, also
// relative to the origin.
type WaypointFunc func(goal cp.Vector) []cp.Vector

// Line is a straight trail from the origin toward goal, no longer than max.
func Line(max float64) WaypointFunc {
	return func(goal cp.Vector) []cp.Vector {
		return []cp.Vector{{}, common.ClampMagnitude(goal, max)}
	}
}

// Target is an actor the trail ran into and where it was struck.
type Target struct {
	Entity EntityID
	Point  cp.Vector
}

// Path is the geometry of an attack trail.
type Path struct {
	waypoints WaypointFunc
	points    []cp.Vector
	targets   []Target
}

func NewPath(waypoints WaypointFunc) *Path {
	return &Path{waypoints: waypoints}
}

// Clip lays the trail from origin toward aim and cuts it at the first hit.
// A hit on an actor makes that actor a target.
func (p *Path) Clip(scene SceneQuery, self EntityID, origin, aim cp.Vector) {
	p.points = p.points[:0]
	p.targets = p.targets[:0]
	if p.waypoints == nil {
		return
	}

	raw := p.waypoints(aim.Sub(origin))
	if len(raw) == 0 {
		return
	}
	p.points = append(p.points, raw[0].Add(origin))
	for i := 1; i < len(raw); i++ {
		from, to := raw[i-1].Add(origin), raw[i].Add(origin)
		hit, ok := scene.FirstHit(from, to, Filter{Exclude: self})
		if !ok {
			p.points = append(p.points, to)
			continue
		}
		p.points = append(p.points, hit.Point)
		if hit.Entity != NoEntity {
			p.targets = append(p.targets, Target{Entity: hit.Entity, Point: hit.Point})
		}
		return
	}
}

// Points returns the clipped trail in world space.
func (p *Path) Points() []cp.Vector {
	return slices.Clone(p.points)
}

func (p *Path) Targets() []Target {
	return slices.Clone(p.targets)
}

// Clear drops any clipped geometry.
func (p *Path) Clear() {
	p.points = p.points[:0]
	p.targets = p.targets[:0]
}

// Intersects reports whether any segment of the trail crosses a segment of
// other.
func (p *Path) Intersects(other []cp.Vector) bool {
	return common.PolylinesIntersect(p.points, other)
}

// StrikeAngle is the signed angle in degrees, from +X, of the hit point as
// seen from the target's position.
func StrikeAngle(hit, target cp.Vector) float64 {
	return common.SignedAngle(hit.Sub(target))
}
