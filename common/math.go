package common

import (
	"math"

	"github.com/jakecoffman/cp"
)

// Sign returns -1, 0 or 1.
func Sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func Sin(deg float64) float64 {
	return math.Sin(deg * math.Pi / 180)
}

func Cos(deg float64) float64 {
	return math.Cos(deg * math.Pi / 180)
}

// DirFromDegrees returns the unit vector at deg measured counter-clockwise from +X.
func DirFromDegrees(deg float64) cp.Vector {
	return cp.Vector{X: Cos(deg), Y: Sin(deg)}
}

// Cross is the z component of the 3D cross product of a and b.
func Cross(a, b cp.Vector) float64 {
	return a.X*b.Y - a.Y*b.X
}

// SignedAngle returns the angle of v against +X in degrees, in (-180, 180].
func SignedAngle(v cp.Vector) float64 {
	return math.Atan2(v.Y, v.X) * 180 / math.Pi
}

// AngleBetween returns the unsigned angle between a and b in degrees.
// Zero-length inputs give 0.
func AngleBetween(a, b cp.Vector) float64 {
	la, lb := a.Length(), b.Length()
	if la == 0 || lb == 0 {
		return 0
	}
	c := a.Dot(b) / (la * lb)
	c = math.Max(-1, math.Min(1, c))
	return math.Acos(c) * 180 / math.Pi
}

// ClampMagnitude shortens v to at most max, keeping its direction.
func ClampMagnitude(v cp.Vector, max float64) cp.Vector {
	l := v.Length()
	if l <= max || l == 0 {
		return v
	}
	return v.Mult(max / l)
}

// SegmentsIntersect reports whether segments a1a2 and b1b2 cross. Each
// segment's endpoints must lie strictly on opposite sides of the other's
// line, so collinear and touching segments report false.
func SegmentsIntersect(a1, a2, b1, b2 cp.Vector) bool {
	da := a2.Sub(a1)
	db := b2.Sub(b1)
	if Cross(da, b1.Sub(a1))*Cross(da, b2.Sub(a1)) >= 0 {
		return false
	}
	return Cross(db, a1.Sub(b1))*Cross(db, a2.Sub(b1)) < 0
}

// PolylinesIntersect reports whether any segment of a crosses any segment
// of b. Polylines with fewer than two points have no segments.
func PolylinesIntersect(a, b []cp.Vector) bool {
	for i := 1; i < len(a); i++ {
		for j := 1; j < len(b); j++ {
			if SegmentsIntersect(a[i-1], a[i], b[j-1], b[j]) {
				return true
			}
		}
	}
	return false
}
