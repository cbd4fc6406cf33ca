// Package trail computes attack and concentrate trail geometry against a
// scene: clipping attack paths at the first blocking hit, choosing arcs for
// concentrate trails and testing the two for overlap.
package trail

import "github.com/jakecoffman/cp"

//go:generate go tool mockgen -destination=./mocks/scene_mock.go -package=mocks . SceneQuery

// EntityID identifies an actor in the scene. NoEntity marks level geometry.
type EntityID int

const NoEntity EntityID = 0

// Filter narrows a ray query.
type Filter struct {
	// Exclude is skipped by the query; usually the acting actor.
	Exclude EntityID
}

type Hit struct {
	Point  cp.Vector
	Entity EntityID
}

// SceneQuery answers ray queries against level geometry and actors.
type SceneQuery interface {
	// FirstHit returns the blocking hit nearest to from on the segment
	// from-to, if any.
	FirstHit(from, to cp.Vector, filter Filter) (Hit, bool)
}
