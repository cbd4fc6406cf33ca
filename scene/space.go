// Package scene answers geometry queries for a battle on a chipmunk space:
// level tiles are static boxes and actors are kinematic boxes.
package scene

import (
	"github.com/jakecoffman/cp"
	"go.uber.org/zap"

	"github.com/milk9111/trailtactics/combat"
	"github.com/milk9111/trailtactics/movement"
	"github.com/milk9111/trailtactics/prefabs"
	"github.com/milk9111/trailtactics/trail"
)

// Collision categories.
const (
	CategoryGround uint = 1 << iota
	CategoryPlatform
	CategoryLadder
	CategoryActor
)

// trailMask is what stops a trail: ground and actors. Platforms and
// ladders let trails through.
const trailMask = CategoryGround | CategoryActor

// ActorSize is the side of an actor's box, in cells.
const ActorSize = 0.8

// Space implements trail.SceneQuery and movement.Terrain.
type Space struct {
	space  *cp.Space
	level  *prefabs.Level
	log    *zap.Logger
	actors map[trail.EntityID]*cp.Body
}

func New(level *prefabs.Level, logger *zap.Logger) *Space {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Space{
		space:  cp.NewSpace(),
		level:  level,
		log:    logger,
		actors: make(map[trail.EntityID]*cp.Body),
	}
	s.buildStaticShapes()
	return s
}

// buildStaticShapes merges runs of same-kind tiles into rectangles, widest
// first, and adds one static box per rectangle.
func (s *Space) buildStaticShapes() {
	kinds := []struct {
		kind     movement.TileKind
		category uint
	}{
		{movement.Ground, CategoryGround},
		{movement.Platform, CategoryPlatform},
		{movement.Ladder, CategoryLadder},
	}
	w, h := s.level.Width, s.level.Height
	cs := s.level.CellSize
	shapes := 0
	for _, k := range kinds {
		processed := make([]bool, w*h)
		match := func(x, y int) bool {
			return !processed[y*w+x] && s.level.Tile(movement.Coord{X: x, Y: y}) == k.kind
		}
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				if !match(x, y) {
					continue
				}
				rw := 1
				for x+rw < w && match(x+rw, y) {
					rw++
				}
				rh := 1
			heightLoop:
				for y+rh < h {
					for xi := x; xi < x+rw; xi++ {
						if !match(xi, y+rh) {
							break heightLoop
						}
					}
					rh++
				}

				l := float64(x)*cs - cs/2
				b := float64(y)*cs - cs/2
				bb := cp.BB{L: l, B: b, R: l + float64(rw)*cs, T: b + float64(rh)*cs}
				shape := cp.NewBox2(s.space.StaticBody, bb, 0)
				shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, k.category, cp.ALL_CATEGORIES))
				s.space.AddShape(shape)
				shapes++

				for yy := y; yy < y+rh; yy++ {
					for xx := x; xx < x+rw; xx++ {
						processed[yy*w+xx] = true
					}
				}
			}
		}
	}
	s.log.Debug("scene: static shapes built", zap.String("level", s.level.Name), zap.Int("shapes", shapes))
}

// AddActor places a box for id at pos. The actor's own queries skip it.
func (s *Space) AddActor(id trail.EntityID, pos cp.Vector) {
	if _, ok := s.actors[id]; ok {
		s.MoveActor(id, pos)
		return
	}
	body := cp.NewKinematicBody()
	body.SetPosition(pos)
	size := ActorSize * s.level.CellSize
	shape := cp.NewBox(body, size, size, 0)
	shape.SetFilter(cp.NewShapeFilter(uint(id), CategoryActor, cp.ALL_CATEGORIES))
	shape.UserData = id
	s.space.AddBody(body)
	s.space.AddShape(shape)
	s.space.ReindexShapesForBody(body)
	s.actors[id] = body
}

func (s *Space) MoveActor(id trail.EntityID, pos cp.Vector) {
	body, ok := s.actors[id]
	if !ok {
		return
	}
	body.SetPosition(pos)
	s.space.ReindexShapesForBody(body)
}

func (s *Space) RemoveActor(id trail.EntityID) {
	body, ok := s.actors[id]
	if !ok {
		return
	}
	var shapes []*cp.Shape
	body.EachShape(func(shape *cp.Shape) {
		shapes = append(shapes, shape)
	})
	for _, shape := range shapes {
		s.space.RemoveShape(shape)
	}
	s.space.RemoveBody(body)
	delete(s.actors, id)
}

// Sync mirrors actor positions into the space. Dead actors are removed.
func (s *Space) Sync(actors combat.Actors) {
	for _, a := range actors {
		switch {
		case !a.Alive:
			s.RemoveActor(a.ID)
		default:
			s.AddActor(a.ID, a.Position)
		}
	}
}

// FirstHit implements trail.SceneQuery.
func (s *Space) FirstHit(from, to cp.Vector, filter trail.Filter) (trail.Hit, bool) {
	f := cp.NewShapeFilter(uint(filter.Exclude), cp.ALL_CATEGORIES, trailMask)
	info := s.space.SegmentQueryFirst(from, to, 0, f)
	if info.Shape == nil {
		return trail.Hit{}, false
	}
	hit := trail.Hit{Point: info.Point}
	if id, ok := info.Shape.UserData.(trail.EntityID); ok {
		hit.Entity = id
	}
	return hit, true
}

// HasTerrain implements movement.Terrain.
func (s *Space) HasTerrain(kind movement.TileKind, p cp.Vector) bool {
	var category uint
	switch kind {
	case movement.Ground:
		category = CategoryGround
	case movement.Platform:
		category = CategoryPlatform
	case movement.Ladder:
		category = CategoryLadder
	default:
		return false
	}
	info := s.space.PointQueryNearest(p, 0, cp.NewShapeFilter(cp.NO_GROUP, cp.ALL_CATEGORIES, category))
	return info.Shape != nil
}

// Bounds implements movement.Terrain.
func (s *Space) Bounds() movement.Rect { return s.level.Bounds() }

func (s *Space) Transform() movement.Transform { return s.level.Transform() }

func (s *Space) Level() *prefabs.Level { return s.level }
