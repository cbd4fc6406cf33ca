package combat

import (
	"github.com/jakecoffman/cp"

	"github.com/milk9111/trailtactics/trail"
)

// AttackTrail is one path of an attack card and what it does to the actors
// it reaches.
type AttackTrail struct {
	Power   int
	Path    *trail.Path
	Effects []AttackEffect
}

// ConcentrateTrail is a held defensive arc. When an attack crosses it, a
// stronger attack triggers Terminations; otherwise Reactions fire together
// with the Arbitrary effects of the owner's other held trails.
type ConcentrateTrail struct {
	Power int
	Arc   *trail.Arc

	Reactions    []ConcentrateEffect
	Terminations []ConcentrateEffect
	Arbitrary    []ConcentrateEffect
	// DiscardEffects run when the trail is removed by an effect.
	DiscardEffects []CardEffect

	Exists bool
	// DelayedDeletion discards the trail at its owner's next round start.
	DelayedDeletion bool
	// Hidden trails are not shown to other actors.
	Hidden bool
}

// Points returns the arc around its owner in world space.
func (c *ConcentrateTrail) Points(owner *Actor) []cp.Vector {
	return c.Arc.WorldPoints(owner.Position, owner.Facing)
}

// Remove runs the discard effects on owner and marks the trail gone.
func (c *ConcentrateTrail) Remove(owner *Actor) {
	for _, e := range c.DiscardEffects {
		e.ApplyCard(owner)
	}
	c.Exists = false
	owner.events.Push(Event{Kind: EventTrailRemoved, Actor: owner.ID})
}
