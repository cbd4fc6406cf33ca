package combat

import (
	"math"
	"slices"

	"github.com/jakecoffman/cp"
)

// MinPriority sorts after every other effect.
const MinPriority = math.MinInt

// AttackContext is what an attack effect sees when it runs against one
// target.
type AttackContext struct {
	Attacker *Actor
	Target   *Actor
	Trail    *AttackTrail
	// Angle is the strike angle in degrees from +X, seen from the target.
	Angle float64

	res *Resolution
}

// Move queues a positional directive.
func (c *AttackContext) Move(m MoveDirective) {
	c.res.Moves = append(c.res.Moves, m)
}

// ConcentrateContext is what a concentrate effect sees. Self is the trail
// whose effect list is running, Owner holds it.
type ConcentrateContext struct {
	Self     *ConcentrateTrail
	Owner    *Actor
	Attacker *Actor
	Attack   *AttackTrail

	res *Resolution
}

func (c *ConcentrateContext) Move(m MoveDirective) {
	c.res.Moves = append(c.res.Moves, m)
}

type AttackEffect interface {
	Priority() int
	ApplyAttack(ctx *AttackContext)
}

type ConcentrateEffect interface {
	Priority() int
	ApplyConcentrate(ctx *ConcentrateContext)
}

// CardEffect runs on the actor playing or discarding a card.
type CardEffect interface {
	ApplyCard(a *Actor)
}

// Damage hits the target for the attacker's attack times Power, less the
// target's defense, unless the target is dodging.
type Damage struct {
	Power float64
}

func (Damage) Priority() int { return 2 }

func (d Damage) ApplyAttack(ctx *AttackContext) {
	t := ctx.Target
	if t.Dodge {
		t.Dodge = false
		t.events.Push(Event{Kind: EventDodged, Actor: t.ID})
		return
	}
	amount := max(0, ctx.Attacker.Attack()*d.Power-t.Defense())
	t.Damage(amount)
	t.DamageRegion(ctx.Angle, amount)
}

// Push moves the target. With Absolute unset the target is shoved Distance
// along the attacker's facing; otherwise it is sent to Goal. Obstacles do
// not move.
type Push struct {
	Distance float64
	Goal     cp.Vector
	Absolute bool
	Speed    float64
}

// DefaultPushSpeed is used when a Push has no speed of its own.
const DefaultPushSpeed = 8.0

func (Push) Priority() int { return 1 }

func (p Push) ApplyAttack(ctx *AttackContext) {
	t := ctx.Target
	if t.IsObstacle() {
		return
	}
	goal := p.Goal
	if !p.Absolute {
		goal = t.Position.Add(cp.Vector{X: ctx.Attacker.Facing * p.Distance})
	}
	speed := p.Speed
	if speed <= 0 {
		speed = DefaultPushSpeed
	}
	ctx.Move(MoveDirective{Actor: t.ID, Goal: goal, Speed: speed})
}

// Dodge makes the owner evade the next damage.
type Dodge struct{}

func (Dodge) Priority() int { return 3 }

func (Dodge) ApplyConcentrate(ctx *ConcentrateContext) {
	ctx.Owner.Dodge = true
}

// Mend heals the owner of the concentrate trail.
type Mend struct {
	Amount float64
}

func (Mend) Priority() int { return 1 }

func (m Mend) ApplyConcentrate(ctx *ConcentrateContext) {
	ctx.Owner.Heal(m.Amount)
}

// Dispel removes the trail whose list it is in. It always runs last.
type Dispel struct{}

func (Dispel) Priority() int { return MinPriority }

func (Dispel) ApplyConcentrate(ctx *ConcentrateContext) {
	ctx.Self.Remove(ctx.Owner)
}

// Heal restores HP to the card's player.
type Heal struct {
	Amount float64
}

func (h Heal) ApplyCard(a *Actor) { a.Heal(h.Amount) }

// Draw draws Count cards.
type Draw struct {
	Count int
}

func (d Draw) ApplyCard(a *Actor) {
	if a.Hand != nil {
		a.Hand.Draw(d.Count)
	}
}

// Discard discards the hand cards at Indices.
type Discard struct {
	Indices []int
}

func (d Discard) ApplyCard(a *Actor) {
	if a.Hand == nil {
		return
	}
	idx := slices.Clone(d.Indices)
	slices.Sort(idx)
	idx = slices.Compact(idx)
	for i := len(idx) - 1; i >= 0; i-- {
		a.Hand.Discard(idx[i])
	}
}
