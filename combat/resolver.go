package combat

import (
	"cmp"
	"slices"

	"go.uber.org/zap"

	"github.com/milk9111/trailtactics/trail"
)

// Roster looks up actors by ID.
type Roster interface {
	Actor(id ActorID) (*Actor, bool)
}

// Resolution is the outcome of one attack.
type Resolution struct {
	// Moves are positional directives for the caller to play out.
	Moves []MoveDirective
	// Applied counts the effects that ran.
	Applied int
}

type queued struct {
	priority int
	name     string
	run      func()
}

type Resolver struct {
	roster Roster
	log    *zap.Logger
}

func NewResolver(roster Roster, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{roster: roster, log: logger}
}

// Resolve runs a clipped attack trail against every actor it targeted.
// Effects from all targets are gathered first, then run from highest
// priority to lowest; equal priorities run in the order they were queued.
func (r *Resolver) Resolve(attacker *Actor, attack *AttackTrail) Resolution {
	var (
		res   Resolution
		queue []queued
	)
	points := attack.Path.Points()

	for _, tgt := range attack.Path.Targets() {
		target, ok := r.roster.Actor(tgt.Entity)
		if !ok {
			r.log.Warn("combat: target not in roster", zap.Int("entity", int(tgt.Entity)))
			continue
		}
		angle := trail.StrikeAngle(tgt.Point, target.Position)

		held := target.ActiveConcentrations()
		for _, c := range held {
			if !attack.Path.Intersects(c.Points(target)) {
				continue
			}
			r.log.Debug("combat: trail crossed concentration",
				zap.String("target", target.Name),
				zap.Int("attack_power", attack.Power),
				zap.Int("concentrate_power", c.Power))

			if attack.Power > c.Power {
				queue = appendConcentrate(queue, c.Terminations, &ConcentrateContext{
					Self: c, Owner: target, Attacker: attacker, Attack: attack, res: &res,
				})
				continue
			}
			queue = appendConcentrate(queue, c.Reactions, &ConcentrateContext{
				Self: c, Owner: target, Attacker: attacker, Attack: attack, res: &res,
			})
			for _, other := range held {
				if other == c {
					continue
				}
				queue = appendConcentrate(queue, other.Arbitrary, &ConcentrateContext{
					Self: other, Owner: target, Attacker: attacker, Attack: attack, res: &res,
				})
			}
		}

		ctx := &AttackContext{Attacker: attacker, Target: target, Trail: attack, Angle: angle, res: &res}
		for _, e := range attack.Effects {
			queue = append(queue, queued{priority: e.Priority(), name: effectName(e), run: func() { e.ApplyAttack(ctx) }})
		}
	}

	slices.SortStableFunc(queue, func(a, b queued) int {
		return cmp.Compare(b.priority, a.priority)
	})
	for _, q := range queue {
		r.log.Debug("combat: apply effect", zap.String("effect", q.name), zap.Int("priority", q.priority))
		q.run()
		res.Applied++
	}

	r.log.Info("combat: attack resolved",
		zap.String("attacker", attacker.Name),
		zap.Int("points", len(points)),
		zap.Int("effects", res.Applied),
		zap.Int("moves", len(res.Moves)))
	return res
}

func appendConcentrate(queue []queued, effects []ConcentrateEffect, ctx *ConcentrateContext) []queued {
	for _, e := range effects {
		queue = append(queue, queued{priority: e.Priority(), name: effectName(e), run: func() { e.ApplyConcentrate(ctx) }})
	}
	return queue
}

// PlayCard runs card effects on the actor playing the card.
func PlayCard(a *Actor, effects []CardEffect) {
	for _, e := range effects {
		e.ApplyCard(a)
	}
}

func effectName(e any) string {
	switch e.(type) {
	case Damage:
		return "damage"
	case Push:
		return "push"
	case Dodge:
		return "dodge"
	case Mend:
		return "mend"
	case Dispel:
		return "dispel"
	}
	return "custom"
}
