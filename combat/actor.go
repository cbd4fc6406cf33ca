// Package combat holds the actors of a battle and resolves what happens when
// an attack trail reaches them.
package combat

import (
	"github.com/jakecoffman/cp"

	"github.com/milk9111/trailtactics/common"
	"github.com/milk9111/trailtactics/trail"
)

type ActorID = trail.EntityID

type ActorKind int

const (
	KindPlayer ActorKind = iota
	KindObstacle
)

type Team int

const (
	Heroes Team = iota
	Enemies
	Neutral
)

// Stats are an actor's fixed attributes.
type Stats struct {
	MaxHP                float64 `yaml:"max_hp"`
	MaxBodyHP            float64 `yaml:"max_body_hp"`
	MaxCards             int     `yaml:"max_cards"`
	MaxActionPoints      int     `yaml:"max_action_points"`
	MaxMovePoints        int     `yaml:"max_move_points"`
	MaxConcentratePoints int     `yaml:"max_concentrate_points"`
	BaseAttack           float64 `yaml:"base_attack"`
	BaseDefense          float64 `yaml:"base_defense"`
}

func DefaultStats() Stats {
	return Stats{
		MaxHP:                10,
		MaxBodyHP:            6,
		MaxCards:             4,
		MaxActionPoints:      2,
		MaxMovePoints:        15,
		MaxConcentratePoints: 2,
		BaseAttack:           1,
	}
}

// Hand is the card state an actor draws its concentrate trails from.
type Hand interface {
	// ActiveConcentrations lists the concentrate trails currently held.
	ActiveConcentrations() []*ConcentrateTrail
	Draw(n int)
	Discard(index int)
	// ClearConcentration drops every held concentration.
	ClearConcentration()
}

type Actor struct {
	ID    ActorID
	Name  string
	Kind  ActorKind
	Team  Team
	Stats Stats

	Position cp.Vector
	// Facing is 1 for +X and -1 for -X.
	Facing float64

	Body  *BodyHitPoints
	Buffs []Buff
	Alive bool
	// Dodge voids the next damage taken, then clears.
	Dodge bool

	ActionPoints int
	MovePoints   int

	Hand Hand

	hp     float64
	events *EventQueue
}

func NewActor(id ActorID, name string, kind ActorKind, team Team, stats Stats, pos cp.Vector, events *EventQueue) *Actor {
	return &Actor{
		ID:           id,
		Name:         name,
		Kind:         kind,
		Team:         team,
		Stats:        stats,
		Position:     pos,
		Facing:       1,
		Body:         NewBodyHitPoints(stats.MaxBodyHP),
		Alive:        true,
		ActionPoints: stats.MaxActionPoints,
		MovePoints:   stats.MaxMovePoints,
		hp:           stats.MaxHP,
		events:       events,
	}
}

func (a *Actor) HP() float64 { return a.hp }

func (a *Actor) IsObstacle() bool { return a.Kind == KindObstacle }

// SetHP clamps v to [0, MaxHP]. Reaching 0 kills the actor.
func (a *Actor) SetHP(v float64) {
	v = max(0, min(v, a.Stats.MaxHP))
	if v != a.hp {
		a.events.Push(Event{Kind: EventHealthChanged, Actor: a.ID, Old: a.hp, New: v})
	}
	a.hp = v
	if v <= 0 && a.Alive {
		a.Alive = false
		a.events.Push(Event{Kind: EventDeath, Actor: a.ID})
	}
}

func (a *Actor) Damage(amount float64) { a.SetHP(a.hp - amount) }

func (a *Actor) Heal(amount float64) { a.SetHP(a.hp + amount) }

// MoveTo places the actor and turns it toward the direction moved.
func (a *Actor) MoveTo(p cp.Vector) {
	if p == a.Position {
		return
	}
	old := a.Position
	a.Position = p
	if s := common.Sign(p.X - old.X); s != 0 {
		a.Facing = s
	}
	a.events.Push(Event{Kind: EventMoved, Actor: a.ID, From: old, To: p})
}

// Face turns the actor toward dx; zero leaves it unchanged.
func (a *Actor) Face(dx float64) {
	if s := common.Sign(dx); s != 0 {
		a.Facing = s
	}
}

// DamageRegion takes amount from the body region struck from angle. A
// region that breaks is restored and the actor gets that region's penalty.
func (a *Actor) DamageRegion(angle, amount float64) {
	region := RegionFor(angle)
	if !a.Body.Take(region, amount) {
		return
	}
	a.events.Push(Event{Kind: EventRegionBroken, Actor: a.ID, Note: region.String(), New: a.Body.HP(region)})
	a.AddBuff(NewBuff(region.Penalty(), 1, 0))
}

func (a *Actor) AddBuff(b Buff) {
	if b.Kind == UnableConcentrate && a.Hand != nil {
		a.Hand.ClearConcentration()
	}
	a.Buffs = append(a.Buffs, b)
	a.events.Push(Event{Kind: EventBuffAdded, Actor: a.ID, Note: b.String()})
}

// TickBuffs applies and counts down every buff with the given timing, then
// drops the expired ones.
func (a *Actor) TickBuffs(at Timing) {
	kept := a.Buffs[:0]
	for _, b := range a.Buffs {
		if b.Timing == at {
			if b.Kind == DamageOverTime {
				a.Damage(b.Amount)
			}
			b.Duration--
		}
		if b.Duration > 0 {
			kept = append(kept, b)
		}
	}
	clear(a.Buffs[len(kept):])
	a.Buffs = kept
}

// BeginRound ticks round-start buffs and refills points. It reports false
// when a buff cost the actor this round.
func (a *Actor) BeginRound() bool {
	allowed := a.AllowAction()
	a.TickBuffs(AtRoundStart)
	if !allowed {
		return false
	}
	a.ActionPoints = a.Stats.MaxActionPoints
	a.MovePoints = a.Stats.MaxMovePoints
	return true
}

func (a *Actor) EndRound() {
	a.TickBuffs(AtRoundEnd)
}

func (a *Actor) Attack() float64 {
	atk := a.Stats.BaseAttack
	for _, b := range a.Buffs {
		atk = b.attack(atk)
	}
	return atk
}

func (a *Actor) Defense() float64 {
	def := a.Stats.BaseDefense
	for _, b := range a.Buffs {
		def = b.defense(def)
	}
	return def
}

func (a *Actor) AllowAction() bool {
	for _, b := range a.Buffs {
		if !b.allowAction() {
			return false
		}
	}
	return true
}

func (a *Actor) AllowMove() bool {
	for _, b := range a.Buffs {
		if !b.allowMove() {
			return false
		}
	}
	return true
}

func (a *Actor) AllowConcentrate() bool {
	for _, b := range a.Buffs {
		if !b.allowConcentrate() {
			return false
		}
	}
	return true
}

// ActiveConcentrations returns the actor's held concentrate trails that
// still exist.
func (a *Actor) ActiveConcentrations() []*ConcentrateTrail {
	if a.Hand == nil {
		return nil
	}
	var out []*ConcentrateTrail
	for _, c := range a.Hand.ActiveConcentrations() {
		if c != nil && c.Exists {
			out = append(out, c)
		}
	}
	return out
}

// Actors is a Roster over a slice.
type Actors []*Actor

func (as Actors) Actor(id ActorID) (*Actor, bool) {
	for _, a := range as {
		if a.ID == id {
			return a, true
		}
	}
	return nil, false
}
