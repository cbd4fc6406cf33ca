package battle

import (
	"github.com/jakecoffman/cp"
	"go.uber.org/zap"

	"github.com/milk9111/trailtactics/cards"
	"github.com/milk9111/trailtactics/combat"
	"github.com/milk9111/trailtactics/fsm"
	"github.com/milk9111/trailtactics/movement"
	"github.com/milk9111/trailtactics/trail"
)

const (
	StateBattleStart      fsm.StateID = "battle_start"
	StateRoundStart       fsm.StateID = "round_start"
	StateIdle             fsm.StateID = "idle"
	StateSpecialEffect    fsm.StateID = "special_effect"
	StatePathDeciding     fsm.StateID = "path_deciding"
	StateMoving           fsm.StateID = "moving"
	StateAttackTrail      fsm.StateID = "attack_trail"
	StateConcentrateTrail fsm.StateID = "concentrate_trail"
	StateRoundEnd         fsm.StateID = "round_end"
	StateBattleEnd        fsm.StateID = "battle_end"
)

type machine = fsm.Machine[*Session]

type battleStart struct{ fsm.Base[*Session] }

func (battleStart) Update(m *machine) {
	m.TransitionTo(StateRoundStart, nil, nil)
}

// roundStart hands the turn to the next actor that can act. Actors whose
// buffs cost them the round are passed over; if nobody can act the state
// tries again on the next tick.
type roundStart struct{ fsm.Base[*Session] }

func (r *roundStart) Enter(m *machine, _ any) {
	r.begin(m)
}

func (r *roundStart) Update(m *machine) {
	r.begin(m)
}

func (roundStart) begin(m *machine) {
	s := m.Owner()
	if s.battleOver() {
		m.TransitionTo(StateBattleEnd, nil, nil)
		return
	}
	for range len(s.order) {
		prev := s.turn
		a := s.nextActor()
		if a == nil {
			break
		}
		if prev < 0 || s.turn <= prev {
			s.round++
		}
		s.current = a
		if !a.BeginRound() {
			s.note(a.Name + " loses the round")
			s.log.Info("battle: round skipped", zap.String("actor", a.Name))
			a.EndRound()
			continue
		}
		hand := s.hand()
		hand.RoundStart()
		hand.Draw(a.Stats.MaxCards - len(hand.Hand()))
		s.note(a.Name + "'s turn")
		s.log.Info("battle: round start",
			zap.String("actor", a.Name),
			zap.Int("round", s.round),
			zap.Int("hand", len(hand.Hand())))
		m.TransitionTo(StateIdle, nil, nil)
		return
	}
}

// idle waits for the current actor to pick what to do. Pending moves and
// drops play out first.
type idle struct {
	fsm.Base[*Session]
	pending *CardPick
}

func (i *idle) Enter(m *machine, payload any) {
	s := m.Owner()
	s.preview = nil
	s.reachable = nil
	i.pending, _ = payload.(*CardPick)

	if s.battleOver() {
		m.TransitionTo(StateBattleEnd, nil, nil)
		return
	}
	s.queueFreefall()
	if s.effects.Length() > 0 {
		m.TransitionTo(StateSpecialEffect, nil, nil)
	}
}

func (i *idle) Update(m *machine) {
	s := m.Owner()
	if s.current == nil || !s.current.Alive {
		m.TransitionTo(StateRoundEnd, nil, nil)
		return
	}

	pick := i.pending
	i.pending = nil
	if pick == nil {
		pick = s.intent.Card
	}
	switch {
	case pick != nil && pick.Concentrate:
		m.TransitionTo(StateConcentrateTrail, pick.Index, nil)
	case pick != nil:
		m.TransitionTo(StateAttackTrail, pick.Index, nil)
	case s.intent.EndTurn:
		m.TransitionTo(StateRoundEnd, nil, nil)
	case s.intent.SelectSelf && s.current.AllowMove() && s.current.MovePoints > 0:
		m.TransitionTo(StatePathDeciding, nil, nil)
	}
}

// specialEffect plays queued move directives one after another.
type specialEffect struct {
	fsm.Base[*Session]
	active *combat.MoveDirective
}

func (e *specialEffect) Enter(*machine, any) {
	e.active = nil
}

func (e *specialEffect) Update(m *machine) {
	s := m.Owner()
	if e.active == nil {
		if s.effects.Length() == 0 {
			m.TransitionTo(StateIdle, nil, nil)
			return
		}
		d := s.effects.Remove().(combat.MoveDirective)
		e.active = &d
	}

	a, ok := s.actors.Actor(e.active.Actor)
	if !ok || !a.Alive || e.active.Tick(a, s.dt()) {
		e.active = nil
	}
	s.scene.Sync(s.actors)
}

// pathDeciding shows where the current actor can go and follows the cursor
// with the nearest reachable cell.
type pathDeciding struct {
	fsm.Base[*Session]
	start  movement.Coord
	target movement.Coord
	steps  []movement.Step
}

func (p *pathDeciding) Enter(m *machine, _ any) {
	s := m.Owner()
	b := s.builder
	b.Refresh(s.occupied())
	p.start = b.Transform().WorldToGrid(s.current.Position)
	p.target = p.start
	p.steps = nil
	if err := b.Relax(p.start); err != nil {
		s.log.Warn("battle: no path from actor cell",
			zap.String("actor", s.current.Name),
			zap.Error(err))
		m.TransitionTo(StateIdle, nil, nil)
		return
	}
	s.reachable = b.Reachable(s.current.MovePoints)
}

func (p *pathDeciding) Exit(m *machine, _ any) {
	s := m.Owner()
	s.reachable = nil
	s.preview = nil
}

func (p *pathDeciding) Update(m *machine) {
	s := m.Owner()
	if s.intent.Secondary {
		m.TransitionTo(StateIdle, nil, nil)
		return
	}

	b := s.builder
	xf := b.Transform()
	if target, ok := b.Nearest(xf.WorldToGrid(s.intent.Cursor), s.current.MovePoints); ok && target != p.target {
		p.target = target
		p.steps = b.Path(target)
		line := []cp.Vector{xf.GridToWorld(p.start)}
		for _, st := range p.steps {
			line = append(line, xf.GridToWorld(st.Node))
		}
		s.preview = [][]cp.Vector{line}
	}

	if !s.intent.Primary {
		return
	}
	if p.target == p.start || len(p.steps) == 0 {
		m.TransitionTo(StateIdle, nil, nil)
		return
	}
	cost, _ := b.Dist(p.target)
	s.current.MovePoints -= cost
	s.log.Info("battle: moving",
		zap.String("actor", s.current.Name),
		zap.Int("cost", cost),
		zap.Int("left", s.current.MovePoints))
	m.TransitionTo(StateMoving, p.steps, nil)
}

// moving walks the current actor along a path, one cell every StepFrames
// ticks.
type moving struct {
	fsm.Base[*Session]
	steps []movement.Step
	frame int
}

func (mv *moving) Enter(_ *machine, payload any) {
	mv.steps, _ = payload.([]movement.Step)
	mv.frame = 0
}

func (mv *moving) Update(m *machine) {
	s := m.Owner()
	if len(mv.steps) == 0 {
		m.TransitionTo(StateIdle, nil, nil)
		return
	}
	mv.frame++
	if mv.frame < s.opts.StepFrames {
		return
	}
	mv.frame = 0

	next := s.builder.Transform().GridToWorld(mv.steps[0].Node)
	mv.steps = mv.steps[1:]
	s.current.Face(next.X - s.current.Position.X)
	s.current.MoveTo(next)
	s.scene.Sync(s.actors)
}

// attackTrail collects one aim per trail of the picked card, then plays it.
type attackTrail struct {
	fsm.Base[*Session]
	index int
	card  *cards.Card
	aims  []cp.Vector
	laid  [][]cp.Vector
}

func (a *attackTrail) Enter(m *machine, payload any) {
	s := m.Owner()
	a.index, _ = payload.(int)
	a.aims, a.laid = nil, nil

	hand := s.hand()
	n := hand.Attackable(a.index)
	if n < 0 {
		s.log.Debug("battle: card cannot attack", zap.Int("index", a.index))
		m.TransitionTo(StateIdle, nil, nil)
		return
	}
	a.card, _ = hand.Card(a.index)
	if n == 0 {
		a.play(m)
	}
}

func (a *attackTrail) Exit(m *machine, _ any) {
	m.Owner().preview = nil
	if a.card != nil && a.card.Attack != nil {
		for _, t := range a.card.Attack.Trails {
			t.Path.Clear()
		}
	}
	a.card = nil
}

func (a *attackTrail) Update(m *machine) {
	s := m.Owner()
	if pick := s.intent.Card; pick != nil {
		if !pick.Concentrate && pick.Index == a.index {
			m.TransitionTo(StateIdle, nil, nil)
		} else {
			next := *pick
			m.TransitionTo(StateIdle, &next, nil)
		}
		return
	}
	if s.intent.Secondary {
		if len(a.aims) == 0 {
			m.TransitionTo(StateIdle, nil, nil)
			return
		}
		a.aims = a.aims[:len(a.aims)-1]
		a.laid = a.laid[:len(a.laid)-1]
		return
	}

	self := s.current
	self.Face(s.intent.Cursor.X - self.Position.X)
	t := a.card.Attack.Trails[len(a.aims)]
	t.Path.Clip(s.scene, self.ID, self.Position, s.intent.Cursor)
	s.preview = append(append([][]cp.Vector(nil), a.laid...), t.Path.Points())

	if !s.intent.Primary {
		return
	}
	a.aims = append(a.aims, s.intent.Cursor)
	a.laid = append(a.laid, t.Path.Points())
	if len(a.aims) == len(a.card.Attack.Trails) {
		a.play(m)
	}
}

func (a *attackTrail) play(m *machine) {
	s := m.Owner()
	moves, err := s.hand().Attack(a.index, a.aims, s.scene, s.resolver)
	if err != nil {
		s.log.Warn("battle: attack rejected", zap.Error(err))
		m.TransitionTo(StateIdle, nil, nil)
		return
	}
	s.lastHits = nil
	for _, t := range a.card.Attack.Trails {
		s.lastHits = append(s.lastHits, t.Path.Points())
	}
	for _, d := range moves {
		s.effects.Add(d)
	}
	s.note(s.current.Name + " plays " + a.card.Name)
	s.scene.Sync(s.actors)
	m.TransitionTo(StateIdle, nil, nil)
}

// concentrateTrail turns the picked card's arc toward the cursor until it
// is placed. Picking a card already held releases it.
type concentrateTrail struct {
	fsm.Base[*Session]
	index int
	trail *combat.ConcentrateTrail
	prev  trail.Range
}

func (c *concentrateTrail) Enter(m *machine, payload any) {
	s := m.Owner()
	c.index, _ = payload.(int)
	c.trail = nil

	hand := s.hand()
	switch hand.Concentratable(c.index) {
	case 0:
		if err := hand.Release(c.index); err != nil {
			s.log.Warn("battle: release failed", zap.Error(err))
		} else if card, ok := hand.Card(c.index); ok {
			s.note(s.current.Name + " releases " + card.Name)
		}
		m.TransitionTo(StateIdle, nil, nil)
		return
	case -1:
		s.log.Debug("battle: card cannot concentrate", zap.Int("index", c.index))
		m.TransitionTo(StateIdle, nil, nil)
		return
	}
	card, _ := hand.Card(c.index)
	c.trail = card.Concentrate.Trail
	c.prev = c.trail.Arc.Selected()
}

func (c *concentrateTrail) Exit(m *machine, _ any) {
	m.Owner().preview = nil
}

func (c *concentrateTrail) Update(m *machine) {
	s := m.Owner()
	if pick := s.intent.Card; pick != nil {
		c.trail.Arc.SetRange(c.prev)
		if pick.Concentrate && pick.Index == c.index {
			m.TransitionTo(StateIdle, nil, nil)
		} else {
			next := *pick
			m.TransitionTo(StateIdle, &next, nil)
		}
		return
	}
	if s.intent.Secondary {
		c.trail.Arc.SetRange(c.prev)
		m.TransitionTo(StateIdle, nil, nil)
		return
	}

	self := s.current
	c.trail.Arc.SelectToward(self.Position, self.Facing, s.intent.Cursor)
	s.preview = [][]cp.Vector{c.trail.Points(self)}

	if !s.intent.Primary {
		return
	}
	hand := s.hand()
	if err := hand.Concentrate(c.index, s.intent.Cursor); err != nil {
		s.log.Warn("battle: concentrate rejected", zap.Error(err))
	} else if card, ok := hand.Card(c.index); ok {
		s.note(self.Name + " concentrates on " + card.Name)
	}
	m.TransitionTo(StateIdle, nil, nil)
}

type roundEnd struct{ fsm.Base[*Session] }

func (roundEnd) Enter(m *machine, _ any) {
	s := m.Owner()
	if a := s.current; a != nil {
		if a.Alive {
			a.EndRound()
			s.hand().RoundEnd()
		}
		s.log.Info("battle: round end", zap.String("actor", a.Name))
	}
	m.TransitionTo(StateRoundStart, nil, nil)
}

type battleEnd struct{ fsm.Base[*Session] }

func (battleEnd) Enter(m *machine, _ any) {
	s := m.Owner()
	alive := s.teamsAlive()
	s.over = true
	switch {
	case alive[combat.Heroes] > 0:
		s.winner = combat.Heroes
		s.note("heroes win")
	case alive[combat.Enemies] > 0:
		s.winner = combat.Enemies
		s.note("enemies win")
	default:
		s.winner = combat.Neutral
		s.note("nobody is left standing")
	}
	s.current = nil
	s.log.Info("battle: over", zap.Int("round", s.round), zap.Int("winner", int(s.winner)))
}
