// Package battle drives a turn-based battle: whose turn it is, what the
// current actor is deciding, and the animations that play out between
// decisions.
package battle

import (
	"fmt"

	"github.com/jakecoffman/cp"
	"go.uber.org/zap"
	"gopkg.in/eapache/queue.v1"

	"github.com/milk9111/trailtactics/cards"
	"github.com/milk9111/trailtactics/combat"
	"github.com/milk9111/trailtactics/fsm"
	"github.com/milk9111/trailtactics/movement"
	"github.com/milk9111/trailtactics/trail"
)

// CardPick selects a hand card for its attack or, with Concentrate set, its
// concentrate trail.
type CardPick struct {
	Index       int
	Concentrate bool
}

// Intent is one tick of player input.
type Intent struct {
	// Cursor is the world-space aim point.
	Cursor cp.Vector
	// Primary confirms, Secondary cancels or undoes.
	Primary   bool
	Secondary bool
	Card      *CardPick
	// SelectSelf starts choosing a move for the current actor.
	SelectSelf bool
	EndTurn    bool
}

// Scene is the world a battle is fought in.
type Scene interface {
	trail.SceneQuery
	movement.Terrain
	Transform() movement.Transform
	Sync(actors combat.Actors)
}

type Options struct {
	Margin        int
	FreefallSpeed float64
	// StepFrames is how many ticks a walking actor spends per cell.
	StepFrames int
	TickRate   int
}

func DefaultOptions() Options {
	return Options{Margin: movement.DefaultMargin, FreefallSpeed: 3, StepFrames: 10, TickRate: 60}
}

const logLimit = 200

type Session struct {
	fsm      *fsm.Machine[*Session]
	scene    Scene
	actors   combat.Actors
	hands    map[combat.ActorID]*cards.Manager
	events   *combat.EventQueue
	resolver *combat.Resolver
	builder  *movement.Builder
	log      *zap.Logger
	opts     Options

	intent  Intent
	order   []*combat.Actor
	turn    int
	current *combat.Actor
	round   int
	effects *queue.Queue

	// what the viewer draws for the decision in progress
	preview   [][]cp.Vector
	reachable []movement.Coord
	lastHits  [][]cp.Vector

	winner  combat.Team
	over    bool
	history []string
}

// New creates a session over actors that share events. Actors with a hand
// in hands can take turns; the rest are obstacles.
func New(scene Scene, actors combat.Actors, hands map[combat.ActorID]*cards.Manager, events *combat.EventQueue, opts Options, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	def := DefaultOptions()
	if opts.StepFrames <= 0 {
		opts.StepFrames = def.StepFrames
	}
	if opts.TickRate <= 0 {
		opts.TickRate = def.TickRate
	}
	if opts.FreefallSpeed <= 0 {
		opts.FreefallSpeed = def.FreefallSpeed
	}

	s := &Session{
		scene:    scene,
		actors:   actors,
		hands:    hands,
		events:   events,
		resolver: combat.NewResolver(actors, logger.Named("combat")),
		builder:  movement.NewBuilder(scene, scene.Transform(), opts.Margin, logger.Named("movement")),
		log:      logger,
		opts:     opts,
		effects:  queue.New(),
	}
	for _, a := range actors {
		if _, ok := hands[a.ID]; ok && !a.IsObstacle() {
			s.order = append(s.order, a)
		}
	}
	s.turn = -1

	s.fsm = fsm.New(s, logger.Named("fsm"))
	s.fsm.MustRegister(
		&battleStart{Base: fsm.Base[*Session]{Name: StateBattleStart}},
		&roundStart{Base: fsm.Base[*Session]{Name: StateRoundStart}},
		&idle{Base: fsm.Base[*Session]{Name: StateIdle}},
		&specialEffect{Base: fsm.Base[*Session]{Name: StateSpecialEffect}},
		&pathDeciding{Base: fsm.Base[*Session]{Name: StatePathDeciding}},
		&moving{Base: fsm.Base[*Session]{Name: StateMoving}},
		&attackTrail{Base: fsm.Base[*Session]{Name: StateAttackTrail}},
		&concentrateTrail{Base: fsm.Base[*Session]{Name: StateConcentrateTrail}},
		&roundEnd{Base: fsm.Base[*Session]{Name: StateRoundEnd}},
		&battleEnd{Base: fsm.Base[*Session]{Name: StateBattleEnd}},
	)
	return s
}

// Start enters the opening state. The first Update begins round one.
func (s *Session) Start() {
	s.scene.Sync(s.actors)
	s.fsm.TransitionTo(StateBattleStart, nil, nil)
	s.collectEvents()
}

// Update runs one tick with the given input.
func (s *Session) Update(intent Intent) {
	s.intent = intent
	s.fsm.Update()
	s.collectEvents()
}

func (s *Session) State() fsm.StateID { return s.fsm.Current() }

// Current is the actor whose turn it is, nil before the first round.
func (s *Session) Current() *combat.Actor { return s.current }

func (s *Session) Actors() combat.Actors { return s.actors }

func (s *Session) Hand(id combat.ActorID) (*cards.Manager, bool) {
	m, ok := s.hands[id]
	return m, ok
}

func (s *Session) Round() int { return s.round }

// Preview is the path or trails being decided, in world space.
func (s *Session) Preview() [][]cp.Vector { return s.preview }

// Reachable lists the cells the current actor can move to while a move is
// being decided.
func (s *Session) Reachable() []movement.Coord { return s.reachable }

// LastHits holds the clipped trails of the last attack played.
func (s *Session) LastHits() [][]cp.Vector { return s.lastHits }

func (s *Session) Transform() movement.Transform { return s.builder.Transform() }

// Over reports whether the battle ended and which team is left standing.
func (s *Session) Over() (combat.Team, bool) { return s.winner, s.over }

// History is the battle log, oldest first.
func (s *Session) History() []string { return s.history }

func (s *Session) hand() *cards.Manager {
	if s.current == nil {
		return nil
	}
	return s.hands[s.current.ID]
}

func (s *Session) actorName(id combat.ActorID) string {
	if a, ok := s.actors.Actor(id); ok {
		return a.Name
	}
	return fmt.Sprintf("#%d", id)
}

func (s *Session) note(line string) {
	s.history = append(s.history, line)
	if n := len(s.history); n > logLimit {
		s.history = s.history[n-logLimit:]
	}
}

func (s *Session) collectEvents() {
	for _, e := range s.events.Drain() {
		name := s.actorName(e.Actor)
		switch e.Kind {
		case combat.EventHealthChanged:
			s.note(fmt.Sprintf("%s hp %g -> %g", name, e.Old, e.New))
		case combat.EventDeath:
			s.note(name + " is down")
		case combat.EventBuffAdded:
			s.note(fmt.Sprintf("%s gains %s", name, e.Note))
		case combat.EventRegionBroken:
			s.note(fmt.Sprintf("%s %s region broken", name, e.Note))
		case combat.EventDodged:
			s.note(name + " dodges")
		case combat.EventTrailRemoved:
			s.note(name + " loses a concentrate trail")
		case combat.EventMoved:
			continue
		}
		s.log.Debug("battle: event",
			zap.String("kind", string(e.Kind)),
			zap.String("actor", name),
			zap.Float64("old", e.Old),
			zap.Float64("new", e.New),
			zap.String("note", e.Note))
	}
}

// teamsAlive counts living non-obstacle actors per team.
func (s *Session) teamsAlive() map[combat.Team]int {
	alive := make(map[combat.Team]int)
	for _, a := range s.order {
		if a.Alive {
			alive[a.Team]++
		}
	}
	return alive
}

func (s *Session) battleOver() bool {
	alive := s.teamsAlive()
	return alive[combat.Heroes] == 0 || alive[combat.Enemies] == 0
}

// nextActor advances the turn order to the next living actor. A pass that
// wraps around starts a new round.
func (s *Session) nextActor() *combat.Actor {
	for range len(s.order) {
		s.turn = (s.turn + 1) % len(s.order)
		if a := s.order[s.turn]; a.Alive {
			return a
		}
	}
	return nil
}

// queueFreefall enqueues a drop for every living actor with nothing under
// it.
func (s *Session) queueFreefall() {
	var (
		positions []cp.Vector
		who       []*combat.Actor
	)
	for _, a := range s.actors {
		if a.Alive {
			positions = append(positions, a.Position)
			who = append(who, a)
		}
	}
	for _, d := range s.builder.Freefall(positions) {
		s.effects.Add(combat.MoveDirective{Actor: who[d.Index].ID, Goal: d.Goal, Speed: s.opts.FreefallSpeed})
	}
}

// occupied lists the cells of living actors other than the current one.
func (s *Session) occupied() []movement.Coord {
	xf := s.builder.Transform()
	var out []movement.Coord
	for _, a := range s.actors {
		if a.Alive && a != s.current {
			out = append(out, xf.WorldToGrid(a.Position))
		}
	}
	return out
}

func (s *Session) dt() float64 { return 1 / float64(s.opts.TickRate) }
