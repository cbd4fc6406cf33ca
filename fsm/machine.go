// Package fsm is a small generic state machine. Each machine is owned by a
// context value that its states read and mutate while they run.
package fsm

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// maxTransitionDepth bounds transitions started from inside Enter hooks.
const maxTransitionDepth = 32

var (
	ErrDuplicateState = errors.New("fsm: duplicate state")
	ErrNilState       = errors.New("fsm: nil state")
)

type StateID string

// State is one node of a Machine. Payloads are whatever the caller of
// TransitionTo passed; states type-assert what they expect.
type State[C any] interface {
	ID() StateID
	Enter(m *Machine[C], payload any)
	Exit(m *Machine[C], payload any)
	Update(m *Machine[C])
}

// Base gives embedders an ID and no-op hooks.
type Base[C any] struct {
	Name StateID
}

func (b Base[C]) ID() StateID { return b.Name }

func (Base[C]) Enter(*Machine[C], any) {}

func (Base[C]) Exit(*Machine[C], any) {}

func (Base[C]) Update(*Machine[C]) {}

type Machine[C any] struct {
	owner    C
	log      *zap.Logger
	states   map[StateID]State[C]
	current  State[C]
	previous State[C]
	depth    int
	fallback func(StateID) State[C]
}

// New creates a machine that is not running until the first TransitionTo.
func New[C any](owner C, logger *zap.Logger) *Machine[C] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Machine[C]{
		owner:  owner,
		log:    logger,
		states: make(map[StateID]State[C]),
		fallback: func(id StateID) State[C] {
			return Base[C]{Name: id}
		},
	}
}

// SetDefault replaces the factory used for unregistered state IDs.
func (m *Machine[C]) SetDefault(f func(StateID) State[C]) {
	if f != nil {
		m.fallback = f
	}
}

func (m *Machine[C]) Register(states ...State[C]) error {
	for _, s := range states {
		if s == nil {
			return ErrNilState
		}
		id := s.ID()
		if _, ok := m.states[id]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateState, id)
		}
		m.states[id] = s
	}
	return nil
}

// MustRegister is Register for setup code; it panics on error.
func (m *Machine[C]) MustRegister(states ...State[C]) {
	if err := m.Register(states...); err != nil {
		panic(err)
	}
}

// TransitionTo runs the current state's Exit with exit, makes id current and
// runs its Enter with enter. Transitions may be started from inside hooks.
func (m *Machine[C]) TransitionTo(id StateID, enter, exit any) {
	target, ok := m.states[id]
	if !ok {
		m.log.Warn("fsm: transition to unregistered state, using default", zap.String("state", string(id)))
		target = m.fallback(id)
		m.states[id] = target
	}

	if m.depth >= maxTransitionDepth {
		m.log.Error("fsm: transition depth exceeded, halting",
			zap.String("state", string(id)),
			zap.Int("depth", m.depth))
		m.previous = m.current
		m.current = nil
		return
	}
	m.depth++
	defer func() { m.depth-- }()

	if m.current != nil {
		m.current.Exit(m, exit)
	}
	m.previous = m.current
	m.current = target
	m.log.Debug("fsm: enter", zap.String("state", string(id)))
	target.Enter(m, enter)
}

// ExitToNone exits the current state and leaves the machine inert.
func (m *Machine[C]) ExitToNone(exit any) {
	if m.current == nil {
		return
	}
	m.current.Exit(m, exit)
	m.previous = m.current
	m.current = nil
}

func (m *Machine[C]) Update() {
	if m.current == nil {
		return
	}
	m.current.Update(m)
}

func (m *Machine[C]) IsRunning() bool { return m.current != nil }

func (m *Machine[C]) Owner() C { return m.owner }

// Current returns the active state ID, or "" when not running.
func (m *Machine[C]) Current() StateID {
	if m.current == nil {
		return ""
	}
	return m.current.ID()
}

func (m *Machine[C]) Previous() StateID {
	if m.previous == nil {
		return ""
	}
	return m.previous.ID()
}

// Is reports whether id is the active state.
func (m *Machine[C]) Is(id StateID) bool {
	return m.current != nil && m.current.ID() == id
}
