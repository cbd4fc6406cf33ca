package cards

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/jakecoffman/cp"
	"go.uber.org/zap"

	"github.com/milk9111/trailtactics/combat"
	"github.com/milk9111/trailtactics/trail"
)

var (
	ErrNotAttackable    = errors.New("cards: card cannot attack now")
	ErrNotConcentrable  = errors.New("cards: card cannot concentrate now")
	ErrNotConcentrating = errors.New("cards: card is not concentrated")
	ErrAimCount         = errors.New("cards: aim count does not match trail count")
)

// Factory builds a fresh card for a preset ID.
type Factory interface {
	NewCard(presetID int) (*Card, error)
}

// Manager owns one actor's cards: the deck to draw from, the recycle pile,
// the hand and the concentrated cards in it.
type Manager struct {
	owner   *combat.Actor
	factory Factory
	rng     *rand.Rand
	log     *zap.Logger

	deck         []int
	recycle      []int
	hand         []*Card
	concentrated []*Card
}

// NewManager shuffles presets into a deck for owner and attaches itself as
// owner's hand.
func NewManager(owner *combat.Actor, factory Factory, presets []int, rng *rand.Rand, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(1, 2))
	}
	m := &Manager{
		owner:   owner,
		factory: factory,
		rng:     rng,
		log:     logger.With(zap.String("actor", owner.Name)),
		deck:    slices.Clone(presets),
	}
	m.Shuffle()
	owner.Hand = m
	return m
}

// Shuffle moves the recycle pile back into the deck and shuffles it.
func (m *Manager) Shuffle() {
	m.deck = append(m.deck, m.recycle...)
	m.recycle = m.recycle[:0]
	m.rng.Shuffle(len(m.deck), func(i, j int) {
		m.deck[i], m.deck[j] = m.deck[j], m.deck[i]
	})
}

// Draw moves up to n cards from the deck into the hand, reshuffling first
// if the deck is short.
func (m *Manager) Draw(n int) {
	if n <= 0 {
		return
	}
	if len(m.deck) < n {
		m.Shuffle()
	}
	for i := 0; i < n && len(m.deck) > 0; i++ {
		id := m.deck[0]
		m.deck = m.deck[1:]
		card, err := m.factory.NewCard(id)
		if err != nil {
			m.log.Error("cards: build card", zap.Int("preset", id), zap.Error(err))
			continue
		}
		m.hand = append(m.hand, card)
	}
}

// Delete removes a hand card to the recycle pile without its discard
// effects.
func (m *Manager) Delete(i int) {
	if !m.valid(i) {
		return
	}
	card := m.hand[i]
	m.hand = slices.Delete(m.hand, i, i+1)
	m.recycle = append(m.recycle, card.PresetID)
	card.clearTrails()
}

// Discard runs a hand card's discard effects and recycles it.
func (m *Manager) Discard(i int) {
	if !m.valid(i) {
		m.log.Warn("cards: discard out of range", zap.Int("index", i), zap.Int("hand", len(m.hand)))
		return
	}
	card := m.hand[i]
	card.Discard(m.owner)
	m.concentrated = slices.DeleteFunc(m.concentrated, func(c *Card) bool { return c == card })
	m.Delete(slices.Index(m.hand, card))
}

// Attackable returns the number of aims the card at i needs, or -1 when it
// cannot attack now.
func (m *Manager) Attackable(i int) int {
	if !m.valid(i) {
		return -1
	}
	card := m.hand[i]
	switch {
	case card.Attack == nil:
		return -1
	case card.Concentrate != nil && card.Concentrate.Count < card.Concentrate.Threshold:
		return -1
	case slices.Contains(m.concentrated, card):
		return -1
	case m.owner.ActionPoints < card.Attack.Cost:
		return -1
	}
	return len(card.Attack.Trails)
}

// Attack plays the card at i with one aim point per trail: the card leaves
// the hand, its card effects run on the owner, then each trail is clipped
// against the scene and resolved.
func (m *Manager) Attack(i int, aims []cp.Vector, scene trail.SceneQuery, resolver *combat.Resolver) ([]combat.MoveDirective, error) {
	n := m.Attackable(i)
	if n < 0 {
		return nil, fmt.Errorf("%w: index %d", ErrNotAttackable, i)
	}
	if len(aims) != n {
		return nil, fmt.Errorf("%w: %d aims for %d trails", ErrAimCount, len(aims), n)
	}
	card := m.hand[i]
	m.Delete(i)

	combat.PlayCard(m.owner, card.Attack.Effects)
	var moves []combat.MoveDirective
	for k, t := range card.Attack.Trails {
		t.Path.Clip(scene, m.owner.ID, m.owner.Position, aims[k])
		res := resolver.Resolve(m.owner, t)
		moves = append(moves, res.Moves...)
	}
	m.owner.ActionPoints -= card.Attack.Cost
	m.log.Info("cards: attack played", zap.String("card", card.Name), zap.Int("trails", n))
	return moves, nil
}

// Concentratable returns 1 when the card at i can start concentrating, 0
// when it is concentrating and can be released, and -1 otherwise.
func (m *Manager) Concentratable(i int) int {
	if !m.valid(i) || !m.owner.AllowConcentrate() {
		return -1
	}
	card := m.hand[i]
	switch {
	case card.Concentrate == nil:
		return -1
	case slices.Contains(m.concentrated, card):
		return 0
	case len(m.concentrated) >= m.owner.Stats.MaxConcentratePoints:
		return -1
	}
	return 1
}

// Concentrate holds the card at i with its arc turned toward goal. The
// card's concentrate effects run the first time only.
func (m *Manager) Concentrate(i int, goal cp.Vector) error {
	if m.Concentratable(i) != 1 {
		return fmt.Errorf("%w: index %d", ErrNotConcentrable, i)
	}
	card := m.hand[i]
	m.concentrated = append(m.concentrated, card)
	if c := card.Concentrate; !c.triggered {
		c.triggered = true
		combat.PlayCard(m.owner, c.Effects)
	}
	card.Concentrate.Trail.Arc.SelectToward(m.owner.Position, m.owner.Facing, goal)
	m.log.Info("cards: concentrating", zap.String("card", card.Name))
	return nil
}

// Release stops concentrating on the card at i.
func (m *Manager) Release(i int) error {
	if !m.valid(i) || !slices.Contains(m.concentrated, m.hand[i]) {
		return fmt.Errorf("%w: index %d", ErrNotConcentrating, i)
	}
	card := m.hand[i]
	m.concentrated = slices.DeleteFunc(m.concentrated, func(c *Card) bool { return c == card })
	return nil
}

// RoundStart keeps the concentrated cards whose trails still exist, counts
// another round on each and recycles the rest. Trails marked for delayed
// deletion are discarded here.
func (m *Manager) RoundStart() {
	held, kept := m.hand, m.concentrated
	m.hand, m.concentrated = nil, nil
	for _, card := range held {
		if !slices.Contains(kept, card) {
			card.clearTrails()
			m.recycle = append(m.recycle, card.PresetID)
		}
	}
	for _, card := range kept {
		t := card.Concentrate.Trail
		if t.DelayedDeletion {
			card.Discard(m.owner)
			t.Exists = false
		}
		if !t.Exists {
			m.recycle = append(m.recycle, card.PresetID)
			continue
		}
		card.Concentrate.Count++
		m.hand = append(m.hand, card)
		m.concentrated = append(m.concentrated, card)
	}
}

// RoundEnd discards every hand card that is not concentrated.
func (m *Manager) RoundEnd() {
	held := m.hand
	m.hand = nil
	for _, card := range held {
		if slices.Contains(m.concentrated, card) {
			m.hand = append(m.hand, card)
			continue
		}
		card.Discard(m.owner)
		card.clearTrails()
		m.recycle = append(m.recycle, card.PresetID)
	}
}

// ActiveConcentrations implements combat.Hand.
func (m *Manager) ActiveConcentrations() []*combat.ConcentrateTrail {
	out := make([]*combat.ConcentrateTrail, 0, len(m.concentrated))
	for _, c := range m.concentrated {
		out = append(out, c.Concentrate.Trail)
	}
	return out
}

// ClearConcentration implements combat.Hand.
func (m *Manager) ClearConcentration() {
	m.concentrated = m.concentrated[:0]
}

func (m *Manager) Hand() []*Card { return slices.Clone(m.hand) }

func (m *Manager) Card(i int) (*Card, bool) {
	if !m.valid(i) {
		return nil, false
	}
	return m.hand[i], true
}

func (m *Manager) IsConcentrating(i int) bool {
	return m.valid(i) && slices.Contains(m.concentrated, m.hand[i])
}

func (m *Manager) DeckSize() int { return len(m.deck) }

func (m *Manager) RecycleSize() int { return len(m.recycle) }

func (m *Manager) valid(i int) bool { return i >= 0 && i < len(m.hand) }
