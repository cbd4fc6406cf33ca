package cards

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/jakecoffman/cp"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/milk9111/trailtactics/combat"
	"github.com/milk9111/trailtactics/trail"
)

const (
	presetStrike = iota + 1
	presetGuard
	presetCharged
)

type testFactory struct{}

func (testFactory) NewCard(id int) (*Card, error) {
	c := New(id, fmt.Sprintf("preset-%d", id))
	switch id {
	case presetStrike:
		c.Attack = &Attack{
			Cost: 1,
			Trails: []*combat.AttackTrail{{
				Power:   1,
				Path:    trail.NewPath(trail.Line(2)),
				Effects: []combat.AttackEffect{combat.Damage{Power: 3}},
			}},
			Effects: []combat.CardEffect{combat.Heal{Amount: 1}},
		}
	case presetGuard, presetCharged:
		arc, err := trail.NewArc(1, []trail.Range{{Start: -30, End: 30}, {Start: 150, End: 210}})
		if err != nil {
			return nil, err
		}
		c.Concentrate = &Concentrate{
			Trail: &combat.ConcentrateTrail{Power: 2, Arc: arc, Exists: true},
		}
		if id == presetCharged {
			c.Concentrate.Threshold = 1
			c.Attack = &Attack{
				Cost:   1,
				Trails: []*combat.AttackTrail{{Power: 2, Path: trail.NewPath(trail.Line(2))}},
			}
		}
	default:
		return nil, fmt.Errorf("unknown preset %d", id)
	}
	return c, nil
}

type emptyScene struct{}

func (emptyScene) FirstHit(_, _ cp.Vector, _ trail.Filter) (trail.Hit, bool) {
	return trail.Hit{}, false
}

func newOwner(t *testing.T, presets ...int) (*combat.Actor, *Manager) {
	t.Helper()
	owner := combat.NewActor(1, "owner", combat.KindPlayer, combat.Heroes, combat.DefaultStats(), cp.Vector{}, &combat.EventQueue{})
	m := NewManager(owner, testFactory{}, presets, rand.New(rand.NewPCG(7, 7)), zaptest.NewLogger(t))
	return owner, m
}

// indexOf finds the first hand card built from preset.
func indexOf(t *testing.T, m *Manager, preset int) int {
	t.Helper()
	for i, c := range m.Hand() {
		if c.PresetID == preset {
			return i
		}
	}
	t.Fatalf("no card of preset %d in hand", preset)
	return -1
}

func TestDrawReshufflesRecycle(t *testing.T) {
	_, m := newOwner(t, presetStrike, presetStrike, presetGuard)
	m.Draw(3)
	if len(m.Hand()) != 3 || m.DeckSize() != 0 {
		t.Fatalf("expected 3 in hand and empty deck, got %d and %d", len(m.Hand()), m.DeckSize())
	}
	m.Delete(0)
	m.Delete(0)
	if m.RecycleSize() != 2 {
		t.Fatalf("expected 2 recycled, got %d", m.RecycleSize())
	}
	m.Draw(2)
	if len(m.Hand()) != 3 || m.RecycleSize() != 0 {
		t.Fatalf("expected recycle pile drawn back, hand %d recycle %d", len(m.Hand()), m.RecycleSize())
	}
}

func TestCopiesAreDistinctCards(t *testing.T) {
	_, m := newOwner(t, presetStrike, presetStrike)
	m.Draw(2)
	h := m.Hand()
	if h[0].ID == h[1].ID {
		t.Fatal("expected two copies of a preset to have different IDs")
	}
}

func TestAttackPlaysCard(t *testing.T) {
	owner, m := newOwner(t, presetStrike)
	owner.SetHP(5)
	m.Draw(1)

	if got := m.Attackable(0); got != 1 {
		t.Fatalf("expected 1 aim needed, got %d", got)
	}
	if _, err := m.Attack(0, nil, emptyScene{}, combat.NewResolver(combat.Actors{owner}, nil)); !errors.Is(err, ErrAimCount) {
		t.Fatalf("expected ErrAimCount, got %v", err)
	}
	if _, err := m.Attack(0, []cp.Vector{{X: 2}}, emptyScene{}, combat.NewResolver(combat.Actors{owner}, nil)); err != nil {
		t.Fatalf("attack: %v", err)
	}
	if len(m.Hand()) != 0 || m.RecycleSize() != 1 {
		t.Fatalf("expected card moved to recycle, hand %d recycle %d", len(m.Hand()), m.RecycleSize())
	}
	if owner.ActionPoints != 1 {
		t.Fatalf("expected 1 action point left, got %d", owner.ActionPoints)
	}
	if owner.HP() != 6 {
		t.Fatalf("expected self heal to 6, got %v", owner.HP())
	}
}

func TestAttackableNeedsActionPoints(t *testing.T) {
	owner, m := newOwner(t, presetStrike)
	m.Draw(1)
	owner.ActionPoints = 0
	if got := m.Attackable(0); got != -1 {
		t.Fatalf("expected -1 without action points, got %d", got)
	}
	if got := m.Attackable(5); got != -1 {
		t.Fatalf("expected -1 for a missing card, got %d", got)
	}
}

func TestConcentrateLifecycle(t *testing.T) {
	owner, m := newOwner(t, presetCharged)
	m.Draw(1)

	if got := m.Attackable(0); got != -1 {
		t.Fatalf("expected attack locked before threshold, got %d", got)
	}
	if got := m.Concentratable(0); got != 1 {
		t.Fatalf("expected concentratable, got %d", got)
	}
	if err := m.Concentrate(0, cp.Vector{X: -3}); err != nil {
		t.Fatalf("concentrate: %v", err)
	}
	if got := m.Hand()[0].Concentrate.Trail.Arc.Selected(); got != (trail.Range{Start: 150, End: 210}) {
		t.Fatalf("expected arc turned toward goal, got %+v", got)
	}
	if got := m.Concentratable(0); got != 0 {
		t.Fatalf("expected release available, got %d", got)
	}
	if len(owner.ActiveConcentrations()) != 1 {
		t.Fatal("expected one active concentration")
	}

	m.RoundEnd()
	m.RoundStart()
	if len(m.Hand()) != 1 || !m.IsConcentrating(0) {
		t.Fatal("expected concentrated card kept across rounds")
	}
	if got := m.Hand()[0].Concentrate.Count; got != 1 {
		t.Fatalf("expected count 1, got %d", got)
	}

	if err := m.Release(0); err != nil {
		t.Fatalf("release: %v", err)
	}
	if got := m.Attackable(0); got != 1 {
		t.Fatalf("expected attack unlocked after threshold and release, got %d", got)
	}
	if err := m.Release(0); !errors.Is(err, ErrNotConcentrating) {
		t.Fatalf("expected ErrNotConcentrating, got %v", err)
	}
}

func TestConcentrateLimit(t *testing.T) {
	_, m := newOwner(t, presetGuard, presetGuard, presetGuard)
	m.Draw(3)
	for i := range 2 {
		if err := m.Concentrate(i, cp.Vector{X: 1}); err != nil {
			t.Fatalf("concentrate %d: %v", i, err)
		}
	}
	if got := m.Concentratable(2); got != -1 {
		t.Fatalf("expected limit reached, got %d", got)
	}
	if err := m.Concentrate(2, cp.Vector{X: 1}); !errors.Is(err, ErrNotConcentrable) {
		t.Fatalf("expected ErrNotConcentrable, got %v", err)
	}
}

func TestUnableConcentrateClearsHeld(t *testing.T) {
	owner, m := newOwner(t, presetGuard)
	m.Draw(1)
	if err := m.Concentrate(0, cp.Vector{X: 1}); err != nil {
		t.Fatalf("concentrate: %v", err)
	}
	owner.AddBuff(combat.NewBuff(combat.UnableConcentrate, 1, 0))
	if m.IsConcentrating(0) {
		t.Fatal("expected concentration cleared")
	}
	if got := m.Concentratable(0); got != -1 {
		t.Fatalf("expected concentrate blocked, got %d", got)
	}
	m.RoundEnd()
	if len(m.Hand()) != 0 {
		t.Fatal("expected released card discarded at round end")
	}
}

func TestRoundStartRecyclesRemovedTrails(t *testing.T) {
	owner, m := newOwner(t, presetGuard, presetGuard)
	m.Draw(2)
	for i := range 2 {
		if err := m.Concentrate(i, cp.Vector{X: 1}); err != nil {
			t.Fatalf("concentrate: %v", err)
		}
	}
	h := m.Hand()
	h[0].Concentrate.Trail.Remove(owner)
	h[1].Concentrate.Trail.DelayedDeletion = true
	h[1].DiscardEffects = []combat.CardEffect{combat.Heal{Amount: 2}}
	owner.SetHP(1)

	m.RoundStart()
	if len(m.Hand()) != 0 || m.RecycleSize() != 2 {
		t.Fatalf("expected both cards recycled, hand %d recycle %d", len(m.Hand()), m.RecycleSize())
	}
	if owner.HP() != 3 {
		t.Fatalf("expected delayed discard effect to heal to 3, got %v", owner.HP())
	}
}

func TestDiscardRunsEffects(t *testing.T) {
	owner, m := newOwner(t, presetStrike, presetGuard)
	m.Draw(2)
	i := indexOf(t, m, presetGuard)
	card, _ := m.Card(i)
	card.DiscardEffects = []combat.CardEffect{combat.Draw{Count: 0}, combat.Heal{Amount: 1}}
	owner.SetHP(4)

	m.Discard(i)
	m.Discard(9)
	if len(m.Hand()) != 1 || owner.HP() != 5 {
		t.Fatalf("expected one card left and heal to 5, hand %d hp %v", len(m.Hand()), owner.HP())
	}
}

func TestCardsAreConserved(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		presets := rapid.SliceOfN(rapid.SampledFrom([]int{presetStrike, presetGuard, presetCharged}), 1, 12).Draw(rt, "presets")
		owner := combat.NewActor(1, "owner", combat.KindPlayer, combat.Heroes, combat.DefaultStats(), cp.Vector{}, &combat.EventQueue{})
		m := NewManager(owner, testFactory{}, presets, rand.New(rand.NewPCG(1, 1)), nil)
		resolver := combat.NewResolver(combat.Actors{owner}, nil)

		steps := rapid.SliceOf(rapid.IntRange(0, 5)).Draw(rt, "steps")
		for _, s := range steps {
			i := rapid.IntRange(0, 4).Draw(rt, "index")
			switch s {
			case 0:
				m.Draw(rapid.IntRange(0, 4).Draw(rt, "n"))
			case 1:
				m.Discard(i)
			case 2:
				if n := m.Attackable(i); n > 0 {
					aims := make([]cp.Vector, n)
					if _, err := m.Attack(i, aims, emptyScene{}, resolver); err != nil {
						rt.Fatalf("attack: %v", err)
					}
				}
			case 3:
				if m.Concentratable(i) == 1 {
					_ = m.Concentrate(i, cp.Vector{X: 1})
				}
			case 4:
				m.RoundEnd()
			case 5:
				m.RoundStart()
			}
			if got := m.DeckSize() + m.RecycleSize() + len(m.Hand()); got != len(presets) {
				rt.Fatalf("expected %d cards in total, got %d", len(presets), got)
			}
			if len(owner.ActiveConcentrations()) > owner.Stats.MaxConcentratePoints {
				rt.Fatalf("holding %d concentrations", len(owner.ActiveConcentrations()))
			}
		}
	})
}
