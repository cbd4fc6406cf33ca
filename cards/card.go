// Package cards keeps an actor's deck, hand and held concentrations.
package cards

import (
	"github.com/google/uuid"

	"github.com/milk9111/trailtactics/combat"
)

// Attack is the attack half of a card. Playing it needs one aim per trail.
type Attack struct {
	Cost    int
	Trails  []*combat.AttackTrail
	Effects []combat.CardEffect
}

// Concentrate is the concentrate half of a card.
type Concentrate struct {
	Trail *combat.ConcentrateTrail
	// Count is how many of its owner's rounds the card has been held.
	Count int
	// Threshold is how long it must be held before its attack can be used.
	Threshold int
	Effects   []combat.CardEffect

	triggered bool
}

// Card is one instance of a card preset. Two copies of a preset are
// different cards.
type Card struct {
	ID          uuid.UUID
	PresetID    int
	Name        string
	Description string

	Attack         *Attack
	Concentrate    *Concentrate
	DiscardEffects []combat.CardEffect
}

func New(presetID int, name string) *Card {
	return &Card{ID: uuid.New(), PresetID: presetID, Name: name}
}

// Discard runs the card's discard effects on owner.
func (c *Card) Discard(owner *combat.Actor) {
	combat.PlayCard(owner, c.DiscardEffects)
}

func (c *Card) clearTrails() {
	if c.Attack != nil {
		for _, t := range c.Attack.Trails {
			t.Path.Clear()
		}
	}
}
