package battle

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/milk9111/trailtactics/cards"
	"github.com/milk9111/trailtactics/combat"
	"github.com/milk9111/trailtactics/prefabs"
	"github.com/milk9111/trailtactics/scene"
)

var (
	ErrNoOpponents = errors.New("battle: level needs a hero and an enemy")
	ErrEmptyDeck   = errors.New("battle: empty deck")
)

// Setup spawns the level's actors into a fresh scene and deals every
// non-obstacle a deck from lib. Seed makes the shuffles repeatable.
func Setup(level *prefabs.Level, lib *prefabs.Library, opts Options, seed uint64, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	events := &combat.EventQueue{}
	xf := level.Transform()
	actors := make(combat.Actors, 0, len(level.Spawns))
	hands := make(map[combat.ActorID]*cards.Manager)
	teams := make(map[combat.Team]bool)

	for i, sp := range level.Spawns {
		id := combat.ActorID(i + 1)
		a := combat.NewActor(id, sp.Name, sp.Kind, sp.Team, sp.Stats, xf.GridToWorld(sp.Cell), events)
		a.Facing = sp.Facing
		actors = append(actors, a)
		if a.IsObstacle() {
			continue
		}

		deck := sp.Deck
		if len(deck) == 0 {
			deck = lib.Deck()
		}
		if len(deck) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEmptyDeck, sp.Name)
		}
		for _, preset := range deck {
			if _, ok := lib.Spec(preset); !ok {
				return nil, fmt.Errorf("battle: %s deck: %w: %d", sp.Name, prefabs.ErrUnknownPreset, preset)
			}
		}
		rng := rand.New(rand.NewPCG(seed, uint64(id)))
		hands[id] = cards.NewManager(a, lib, deck, rng, logger.Named("cards").With(zap.String("actor", sp.Name)))
		teams[a.Team] = true
	}
	if !teams[combat.Heroes] || !teams[combat.Enemies] {
		return nil, fmt.Errorf("%w: %s", ErrNoOpponents, level.Name)
	}

	space := scene.New(level, logger.Named("scene"))
	logger.Info("battle: setup",
		zap.String("level", level.Name),
		zap.Int("actors", len(actors)),
		zap.Int("hands", len(hands)))
	return New(space, actors, hands, events, opts, logger.Named("battle")), nil
}
