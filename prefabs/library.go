package prefabs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"slices"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/milk9111/trailtactics/cards"
	"github.com/milk9111/trailtactics/combat"
	"github.com/milk9111/trailtactics/trail"
)

var (
	ErrUnknownPreset   = errors.New("prefabs: unknown card preset")
	ErrDuplicatePreset = errors.New("prefabs: duplicate card preset")
)

// loadWorkers bounds how many card files are parsed at once.
const loadWorkers = 4

// Library holds the card presets and builds fresh cards from them. It
// implements cards.Factory.
type Library struct {
	log *zap.Logger

	mu      sync.RWMutex
	specs   map[int]CardSpec
	scripts map[scriptKey]trail.WaypointFunc
}

type scriptKey struct {
	name string
	max  float64
}

func NewLibrary(logger *zap.Logger) *Library {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Library{
		log:     logger,
		specs:   make(map[int]CardSpec),
		scripts: make(map[scriptKey]trail.WaypointFunc),
	}
}

// LoadDefault loads the card presets embedded in the binary, or their
// on-disk overrides.
func (l *Library) LoadDefault(ctx context.Context) error {
	return l.LoadFS(ctx, overlayFS{}, "cards/*.yaml")
}

// LoadDir loads every card preset file in dir.
func (l *Library) LoadDir(ctx context.Context, dir string) error {
	return l.LoadFS(ctx, os.DirFS(dir), "*.yaml")
}

// LoadFS parses the files matching pattern concurrently, then validates and
// adds them in file order.
func (l *Library) LoadFS(ctx context.Context, fsys fs.FS, pattern string) error {
	names, err := fs.Glob(fsys, pattern)
	if err != nil {
		return fmt.Errorf("prefabs: glob %s: %w", pattern, err)
	}

	specs := make([]CardSpec, len(names))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(loadWorkers)
	for i, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := fs.ReadFile(fsys, name)
			if err != nil {
				return fmt.Errorf("prefabs: load %s: %w", name, err)
			}
			spec, err := DecodeSpec[CardSpec](name, data)
			if err != nil {
				return err
			}
			specs[i] = spec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, spec := range specs {
		if err := l.add(spec, false); err != nil {
			return err
		}
	}
	l.log.Info("prefabs: cards loaded", zap.Int("files", len(names)), zap.Int("presets", l.Len()))
	return nil
}

// Reload re-reads one card file from disk and replaces the preset it
// defined.
func (l *Library) Reload(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("prefabs: load %s: %w", path, err)
	}
	spec, err := DecodeSpec[CardSpec](path, data)
	if err != nil {
		return err
	}
	if err := l.add(spec, true); err != nil {
		return err
	}
	l.log.Info("prefabs: card reloaded", zap.String("file", path), zap.Int("preset", spec.ID))
	return nil
}

// Add validates spec by building it once and stores it.
func (l *Library) Add(spec CardSpec) error {
	return l.add(spec, false)
}

func (l *Library) add(spec CardSpec, replace bool) error {
	if _, err := l.build(spec); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.specs[spec.ID]; ok && !replace {
		return fmt.Errorf("%w: %d", ErrDuplicatePreset, spec.ID)
	}
	l.specs[spec.ID] = spec
	return nil
}

// NewCard builds a new card of the preset.
func (l *Library) NewCard(id int) (*cards.Card, error) {
	l.mu.RLock()
	spec, ok := l.specs[id]
	l.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPreset, id)
	}
	return l.build(spec)
}

func (l *Library) Spec(id int) (CardSpec, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s, ok := l.specs[id]
	return s, ok
}

// Presets lists the preset IDs in ascending order.
func (l *Library) Presets() []int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Sorted(maps.Keys(l.specs))
}

func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.specs)
}

// Deck lists every preset as many times as its copies, at least once.
func (l *Library) Deck() []int {
	var deck []int
	for _, id := range l.Presets() {
		spec, _ := l.Spec(id)
		for range max(1, spec.Copies) {
			deck = append(deck, id)
		}
	}
	return deck
}

func (l *Library) build(spec CardSpec) (*cards.Card, error) {
	wrap := func(err error) error { return fmt.Errorf("prefabs: card %d: %w", spec.ID, err) }

	c := cards.New(spec.ID, spec.Name)
	c.Description = spec.Description
	discard, err := buildEffects(cardEffects, spec.Discard)
	if err != nil {
		return nil, wrap(err)
	}
	c.DiscardEffects = discard

	if as := spec.Attack; as != nil {
		effects, err := buildEffects(cardEffects, as.Effects)
		if err != nil {
			return nil, wrap(err)
		}
		atk := &cards.Attack{Cost: as.Cost, Effects: effects}
		for _, ts := range as.Trails {
			w, err := l.waypoints(ts.Waypoints)
			if err != nil {
				return nil, wrap(err)
			}
			te, err := buildEffects(attackEffects, ts.Effects)
			if err != nil {
				return nil, wrap(err)
			}
			atk.Trails = append(atk.Trails, &combat.AttackTrail{Power: ts.Power, Path: trail.NewPath(w), Effects: te})
		}
		c.Attack = atk
	}

	if cs := spec.Concentrate; cs != nil {
		arc, err := trail.NewArc(cs.Radius, cs.Ranges)
		if err != nil {
			return nil, wrap(err)
		}
		effects, err := buildEffects(cardEffects, cs.Effects)
		if err != nil {
			return nil, wrap(err)
		}
		t := &combat.ConcentrateTrail{Power: cs.Power, Arc: arc, DiscardEffects: discard, Exists: true, Hidden: cs.Hidden}
		if t.Reactions, err = buildEffects(concentrateEffects, cs.Reactions); err != nil {
			return nil, wrap(err)
		}
		if t.Terminations, err = buildEffects(concentrateEffects, cs.Terminations); err != nil {
			return nil, wrap(err)
		}
		if t.Arbitrary, err = buildEffects(concentrateEffects, cs.Arbitrary); err != nil {
			return nil, wrap(err)
		}
		c.Concentrate = &cards.Concentrate{Trail: t, Threshold: cs.Threshold, Effects: effects}
	}
	return c, nil
}

func (l *Library) waypoints(s WaypointsSpec) (trail.WaypointFunc, error) {
	if s.Script == "" {
		if s.Line <= 0 {
			return nil, ErrNoWaypoints
		}
		return trail.Line(s.Line), nil
	}

	key := scriptKey{name: s.Script, max: s.Max}
	l.mu.RLock()
	w, ok := l.scripts[key]
	l.mu.RUnlock()
	if ok {
		return w, nil
	}

	src, err := LoadScript(s.Script)
	if err != nil {
		return nil, fmt.Errorf("prefabs: load script %s: %w", s.Script, err)
	}
	w, err = ScriptWaypoints(s.Script, src, s.Max, l.log)
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.scripts[key] = w
	l.mu.Unlock()
	return w, nil
}

// ForgetScripts drops compiled scripts so the next build recompiles them.
func (l *Library) ForgetScripts() {
	l.mu.Lock()
	defer l.mu.Unlock()
	clear(l.scripts)
}
