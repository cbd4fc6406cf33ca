package prefabs

import (
	"errors"
	"fmt"

	"github.com/jakecoffman/cp"
	"gopkg.in/yaml.v3"

	"github.com/milk9111/trailtactics/combat"
	"github.com/milk9111/trailtactics/trail"
)

var (
	ErrUnknownEffect = errors.New("prefabs: unknown effect kind")
	ErrNoWaypoints   = errors.New("prefabs: trail needs line or script waypoints")
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}
	return DecodeSpec[T](filename, data)
}

func DecodeSpec[T any](filename string, data []byte) (T, error) {
	var zero T
	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}
	return spec, nil
}

// CardSpec is one card preset as written in cards/*.yaml.
type CardSpec struct {
	ID          int              `yaml:"id"`
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	Copies      int              `yaml:"copies"`
	Attack      *AttackSpec      `yaml:"attack"`
	Concentrate *ConcentrateSpec `yaml:"concentrate"`
	Discard     []EffectSpec     `yaml:"discard"`
}

type AttackSpec struct {
	Cost    int          `yaml:"cost"`
	Effects []EffectSpec `yaml:"effects"`
	Trails  []TrailSpec  `yaml:"trails"`
}

type TrailSpec struct {
	Power     int           `yaml:"power"`
	Waypoints WaypointsSpec `yaml:"waypoints"`
	Effects   []EffectSpec  `yaml:"effects"`
}

// WaypointsSpec is either a straight line of at most Line units, or a tengo
// script clamped to Max.
type WaypointsSpec struct {
	Line   float64 `yaml:"line"`
	Script string  `yaml:"script"`
	Max    float64 `yaml:"max"`
}

type ConcentrateSpec struct {
	Threshold    int           `yaml:"threshold"`
	Power        int           `yaml:"power"`
	Radius       float64       `yaml:"radius"`
	Ranges       []trail.Range `yaml:"ranges"`
	Hidden       bool          `yaml:"hidden"`
	Effects      []EffectSpec  `yaml:"effects"`
	Reactions    []EffectSpec  `yaml:"reactions"`
	Terminations []EffectSpec  `yaml:"terminations"`
	Arbitrary    []EffectSpec  `yaml:"arbitrary"`
}

// EffectSpec names an effect kind and carries the parameters of every kind;
// each kind reads the ones it needs.
type EffectSpec struct {
	Kind     string  `yaml:"kind"`
	Power    float64 `yaml:"power"`
	Amount   float64 `yaml:"amount"`
	Distance float64 `yaml:"distance"`
	Speed    float64 `yaml:"speed"`
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	Absolute bool    `yaml:"absolute"`
	Count    int     `yaml:"count"`
	Indices  []int   `yaml:"indices"`
}

var attackEffects = map[string]func(EffectSpec) combat.AttackEffect{
	"damage": func(s EffectSpec) combat.AttackEffect { return combat.Damage{Power: s.Power} },
	"push": func(s EffectSpec) combat.AttackEffect {
		return combat.Push{Distance: s.Distance, Goal: cp.Vector{X: s.X, Y: s.Y}, Absolute: s.Absolute, Speed: s.Speed}
	},
}

var concentrateEffects = map[string]func(EffectSpec) combat.ConcentrateEffect{
	"dodge":  func(EffectSpec) combat.ConcentrateEffect { return combat.Dodge{} },
	"mend":   func(s EffectSpec) combat.ConcentrateEffect { return combat.Mend{Amount: s.Amount} },
	"dispel": func(EffectSpec) combat.ConcentrateEffect { return combat.Dispel{} },
}

var cardEffects = map[string]func(EffectSpec) combat.CardEffect{
	"heal":    func(s EffectSpec) combat.CardEffect { return combat.Heal{Amount: s.Amount} },
	"draw":    func(s EffectSpec) combat.CardEffect { return combat.Draw{Count: s.Count} },
	"discard": func(s EffectSpec) combat.CardEffect { return combat.Discard{Indices: s.Indices} },
}

func buildEffects[E any](registry map[string]func(EffectSpec) E, specs []EffectSpec) ([]E, error) {
	out := make([]E, 0, len(specs))
	for _, s := range specs {
		mk, ok := registry[s.Kind]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownEffect, s.Kind)
		}
		out = append(out, mk(s))
	}
	return out, nil
}
