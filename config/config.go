// Package config reads runtime settings from TRAILTACTICS_* environment
// variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Level is a level name under prefabs/levels.
	Level string `env:"LEVEL" envDefault:"arena"`
	// CardsDir replaces the embedded card presets when set.
	CardsDir string `env:"CARDS_DIR"`
	// Margin is how many cells past the level bounds movement considers.
	Margin int `env:"MARGIN" envDefault:"5"`
	// FreefallSpeed is how fast unsupported actors drop, in cells per second.
	FreefallSpeed float64 `env:"FREEFALL_SPEED" envDefault:"3"`
	// StepFrames is how many ticks a walking actor spends per cell.
	StepFrames int `env:"STEP_FRAMES" envDefault:"10"`
	TickRate   int `env:"TICK_RATE" envDefault:"60"`
	// Seed drives deck shuffles. Zero picks one from the clock.
	Seed       uint64 `env:"SEED"`
	CellPixels int    `env:"CELL_PIXELS" envDefault:"32"`
	Debug      bool   `env:"DEBUG"`
	// Watch reloads cards from disk when their files change.
	Watch bool `env:"WATCH"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "TRAILTACTICS_"}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
