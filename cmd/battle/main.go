package main

import (
	"flag"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
	"golang.design/x/clipboard"

	"github.com/milk9111/trailtactics/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		newLogger(false).Fatal("config", zap.Error(err))
	}

	flag.StringVar(&cfg.Level, "level", cfg.Level, "level name in prefabs/levels (basename, .yaml optional)")
	flag.StringVar(&cfg.CardsDir, "cards", cfg.CardsDir, "directory of card presets to use instead of the embedded ones")
	flag.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "deck shuffle seed, 0 picks one")
	flag.BoolVar(&cfg.Debug, "debug", cfg.Debug, "enable debug logging")
	flag.BoolVar(&cfg.Watch, "watch", cfg.Watch, "reload content when files under prefabs/ change")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	flag.Parse()

	logger := newLogger(cfg.Debug)
	defer func() { _ = logger.Sync() }()

	clipboardOK := true
	if err := clipboard.Init(); err != nil {
		logger.Warn("clipboard unavailable", zap.Error(err))
		clipboardOK = false
	}

	game, err := NewGame(cfg, logger, clipboardOK)
	if err != nil {
		logger.Fatal("start battle", zap.Error(err))
	}
	defer game.Close()

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("trailtactics")
	ebiten.SetTPS(cfg.TickRate)

	if err := ebiten.RunGame(game); err != nil {
		logger.Fatal("run", zap.Error(err))
	}
}

func newLogger(debug bool) *zap.Logger {
	zcfg := zap.NewDevelopmentConfig()
	if !debug {
		zcfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, err := zcfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
