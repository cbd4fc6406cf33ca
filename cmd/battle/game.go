package main

import (
	"context"
	"fmt"
	"image/color"
	"path/filepath"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"go.uber.org/zap"
	"golang.design/x/clipboard"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font/basicfont"

	"github.com/milk9111/trailtactics/battle"
	"github.com/milk9111/trailtactics/combat"
	"github.com/milk9111/trailtactics/config"
	"github.com/milk9111/trailtactics/movement"
	"github.com/milk9111/trailtactics/prefabs"
)

const (
	baseWidth  = 1280
	baseHeight = 720

	boardLeft   = 16
	boardBottom = 460
	logLines    = 12
)

var cardKeys = []ebiten.Key{
	ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4, ebiten.Key5,
	ebiten.Key6, ebiten.Key7, ebiten.Key8, ebiten.Key9,
}

type Game struct {
	cfg       config.Config
	log       *zap.Logger
	lib       *prefabs.Library
	level     *prefabs.Level
	session   *battle.Session
	watcher   *prefabs.Watcher
	face      ebtext.Face
	clipboard bool
	status    string
}

func NewGame(cfg config.Config, logger *zap.Logger, clipboardOK bool) (*Game, error) {
	g := &Game{
		cfg:       cfg,
		log:       logger,
		lib:       prefabs.NewLibrary(logger.Named("prefabs")),
		face:      ebtext.NewGoXFace(basicfont.Face7x13),
		clipboard: clipboardOK,
	}

	ctx := context.Background()
	var err error
	if cfg.CardsDir != "" {
		err = g.lib.LoadDir(ctx, cfg.CardsDir)
	} else {
		err = g.lib.LoadDefault(ctx)
	}
	if err != nil {
		return nil, err
	}
	if err := g.restart(); err != nil {
		return nil, err
	}

	if cfg.Watch {
		dirs := []string{
			filepath.Join(prefabs.Root, "cards"),
			filepath.Join(prefabs.Root, "levels"),
			filepath.Join(prefabs.Root, "scripts"),
		}
		if cfg.CardsDir != "" {
			dirs = append(dirs, cfg.CardsDir)
		}
		w, err := prefabs.NewWatcher(dirs...)
		if err != nil {
			logger.Warn("content watcher unavailable", zap.Error(err))
		} else {
			g.watcher = w
		}
	}
	return g, nil
}

func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
}

// restart loads the configured level and deals a new battle.
func (g *Game) restart() error {
	lvl, err := prefabs.LoadLevel(g.cfg.Level)
	if err != nil {
		return err
	}
	seed := g.cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	opts := battle.Options{
		Margin:        g.cfg.Margin,
		FreefallSpeed: g.cfg.FreefallSpeed,
		StepFrames:    g.cfg.StepFrames,
		TickRate:      g.cfg.TickRate,
	}
	s, err := battle.Setup(lvl, g.lib, opts, seed, g.log)
	if err != nil {
		return err
	}
	s.Start()
	g.level, g.session = lvl, s
	g.log.Info("battle started", zap.String("level", lvl.Name), zap.Uint64("seed", seed))
	return nil
}

func (g *Game) Update() error {
	g.pollWatcher()

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		if err := g.restart(); err != nil {
			g.log.Warn("restart failed", zap.Error(err))
			g.status = "restart failed: " + err.Error()
		}
		return nil
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		g.copyHistory()
	}

	g.session.Update(g.readIntent())
	return nil
}

func (g *Game) readIntent() battle.Intent {
	x, y := ebiten.CursorPosition()
	intent := battle.Intent{
		Cursor:     g.toWorld(float64(x), float64(y)),
		Primary:    inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft),
		Secondary:  inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) || inpututil.IsKeyJustPressed(ebiten.KeyEscape),
		SelectSelf: inpututil.IsKeyJustPressed(ebiten.KeySpace),
		EndTurn:    inpututil.IsKeyJustPressed(ebiten.KeyEnter),
	}
	shift := ebiten.IsKeyPressed(ebiten.KeyShift)
	for i, k := range cardKeys {
		if inpututil.IsKeyJustPressed(k) {
			intent.Card = &battle.CardPick{Index: i, Concentrate: shift}
			break
		}
	}
	return intent
}

func (g *Game) pollWatcher() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case ch, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			g.applyChange(ch)
		case err, ok := <-g.watcher.Errors:
			if ok {
				g.log.Warn("content watcher", zap.Error(err))
			}
		default:
			return
		}
	}
}

func (g *Game) applyChange(ch prefabs.Change) {
	g.log.Info("content changed", zap.String("path", ch.Path), zap.Stringer("kind", ch.Kind))
	switch ch.Kind {
	case prefabs.ChangeCard:
		if err := g.lib.Reload(ch.Path); err != nil {
			g.log.Warn("card reload failed", zap.Error(err))
			g.status = "card reload failed: " + err.Error()
			return
		}
		g.status = "reloaded " + filepath.Base(ch.Path)
	case prefabs.ChangeScript:
		g.lib.ForgetScripts()
		g.status = "scripts reloaded"
	case prefabs.ChangeLevel:
		name := strings.TrimSuffix(filepath.Base(ch.Path), filepath.Ext(ch.Path))
		if name != strings.TrimSuffix(filepath.Base(g.cfg.Level), ".yaml") {
			return
		}
		if err := g.restart(); err != nil {
			g.log.Warn("level reload failed", zap.Error(err))
			g.status = "level reload failed: " + err.Error()
			return
		}
		g.status = "level reloaded"
	}
}

func (g *Game) copyHistory() {
	if !g.clipboard {
		g.status = "clipboard unavailable"
		return
	}
	clipboard.Write(clipboard.FmtText, []byte(strings.Join(g.session.History(), "\n")))
	g.status = "battle log copied"
}

func (g *Game) cell() float64 { return float64(g.cfg.CellPixels) }

// toScreen maps a world point to pixels. Cell (0, 0) sits at the bottom
// left of the board and world y grows upward.
func (g *Game) toScreen(p cp.Vector) (float32, float32) {
	c, cs := g.cell(), g.level.CellSize
	return float32(boardLeft + (p.X/cs+0.5)*c), float32(boardBottom - (p.Y/cs+0.5)*c)
}

func (g *Game) toWorld(x, y float64) cp.Vector {
	c, cs := g.cell(), g.level.CellSize
	return cp.Vector{X: ((x-boardLeft)/c - 0.5) * cs, Y: ((boardBottom-y)/c - 0.5) * cs}
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Midnightblue)
	xf := g.session.Transform()

	g.drawTiles(screen, xf)
	for _, c := range g.session.Reachable() {
		g.fillCell(screen, xf.GridToWorld(c), 0.9, color.RGBA{R: 80, G: 200, B: 120, A: 70})
	}
	g.drawConcentrations(screen)
	for _, line := range g.session.LastHits() {
		g.strokePolyline(screen, line, 2, colornames.Orangered)
	}
	for _, line := range g.session.Preview() {
		g.strokePolyline(screen, line, 2, colornames.Yellow)
	}
	g.drawActors(screen)
	g.drawHUD(screen)
}

func (g *Game) drawTiles(screen *ebiten.Image, xf movement.Transform) {
	kinds := []struct {
		kind   movement.TileKind
		height float64
		clr    color.Color
	}{
		{movement.Ground, 1, colornames.Sienna},
		{movement.Platform, 0.25, colornames.Peru},
		{movement.Ladder, 1, colornames.Goldenrod},
	}
	c := float32(g.cell())
	for _, k := range kinds {
		for _, pos := range g.level.Cells(k.kind) {
			x, y := g.toScreen(xf.GridToWorld(pos))
			h := c * float32(k.height)
			if k.kind == movement.Ladder {
				vector.StrokeRect(screen, x-c/4, y-c/2, c/2, c, 2, k.clr, false)
				continue
			}
			vector.FillRect(screen, x-c/2, y-c/2, c, h, k.clr, false)
		}
	}
}

func (g *Game) drawConcentrations(screen *ebiten.Image) {
	cur := g.session.Current()
	for _, a := range g.session.Actors() {
		if !a.Alive {
			continue
		}
		for _, t := range a.ActiveConcentrations() {
			if t.Hidden && (cur == nil || cur.Team != a.Team) {
				continue
			}
			g.strokePolyline(screen, t.Points(a), 3, colornames.Skyblue)
		}
	}
}

func (g *Game) drawActors(screen *ebiten.Image) {
	cur := g.session.Current()
	for _, a := range g.session.Actors() {
		if !a.Alive {
			continue
		}
		g.fillCell(screen, a.Position, 0.8, teamColor(a.Team))
		x, y := g.toScreen(a.Position)
		half := float32(g.cell() * 0.4)
		if a == cur {
			vector.StrokeRect(screen, x-half, y-half, 2*half, 2*half, 2, colornames.White, false)
		}
		vector.StrokeLine(screen, x, y, x+float32(a.Facing)*half, y, 2, colornames.White, false)
		g.text(screen, fmt.Sprintf("%s %g", a.Name, a.HP()), float64(x-half), float64(y-half)-16, colornames.White)
	}
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	y := float64(boardBottom + 20)
	if winner, over := g.session.Over(); over {
		g.text(screen, fmt.Sprintf("battle over: %s (R to restart)", teamName(winner)), boardLeft, y, colornames.Gold)
		y += 20
	} else if a := g.session.Current(); a != nil {
		g.text(screen, fmt.Sprintf("round %d  %s  ap %d  mp %d  [%s]",
			g.session.Round(), a.Name, a.ActionPoints, a.MovePoints, g.session.State()), boardLeft, y, colornames.White)
		y += 20
		if hand, ok := g.session.Hand(a.ID); ok {
			for i, card := range hand.Hand() {
				line := fmt.Sprintf("%d %s", i+1, card.Name)
				if card.Attack != nil {
					line += fmt.Sprintf("  attack:%d ap", card.Attack.Cost)
				}
				if card.Concentrate != nil {
					line += fmt.Sprintf("  concentrate:%d/%d", card.Concentrate.Count, card.Concentrate.Threshold)
				}
				clr := color.Color(colornames.Lightgray)
				if hand.IsConcentrating(i) {
					clr = colornames.Skyblue
				}
				g.text(screen, line, boardLeft, y, clr)
				y += 16
			}
		}
	}
	g.text(screen, "1-9 attack  shift+1-9 concentrate  space move  enter end turn  c copy log  r restart",
		boardLeft, baseHeight-24, colornames.Gray)
	if g.status != "" {
		g.text(screen, g.status, boardLeft, baseHeight-44, colornames.Gold)
	}

	history := g.session.History()
	if n := len(history); n > logLines {
		history = history[n-logLines:]
	}
	g.text(screen, strings.Join(history, "\n"), baseWidth-360, boardBottom+20, colornames.Lightgray)
}

func (g *Game) fillCell(screen *ebiten.Image, center cp.Vector, scale float64, clr color.Color) {
	x, y := g.toScreen(center)
	half := float32(g.cell() * scale / 2)
	vector.FillRect(screen, x-half, y-half, 2*half, 2*half, clr, false)
}

func (g *Game) strokePolyline(screen *ebiten.Image, pts []cp.Vector, width float32, clr color.Color) {
	for i := 1; i < len(pts); i++ {
		x0, y0 := g.toScreen(pts[i-1])
		x1, y1 := g.toScreen(pts[i])
		vector.StrokeLine(screen, x0, y0, x1, y1, width, clr, true)
	}
}

func (g *Game) text(screen *ebiten.Image, s string, x, y float64, clr color.Color) {
	op := &ebtext.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(clr)
	op.LineSpacing = 16
	ebtext.Draw(screen, s, g.face, op)
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}

func teamColor(t combat.Team) color.Color {
	switch t {
	case combat.Heroes:
		return colornames.Dodgerblue
	case combat.Enemies:
		return colornames.Crimson
	}
	return colornames.Gray
}

func teamName(t combat.Team) string {
	switch t {
	case combat.Heroes:
		return "heroes win"
	case combat.Enemies:
		return "enemies win"
	}
	return "nobody left"
}
