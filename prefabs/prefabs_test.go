package prefabs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/jakecoffman/cp"
	"go.uber.org/zap/zaptest"

	"github.com/milk9111/trailtactics/combat"
	"github.com/milk9111/trailtactics/movement"
	"github.com/milk9111/trailtactics/trail"
)

func TestLoadDefaultCards(t *testing.T) {
	lib := NewLibrary(zaptest.NewLogger(t))
	if err := lib.LoadDefault(context.Background()); err != nil {
		t.Fatalf("load default: %v", err)
	}
	if got, want := lib.Presets(), []int{1, 2, 3, 4}; !slices.Equal(got, want) {
		t.Fatalf("expected presets %v, got %v", want, got)
	}
	if got := len(lib.Deck()); got != 6 {
		t.Fatalf("expected 6 cards in the full deck, got %d", got)
	}

	twin, err := lib.NewCard(2)
	if err != nil {
		t.Fatalf("new card: %v", err)
	}
	if twin.Attack == nil || len(twin.Attack.Trails) != 2 || twin.Attack.Cost != 1 {
		t.Fatalf("unexpected twin strike attack: %+v", twin.Attack)
	}
	if p := twin.Attack.Trails[1].Power; p != 3 {
		t.Fatalf("expected second trail power 3, got %d", p)
	}

	guard, err := lib.NewCard(3)
	if err != nil {
		t.Fatalf("new card: %v", err)
	}
	if guard.Concentrate == nil || guard.Concentrate.Threshold != 1 {
		t.Fatalf("unexpected mending guard concentrate: %+v", guard.Concentrate)
	}
	if n := len(guard.Concentrate.Trail.Arc.Ranges()); n != 4 {
		t.Fatalf("expected 4 arc ranges, got %d", n)
	}

	again, _ := lib.NewCard(3)
	if again.ID == guard.ID || again.Concentrate.Trail == guard.Concentrate.Trail {
		t.Fatal("expected each built card to be independent")
	}
}

func TestScriptedCardFromDefaults(t *testing.T) {
	lib := NewLibrary(zaptest.NewLogger(t))
	if err := lib.LoadDefault(context.Background()); err != nil {
		t.Fatalf("load default: %v", err)
	}
	lash, err := lib.NewCard(4)
	if err != nil {
		t.Fatalf("new card: %v", err)
	}
	path := lash.Attack.Trails[0].Path
	path.Clip(openScene{}, 1, cp.Vector{}, cp.Vector{X: 8})
	pts := path.Points()
	if len(pts) != 5 {
		t.Fatalf("expected 5 zigzag points, got %d: %v", len(pts), pts)
	}
	if last := pts[len(pts)-1]; last.Distance(cp.Vector{X: 4}) > 1e-9 {
		t.Fatalf("expected zigzag clamped to (4,0), got %v", last)
	}
	if len(lash.DiscardEffects) != 1 {
		t.Fatalf("expected one discard effect, got %d", len(lash.DiscardEffects))
	}
}

type openScene struct{}

func (openScene) FirstHit(_, _ cp.Vector, _ trail.Filter) (trail.Hit, bool) {
	return trail.Hit{}, false
}

func TestAddRejectsBadSpecs(t *testing.T) {
	cases := []struct {
		name string
		spec CardSpec
		want error
	}{
		{
			name: "unknown_attack_effect",
			spec: CardSpec{ID: 9, Attack: &AttackSpec{Trails: []TrailSpec{{
				Waypoints: WaypointsSpec{Line: 1},
				Effects:   []EffectSpec{{Kind: "explode"}},
			}}}},
			want: ErrUnknownEffect,
		},
		{
			name: "card_effect_used_as_reaction",
			spec: CardSpec{ID: 9, Concentrate: &ConcentrateSpec{
				Ranges:    []trail.Range{{Start: 0, End: 30}},
				Reactions: []EffectSpec{{Kind: "heal"}},
			}},
			want: ErrUnknownEffect,
		},
		{
			name: "no_waypoints",
			spec: CardSpec{ID: 9, Attack: &AttackSpec{Trails: []TrailSpec{{Power: 1}}}},
			want: ErrNoWaypoints,
		},
		{
			name: "no_ranges",
			spec: CardSpec{ID: 9, Concentrate: &ConcentrateSpec{Power: 1}},
			want: trail.ErrNoRanges,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			lib := NewLibrary(zaptest.NewLogger(t))
			if err := lib.Add(c.spec); !errors.Is(err, c.want) {
				t.Fatalf("expected %v, got %v", c.want, err)
			}
			if lib.Len() != 0 {
				t.Fatal("expected rejected spec not stored")
			}
		})
	}
}

func TestDuplicatePreset(t *testing.T) {
	lib := NewLibrary(zaptest.NewLogger(t))
	spec := CardSpec{ID: 5, Attack: &AttackSpec{Trails: []TrailSpec{{Waypoints: WaypointsSpec{Line: 1}}}}}
	if err := lib.Add(spec); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := lib.Add(spec); !errors.Is(err, ErrDuplicatePreset) {
		t.Fatalf("expected ErrDuplicatePreset, got %v", err)
	}
	if _, err := lib.NewCard(6); !errors.Is(err, ErrUnknownPreset) {
		t.Fatalf("expected ErrUnknownPreset, got %v", err)
	}
}

func TestLoadDirAndReload(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		t.Helper()
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		return p
	}
	for i, body := range []string{
		"id: 10\nname: a\nattack:\n  trails:\n    - {power: 1, waypoints: {line: 1}}\n",
		"id: 11\nname: b\nattack:\n  trails:\n    - {power: 1, waypoints: {line: 2}}\n",
		"id: 12\nname: c\nconcentrate:\n  ranges: [{start: 0, end: 90}]\n",
	} {
		write(string(rune('a'+i))+".yaml", body)
	}

	lib := NewLibrary(zaptest.NewLogger(t))
	if err := lib.LoadDir(context.Background(), dir); err != nil {
		t.Fatalf("load dir: %v", err)
	}
	if got := lib.Presets(); !slices.Equal(got, []int{10, 11, 12}) {
		t.Fatalf("expected presets 10..12, got %v", got)
	}

	p := write("b.yaml", "id: 11\nname: b2\nattack:\n  cost: 2\n  trails:\n    - {power: 1, waypoints: {line: 2}}\n")
	if err := lib.Reload(p); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if spec, _ := lib.Spec(11); spec.Name != "b2" || spec.Attack.Cost != 2 {
		t.Fatalf("expected reloaded spec, got %+v", spec)
	}

	write("d.yaml", "id: [broken\n")
	if err := NewLibrary(nil).LoadDir(context.Background(), dir); err == nil {
		t.Fatal("expected malformed file to fail the load")
	}
}

func TestScriptWaypoints(t *testing.T) {
	src := []byte(`points := [[0.0, 0.0], [goal_x, goal_y * 2.0], [max_length, 0]]`)
	w, err := ScriptWaypoints("double.tengo", src, 3, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	got := w(cp.Vector{X: 1, Y: 2})
	want := []cp.Vector{{}, {X: 1, Y: 4}, {X: 3}}
	if !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestScriptWaypointsErrors(t *testing.T) {
	if _, err := ScriptWaypoints("bad.tengo", []byte(`points := [`), 1, nil); err == nil {
		t.Fatal("expected compile error")
	}
	if _, err := ScriptWaypoints("none.tengo", []byte(`x := 1`), 1, nil); !errors.Is(err, ErrScriptOutput) {
		t.Fatalf("expected ErrScriptOutput, got %v", err)
	}
	w, err := ScriptWaypoints("shape.tengo", []byte(`points := [[0.0, 0.0], "nope"]`), 1, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if got := w(cp.Vector{X: 1}); got != nil {
		t.Fatalf("expected no waypoints from malformed output, got %v", got)
	}
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel(LevelSpec{
		Name: "tiny",
		Tiles: `
..=.
.H..
####
`,
		Spawns: []SpawnSpec{
			{Name: "hero", Team: "heroes", X: 0, Y: 1},
			{Name: "rock", Kind: "obstacle", X: 3, Y: 1, Facing: -1},
		},
	})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if lvl.Width != 4 || lvl.Height != 3 || lvl.CellSize != 1 {
		t.Fatalf("unexpected size %dx%d cell %v", lvl.Width, lvl.Height, lvl.CellSize)
	}
	checks := map[movement.Coord]movement.TileKind{
		{X: 0, Y: 0}:  movement.Ground,
		{X: 1, Y: 1}:  movement.Ladder,
		{X: 2, Y: 2}:  movement.Platform,
		{X: 0, Y: 2}:  movement.Empty,
		{X: -1, Y: 0}: movement.Empty,
	}
	for c, want := range checks {
		if got := lvl.Tile(c); got != want {
			t.Errorf("tile %v: expected %v, got %v", c, want, got)
		}
	}
	if n := len(lvl.Cells(movement.Ground)); n != 4 {
		t.Fatalf("expected 4 ground cells, got %d", n)
	}
	rock := lvl.Spawns[1]
	if rock.Kind != combat.KindObstacle || rock.Team != combat.Neutral || rock.Facing != -1 {
		t.Fatalf("unexpected obstacle spawn %+v", rock)
	}
	if lvl.Spawns[0].Stats != combat.DefaultStats() {
		t.Fatal("expected default stats for a spawn without overrides")
	}
}

func TestParseLevelErrors(t *testing.T) {
	cases := []struct {
		name string
		spec LevelSpec
		want error
	}{
		{"bad_glyph", LevelSpec{Tiles: "#?#"}, ErrBadGlyph},
		{"spawn_outside", LevelSpec{Tiles: "##", Spawns: []SpawnSpec{{Name: "x", X: 5}}}, ErrBadSpawn},
		{"bad_team", LevelSpec{Tiles: "##", Spawns: []SpawnSpec{{Name: "x", Team: "pirates"}}}, ErrBadSpawn},
		{"bad_kind", LevelSpec{Tiles: "##", Spawns: []SpawnSpec{{Name: "x", Kind: "ghost"}}}, ErrBadSpawn},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := ParseLevel(c.spec); !errors.Is(err, c.want) {
				t.Fatalf("expected %v, got %v", c.want, err)
			}
		})
	}
}

func TestLoadArena(t *testing.T) {
	for _, name := range []string{"arena", "levels/arena.yaml"} {
		lvl, err := LoadLevel(name)
		if err != nil {
			t.Fatalf("load %s: %v", name, err)
		}
		if lvl.Name != "arena" || len(lvl.Spawns) != 3 {
			t.Fatalf("unexpected arena %q with %d spawns", lvl.Name, len(lvl.Spawns))
		}
		if got := lvl.Spawns[2].Stats.MaxHP; got != 4 {
			t.Fatalf("expected crate max hp 4, got %v", got)
		}
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		path string
		kind ChangeKind
		ok   bool
	}{
		{"prefabs/cards/01.yaml", ChangeCard, true},
		{"prefabs/levels/arena.yml", ChangeLevel, true},
		{"prefabs/scripts/zigzag.tengo", ChangeScript, true},
		{"prefabs/cards/notes.txt", 0, false},
	}
	for _, c := range cases {
		kind, ok := classify(c.path)
		if ok != c.ok || kind != c.kind {
			t.Errorf("%s: expected (%v, %v), got (%v, %v)", c.path, c.kind, c.ok, kind, ok)
		}
	}
}

func TestWatcherReportsChanges(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	target := filepath.Join(dir, "zap.tengo")
	if err := os.WriteFile(target, []byte("points := []"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case ch := <-w.Events:
		if ch.Path != target || ch.Kind != ChangeScript {
			t.Fatalf("unexpected change %+v", ch)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change")
	}
}
