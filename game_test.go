package shoal

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/hajimehoshi/ebiten/v2"
)

func newTestGame(t *testing.T, cfg GameConfig) (*Game, *Scene) {
	t.Helper()
	r, _ := newTestRenderer(t, 1)
	s := NewScene(SceneConfig{Renderer: r})
	cfg.Scene = s
	g := NewGame(cfg)
	if err := g.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return g, s
}

func TestNewGame_Defaults(t *testing.T) {
	g, s := newTestGame(t, GameConfig{})
	if !approxEqual(g.dt, 1.0/DefaultTPS, epsilon) {
		t.Errorf("dt = %v, want 1/%d", g.dt, DefaultTPS)
	}
	if g.renderer != s.Renderer() {
		t.Error("renderer not taken from the scene")
	}
	if g.Scene() != s {
		t.Error("Scene() mismatch")
	}
}

func TestGameInit_NoScene(t *testing.T) {
	g := NewGame(GameConfig{})
	if err := g.Init(); err == nil {
		t.Error("expected error without a scene")
	}
}

func TestGameNoScene_DoesNotPanic(t *testing.T) {
	g := NewGame(GameConfig{})
	if err := g.Update(); err == nil {
		t.Error("Update without a scene = nil, want error")
	}
	g.Draw(ebiten.NewImage(16, 16))
	if g.Err() == nil {
		t.Error("Draw without a scene did not latch an error")
	}
}

func TestGameDraw_NoRenderer(t *testing.T) {
	g := NewGame(GameConfig{Scene: NewScene(SceneConfig{})})
	g.Draw(ebiten.NewImage(16, 16))
	if g.Err() == nil {
		t.Error("Draw without a renderer did not latch an error")
	}
}

func TestGameUpdate_FixedStep(t *testing.T) {
	g, s := newTestGame(t, GameConfig{TPS: 10})
	for i := 0; i < 5; i++ {
		if err := g.Update(); err != nil {
			t.Fatal(err)
		}
	}
	if !approxEqual(g.Now(), 0.5, 1e-9) {
		t.Errorf("Now = %v, want 0.5", g.Now())
	}
	if !approxEqual(s.Now(), 0.5, 1e-9) {
		t.Errorf("scene Now = %v, want 0.5", s.Now())
	}
}

func TestGameDispatch_DeliveredOnce(t *testing.T) {
	g, s := newTestGame(t, GameConfig{})
	var seen [][]string
	e := NewEntity("a", Vec2{})
	e.AddBehavior(BehaviorFunc(func(_ *Entity, _ float64, events []Event) error {
		var names []string
		for _, ev := range events {
			names = append(names, ev.Name)
		}
		seen = append(seen, names)
		return nil
	}))
	s.AddEntity(e)

	g.Dispatch(Event{Name: "disturb"})
	g.Dispatch(Event{Name: "calm"})
	g.Update()
	g.Update()
	if len(seen) != 2 {
		t.Fatalf("updates = %d, want 2", len(seen))
	}
	if !equalStrings(seen[0], []string{"disturb", "calm"}) {
		t.Errorf("first tick events = %v", seen[0])
	}
	if len(seen[1]) != 0 {
		t.Errorf("second tick events = %v, want none", seen[1])
	}
}

func TestGameOnUpdate(t *testing.T) {
	var got []string
	g, s := newTestGame(t, GameConfig{OnUpdate: func(g *Game) error {
		g.Dispatch(Event{Name: "tick"})
		return nil
	}})
	e := NewEntity("a", Vec2{})
	e.AddBehavior(BehaviorFunc(func(_ *Entity, _ float64, events []Event) error {
		for _, ev := range events {
			got = append(got, ev.Name)
		}
		return nil
	}))
	s.AddEntity(e)
	g.Update()
	if !equalStrings(got, []string{"tick"}) {
		t.Errorf("events = %v, want [tick] in the same tick", got)
	}
}

func TestGameOnUpdate_Error(t *testing.T) {
	boom := errors.New("boom")
	g, _ := newTestGame(t, GameConfig{OnUpdate: func(*Game) error { return boom }})
	if err := g.Update(); !errors.Is(err, boom) {
		t.Errorf("Update = %v, want boom", err)
	}
	if g.Now() != 0 {
		t.Errorf("clock advanced to %v after a failed hook", g.Now())
	}
}

func TestGameQuit(t *testing.T) {
	g, _ := newTestGame(t, GameConfig{OnUpdate: func(g *Game) error {
		g.Quit()
		return nil
	}})
	if err := g.Update(); !errors.Is(err, ebiten.Termination) {
		t.Errorf("Update = %v, want ebiten.Termination", err)
	}
}

func TestGameDraw_LatchesError(t *testing.T) {
	g, s := newTestGame(t, GameConfig{})
	boom := errors.New("boom")
	s.AddBackground(failingBackground{err: boom})

	screen := ebiten.NewImage(64, 64)
	g.Draw(screen)
	if !errors.Is(g.Err(), boom) {
		t.Fatalf("Err = %v, want boom", g.Err())
	}
	if err := g.Update(); !errors.Is(err, boom) {
		t.Errorf("Update = %v, want the latched draw error", err)
	}
	if s.Renderer().Target() != screen {
		t.Error("Draw did not retarget the renderer")
	}
}

func TestGameDraw_ResetsStats(t *testing.T) {
	g, s := newTestGame(t, GameConfig{})
	s.AddEntity(newSwimmer("a", Vec2{X: 8, Y: 8}))
	screen := ebiten.NewImage(64, 64)
	g.Draw(screen)
	g.Draw(screen)
	if got := s.Renderer().Stats().DrawCalls; got != 1 {
		t.Errorf("DrawCalls = %d, want 1 per frame", got)
	}
	if g.Err() != nil {
		t.Errorf("Err = %v", g.Err())
	}
}

func TestGameLayout(t *testing.T) {
	g, _ := newTestGame(t, GameConfig{})
	if w, h := g.Layout(800, 600); w != 800 || h != 600 {
		t.Errorf("Layout = %dx%d, want outside size", w, h)
	}
	g, _ = newTestGame(t, GameConfig{Width: 320, Height: 180})
	if w, h := g.Layout(800, 600); w != 320 || h != 180 {
		t.Errorf("Layout = %dx%d, want 320x180", w, h)
	}
}

// newReloadGame builds a game over the test content with a watcher whose
// channels the test feeds directly.
func newReloadGame(t *testing.T) (*Game, *Content, fstest.MapFS, *Watcher, *bytes.Buffer) {
	t.Helper()
	fsys := contentFS(t)
	c := loadTestContent(t, fsys)
	w := &Watcher{Events: make(chan string, 4), Errors: make(chan error, 1)}
	var logs bytes.Buffer
	g := NewGame(GameConfig{
		Scene:   NewScene(SceneConfig{Renderer: c.Renderer()}),
		Content: c,
		Watcher: w,
		Logger:  slog.New(slog.NewTextHandler(&logs, nil)),
	})
	if err := g.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return g, c, fsys, w, &logs
}

func TestGameUpdate_ReloadsWatchedAtlas(t *testing.T) {
	g, c, fsys, w, _ := newReloadGame(t)
	shark, err := c.NewEntity("shark", "player", Vec2{X: 2, Y: 2}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Scene().AddEntity(shark); err != nil {
		t.Fatal(err)
	}

	edited := strings.Replace(sharkAtlasJSON, `"name": "idle"`, `"name": "rest"`, 1)
	edited = strings.Replace(edited, "shark-2.aseprite", "shark-9.aseprite", 1)
	fsys["sprites/shark.json"] = &fstest.MapFile{Data: []byte(edited)}
	w.Events <- "sprites/shark.json"
	w.Events <- "sprites/shark.json"

	if err := g.Update(); err != nil {
		t.Fatalf("Update: %v", err)
	}
	r := c.Renderer()
	if r.FindTemplate("shark/rest") == nil {
		t.Error("shark/rest missing after the watched reload")
	}
	if r.FindTemplate("shark/idle") != nil {
		t.Error("shark/idle survived the watched reload")
	}
	if len(w.Events) != 0 {
		t.Errorf("watcher events left = %d, want 0", len(w.Events))
	}

	for _, now := range []float64{0.25, 0.35} {
		g.now = now
		g.Draw(ebiten.NewImage(64, 64))
	}
	if g.Err() != nil {
		t.Errorf("Err after reload = %v, want nil", g.Err())
	}
}

func TestGameUpdate_FailedReloadKeepsCatalog(t *testing.T) {
	g, c, fsys, w, logs := newReloadGame(t)
	fsys["sprites/shark.json"] = &fstest.MapFile{Data: []byte(`{"frames": `)}
	w.Events <- "sprites/shark.json"
	w.Errors <- errors.New("queue overflow")

	if err := g.Update(); err != nil {
		t.Fatalf("Update = %v, want nil for a failed reload", err)
	}
	if c.Renderer().FindTemplate("shark/swim") == nil {
		t.Error("failed reload changed the catalog")
	}
	if len(w.Errors) != 0 {
		t.Error("watcher error not drained")
	}
	out := logs.String()
	for _, want := range []string{"reload failed", "sprites/shark.json", "watcher error", "queue overflow"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
