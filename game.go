package shoal

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
)

var (
	errNoScene    = errors.New("shoal: game has no scene")
	errNoRenderer = errors.New("shoal: game has no renderer")
)

// DefaultTPS is the tick rate used when GameConfig.TPS is zero.
const DefaultTPS = 60

// GameConfig configures a Game.
type GameConfig struct {
	Scene    *Scene
	Renderer *Renderer
	// Content and Watcher are optional. With both set, atlas files reported
	// by the watcher are reloaded at the start of the next Update.
	Content *Content
	Watcher *Watcher
	Logger  *slog.Logger

	// Width and Height fix the logical screen size. Zero follows the window.
	Width, Height int
	// TPS is the fixed tick rate; each Update advances the clock by 1/TPS.
	TPS int

	Debug bool
	// StatsInterval is the number of seconds between frame stats log lines
	// in debug mode. Zero disables them.
	StatsInterval float64
	// Overlay prints FPS, TPS and frame stats in the top-left corner.
	Overlay bool

	// OnUpdate runs at the start of every Update, before the clock advances.
	// Events it dispatches are delivered in the same tick.
	OnUpdate func(g *Game) error
}

// Game drives a Scene from ebiten's callbacks. It implements ebiten.Game.
//
// The clock advances a fixed step per Update, so every entity update in a
// tick happens before any render of that tick and render times are
// reproducible.
type Game struct {
	scene    *Scene
	renderer *Renderer
	content  *Content
	watcher  *Watcher
	logger   *slog.Logger

	width, height int
	dt            float64

	now     float64
	events  []Event
	drawErr error
	quit    bool

	stats    *statsWindow
	overlay  *overlay
	onUpdate func(g *Game) error
}

// NewGame creates a game around a scene.
func NewGame(cfg GameConfig) *Game {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tps := cfg.TPS
	if tps <= 0 {
		tps = DefaultTPS
	}
	renderer := cfg.Renderer
	if renderer == nil && cfg.Scene != nil {
		renderer = cfg.Scene.Renderer()
	}
	g := &Game{
		scene:    cfg.Scene,
		renderer: renderer,
		content:  cfg.Content,
		watcher:  cfg.Watcher,
		logger:   logger,
		width:    cfg.Width,
		height:   cfg.Height,
		dt:       1 / float64(tps),
		onUpdate: cfg.OnUpdate,
	}
	if cfg.Debug && cfg.StatsInterval > 0 {
		g.stats = newStatsWindow(cfg.StatsInterval)
	}
	if cfg.Overlay {
		g.overlay = newOverlay()
	}
	return g
}

// Scene returns the game's scene.
func (g *Game) Scene() *Scene { return g.scene }

// Now returns the game clock in seconds.
func (g *Game) Now() float64 { return g.now }

// Dispatch queues an event for delivery to every entity on the next Update.
func (g *Game) Dispatch(ev Event) {
	g.events = append(g.events, ev)
}

// Quit ends the game loop after the current tick.
func (g *Game) Quit() { g.quit = true }

// Err returns the error latched from a failed Draw, if any.
func (g *Game) Err() error { return g.drawErr }

// Init initializes the scene at the current clock. Run calls it.
func (g *Game) Init() error {
	if g.scene == nil {
		return errNoScene
	}
	return g.scene.Init(g.now)
}

// Update advances the clock by one tick, applies pending content reloads and
// updates the camera and scene. An error latched by Draw is returned here,
// which stops ebiten.RunGame.
func (g *Game) Update() error {
	if g.drawErr != nil {
		return g.drawErr
	}
	if g.quit {
		return ebiten.Termination
	}
	if g.scene == nil {
		return errNoScene
	}
	g.reload()
	if g.onUpdate != nil {
		if err := g.onUpdate(g); err != nil {
			return err
		}
	}
	if g.quit {
		return ebiten.Termination
	}

	g.now += g.dt
	events := g.events
	g.events = nil

	if cam := g.scene.Camera(); cam != nil {
		cam.Update(float32(g.dt))
	}
	if err := g.scene.Update(g.dt, events); err != nil {
		return err
	}
	if g.overlay != nil {
		g.overlay.update(g.dt)
	}
	return nil
}

// Draw renders the scene onto screen. Draw cannot return an error, so the
// first rendering failure is latched and surfaced by the next Update.
func (g *Game) Draw(screen *ebiten.Image) {
	r := g.renderer
	if g.scene == nil || r == nil {
		if g.drawErr == nil {
			g.drawErr = errNoScene
			if g.scene != nil {
				g.drawErr = errNoRenderer
			}
		}
		return
	}
	r.SetTarget(screen)
	r.ResetStats()
	r.Clear()

	if err := g.scene.Render(g.now); err != nil && g.drawErr == nil {
		g.drawErr = fmt.Errorf("shoal: render: %w", err)
		g.logger.Error("render failed", "error", err)
	}

	stats := r.Stats()
	if g.stats != nil {
		if line, ok := g.stats.add(stats, g.scene.Len(), g.dt); ok {
			g.logger.Debug("frame stats", line.attrs()...)
		}
	}
	if g.overlay != nil {
		g.overlay.draw(screen, stats, g.scene.Len())
	}
}

// Layout implements ebiten.Game.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if g.width > 0 && g.height > 0 {
		return g.width, g.height
	}
	return outsideWidth, outsideHeight
}

// reload drains the watcher and reloads changed atlases. Failures are logged
// and the previous catalog stays in place, since the file may be mid-edit.
func (g *Game) reload() {
	if g.watcher == nil || g.content == nil {
		return
	}
	for _, p := range g.watcher.Poll() {
		if err := g.content.ReloadAtlas(p); err != nil {
			g.logger.Warn("reload failed", "path", p, "error", err)
		}
	}
	select {
	case err, ok := <-g.watcher.Errors:
		if ok && err != nil {
			g.logger.Warn("watcher error", "error", err)
		}
	default:
	}
}

// RunConfig holds window settings for Run.
type RunConfig struct {
	Title         string
	Width, Height int
	TPS           int
}

// Run opens a window and runs the game until the window closes, Quit is
// called or an error occurs.
func Run(g *Game, cfg RunConfig) error {
	if cfg.Title != "" {
		ebiten.SetWindowTitle(cfg.Title)
	}
	if cfg.Width > 0 && cfg.Height > 0 {
		ebiten.SetWindowSize(cfg.Width, cfg.Height)
	}
	tps := int(1/g.dt + 0.5)
	if cfg.TPS > 0 {
		tps = cfg.TPS
		g.dt = 1 / float64(tps)
	}
	ebiten.SetTPS(tps)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := g.Init(); err != nil {
		return err
	}
	return ebiten.RunGame(g)
}
