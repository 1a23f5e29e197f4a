package shoal

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// overlayRefresh is how often, in seconds, the overlay text is rebuilt.
const overlayRefresh = 0.5

// overlay prints FPS, TPS and the last frame's stats in the top-left corner
// of the screen. The text is redrawn into its own image every ~0.5 seconds.
type overlay struct {
	img      *ebiten.Image
	sinceRef float64
	dirty    bool
	op       ebiten.DrawImageOptions
}

func newOverlay() *overlay {
	return &overlay{dirty: true}
}

func (o *overlay) update(dt float64) {
	o.sinceRef += dt
	if o.sinceRef >= overlayRefresh {
		o.sinceRef = 0
		o.dirty = true
	}
}

func (o *overlay) draw(screen *ebiten.Image, s FrameStats, entities int) {
	if o.img == nil {
		// 160x64 fits five lines of debug font
		o.img = ebiten.NewImage(160, 64)
	}
	if o.dirty {
		o.dirty = false
		o.img.Clear()
		// Semi-transparent background for readability
		o.img.Fill(color.RGBA{0, 0, 0, 128})
		ebitenutil.DebugPrint(o.img, fmt.Sprintf(
			"FPS: %.1f\nTPS: %.1f\nDraws: %d\nSkipped: %d\nEntities: %d",
			ebiten.ActualFPS(), ebiten.ActualTPS(), s.DrawCalls, s.SkippedDraws, entities))
	}
	o.op.GeoM.Reset()
	o.op.GeoM.Translate(4, 4)
	screen.DrawImage(o.img, &o.op)
}
