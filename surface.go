package shoal

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// Surface is the drawing target the Renderer blits onto. *ebiten.Image
// satisfies it; tests substitute a recorder.
type Surface interface {
	Bounds() image.Rectangle
	Clear()
	DrawImage(img *ebiten.Image, op *ebiten.DrawImageOptions)
}

var _ Surface = (*ebiten.Image)(nil)
