package shoal

// Tile patterns for TileBackground.
const (
	PatternChecker = "checker"
	PatternFixed   = "fixed"
)

// TileBackground fills a Cols x Rows grid with sheet frames addressed by
// position. The checker pattern alternates Frame and Frame+1 by (x+y)%2;
// the fixed pattern repeats Frame.
type TileBackground struct {
	Sheet    string
	Pattern  string
	Frame    int
	TileSize float64
	Cols     int
	Rows     int
	Origin   Vec2
}

// Render implements Background.
func (b *TileBackground) Render(r *Renderer, _ float64) error {
	for x := 0; x < b.Cols; x++ {
		for y := 0; y < b.Rows; y++ {
			frame := b.Frame
			if b.Pattern == PatternChecker {
				frame += (x + y) % 2
			}
			pos := Vec2{
				X: b.Origin.X + float64(x)*b.TileSize,
				Y: b.Origin.Y + float64(y)*b.TileSize,
			}
			if err := r.DrawSheetFrame(b.Sheet, frame, pos, 0); err != nil {
				return err
			}
		}
	}
	return nil
}

// BackgroundFunc adapts a function to Background.
type BackgroundFunc func(r *Renderer, now float64) error

func (f BackgroundFunc) Render(r *Renderer, now float64) error { return f(r, now) }
