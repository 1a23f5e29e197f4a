package shoal

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"gonum.org/v1/gonum/spatial/r2"
)

// Vec2 is a 2D vector used for positions, velocities and offsets throughout
// the API. It is gonum's r2.Vec, so the r2 helpers (Add, Sub, Scale, Norm)
// apply directly.
type Vec2 = r2.Vec

// DefaultSpriteScale is the display scale applied to sprite positions and
// sizes when a RendererConfig leaves SpriteScale unset.
const DefaultSpriteScale = 4

// Attributes is the open key/value bag attached to entity definitions and
// entities. The engine never interprets it.
type Attributes map[string]any

// Clone returns a shallow copy so entities never share a definition's map.
func (a Attributes) Clone() Attributes {
	if a == nil {
		return Attributes{}
	}
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Float returns the attribute as a float64, accepting any numeric type the
// yaml decoder may produce.
func (a Attributes) Float(key string, fallback float64) float64 {
	switch v := a[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return fallback
	}
}

// String returns the attribute as a string.
func (a Attributes) String(key, fallback string) string {
	if v, ok := a[key].(string); ok {
		return v
	}
	return fallback
}

// Event is a game event queued through Game.Dispatch and delivered to every
// entity on the next Scene.Update.
type Event struct {
	Name string
	Data map[string]any
}

// degToRad converts an angle in degrees to radians.
func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// whitePixel is a 1x1 white image scaled and tinted for debug rectangles.
// Created lazily; the engine is single-threaded during the frame loop.
var whitePixel *ebiten.Image

func ensureWhitePixel() *ebiten.Image {
	if whitePixel == nil {
		whitePixel = ebiten.NewImage(1, 1)
		whitePixel.Fill(color.White)
	}
	return whitePixel
}
