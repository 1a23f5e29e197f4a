package shoal

import (
	"context"
	"image"
	"math"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

const epsilon = 1e-9

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

// --- Test JSON fixtures ---

// sharkAtlasJSON is a hash-format export: four 16x16 frames of 100ms with
// a three-frame "swim" tag and a one-frame "idle" tag.
const sharkAtlasJSON = `{
  "frames": {
    "shark-0.aseprite": {
      "frame": {"x": 0, "y": 0, "w": 16, "h": 16},
      "rotated": false,
      "trimmed": false,
      "spriteSourceSize": {"x": 0, "y": 0, "w": 16, "h": 16},
      "sourceSize": {"w": 16, "h": 16},
      "duration": 100
    },
    "shark-1.aseprite": {
      "frame": {"x": 16, "y": 0, "w": 16, "h": 16},
      "rotated": false,
      "trimmed": false,
      "spriteSourceSize": {"x": 0, "y": 0, "w": 16, "h": 16},
      "sourceSize": {"w": 16, "h": 16},
      "duration": 100
    },
    "shark-2.aseprite": {
      "frame": {"x": 32, "y": 0, "w": 16, "h": 16},
      "rotated": false,
      "trimmed": false,
      "spriteSourceSize": {"x": 0, "y": 0, "w": 16, "h": 16},
      "sourceSize": {"w": 16, "h": 16},
      "duration": 100
    },
    "shark-3.aseprite": {
      "frame": {"x": 48, "y": 0, "w": 16, "h": 16},
      "rotated": false,
      "trimmed": false,
      "spriteSourceSize": {"x": 0, "y": 0, "w": 16, "h": 16},
      "sourceSize": {"w": 16, "h": 16},
      "duration": 100
    }
  },
  "meta": {
    "app": "https://www.aseprite.org/",
    "image": "shark.png",
    "format": "RGBA8888",
    "size": {"w": 64, "h": 16},
    "scale": "1",
    "frameTags": [
      {"name": "swim", "from": 0, "to": 2, "direction": "forward"},
      {"name": "idle", "from": 3, "to": 3, "direction": "forward"}
    ]
  }
}`

// grassAtlasJSON also defines "idle", to exercise cross-sheet names.
const grassAtlasJSON = `{
  "frames": {
    "grass-0.aseprite": {"frame": {"x": 0, "y": 0, "w": 8, "h": 8}, "sourceSize": {"w": 8, "h": 8}, "spriteSourceSize": {"x": 0, "y": 0, "w": 8, "h": 8}, "duration": 250},
    "grass-1.aseprite": {"frame": {"x": 8, "y": 0, "w": 8, "h": 8}, "sourceSize": {"w": 8, "h": 8}, "spriteSourceSize": {"x": 0, "y": 0, "w": 8, "h": 8}, "duration": 250}
  },
  "meta": {
    "image": "grass.png",
    "size": {"w": 16, "h": 8},
    "frameTags": [
      {"name": "idle", "from": 0, "to": 1, "direction": "forward"}
    ]
  }
}`

// --- Recording surface ---

type drawCall struct {
	src  image.Rectangle
	geom ebiten.GeoM
}

// recordingSurface captures DrawImage calls instead of rasterizing.
type recordingSurface struct {
	w, h    int
	calls   []drawCall
	cleared int
}

func newRecordingSurface() *recordingSurface {
	return &recordingSurface{w: 320, h: 240}
}

func (s *recordingSurface) Bounds() image.Rectangle { return image.Rect(0, 0, s.w, s.h) }

func (s *recordingSurface) Clear() { s.cleared++ }

func (s *recordingSurface) DrawImage(img *ebiten.Image, op *ebiten.DrawImageOptions) {
	s.calls = append(s.calls, drawCall{src: img.Bounds(), geom: op.GeoM})
}

// origin returns where the call's transform places the local origin.
func (c drawCall) origin() (float64, float64) {
	return c.geom.Apply(0, 0)
}

// --- Renderer fixtures ---

// newTestRenderer returns a renderer drawing onto a recording surface with
// the shark sheet registered and its image attached.
func newTestRenderer(t *testing.T, scale float64) (*Renderer, *recordingSurface) {
	t.Helper()
	surf := newRecordingSurface()
	r := NewRenderer(RendererConfig{Target: surf, SpriteScale: scale})
	sheet, err := r.RegisterAtlas("shark", []byte(sharkAtlasJSON), "")
	if err != nil {
		t.Fatalf("RegisterAtlas: %v", err)
	}
	sheet.SetImage(ebiten.NewImage(64, 16))
	return r, surf
}

// memLoader serves images from a map and fails for anything else.
func memLoader(images map[string]image.Image) ImageLoader {
	return func(ctx context.Context, p string) (image.Image, error) {
		img, ok := images[p]
		if !ok {
			return nil, errNotFound(p)
		}
		return img, nil
	}
}

type errNotFound string

func (e errNotFound) Error() string { return "not found: " + string(e) }
