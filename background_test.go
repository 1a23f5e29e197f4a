package shoal

import (
	"errors"
	"testing"
)

func TestTileBackground_Checker(t *testing.T) {
	r, surf := newTestRenderer(t, 1)
	bg := &TileBackground{Sheet: "shark", Pattern: PatternChecker, Frame: 1, TileSize: 16, Cols: 2, Rows: 2}
	if err := bg.Render(r, 0); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(surf.calls) != 4 {
		t.Fatalf("draw calls = %d, want 4", len(surf.calls))
	}
	// Column-major: (0,0) (0,1) (1,0) (1,1) alternate frames 1 and 2.
	wantSrcX := []int{16, 32, 32, 16}
	for i, c := range surf.calls {
		if c.src.Min.X != wantSrcX[i] {
			t.Errorf("tile %d src x = %d, want %d", i, c.src.Min.X, wantSrcX[i])
		}
	}
	// Tile (1,0) is centred 16 units right of the origin.
	x, y := surf.calls[2].origin()
	if !approxEqual(x, 8, epsilon) || !approxEqual(y, -8, epsilon) {
		t.Errorf("tile (1,0) origin = (%v,%v), want (8,-8)", x, y)
	}
}

func TestTileBackground_FixedWithOrigin(t *testing.T) {
	r, surf := newTestRenderer(t, 2)
	bg := &TileBackground{Sheet: "shark", Pattern: PatternFixed, Frame: 3, TileSize: 16, Cols: 3, Rows: 1, Origin: Vec2{X: 100, Y: 50}}
	if err := bg.Render(r, 0); err != nil {
		t.Fatal(err)
	}
	if len(surf.calls) != 3 {
		t.Fatalf("draw calls = %d, want 3", len(surf.calls))
	}
	for i, c := range surf.calls {
		if c.src.Min.X != 48 {
			t.Errorf("tile %d src x = %d, want 48", i, c.src.Min.X)
		}
	}
	// (100 + 16*2) * 2 - 8*2
	x, _ := surf.calls[2].origin()
	if !approxEqual(x, 248, epsilon) {
		t.Errorf("third tile origin x = %v, want 248", x)
	}
}

func TestTileBackground_FrameOutOfRange(t *testing.T) {
	r, _ := newTestRenderer(t, 1)
	bg := &TileBackground{Sheet: "shark", Pattern: PatternChecker, Frame: 3, TileSize: 16, Cols: 2, Rows: 1}
	err := bg.Render(r, 0)
	if !errors.Is(err, ErrUnknownSprite) {
		t.Errorf("Render = %v, want ErrUnknownSprite for frame 4", err)
	}
}

func TestTileBackground_UnknownSheet(t *testing.T) {
	r, _ := newTestRenderer(t, 1)
	bg := &TileBackground{Sheet: "sand", Cols: 1, Rows: 1}
	if err := bg.Render(r, 0); !errors.Is(err, ErrUnknownSheet) {
		t.Errorf("Render = %v, want ErrUnknownSheet", err)
	}
}
