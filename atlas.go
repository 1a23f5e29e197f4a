package shoal

import (
	"encoding/json"
	"fmt"
	"image"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tidwall/gjson"
)

// Suffixes stripped from raw atlas frame keys to form sprite ids. Aseprite
// names frames after the source file; the .png fallback covers sheets packed
// from loose images.
const (
	spriteSuffix         = ".aseprite"
	fallbackSpriteSuffix = ".png"
)

// Sprite describes one named rectangle of a sheet's source image.
// Value type, immutable once parsed.
type Sprite struct {
	ID string
	// Frame is the sub-rectangle of the sheet image holding the pixels.
	Frame image.Rectangle
	// SpriteSourceSize places Frame inside the untrimmed source rectangle.
	SpriteSourceSize image.Rectangle
	// SourceW and SourceH are the untrimmed dimensions as authored.
	SourceW, SourceH int
	Trimmed          bool
	// Duration is the display time of this frame in milliseconds.
	Duration int
}

// FrameTag is a named, inclusive frame range from the atlas metadata.
type FrameTag struct {
	Name      string `json:"name"`
	From      int    `json:"from"`
	To        int    `json:"to"`
	Direction string `json:"direction"`
}

// SheetMeta is the atlas metadata block.
type SheetMeta struct {
	Image     string
	Format    string
	Width     int
	Height    int
	Scale     string
	FrameTags []FrameTag
}

// SpriteSheet pairs a parsed sprite catalog with its lazily loaded image.
// Sprites keep atlas order, which tag ranges index into.
type SpriteSheet struct {
	ID        string
	ImagePath string
	Meta      SheetMeta

	sprites []Sprite
	index   map[string]int
	image   *ebiten.Image
}

// --- JSON structure types ---

type jsonRect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type jsonSize struct {
	W int `json:"w"`
	H int `json:"h"`
}

type jsonFrame struct {
	Filename         string   `json:"filename"`
	Frame            jsonRect `json:"frame"`
	Trimmed          bool     `json:"trimmed"`
	SpriteSourceSize jsonRect `json:"spriteSourceSize"`
	SourceSize       jsonSize `json:"sourceSize"`
	Duration         int      `json:"duration"`
}

// ParseSpriteSheet parses Aseprite JSON (hash or array export) into a sheet.
// Frame order follows the document, not Go map order, because frame tags
// address sprites by position.
func ParseSpriteSheet(id string, data []byte, imagePath string) (*SpriteSheet, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("shoal: sheet %q: failed to parse atlas JSON", id)
	}
	root := gjson.ParseBytes(data)
	frames := root.Get("frames")
	if !frames.Exists() || !(frames.IsObject() || frames.IsArray()) {
		return nil, fmt.Errorf("shoal: sheet %q: atlas JSON has no \"frames\" object or array", id)
	}

	sheet := &SpriteSheet{
		ID:        id,
		ImagePath: imagePath,
		index:     make(map[string]int),
	}

	keys := make(map[string]string)
	var parseErr error
	frames.ForEach(func(key, value gjson.Result) bool {
		var f jsonFrame
		if err := json.Unmarshal([]byte(value.Raw), &f); err != nil {
			parseErr = fmt.Errorf("shoal: sheet %q: failed to parse frame %s: %w", id, key.String(), err)
			return false
		}
		raw := key.String()
		if frames.IsArray() {
			raw = f.Filename
		}
		sid := spriteIDFromKey(raw)
		if first, dup := keys[sid]; dup {
			parseErr = &DuplicateSpriteIDError{Sheet: id, ID: sid, FirstKey: first, SecondKey: raw}
			return false
		}
		keys[sid] = raw
		sheet.index[sid] = len(sheet.sprites)
		sheet.sprites = append(sheet.sprites, frameToSprite(sid, f))
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	meta := root.Get("meta")
	sheet.Meta = SheetMeta{
		Image:  meta.Get("image").String(),
		Format: meta.Get("format").String(),
		Width:  int(meta.Get("size.w").Int()),
		Height: int(meta.Get("size.h").Int()),
		Scale:  meta.Get("scale").String(),
	}
	if tags := meta.Get("frameTags"); tags.IsArray() {
		if err := json.Unmarshal([]byte(tags.Raw), &sheet.Meta.FrameTags); err != nil {
			return nil, fmt.Errorf("shoal: sheet %q: failed to parse frame tags: %w", id, err)
		}
	}
	if sheet.ImagePath == "" {
		sheet.ImagePath = sheet.Meta.Image
	}
	return sheet, nil
}

// spriteIDFromKey strips the file suffix from a raw frame key.
func spriteIDFromKey(key string) string {
	if s, ok := strings.CutSuffix(key, spriteSuffix); ok {
		return s
	}
	return strings.TrimSuffix(key, fallbackSpriteSuffix)
}

func frameToSprite(id string, f jsonFrame) Sprite {
	frame := image.Rect(f.Frame.X, f.Frame.Y, f.Frame.X+f.Frame.W, f.Frame.Y+f.Frame.H)
	srcW, srcH := f.SourceSize.W, f.SourceSize.H
	if srcW == 0 || srcH == 0 {
		srcW, srcH = f.Frame.W, f.Frame.H
	}
	sss := image.Rect(f.SpriteSourceSize.X, f.SpriteSourceSize.Y,
		f.SpriteSourceSize.X+f.SpriteSourceSize.W, f.SpriteSourceSize.Y+f.SpriteSourceSize.H)
	if sss.Empty() {
		sss = image.Rect(0, 0, f.Frame.W, f.Frame.H)
	}
	return Sprite{
		ID:               id,
		Frame:            frame,
		SpriteSourceSize: sss,
		SourceW:          srcW,
		SourceH:          srcH,
		Trimmed:          f.Trimmed,
		Duration:         f.Duration,
	}
}

// Len returns the number of sprites in the sheet.
func (s *SpriteSheet) Len() int {
	return len(s.sprites)
}

// Sprites returns the sprites in atlas order. The returned slice is a copy.
func (s *SpriteSheet) Sprites() []Sprite {
	out := make([]Sprite, len(s.sprites))
	copy(out, s.sprites)
	return out
}

// Sprite returns the sprite with the given id.
func (s *SpriteSheet) Sprite(id string) (Sprite, bool) {
	i, ok := s.index[id]
	if !ok {
		return Sprite{}, false
	}
	return s.sprites[i], true
}

// SpriteAt returns the sprite at position i in atlas order.
func (s *SpriteSheet) SpriteAt(i int) (Sprite, bool) {
	if i < 0 || i >= len(s.sprites) {
		return Sprite{}, false
	}
	return s.sprites[i], true
}

// FindFrame looks up a sprite by the "<sheet>-<n>" naming convention Aseprite
// uses for untagged exports.
func (s *SpriteSheet) FindFrame(n int) (Sprite, bool) {
	return s.Sprite(fmt.Sprintf("%s-%d", s.ID, n))
}

// Image returns the decoded sheet image, or nil before LoadImages completes.
func (s *SpriteSheet) Image() *ebiten.Image {
	return s.image
}

// Loaded reports whether the sheet image has been decoded.
func (s *SpriteSheet) Loaded() bool {
	return s.image != nil
}

// SetImage attaches a decoded image. Used by loaders and by callers building
// sheets programmatically.
func (s *SpriteSheet) SetImage(img *ebiten.Image) {
	s.image = img
}
