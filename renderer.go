package shoal

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/image/colornames"
	"golang.org/x/sync/errgroup"
)

// RendererConfig configures a Renderer.
type RendererConfig struct {
	// Target is the surface drawn onto. Game swaps in the screen each frame.
	Target Surface
	// SpriteScale multiplies both sprite positions and sprite sizes.
	// Defaults to DefaultSpriteScale.
	SpriteScale float64
	// Loader decodes sheet images in LoadImages.
	Loader ImageLoader
	Logger *slog.Logger
	// Debug enables debug-level logging of skipped draws.
	Debug bool
	// DebugBounds draws a translucent rectangle under every sprite.
	DebugBounds bool
}

// FrameStats counts renderer work since the last ResetStats.
type FrameStats struct {
	DrawCalls    int
	SkippedDraws int // sheet image not loaded yet
	EmptyFrames  int // animation resolved to no frame
}

// Renderer owns the sheet and template catalog and blits sprites onto a
// Surface through a stack of world-to-screen transforms.
//
// Registration happens before the frame loop. During the loop the catalog is
// read-only; ReloadSheet swaps in a modified copy.
type Renderer struct {
	target      Surface
	spriteScale float64
	loader      ImageLoader
	logger      *slog.Logger
	debug       bool
	debugBounds bool

	cat   *catalog
	stack []ebiten.GeoM
	stats FrameStats
	op    ebiten.DrawImageOptions
}

// NewRenderer creates a renderer with an empty catalog.
func NewRenderer(cfg RendererConfig) *Renderer {
	scale := cfg.SpriteScale
	if scale <= 0 {
		scale = DefaultSpriteScale
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		target:      cfg.Target,
		spriteScale: scale,
		loader:      cfg.Loader,
		logger:      logger,
		debug:       cfg.Debug,
		debugBounds: cfg.DebugBounds,
		cat:         newCatalog(),
	}
}

// SpriteScale returns the display scale factor.
func (r *Renderer) SpriteScale() float64 { return r.spriteScale }

// SetDebugBounds toggles the debug rectangle drawn under each sprite.
func (r *Renderer) SetDebugBounds(on bool) { r.debugBounds = on }

// --- Registration ---

// RegisterSheet stores the sheet and merges its derived templates into the
// catalog. Registering an id again replaces the earlier sheet.
func (r *Renderer) RegisterSheet(sheet *SpriteSheet) error {
	if sheet == nil {
		return errors.New("shoal: RegisterSheet: nil sheet")
	}
	if sheet.ID == "" || strings.Contains(sheet.ID, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidSheetID, sheet.ID)
	}
	templates, err := orderedTemplates(sheet)
	if err != nil {
		return err
	}
	shadowed := r.cat.putSheet(sheet, templates)
	for _, name := range shadowed {
		r.logger.Warn("template name shadows another sheet; use the sheet/tag id to disambiguate",
			"sheet", sheet.ID, "template", name)
	}
	return nil
}

// RegisterAtlas parses atlas JSON and registers the resulting sheet.
func (r *Renderer) RegisterAtlas(id string, data []byte, imagePath string) (*SpriteSheet, error) {
	sheet, err := ParseSpriteSheet(id, data, imagePath)
	if err != nil {
		return nil, err
	}
	if err := r.RegisterSheet(sheet); err != nil {
		return nil, err
	}
	return sheet, nil
}

// orderedTemplates returns the sheet's templates in frame tag order. A tag
// name repeated within one sheet keeps its last definition.
func orderedTemplates(sheet *SpriteSheet) ([]*AnimationTemplate, error) {
	byName, err := DeriveAnimationTemplates(sheet)
	if err != nil {
		return nil, err
	}
	out := make([]*AnimationTemplate, 0, len(byName))
	seen := make(map[string]bool, len(byName))
	for _, tag := range sheet.Meta.FrameTags {
		if seen[tag.Name] {
			continue
		}
		seen[tag.Name] = true
		out = append(out, byName[tag.Name])
	}
	return out, nil
}

// ReloadSheet re-parses the atlas for an already registered sheet and swaps
// the catalog. The sheet's image is kept. Players created before the reload
// keep playing their old templates. On error the catalog is unchanged.
func (r *Renderer) ReloadSheet(id string, data []byte) error {
	old, ok := r.cat.sheets[id]
	if !ok {
		return &UnknownSheetError{Sheet: id}
	}
	sheet, err := ParseSpriteSheet(id, data, old.ImagePath)
	if err != nil {
		return err
	}
	sheet.image = old.image
	templates, err := orderedTemplates(sheet)
	if err != nil {
		return err
	}
	next := r.cat.clone()
	next.putSheet(sheet, templates)
	r.cat = next
	r.logger.Info("sheet reloaded", "sheet", id, "sprites", sheet.Len(), "templates", len(templates))
	return nil
}

// LoadImages decodes every registered sheet image that is not loaded yet.
// Decoding runs concurrently; the first failure is returned after all loads
// finish, and sheets that did load keep their image.
func (r *Renderer) LoadImages(ctx context.Context) error {
	if r.loader == nil {
		return errors.New("shoal: LoadImages: renderer has no image loader")
	}
	var pending []*SpriteSheet
	for _, id := range r.cat.order {
		if s := r.cat.sheets[id]; !s.Loaded() {
			pending = append(pending, s)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	decoded := make([]image.Image, len(pending))
	var g errgroup.Group
	for i, s := range pending {
		g.Go(func() error {
			img, err := r.loader(ctx, s.ImagePath)
			if err != nil {
				return &ImageLoadError{Sheet: s.ID, Path: s.ImagePath, Err: err}
			}
			decoded[i] = img
			return nil
		})
	}
	err := g.Wait()

	// GPU images are created on the calling goroutine.
	for i, s := range pending {
		switch img := decoded[i].(type) {
		case nil:
		case *ebiten.Image:
			s.image = img
		default:
			s.image = ebiten.NewImageFromImage(img)
		}
		if s.image != nil {
			r.logger.Debug("sheet image loaded", "sheet", s.ID, "path", s.ImagePath)
		}
	}
	return err
}

// --- Lookup ---

// Sheet returns a registered sheet.
func (r *Renderer) Sheet(id string) (*SpriteSheet, bool) {
	s, ok := r.cat.sheets[id]
	return s, ok
}

// Sheets returns the registered sheets in registration order.
func (r *Renderer) Sheets() []*SpriteSheet {
	out := make([]*SpriteSheet, 0, len(r.cat.order))
	for _, id := range r.cat.order {
		out = append(out, r.cat.sheets[id])
	}
	return out
}

// Template returns the template with the given compound key, or nil.
func (r *Renderer) Template(key TemplateKey) *AnimationTemplate {
	return r.cat.templates[key]
}

// FindTemplate resolves a template id: "sheet/tag" first, then a bare tag
// name, which resolves to the most recently registered sheet defining it.
func (r *Renderer) FindTemplate(id string) *AnimationTemplate {
	return r.cat.lookup(id)
}

// Templates returns every template in sheet registration order.
func (r *Renderer) Templates() []*AnimationTemplate {
	var out []*AnimationTemplate
	for _, id := range r.cat.order {
		out = append(out, r.cat.bySheet[id]...)
	}
	return out
}

// CreateAnimation returns a new player for the template id starting at now,
// or nil when no such template is registered yet.
func (r *Renderer) CreateAnimation(id string, now float64, loop bool) *Animation {
	t := r.cat.lookup(id)
	if t == nil {
		return nil
	}
	return NewAnimation(t, now, loop)
}

// --- Drawing ---

// SetTarget replaces the drawing surface.
func (r *Renderer) SetTarget(s Surface) { r.target = s }

// Target returns the current drawing surface.
func (r *Renderer) Target() Surface { return r.target }

// Clear clears the drawing surface.
func (r *Renderer) Clear() {
	if r.target != nil {
		r.target.Clear()
	}
}

// Size returns the drawing surface size in pixels.
func (r *Renderer) Size() (int, int) {
	if r.target == nil {
		return 0, 0
	}
	b := r.target.Bounds()
	return b.Dx(), b.Dy()
}

// DrawSprite blits a sprite centred on pos (world units, multiplied by the
// sprite scale) rotated by rotDeg degrees. Unknown ids are errors; an
// unloaded sheet image draws nothing.
func (r *Renderer) DrawSprite(sheetID, spriteID string, pos Vec2, rotDeg float64) error {
	sheet, ok := r.cat.sheets[sheetID]
	if !ok {
		return &UnknownSheetError{Sheet: sheetID}
	}
	sp, ok := sheet.Sprite(spriteID)
	if !ok {
		return &UnknownSpriteError{Sheet: sheetID, Sprite: spriteID, Index: -1}
	}
	r.blit(sheet, sp, pos, rotDeg)
	return nil
}

// DrawSheetFrame blits the sprite at a position in atlas order. It is used
// for background tiles, which address frames by index rather than by tag.
func (r *Renderer) DrawSheetFrame(sheetID string, index int, pos Vec2, rotDeg float64) error {
	sheet, ok := r.cat.sheets[sheetID]
	if !ok {
		return &UnknownSheetError{Sheet: sheetID}
	}
	sp, ok := sheet.SpriteAt(index)
	if !ok {
		return &UnknownSpriteError{Sheet: sheetID, Index: index}
	}
	r.blit(sheet, sp, pos, rotDeg)
	return nil
}

// DrawAnimation resolves the frame showing at now and draws it. A nil or
// finished animation draws nothing.
func (r *Renderer) DrawAnimation(a *Animation, now float64, pos Vec2, rotDeg float64) error {
	if a == nil {
		return nil
	}
	f, ok := a.Frame(now)
	if !ok {
		r.stats.EmptyFrames++
		return nil
	}
	t := a.Template()
	if t.sheet == nil {
		if err := r.DrawSprite(t.SheetID, f.SpriteID, pos, rotDeg); err != nil {
			return fmt.Errorf("shoal: animation %q: %w", t.ID, err)
		}
		return nil
	}
	sp, ok := t.sheet.Sprite(f.SpriteID)
	if !ok {
		return fmt.Errorf("shoal: animation %q: %w", t.ID,
			&UnknownSpriteError{Sheet: t.SheetID, Sprite: f.SpriteID, Index: -1})
	}
	r.blit(t.sheet, sp, pos, rotDeg)
	return nil
}

// sheetImage returns the sheet's image. A sheet replaced by a reload before
// its image loaded borrows the image of the sheet registered under its id.
func (r *Renderer) sheetImage(sheet *SpriteSheet) *ebiten.Image {
	if sheet.image != nil {
		return sheet.image
	}
	if cur, ok := r.cat.sheets[sheet.ID]; ok {
		return cur.image
	}
	return nil
}

func (r *Renderer) blit(sheet *SpriteSheet, sp Sprite, pos Vec2, rotDeg float64) {
	img := r.sheetImage(sheet)
	if img == nil || r.target == nil {
		r.stats.SkippedDraws++
		if r.debug {
			r.logger.Debug("draw skipped, sheet not ready", "sheet", sheet.ID, "sprite", sp.ID)
		}
		return
	}

	// Centre on the untrimmed source so trimmed frames keep their placement.
	var local ebiten.GeoM
	local.Translate(
		float64(sp.SpriteSourceSize.Min.X)-float64(sp.SourceW)/2,
		float64(sp.SpriteSourceSize.Min.Y)-float64(sp.SourceH)/2,
	)
	local.Rotate(degToRad(rotDeg))
	local.Scale(r.spriteScale, r.spriteScale)
	local.Translate(pos.X*r.spriteScale, pos.Y*r.spriteScale)
	local.Concat(r.top())

	if r.debugBounds {
		r.drawBounds(sp, local)
	}

	r.op = ebiten.DrawImageOptions{}
	r.op.GeoM = local
	r.op.Filter = ebiten.FilterNearest
	r.target.DrawImage(img.SubImage(sp.Frame).(*ebiten.Image), &r.op)
	r.stats.DrawCalls++
}

func (r *Renderer) drawBounds(sp Sprite, local ebiten.GeoM) {
	var g ebiten.GeoM
	g.Scale(float64(sp.Frame.Dx()), float64(sp.Frame.Dy()))
	g.Concat(local)
	r.op = ebiten.DrawImageOptions{}
	r.op.GeoM = g
	r.op.ColorScale.ScaleWithColor(colornames.Red)
	r.op.ColorScale.ScaleAlpha(0.4)
	r.target.DrawImage(ensureWhitePixel(), &r.op)
}

// --- Transform stack ---

// PushTransform pushes g composed with the current top of the stack.
// Every push must be paired with a PopTransform.
func (r *Renderer) PushTransform(g ebiten.GeoM) {
	g.Concat(r.top())
	r.stack = append(r.stack, g)
}

// PushCamera pushes the camera's world-to-screen transform.
func (r *Renderer) PushCamera(cam *Camera) {
	if cam == nil {
		r.PushTransform(ebiten.GeoM{})
		return
	}
	r.PushTransform(cam.GeoM())
}

// PopTransform removes the most recent transform. Popping an empty stack is
// a no-op.
func (r *Renderer) PopTransform() {
	if n := len(r.stack); n > 0 {
		r.stack = r.stack[:n-1]
	}
}

// TransformDepth returns the number of pushed transforms.
func (r *Renderer) TransformDepth() int { return len(r.stack) }

func (r *Renderer) top() ebiten.GeoM {
	if n := len(r.stack); n > 0 {
		return r.stack[n-1]
	}
	return ebiten.GeoM{}
}

// --- Stats ---

// Stats returns counters accumulated since the last ResetStats.
func (r *Renderer) Stats() FrameStats { return r.stats }

// ResetStats zeroes the counters. Game calls it at the start of each Draw.
func (r *Renderer) ResetStats() { r.stats = FrameStats{} }
