package shoal

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
)

// ContentConfig configures LoadContent.
type ContentConfig struct {
	// FS is the content root. Atlas, image, script and level paths in the
	// manifest are relative to it.
	FS       fs.FS
	Config   *Config
	Renderer *Renderer
	Logger   *slog.Logger
}

// Content is loaded game content: registered sheets plus the entity
// definitions that build entities from them.
type Content struct {
	fsys     fs.FS
	cfg      *Config
	renderer *Renderer
	logger   *slog.Logger

	scripts map[string]*ScriptBehavior
	// atlases maps a cleaned atlas path to the sheet ids registered from it.
	atlases map[string][]string
}

// LoadContent registers every sheet the manifest names, compiles entity
// scripts and decodes the sheet images. Content errors are returned as-is so
// callers can match them with errors.As.
func LoadContent(ctx context.Context, cc ContentConfig) (*Content, error) {
	if cc.Config == nil || cc.Renderer == nil || cc.FS == nil {
		return nil, fmt.Errorf("shoal: LoadContent: FS, Config and Renderer are required")
	}
	logger := cc.Logger
	if logger == nil {
		logger = slog.Default()
	}
	c := &Content{
		fsys:     cc.FS,
		cfg:      cc.Config,
		renderer: cc.Renderer,
		logger:   logger,
		scripts:  make(map[string]*ScriptBehavior),
		atlases:  make(map[string][]string),
	}

	for _, a := range c.cfg.Assets {
		if err := c.registerAtlas(a.Name, a.Atlas, a.Image); err != nil {
			return nil, err
		}
	}
	for _, e := range c.cfg.Entities {
		if e.Atlas != "" {
			if err := c.registerAtlas(e.Name, e.Atlas, e.Image); err != nil {
				return nil, err
			}
		}
		if e.Behavior.Kind == BehaviorScript {
			if _, err := c.script(e.Behavior.Script); err != nil {
				return nil, err
			}
		}
	}

	if err := c.renderer.LoadImages(ctx); err != nil {
		return nil, err
	}
	logger.Info("content loaded",
		"sheets", len(c.renderer.Sheets()),
		"templates", len(c.renderer.Templates()),
		"entities", len(c.cfg.Entities))
	return c, nil
}

func (c *Content) registerAtlas(id, atlasPath, imagePath string) error {
	p := cleanAssetPath(atlasPath)
	data, err := fs.ReadFile(c.fsys, p)
	if err != nil {
		return fmt.Errorf("shoal: sheet %q: %w", id, err)
	}
	sheet, err := ParseSpriteSheet(id, data, imagePath)
	if err != nil {
		return err
	}
	if imagePath == "" {
		// meta.image is relative to the atlas file.
		sheet.ImagePath = path.Join(path.Dir(p), sheet.Meta.Image)
	}
	if err := c.renderer.RegisterSheet(sheet); err != nil {
		return err
	}
	c.atlases[p] = append(c.atlases[p], id)
	c.logger.Debug("sheet registered", "sheet", id, "atlas", p, "sprites", sheet.Len())
	return nil
}

func (c *Content) script(p string) (*ScriptBehavior, error) {
	p = cleanAssetPath(p)
	if s, ok := c.scripts[p]; ok {
		return s, nil
	}
	src, err := fs.ReadFile(c.fsys, p)
	if err != nil {
		return nil, fmt.Errorf("shoal: script %q: %w", p, err)
	}
	s, err := CompileScript(p, src)
	if err != nil {
		return nil, err
	}
	c.scripts[p] = s
	return s, nil
}

// Config returns the manifest the content was loaded from.
func (c *Content) Config() *Config { return c.cfg }

// Renderer returns the renderer the content was registered into.
func (c *Content) Renderer() *Renderer { return c.renderer }

// FS returns the content root.
func (c *Content) FS() fs.FS { return c.fsys }

// SheetsForAtlas returns the sheet ids registered from the atlas file.
func (c *Content) SheetsForAtlas(atlasPath string) []string {
	return c.atlases[cleanAssetPath(atlasPath)]
}

// AtlasPaths returns every atlas file the content was registered from.
func (c *Content) AtlasPaths() []string {
	out := make([]string, 0, len(c.atlases))
	for p := range c.atlases {
		out = append(out, p)
	}
	return out
}

// ReloadAtlas re-reads an atlas file and reloads every sheet registered
// from it.
func (c *Content) ReloadAtlas(atlasPath string) error {
	p := cleanAssetPath(atlasPath)
	ids := c.atlases[p]
	if len(ids) == 0 {
		return nil
	}
	data, err := fs.ReadFile(c.fsys, p)
	if err != nil {
		return fmt.Errorf("shoal: reload %q: %w", p, err)
	}
	for _, id := range ids {
		if err := c.renderer.ReloadSheet(id, data); err != nil {
			return err
		}
	}
	return nil
}

// DefaultAttributes returns a copy of the attributes declared for the
// entity definition, or an empty set.
func (c *Content) DefaultAttributes(name string) Attributes {
	def, ok := c.cfg.Entity(name)
	if !ok {
		return Attributes{}
	}
	return Attributes(def.Attributes).Clone()
}

// NewEntity builds an uninitialized entity from the named definition. The
// entity gets its own copy of the default attributes and, for scripted
// behavior, its own script instance.
func (c *Content) NewEntity(name, id string, pos Vec2, rotation float64) (*Entity, error) {
	def, ok := c.cfg.Entity(name)
	if !ok {
		return nil, fmt.Errorf("shoal: no entity definition %q", name)
	}
	e := NewEntity(id, pos)
	e.Name = def.Name
	e.Rotation = rotation
	e.Attributes = Attributes(def.Attributes).Clone()

	clips := make([]Clip, len(def.Clips))
	for i, cl := range def.Clips {
		clips[i] = Clip{Name: cl.Name, Template: cl.Template, Optional: cl.Optional}
	}
	initial := def.Initial
	if initial == "" && len(clips) > 0 {
		initial = clips[0].Name
	}
	e.Sprite = NewAnimatedSprite(initial, def.Loop, clips...)

	switch def.Behavior.Kind {
	case BehaviorDirectional:
		e.AddBehavior(NewDirectionalBehavior())
	case BehaviorScript:
		s, err := c.script(def.Behavior.Script)
		if err != nil {
			return nil, err
		}
		e.AddBehavior(s.Clone())
	}
	return e, nil
}

// Camera returns a camera configured from the manifest.
func (c *Content) Camera() *Camera {
	cc := c.cfg.Camera
	cam := NewCamera(Vec2{X: cc.X, Y: cc.Y}, cc.Scale)
	cam.Offset = Vec2{X: cc.OffsetX, Y: cc.OffsetY}
	cam.Unit = c.renderer.SpriteScale()
	return cam
}

// Backgrounds returns the manifest's background layers.
func (c *Content) Backgrounds() []Background {
	out := make([]Background, 0, len(c.cfg.Background))
	for _, b := range c.cfg.Background {
		pattern := b.FramePattern
		if pattern == "" {
			pattern = PatternFixed
		}
		out = append(out, &TileBackground{
			Sheet:    b.Sheet,
			Pattern:  pattern,
			Frame:    b.Frame,
			TileSize: b.TileSize,
			Cols:     b.Cols,
			Rows:     b.Rows,
			Origin:   Vec2{X: b.X, Y: b.Y},
		})
	}
	return out
}

// Spawn builds and adds an entity for every placement, in order. It stops at
// the first error.
func (c *Content) Spawn(s *Scene, placements []Placement) error {
	for i, p := range placements {
		e, err := c.NewEntity(p.Entity, p.ID, Vec2{X: p.X, Y: p.Y}, p.Rotation)
		if err != nil {
			return fmt.Errorf("placement %d: %w", i+1, err)
		}
		if err := s.AddEntity(e); err != nil {
			return fmt.Errorf("placement %d: %w", i+1, err)
		}
	}
	return nil
}

// LoadLevel reads the manifest's level file, or returns nil when none is set.
func (c *Content) LoadLevel() ([]Placement, error) {
	if c.cfg.Level == "" {
		return nil, nil
	}
	return LoadPlacements(c.fsys, c.cfg.Level)
}
