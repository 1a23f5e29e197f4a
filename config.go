package shoal

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config is the content manifest: display settings, the sheets to register,
// the entity definitions built from them and the level to load.
type Config struct {
	Display    DisplayConfig      `yaml:"display"`
	Camera     CameraConfig       `yaml:"camera"`
	Debug      DebugConfig        `yaml:"debug"`
	Assets     []AssetConfig      `yaml:"assets"`
	Entities   []EntityConfig     `yaml:"entities"`
	Background []BackgroundConfig `yaml:"background"`
	// Level is a CSV file of entity placements, relative to the content root.
	Level string `yaml:"level"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// DisplayConfig holds window settings.
type DisplayConfig struct {
	Title       string  `yaml:"title"`
	Width       int     `yaml:"width"`
	Height      int     `yaml:"height"`
	SpriteScale float64 `yaml:"sprite_scale"` // multiplies sprite positions and sizes
}

// CameraConfig holds the initial camera.
type CameraConfig struct {
	X       float64 `yaml:"x"`
	Y       float64 `yaml:"y"`
	Scale   float64 `yaml:"scale"`
	OffsetX float64 `yaml:"offset_x"` // screen-space, applied after scaling
	OffsetY float64 `yaml:"offset_y"`
}

// DebugConfig holds diagnostics toggles.
type DebugConfig struct {
	Enabled       bool    `yaml:"enabled"`
	RenderBounds  bool    `yaml:"render_bounds"`
	Overlay       bool    `yaml:"overlay"`
	StatsInterval float64 `yaml:"stats_interval"` // seconds between stats log lines
}

// AssetConfig names a sprite sheet: its atlas JSON and backing image.
type AssetConfig struct {
	Name  string `yaml:"name"`
	Atlas string `yaml:"atlas"`
	Image string `yaml:"image"` // empty = meta.image from the atlas
}

// EntityConfig defines a kind of entity. Atlas and Image, when set, register
// a sheet named after the entity so content can keep one atlas per entity.
type EntityConfig struct {
	Name       string         `yaml:"name"`
	Atlas      string         `yaml:"atlas"`
	Image      string         `yaml:"image"`
	Loop       bool           `yaml:"loop"`
	Initial    string         `yaml:"initial"`
	Clips      []ClipConfig   `yaml:"clips"`
	Behavior   BehaviorConfig `yaml:"behavior"`
	Attributes map[string]any `yaml:"attributes"`
}

// ClipConfig binds a clip name to a template id.
type ClipConfig struct {
	Name     string `yaml:"name"`
	Template string `yaml:"template"`
	Optional bool   `yaml:"optional"`
}

// Behavior kinds.
const (
	BehaviorNone        = "none"
	BehaviorDirectional = "directional"
	BehaviorScript      = "script"
)

// BehaviorConfig selects the entity's behavior.
type BehaviorConfig struct {
	Kind   string `yaml:"kind"`
	Script string `yaml:"script"` // tengo source path for kind "script"
}

// BackgroundConfig describes one tiled background layer.
type BackgroundConfig struct {
	Sheet        string  `yaml:"sheet"`
	FramePattern string  `yaml:"frame_pattern"` // checker | fixed
	Frame        int     `yaml:"frame"`
	TileSize     float64 `yaml:"tile_size"`
	Cols         int     `yaml:"cols"`
	Rows         int     `yaml:"rows"`
	X            float64 `yaml:"x"` // world position of the first tile
	Y            float64 `yaml:"y"`
}

// DerivedConfig holds values computed from the loaded config.
type DerivedConfig struct {
	EntityIndex map[string]int // name -> index into Entities
	AssetIndex  map[string]int // name -> index into Assets
}

// LoadConfig reads the manifest at path from fsys over the built-in
// defaults. An empty path returns the defaults.
func LoadConfig(fsys fs.FS, path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := fs.ReadFile(fsys, cleanAssetPath(path))
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()
	return cfg, nil
}

// Validate checks the config for content errors.
func (c *Config) Validate() error {
	var errs []error
	if c.Display.SpriteScale <= 0 {
		errs = append(errs, fmt.Errorf("display.sprite_scale must be positive, got %v", c.Display.SpriteScale))
	}
	if c.Camera.Scale <= 0 {
		errs = append(errs, fmt.Errorf("camera.scale must be positive, got %v", c.Camera.Scale))
	}

	assets := make(map[string]bool, len(c.Assets))
	for i, a := range c.Assets {
		switch {
		case a.Name == "":
			errs = append(errs, fmt.Errorf("assets[%d]: missing name", i))
		case assets[a.Name]:
			errs = append(errs, fmt.Errorf("assets[%d]: duplicate name %q", i, a.Name))
		case a.Atlas == "":
			errs = append(errs, fmt.Errorf("asset %q: missing atlas", a.Name))
		case strings.Contains(a.Name, "/"):
			errs = append(errs, fmt.Errorf("asset %q: name must not contain '/'", a.Name))
		}
		assets[a.Name] = true
	}

	entities := make(map[string]bool, len(c.Entities))
	for i, e := range c.Entities {
		if e.Name == "" {
			errs = append(errs, fmt.Errorf("entities[%d]: missing name", i))
			continue
		}
		if entities[e.Name] {
			errs = append(errs, fmt.Errorf("entities[%d]: duplicate name %q", i, e.Name))
		}
		entities[e.Name] = true
		if e.Atlas != "" && strings.Contains(e.Name, "/") {
			errs = append(errs, fmt.Errorf("entity %q: name must not contain '/' when it has an atlas", e.Name))
		}
		if e.Atlas != "" && assets[e.Name] {
			errs = append(errs, fmt.Errorf("entity %q: atlas clashes with asset of the same name", e.Name))
		}
		if len(e.Clips) == 0 {
			errs = append(errs, fmt.Errorf("entity %q: no clips", e.Name))
		}
		found := false
		for _, cl := range e.Clips {
			if cl.Name == "" || cl.Template == "" {
				errs = append(errs, fmt.Errorf("entity %q: clip needs name and template", e.Name))
			}
			if cl.Name == e.Initial {
				found = true
			}
		}
		if e.Initial != "" && !found {
			errs = append(errs, fmt.Errorf("entity %q: initial clip %q not defined", e.Name, e.Initial))
		}
		switch e.Behavior.Kind {
		case "", BehaviorNone, BehaviorDirectional:
		case BehaviorScript:
			if e.Behavior.Script == "" {
				errs = append(errs, fmt.Errorf("entity %q: script behavior without script", e.Name))
			}
		default:
			errs = append(errs, fmt.Errorf("entity %q: unknown behavior kind %q", e.Name, e.Behavior.Kind))
		}
	}

	for i, b := range c.Background {
		if b.Sheet == "" {
			errs = append(errs, fmt.Errorf("background[%d]: missing sheet", i))
		}
		switch b.FramePattern {
		case "", PatternChecker, PatternFixed:
		default:
			errs = append(errs, fmt.Errorf("background[%d]: unknown frame_pattern %q", i, b.FramePattern))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c *Config) computeDerived() {
	c.Derived.EntityIndex = make(map[string]int, len(c.Entities))
	for i, e := range c.Entities {
		c.Derived.EntityIndex[e.Name] = i
	}
	c.Derived.AssetIndex = make(map[string]int, len(c.Assets))
	for i, a := range c.Assets {
		c.Derived.AssetIndex[a.Name] = i
	}
}

// Entity returns the definition with the given name.
func (c *Config) Entity(name string) (EntityConfig, bool) {
	i, ok := c.Derived.EntityIndex[name]
	if !ok {
		return EntityConfig{}, false
	}
	return c.Entities[i], true
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
