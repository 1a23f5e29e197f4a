package shoal

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io/fs"
	"testing"
	"testing/fstest"
)

const contentManifest = `
display:
  sprite_scale: 2
camera:
  x: 4
  offset_x: 16
assets:
  - name: tiles
    atlas: sprites/grass.json
entities:
  - name: shark
    atlas: sprites/shark.json
    loop: true
    clips:
      - {name: swim, template: shark/swim}
      - {name: idle, template: shark/idle}
      - {name: bite, template: shark/bite, optional: true}
    behavior:
      kind: directional
    attributes:
      speed: 48
  - name: kelp
    loop: true
    initial: idle
    clips:
      - {name: idle, template: tiles/idle}
    behavior:
      kind: script
      script: scripts/kelp.tengo
background:
  - sheet: tiles
    frame_pattern: checker
    tile_size: 8
    cols: 2
    rows: 1
level: level.csv
`

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func contentFS(t *testing.T) fstest.MapFS {
	t.Helper()
	return fstest.MapFS{
		"manifest.yaml":      {Data: []byte(contentManifest)},
		"sprites/shark.json": {Data: []byte(sharkAtlasJSON)},
		"sprites/shark.png":  {Data: pngBytes(t, 64, 16)},
		"sprites/grass.json": {Data: []byte(grassAtlasJSON)},
		"sprites/grass.png":  {Data: pngBytes(t, 16, 8)},
		"scripts/kelp.tengo": {Data: []byte(`rotation = rotation + 1`)},
		"level.csv":          {Data: []byte("entity,id,x,y,rotation\nkelp,k1,1,2,0\nshark,player,5,6,0\nkelp,k2,3,4,0\n")},
	}
}

func loadTestContent(t *testing.T, fsys fs.FS) *Content {
	t.Helper()
	cfg, err := LoadConfig(fsys, "manifest.yaml")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	r := NewRenderer(RendererConfig{
		Target:      newRecordingSurface(),
		SpriteScale: cfg.Display.SpriteScale,
		Loader:      FSImageLoader(fsys),
	})
	c, err := LoadContent(context.Background(), ContentConfig{FS: fsys, Config: cfg, Renderer: r})
	if err != nil {
		t.Fatalf("LoadContent: %v", err)
	}
	return c
}

func TestLoadContent(t *testing.T) {
	c := loadTestContent(t, contentFS(t))
	r := c.Renderer()
	sheets := r.Sheets()
	if len(sheets) != 2 {
		t.Fatalf("sheets = %d, want 2", len(sheets))
	}
	for _, s := range sheets {
		if !s.Loaded() {
			t.Errorf("sheet %q not loaded", s.ID)
		}
	}
	shark, _ := r.Sheet("shark")
	if shark.ImagePath != "sprites/shark.png" {
		t.Errorf("ImagePath = %q, want sprites/shark.png", shark.ImagePath)
	}
	if got := c.SheetsForAtlas("/assets/sprites/shark.json"); len(got) != 1 || got[0] != "shark" {
		t.Errorf("SheetsForAtlas = %v", got)
	}
	if len(c.AtlasPaths()) != 2 {
		t.Errorf("AtlasPaths = %v", c.AtlasPaths())
	}
	if c.Config() == nil || c.FS() == nil {
		t.Error("accessors returned nil")
	}
}

func TestLoadContent_RequiresInputs(t *testing.T) {
	if _, err := LoadContent(context.Background(), ContentConfig{}); err == nil {
		t.Error("expected error for empty ContentConfig")
	}
}

func TestLoadContent_MissingAtlas(t *testing.T) {
	fsys := contentFS(t)
	delete(fsys, "sprites/grass.json")
	cfg, err := LoadConfig(fsys, "manifest.yaml")
	if err != nil {
		t.Fatal(err)
	}
	r := NewRenderer(RendererConfig{Loader: FSImageLoader(fsys)})
	_, err = LoadContent(context.Background(), ContentConfig{FS: fsys, Config: cfg, Renderer: r})
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("LoadContent = %v, want fs.ErrNotExist", err)
	}
}

func TestLoadContent_MissingImage(t *testing.T) {
	fsys := contentFS(t)
	delete(fsys, "sprites/shark.png")
	cfg, _ := LoadConfig(fsys, "manifest.yaml")
	r := NewRenderer(RendererConfig{Loader: FSImageLoader(fsys)})
	_, err := LoadContent(context.Background(), ContentConfig{FS: fsys, Config: cfg, Renderer: r})
	if !errors.Is(err, ErrImageLoad) {
		t.Errorf("LoadContent = %v, want ErrImageLoad", err)
	}
}

func TestLoadContent_BadScript(t *testing.T) {
	fsys := contentFS(t)
	fsys["scripts/kelp.tengo"] = &fstest.MapFile{Data: []byte("rotation = = 1")}
	cfg, _ := LoadConfig(fsys, "manifest.yaml")
	r := NewRenderer(RendererConfig{Loader: FSImageLoader(fsys)})
	if _, err := LoadContent(context.Background(), ContentConfig{FS: fsys, Config: cfg, Renderer: r}); err == nil {
		t.Error("expected compile error")
	}
}

func TestContentNewEntity(t *testing.T) {
	c := loadTestContent(t, contentFS(t))
	e, err := c.NewEntity("shark", "player", Vec2{X: 5, Y: 6}, 30)
	if err != nil {
		t.Fatalf("NewEntity: %v", err)
	}
	if e.ID != "player" || e.Name != "shark" || e.Rotation != 30 {
		t.Errorf("entity = %s/%s rot %v", e.ID, e.Name, e.Rotation)
	}
	if e.Sprite.Initial != "swim" {
		t.Errorf("Initial = %q, want first clip", e.Sprite.Initial)
	}
	if len(e.Behaviors) != 1 {
		t.Fatalf("Behaviors = %d, want 1", len(e.Behaviors))
	}
	if _, ok := e.Behaviors[0].(*DirectionalBehavior); !ok {
		t.Errorf("behavior = %T, want *DirectionalBehavior", e.Behaviors[0])
	}

	e.Attributes["speed"] = 0
	if got := c.DefaultAttributes("shark").Float("speed", -1); got != 48 {
		t.Errorf("default speed = %v after mutating an entity, want 48", got)
	}
	if len(c.DefaultAttributes("nobody")) != 0 {
		t.Error("DefaultAttributes(nobody) not empty")
	}

	if err := e.Init(c.Renderer(), 0); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if e.Sprite.Has("bite") {
		t.Error("optional bite clip resolved")
	}
}

func TestContentNewEntity_Unknown(t *testing.T) {
	c := loadTestContent(t, contentFS(t))
	if _, err := c.NewEntity("octopus", "o", Vec2{}, 0); err == nil {
		t.Error("expected error for unknown definition")
	}
}

func TestContentNewEntity_ScriptPerEntity(t *testing.T) {
	c := loadTestContent(t, contentFS(t))
	a, _ := c.NewEntity("kelp", "a", Vec2{}, 0)
	b, _ := c.NewEntity("kelp", "b", Vec2{}, 0)
	sa, ok := a.Behaviors[0].(*ScriptBehavior)
	if !ok {
		t.Fatalf("behavior = %T, want *ScriptBehavior", a.Behaviors[0])
	}
	if sa == b.Behaviors[0] {
		t.Error("entities share a script instance")
	}
	if sa.Name() != "scripts/kelp.tengo" {
		t.Errorf("Name = %q", sa.Name())
	}
}

func TestContentSpawnLevel(t *testing.T) {
	c := loadTestContent(t, contentFS(t))
	placements, err := c.LoadLevel()
	if err != nil {
		t.Fatalf("LoadLevel: %v", err)
	}
	s := NewScene(SceneConfig{Renderer: c.Renderer(), Camera: c.Camera(), Background: c.Backgrounds()})
	if err := s.Init(0); err != nil {
		t.Fatal(err)
	}
	if err := c.Spawn(s, placements); err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	if got := ids(s.Entities()); !equalStrings(got, []string{"k1", "player", "k2"}) {
		t.Errorf("entities = %v", got)
	}
	if err := s.Update(0.1, nil); err != nil {
		t.Fatal(err)
	}
	if err := s.Render(s.Now()); err != nil {
		t.Fatal(err)
	}
	// Two background tiles plus three entities.
	if got := c.Renderer().Stats().DrawCalls; got != 5 {
		t.Errorf("DrawCalls = %d, want 5", got)
	}
}

func TestContentSpawn_UnknownEntity(t *testing.T) {
	c := loadTestContent(t, contentFS(t))
	s := NewScene(SceneConfig{Renderer: c.Renderer()})
	s.Init(0)
	err := c.Spawn(s, []Placement{{Entity: "kelp"}, {Entity: "octopus"}})
	if err == nil {
		t.Fatal("expected error")
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1 (spawned before the failure)", s.Len())
	}
}

func TestContentLoadLevel_None(t *testing.T) {
	fsys := contentFS(t)
	c := loadTestContent(t, fsys)
	c.cfg.Level = ""
	placements, err := c.LoadLevel()
	if err != nil || placements != nil {
		t.Errorf("LoadLevel = %v, %v, want nil, nil", placements, err)
	}
}

func TestContentCamera(t *testing.T) {
	c := loadTestContent(t, contentFS(t))
	cam := c.Camera()
	if cam.Unit != 2 {
		t.Errorf("Unit = %v, want sprite scale 2", cam.Unit)
	}
	if cam.Position.X != 4 || cam.Offset.X != 16 || cam.Scale != 1 {
		t.Errorf("camera = %+v", cam)
	}
}

func TestContentBackgrounds(t *testing.T) {
	c := loadTestContent(t, contentFS(t))
	bgs := c.Backgrounds()
	if len(bgs) != 1 {
		t.Fatalf("Backgrounds = %d, want 1", len(bgs))
	}
	tb, ok := bgs[0].(*TileBackground)
	if !ok {
		t.Fatalf("background = %T", bgs[0])
	}
	if tb.Sheet != "tiles" || tb.Pattern != PatternChecker || tb.Cols != 2 || tb.TileSize != 8 {
		t.Errorf("background = %+v", tb)
	}
}

func TestContentReloadAtlas(t *testing.T) {
	fsys := contentFS(t)
	c := loadTestContent(t, fsys)
	edited := bytes.Replace([]byte(sharkAtlasJSON), []byte(`"name": "idle"`), []byte(`"name": "rest"`), 1)
	fsys["sprites/shark.json"] = &fstest.MapFile{Data: edited}

	if err := c.ReloadAtlas("sprites/shark.json"); err != nil {
		t.Fatalf("ReloadAtlas: %v", err)
	}
	r := c.Renderer()
	if r.FindTemplate("shark/rest") == nil {
		t.Error("reloaded template shark/rest missing")
	}
	if r.FindTemplate("shark/idle") != nil {
		t.Error("renamed template shark/idle survived")
	}
	if s, _ := r.Sheet("shark"); !s.Loaded() {
		t.Error("reload dropped the image")
	}

	if err := c.ReloadAtlas("sprites/unknown.json"); err != nil {
		t.Errorf("ReloadAtlas(unknown) = %v, want nil", err)
	}
}

func TestContentReloadAtlas_BrokenKeepsCatalog(t *testing.T) {
	fsys := contentFS(t)
	c := loadTestContent(t, fsys)
	fsys["sprites/shark.json"] = &fstest.MapFile{Data: []byte(`{"frames": `)}
	if err := c.ReloadAtlas("sprites/shark.json"); err == nil {
		t.Error("expected error for a half-written atlas")
	}
	if c.Renderer().FindTemplate("shark/swim") == nil {
		t.Error("failed reload changed the catalog")
	}
}
