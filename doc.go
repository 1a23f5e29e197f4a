// Package shoal is a sprite-sheet animation runtime for [Ebitengine].
//
// Shoal loads Aseprite atlases, derives animation templates from their frame
// tags, and draws entities through time-driven animation players onto a
// scrolling camera view.
//
// # Quick start
//
// Register sheets with a [Renderer], decode their images once, then build a
// [Scene] and run it:
//
//	r := shoal.NewRenderer(shoal.RendererConfig{Loader: shoal.FSImageLoader(os.DirFS("content"))})
//	if _, err := r.RegisterAtlas("shark", atlasJSON, "shark.png"); err != nil {
//		return err
//	}
//	if err := r.LoadImages(ctx); err != nil {
//		return err
//	}
//
//	scene := shoal.NewScene(shoal.SceneConfig{Renderer: r, Camera: shoal.NewCamera(shoal.Vec2{}, 1)})
//	shark := shoal.NewEntity("shark", shoal.Vec2{X: 40, Y: 30})
//	shark.Sprite = shoal.NewAnimatedSprite("idle", true,
//		shoal.Clip{Name: "idle", Template: "shark/shark-idle"})
//	scene.Init(0)
//	scene.AddEntity(shark)
//
//	shoal.Run(shoal.NewGame(shoal.GameConfig{Scene: scene}), shoal.RunConfig{Title: "Shoal"})
//
// Games driven by a content manifest use [LoadConfig] and [LoadContent]
// instead, which register every sheet, compile entity scripts and build
// entities from named definitions.
//
// # Sheets and templates
//
// [ParseSpriteSheet] reads the hash or array JSON export. Frame order follows
// the document because frame tags address sprites by position. Each tag
// becomes an [AnimationTemplate] keyed by [TemplateKey]; its id is
// "sheet/tag". Lookups by bare tag name also work and resolve to the most
// recently registered sheet defining that tag.
//
// # Animation players
//
// An [Animation] maps a time to a frame. Frame intervals are half-open.
// A non-looping player expires once its run time passes the template's total
// duration and draws nothing from then on; a looping player restarts.
//
// # Entities and scenes
//
// Entities are composed, not subclassed: an [AnimatedSprite] component holds
// the players, [Behavior] values pick clips each tick, and [TweenGroup]
// values (via [gween]) move them. A [Scene] updates entities in insertion
// order and defers removals so an entity removed during an update is not
// rendered in that tick.
//
// # Errors
//
// Broken content fails fast with typed errors ([DuplicateSpriteIDError],
// [MissingTagRangeError], [MissingAnimationError]); draw calls naming unknown
// sheets or sprites return [UnknownSheetError] or [UnknownSpriteError].
// Conditions that resolve themselves, such as a sheet image still loading or
// an expired animation, draw nothing and return no error.
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
package shoal
