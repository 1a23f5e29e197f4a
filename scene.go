package shoal

import (
	"errors"
	"fmt"
	"log/slog"
)

// Background draws world-space content under the entities. It is called
// inside the camera transform.
type Background interface {
	Render(r *Renderer, now float64) error
}

// LifecycleKind identifies a LifecycleEvent.
type LifecycleKind uint8

const (
	LifecycleAdded LifecycleKind = iota
	LifecycleRemoved
)

func (k LifecycleKind) String() string {
	switch k {
	case LifecycleAdded:
		return "added"
	case LifecycleRemoved:
		return "removed"
	default:
		return fmt.Sprintf("LifecycleKind(%d)", uint8(k))
	}
}

// LifecycleEvent reports an entity entering or leaving a scene.
type LifecycleEvent struct {
	Kind   LifecycleKind
	Entity *Entity
	// Time is the scene clock when the change took effect.
	Time float64
}

// EntityStore mirrors scene membership somewhere else, for example an ECS
// world. See the ecs subpackage.
type EntityStore interface {
	Publish(ev LifecycleEvent)
}

// SceneConfig configures a Scene.
type SceneConfig struct {
	Renderer *Renderer
	// Camera may be nil, in which case world space is screen space.
	Camera *Camera
	Logger *slog.Logger
	// Setup runs once from Init, typically to add the initial entities.
	Setup func(*Scene) error
	// Background layers are drawn in order before the entities.
	Background []Background
}

// Scene owns an ordered collection of entities. Update and render order is
// insertion order. Entities live in stable slots: removal clears a slot and
// the slots are compacted at the start of the next Update, so iteration order
// stays deterministic and per-tick removal cost is bounded.
type Scene struct {
	renderer   *Renderer
	camera     *Camera
	logger     *slog.Logger
	setup      func(*Scene) error
	background []Background
	store      EntityStore

	slots   []*Entity
	holes   int
	pending []*Entity
	now     float64
	ready   bool
}

// NewScene creates a scene. Call Init before the first Update.
func NewScene(cfg SceneConfig) *Scene {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Scene{
		renderer:   cfg.Renderer,
		camera:     cfg.Camera,
		logger:     logger,
		setup:      cfg.Setup,
		background: cfg.Background,
	}
}

// Renderer returns the scene's renderer.
func (s *Scene) Renderer() *Renderer { return s.renderer }

// Camera returns the scene's camera, or nil.
func (s *Scene) Camera() *Camera { return s.camera }

// SetCamera replaces the camera.
func (s *Scene) SetCamera(c *Camera) { s.camera = c }

// AddBackground appends a background layer.
func (s *Scene) AddBackground(b Background) { s.background = append(s.background, b) }

// SetEntityStore attaches a store that receives lifecycle events for every
// subsequent add and removal. Pass nil to detach.
func (s *Scene) SetEntityStore(store EntityStore) { s.store = store }

// Now returns the scene clock in seconds.
func (s *Scene) Now() float64 { return s.now }

// Init sets the scene clock and runs the Setup hook once.
func (s *Scene) Init(now float64) error {
	if s.ready {
		return nil
	}
	if s.renderer == nil {
		return errors.New("shoal: scene has no renderer")
	}
	s.now = now
	s.ready = true
	if s.setup != nil {
		if err := s.setup(s); err != nil {
			return fmt.Errorf("shoal: scene setup: %w", err)
		}
	}
	s.logger.Debug("scene initialized", "entities", s.Len())
	return nil
}

// AddEntity initializes e and appends it. If initialization fails the
// entity is not added. Entities added during Update are first updated on the
// next tick but are rendered this tick.
func (s *Scene) AddEntity(e *Entity) error {
	if e == nil {
		return errors.New("shoal: AddEntity: nil entity")
	}
	if s.renderer == nil {
		return errors.New("shoal: scene has no renderer")
	}
	if e.scene != nil && e.state != EntityRemoved {
		return fmt.Errorf("shoal: entity %q already belongs to a scene", e.label())
	}
	if e.state == EntityRemoved {
		e.state = EntityUninitialized
	}
	if err := e.Init(s.renderer, s.now); err != nil {
		return err
	}
	e.scene = s
	e.slot = len(s.slots)
	s.slots = append(s.slots, e)
	s.publish(LifecycleAdded, e)
	return nil
}

// RemoveEntity marks e for removal. It stops receiving updates immediately
// and is dropped before the next render.
func (s *Scene) RemoveEntity(e *Entity) {
	if e == nil || e.scene != s || e.state != EntityInitialized {
		return
	}
	e.state = EntityPendingRemoval
	s.pending = append(s.pending, e)
}

// RemoveEntityByID marks every entity with the given id and returns how many
// were marked.
func (s *Scene) RemoveEntityByID(id string) int {
	n := 0
	for _, e := range s.slots {
		if e != nil && e.ID == id && e.state == EntityInitialized {
			s.RemoveEntity(e)
			n++
		}
	}
	return n
}

// Update drops entities marked for removal, then updates the survivors in
// order with dt and the events queued since the last tick. Entities removed
// during this pass are dropped before returning, so Render in the same tick
// no longer sees them. The first entity error is returned after the pass.
func (s *Scene) Update(dt float64, events []Event) error {
	s.now += dt
	s.compact()
	s.applyPending()

	var firstErr error
	n := len(s.slots)
	for i := 0; i < n; i++ {
		e := s.slots[i]
		if e == nil || e.state != EntityInitialized {
			continue
		}
		if err := e.Update(dt, events); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	s.applyPending()
	return firstErr
}

// Render pushes the camera transform, draws the background layers and then
// every entity in scene order. The transform is popped on every return path.
func (s *Scene) Render(now float64) error {
	r := s.renderer
	if r == nil {
		return errors.New("shoal: scene has no renderer")
	}
	s.now = now

	r.PushCamera(s.camera)
	defer r.PopTransform()

	for _, b := range s.background {
		if err := b.Render(r, now); err != nil {
			return fmt.Errorf("shoal: background: %w", err)
		}
	}
	for _, e := range s.slots {
		if e == nil || e.state == EntityRemoved {
			continue
		}
		if err := e.Render(r, now); err != nil {
			return fmt.Errorf("shoal: entity %q: %w", e.label(), err)
		}
	}
	return nil
}

// Entities returns the entities not yet removed, in scene order.
func (s *Scene) Entities() []*Entity {
	out := make([]*Entity, 0, len(s.slots)-s.holes)
	for _, e := range s.slots {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of entities not yet removed.
func (s *Scene) Len() int {
	return len(s.slots) - s.holes
}

// applyPending clears the slots of entities marked for removal.
func (s *Scene) applyPending() {
	if len(s.pending) == 0 {
		return
	}
	for _, e := range s.pending {
		if s.slots[e.slot] == e {
			s.slots[e.slot] = nil
			s.holes++
		}
		e.state = EntityRemoved
		e.scene = nil
		s.publish(LifecycleRemoved, e)
	}
	clear(s.pending)
	s.pending = s.pending[:0]
}

// compact closes the holes left by removals, keeping survivor order.
func (s *Scene) compact() {
	if s.holes == 0 {
		return
	}
	live := s.slots[:0]
	for _, e := range s.slots {
		if e != nil {
			e.slot = len(live)
			live = append(live, e)
		}
	}
	clear(s.slots[len(live):])
	s.slots = live
	s.holes = 0
}

func (s *Scene) publish(kind LifecycleKind, e *Entity) {
	if s.store != nil {
		s.store.Publish(LifecycleEvent{Kind: kind, Entity: e, Time: s.now})
	}
}
