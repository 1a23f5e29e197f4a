package shoal

import (
	"fmt"
)

// EntityState is the lifecycle stage of an Entity.
type EntityState uint8

const (
	EntityUninitialized EntityState = iota
	EntityInitialized
	EntityPendingRemoval
	EntityRemoved
)

func (s EntityState) String() string {
	switch s {
	case EntityUninitialized:
		return "uninitialized"
	case EntityInitialized:
		return "initialized"
	case EntityPendingRemoval:
		return "pending-removal"
	case EntityRemoved:
		return "removed"
	default:
		return fmt.Sprintf("EntityState(%d)", uint8(s))
	}
}

// Behavior is per-tick entity logic. Behaviors typically switch the active
// animation clip; they run in the order they were attached.
type Behavior interface {
	Update(e *Entity, dt float64, events []Event) error
}

// BehaviorFunc adapts a function to Behavior.
type BehaviorFunc func(e *Entity, dt float64, events []Event) error

func (f BehaviorFunc) Update(e *Entity, dt float64, events []Event) error {
	return f(e, dt, events)
}

// Entity is a positioned, optionally animated game object owned by one Scene.
// Capabilities are attached as components rather than by subtyping: Sprite
// for animation, Behaviors for per-tick logic, Tweens for scripted motion.
type Entity struct {
	// ID identifies the entity for removal. It need not be unique.
	ID string
	// Name is the definition the entity was built from, if any.
	Name string

	Position Vec2
	// Rotation is in degrees.
	Rotation float64
	// Velocity and AngularVelocity are read by behaviors to pick animations.
	// They are never integrated into Position or Rotation.
	Velocity        Vec2
	AngularVelocity float64

	Attributes Attributes

	Sprite    *AnimatedSprite
	Behaviors []Behavior
	// Tweens run before behaviors each tick and are dropped once done.
	Tweens []*TweenGroup

	state EntityState
	scene *Scene
	slot  int
}

// NewEntity creates an uninitialized entity at pos.
func NewEntity(id string, pos Vec2) *Entity {
	return &Entity{ID: id, Position: pos, Attributes: Attributes{}}
}

// State returns the entity's lifecycle stage.
func (e *Entity) State() EntityState { return e.state }

// Scene returns the scene that owns the entity, or nil.
func (e *Entity) Scene() *Scene { return e.scene }

// AddBehavior appends a behavior and returns the entity for chaining.
func (e *Entity) AddBehavior(b Behavior) *Entity {
	e.Behaviors = append(e.Behaviors, b)
	return e
}

// Tween attaches a tween group advanced by Update.
func (e *Entity) Tween(g *TweenGroup) {
	e.Tweens = append(e.Tweens, g)
}

// Init resolves the entity's animation clips. A required clip whose template
// is not registered fails with *MissingAnimationError; optional clips are
// skipped. Init on an initialized entity is a no-op.
func (e *Entity) Init(r *Renderer, now float64) error {
	if e.state != EntityUninitialized {
		return nil
	}
	if e.Sprite != nil {
		if err := e.Sprite.init(e.label(), r, now); err != nil {
			return err
		}
	}
	e.state = EntityInitialized
	return nil
}

// Update runs tweens, then behaviors in order. The first behavior error is
// returned and the remaining behaviors are skipped.
func (e *Entity) Update(dt float64, events []Event) error {
	if e.state != EntityInitialized {
		return nil
	}
	if len(e.Tweens) > 0 {
		live := e.Tweens[:0]
		for _, g := range e.Tweens {
			g.Update(float32(dt))
			if !g.Done {
				live = append(live, g)
			}
		}
		clear(e.Tweens[len(live):])
		e.Tweens = live
	}
	for _, b := range e.Behaviors {
		if err := b.Update(e, dt, events); err != nil {
			return fmt.Errorf("shoal: entity %q: %w", e.label(), err)
		}
	}
	return nil
}

// Render draws the active clip's current frame at the entity's position and
// rotation. Drawing nothing is valid.
func (e *Entity) Render(r *Renderer, now float64) error {
	if e.Sprite == nil {
		return nil
	}
	return e.Sprite.render(r, now, e.Position, e.Rotation)
}

func (e *Entity) label() string {
	if e.ID != "" {
		return e.ID
	}
	return e.Name
}
