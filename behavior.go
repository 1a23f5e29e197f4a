package shoal

// Clip names used by DirectionalBehavior when its fields are left empty.
const (
	ClipIdle      = "idle"
	ClipLeftDown  = "left-down"
	ClipLeftUp    = "left-up"
	ClipRightDown = "right-down"
	ClipRightUp   = "right-up"
)

// idleSpeedSq is the squared speed below which an entity counts as idle.
const idleSpeedSq = 0.1

// DirectionalBehavior selects one of five clips from the sign of the entity's
// velocity. Screen y grows downwards, so a non-negative vy plays a "down"
// clip. Without an idle clip, idle falls back to the left-down clip.
type DirectionalBehavior struct {
	Idle      string
	LeftDown  string
	LeftUp    string
	RightDown string
	RightUp   string
}

// NewDirectionalBehavior returns a behavior using the default clip names.
func NewDirectionalBehavior() *DirectionalBehavior {
	return &DirectionalBehavior{
		Idle:      ClipIdle,
		LeftDown:  ClipLeftDown,
		LeftUp:    ClipLeftUp,
		RightDown: ClipRightDown,
		RightUp:   ClipRightUp,
	}
}

// Update implements Behavior.
func (b *DirectionalBehavior) Update(e *Entity, _ float64, _ []Event) error {
	if e.Sprite == nil {
		return nil
	}
	name := b.clipFor(e.Velocity)
	if name == or(b.Idle, ClipIdle) && !e.Sprite.Has(name) {
		name = or(b.LeftDown, ClipLeftDown)
	}
	if name != e.Sprite.Active() {
		e.Sprite.Play(name)
	}
	return nil
}

func (b *DirectionalBehavior) clipFor(v Vec2) string {
	if v.X*v.X+v.Y*v.Y < idleSpeedSq {
		return or(b.Idle, ClipIdle)
	}
	if v.X <= 0 {
		if v.Y >= 0 {
			return or(b.LeftDown, ClipLeftDown)
		}
		return or(b.LeftUp, ClipLeftUp)
	}
	if v.Y >= 0 {
		return or(b.RightDown, ClipRightDown)
	}
	return or(b.RightUp, ClipRightUp)
}

func or(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
