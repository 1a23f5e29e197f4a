package shoal

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup eases an entity's position or rotation toward a target over a
// fixed time. Entity.Update advances the groups attached with Entity.Tween
// and drops them once Done. A group whose entity has left its scene is Done
// without touching the entity again.
type TweenGroup struct {
	eases  []*gween.Tween
	dst    []*float64
	entity *Entity
	Done   bool
}

// Update steps the easing by dt seconds and writes the eased values back to
// the entity.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}
	if g.entity != nil && g.entity.State() == EntityRemoved {
		g.Done = true
		return
	}

	done := true
	for i, tw := range g.eases {
		v, finished := tw.Update(dt)
		*g.dst[i] = float64(v)
		done = done && finished
	}
	g.Done = done
}

// TweenPosition glides e from its current position to (toX, toY) in world
// units.
func TweenPosition(e *Entity, toX, toY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	return &TweenGroup{
		eases: []*gween.Tween{
			gween.New(float32(e.Position.X), float32(toX), duration, fn),
			gween.New(float32(e.Position.Y), float32(toY), duration, fn),
		},
		dst:    []*float64{&e.Position.X, &e.Position.Y},
		entity: e,
	}
}

// TweenRotation turns e to toDeg degrees.
func TweenRotation(e *Entity, toDeg float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	return &TweenGroup{
		eases:  []*gween.Tween{gween.New(float32(e.Rotation), float32(toDeg), duration, fn)},
		dst:    []*float64{&e.Rotation},
		entity: e,
	}
}
