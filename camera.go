package shoal

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// scrollAnim holds active scroll-to tweens for camera X and Y.
type scrollAnim struct {
	tweenX *gween.Tween
	tweenY *gween.Tween
	doneX  bool
	doneY  bool
}

// Camera is the view into the world: a position and a magnification.
// The scene reads it once per frame to build the world-to-screen transform.
type Camera struct {
	// Position is the world-space point drawn at Offset on screen.
	Position Vec2
	// Scale is the magnification (1.0 = no zoom). Always positive.
	Scale float64
	// Offset is a screen-space translation applied after scaling.
	Offset Vec2
	// Unit is the number of pixels per world unit before magnification. It
	// matches the renderer's sprite scale so Position is in world units.
	Unit float64

	followTarget *Entity
	followOffset Vec2
	followLerp   float64

	scrollTween *scrollAnim
}

// NewCamera creates a camera at pos with the given scale. A non-positive
// scale is replaced with 1.
func NewCamera(pos Vec2, scale float64) *Camera {
	if scale <= 0 {
		scale = 1
	}
	return &Camera{Position: pos, Scale: scale, Unit: 1}
}

// SetScale sets the magnification. Non-positive values are ignored.
func (c *Camera) SetScale(s float64) {
	if s > 0 {
		c.Scale = s
	}
}

// GeoM returns the transform from unit-scaled world pixels to the screen:
// Translate(Offset) * Scale(Scale) * Translate(-floor(Position*Unit)).
// Flooring keeps pixel art on whole pixels while scrolling.
func (c *Camera) GeoM() ebiten.GeoM {
	u := c.unit()
	var g ebiten.GeoM
	g.Translate(-math.Floor(c.Position.X*u), -math.Floor(c.Position.Y*u))
	g.Scale(c.Scale, c.Scale)
	g.Translate(c.Offset.X, c.Offset.Y)
	return g
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float64) (sx, sy float64) {
	u := c.unit()
	g := c.GeoM()
	return g.Apply(wx*u, wy*u)
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float64) (wx, wy float64) {
	u := c.unit()
	g := c.GeoM()
	g.Invert()
	px, py := g.Apply(sx, sy)
	return px / u, py / u
}

func (c *Camera) unit() float64 {
	if c.Unit > 0 {
		return c.Unit
	}
	return 1
}

// Follow makes the camera track an entity with the given offset and lerp
// factor. A lerp of 1.0 snaps immediately; lower values trail behind.
func (c *Camera) Follow(e *Entity, offset Vec2, lerp float64) {
	c.followTarget = e
	c.followOffset = offset
	c.followLerp = lerp
}

// Unfollow stops tracking the current entity.
func (c *Camera) Unfollow() {
	c.followTarget = nil
}

// ScrollTo animates the camera to the given world position over duration
// seconds.
func (c *Camera) ScrollTo(x, y float64, duration float32, easeFn ease.TweenFunc) {
	c.scrollTween = &scrollAnim{
		tweenX: gween.New(float32(c.Position.X), float32(x), duration, easeFn),
		tweenY: gween.New(float32(c.Position.Y), float32(y), duration, easeFn),
	}
}

// Scrolling reports whether a ScrollTo animation is in progress.
func (c *Camera) Scrolling() bool {
	return c.scrollTween != nil
}

// Update advances follow and scroll-to. Called once per tick by Game.
func (c *Camera) Update(dt float32) {
	if t := c.followTarget; t != nil {
		if t.State() == EntityRemoved {
			c.followTarget = nil
		} else {
			targetX := t.Position.X + c.followOffset.X
			targetY := t.Position.Y + c.followOffset.Y
			c.Position.X += (targetX - c.Position.X) * c.followLerp
			c.Position.Y += (targetY - c.Position.Y) * c.followLerp
		}
	}

	if c.scrollTween != nil {
		if !c.scrollTween.doneX {
			val, done := c.scrollTween.tweenX.Update(dt)
			c.Position.X = float64(val)
			c.scrollTween.doneX = done
		}
		if !c.scrollTween.doneY {
			val, done := c.scrollTween.tweenY.Update(dt)
			c.Position.Y = float64(val)
			c.scrollTween.doneY = done
		}
		if c.scrollTween.doneX && c.scrollTween.doneY {
			c.scrollTween = nil
		}
	}
}
