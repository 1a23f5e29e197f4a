package shoal

import (
	"fmt"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

// Globals visible to entity scripts. Scripts may assign clip, rotation, vx
// and vy; the other values are read-only inputs.
var scriptGlobals = []string{"dt", "x", "y", "vx", "vy", "rotation", "clip", "attrs", "events"}

// ScriptBehavior runs a tengo script once per tick to steer an entity. The
// script sees the entity's state as globals and writes back the clip to
// play, its rotation and its velocity.
//
//	if vx < 0 { clip = "swim-left" } else { clip = "swim-right" }
type ScriptBehavior struct {
	name     string
	compiled *tengo.Compiled
}

// CompileScript compiles src with the tengo standard library available.
func CompileScript(name string, src []byte) (*ScriptBehavior, error) {
	script := tengo.NewScript(src)
	for _, g := range scriptGlobals {
		_ = script.Add(g, nil)
	}
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))
	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("shoal: compile script %q: %w", name, err)
	}
	return &ScriptBehavior{name: name, compiled: compiled}, nil
}

// Name returns the script's name, usually its path.
func (s *ScriptBehavior) Name() string { return s.name }

// Clone returns a behavior with its own copy of the script's globals. Each
// entity needs its own clone.
func (s *ScriptBehavior) Clone() *ScriptBehavior {
	return &ScriptBehavior{name: s.name, compiled: s.compiled.Clone()}
}

// Update implements Behavior.
func (s *ScriptBehavior) Update(e *Entity, dt float64, events []Event) error {
	names := make([]any, len(events))
	for i, ev := range events {
		names[i] = ev.Name
	}
	clip := ""
	if e.Sprite != nil {
		clip = e.Sprite.Active()
	}
	attrs := map[string]any(e.Attributes.Clone())

	c := s.compiled
	for name, v := range map[string]any{
		"dt":       dt,
		"x":        e.Position.X,
		"y":        e.Position.Y,
		"vx":       e.Velocity.X,
		"vy":       e.Velocity.Y,
		"rotation": e.Rotation,
		"clip":     clip,
		"attrs":    attrs,
		"events":   names,
	} {
		if err := c.Set(name, v); err != nil {
			return fmt.Errorf("script %q: set %s: %w", s.name, name, err)
		}
	}
	if err := c.Run(); err != nil {
		return fmt.Errorf("script %q: %w", s.name, err)
	}

	e.Rotation = c.Get("rotation").Float()
	e.Velocity.X = c.Get("vx").Float()
	e.Velocity.Y = c.Get("vy").Float()
	if next := c.Get("clip").String(); e.Sprite != nil && next != clip {
		e.Sprite.Play(next)
	}
	return nil
}
