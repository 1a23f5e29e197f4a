package shoal

// Clip binds a local animation name to a catalog template id.
type Clip struct {
	Name string
	// Template is a "sheet/tag" id or a bare tag name.
	Template string
	// Optional clips may be missing from the catalog; the entity then simply
	// has no player for them.
	Optional bool
}

// AnimatedSprite is the animation component of an Entity. It owns one player
// per resolved clip and draws the active one. Switching clips never touches
// the clocks of the other players.
type AnimatedSprite struct {
	Clips   []Clip
	Initial string
	Loop    bool

	players map[string]*Animation
	active  string
}

// NewAnimatedSprite creates a component playing initial once initialized.
func NewAnimatedSprite(initial string, loop bool, clips ...Clip) *AnimatedSprite {
	return &AnimatedSprite{Clips: clips, Initial: initial, Loop: loop}
}

func (a *AnimatedSprite) init(entity string, r *Renderer, now float64) error {
	players := make(map[string]*Animation, len(a.Clips))
	for _, c := range a.Clips {
		p := r.CreateAnimation(c.Template, now, a.Loop)
		if p == nil {
			if c.Optional {
				r.logger.Debug("optional animation missing", "entity", entity, "clip", c.Name, "template", c.Template)
				continue
			}
			return &MissingAnimationError{Entity: entity, Clip: c.Name, Template: c.Template}
		}
		players[c.Name] = p
	}
	a.players = players
	if _, ok := players[a.Initial]; ok {
		a.active = a.Initial
	}
	return nil
}

// Has reports whether the clip resolved to a player.
func (a *AnimatedSprite) Has(name string) bool {
	_, ok := a.players[name]
	return ok
}

// Active returns the active clip name, or "" when nothing is playing.
func (a *AnimatedSprite) Active() string { return a.active }

// Player returns the player for a clip, or nil.
func (a *AnimatedSprite) Player(name string) *Animation { return a.players[name] }

// ActivePlayer returns the active player, or nil.
func (a *AnimatedSprite) ActivePlayer() *Animation { return a.players[a.active] }

// Play makes the named clip active and reports whether it exists. The clip
// resumes on its own clock.
func (a *AnimatedSprite) Play(name string) bool {
	if _, ok := a.players[name]; !ok {
		return false
	}
	a.active = name
	return true
}

// Replay makes the named clip active and restarts it at now.
func (a *AnimatedSprite) Replay(name string, now float64) bool {
	if !a.Play(name) {
		return false
	}
	a.players[name].Restart(now)
	return true
}

// Stop clears the active clip; the entity draws nothing until Play.
func (a *AnimatedSprite) Stop() { a.active = "" }

func (a *AnimatedSprite) render(r *Renderer, now float64, pos Vec2, rotDeg float64) error {
	return r.DrawAnimation(a.players[a.active], now, pos, rotDeg)
}
