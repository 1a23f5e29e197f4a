package shoal

// Animation is a playback cursor over one AnimationTemplate. Times are in
// seconds on the same clock passed to Scene.Render.
//
// A non-looping animation whose run time exceeds the template's total
// duration is expired: it resolves to no frame from then on. A looping
// animation restarts from the current time when the run time falls outside
// every frame interval.
type Animation struct {
	template *AnimationTemplate
	start    float64
	loop     bool
	expired  bool
}

// NewAnimation creates a player for the template starting at start. Loop is
// fixed for the lifetime of the player.
func NewAnimation(t *AnimationTemplate, start float64, loop bool) *Animation {
	return &Animation{template: t, start: start, loop: loop}
}

// Template returns the template being played.
func (a *Animation) Template() *AnimationTemplate { return a.template }

// StartTime returns the time the current cycle started.
func (a *Animation) StartTime() float64 { return a.start }

// Loop reports whether the animation restarts after its last frame.
func (a *Animation) Loop() bool { return a.loop }

// Expired reports whether a non-looping animation has run past its end.
func (a *Animation) Expired() bool { return a.expired }

// Done reports whether a non-looping animation has run past its total
// duration at now. Looping animations are never done.
func (a *Animation) Done(now float64) bool {
	if a.loop {
		return false
	}
	return a.expired || now-a.start > a.template.TotalDuration
}

// Restart moves the start of the current cycle to now and clears the expired
// state.
func (a *Animation) Restart(now float64) {
	a.start = now
	a.expired = false
}

// Frame resolves the frame showing at now. It reports false when there is
// nothing to draw: empty or zero-length templates and expired animations.
//
// Frame intervals are half-open, [start, start+duration), so a time exactly
// on a boundary belongs to the next frame. Looping animations retry at most
// once after restarting from now.
func (a *Animation) Frame(now float64) (AnimationFrame, bool) {
	if a.expired || a.template == nil {
		return AnimationFrame{}, false
	}
	t := a.template
	if len(t.Frames) == 0 || t.TotalDuration <= 0 {
		return AnimationFrame{}, false
	}

	elapsed := now - a.start
	if !a.loop && elapsed > t.TotalDuration {
		a.expired = true
		return AnimationFrame{}, false
	}

	if f, ok := frameAt(t.Frames, elapsed); ok {
		return f, true
	}
	if !a.loop {
		return AnimationFrame{}, false
	}

	a.start = now
	return frameAt(t.Frames, 0)
}

// frameAt walks the frames accumulating durations and returns the frame
// whose interval contains elapsed. Zero-duration frames never match.
func frameAt(frames []AnimationFrame, elapsed float64) (AnimationFrame, bool) {
	frameStart := 0.0
	for _, f := range frames {
		frameEnd := frameStart + f.Seconds()
		if elapsed >= frameStart && elapsed < frameEnd {
			return f, true
		}
		frameStart = frameEnd
	}
	return AnimationFrame{}, false
}
