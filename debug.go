package shoal

import "log/slog"

// statsWindow accumulates per-frame renderer counters over an interval of
// game time and yields one summary per interval.
type statsWindow struct {
	interval float64
	elapsed  float64
	frames   int
	total    FrameStats
	peak     int
}

// statsLine is one interval summary.
type statsLine struct {
	frames       int
	avgDraws     float64
	peakDraws    int
	skippedDraws int
	emptyFrames  int
	entities     int
}

func newStatsWindow(interval float64) *statsWindow {
	return &statsWindow{interval: interval}
}

// add records one frame. It reports a summary once interval seconds of game
// time have passed, then starts a new window.
func (w *statsWindow) add(s FrameStats, entities int, dt float64) (statsLine, bool) {
	w.frames++
	w.elapsed += dt
	w.total.DrawCalls += s.DrawCalls
	w.total.SkippedDraws += s.SkippedDraws
	w.total.EmptyFrames += s.EmptyFrames
	w.peak = max(w.peak, s.DrawCalls)
	if w.elapsed < w.interval {
		return statsLine{}, false
	}

	line := statsLine{
		frames:       w.frames,
		avgDraws:     float64(w.total.DrawCalls) / float64(w.frames),
		peakDraws:    w.peak,
		skippedDraws: w.total.SkippedDraws,
		emptyFrames:  w.total.EmptyFrames,
		entities:     entities,
	}
	*w = statsWindow{interval: w.interval}
	return line, true
}

func (l statsLine) attrs() []any {
	return []any{
		slog.Int("frames", l.frames),
		slog.Float64("avg_draws", l.avgDraws),
		slog.Int("peak_draws", l.peakDraws),
		slog.Int("skipped_draws", l.skippedDraws),
		slog.Int("empty_frames", l.emptyFrames),
		slog.Int("entities", l.entities),
	}
}
