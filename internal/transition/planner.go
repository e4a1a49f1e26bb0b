package transition

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/bluewatersql/twinklr-sub004/internal/plan"
	"github.com/bluewatersql/twinklr-sub004/internal/timing"
)

// Defaults are the global transition settings applied when a boundary
// carries no authored hint, plus the per-channel default strategies.
type Defaults struct {
	Mode            plan.TransitionMode
	DurationBars    float64
	FadeOutRatio    float64 // fraction of the window before the boundary
	MinSectionBars  float64
	OverlapsEnabled bool
	Channels        map[string]plan.TransitionMode
}

// StandardDefaults returns the stock configuration: one-bar symmetric
// crossfades on every channel.
func StandardDefaults() Defaults {
	return Defaults{
		Mode:            plan.ModeCrossfade,
		DurationBars:    1,
		FadeOutRatio:    0.5,
		MinSectionBars:  1,
		OverlapsEnabled: true,
		Channels: map[string]plan.TransitionMode{
			"pan":    plan.ModeCrossfade,
			"tilt":   plan.ModeCrossfade,
			"dimmer": plan.ModeCrossfade,
		},
	}
}

// Plan is the computed transition for one boundary: the overlap window
// and the per-channel strategies the compiler will apply.
type Plan struct {
	ID             string
	Boundary       Boundary
	Hint           plan.TransitionHint
	OverlapStartMS int64
	OverlapEndMS   int64
	Strategies     map[string]plan.TransitionMode
	Fixtures       []string
}

// DurationMS is the overlap window length after clamping.
func (p *Plan) DurationMS() int64 { return p.OverlapEndMS - p.OverlapStartMS }

// Feasibility is the non-fatal verdict of transition validation. The
// caller decides what to do with the warnings; nothing is auto-corrected.
type Feasibility struct {
	OK       bool
	Warnings []string
}

// Planner computes transition plans against a beat grid.
type Planner struct {
	Grid     *timing.BeatGrid
	Defaults Defaults
	Log      zerolog.Logger
}

// NewPlanner wires a planner with standard defaults.
func NewPlanner(grid *timing.BeatGrid, log zerolog.Logger) *Planner {
	return &Planner{Grid: grid, Defaults: StandardDefaults(), Log: log}
}

// PlanBoundary computes the overlap window and channel strategies for a
// boundary. seq feeds the deterministic transition id.
func (p *Planner) PlanBoundary(b Boundary, seq int) Plan {
	hint := p.effectiveHint(b.Hint)

	start, end := p.overlapWindow(b.TimeMS, hint)
	if start < 0 {
		start = 0
	}

	strategies := map[string]plan.TransitionMode{}
	for ch, mode := range p.Defaults.Channels {
		strategies[ch] = mode
	}
	for ch, mode := range hint.Channels {
		strategies[ch] = mode
	}
	if hint.Mode == plan.ModeSnap {
		for ch := range strategies {
			strategies[ch] = plan.ModeSnap
		}
	}

	return Plan{
		ID:             fmt.Sprintf("t%03d-%s", seq, b.Type),
		Boundary:       b,
		Hint:           hint,
		OverlapStartMS: start,
		OverlapEndMS:   end,
		Strategies:     strategies,
		Fixtures:       append([]string(nil), b.Fixtures...),
	}
}

// overlapWindow splits the transition duration around the boundary.
// Snap collapses to zero width; crossfade splits by fade_out_ratio;
// every other mode splits symmetrically with integer floor division, an
// odd millisecond landing after the boundary.
func (p *Planner) overlapWindow(timeMS int64, hint plan.TransitionHint) (int64, int64) {
	switch hint.Mode {
	case plan.ModeSnap:
		return timeMS, timeMS
	case plan.ModeCrossfade:
		dur := p.Grid.BarsToDurationMS(hint.DurationBars)
		before := int64(math.Round(float64(dur) * hint.FadeOutRatio))
		return timeMS - before, timeMS + (dur - before)
	default:
		dur := p.Grid.BarsToDurationMS(hint.DurationBars)
		before := dur / 2
		return timeMS - before, timeMS + (dur - before)
	}
}

// effectiveHint overlays an authored hint on the global defaults.
func (p *Planner) effectiveHint(h *plan.TransitionHint) plan.TransitionHint {
	out := plan.TransitionHint{
		Mode:         p.Defaults.Mode,
		DurationBars: p.Defaults.DurationBars,
		FadeOutRatio: p.Defaults.FadeOutRatio,
	}
	if h == nil {
		return out
	}
	if h.Mode != "" {
		out.Mode = h.Mode
	}
	if h.DurationBars > 0 {
		out.DurationBars = h.DurationBars
	}
	if h.FadeOutRatio > 0 {
		out.FadeOutRatio = h.FadeOutRatio
	}
	if h.Curve != "" {
		out.Curve = h.Curve
	}
	if len(h.Channels) > 0 {
		out.Channels = h.Channels
	}
	return out
}

// Validate checks a plan for feasibility and returns warnings plus a
// verdict. Snap plans are zero-width by definition and skip the window
// check.
func (p *Planner) Validate(tp Plan) Feasibility {
	var warns []string

	if tp.Hint.Mode != plan.ModeSnap && tp.OverlapStartMS >= tp.OverlapEndMS {
		warns = append(warns, fmt.Sprintf("%s: empty overlap window", tp.ID))
	}

	fadeOut := tp.Boundary.TimeMS - tp.OverlapStartMS
	fadeIn := tp.OverlapEndMS - tp.Boundary.TimeMS
	minMS := p.Grid.BarsToDurationMS(p.Defaults.MinSectionBars)

	for _, f := range tp.Fixtures {
		if src, ok := tp.Boundary.Sources[f]; ok {
			if d := src.DurationMS(); d < fadeOut {
				warns = append(warns, fmt.Sprintf("%s: fade-out %dms exceeds source %s (%dms)", tp.ID, fadeOut, src.ID, d))
			}
			if d := src.DurationMS(); d < minMS {
				warns = append(warns, fmt.Sprintf("%s: source %s shorter than %dms minimum", tp.ID, src.ID, minMS))
			}
		}
		if dst, ok := tp.Boundary.Targets[f]; ok {
			if d := dst.DurationMS(); d < fadeIn {
				warns = append(warns, fmt.Sprintf("%s: fade-in %dms exceeds target %s (%dms)", tp.ID, fadeIn, dst.ID, d))
			}
			if d := dst.DurationMS(); d < minMS {
				warns = append(warns, fmt.Sprintf("%s: target %s shorter than %dms minimum", tp.ID, dst.ID, minMS))
			}
		}
	}

	for _, w := range warns {
		p.Log.Warn().Msg(w)
	}
	return Feasibility{OK: len(warns) == 0, Warnings: warns}
}

// AdjustSectionTiming computes the source-end and target-start the
// renderer should use so both sides cover the shared window. Snap plans
// and disabled overlaps pass the original timings through unchanged.
func (p *Planner) AdjustSectionTiming(tp Plan, sourceEndMS, targetStartMS int64) (int64, int64) {
	if tp.Hint.Mode == plan.ModeSnap || !p.Defaults.OverlapsEnabled {
		return sourceEndMS, targetStartMS
	}
	return tp.OverlapStartMS, tp.OverlapStartMS
}
