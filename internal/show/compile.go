// Package show wires the pipeline stages together: plan expansion,
// boundary detection, transition planning, and segment compilation.
package show

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/bluewatersql/twinklr-sub004/internal/config"
	"github.com/bluewatersql/twinklr-sub004/internal/curve"
	"github.com/bluewatersql/twinklr-sub004/internal/plan"
	"github.com/bluewatersql/twinklr-sub004/internal/timeline"
	"github.com/bluewatersql/twinklr-sub004/internal/timing"
	"github.com/bluewatersql/twinklr-sub004/internal/transition"
)

// Transition pairs a computed plan with its feasibility verdict and the
// renderer timings adjusted for the shared window.
type Transition struct {
	Plan        transition.Plan
	Feasibility transition.Feasibility
	// Adjusted renderer timings; equal to the original segment edges for
	// snap plans or when overlaps are disabled.
	SourceEndMS   int64
	TargetStartMS int64
}

// Show is the compiled output: the contiguous step/gap timeline, the
// transition overlay, and everything collected along the way.
type Show struct {
	Plan        *plan.Plan
	Grid        *timing.BeatGrid
	DurationMS  int64
	Segments    []timeline.Segment // steps + gaps + transition overlay, sorted
	Transitions []Transition
	Warnings    []string
}

// Compile runs the full pipeline. The step/gap timeline keeps its
// contiguity invariant; transition segments span boundary overlaps as a
// non-groupable overlay on top of it.
func Compile(pl *plan.Plan, libs *plan.Libraries, grid *timing.BeatGrid, totalDurationMS int64, cfg *config.Config, log zerolog.Logger) (*Show, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if totalDurationMS <= 0 {
		totalDurationMS = grid.DurationMS()
	}

	gen := curve.NewGenerator(libs.Curves, curve.Sampling{
		PointsPerSecond: cfg.Sampling.PointsPerSecond,
		MinPoints:       cfg.Sampling.MinPoints,
		MaxPoints:       cfg.Sampling.MaxPoints,
	})
	mapper := curve.NewMapper(gen)

	planner := timeline.NewPlanner(libs, mapper, log)
	planner.Budget = timeline.RepeatBudget(cfg.RepeatBudget)
	res := planner.Expand(pl, grid, totalDurationMS)

	boundaries := transition.Detect(res.Segments, grid, libs)

	tplanner := transition.NewPlanner(grid, log)
	tplanner.Defaults = transitionDefaults(cfg)
	compiler := transition.NewCompiler(cfg.BlendSamples, log)

	out := &Show{
		Plan:       pl,
		Grid:       grid,
		DurationMS: totalDurationMS,
		Segments:   res.Segments,
		Warnings:   res.Warnings,
	}

	for i, b := range boundaries {
		tp := tplanner.PlanBoundary(b, i)
		feas := tplanner.Validate(tp)
		out.Warnings = append(out.Warnings, feas.Warnings...)

		srcEnd, dstStart := tplanner.AdjustSectionTiming(tp, b.TimeMS, b.TimeMS)
		out.Transitions = append(out.Transitions, Transition{
			Plan:          tp,
			Feasibility:   feas,
			SourceEndMS:   srcEnd,
			TargetStartMS: dstStart,
		})
		out.Segments = append(out.Segments, compiler.Compile(tp)...)
	}

	sort.SliceStable(out.Segments, func(i, j int) bool {
		return out.Segments[i].StartMS < out.Segments[j].StartMS
	})
	return out, nil
}

func transitionDefaults(cfg *config.Config) transition.Defaults {
	d := transition.StandardDefaults()
	t := cfg.Transition
	if t.Mode != "" {
		d.Mode = plan.TransitionMode(t.Mode)
	}
	if t.DurationBars > 0 {
		d.DurationBars = t.DurationBars
	}
	if t.FadeOutRatio > 0 {
		d.FadeOutRatio = t.FadeOutRatio
	}
	if t.MinSectionBars > 0 {
		d.MinSectionBars = t.MinSectionBars
	}
	d.OverlapsEnabled = t.OverlapsEnabled
	for ch, mode := range t.Channels {
		d.Channels[ch] = plan.TransitionMode(mode)
	}
	return d
}
