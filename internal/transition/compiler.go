package transition

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/bluewatersql/twinklr-sub004/internal/blend"
	"github.com/bluewatersql/twinklr-sub004/internal/curve"
	"github.com/bluewatersql/twinklr-sub004/internal/plan"
	"github.com/bluewatersql/twinklr-sub004/internal/timeline"
)

// Compiler materializes transition plans into per-fixture segments.
type Compiler struct {
	Samples int // blend resolution per channel
	Log     zerolog.Logger
}

// NewCompiler returns a compiler with the given blend resolution.
func NewCompiler(samples int, log zerolog.Logger) *Compiler {
	if samples < blend.MinSamples {
		samples = blend.MinSamples
	}
	return &Compiler{Samples: samples, Log: log}
}

// Compile produces one segment per fixture spanning the overlap window,
// each carrying a blended curve for the union of channels on either
// side. A channel missing on one side blends from/to static 0. Fixtures
// are blended concurrently into indexed slots, so the output order is
// deterministic (sorted by fixture). Snap plans still yield their
// zero-duration marker segments.
func (c *Compiler) Compile(tp Plan) []timeline.Segment {
	fixtures := append([]string(nil), tp.Fixtures...)
	sort.Strings(fixtures)

	out := make([]timeline.Segment, len(fixtures))
	var g errgroup.Group
	for i, f := range fixtures {
		i, f := i, f
		g.Go(func() error {
			out[i] = c.compileFixture(tp, f)
			return nil
		})
	}
	_ = g.Wait() // per-fixture blending never errors

	return out
}

func (c *Compiler) compileFixture(tp Plan, fixture string) timeline.Segment {
	src := tp.Boundary.Sources[fixture]
	dst := tp.Boundary.Targets[fixture]

	channels := map[string]curve.ChannelValue{}
	cut := boundaryCut(tp)
	for _, ch := range channelUnion(src.Channels, dst.Channels) {
		sv := src.Channels[ch] // zero value: static 0
		dv := dst.Channels[ch]
		switch tp.Strategies[ch] {
		case plan.ModeSnap:
			channels[ch] = snapValue(sv, dv, cut, c.Samples, tp.DurationMS())
		default:
			channels[ch] = curve.CurveValue(blend.Channels(sv, dv, c.Samples))
		}
	}

	return timeline.Segment{
		ID:        fmt.Sprintf("%s-%s", tp.ID, fixture),
		Kind:      timeline.KindTransition,
		Target:    fixture,
		StartMS:   tp.OverlapStartMS,
		EndMS:     tp.OverlapEndMS,
		Channels:  channels,
		Groupable: false,
		Provenance: timeline.Provenance{
			TransitionID: tp.ID,
			BoundaryType: string(tp.Boundary.Type),
			SourceID:     tp.Boundary.SourceID,
			TargetID:     tp.Boundary.TargetID,
			Mode:         tp.Hint.Mode,
		},
	}
}

// boundaryCut is the boundary's normalized position inside the window.
func boundaryCut(tp Plan) float64 {
	d := tp.DurationMS()
	if d <= 0 {
		return 0
	}
	return float64(tp.Boundary.TimeMS-tp.OverlapStartMS) / float64(d)
}

// snapValue holds the source value until the cut, then jumps to the
// target value. A zero-width window degenerates to the target value.
func snapValue(src, dst curve.ChannelValue, cut float64, samples int, durMS int64) curve.ChannelValue {
	if durMS <= 0 {
		return curve.StaticValue(dst.Eval(1))
	}
	pts := make([]curve.Point, samples)
	for i := 0; i < samples; i++ {
		t := float64(i) / float64(samples-1)
		if t < cut {
			pts[i] = curve.Point{T: t, V: src.Eval(t)}
		} else {
			pts[i] = curve.Point{T: t, V: dst.Eval(t)}
		}
	}
	return curve.CurveValue(&curve.Curve{Name: "snap", Source: curve.SourceCustom, Points: pts})
}

// channelUnion returns the sorted union of channel names on both sides.
func channelUnion(a, b map[string]curve.ChannelValue) []string {
	seen := map[string]bool{}
	for ch := range a {
		seen[ch] = true
	}
	for ch := range b {
		seen[ch] = true
	}
	out := make([]string, 0, len(seen))
	for ch := range seen {
		out = append(out, ch)
	}
	sort.Strings(out)
	return out
}
