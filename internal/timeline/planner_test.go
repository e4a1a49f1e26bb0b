package timeline

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluewatersql/twinklr-sub004/internal/curve"
	"github.com/bluewatersql/twinklr-sub004/internal/plan"
	"github.com/bluewatersql/twinklr-sub004/internal/timing"
)

func f64(v float64) *float64 { return &v }

func testLibs() *plan.Libraries {
	return &plan.Libraries{
		Templates: map[string]plan.Template{
			"A": {Steps: []plan.Step{
				{Movement: "sway", Geometry: "std", Dimmer: "full", DurationBars: 4},
			}},
			"AB": {Steps: []plan.Step{
				{Movement: "sway", Geometry: "std", Dimmer: "full", DurationBars: 2},
				{Movement: "sweep", Geometry: "std", Dimmer: "full", DurationBars: 2},
			}},
			"broken": {Steps: []plan.Step{
				{Movement: "no_such_movement", Geometry: "std", DurationBars: 2},
			}},
		},
		Movements: map[string]plan.MovementDef{
			"sway":  {Pan: &plan.PatternRef{Curve: "sine", Cycles: 1}, Tilt: &plan.PatternRef{Curve: "sine", Amplitude: 0.5}},
			"sweep": {Pan: &plan.PatternRef{Curve: "triangle", Cycles: 2}},
		},
		Geometries: map[string]plan.GeometryDef{
			"std": {Channels: map[string]curve.Range{
				"pan":    {Min: 0, Max: 540},
				"tilt":   {Min: 0, Max: 270},
				"dimmer": {Min: 0, Max: 255},
			}},
		},
		Dimmers: map[string]plan.DimmerDef{
			"full": {Static: f64(255)},
		},
		Curves: curve.NewLibrary(),
	}
}

func testPlanner(t *testing.T) *Planner {
	t.Helper()
	libs := testLibs()
	gen := curve.NewGenerator(libs.Curves, curve.DefaultSampling())
	return NewPlanner(libs, curve.NewMapper(gen), zerolog.Nop())
}

func grid120(t *testing.T, bars int) *timing.BeatGrid {
	t.Helper()
	g, err := timing.NewBeatGrid(120, 4, bars, 0)
	require.NoError(t, err)
	return g
}

func stepsOf(segs []Segment) []Segment {
	var out []Segment
	for _, s := range segs {
		if s.Kind == KindStep {
			out = append(out, s)
		}
	}
	return out
}

func gapsOf(segs []Segment) []Segment {
	var out []Segment
	for _, s := range segs {
		if s.Kind == KindGap {
			out = append(out, s)
		}
	}
	return out
}

// requireContiguous checks the core timeline invariant: segments are
// back-to-back, starting at 0 and ending at total.
func requireContiguous(t *testing.T, segs []Segment, total int64) {
	t.Helper()
	require.NotEmpty(t, segs)
	require.Equal(t, int64(0), segs[0].StartMS)
	for i := 0; i+1 < len(segs); i++ {
		require.Equal(t, segs[i].EndMS, segs[i+1].StartMS, "segment %d/%d not contiguous", i, i+1)
	}
	require.Equal(t, total, segs[len(segs)-1].EndMS)
}

func TestExpandRepeatsAndClampsToSection(t *testing.T) {
	p := testPlanner(t)
	g := grid120(t, 8)
	pl := &plan.Plan{Sections: []plan.Section{
		{StartBar: 1, EndBar: 8, Template: "A", Targets: []string{"F1"}},
	}}

	res := p.Expand(pl, g, 16000)
	steps := stepsOf(res.Segments)
	require.Len(t, steps, 2)
	assert.Equal(t, int64(0), steps[0].StartMS)
	assert.Equal(t, int64(8000), steps[0].EndMS)
	assert.Equal(t, int64(8000), steps[1].StartMS)
	assert.Equal(t, int64(16000), steps[1].EndMS)
	assert.Equal(t, 1, steps[1].Provenance.Repeat)
	assert.Empty(t, gapsOf(res.Segments))
	assert.Empty(t, res.Warnings)

	requireContiguous(t, res.Segments, 16000)
}

func TestExpandTrailingGapWhenSongOutlastsPlan(t *testing.T) {
	p := testPlanner(t)
	g := grid120(t, 8)
	pl := &plan.Plan{Sections: []plan.Section{
		{StartBar: 1, EndBar: 8, Template: "A", Targets: []string{"F1"}},
	}}

	res := p.Expand(pl, g, 20000)
	gaps := gapsOf(res.Segments)
	require.Len(t, gaps, 1)
	assert.Equal(t, GapEndOfSong, gaps[0].Gap)
	assert.Equal(t, int64(16000), gaps[0].StartMS)
	assert.Equal(t, int64(20000), gaps[0].EndMS)
	requireContiguous(t, res.Segments, 20000)
}

func TestExpandClampsFinalRepetition(t *testing.T) {
	p := testPlanner(t)
	g := grid120(t, 6)
	pl := &plan.Plan{Sections: []plan.Section{
		{StartBar: 1, EndBar: 6, Template: "A", Targets: []string{"F1"}},
	}}

	res := p.Expand(pl, g, 12000)
	steps := stepsOf(res.Segments)
	require.Len(t, steps, 2)
	assert.Equal(t, int64(12000), steps[1].EndMS, "final repetition clamped to section end")
	requireContiguous(t, res.Segments, 12000)
}

func TestExpandEmptyPlanIsOneGap(t *testing.T) {
	p := testPlanner(t)
	g := grid120(t, 8)

	res := p.Expand(&plan.Plan{}, g, 30000)
	require.Len(t, res.Segments, 1)
	assert.Equal(t, KindGap, res.Segments[0].Kind)
	assert.Equal(t, GapEndOfSong, res.Segments[0].Gap)
	assert.Equal(t, int64(0), res.Segments[0].StartMS)
	assert.Equal(t, int64(30000), res.Segments[0].EndMS)
}

func TestExpandZeroDurationIsEmpty(t *testing.T) {
	p := testPlanner(t)
	g := grid120(t, 8)

	res := p.Expand(&plan.Plan{}, g, 0)
	assert.Empty(t, res.Segments)
}

func TestExpandGapClassification(t *testing.T) {
	p := testPlanner(t)
	g := grid120(t, 8)
	pl := &plan.Plan{Sections: []plan.Section{
		{StartBar: 3, EndBar: 4, Template: "A", Targets: []string{"F1"}},
		{StartBar: 7, EndBar: 8, Template: "A", Targets: []string{"F1"}},
	}}

	res := p.Expand(pl, g, 16000)
	gaps := gapsOf(res.Segments)
	require.Len(t, gaps, 2)
	assert.Equal(t, GapIntro, gaps[0].Gap)
	assert.Equal(t, int64(0), gaps[0].StartMS)
	assert.Equal(t, int64(4000), gaps[0].EndMS)
	assert.Equal(t, GapInterSection, gaps[1].Gap)
	assert.Equal(t, int64(8000), gaps[1].StartMS)
	assert.Equal(t, int64(12000), gaps[1].EndMS)
	requireContiguous(t, res.Segments, 16000)
}

func TestExpandUnknownTemplateSkipsSection(t *testing.T) {
	p := testPlanner(t)
	g := grid120(t, 8)
	pl := &plan.Plan{Sections: []plan.Section{
		{StartBar: 1, EndBar: 4, Template: "missing", Targets: []string{"F1"}},
		{StartBar: 5, EndBar: 8, Template: "A", Targets: []string{"F1"}},
	}}

	res := p.Expand(pl, g, 16000)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "missing")
	steps := stepsOf(res.Segments)
	require.Len(t, steps, 1)
	assert.Equal(t, int64(8000), steps[0].StartMS)
	requireContiguous(t, res.Segments, 16000)
}

func TestExpandUnknownMovementSkipsSection(t *testing.T) {
	p := testPlanner(t)
	g := grid120(t, 8)
	pl := &plan.Plan{Sections: []plan.Section{
		{StartBar: 1, EndBar: 8, Template: "broken", Targets: []string{"F1"}},
	}}

	res := p.Expand(pl, g, 16000)
	require.Len(t, res.Warnings, 1)
	assert.Empty(t, stepsOf(res.Segments))
	requireContiguous(t, res.Segments, 16000)
}

func TestExpandRepeatBudgetStopsEarly(t *testing.T) {
	p := testPlanner(t)
	p.Budget = 3
	g := grid120(t, 64)
	pl := &plan.Plan{Sections: []plan.Section{
		{StartBar: 1, EndBar: 64, Template: "A", Targets: []string{"F1"}},
	}}

	res := p.Expand(pl, g, g.DurationMS())
	steps := stepsOf(res.Segments)
	require.Len(t, steps, 3, "expansion stops at the budget")
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "budget")
	// remaining time is still covered by a gap, never left uncovered
	requireContiguous(t, res.Segments, g.DurationMS())
}

func TestExpandMultiStepTemplate(t *testing.T) {
	p := testPlanner(t)
	g := grid120(t, 8)
	pl := &plan.Plan{Sections: []plan.Section{
		{StartBar: 1, EndBar: 8, Template: "AB", Targets: []string{"F1"}},
	}}

	res := p.Expand(pl, g, 16000)
	steps := stepsOf(res.Segments)
	require.Len(t, steps, 4)
	assert.Equal(t, 0, steps[0].Provenance.Step)
	assert.Equal(t, 1, steps[1].Provenance.Step)
	assert.Equal(t, 0, steps[2].Provenance.Step)
	assert.Equal(t, 1, steps[2].Provenance.Repeat)
	// channels resolved into device ranges
	pan, ok := steps[0].Channels["pan"]
	require.True(t, ok)
	require.False(t, pan.IsStatic())
	lo, hi := pan.Curve.Span()
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 540.0, hi)
	assert.Equal(t, 255.0, steps[0].Channels["dimmer"].Static)
}

func TestExpandIsIdempotent(t *testing.T) {
	g := grid120(t, 8)
	pl := &plan.Plan{Sections: []plan.Section{
		{StartBar: 1, EndBar: 4, Template: "AB", Targets: []string{"F1", "F2"}},
		{StartBar: 5, EndBar: 8, Template: "A", Targets: []string{"F1"}},
	}}

	a := testPlanner(t).Expand(pl, g, 20000)
	b := testPlanner(t).Expand(pl, g, 20000)
	require.Equal(t, a, b)
}
