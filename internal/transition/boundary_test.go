package transition

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluewatersql/twinklr-sub004/internal/curve"
	"github.com/bluewatersql/twinklr-sub004/internal/plan"
	"github.com/bluewatersql/twinklr-sub004/internal/timeline"
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
				{Movement: "sway", Geometry: "std", Dimmer: "full", DurationBars: 2,
					Exit: &plan.TransitionHint{Mode: plan.ModeSnap}},
			}},
		},
		Movements: map[string]plan.MovementDef{
			"sway": {Pan: &plan.PatternRef{Curve: "sine"}},
		},
		Geometries: map[string]plan.GeometryDef{
			"std": {Channels: map[string]curve.Range{"pan": {Min: 0, Max: 540}}},
		},
		Dimmers: map[string]plan.DimmerDef{"full": {Static: f64(255)}},
		Curves:  curve.NewLibrary(),
	}
}

func expand(t *testing.T, pl *plan.Plan, bars int, total int64) ([]timeline.Segment, *timing.BeatGrid) {
	t.Helper()
	libs := testLibs()
	gen := curve.NewGenerator(libs.Curves, curve.DefaultSampling())
	p := timeline.NewPlanner(libs, curve.NewMapper(gen), zerolog.Nop())
	g, err := timing.NewBeatGrid(120, 4, bars, 0)
	require.NoError(t, err)
	return p.Expand(pl, g, total).Segments, g
}

func TestDetectSingleStepSingleSectionHasNoBoundaries(t *testing.T) {
	segs, g := expand(t, &plan.Plan{Sections: []plan.Section{
		{StartBar: 1, EndBar: 4, Template: "A", Targets: []string{"F1"}},
	}}, 4, 8000)

	assert.Empty(t, Detect(segs, g, testLibs()))
}

func TestDetectCycleBoundaryOnRepeat(t *testing.T) {
	segs, g := expand(t, &plan.Plan{Sections: []plan.Section{
		{StartBar: 1, EndBar: 8, Template: "A", Targets: []string{"F1"}},
	}}, 8, 16000)

	bounds := Detect(segs, g, testLibs())
	require.Len(t, bounds, 1)
	assert.Equal(t, BoundaryCycle, bounds[0].Type)
	assert.Equal(t, int64(8000), bounds[0].TimeMS)
	assert.InDelta(t, 5.0, bounds[0].Bar, 1e-9)
}

func TestDetectStepBoundariesWithinSection(t *testing.T) {
	segs, g := expand(t, &plan.Plan{Sections: []plan.Section{
		{StartBar: 1, EndBar: 8, Template: "AB", Targets: []string{"F1"}},
	}}, 8, 16000)

	bounds := Detect(segs, g, testLibs())
	require.Len(t, bounds, 3)
	assert.Equal(t, BoundaryStep, bounds[0].Type)
	assert.Equal(t, int64(4000), bounds[0].TimeMS)
	assert.Equal(t, BoundaryCycle, bounds[1].Type)
	assert.Equal(t, int64(8000), bounds[1].TimeMS)
	assert.Equal(t, BoundaryStep, bounds[2].Type)

	// step 2's authored exit hint rides along on its boundary
	require.NotNil(t, bounds[1].Hint)
	assert.Equal(t, plan.ModeSnap, bounds[1].Hint.Mode)
}

func TestDetectSectionBoundaryMergesFixtures(t *testing.T) {
	segs, g := expand(t, &plan.Plan{Sections: []plan.Section{
		{StartBar: 1, EndBar: 4, Template: "A", Targets: []string{"F1", "F2"}},
		{StartBar: 5, EndBar: 8, Template: "A", Targets: []string{"F1", "F2"}},
	}}, 8, 16000)

	bounds := Detect(segs, g, testLibs())
	require.Len(t, bounds, 1)
	b := bounds[0]
	assert.Equal(t, BoundarySection, b.Type)
	assert.Equal(t, int64(8000), b.TimeMS)
	assert.Equal(t, "s1", b.SourceID)
	assert.Equal(t, "s2", b.TargetID)
	assert.ElementsMatch(t, []string{"F1", "F2"}, b.Fixtures)
	require.Contains(t, b.Sources, "F1")
	require.Contains(t, b.Targets, "F2")
	assert.Equal(t, int64(8000), b.Sources["F1"].EndMS)
	assert.Equal(t, int64(8000), b.Targets["F2"].StartMS)
}

func TestDetectNoBoundaryAcrossGap(t *testing.T) {
	segs, g := expand(t, &plan.Plan{Sections: []plan.Section{
		{StartBar: 1, EndBar: 2, Template: "A", Targets: []string{"F1"}},
		{StartBar: 5, EndBar: 6, Template: "A", Targets: []string{"F1"}},
	}}, 8, 16000)

	assert.Empty(t, Detect(segs, g, testLibs()))
}
