package timeline

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/bluewatersql/twinklr-sub004/internal/curve"
	"github.com/bluewatersql/twinklr-sub004/internal/plan"
	"github.com/bluewatersql/twinklr-sub004/internal/timing"
)

// RepeatBudget caps template repetitions per target so a pathological
// step duration cannot spin the expansion loop forever. Tests inject a
// small budget to exercise the guard.
type RepeatBudget int

// DefaultRepeatBudget is generous; real plans stay far below it.
const DefaultRepeatBudget RepeatBudget = 1000

// fullRange is the fallback device range when a geometry does not
// declare a channel.
var fullRange = curve.Range{Min: 0, Max: 255}

// Planner expands plan sections into step segments and fills every
// uncovered interval with gap segments.
type Planner struct {
	Libs   *plan.Libraries
	Mapper *curve.Mapper
	Budget RepeatBudget
	Log    zerolog.Logger
}

// NewPlanner wires a planner with the default repeat budget.
func NewPlanner(libs *plan.Libraries, mapper *curve.Mapper, log zerolog.Logger) *Planner {
	return &Planner{Libs: libs, Mapper: mapper, Budget: DefaultRepeatBudget, Log: log}
}

// Result is the planner output: the gap-filled segment list plus any
// warnings collected while degrading gracefully.
type Result struct {
	Segments []Segment
	Warnings []string
}

// Expand builds the flat timeline. Sections with unknown template,
// movement, geometry, dimmer, or curve ids are skipped with a warning;
// the budget guard stops a runaway target early without failing the
// plan. The returned segments are sorted by start time, ties broken by
// declaration order.
func (p *Planner) Expand(pl *plan.Plan, grid *timing.BeatGrid, totalDurationMS int64) *Result {
	res := &Result{}

	sections := make([]plan.Section, len(pl.Sections))
	copy(sections, pl.Sections)
	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].StartBar < sections[j].StartBar
	})

	budget := p.Budget
	if budget <= 0 {
		budget = DefaultRepeatBudget
	}

	var steps []Segment
	for si, sec := range sections {
		tmpl, ok := p.Libs.Template(sec.Template)
		if !ok {
			p.warnf(res, "section %d: unknown template %q, skipping", si+1, sec.Template)
			continue
		}
		if len(tmpl.Steps) == 0 {
			p.warnf(res, "section %d: template %q has no steps, skipping", si+1, sec.Template)
			continue
		}

		resolved, err := p.resolveSteps(tmpl, grid)
		if err != nil {
			p.warnf(res, "section %d: %v, skipping", si+1, err)
			continue
		}

		secStart := grid.BarsToMS(float64(sec.StartBar))
		secEnd := grid.BarsToMS(float64(sec.EndBar + 1))

		for _, target := range sec.Targets {
			steps = append(steps, p.expandTarget(res, sec, si, target, tmpl, resolved, secStart, secEnd, grid, budget)...)
		}
	}

	sort.SliceStable(steps, func(i, j int) bool { return steps[i].StartMS < steps[j].StartMS })

	res.Segments = fillGaps(steps, totalDurationMS)
	return res
}

// expandTarget replays the template steps cyclically for one target
// until the section end, clamping the final repetition to the boundary.
func (p *Planner) expandTarget(res *Result, sec plan.Section, si int, target string, tmpl plan.Template, resolved []map[string]curve.ChannelValue, secStart, secEnd int64, grid *timing.BeatGrid, budget RepeatBudget) []Segment {
	var out []Segment
	cursor := secStart
	stepIdx, repeat, produced := 0, 0, 0

	for cursor < secEnd {
		if produced >= int(budget) {
			p.warnf(res, "section %d target %s: repeat budget %d exceeded, stopping expansion", si+1, target, budget)
			break
		}
		step := tmpl.Steps[stepIdx]
		durMS := grid.BarsToDurationMS(step.DurationBars)
		if durMS <= 0 {
			p.warnf(res, "section %d target %s: step %d has zero duration, stopping expansion", si+1, target, stepIdx)
			break
		}
		end := cursor + durMS
		if end > secEnd {
			end = secEnd
		}
		if end <= cursor {
			break
		}
		out = append(out, Segment{
			ID:        fmt.Sprintf("s%d-%s-r%d-st%d", si+1, target, repeat, stepIdx),
			Kind:      KindStep,
			Target:    target,
			StartMS:   cursor,
			EndMS:     end,
			Channels:  resolved[stepIdx],
			Groupable: true,
			Provenance: Provenance{
				Section:  si + 1,
				Template: sec.Template,
				Step:     stepIdx,
				Repeat:   repeat,
			},
		})
		cursor = end
		produced++
		stepIdx++
		if stepIdx == len(tmpl.Steps) {
			stepIdx = 0
			repeat++
		}
	}
	return out
}

// resolveSteps maps every step of a template into per-channel values.
// Resolution happens once per section; repeats reuse the same read-only
// channel maps.
func (p *Planner) resolveSteps(tmpl plan.Template, grid *timing.BeatGrid) ([]map[string]curve.ChannelValue, error) {
	out := make([]map[string]curve.ChannelValue, len(tmpl.Steps))
	for i, step := range tmpl.Steps {
		geo, ok := p.Libs.Geometries[step.Geometry]
		if !ok {
			return nil, &curve.LookupError{Kind: "geometry", Name: step.Geometry}
		}
		mov, ok := p.Libs.Movements[step.Movement]
		if !ok {
			return nil, &curve.LookupError{Kind: "movement", Name: step.Movement}
		}
		durS := float64(grid.BarsToDurationMS(step.DurationBars)) / 1000.0

		channels := map[string]curve.ChannelValue{}
		if err := p.mapPattern(channels, "pan", mov.Pan, geo, durS); err != nil {
			return nil, err
		}
		if err := p.mapPattern(channels, "tilt", mov.Tilt, geo, durS); err != nil {
			return nil, err
		}
		if step.Dimmer != "" {
			dim, ok := p.Libs.Dimmers[step.Dimmer]
			if !ok {
				return nil, &curve.LookupError{Kind: "dimmer", Name: step.Dimmer}
			}
			switch {
			case dim.Static != nil:
				channels["dimmer"] = curve.StaticValue(*dim.Static)
			case dim.Pattern != nil:
				if err := p.mapPattern(channels, "dimmer", dim.Pattern, geo, durS); err != nil {
					return nil, err
				}
			}
		}
		out[i] = channels
	}
	return out, nil
}

func (p *Planner) mapPattern(dst map[string]curve.ChannelValue, channel string, ref *plan.PatternRef, geo plan.GeometryDef, durS float64) error {
	if ref == nil {
		return nil
	}
	limits, ok := geo.Channels[channel]
	if !ok {
		limits = fullRange
	}
	c, err := p.Mapper.Map(curve.MapRequest{
		CurveName: ref.Curve,
		Params:    ref.Params(durS),
		Channel:   channel,
		Limits:    limits,
		Fit:       geo.Fit,
		Override:  ref.Fit,
	})
	if err != nil {
		return err
	}
	dst[channel] = curve.CurveValue(c)
	return nil
}

func (p *Planner) warnf(res *Result, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	p.Log.Warn().Msg(msg)
	res.Warnings = append(res.Warnings, msg)
}

// fillGaps inserts gap segments into every uncovered interval so the
// union of the returned list equals [0, totalDurationMS]. Holes below
// 1ms are rounding noise and dropped.
func fillGaps(steps []Segment, totalDurationMS int64) []Segment {
	if len(steps) == 0 {
		if totalDurationMS <= 0 {
			return nil
		}
		return []Segment{gapSegment(0, 0, totalDurationMS, GapEndOfSong)}
	}

	var gaps []Segment
	gapID := 0
	addGap := func(start, end int64, class GapClass) {
		if end-start < 1 {
			return
		}
		gaps = append(gaps, gapSegment(gapID, start, end, class))
		gapID++
	}

	if steps[0].StartMS > 0 {
		addGap(0, steps[0].StartMS, classify(0, steps[0].StartMS, totalDurationMS))
	}

	maxEnd := steps[0].EndMS
	for _, s := range steps[1:] {
		if s.StartMS > maxEnd {
			addGap(maxEnd, s.StartMS, classify(maxEnd, s.StartMS, totalDurationMS))
		}
		if s.EndMS > maxEnd {
			maxEnd = s.EndMS
		}
	}
	if maxEnd < totalDurationMS {
		addGap(maxEnd, totalDurationMS, classify(maxEnd, totalDurationMS, totalDurationMS))
	}

	out := make([]Segment, 0, len(steps)+len(gaps))
	out = append(out, steps...)
	out = append(out, gaps...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartMS < out[j].StartMS })
	return out
}

func gapSegment(id int, start, end int64, class GapClass) Segment {
	return Segment{
		ID:        fmt.Sprintf("gap-%d", id),
		Kind:      KindGap,
		StartMS:   start,
		EndMS:     end,
		Gap:       class,
		Groupable: true,
	}
}

// classify labels a gap: starting at t=0 makes it an intro, ending at
// the song end with nothing after makes it end_of_song, anything else
// is inter_section.
func classify(start, end, total int64) GapClass {
	if end == total {
		return GapEndOfSong
	}
	if start == 0 {
		return GapIntro
	}
	return GapInterSection
}
