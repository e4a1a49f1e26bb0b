// Package transition finds timeline boundaries and materializes the
// blended segments that smooth them over.
package transition

import (
	"fmt"
	"sort"

	"github.com/bluewatersql/twinklr-sub004/internal/plan"
	"github.com/bluewatersql/twinklr-sub004/internal/timeline"
	"github.com/bluewatersql/twinklr-sub004/internal/timing"
)

// BoundaryType classifies a detected boundary.
type BoundaryType string

const (
	BoundarySection BoundaryType = "section"
	BoundaryStep    BoundaryType = "step"
	BoundaryCycle   BoundaryType = "cycle"
)

// Boundary is a timeline point where two segments meet and may need a
// transition. It references the adjoining segments per fixture and owns
// nothing.
type Boundary struct {
	Type     BoundaryType
	TimeMS   int64
	Bar      float64
	SourceID string
	TargetID string

	// Fixtures lists every fixture present on either side, in first
	// appearance order.
	Fixtures []string
	// Sources/Targets hold the adjoining segment per fixture. A fixture
	// missing on one side simply has no entry.
	Sources map[string]timeline.Segment
	Targets map[string]timeline.Segment

	// Hint is the authored transition default for this edge, if any.
	Hint *plan.TransitionHint
}

// Detect enumerates section, step, and cycle boundaries from a sorted
// gap-filled segment list. Adjacency is required: sections separated by
// a gap have nothing to blend. A single-section plan with a single-step
// template yields zero boundaries.
func Detect(segs []timeline.Segment, grid *timing.BeatGrid, libs *plan.Libraries) []Boundary {
	perTarget := map[string][]timeline.Segment{}
	var order []string
	for _, s := range segs {
		if s.Kind != timeline.KindStep {
			continue
		}
		if _, seen := perTarget[s.Target]; !seen {
			order = append(order, s.Target)
		}
		perTarget[s.Target] = append(perTarget[s.Target], s)
	}

	var out []Boundary
	sectionAt := map[int64]*Boundary{}

	for _, target := range order {
		list := perTarget[target]
		for i := 0; i+1 < len(list); i++ {
			a, b := list[i], list[i+1]
			if a.EndMS != b.StartMS {
				continue
			}
			if a.Provenance.Section != b.Provenance.Section {
				// section edges merge across fixtures sharing the time
				sb, ok := sectionAt[a.EndMS]
				if !ok {
					sb = &Boundary{
						Type:     BoundarySection,
						TimeMS:   a.EndMS,
						Bar:      grid.MSToBars(a.EndMS),
						SourceID: fmt.Sprintf("s%d", a.Provenance.Section),
						TargetID: fmt.Sprintf("s%d", b.Provenance.Section),
						Sources:  map[string]timeline.Segment{},
						Targets:  map[string]timeline.Segment{},
						Hint:     hintFor(a, b, libs),
					}
					sectionAt[a.EndMS] = sb
				}
				if _, seen := sb.Sources[target]; !seen {
					sb.Fixtures = append(sb.Fixtures, target)
				}
				sb.Sources[target] = a
				sb.Targets[target] = b
				continue
			}

			bt := BoundaryStep
			if b.Provenance.Step == 0 && b.Provenance.Repeat != a.Provenance.Repeat {
				bt = BoundaryCycle
			}
			out = append(out, Boundary{
				Type:     bt,
				TimeMS:   a.EndMS,
				Bar:      grid.MSToBars(a.EndMS),
				SourceID: a.ID,
				TargetID: b.ID,
				Fixtures: []string{target},
				Sources:  map[string]timeline.Segment{target: a},
				Targets:  map[string]timeline.Segment{target: b},
				Hint:     hintFor(a, b, libs),
			})
		}
	}
	for _, sb := range sectionAt {
		out = append(out, *sb)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TimeMS != out[j].TimeMS {
			return out[i].TimeMS < out[j].TimeMS
		}
		if out[i].Type != out[j].Type {
			// section boundaries first at equal times
			return out[i].Type == BoundarySection
		}
		return out[i].SourceID < out[j].SourceID
	})
	return out
}

// hintFor resolves the authored hint for an edge: the source step's
// exit hint wins, then the target step's entry hint.
func hintFor(a, b timeline.Segment, libs *plan.Libraries) *plan.TransitionHint {
	if libs == nil {
		return nil
	}
	if h := stepHint(a, libs, false); h != nil {
		return h
	}
	return stepHint(b, libs, true)
}

func stepHint(s timeline.Segment, libs *plan.Libraries, entry bool) *plan.TransitionHint {
	tmpl, ok := libs.Template(s.Provenance.Template)
	if !ok || s.Provenance.Step >= len(tmpl.Steps) {
		return nil
	}
	step := tmpl.Steps[s.Provenance.Step]
	if entry {
		return step.Entry
	}
	return step.Exit
}
