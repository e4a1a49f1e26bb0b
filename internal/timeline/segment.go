// Package timeline turns a choreography plan into a flat, time-ordered,
// gap-free list of segments.
package timeline

import (
	"github.com/bluewatersql/twinklr-sub004/internal/curve"
	"github.com/bluewatersql/twinklr-sub004/internal/plan"
)

// Kind discriminates the segment variants.
type Kind int

const (
	KindStep Kind = iota
	KindGap
	KindTransition
)

func (k Kind) String() string {
	switch k {
	case KindGap:
		return "gap"
	case KindTransition:
		return "transition"
	default:
		return "step"
	}
}

// GapClass labels uncovered timeline intervals.
type GapClass string

const (
	GapIntro        GapClass = "intro"
	GapInterSection GapClass = "inter_section"
	GapEndOfSong    GapClass = "end_of_song"
)

// Provenance records where a segment came from. Step fields apply to
// step segments, transition fields to transition segments.
type Provenance struct {
	Section  int    // 1-based section ordinal
	Template string
	Step     int // step index within the template
	Repeat   int // template repetition counter

	TransitionID string
	BoundaryType string
	SourceID     string
	TargetID     string
	Mode         plan.TransitionMode
}

// Segment is one concrete timeline element over [StartMS, EndMS).
// Created once, never mutated afterwards.
type Segment struct {
	ID       string
	Kind     Kind
	Target   string // fixture id; empty for gaps
	StartMS  int64
	EndMS    int64
	Channels map[string]curve.ChannelValue
	Gap      GapClass // gap segments only
	// Groupable is false for transition segments so downstream writers
	// never merge them with neighbours.
	Groupable  bool
	Provenance Provenance
}

// DurationMS returns the segment length; zero only for snap markers.
func (s *Segment) DurationMS() int64 { return s.EndMS - s.StartMS }

// Covers reports whether t falls inside [StartMS, EndMS).
func (s *Segment) Covers(t int64) bool { return t >= s.StartMS && t < s.EndMS }
