// Package plan holds the declarative choreography input model: the
// bar-quantized plan itself plus the read-only template, movement,
// geometry, and dimmer libraries it references. Everything here is
// populated once at load time and treated as immutable afterwards.
package plan

// TransitionMode selects how a boundary is crossed.
type TransitionMode string

const (
	ModeSnap             TransitionMode = "snap"
	ModeCrossfade        TransitionMode = "crossfade"
	ModeFadeThroughBlack TransitionMode = "fade_through_black"
)

// TransitionHint is the authored transition request attached to a step
// edge or supplied as a default.
type TransitionHint struct {
	Mode         TransitionMode            `yaml:"mode"`
	DurationBars float64                   `yaml:"duration_bars"`
	Curve        string                    `yaml:"curve,omitempty"`
	Channels     map[string]TransitionMode `yaml:"channels,omitempty"`
	FadeOutRatio float64                   `yaml:"fade_out_ratio,omitempty"`
}

// Section assigns one template to a set of targets over an inclusive
// 1-indexed bar interval.
type Section struct {
	StartBar int                `yaml:"start_bar"`
	EndBar   int                `yaml:"end_bar"`
	Template string             `yaml:"template"`
	Targets  []string           `yaml:"targets"`
	Params   map[string]float64 `yaml:"params,omitempty"`
}

// Plan is the full choreography input, pre-validated by the authoring
// policy layer. This core reads it and never mutates it.
type Plan struct {
	Name     string    `yaml:"name,omitempty"`
	Sections []Section `yaml:"sections"`
}

// Timing carries the BeatGrid construction parameters supplied by song
// analysis.
type Timing struct {
	TempoBPM        float64 `yaml:"tempo_bpm"`
	BeatsPerBar     int     `yaml:"beats_per_bar"`
	TotalBars       int     `yaml:"total_bars"`
	OffsetMS        int64   `yaml:"offset_ms,omitempty"`
	TotalDurationMS int64   `yaml:"total_duration_ms,omitempty"`
}
