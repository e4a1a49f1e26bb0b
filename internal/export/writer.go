// Package export serializes a compiled show into the yaml document the
// downstream renderer consumes. The encoding is deterministic so
// identical inputs produce byte-identical files.
package export

import (
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bluewatersql/twinklr-sub004/internal/curve"
	"github.com/bluewatersql/twinklr-sub004/internal/show"
	"github.com/bluewatersql/twinklr-sub004/internal/timeline"
)

const Version = "show.v1"

type Document struct {
	Version     string       `yaml:"version"`
	Name        string       `yaml:"name,omitempty"`
	TempoBPM    float64      `yaml:"tempo_bpm"`
	BeatsPerBar int          `yaml:"beats_per_bar"`
	DurationMS  int64        `yaml:"duration_ms"`
	Segments    []SegmentDoc `yaml:"segments"`
	Warnings    []string     `yaml:"warnings,omitempty"`
}

type SegmentDoc struct {
	ID        string                `yaml:"id"`
	Kind      string                `yaml:"kind"`
	Target    string                `yaml:"target,omitempty"`
	StartMS   int64                 `yaml:"start_ms"`
	EndMS     int64                 `yaml:"end_ms"`
	Gap       string                `yaml:"gap,omitempty"`
	Groupable bool                  `yaml:"groupable"`
	Channels  map[string]ChannelDoc `yaml:"channels,omitempty"`

	Transition *TransitionDoc `yaml:"transition,omitempty"`
}

type TransitionDoc struct {
	ID           string `yaml:"id"`
	BoundaryType string `yaml:"boundary_type"`
	SourceID     string `yaml:"source"`
	TargetID     string `yaml:"target"`
	Mode         string `yaml:"mode"`
}

type ChannelDoc struct {
	Static *float64  `yaml:"static,omitempty"`
	Curve  *CurveDoc `yaml:"curve,omitempty"`
}

type CurveDoc struct {
	Name   string `yaml:"name"`
	Source string `yaml:"source"`

	// native oscillator parameters
	Shape     string  `yaml:"shape,omitempty"`
	Center    float64 `yaml:"center,omitempty"`
	Amplitude float64 `yaml:"amplitude,omitempty"`
	Phase     float64 `yaml:"phase,omitempty"`
	Cycles    float64 `yaml:"cycles,omitempty"`

	// custom sample points as [t, v] pairs
	Points [][2]float64 `yaml:"points,omitempty"`
}

// Build flattens a compiled show into its document form.
func Build(s *show.Show) *Document {
	doc := &Document{
		Version:     Version,
		TempoBPM:    s.Grid.TempoBPM(),
		BeatsPerBar: s.Grid.BeatsPerBar(),
		DurationMS:  s.DurationMS,
		Warnings:    s.Warnings,
	}
	if s.Plan != nil {
		doc.Name = s.Plan.Name
	}
	for i := range s.Segments {
		doc.Segments = append(doc.Segments, segmentDoc(&s.Segments[i]))
	}
	return doc
}

func segmentDoc(s *timeline.Segment) SegmentDoc {
	d := SegmentDoc{
		ID:        s.ID,
		Kind:      s.Kind.String(),
		Target:    s.Target,
		StartMS:   s.StartMS,
		EndMS:     s.EndMS,
		Gap:       string(s.Gap),
		Groupable: s.Groupable,
	}
	if len(s.Channels) > 0 {
		d.Channels = map[string]ChannelDoc{}
		for ch, v := range s.Channels {
			d.Channels[ch] = channelDoc(v)
		}
	}
	if s.Kind == timeline.KindTransition {
		d.Transition = &TransitionDoc{
			ID:           s.Provenance.TransitionID,
			BoundaryType: s.Provenance.BoundaryType,
			SourceID:     s.Provenance.SourceID,
			TargetID:     s.Provenance.TargetID,
			Mode:         string(s.Provenance.Mode),
		}
	}
	return d
}

func channelDoc(v curve.ChannelValue) ChannelDoc {
	if v.IsStatic() {
		s := v.Static
		return ChannelDoc{Static: &s}
	}
	c := v.Curve
	cd := &CurveDoc{Name: c.Name, Source: c.Source.String()}
	if c.Source == curve.SourceNative {
		cd.Shape = c.Shape.String()
		cd.Center = c.Center
		cd.Amplitude = c.Amplitude
		cd.Phase = c.Phase
		cd.Cycles = c.Cycles
	} else {
		cd.Points = make([][2]float64, len(c.Points))
		for i, p := range c.Points {
			cd.Points[i] = [2]float64{p.T, p.V}
		}
	}
	return ChannelDoc{Curve: cd}
}

// Encode writes the document as yaml.
func Encode(w io.Writer, s *show.Show) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(Build(s)); err != nil {
		return err
	}
	return enc.Close()
}

// Write serializes the show to a file.
func Write(path string, s *show.Show) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return Encode(f, s)
}
