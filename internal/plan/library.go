package plan

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bluewatersql/twinklr-sub004/internal/curve"
)

// PatternRef names a curve pattern plus its tuning for one channel.
// Movement and dimmer instructions resolve to these typed refs at load
// time instead of carrying free-form parameter dicts around.
type PatternRef struct {
	Curve     string  `yaml:"curve"`
	Amplitude float64 `yaml:"amplitude,omitempty"`
	Center    float64 `yaml:"center,omitempty"`
	Phase     float64 `yaml:"phase,omitempty"`
	Cycles    float64 `yaml:"cycles,omitempty"`
	Fit       *bool   `yaml:"fit,omitempty"` // explicit auto-fit override
}

// Params converts the ref tuning into generator params.
func (r PatternRef) Params(durationS float64) curve.Params {
	return curve.Params{
		Amplitude: r.Amplitude,
		Center:    r.Center,
		Phase:     r.Phase,
		Cycles:    r.Cycles,
		DurationS: durationS,
	}
}

// MovementDef drives the pan/tilt channels of a fixture.
type MovementDef struct {
	Pan  *PatternRef `yaml:"pan,omitempty"`
	Tilt *PatternRef `yaml:"tilt,omitempty"`
}

// GeometryDef carries the legal device ranges per channel and the
// geometry-level auto-fit configuration.
type GeometryDef struct {
	Channels map[string]curve.Range `yaml:"channels"`
	Fit      *curve.AutoFit         `yaml:"fit,omitempty"`
}

// DimmerDef is a tagged variant: either a static level or a pattern.
type DimmerDef struct {
	Static  *float64    `yaml:"static,omitempty"`
	Pattern *PatternRef `yaml:"pattern,omitempty"`
}

// Step is one entry of a template: movement/geometry/dimmer ids, a bar
// duration, and optional entry/exit transition defaults.
type Step struct {
	Movement     string          `yaml:"movement"`
	Geometry     string          `yaml:"geometry"`
	Dimmer       string          `yaml:"dimmer,omitempty"`
	DurationBars float64         `yaml:"duration_bars"`
	Entry        *TransitionHint `yaml:"entry,omitempty"`
	Exit         *TransitionHint `yaml:"exit,omitempty"`
}

// Template is an ordered, repeatable step sequence.
type Template struct {
	Steps []Step `yaml:"steps"`
}

// Libraries bundles every read-only lookup table the pipeline needs.
// Built once at startup and passed by reference into each component.
type Libraries struct {
	Templates  map[string]Template    `yaml:"templates"`
	Movements  map[string]MovementDef `yaml:"movements"`
	Geometries map[string]GeometryDef `yaml:"geometries"`
	Dimmers    map[string]DimmerDef   `yaml:"dimmers"`

	Curves *curve.Library `yaml:"-"`
}

// Template looks up a template by id.
func (l *Libraries) Template(id string) (Template, bool) {
	t, ok := l.Templates[id]
	return t, ok
}

// LoadLibraries reads a library file and attaches the built-in curve
// library.
func LoadLibraries(path string) (*Libraries, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var libs Libraries
	if err := yaml.Unmarshal(b, &libs); err != nil {
		return nil, fmt.Errorf("parse libraries %s: %w", path, err)
	}
	libs.Curves = curve.NewLibrary()
	return &libs, nil
}

// File is the on-disk plan document: timing plus the plan itself.
type File struct {
	Timing Timing `yaml:"timing"`
	Plan   Plan   `yaml:"plan"`
}

// Load reads a plan file.
func Load(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse plan %s: %w", path, err)
	}
	return &f, nil
}

// Save writes a plan file; used by authoring tools round-tripping plans.
func Save(path string, f *File) error {
	b, err := yaml.Marshal(f)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}
