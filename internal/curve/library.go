package curve

import "fmt"

// LookupError reports an unknown curve, preset, or source name.
type LookupError struct {
	Kind string // "curve" | "preset"
	Name string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Kind, e.Name)
}

// Params carries the tunable parameters for curve generation. Zero
// fields fall back to the definition defaults.
type Params struct {
	Amplitude float64
	Center    float64
	Phase     float64
	Cycles    float64
	DurationS float64 // wall-clock seconds; drives custom point counts
}

// merged overlays non-zero caller params onto preset params.
func (p Params) merged(over Params) Params {
	out := p
	if over.Amplitude != 0 {
		out.Amplitude = over.Amplitude
	}
	if over.Center != 0 {
		out.Center = over.Center
	}
	if over.Phase != 0 {
		out.Phase = over.Phase
	}
	if over.Cycles != 0 {
		out.Cycles = over.Cycles
	}
	if over.DurationS != 0 {
		out.DurationS = over.DurationS
	}
	return out
}

// Definition describes one generatable pattern.
type Definition struct {
	Name   string
	Source Source
	Shape  Shape // native only
	// custom only: emits the value for normalized time t within [lo,hi]
	Sample func(t float64, p Params, lo, hi float64) float64
}

// Preset names a base curve plus pre-tuned parameters. A preset
// inherits the source of its base.
type Preset struct {
	Name   string
	Base   string
	Params Params
}

// Library is the read-only curve lookup table, populated once at
// startup and shared by reference.
type Library struct {
	curves  map[string]Definition
	presets map[string]Preset
}

// NewLibrary returns a library with the built-in patterns and presets
// registered.
func NewLibrary() *Library {
	l := &Library{
		curves:  map[string]Definition{},
		presets: map[string]Preset{},
	}
	for _, d := range builtinCurves() {
		l.curves[d.Name] = d
	}
	for _, p := range builtinPresets() {
		l.presets[p.Name] = p
	}
	return l
}

// Register adds or replaces a pattern definition.
func (l *Library) Register(d Definition) { l.curves[d.Name] = d }

// RegisterPreset adds or replaces a preset.
func (l *Library) RegisterPreset(p Preset) { l.presets[p.Name] = p }

// Resolve maps a name to its definition, following one level of preset
// indirection. The returned params are the preset params overlaid with
// the caller's.
func (l *Library) Resolve(name string, p Params) (Definition, Params, error) {
	if d, ok := l.curves[name]; ok {
		return d, p, nil
	}
	pre, ok := l.presets[name]
	if !ok {
		return Definition{}, Params{}, &LookupError{Kind: "curve", Name: name}
	}
	d, ok := l.curves[pre.Base]
	if !ok {
		return Definition{}, Params{}, &LookupError{Kind: "preset", Name: name}
	}
	return d, pre.Params.merged(p), nil
}

// Names lists registered pattern names (unordered).
func (l *Library) Names() []string {
	out := make([]string, 0, len(l.curves))
	for k := range l.curves {
		out = append(out, k)
	}
	return out
}

func builtinCurves() []Definition {
	native := func(name string, sh Shape) Definition {
		return Definition{Name: name, Source: SourceNative, Shape: sh}
	}
	return []Definition{
		native("sine", ShapeSine),
		native("cosine", ShapeCosine),
		native("triangle", ShapeTriangle),
		native("sawtooth", ShapeSawtooth),
		native("square", ShapeSquare),
		{
			Name:   "bounce",
			Source: SourceCustom,
			Sample: func(t float64, p Params, lo, hi float64) float64 {
				cycles := p.Cycles
				if cycles == 0 {
					cycles = 1
				}
				// rectified sine: rest at lo, peaks at hi
				u := absSin(t * cycles)
				return lo + (hi-lo)*u
			},
		},
		{
			Name:   "steps",
			Source: SourceCustom,
			Sample: func(t float64, p Params, lo, hi float64) float64 {
				levels := p.Cycles
				if levels < 2 {
					levels = 4
				}
				step := float64(int(t * levels))
				if step > levels-1 {
					step = levels - 1
				}
				return lo + (hi-lo)*step/(levels-1)
			},
		},
		{
			Name:   "ramp",
			Source: SourceCustom,
			Sample: func(t float64, p Params, lo, hi float64) float64 {
				return lo + (hi-lo)*t
			},
		},
	}
}

func builtinPresets() []Preset {
	return []Preset{
		{Name: "gentle_sway", Base: "sine", Params: Params{Amplitude: 0.3, Cycles: 1}},
		{Name: "full_sweep", Base: "sine", Params: Params{Amplitude: 1, Cycles: 1}},
		{Name: "figure_wave", Base: "triangle", Params: Params{Amplitude: 0.8, Cycles: 2}},
		{Name: "strobe_soft", Base: "square", Params: Params{Amplitude: 0.5, Cycles: 8}},
		{Name: "pulse_up", Base: "bounce", Params: Params{Cycles: 2}},
	}
}

func absSin(x float64) float64 {
	s := sin2pi(x)
	if s < 0 {
		return -s
	}
	return s
}
