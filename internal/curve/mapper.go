package curve

// Range is a channel's legal device value range.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// AutoFit is the per-geometry boundary-fit configuration: an optional
// global switch plus optional per-channel overrides.
type AutoFit struct {
	Global     *bool           `yaml:"global,omitempty"`
	PerChannel map[string]bool `yaml:"channels,omitempty"`
}

// channelFitDefaults are the built-in auto-fit defaults per channel.
var channelFitDefaults = map[string]bool{
	"pan":    true,
	"tilt":   true,
	"dimmer": false,
}

// MapRequest asks the mapper for a curve mapped into one channel's range.
type MapRequest struct {
	CurveName string
	Params    Params
	Channel   string
	Limits    Range
	Fit       *AutoFit // geometry-level config, may be nil
	Override  *bool    // explicit caller override, highest priority
}

// Mapper generates curves and fits them into device ranges.
type Mapper struct {
	gen *Generator
}

// NewMapper wires a mapper to a generator.
func NewMapper(gen *Generator) *Mapper { return &Mapper{gen: gen} }

// Map generates the requested curve and, when auto-fit resolves true,
// tunes native curves so their theoretical span equals the channel
// limits. Custom curves are generated in-range and never re-fitted.
// A failed curve/preset lookup is fatal to this call.
func (m *Mapper) Map(req MapRequest) (*Curve, error) {
	c, err := m.gen.Generate(req.CurveName, req.Params, req.Limits)
	if err != nil {
		return nil, err
	}
	if c.Source == SourceNative && m.resolveFit(req) {
		c.Center = (req.Limits.Min + req.Limits.Max) / 2
		c.Amplitude = (req.Limits.Max - req.Limits.Min) / 2
	}
	return c, nil
}

// fitStage is one step of the auto-fit resolution pipeline; ok=false
// means "try the next stage".
type fitStage func(MapRequest) (fit bool, ok bool)

var fitPipeline = []fitStage{
	func(r MapRequest) (bool, bool) { // 1: explicit caller override
		if r.Override != nil {
			return *r.Override, true
		}
		return false, false
	},
	func(r MapRequest) (bool, bool) { // 2: per-geometry config
		if r.Fit == nil {
			return false, false
		}
		if v, present := r.Fit.PerChannel[r.Channel]; present {
			return v, true
		}
		if r.Fit.Global != nil {
			return *r.Fit.Global, true
		}
		return false, false
	},
	func(r MapRequest) (bool, bool) { // 3: channel defaults
		if v, present := channelFitDefaults[r.Channel]; present {
			return v, true
		}
		return false, false
	},
}

// resolveFit walks the priority pipeline; the final fallback is true.
func (m *Mapper) resolveFit(req MapRequest) bool {
	for _, stage := range fitPipeline {
		if fit, ok := stage(req); ok {
			return fit
		}
	}
	return true
}
