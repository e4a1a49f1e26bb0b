package curve

import "math"

// DefaultPoints is the custom-curve sample count used when the caller
// supplies no duration.
const DefaultPoints = 50

// Sampling controls how many points a custom curve gets for a given
// wall-clock duration.
type Sampling struct {
	PointsPerSecond float64
	MinPoints       int
	MaxPoints       int
}

// DefaultSampling matches the renderer's comfortable resolution.
func DefaultSampling() Sampling {
	return Sampling{PointsPerSecond: 10, MinPoints: 12, MaxPoints: 400}
}

// Generator produces curves from library definitions.
type Generator struct {
	lib      *Library
	sampling Sampling
}

// NewGenerator wires a generator to a library.
func NewGenerator(lib *Library, s Sampling) *Generator {
	if s.PointsPerSecond <= 0 {
		s = DefaultSampling()
	}
	return &Generator{lib: lib, sampling: s}
}

// Library exposes the wired library.
func (g *Generator) Library() *Library { return g.lib }

// Generate builds the named curve. Native curves are parametric and
// ignore limits at generation time (the mapper tunes them afterwards).
// Custom curves sample their definition directly into [limits.Min,
// limits.Max]. Unknown names return a LookupError.
func (g *Generator) Generate(name string, p Params, limits Range) (*Curve, error) {
	def, eff, err := g.lib.Resolve(name, p)
	if err != nil {
		return nil, err
	}
	if def.Source == SourceNative {
		amp := eff.Amplitude
		if amp == 0 {
			amp = 1
		}
		return &Curve{
			Name:      name,
			Source:    SourceNative,
			Shape:     def.Shape,
			Center:    eff.Center,
			Amplitude: amp,
			Phase:     eff.Phase,
			Cycles:    eff.Cycles,
		}, nil
	}

	n := g.pointCount(eff.DurationS)
	pts := make([]Point, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n-1)
		pts[i] = Point{T: t, V: def.Sample(t, eff, limits.Min, limits.Max)}
	}
	return &Curve{Name: name, Source: SourceCustom, Points: pts}, nil
}

// pointCount clamps duration*pps into [min,max]; unknown duration uses
// DefaultPoints.
func (g *Generator) pointCount(durationS float64) int {
	if durationS <= 0 {
		return DefaultPoints
	}
	n := int(math.Round(durationS * g.sampling.PointsPerSecond))
	if n < g.sampling.MinPoints {
		n = g.sampling.MinPoints
	}
	if n > g.sampling.MaxPoints {
		n = g.sampling.MaxPoints
	}
	return n
}

func sin2pi(x float64) float64 { return math.Sin(2 * math.Pi * x) }
