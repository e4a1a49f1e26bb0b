package curve

import "math"

// Source distinguishes how a curve was produced. Native curves are
// parametric oscillators tuned after generation; custom curves are point
// sets emitted directly in destination units.
type Source int

const (
	SourceNative Source = iota
	SourceCustom
)

func (s Source) String() string {
	if s == SourceCustom {
		return "custom"
	}
	return "native"
}

// Shape selects the oscillator waveform for native curves.
type Shape int

const (
	ShapeSine Shape = iota
	ShapeCosine
	ShapeTriangle
	ShapeSawtooth
	ShapeSquare
)

func (s Shape) String() string {
	switch s {
	case ShapeCosine:
		return "cosine"
	case ShapeTriangle:
		return "triangle"
	case ShapeSawtooth:
		return "sawtooth"
	case ShapeSquare:
		return "square"
	default:
		return "sine"
	}
}

// Point is one sample of a custom curve. T is normalized time in [0,1];
// V is already in destination channel units.
type Point struct {
	T float64
	V float64
}

// Curve maps normalized time in [0,1] to a channel value. A native curve
// evaluates its oscillator parameters; a custom curve interpolates its
// point set.
type Curve struct {
	Name   string
	Source Source

	// native oscillator parameters
	Shape     Shape
	Center    float64
	Amplitude float64
	Phase     float64 // in cycles
	Cycles    float64

	// custom sample points, sorted by T
	Points []Point
}

// Eval returns the curve value at normalized time t. Outside [0,1] the
// boundary value is held.
func (c *Curve) Eval(t float64) float64 {
	if c.Source == SourceCustom {
		return evalPoints(c.Points, t)
	}
	return c.Center + c.Amplitude*c.waveform(t)
}

// Span returns the theoretical [min,max] the curve can reach.
func (c *Curve) Span() (float64, float64) {
	if c.Source == SourceCustom {
		if len(c.Points) == 0 {
			return 0, 0
		}
		lo, hi := c.Points[0].V, c.Points[0].V
		for _, p := range c.Points[1:] {
			lo = math.Min(lo, p.V)
			hi = math.Max(hi, p.V)
		}
		return lo, hi
	}
	return c.Center - math.Abs(c.Amplitude), c.Center + math.Abs(c.Amplitude)
}

// waveform evaluates the normalized oscillator in [-1,1].
func (c *Curve) waveform(t float64) float64 {
	cycles := c.Cycles
	if cycles == 0 {
		cycles = 1
	}
	x := t*cycles + c.Phase
	switch c.Shape {
	case ShapeCosine:
		return math.Cos(2 * math.Pi * x)
	case ShapeTriangle:
		return 1 - 4*math.Abs(frac(x)-0.5)
	case ShapeSawtooth:
		return 2*frac(x) - 1
	case ShapeSquare:
		if frac(x) < 0.5 {
			return 1
		}
		return -1
	default:
		return math.Sin(2 * math.Pi * x)
	}
}

func frac(x float64) float64 { return x - math.Floor(x) }

// evalPoints linearly interpolates a sorted point set, holding the
// boundary values outside the covered range.
func evalPoints(pts []Point, t float64) float64 {
	n := len(pts)
	if n == 0 {
		return 0
	}
	if n == 1 || t <= pts[0].T {
		return pts[0].V
	}
	if t >= pts[n-1].T {
		return pts[n-1].V
	}
	for i := 0; i < n-1; i++ {
		a, b := pts[i], pts[i+1]
		if t >= a.T && t <= b.T {
			den := b.T - a.T
			if den <= 0 {
				return b.V
			}
			u := (t - a.T) / den
			return a.V + (b.V-a.V)*u
		}
	}
	return pts[n-1].V
}

// ChannelValue is the value assigned to one control channel: either a
// static scalar or a curve. The zero value is static 0.
type ChannelValue struct {
	Static float64
	Curve  *Curve
}

// Eval returns the channel value at normalized time t.
func (v ChannelValue) Eval(t float64) float64 {
	if v.Curve != nil {
		return v.Curve.Eval(t)
	}
	return v.Static
}

// IsStatic reports whether the value carries no curve.
func (v ChannelValue) IsStatic() bool { return v.Curve == nil }

// StaticValue builds a static ChannelValue.
func StaticValue(v float64) ChannelValue { return ChannelValue{Static: v} }

// CurveValue builds a curve-backed ChannelValue.
func CurveValue(c *Curve) ChannelValue { return ChannelValue{Curve: c} }
