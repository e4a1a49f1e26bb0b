// Package blend computes the curve joining two channel states across a
// transition window. Blending is independent per fixture per channel.
package blend

import (
	"github.com/bluewatersql/twinklr-sub004/internal/curve"
)

// MinSamples is the floor on blend resolution; requests below it are
// raised to it.
const MinSamples = 10

// Channels blends a source and target ChannelValue into one sampled
// curve over normalized [0,1]. The result starts at the source boundary
// value and ends at the target boundary value; when either side is a
// curve its shape is resampled across the window rather than frozen to
// a constant.
func Channels(src, dst curve.ChannelValue, samples int) *curve.Curve {
	if samples < MinSamples {
		samples = MinSamples
	}
	pts := make([]curve.Point, samples)
	for i := 0; i < samples; i++ {
		t := float64(i) / float64(samples-1)
		w := smoothstep(t)
		a := src.Eval(t)
		b := dst.Eval(t)
		pts[i] = curve.Point{T: t, V: a + (b-a)*w}
	}
	return &curve.Curve{Name: "blend", Source: curve.SourceCustom, Points: pts}
}

// smoothstep weights the mix: 0 at the window start, 1 at the end, with
// eased shoulders.
func smoothstep(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x * x * (3 - 2*x)
}
