package curve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMapper() *Mapper {
	return NewMapper(NewGenerator(NewLibrary(), DefaultSampling()))
}

func boolp(b bool) *bool { return &b }

func TestMapAutoFitTunesNativeSpan(t *testing.T) {
	m := newTestMapper()
	c, err := m.Map(MapRequest{
		CurveName: "sine",
		Channel:   "pan",
		Limits:    Range{Min: 0, Max: 540},
	})
	require.NoError(t, err)

	lo, hi := c.Span()
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 540.0, hi)
	assert.Equal(t, 270.0, c.Center)
}

func TestMapExplicitOverrideDisablesFit(t *testing.T) {
	m := newTestMapper()
	c, err := m.Map(MapRequest{
		CurveName: "sine",
		Channel:   "pan",
		Limits:    Range{Min: 0, Max: 540},
		Override:  boolp(false),
	})
	require.NoError(t, err)

	// never rescaled into the device range
	lo, hi := c.Span()
	assert.Equal(t, -1.0, lo)
	assert.Equal(t, 1.0, hi)
}

func TestMapDimmerHasNoFitByDefault(t *testing.T) {
	m := newTestMapper()
	c, err := m.Map(MapRequest{
		CurveName: "sine",
		Params:    Params{Amplitude: 0.2},
		Channel:   "dimmer",
		Limits:    Range{Min: 0, Max: 255},
	})
	require.NoError(t, err)

	lo, hi := c.Span()
	assert.Equal(t, -0.2, lo)
	assert.Equal(t, 0.2, hi)
}

func TestMapGeometryConfigBeatsChannelDefaults(t *testing.T) {
	m := newTestMapper()

	// per-channel geometry config flips the dimmer default on
	c, err := m.Map(MapRequest{
		CurveName: "sine",
		Channel:   "dimmer",
		Limits:    Range{Min: 0, Max: 255},
		Fit:       &AutoFit{PerChannel: map[string]bool{"dimmer": true}},
	})
	require.NoError(t, err)
	lo, hi := c.Span()
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 255.0, hi)

	// geometry global switch turns pan fitting off
	c, err = m.Map(MapRequest{
		CurveName: "sine",
		Channel:   "pan",
		Limits:    Range{Min: 0, Max: 540},
		Fit:       &AutoFit{Global: boolp(false)},
	})
	require.NoError(t, err)
	lo, hi = c.Span()
	assert.Equal(t, -1.0, lo)
	assert.Equal(t, 1.0, hi)
}

func TestMapOverrideBeatsGeometryConfig(t *testing.T) {
	m := newTestMapper()
	c, err := m.Map(MapRequest{
		CurveName: "sine",
		Channel:   "pan",
		Limits:    Range{Min: 0, Max: 540},
		Fit:       &AutoFit{Global: boolp(true)},
		Override:  boolp(false),
	})
	require.NoError(t, err)
	_, hi := c.Span()
	assert.Equal(t, 1.0, hi)
}

func TestMapUnknownChannelFallsBackToFit(t *testing.T) {
	m := newTestMapper()
	c, err := m.Map(MapRequest{
		CurveName: "sine",
		Channel:   "gobo",
		Limits:    Range{Min: 0, Max: 7},
	})
	require.NoError(t, err)
	lo, hi := c.Span()
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 7.0, hi)
}

func TestMapCustomIgnoresFit(t *testing.T) {
	m := newTestMapper()
	c, err := m.Map(MapRequest{
		CurveName: "ramp",
		Channel:   "pan",
		Limits:    Range{Min: 100, Max: 200},
	})
	require.NoError(t, err)
	require.Equal(t, SourceCustom, c.Source)
	lo, hi := c.Span()
	assert.Equal(t, 100.0, lo)
	assert.Equal(t, 200.0, hi)
}

func TestMapUnknownCurveIsFatal(t *testing.T) {
	m := newTestMapper()
	_, err := m.Map(MapRequest{CurveName: "nope", Channel: "pan", Limits: Range{Min: 0, Max: 1}})
	require.Error(t, err)
}
