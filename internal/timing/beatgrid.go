package timing

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidGrid is returned when a BeatGrid is constructed with
// non-positive tempo or meter values.
var ErrInvalidGrid = errors.New("invalid beat grid")

// BeatGrid maps musical time (1-indexed bars) onto wall-clock
// milliseconds. It is immutable after construction.
type BeatGrid struct {
	tempoBPM    float64
	beatsPerBar int
	totalBars   int
	offsetMS    int64
	msPerBar    float64
}

// NewBeatGrid validates tempo/meter and returns a grid. Bar 1 starts at
// offsetMS.
func NewBeatGrid(tempoBPM float64, beatsPerBar, totalBars int, offsetMS int64) (*BeatGrid, error) {
	if tempoBPM <= 0 {
		return nil, fmt.Errorf("%w: tempo_bpm=%v", ErrInvalidGrid, tempoBPM)
	}
	if beatsPerBar <= 0 {
		return nil, fmt.Errorf("%w: beats_per_bar=%d", ErrInvalidGrid, beatsPerBar)
	}
	if totalBars < 0 {
		return nil, fmt.Errorf("%w: total_bars=%d", ErrInvalidGrid, totalBars)
	}
	return &BeatGrid{
		tempoBPM:    tempoBPM,
		beatsPerBar: beatsPerBar,
		totalBars:   totalBars,
		offsetMS:    offsetMS,
		msPerBar:    float64(beatsPerBar) * 60000.0 / tempoBPM,
	}, nil
}

func (g *BeatGrid) TempoBPM() float64 { return g.tempoBPM }
func (g *BeatGrid) BeatsPerBar() int  { return g.beatsPerBar }
func (g *BeatGrid) TotalBars() int    { return g.totalBars }
func (g *BeatGrid) OffsetMS() int64   { return g.offsetMS }

// MsPerBar returns the exact (unrounded) duration of one bar.
func (g *BeatGrid) MsPerBar() float64 { return g.msPerBar }

// BarsToMS converts a 1-indexed bar position to absolute milliseconds.
// Fractional bars are allowed; BarsToMS(1) == OffsetMS().
func (g *BeatGrid) BarsToMS(bar float64) int64 {
	return g.offsetMS + int64(math.Round((bar-1)*g.msPerBar))
}

// MSToBars is the inverse of BarsToMS, returning a fractional bar position.
func (g *BeatGrid) MSToBars(ms int64) float64 {
	return float64(ms-g.offsetMS)/g.msPerBar + 1
}

// BarsToDurationMS converts a bar count to a rounded millisecond duration.
func (g *BeatGrid) BarsToDurationMS(bars float64) int64 {
	return int64(math.Round(bars * g.msPerBar))
}

// DurationMS returns the wall-clock length of the whole grid.
func (g *BeatGrid) DurationMS() int64 {
	return g.offsetMS + int64(math.Round(float64(g.totalBars)*g.msPerBar))
}
