package calculator

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/bilalabdelkadir/teftef-trader/internal/model"
)

// RangeStats summarises a window of candles.
type RangeStats struct {
	High      float64
	Low       float64
	AvgVolume float64
}

// CalculateRange returns the highest high, lowest low and mean volume of candles.
// The second return value is false when candles is empty.
func CalculateRange(candles []model.Candle) (RangeStats, bool) {
	if len(candles) == 0 {
		return RangeStats{}, false
	}
	highs := make([]float64, len(candles))
	lows := make([]float64, len(candles))
	volumes := make([]float64, len(candles))
	for i, c := range candles {
		highs[i] = c.High
		lows[i] = c.Low
		volumes[i] = c.Volume
	}
	return RangeStats{
		High:      floats.Max(highs),
		Low:       floats.Min(lows),
		AvgVolume: stat.Mean(volumes, nil),
	}, true
}
