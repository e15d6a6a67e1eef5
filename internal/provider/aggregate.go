package provider

import "github.com/bilalabdelkadir/teftef-trader/internal/model"

// AggregateCandles merges newest-first candles into groups of size, grouping
// from the oldest candle forward. A trailing partial group is kept.
// The result is newest first.
func AggregateCandles(candles []model.Candle, size int) []model.Candle {
	if size <= 1 || len(candles) == 0 {
		return candles
	}

	n := len(candles)
	out := make([]model.Candle, 0, (n+size-1)/size)
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		// oldest-first index k maps to candles[n-1-k]
		first := candles[n-1-start]
		agg := model.Candle{
			Time:  first.Time,
			Open:  first.Open,
			High:  first.High,
			Low:   first.Low,
			Close: candles[n-end].Close,
		}
		for k := start; k < end; k++ {
			c := candles[n-1-k]
			if c.High > agg.High {
				agg.High = c.High
			}
			if c.Low < agg.Low {
				agg.Low = c.Low
			}
			agg.Volume += c.Volume
		}
		out = append(out, agg)
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
