package calculator

// RSI computes the Wilder-smoothed relative strength index series of data (oldest first).
// Requires at least period+1 points, otherwise returns an empty slice.
// A zero average loss yields 100.
func RSI(data []float64, period int) []float64 {
	if period <= 0 || len(data) < period+1 {
		return []float64{}
	}

	// Seed average gain/loss over the first `period` changes
	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := data[i] - data[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	out := make([]float64, 0, len(data)-period)
	out = append(out, rsiValue(avgGain, avgLoss))

	for i := period + 1; i < len(data); i++ {
		change := data[i] - data[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out = append(out, rsiValue(avgGain, avgLoss))
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}
