package calculator

// SMA computes the simple moving average series of data (oldest first).
// Returns an empty slice when there are fewer than period points.
func SMA(data []float64, period int) []float64 {
	if period <= 0 || len(data) < period {
		return []float64{}
	}
	out := make([]float64, 0, len(data)-period+1)
	sum := 0.0
	for i := 0; i < period; i++ {
		sum += data[i]
	}
	out = append(out, sum/float64(period))
	for i := period; i < len(data); i++ {
		sum += data[i] - data[i-period]
		out = append(out, sum/float64(period))
	}
	return out
}

// EMA computes the exponential moving average series of data, seeded with the
// SMA of the first period points. Returns an empty slice when there are fewer than period points.
func EMA(data []float64, period int) []float64 {
	if period <= 0 || len(data) < period {
		return []float64{}
	}
	multiplier := 2.0 / float64(period+1)

	seed := 0.0
	for i := 0; i < period; i++ {
		seed += data[i]
	}
	prev := seed / float64(period)

	out := make([]float64, 0, len(data)-period+1)
	out = append(out, prev)
	for i := period; i < len(data); i++ {
		prev = (data[i]-prev)*multiplier + prev
		out = append(out, prev)
	}
	return out
}
