package calculator

// Default MACD parameters.
const (
	MACDFast   = 12
	MACDSlow   = 26
	MACDSignal = 9
)

// MACDResult holds the three MACD lines, aligned so index i refers to the same bar.
type MACDResult struct {
	MACD      []float64
	Signal    []float64
	Histogram []float64
}

// MACD computes the moving average convergence divergence of data (oldest first).
// All lines are empty when there are fewer than slow points or too few MACD
// values to seed the signal line.
func MACD(data []float64, fast, slow, signal int) MACDResult {
	empty := MACDResult{MACD: []float64{}, Signal: []float64{}, Histogram: []float64{}}
	if fast <= 0 || signal <= 0 || slow < fast || len(data) < slow {
		return empty
	}

	fastEMA := EMA(data, fast)
	slowEMA := EMA(data, slow)

	// fastEMA starts slow-fast bars earlier than slowEMA
	offset := slow - fast
	line := make([]float64, len(slowEMA))
	for i := range slowEMA {
		line[i] = fastEMA[i+offset] - slowEMA[i]
	}

	signalLine := EMA(line, signal)
	if len(signalLine) == 0 {
		return empty
	}

	aligned := line[signal-1:]
	hist := make([]float64, len(signalLine))
	for i := range signalLine {
		hist[i] = aligned[i] - signalLine[i]
	}

	return MACDResult{
		MACD:      append([]float64(nil), aligned...),
		Signal:    signalLine,
		Histogram: hist,
	}
}
