package calculator

import (
	"math"
	"testing"
	"time"

	"github.com/bilalabdelkadir/teftef-trader/internal/model"
)

func series(n int, f func(i int) float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = f(i)
	}
	return out
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestEmptyBelowMinimumLength(t *testing.T) {
	for n := 0; n <= 60; n++ {
		data := series(n, func(i int) float64 { return 100 + math.Sin(float64(i)) })

		if got := SMA(data, 20); (len(got) == 0) != (n < 20) {
			t.Errorf("SMA n=%d: len=%d", n, len(got))
		}
		if got := EMA(data, 20); (len(got) == 0) != (n < 20) {
			t.Errorf("EMA n=%d: len=%d", n, len(got))
		}
		if got := RSI(data, 14); (len(got) == 0) != (n < 15) {
			t.Errorf("RSI n=%d: len=%d", n, len(got))
		}

		m := MACD(data, MACDFast, MACDSlow, MACDSignal)
		if n < MACDSlow && (len(m.MACD) != 0 || len(m.Signal) != 0 || len(m.Histogram) != 0) {
			t.Errorf("MACD n=%d: expected empty, got %d", n, len(m.MACD))
		}
		if n >= MACDSlow+MACDSignal-1 && len(m.MACD) == 0 {
			t.Errorf("MACD n=%d: expected values", n)
		}
	}
}

func TestSMA(t *testing.T) {
	got := SMA([]float64{1, 2, 3, 4, 5}, 3)
	want := []float64{2, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("expected %d values, got %d", len(want), len(got))
	}
	for i := range want {
		if !almostEqual(got[i], want[i]) {
			t.Errorf("SMA[%d] = %f, want %f", i, got[i], want[i])
		}
	}
}

func TestEMA_LengthAndSeed(t *testing.T) {
	data := series(40, func(i int) float64 { return float64(i*i%17) + 10 })
	for _, period := range []int{1, 5, 12, 26, 40} {
		got := EMA(data, period)
		if len(got) != len(data)-period+1 {
			t.Errorf("period %d: len=%d, want %d", period, len(got), len(data)-period+1)
			continue
		}
		seed := SMA(data[:period], period)
		if got[0] != seed[0] {
			t.Errorf("period %d: first EMA %f != SMA seed %f", period, got[0], seed[0])
		}
	}
}

func TestEMA_Recurrence(t *testing.T) {
	data := []float64{2, 4, 6, 8, 10}
	got := EMA(data, 3)
	// seed 4, multiplier 0.5
	want := []float64{4, 6, 8}
	for i := range want {
		if !almostEqual(got[i], want[i]) {
			t.Errorf("EMA[%d] = %f, want %f", i, got[i], want[i])
		}
	}
}

func TestRSI(t *testing.T) {
	tests := []struct {
		name string
		data []float64
		want float64
	}{
		{"constant", series(30, func(int) float64 { return 1 }), 100},
		{"rising", series(30, func(i int) float64 { return float64(i) }), 100},
		{"falling", series(30, func(i int) float64 { return float64(30 - i) }), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RSI(tt.data, 14)
			if len(got) != len(tt.data)-14 {
				t.Fatalf("len=%d, want %d", len(got), len(tt.data)-14)
			}
			for i, v := range got {
				if !almostEqual(v, tt.want) {
					t.Fatalf("RSI[%d] = %f, want %f", i, v, tt.want)
				}
			}
		})
	}
}

func TestRSI_Alternating(t *testing.T) {
	// mixed gains and losses stay strictly inside (0, 100)
	data := series(31, func(i int) float64 { return float64(10 + i%2) })
	for i, v := range RSI(data, 14) {
		if v <= 0 || v >= 100 {
			t.Fatalf("RSI[%d] = %f out of open range", i, v)
		}
	}
}

func TestMACD(t *testing.T) {
	data := series(60, func(i int) float64 { return 100 + float64(i)*0.5 })
	m := MACD(data, MACDFast, MACDSlow, MACDSignal)

	wantLen := len(data) - MACDSlow + 1 - MACDSignal + 1
	if len(m.MACD) != wantLen || len(m.Signal) != wantLen || len(m.Histogram) != wantLen {
		t.Fatalf("lengths %d/%d/%d, want %d", len(m.MACD), len(m.Signal), len(m.Histogram), wantLen)
	}
	for i := range m.MACD {
		if !almostEqual(m.Histogram[i], m.MACD[i]-m.Signal[i]) {
			t.Errorf("histogram[%d] mismatch", i)
		}
		if m.MACD[i] <= 0 {
			t.Errorf("MACD[%d] = %f, expected positive for a rising series", i, m.MACD[i])
		}
	}
}

func TestMACD_Constant(t *testing.T) {
	data := series(50, func(int) float64 { return 42 })
	m := MACD(data, MACDFast, MACDSlow, MACDSignal)
	for i := range m.MACD {
		if !almostEqual(m.MACD[i], 0) || !almostEqual(m.Histogram[i], 0) {
			t.Fatalf("expected zero MACD for constant input at %d", i)
		}
	}
}

func TestCalculateRange(t *testing.T) {
	now := time.Now()
	candles := []model.Candle{
		{Time: now, High: 10, Low: 5, Volume: 100},
		{Time: now.Add(-time.Hour), High: 12, Low: 6, Volume: 200},
		{Time: now.Add(-2 * time.Hour), High: 11, Low: 4, Volume: 300},
	}
	r, ok := CalculateRange(candles)
	if !ok {
		t.Fatal("expected stats")
	}
	if r.High != 12 || r.Low != 4 || !almostEqual(r.AvgVolume, 200) {
		t.Errorf("unexpected stats: %+v", r)
	}

	if _, ok := CalculateRange(nil); ok {
		t.Error("expected no stats for empty input")
	}
}
