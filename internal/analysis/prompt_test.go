package analysis

import (
	"strings"
	"testing"

	"github.com/bilalabdelkadir/teftef-trader/internal/model"
)

func TestFormatMarketData(t *testing.T) {
	out := FormatMarketData(testBundle("EUR/USD", "1h"))

	for _, want := range []string{
		"SYMBOL: EUR/USD\n",
		"TIMEFRAME: 1h\n",
		"CURRENT PRICE: 1.1\n",
		"2024-03-01 12:00:00: O=1.09950 H=1.10100 L=1.09900 C=1.10000",
		"RSI (14): 2024-03-01 12:00:00: 61.23\n",
		"Current RSI: 61.23",
		"MACD (12, 26, 9):\n2024-03-01 12:00:00: MACD=0.00120 Signal=0.00100 Hist=0.00020",
		"SMA 20: 1.09000 (Price above SMA20)",
		"EMA 50: 1.20000 (Price below EMA50)",
		"High of Range: 1.10100",
		"Low of Range: 1.05000",
		"Average Volume: 100",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}

	ohlc := strings.Count(out, ": O=")
	if ohlc != 20 {
		t.Errorf("got %d OHLC lines, want 20", ohlc)
	}
}

func TestFormatMarketData_Empty(t *testing.T) {
	out := FormatMarketData(&model.MarketDataBundle{Symbol: "AAPL", Interval: "1day"})
	for _, want := range []string{"CURRENT PRICE: 0\n", "Current RSI: N/A", "High of Range: N/A"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}
