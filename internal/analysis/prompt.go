package analysis

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bilalabdelkadir/teftef-trader/internal/calculator"
	"github.com/bilalabdelkadir/teftef-trader/internal/model"
	"github.com/bilalabdelkadir/teftef-trader/internal/provider"
)

const (
	promptCandles   = 20
	promptIndicator = 10
	rangeCandles    = 50
	promptTime      = "2006-01-02 15:04:05"
)

// FormatMarketData renders a bundle as the market data block of the user prompt.
func FormatMarketData(b *model.MarketDataBundle) string {
	candles := b.TimeSeries.Values
	if len(candles) > rangeCandles {
		candles = candles[:rangeCandles]
	}
	var price float64
	if len(candles) > 0 {
		price = candles[0].Close
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "\nSYMBOL: %s\n", b.Symbol)
	fmt.Fprintf(&sb, "TIMEFRAME: %s\n", b.Interval)
	fmt.Fprintf(&sb, "CURRENT PRICE: %s\n\n", strconv.FormatFloat(price, 'f', -1, 64))

	sb.WriteString("RECENT PRICE DATA (OHLC):\n")
	lines := make([]string, 0, promptCandles)
	for i, c := range candles {
		if i == promptCandles {
			break
		}
		lines = append(lines, fmt.Sprintf("%s: O=%.5f H=%.5f L=%.5f C=%.5f",
			c.Time.Format(promptTime), c.Open, c.High, c.Low, c.Close))
	}
	sb.WriteString(strings.Join(lines, "\n"))
	sb.WriteString("\n\nTECHNICAL INDICATORS:\n\n")

	ind := b.Indicators
	rsi := make([]string, 0, promptIndicator)
	for i, p := range ind.RSI {
		if i == promptIndicator {
			break
		}
		rsi = append(rsi, fmt.Sprintf("%s: %.2f", p.Time.Format(promptTime), p.Value))
	}
	fmt.Fprintf(&sb, "RSI (%d): %s\n", provider.RSIPeriod, strings.Join(rsi, ", "))
	currentRSI := "N/A"
	if len(ind.RSI) > 0 {
		currentRSI = fmt.Sprintf("%.2f", ind.RSI[0].Value)
	}
	fmt.Fprintf(&sb, "Current RSI: %s\n\n", currentRSI)

	fmt.Fprintf(&sb, "MACD (%d, %d, %d):\n", calculator.MACDFast, calculator.MACDSlow, calculator.MACDSignal)
	macd := make([]string, 0, promptIndicator)
	for i, m := range ind.MACD {
		if i == promptIndicator {
			break
		}
		macd = append(macd, fmt.Sprintf("%s: MACD=%.5f Signal=%.5f Hist=%.5f",
			m.Time.Format(promptTime), m.MACD, m.Signal, m.Histogram))
	}
	sb.WriteString(strings.Join(macd, "\n"))

	var sma, ema float64
	if len(ind.SMA20) > 0 {
		sma = ind.SMA20[0].Value
	}
	if len(ind.EMA50) > 0 {
		ema = ind.EMA50[0].Value
	}
	sb.WriteString("\n\nMOVING AVERAGES:\n")
	fmt.Fprintf(&sb, "SMA 20: %.5f (Price %s SMA20)\n", sma, aboveBelow(price, sma))
	fmt.Fprintf(&sb, "EMA 50: %.5f (Price %s EMA50)\n\n", ema, aboveBelow(price, ema))

	sb.WriteString("PRICE STATISTICS (Last 50 candles):\n")
	if stats, ok := calculator.CalculateRange(candles); ok {
		fmt.Fprintf(&sb, "High of Range: %.5f\n", stats.High)
		fmt.Fprintf(&sb, "Low of Range: %.5f\n", stats.Low)
		fmt.Fprintf(&sb, "Average Volume: %.0f\n", stats.AvgVolume)
	} else {
		sb.WriteString("High of Range: N/A\nLow of Range: N/A\nAverage Volume: N/A\n")
	}
	return sb.String()
}

func aboveBelow(price, level float64) string {
	if price > level {
		return "above"
	}
	return "below"
}

// UserPrompt wraps the market data block with the analysis instructions.
func UserPrompt(marketData string) string {
	return `Analyze the following market data and determine if there is a valid trade setup.

` + marketData + `

If there is a valid setup, provide specific entry, stop loss, and take profit levels.
If there is no clear setup, set hasValidSetup to false but still provide your analysis.

Be conservative with confidence scores:
- 80-100: Exceptional setup with multiple confluences
- 60-79: Good setup with solid reasoning
- 40-59: Marginal setup, proceed with caution
- 0-39: No clear setup or too risky

Always consider risk management and never suggest trades without clear invalidation levels.`
}
