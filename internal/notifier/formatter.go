package notifier

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"github.com/bilalabdelkadir/teftef-trader/internal/model"
	"github.com/bilalabdelkadir/teftef-trader/internal/recorder"
)

const maxReasoning = 600

// FormatSignalAlert formats one analysis result as a trade alert.
func FormatSignalAlert(r *model.AnalysisResult) string {
	var b strings.Builder
	sig := r.Signal

	icon := "🟢"
	if sig.Direction == model.DirectionSell {
		icon = "🔴"
	}
	fmt.Fprintf(&b, "%s <b>%s %s</b> | %s\n", icon, sig.Direction, html.EscapeString(r.Symbol), r.Interval)
	fmt.Fprintf(&b, "Market: %s | Strategy: %s\n\n", r.Market, html.EscapeString(r.Strategy))

	fmt.Fprintf(&b, "Entry: %s\n", formatPrice(sig.EntryPrice))
	fmt.Fprintf(&b, "Stop loss: %s\n", formatPrice(sig.StopLoss))
	fmt.Fprintf(&b, "Take profit: %s\n", formatPrice(sig.TakeProfit))
	fmt.Fprintf(&b, "R:R 1:%.2f | Size: %.2f\n", r.RiskReward, r.PositionSize)
	fmt.Fprintf(&b, "Confidence: %.0f%%", sig.Confidence)
	if recorder.StatusFor(sig.Confidence) == model.StatusCaution {
		b.WriteString(" ⚠️ caution")
	}
	b.WriteString("\n")

	if sig.MarketStructure != "" {
		fmt.Fprintf(&b, "Structure: %s\n", html.EscapeString(sig.MarketStructure))
	}
	if len(sig.KeyLevels.Support) > 0 || len(sig.KeyLevels.Resistance) > 0 {
		fmt.Fprintf(&b, "Support: %s\nResistance: %s\n",
			joinPrices(sig.KeyLevels.Support), joinPrices(sig.KeyLevels.Resistance))
	}
	if sig.Reasoning != "" {
		fmt.Fprintf(&b, "\n%s\n", html.EscapeString(truncate(sig.Reasoning, maxReasoning)))
	}
	return b.String()
}

// FormatAnalysis formats an on-demand analysis, including results without a valid setup.
func FormatAnalysis(r *model.AnalysisResult) string {
	if r.Signal.HasValidSetup {
		return FormatSignalAlert(r)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "⚪ <b>No valid setup</b> for %s | %s\n", html.EscapeString(r.Symbol), r.Interval)
	fmt.Fprintf(&b, "Confidence: %.0f%%\n", r.Signal.Confidence)
	if r.Signal.MarketStructure != "" {
		fmt.Fprintf(&b, "Structure: %s\n", html.EscapeString(r.Signal.MarketStructure))
	}
	if r.Signal.Reasoning != "" {
		fmt.Fprintf(&b, "\n%s\n", html.EscapeString(truncate(r.Signal.Reasoning, maxReasoning)))
	}
	return b.String()
}

// FormatScanSummary formats the outcome of a market scan.
func FormatScanSummary(s *recorder.ScanSummary, signals []*model.AnalysisResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 <b>Market scan</b> | %s\n\n", s.StartedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Symbols: %d | Analyzed: %d | Failed: %d\n", s.Symbols, s.Analyzed, s.Failed)
	fmt.Fprintf(&b, "Signals: %d\n", s.Signals)
	for _, r := range signals {
		fmt.Fprintf(&b, "  • %s %s (%.0f%%, R:R %.2f)\n", r.Signal.Direction, html.EscapeString(r.Symbol), r.Signal.Confidence, r.RiskReward)
	}
	fmt.Fprintf(&b, "Duration: %s", s.FinishedAt.Sub(s.StartedAt).Round(time.Second))
	return b.String()
}

// FormatSignals formats recent ledger entries.
func FormatSignals(records []recorder.SignalRecord) string {
	if len(records) == 0 {
		return "No signals recorded yet."
	}
	var b strings.Builder
	b.WriteString("🗂 <b>Recent signals</b>\n\n")
	for _, rec := range records {
		fmt.Fprintf(&b, "%s %s %s @ %s | %.0f%% | %s\n",
			rec.CreatedAt.Format("01-02 15:04"), rec.Direction, html.EscapeString(rec.Symbol),
			formatPrice(rec.EntryPrice), rec.Confidence, rec.Status)
	}
	return b.String()
}

// FormatPrices formats a symbol to price map, listing missing symbols as unavailable.
func FormatPrices(requested []string, prices map[string]float64) string {
	var b strings.Builder
	b.WriteString("💱 <b>Prices</b>\n\n")
	for _, sym := range requested {
		if p, ok := prices[sym]; ok {
			fmt.Fprintf(&b, "%s: %s\n", html.EscapeString(sym), formatPrice(p))
		} else {
			fmt.Fprintf(&b, "%s: unavailable\n", html.EscapeString(sym))
		}
	}
	return b.String()
}

// FormatWatchlist formats the watchlist and risk settings.
func FormatWatchlist(s model.Settings) string {
	var b strings.Builder
	b.WriteString("👀 <b>Watchlist</b>\n\n")
	if len(s.Watchlist) == 0 {
		b.WriteString("(empty, scans use all supported symbols)\n")
	} else {
		wl := append([]string(nil), s.Watchlist...)
		sort.Strings(wl)
		b.WriteString(html.EscapeString(strings.Join(wl, ", ")))
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nAccount: %.2f | Risk: %.2f%%\n", s.AccountSize, s.RiskPerTrade)
	fmt.Fprintf(&b, "Strategy: %s | Interval: %s\n", html.EscapeString(s.DefaultStrategy), s.Interval)
	return b.String()
}

func formatPrice(p float64) string {
	switch {
	case p == 0:
		return "-"
	case p < 10:
		return fmt.Sprintf("%.5f", p)
	default:
		return fmt.Sprintf("%.2f", p)
	}
}

func joinPrices(ps []float64) string {
	if len(ps) == 0 {
		return "-"
	}
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = formatPrice(p)
	}
	return strings.Join(parts, ", ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
