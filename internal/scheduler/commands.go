package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/bilalabdelkadir/teftef-trader/internal/analysis"
	"github.com/bilalabdelkadir/teftef-trader/internal/market"
	"github.com/bilalabdelkadir/teftef-trader/internal/notifier"
	"github.com/bilalabdelkadir/teftef-trader/internal/provider"
	"github.com/bilalabdelkadir/teftef-trader/internal/recorder"
)

const helpText = `Available commands:
• /scan - analyze the watchlist now
• /analyze SYMBOL [interval] - analyze one symbol
• /price SYMBOL [SYMBOL...] - latest prices
• /watchlist [add|remove SYMBOL] - show or edit the watchlist
• /risk ACCOUNT PERCENT - set account size and risk per trade
• /signals [N] - recent signals`

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	name := strings.ToLower(fields[0])
	if i := strings.IndexByte(name, '@'); i > 0 {
		name = name[:i]
	}
	args := fields[1:]

	switch name {
	case "/scan":
		return s.startScan()
	case "/analyze":
		return s.analyzeCommand(ctx, args)
	case "/price":
		return s.priceCommand(ctx, args)
	case "/watchlist":
		return s.watchlistCommand(args)
	case "/risk":
		return s.riskCommand(args)
	case "/signals":
		return s.signalsCommand(ctx, args)
	default:
		return helpText
	}
}

func (s *Scheduler) startScan() string {
	if s.scanning.Load() {
		return "⏳ A scan is already running."
	}
	symbols := s.WatchedSymbols()
	go func() {
		if _, _, err := s.RunScan(s.Ctx); err != nil {
			log.Printf("[WARN] manual scan: %v", err)
		}
	}()
	return fmt.Sprintf("🔍 Scan started for %d symbols.", len(symbols))
}

func (s *Scheduler) analyzeCommand(ctx context.Context, args []string) string {
	if len(args) == 0 {
		return "Usage: /analyze SYMBOL [interval]"
	}
	cfg := s.Settings.Get()
	req := analysis.Request{
		Symbol:         args[0],
		Strategy:       cfg.DefaultStrategy,
		AccountSize:    cfg.AccountSize,
		RiskPercentage: cfg.RiskPerTrade,
		Interval:       cfg.Interval,
		StrategyID:     cfg.StrategyID,
	}
	if len(args) > 1 {
		req.Interval = args[1]
	}

	result, err := s.Analyzer.AnalyzeMarket(ctx, req)
	if err != nil {
		log.Printf("[ERROR] analyze command: %v", err)
		return "❌ " + describeError(err)
	}
	if err := s.Recorder.RecordSignal(ctx, recorder.NewSignalRecord(result)); err != nil {
		log.Printf("[ERROR] record signal %s: %v", result.Symbol, err)
	}
	return notifier.FormatAnalysis(result)
}

func (s *Scheduler) priceCommand(ctx context.Context, args []string) string {
	if len(args) == 0 {
		return "Usage: /price SYMBOL [SYMBOL...]"
	}
	symbols := make([]string, len(args))
	for i, a := range args {
		symbols[i] = market.Normalize(a)
	}
	return notifier.FormatPrices(symbols, s.Prices.Prices(ctx, symbols))
}

func (s *Scheduler) watchlistCommand(args []string) string {
	if len(args) >= 2 {
		var (
			changed bool
			err     error
		)
		switch strings.ToLower(args[0]) {
		case "add":
			changed, err = s.Settings.AddSymbol(args[1])
		case "remove", "rm":
			changed, err = s.Settings.RemoveSymbol(args[1])
		default:
			return "Usage: /watchlist [add|remove SYMBOL]"
		}
		if err != nil {
			return "❌ " + err.Error()
		}
		if !changed {
			return fmt.Sprintf("%s: no change.", market.Normalize(args[1]))
		}
	}
	return notifier.FormatWatchlist(s.Settings.Get())
}

func (s *Scheduler) riskCommand(args []string) string {
	if len(args) != 2 {
		return "Usage: /risk ACCOUNT PERCENT"
	}
	account, err1 := strconv.ParseFloat(args[0], 64)
	risk, err2 := strconv.ParseFloat(strings.TrimSuffix(args[1], "%"), 64)
	if err1 != nil || err2 != nil {
		return "Usage: /risk ACCOUNT PERCENT"
	}
	if err := s.Settings.UpdateRisk(account, risk); err != nil {
		return "❌ " + err.Error()
	}
	return notifier.FormatWatchlist(s.Settings.Get())
}

func (s *Scheduler) signalsCommand(ctx context.Context, args []string) string {
	limit := 10
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil && n > 0 {
			limit = n
		}
	}
	records, err := s.Recorder.RecentSignals(ctx, limit)
	if err != nil {
		log.Printf("[ERROR] recent signals: %v", err)
		return "❌ Could not load signals."
	}
	return notifier.FormatSignals(records)
}

func describeError(err error) string {
	switch {
	case errors.Is(err, provider.ErrRateLimited):
		return "Market data rate limit reached, try again shortly."
	case errors.Is(err, provider.ErrNotAvailable):
		return "No market data available for that symbol."
	case errors.Is(err, provider.ErrMisconfigured):
		return "Market data provider is not configured."
	default:
		return "Analysis failed."
	}
}
