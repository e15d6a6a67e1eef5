package analysis

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/bilalabdelkadir/teftef-trader/internal/market"
	"github.com/bilalabdelkadir/teftef-trader/internal/model"
	"github.com/bilalabdelkadir/teftef-trader/internal/strategy"
)

// Request defaults.
const (
	DefaultAccountSize    = 10000.0
	DefaultRiskPercentage = 1.0
	DefaultInterval       = "1h"
	DefaultMinConfidence  = 70.0
	DefaultBatchDelay     = 2 * time.Second

	customStrategyLabel = "custom"
)

// MarketData supplies the bundle an analysis is built from.
type MarketData interface {
	MarketData(ctx context.Context, symbol, interval string) (*model.MarketDataBundle, error)
}

// SignalGenerator produces a structured trade signal from a system and user prompt.
type SignalGenerator interface {
	GenerateSignal(ctx context.Context, system, prompt string) (*model.TradeSignal, error)
}

// Request describes one analysis. Zero values take the package defaults.
type Request struct {
	Symbol         string
	Strategy       string
	AccountSize    float64
	RiskPercentage float64
	Interval       string
	StrategyID     string
	UserID         string
}

func (r Request) withDefaults() Request {
	if r.Strategy == "" {
		r.Strategy = strategy.DefaultStrategy
	}
	if r.AccountSize <= 0 {
		r.AccountSize = DefaultAccountSize
	}
	if r.RiskPercentage <= 0 {
		r.RiskPercentage = DefaultRiskPercentage
	}
	if r.Interval == "" {
		r.Interval = DefaultInterval
	}
	return r
}

// Analyzer turns market data into trade signals.
type Analyzer struct {
	Data MarketData
	LLM  SignalGenerator
	// Strategies is optional; without it only the built-in prompts are used.
	Strategies strategy.Resolver

	now func() time.Time
}

// NewAnalyzer creates an Analyzer. strategies may be nil.
func NewAnalyzer(data MarketData, llm SignalGenerator, strategies strategy.Resolver) *Analyzer {
	return &Analyzer{
		Data:       data,
		LLM:        llm,
		Strategies: strategies,
		now:        time.Now,
	}
}

// AnalyzeMarket runs a full analysis of one symbol. Any failure is returned as
// a *FailedError and no partial result is produced.
func (a *Analyzer) AnalyzeMarket(ctx context.Context, req Request) (*model.AnalysisResult, error) {
	req = req.withDefaults()
	symbol := market.Normalize(req.Symbol)
	if symbol == "" {
		return nil, failed(req.Symbol, "request", errors.New("symbol is required"))
	}

	bundle, err := a.Data.MarketData(ctx, symbol, req.Interval)
	if err != nil {
		return nil, failed(symbol, "market data", err)
	}

	var sc *strategy.Context
	if a.Strategies != nil && (req.StrategyID != "" || req.UserID != "") {
		sc, err = a.Strategies.Resolve(ctx, symbol, req.StrategyID, req.UserID)
		if err != nil {
			return nil, failed(symbol, "strategy", err)
		}
	}

	baseStrategy := req.Strategy
	var customPrompt, rules string
	if sc != nil {
		if sc.BaseStrategy != "" {
			baseStrategy = sc.BaseStrategy
		}
		customPrompt = sc.CustomPrompt
		rules = sc.Rules
	}

	system := strategy.BuildSystemPrompt(baseStrategy, customPrompt, rules)
	prompt := UserPrompt(FormatMarketData(bundle))

	signal, err := a.LLM.GenerateSignal(ctx, system, prompt)
	if err != nil {
		return nil, failed(symbol, "signal generation", err)
	}

	label := req.Strategy
	if req.StrategyID != "" && sc != nil {
		label = customStrategyLabel
	}

	return &model.AnalysisResult{
		ID:              uuid.NewString(),
		Symbol:          symbol,
		Market:          market.Classify(symbol).Label(),
		Strategy:        label,
		Interval:        req.Interval,
		Signal:          *signal,
		RiskReward:      RiskReward(signal.Direction, signal.EntryPrice, signal.StopLoss, signal.TakeProfit),
		PositionSize:    PositionSize(req.AccountSize, req.RiskPercentage, signal.EntryPrice, signal.StopLoss),
		Timestamp:       a.now().UTC(),
		StrategyID:      req.StrategyID,
		StrategyContext: rules,
	}, nil
}

// BatchOptions configures BatchAnalyze. Request.Symbol is ignored.
type BatchOptions struct {
	Request
	// Delay between consecutive symbols. Zero means DefaultBatchDelay.
	Delay time.Duration
}

// BatchAnalyze analyzes symbols one after another, pausing between them.
// Failed symbols are logged and skipped. Cancelling ctx stops the batch and
// returns what has been collected.
func (a *Analyzer) BatchAnalyze(ctx context.Context, symbols []string, opts BatchOptions) []*model.AnalysisResult {
	delay := opts.Delay
	if delay <= 0 {
		delay = DefaultBatchDelay
	}

	var results []*model.AnalysisResult
	for i, symbol := range symbols {
		if i > 0 {
			select {
			case <-ctx.Done():
				log.Printf("[WARN] batch analysis stopped after %d/%d symbols: %v", i, len(symbols), ctx.Err())
				return results
			case <-time.After(delay):
			}
		}

		req := opts.Request
		req.Symbol = symbol
		result, err := a.AnalyzeMarket(ctx, req)
		if err != nil {
			log.Printf("[ERROR] analyze %s: %v", symbol, err)
			continue
		}
		results = append(results, result)
	}
	return results
}

// HighConfidenceSignals analyzes symbols and keeps only valid setups at or above minConfidence.
func (a *Analyzer) HighConfidenceSignals(ctx context.Context, symbols []string, opts BatchOptions, minConfidence float64) []*model.AnalysisResult {
	return FilterHighConfidence(a.BatchAnalyze(ctx, symbols, opts), minConfidence)
}

// FilterHighConfidence keeps results with a valid setup and confidence >= minConfidence.
func FilterHighConfidence(results []*model.AnalysisResult, minConfidence float64) []*model.AnalysisResult {
	var out []*model.AnalysisResult
	for _, r := range results {
		if r.Signal.HasValidSetup && r.Signal.Confidence >= minConfidence {
			out = append(out, r)
		}
	}
	return out
}
