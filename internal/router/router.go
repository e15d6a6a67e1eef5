package router

import (
	"context"
	"sync"

	"github.com/bilalabdelkadir/teftef-trader/internal/market"
	"github.com/bilalabdelkadir/teftef-trader/internal/model"
	"github.com/bilalabdelkadir/teftef-trader/internal/provider"
)

// Router dispatches each symbol to the provider owning its asset class:
// stocks to one provider, forex and crypto pairs to the other.
type Router struct {
	stocks provider.Provider
	pairs  provider.Provider
}

// New creates a Router.
func New(stocks, pairs provider.Provider) *Router {
	return &Router{stocks: stocks, pairs: pairs}
}

func (r *Router) Name() string { return "router" }

// ProviderFor returns the provider that serves symbol.
func (r *Router) ProviderFor(symbol string) provider.Provider {
	if market.Classify(symbol).IsPair() {
		return r.pairs
	}
	return r.stocks
}

// ProviderName returns the name of the provider that serves symbol.
func (r *Router) ProviderName(symbol string) string {
	return r.ProviderFor(symbol).Name()
}

func (r *Router) Price(ctx context.Context, symbol string) (float64, error) {
	return r.ProviderFor(symbol).Price(ctx, symbol)
}

// Prices partitions symbols by provider, queries each partition concurrently
// and merges the results. Failed symbols are absent.
func (r *Router) Prices(ctx context.Context, symbols []string) map[string]float64 {
	var stockSymbols, pairSymbols []string
	for _, s := range symbols {
		if market.Classify(s).IsPair() {
			pairSymbols = append(pairSymbols, s)
		} else {
			stockSymbols = append(stockSymbols, s)
		}
	}

	var (
		wg         sync.WaitGroup
		stockPrice map[string]float64
		pairPrice  map[string]float64
	)
	if len(stockSymbols) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stockPrice = r.stocks.Prices(ctx, stockSymbols)
		}()
	}
	if len(pairSymbols) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pairPrice = r.pairs.Prices(ctx, pairSymbols)
		}()
	}
	wg.Wait()

	out := make(map[string]float64, len(stockPrice)+len(pairPrice))
	for k, v := range stockPrice {
		out[k] = v
	}
	for k, v := range pairPrice {
		out[k] = v
	}
	return out
}

func (r *Router) TimeSeries(ctx context.Context, symbol, interval string, outputSize int) (*model.TimeSeries, error) {
	return r.ProviderFor(symbol).TimeSeries(ctx, symbol, interval, outputSize)
}

func (r *Router) RSI(ctx context.Context, symbol, interval string, period, outputSize int) ([]model.IndicatorPoint, error) {
	return r.ProviderFor(symbol).RSI(ctx, symbol, interval, period, outputSize)
}

func (r *Router) MACD(ctx context.Context, symbol, interval string, outputSize int) ([]model.MACDPoint, error) {
	return r.ProviderFor(symbol).MACD(ctx, symbol, interval, outputSize)
}

func (r *Router) SMA(ctx context.Context, symbol, interval string, period, outputSize int) ([]model.IndicatorPoint, error) {
	return r.ProviderFor(symbol).SMA(ctx, symbol, interval, period, outputSize)
}

func (r *Router) EMA(ctx context.Context, symbol, interval string, period, outputSize int) ([]model.IndicatorPoint, error) {
	return r.ProviderFor(symbol).EMA(ctx, symbol, interval, period, outputSize)
}

func (r *Router) MarketData(ctx context.Context, symbol, interval string) (*model.MarketDataBundle, error) {
	return r.ProviderFor(symbol).MarketData(ctx, symbol, interval)
}
