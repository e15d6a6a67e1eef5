package router

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/bilalabdelkadir/teftef-trader/internal/model"
	"github.com/bilalabdelkadir/teftef-trader/internal/provider"
)

// stubProvider records which symbols it was asked for.
type stubProvider struct {
	name   string
	prices map[string]float64

	mu    sync.Mutex
	calls []string
}

func (s *stubProvider) record(symbol string) {
	s.mu.Lock()
	s.calls = append(s.calls, symbol)
	s.mu.Unlock()
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Price(_ context.Context, symbol string) (float64, error) {
	s.record(symbol)
	p, ok := s.prices[symbol]
	if !ok {
		return 0, provider.ErrNotAvailable
	}
	return p, nil
}

func (s *stubProvider) Prices(ctx context.Context, symbols []string) map[string]float64 {
	out := map[string]float64{}
	for _, sym := range symbols {
		if p, err := s.Price(ctx, sym); err == nil {
			out[sym] = p
		}
	}
	return out
}

func (s *stubProvider) TimeSeries(_ context.Context, symbol, interval string, _ int) (*model.TimeSeries, error) {
	s.record(symbol)
	return &model.TimeSeries{Meta: model.SeriesMeta{Symbol: symbol, Interval: interval}}, nil
}

func (s *stubProvider) RSI(_ context.Context, symbol, _ string, _, _ int) ([]model.IndicatorPoint, error) {
	s.record(symbol)
	return nil, nil
}

func (s *stubProvider) MACD(_ context.Context, symbol, _ string, _ int) ([]model.MACDPoint, error) {
	s.record(symbol)
	return nil, nil
}

func (s *stubProvider) SMA(_ context.Context, symbol, _ string, _, _ int) ([]model.IndicatorPoint, error) {
	s.record(symbol)
	return nil, nil
}

func (s *stubProvider) EMA(_ context.Context, symbol, _ string, _, _ int) ([]model.IndicatorPoint, error) {
	s.record(symbol)
	return nil, nil
}

func (s *stubProvider) MarketData(_ context.Context, symbol, interval string) (*model.MarketDataBundle, error) {
	s.record(symbol)
	if symbol == "FAIL" {
		return nil, errors.New("boom")
	}
	return &model.MarketDataBundle{Symbol: symbol, Interval: interval}, nil
}

func newTestRouter() (*Router, *stubProvider, *stubProvider) {
	stocks := &stubProvider{name: "finnhub", prices: map[string]float64{"AAPL": 190, "IBM": 140}}
	pairs := &stubProvider{name: "twelvedata", prices: map[string]float64{"EUR/USD": 1.08, "BTC/USD": 65000}}
	return New(stocks, pairs), stocks, pairs
}

func TestRouter_Routing(t *testing.T) {
	r, _, _ := newTestRouter()
	tests := map[string]string{
		"AAPL":     "finnhub",
		"IBM":      "finnhub",
		"EUR/USD":  "twelvedata",
		"BTC/USD":  "twelvedata",
		"DOGE/EUR": "twelvedata",
	}
	for symbol, want := range tests {
		if got := r.ProviderName(symbol); got != want {
			t.Errorf("ProviderName(%q) = %s, want %s", symbol, got, want)
		}
	}
}

func TestRouter_DelegatesEveryOperation(t *testing.T) {
	r, stocks, pairs := newTestRouter()
	ctx := context.Background()

	r.TimeSeries(ctx, "AAPL", "1h", 10)
	r.RSI(ctx, "AAPL", "1h", 14, 30)
	r.MACD(ctx, "EUR/USD", "1h", 30)
	r.SMA(ctx, "EUR/USD", "1h", 20, 30)
	r.EMA(ctx, "BTC/USD", "1h", 50, 30)
	if _, err := r.MarketData(ctx, "EUR/USD", "4h"); err != nil {
		t.Fatal(err)
	}

	if len(stocks.calls) != 2 {
		t.Errorf("stock provider calls: %v", stocks.calls)
	}
	if len(pairs.calls) != 4 {
		t.Errorf("pair provider calls: %v", pairs.calls)
	}
}

func TestRouter_PricesMergesPartitions(t *testing.T) {
	r, stocks, pairs := newTestRouter()

	got := r.Prices(context.Background(), []string{"AAPL", "EUR/USD", "BTC/USD", "MISSING", "XAU/USD"})
	want := map[string]float64{"AAPL": 190, "EUR/USD": 1.08, "BTC/USD": 65000}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %f, want %f", k, got[k], v)
		}
	}

	if len(stocks.calls) != 2 || len(pairs.calls) != 3 {
		t.Errorf("unexpected partitioning: stocks=%v pairs=%v", stocks.calls, pairs.calls)
	}
}

func TestRouter_MarketDataErrorPropagates(t *testing.T) {
	r, _, _ := newTestRouter()
	if _, err := r.MarketData(context.Background(), "FAIL", "1h"); err == nil {
		t.Error("expected error")
	}
}
