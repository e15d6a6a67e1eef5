package provider

import (
	"context"

	"github.com/bilalabdelkadir/teftef-trader/internal/model"
)

// Bundle composition and fetch sizing.
const (
	DefaultSeriesSize    = 100
	DefaultIndicatorSize = 30
	RSIPeriod            = 14
	SMAPeriod            = 20
	EMAPeriod            = 50

	// extra candles fetched beyond period+outputSize for single-line indicators
	lookbackSlack = 10
	// extra candles fetched beyond outputSize for MACD (slow + signal warm-up)
	macdLookback = 50
	// 1min candles fetched to price a pair symbol
	priceWindow = 5
)

// Provider is the capability set shared by market data clients and the router.
type Provider interface {
	Name() string
	Price(ctx context.Context, symbol string) (float64, error)
	// Prices never fails; symbols that could not be priced are absent from the map.
	Prices(ctx context.Context, symbols []string) map[string]float64
	TimeSeries(ctx context.Context, symbol, interval string, outputSize int) (*model.TimeSeries, error)
	RSI(ctx context.Context, symbol, interval string, period, outputSize int) ([]model.IndicatorPoint, error)
	MACD(ctx context.Context, symbol, interval string, outputSize int) ([]model.MACDPoint, error)
	SMA(ctx context.Context, symbol, interval string, period, outputSize int) ([]model.IndicatorPoint, error)
	EMA(ctx context.Context, symbol, interval string, period, outputSize int) ([]model.IndicatorPoint, error)
	MarketData(ctx context.Context, symbol, interval string) (*model.MarketDataBundle, error)
}

// Source speaks one upstream API. It translates symbols and intervals and
// returns raw data; caching and indicator math live in Client.
type Source interface {
	Name() string
	// Supports reports whether the upstream serves interval natively.
	Supports(interval string) bool
	FetchQuote(ctx context.Context, symbol string) (float64, error)
	// FetchCandles returns up to count candles, newest first.
	FetchCandles(ctx context.Context, symbol, interval string, count int) (*model.TimeSeries, error)
}
