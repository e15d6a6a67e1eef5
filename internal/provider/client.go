package provider

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bilalabdelkadir/teftef-trader/internal/cache"
	"github.com/bilalabdelkadir/teftef-trader/internal/calculator"
	"github.com/bilalabdelkadir/teftef-trader/internal/market"
	"github.com/bilalabdelkadir/teftef-trader/internal/model"
)

// DefaultStaleTTL is how long a copy of every fetched value is retained for
// serving while the upstream is rate limiting.
const DefaultStaleTTL = 24 * time.Hour

// Client implements Provider on top of a Source, with caching and locally
// computed indicators.
type Client struct {
	source   Source
	cache    cache.Cache
	staleTTL time.Duration
}

// NewClient creates a Client. A nil cache disables caching; a zero staleTTL uses DefaultStaleTTL.
func NewClient(source Source, c cache.Cache, staleTTL time.Duration) *Client {
	if c == nil {
		c = cache.NewNoopCache()
	}
	if staleTTL <= 0 {
		staleTTL = DefaultStaleTTL
	}
	return &Client{source: source, cache: c, staleTTL: staleTTL}
}

func (c *Client) Name() string { return c.source.Name() }

func staleKey(key string) string { return "stale:" + key }

// fetchCached serves key from the cache, falling back to fetch. When fetch is
// rate limited, any cached copy is served regardless of age.
func fetchCached[T any](ctx context.Context, c *Client, key string, ttl time.Duration, fetch func() (T, error)) (T, error) {
	var v T
	if c.cache.Get(ctx, key, &v) {
		return v, nil
	}

	v, err := fetch()
	if err != nil {
		if errors.Is(err, ErrRateLimited) {
			var stale T
			if c.cache.Get(ctx, key, &stale) || c.cache.Get(ctx, staleKey(key), &stale) {
				log.Printf("[WARN] %s rate limited, serving cached %s", c.source.Name(), key)
				return stale, nil
			}
		}
		var zero T
		return zero, err
	}

	c.cache.Set(ctx, key, v, ttl)
	c.cache.Set(ctx, staleKey(key), v, c.staleTTL)
	return v, nil
}

// Price returns the latest price. Pair symbols are priced from the newest
// 1min close, other symbols from a quote.
func (c *Client) Price(ctx context.Context, symbol string) (float64, error) {
	key := cache.Key("price", symbol)
	return fetchCached(ctx, c, key, cache.PriceTTL, func() (float64, error) {
		if !market.Classify(symbol).IsPair() {
			return c.source.FetchQuote(ctx, symbol)
		}
		ts, err := c.source.FetchCandles(ctx, symbol, "1min", priceWindow)
		if err != nil {
			return 0, err
		}
		latest, ok := ts.Latest()
		if !ok {
			return 0, newError(c.source.Name(), ErrNotAvailable, 0, "no price data for %s", symbol)
		}
		return latest.Close, nil
	})
}

// Prices fetches prices concurrently. Failed symbols are logged and left out.
func (c *Client) Prices(ctx context.Context, symbols []string) map[string]float64 {
	out := make(map[string]float64, len(symbols))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, s := range symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			price, err := c.Price(ctx, symbol)
			if err != nil {
				log.Printf("[WARN] %s price %s: %v", c.source.Name(), symbol, err)
				return
			}
			mu.Lock()
			out[symbol] = price
			mu.Unlock()
		}(s)
	}

	wg.Wait()
	return out
}

// TimeSeries returns exactly outputSize candles (fewer if history is short),
// newest first. 4h candles are built from 1h candles when the source lacks them.
func (c *Client) TimeSeries(ctx context.Context, symbol, interval string, outputSize int) (*model.TimeSeries, error) {
	if outputSize <= 0 {
		outputSize = DefaultSeriesSize
	}
	key := cache.Key("time_series", symbol, interval, outputSize)
	return fetchCached(ctx, c, key, cache.SeriesTTL, func() (*model.TimeSeries, error) {
		fetchInterval, group := interval, 1
		if interval == "4h" && !c.source.Supports("4h") {
			fetchInterval, group = "1h", 4
		}

		ts, err := c.source.FetchCandles(ctx, symbol, fetchInterval, outputSize*group)
		if err != nil {
			return nil, err
		}
		if group > 1 {
			ts.Values = AggregateCandles(ts.Values, group)
			ts.Meta.Interval = interval
		}
		if len(ts.Values) > outputSize {
			ts.Values = ts.Values[:outputSize]
		}
		return ts, nil
	})
}

func (c *Client) RSI(ctx context.Context, symbol, interval string, period, outputSize int) ([]model.IndicatorPoint, error) {
	return c.lineIndicator(ctx, "rsi", calculator.RSI, symbol, interval, period, outputSize)
}

func (c *Client) SMA(ctx context.Context, symbol, interval string, period, outputSize int) ([]model.IndicatorPoint, error) {
	return c.lineIndicator(ctx, "sma", calculator.SMA, symbol, interval, period, outputSize)
}

func (c *Client) EMA(ctx context.Context, symbol, interval string, period, outputSize int) ([]model.IndicatorPoint, error) {
	return c.lineIndicator(ctx, "ema", calculator.EMA, symbol, interval, period, outputSize)
}

func (c *Client) lineIndicator(ctx context.Context, kind string, calc func([]float64, int) []float64,
	symbol, interval string, period, outputSize int) ([]model.IndicatorPoint, error) {
	if outputSize <= 0 {
		outputSize = DefaultIndicatorSize
	}
	key := cache.Key(kind, symbol, interval, period, outputSize)
	return fetchCached(ctx, c, key, cache.IndicatorTTL, func() ([]model.IndicatorPoint, error) {
		ts, err := c.TimeSeries(ctx, symbol, interval, outputSize+period+lookbackSlack)
		if err != nil {
			return nil, err
		}
		values := calc(ts.Closes(), period)

		// the i-th newest value belongs to the i-th newest candle
		n := min(outputSize, len(values))
		points := make([]model.IndicatorPoint, n)
		for i := 0; i < n; i++ {
			points[i] = model.IndicatorPoint{Time: ts.Values[i].Time, Value: values[len(values)-1-i]}
		}
		return points, nil
	})
}

// MACD computes MACD(12, 26, 9) and returns up to outputSize points, newest first.
func (c *Client) MACD(ctx context.Context, symbol, interval string, outputSize int) ([]model.MACDPoint, error) {
	if outputSize <= 0 {
		outputSize = DefaultIndicatorSize
	}
	key := cache.Key("macd", symbol, interval, outputSize)
	return fetchCached(ctx, c, key, cache.IndicatorTTL, func() ([]model.MACDPoint, error) {
		ts, err := c.TimeSeries(ctx, symbol, interval, outputSize+macdLookback)
		if err != nil {
			return nil, err
		}
		m := calculator.MACD(ts.Closes(), calculator.MACDFast, calculator.MACDSlow, calculator.MACDSignal)

		total := len(m.MACD)
		n := min(outputSize, total)
		points := make([]model.MACDPoint, n)
		for i := 0; i < n; i++ {
			j := total - 1 - i
			points[i] = model.MACDPoint{
				Time:      ts.Values[i].Time,
				MACD:      m.MACD[j],
				Signal:    m.Signal[j],
				Histogram: m.Histogram[j],
			}
		}
		return points, nil
	})
}

// MarketData fetches the series and indicator set concurrently. Any failure
// fails the whole bundle.
func (c *Client) MarketData(ctx context.Context, symbol, interval string) (*model.MarketDataBundle, error) {
	key := cache.Key("market_data", symbol, interval)
	return fetchCached(ctx, c, key, cache.BundleTTL, func() (*model.MarketDataBundle, error) {
		bundle := &model.MarketDataBundle{Symbol: symbol, Interval: interval}
		g, gctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			ts, err := c.TimeSeries(gctx, symbol, interval, DefaultSeriesSize)
			if err != nil {
				return fmt.Errorf("time series: %w", err)
			}
			bundle.TimeSeries = *ts
			return nil
		})
		g.Go(func() error {
			rsi, err := c.RSI(gctx, symbol, interval, RSIPeriod, DefaultIndicatorSize)
			if err != nil {
				return fmt.Errorf("rsi: %w", err)
			}
			bundle.Indicators.RSI = rsi
			return nil
		})
		g.Go(func() error {
			macd, err := c.MACD(gctx, symbol, interval, DefaultIndicatorSize)
			if err != nil {
				return fmt.Errorf("macd: %w", err)
			}
			bundle.Indicators.MACD = macd
			return nil
		})
		g.Go(func() error {
			sma, err := c.SMA(gctx, symbol, interval, SMAPeriod, DefaultIndicatorSize)
			if err != nil {
				return fmt.Errorf("sma: %w", err)
			}
			bundle.Indicators.SMA20 = sma
			return nil
		})
		g.Go(func() error {
			ema, err := c.EMA(gctx, symbol, interval, EMAPeriod, DefaultIndicatorSize)
			if err != nil {
				return fmt.Errorf("ema: %w", err)
			}
			bundle.Indicators.EMA50 = ema
			return nil
		})

		if err := g.Wait(); err != nil {
			return nil, err
		}
		return bundle, nil
	})
}
