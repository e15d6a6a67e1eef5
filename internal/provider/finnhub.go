package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bilalabdelkadir/teftef-trader/internal/market"
	"github.com/bilalabdelkadir/teftef-trader/internal/model"
)

const finnhubBaseURL = "https://finnhub.io/api/v1"

// finnhubResolutions maps intervals to Finnhub candle resolutions.
// 4h is absent; Client builds it from 1h candles.
var finnhubResolutions = map[string]string{
	"1min":   "1",
	"5min":   "5",
	"15min":  "15",
	"30min":  "30",
	"1h":     "60",
	"1day":   "D",
	"1week":  "W",
	"1month": "M",
}

var finnhubCandleSeconds = map[string]int64{
	"1min":   60,
	"5min":   300,
	"15min":  900,
	"30min":  1800,
	"1h":     3600,
	"1day":   86400,
	"1week":  604800,
	"1month": 2592000,
}

// FinnhubSource fetches quotes and candles from Finnhub.
type FinnhubSource struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	now     func() time.Time
}

// NewFinnhubSource creates a Finnhub source with optional proxy support.
func NewFinnhubSource(apiKey, proxyURL string) *FinnhubSource {
	return &FinnhubSource{
		BaseURL: finnhubBaseURL,
		APIKey:  apiKey,
		Client:  NewHTTPClient(proxyURL),
		now:     time.Now,
	}
}

func (f *FinnhubSource) Name() string { return "finnhub" }

func (f *FinnhubSource) Supports(interval string) bool {
	_, ok := finnhubResolutions[interval]
	return ok
}

// ToFinnhubSymbol translates a symbol to Finnhub's ticker format:
// EUR/USD → OANDA:EUR_USD, BTC/USD → BINANCE:BTCUSDT. Stocks are unchanged.
func ToFinnhubSymbol(symbol string) string {
	s := strings.ToUpper(symbol)
	switch market.Classify(s) {
	case market.Forex:
		return "OANDA:" + strings.Replace(s, "/", "_", 1)
	case market.Crypto:
		base, quote, _ := strings.Cut(s, "/")
		if quote == "USD" {
			quote = "USDT"
		}
		return "BINANCE:" + base + quote
	default:
		return s
	}
}

// FromFinnhubSymbol reverses ToFinnhubSymbol.
func FromFinnhubSymbol(ticker string) string {
	switch {
	case strings.HasPrefix(ticker, "OANDA:"):
		return strings.Replace(strings.TrimPrefix(ticker, "OANDA:"), "_", "/", 1)
	case strings.HasPrefix(ticker, "BINANCE:"):
		pair := strings.TrimPrefix(ticker, "BINANCE:")
		if base, ok := strings.CutSuffix(pair, "USDT"); ok {
			return base + "/USD"
		}
		return pair
	default:
		return ticker
	}
}

func (f *FinnhubSource) query(params map[string]string) url.Values {
	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	q.Set("token", f.APIKey)
	return q
}

type finnhubQuote struct {
	Current float64 `json:"c"`
}

func (f *FinnhubSource) FetchQuote(ctx context.Context, symbol string) (float64, error) {
	if f.APIKey == "" {
		return 0, newError(f.Name(), ErrMisconfigured, 0, "FINNHUB_API_KEY is not set")
	}
	body, err := get(ctx, f.Client, f.Name(), f.BaseURL+"/quote", f.query(map[string]string{
		"symbol": ToFinnhubSymbol(symbol),
	}))
	if err != nil {
		return 0, err
	}

	var q finnhubQuote
	if err := json.Unmarshal(body, &q); err != nil {
		return 0, wrapError(f.Name(), ErrUpstream, fmt.Errorf("decode quote: %w", err))
	}
	if q.Current == 0 {
		return 0, newError(f.Name(), ErrNotAvailable, 0, "no quote for %s", symbol)
	}
	return q.Current, nil
}

type finnhubCandles struct {
	Status string    `json:"s"`
	Open   []float64 `json:"o"`
	High   []float64 `json:"h"`
	Low    []float64 `json:"l"`
	Close  []float64 `json:"c"`
	Volume []float64 `json:"v"`
	Time   []int64   `json:"t"`
}

func (f *FinnhubSource) FetchCandles(ctx context.Context, symbol, interval string, count int) (*model.TimeSeries, error) {
	if f.APIKey == "" {
		return nil, newError(f.Name(), ErrMisconfigured, 0, "FINNHUB_API_KEY is not set")
	}
	resolution, ok := finnhubResolutions[interval]
	if !ok {
		return nil, newError(f.Name(), ErrNotAvailable, 0, "interval %q not supported", interval)
	}

	asset := market.Classify(symbol)
	endpoint := "/stock/candle"
	exchange := "OANDA"
	switch asset {
	case market.Forex:
		endpoint = "/forex/candle"
	case market.Crypto:
		endpoint = "/crypto/candle"
		exchange = "BINANCE"
	}

	// twice the nominal window to cover closed sessions and weekends
	to := f.now().Unix()
	from := to - finnhubCandleSeconds[interval]*int64(count)*2

	body, err := get(ctx, f.Client, f.Name(), f.BaseURL+endpoint, f.query(map[string]string{
		"symbol":     ToFinnhubSymbol(symbol),
		"resolution": resolution,
		"from":       strconv.FormatInt(from, 10),
		"to":         strconv.FormatInt(to, 10),
	}))
	if err != nil {
		return nil, err
	}

	var raw finnhubCandles
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, wrapError(f.Name(), ErrUpstream, fmt.Errorf("decode candles: %w", err))
	}

	ts := &model.TimeSeries{
		Meta: model.SeriesMeta{
			Symbol:   symbol,
			Interval: interval,
			Currency: "USD",
			Exchange: exchange,
			Type:     string(asset),
		},
		Values: []model.Candle{},
	}
	if raw.Status != "ok" {
		return ts, nil
	}

	n := len(raw.Time)
	for _, arr := range [][]float64{raw.Open, raw.High, raw.Low, raw.Close} {
		if len(arr) < n {
			n = len(arr)
		}
	}
	// response is oldest first
	for i := n - 1; i >= 0 && len(ts.Values) < count; i-- {
		var vol float64
		if i < len(raw.Volume) {
			vol = raw.Volume[i]
		}
		ts.Values = append(ts.Values, model.Candle{
			Time:   time.Unix(raw.Time[i], 0).UTC(),
			Open:   raw.Open[i],
			High:   raw.High[i],
			Low:    raw.Low[i],
			Close:  raw.Close[i],
			Volume: vol,
		})
	}
	return ts, nil
}
