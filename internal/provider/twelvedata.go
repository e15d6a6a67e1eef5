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
	"unicode"

	"github.com/bilalabdelkadir/teftef-trader/internal/market"
	"github.com/bilalabdelkadir/teftef-trader/internal/model"
)

const twelveDataBaseURL = "https://api.twelvedata.com"

var twelveDataIntervals = map[string]bool{
	"1min": true, "5min": true, "15min": true, "30min": true, "45min": true,
	"1h": true, "2h": true, "4h": true,
	"1day": true, "1week": true, "1month": true,
}

// TwelveDataSource fetches quotes and candles from Twelve Data.
type TwelveDataSource struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewTwelveDataSource creates a Twelve Data source with optional proxy support.
func NewTwelveDataSource(apiKey, proxyURL string) *TwelveDataSource {
	return &TwelveDataSource{
		BaseURL: twelveDataBaseURL,
		APIKey:  apiKey,
		Client:  NewHTTPClient(proxyURL),
	}
}

func (t *TwelveDataSource) Name() string { return "twelvedata" }

func (t *TwelveDataSource) Supports(interval string) bool { return twelveDataIntervals[interval] }

// FormatTwelveDataSymbol turns a six-letter pair such as "EURUSD" into "EUR/USD".
func FormatTwelveDataSymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if len(s) != 6 || strings.Contains(s, "/") {
		return s
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return s
		}
	}
	return s[:3] + "/" + s[3:]
}

// twelveDataStatus is embedded in every response; errors arrive with HTTP 200.
type twelveDataStatus struct {
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (t *TwelveDataSource) check(s twelveDataStatus) error {
	if s.Status != "error" {
		return nil
	}
	switch s.Code {
	case http.StatusTooManyRequests:
		return newError(t.Name(), ErrRateLimited, s.Code, "%s", s.Message)
	case http.StatusBadRequest, http.StatusNotFound:
		return newError(t.Name(), ErrNotAvailable, s.Code, "%s", s.Message)
	case http.StatusUnauthorized, http.StatusForbidden:
		return newError(t.Name(), ErrMisconfigured, s.Code, "%s", s.Message)
	default:
		return newError(t.Name(), ErrUpstream, s.Code, "%s", s.Message)
	}
}

func (t *TwelveDataSource) call(ctx context.Context, path string, q url.Values, dest any) error {
	if t.APIKey == "" {
		return newError(t.Name(), ErrMisconfigured, 0, "TWELVE_DATA_API_KEY is not set")
	}
	q.Set("apikey", t.APIKey)
	body, err := get(ctx, t.Client, t.Name(), t.BaseURL+path, q)
	if err != nil {
		return err
	}

	var status twelveDataStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return wrapError(t.Name(), ErrUpstream, fmt.Errorf("decode %s: %w", path, err))
	}
	if err := t.check(status); err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return wrapError(t.Name(), ErrUpstream, fmt.Errorf("decode %s: %w", path, err))
	}
	return nil
}

func (t *TwelveDataSource) FetchQuote(ctx context.Context, symbol string) (float64, error) {
	var resp struct {
		Price string `json:"price"`
	}
	q := url.Values{}
	q.Set("symbol", FormatTwelveDataSymbol(symbol))
	if err := t.call(ctx, "/price", q, &resp); err != nil {
		return 0, err
	}
	price, err := strconv.ParseFloat(resp.Price, 64)
	if err != nil || price == 0 {
		return 0, newError(t.Name(), ErrNotAvailable, 0, "no price for %s", symbol)
	}
	return price, nil
}

type twelveDataSeries struct {
	Meta struct {
		Symbol        string `json:"symbol"`
		Interval      string `json:"interval"`
		Currency      string `json:"currency"`
		CurrencyQuote string `json:"currency_quote"`
		Exchange      string `json:"exchange"`
		Type          string `json:"type"`
	} `json:"meta"`
	Values []struct {
		Datetime string `json:"datetime"`
		Open     string `json:"open"`
		High     string `json:"high"`
		Low      string `json:"low"`
		Close    string `json:"close"`
		Volume   string `json:"volume"`
	} `json:"values"`
}

func parseTwelveDataTime(s string) (time.Time, error) {
	if ts, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return ts, nil
	}
	return time.Parse("2006-01-02", s)
}

func parseNumber(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func (t *TwelveDataSource) FetchCandles(ctx context.Context, symbol, interval string, count int) (*model.TimeSeries, error) {
	if !t.Supports(interval) {
		return nil, newError(t.Name(), ErrNotAvailable, 0, "interval %q not supported", interval)
	}

	q := url.Values{}
	q.Set("symbol", FormatTwelveDataSymbol(symbol))
	q.Set("interval", interval)
	q.Set("outputsize", strconv.Itoa(count))

	var raw twelveDataSeries
	if err := t.call(ctx, "/time_series", q, &raw); err != nil {
		return nil, err
	}

	currency := raw.Meta.Currency
	if currency == "" {
		currency = raw.Meta.CurrencyQuote
	}
	ts := &model.TimeSeries{
		Meta: model.SeriesMeta{
			Symbol:   symbol,
			Interval: interval,
			Currency: currency,
			Exchange: raw.Meta.Exchange,
			Type:     string(market.Classify(symbol)),
		},
		Values: make([]model.Candle, 0, len(raw.Values)),
	}

	// values arrive newest first
	for _, v := range raw.Values {
		at, err := parseTwelveDataTime(v.Datetime)
		if err != nil {
			return nil, wrapError(t.Name(), ErrUpstream, fmt.Errorf("parse datetime %q: %w", v.Datetime, err))
		}
		ts.Values = append(ts.Values, model.Candle{
			Time:   at,
			Open:   parseNumber(v.Open),
			High:   parseNumber(v.High),
			Low:    parseNumber(v.Low),
			Close:  parseNumber(v.Close),
			Volume: parseNumber(v.Volume),
		})
		if len(ts.Values) == count {
			break
		}
	}
	return ts, nil
}
