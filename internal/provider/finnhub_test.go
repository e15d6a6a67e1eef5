package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bilalabdelkadir/teftef-trader/internal/market"
)

func newFinnhubTest(t *testing.T, handler http.HandlerFunc) *FinnhubSource {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	f := NewFinnhubSource("test-key", "")
	f.BaseURL = srv.URL
	f.now = func() time.Time { return time.Unix(1_700_000_000, 0) }
	return f
}

func TestFinnhubSymbolTranslation(t *testing.T) {
	tests := map[string]string{
		"EUR/USD": "OANDA:EUR_USD",
		"USD/JPY": "OANDA:USD_JPY",
		"BTC/USD": "BINANCE:BTCUSDT",
		"SOL/USD": "BINANCE:SOLUSDT",
		"AAPL":    "AAPL",
	}
	for in, want := range tests {
		if got := ToFinnhubSymbol(in); got != want {
			t.Errorf("ToFinnhubSymbol(%q) = %q, want %q", in, got, want)
		}
	}

	for _, s := range market.AllSymbols() {
		if got := FromFinnhubSymbol(ToFinnhubSymbol(s)); got != s {
			t.Errorf("round trip %q -> %q", s, got)
		}
	}
}

func TestFinnhub_FetchQuote(t *testing.T) {
	f := newFinnhubTest(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/quote" || r.URL.Query().Get("symbol") != "AAPL" || r.URL.Query().Get("token") != "test-key" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
		w.Write([]byte(`{"c":189.25,"h":190,"l":188,"o":189,"pc":188.5}`))
	})

	p, err := f.FetchQuote(context.Background(), "AAPL")
	if err != nil {
		t.Fatal(err)
	}
	if p != 189.25 {
		t.Errorf("price = %f", p)
	}
}

func TestFinnhub_FetchQuoteZeroIsNotAvailable(t *testing.T) {
	f := newFinnhubTest(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"c":0}`))
	})
	_, err := f.FetchQuote(context.Background(), "ZZZZ")
	if !errors.Is(err, ErrNotAvailable) {
		t.Errorf("expected ErrNotAvailable, got %v", err)
	}
}

func TestFinnhub_FetchCandlesForex(t *testing.T) {
	f := newFinnhubTest(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/forex/candle" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if q.Get("symbol") != "OANDA:EUR_USD" || q.Get("resolution") != "60" {
			t.Errorf("unexpected query %v", q)
		}
		// from = to - 3600 * 3 * 2
		if q.Get("to") != "1700000000" || q.Get("from") != "1699978400" {
			t.Errorf("unexpected window %s..%s", q.Get("from"), q.Get("to"))
		}
		json.NewEncoder(w).Encode(map[string]any{
			"s": "ok",
			"t": []int64{1699992000, 1699995600, 1699999200},
			"o": []float64{1.07, 1.08, 1.09},
			"h": []float64{1.075, 1.085, 1.095},
			"l": []float64{1.065, 1.075, 1.085},
			"c": []float64{1.072, 1.082, 1.092},
			"v": []float64{10, 20, 30},
		})
	})

	ts, err := f.FetchCandles(context.Background(), "EUR/USD", "1h", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(ts.Values) != 3 {
		t.Fatalf("expected 3 candles, got %d", len(ts.Values))
	}
	if ts.Values[0].Close != 1.092 || ts.Values[2].Close != 1.072 {
		t.Error("candles must be newest first")
	}
	if ts.Meta.Exchange != "OANDA" || ts.Meta.Type != "forex" || ts.Meta.Currency != "USD" {
		t.Errorf("unexpected meta %+v", ts.Meta)
	}
}

func TestFinnhub_FetchCandlesCrypto(t *testing.T) {
	f := newFinnhubTest(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/crypto/candle" || r.URL.Query().Get("symbol") != "BINANCE:BTCUSDT" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
		w.Write([]byte(`{"s":"no_data"}`))
	})

	ts, err := f.FetchCandles(context.Background(), "BTC/USD", "1day", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(ts.Values) != 0 || ts.Meta.Exchange != "BINANCE" {
		t.Errorf("expected empty BINANCE series, got %+v", ts)
	}
}

func TestFinnhub_ErrorKinds(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusTooManyRequests, ErrRateLimited},
		{http.StatusInternalServerError, ErrUpstream},
		{http.StatusForbidden, ErrUpstream},
	}
	for _, tt := range tests {
		f := newFinnhubTest(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			w.Write([]byte(`{"error":"nope"}`))
		})
		_, err := f.FetchQuote(context.Background(), "AAPL")
		if !errors.Is(err, tt.want) {
			t.Errorf("status %d: expected %v, got %v", tt.status, tt.want, err)
		}
	}
}

func TestFinnhub_MissingKeyFailsBeforeNetwork(t *testing.T) {
	f := newFinnhubTest(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected without an API key")
	})
	f.APIKey = ""

	if _, err := f.FetchQuote(context.Background(), "AAPL"); !errors.Is(err, ErrMisconfigured) {
		t.Errorf("quote: expected ErrMisconfigured, got %v", err)
	}
	if _, err := f.FetchCandles(context.Background(), "AAPL", "1h", 10); !errors.Is(err, ErrMisconfigured) {
		t.Errorf("candles: expected ErrMisconfigured, got %v", err)
	}
}

func TestFinnhub_ClientPriceNoDataIsNotAvailable(t *testing.T) {
	f := newFinnhubTest(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"s":"no_data"}`))
	})
	c := NewClient(f, nil, 0)
	if _, err := c.Price(context.Background(), "EUR/USD"); !errors.Is(err, ErrNotAvailable) {
		t.Errorf("expected ErrNotAvailable, got %v", err)
	}
}

func TestFinnhub_Supports(t *testing.T) {
	if f := NewFinnhubSource("k", ""); f.Supports("4h") || !f.Supports("1h") {
		t.Error("finnhub serves 1h but not 4h")
	}
}
