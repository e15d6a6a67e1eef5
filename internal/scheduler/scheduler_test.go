package scheduler

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bilalabdelkadir/teftef-trader/internal/analysis"
	"github.com/bilalabdelkadir/teftef-trader/internal/market"
	"github.com/bilalabdelkadir/teftef-trader/internal/model"
	"github.com/bilalabdelkadir/teftef-trader/internal/provider"
	"github.com/bilalabdelkadir/teftef-trader/internal/recorder"
	"github.com/bilalabdelkadir/teftef-trader/internal/settings"
)

type fakeAnalyzer struct {
	results map[string]*model.AnalysisResult
	err     error

	mu        sync.Mutex
	requests  []analysis.Request
	batchOpts []analysis.BatchOptions
	batched   chan []string
}

func (f *fakeAnalyzer) AnalyzeMarket(_ context.Context, req analysis.Request) (*model.AnalysisResult, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	r, ok := f.results[market.Normalize(req.Symbol)]
	if !ok {
		return nil, &analysis.FailedError{Symbol: req.Symbol, Err: provider.ErrNotAvailable}
	}
	return r, nil
}

func (f *fakeAnalyzer) BatchAnalyze(ctx context.Context, symbols []string, opts analysis.BatchOptions) []*model.AnalysisResult {
	f.mu.Lock()
	f.batchOpts = append(f.batchOpts, opts)
	f.mu.Unlock()
	if f.batched != nil {
		f.batched <- symbols
	}
	var out []*model.AnalysisResult
	for _, sym := range symbols {
		if r, ok := f.results[sym]; ok {
			out = append(out, r)
		}
	}
	return out
}

type fakePrices map[string]float64

func (f fakePrices) Prices(_ context.Context, symbols []string) map[string]float64 {
	out := map[string]float64{}
	for _, s := range symbols {
		if p, ok := f[s]; ok {
			out[s] = p
		}
	}
	return out
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeNotifier) SendWithRetry(_ context.Context, text string, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return nil
}

func (f *fakeNotifier) messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

type memRecorder struct {
	mu      sync.Mutex
	signals []recorder.SignalRecord
	scans   []recorder.ScanSummary
}

func (m *memRecorder) RecordSignal(_ context.Context, rec *recorder.SignalRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.signals = append(m.signals, *rec)
	return nil
}

func (m *memRecorder) RecentSignals(_ context.Context, limit int) ([]recorder.SignalRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]recorder.SignalRecord, 0, limit)
	for i := len(m.signals) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.signals[i])
	}
	return out, nil
}

func (m *memRecorder) RecordScan(_ context.Context, s *recorder.ScanSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scans = append(m.scans, *s)
	return nil
}

func (m *memRecorder) Close() error { return nil }

func result(symbol string, valid bool, confidence float64) *model.AnalysisResult {
	return &model.AnalysisResult{
		ID:       "id-" + symbol,
		Symbol:   symbol,
		Market:   market.Classify(symbol).Label(),
		Strategy: "ai_decide",
		Interval: "1h",
		Signal: model.TradeSignal{
			HasValidSetup: valid,
			Direction:     model.DirectionBuy,
			EntryPrice:    100,
			StopLoss:      98,
			TakeProfit:    104,
			Confidence:    confidence,
		},
		RiskReward: 2,
		Timestamp:  time.Date(2024, 3, 1, 7, 0, 0, 0, time.UTC),
	}
}

type fixture struct {
	s        *Scheduler
	analyzer *fakeAnalyzer
	notifier *fakeNotifier
	recorder *memRecorder
}

func newFixture(t *testing.T, watchlist ...string) *fixture {
	t.Helper()
	sm, err := settings.NewManager(filepath.Join(t.TempDir(), "settings.json"), model.Settings{
		AccountSize:     10000,
		RiskPerTrade:    1,
		DefaultStrategy: "ai_decide",
		Interval:        "1h",
		Watchlist:       watchlist,
	})
	if err != nil {
		t.Fatal(err)
	}
	f := &fixture{
		analyzer: &fakeAnalyzer{results: map[string]*model.AnalysisResult{
			"EUR/USD": result("EUR/USD", true, 82),
			"AAPL":    result("AAPL", false, 30),
			"BTC/USD": result("BTC/USD", true, 55),
		}},
		notifier: &fakeNotifier{},
		recorder: &memRecorder{},
	}
	f.s = NewScheduler(context.Background(), f.analyzer, fakePrices{"AAPL": 182.5, "EUR/USD": 1.0843},
		sm, f.notifier, f.recorder, Options{ScanDelay: time.Millisecond})
	return f
}

func TestRunScan(t *testing.T) {
	f := newFixture(t, "EUR/USD", "AAPL", "BTC/USD", "GBP/USD")

	summary, setups, err := f.s.RunScan(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.Symbols != 4 || summary.Analyzed != 3 || summary.Failed != 1 || summary.Signals != 2 {
		t.Errorf("unexpected summary %+v", summary)
	}
	if len(setups) != 2 {
		t.Errorf("setups = %d, want 2", len(setups))
	}

	if len(f.recorder.signals) != 2 {
		t.Fatalf("recorded %d signals, want 2", len(f.recorder.signals))
	}
	if f.recorder.signals[0].Status != "new" || f.recorder.signals[1].Status != "caution" {
		t.Errorf("statuses = %s, %s", f.recorder.signals[0].Status, f.recorder.signals[1].Status)
	}
	if len(f.recorder.scans) != 1 || f.recorder.scans[0].ID == "" {
		t.Errorf("scan summary not recorded: %+v", f.recorder.scans)
	}

	msgs := f.notifier.messages()
	if len(msgs) != 3 {
		t.Fatalf("sent %d messages, want 2 alerts and a summary", len(msgs))
	}
	last := msgs[2]
	if !strings.Contains(last, "Market scan") || !strings.Contains(last, "EUR/USD") || strings.Contains(last, "BTC/USD") {
		t.Errorf("summary should list only high-confidence setups:\n%s", last)
	}

	opts := f.analyzer.batchOpts[0]
	if opts.Delay != time.Millisecond || opts.AccountSize != 10000 || opts.RiskPercentage != 1 || opts.Interval != "1h" {
		t.Errorf("unexpected batch options %+v", opts)
	}
}

func TestRunScan_EmptyWatchlistScansAllSymbols(t *testing.T) {
	f := newFixture(t)
	summary, _, err := f.s.RunScan(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.Symbols != len(market.AllSymbols()) {
		t.Errorf("symbols = %d, want %d", summary.Symbols, len(market.AllSymbols()))
	}
}

func TestRunScan_NoOverlap(t *testing.T) {
	f := newFixture(t, "EUR/USD")
	f.s.scanning.Store(true)
	if _, _, err := f.s.RunScan(context.Background()); err != ErrScanRunning {
		t.Errorf("expected ErrScanRunning, got %v", err)
	}
	if got := f.s.HandleCommand(context.Background(), "/scan"); !strings.Contains(got, "already running") {
		t.Errorf("/scan reply = %q", got)
	}
}

func TestRunScan_NilNotifier(t *testing.T) {
	f := newFixture(t, "EUR/USD")
	f.s.Notifier = nil
	if _, _, err := f.s.RunScan(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(f.recorder.signals) != 1 {
		t.Errorf("signals should still be recorded without a notifier")
	}
}

func TestHandleCommand_Scan(t *testing.T) {
	f := newFixture(t, "EUR/USD", "AAPL")
	f.analyzer.batched = make(chan []string, 1)

	reply := f.s.HandleCommand(context.Background(), "/scan@teftef_bot")
	if !strings.Contains(reply, "Scan started for 2 symbols") {
		t.Errorf("reply = %q", reply)
	}
	select {
	case syms := <-f.analyzer.batched:
		if len(syms) != 2 {
			t.Errorf("scanned %v", syms)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("scan did not start")
	}
}

func TestHandleCommand(t *testing.T) {
	tests := []struct {
		name    string
		command string
		want    []string
	}{
		{"help", "/start", []string{"Available commands"}},
		{"empty", "   ", []string{"Available commands"}},
		{"price", "/price aapl eurusd XYZ", []string{"AAPL: 182.50", "EUR/USD: 1.08430", "XYZ: unavailable"}},
		{"price usage", "/price", []string{"Usage: /price"}},
		{"watchlist", "/watchlist", []string{"all supported symbols", "Account: 10000.00"}},
		{"watchlist add", "/watchlist add gbpusd", []string{"GBP/USD"}},
		{"watchlist remove missing", "/watchlist remove TSLA", []string{"TSLA: no change."}},
		{"watchlist bad op", "/watchlist swap TSLA", []string{"Usage: /watchlist"}},
		{"risk", "/risk 5000 2%", []string{"Account: 5000.00 | Risk: 2.00%"}},
		{"risk out of range", "/risk 50 2", []string{"❌ account size"}},
		{"risk usage", "/risk lots", []string{"Usage: /risk"}},
		{"analyze usage", "/analyze", []string{"Usage: /analyze"}},
		{"analyze", "/analyze eurusd 4h", []string{"BUY EUR/USD"}},
		{"analyze no setup", "/ANALYZE aapl", []string{"No valid setup"}},
		{"analyze unknown", "/analyze XYZ", []string{"No market data available"}},
		{"signals empty", "/signals", []string{"No signals recorded yet."}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			got := f.s.HandleCommand(context.Background(), tt.command)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("reply to %q missing %q:\n%s", tt.command, w, got)
				}
			}
		})
	}
}

func TestHandleCommand_AnalyzeRecordsAndUsesSettings(t *testing.T) {
	f := newFixture(t)
	f.s.HandleCommand(context.Background(), "/analyze eurusd 4h")

	if len(f.analyzer.requests) != 1 {
		t.Fatalf("requests = %v", f.analyzer.requests)
	}
	req := f.analyzer.requests[0]
	if req.Symbol != "eurusd" || req.Interval != "4h" || req.AccountSize != 10000 || req.Strategy != "ai_decide" {
		t.Errorf("unexpected request %+v", req)
	}
	if len(f.recorder.signals) != 1 || f.recorder.signals[0].Symbol != "EUR/USD" {
		t.Errorf("analysis not recorded: %+v", f.recorder.signals)
	}

	got := f.s.HandleCommand(context.Background(), "/signals 5")
	if !strings.Contains(got, "BUY EUR/USD") {
		t.Errorf("signals reply:\n%s", got)
	}
}

func TestHandleCommand_AnalyzeRateLimited(t *testing.T) {
	f := newFixture(t)
	f.analyzer.err = fmt.Errorf("wrapped: %w", provider.ErrRateLimited)
	got := f.s.HandleCommand(context.Background(), "/analyze AAPL")
	if !strings.Contains(got, "rate limit") {
		t.Errorf("reply = %q", got)
	}
}
