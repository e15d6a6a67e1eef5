package recorder

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/bilalabdelkadir/teftef-trader/internal/model"
)

func openTestRecorder(t *testing.T) *SQLRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "signals.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		confidence float64
		want       model.SignalStatus
	}{
		{95, model.StatusNew},
		{70, model.StatusNew},
		{69.99, model.StatusCaution},
		{0, model.StatusCaution},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.confidence); got != tt.want {
			t.Errorf("StatusFor(%v) = %s, want %s", tt.confidence, got, tt.want)
		}
	}
}

func TestNewSignalRecord(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := NewSignalRecord(&model.AnalysisResult{
		ID:       "a1",
		Symbol:   "EUR/USD",
		Market:   "forex",
		Strategy: "swing",
		Interval: "4h",
		Signal: model.TradeSignal{
			HasValidSetup: true,
			Direction:     model.DirectionSell,
			EntryPrice:    1.1,
			Confidence:    65,
		},
		RiskReward: 2.5,
		Timestamp:  ts,
	})
	if rec.Direction != "SELL" || rec.Status != "caution" || rec.Interval != "4h" || !rec.CreatedAt.Equal(ts) {
		t.Errorf("unexpected record %+v", rec)
	}
}

func TestSQLiteRecorder_Signals(t *testing.T) {
	r := openTestRecorder(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, sym := range []string{"EUR/USD", "AAPL", "BTC/USD"} {
		err := r.RecordSignal(ctx, &SignalRecord{
			ID:            sym,
			Symbol:        sym,
			Direction:     "BUY",
			HasValidSetup: i%2 == 0,
			EntryPrice:    100 + float64(i),
			Confidence:    70 + float64(i),
			Status:        "new",
			CreatedAt:     base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	got, err := r.RecentSignals(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Symbol != "BTC/USD" || got[1].Symbol != "AAPL" {
		t.Fatalf("unexpected order %+v", got)
	}
	if !got[0].HasValidSetup || got[1].HasValidSetup {
		t.Errorf("has_valid_setup not round-tripped")
	}
	if got[0].EntryPrice != 102 || !got[0].CreatedAt.Equal(base.Add(2*time.Minute)) {
		t.Errorf("unexpected row %+v", got[0])
	}

	all, err := r.RecentSignals(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("default limit returned %d rows", len(all))
	}
}

func TestSQLiteRecorder_DuplicateID(t *testing.T) {
	r := openTestRecorder(t)
	ctx := context.Background()
	rec := &SignalRecord{ID: "dup", Symbol: "AAPL"}
	if err := r.RecordSignal(ctx, rec); err != nil {
		t.Fatal(err)
	}
	if err := r.RecordSignal(ctx, rec); err == nil {
		t.Error("expected primary key violation")
	}
}

func TestSQLiteRecorder_RecordScan(t *testing.T) {
	r := openTestRecorder(t)
	now := time.Now()
	err := r.RecordScan(context.Background(), &ScanSummary{
		ID:         "scan-1",
		StartedAt:  now.Add(-time.Minute),
		FinishedAt: now,
		Symbols:    5,
		Analyzed:   4,
		Signals:    1,
		Failed:     1,
	})
	if err != nil {
		t.Fatal(err)
	}

	var n int
	if err := r.db.Get(&n, "SELECT analyzed FROM scans WHERE id = ?", "scan-1"); err != nil {
		t.Fatal(err)
	}
	if n != 4 {
		t.Errorf("analyzed = %d, want 4", n)
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	if _, err := Open("mysql", "x"); err == nil {
		t.Error("expected error for unsupported driver")
	}
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	ctx := context.Background()
	if err := r.RecordSignal(ctx, &SignalRecord{}); err != nil {
		t.Error(err)
	}
	got, err := r.RecentSignals(ctx, 5)
	if err != nil || got == nil || len(got) != 0 {
		t.Errorf("RecentSignals = %v, %v", got, err)
	}
}
