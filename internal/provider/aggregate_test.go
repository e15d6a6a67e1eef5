package provider

import (
	"testing"
	"time"

	"github.com/bilalabdelkadir/teftef-trader/internal/model"
)

// hourly returns n hourly candles newest first; candle k (oldest = 0) has
// open k, close k+0.5, high k+1, low k-1 and volume 10.
func hourly(n int) []model.Candle {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]model.Candle, n)
	for k := 0; k < n; k++ {
		f := float64(k)
		out[n-1-k] = model.Candle{
			Time:   base.Add(time.Duration(k) * time.Hour),
			Open:   f,
			High:   f + 1,
			Low:    f - 1,
			Close:  f + 0.5,
			Volume: 10,
		}
	}
	return out
}

func TestAggregateCandles_FullGroups(t *testing.T) {
	got := AggregateCandles(hourly(8), 4)
	if len(got) != 2 {
		t.Fatalf("expected 2 candles, got %d", len(got))
	}

	// newest first: got[0] covers k=4..7, got[1] covers k=0..3
	older, newer := got[1], got[0]
	if older.Open != 0 || older.Close != 3.5 || older.High != 4 || older.Low != -1 || older.Volume != 40 {
		t.Errorf("unexpected older candle: %+v", older)
	}
	if newer.Open != 4 || newer.Close != 7.5 || newer.High != 8 || newer.Low != 3 || newer.Volume != 40 {
		t.Errorf("unexpected newer candle: %+v", newer)
	}
	if !newer.Time.Equal(time.Date(2024, 1, 1, 4, 0, 0, 0, time.UTC)) {
		t.Errorf("aggregated candle should start at its first hour, got %v", newer.Time)
	}
}

func TestAggregateCandles_PartialGroup(t *testing.T) {
	for leftover := 1; leftover <= 3; leftover++ {
		got := AggregateCandles(hourly(8+leftover), 4)
		if len(got) != 3 {
			t.Fatalf("leftover %d: expected 3 candles, got %d", leftover, len(got))
		}
		partial := got[0]
		if partial.Volume != float64(10*leftover) {
			t.Errorf("leftover %d: volume %f", leftover, partial.Volume)
		}
		if partial.Open != 8 || partial.Close != float64(8+leftover-1)+0.5 {
			t.Errorf("leftover %d: unexpected partial candle %+v", leftover, partial)
		}
	}
}

func TestAggregateCandles_Passthrough(t *testing.T) {
	in := hourly(3)
	if got := AggregateCandles(in, 1); len(got) != 3 {
		t.Errorf("group size 1 should not change input")
	}
	if got := AggregateCandles(nil, 4); len(got) != 0 {
		t.Errorf("empty input should stay empty")
	}
}
