package recorder

import (
	"context"
	"time"

	"github.com/bilalabdelkadir/teftef-trader/internal/model"
)

// DefaultRecentLimit is used by RecentSignals when limit <= 0.
const DefaultRecentLimit = 20

// CautionBelow is the confidence under which a recorded signal is marked caution.
const CautionBelow = 70.0

// SignalRecord is one analysis result as stored in the signal ledger.
type SignalRecord struct {
	ID              string    `json:"id"`
	Symbol          string    `json:"symbol"`
	Market          string    `json:"market"`
	Strategy        string    `json:"strategy"`
	Interval        string    `json:"interval"`
	Direction       string    `json:"direction"`
	HasValidSetup   bool      `json:"hasValidSetup"`
	EntryPrice      float64   `json:"entryPrice"`
	StopLoss        float64   `json:"stopLoss"`
	TakeProfit      float64   `json:"takeProfit"`
	Confidence      float64   `json:"confidence"`
	RiskReward      float64   `json:"riskReward"`
	PositionSize    float64   `json:"positionSize"`
	Reasoning       string    `json:"reasoning"`
	MarketStructure string    `json:"marketStructure"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
}

// StatusFor returns the ledger status of a signal with the given confidence.
func StatusFor(confidence float64) model.SignalStatus {
	if confidence >= CautionBelow {
		return model.StatusNew
	}
	return model.StatusCaution
}

// NewSignalRecord converts an analysis result into a ledger record.
func NewSignalRecord(r *model.AnalysisResult) *SignalRecord {
	return &SignalRecord{
		ID:              r.ID,
		Symbol:          r.Symbol,
		Market:          r.Market,
		Strategy:        r.Strategy,
		Interval:        r.Interval,
		Direction:       string(r.Signal.Direction),
		HasValidSetup:   r.Signal.HasValidSetup,
		EntryPrice:      r.Signal.EntryPrice,
		StopLoss:        r.Signal.StopLoss,
		TakeProfit:      r.Signal.TakeProfit,
		Confidence:      r.Signal.Confidence,
		RiskReward:      r.RiskReward,
		PositionSize:    r.PositionSize,
		Reasoning:       r.Signal.Reasoning,
		MarketStructure: r.Signal.MarketStructure,
		Status:          string(StatusFor(r.Signal.Confidence)),
		CreatedAt:       r.Timestamp,
	}
}

// ScanSummary records one market scan run.
type ScanSummary struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Symbols    int
	Analyzed   int
	Signals    int
	Failed     int
}

// Recorder persists the signal ledger and scan history.
type Recorder interface {
	RecordSignal(ctx context.Context, rec *SignalRecord) error
	// RecentSignals returns the newest signals first.
	RecentSignals(ctx context.Context, limit int) ([]SignalRecord, error)
	RecordScan(ctx context.Context, s *ScanSummary) error
	Close() error
}
