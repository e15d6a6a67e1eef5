package model

import "time"

// Direction is the side of a trade setup.
type Direction string

const (
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
)

// KeyLevels lists the support and resistance prices identified in an analysis.
type KeyLevels struct {
	Support    []float64 `json:"support"`
	Resistance []float64 `json:"resistance"`
}

// TradeSignal is the structured recommendation returned by the language model.
type TradeSignal struct {
	HasValidSetup   bool      `json:"hasValidSetup"`
	Direction       Direction `json:"direction"`
	EntryPrice      float64   `json:"entryPrice"`
	StopLoss        float64   `json:"stopLoss"`
	TakeProfit      float64   `json:"takeProfit"`
	Confidence      float64   `json:"confidence"`
	Reasoning       string    `json:"reasoning"`
	KeyLevels       KeyLevels `json:"keyLevels"`
	MarketStructure string    `json:"marketStructure"`
}

// AnalysisResult is the output of one market analysis.
type AnalysisResult struct {
	ID              string      `json:"id"`
	Symbol          string      `json:"symbol"`
	Market          string      `json:"market"`
	Strategy        string      `json:"strategy"`
	Interval        string      `json:"interval"`
	Signal          TradeSignal `json:"signal"`
	RiskReward      float64     `json:"riskReward"`
	PositionSize    float64     `json:"positionSize"`
	Timestamp       time.Time   `json:"timestamp"`
	StrategyID      string      `json:"strategyId,omitempty"`
	StrategyContext string      `json:"strategyContext,omitempty"`
}

// SignalStatus classifies a recorded signal for display.
type SignalStatus string

const (
	StatusNew     SignalStatus = "new"
	StatusCaution SignalStatus = "caution"
)
