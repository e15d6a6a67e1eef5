package model

import "time"

// IndicatorPoint is one value of a single-line indicator (SMA, EMA, RSI).
type IndicatorPoint struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// MACDPoint is one value of the MACD indicator.
type MACDPoint struct {
	Time      time.Time `json:"time"`
	MACD      float64   `json:"macd"`
	Signal    float64   `json:"signal"`
	Histogram float64   `json:"histogram"`
}

// IndicatorSet is the fixed indicator selection carried by a bundle. All series are newest first.
type IndicatorSet struct {
	RSI   []IndicatorPoint `json:"rsi"`
	MACD  []MACDPoint      `json:"macd"`
	SMA20 []IndicatorPoint `json:"sma20"`
	EMA50 []IndicatorPoint `json:"ema50"`
}

// MarketDataBundle combines a time series with its indicator set for one symbol and interval.
type MarketDataBundle struct {
	Symbol     string       `json:"symbol"`
	Interval   string       `json:"interval"`
	TimeSeries TimeSeries   `json:"timeSeries"`
	Indicators IndicatorSet `json:"indicators"`
}
