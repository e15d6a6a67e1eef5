package model

import "time"

// Candle represents a single OHLCV bar.
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// SeriesMeta describes where a TimeSeries came from.
type SeriesMeta struct {
	Symbol   string `json:"symbol"`
	Interval string `json:"interval"`
	Currency string `json:"currency,omitempty"`
	Exchange string `json:"exchange,omitempty"`
	Type     string `json:"type,omitempty"`
}

// TimeSeries holds candles for one symbol and interval, newest first.
type TimeSeries struct {
	Meta   SeriesMeta `json:"meta"`
	Values []Candle   `json:"values"`
}

// Closes returns close prices oldest first, the order the calculators expect.
func (ts *TimeSeries) Closes() []float64 {
	n := len(ts.Values)
	closes := make([]float64, n)
	for i, c := range ts.Values {
		closes[n-1-i] = c.Close
	}
	return closes
}

// Latest returns the newest candle, or false if the series is empty.
func (ts *TimeSeries) Latest() (Candle, bool) {
	if len(ts.Values) == 0 {
		return Candle{}, false
	}
	return ts.Values[0], true
}
