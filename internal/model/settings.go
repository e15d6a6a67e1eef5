package model

import "time"

// Settings holds the user's trading preferences and watchlist.
type Settings struct {
	AccountSize     float64   `json:"account_size"`
	RiskPerTrade    float64   `json:"risk_per_trade"`
	DefaultStrategy string    `json:"default_strategy"`
	StrategyID      string    `json:"strategy_id,omitempty"`
	Interval        string    `json:"interval"`
	Watchlist       []string  `json:"watchlist"`
	UpdatedAt       time.Time `json:"updated_at"`
}
