package analysis

import (
	"github.com/shopspring/decimal"

	"github.com/bilalabdelkadir/teftef-trader/internal/model"
)

// RiskReward returns reward divided by risk for a setup, rounded to 2 decimals.
// It is 0 when the stop is not on the losing side of the entry.
func RiskReward(direction model.Direction, entry, stopLoss, takeProfit float64) float64 {
	e := decimal.NewFromFloat(entry)
	sl := decimal.NewFromFloat(stopLoss)
	tp := decimal.NewFromFloat(takeProfit)

	var risk, reward decimal.Decimal
	if direction == model.DirectionBuy {
		risk = e.Sub(sl)
		reward = tp.Sub(e)
	} else {
		risk = sl.Sub(e)
		reward = e.Sub(tp)
	}
	if !risk.IsPositive() {
		return 0
	}
	return reward.Div(risk).Round(2).InexactFloat64()
}

// PositionSize returns the units to trade so that hitting the stop loses
// riskPercentage of accountSize, rounded to 2 decimals.
func PositionSize(accountSize, riskPercentage, entry, stopLoss float64) float64 {
	riskAmount := decimal.NewFromFloat(accountSize).
		Mul(decimal.NewFromFloat(riskPercentage)).
		Div(decimal.NewFromInt(100))
	atRisk := decimal.NewFromFloat(entry).Sub(decimal.NewFromFloat(stopLoss)).Abs()
	if atRisk.IsZero() {
		return 0
	}
	return riskAmount.Div(atRisk).Round(2).InexactFloat64()
}
