package chart

import (
	"math"

	"CryptoCast/internal/domain/models"

	"github.com/shopspring/decimal"
)

// Classify compares the last historical price with the prediction target.
//
// ok is false ("trend unknown") when there is no historical price, when the
// last one is zero, or when the change would not be a finite number.
// PercentChange is rounded half away from zero to two decimals and a tie
// counts as up.
func Classify(resp models.PredictionResponse) (models.TrendResult, bool) {
	prices := resp.Historical().Prices
	if len(prices) == 0 {
		return models.TrendResult{}, false
	}
	target, ok := resp.Target()
	if !ok {
		return models.TrendResult{}, false
	}

	last := prices[len(prices)-1]
	if last == 0 || !finite(last) || !finite(target.Price) {
		return models.TrendResult{}, false
	}

	pct := (target.Price - last) / last * 100
	if !finite(pct) {
		return models.TrendResult{}, false
	}

	rounded, _ := decimal.NewFromFloat(pct).Round(2).Float64()
	return models.TrendResult{
		PercentChange: rounded,
		IsUp:          target.Price >= last,
	}, true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
