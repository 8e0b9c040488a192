// Package risk provides pre-trade sizing math: stop-loss distances,
// position sizes, and reward-to-risk ratios. Percentages are represented as
// decimals between 0 and 1. Out-of-range inputs yield zero rather than an
// error, matching how the calculator is used interactively.
package risk

import "github.com/shopspring/decimal"

var one = decimal.NewFromInt(1)

// isPercentage reports whether v lies in [0, 1].
func isPercentage(v decimal.Decimal) bool {
	return !v.IsNegative() && v.LessThanOrEqual(one)
}

// StopLossPercent returns the loss, as a fraction of entry, if the stop is
// hit. Zero when the stop is above the entry or either price is negative.
func StopLossPercent(entry, stop decimal.Decimal) decimal.Decimal {
	if entry.LessThan(stop) || entry.IsNegative() || stop.IsNegative() || entry.IsZero() {
		return decimal.Zero
	}
	return entry.Sub(stop).Div(entry)
}

// StopLossAmount returns the currency amount lost if the stop is hit on a
// position of the given share count.
func StopLossAmount(entry, stop decimal.Decimal, shares int64) decimal.Decimal {
	if shares < 0 || entry.LessThan(stop) || entry.IsNegative() || stop.IsNegative() {
		return decimal.Zero
	}
	return entry.Sub(stop).Mul(decimal.NewFromInt(shares))
}

// PositionShares returns the whole number of shares a position of
// sizePercent of the account buys at the entry price.
func PositionShares(accountSize, sizePercent, entry decimal.Decimal) int64 {
	if accountSize.IsNegative() || !isPercentage(sizePercent) || entry.IsNegative() || entry.IsZero() {
		return 0
	}
	return accountSize.Mul(sizePercent).Div(entry).Round(0).IntPart()
}

// PositionSizePercent returns the fraction of the account to allocate so
// that hitting the stop loses exactly riskPercent of the account.
func PositionSizePercent(riskPercent, stopLossPercent decimal.Decimal) decimal.Decimal {
	if !isPercentage(riskPercent) || !isPercentage(stopLossPercent) || stopLossPercent.IsZero() {
		return decimal.Zero
	}
	return riskPercent.Div(stopLossPercent)
}

// ProfitPercent returns the gain, as a fraction of entry, if the target is
// reached.
func ProfitPercent(target, entry decimal.Decimal) decimal.Decimal {
	if entry.IsZero() {
		return decimal.Zero
	}
	return target.Sub(entry).Div(entry)
}

// ProfitPercentFromRisk derives the profit fraction from a reward-to-risk
// multiple and the stop-loss fraction.
func ProfitPercentFromRisk(rewardToRisk, stopLossPercent decimal.Decimal) decimal.Decimal {
	return rewardToRisk.Mul(stopLossPercent)
}

// RewardPercent returns the account-level gain fraction for a position of
// sizePercent reaching profitPercent.
func RewardPercent(profitPercent, sizePercent decimal.Decimal) decimal.Decimal {
	if !isPercentage(profitPercent) || !isPercentage(sizePercent) {
		return decimal.Zero
	}
	return profitPercent.Mul(sizePercent)
}

// RewardPercentFromRisk returns the account-level gain fraction from the
// risked fraction and a reward-to-risk multiple.
func RewardPercentFromRisk(riskPercent, rewardToRisk decimal.Decimal) decimal.Decimal {
	if !isPercentage(riskPercent) {
		return decimal.Zero
	}
	return riskPercent.Mul(rewardToRisk)
}

// RewardToRisk returns the reward-to-risk ratio of two account fractions.
func RewardToRisk(riskPercent, rewardPercent decimal.Decimal) decimal.Decimal {
	if !isPercentage(riskPercent) || !isPercentage(rewardPercent) || riskPercent.IsZero() {
		return decimal.Zero
	}
	return rewardPercent.Div(riskPercent)
}

// CoverPrice returns the exit price that locks in profitPercent from entry.
func CoverPrice(entry, profitPercent decimal.Decimal) decimal.Decimal {
	if entry.IsNegative() || !isPercentage(profitPercent) {
		return decimal.Zero
	}
	return entry.Mul(profitPercent).Add(entry)
}
