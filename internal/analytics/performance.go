// Package analytics computes journal-level performance metrics from closed
// positions.
package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"tradejournal/internal/domain"
)

// PerformanceMetrics holds aggregate performance metrics across closed
// positions.
type PerformanceMetrics struct {
	TotalPositions   int
	WinningPositions int
	LosingPositions  int
	WinRate          float64

	TotalProfit decimal.Decimal
	TotalFees   decimal.Decimal
	AverageWin  decimal.Decimal
	AverageLoss decimal.Decimal
	// ProfitFactor is gross wins over gross losses.
	ProfitFactor float64

	AverageHoldingPeriod time.Duration
	MonthlyReturns       map[string]decimal.Decimal

	BestPosition  *domain.Position
	WorstPosition *domain.Position
}

// AnalyzePositions folds closed positions into performance metrics. Open
// positions and closed positions without realized P&L are skipped; only
// realized results count.
func AnalyzePositions(positions []*domain.Position) *PerformanceMetrics {
	metrics := &PerformanceMetrics{
		TotalProfit:    decimal.Zero,
		TotalFees:      decimal.Zero,
		AverageWin:     decimal.Zero,
		AverageLoss:    decimal.Zero,
		MonthlyReturns: make(map[string]decimal.Decimal),
	}

	closed := make([]*domain.Position, 0, len(positions))
	for _, pos := range positions {
		if pos.ClosedAt != nil && pos.GrossProfitLoss.Valid {
			closed = append(closed, pos)
		}
	}
	if len(closed) == 0 {
		return metrics
	}

	sort.Slice(closed, func(i, j int) bool {
		return closed[i].ClosedAt.Before(*closed[j].ClosedAt)
	})

	var (
		grossWins     = decimal.Zero
		grossLosses   = decimal.Zero
		totalDuration time.Duration
	)
	for _, pos := range closed {
		pnl := pos.GrossProfitLoss.Decimal
		metrics.TotalPositions++
		metrics.TotalProfit = metrics.TotalProfit.Add(pnl)
		metrics.TotalFees = metrics.TotalFees.Add(pos.TotalFees)
		totalDuration += pos.ClosedAt.Sub(pos.OpenedAt)

		if pnl.IsPositive() {
			metrics.WinningPositions++
			grossWins = grossWins.Add(pnl)
		} else {
			metrics.LosingPositions++
			grossLosses = grossLosses.Add(pnl)
		}

		monthKey := pos.ClosedAt.Format("2006-01")
		metrics.MonthlyReturns[monthKey] = metrics.MonthlyReturns[monthKey].Add(pnl)

		if metrics.BestPosition == nil || pnl.GreaterThan(metrics.BestPosition.GrossProfitLoss.Decimal) {
			metrics.BestPosition = pos
		}
		if metrics.WorstPosition == nil || pnl.LessThan(metrics.WorstPosition.GrossProfitLoss.Decimal) {
			metrics.WorstPosition = pos
		}
	}

	metrics.WinRate = float64(metrics.WinningPositions) / float64(metrics.TotalPositions)
	if metrics.WinningPositions > 0 {
		metrics.AverageWin = grossWins.Div(decimal.NewFromInt(int64(metrics.WinningPositions)))
	}
	if metrics.LosingPositions > 0 {
		metrics.AverageLoss = grossLosses.Div(decimal.NewFromInt(int64(metrics.LosingPositions)))
	}
	if !grossLosses.IsZero() {
		pf, _ := grossWins.Div(grossLosses.Neg()).Float64()
		metrics.ProfitFactor = pf
	}
	metrics.AverageHoldingPeriod = totalDuration / time.Duration(metrics.TotalPositions)

	return metrics
}

// MonthlyReturn represents realized P&L for one calendar month.
type MonthlyReturn struct {
	Month  time.Time
	Return decimal.Decimal
}

// GetMonthlyReturns returns the monthly returns as a sorted slice.
func (m *PerformanceMetrics) GetMonthlyReturns() []MonthlyReturn {
	returns := make([]MonthlyReturn, 0, len(m.MonthlyReturns))
	for month, profit := range m.MonthlyReturns {
		date, err := time.Parse("2006-01", month)
		if err != nil {
			continue
		}
		returns = append(returns, MonthlyReturn{Month: date, Return: profit})
	}
	sort.Slice(returns, func(i, j int) bool {
		return returns[i].Month.Before(returns[j].Month)
	})
	return returns
}
