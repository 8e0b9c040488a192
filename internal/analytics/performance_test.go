package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradejournal/internal/domain"
)

func closedPosition(ticker string, pnl string, openedAt time.Time, holding time.Duration) *domain.Position {
	closedAt := openedAt.Add(holding)
	return &domain.Position{
		Ticker:            ticker,
		Region:            domain.RegionUS,
		Currency:          domain.CurrencyUSD,
		Platform:          domain.PlatformIBKR,
		TotalVolume:       100,
		AverageEntryPrice: decimal.RequireFromString("10"),
		GrossProfitLoss:   decimal.NewNullDecimal(decimal.RequireFromString(pnl)),
		TotalFees:         decimal.RequireFromString("2"),
		OpenedAt:          openedAt,
		ClosedAt:          &closedAt,
		CreatedBy:         "user-1",
	}
}

func TestAnalyzePositions_Empty(t *testing.T) {
	metrics := AnalyzePositions(nil)
	require.NotNil(t, metrics)
	assert.Zero(t, metrics.TotalPositions)
	assert.Zero(t, metrics.WinRate)
	assert.Equal(t, "0", metrics.TotalProfit.String())
	assert.Empty(t, metrics.MonthlyReturns)
}

func TestAnalyzePositions_SkipsOpenAndUnrealized(t *testing.T) {
	openedAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	open := &domain.Position{
		Ticker:   "AAPL",
		OpenedAt: openedAt,
	}
	// Closed by drain but never realized (e.g. a reversal wiped the P&L).
	closedAt := openedAt.Add(time.Hour)
	unrealized := &domain.Position{
		Ticker:   "MSFT",
		OpenedAt: openedAt,
		ClosedAt: &closedAt,
	}

	metrics := AnalyzePositions([]*domain.Position{open, unrealized})
	assert.Zero(t, metrics.TotalPositions)
}

func TestAnalyzePositions_Metrics(t *testing.T) {
	jan := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 5, 10, 0, 0, 0, time.UTC)

	positions := []*domain.Position{
		closedPosition("AAPL", "300", jan, 2*time.Hour),
		closedPosition("MSFT", "-100", jan.AddDate(0, 0, 5), 4*time.Hour),
		closedPosition("NVDA", "500", feb, 6*time.Hour),
	}

	metrics := AnalyzePositions(positions)

	assert.Equal(t, 3, metrics.TotalPositions)
	assert.Equal(t, 2, metrics.WinningPositions)
	assert.Equal(t, 1, metrics.LosingPositions)
	assert.InDelta(t, 2.0/3.0, metrics.WinRate, 1e-9)

	assert.Equal(t, "700", metrics.TotalProfit.String())
	assert.Equal(t, "6", metrics.TotalFees.String())
	assert.Equal(t, "400", metrics.AverageWin.String())
	assert.Equal(t, "-100", metrics.AverageLoss.String())
	assert.InDelta(t, 8.0, metrics.ProfitFactor, 1e-9) // 800 gross wins / 100 gross losses
	assert.Equal(t, 4*time.Hour, metrics.AverageHoldingPeriod)

	require.NotNil(t, metrics.BestPosition)
	assert.Equal(t, "NVDA", metrics.BestPosition.Ticker)
	require.NotNil(t, metrics.WorstPosition)
	assert.Equal(t, "MSFT", metrics.WorstPosition.Ticker)

	assert.Equal(t, "200", metrics.MonthlyReturns["2024-01"].String())
	assert.Equal(t, "500", metrics.MonthlyReturns["2024-02"].String())
}

func TestGetMonthlyReturns_Sorted(t *testing.T) {
	jan := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)

	positions := []*domain.Position{
		closedPosition("NVDA", "500", jan.AddDate(0, 2, 0), time.Hour),
		closedPosition("AAPL", "300", jan, time.Hour),
		closedPosition("MSFT", "-100", jan.AddDate(0, 1, 0), time.Hour),
	}

	returns := AnalyzePositions(positions).GetMonthlyReturns()
	require.Len(t, returns, 3)
	assert.Equal(t, "2024-01", returns[0].Month.Format("2006-01"))
	assert.Equal(t, "2024-02", returns[1].Month.Format("2006-01"))
	assert.Equal(t, "2024-03", returns[2].Month.Format("2006-01"))
	assert.Equal(t, "300", returns[0].Return.String())
}

func TestAnalyzePositions_AllLosses(t *testing.T) {
	jan := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)
	metrics := AnalyzePositions([]*domain.Position{
		closedPosition("AAPL", "-50", jan, time.Hour),
	})

	assert.Equal(t, 1, metrics.LosingPositions)
	assert.Zero(t, metrics.WinRate)
	assert.Zero(t, metrics.ProfitFactor)
	assert.Equal(t, "0", metrics.AverageWin.String())
	assert.Equal(t, "-50", metrics.AverageLoss.String())
}
