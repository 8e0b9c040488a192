package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position is the running aggregate over all trades sharing one
// (owner, ticker, platform, region) tuple.
//
// TotalVolume and OutstandingVolume are non-negative magnitudes of the
// current directional leg; IsShort carries the direction. A flip (a closing
// trade overshooting the remaining open size) starts a new leg with the
// excess volume and the opposite direction.
type Position struct {
	ID                int64
	Ticker            string
	Region            Region
	Currency          Currency
	Platform          Platform
	TotalVolume       int64               // total size opened on the current leg
	OutstandingVolume int64               // currently open (unclosed) size
	AverageEntryPrice decimal.Decimal     // volume-weighted entry price of the leg
	AverageExitPrice  decimal.NullDecimal // volume-weighted exit price; invalid until a closing fill exists
	GrossProfitLoss   decimal.NullDecimal // realized P&L net of fees; invalid until realized
	TotalFees         decimal.Decimal
	IsShort           bool
	NumOfTrades       int
	OpenedAt          time.Time
	ClosedAt          *time.Time // non-nil iff OutstandingVolume == 0

	// User annotations, untouched by the accounting engine.
	ReviewedAt        *time.Time
	StopLossPrice     decimal.NullDecimal
	ProfitTargetPrice decimal.NullDecimal
	Notes             string
	Journal           string

	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsOpen reports whether the position still carries open exposure.
func (p *Position) IsOpen() bool {
	return p.ClosedAt == nil
}

// Key returns the grouping tuple of the position.
func (p *Position) Key() PositionKey {
	return PositionKey{
		CreatedBy: p.CreatedBy,
		Ticker:    p.Ticker,
		Platform:  p.Platform,
		Region:    p.Region,
	}
}

// ClosedVolume returns the size of the current leg already matched by
// closing fills.
func (p *Position) ClosedVolume() int64 {
	return p.TotalVolume - p.OutstandingVolume
}

// Clone returns a deep-enough copy for the aggregator to work on without
// mutating the stored snapshot. Decimal values are immutable, so a shallow
// field copy plus pointer re-allocation is sufficient.
func (p *Position) Clone() *Position {
	cp := *p
	if p.ClosedAt != nil {
		t := *p.ClosedAt
		cp.ClosedAt = &t
	}
	if p.ReviewedAt != nil {
		t := *p.ReviewedAt
		cp.ReviewedAt = &t
	}
	return &cp
}
