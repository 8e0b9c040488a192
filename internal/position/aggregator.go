// Package position implements the position accounting engine: pure
// computation that folds trade executions into position aggregates.
// It performs no I/O; persistence is the caller's concern.
package position

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"tradejournal/internal/domain"
	"tradejournal/internal/ports"
)

type options struct {
	short *bool
}

// Option adjusts how an aggregation pass is seeded.
type Option func(*options)

// WithShort overrides the direction of a fresh aggregate. Without it the
// side of the earliest trade establishes the direction: a first SELL opens
// a short leg.
func WithShort(short bool) Option {
	return func(o *options) {
		s := short
		o.short = &s
	}
}

// ApplyTrades folds trades into an existing position snapshot (or a fresh
// one when existing is nil) and returns the resulting snapshot. Trades are
// processed in execution-time order regardless of input order; the ordering
// is load-bearing because weighted-average cost basis and closing-volume
// matching are order-dependent.
//
// A trade on the open side of the current leg extends it; a trade on the
// other side closes against it, realizing P&L for the matched slice. A
// closing trade overshooting the remaining open size flips the position:
// the old leg is closed entirely and the excess opens a new leg in the
// opposite direction within the same pass.
func ApplyTrades(existing *domain.Position, trades []*domain.Trade, opts ...Option) (*domain.Position, error) {
	if len(trades) == 0 {
		return nil, ports.ErrEmptyTradeSet
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	sorted := sortByExecution(trades)
	if err := checkKeys(existing, sorted); err != nil {
		return nil, err
	}

	var agg *aggregate
	if existing != nil {
		agg = fromPosition(existing)
	} else {
		short := sorted[0].Side == domain.Sell
		if o.short != nil {
			short = *o.short
		}
		agg = &aggregate{
			key:      sorted[0].Key(),
			currency: sorted[0].Currency,
			isShort:  short,
		}
	}

	for _, t := range sorted {
		if t.Volume <= 0 {
			return nil, fmt.Errorf("%w: trade %d has non-positive volume %d", ports.ErrValidation, t.ID, t.Volume)
		}
		agg.apply(t)
	}
	return agg.position(existing), nil
}

// ReverseTrade algebraically undoes a single trade's contribution to a
// position aggregate. It returns nil when the aggregate drains to zero
// trades, signalling that the position row should be deleted.
//
// The inverse operates on aggregate fields, not on a full trade history, so
// it is exact for same-direction extensions and plain closes but best-effort
// across flips: the entry cost basis of an overwritten prior leg is not
// recoverable from the snapshot alone. Reversals that would drive volume
// negative are rejected with ErrInconsistentAggregate.
func ReverseTrade(existing *domain.Position, trade *domain.Trade) (*domain.Position, error) {
	return ReverseTrades(existing, []*domain.Trade{trade})
}

// ReverseTrades undoes a batch of trades against one position in a single
// fold, most recent execution first, so intermediate states are never
// observed out of order. Sequential single-trade reversals match this fold
// only when applied newest-first: reversing an older opening fill first
// shifts the entry basis used by later closing reversals.
func ReverseTrades(existing *domain.Position, trades []*domain.Trade) (*domain.Position, error) {
	if existing == nil {
		return nil, fmt.Errorf("%w: no position to reverse against", ports.ErrInconsistentAggregate)
	}
	if len(trades) == 0 {
		return nil, ports.ErrEmptyTradeSet
	}
	if err := checkKeys(existing, trades); err != nil {
		return nil, err
	}

	sorted := sortByExecution(trades)
	agg := fromPosition(existing)
	for i := len(sorted) - 1; i >= 0; i-- {
		if err := agg.reverse(sorted[i]); err != nil {
			return nil, err
		}
	}
	if agg.numOfTrades == 0 {
		if agg.totalVolume != 0 || agg.closedShares != 0 {
			return nil, fmt.Errorf("%w: aggregate retains volume with no contributing trades", ports.ErrInconsistentAggregate)
		}
		return nil, nil
	}
	return agg.position(existing), nil
}

// sortByExecution returns a copy sorted by executedAt ascending, with the
// trade ID as a deterministic tie-breaker.
func sortByExecution(trades []*domain.Trade) []*domain.Trade {
	sorted := make([]*domain.Trade, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].ExecutedAt.Equal(sorted[j].ExecutedAt) {
			return sorted[i].ID < sorted[j].ID
		}
		return sorted[i].ExecutedAt.Before(sorted[j].ExecutedAt)
	})
	return sorted
}

func checkKeys(existing *domain.Position, trades []*domain.Trade) error {
	key := trades[0].Key()
	if existing != nil {
		key = existing.Key()
	}
	for _, t := range trades {
		if t.Key() != key {
			return fmt.Errorf("%w: trade %d has key %+v, want %+v", ports.ErrMixedPositionKeys, t.ID, t.Key(), key)
		}
	}
	return nil
}

// aggregate carries the running totals of one aggregation pass. It mirrors
// the stored position snapshot but keeps raw cost sums instead of averages
// so repeated folds do not compound rounding.
type aggregate struct {
	key      domain.PositionKey
	currency domain.Currency

	isShort      bool
	totalVolume  int64 // shares opened on the current leg
	closedShares int64 // shares of the current leg matched by closing fills
	entryCost    decimal.Decimal
	exitCost     decimal.Decimal
	realized     decimal.Decimal
	hasRealized  bool
	fees         decimal.Decimal
	numOfTrades  int
	openedAt     time.Time
	lastExec     time.Time
}

func fromPosition(p *domain.Position) *aggregate {
	a := &aggregate{
		key:          p.Key(),
		currency:     p.Currency,
		isShort:      p.IsShort,
		totalVolume:  p.TotalVolume,
		closedShares: p.ClosedVolume(),
		entryCost:    p.AverageEntryPrice.Mul(decimal.NewFromInt(p.TotalVolume)),
		fees:         p.TotalFees,
		numOfTrades:  p.NumOfTrades,
		openedAt:     p.OpenedAt,
	}
	if p.AverageExitPrice.Valid {
		a.exitCost = p.AverageExitPrice.Decimal.Mul(decimal.NewFromInt(a.closedShares))
	}
	if p.GrossProfitLoss.Valid {
		a.realized = p.GrossProfitLoss.Decimal
		a.hasRealized = true
	}
	if p.ClosedAt != nil {
		a.lastExec = *p.ClosedAt
	}
	return a
}

// averageEntryPrice guards the zero-share denominator: a leg with no opening
// fills has no meaningful average, reported as zero.
func (a *aggregate) averageEntryPrice() decimal.Decimal {
	if a.totalVolume == 0 {
		return decimal.Zero
	}
	return a.entryCost.Div(decimal.NewFromInt(a.totalVolume))
}

func (a *aggregate) outstanding() int64 {
	return a.totalVolume - a.closedShares
}

// apply folds one trade forward.
func (a *aggregate) apply(t *domain.Trade) {
	opening := (t.Side == domain.Buy) != a.isShort
	if opening {
		a.totalVolume += t.Volume
		a.entryCost = a.entryCost.Add(t.Cost())
	} else {
		closing := t.Volume
		if out := a.outstanding(); closing > out {
			closing = out
		}
		if closing > 0 {
			closeVol := decimal.NewFromInt(closing)
			pnl := t.Price.Sub(a.averageEntryPrice()).Mul(closeVol)
			if a.isShort {
				pnl = pnl.Neg()
			}
			a.realized = a.realized.Add(pnl.Sub(t.Fees))
			a.hasRealized = true
			a.exitCost = a.exitCost.Add(t.Price.Mul(closeVol))
			a.closedShares += closing
		}
		if excess := t.Volume - closing; excess > 0 {
			// Flip: the old leg is fully closed and the excess opens a new
			// leg in the opposite direction. Prior entry/exit cost basis
			// belongs to the closed leg and is discarded.
			a.isShort = !a.isShort
			a.totalVolume = excess
			a.closedShares = 0
			a.entryCost = t.Price.Mul(decimal.NewFromInt(excess))
			a.exitCost = decimal.Zero
		}
	}
	a.fees = a.fees.Add(t.Fees)
	a.numOfTrades++
	if a.openedAt.IsZero() || t.ExecutedAt.Before(a.openedAt) {
		a.openedAt = t.ExecutedAt
	}
	if t.ExecutedAt.After(a.lastExec) {
		a.lastExec = t.ExecutedAt
	}
}

// reverse folds one trade backward, undoing the matching apply step.
func (a *aggregate) reverse(t *domain.Trade) error {
	opening := (t.Side == domain.Buy) != a.isShort
	if opening {
		if t.Volume > a.totalVolume {
			return fmt.Errorf("%w: reversing trade %d would drive leg volume below zero", ports.ErrInconsistentAggregate, t.ID)
		}
		if a.closedShares > a.totalVolume-t.Volume {
			return fmt.Errorf("%w: reversing trade %d would drive outstanding volume below zero", ports.ErrInconsistentAggregate, t.ID)
		}
		a.totalVolume -= t.Volume
		a.entryCost = a.entryCost.Sub(t.Cost())
		if a.totalVolume == 0 {
			a.entryCost = decimal.Zero
		}
	} else {
		if t.Volume > a.closedShares {
			// Covers reversing across a flip: the closing slice belonged to
			// a leg this snapshot no longer describes.
			return fmt.Errorf("%w: reversing trade %d exceeds the leg's closed volume", ports.ErrInconsistentAggregate, t.ID)
		}
		vol := decimal.NewFromInt(t.Volume)
		pnl := t.Price.Sub(a.averageEntryPrice()).Mul(vol)
		if a.isShort {
			pnl = pnl.Neg()
		}
		a.realized = a.realized.Sub(pnl.Sub(t.Fees))
		a.closedShares -= t.Volume
		a.exitCost = a.exitCost.Sub(t.Price.Mul(vol))
		if a.closedShares == 0 {
			a.exitCost = decimal.Zero
			a.realized = decimal.Zero
			a.hasRealized = false
		}
	}
	a.fees = a.fees.Sub(t.Fees)
	if a.fees.IsNegative() {
		a.fees = decimal.Zero
	}
	a.numOfTrades--
	if a.numOfTrades < 0 {
		return fmt.Errorf("%w: trade count underflow", ports.ErrInconsistentAggregate)
	}
	return nil
}

// position materializes the aggregate into a snapshot, carrying identity and
// user annotations from the prior snapshot when present.
func (a *aggregate) position(existing *domain.Position) *domain.Position {
	var p *domain.Position
	if existing != nil {
		p = existing.Clone()
	} else {
		p = &domain.Position{
			Ticker:    a.key.Ticker,
			Region:    a.key.Region,
			Currency:  a.currency,
			Platform:  a.key.Platform,
			CreatedBy: a.key.CreatedBy,
		}
	}
	p.TotalVolume = a.totalVolume
	p.OutstandingVolume = a.outstanding()
	p.AverageEntryPrice = a.averageEntryPrice()
	if a.closedShares > 0 {
		p.AverageExitPrice = decimal.NewNullDecimal(a.exitCost.Div(decimal.NewFromInt(a.closedShares)))
	} else {
		p.AverageExitPrice = decimal.NullDecimal{}
	}
	if a.hasRealized {
		p.GrossProfitLoss = decimal.NewNullDecimal(a.realized)
	} else {
		p.GrossProfitLoss = decimal.NullDecimal{}
	}
	p.TotalFees = a.fees
	p.IsShort = a.isShort
	p.NumOfTrades = a.numOfTrades
	p.OpenedAt = a.openedAt
	if p.OutstandingVolume == 0 {
		closedAt := a.lastExec
		if closedAt.IsZero() {
			// Closing timestamp no longer recoverable after a reversal;
			// fall back to the leg's opening time.
			closedAt = a.openedAt
		}
		p.ClosedAt = &closedAt
	} else {
		p.ClosedAt = nil
	}
	return p
}
