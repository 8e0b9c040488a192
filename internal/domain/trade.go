package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Trade represents a single execution record (a fill). It is immutable once
// created except through the explicit edit and delete operations of the
// journal service.
type Trade struct {
	ID         int64
	Ticker     string    `validate:"required,max=15"`
	Region     Region    `validate:"required,oneof=US HK UK"`
	Currency   Currency  `validate:"required,oneof=USD HKD GBP"`
	Platform   Platform  `validate:"required,oneof=FUTU IBKR"`
	Price      decimal.Decimal
	Fees       decimal.Decimal
	Volume     int64     `validate:"required,gt=0"`
	Side       TradeSide `validate:"required,oneof=BUY SELL"`
	ExecutedAt time.Time `validate:"required"`
	PositionID *int64    // nil while the trade is unassigned
	CreatedBy  string    `validate:"required"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Key returns the position grouping tuple this trade belongs to.
func (t *Trade) Key() PositionKey {
	return PositionKey{
		CreatedBy: t.CreatedBy,
		Ticker:    t.Ticker,
		Platform:  t.Platform,
		Region:    t.Region,
	}
}

// Validate checks the monetary fields the struct tags cannot reach.
// Price must be strictly positive and fees non-negative; executedAt carries
// the economic event time and must be set.
func (t *Trade) Validate() error {
	if !t.Price.IsPositive() {
		return fmt.Errorf("trade price must be positive, got %s", t.Price)
	}
	if t.Fees.IsNegative() {
		return fmt.Errorf("trade fees cannot be negative, got %s", t.Fees)
	}
	if t.Volume <= 0 {
		return fmt.Errorf("trade volume must be positive, got %d", t.Volume)
	}
	if t.ExecutedAt.IsZero() {
		return fmt.Errorf("trade executedAt must be set")
	}
	return nil
}

// Cost returns price x volume, the notional value of the fill.
func (t *Trade) Cost() decimal.Decimal {
	return t.Price.Mul(decimal.NewFromInt(t.Volume))
}
