package ports

import (
	"context"
	"time"

	"tradejournal/internal/domain"
)

// TradeRepository defines the interface for storing and retrieving trade
// executions.
type TradeRepository interface {
	// CreateTrade saves a new trade and returns its assigned ID.
	CreateTrade(ctx context.Context, trade *domain.Trade) (int64, error)
	// UpdateTrade modifies an existing trade's editable fields
	// (price, fees, volume, side, executedAt).
	UpdateTrade(ctx context.Context, trade *domain.Trade) error
	// DeleteTrade removes a trade scoped to its owner and returns the
	// deleted row. Returns ErrNotFound if no such trade exists.
	DeleteTrade(ctx context.Context, id int64, owner string) (*domain.Trade, error)
	// FindTradeByID retrieves a trade by ID scoped to its owner.
	// Returns nil, nil if not found.
	FindTradeByID(ctx context.Context, id int64, owner string) (*domain.Trade, error)
	// FindTradesByIDs retrieves the trades matching the given IDs for one
	// owner. Missing IDs are simply absent from the result.
	FindTradesByIDs(ctx context.Context, ids []int64, owner string) ([]*domain.Trade, error)
	// FindTradesByPosition retrieves all trades linked to a position,
	// ordered by execution time ascending.
	FindTradesByPosition(ctx context.Context, positionID int64) ([]*domain.Trade, error)
	// CountTradesByPosition counts the trades currently referencing a position.
	CountTradesByPosition(ctx context.Context, positionID int64) (int, error)
	// LinkTradesToPosition sets the position reference on the given trades.
	LinkTradesToPosition(ctx context.Context, ids []int64, positionID int64) error
}

// PositionRepository defines the interface for storing and retrieving
// position aggregates.
type PositionRepository interface {
	// CreatePosition saves a new position and returns its assigned ID.
	CreatePosition(ctx context.Context, pos *domain.Position) (int64, error)
	// UpdatePosition modifies an existing position.
	UpdatePosition(ctx context.Context, pos *domain.Position) error
	// DeletePosition removes a position row.
	DeletePosition(ctx context.Context, id int64) error
	// FindPositionByID retrieves a position by ID scoped to its owner.
	// Returns nil, nil if not found.
	FindPositionByID(ctx context.Context, id int64, owner string) (*domain.Position, error)
	// FindOpenPositionByKey retrieves the open position for a grouping
	// tuple, if any. Returns nil, nil if no open position exists.
	FindOpenPositionByKey(ctx context.Context, key domain.PositionKey) (*domain.Position, error)
	// FindPositionsByOwner retrieves all positions for an owner, ordered by
	// openedAt descending.
	FindPositionsByOwner(ctx context.Context, owner string) ([]*domain.Position, error)
	// FindClosedPositions retrieves positions closed within [from, to].
	FindClosedPositions(ctx context.Context, owner string, from, to time.Time) ([]*domain.Position, error)
}

// Repository bundles both entity repositories with transactional execution.
// Trade and position writes belonging to one journal operation must be
// composed inside a single Transact call.
type Repository interface {
	TradeRepository
	PositionRepository

	// Transact runs fn inside a single atomic transaction. The Repository
	// passed to fn is bound to that transaction; any error returned by fn
	// rolls the whole transaction back.
	Transact(ctx context.Context, fn func(ctx context.Context, r Repository) error) error
}
