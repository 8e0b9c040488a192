// Package app wires the position accounting engine to the storage
// collaborator: every journal operation is validated up front, then executed
// as one atomic read-modify-write transaction.
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tradejournal/internal/domain"
	"tradejournal/internal/ports"
	"tradejournal/internal/position"
)

// JournalService orchestrates trade lifecycle operations around the
// position aggregator.
type JournalService struct {
	logger   ports.Logger
	repo     ports.Repository
	validate *validator.Validate
}

// NewJournalService creates a new application service instance.
func NewJournalService(repo ports.Repository, logger ports.Logger) (*JournalService, error) {
	if repo == nil || logger == nil {
		return nil, fmt.Errorf("missing required dependencies for JournalService")
	}
	return &JournalService{
		logger:   logger,
		repo:     repo,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}, nil
}

// normalizeTrade applies caller-side normalization before validation:
// tickers are stored upper-case so key lookups are case-insensitive.
func (s *JournalService) normalizeTrade(t *domain.Trade) {
	t.Ticker = strings.ToUpper(strings.TrimSpace(t.Ticker))
}

func (s *JournalService) validateTrade(t *domain.Trade) error {
	if err := s.validate.Struct(t); err != nil {
		return fmt.Errorf("%w: %v", ports.ErrValidation, err)
	}
	if err := t.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ports.ErrValidation, err)
	}
	return nil
}

// InsertTrade persists a new trade and folds it into the open position for
// its (owner, ticker, platform, region) tuple, creating the position when
// none exists. The trade row, the position upsert, and the link between
// them commit atomically.
func (s *JournalService) InsertTrade(ctx context.Context, trade *domain.Trade) (*domain.Trade, error) {
	s.normalizeTrade(trade)
	if err := s.validateTrade(trade); err != nil {
		return nil, err
	}

	err := s.repo.Transact(ctx, func(ctx context.Context, r ports.Repository) error {
		tradeID, err := r.CreateTrade(ctx, trade)
		if err != nil {
			return err
		}

		existing, err := r.FindOpenPositionByKey(ctx, trade.Key())
		if err != nil {
			return err
		}
		updated, err := position.ApplyTrades(existing, []*domain.Trade{trade})
		if err != nil {
			return err
		}

		if existing == nil {
			if _, err := r.CreatePosition(ctx, updated); err != nil {
				return err
			}
		} else if err := r.UpdatePosition(ctx, updated); err != nil {
			return err
		}
		if err := r.LinkTradesToPosition(ctx, []int64{tradeID}, updated.ID); err != nil {
			return err
		}
		trade.PositionID = &updated.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "Trade inserted", map[string]interface{}{
		"tradeID":    trade.ID,
		"ticker":     trade.Ticker,
		"side":       trade.Side,
		"volume":     trade.Volume,
		"positionID": *trade.PositionID,
	})
	return trade, nil
}

// DeleteTrade removes a single trade and reverses its contribution from the
// owning position, deleting the position when its last trade is gone.
func (s *JournalService) DeleteTrade(ctx context.Context, id int64, owner string) (*domain.Trade, error) {
	deleted, err := s.DeleteTradesBatch(ctx, []int64{id}, owner)
	if err != nil {
		return nil, err
	}
	return deleted[0], nil
}

// DeleteTradesBatch removes trades and reconciles the affected positions.
// All deletions belonging to one position are folded in a single reversal
// pass so intermediate aggregate states are never persisted.
func (s *JournalService) DeleteTradesBatch(ctx context.Context, ids []int64, owner string) ([]*domain.Trade, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no trade ids given", ports.ErrValidation)
	}
	opID := uuid.NewString()

	var deleted []*domain.Trade
	err := s.repo.Transact(ctx, func(ctx context.Context, r ports.Repository) error {
		deleted = deleted[:0]
		byPosition := make(map[int64][]*domain.Trade)
		for _, id := range ids {
			trade, err := r.DeleteTrade(ctx, id, owner)
			if err != nil {
				return err
			}
			deleted = append(deleted, trade)
			if trade.PositionID != nil {
				byPosition[*trade.PositionID] = append(byPosition[*trade.PositionID], trade)
			}
		}

		for positionID, trades := range byPosition {
			pos, err := r.FindPositionByID(ctx, positionID, owner)
			if err != nil {
				return err
			}
			if pos == nil {
				return fmt.Errorf("%w: deleted trades reference missing position %d", ports.ErrInconsistentAggregate, positionID)
			}

			remaining, err := r.CountTradesByPosition(ctx, positionID)
			if err != nil {
				return err
			}
			reversed, err := position.ReverseTrades(pos, trades)
			if err != nil {
				return err
			}
			if reversed == nil || remaining == 0 {
				if err := r.DeletePosition(ctx, positionID); err != nil {
					return err
				}
				continue
			}
			// A reversal that drains the leg cannot recover the closing
			// fill's time from the snapshot; take it from the trades still
			// referencing the position.
			if reversed.ClosedAt != nil {
				rest, err := r.FindTradesByPosition(ctx, positionID)
				if err != nil {
					return err
				}
				if len(rest) > 0 {
					latest := rest[len(rest)-1].ExecutedAt
					reversed.ClosedAt = &latest
				}
			}
			if err := r.UpdatePosition(ctx, reversed); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "Trades deleted", map[string]interface{}{
		"opID":  opID,
		"count": len(deleted),
	})
	return deleted, nil
}

// UpdatePositionTradesBatch applies field-level edits to trades already tied
// to one position, then recomputes the position from its complete trade set.
// The full replay is the authoritative path: it is exact even across flips,
// unlike incremental reversal.
func (s *JournalService) UpdatePositionTradesBatch(ctx context.Context, positionID int64, trades []*domain.Trade, owner string) error {
	if len(trades) == 0 {
		return fmt.Errorf("%w: no trades given", ports.ErrValidation)
	}
	for _, t := range trades {
		if t.ID == 0 {
			return fmt.Errorf("%w: trade update requires an id", ports.ErrValidation)
		}
		t.CreatedBy = owner
		s.normalizeTrade(t)
		if err := s.validateTrade(t); err != nil {
			return err
		}
	}
	opID := uuid.NewString()

	err := s.repo.Transact(ctx, func(ctx context.Context, r ports.Repository) error {
		pos, err := r.FindPositionByID(ctx, positionID, owner)
		if err != nil {
			return err
		}
		if pos == nil {
			return fmt.Errorf("position ID %d: %w", positionID, ports.ErrNotFound)
		}

		for _, t := range trades {
			current, err := r.FindTradeByID(ctx, t.ID, owner)
			if err != nil {
				return err
			}
			if current == nil {
				return fmt.Errorf("trade ID %d: %w", t.ID, ports.ErrNotFound)
			}
			if current.PositionID == nil || *current.PositionID != positionID {
				return fmt.Errorf("%w: trade %d does not belong to position %d", ports.ErrValidation, t.ID, positionID)
			}
			if err := r.UpdateTrade(ctx, t); err != nil {
				return err
			}
		}

		return s.recomputePosition(ctx, r, pos)
	})
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "Position trades updated", map[string]interface{}{
		"opID":       opID,
		"positionID": positionID,
		"count":      len(trades),
	})
	return nil
}

// AssignTradesParams are the inputs to AssignTradesToPosition.
type AssignTradesParams struct {
	Owner      string
	PositionID *int64 // nil creates a new position from the trades
	TradeIDs   []int64
	IsShort    *bool // optional direction override for a new position
}

// AssignTradesToPosition links unassigned trades to a position. Without a
// target position one is created from a full recompute of the trades; with
// one, the target is recomputed from its complete trade set after inclusion.
func (s *JournalService) AssignTradesToPosition(ctx context.Context, params AssignTradesParams) error {
	if len(params.TradeIDs) == 0 {
		return fmt.Errorf("%w: no trade ids given", ports.ErrValidation)
	}
	opID := uuid.NewString()

	err := s.repo.Transact(ctx, func(ctx context.Context, r ports.Repository) error {
		trades, err := r.FindTradesByIDs(ctx, params.TradeIDs, params.Owner)
		if err != nil {
			return err
		}
		if len(trades) != len(params.TradeIDs) {
			return fmt.Errorf("%w: %d of %d trades found", ports.ErrNotFound, len(trades), len(params.TradeIDs))
		}
		for _, t := range trades {
			if t.PositionID != nil && (params.PositionID == nil || *t.PositionID != *params.PositionID) {
				return fmt.Errorf("%w: trade %d is already assigned to position %d", ports.ErrValidation, t.ID, *t.PositionID)
			}
		}

		if params.PositionID == nil {
			var opts []position.Option
			if params.IsShort != nil {
				opts = append(opts, position.WithShort(*params.IsShort))
			}
			newPos, err := position.ApplyTrades(nil, trades, opts...)
			if err != nil {
				return err
			}
			posID, err := r.CreatePosition(ctx, newPos)
			if err != nil {
				return err
			}
			return r.LinkTradesToPosition(ctx, params.TradeIDs, posID)
		}

		pos, err := r.FindPositionByID(ctx, *params.PositionID, params.Owner)
		if err != nil {
			return err
		}
		if pos == nil {
			return fmt.Errorf("position ID %d: %w", *params.PositionID, ports.ErrNotFound)
		}
		if err := r.LinkTradesToPosition(ctx, params.TradeIDs, pos.ID); err != nil {
			return err
		}
		return s.recomputePosition(ctx, r, pos)
	})
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "Trades assigned to position", map[string]interface{}{
		"opID":  opID,
		"count": len(params.TradeIDs),
	})
	return nil
}

// recomputePosition replays the position's full current trade set from
// scratch and stores the result, preserving identity and user annotations.
// The replay re-derives the direction from the earliest trade, so edits
// that change the opening side flip the stored direction too.
func (s *JournalService) recomputePosition(ctx context.Context, r ports.Repository, pos *domain.Position) error {
	all, err := r.FindTradesByPosition(ctx, pos.ID)
	if err != nil {
		return err
	}
	if len(all) == 0 {
		return fmt.Errorf("%w: position %d has no trades to recompute from", ports.ErrEmptyTradeSet, pos.ID)
	}

	recomputed, err := position.ApplyTrades(nil, all)
	if err != nil {
		return err
	}

	// Carry identity and annotations from the stored row; only the
	// aggregate fields come from the replay.
	recomputed.ID = pos.ID
	recomputed.CreatedBy = pos.CreatedBy
	recomputed.CreatedAt = pos.CreatedAt
	recomputed.ReviewedAt = pos.ReviewedAt
	recomputed.StopLossPrice = pos.StopLossPrice
	recomputed.ProfitTargetPrice = pos.ProfitTargetPrice
	recomputed.Notes = pos.Notes
	recomputed.Journal = pos.Journal
	return r.UpdatePosition(ctx, recomputed)
}

// MarkPositionReviewed stamps the position with a review time.
func (s *JournalService) MarkPositionReviewed(ctx context.Context, positionID int64, owner string) (*domain.Position, error) {
	var reviewed *domain.Position
	err := s.repo.Transact(ctx, func(ctx context.Context, r ports.Repository) error {
		pos, err := r.FindPositionByID(ctx, positionID, owner)
		if err != nil {
			return err
		}
		if pos == nil {
			return fmt.Errorf("position ID %d: %w", positionID, ports.ErrNotFound)
		}
		now := time.Now().UTC()
		pos.ReviewedAt = &now
		if err := r.UpdatePosition(ctx, pos); err != nil {
			return err
		}
		reviewed = pos
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reviewed, nil
}

// UpdatePositionJournal replaces the free-form journal text of a position.
func (s *JournalService) UpdatePositionJournal(ctx context.Context, positionID int64, owner, journal string) error {
	return s.updateAnnotation(ctx, positionID, owner, func(pos *domain.Position) {
		pos.Journal = journal
	})
}

// UpdatePositionNotes replaces the notes of a position.
func (s *JournalService) UpdatePositionNotes(ctx context.Context, positionID int64, owner, notes string) error {
	return s.updateAnnotation(ctx, positionID, owner, func(pos *domain.Position) {
		pos.Notes = notes
	})
}

func (s *JournalService) updateAnnotation(ctx context.Context, positionID int64, owner string, apply func(*domain.Position)) error {
	return s.repo.Transact(ctx, func(ctx context.Context, r ports.Repository) error {
		pos, err := r.FindPositionByID(ctx, positionID, owner)
		if err != nil {
			return err
		}
		if pos == nil {
			return fmt.Errorf("position ID %d: %w", positionID, ports.ErrNotFound)
		}
		apply(pos)
		return r.UpdatePosition(ctx, pos)
	})
}

// Performance summarizes a closed position's outcome.
type Performance struct {
	Duration   time.Duration
	ProfitLoss decimal.Decimal
	// ROI is realized P&L over entry cost, as a percentage.
	ROI decimal.Decimal
}

// PositionPerformance reports duration, realized P&L, and ROI for a closed
// position. Returns nil for open positions.
func (s *JournalService) PositionPerformance(ctx context.Context, positionID int64, owner string) (*Performance, error) {
	pos, err := s.repo.FindPositionByID(ctx, positionID, owner)
	if err != nil {
		return nil, err
	}
	if pos == nil {
		return nil, fmt.Errorf("position ID %d: %w", positionID, ports.ErrNotFound)
	}
	if pos.ClosedAt == nil || !pos.GrossProfitLoss.Valid {
		return nil, nil
	}

	entryCost := pos.AverageEntryPrice.Mul(decimal.NewFromInt(pos.TotalVolume))
	roi := decimal.Zero
	if !entryCost.IsZero() {
		roi = pos.GrossProfitLoss.Decimal.Div(entryCost).Mul(decimal.NewFromInt(100))
	}
	return &Performance{
		Duration:   pos.ClosedAt.Sub(pos.OpenedAt),
		ProfitLoss: pos.GrossProfitLoss.Decimal,
		ROI:        roi,
	}, nil
}

// ClosedPositions returns the owner's positions closed within [from, to].
func (s *JournalService) ClosedPositions(ctx context.Context, owner string, from, to time.Time) ([]*domain.Position, error) {
	return s.repo.FindClosedPositions(ctx, owner, from, to)
}

// Positions returns all of the owner's positions, newest first.
func (s *JournalService) Positions(ctx context.Context, owner string) ([]*domain.Position, error) {
	return s.repo.FindPositionsByOwner(ctx, owner)
}
