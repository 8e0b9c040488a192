// Package sqlite implements the journal's storage collaborator on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"

	"tradejournal/internal/domain"
	"tradejournal/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// runner abstracts *sql.DB and *sql.Tx so every query method works both
// standalone and inside a Transact closure.
type runner interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Repository implements ports.Repository using SQLite.
type Repository struct {
	db     *sql.DB
	q      runner
	logger ports.Logger
	sq     squirrel.StatementBuilderType
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/trade_journal.db"
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// WAL mode for better concurrency; the busy timeout serializes
	// concurrent writers to the same position key instead of failing fast.
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("%w: failed to open database at '%s': %v", ports.ErrDBConnection, dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("%w: failed to ping database at '%s': %v", ports.ErrDBConnection, dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	db.SetMaxOpenConns(1) // SQLite handles concurrency internally, but the Go driver benefits from limiting connections
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	repo := &Repository{
		db:     db,
		q:      db,
		logger: cfg.Logger,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}

	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "Database schema initialized/verified", map[string]interface{}{"path": dbPath})

	return repo, nil
}

// initializeSchema creates tables if they don't exist.
// NOTE: This is a basic approach. A proper migration tool is recommended for production.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS trade_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ticker TEXT NOT NULL,
		region TEXT NOT NULL,
		currency TEXT NOT NULL,
		platform TEXT NOT NULL,
		price TEXT NOT NULL,
		fees TEXT NOT NULL DEFAULT '0',
		volume INTEGER NOT NULL,
		trade_side TEXT NOT NULL,
		executed_at TIMESTAMP NOT NULL,
		position_id INTEGER DEFAULT NULL,
		created_by TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP DEFAULT NULL
	);

	CREATE TABLE IF NOT EXISTS positions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ticker TEXT NOT NULL,
		region TEXT NOT NULL,
		currency TEXT NOT NULL,
		platform TEXT NOT NULL,
		total_volume INTEGER NOT NULL,
		outstanding_volume INTEGER NOT NULL,
		average_entry_price TEXT NOT NULL,
		average_exit_price TEXT DEFAULT NULL,
		gross_profit_loss TEXT DEFAULT NULL,
		total_fees TEXT NOT NULL DEFAULT '0',
		is_short INTEGER NOT NULL,
		num_of_trades INTEGER NOT NULL,
		opened_at TIMESTAMP NOT NULL,
		closed_at TIMESTAMP DEFAULT NULL,
		reviewed_at TIMESTAMP DEFAULT NULL,
		stop_loss_price TEXT DEFAULT NULL,
		profit_target_price TEXT DEFAULT NULL,
		notes TEXT NOT NULL DEFAULT '',
		journal TEXT NOT NULL DEFAULT '',
		created_by TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP DEFAULT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_trade_history_position ON trade_history (position_id);
	CREATE INDEX IF NOT EXISTS idx_trade_history_key ON trade_history (created_by, ticker, platform, region);
	CREATE INDEX IF NOT EXISTS idx_positions_key ON positions (created_by, ticker, platform, region);
	CREATE INDEX IF NOT EXISTS idx_positions_closed_at ON positions (created_by, closed_at);
	`
	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// Transact runs fn inside a single transaction. Nested calls reuse the
// enclosing transaction.
func (r *Repository) Transact(ctx context.Context, fn func(ctx context.Context, repo ports.Repository) error) error {
	if _, inTx := r.q.(*sql.Tx); inTx {
		return fn(ctx, r)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", ports.ErrTxFailed, err)
	}
	txRepo := &Repository{db: r.db, q: tx, logger: r.logger, sq: r.sq}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, txRepo); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			r.logger.Error(ctx, rbErr, "Transaction rollback failed")
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", ports.ErrTxFailed, err)
	}
	return nil
}

// --- TradeRepository Implementation ---

var tradeColumns = []string{
	"id", "ticker", "region", "currency", "platform", "price", "fees",
	"volume", "trade_side", "executed_at", "position_id", "created_by",
	"created_at", "updated_at",
}

// CreateTrade saves a new trade and returns its assigned ID.
func (r *Repository) CreateTrade(ctx context.Context, trade *domain.Trade) (int64, error) {
	now := time.Now().UTC()
	if trade.CreatedAt.IsZero() {
		trade.CreatedAt = now
	}
	trade.UpdatedAt = now

	query, args, err := r.sq.Insert("trade_history").
		Columns("ticker", "region", "currency", "platform", "price", "fees",
			"volume", "trade_side", "executed_at", "position_id", "created_by",
			"created_at", "updated_at").
		Values(trade.Ticker, trade.Region, trade.Currency, trade.Platform,
			trade.Price.String(), trade.Fees.String(), trade.Volume, trade.Side,
			trade.ExecutedAt, nullInt64(trade.PositionID), trade.CreatedBy,
			trade.CreatedAt, trade.UpdatedAt).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build trade insert: %w", err)
	}

	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: insert trade for ticker %s: %v", ports.ErrQueryFailed, trade.Ticker, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for trade %s: %w", trade.Ticker, err)
	}
	trade.ID = id
	r.logger.Debug(ctx, "Trade created", map[string]interface{}{"tradeID": id, "ticker": trade.Ticker})
	return id, nil
}

// UpdateTrade modifies the editable fields of an existing trade.
func (r *Repository) UpdateTrade(ctx context.Context, trade *domain.Trade) error {
	trade.UpdatedAt = time.Now().UTC()
	query, args, err := r.sq.Update("trade_history").
		Set("price", trade.Price.String()).
		Set("fees", trade.Fees.String()).
		Set("volume", trade.Volume).
		Set("trade_side", trade.Side).
		Set("executed_at", trade.ExecutedAt).
		Set("updated_at", trade.UpdatedAt).
		Where(squirrel.Eq{"id": trade.ID, "created_by": trade.CreatedBy}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build trade update: %w", err)
	}

	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: update trade ID %d: %v", ports.ErrQueryFailed, trade.ID, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for trade ID %d: %w", trade.ID, err)
	}
	if rows == 0 {
		return fmt.Errorf("trade ID %d not found for update: %w", trade.ID, ports.ErrNotFound)
	}
	return nil
}

// DeleteTrade removes a trade scoped to its owner and returns the deleted row.
func (r *Repository) DeleteTrade(ctx context.Context, id int64, owner string) (*domain.Trade, error) {
	trade, err := r.FindTradeByID(ctx, id, owner)
	if err != nil {
		return nil, err
	}
	if trade == nil {
		return nil, fmt.Errorf("trade ID %d: %w", id, ports.ErrNotFound)
	}

	query, args, err := r.sq.Delete("trade_history").
		Where(squirrel.Eq{"id": id, "created_by": owner}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build trade delete: %w", err)
	}
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("%w: delete trade ID %d: %v", ports.ErrQueryFailed, id, err)
	}
	r.logger.Debug(ctx, "Trade deleted", map[string]interface{}{"tradeID": id})
	return trade, nil
}

// FindTradeByID retrieves a trade by ID scoped to its owner.
func (r *Repository) FindTradeByID(ctx context.Context, id int64, owner string) (*domain.Trade, error) {
	query, args, err := r.sq.Select(tradeColumns...).
		From("trade_history").
		Where(squirrel.Eq{"id": id, "created_by": owner}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build trade select: %w", err)
	}

	trade, err := scanTrade(r.q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: query trade ID %d: %v", ports.ErrQueryFailed, id, err)
	}
	return trade, nil
}

// FindTradesByIDs retrieves the trades matching the given IDs for one owner.
func (r *Repository) FindTradesByIDs(ctx context.Context, ids []int64, owner string) ([]*domain.Trade, error) {
	if len(ids) == 0 {
		return []*domain.Trade{}, nil
	}
	query, args, err := r.sq.Select(tradeColumns...).
		From("trade_history").
		Where(squirrel.Eq{"id": ids, "created_by": owner}).
		OrderBy("executed_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build trade select: %w", err)
	}
	return r.queryTrades(ctx, query, args...)
}

// FindTradesByPosition retrieves all trades linked to a position, ordered by
// execution time ascending.
func (r *Repository) FindTradesByPosition(ctx context.Context, positionID int64) ([]*domain.Trade, error) {
	query, args, err := r.sq.Select(tradeColumns...).
		From("trade_history").
		Where(squirrel.Eq{"position_id": positionID}).
		OrderBy("executed_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build trade select: %w", err)
	}
	return r.queryTrades(ctx, query, args...)
}

// CountTradesByPosition counts the trades currently referencing a position.
func (r *Repository) CountTradesByPosition(ctx context.Context, positionID int64) (int, error) {
	query, args, err := r.sq.Select("COUNT(*)").
		From("trade_history").
		Where(squirrel.Eq{"position_id": positionID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build trade count: %w", err)
	}
	var count int
	if err := r.q.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: count trades for position %d: %v", ports.ErrQueryFailed, positionID, err)
	}
	return count, nil
}

// LinkTradesToPosition sets the position reference on the given trades.
func (r *Repository) LinkTradesToPosition(ctx context.Context, ids []int64, positionID int64) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := r.sq.Update("trade_history").
		Set("position_id", positionID).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build trade link update: %w", err)
	}
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: link trades to position %d: %v", ports.ErrQueryFailed, positionID, err)
	}
	return nil
}

func (r *Repository) queryTrades(ctx context.Context, query string, args ...interface{}) ([]*domain.Trade, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: query trades: %v", ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	trades := make([]*domain.Trade, 0)
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade row: %w", err)
		}
		trades = append(trades, trade)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade rows: %w", err)
	}
	return trades, nil
}

// --- PositionRepository Implementation ---

var positionColumns = []string{
	"id", "ticker", "region", "currency", "platform", "total_volume",
	"outstanding_volume", "average_entry_price", "average_exit_price",
	"gross_profit_loss", "total_fees", "is_short", "num_of_trades",
	"opened_at", "closed_at", "reviewed_at", "stop_loss_price",
	"profit_target_price", "notes", "journal", "created_by", "created_at",
	"updated_at",
}

// CreatePosition saves a new position and returns its assigned ID.
func (r *Repository) CreatePosition(ctx context.Context, pos *domain.Position) (int64, error) {
	now := time.Now().UTC()
	if pos.CreatedAt.IsZero() {
		pos.CreatedAt = now
	}
	pos.UpdatedAt = now

	query, args, err := r.sq.Insert("positions").
		Columns(positionColumns[1:]...).
		Values(pos.Ticker, pos.Region, pos.Currency, pos.Platform,
			pos.TotalVolume, pos.OutstandingVolume, pos.AverageEntryPrice.String(),
			nullDecimal(pos.AverageExitPrice), nullDecimal(pos.GrossProfitLoss),
			pos.TotalFees.String(), pos.IsShort, pos.NumOfTrades, pos.OpenedAt,
			nullTime(pos.ClosedAt), nullTime(pos.ReviewedAt),
			nullDecimal(pos.StopLossPrice), nullDecimal(pos.ProfitTargetPrice),
			pos.Notes, pos.Journal, pos.CreatedBy, pos.CreatedAt, pos.UpdatedAt).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build position insert: %w", err)
	}

	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: insert position for ticker %s: %v", ports.ErrQueryFailed, pos.Ticker, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for position %s: %w", pos.Ticker, err)
	}
	pos.ID = id
	r.logger.Debug(ctx, "Position created", map[string]interface{}{"positionID": id, "ticker": pos.Ticker})
	return id, nil
}

// UpdatePosition modifies an existing position.
func (r *Repository) UpdatePosition(ctx context.Context, pos *domain.Position) error {
	pos.UpdatedAt = time.Now().UTC()
	query, args, err := r.sq.Update("positions").
		Set("total_volume", pos.TotalVolume).
		Set("outstanding_volume", pos.OutstandingVolume).
		Set("average_entry_price", pos.AverageEntryPrice.String()).
		Set("average_exit_price", nullDecimal(pos.AverageExitPrice)).
		Set("gross_profit_loss", nullDecimal(pos.GrossProfitLoss)).
		Set("total_fees", pos.TotalFees.String()).
		Set("is_short", pos.IsShort).
		Set("num_of_trades", pos.NumOfTrades).
		Set("opened_at", pos.OpenedAt).
		Set("closed_at", nullTime(pos.ClosedAt)).
		Set("reviewed_at", nullTime(pos.ReviewedAt)).
		Set("stop_loss_price", nullDecimal(pos.StopLossPrice)).
		Set("profit_target_price", nullDecimal(pos.ProfitTargetPrice)).
		Set("notes", pos.Notes).
		Set("journal", pos.Journal).
		Set("updated_at", pos.UpdatedAt).
		Where(squirrel.Eq{"id": pos.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build position update: %w", err)
	}

	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: update position ID %d: %v", ports.ErrQueryFailed, pos.ID, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for position ID %d: %w", pos.ID, err)
	}
	if rows == 0 {
		return fmt.Errorf("position ID %d not found for update: %w", pos.ID, ports.ErrNotFound)
	}
	r.logger.Debug(ctx, "Position updated", map[string]interface{}{"positionID": pos.ID, "ticker": pos.Ticker})
	return nil
}

// DeletePosition removes a position row.
func (r *Repository) DeletePosition(ctx context.Context, id int64) error {
	query, args, err := r.sq.Delete("positions").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build position delete: %w", err)
	}
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: delete position ID %d: %v", ports.ErrQueryFailed, id, err)
	}
	r.logger.Debug(ctx, "Position deleted", map[string]interface{}{"positionID": id})
	return nil
}

// FindPositionByID retrieves a position by ID scoped to its owner.
func (r *Repository) FindPositionByID(ctx context.Context, id int64, owner string) (*domain.Position, error) {
	query, args, err := r.sq.Select(positionColumns...).
		From("positions").
		Where(squirrel.Eq{"id": id, "created_by": owner}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build position select: %w", err)
	}
	pos, err := scanPosition(r.q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: query position ID %d: %v", ports.ErrQueryFailed, id, err)
	}
	return pos, nil
}

// FindOpenPositionByKey retrieves the open position for a grouping tuple.
// Closed positions stay behind as historical records; a new trade for the
// same tuple starts a fresh position.
func (r *Repository) FindOpenPositionByKey(ctx context.Context, key domain.PositionKey) (*domain.Position, error) {
	query, args, err := r.sq.Select(positionColumns...).
		From("positions").
		Where(squirrel.Eq{
			"created_by": key.CreatedBy,
			"ticker":     key.Ticker,
			"platform":   key.Platform,
			"region":     key.Region,
		}).
		Where("closed_at IS NULL").
		OrderBy("opened_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build position select: %w", err)
	}
	pos, err := scanPosition(r.q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: query open position for %s/%s/%s: %v", ports.ErrQueryFailed, key.Ticker, key.Platform, key.Region, err)
	}
	return pos, nil
}

// FindPositionsByOwner retrieves all positions for an owner, newest first.
func (r *Repository) FindPositionsByOwner(ctx context.Context, owner string) ([]*domain.Position, error) {
	query, args, err := r.sq.Select(positionColumns...).
		From("positions").
		Where(squirrel.Eq{"created_by": owner}).
		OrderBy("opened_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build position select: %w", err)
	}
	return r.queryPositions(ctx, query, args...)
}

// FindClosedPositions retrieves positions closed within [from, to].
func (r *Repository) FindClosedPositions(ctx context.Context, owner string, from, to time.Time) ([]*domain.Position, error) {
	query, args, err := r.sq.Select(positionColumns...).
		From("positions").
		Where(squirrel.Eq{"created_by": owner}).
		Where("closed_at IS NOT NULL").
		Where(squirrel.GtOrEq{"closed_at": from}).
		Where(squirrel.LtOrEq{"closed_at": to}).
		OrderBy("closed_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build position select: %w", err)
	}
	return r.queryPositions(ctx, query, args...)
}

func (r *Repository) queryPositions(ctx context.Context, query string, args ...interface{}) ([]*domain.Position, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: query positions: %v", ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	positions := make([]*domain.Position, 0)
	for rows.Next() {
		pos, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position row: %w", err)
		}
		positions = append(positions, pos)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating position rows: %w", err)
	}
	return positions, nil
}

// --- Helper Scan Functions ---

// scanner defines an interface compatible with *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanTrade scans a row into a domain.Trade struct.
func scanTrade(s scanner) (*domain.Trade, error) {
	t := &domain.Trade{}
	var (
		price, fees string
		positionID  sql.NullInt64
		updatedAt   sql.NullTime
	)
	err := s.Scan(
		&t.ID, &t.Ticker, &t.Region, &t.Currency, &t.Platform, &price, &fees,
		&t.Volume, &t.Side, &t.ExecutedAt, &positionID, &t.CreatedBy,
		&t.CreatedAt, &updatedAt)
	if err != nil {
		return nil, err // Handle sql.ErrNoRows in the caller
	}
	if t.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("invalid stored price %q: %w", price, err)
	}
	if t.Fees, err = decimal.NewFromString(fees); err != nil {
		return nil, fmt.Errorf("invalid stored fees %q: %w", fees, err)
	}
	if positionID.Valid {
		t.PositionID = &positionID.Int64
	}
	if updatedAt.Valid {
		t.UpdatedAt = updatedAt.Time
	}
	return t, nil
}

// scanPosition scans a row into a domain.Position struct.
func scanPosition(s scanner) (*domain.Position, error) {
	p := &domain.Position{}
	var (
		avgEntry, totalFees                      string
		avgExit, grossPL, stopLoss, profitTarget sql.NullString
		closedAt, reviewedAt, updatedAt          sql.NullTime
	)
	err := s.Scan(
		&p.ID, &p.Ticker, &p.Region, &p.Currency, &p.Platform, &p.TotalVolume,
		&p.OutstandingVolume, &avgEntry, &avgExit, &grossPL, &totalFees,
		&p.IsShort, &p.NumOfTrades, &p.OpenedAt, &closedAt, &reviewedAt,
		&stopLoss, &profitTarget, &p.Notes, &p.Journal, &p.CreatedBy,
		&p.CreatedAt, &updatedAt)
	if err != nil {
		return nil, err // Handle sql.ErrNoRows in the caller
	}
	if p.AverageEntryPrice, err = decimal.NewFromString(avgEntry); err != nil {
		return nil, fmt.Errorf("invalid stored average entry price %q: %w", avgEntry, err)
	}
	if p.TotalFees, err = decimal.NewFromString(totalFees); err != nil {
		return nil, fmt.Errorf("invalid stored total fees %q: %w", totalFees, err)
	}
	if p.AverageExitPrice, err = scanNullDecimal(avgExit); err != nil {
		return nil, err
	}
	if p.GrossProfitLoss, err = scanNullDecimal(grossPL); err != nil {
		return nil, err
	}
	if p.StopLossPrice, err = scanNullDecimal(stopLoss); err != nil {
		return nil, err
	}
	if p.ProfitTargetPrice, err = scanNullDecimal(profitTarget); err != nil {
		return nil, err
	}
	if closedAt.Valid {
		t := closedAt.Time
		p.ClosedAt = &t
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time
		p.ReviewedAt = &t
	}
	if updatedAt.Valid {
		p.UpdatedAt = updatedAt.Time
	}
	return p, nil
}

func scanNullDecimal(ns sql.NullString) (decimal.NullDecimal, error) {
	if !ns.Valid {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(ns.String)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("invalid stored decimal %q: %w", ns.String, err)
	}
	return decimal.NewNullDecimal(d), nil
}

func nullDecimal(d decimal.NullDecimal) interface{} {
	if !d.Valid {
		return nil
	}
	return d.Decimal.String()
}

func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

func nullInt64(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
