package main

import (
	"context"
	"log" // Use standard log only for initial fatal errors before logger is set up
	"time"

	"tradejournal/config"
	"tradejournal/internal/adapters/logger"
	"tradejournal/internal/adapters/sqlite"
	"tradejournal/internal/analytics"
	"tradejournal/internal/app"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	// 2. Initialize Logger
	appLogger, err := logger.New(logger.Config{Level: cfg.LogLevel, Development: cfg.LogDev})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()
	ctx := context.Background()
	appLogger.Info(ctx, "Logger initialized", map[string]interface{}{"level": cfg.LogLevel})

	// 3. Initialize Repository (Database Adapter)
	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath: cfg.DBPath,
		Logger: appLogger,
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize database repository")
		log.Fatalf("FATAL: Failed to initialize database repository: %v", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			appLogger.Error(ctx, err, "Error closing database repository")
		}
	}()

	// 4. Initialize Application Service
	journal, err := app.NewJournalService(repo, appLogger)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize journal service")
		log.Fatalf("FATAL: Failed to initialize journal service: %v", err)
	}

	// 5. Print a journal summary for the configured owner
	positions, err := journal.Positions(ctx, cfg.Owner)
	if err != nil {
		appLogger.Error(ctx, err, "Failed to load positions")
		log.Fatalf("FATAL: Failed to load positions: %v", err)
	}

	metrics := analytics.AnalyzePositions(positions)
	appLogger.Info(ctx, "Journal summary", map[string]interface{}{
		"owner":           cfg.Owner,
		"positions":       len(positions),
		"closedPositions": metrics.TotalPositions,
		"winRate":         metrics.WinRate,
		"totalProfit":     metrics.TotalProfit.String(),
		"totalFees":       metrics.TotalFees.String(),
		"avgHolding":      metrics.AverageHoldingPeriod.Round(time.Minute).String(),
	})
	for _, monthly := range metrics.GetMonthlyReturns() {
		appLogger.Info(ctx, "Monthly realized P&L", map[string]interface{}{
			"month":  monthly.Month.Format("2006-01"),
			"return": monthly.Return.String(),
		})
	}
}
