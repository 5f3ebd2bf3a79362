package scheduler

import (
	"context"
	"fmt"

	"github.com/SeanFuture9999/stock-game1/internal/modules/alerts"
	"github.com/SeanFuture9999/stock-game1/internal/modules/institutional"
	"github.com/SeanFuture9999/stock-game1/internal/modules/quotes"
)

// QuoteRefreshJob refreshes price snapshots for all active symbols
type QuoteRefreshJob struct {
	Store   *quotes.Store
	Symbols quotes.SymbolSource
}

// Name implements Job
func (j *QuoteRefreshJob) Name() string { return "quote_refresh" }

// Run implements Job
func (j *QuoteRefreshJob) Run(ctx context.Context) error {
	symbols, err := j.Symbols.ActiveSymbols()
	if err != nil {
		return fmt.Errorf("failed to collect active symbols: %w", err)
	}
	return j.Store.Refresh(ctx, symbols)
}

// ChipSyncJob pulls the day's institutional and margin data after the close
type ChipSyncJob struct {
	Service *institutional.Service
}

// Name implements Job
func (j *ChipSyncJob) Name() string { return "chip_sync" }

// Run implements Job
func (j *ChipSyncJob) Run(ctx context.Context) error {
	return j.Service.Sync(ctx, "")
}

// AlertCheckJob evaluates armed price alerts against current snapshots
type AlertCheckJob struct {
	Service *alerts.Service
}

// Name implements Job
func (j *AlertCheckJob) Name() string { return "alert_check" }

// Run implements Job
func (j *AlertCheckJob) Run(ctx context.Context) error {
	_, err := j.Service.CheckAll()
	return err
}
