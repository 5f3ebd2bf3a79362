// Package main is the entry point for the stock dashboard server.
// It wires the trade ledger, position tracking, performance rollups and the
// market data collaborators, then serves the dashboard API over HTTP.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/SeanFuture9999/stock-game1/internal/config"
	"github.com/SeanFuture9999/stock-game1/internal/database"
	"github.com/SeanFuture9999/stock-game1/internal/events"
	"github.com/SeanFuture9999/stock-game1/internal/modules/alerts"
	alerthandlers "github.com/SeanFuture9999/stock-game1/internal/modules/alerts/handlers"
	"github.com/SeanFuture9999/stock-game1/internal/modules/diary"
	diaryhandlers "github.com/SeanFuture9999/stock-game1/internal/modules/diary/handlers"
	"github.com/SeanFuture9999/stock-game1/internal/modules/institutional"
	chiphandlers "github.com/SeanFuture9999/stock-game1/internal/modules/institutional/handlers"
	"github.com/SeanFuture9999/stock-game1/internal/modules/ledger"
	ledgerhandlers "github.com/SeanFuture9999/stock-game1/internal/modules/ledger/handlers"
	"github.com/SeanFuture9999/stock-game1/internal/modules/performance"
	performancehandlers "github.com/SeanFuture9999/stock-game1/internal/modules/performance/handlers"
	"github.com/SeanFuture9999/stock-game1/internal/modules/portfolio"
	portfoliohandlers "github.com/SeanFuture9999/stock-game1/internal/modules/portfolio/handlers"
	"github.com/SeanFuture9999/stock-game1/internal/modules/quotes"
	quotehandlers "github.com/SeanFuture9999/stock-game1/internal/modules/quotes/handlers"
	"github.com/SeanFuture9999/stock-game1/internal/modules/settings"
	settingshandlers "github.com/SeanFuture9999/stock-game1/internal/modules/settings/handlers"
	"github.com/SeanFuture9999/stock-game1/internal/modules/watchlist"
	watchlisthandlers "github.com/SeanFuture9999/stock-game1/internal/modules/watchlist/handlers"
	"github.com/SeanFuture9999/stock-game1/internal/scheduler"
	"github.com/SeanFuture9999/stock-game1/internal/server"
	"github.com/SeanFuture9999/stock-game1/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	log.Info().Msg("Starting stock dashboard")

	// Databases. The ledger gets the paranoid profile, snapshots the fast one.
	open := func(name string, profile database.Profile) *database.DB {
		db, err := database.New(database.Config{
			Path:    filepath.Join(cfg.DataDir, name+".db"),
			Profile: profile,
			Name:    name,
		})
		if err != nil {
			log.Fatal().Err(err).Str("database", name).Msg("Failed to open database")
		}
		if err := db.Migrate(); err != nil {
			log.Fatal().Err(err).Str("database", name).Msg("Failed to migrate database")
		}
		return db
	}

	ledgerDB := open("ledger", database.ProfileLedger)
	portfolioDB := open("portfolio", database.ProfileStandard)
	configDB := open("config", database.ProfileStandard)
	cacheDB := open("cache", database.ProfileCache)
	databases := []*database.DB{ledgerDB, portfolioDB, configDB, cacheDB}
	defer func() {
		for _, db := range databases {
			_ = db.Close()
		}
	}()

	eventBus := events.NewManager(log)

	// Market data collaborators. External feed clients plug in through the
	// quotes.Source and institutional.Source seams; without them the store
	// still serves manually pushed and persisted snapshots.
	var quoteSource quotes.Source
	var chipSource institutional.Source

	quoteRepo := quotes.NewRepository(cacheDB.Conn(), log)
	quoteStore := quotes.NewStore(quoteRepo, quoteSource, log)
	if err := quoteStore.Warm(); err != nil {
		log.Warn().Err(err).Msg("Failed to warm quote store")
	}

	watchlistRepo := watchlist.NewRepository(portfolioDB.Conn(), log)
	watchlistSvc := watchlist.NewService(watchlistRepo, log)

	portfolioRepo := portfolio.NewRepository(portfolioDB.Conn(), log)
	portfolioSvc := portfolio.NewService(portfolioRepo, quoteStore, log)

	ledgerRepo := ledger.NewRepository(ledgerDB.Conn(), log)
	ledgerSvc := ledger.NewService(ledgerRepo, portfolioSvc, cfg.FeeSchedule(),
		watchlistSvc, eventBus, log)

	diarySvc := diary.NewService(portfolioDB.Conn(), log)
	performanceSvc := performance.NewService(ledgerSvc, portfolioSvc, diarySvc, log)

	chipRepo := institutional.NewRepository(cacheDB.Conn(), log)
	chipSvc := institutional.NewService(chipRepo, chipSource, log)

	alertRepo := alerts.NewRepository(portfolioDB.Conn(), log)
	alertSvc := alerts.NewService(alertRepo, quoteStore, nil, eventBus, log)

	settingsSvc := settings.NewService(configDB.Conn(), log)

	// Positions are derived state; a replay at startup heals anything a
	// crash between the ledger write and the position commit left behind.
	if err := portfolioSvc.Replay(ledgerRepo); err != nil {
		log.Fatal().Err(err).Msg("Startup ledger replay failed")
	}

	sched := scheduler.New(log)
	quoteSpec := fmt.Sprintf("@every %ds", cfg.QuotePollSeconds)
	if err := sched.Register(quoteSpec, &scheduler.QuoteRefreshJob{
		Store: quoteStore, Symbols: watchlistSvc,
	}); err != nil {
		log.Fatal().Err(err).Msg("Failed to register quote refresh job")
	}
	if err := sched.Register(cfg.AlertCheckSpec, &scheduler.AlertCheckJob{
		Service: alertSvc,
	}); err != nil {
		log.Fatal().Err(err).Msg("Failed to register alert check job")
	}
	if chipSource != nil {
		if err := sched.Register(cfg.ChipSyncSchedule, &scheduler.ChipSyncJob{
			Service: chipSvc,
		}); err != nil {
			log.Fatal().Err(err).Msg("Failed to register chip sync job")
		}
	} else {
		log.Warn().Msg("No chip data source configured, daily sync disabled")
	}
	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Log:     log,
		Port:    cfg.Port,
		DevMode: cfg.DevMode,
		Handlers: server.Handlers{
			Ledger:      ledgerhandlers.NewHandler(ledgerSvc, log),
			Portfolio:   portfoliohandlers.NewHandler(portfolioSvc, ledgerRepo, log),
			Performance: performancehandlers.NewHandler(performanceSvc, log),
			Quotes:      quotehandlers.NewHandler(quoteStore, watchlistSvc, log),
			Watchlist:   watchlisthandlers.NewHandler(watchlistSvc, log),
			Diary:       diaryhandlers.NewHandler(diarySvc, log),
			Alerts:      alerthandlers.NewHandler(alertSvc, log),
			Chips:       chiphandlers.NewHandler(chipSvc, log),
			Settings:    settingshandlers.NewHandler(settingsSvc, log),
		},
		Databases: databases,
		Scheduler: sched,
		Events:    eventBus,
	})

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	// Truncate WALs so the data directory is tidy for backups
	for _, db := range databases {
		if err := db.WALCheckpoint("TRUNCATE"); err != nil {
			log.Warn().Err(err).Str("database", db.Name()).Msg("WAL checkpoint failed")
		}
	}
	log.Info().Msg("Shutdown complete")
}
