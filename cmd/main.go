package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/tinoosan/awqaf/internal/config"
	"github.com/tinoosan/awqaf/internal/httpapi"
	"github.com/tinoosan/awqaf/internal/service/books"
	"github.com/tinoosan/awqaf/internal/storage"
	"github.com/tinoosan/awqaf/internal/storage/gormstore"
	"github.com/tinoosan/awqaf/internal/storage/memory"
	pgstore "github.com/tinoosan/awqaf/internal/storage/postgres"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	logger := buildLogger(cfg.Log)
	slog.SetDefault(logger)

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open storage", "driver", cfg.Storage.Driver, "err", err)
		os.Exit(1)
	}
	defer store.Close()
	logger.Info("storage backend: " + cfg.Storage.Driver)

	b := books.New(store, books.Options{MaxItemsPerPage: cfg.Paging.MaxItemsPerPage})

	if cfg.Dev.Seed {
		seed, err := b.SeedDev(ctx)
		if err != nil {
			logger.Error("dev seed failed", "err", err)
		} else {
			logDevSeed(logger, cfg.Storage.Driver, seed)
			printDevSeedBanner(seed)
		}
	}

	api := httpapi.New(b, store, logger, httpapi.Options{DefaultItemsPerPage: cfg.Paging.DefaultItemsPerPage})
	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("awqaf service listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		ctxShutdown, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctxShutdown); err != nil {
			logger.Error("server shutdown error", "err", err)
		}
	case err := <-errCh:
		logger.Error("server error", "err", err)
	}
}

// openStore builds the configured backend and brings its schema up to date.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Store, error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		return memory.New(), nil
	case config.DriverPostgres:
		if cfg.Database.Migrate {
			v, err := pgstore.Migrate(cfg.Database.URL)
			if err != nil {
				return nil, fmt.Errorf("migrate: %w", err)
			}
			logger.Info("database migrated", "version", v)
		}
		s, err := pgstore.Open(ctx, cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverGorm:
		d, err := gormstore.Dialector(cfg.Database.Dialect, cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		s, err := gormstore.Open(ctx, d)
		if err != nil {
			return nil, err
		}
		if cfg.Database.Migrate {
			if err := s.AutoMigrate(ctx); err != nil {
				s.Close()
				return nil, fmt.Errorf("auto-migrate: %w", err)
			}
			logger.Info("database migrated", "dialect", cfg.Database.Dialect)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}

// logDevSeed emits structured logs with useful IDs
func logDevSeed(l *slog.Logger, backend string, seed books.DevSeed) {
	accounts := make([]int32, 0, len(seed.Accounts))
	for _, a := range seed.Accounts {
		accounts = append(accounts, a.ID)
	}
	l.Info("DEV seed ("+backend+")",
		"fiscal_year_id", seed.FiscalYear.ID,
		"account_ids", accounts,
		"ledgers", len(seed.Ledgers),
		"vouchers", len(seed.Vouchers),
	)
}

// printDevSeedBanner prints a simple banner to stdout for easy copy/paste of IDs
func printDevSeedBanner(seed books.DevSeed) {
	fmt.Println("==================== DEV SEED ====================")
	fmt.Printf("fiscal_year_id: %d (%s)\n", seed.FiscalYear.ID, seed.FiscalYear.Description)
	for _, a := range seed.Accounts {
		fmt.Printf("account_id: %d  %s\n", a.ID, a.Name)
	}
	for _, l := range seed.Ledgers {
		fmt.Printf("ledger: /api/AccountLedgers/%d/%d/%d\n", l.FiscalYearID, l.AccountID, l.LedgerNo)
	}
	fmt.Println("==================================================")
}

// parseLogLevel maps config values to slog.Leveler
func parseLogLevel(s string) slog.Leveler {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "err":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func buildLogger(c config.LogConfig) *slog.Logger {
	level := parseLogLevel(c.Level)
	if c.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}
	// default to JSON
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
