// cmd/api/main.go
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"

	"libris/internal/api"
	"libris/internal/audit"
	"libris/internal/catalog"
	"libris/internal/config"
	"libris/internal/loans"
	"libris/internal/observability"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.Load()

	logger := observability.InitLogger(observability.LogConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	shutdownTracer, err := observability.InitTracer(ctx, observability.TracingConfig{
		ServiceName: "libris",
		Endpoint:    cfg.OTLPEndpoint,
		Insecure:    true,
	})
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
	} else {
		defer func() { _ = shutdownTracer(context.Background()) }()
	}

	journal, closeJournal, err := buildJournal(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to set up audit journal", "error", err)
		os.Exit(1)
	}
	defer closeJournal()

	books := catalog.NewService()
	if cfg.BooksCSV != "" {
		loaded, err := catalog.LoadCSVFile(ctx, books, cfg.BooksCSV, logger)
		if err != nil {
			logger.Error("failed to seed catalog", "path", cfg.BooksCSV, "error", err)
			os.Exit(1)
		}
		logger.Info("catalog seeded", "books", loaded)
	}

	finePerDay, err := decimal.NewFromString(cfg.FinePerDay)
	if err != nil {
		logger.Warn("invalid FINE_PER_DAY, using default", "value", cfg.FinePerDay)
		finePerDay = loans.DefaultFinePerDay
	}

	ledger := loans.NewLedger()
	lending := loans.NewService(books, ledger, loans.NewFeeCalculator(finePerDay), journal)

	router := api.New(catalog.NewHandler(books), loans.NewHandler(lending), api.Options{
		Logger:       logger,
		RateLimitRPS: cfg.RateLimitRPS,
		AdminKeyHash: cfg.AdminKeyHash,
		AdminKeySalt: cfg.AdminKeySalt,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("starting libris", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

// buildJournal wires the Postgres journal when a database is configured
// and falls back to the in-memory one otherwise.
func buildJournal(ctx context.Context, databaseURL string) (audit.Journal, func(), error) {
	if databaseURL == "" {
		return audit.NewMemoryJournal(), func() {}, nil
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, nil, err
	}

	journal := audit.NewPostgresJournal(db)
	if err := journal.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}

	return journal, func() { db.Close() }, nil
}
