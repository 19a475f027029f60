// Package app wires configuration, storage, providers, and services into a
// runnable application.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/kotoba-backend/internal/adapter/postgres"
	historyrepo "github.com/heartmarshall/kotoba-backend/internal/adapter/postgres/history"
	wordrepo "github.com/heartmarshall/kotoba-backend/internal/adapter/postgres/word"
	"github.com/heartmarshall/kotoba-backend/internal/adapter/provider/jisho"
	"github.com/heartmarshall/kotoba-backend/internal/adapter/provider/tatoeba"
	"github.com/heartmarshall/kotoba-backend/internal/config"
	"github.com/heartmarshall/kotoba-backend/internal/service/dictionary"
	"github.com/heartmarshall/kotoba-backend/internal/service/enrich"
	"github.com/heartmarshall/kotoba-backend/internal/service/history"
)

// App holds the assembled application graph. Construct with New, release
// resources with Close.
type App struct {
	Cfg  *config.Config
	Log  *slog.Logger
	Pool *pgxpool.Pool

	Dictionary *dictionary.Service
	Enricher   *enrich.Service
	History    *history.Service
}

// New connects to the database and builds the service graph.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	words := wordrepo.New(pool)
	entries := historyrepo.New(pool)
	txManager := postgres.NewTxManager(pool)

	definitions := jisho.NewProvider(jisho.Config{
		BaseURL: cfg.Providers.Jisho.BaseURL,
		Timeout: cfg.Providers.Jisho.Timeout,
	}, logger)
	sentences := tatoeba.NewProvider(tatoeba.Config{
		BaseURL: cfg.Providers.Tatoeba.BaseURL,
		Timeout: cfg.Providers.Tatoeba.Timeout,
	}, logger)

	return &App{
		Cfg:        cfg,
		Log:        logger,
		Pool:       pool,
		Dictionary: dictionary.NewService(logger, words, txManager, definitions),
		Enricher:   enrich.NewService(logger, words, sentences, cfg.Enrich.Concurrency),
		History:    history.NewService(logger, entries),
	}, nil
}

// Close releases the database pool.
func (a *App) Close() {
	a.Pool.Close()
}
