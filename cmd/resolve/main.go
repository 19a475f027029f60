// Command resolve looks a query up against the local dictionary store,
// ingesting from the external sources on cache miss, and prints the resolved
// entries as JSON to stdout.
//
// Usage:
//
//	resolve -q 食べる
//	resolve -q "to eat" -meaning
//	resolve -q たべ -suggest -limit 5
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/heartmarshall/kotoba-backend/internal/app"
	"github.com/heartmarshall/kotoba-backend/internal/config"
	"github.com/heartmarshall/kotoba-backend/internal/domain"
)

func main() {
	query := flag.String("q", "", "query text (kanji, kana, or english)")
	byMeaning := flag.Bool("meaning", false, "match english gloss text instead of the headword")
	suggest := flag.Bool("suggest", false, "typeahead suggestions only, no external lookup")
	limit := flag.Int("limit", 10, "suggestion limit")
	noEnrich := flag.Bool("no-enrich", false, "skip example sentence backfill")
	flag.Parse()

	if *query == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("init application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer a.Close()

	words, err := run(ctx, a, *query, *byMeaning, *suggest, *limit, *noEnrich)
	if err != nil {
		logger.Error("resolve failed", slog.String("query", *query), slog.String("error", err.Error()))
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(words); err != nil {
		logger.Error("encode output", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, a *app.App, query string, byMeaning, suggest bool, limit int, noEnrich bool) ([]domain.Word, error) {
	if suggest {
		return a.Dictionary.Suggest(ctx, query, limit)
	}

	resolve := a.Dictionary.Resolve
	if byMeaning {
		resolve = a.Dictionary.ResolveByMeaning
	}

	words, err := resolve(ctx, query)
	if err != nil {
		return nil, err
	}

	// No-op for anonymous callers; kept at the boundary so authenticated
	// contexts get their history recorded.
	if err := a.History.Record(ctx, words); err != nil {
		a.Log.Warn("record search history", slog.String("error", err.Error()))
	}

	if noEnrich || len(words) == 0 {
		return words, nil
	}

	for _, w := range words {
		if err := a.Enricher.FillExamples(ctx, w.ID, a.Cfg.Enrich.ExamplesPerGloss); err != nil {
			return nil, err
		}
	}

	// Re-resolve so the output carries the freshly inserted examples.
	return resolve(ctx, query)
}
