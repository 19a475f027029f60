// Package dictionary implements the cache-aside resolver: the store is
// probed first and the external definition source is consulted only on miss,
// with results written back inside a single transaction.
package dictionary

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/kotoba-backend/internal/domain"
	"github.com/heartmarshall/kotoba-backend/internal/provider"
)

type wordRepo interface {
	SearchByHeadword(ctx context.Context, query string) ([]domain.Word, error)
	SearchByGlossText(ctx context.Context, query string) ([]domain.Word, error)
	SearchSuggestions(ctx context.Context, query string, limit int) ([]domain.Word, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Word, error)
	UpsertWord(ctx context.Context, kanji, kana *string, partsOfSpeech string, level *domain.JLPTLevel) (*domain.Word, error)
	UpsertGloss(ctx context.Context, wordID uuid.UUID, text string) (*domain.Gloss, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type definitionSource interface {
	Lookup(ctx context.Context, query string) ([]provider.DefinitionResult, error)
}

// Service resolves lexical queries against the local store, ingesting from
// the external definition source on cache miss.
type Service struct {
	log    *slog.Logger
	words  wordRepo
	tx     txManager
	source definitionSource
}

// NewService creates a new dictionary service.
func NewService(logger *slog.Logger, words wordRepo, tx txManager, source definitionSource) *Service {
	return &Service{
		log:    logger.With("service", "dictionary"),
		words:  words,
		tx:     tx,
		source: source,
	}
}

// Resolve looks a query up by headword (kanji/kana substring). An empty or
// whitespace-only query is a no-op. On cache hit the stored words are
// returned as-is; on miss the definition source is consulted and the results
// ingested. A definition source failure propagates to the caller.
func (s *Service) Resolve(ctx context.Context, query string) ([]domain.Word, error) {
	return s.resolve(ctx, query, s.words.SearchByHeadword)
}

// ResolveByMeaning is the reverse lookup: the cache probe matches English
// gloss text instead of the headword.
func (s *Service) ResolveByMeaning(ctx context.Context, query string) ([]domain.Word, error) {
	return s.resolve(ctx, query, s.words.SearchByGlossText)
}

// Suggest returns typeahead candidates from the store only, no external call.
func (s *Service) Suggest(ctx context.Context, query string, limit int) ([]domain.Word, error) {
	normalized := domain.NormalizeQuery(query)
	if normalized == "" {
		return []domain.Word{}, nil
	}
	return s.words.SearchSuggestions(ctx, normalized, limit)
}

func (s *Service) resolve(ctx context.Context, query string, probe func(context.Context, string) ([]domain.Word, error)) ([]domain.Word, error) {
	normalized := domain.NormalizeQuery(query)
	if normalized == "" {
		return []domain.Word{}, nil
	}

	hits, err := probe(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("probe store: %w", err)
	}
	if len(hits) > 0 {
		return hits, nil
	}

	entries, err := s.source.Lookup(ctx, normalized)
	if err != nil {
		s.log.ErrorContext(ctx, "definition source error",
			slog.String("query", normalized),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("resolve %q: %w", normalized, err)
	}

	// Word and gloss upserts for one resolution form a single atomic unit so
	// a partially ingested entry is never visible. Example backfill happens
	// later, outside any transaction.
	var ids []uuid.UUID
	txErr := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		for _, entry := range entries {
			w, err := s.ingestEntry(txCtx, entry)
			if err != nil {
				return err
			}
			if w != nil {
				ids = append(ids, w.ID)
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, fmt.Errorf("ingest %q: %w", normalized, txErr)
	}

	words := make([]domain.Word, 0, len(ids))
	for _, id := range ids {
		w, err := s.words.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("reload ingested word: %w", err)
		}
		words = append(words, *w)
	}

	s.log.InfoContext(ctx, "query ingested",
		slog.String("query", normalized),
		slog.Int("words", len(words)),
	)

	return words, nil
}
