// Package enrich implements the lazy per-gloss example backfill. It runs as
// a separate best-effort phase outside any transaction so the slower
// sentence-search round trips never hold database locks.
package enrich

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/kotoba-backend/internal/domain"
	"github.com/heartmarshall/kotoba-backend/internal/provider"
)

type wordRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Word, error)
	UpsertExample(ctx context.Context, glossID uuid.UUID, sourceSlug, sourceID, japanese string, english *string) (*domain.Example, bool, error)
}

type exampleSource interface {
	Search(ctx context.Context, term string, limit int) ([]provider.SentenceResult, error)
	Slug() string
}

const defaultConcurrency = 4

// Service tops up example sentences for every under-quota gloss of a word.
type Service struct {
	log         *slog.Logger
	words       wordRepo
	source      exampleSource
	concurrency int
}

// NewService creates a new enrichment service. concurrency bounds the
// per-gloss fan-out; values below 1 fall back to the default.
func NewService(logger *slog.Logger, words wordRepo, source exampleSource, concurrency int) *Service {
	if concurrency < 1 {
		concurrency = defaultConcurrency
	}
	return &Service{
		log:         logger.With("service", "enrich"),
		words:       words,
		source:      source,
		concurrency: concurrency,
	}
}

// FillExamples brings every gloss of the word up to perGloss examples, where
// the source has candidates. Glosses already at quota cost zero external
// calls; glosses with no candidates stay empty, which is a valid terminal
// state, not an error. Re-invocation only tops up, never duplicates.
// Example-source failures degrade to "no candidates" and are never surfaced.
func (s *Service) FillExamples(ctx context.Context, wordID uuid.UUID, perGloss int) error {
	if perGloss <= 0 {
		return nil
	}

	word, err := s.words.GetByID(ctx, wordID)
	if err != nil {
		return err
	}

	// Each under-quota gloss is enriched independently: one gloss's slow or
	// empty search never blocks the others.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, gloss := range word.Glosses {
		lacking := perGloss - len(gloss.Examples)
		if lacking <= 0 {
			continue
		}

		gloss := gloss
		g.Go(func() error {
			s.fillGloss(gctx, word, gloss, lacking)
			return nil
		})
	}

	return g.Wait()
}

// fillGloss finds candidates for one gloss and inserts up to lacking of them.
func (s *Service) fillGloss(ctx context.Context, word *domain.Word, gloss domain.Gloss, lacking int) {
	candidates := s.searchJapanese(ctx, word, lacking)
	if len(candidates) == 0 {
		candidates = s.searchByMeaning(ctx, gloss, lacking)
	}
	if len(candidates) == 0 {
		return
	}

	inserted := 0
	for _, c := range candidates {
		if inserted >= lacking {
			break
		}
		// Sources without stable ids would make dedup impossible.
		if c.ID == "" {
			continue
		}

		_, created, err := s.words.UpsertExample(ctx, gloss.ID, s.source.Slug(), c.ID, c.Japanese, c.English)
		if err != nil {
			s.log.WarnContext(ctx, "example insert failed",
				slog.String("gloss_id", gloss.ID.String()),
				slog.String("source_id", c.ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		if created {
			inserted++
		}
	}
}

// searchJapanese queries by the word's kanji and, when different, its kana,
// keeping only candidates whose Japanese text actually contains one of them.
// The containment filter defends against overly broad relevance matches.
func (s *Service) searchJapanese(ctx context.Context, word *domain.Word, limit int) []provider.SentenceResult {
	var terms []string
	if word.Kanji != nil && *word.Kanji != "" {
		terms = append(terms, *word.Kanji)
	}
	if word.Kana != nil && *word.Kana != "" && (len(terms) == 0 || terms[0] != *word.Kana) {
		terms = append(terms, *word.Kana)
	}

	var pool []provider.SentenceResult
	for _, term := range terms {
		results, err := s.search(ctx, term, limit)
		if err != nil {
			continue
		}
		pool = append(pool, results...)
	}

	var filtered []provider.SentenceResult
	for _, c := range pool {
		for _, term := range terms {
			if strings.Contains(c.Japanese, term) {
				filtered = append(filtered, c)
				break
			}
		}
	}
	return filtered
}

// searchByMeaning falls back to one search per gloss keyword. English-meaning
// search cannot be filtered on Japanese substring, so results are taken as-is.
func (s *Service) searchByMeaning(ctx context.Context, gloss domain.Gloss, limit int) []provider.SentenceResult {
	var pool []provider.SentenceResult
	for _, keyword := range gloss.Keywords() {
		results, err := s.search(ctx, keyword, limit)
		if err != nil {
			continue
		}
		pool = append(pool, results...)
	}
	return pool
}

// search wraps the source call with the degradation policy: failures are
// logged and reported as empty.
func (s *Service) search(ctx context.Context, term string, limit int) ([]provider.SentenceResult, error) {
	results, err := s.source.Search(ctx, term, limit)
	if err != nil {
		s.log.WarnContext(ctx, "example source error, treating as empty",
			slog.String("term", term),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	return results, nil
}
