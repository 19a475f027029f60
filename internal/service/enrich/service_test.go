package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/kotoba-backend/internal/domain"
	"github.com/heartmarshall/kotoba-backend/internal/provider"
)

// ---------------------------------------------------------------------------
// Manual mocks (moq-style with func fields)
// ---------------------------------------------------------------------------

type mockWordRepo struct {
	mu sync.Mutex

	GetByIDFunc       func(ctx context.Context, id uuid.UUID) (*domain.Word, error)
	UpsertExampleFunc func(ctx context.Context, glossID uuid.UUID, sourceSlug, sourceID, japanese string, english *string) (*domain.Example, bool, error)

	inserted []string
}

func (m *mockWordRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Word, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *mockWordRepo) UpsertExample(ctx context.Context, glossID uuid.UUID, sourceSlug, sourceID, japanese string, english *string) (*domain.Example, bool, error) {
	m.mu.Lock()
	m.inserted = append(m.inserted, sourceID)
	m.mu.Unlock()
	if m.UpsertExampleFunc != nil {
		return m.UpsertExampleFunc(ctx, glossID, sourceSlug, sourceID, japanese, english)
	}
	return &domain.Example{ID: uuid.New(), GlossID: glossID, SourceSlug: sourceSlug, SourceID: sourceID, Japanese: japanese, English: english}, true, nil
}

func (m *mockWordRepo) insertedIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.inserted...)
}

type mockExampleSource struct {
	mu sync.Mutex

	SearchFunc func(ctx context.Context, term string, limit int) ([]provider.SentenceResult, error)

	terms []string
}

func (m *mockExampleSource) Search(ctx context.Context, term string, limit int) ([]provider.SentenceResult, error) {
	m.mu.Lock()
	m.terms = append(m.terms, term)
	m.mu.Unlock()
	return m.SearchFunc(ctx, term, limit)
}

func (m *mockExampleSource) Slug() string { return "testsource" }

func (m *mockExampleSource) searchedTerms() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.terms...)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func strPtr(s string) *string { return &s }

func sentence(id, japanese string) provider.SentenceResult {
	return provider.SentenceResult{ID: id, Japanese: japanese, English: strPtr("english for " + id)}
}

func wordWithGlosses(kanji, kana string, glosses ...domain.Gloss) *domain.Word {
	return &domain.Word{
		ID:      uuid.New(),
		Kanji:   strPtr(kanji),
		Kana:    strPtr(kana),
		Glosses: glosses,
	}
}

func newTestService(repo *mockWordRepo, source *mockExampleSource) *Service {
	return NewService(slog.Default(), repo, source, 1)
}

// ---------------------------------------------------------------------------
// FillExamples tests
// ---------------------------------------------------------------------------

func TestService_FillExamples_TopsUpToQuota(t *testing.T) {
	t.Parallel()

	word := wordWithGlosses("食べる", "たべる", domain.Gloss{ID: uuid.New(), Text: "to eat"})

	repo := &mockWordRepo{
		GetByIDFunc: func(_ context.Context, _ uuid.UUID) (*domain.Word, error) {
			return word, nil
		},
	}
	source := &mockExampleSource{
		SearchFunc: func(_ context.Context, _ string, _ int) ([]provider.SentenceResult, error) {
			return []provider.SentenceResult{
				sentence("1", "パンを食べる。"),
				sentence("2", "魚を食べる。"),
				sentence("3", "肉を食べる。"),
				sentence("4", "野菜を食べる。"),
			}, nil
		},
	}

	svc := newTestService(repo, source)
	err := svc.FillExamples(context.Background(), word.ID, 3)

	require.NoError(t, err)
	assert.Len(t, repo.insertedIDs(), 3, "inserts stop at the quota")
}

func TestService_FillExamples_AtQuotaIsNoOp(t *testing.T) {
	t.Parallel()

	gloss := domain.Gloss{
		ID:   uuid.New(),
		Text: "to eat",
		Examples: []domain.Example{
			{ID: uuid.New(), SourceID: "1"},
			{ID: uuid.New(), SourceID: "2"},
			{ID: uuid.New(), SourceID: "3"},
		},
	}
	word := wordWithGlosses("食べる", "たべる", gloss)

	repo := &mockWordRepo{
		GetByIDFunc: func(_ context.Context, _ uuid.UUID) (*domain.Word, error) {
			return word, nil
		},
	}
	source := &mockExampleSource{
		SearchFunc: func(_ context.Context, _ string, _ int) ([]provider.SentenceResult, error) {
			t.Fatal("source should not be called when every gloss is at quota")
			return nil, nil
		},
	}

	svc := newTestService(repo, source)
	err := svc.FillExamples(context.Background(), word.ID, 3)

	require.NoError(t, err)
	assert.Empty(t, repo.insertedIDs())
}

func TestService_FillExamples_ContainmentFilter(t *testing.T) {
	t.Parallel()

	word := wordWithGlosses("食べる", "たべる", domain.Gloss{ID: uuid.New(), Text: "to eat"})

	repo := &mockWordRepo{
		GetByIDFunc: func(_ context.Context, _ uuid.UUID) (*domain.Word, error) {
			return word, nil
		},
	}
	source := &mockExampleSource{
		SearchFunc: func(_ context.Context, term string, _ int) ([]provider.SentenceResult, error) {
			if term == "食べる" {
				return []provider.SentenceResult{
					sentence("1", "パンを食べる。"),
					sentence("2", "全く関係ない文。"),
				}, nil
			}
			return nil, nil
		},
	}

	svc := newTestService(repo, source)
	err := svc.FillExamples(context.Background(), word.ID, 3)

	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, repo.insertedIDs(), "sentences not containing the headword are dropped")
}

func TestService_FillExamples_KeywordFallback(t *testing.T) {
	t.Parallel()

	word := wordWithGlosses("犬", "いぬ", domain.Gloss{ID: uuid.New(), Text: "dog; hound"})

	repo := &mockWordRepo{
		GetByIDFunc: func(_ context.Context, _ uuid.UUID) (*domain.Word, error) {
			return word, nil
		},
	}
	source := &mockExampleSource{
		SearchFunc: func(_ context.Context, term string, _ int) ([]provider.SentenceResult, error) {
			switch term {
			case "犬", "いぬ":
				return nil, nil
			case "dog":
				return []provider.SentenceResult{sentence("10", "ペットがいる。")}, nil
			case "hound":
				return []provider.SentenceResult{sentence("11", "狩りに行く。")}, nil
			default:
				return nil, fmt.Errorf("unexpected term %q", term)
			}
		},
	}

	svc := newTestService(repo, source)
	err := svc.FillExamples(context.Background(), word.ID, 2)

	require.NoError(t, err)
	assert.Equal(t, []string{"10", "11"}, repo.insertedIDs(), "meaning fallback results are kept without containment filtering")
	assert.Equal(t, []string{"犬", "いぬ", "dog", "hound"}, source.searchedTerms())
}

func TestService_FillExamples_SkipsCandidatesWithoutID(t *testing.T) {
	t.Parallel()

	word := wordWithGlosses("水", "みず", domain.Gloss{ID: uuid.New(), Text: "water"})

	repo := &mockWordRepo{
		GetByIDFunc: func(_ context.Context, _ uuid.UUID) (*domain.Word, error) {
			return word, nil
		},
	}
	source := &mockExampleSource{
		SearchFunc: func(_ context.Context, term string, _ int) ([]provider.SentenceResult, error) {
			if term != "水" {
				return nil, nil
			}
			return []provider.SentenceResult{
				{ID: "", Japanese: "水を飲む。"},
				sentence("2", "水が冷たい。"),
			}, nil
		},
	}

	svc := newTestService(repo, source)
	err := svc.FillExamples(context.Background(), word.ID, 2)

	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, repo.insertedIDs())
}

func TestService_FillExamples_DuplicatesDoNotCountTowardQuota(t *testing.T) {
	t.Parallel()

	word := wordWithGlosses("水", "みず", domain.Gloss{ID: uuid.New(), Text: "water"})

	repo := &mockWordRepo{
		GetByIDFunc: func(_ context.Context, _ uuid.UUID) (*domain.Word, error) {
			return word, nil
		},
		UpsertExampleFunc: func(_ context.Context, glossID uuid.UUID, sourceSlug, sourceID, japanese string, english *string) (*domain.Example, bool, error) {
			created := sourceID != "1"
			return &domain.Example{ID: uuid.New(), GlossID: glossID, SourceID: sourceID}, created, nil
		},
	}
	source := &mockExampleSource{
		SearchFunc: func(_ context.Context, term string, _ int) ([]provider.SentenceResult, error) {
			if term != "水" {
				return nil, nil
			}
			return []provider.SentenceResult{
				sentence("1", "水を飲む。"),
				sentence("2", "水が冷たい。"),
				sentence("3", "水をください。"),
			}, nil
		},
	}

	svc := newTestService(repo, source)
	err := svc.FillExamples(context.Background(), word.ID, 2)

	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, repo.insertedIDs(), "already-present candidate is skipped and the next one used")
}

func TestService_FillExamples_SourceErrorDegradesToEmpty(t *testing.T) {
	t.Parallel()

	word := wordWithGlosses("水", "みず", domain.Gloss{ID: uuid.New(), Text: "water"})

	repo := &mockWordRepo{
		GetByIDFunc: func(_ context.Context, _ uuid.UUID) (*domain.Word, error) {
			return word, nil
		},
	}
	source := &mockExampleSource{
		SearchFunc: func(_ context.Context, _ string, _ int) ([]provider.SentenceResult, error) {
			return nil, errors.New("upstream down")
		},
	}

	svc := newTestService(repo, source)
	err := svc.FillExamples(context.Background(), word.ID, 3)

	require.NoError(t, err, "source failures must not surface to the caller")
	assert.Empty(t, repo.insertedIDs())
}

func TestService_FillExamples_LoadFailurePropagates(t *testing.T) {
	t.Parallel()

	loadErr := errors.New("db down")
	repo := &mockWordRepo{
		GetByIDFunc: func(_ context.Context, _ uuid.UUID) (*domain.Word, error) {
			return nil, loadErr
		},
	}

	svc := newTestService(repo, &mockExampleSource{})
	err := svc.FillExamples(context.Background(), uuid.New(), 3)

	assert.ErrorIs(t, err, loadErr)
}

func TestService_FillExamples_ZeroQuotaIsNoOp(t *testing.T) {
	t.Parallel()

	repo := &mockWordRepo{
		GetByIDFunc: func(_ context.Context, _ uuid.UUID) (*domain.Word, error) {
			t.Fatal("store should not be touched for a zero quota")
			return nil, nil
		},
	}

	svc := newTestService(repo, &mockExampleSource{})
	err := svc.FillExamples(context.Background(), uuid.New(), 0)

	require.NoError(t, err)
}
