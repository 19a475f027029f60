// Package word implements the dictionary record store using PostgreSQL.
// Static lookups use raw SQL constants; search queries are built dynamically
// with squirrel. Rows are scanned with pgxscan into local row structs and
// mapped to domain types.
package word

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	"github.com/heartmarshall/kotoba-backend/internal/adapter/postgres"
	"github.com/heartmarshall/kotoba-backend/internal/domain"
)

// Repo provides word/gloss/example persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new word repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const wordColumns = "id, kanji, kana, parts_of_speech, jlpt_level, is_cached, created_at, updated_at"

// ---------------------------------------------------------------------------
// Raw SQL
// ---------------------------------------------------------------------------

// getByTextSQL resolves an exact (kanji, kana) pair NULL-safely. Duplicate
// pairs are possible under concurrent first-time ingestion; creation order
// with id as tiebreaker makes reads deterministic (first record wins).
const getByTextSQL = `
SELECT ` + wordColumns + `
FROM words
WHERE kanji IS NOT DISTINCT FROM $1 AND kana IS NOT DISTINCT FROM $2
ORDER BY created_at, id
LIMIT 1`

const getByIDSQL = `
SELECT ` + wordColumns + `
FROM words
WHERE id = $1`

const insertWordSQL = `
INSERT INTO words (id, kanji, kana, parts_of_speech, jlpt_level, is_cached, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`

const updateWordSQL = `
UPDATE words
SET parts_of_speech = $2, jlpt_level = $3, is_cached = $4, updated_at = $5
WHERE id = $1`

const getGlossSQL = `
SELECT id, word_id, text, created_at
FROM glosses
WHERE word_id = $1 AND text = $2`

const insertGlossSQL = `
INSERT INTO glosses (id, word_id, text, created_at)
VALUES ($1, $2, $3, $4)`

const listGlossesByWordIDsSQL = `
SELECT id, word_id, text, created_at
FROM glosses
WHERE word_id = ANY($1)
ORDER BY word_id, created_at, id`

const getExampleSQL = `
SELECT id, gloss_id, source_slug, source_id, japanese, english, created_at
FROM examples
WHERE gloss_id = $1 AND source_slug = $2 AND source_id = $3`

const insertExampleSQL = `
INSERT INTO examples (id, gloss_id, source_slug, source_id, japanese, english, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

const listExamplesByGlossIDsSQL = `
SELECT id, gloss_id, source_slug, source_id, japanese, english, created_at
FROM examples
WHERE gloss_id = ANY($1)
ORDER BY gloss_id, created_at, id`

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByText returns the word with the exact (kanji, kana) identity, without
// its gloss tree. Returns domain.ErrNotFound if absent.
func (r *Repo) GetByText(ctx context.Context, kanji, kana *string) (*domain.Word, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var row wordRow
	if err := pgxscan.Get(ctx, q, &row, getByTextSQL, kanji, kana); err != nil {
		if pgxscan.NotFound(err) {
			return nil, fmt.Errorf("word by text: %w", domain.ErrNotFound)
		}
		return nil, postgres.MapError(err, "word by text")
	}

	w := row.toDomain()
	return &w, nil
}

// GetByID returns a word with its full gloss/example tree.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Word, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var row wordRow
	if err := pgxscan.Get(ctx, q, &row, getByIDSQL, id); err != nil {
		if pgxscan.NotFound(err) {
			return nil, fmt.Errorf("word %s: %w", id, domain.ErrNotFound)
		}
		return nil, postgres.MapError(err, "word")
	}

	words, err := r.loadTree(ctx, []domain.Word{row.toDomain()})
	if err != nil {
		return nil, err
	}

	return &words[0], nil
}

// SearchByHeadword returns words whose kanji or kana contains the query
// (case-insensitive), with full trees, in creation order.
func (r *Repo) SearchByHeadword(ctx context.Context, query string) ([]domain.Word, error) {
	pattern := "%" + query + "%"
	sqlStr, args, err := qb.
		Select(wordColumns).
		From("words").
		Where(sq.Or{
			sq.ILike{"kanji": pattern},
			sq.ILike{"kana": pattern},
		}).
		OrderBy("created_at", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build headword search: %w", err)
	}

	return r.searchWords(ctx, sqlStr, args)
}

// SearchByGlossText returns distinct words having at least one gloss whose
// text contains the query (case-insensitive), with full trees.
func (r *Repo) SearchByGlossText(ctx context.Context, query string) ([]domain.Word, error) {
	pattern := "%" + query + "%"
	sqlStr, args, err := qb.
		Select(wordColumns).
		From("words").
		Where(sq.Expr("id IN (SELECT word_id FROM glosses WHERE text ILIKE ?)", pattern)).
		OrderBy("created_at", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build gloss search: %w", err)
	}

	return r.searchWords(ctx, sqlStr, args)
}

// SearchSuggestions returns bare words (no tree) for typeahead, capped at limit.
func (r *Repo) SearchSuggestions(ctx context.Context, query string, limit int) ([]domain.Word, error) {
	if limit <= 0 {
		limit = 10
	}

	pattern := "%" + query + "%"
	sqlStr, args, err := qb.
		Select(wordColumns).
		From("words").
		Where(sq.Or{
			sq.ILike{"kanji": pattern},
			sq.ILike{"kana": pattern},
		}).
		OrderBy("created_at", "id").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build suggestions: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.db)

	var rows []wordRow
	if err := pgxscan.Select(ctx, q, &rows, sqlStr, args...); err != nil {
		return nil, postgres.MapError(err, "word suggestions")
	}

	return toDomainWords(rows), nil
}

// searchWords runs a word query and loads the gloss/example tree.
func (r *Repo) searchWords(ctx context.Context, sqlStr string, args []any) ([]domain.Word, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var rows []wordRow
	if err := pgxscan.Select(ctx, q, &rows, sqlStr, args...); err != nil {
		return nil, postgres.MapError(err, "word search")
	}

	return r.loadTree(ctx, toDomainWords(rows))
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// UpsertWord creates the word if the (kanji, kana) identity is new, marking it
// cached. For an existing record only empty fields are backfilled; populated
// parts_of_speech and jlpt_level are never overwritten. The lookup-before-
// create is not race-proof: a concurrent duplicate insert is tolerated and
// resolved on read by GetByText's first-record-wins ordering.
func (r *Repo) UpsertWord(ctx context.Context, kanji, kana *string, partsOfSpeech string, level *domain.JLPTLevel) (*domain.Word, error) {
	if kanji == nil && kana == nil {
		return nil, domain.NewValidationError("headword", "kanji or kana required")
	}

	q := postgres.QuerierFromCtx(ctx, r.db)

	existing, err := r.GetByText(ctx, kanji, kana)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC().Truncate(time.Microsecond)

	if existing == nil {
		w := domain.Word{
			ID:            uuid.New(),
			Kanji:         kanji,
			Kana:          kana,
			PartsOfSpeech: partsOfSpeech,
			JLPTLevel:     level,
			IsCached:      true,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if _, err := q.Exec(ctx, insertWordSQL, w.ID, w.Kanji, w.Kana, w.PartsOfSpeech, levelToString(w.JLPTLevel), w.IsCached, now); err != nil {
			return nil, postgres.MapError(err, "insert word")
		}
		return &w, nil
	}

	if existing.FillMissing(partsOfSpeech, level) {
		existing.UpdatedAt = now
		if _, err := q.Exec(ctx, updateWordSQL, existing.ID, existing.PartsOfSpeech, levelToString(existing.JLPTLevel), existing.IsCached, now); err != nil {
			return nil, postgres.MapError(err, "update word")
		}
	}

	return existing, nil
}

// UpsertGloss creates the gloss if no gloss with the same text exists for the
// word. A unique-violation race resolves to the concurrently created row.
func (r *Repo) UpsertGloss(ctx context.Context, wordID uuid.UUID, text string) (*domain.Gloss, error) {
	if text == "" {
		return nil, domain.NewValidationError("text", "required")
	}

	q := postgres.QuerierFromCtx(ctx, r.db)

	existing, err := r.getGloss(ctx, wordID, text)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	g := domain.Gloss{
		ID:        uuid.New(),
		WordID:    wordID,
		Text:      text,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	if _, err := q.Exec(ctx, insertGlossSQL, g.ID, g.WordID, g.Text, g.CreatedAt); err != nil {
		mapped := postgres.MapError(err, "insert gloss")
		if errors.Is(mapped, domain.ErrAlreadyExists) {
			return r.getGloss(ctx, wordID, text)
		}
		return nil, mapped
	}

	return &g, nil
}

// UpsertExample creates the example if (gloss, source, source id) is new.
// Returns created=false when the example already exists, including when the
// insert loses a race despite the pre-check: a duplicate is a no-op, not an
// error.
func (r *Repo) UpsertExample(ctx context.Context, glossID uuid.UUID, sourceSlug, sourceID, japanese string, english *string) (*domain.Example, bool, error) {
	if sourceID == "" {
		return nil, false, domain.NewValidationError("source_id", "required")
	}

	q := postgres.QuerierFromCtx(ctx, r.db)

	existing, err := r.getExample(ctx, glossID, sourceSlug, sourceID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	e := domain.Example{
		ID:         uuid.New(),
		GlossID:    glossID,
		SourceSlug: sourceSlug,
		SourceID:   sourceID,
		Japanese:   japanese,
		English:    english,
		CreatedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}
	if _, err := q.Exec(ctx, insertExampleSQL, e.ID, e.GlossID, e.SourceSlug, e.SourceID, e.Japanese, e.English, e.CreatedAt); err != nil {
		mapped := postgres.MapError(err, "insert example")
		if errors.Is(mapped, domain.ErrAlreadyExists) {
			existing, err := r.getExample(ctx, glossID, sourceSlug, sourceID)
			if err != nil {
				return nil, false, err
			}
			return existing, false, nil
		}
		return nil, false, mapped
	}

	return &e, true, nil
}

// ---------------------------------------------------------------------------
// Tree loading
// ---------------------------------------------------------------------------

// loadTree attaches glosses and examples to the given words in two batch
// queries.
func (r *Repo) loadTree(ctx context.Context, words []domain.Word) ([]domain.Word, error) {
	if len(words) == 0 {
		return []domain.Word{}, nil
	}

	q := postgres.QuerierFromCtx(ctx, r.db)

	wordIDs := make([]uuid.UUID, len(words))
	for i := range words {
		wordIDs[i] = words[i].ID
	}

	var glossRows []glossRow
	if err := pgxscan.Select(ctx, q, &glossRows, listGlossesByWordIDsSQL, wordIDs); err != nil {
		return nil, postgres.MapError(err, "list glosses")
	}

	glossIDs := make([]uuid.UUID, len(glossRows))
	for i := range glossRows {
		glossIDs[i] = glossRows[i].ID
	}

	examplesByGloss := make(map[uuid.UUID][]domain.Example)
	if len(glossIDs) > 0 {
		var exampleRows []exampleRow
		if err := pgxscan.Select(ctx, q, &exampleRows, listExamplesByGlossIDsSQL, glossIDs); err != nil {
			return nil, postgres.MapError(err, "list examples")
		}
		for _, row := range exampleRows {
			examplesByGloss[row.GlossID] = append(examplesByGloss[row.GlossID], row.toDomain())
		}
	}

	glossesByWord := make(map[uuid.UUID][]domain.Gloss)
	for _, row := range glossRows {
		g := row.toDomain()
		g.Examples = examplesByGloss[g.ID]
		glossesByWord[g.WordID] = append(glossesByWord[g.WordID], g)
	}

	for i := range words {
		words[i].Glosses = glossesByWord[words[i].ID]
	}

	return words, nil
}

// ---------------------------------------------------------------------------
// Internal lookups
// ---------------------------------------------------------------------------

func (r *Repo) getGloss(ctx context.Context, wordID uuid.UUID, text string) (*domain.Gloss, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var row glossRow
	if err := pgxscan.Get(ctx, q, &row, getGlossSQL, wordID, text); err != nil {
		if pgxscan.NotFound(err) {
			return nil, fmt.Errorf("gloss: %w", domain.ErrNotFound)
		}
		return nil, postgres.MapError(err, "gloss")
	}

	g := row.toDomain()
	return &g, nil
}

func (r *Repo) getExample(ctx context.Context, glossID uuid.UUID, sourceSlug, sourceID string) (*domain.Example, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var row exampleRow
	if err := pgxscan.Get(ctx, q, &row, getExampleSQL, glossID, sourceSlug, sourceID); err != nil {
		if pgxscan.NotFound(err) {
			return nil, fmt.Errorf("example: %w", domain.ErrNotFound)
		}
		return nil, postgres.MapError(err, "example")
	}

	e := row.toDomain()
	return &e, nil
}

func levelToString(l *domain.JLPTLevel) *string {
	if l == nil {
		return nil
	}
	s := l.String()
	return &s
}
