// Package history implements the search-history store using PostgreSQL.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	"github.com/heartmarshall/kotoba-backend/internal/adapter/postgres"
	"github.com/heartmarshall/kotoba-backend/internal/domain"
)

// Repo provides search-history persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new history repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

const existsSQL = `
SELECT EXISTS (
    SELECT 1 FROM search_history WHERE user_id = $1 AND word_id = $2
)`

const insertSQL = `
INSERT INTO search_history (id, user_id, word_id, searched_at)
VALUES ($1, $2, $3, $4)`

// listRecentSQL joins words for the denormalized read model. The cap is a
// read-side limit, not a deletion policy.
const listRecentSQL = `
SELECT h.id, h.user_id, h.word_id, h.searched_at, w.kanji, w.kana
FROM search_history h
JOIN words w ON w.id = h.word_id
WHERE h.user_id = $1
ORDER BY h.searched_at DESC, h.id DESC
LIMIT $2`

// Exists reports whether the user already has a history entry for the word.
func (r *Repo) Exists(ctx context.Context, userID, wordID uuid.UUID) (bool, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var exists bool
	if err := q.QueryRow(ctx, existsSQL, userID, wordID).Scan(&exists); err != nil {
		return false, postgres.MapError(err, "history exists")
	}

	return exists, nil
}

// Create inserts a history entry. Losing a unique-violation race against a
// concurrent insert of the same (user, word) pair is a no-op: the first
// search wins either way.
func (r *Repo) Create(ctx context.Context, userID, wordID uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	now := time.Now().UTC().Truncate(time.Microsecond)
	if _, err := q.Exec(ctx, insertSQL, uuid.New(), userID, wordID, now); err != nil {
		mapped := postgres.MapError(err, "insert history")
		if errors.Is(mapped, domain.ErrAlreadyExists) {
			return nil
		}
		return mapped
	}

	return nil
}

// ListRecent returns the user's most recent entries, newest first.
func (r *Repo) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]domain.SearchHistoryEntry, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var rows []entryRow
	if err := pgxscan.Select(ctx, q, &rows, listRecentSQL, userID, limit); err != nil {
		return nil, postgres.MapError(err, "list history")
	}

	entries := make([]domain.SearchHistoryEntry, len(rows))
	for i, row := range rows {
		entries[i] = row.toDomain()
	}

	return entries, nil
}

type entryRow struct {
	ID         uuid.UUID `db:"id"`
	UserID     uuid.UUID `db:"user_id"`
	WordID     uuid.UUID `db:"word_id"`
	SearchedAt time.Time `db:"searched_at"`
	Kanji      *string   `db:"kanji"`
	Kana       *string   `db:"kana"`
}

func (r entryRow) toDomain() domain.SearchHistoryEntry {
	return domain.SearchHistoryEntry{
		ID:         r.ID,
		UserID:     r.UserID,
		WordID:     r.WordID,
		SearchedAt: r.SearchedAt,
		Kanji:      r.Kanji,
		Kana:       r.Kana,
	}
}
