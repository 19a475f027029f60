package domain

import (
	"time"

	"github.com/google/uuid"
)

// SearchHistoryEntry records that a user searched for a word. A user has at
// most one entry per word: the first search wins, later duplicates are
// dropped without refreshing the timestamp.
type SearchHistoryEntry struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	WordID     uuid.UUID
	SearchedAt time.Time

	// Denormalized headword fields for the read model.
	Kanji *string
	Kana  *string
}
