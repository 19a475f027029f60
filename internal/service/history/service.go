// Package history records which words a user has looked up and serves the
// recent-searches read model.
package history

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/kotoba-backend/internal/domain"
	"github.com/heartmarshall/kotoba-backend/pkg/ctxutil"
)

// readLimit caps the recent-searches read model. Older entries stay in the
// table, they just fall off the list.
const readLimit = 30

type historyRepo interface {
	Exists(ctx context.Context, userID, wordID uuid.UUID) (bool, error)
	Create(ctx context.Context, userID, wordID uuid.UUID) error
	ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]domain.SearchHistoryEntry, error)
}

// Service maintains per-user search history.
type Service struct {
	log     *slog.Logger
	entries historyRepo
}

// NewService creates a new history service.
func NewService(logger *slog.Logger, entries historyRepo) *Service {
	return &Service{
		log:     logger.With("service", "history"),
		entries: entries,
	}
}

// Record notes that the user's search resolved to the given words. Only the
// top result is recorded, a word already in the user's history is skipped,
// and anonymous requests are a no-op.
func (s *Service) Record(ctx context.Context, words []domain.Word) error {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok || len(words) == 0 {
		return nil
	}

	wordID := words[0].ID

	exists, err := s.entries.Exists(ctx, userID, wordID)
	if err != nil {
		return fmt.Errorf("check history: %w", err)
	}
	if exists {
		return nil
	}

	if err := s.entries.Create(ctx, userID, wordID); err != nil {
		return fmt.Errorf("record history: %w", err)
	}

	s.log.DebugContext(ctx, "history recorded",
		slog.String("user_id", userID.String()),
		slog.String("word_id", wordID.String()),
	)

	return nil
}

// ListRecent returns the user's most recent searches, newest first.
// Anonymous requests get an empty list.
func (s *Service) ListRecent(ctx context.Context) ([]domain.SearchHistoryEntry, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return []domain.SearchHistoryEntry{}, nil
	}

	return s.entries.ListRecent(ctx, userID, readLimit)
}
