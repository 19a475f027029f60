package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/heartmarshall/kotoba-backend/internal/adapter/postgres/testutil"
)

func strPtr(s string) *string { return &s }

func TestRepo_Exists(t *testing.T) {
	userID := uuid.New()
	wordID := uuid.New()

	tests := []struct {
		name   string
		exists bool
	}{
		{name: "present", exists: true},
		{name: "absent", exists: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			querier, mock := testutil.NewMockQuerier(t)
			repo := New(querier)

			mock.ExpectQuery(`SELECT EXISTS`).
				WithArgs(userID, wordID).
				WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(tt.exists))

			got, err := repo.Exists(context.Background(), userID, wordID)
			if err != nil {
				t.Fatalf("Exists() unexpected error: %v", err)
			}
			if got != tt.exists {
				t.Errorf("Exists() = %v, want %v", got, tt.exists)
			}

			testutil.ExpectationsWereMet(t, mock)
		})
	}
}

func TestRepo_Create(t *testing.T) {
	userID := uuid.New()
	wordID := uuid.New()

	querier, mock := testutil.NewMockQuerier(t)
	repo := New(querier)

	mock.ExpectExec(`INSERT INTO search_history`).
		WithArgs(pgxmock.AnyArg(), userID, wordID, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Create(context.Background(), userID, wordID); err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}

	testutil.ExpectationsWereMet(t, mock)
}

func TestRepo_Create_DuplicateIsNoOp(t *testing.T) {
	userID := uuid.New()
	wordID := uuid.New()

	querier, mock := testutil.NewMockQuerier(t)
	repo := New(querier)

	mock.ExpectExec(`INSERT INTO search_history`).
		WithArgs(pgxmock.AnyArg(), userID, wordID, pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	if err := repo.Create(context.Background(), userID, wordID); err != nil {
		t.Fatalf("Create() duplicate should be a no-op, got: %v", err)
	}

	testutil.ExpectationsWereMet(t, mock)
}

func TestRepo_Create_OtherErrorPropagates(t *testing.T) {
	querier, mock := testutil.NewMockQuerier(t)
	repo := New(querier)

	mock.ExpectExec(`INSERT INTO search_history`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("connection reset"))

	if err := repo.Create(context.Background(), uuid.New(), uuid.New()); err == nil {
		t.Fatal("Create() expected error")
	}

	testutil.ExpectationsWereMet(t, mock)
}

func TestRepo_ListRecent(t *testing.T) {
	userID := uuid.New()
	now := time.Now()

	querier, mock := testutil.NewMockQuerier(t)
	repo := New(querier)

	entryID := uuid.New()
	wordID := uuid.New()
	mock.ExpectQuery(`FROM search_history`).
		WithArgs(userID, 30).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "word_id", "searched_at", "kanji", "kana"}).
			AddRow(entryID, userID, wordID, now, strPtr("水"), strPtr("みず")))

	entries, err := repo.ListRecent(context.Background(), userID, 30)
	if err != nil {
		t.Fatalf("ListRecent() unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("ListRecent() = %d entries, want 1", len(entries))
	}
	if entries[0].WordID != wordID {
		t.Errorf("WordID = %v, want %v", entries[0].WordID, wordID)
	}
	if entries[0].Kanji == nil || *entries[0].Kanji != "水" {
		t.Errorf("Kanji = %v, want 水", entries[0].Kanji)
	}

	testutil.ExpectationsWereMet(t, mock)
}
