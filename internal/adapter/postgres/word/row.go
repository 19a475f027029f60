package word

import (
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/kotoba-backend/internal/domain"
)

// Row structs keep scanning concerns (db tags, nullable columns) out of the
// domain types.

type wordRow struct {
	ID            uuid.UUID `db:"id"`
	Kanji         *string   `db:"kanji"`
	Kana          *string   `db:"kana"`
	PartsOfSpeech string    `db:"parts_of_speech"`
	JLPTLevel     *string   `db:"jlpt_level"`
	IsCached      bool      `db:"is_cached"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (r wordRow) toDomain() domain.Word {
	w := domain.Word{
		ID:            r.ID,
		Kanji:         r.Kanji,
		Kana:          r.Kana,
		PartsOfSpeech: r.PartsOfSpeech,
		IsCached:      r.IsCached,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if r.JLPTLevel != nil {
		level := domain.JLPTLevel(*r.JLPTLevel)
		w.JLPTLevel = &level
	}
	return w
}

func toDomainWords(rows []wordRow) []domain.Word {
	words := make([]domain.Word, len(rows))
	for i, row := range rows {
		words[i] = row.toDomain()
	}
	return words
}

type glossRow struct {
	ID        uuid.UUID `db:"id"`
	WordID    uuid.UUID `db:"word_id"`
	Text      string    `db:"text"`
	CreatedAt time.Time `db:"created_at"`
}

func (r glossRow) toDomain() domain.Gloss {
	return domain.Gloss{
		ID:        r.ID,
		WordID:    r.WordID,
		Text:      r.Text,
		CreatedAt: r.CreatedAt,
	}
}

type exampleRow struct {
	ID         uuid.UUID `db:"id"`
	GlossID    uuid.UUID `db:"gloss_id"`
	SourceSlug string    `db:"source_slug"`
	SourceID   string    `db:"source_id"`
	Japanese   string    `db:"japanese"`
	English    *string   `db:"english"`
	CreatedAt  time.Time `db:"created_at"`
}

func (r exampleRow) toDomain() domain.Example {
	return domain.Example{
		ID:         r.ID,
		GlossID:    r.GlossID,
		SourceSlug: r.SourceSlug,
		SourceID:   r.SourceID,
		Japanese:   r.Japanese,
		English:    r.English,
		CreatedAt:  r.CreatedAt,
	}
}
