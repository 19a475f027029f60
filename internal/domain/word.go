package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Word is a cached dictionary headword. At least one of Kanji/Kana is set.
// IsCached marks records that were resolved from an external source and can
// be served as authoritative cache hits.
type Word struct {
	ID            uuid.UUID
	Kanji         *string
	Kana          *string
	PartsOfSpeech string
	JLPTLevel     *JLPTLevel
	IsCached      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Glosses []Gloss
}

// Headword returns the canonical written form: kanji when present, kana otherwise.
func (w *Word) Headword() string {
	if w.Kanji != nil && *w.Kanji != "" {
		return *w.Kanji
	}
	if w.Kana != nil {
		return *w.Kana
	}
	return ""
}

// FillMissing backfills fields that are currently empty from a later external
// resolution and marks the word as cached. Populated fields are never
// overwritten, so manually curated or previously enriched data survives a
// sparser response. Returns true if anything changed.
func (w *Word) FillMissing(partsOfSpeech string, level *JLPTLevel) bool {
	changed := false
	if partsOfSpeech != "" && w.PartsOfSpeech == "" {
		w.PartsOfSpeech = partsOfSpeech
		changed = true
	}
	if level != nil && w.JLPTLevel == nil {
		w.JLPTLevel = level
		changed = true
	}
	if !w.IsCached {
		w.IsCached = true
		changed = true
	}
	return changed
}

// Gloss is one sense of a word: a semicolon-joined set of English definitions.
// Gloss text is unique per word.
type Gloss struct {
	ID        uuid.UUID
	WordID    uuid.UUID
	Text      string
	CreatedAt time.Time

	Examples []Example
}

// Keywords splits the gloss text into meaning keywords for the fallback
// example search.
func (g *Gloss) Keywords() []string {
	var out []string
	for _, part := range strings.Split(g.Text, ";") {
		if kw := strings.TrimSpace(part); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

// Example is a usage example attached to a gloss. SourceID is the stable
// identifier from the external source; examples without one are never
// persisted. (gloss, source, source id) is unique.
type Example struct {
	ID         uuid.UUID
	GlossID    uuid.UUID
	SourceSlug string
	SourceID   string
	Japanese   string
	English    *string
	CreatedAt  time.Time
}
