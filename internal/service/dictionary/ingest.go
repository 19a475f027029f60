package dictionary

import (
	"context"
	"strings"

	"github.com/heartmarshall/kotoba-backend/internal/domain"
	"github.com/heartmarshall/kotoba-backend/internal/provider"
)

// ingestEntry upserts one raw definition entry: the word plus one gloss per
// sense that has English definitions. Returns nil for entries with no usable
// headword.
func (s *Service) ingestEntry(ctx context.Context, entry provider.DefinitionResult) (*domain.Word, error) {
	if entry.Kanji == nil && entry.Kana == nil {
		return nil, nil
	}

	parts := gatherPartsOfSpeech(entry.Senses)
	level := deriveJLPTLevel(entry.JLPTTags)

	w, err := s.words.UpsertWord(ctx, entry.Kanji, entry.Kana, parts, level)
	if err != nil {
		return nil, err
	}

	for _, sense := range entry.Senses {
		text := glossText(sense)
		if text == "" {
			continue
		}
		if _, err := s.words.UpsertGloss(ctx, w.ID, text); err != nil {
			return nil, err
		}
	}

	return w, nil
}

// gatherPartsOfSpeech concatenates the POS tags of all senses, removing
// duplicates while preserving first-seen order.
func gatherPartsOfSpeech(senses []provider.DefinitionSense) string {
	var ordered []string
	seen := make(map[string]struct{})
	for _, sense := range senses {
		for _, pos := range sense.PartsOfSpeech {
			if pos == "" {
				continue
			}
			if _, ok := seen[pos]; ok {
				continue
			}
			seen[pos] = struct{}{}
			ordered = append(ordered, pos)
		}
	}
	return strings.Join(ordered, ", ")
}

// deriveJLPTLevel maps the first recognizable "jlpt-n<digit>" tag to a level.
func deriveJLPTLevel(tags []string) *domain.JLPTLevel {
	for _, tag := range tags {
		if level, ok := domain.JLPTFromTag(tag); ok {
			return &level
		}
	}
	return nil
}

// glossText joins a sense's English definitions into one gloss string.
func glossText(sense provider.DefinitionSense) string {
	var defs []string
	for _, d := range sense.EnglishDefinitions {
		if d != "" {
			defs = append(defs, d)
		}
	}
	return strings.Join(defs, "; ")
}
