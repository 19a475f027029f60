package tatoeba

import (
	"encoding/json"
	"strings"
)

// apiResponse is the envelope of the tatoeba search API. Results are kept
// raw so that one malformed candidate is skipped instead of failing the
// whole payload.
type apiResponse struct {
	Results []json.RawMessage `json:"results"`
}

// apiResult is a single sentence candidate.
type apiResult struct {
	ID           int64          `json:"id"`
	Text         string         `json:"text"`
	Translations translationSet `json:"translations"`
}

// translatedText is one English rendering of a candidate sentence.
type translatedText struct {
	ID   int64
	Text string
}

// translationSet decodes the English translations out of every payload shape
// tatoeba has served over time: a mapping keyed by language code, a list of
// per-language groups ({lang, sentences: [...]}), a flat list of translation
// objects, or nested lists of either. Shape mismatches are ignored, never an
// error: the contract is "extract what is recognizable, skip the rest".
type translationSet struct {
	English []translatedText
}

func (t *translationSet) UnmarshalJSON(data []byte) error {
	// Mapping keyed by language code.
	var byLang map[string]json.RawMessage
	if err := json.Unmarshal(data, &byLang); err == nil {
		for lang, raw := range byLang {
			if !isEnglish(lang) {
				continue
			}
			// Value is either a list of sentence objects or a single one.
			var items []json.RawMessage
			if err := json.Unmarshal(raw, &items); err == nil {
				for _, item := range items {
					t.collectSentence(item)
				}
				continue
			}
			t.collectSentence(raw)
		}
		return nil
	}

	// List of groups, translation objects, or nested lists.
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err == nil {
		for _, item := range items {
			t.collectNode(item)
		}
		return nil
	}

	// Unrecognized scalar shape: leave the set empty.
	return nil
}

// transNode is the superset of fields a list element may carry: a
// per-language group (Sentences set) or a single translation object.
type transNode struct {
	Lang      string            `json:"lang"`
	Language  string            `json:"language"`
	Sentences []json.RawMessage `json:"sentences"`
	ID        int64             `json:"id"`
	Text      string            `json:"text"`
	Sentence  *transSentence    `json:"sentence"`
}

// transSentence is a sentence object, possibly nested under "sentence".
type transSentence struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

// collectNode handles one list element: group, single object, or nested list.
func (t *translationSet) collectNode(raw json.RawMessage) {
	var node transNode
	if err := json.Unmarshal(raw, &node); err == nil {
		lang := node.Lang
		if lang == "" {
			lang = node.Language
		}

		if node.Sentences != nil {
			if isEnglish(lang) {
				for _, s := range node.Sentences {
					t.collectSentence(s)
				}
			}
			return
		}

		if isEnglish(lang) {
			if node.Text != "" {
				t.English = append(t.English, translatedText{ID: node.ID, Text: node.Text})
			} else if node.Sentence != nil && node.Sentence.Text != "" {
				t.English = append(t.English, translatedText{ID: node.Sentence.ID, Text: node.Sentence.Text})
			}
		}
		return
	}

	// Nested list element.
	var nested []json.RawMessage
	if err := json.Unmarshal(raw, &nested); err == nil {
		for _, item := range nested {
			t.collectNode(item)
		}
	}
}

// collectSentence extracts text/id from a sentence object, tolerating the
// wrapped {"sentence": {...}} form.
func (t *translationSet) collectSentence(raw json.RawMessage) {
	var s transSentence
	if err := json.Unmarshal(raw, &s); err == nil && s.Text != "" {
		t.English = append(t.English, translatedText{ID: s.ID, Text: s.Text})
		return
	}

	var wrapped struct {
		Sentence *transSentence `json:"sentence"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Sentence != nil && wrapped.Sentence.Text != "" {
		t.English = append(t.English, translatedText{ID: wrapped.Sentence.ID, Text: wrapped.Sentence.Text})
	}
}

// isEnglish matches "eng", "en", "en_US" and friends.
func isEnglish(lang string) bool {
	return strings.HasPrefix(lang, "en")
}
