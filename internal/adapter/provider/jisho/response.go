package jisho

// apiResponse is the envelope of the jisho.org words API.
type apiResponse struct {
	Data []apiEntry `json:"data"`
}

// apiEntry is a single dictionary entry. Japanese holds the written-form
// variants; the first variant is the canonical headword/reading pair.
type apiEntry struct {
	Slug     string        `json:"slug"`
	Japanese []apiJapanese `json:"japanese"`
	Senses   []apiSense    `json:"senses"`
	JLPT     []string      `json:"jlpt"`
}

// apiJapanese is one written form: kanji word plus kana reading.
// Either field may be absent (kana-only words have no "word").
type apiJapanese struct {
	Word    string `json:"word"`
	Reading string `json:"reading"`
}

// apiSense is one sense with its English definitions and POS tags.
type apiSense struct {
	EnglishDefinitions []string `json:"english_definitions"`
	PartsOfSpeech      []string `json:"parts_of_speech"`
}
