package provider

// DefinitionResult is one raw entry from an external word-definition source.
// JLPT tags are carried verbatim ("jlpt-n5", ...); the ingest layer derives
// the domain level from them.
type DefinitionResult struct {
	Kanji    *string
	Kana     *string
	Senses   []DefinitionSense
	JLPTTags []string
}

// DefinitionSense is one sense of a definition entry.
type DefinitionSense struct {
	EnglishDefinitions []string
	PartsOfSpeech      []string
}

// SentenceResult is one candidate example sentence from an external
// sentence-search source. ID is the source's stable identifier; candidates
// without one are never persisted.
type SentenceResult struct {
	ID       string
	Japanese string
	English  *string
}
