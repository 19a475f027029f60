package domain

import "strings"

// JLPTLevel is a Japanese-Language-Proficiency-Test difficulty tier,
// N5 (easiest) to N1 (hardest).
type JLPTLevel string

const (
	JLPTLevelN1 JLPTLevel = "N1"
	JLPTLevelN2 JLPTLevel = "N2"
	JLPTLevelN3 JLPTLevel = "N3"
	JLPTLevelN4 JLPTLevel = "N4"
	JLPTLevelN5 JLPTLevel = "N5"
)

func (l JLPTLevel) String() string { return string(l) }

func (l JLPTLevel) IsValid() bool {
	switch l {
	case JLPTLevelN1, JLPTLevelN2, JLPTLevelN3, JLPTLevelN4, JLPTLevelN5:
		return true
	}
	return false
}

// JLPTFromTag parses a source tag of the form "jlpt-n<digit>" into a level.
// Returns false for anything else.
func JLPTFromTag(tag string) (JLPTLevel, bool) {
	const prefix = "jlpt-"
	if !strings.HasPrefix(tag, prefix) {
		return "", false
	}
	level := JLPTLevel(strings.ToUpper(strings.TrimPrefix(tag, prefix)))
	if !level.IsValid() {
		return "", false
	}
	return level, true
}
