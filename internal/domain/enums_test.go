package domain

import "testing"

func TestJLPTLevel_IsValid(t *testing.T) {
	t.Parallel()

	for _, l := range []JLPTLevel{JLPTLevelN1, JLPTLevelN2, JLPTLevelN3, JLPTLevelN4, JLPTLevelN5} {
		if !l.IsValid() {
			t.Errorf("%s.IsValid() = false, want true", l)
		}
	}

	for _, l := range []JLPTLevel{"", "N6", "n5", "N0"} {
		if l.IsValid() {
			t.Errorf("%q.IsValid() = true, want false", l)
		}
	}
}

func TestJLPTFromTag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tag    string
		want   JLPTLevel
		wantOK bool
	}{
		{"jlpt-n5", JLPTLevelN5, true},
		{"jlpt-n1", JLPTLevelN1, true},
		{"jlpt-n3", JLPTLevelN3, true},
		{"jlpt-n6", "", false},
		{"jlpt-", "", false},
		{"wanikani-5", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, ok := JLPTFromTag(tt.tag)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("JLPTFromTag(%q) = (%q, %v), want (%q, %v)", tt.tag, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
