package domain

import "testing"

func TestNormalizeQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trims whitespace", "  犬  ", "犬"},
		{"lowercases", "Inu", "inu"},
		{"compresses spaces", "to   eat", "to eat"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"kana untouched", "たべる", "たべる"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeQuery(tt.input); got != tt.want {
				t.Errorf("NormalizeQuery(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
