package util

import "testing"

func TestSanitizePostgresText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain utf8",
			input: "hello world",
			want:  "hello world",
		},
		{
			name:  "contains null byte",
			input: "hel\x00lo",
			want:  "hello",
		},
		{
			name:  "contains invalid utf8",
			input: string([]byte{'a', 0xff, 'b'}),
			want:  "ab",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizePostgresText(tt.input)
			if got != tt.want {
				t.Fatalf("unexpected sanitized value: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCanonicalizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "trims surrounding whitespace",
			input: "  Bion-M 1  ",
			want:  "Bion-M 1",
		},
		{
			name:  "collapses internal whitespace runs",
			input: "Flight \t Group",
			want:  "Flight Group",
		},
		{
			name:  "preserves casing",
			input: "bone LOSS",
			want:  "bone LOSS",
		},
		{
			name:  "whitespace only",
			input: " \n\t ",
			want:  "",
		},
		{
			name:  "already canonical",
			input: "Pelvic Bone",
			want:  "Pelvic Bone",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CanonicalizeName(tt.input)
			if got != tt.want {
				t.Fatalf("unexpected canonical name: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTruncateChars(t *testing.T) {
	tests := []struct {
		name  string
		input string
		n     int
		want  string
	}{
		{
			name:  "shorter than limit",
			input: "microgravity",
			n:     100,
			want:  "microgravity",
		},
		{
			name:  "exactly at limit",
			input: "bone",
			n:     4,
			want:  "bone",
		},
		{
			name:  "cut at limit",
			input: "osteoclast",
			n:     5,
			want:  "osteo",
		},
		{
			name:  "multibyte runes are not split",
			input: "µCT scan",
			n:     3,
			want:  "µCT",
		},
		{
			name:  "zero limit",
			input: "anything",
			n:     0,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateChars(tt.input, tt.n)
			if got != tt.want {
				t.Fatalf("unexpected truncation: got %q, want %q", got, tt.want)
			}
		})
	}
}
