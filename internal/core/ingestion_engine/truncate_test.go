package ingestion_engine

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncateBytes(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{"empty input", "", 10, ""},
		{"fits entirely", "hello", 10, "hello"},
		{"exact fit", "hello", 5, "hello"},
		{"ascii cut", "hello world", 5, "hello"},
		{"zero limit", "hello", 0, ""},
		{"negative limit", "hello", -1, ""},
		{"cut inside two-byte rune", "héllo", 2, "h"}, // é is 2 bytes starting at index 1
		{"cut after two-byte rune", "héllo", 3, "hé"},
		{"cut inside four-byte rune", "a𝄞b", 3, "a"}, // 𝄞 is 4 bytes
		{"multibyte only", "日本語", 4, "日"},           // each rune is 3 bytes
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateBytes(tt.in, tt.limit)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTruncateBytesProperties(t *testing.T) {
	inputs := []string{
		"",
		"plain ascii text",
		"mixé de caractères accentués",
		"日本語のテキストです",
		"emoji 🎉🎊 mixed with ascii",
		strings.Repeat("𝄞", 100),
	}

	for _, in := range inputs {
		for limit := 0; limit <= len(in)+2; limit++ {
			got := TruncateBytes(in, limit)

			assert.True(t, utf8.ValidString(got), "output must decode cleanly for %q limit %d", in, limit)
			assert.LessOrEqual(t, len(got), limit, "output must respect the byte bound")
			assert.True(t, strings.HasPrefix(in, got), "output must be a prefix of the input")
			if len(in) <= limit {
				assert.Equal(t, in, got, "input within the bound must pass through unchanged")
			}
		}
	}
}
