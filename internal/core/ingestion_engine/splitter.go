package ingestion_engine

import (
	"strings"
	"unicode/utf8"
)

// defaultSeparators is the descending priority list the splitter tries:
// paragraph break, line break, sentence boundary, word boundary, and
// finally individual runes. The empty string marks the rune-level last
// resort.
var defaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Splitter cuts a text block into ordered segments whose encoded byte
// length never exceeds ChunkBytes.
//
// It recursively picks the highest-priority separator present in the
// text, splits on it keeping the separator attached, and re-splits any
// oversized piece with the remaining separators. Pieces are then packed
// greedily back into chunks up to the ceiling, so concatenating the
// chunks (minus any configured overlap) reproduces the input exactly.
//
// OverlapBytes duplicates the tail of each emitted chunk into the head
// of the next one. The ceiling always wins: if seeding the overlap
// would push a chunk past ChunkBytes, the overlap is skipped at that
// boundary.
type Splitter struct {
	ChunkBytes   int
	OverlapBytes int

	separators []string
}

// NewSplitter builds a splitter with the given byte ceiling and
// overlap. Non-positive chunkBytes falls back to 36000; negative
// overlap is treated as zero.
func NewSplitter(chunkBytes, overlapBytes int) *Splitter {
	if chunkBytes <= 0 {
		chunkBytes = 36000
	}
	if overlapBytes < 0 {
		overlapBytes = 0
	}
	return &Splitter{
		ChunkBytes:   chunkBytes,
		OverlapBytes: overlapBytes,
		separators:   defaultSeparators,
	}
}

// Split segments text into chunks in reading order. Empty input yields
// no chunks. Every returned chunk satisfies len(chunk) <= ChunkBytes.
func (s *Splitter) Split(text string) []string {
	if text == "" {
		return nil
	}
	return s.merge(s.split(text, s.separators))
}

// split produces bounded pieces whose concatenation equals text.
func (s *Splitter) split(text string, seps []string) []string {
	if len(text) <= s.ChunkBytes {
		return []string{text}
	}

	sep := ""
	rest := seps
	for i, cand := range seps {
		if cand == "" {
			sep = ""
			break
		}
		if strings.Contains(text, cand) {
			sep = cand
			rest = seps[i+1:]
			break
		}
	}
	if sep == "" {
		return splitRunes(text, s.ChunkBytes)
	}

	var out []string
	for _, part := range strings.SplitAfter(text, sep) {
		if part == "" {
			continue
		}
		if len(part) <= s.ChunkBytes {
			out = append(out, part)
			continue
		}
		out = append(out, s.split(part, rest)...)
	}
	return out
}

// merge packs pieces greedily into chunks up to the byte ceiling,
// seeding each new chunk with the overlap tail of the previous one.
func (s *Splitter) merge(pieces []string) []string {
	var (
		chunks []string
		cur    []string
		curLen int
	)
	for _, p := range pieces {
		if curLen > 0 && curLen+len(p) > s.ChunkBytes {
			chunk := strings.Join(cur, "")
			chunks = append(chunks, chunk)
			cur, curLen = cur[:0], 0

			if s.OverlapBytes > 0 {
				if tail := overlapTail(chunk, s.OverlapBytes); tail != "" && len(tail)+len(p) <= s.ChunkBytes {
					cur = append(cur, tail)
					curLen = len(tail)
				}
			}
		}
		cur = append(cur, p)
		curLen += len(p)
	}
	if curLen > 0 {
		chunks = append(chunks, strings.Join(cur, ""))
	}
	return chunks
}

// splitRunes is the last resort: cut at rune boundaries so every piece
// stays within limit bytes and decodes cleanly.
func splitRunes(text string, limit int) []string {
	var out []string
	for len(text) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		if cut == 0 {
			// A single rune wider than the limit; emit it whole rather
			// than corrupt the encoding.
			_, cut = utf8.DecodeRuneInString(text)
		}
		out = append(out, text[:cut])
		text = text[cut:]
	}
	if text != "" {
		out = append(out, text)
	}
	return out
}

// overlapTail returns a rune-aligned suffix of chunk no longer than
// overlap bytes.
func overlapTail(chunk string, overlap int) string {
	if len(chunk) <= overlap {
		return chunk
	}
	start := len(chunk) - overlap
	for start < len(chunk) && !utf8.RuneStart(chunk[start]) {
		start++
	}
	return chunk[start:]
}
