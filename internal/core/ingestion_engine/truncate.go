package ingestion_engine

import "unicode/utf8"

// TruncateBytes bounds s to at most limit encoded bytes without
// splitting a multi-byte rune. The result is always valid UTF-8, which
// may mean returning fewer than limit bytes. A non-positive limit
// yields the empty string.
func TruncateBytes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if len(s) <= limit {
		return s
	}
	// Back up until the cut lands on a rune boundary.
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
