package ingestion_engine

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// NamespaceForKey derives the index namespace for a file key.
//
// The key is reduced to printable ASCII so it is safe for any index
// backend; everything else is dropped. The mapping is deterministic:
// the same key always lands in the same namespace, and namespaces are
// matched by exact string, so records from different file keys never
// mix even when their chunk text is identical.
//
// A key with no printable ASCII at all falls back to a hash of the
// original key rather than the empty namespace.
func NamespaceForKey(fileKey string) string {
	var b strings.Builder
	b.Grow(len(fileKey))
	for _, r := range fileKey {
		if r >= 0x21 && r <= 0x7e {
			b.WriteRune(r)
		}
	}
	ns := b.String()
	if ns == "" {
		sum := md5.Sum([]byte(fileKey))
		ns = "ns-" + hex.EncodeToString(sum[:])
	}
	return ns
}
