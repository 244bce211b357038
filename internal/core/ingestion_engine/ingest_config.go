package ingestion_engine

// IngestConfig tunes the ingestion pipeline.
//
// ChunkBytes:        hard encoded-byte ceiling per chunk (e.g. 36000).
// ChunkOverlapBytes: bytes duplicated from each chunk's tail into the
//                    next chunk's head (0 disables overlap).
// MetadataTextBytes: byte budget for the page-level text snapshot
//                    stored as retrievable metadata on every chunk.
// PageWorkers:       parallelism for per-page preparation.
// EmbedWorkers:      parallelism for per-chunk embedding.
type IngestConfig struct {
	ChunkBytes        int
	ChunkOverlapBytes int
	MetadataTextBytes int
	PageWorkers       int
	EmbedWorkers      int
}

// DefaultIngestConfig returns the tuning used in production.
func DefaultIngestConfig() *IngestConfig {
	return &IngestConfig{
		ChunkBytes:        36000,
		ChunkOverlapBytes: 0,
		MetadataTextBytes: 36000,
		PageWorkers:       4,
		EmbedWorkers:      8,
	}
}

func (c *IngestConfig) withDefaults() *IngestConfig {
	out := DefaultIngestConfig()
	if c == nil {
		return out
	}
	if c.ChunkBytes > 0 {
		out.ChunkBytes = c.ChunkBytes
	}
	if c.ChunkOverlapBytes > 0 {
		out.ChunkOverlapBytes = c.ChunkOverlapBytes
	}
	if c.MetadataTextBytes > 0 {
		out.MetadataTextBytes = c.MetadataTextBytes
	}
	if c.PageWorkers > 0 {
		out.PageWorkers = c.PageWorkers
	}
	if c.EmbedWorkers > 0 {
		out.EmbedWorkers = c.EmbedWorkers
	}
	return out
}
