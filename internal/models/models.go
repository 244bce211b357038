package models

// Page is one unit of extracted text from a source PDF.
// Pages come out of the extractor in reading order and are never
// mutated afterwards.
type Page struct {
	PageContent string `json:"page_content"`
	PageNumber  int    `json:"page_number"` // 1-based
}

// ChunkMetadata is the retrievable payload stored next to a vector.
//
// Text holds the truncated full-page text, not the chunk's own text:
// every chunk of a page carries the same page-level snapshot so a
// retrieval hit can show surrounding context. The vector itself stays
// chunk-granular.
type ChunkMetadata struct {
	Text       string `json:"text"`
	PageNumber int    `json:"pageNumber"`
}

// Chunk is a bounded text segment derived from one Page. Chunks never
// span pages; a page may yield zero chunks if its cleaned content is
// empty.
type Chunk struct {
	Text     string        `json:"text"`
	Metadata ChunkMetadata `json:"metadata"`
}

// VectorRecord is the unit persisted to the vector index.
//
// ID is a content hash of the chunk text, so re-ingesting identical
// content produces the same id and the upsert overwrites instead of
// duplicating.
type VectorRecord struct {
	ID       string        `json:"id"`
	Values   []float32     `json:"values"`
	Metadata ChunkMetadata `json:"metadata"`
}

// SearchMatch is one similarity-search hit, scoped to a namespace.
// Score is cosine similarity; higher means closer.
type SearchMatch struct {
	ID       string        `json:"id"`
	Score    float32       `json:"score"`
	Metadata ChunkMetadata `json:"metadata"`
}

// Document is the representative artifact an ingestion run returns to
// the request layer: enough for a preview and for addressing the
// indexed records later.
type Document struct {
	FileKey    string `json:"file_key"`
	Namespace  string `json:"namespace"`
	PageCount  int    `json:"page_count"`
	ChunkCount int    `json:"chunk_count"`
	Preview    *Chunk `json:"preview,omitempty"` // first chunk of the first page
}
