package ingestion_engine

import (
	"strings"

	"github.com/docuchat-ai/docuchat/internal/models"
)

// PrepareDocument turns one extracted page into ordered chunk records.
//
// The raw page content is first stripped of newline characters (the
// extractor's line breaks carry no meaning for retrieval), then run
// through the splitter. Every chunk of the page gets the same metadata:
// its page number and a byte-truncated snapshot of the full cleaned
// page text. The snapshot is page-level on purpose, it lets a retrieval
// hit display surrounding context while the vector stays chunk-level.
//
// Whitespace-only pages produce zero chunks. Pure transformation, no
// side effects.
func PrepareDocument(page models.Page, splitter *Splitter, metadataBytes int) []models.Chunk {
	content := strings.ReplaceAll(page.PageContent, "\n", "")

	meta := models.ChunkMetadata{
		PageNumber: page.PageNumber,
		Text:       TruncateBytes(content, metadataBytes),
	}

	var chunks []models.Chunk
	for _, text := range splitter.Split(content) {
		if strings.TrimSpace(text) == "" {
			continue
		}
		chunks = append(chunks, models.Chunk{Text: text, Metadata: meta})
	}
	return chunks
}
