package extractor

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"code.sajari.com/docconv"

	"github.com/docuchat-ai/docuchat/internal/core"
	"github.com/docuchat-ai/docuchat/internal/models"
)

var _ core.PageExtractor = (*DocconvExtractor)(nil)

// DocconvExtractor parses PDF bytes into pages using sajari/docconv.
// docconv drives pdftotext under the hood, which separates pages with
// form feed characters; splitting on those recovers the page structure.
type DocconvExtractor struct {
	contentType string
}

func NewDocconvExtractor() *DocconvExtractor {
	return &DocconvExtractor{contentType: "application/pdf"}
}

// ExtractPages converts the document and returns its pages in reading
// order with 1-based page numbers. Pages that extract to nothing are
// kept (they simply yield no chunks downstream) so page numbering stays
// aligned with the source document.
func (e *DocconvExtractor) ExtractPages(ctx context.Context, data []byte) ([]models.Page, error) {
	res, err := docconv.Convert(bytes.NewReader(data), e.contentType, false)
	if err != nil {
		return nil, fmt.Errorf("docconv convert: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if res == nil || res.Body == "" {
		return nil, fmt.Errorf("docconv: no text extracted")
	}
	return SplitPages(res.Body), nil
}

// SplitPages splits extracted text on form feeds into 1-based pages.
func SplitPages(text string) []models.Page {
	parts := strings.Split(text, "\f")
	// pdftotext usually leaves a trailing form feed; drop the empty
	// tail so the page count matches the document.
	if n := len(parts); n > 1 && strings.TrimSpace(parts[n-1]) == "" {
		parts = parts[:n-1]
	}

	pages := make([]models.Page, 0, len(parts))
	for i, part := range parts {
		pages = append(pages, models.Page{
			PageContent: part,
			PageNumber:  i + 1,
		})
	}
	return pages
}
