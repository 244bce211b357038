package core

import (
	"context"

	"github.com/docuchat-ai/docuchat/internal/models"
)

// PageExtractor parses raw document bytes into ordered pages.
// Page numbers are 1-based and follow reading order.
type PageExtractor interface {
	ExtractPages(ctx context.Context, data []byte) ([]models.Page, error)
}
