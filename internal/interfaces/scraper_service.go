package interfaces

import (
	"context"

	"github.com/ternarybob/reperio/internal/models"
)

// ScraperService fetches a page and extracts its readable text content.
// The retrieval core makes no assumption about how text was obtained; this
// is the one component that performs network I/O.
type ScraperService interface {
	Scrape(ctx context.Context, url string) (*models.ScrapeResult, error)
}
