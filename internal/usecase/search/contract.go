package search

import (
	"context"

	"github.com/refindlab/refind/internal/domain"
	"github.com/refindlab/refind/internal/domain/item"
)

// CatalogReader lists items for candidate building, with catalog-side
// pre-filtering.
type CatalogReader interface {
	List(ctx context.Context, kind item.Kind, f item.Filter) ([]item.Item, error)
}

// Embedder vectorizes query text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Analyzer reads a query image for image search.
type Analyzer interface {
	Analyze(ctx context.Context, path string) (domain.ImageAnalysis, error)
}
