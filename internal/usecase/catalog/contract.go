package catalog

import (
	"context"

	"github.com/refindlab/refind/internal/domain"
	"github.com/refindlab/refind/internal/domain/item"
)

// Repository defines the storage contract for catalog items.
type Repository interface {
	Create(ctx context.Context, it item.Item) (item.Item, error)
	Update(ctx context.Context, it item.Item) error
	Get(ctx context.Context, kind item.Kind, id int64) (item.Item, error)
	List(ctx context.Context, kind item.Kind, f item.Filter) ([]item.Item, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Analyzer extracts categories, colors, and a caption from an image.
type Analyzer interface {
	Analyze(ctx context.Context, path string) (domain.ImageAnalysis, error)
}
