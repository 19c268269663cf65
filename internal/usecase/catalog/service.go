// Package catalog handles intake and listing of lost/found reports,
// enriching each item with AI-derived signals at write time.
package catalog

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/refindlab/refind/internal/domain/item"
)

// Draft is the caller-supplied item input before enrichment.
type Draft struct {
	Title       string
	Description string
	Location    string
	ImagePath   string
}

// Service creates and reads catalog items.
type Service struct {
	repo     Repository
	embed    Embedder // nil disables text vectorization
	analyzer Analyzer // nil disables image analysis
	logger   *zap.Logger
}

// New creates a catalog service. embed and analyzer may be nil when the
// provider is not configured; items are then stored without AI signals.
func New(repo Repository, embed Embedder, analyzer Analyzer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, embed: embed, analyzer: analyzer, logger: logger}
}

// Create validates, enriches, and stores a new report. Enrichment
// failures are logged and skipped: a report without embeddings is still
// a report, it just won't contribute those signals to ranking.
func (s *Service) Create(ctx context.Context, kind item.Kind, d Draft) (item.Item, error) {
	it, err := item.New(kind, d.Title, d.Description, d.Location, d.ImagePath)
	if err != nil {
		return item.Item{}, err
	}

	it = s.enrich(ctx, it)

	created, err := s.repo.Create(ctx, it)
	if err != nil {
		return item.Item{}, fmt.Errorf("store %s item: %w", kind, err)
	}
	return created, nil
}

// Get returns one item.
func (s *Service) Get(ctx context.Context, kind item.Kind, id int64) (item.Item, error) {
	it, err := s.repo.Get(ctx, kind, id)
	if err != nil {
		return item.Item{}, fmt.Errorf("get %s item %d: %w", kind, id, err)
	}
	return it, nil
}

// List returns all items of a kind.
func (s *Service) List(ctx context.Context, kind item.Kind) ([]item.Item, error) {
	items, err := s.repo.List(ctx, kind, item.Filter{})
	if err != nil {
		return nil, fmt.Errorf("list %s items: %w", kind, err)
	}
	return items, nil
}

// Refresh regenerates AI signals for an existing item, e.g. after a
// provider outage at intake time or an embedding model upgrade.
func (s *Service) Refresh(ctx context.Context, kind item.Kind, id int64) (item.Item, error) {
	it, err := s.repo.Get(ctx, kind, id)
	if err != nil {
		return item.Item{}, fmt.Errorf("get %s item %d: %w", kind, id, err)
	}

	it = s.enrich(ctx, it)

	if err := s.repo.Update(ctx, it); err != nil {
		return item.Item{}, fmt.Errorf("update %s item %d: %w", kind, id, err)
	}
	return it, nil
}

func (s *Service) enrich(ctx context.Context, it item.Item) item.Item {
	if s.embed != nil {
		emb, err := s.embed.Embed(ctx, it.EmbeddingText())
		if err != nil {
			s.logger.Warn("text embedding failed, storing item without it",
				zap.String("kind", string(it.Kind())), zap.Error(err))
		} else {
			it = it.WithTextEmbedding(emb.Embedding)
		}
	}

	if it.ImagePath() == "" || s.analyzer == nil {
		return it
	}

	analysis, err := s.analyzer.Analyze(ctx, it.ImagePath())
	if err != nil {
		s.logger.Warn("image analysis failed, storing item without image signals",
			zap.String("image_path", it.ImagePath()), zap.Error(err))
		return it
	}

	it = it.WithTags(analysis.Categories, analysis.Colors)

	// The image feature vector is the caption's embedding, so photo and
	// text queries share one vector space.
	if s.embed != nil && analysis.Caption != "" {
		emb, err := s.embed.Embed(ctx, analysis.Caption)
		if err != nil {
			s.logger.Warn("caption embedding failed", zap.Error(err))
		} else {
			it = it.WithImageFeatures(emb.Embedding)
		}
	}

	return it
}
