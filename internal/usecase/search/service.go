// Package search orchestrates the relevance pipeline: embed the query,
// build scored candidates from the catalog, rank, truncate.
package search

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/refindlab/refind/internal/domain/item"
	"github.com/refindlab/refind/internal/domain/match"
	"github.com/refindlab/refind/internal/domain/vector"
	"github.com/refindlab/refind/internal/usecase/rank"
)

// Scope selects which catalogs an image search covers.
type Scope string

const (
	// ScopeLost searches lost reports only.
	ScopeLost Scope = "lost"
	// ScopeFound searches found reports only.
	ScopeFound Scope = "found"
	// ScopeBoth searches both catalogs.
	ScopeBoth Scope = "both"
)

// ParseScope validates a scope string, defaulting empty input to both.
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case ScopeLost, ScopeFound, ScopeBoth:
		return Scope(s), nil
	case "":
		return ScopeBoth, nil
	default:
		return "", fmt.Errorf("unsupported search scope: %q", s)
	}
}

func (s Scope) kinds() []item.Kind {
	switch s {
	case ScopeLost:
		return []item.Kind{item.Lost}
	case ScopeFound:
		return []item.Kind{item.Found}
	default:
		return []item.Kind{item.Lost, item.Found}
	}
}

// Query is a text search request against one catalog.
type Query struct {
	Text       string
	Kind       item.Kind
	Location   string
	Categories []string
	Colors     []string
	Limit      int
}

// Service executes catalog searches.
type Service struct {
	catalog      CatalogReader
	embed        Embedder // nil disables the embedding signal
	analyzer     Analyzer // nil disables image search
	ranker       *rank.Ranker
	defaultLimit int
	maxLimit     int
	logger       *zap.Logger
}

// New creates a search service.
func New(catalog CatalogReader, embed Embedder, analyzer Analyzer, ranker *rank.Ranker, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		catalog:      catalog,
		embed:        embed,
		analyzer:     analyzer,
		ranker:       ranker,
		defaultLimit: 10,
		maxLimit:     100,
		logger:       logger,
	}
}

// WithLimits overrides result paging bounds.
func (s *Service) WithLimits(defaultLimit, maxLimit int) *Service {
	if defaultLimit > 0 {
		s.defaultLimit = defaultLimit
	}
	if maxLimit > 0 {
		s.maxLimit = maxLimit
	}
	return s
}

// Search runs a text query against one catalog. A failed query embedding
// degrades to zero text similarity (the facet bonus still ranks) rather
// than surfacing an error for a recoverable missing signal.
func (s *Service) Search(ctx context.Context, q Query) ([]match.Result, error) {
	var queryVec []float32
	if s.embed != nil && strings.TrimSpace(q.Text) != "" {
		emb, err := s.embed.Embed(ctx, q.Text)
		if err != nil {
			s.logger.Warn("query embedding failed, ranking without text similarity",
				zap.Error(err))
		} else {
			queryVec = emb.Embedding
		}
	}

	items, err := s.catalog.List(ctx, q.Kind, item.Filter{
		Location:   q.Location,
		Categories: q.Categories,
		Colors:     q.Colors,
	})
	if err != nil {
		return nil, fmt.Errorf("list %s items: %w", q.Kind, err)
	}

	candidates := make([]match.Candidate, 0, len(items))
	for _, it := range items {
		var textSim float64
		if queryVec != nil && it.TextEmbedding() != nil {
			textSim = clamp01(vector.Cosine(queryVec, it.TextEmbedding()))
		}
		candidates = append(candidates, match.Candidate{Item: it, TextSimilarity: textSim})
	}

	results := s.ranker.Rank(candidates, q.Text, false)
	return s.truncate(results, q.Limit), nil
}

// SearchByImage ranks items of the scoped catalogs by visual similarity
// to the query image. Items without image features are skipped: there is
// nothing to compare against.
func (s *Service) SearchByImage(ctx context.Context, imagePath string, scope Scope, limit int) ([]match.Result, error) {
	if s.analyzer == nil || s.embed == nil {
		s.logger.Warn("image search requested without a configured provider")
		return []match.Result{}, nil
	}

	analysis, err := s.analyzer.Analyze(ctx, imagePath)
	if err != nil {
		return nil, fmt.Errorf("analyze query image: %w", err)
	}

	queryVec, err := s.queryImageVector(ctx, analysis.Caption)
	if err != nil {
		s.logger.Warn("query image embedding failed, returning no results", zap.Error(err))
		return []match.Result{}, nil
	}

	var candidates []match.Candidate
	for _, kind := range scope.kinds() {
		items, err := s.catalog.List(ctx, kind, item.Filter{})
		if err != nil {
			return nil, fmt.Errorf("list %s items: %w", kind, err)
		}
		for _, it := range items {
			if it.ImageFeatures() == nil {
				continue
			}
			candidates = append(candidates, match.Candidate{
				Item:            it,
				ImageSimilarity: clamp01(vector.Cosine(queryVec, it.ImageFeatures())),
			})
		}
	}

	results := s.ranker.Rank(candidates, "", true)
	return s.truncate(results, limit), nil
}

func (s *Service) queryImageVector(ctx context.Context, caption string) ([]float32, error) {
	if caption == "" {
		return nil, fmt.Errorf("empty caption from image analysis")
	}
	emb, err := s.embed.Embed(ctx, caption)
	if err != nil {
		return nil, fmt.Errorf("embed caption: %w", err)
	}
	return emb.Embedding, nil
}

func (s *Service) truncate(results []match.Result, limit int) []match.Result {
	if limit <= 0 {
		limit = s.defaultLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
