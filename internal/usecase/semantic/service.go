// Package semantic implements LLM-assisted submission search with a
// strict fallback chain, plus the paired search suggestion generator.
//
// The chain is linear: precondition check, one remote call, response
// validation, keyword fallback. A failure at any stage falls through to
// the keyword search immediately (no retries, no racing), so callers
// always get a usable result even when the model is absent, slow, or
// returns garbage.
package semantic

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/refindlab/refind/internal/domain"
	"github.com/refindlab/refind/internal/domain/submission"
	"github.com/refindlab/refind/internal/metrics"
)

// Fixed scores: a model selection outranks a plain keyword hit.
const (
	semanticScore = 0.9
	keywordScore  = 0.8
)

const (
	defaultTimeout          = 30 * time.Second
	defaultSearchMaxTokens  = 500
	defaultSuggestMaxTokens = 200
	defaultTemperature      = 0.3
)

// Service routes submission search through the language model when one
// is configured, with the keyword fallback as the safety net.
type Service struct {
	completer        Completer // nil when no credential is configured
	repo             Repository
	timeout          time.Duration
	searchMaxTokens  int
	suggestMaxTokens int
	temperature      float32
	logger           *zap.Logger
}

// New creates a semantic search service. completer may be nil (no
// credential): every search then takes the keyword path. repo may be nil
// for callers that only use Search/Suggestions with their own data.
func New(completer Completer, repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		completer:        completer,
		repo:             repo,
		timeout:          defaultTimeout,
		searchMaxTokens:  defaultSearchMaxTokens,
		suggestMaxTokens: defaultSuggestMaxTokens,
		temperature:      defaultTemperature,
		logger:           logger,
	}
}

// WithLimits overrides the remote call budget.
func (s *Service) WithLimits(timeout time.Duration, searchMaxTokens, suggestMaxTokens int, temperature float32) *Service {
	if timeout > 0 {
		s.timeout = timeout
	}
	if searchMaxTokens > 0 {
		s.searchMaxTokens = searchMaxTokens
	}
	if suggestMaxTokens > 0 {
		s.suggestMaxTokens = suggestMaxTokens
	}
	if temperature > 0 {
		s.temperature = temperature
	}
	return s
}

// Submit stores a new submission.
func (s *Service) Submit(ctx context.Context, sub submission.Submission) (submission.Submission, error) {
	created, err := s.repo.Create(ctx, sub)
	if err != nil {
		return submission.Submission{}, fmt.Errorf("create submission: %w", err)
	}
	return created, nil
}

// List returns all stored submissions.
func (s *Service) List(ctx context.Context) ([]submission.Submission, error) {
	subs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return subs, nil
}

// SearchStored loads all submissions and runs Search over them.
func (s *Service) SearchStored(ctx context.Context, query string) ([]submission.Match, error) {
	subs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return s.Search(ctx, subs, query), nil
}

// Search selects submissions matching the query. It never returns an
// error: every failure mode degrades to the keyword fallback.
func (s *Service) Search(ctx context.Context, subs []submission.Submission, query string) []submission.Match {
	// Stage 0: preconditions. No model or nothing to ask about.
	if s.completer == nil || strings.TrimSpace(query) == "" {
		return s.fallback(subs, query, "precondition", nil)
	}

	// Stage 1: one bounded remote call, no retries. A timeout is just
	// another remote failure.
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.completer.Complete(cctx, domain.CompletionRequest{
		System:      searchSystemPrompt,
		Prompt:      buildSearchPrompt(subs, query),
		MaxTokens:   s.searchMaxTokens,
		Temperature: s.temperature,
	})
	if err != nil {
		return s.fallback(subs, query, "remote_call", err)
	}

	// Stage 2: validate the response shape.
	indices, err := parseIndexArray(raw)
	if err != nil {
		return s.fallback(subs, query, "parse", err)
	}

	results := make([]submission.Match, 0, len(indices))
	for _, idx := range indices {
		// Model indices are 1-based. Out-of-range ones are dropped, not
		// fatal: partial results beat none.
		zero := idx - 1
		if zero < 0 || zero >= len(subs) {
			metrics.SemanticIndicesDroppedTotal.Inc()
			s.logger.Warn("model returned out-of-range index",
				zap.Int("index", idx), zap.Int("submissions", len(subs)))
			continue
		}
		sub := subs[zero]
		results = append(results, submission.Match{
			Submission:      sub,
			SimilarityScore: semanticScore,
			MatchedText:     sub.MatchedText(),
			MatchReasons:    []string{"semantic analysis"},
		})
	}

	// All scores are equal, so this keeps the model's selection order.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].SimilarityScore > results[j].SimilarityScore
	})

	return results
}

func (s *Service) fallback(
	subs []submission.Submission, query, stage string, cause error,
) []submission.Match {
	metrics.SemanticFallbackTotal.WithLabelValues(stage).Inc()
	if cause != nil {
		s.logger.Warn("semantic search fell back to keyword search",
			zap.String("stage", stage), zap.Error(cause))
	}
	return keywordSearch(subs, query)
}

// parseIndexArray strips an optional code fence and decodes a JSON array
// of integers. Anything else is a validation failure.
func parseIndexArray(raw string) ([]int, error) {
	cleaned := domain.StripCodeFence(raw)

	var indices []int
	if err := json.Unmarshal([]byte(cleaned), &indices); err != nil {
		return nil, fmt.Errorf("response is not a JSON integer array: %w", err)
	}
	return indices, nil
}
