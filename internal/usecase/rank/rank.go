// Package rank turns raw per-item similarity signals into an ordered,
// explained, confidence-scored result list.
package rank

import (
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/refindlab/refind/internal/domain/match"
)

// Combined-score weights: the text signal is trusted more than the image signal.
const (
	textWeight  = 0.6
	imageWeight = 0.4
)

// Tag bonuses reward exact facet matches beyond raw embedding similarity.
const (
	categoryBonus = 0.1
	colorBonus    = 0.05
)

// confidenceMultiplier discounts less trusted match types: a pure image
// match is weaker evidence than a text or combined match.
var confidenceMultiplier = map[match.Type]float64{
	match.Combined: 1.2,
	match.Text:     1.0,
	match.Image:    0.8,
}

// Ranker scores and orders search candidates.
type Ranker struct {
	logger *zap.Logger
}

// New creates a Ranker. logger can be nil.
func New(logger *zap.Logger) *Ranker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ranker{logger: logger}
}

// Rank scores every candidate and returns them sorted by score descending.
// The sort is stable: ties keep input order. A candidate with a degenerate
// score (NaN/Inf from a bad signal) is zero-scored and logged, never
// aborting the batch. Callers truncate to their own limit.
func (r *Ranker) Rank(candidates []match.Candidate, queryText string, hasImage bool) []match.Result {
	matchType := typeOf(queryText, hasImage)
	queryLower := strings.ToLower(queryText)

	results := make([]match.Result, 0, len(candidates))
	for _, c := range candidates {
		results = append(results, r.score(c, matchType, queryText, queryLower))
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results
}

// typeOf classifies the query by which signals it carries.
func typeOf(queryText string, hasImage bool) match.Type {
	hasText := strings.TrimSpace(queryText) != ""
	switch {
	case hasText && hasImage:
		return match.Combined
	case hasText:
		return match.Text
	default:
		return match.Image
	}
}

func (r *Ranker) score(
	c match.Candidate, matchType match.Type, queryText, queryLower string,
) match.Result {
	var combined float64
	switch matchType {
	case match.Combined:
		combined = textWeight*c.TextSimilarity + imageWeight*c.ImageSimilarity
	case match.Text:
		combined = c.TextSimilarity
	case match.Image:
		combined = c.ImageSimilarity
	}

	// Facet bonus uses the same containment rule as MatchedFeatures, so
	// the score and its explanation never diverge.
	var bonus float64
	for _, cat := range c.Item.Categories() {
		if containsFold(queryLower, cat) {
			bonus += categoryBonus
		}
	}
	for _, color := range c.Item.ColorTags() {
		if containsFold(queryLower, color) {
			bonus += colorBonus
		}
	}

	raw := combined + bonus
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		r.logger.Warn("degenerate candidate score, zeroing",
			zap.Int64("item_id", c.Item.ID()),
			zap.Float64("text_similarity", c.TextSimilarity),
			zap.Float64("image_similarity", c.ImageSimilarity),
		)
		raw = 0
	}

	score := clamp01(raw)
	confidence := clamp01(score * confidenceMultiplier[matchType])

	return match.Result{
		Item:            c.Item,
		Score:           score,
		Type:            matchType,
		Confidence:      confidence,
		MatchedFeatures: MatchedFeatures(c.Item, queryText),
	}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(1.0, math.Max(0.0, v))
}
