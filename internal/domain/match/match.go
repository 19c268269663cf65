package match

import "github.com/refindlab/refind/internal/domain/item"

// Type classifies which query signals produced a score.
type Type string

const (
	// Text means only a text query was supplied.
	Text Type = "text"
	// Image means only a query image was supplied.
	Image Type = "image"
	// Combined means both text and image were supplied.
	Combined Type = "combined"
)

// Candidate pairs an item with its raw per-signal similarities.
// Built per search request, discarded after ranking.
type Candidate struct {
	Item            item.Item
	TextSimilarity  float64
	ImageSimilarity float64
}

// Result is a single ranked search hit. Score and Confidence are
// clamped into [0,1]; callers depend on lists being sorted by Score
// descending with ties in input order.
type Result struct {
	Item            item.Item
	Score           float64
	Type            Type
	Confidence      float64
	MatchedFeatures []string
}
