package domain

import "context"

// KeyPrefix namespaces all storage keys.
const KeyPrefix = "refind:"

// Embedder is the shared text vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// HealthChecker verifies provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token usage through the decorator chain.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// ImageAnalysis is the vision provider's read of an uploaded photo.
// Categories and Colors become item tags; Caption is embedded as the
// item's image feature vector.
type ImageAnalysis struct {
	Caption    string
	Categories []string
	Colors     []string
}

// ImageAnalyzer extracts categories, colors, and a caption from an image file.
type ImageAnalyzer interface {
	Analyze(ctx context.Context, path string) (ImageAnalysis, error)
}
