package domain

import "errors"

var (
	// ErrItemNotFound signals a missing catalog item.
	ErrItemNotFound = errors.New("item not found")
	// ErrSubmissionNotFound signals a missing submission.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrInvalidKind signals an unknown item kind.
	ErrInvalidKind = errors.New("invalid item kind")
	// ErrInvalidItem signals a validation failure on item input.
	ErrInvalidItem = errors.New("invalid item")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrCompletionUnavailable signals a chat completion provider failure.
	// The semantic search pipeline treats it as a fallback trigger, never fatal.
	ErrCompletionUnavailable = errors.New("completion provider unavailable")
	// ErrAnalysisUnavailable signals an image analysis provider failure.
	ErrAnalysisUnavailable = errors.New("image analysis unavailable")
)
