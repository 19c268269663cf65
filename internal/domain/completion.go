package domain

import (
	"context"
	"strings"
)

// CompletionRequest describes a single chat completion call.
type CompletionRequest struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float32
}

// Completer is the chat completion contract for language-model calls.
// One attempt per call, no retries; callers bound it with a context deadline.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// StripCodeFence removes an optional ```json ... ``` wrapper that models
// sometimes add around JSON payloads.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = s[len("```json"):]
	} else if strings.HasPrefix(s, "```") {
		s = s[len("```"):]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
