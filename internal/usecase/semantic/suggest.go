package semantic

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/refindlab/refind/internal/domain"
)

const maxSuggestions = 3

// Suggestions proposes up to 3 alternative search phrasings. The model
// strategy runs first when available; any failure (unreachable, bad
// JSON, too few entries) routes to the deterministic fallback. Never
// returns an error to the caller.
func (s *Service) Suggestions(ctx context.Context, query string, resultCount int) []string {
	if s.completer == nil || strings.TrimSpace(query) == "" {
		return fallbackSuggestions(query, resultCount)
	}

	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.completer.Complete(cctx, domain.CompletionRequest{
		System:      suggestSystemPrompt,
		Prompt:      buildSuggestPrompt(query, resultCount),
		MaxTokens:   s.suggestMaxTokens,
		Temperature: s.temperature,
	})
	if err != nil {
		s.logger.Warn("suggestion generation fell back", zap.Error(err))
		return fallbackSuggestions(query, resultCount)
	}

	var suggestions []string
	if err := json.Unmarshal([]byte(domain.StripCodeFence(raw)), &suggestions); err != nil {
		s.logger.Warn("unparseable suggestion response", zap.Error(err))
		return fallbackSuggestions(query, resultCount)
	}
	if len(suggestions) < maxSuggestions {
		return fallbackSuggestions(query, resultCount)
	}
	return suggestions[:maxSuggestions]
}

// suggestionTable maps query keywords to topic-specific synonyms.
var suggestionTable = []struct {
	keyword  string
	synonyms []string
}{
	{"phone", []string{"mobile", "cellphone", "smartphone"}},
	{"backpack", []string{"bag", "rucksack", "pack"}},
	{"keys", []string{"keychain", "keyring", "house keys"}},
	{"wallet", []string{"purse", "money", "cards"}},
}

// fallbackSuggestions is the deterministic strategy: topic synonyms when
// the query mentions a known item type, otherwise result-count-dependent
// search guidance. A blank query gets the generic triple.
func fallbackSuggestions(query string, resultCount int) []string {
	if strings.TrimSpace(query) == "" {
		return []string{"item", "lost", "found"}
	}

	queryLower := strings.ToLower(query)
	for _, entry := range suggestionTable {
		if strings.Contains(queryLower, entry.keyword) {
			return entry.synonyms
		}
	}

	if resultCount == 0 {
		return []string{
			"try a single word from your description",
			"filter by location",
			"filter by color or item type",
		}
	}
	return []string{
		"add more detail to your description",
		"search by a name",
		"drop the location filter",
	}
}
