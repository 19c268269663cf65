package semantic

import (
	"fmt"
	"strings"

	"github.com/refindlab/refind/internal/domain/submission"
)

const searchSystemPrompt = "You are a helpful assistant that analyzes lost and found items " +
	"to find matches based on user descriptions."

// buildSearchPrompt enumerates every submission with a 1-based index and
// instructs the model to answer with only a JSON array of matching
// indices. The prompt is deterministic for a given input.
func buildSearchPrompt(subs []submission.Submission, query string) string {
	lines := make([]string, 0, len(subs))
	for i, sub := range subs {
		lines = append(lines, fmt.Sprintf("Item %d: %s | Name: %s | Contact: %s",
			i+1, sub.Text, sub.DisplayName(), sub.DisplayContact()))
	}

	return fmt.Sprintf(`You are analyzing lost and found items. The user searched for: %q

Items:
%s

TASK: Return ONLY the item numbers that match the search query as a JSON array.

RULES:
- Only return items whose text matches the search query
- If NO items match, return: []
- If some items match, return: [item_numbers]
- NEVER return all items unless the search query matches everything

Your response (JSON array only):`, query, strings.Join(lines, "\n"))
}

const suggestSystemPrompt = searchSystemPrompt

// buildSuggestPrompt asks for exactly 3 alternative search phrasings.
func buildSuggestPrompt(query string, resultCount int) string {
	return fmt.Sprintf(`Based on the search query %q which returned %d results, suggest 3 alternative search terms that might help find more relevant lost and found items.

Examples of good suggestions:
- For "phone" suggest "mobile", "cellphone", "smartphone"
- For "backpack" suggest "bag", "rucksack", "pack"
- For "keys" suggest "keychain", "keyring", "house keys"

Return only the 3 suggestions as a JSON array: ["suggestion1", "suggestion2", "suggestion3"]`,
		query, resultCount)
}
