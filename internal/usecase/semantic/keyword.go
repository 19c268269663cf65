package semantic

import (
	"strings"

	"github.com/refindlab/refind/internal/domain/submission"
)

// keywordSearch is the deterministic fallback: a case-insensitive
// substring test of the query against each submission's text, name, and
// contact. An empty query means "no filter requested" and returns the
// full list unscored.
func keywordSearch(subs []submission.Submission, query string) []submission.Match {
	if strings.TrimSpace(query) == "" {
		results := make([]submission.Match, 0, len(subs))
		for _, sub := range subs {
			results = append(results, submission.Match{Submission: sub})
		}
		return results
	}

	queryLower := strings.ToLower(query)
	results := make([]submission.Match, 0, len(subs))

	for _, sub := range subs {
		if strings.Contains(strings.ToLower(sub.Text), queryLower) ||
			strings.Contains(strings.ToLower(sub.Name), queryLower) ||
			strings.Contains(strings.ToLower(sub.Contact), queryLower) {
			results = append(results, submission.Match{
				Submission:      sub,
				SimilarityScore: keywordScore,
				MatchedText:     sub.MatchedText(),
				MatchReasons:    []string{"keyword match"},
			})
		}
	}

	return results
}
