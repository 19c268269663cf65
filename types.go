package refind

import (
	"time"

	"github.com/refindlab/refind/internal/domain/item"
	"github.com/refindlab/refind/internal/domain/match"
	"github.com/refindlab/refind/internal/domain/submission"
)

// Kind values accepted by item and search calls.
const (
	KindLost  = "lost"
	KindFound = "found"
)

// Draft is a lost or found report to be created.
// Title, Description, and Location are required; ImagePath is optional.
type Draft struct {
	Title       string
	Description string
	Location    string
	ImagePath   string
}

// Item is a stored lost or found report.
type Item struct {
	ID          int64
	Kind        string
	Title       string
	Description string
	Location    string
	ImagePath   string
	Categories  []string
	Colors      []string
	CreatedAt   time.Time
}

// Match is a scored catalog search result.
type Match struct {
	Item            Item
	Score           float64
	MatchType       string // "text", "image", or "combined"
	Confidence      float64
	MatchedFeatures []string
}

// SearchOptions narrows a text search. The zero value searches both
// catalogs with no filters and the default result limit.
type SearchOptions struct {
	Kind       string // "lost", "found", or "" for both
	Location   string
	Categories []string
	Colors     []string
	Limit      int
}

// Submission is a free-form community report.
type Submission struct {
	ID        int64
	Text      string
	Name      string
	Contact   string
	CreatedAt time.Time
}

// SubmissionMatch is a submission matched against a semantic query.
type SubmissionMatch struct {
	Submission
	SimilarityScore float64
	MatchedText     string
	MatchReasons    []string
}

func fromItem(it item.Item) Item {
	return Item{
		ID:          it.ID(),
		Kind:        string(it.Kind()),
		Title:       it.Title(),
		Description: it.Description(),
		Location:    it.Location(),
		ImagePath:   it.ImagePath(),
		Categories:  it.Categories(),
		Colors:      it.ColorTags(),
		CreatedAt:   it.CreatedAt(),
	}
}

func fromItems(items []item.Item) []Item {
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = fromItem(it)
	}
	return out
}

func fromResults(results []match.Result) []Match {
	out := make([]Match, len(results))
	for i, r := range results {
		out[i] = Match{
			Item:            fromItem(r.Item),
			Score:           r.Score,
			MatchType:       string(r.Type),
			Confidence:      r.Confidence,
			MatchedFeatures: r.MatchedFeatures,
		}
	}
	return out
}

func fromSubmission(s submission.Submission) Submission {
	return Submission{
		ID:        s.ID,
		Text:      s.Text,
		Name:      s.DisplayName(),
		Contact:   s.DisplayContact(),
		CreatedAt: s.CreatedAt,
	}
}

func fromSubmissions(subs []submission.Submission) []Submission {
	out := make([]Submission, len(subs))
	for i, s := range subs {
		out[i] = fromSubmission(s)
	}
	return out
}

func fromSubmissionMatches(matches []submission.Match) []SubmissionMatch {
	out := make([]SubmissionMatch, len(matches))
	for i, m := range matches {
		out[i] = SubmissionMatch{
			Submission:      fromSubmission(m.Submission),
			SimilarityScore: m.SimilarityScore,
			MatchedText:     m.MatchedText,
			MatchReasons:    m.MatchReasons,
		}
	}
	return out
}
