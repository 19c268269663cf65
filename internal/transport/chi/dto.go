package chi

import (
	"time"

	"github.com/refindlab/refind/internal/domain/item"
	"github.com/refindlab/refind/internal/domain/match"
	"github.com/refindlab/refind/internal/domain/submission"
)

// Error codes returned in ErrorResponse.Code.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeItemNotFound     = "item_not_found"
	codeProviderError    = "provider_error"
	codeInternalError    = "internal_error"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type itemRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	ImagePath   string `json:"image_path,omitempty"`
}

type itemResponse struct {
	ID          int64     `json:"id"`
	Kind        string    `json:"kind"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	ImagePath   string    `json:"image_path,omitempty"`
	Categories  []string  `json:"categories,omitempty"`
	Colors      []string  `json:"colors,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func itemToResponse(it item.Item) itemResponse {
	return itemResponse{
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

type searchRequest struct {
	Query      string   `json:"query"`
	Kind       string   `json:"kind"`
	Location   string   `json:"location,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Colors     []string `json:"colors,omitempty"`
	Limit      int      `json:"limit,omitempty"`
}

type imageSearchRequest struct {
	ImagePath string `json:"image_path"`
	Scope     string `json:"scope,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}

type matchResponse struct {
	Item            itemResponse `json:"item"`
	Score           float64      `json:"score"`
	MatchType       string       `json:"match_type"`
	Confidence      float64      `json:"confidence"`
	MatchedFeatures []string     `json:"matched_features,omitempty"`
}

func matchToResponse(m match.Result) matchResponse {
	return matchResponse{
		Item:            itemToResponse(m.Item),
		Score:           m.Score,
		MatchType:       string(m.Type),
		Confidence:      m.Confidence,
		MatchedFeatures: m.MatchedFeatures,
	}
}

type searchResponse struct {
	Results     []matchResponse `json:"results"`
	Total       int             `json:"total"`
	Suggestions []string        `json:"suggestions,omitempty"`
}

type submissionRequest struct {
	Text    string `json:"text"`
	Name    string `json:"name,omitempty"`
	Contact string `json:"contact,omitempty"`
}

type submissionResponse struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Name      string    `json:"name"`
	Contact   string    `json:"contact"`
	CreatedAt time.Time `json:"created_at"`
}

func submissionToResponse(sub submission.Submission) submissionResponse {
	return submissionResponse{
		ID:        sub.ID,
		Text:      sub.Text,
		Name:      sub.DisplayName(),
		Contact:   sub.DisplayContact(),
		CreatedAt: sub.CreatedAt,
	}
}

type submissionMatchResponse struct {
	submissionResponse
	SimilarityScore float64  `json:"similarity_score"`
	MatchedText     string   `json:"matched_text,omitempty"`
	MatchReasons    []string `json:"match_reasons,omitempty"`
}

func submissionMatchToResponse(m submission.Match) submissionMatchResponse {
	return submissionMatchResponse{
		submissionResponse: submissionToResponse(m.Submission),
		SimilarityScore:    m.SimilarityScore,
		MatchedText:        m.MatchedText,
		MatchReasons:       m.MatchReasons,
	}
}

type submissionSearchResponse struct {
	Results []submissionMatchResponse `json:"results"`
	Total   int                       `json:"total"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
