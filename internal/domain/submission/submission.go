package submission

import "time"

// Submission is a free-form community report. Only Text, Name, and
// Contact matter to search, and all of them may be empty.
type Submission struct {
	ID        int64
	Text      string
	Name      string
	Contact   string
	CreatedAt time.Time
}

// DisplayName returns the reporter name with the anonymous default.
func (s Submission) DisplayName() string {
	if s.Name == "" {
		return "Anonymous"
	}
	return s.Name
}

// DisplayContact returns the contact with the unavailable default.
func (s Submission) DisplayContact() string {
	if s.Contact == "" {
		return "N/A"
	}
	return s.Contact
}

// MatchedText is the concatenated searchable text attached to results.
func (s Submission) MatchedText() string {
	return s.Text + " " + s.Name + " " + s.Contact
}

// Match is a submission annotated with search scoring.
type Match struct {
	Submission
	SimilarityScore float64
	MatchedText     string
	MatchReasons    []string
}
