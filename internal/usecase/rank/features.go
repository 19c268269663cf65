package rank

import (
	"fmt"
	"strings"

	"github.com/refindlab/refind/internal/domain/item"
)

// MatchedFeatures explains why an item matched a text query: every tag
// value found inside the query is returned as a labeled string, in the
// fixed order categories, colors, location, title. Display only, no
// weighting happens here.
func MatchedFeatures(it item.Item, queryText string) []string {
	if strings.TrimSpace(queryText) == "" {
		return nil
	}
	queryLower := strings.ToLower(queryText)

	var features []string
	for _, cat := range it.Categories() {
		if containsFold(queryLower, cat) {
			features = append(features, fmt.Sprintf("category: %s", cat))
		}
	}
	for _, color := range it.ColorTags() {
		if containsFold(queryLower, color) {
			features = append(features, fmt.Sprintf("color: %s", color))
		}
	}
	if containsFold(queryLower, it.Location()) {
		features = append(features, fmt.Sprintf("location: %s", it.Location()))
	}
	if containsFold(queryLower, it.Title()) {
		features = append(features, fmt.Sprintf("title: %s", it.Title()))
	}
	return features
}

// containsFold is the single containment primitive shared by the facet
// bonus and MatchedFeatures. queryLower must already be lower-cased.
func containsFold(queryLower, tag string) bool {
	if tag == "" {
		return false
	}
	return strings.Contains(queryLower, strings.ToLower(tag))
}
