package catalog

import (
	"encoding/json"
	"time"

	"github.com/refindlab/refind/internal/domain/item"
)

// buildHashFields converts an Item into a flat map[string]string for HSET.
// Slice fields are JSON-encoded; absent optional fields are omitted so
// hydration can tell "never analyzed" from "analyzed, empty".
func buildHashFields(it item.Item) map[string]string {
	m := map[string]string{
		"kind":        string(it.Kind()),
		"title":       it.Title(),
		"description": it.Description(),
		"location":    it.Location(),
		"created_at":  it.CreatedAt().UTC().Format(time.RFC3339Nano),
	}
	if it.ImagePath() != "" {
		m["image_path"] = it.ImagePath()
	}
	if it.Categories() != nil {
		m["categories"] = encodeJSON(it.Categories())
	}
	if it.ColorTags() != nil {
		m["color_tags"] = encodeJSON(it.ColorTags())
	}
	if it.TextEmbedding() != nil {
		m["text_embedding"] = encodeJSON(it.TextEmbedding())
	}
	if it.ImageFeatures() != nil {
		m["image_features"] = encodeJSON(it.ImageFeatures())
	}
	return m
}

// parseHashFields converts a flat hash map back into an Item.
func parseHashFields(id int64, m map[string]string) item.Item {
	var categories, colorTags []string
	var textEmbedding, imageFeatures []float32

	if v, ok := m["categories"]; ok {
		categories = decodeStrings(v)
	}
	if v, ok := m["color_tags"]; ok {
		colorTags = decodeStrings(v)
	}
	if v, ok := m["text_embedding"]; ok {
		textEmbedding = decodeVector(v)
	}
	if v, ok := m["image_features"]; ok {
		imageFeatures = decodeVector(v)
	}

	createdAt, _ := time.Parse(time.RFC3339Nano, m["created_at"])

	return item.Reconstruct(
		id,
		item.Kind(m["kind"]),
		m["title"],
		m["description"],
		m["location"],
		m["image_path"],
		categories,
		colorTags,
		textEmbedding,
		imageFeatures,
		createdAt,
	)
}

func encodeJSON(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func decodeStrings(s string) []string {
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil
	}
	return out
}

func decodeVector(s string) []float32 {
	var out []float32
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil
	}
	return out
}
