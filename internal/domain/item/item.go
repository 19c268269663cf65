package item

import (
	"fmt"
	"strings"
	"time"

	"github.com/refindlab/refind/internal/domain"
)

// Kind discriminates the two report variants.
type Kind string

const (
	// Lost is a report about a lost item.
	Lost Kind = "lost"
	// Found is a report about a found item.
	Found Kind = "found"
)

// ParseKind validates a kind string.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case Lost, Found:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidKind, s)
	}
}

// Item is a lost or found report (immutable value object).
// AI-derived fields (embeddings, tags) may be absent; scoring treats a
// missing signal as zero similarity, never as an error.
type Item struct {
	id            int64
	kind          Kind
	title         string
	description   string
	location      string
	imagePath     string
	categories    []string
	colorTags     []string
	textEmbedding []float32
	imageFeatures []float32
	createdAt     time.Time
}

// New validates and creates an Item. The ID is assigned by storage.
func New(kind Kind, title, description, location, imagePath string) (Item, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return Item{}, err
	}
	if strings.TrimSpace(title) == "" {
		return Item{}, fmt.Errorf("%w: title is required", domain.ErrInvalidItem)
	}
	if strings.TrimSpace(description) == "" {
		return Item{}, fmt.Errorf("%w: description is required", domain.ErrInvalidItem)
	}
	if strings.TrimSpace(location) == "" {
		return Item{}, fmt.Errorf("%w: location is required", domain.ErrInvalidItem)
	}

	return Item{
		kind:        kind,
		title:       title,
		description: description,
		location:    location,
		imagePath:   imagePath,
		createdAt:   time.Now().UTC(),
	}, nil
}

// Reconstruct creates an Item without validation (storage hydration).
func Reconstruct(
	id int64, kind Kind, title, description, location, imagePath string,
	categories, colorTags []string,
	textEmbedding, imageFeatures []float32,
	createdAt time.Time,
) Item {
	return Item{
		id:            id,
		kind:          kind,
		title:         title,
		description:   description,
		location:      location,
		imagePath:     imagePath,
		categories:    cloneStrings(categories),
		colorTags:     cloneStrings(colorTags),
		textEmbedding: textEmbedding,
		imageFeatures: imageFeatures,
		createdAt:     createdAt,
	}
}

// ID returns the storage-assigned identifier (0 until persisted).
func (i *Item) ID() int64 { return i.id }

// Kind returns the report variant.
func (i *Item) Kind() Kind { return i.kind }

// Title returns the short description, e.g. "Black Backpack".
func (i *Item) Title() string { return i.title }

// Description returns the detailed description.
func (i *Item) Description() string { return i.description }

// Location returns where the item was lost or found.
func (i *Item) Location() string { return i.location }

// ImagePath returns the stored photo path, empty when no photo was attached.
func (i *Item) ImagePath() string { return i.imagePath }

// Categories returns the image-derived category tags (nil when unanalyzed).
func (i *Item) Categories() []string { return i.categories }

// ColorTags returns the image-derived color tags (nil when unanalyzed).
func (i *Item) ColorTags() []string { return i.colorTags }

// TextEmbedding returns the embedding of EmbeddingText (nil when unavailable).
func (i *Item) TextEmbedding() []float32 { return i.textEmbedding }

// ImageFeatures returns the photo feature vector (nil when unavailable).
func (i *Item) ImageFeatures() []float32 { return i.imageFeatures }

// CreatedAt returns the report timestamp.
func (i *Item) CreatedAt() time.Time { return i.createdAt }

// EmbeddingText is the combined text that gets vectorized for this item.
func (i *Item) EmbeddingText() string {
	return i.title + " " + i.description + " " + i.location
}

// WithID returns a copy with the storage-assigned identifier.
func (i Item) WithID(id int64) Item {
	i.id = id
	return i
}

// WithTextEmbedding returns a copy carrying the text embedding.
func (i Item) WithTextEmbedding(v []float32) Item {
	i.textEmbedding = v
	return i
}

// WithImageFeatures returns a copy carrying the photo feature vector.
func (i Item) WithImageFeatures(v []float32) Item {
	i.imageFeatures = v
	return i
}

// WithTags returns a copy carrying image-derived category and color tags.
func (i Item) WithTags(categories, colorTags []string) Item {
	i.categories = cloneStrings(categories)
	i.colorTags = cloneStrings(colorTags)
	return i
}

// Filter narrows a catalog listing before ranking. Zero value matches all.
type Filter struct {
	Location   string
	Categories []string
	Colors     []string
}

// IsEmpty reports whether the filter matches everything.
func (f Filter) IsEmpty() bool {
	return f.Location == "" && len(f.Categories) == 0 && len(f.Colors) == 0
}

// Matches applies the filter to an item: location is a case-insensitive
// substring test, categories and colors require at least one overlap with
// the item's tags. Items without tags pass tag filters (the signal is
// absent, not contradicting).
func (f Filter) Matches(it Item) bool {
	if f.Location != "" &&
		!strings.Contains(strings.ToLower(it.Location()), strings.ToLower(f.Location)) {
		return false
	}
	if len(f.Categories) > 0 && it.Categories() != nil && !anyOverlapFold(f.Categories, it.Categories()) {
		return false
	}
	if len(f.Colors) > 0 && it.ColorTags() != nil && !anyOverlapFold(f.Colors, it.ColorTags()) {
		return false
	}
	return true
}

func anyOverlapFold(want, have []string) bool {
	for _, w := range want {
		for _, h := range have {
			if strings.EqualFold(w, h) {
				return true
			}
		}
	}
	return false
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
