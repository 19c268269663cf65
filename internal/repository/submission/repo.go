// Package submission persists community reports as Redis hashes under
// refind:submission:<id>.
package submission

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/refindlab/refind/internal/domain"
	"github.com/refindlab/refind/internal/domain/submission"
)

// store is the consumer interface for submissions (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	Incr(ctx context.Context, key string) (int64, error)
}

// Repo implements usecase/semantic.Repository.
type Repo struct {
	store store
}

// New creates a submission repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Create assigns the next sequential ID and stores the submission.
func (r *Repo) Create(ctx context.Context, sub submission.Submission) (submission.Submission, error) {
	id, err := r.store.Incr(ctx, seqKey())
	if err != nil {
		return submission.Submission{}, fmt.Errorf("next submission id: %w", err)
	}

	sub.ID = id
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}

	if err := r.store.HSet(ctx, subKey(id), buildHashFields(sub)); err != nil {
		return submission.Submission{}, fmt.Errorf("store submission %d: %w", id, err)
	}
	return sub, nil
}

// List returns all submissions sorted by ID ascending.
func (r *Repo) List(ctx context.Context) ([]submission.Submission, error) {
	keys, err := r.store.Scan(ctx, subPattern())
	if err != nil {
		return nil, fmt.Errorf("scan submissions: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("fetch submissions: %w", err)
	}

	subs := make([]submission.Submission, 0, len(hashes))
	for i, m := range hashes {
		if len(m) == 0 {
			continue
		}
		id, err := extractSubID(keys[i])
		if err != nil {
			continue
		}
		subs = append(subs, parseHashFields(id, m))
	}

	sort.Slice(subs, func(a, b int) bool { return subs[a].ID < subs[b].ID })
	return subs, nil
}

func buildHashFields(sub submission.Submission) map[string]string {
	return map[string]string{
		"text":       sub.Text,
		"name":       sub.Name,
		"contact":    sub.Contact,
		"created_at": sub.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func parseHashFields(id int64, m map[string]string) submission.Submission {
	createdAt, _ := time.Parse(time.RFC3339Nano, m["created_at"])
	return submission.Submission{
		ID:        id,
		Text:      m["text"],
		Name:      m["name"],
		Contact:   m["contact"],
		CreatedAt: createdAt,
	}
}

func subKey(id int64) string {
	return fmt.Sprintf("%ssubmission:%d", domain.KeyPrefix, id)
}

func subPattern() string {
	return domain.KeyPrefix + "submission:*"
}

func seqKey() string {
	return domain.KeyPrefix + "seq:submission"
}

func extractSubID(key string) (int64, error) {
	return strconv.ParseInt(strings.TrimPrefix(key, domain.KeyPrefix+"submission:"), 10, 64)
}
