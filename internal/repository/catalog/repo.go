// Package catalog persists lost and found reports as Redis hashes under
// refind:item:<kind>:<id>, with sequential IDs from a Redis counter.
package catalog

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/refindlab/refind/internal/domain"
	"github.com/refindlab/refind/internal/domain/item"
)

// store is the consumer interface for items (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	Incr(ctx context.Context, key string) (int64, error)
}

// Repo implements usecase/catalog.Repository.
type Repo struct {
	store store
}

// New creates an item repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Create assigns the next sequential ID and stores the item.
func (r *Repo) Create(ctx context.Context, it item.Item) (item.Item, error) {
	id, err := r.store.Incr(ctx, seqKey())
	if err != nil {
		return item.Item{}, fmt.Errorf("next item id: %w", err)
	}

	it = it.WithID(id)
	if err := r.store.HSet(ctx, itemKey(it.Kind(), id), buildHashFields(it)); err != nil {
		return item.Item{}, fmt.Errorf("store item %d: %w", id, err)
	}
	return it, nil
}

// Update rewrites an already persisted item.
func (r *Repo) Update(ctx context.Context, it item.Item) error {
	key := itemKey(it.Kind(), it.ID())

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return domain.ErrItemNotFound
	}

	if err := r.store.HSet(ctx, key, buildHashFields(it)); err != nil {
		return fmt.Errorf("update item %d: %w", it.ID(), err)
	}
	return nil
}

// Get returns an item by kind and ID.
func (r *Repo) Get(ctx context.Context, kind item.Kind, id int64) (item.Item, error) {
	key := itemKey(kind, id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return item.Item{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	// HGETALL on a missing key yields an empty hash, not an error.
	if len(m) == 0 {
		return item.Item{}, domain.ErrItemNotFound
	}
	return parseHashFields(id, m), nil
}

// List returns all items of a kind matching the filter, sorted by ID
// ascending. Filtering happens here so callers rank only viable candidates.
func (r *Repo) List(ctx context.Context, kind item.Kind, f item.Filter) ([]item.Item, error) {
	keys, err := r.store.Scan(ctx, itemPattern(kind))
	if err != nil {
		return nil, fmt.Errorf("scan %s items: %w", kind, err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("fetch %s items: %w", kind, err)
	}

	items := make([]item.Item, 0, len(hashes))
	for i, m := range hashes {
		if len(m) == 0 {
			continue // expired between SCAN and fetch
		}
		id, err := extractItemID(keys[i], kind)
		if err != nil {
			continue
		}
		it := parseHashFields(id, m)
		if !f.Matches(it) {
			continue
		}
		items = append(items, it)
	}

	sort.Slice(items, func(a, b int) bool { return items[a].ID() < items[b].ID() })
	return items, nil
}

func itemKey(kind item.Kind, id int64) string {
	return fmt.Sprintf("%sitem:%s:%d", domain.KeyPrefix, kind, id)
}

func itemPattern(kind item.Kind) string {
	return fmt.Sprintf("%sitem:%s:*", domain.KeyPrefix, kind)
}

func seqKey() string {
	return domain.KeyPrefix + "seq:item"
}

func extractItemID(key string, kind item.Kind) (int64, error) {
	prefix := fmt.Sprintf("%sitem:%s:", domain.KeyPrefix, kind)
	return strconv.ParseInt(strings.TrimPrefix(key, prefix), 10, 64)
}
