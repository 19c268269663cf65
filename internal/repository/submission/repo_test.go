package submission

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/refindlab/refind/internal/domain/submission"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetFn         func(ctx context.Context, key string, fields map[string]string) error
	hgetAllMultiFn func(ctx context.Context, keys []string) ([]map[string]string, error)
	scanFn         func(ctx context.Context, pattern string) ([]string, error)
	incrFn         func(ctx context.Context, key string) (int64, error)
}

func (m *mockStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	if m.hsetFn != nil {
		return m.hsetFn(ctx, key, fields)
	}
	return nil
}

func (m *mockStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if m.hgetAllMultiFn != nil {
		return m.hgetAllMultiFn(ctx, keys)
	}
	return nil, nil
}

func (m *mockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	return nil, nil
}

func (m *mockStore) Incr(ctx context.Context, key string) (int64, error) {
	if m.incrFn != nil {
		return m.incrFn(ctx, key)
	}
	return 1, nil
}

func TestCreate(t *testing.T) {
	var gotKey string
	var gotFields map[string]string
	st := &mockStore{
		incrFn: func(_ context.Context, key string) (int64, error) {
			if key != "refind:seq:submission" {
				t.Errorf("sequence key = %q", key)
			}
			return 5, nil
		},
		hsetFn: func(_ context.Context, key string, fields map[string]string) error {
			gotKey = key
			gotFields = fields
			return nil
		},
	}

	created, err := New(st).Create(context.Background(), submission.Submission{
		Text: "saw a blue backpack near the gym", Name: "Sam", Contact: "sam@example.com",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID != 5 {
		t.Errorf("ID = %d, want 5", created.ID)
	}
	if created.CreatedAt.IsZero() {
		t.Error("CreatedAt not assigned")
	}
	if gotKey != "refind:submission:5" {
		t.Errorf("key = %q", gotKey)
	}
	if gotFields["text"] != "saw a blue backpack near the gym" || gotFields["name"] != "Sam" {
		t.Errorf("fields = %v", gotFields)
	}
}

func TestCreate_IDAssignmentError(t *testing.T) {
	st := &mockStore{
		incrFn: func(context.Context, string) (int64, error) {
			return 0, errors.New("conn refused")
		},
	}
	if _, err := New(st).Create(context.Background(), submission.Submission{Text: "x"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestList_SortedByID(t *testing.T) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	st := &mockStore{
		scanFn: func(_ context.Context, pattern string) ([]string, error) {
			if pattern != "refind:submission:*" {
				t.Errorf("pattern = %q", pattern)
			}
			return []string{"refind:submission:3", "refind:submission:1"}, nil
		},
		hgetAllMultiFn: func(context.Context, []string) ([]map[string]string, error) {
			return []map[string]string{
				{"text": "third", "created_at": now},
				{"text": "first", "name": "Ana", "contact": "555", "created_at": now},
			}, nil
		},
	}

	subs, err := New(st).List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var ids []int64
	for _, s := range subs {
		ids = append(ids, s.ID)
	}
	if !reflect.DeepEqual(ids, []int64{1, 3}) {
		t.Errorf("ids = %v, want [1 3]", ids)
	}
	if subs[0].Name != "Ana" || subs[0].Contact != "555" {
		t.Errorf("hydrated submission = %+v", subs[0])
	}
}

func TestList_Empty(t *testing.T) {
	subs, err := New(&mockStore{}).List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(subs) != 0 {
		t.Errorf("expected no submissions, got %d", len(subs))
	}
}

func TestList_SkipsVanishedKeys(t *testing.T) {
	st := &mockStore{
		scanFn: func(context.Context, string) ([]string, error) {
			return []string{"refind:submission:1", "refind:submission:2"}, nil
		},
		hgetAllMultiFn: func(context.Context, []string) ([]map[string]string, error) {
			return []map[string]string{{"text": "kept"}, {}}, nil
		},
	}

	subs, err := New(st).List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(subs) != 1 || subs[0].Text != "kept" {
		t.Errorf("subs = %v", subs)
	}
}
