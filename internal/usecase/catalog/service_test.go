package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/refindlab/refind/internal/domain"
	"github.com/refindlab/refind/internal/domain/item"
)

// --- Mocks ---

type mockRepo struct {
	items   map[int64]item.Item
	nextID  int64
	created int
	updated int
	err     error
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[int64]item.Item)}
}

func (m *mockRepo) Create(_ context.Context, it item.Item) (item.Item, error) {
	if m.err != nil {
		return item.Item{}, m.err
	}
	m.nextID++
	it = it.WithID(m.nextID)
	m.items[m.nextID] = it
	m.created++
	return it, nil
}

func (m *mockRepo) Update(_ context.Context, it item.Item) error {
	if m.err != nil {
		return m.err
	}
	m.items[it.ID()] = it
	m.updated++
	return nil
}

func (m *mockRepo) Get(_ context.Context, _ item.Kind, id int64) (item.Item, error) {
	it, ok := m.items[id]
	if !ok {
		return item.Item{}, domain.ErrItemNotFound
	}
	return it, nil
}

func (m *mockRepo) List(_ context.Context, _ item.Kind, _ item.Filter) ([]item.Item, error) {
	out := make([]item.Item, 0, len(m.items))
	for _, it := range m.items {
		out = append(out, it)
	}
	return out, nil
}

type mockEmbedder struct {
	vec    []float32
	err    error
	calls  int
	inputs []string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.calls++
	m.inputs = append(m.inputs, text)
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec}, nil
}

type mockAnalyzer struct {
	analysis domain.ImageAnalysis
	err      error
	called   bool
}

func (m *mockAnalyzer) Analyze(_ context.Context, _ string) (domain.ImageAnalysis, error) {
	m.called = true
	return m.analysis, m.err
}

func draft() Draft {
	return Draft{Title: "Black Backpack", Description: "worn nike backpack", Location: "Gym"}
}

// --- Tests ---

func TestCreate_EmbedsCombinedText(t *testing.T) {
	repo := newMockRepo()
	embed := &mockEmbedder{vec: []float32{0.1, 0.2}}
	svc := New(repo, embed, nil, nil)

	it, err := svc.Create(context.Background(), item.Lost, draft())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if it.ID() == 0 {
		t.Error("expected storage-assigned ID")
	}
	if it.TextEmbedding() == nil {
		t.Error("expected text embedding on created item")
	}
	want := "Black Backpack worn nike backpack Gym"
	if embed.inputs[0] != want {
		t.Errorf("embedding input = %q, want %q", embed.inputs[0], want)
	}
}

func TestCreate_EmbeddingFailureStillStores(t *testing.T) {
	repo := newMockRepo()
	embed := &mockEmbedder{err: domain.ErrEmbeddingProviderError}
	svc := New(repo, embed, nil, nil)

	it, err := svc.Create(context.Background(), item.Lost, draft())
	if err != nil {
		t.Fatalf("embedding failure must not fail intake: %v", err)
	}
	if it.TextEmbedding() != nil {
		t.Error("expected no embedding after provider failure")
	}
	if repo.created != 1 {
		t.Error("item should still be stored")
	}
}

func TestCreate_ImageAnalysis(t *testing.T) {
	repo := newMockRepo()
	embed := &mockEmbedder{vec: []float32{0.5}}
	analyzer := &mockAnalyzer{analysis: domain.ImageAnalysis{
		Caption:    "a black nike backpack on a bench",
		Categories: []string{"backpack", "bag"},
		Colors:     []string{"black"},
	}}
	svc := New(repo, embed, analyzer, nil)

	d := draft()
	d.ImagePath = "/uploads/42.jpg"
	it, err := svc.Create(context.Background(), item.Found, d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !analyzer.called {
		t.Fatal("analyzer should run when an image is attached")
	}
	if len(it.Categories()) != 2 || len(it.ColorTags()) != 1 {
		t.Errorf("tags not applied: %v / %v", it.Categories(), it.ColorTags())
	}
	if it.ImageFeatures() == nil {
		t.Error("expected caption embedding as image features")
	}
	if embed.calls != 2 {
		t.Errorf("expected 2 embed calls (text + caption), got %d", embed.calls)
	}
}

func TestCreate_NoImageSkipsAnalyzer(t *testing.T) {
	analyzer := &mockAnalyzer{}
	svc := New(newMockRepo(), &mockEmbedder{vec: []float32{1}}, analyzer, nil)

	if _, err := svc.Create(context.Background(), item.Lost, draft()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if analyzer.called {
		t.Error("analyzer must not run without an image")
	}
}

func TestCreate_ValidationError(t *testing.T) {
	svc := New(newMockRepo(), nil, nil, nil)

	_, err := svc.Create(context.Background(), item.Lost, Draft{Title: "x"})
	if !errors.Is(err, domain.ErrInvalidItem) {
		t.Fatalf("expected ErrInvalidItem, got %v", err)
	}
}

func TestRefresh_RegeneratesSignals(t *testing.T) {
	repo := newMockRepo()
	embed := &mockEmbedder{vec: []float32{0.9}}
	svc := New(repo, embed, nil, nil)

	created, err := svc.Create(context.Background(), item.Lost, draft())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	refreshed, err := svc.Refresh(context.Background(), item.Lost, created.ID())
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.TextEmbedding() == nil {
		t.Error("expected regenerated embedding")
	}
	if repo.updated != 1 {
		t.Error("refresh should persist the item")
	}
}

func TestRefresh_MissingItem(t *testing.T) {
	svc := New(newMockRepo(), nil, nil, nil)

	_, err := svc.Refresh(context.Background(), item.Lost, 99)
	if !errors.Is(err, domain.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}
