package refind

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/refindlab/refind/internal/db"
	dbRedis "github.com/refindlab/refind/internal/db/redis"
	"github.com/refindlab/refind/internal/domain"
	"github.com/refindlab/refind/internal/domain/item"
	"github.com/refindlab/refind/internal/domain/submission"
	"github.com/refindlab/refind/internal/metrics"
	catalogrepo "github.com/refindlab/refind/internal/repository/catalog"
	"github.com/refindlab/refind/internal/repository/embcache"
	submissionrepo "github.com/refindlab/refind/internal/repository/submission"
	openaiTransport "github.com/refindlab/refind/internal/transport/openai"
	cataloguc "github.com/refindlab/refind/internal/usecase/catalog"
	rankuc "github.com/refindlab/refind/internal/usecase/rank"
	searchuc "github.com/refindlab/refind/internal/usecase/search"
	semanticuc "github.com/refindlab/refind/internal/usecase/semantic"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultCacheTTL         = 7 * 24 * time.Hour

	defaultEmbeddingModel = "text-embedding-3-small"
	defaultChatModel      = "gpt-4o-mini"
)

// Client is the refind SDK entry point. It embeds the full matching
// pipeline against a Redis store, without the HTTP layer.
type Client struct {
	store       db.Store
	catalogSvc  *cataloguc.Service
	searchSvc   *searchuc.Service
	semanticSvc *semanticuc.Service
}

// New creates a refind Client and connects to the database.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		embeddingModel: defaultEmbeddingModel,
		chatModel:      defaultChatModel,
	}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.visionModel == "" {
		cfg.visionModel = cfg.chatModel
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("refind: database address required (use WithRedis)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("refind: create redis store: %w", err)
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("refind: database not ready: %w", err)
	}

	return wireClient(store, cfg), nil
}

func wireClient(store db.Store, cfg *clientConfig) *Client {
	embedder, completer, analyzer := buildProviders(store, cfg)

	itemRepo := catalogrepo.New(store)
	subRepo := submissionrepo.New(store)

	catalogSvc := cataloguc.New(itemRepo, embedder, analyzer, cfg.logger)
	searchSvc := searchuc.New(itemRepo, embedder, analyzer, rankuc.New(cfg.logger), cfg.logger).
		WithLimits(cfg.defaultLimit, cfg.maxLimit)
	semanticSvc := semanticuc.New(completer, subRepo, cfg.logger)

	return &Client{
		store:       store,
		catalogSvc:  catalogSvc,
		searchSvc:   searchSvc,
		semanticSvc: semanticSvc,
	}
}

// buildProviders mirrors the server composition root: no API key means
// nil providers, and every search degrades to its keyword fallback.
func buildProviders(store db.Store, cfg *clientConfig) (domain.Embedder, domain.Completer, domain.ImageAnalyzer) {
	if cfg.apiKey == "" {
		return nil, nil, nil
	}

	base := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:  cfg.apiKey,
		BaseURL: cfg.baseURL,
		Model:   cfg.embeddingModel,
		Logger:  cfg.logger,
	})
	embedder := embcache.New(base, store, defaultCacheTTL, metrics.EmbeddingCacheTotal, cfg.logger)

	completer := openaiTransport.NewChat(&openaiTransport.Config{
		APIKey:  cfg.apiKey,
		BaseURL: cfg.baseURL,
		Model:   cfg.chatModel,
		Logger:  cfg.logger,
	})

	analyzer := openaiTransport.NewVision(&openaiTransport.Config{
		APIKey:  cfg.apiKey,
		BaseURL: cfg.baseURL,
		Model:   cfg.visionModel,
		Logger:  cfg.logger,
	})

	return embedder, completer, analyzer
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// ReportLost files a lost item report.
func (c *Client) ReportLost(ctx context.Context, d Draft) (Item, error) {
	return c.report(ctx, item.Lost, d)
}

// ReportFound files a found item report.
func (c *Client) ReportFound(ctx context.Context, d Draft) (Item, error) {
	return c.report(ctx, item.Found, d)
}

func (c *Client) report(ctx context.Context, kind item.Kind, d Draft) (Item, error) {
	it, err := c.catalogSvc.Create(ctx, kind, cataloguc.Draft{
		Title:       d.Title,
		Description: d.Description,
		Location:    d.Location,
		ImagePath:   d.ImagePath,
	})
	if err != nil {
		return Item{}, fmt.Errorf("report %s: %w", kind, err)
	}
	return fromItem(it), nil
}

// LostItems lists all lost reports, oldest first.
func (c *Client) LostItems(ctx context.Context) ([]Item, error) {
	return c.list(ctx, item.Lost)
}

// FoundItems lists all found reports, oldest first.
func (c *Client) FoundItems(ctx context.Context) ([]Item, error) {
	return c.list(ctx, item.Found)
}

func (c *Client) list(ctx context.Context, kind item.Kind) ([]Item, error) {
	items, err := c.catalogSvc.List(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	return fromItems(items), nil
}

// Item fetches a single report by kind ("lost" or "found") and ID.
func (c *Client) Item(ctx context.Context, kind string, id int64) (Item, error) {
	k, err := item.ParseKind(kind)
	if err != nil {
		return Item{}, fmt.Errorf("item: %w", err)
	}
	it, err := c.catalogSvc.Get(ctx, k, id)
	if err != nil {
		return Item{}, fmt.Errorf("item: %w", err)
	}
	return fromItem(it), nil
}

// RefreshItem re-runs AI enrichment (embedding, image tags) on a stored report.
func (c *Client) RefreshItem(ctx context.Context, kind string, id int64) (Item, error) {
	k, err := item.ParseKind(kind)
	if err != nil {
		return Item{}, fmt.Errorf("refresh item: %w", err)
	}
	it, err := c.catalogSvc.Refresh(ctx, k, id)
	if err != nil {
		return Item{}, fmt.Errorf("refresh item: %w", err)
	}
	return fromItem(it), nil
}

// Search ranks one catalog against a text query. Options must name the
// catalog kind to search.
func (c *Client) Search(ctx context.Context, query string, opts *SearchOptions) ([]Match, error) {
	if opts == nil {
		opts = &SearchOptions{}
	}
	kind, err := item.ParseKind(opts.Kind)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	results, err := c.searchSvc.Search(ctx, searchuc.Query{
		Text:       query,
		Kind:       kind,
		Location:   opts.Location,
		Categories: opts.Categories,
		Colors:     opts.Colors,
		Limit:      opts.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return fromResults(results), nil
}

// SearchByImage ranks items by visual similarity to a local image file.
// Scope is "lost", "found", or "" for both catalogs.
func (c *Client) SearchByImage(ctx context.Context, imagePath, scope string, limit int) ([]Match, error) {
	sc, err := searchuc.ParseScope(scope)
	if err != nil {
		return nil, fmt.Errorf("search by image: %w", err)
	}
	results, err := c.searchSvc.SearchByImage(ctx, imagePath, sc, limit)
	if err != nil {
		return nil, fmt.Errorf("search by image: %w", err)
	}
	return fromResults(results), nil
}

// Submit stores a free-form community report. Name and contact may be empty.
func (c *Client) Submit(ctx context.Context, text, name, contact string) (Submission, error) {
	sub, err := c.semanticSvc.Submit(ctx, submission.Submission{
		Text:    text,
		Name:    name,
		Contact: contact,
	})
	if err != nil {
		return Submission{}, fmt.Errorf("submit: %w", err)
	}
	return fromSubmission(sub), nil
}

// Submissions lists all stored community reports, oldest first.
func (c *Client) Submissions(ctx context.Context) ([]Submission, error) {
	subs, err := c.semanticSvc.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("submissions: %w", err)
	}
	return fromSubmissions(subs), nil
}

// SemanticSearch matches stored submissions against a natural-language
// query, falling back to keyword matching when no chat provider is
// configured or the model response cannot be used.
func (c *Client) SemanticSearch(ctx context.Context, query string) ([]SubmissionMatch, error) {
	matches, err := c.semanticSvc.SearchStored(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("semantic search: %w", err)
	}
	return fromSubmissionMatches(matches), nil
}

// Suggestions returns short search tips for a query, typically after a
// search came back with few results. Best effort: an unconfigured or
// failing chat provider yields canned tips.
func (c *Client) Suggestions(ctx context.Context, query string, resultCount int) []string {
	return c.semanticSvc.Suggestions(ctx, query, resultCount)
}
