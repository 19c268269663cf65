package refind

import "go.uber.org/zap"

// Option configures the Client.
type Option func(*clientConfig)

type clientConfig struct {
	addrs          []string
	password       string
	apiKey         string
	baseURL        string
	embeddingModel string
	chatModel      string
	visionModel    string
	defaultLimit   int
	maxLimit       int
	logger         *zap.Logger
}

// WithRedis sets the Redis addresses to connect to.
func WithRedis(addrs ...string) Option {
	return func(c *clientConfig) {
		c.addrs = addrs
	}
}

// WithPassword sets the database password.
func WithPassword(password string) Option {
	return func(c *clientConfig) {
		c.password = password
	}
}

// WithOpenAI enables AI enrichment and search with the given API key.
// Without it items are stored untagged and searches use keyword fallbacks.
func WithOpenAI(apiKey string) Option {
	return func(c *clientConfig) {
		c.apiKey = apiKey
	}
}

// WithBaseURL points the AI provider at an OpenAI-compatible endpoint.
func WithBaseURL(url string) Option {
	return func(c *clientConfig) {
		c.baseURL = url
	}
}

// WithModels overrides the default embedding, chat, and vision models.
// Empty strings keep the defaults.
func WithModels(embedding, chat, vision string) Option {
	return func(c *clientConfig) {
		if embedding != "" {
			c.embeddingModel = embedding
		}
		if chat != "" {
			c.chatModel = chat
		}
		if vision != "" {
			c.visionModel = vision
		}
	}
}

// WithSearchLimits overrides result paging bounds.
func WithSearchLimits(defaultLimit, maxLimit int) Option {
	return func(c *clientConfig) {
		c.defaultLimit = defaultLimit
		c.maxLimit = maxLimit
	}
}

// WithLogger sets a structured logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}
