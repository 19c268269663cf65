package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/refindlab/refind/internal/domain"
	"github.com/refindlab/refind/internal/metrics"
)

const visionPrompt = `Analyze this photo of a lost or found item. Respond with a JSON object only:
{"caption": "one sentence describing the item", "categories": ["item type tags"], "colors": ["dominant colors"]}
Use short lowercase tags, e.g. "backpack", "phone", "black", "blue".`

const visionMaxTokens = 300

// Vision analyzes item photos via an OpenAI-compatible vision model.
type Vision struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewVision creates an OpenAI-compatible image analysis provider.
func NewVision(cfg *Config) *Vision {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Vision{
		client: newClient(cfg),
		model:  cfg.Model,
		logger: logger,
	}
}

// Analyze implements domain.ImageAnalyzer: the photo is inlined as a
// base64 data URL and the model is asked for a caption plus tags.
func (v *Vision) Analyze(ctx context.Context, path string) (domain.ImageAnalysis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.ImageAnalysis{}, fmt.Errorf("read image %s: %w", path, err)
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s",
		http.DetectContentType(data), base64.StdEncoding.EncodeToString(data))

	start := time.Now()
	resp, err := v.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     v.model,
		MaxTokens: visionMaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: visionPrompt},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
					},
				},
			},
		},
	})
	duration := time.Since(start)

	if err != nil {
		metrics.ChatRequestsTotal.WithLabelValues(v.model, "error").Inc()
		return domain.ImageAnalysis{}, parseAPIError("vision", err, domain.ErrAnalysisUnavailable)
	}

	if len(resp.Choices) == 0 {
		metrics.ChatRequestsTotal.WithLabelValues(v.model, "error").Inc()
		return domain.ImageAnalysis{}, fmt.Errorf("empty vision response: %w", domain.ErrAnalysisUnavailable)
	}

	metrics.ChatRequestsTotal.WithLabelValues(v.model, "success").Inc()
	metrics.ChatRequestDuration.WithLabelValues(v.model).Observe(duration.Seconds())

	return parseAnalysis(resp.Choices[0].Message.Content)
}

func parseAnalysis(content string) (domain.ImageAnalysis, error) {
	var parsed struct {
		Caption    string   `json:"caption"`
		Categories []string `json:"categories"`
		Colors     []string `json:"colors"`
	}
	if err := json.Unmarshal([]byte(domain.StripCodeFence(content)), &parsed); err != nil {
		return domain.ImageAnalysis{}, fmt.Errorf("parse vision response: %w", domain.ErrAnalysisUnavailable)
	}
	if parsed.Caption == "" {
		return domain.ImageAnalysis{}, fmt.Errorf("vision response without caption: %w", domain.ErrAnalysisUnavailable)
	}
	return domain.ImageAnalysis{
		Caption:    parsed.Caption,
		Categories: parsed.Categories,
		Colors:     parsed.Colors,
	}, nil
}
