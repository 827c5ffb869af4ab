package openai

import (
	"context"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/contractops/slaquery/internal/domain"
	"github.com/contractops/slaquery/internal/metrics"
)

// Generator produces chat completions for answer synthesis.
type Generator struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// Config holds the completion provider settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewGenerator creates an OpenAI-compatible completion provider.
func NewGenerator(cfg *Config) *Generator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Generator{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		logger: cfg.Logger,
	}
}

// Complete sends one system+user exchange and returns the generated text with
// token usage. Usage is logged and counted, never used in control flow.
func (g *Generator) Complete(ctx context.Context, system, user string) (string, domain.TokenUsage, error) {
	start := time.Now()

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})

	duration := time.Since(start)

	if err != nil {
		metrics.GenerationRequestsTotal.WithLabelValues(g.model, "error").Inc()
		return "", domain.TokenUsage{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		metrics.GenerationRequestsTotal.WithLabelValues(g.model, "error").Inc()
		return "", domain.TokenUsage{}, fmt.Errorf("empty completion response")
	}

	metrics.GenerationRequestsTotal.WithLabelValues(g.model, "success").Inc()
	metrics.GenerationRequestDuration.WithLabelValues(g.model).Observe(duration.Seconds())

	usage := domain.TokenUsage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
	metrics.GenerationTokensTotal.WithLabelValues(g.model, "prompt").Add(float64(usage.PromptTokens))
	metrics.GenerationTokensTotal.WithLabelValues(g.model, "completion").Add(float64(usage.CompletionTokens))
	metrics.GenerationTokensTotal.WithLabelValues(g.model, "total").Add(float64(usage.TotalTokens))

	g.logger.Info("completion received",
		zap.Int("prompt_tokens", usage.PromptTokens),
		zap.Int("completion_tokens", usage.CompletionTokens),
		zap.Int("total_tokens", usage.TotalTokens),
		zap.Duration("duration", duration),
	)

	return resp.Choices[0].Message.Content, usage, nil
}
