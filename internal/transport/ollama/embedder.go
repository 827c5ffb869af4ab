package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"
	"go.uber.org/zap"

	"github.com/contractops/slaquery/internal/domain"
	"github.com/contractops/slaquery/internal/metrics"
)

// Embedder produces query vectors via an Ollama embedding model.
type Embedder struct {
	client *api.Client
	model  string
	logger *zap.Logger
}

// Config holds the embedding provider settings.
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewEmbedder creates an Ollama embedding provider. The HTTP client timeout
// is the only retry/deadline mechanism: one call, bounded, no retries.
func NewEmbedder(cfg *Config) (*Embedder, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL %q: %w", cfg.BaseURL, err)
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}

	return &Embedder{
		client: api.NewClient(u, httpClient),
		model:  cfg.Model,
		logger: cfg.Logger,
	}, nil
}

// Embed converts text to a fixed-dimension vector. Any transport or provider
// failure maps to domain.ErrEmbeddingProviderError; the query path treats
// that as fatal for the request.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.Vector, error) {
	start := time.Now()

	resp, err := e.client.Embeddings(ctx, &api.EmbeddingRequest{
		Model:  e.model,
		Prompt: text,
	})

	duration := time.Since(start)

	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(e.model, "error").Inc()
		return nil, fmt.Errorf("embeddings request: %w: %w", err, domain.ErrEmbeddingProviderError)
	}
	if len(resp.Embedding) == 0 {
		metrics.EmbeddingRequestsTotal.WithLabelValues(e.model, "error").Inc()
		return nil, fmt.Errorf("empty embedding response: %w", domain.ErrEmbeddingProviderError)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(e.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(e.model).Observe(duration.Seconds())

	vec := make(domain.Vector, len(resp.Embedding))
	for i, f := range resp.Embedding {
		vec[i] = float32(f)
	}

	e.logger.Debug("embedding generated",
		zap.Int("dimensions", len(vec)),
		zap.Duration("duration", duration),
	)
	return vec, nil
}
