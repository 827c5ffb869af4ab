package contracts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	elasticsearch "github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/zap"

	"github.com/contractops/slaquery/internal/domain"
)

// Repository talks to the Elasticsearch index holding contract documents.
type Repository struct {
	es     *elasticsearch.Client
	index  string
	logger *zap.Logger
}

// New creates a contracts repository over the given index.
func New(es *elasticsearch.Client, index string, logger *zap.Logger) *Repository {
	return &Repository{es: es, index: index, logger: logger}
}

// Search issues one hybrid query and folds the ranked hits down to the single
// best-scoring document. Ties resolve to the first hit in engine return
// order. The second return is false when the engine returned no hits.
func (r *Repository) Search(ctx context.Context, query string, vector domain.Vector) (domain.Document, bool, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(hybridQuery(query, vector)); err != nil {
		return domain.Document{}, false, fmt.Errorf("encode search body: %w", err)
	}

	res, err := r.es.Search(
		r.es.Search.WithContext(ctx),
		r.es.Search.WithIndex(r.index),
		r.es.Search.WithBody(&buf),
	)
	if err != nil {
		return domain.Document{}, false, fmt.Errorf("search %s: %w: %w", r.index, err, domain.ErrSearchProviderError)
	}
	defer res.Body.Close()

	if res.IsError() {
		return domain.Document{}, false, fmt.Errorf("search %s: %s: %w", r.index, res.Status(), domain.ErrSearchProviderError)
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return domain.Document{}, false, fmt.Errorf("decode search response: %w: %w", err, domain.ErrSearchProviderError)
	}

	if len(sr.Hits.Hits) == 0 {
		return domain.Document{}, false, nil
	}

	best := bestHit(sr.Hits.Hits)
	r.logger.Debug("hybrid search completed",
		zap.Int("hits", len(sr.Hits.Hits)),
		zap.Float64("best_score", best.Score),
	)

	return domain.Document{
		Title:     best.Source.Title,
		Content:   best.Source.Content,
		Embedding: best.Source.Embedding,
		Score:     best.Score,
	}, true, nil
}

// bestHit is a pure fold over the hit sequence tracking the maximum score.
// Strictly-greater comparison keeps the first-seen hit on ties.
func bestHit(hits []hit) hit {
	best := hits[0]
	for _, h := range hits[1:] {
		if h.Score > best.Score {
			best = h
		}
	}
	return best
}

// Index writes one embedded document into the contracts index.
func (r *Repository) Index(ctx context.Context, doc domain.SourceDocument) error {
	payload := indexedDocument{
		Title:     doc.Title,
		Content:   doc.Content,
		Metadata:  doc.Metadata,
		Embedding: doc.Embedding,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	res, err := r.es.Index(r.index, bytes.NewReader(data), r.es.Index.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("index %s: %w: %w", r.index, err, domain.ErrSearchProviderError)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index %s: %s: %w", r.index, res.Status(), domain.ErrSearchProviderError)
	}

	// Drain so the transport can reuse the connection.
	_, _ = io.Copy(io.Discard, res.Body)
	return nil
}

// Ping checks cluster availability.
func (r *Repository) Ping(ctx context.Context) error {
	res, err := r.es.Ping(r.es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("ping cluster: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("ping cluster: %s", res.Status())
	}
	_, _ = io.Copy(io.Discard, res.Body)
	return nil
}
