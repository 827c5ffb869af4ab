package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/contractops/slaquery/internal/domain"
)

// Service embeds and indexes uploaded documents.
type Service struct {
	embed   Embedder
	indexer Indexer
	logger  *zap.Logger
}

// New creates an ingest service.
func New(embed Embedder, indexer Indexer, logger *zap.Logger) *Service {
	return &Service{embed: embed, indexer: indexer, logger: logger}
}

// Upload validates, embeds, and indexes a batch of documents. The whole batch
// is validated before any embedding call so a malformed document costs no
// upstream work.
func (s *Service) Upload(ctx context.Context, docs []domain.SourceDocument) error {
	if len(docs) == 0 {
		return fmt.Errorf("documents list is empty: %w", domain.ErrDocumentInvalid)
	}
	for i, doc := range docs {
		if doc.Title == "" || doc.Content == "" {
			return fmt.Errorf("document %d: title and content are required: %w", i, domain.ErrDocumentInvalid)
		}
	}

	for _, doc := range docs {
		vector, err := s.embed.Embed(ctx, doc.Content)
		if err != nil {
			return fmt.Errorf("embed document %q: %w", doc.Title, err)
		}
		doc.Embedding = vector

		if err := s.indexer.Index(ctx, doc); err != nil {
			return fmt.Errorf("index document %q: %w", doc.Title, err)
		}
		s.logger.Info("document indexed", zap.String("title", doc.Title))
	}
	return nil
}
