package ingest

import (
	"context"

	"github.com/contractops/slaquery/internal/domain"
)

// Embedder converts document content to a stored vector.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.Vector, error)
}

// Indexer writes embedded documents into the search index.
type Indexer interface {
	Index(ctx context.Context, doc domain.SourceDocument) error
}
