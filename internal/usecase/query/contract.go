package query

import (
	"context"
	"time"

	"github.com/contractops/slaquery/internal/domain"
)

// Limiter gates admission and advances the fixed-window counter. Allow only
// reads and compares; Record is the single place the counter moves.
type Limiter interface {
	Allow(ctx context.Context, identity string) error
	Record(ctx context.Context, identity string) error
}

// Cache memoizes positive answers keyed by verbatim query text.
type Cache interface {
	Get(ctx context.Context, query string) (domain.AnswerPayload, bool, error)
	Put(ctx context.Context, query string, payload domain.AnswerPayload, ttl time.Duration) error
}

// Embedder converts query text to a fixed-dimension vector.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.Vector, error)
}

// Retriever returns the best-matching document for a query, if any.
type Retriever interface {
	Search(ctx context.Context, text string, vector domain.Vector) (domain.Document, bool, error)
}

// Synthesizer produces the final answer text from the retrieved document.
// It never fails; degraded outcomes come back as domain.NoAnswerSentinel.
type Synthesizer interface {
	Synthesize(ctx context.Context, query string, doc domain.Document) string
}
