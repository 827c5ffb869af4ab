package domain

import "errors"

var (
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limit exceeded")
	// ErrQueryRequired signals an empty query.
	ErrQueryRequired = errors.New("query is required")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrSearchProviderError signals a search engine failure.
	ErrSearchProviderError = errors.New("search provider error")
	// ErrDocumentInvalid signals a document that cannot be ingested.
	ErrDocumentInvalid = errors.New("invalid document")
)
