package domain

// Vector is a fixed-dimension embedding produced by the embedding service.
// It is computed once per query and never mutated afterwards.
type Vector []float32

// Document is a contract document returned by hybrid retrieval.
// Embedding is nil when the indexed document carries no stored vector;
// such documents are still reachable through the lexical clause.
type Document struct {
	Title     string
	Content   string
	Embedding Vector
	Score     float64
}

// SourceDocument is a document submitted for ingestion. The embedding is
// filled in by the ingest pipeline before indexing.
type SourceDocument struct {
	Title     string
	Content   string
	Metadata  map[string]any
	Embedding Vector
}

// AnswerPayload is the cacheable outcome of a resolved query.
type AnswerPayload struct {
	Solution string `json:"solution"`
}

// AnswerResult is returned to the caller for every terminal path of the
// resolution pipeline. Elapsed is wall time in seconds, measured from
// admission and rounded to two decimals, for cache hits and misses alike.
type AnswerResult struct {
	Response string
	Cached   bool
	Elapsed  float64
}

// TokenUsage mirrors the completion service's usage metadata. It is logged
// and counted, never used in control flow.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// NoAnswerSentinel is the reserved answer meaning the generative service
// produced no usable solution. It is never written to the response cache.
const NoAnswerSentinel = "No feasible solution found"

// NoResultAnswer is returned when retrieval yields no documents at all.
// Like the sentinel, it is never cached.
const NoResultAnswer = "No matching documents found"
