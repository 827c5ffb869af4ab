package contracts

import (
	"encoding/json"

	"github.com/contractops/slaquery/internal/domain"
)

// Hybrid query tuning, agreed with the index layout.
const (
	knnTopK       = 5
	knnCandidates = 10
)

// hybridQuery builds the combined lexical + vector search body: a fuzzy
// multi_match over title/content OR a kNN clause over the stored embedding,
// with at least one clause required. Documents without a stored embedding
// stay reachable through the lexical side.
func hybridQuery(query string, vector domain.Vector) map[string]any {
	return map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"should": []any{
					map[string]any{
						"multi_match": map[string]any{
							"query":     query,
							"fields":    []string{"title", "content"},
							"fuzziness": "AUTO",
						},
					},
					map[string]any{
						"knn": map[string]any{
							"field":          "embedding",
							"query_vector":   vector,
							"k":              knnTopK,
							"num_candidates": knnCandidates,
						},
					},
				},
				"minimum_should_match": 1,
			},
		},
	}
}

// searchResponse mirrors the engine's search reply.
type searchResponse struct {
	Hits struct {
		Hits []hit `json:"hits"`
	} `json:"hits"`
}

type hit struct {
	Score  float64   `json:"_score"`
	Source docSource `json:"_source"`
}

type docSource struct {
	Title     string        `json:"title"`
	Content   string        `json:"content"`
	Embedding domain.Vector `json:"embedding,omitempty"`
}

// indexedDocument is the wire shape written on ingest.
type indexedDocument struct {
	Title     string         `json:"title"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Embedding domain.Vector  `json:"embedding"`
	Timestamp string         `json:"timestamp"`
}

// scrollResponse keeps hits raw so the export stream preserves them verbatim.
type scrollResponse struct {
	ScrollID string `json:"_scroll_id"`
	Hits     struct {
		Hits []json.RawMessage `json:"hits"`
	} `json:"hits"`
}
