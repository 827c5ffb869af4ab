package answer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/contractops/slaquery/internal/domain"
)

// Marker is the literal tag the model is instructed to lead its answer line
// with. Extraction depends on this exact prefix followed by a colon.
const Marker = "**SLA**"

const systemPrompt = "You are an assistant that tracks our partner contracts. " +
	"Determine whether an SLA applies to the content below."

// Service synthesizes a structured answer from unstructured generative output.
type Service struct {
	gen    Generator
	logger *zap.Logger
}

// New creates a synthesizer.
func New(gen Generator, logger *zap.Logger) *Service {
	return &Service{gen: gen, logger: logger}
}

// Synthesize asks the completion service for an SLA grounded in the retrieved
// document and extracts the marker line. It never fails upward: any provider
// failure or missing marker degrades to domain.NoAnswerSentinel, which
// callers must not cache.
func (s *Service) Synthesize(ctx context.Context, query string, doc domain.Document) string {
	text, _, err := s.gen.Complete(ctx, systemPrompt, buildPrompt(query, doc))
	if err != nil {
		s.logger.Warn("completion failed, degrading to sentinel", zap.Error(err))
		return domain.NoAnswerSentinel
	}

	solution := Extract(text)
	if solution == domain.NoAnswerSentinel {
		s.logger.Warn("answer marker not found in completion")
	}
	return solution
}

// buildPrompt embeds the document as JSON context plus the literal query and
// pins the expected response format to the marker line.
func buildPrompt(query string, doc domain.Document) string {
	docCtx, _ := json.Marshal(struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}{doc.Title, doc.Content})

	return fmt.Sprintf(
		"Use the following contract content to find the SLA the partner must meet for the reported problem:\n%s\n\n"+
			"User query: %s\n\n"+
			"Respond with:\n%s: [the SLA according to the contract] "+
			"or respond with %q if none applies.\n",
		docCtx, query, Marker, domain.NoAnswerSentinel,
	)
}

// Extract parses the completion text: the first line whose prefix is the
// marker yields everything after the first colon on that line, trimmed. No
// marker line, or a marker line without a colon, yields the sentinel.
func Extract(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if !strings.HasPrefix(line, Marker) {
			continue
		}
		if _, rest, ok := strings.Cut(line, ":"); ok {
			return strings.TrimSpace(rest)
		}
		return domain.NoAnswerSentinel
	}
	return domain.NoAnswerSentinel
}
