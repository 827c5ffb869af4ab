package chi

import (
	"context"
	"io"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/contractops/slaquery/internal/domain"
	healthuc "github.com/contractops/slaquery/internal/usecase/health"
	ingestuc "github.com/contractops/slaquery/internal/usecase/ingest"
	queryuc "github.com/contractops/slaquery/internal/usecase/query"
)

type stubLimiter struct {
	allowErr error
}

func (s *stubLimiter) Allow(_ context.Context, _ string) error  { return s.allowErr }
func (s *stubLimiter) Record(_ context.Context, _ string) error { return nil }

type stubCache struct {
	payload domain.AnswerPayload
	hit     bool
	puts    int
}

func (s *stubCache) Get(_ context.Context, _ string) (domain.AnswerPayload, bool, error) {
	return s.payload, s.hit, nil
}

func (s *stubCache) Put(_ context.Context, _ string, _ domain.AnswerPayload, _ time.Duration) error {
	s.puts++
	return nil
}

type stubEmbedder struct {
	vector domain.Vector
	err    error
	calls  int
}

func (s *stubEmbedder) Embed(_ context.Context, _ string) (domain.Vector, error) {
	s.calls++
	return s.vector, s.err
}

type stubRetriever struct {
	doc   domain.Document
	found bool
	err   error
}

func (s *stubRetriever) Search(_ context.Context, _ string, _ domain.Vector) (domain.Document, bool, error) {
	return s.doc, s.found, s.err
}

type stubSynthesizer struct {
	answer string
}

func (s *stubSynthesizer) Synthesize(_ context.Context, _ string, _ domain.Document) string {
	return s.answer
}

type stubIndexer struct {
	indexed int
}

func (s *stubIndexer) Index(_ context.Context, _ domain.SourceDocument) error {
	s.indexed++
	return nil
}

type stubPinger struct {
	err error
}

func (s *stubPinger) Ping(_ context.Context) error { return s.err }

type stubExporter struct {
	lines []string
	err   error
	index string
}

func (s *stubExporter) Export(_ context.Context, index string, w io.Writer) error {
	s.index = index
	if s.err != nil {
		return s.err
	}
	for _, line := range s.lines {
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// deps bundles the stubbed collaborators behind a test server.
type deps struct {
	limiter   *stubLimiter
	cache     *stubCache
	embed     *stubEmbedder
	retrieve  *stubRetriever
	synth     *stubSynthesizer
	indexer   *stubIndexer
	storePing *stubPinger
	esPing    *stubPinger
	exporter  *stubExporter
}

func newTestServer(t *testing.T) (*Server, *deps) {
	t.Helper()

	d := &deps{
		limiter:   &stubLimiter{},
		cache:     &stubCache{},
		embed:     &stubEmbedder{vector: domain.Vector{0.1}},
		retrieve:  &stubRetriever{doc: domain.Document{Title: "t", Content: "c", Score: 0.9}, found: true},
		synth:     &stubSynthesizer{answer: "2 hours"},
		indexer:   &stubIndexer{},
		storePing: &stubPinger{},
		esPing:    &stubPinger{},
		exporter:  &stubExporter{lines: []string{`{"_id":"1"}`}},
	}

	logger := zap.NewNop()
	querySvc := queryuc.New(d.limiter, d.cache, d.embed, d.retrieve, d.synth, time.Hour, logger)
	ingestSvc := ingestuc.New(d.embed, d.indexer, logger)
	healthSvc := healthuc.New(d.storePing, d.esPing)

	return NewServer(querySvc, ingestSvc, healthSvc, d.exporter, "customer_contracts", logger), d
}
