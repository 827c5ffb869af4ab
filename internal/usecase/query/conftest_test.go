package query

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/contractops/slaquery/internal/domain"
)

type mockLimiter struct {
	allowErr    error
	recordErr   error
	allowCalls  int
	recordCalls int
}

func (m *mockLimiter) Allow(_ context.Context, _ string) error {
	m.allowCalls++
	return m.allowErr
}

func (m *mockLimiter) Record(_ context.Context, _ string) error {
	m.recordCalls++
	return m.recordErr
}

type mockCache struct {
	payload  domain.AnswerPayload
	hit      bool
	getErr   error
	putErr   error
	getCalls int
	puts     []domain.AnswerPayload
	putTTL   time.Duration
}

func (m *mockCache) Get(_ context.Context, _ string) (domain.AnswerPayload, bool, error) {
	m.getCalls++
	return m.payload, m.hit, m.getErr
}

func (m *mockCache) Put(_ context.Context, _ string, payload domain.AnswerPayload, ttl time.Duration) error {
	m.puts = append(m.puts, payload)
	m.putTTL = ttl
	return m.putErr
}

type mockEmbedder struct {
	vector domain.Vector
	err    error
	calls  int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.Vector, error) {
	m.calls++
	return m.vector, m.err
}

type mockRetriever struct {
	doc       domain.Document
	found     bool
	err       error
	calls     int
	gotVector domain.Vector
}

func (m *mockRetriever) Search(_ context.Context, _ string, vector domain.Vector) (domain.Document, bool, error) {
	m.calls++
	m.gotVector = vector
	return m.doc, m.found, m.err
}

type mockSynthesizer struct {
	answer string
	calls  int
	gotDoc domain.Document
}

func (m *mockSynthesizer) Synthesize(_ context.Context, _ string, doc domain.Document) string {
	m.calls++
	m.gotDoc = doc
	return m.answer
}

type fixture struct {
	limiter  *mockLimiter
	cache    *mockCache
	embed    *mockEmbedder
	retrieve *mockRetriever
	synth    *mockSynthesizer
	svc      *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		limiter:  &mockLimiter{},
		cache:    &mockCache{},
		embed:    &mockEmbedder{vector: domain.Vector{0.1, 0.2}},
		retrieve: &mockRetriever{doc: domain.Document{Title: "contract", Content: "text", Score: 0.9}, found: true},
		synth:    &mockSynthesizer{answer: "2 hours"},
	}
	f.svc = New(f.limiter, f.cache, f.embed, f.retrieve, f.synth, time.Hour, zap.NewNop())
	return f
}
