package query

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/contractops/slaquery/internal/domain"
	"github.com/contractops/slaquery/internal/metrics"
)

// Terminal outcomes, used as metric labels.
const (
	outcomeCacheHit    = "cache_hit"
	outcomeResolved    = "resolved"
	outcomeNoResult    = "no_result"
	outcomeRateLimited = "rate_limited"
	outcomeError       = "error"
)

// Service orchestrates one query resolution: admission, cache check, embed,
// retrieve, synthesize, cache write. Requests are independent; two concurrent
// misses for the same text both run the full pipeline and the last cache
// write wins. That duplicate upstream work is the accepted price of not
// holding a distributed lock.
type Service struct {
	limiter  Limiter
	cache    Cache
	embed    Embedder
	retrieve Retriever
	synth    Synthesizer
	cacheTTL time.Duration
	logger   *zap.Logger
}

// New creates a query orchestrator.
func New(
	limiter Limiter,
	cache Cache,
	embed Embedder,
	retrieve Retriever,
	synth Synthesizer,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *Service {
	return &Service{
		limiter:  limiter,
		cache:    cache,
		embed:    embed,
		retrieve: retrieve,
		synth:    synth,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// Resolve answers one query for the given identity. Elapsed time on every
// terminal path is measured from admission, so hits and misses time
// comparably from the same start point.
func (s *Service) Resolve(ctx context.Context, identity, text string) (domain.AnswerResult, error) {
	start := time.Now()

	if text == "" {
		return domain.AnswerResult{}, domain.ErrQueryRequired
	}

	if err := s.limiter.Allow(ctx, identity); err != nil {
		if errors.Is(err, domain.ErrRateLimited) {
			s.observe(outcomeRateLimited, start)
			return domain.AnswerResult{}, err
		}
		s.observe(outcomeError, start)
		return domain.AnswerResult{}, fmt.Errorf("admission check: %w", err)
	}

	payload, hit, err := s.cache.Get(ctx, text)
	if err != nil {
		// A flaky cache degrades to recomputation, not to failure.
		s.logger.Warn("response cache read failed", zap.Error(err))
	}
	if hit {
		metrics.CacheTotal.WithLabelValues("hit").Inc()
		return s.finish(outcomeCacheHit, start, payload.Solution, true), nil
	}
	metrics.CacheTotal.WithLabelValues("miss").Inc()

	// Only the miss path consumes quota; a hit costs nothing beyond admission.
	if err := s.limiter.Record(ctx, identity); err != nil {
		s.logger.Warn("rate limit record failed", zap.Error(err))
	}

	vector, err := s.embed.Embed(ctx, text)
	if err != nil {
		s.observe(outcomeError, start)
		return domain.AnswerResult{}, fmt.Errorf("embed query: %w", err)
	}

	doc, found, err := s.retrieve.Search(ctx, text, vector)
	if err != nil {
		s.observe(outcomeError, start)
		return domain.AnswerResult{}, fmt.Errorf("retrieve documents: %w", err)
	}
	if !found {
		return s.finish(outcomeNoResult, start, domain.NoResultAnswer, false), nil
	}

	solution := s.synth.Synthesize(ctx, text, doc)

	if solution != domain.NoAnswerSentinel && solution != "" {
		if err := s.cache.Put(ctx, text, domain.AnswerPayload{Solution: solution}, s.cacheTTL); err != nil {
			s.logger.Warn("response cache write failed", zap.Error(err))
		}
	}

	return s.finish(outcomeResolved, start, solution, false), nil
}

func (s *Service) finish(outcome string, start time.Time, solution string, cached bool) domain.AnswerResult {
	s.observe(outcome, start)
	return domain.AnswerResult{
		Response: solution,
		Cached:   cached,
		Elapsed:  roundSeconds(time.Since(start)),
	}
}

func (s *Service) observe(outcome string, start time.Time) {
	metrics.QueryRequestsTotal.WithLabelValues(outcome).Inc()
	metrics.QueryDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}

// roundSeconds rounds wall time to two decimal places, the caller contract.
func roundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*100) / 100
}
