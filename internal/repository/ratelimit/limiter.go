package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/contractops/slaquery/internal/db"
	"github.com/contractops/slaquery/internal/domain"
)

var windowKeyPrefix = domain.KeyPrefix + "rate_limit:"

// store is the consumer interface for limiter operations (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// Limiter implements fixed-window admission over the KV store. One window key
// per identity; the store's TTL resets the window, no client-side state.
type Limiter struct {
	store  store
	max    int64
	window time.Duration
}

// New creates a fixed-window limiter admitting at most maxRequests per window.
func New(s store, maxRequests int, window time.Duration) *Limiter {
	return &Limiter{store: s, max: int64(maxRequests), window: window}
}

// Allow checks the identity's current window counter without consuming quota.
// A missing key means no active window and admits. Returns
// domain.ErrRateLimited when the counter has reached the maximum.
func (l *Limiter) Allow(ctx context.Context, identity string) error {
	data, err := l.store.Get(ctx, l.key(identity))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil
		}
		return fmt.Errorf("rate limit GET %s: %w", identity, err)
	}

	count, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("rate limit GET %s parse: %w", identity, err)
	}
	if count >= l.max {
		return fmt.Errorf("identity %s: %w", identity, domain.ErrRateLimited)
	}
	return nil
}

// Record advances the identity's counter. INCR creates the key at 1 when the
// window is fresh; EXPIRE NX starts the window TTL only then, so repeat
// requests never extend it.
func (l *Limiter) Record(ctx context.Context, identity string) error {
	key := l.key(identity)
	if _, err := l.store.Incr(ctx, key); err != nil {
		return fmt.Errorf("rate limit INCR %s: %w", identity, err)
	}
	if err := l.store.Expire(ctx, key, l.window, true); err != nil {
		return fmt.Errorf("rate limit EXPIRE %s: %w", identity, err)
	}
	return nil
}

func (l *Limiter) key(identity string) string {
	return windowKeyPrefix + identity
}
