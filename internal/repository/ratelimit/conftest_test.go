package ratelimit

import (
	"context"
	"time"

	"github.com/contractops/slaquery/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	getFn    func(ctx context.Context, key string) ([]byte, error)
	incrFn   func(ctx context.Context, key string) (int64, error)
	expireFn func(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) Incr(ctx context.Context, key string) (int64, error) {
	if m.incrFn != nil {
		return m.incrFn(ctx, key)
	}
	return 1, nil
}

func (m *mockStore) Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error {
	if m.expireFn != nil {
		return m.expireFn(ctx, key, ttl, nx)
	}
	return nil
}
