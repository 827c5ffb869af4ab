package respcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/contractops/slaquery/internal/db"
	"github.com/contractops/slaquery/internal/domain"
)

var cacheKeyPrefix = domain.KeyPrefix + "search:"

// store is the consumer interface for the response cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Cache memoizes resolved answers in the KV store. Keys are the verbatim
// query bytes under a namespace prefix: no case-folding, no trimming.
// Queries meant to share an entry must be byte-identical.
type Cache struct {
	store store
}

// New creates a response cache over the KV store.
func New(s store) *Cache {
	return &Cache{store: s}
}

// Get returns the cached payload for the query text, if present. A corrupt
// entry reads as a miss so the pipeline recomputes it instead of failing.
func (c *Cache) Get(ctx context.Context, query string) (domain.AnswerPayload, bool, error) {
	data, err := c.store.Get(ctx, c.key(query))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.AnswerPayload{}, false, nil
		}
		return domain.AnswerPayload{}, false, fmt.Errorf("response cache GET: %w", err)
	}

	var payload domain.AnswerPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return domain.AnswerPayload{}, false, nil
	}
	return payload, true, nil
}

// Put stores the payload with the given TTL. Callers only invoke Put for
// genuine solutions; expiry is passive via the store's own TTL.
func (c *Cache) Put(ctx context.Context, query string, payload domain.AnswerPayload, ttl time.Duration) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("response cache marshal: %w", err)
	}
	if err := c.store.SetWithTTL(ctx, c.key(query), data, ttl); err != nil {
		return fmt.Errorf("response cache SET: %w", err)
	}
	return nil
}

func (c *Cache) key(query string) string {
	return cacheKeyPrefix + query
}
