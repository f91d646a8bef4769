// internal/app/system/notify/stores.go
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
)

// memoryEntries caps the in-process debounce cache. Entries expire on their
// own; the cap only bounds memory under pathological key churn.
const memoryEntries = 4096

// memoryStore is the single-instance debounce store. Entries live only for
// the process lifetime and are rebuilt empty on restart; nothing is shared
// across instances. Deployments running more
// than one instance should use NewRedis instead.
type memoryStore struct {
	mu    sync.Mutex
	cache *expirable.LRU[string, time.Time]
}

// NewMemory creates an in-process TTL store. window must match the
// debouncer's window: the cache evicts entries after exactly that long.
func NewMemory(window time.Duration) Store {
	return &memoryStore{
		cache: expirable.NewLRU[string, time.Time](memoryEntries, nil, window),
	}
}

func (m *memoryStore) Claim(_ context.Context, key string, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cache.Get(key); ok {
		return false, nil
	}
	m.cache.Add(key, time.Now())
	return true, nil
}

func (m *memoryStore) Touch(_ context.Context, key string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache.Add(key, time.Now())
	return nil
}

// redisStore backs the debounce map with Redis so suppression is shared
// across process instances. SET NX with a TTL is the claim primitive:
// exactly one concurrent caller wins the key.
type redisStore struct {
	rdb *redis.Client
}

// NewRedis creates a Redis-backed store.
func NewRedis(rdb *redis.Client) Store {
	return &redisStore{rdb: rdb}
}

func (r *redisStore) Claim(ctx context.Context, key string, window time.Duration) (bool, error) {
	return r.rdb.SetNX(ctx, "notify:"+key, time.Now().UnixMilli(), window).Result()
}

func (r *redisStore) Touch(ctx context.Context, key string, window time.Duration) error {
	return r.rdb.Set(ctx, "notify:"+key, time.Now().UnixMilli(), window).Err()
}
