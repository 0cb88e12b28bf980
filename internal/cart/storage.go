package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrNoEntry = errors.New("no stored cart")

// Storage is the key-value entry a Store persists its items to.
type Storage interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

// SessionKey is the storage key of the cart owned by a session.
func SessionKey(sessionID string) string {
	return fmt.Sprintf("cart:%s", sessionID)
}

type RedisStorage struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStorage keeps carts in redis; every save refreshes the ttl.
// A zero ttl keeps entries forever.
func NewRedisStorage(client *redis.Client, ttl time.Duration) *RedisStorage {
	return &RedisStorage{client: client, ttl: ttl}
}

func (r *RedisStorage) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoEntry
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return data, nil
}

func (r *RedisStorage) Save(ctx context.Context, key string, data []byte) error {
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// MemoryStorage is a process-local Storage used when redis is not configured.
type MemoryStorage struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{entries: make(map[string][]byte)}
}

func (m *MemoryStorage) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.entries[key]
	if !ok {
		return nil, ErrNoEntry
	}
	return append([]byte(nil), data...), nil
}

func (m *MemoryStorage) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = append([]byte(nil), data...)
	return nil
}
