package guestcart

import (
	"context"
	"errors"
	"sync"

	redisclient "github.com/neonshoplabs/neonshop-backend/pkg/redis"
)

// ErrNotFound signals an absent cart document.
var ErrNotFound = errors.New("guest cart not found")

// Storage is the key-value substrate a Store persists cart documents into.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Del(ctx context.Context, key string) error
}

// MemoryStorage is an in-process Storage for tests and storage-free
// environments.
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryStorage returns an empty in-memory backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string]string)}
}

// Get returns the stored document or ErrNotFound.
func (m *MemoryStorage) Get(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

// Set stores the document.
func (m *MemoryStorage) Set(ctx context.Context, key string, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Del removes the document if present.
func (m *MemoryStorage) Del(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// RedisStorage persists cart documents in Redis without a TTL; guest carts
// never expire on their own.
type RedisStorage struct {
	client *redisclient.Client
}

// NewRedisStorage wraps the shared Redis client.
func NewRedisStorage(client *redisclient.Client) (*RedisStorage, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	return &RedisStorage{client: client}, nil
}

// Get returns the stored document, mapping redis.Nil to ErrNotFound.
func (r *RedisStorage) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, r.client.GuestCartKey(key))
	if err != nil {
		if errors.Is(err, redisclient.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

// Set stores the document without expiry.
func (r *RedisStorage) Set(ctx context.Context, key string, value string) error {
	return r.client.Set(ctx, r.client.GuestCartKey(key), value, 0)
}

// Del removes the document.
func (r *RedisStorage) Del(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.client.GuestCartKey(key))
}
