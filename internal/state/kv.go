package state

import (
	"context"
	"sync"

	"github.com/yourorg/openhouse-api/internal/redisx"
)

// KV is durable string key/value storage for persisted client state.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// MemoryKV keeps values for the life of the process.
type MemoryKV struct {
	mu sync.RWMutex
	m  map[string]string
}

func NewMemoryKV() *MemoryKV { return &MemoryKV{m: map[string]string{}} }

func (kv *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	kv.mu.RLock()
	defer kv.mu.RUnlock()
	v, ok := kv.m[key]
	return v, ok, nil
}

func (kv *MemoryKV) Set(_ context.Context, key, value string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	kv.m[key] = value
	return nil
}

// RedisKV persists state in Redis without expiry.
type RedisKV struct {
	Client *redisx.Client
}

func (kv RedisKV) Get(ctx context.Context, key string) (string, bool, error) {
	return kv.Client.Get(ctx, key)
}

func (kv RedisKV) Set(ctx context.Context, key, value string) error {
	return kv.Client.Set(ctx, key, value, 0)
}
