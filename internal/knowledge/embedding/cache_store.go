package embedding

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/lk2023060901/text-chunker/internal/pkg/redis"
)

// CacheStore 向量缓存存储
type CacheStore interface {
	// Get 命中返回 (vec, true, nil)，未命中返回 (nil, false, nil)
	Get(ctx context.Context, key string) ([]float32, bool, error)
	Set(ctx context.Context, key string, vec []float32) error
}

// MemoryStore 进程内 LRU 缓存
type MemoryStore struct {
	lru *expirable.LRU[string, []float32]
}

// NewMemoryStore 创建 LRU 缓存，ttl 为 0 表示不过期
func NewMemoryStore(size int, ttl time.Duration) *MemoryStore {
	if size <= 0 {
		size = 10000
	}
	return &MemoryStore{
		lru: expirable.NewLRU[string, []float32](size, nil, ttl),
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]float32, bool, error) {
	vec, ok := s.lru.Get(key)
	return vec, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, vec []float32) error {
	s.lru.Add(key, vec)
	return nil
}

// Len 当前缓存条目数
func (s *MemoryStore) Len() int {
	return s.lru.Len()
}

// RedisStore Redis 缓存
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore 创建 Redis 缓存
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]float32, bool, error) {
	data, err := s.client.GetBytes(ctx, key)
	if err != nil {
		if redis.IsNil(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var vec []float32
	if err := json.Unmarshal(data, &vec); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached embedding: %w", err)
	}
	return vec, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, vec []float32) error {
	data, err := json.Marshal(vec)
	if err != nil {
		return fmt.Errorf("failed to marshal embedding: %w", err)
	}
	if err := s.client.Set(ctx, key, data, s.ttl); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}
