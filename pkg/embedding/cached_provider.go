package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"product-chat-be/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// Cache stores vectors by key. Misses return ok=false with a nil error.
type Cache interface {
	Get(ctx context.Context, key string) (values []float32, ok bool, err error)
	Set(ctx context.Context, key string, values []float32) error
}

// CachedProvider serves repeated texts from the cache. A hit costs no model
// call, so it reports zero tokens. Cache failures are logged and never fail
// the embedding.
type CachedProvider struct {
	next    EmbeddingProvider
	cache   Cache
	keySalt string
	logger  logger.ILogger
}

func NewCachedProvider(next EmbeddingProvider, cache Cache, model string, log logger.ILogger) *CachedProvider {
	return &CachedProvider{next: next, cache: cache, keySalt: model, logger: log}
}

func (p *CachedProvider) Generate(ctx context.Context, sessionId string, text string) (*EmbeddingResponse, error) {
	key := p.key(text)

	values, ok, err := p.cache.Get(ctx, key)
	if err != nil {
		p.warn("failed to read cached embedding", sessionId, err)
	} else if ok {
		return &EmbeddingResponse{Values: values}, nil
	}

	resp, err := p.next.Generate(ctx, sessionId, text)
	if err != nil {
		return nil, err
	}

	if err := p.cache.Set(ctx, key, resp.Values); err != nil {
		p.warn("failed to cache embedding", sessionId, err)
	}
	return resp, nil
}

func (p *CachedProvider) warn(message, sessionId string, err error) {
	p.logger.Warn("EMBEDDING_CACHE", message, map[string]interface{}{
		"session_id": sessionId,
		"error":      err.Error(),
	})
}

func (p *CachedProvider) key(text string) string {
	sum := sha256.Sum256([]byte(p.keySalt + "\x00" + text))
	return hex.EncodeToString(sum[:])
}

type RedisCache struct {
	rdb    redis.Cmdable
	ttl    time.Duration
	prefix string
}

func NewRedisCache(rdb redis.Cmdable, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl, prefix: "embedding:"}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]float32, bool, error) {
	raw, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var values []float32
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, false, err
	}
	return values, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, values []float32) error {
	raw, err := json.Marshal(values)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.prefix+key, raw, c.ttl).Err()
}
