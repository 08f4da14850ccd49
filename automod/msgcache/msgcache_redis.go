package msgcache

import (
	"context"
	"time"

	"github.com/go-redis/cache/v9"
	"github.com/redis/go-redis/v9"

	"github.com/pboennig/cs152-bot/platform"
)

type RedisMessageCache struct {
	data *cache.Cache
	ttl  time.Duration
}

var _ MessageCache = (*RedisMessageCache)(nil)

func NewRedisMessageCache(redisURL string, ttl time.Duration) (*RedisMessageCache, error) {
	ctx := context.Background()
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	// check redis connection
	_, err = rdb.Ping(ctx).Result()
	if err != nil {
		return nil, err
	}
	data := cache.New(&cache.Options{
		Redis:      rdb,
		LocalCache: cache.NewTinyLFU(10_000, ttl),
	})
	return &RedisMessageCache{
		data: data,
		ttl:  ttl,
	}, nil
}

func redisCacheKey(ref platform.MessageRef) string {
	return "modbot/msg/" + cacheKey(ref)
}

func (s *RedisMessageCache) Get(ctx context.Context, ref platform.MessageRef) (*platform.Message, error) {
	var msg platform.Message
	err := s.data.Get(ctx, redisCacheKey(ref), &msg)
	if err == cache.ErrCacheMiss {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (s *RedisMessageCache) Set(ctx context.Context, msg platform.Message) error {
	return s.data.Set(&cache.Item{
		Ctx:   ctx,
		Key:   redisCacheKey(msg.Ref),
		Value: msg,
		TTL:   s.ttl,
	})
}

func (s *RedisMessageCache) Purge(ctx context.Context, ref platform.MessageRef) error {
	err := s.data.Delete(ctx, redisCacheKey(ref))
	if err == cache.ErrCacheMiss {
		return nil
	}
	return err
}
