package msgcache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/pboennig/cs152-bot/platform"
)

type MemMessageCache struct {
	data *expirable.LRU[string, platform.Message]
}

func NewMemMessageCache(capacity int, ttl time.Duration) *MemMessageCache {
	return &MemMessageCache{
		data: expirable.NewLRU[string, platform.Message](capacity, nil, ttl),
	}
}

func (s *MemMessageCache) Get(ctx context.Context, ref platform.MessageRef) (*platform.Message, error) {
	v, ok := s.data.Get(cacheKey(ref))
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (s *MemMessageCache) Set(ctx context.Context, msg platform.Message) error {
	s.data.Add(cacheKey(msg.Ref), msg)
	return nil
}

func (s *MemMessageCache) Purge(ctx context.Context, ref platform.MessageRef) error {
	s.data.Remove(cacheKey(ref))
	return nil
}

var _ MessageCache = (*MemMessageCache)(nil)
