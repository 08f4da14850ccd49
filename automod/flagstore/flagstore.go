// Package flagstore records private per-user moderation flags: durable
// markers like "banned" or "content-removed" that moderator actions leave
// behind, keyed by platform user ID.
package flagstore

import (
	"context"
)

type FlagStore interface {
	Get(ctx context.Context, key string) ([]string, error)
	Add(ctx context.Context, key string, flags []string) error
	Remove(ctx context.Context, key string, flags []string) error
}
