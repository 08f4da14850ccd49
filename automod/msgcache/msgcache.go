// Package msgcache is a short-TTL cache of fetched platform messages,
// keyed by channel and message ID. The engine consults it on the reaction
// path so repeated reactions on the same moderator post do not refetch
// the message from the platform.
//
// Includes an interface and implementations using redis and in-process
// memory. A miss is (nil, nil), not an error.
package msgcache

import (
	"context"

	"github.com/pboennig/cs152-bot/platform"
)

type MessageCache interface {
	Get(ctx context.Context, ref platform.MessageRef) (*platform.Message, error)
	Set(ctx context.Context, msg platform.Message) error
	Purge(ctx context.Context, ref platform.MessageRef) error
}

func cacheKey(ref platform.MessageRef) string {
	return ref.ChannelID + "/" + ref.MessageID
}
