package flagstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemFlagStoreBasics(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	fs := NewMemFlagStore()

	v, err := fs.Get(ctx, "user123")
	assert.NoError(err)
	assert.Empty(v)

	assert.NoError(fs.Add(ctx, "user123", []string{"content-removed"}))
	assert.NoError(fs.Add(ctx, "user123", []string{"content-removed", "banned"}))
	v, err = fs.Get(ctx, "user123")
	assert.NoError(err)
	assert.Equal([]string{"banned", "content-removed"}, v)

	assert.NoError(fs.Remove(ctx, "user123", []string{"banned"}))
	v, err = fs.Get(ctx, "user123")
	assert.NoError(err)
	assert.Equal([]string{"content-removed"}, v)

	// removing from an unknown key is a no-op
	assert.NoError(fs.Remove(ctx, "user999", []string{"banned"}))
}
