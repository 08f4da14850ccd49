package setstore

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemSetStoreBasics(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	ss := NewMemSetStore()
	ss.Sets["violent-words"] = map[string]bool{"kill": true, "hurt": true}

	ok, err := ss.InSet(ctx, "violent-words", "kill")
	assert.NoError(err)
	assert.True(ok)

	ok, err = ss.InSet(ctx, "violent-words", "puppy")
	assert.NoError(err)
	assert.False(ok)

	ok, err = ss.InSet(ctx, "no-such-set", "kill")
	assert.NoError(err)
	assert.False(ok)
}

func TestMemSetStoreLoadJSON(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	p := filepath.Join(t.TempDir(), "sets.json")
	assert.NoError(os.WriteFile(p, []byte(`{"violent-words": ["stab", "shoot"]}`), 0644))

	ss := NewMemSetStore()
	assert.NoError(ss.LoadFromFileJSON(p))

	ok, err := ss.InSet(ctx, "violent-words", "stab")
	assert.NoError(err)
	assert.True(ok)
}

func TestMemSetStoreConcurrent(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	p := filepath.Join(t.TempDir(), "sets.json")
	assert.NoError(os.WriteFile(p, []byte(`{"violent-words": ["stab", "shoot"]}`), 0644))

	ss := NewMemSetStore()
	assert.NoError(ss.LoadFromFileJSON(p))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			ok, err := ss.InSet(ctx, "violent-words", "stab")
			assert.NoError(err)
			assert.True(ok)
		}()
		go func() {
			defer wg.Done()
			assert.NoError(ss.LoadFromFileJSON(p))
		}()
	}
	wg.Wait()
}
