package countstore

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemCountStoreBasics(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	cs := NewMemCountStore()

	c, err := cs.GetCount(ctx, "reports", "user123", PeriodTotal)
	assert.NoError(err)
	assert.Equal(0, c)
	assert.NoError(cs.Increment(ctx, "reports", "user123"))
	assert.NoError(cs.Increment(ctx, "reports", "user123"))

	for _, period := range []string{PeriodTotal, PeriodDay, PeriodHour} {
		c, err = cs.GetCount(ctx, "reports", "user123", period)
		assert.NoError(err)
		assert.Equal(2, c)
	}

	c, err = cs.GetCountDistinct(ctx, "autoflag", "global", PeriodTotal)
	assert.NoError(err)
	assert.Equal(0, c)
	assert.NoError(cs.IncrementDistinct(ctx, "autoflag", "global", "msg-1"))
	assert.NoError(cs.IncrementDistinct(ctx, "autoflag", "global", "msg-1"))
	assert.NoError(cs.IncrementDistinct(ctx, "autoflag", "global", "msg-1"))
	c, err = cs.GetCountDistinct(ctx, "autoflag", "global", PeriodTotal)
	assert.NoError(err)
	assert.Equal(1, c)

	assert.NoError(cs.IncrementDistinct(ctx, "autoflag", "global", "msg-2"))
	assert.NoError(cs.IncrementDistinct(ctx, "autoflag", "global", "msg-3"))

	for _, period := range []string{PeriodTotal, PeriodDay, PeriodHour} {
		c, err = cs.GetCountDistinct(ctx, "autoflag", "global", period)
		assert.NoError(err)
		assert.Equal(3, c)
	}
}

func TestMemCountStoreConcurrent(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	cs := NewMemCountStore()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				_ = cs.Increment(ctx, "reports", "user123")
			}
		}()
	}
	wg.Wait()

	c, err := cs.GetCount(ctx, "reports", "user123", PeriodTotal)
	assert.NoError(err)
	assert.Equal(100, c)
}
