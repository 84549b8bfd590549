package core

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	assert.False(t, shouldSuppressHeader(ctx))
	_, ok := getRunID(ctx)
	assert.False(t, ok)

	ctx = withRunID(WithSuppressHeader(ctx), 42)
	assert.True(t, shouldSuppressHeader(ctx))
	id, ok := getRunID(ctx)
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)
}

func TestContextConcurrentAccess(t *testing.T) {
	ctx := withRunID(WithSuppressHeader(context.Background()), 12345)

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id, ok := getRunID(ctx)
			assert.True(t, shouldSuppressHeader(ctx), "goroutine %d", n)
			assert.True(t, ok, "goroutine %d", n)
			assert.Equal(t, int64(12345), id, "goroutine %d", n)
		}(i)
	}
	wg.Wait()
}
