package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestGetMiss(t *testing.T) {
	s := newTestStore(t)
	_, ok, err := s.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSetOverwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "k", []byte("one"), time.Minute))
	require.NoError(t, s.Set(ctx, "k", []byte("two"), time.Minute))

	v, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "two", string(v))
}

func TestExpiredEntryIsMiss(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "k", []byte("v"), time.Second))

	assert.Eventually(t, func() bool {
		_, ok, err := s.Get(ctx, "k")
		return err == nil && !ok
	}, 5*time.Second, 100*time.Millisecond)
}

func TestConcurrentAccess(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%4)
			assert.NoError(t, s.Set(ctx, key, []byte("v"), time.Minute))
			_, _, err := s.Get(ctx, key)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
}
