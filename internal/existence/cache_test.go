package existence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	_ "github.com/opsdesk/opsdesk/testing"
)

type scriptedChecker struct {
	outcome Outcome
	err     error
	calls   int
}

func (s *scriptedChecker) Exists(ctx context.Context, kind string, id int64) (Outcome, error) {
	s.calls++
	return s.outcome, s.err
}

func newCache(t *testing.T, next Checker) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(next, client, 30*time.Second)
}

func TestCacheStoresPositiveHits(t *testing.T) {
	next := &scriptedChecker{outcome: Exists}
	cache := newCache(t, next)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		outcome, err := cache.Exists(ctx, "users", 7)
		require.NoError(t, err)
		require.Equal(t, Exists, outcome)
	}
	require.Equal(t, 1, next.calls, "subsequent positive checks should hit the cache")
}

func TestCacheNeverStoresAbsent(t *testing.T) {
	next := &scriptedChecker{outcome: Absent}
	cache := newCache(t, next)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		outcome, err := cache.Exists(ctx, "users", 999)
		require.NoError(t, err)
		require.Equal(t, Absent, outcome)
	}
	require.Equal(t, 3, next.calls, "absence must be re-checked every time")
}

func TestCacheNeverStoresIndeterminate(t *testing.T) {
	next := &scriptedChecker{outcome: Indeterminate, err: errors.New("connection refused")}
	cache := newCache(t, next)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		outcome, err := cache.Exists(ctx, "users", 7)
		require.Error(t, err)
		require.Equal(t, Indeterminate, outcome)
	}
	require.Equal(t, 2, next.calls)
}

func TestCacheNilClientPassesThrough(t *testing.T) {
	next := &scriptedChecker{outcome: Exists}
	cache := NewCache(next, nil, time.Second)

	outcome, err := cache.Exists(context.Background(), "users", 1)
	require.NoError(t, err)
	require.Equal(t, Exists, outcome)
	require.Equal(t, 1, next.calls)
}
