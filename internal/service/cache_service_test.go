package service

import (
	"context"
	"encoding/json"
	"errors"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/campus-placement-api/pkg/errors"
)

type memoryCache struct {
	items  map[string][]byte
	getErr error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: map[string][]byte{}}
}

func (m *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	if m.getErr != nil {
		return m.getErr
	}
	raw, ok := m.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.items[key] = raw
	return nil
}

func (m *memoryCache) DeleteByPattern(_ context.Context, pattern string) error {
	for key := range m.items {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.items, key)
		}
	}
	return nil
}

func TestCacheServiceRoundTripAndInvalidate(t *testing.T) {
	repo := newMemoryCache()
	metrics := NewMetricsService()
	cache := NewCacheService(repo, metrics, time.Minute, nil, true)
	ctx := context.Background()

	var out []string
	assert.False(t, cache.Get(ctx, "jobs:list:a", &out))

	cache.Set(ctx, "jobs:list:a", []string{"x"}, 0)
	assert.True(t, cache.Get(ctx, "jobs:list:a", &out))
	assert.Equal(t, []string{"x"}, out)

	cache.Invalidate(ctx, "jobs:*")
	assert.False(t, cache.Get(ctx, "jobs:list:a", &out))

	snap := metrics.Snapshot()
	assert.EqualValues(t, 1, snap.CacheHits)
	assert.EqualValues(t, 2, snap.CacheMisses)
}

func TestCacheServiceDisabledAndFailing(t *testing.T) {
	repo := newMemoryCache()
	disabled := NewCacheService(repo, nil, 0, nil, false)
	disabled.Set(context.Background(), "k", 1, 0)
	assert.Empty(t, repo.items)

	repo.getErr = errors.New("redis down")
	enabled := NewCacheService(repo, nil, 0, nil, true)
	var v int
	assert.False(t, enabled.Get(context.Background(), "k", &v))
}
