package service

import (
	"context"
	"encoding/json"
	"errors"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/coaching-center-api/pkg/errors"
)

type memoryCacheRepo struct {
	entries map[string][]byte
	ttls    map[string]time.Duration
	failGet bool
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{entries: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	if m.failGet {
		return errors.New("redis down")
	}
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	m.ttls[key] = ttl
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) (int, error) {
	deleted := 0
	for key := range m.entries {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.entries, key)
			deleted++
		}
	}
	return deleted, nil
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "coaching:finance:c1:2024", CacheKey("finance", "c1", 2024))
	assert.Equal(t, "coaching:dashboard", CacheKey("dashboard"))
}

func TestCacheServiceRoundTrip(t *testing.T) {
	repo := newMemoryCacheRepo()
	metrics := NewMetricsService()
	svc := NewCacheService(repo, metrics, time.Minute, nil, true)
	ctx := context.Background()

	var out map[string]int
	hit, err := svc.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, svc.Set(ctx, "k", map[string]int{"a": 1}, 0))
	assert.Equal(t, time.Minute, repo.ttls["k"])

	hit, err = svc.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, out["a"])

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(1), snapshot.CacheHits)
	assert.Equal(t, uint64(1), snapshot.CacheMisses)
	assert.InDelta(t, 0.5, snapshot.CacheHitRatio, 0.0001)
}

func TestCacheServiceInvalidatePattern(t *testing.T) {
	repo := newMemoryCacheRepo()
	svc := NewCacheService(repo, nil, time.Minute, nil, true)
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, CacheKey("finance", "c1", 2023), 1, 0))
	require.NoError(t, svc.Set(ctx, CacheKey("finance", "c1", 2024), 1, 0))
	require.NoError(t, svc.Set(ctx, CacheKey("finance", "c2", 2024), 1, 0))

	require.NoError(t, svc.Invalidate(ctx, CacheKey("finance", "c1", "*")))
	assert.Len(t, repo.entries, 1)
	assert.Contains(t, repo.entries, "coaching:finance:c2:2024")
}

func TestCacheServiceDisabledAndFailures(t *testing.T) {
	repo := newMemoryCacheRepo()
	disabled := NewCacheService(repo, nil, 0, nil, false)
	require.NoError(t, disabled.Set(context.Background(), "k", 1, 0))
	assert.Empty(t, repo.entries)

	var nilSvc *CacheService
	assert.False(t, nilSvc.Enabled())

	repo.failGet = true
	svc := NewCacheService(repo, nil, 0, nil, true)
	var out int
	hit, err := svc.Get(context.Background(), "k", &out)
	assert.False(t, hit)
	assert.Error(t, err)
}
