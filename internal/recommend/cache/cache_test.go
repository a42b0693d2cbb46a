package cache

import (
	"context"
	"errors"
	"path"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/jobmatch/internal/textnorm"
)

type memBackend struct {
	mu      sync.Mutex
	data    map[string][]byte
	failGet bool
}

func newMemBackend() *memBackend {
	return &memBackend{data: make(map[string][]byte)}
}

func (m *memBackend) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet {
		return nil, errors.New("connection refused")
	}
	v, ok := m.data[key]
	if !ok {
		return nil, goredis.Nil
	}
	return v, nil
}

func (m *memBackend) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memBackend) FlushByPattern(_ context.Context, pattern string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k := range m.data {
		if ok, _ := path.Match(pattern, k); ok {
			delete(m.data, k)
			n++
		}
	}
	return n, nil
}

type result struct {
	IDs []string `json:"ids"`
}

func TestGetOrComputeCachesPerVersion(t *testing.T) {
	c := New[result](newMemBackend(), time.Minute)
	skills := textnorm.NewSet([]string{"go", "sql"})
	var calls atomic.Int32
	compute := func() (result, error) {
		calls.Add(1)
		return result{IDs: []string{"J1"}}, nil
	}

	got, hit, err := c.GetOrCompute(context.Background(), "v1", skills, 5, compute)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, []string{"J1"}, got.IDs)

	got, hit, err = c.GetOrCompute(context.Background(), "v1", textnorm.NewSet([]string{"SQL", "go"}), 5, compute)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"J1"}, got.IDs)

	_, hit, _ = c.GetOrCompute(context.Background(), "v2", skills, 5, compute)
	assert.False(t, hit)
	assert.Equal(t, int32(2), calls.Load())
}

func TestBackendFailureFallsBackToCompute(t *testing.T) {
	backend := newMemBackend()
	backend.failGet = true
	c := New[result](backend, time.Minute)

	got, hit, err := c.GetOrCompute(context.Background(), "v1", textnorm.NewSet([]string{"go"}), 5, func() (result, error) {
		return result{IDs: []string{"J9"}}, nil
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, []string{"J9"}, got.IDs)
}

func TestComputeErrorIsReturnedAndNotCached(t *testing.T) {
	backend := newMemBackend()
	c := New[result](backend, time.Minute)
	boom := errors.New("boom")

	_, _, err := c.GetOrCompute(context.Background(), "v1", textnorm.NewSet([]string{"go"}), 5, func() (result, error) {
		return result{}, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, backend.data)
}

func TestInvalidateRemovesOnlyPrefixedKeys(t *testing.T) {
	backend := newMemBackend()
	backend.data["other:key"] = []byte("x")
	c := New[result](backend, time.Minute)
	_, _, err := c.GetOrCompute(context.Background(), "v1", textnorm.NewSet([]string{"go"}), 5, func() (result, error) {
		return result{}, nil
	})
	require.NoError(t, err)

	require.NoError(t, c.Invalidate(context.Background()))
	assert.Len(t, backend.data, 1)
	assert.Contains(t, backend.data, "other:key")
}

func TestBuildKeyIgnoresSkillOrder(t *testing.T) {
	a := BuildKey("v", textnorm.NewSet([]string{"b", "a"}), 5)
	b := BuildKey("v", textnorm.NewSet([]string{"a", "b"}), 5)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, BuildKey("v", textnorm.NewSet([]string{"a", "b"}), 3))
}
