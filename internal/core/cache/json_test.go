package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapLoader struct {
	mu sync.Mutex
	m  map[string][]byte
}

func (l *mapLoader) GetOrLoad(ctx context.Context, key string, _ time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if b, ok := l.m[key]; ok {
		return b, nil
	}
	b, err := load(ctx)
	if err != nil {
		return nil, err
	}
	l.m[key] = b
	return b, nil
}

type counts struct{ Jobs int64 }

func TestGetOrLoadJSON_CachesValue(t *testing.T) {
	l := &mapLoader{m: map[string][]byte{}}
	calls := 0
	load := func(context.Context) (*counts, error) {
		calls++
		return &counts{Jobs: 3}, nil
	}

	for i := 0; i < 3; i++ {
		v, err := GetOrLoadJSON[counts](l, context.Background(), "stats", time.Minute, load)
		require.NoError(t, err)
		assert.Equal(t, int64(3), v.Jobs)
	}
	assert.Equal(t, 1, calls)
}

func TestGetOrLoadJSON_NilLoaderAndErrors(t *testing.T) {
	v, err := GetOrLoadJSON[counts](nil, context.Background(), "k", time.Minute, func(context.Context) (*counts, error) {
		return &counts{Jobs: 1}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), v.Jobs)

	boom := errors.New("boom")
	_, err = GetOrLoadJSON[counts](&mapLoader{m: map[string][]byte{}}, context.Background(), "k", time.Minute, func(context.Context) (*counts, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
}
