package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Loader is what GetOrLoadJSON needs; *Cache implements it.
type Loader interface {
	GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error)
}

// Invalidator drops cached keys after a write; *Cache implements it.
type Invalidator interface {
	Invalidate(ctx context.Context, keys ...string) error
}

// GetOrLoadJSON caches a JSON-encoded value. With a nil Loader it just calls load.
func GetOrLoadJSON[T any](
	c Loader,
	ctx context.Context,
	key string,
	ttl time.Duration,
	load func(ctx context.Context) (*T, error),
) (*T, error) {
	if c == nil {
		return load(ctx)
	}
	b, err := c.GetOrLoad(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		v, e := load(ctx)
		if e != nil {
			return nil, e
		}
		return json.Marshal(v)
	})
	if err != nil {
		return nil, err
	}
	if string(b) == "null" {
		return nil, nil
	}
	var out T
	if e := json.Unmarshal(b, &out); e != nil {
		return nil, e
	}
	return &out, nil
}
