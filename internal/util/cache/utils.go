package cache_utils

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"timebridge/internal/cache"

	"github.com/valkey-io/valkey-go"
)

const (
	DefaultCacheTimeout = 10 * time.Second
	DefaultCacheExpiry  = 10 * time.Minute
)

// CacheUtil stores JSON encoded values of T under a key prefix. The valkey
// client is resolved on first use so constructing one never dials.
type CacheUtil[T any] struct {
	client  func() valkey.Client
	prefix  string
	timeout time.Duration
	expiry  time.Duration
}

func NewCacheUtil[T any](prefix string) *CacheUtil[T] {
	return &CacheUtil[T]{
		client:  cache.GetCache,
		prefix:  prefix,
		timeout: DefaultCacheTimeout,
		expiry:  DefaultCacheExpiry,
	}
}

// CheckCacheConnection round-trips a probe key through valkey.
func CheckCacheConnection() error {
	probe := NewCacheUtil[string]("tb_probe:")

	key := "connection_check"
	value := "valkey_is_working"

	probe.Set(key, &value)
	defer probe.Invalidate(key)

	stored := probe.Get(key)
	if stored == nil {
		return errors.New("could not read back probe value")
	}
	if *stored != value {
		return errors.New("probe value does not match")
	}

	return nil
}

func (c *CacheUtil[T]) Get(key string) *T {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	client := c.client()
	result := client.Do(ctx, client.B().Get().Key(c.prefix+key).Build())
	if result.Error() != nil {
		return nil
	}

	data, err := result.AsBytes()
	if err != nil {
		return nil
	}

	var item T
	if err := json.Unmarshal(data, &item); err != nil {
		return nil
	}

	return &item
}

func (c *CacheUtil[T]) Set(key string, item *T) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	data, err := json.Marshal(item)
	if err != nil {
		return
	}

	client := c.client()
	client.Do(ctx, client.B().Set().Key(c.prefix+key).Value(string(data)).Ex(c.expiry).Build())
}

func (c *CacheUtil[T]) Invalidate(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	client := c.client()
	client.Do(ctx, client.B().Del().Key(c.prefix+key).Build())
}
