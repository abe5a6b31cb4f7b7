package cache_utils

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"timebridge/internal/cache"
	"timebridge/internal/util/logger"

	"github.com/google/uuid"
	"github.com/valkey-io/valkey-go"
)

// Deletes the key only while it still holds our token, so an expired lock
// re-acquired by another process is never released by us.
const releaseLockLuaScript = `
if redis.call('GET', KEYS[1]) == ARGV[1] then
    return redis.call('DEL', KEYS[1])
end
return 0
`

const extendLockLuaScript = `
if redis.call('GET', KEYS[1]) == ARGV[1] then
    return redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
return 0
`

// DistributedLock is a SET NX lock. While held it is extended every third of
// its TTL, so the TTL only bounds how long a crashed holder blocks others.
type DistributedLock struct {
	client  func() valkey.Client
	key     string
	ttl     time.Duration
	timeout time.Duration
}

func NewDistributedLock(key string, ttl time.Duration) *DistributedLock {
	return &DistributedLock{
		client:  cache.GetCache,
		key:     "tb_lock:" + key,
		ttl:     ttl,
		timeout: DefaultCacheTimeout,
	}
}

// TryAcquire returns a release func when the lock was taken, or ok=false
// when somebody else holds it.
func (l *DistributedLock) TryAcquire() (release func(), ok bool, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()

	token := uuid.New().String()
	client := l.client()

	result := client.Do(ctx, client.B().Set().Key(l.key).Value(token).Nx().ExSeconds(int64(l.ttl.Seconds())).Build())
	if result.Error() != nil {
		if valkey.IsValkeyNil(result.Error()) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("failed to acquire lock %s: %w", l.key, result.Error())
	}

	stopRenewal := make(chan struct{})
	renewalDone := make(chan struct{})
	go func() {
		defer close(renewalDone)
		keepAlive(stopRenewal, l.ttl/3, func() (bool, error) {
			return l.extend(token)
		})
	}()

	var releaseOnce sync.Once
	release = func() {
		releaseOnce.Do(func() {
			close(stopRenewal)
			<-renewalDone

			releaseCtx, releaseCancel := context.WithTimeout(context.Background(), l.timeout)
			defer releaseCancel()

			client.Do(releaseCtx, client.B().Eval().
				Script(releaseLockLuaScript).
				Numkeys(1).
				Key(l.key).
				Arg(token).
				Build())
		})
	}

	return release, true, nil
}

func (l *DistributedLock) extend(token string) (held bool, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()

	client := l.client()
	extended, err := client.Do(ctx, client.B().Eval().
		Script(extendLockLuaScript).
		Numkeys(1).
		Key(l.key).
		Arg(token, strconv.FormatInt(l.ttl.Milliseconds(), 10)).
		Build()).AsInt64()
	if err != nil {
		return false, fmt.Errorf("failed to extend lock %s: %w", l.key, err)
	}

	return extended == 1, nil
}

// keepAlive calls extend every interval until stop is closed or extend
// reports the lock is no longer ours. Errors are retried on the next tick.
func keepAlive(stop <-chan struct{}, interval time.Duration, extend func() (bool, error)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return

		case <-ticker.C:
			held, err := extend()
			if err != nil {
				logger.GetLogger().Warn("Failed to extend lock", "error", err)
				continue
			}

			if !held {
				logger.GetLogger().Warn("Lock lost before release")
				return
			}
		}
	}
}
