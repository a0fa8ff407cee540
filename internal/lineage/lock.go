// Package lineage serializes writes that extend the same notice lineage.
package lineage

import (
	"context"
	"time"

	"github.com/gesthub/gesthub/internal/model"
	"github.com/gesthub/gesthub/pkg/logger"
	"github.com/gesthub/gesthub/pkg/redis"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	keyPrefix         = "lineage:lock:"
	defaultRetryEvery = 25 * time.Millisecond
)

// Locker holds a short Redis lock per lineage key so that two concurrent
// creates cannot both read the same lineage size.
type Locker struct {
	adapter    redis.RedisAdapter
	ttl        time.Duration
	wait       time.Duration
	retryEvery time.Duration
}

// NewLocker returns a lock with the given ttl. Callers wait at most ttl to
// acquire it.
func NewLocker(adapter redis.RedisAdapter, ttl time.Duration) *Locker {
	return &Locker{
		adapter:    adapter,
		ttl:        ttl,
		wait:       ttl,
		retryEvery: defaultRetryEvery,
	}
}

// Lock blocks until the lineage is free, the wait expires or ctx is done.
// The returned func releases the lock and is safe to call once.
func (l *Locker) Lock(ctx context.Context, lineageKey string) (func(), error) {
	key := keyPrefix + lineageKey
	token := []byte(uuid.NewString())
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.adapter.SetNX(ctx, key, token, l.ttl)
		if err != nil {
			return nil, errors.Wrapf(model.ErrTransient, "acquire lineage lock: %v", err)
		}
		if ok {
			return func() { l.release(key, token) }, nil
		}
		if time.Now().After(deadline) {
			return nil, errors.Wrapf(model.ErrTransient, "lineage %q is busy", lineageKey)
		}

		select {
		case <-ctx.Done():
			return nil, errors.Wrap(model.ErrTransient, ctx.Err().Error())
		case <-time.After(l.retryEvery):
		}
	}
}

func (l *Locker) release(key string, token []byte) {
	// released on a fresh context so a cancelled request still frees the key
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if _, err := l.adapter.DelIfEqual(ctx, key, token); err != nil {
		logger.Warn("failed to release lineage lock", "key", key, "error", err)
	}
}

// NopLocker never blocks. It is used when no Redis is configured.
type NopLocker struct{}

func (NopLocker) Lock(context.Context, string) (func(), error) {
	return func() {}, nil
}
